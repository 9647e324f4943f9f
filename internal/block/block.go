// Package block defines BlockEntry, the central per-block record shared by
// the chunker, sketcher, indexer, encoder and decoder (spec.md §3).
package block

// Similar classifies a block's relationship to earlier blocks in the same
// chunk.
type Similar uint8

const (
	// None means the block is unique: no earlier block matches it.
	None Similar = iota
	// Exact means the block is byte-identical to an earlier block.
	Exact
	// Partial means the block is similar (sketch match) to an earlier
	// block but not byte-identical, and will be binary-diffed against it.
	Partial
	// Ref means some later block references this one as its Exact or
	// Partial match target.
	Ref
)

func (s Similar) String() string {
	switch s {
	case None:
		return "none"
	case Exact:
		return "exact"
	case Partial:
		return "partial"
	case Ref:
		return "ref"
	default:
		return "unknown"
	}
}

// NoRef is the sentinel used for Other/Next when no reference applies.
// Weak references inside BlockEntry are modeled as arena indices rather
// than pointers (spec.md §9): both fields index into the block slice of
// the Compress call that produced the entry.
const NoRef int32 = -1

// Entry is one block: an offset/length span of the input buffer plus its
// classification. It is reused across Compress calls on the same Context
// — see internal/blockpool — and only reallocated when a chunk needs more
// entries than the borrowed arena holds.
type Entry struct {
	Offset         uint64
	Length         uint32
	Index          uint32
	Hash           uint32
	SimilarityHash uint32
	Similar        Similar
	Other          int32 // arena index of the reference block, or NoRef
	Next           int32 // bucket-chain successor arena index, or NoRef
}

// Reset restores e to its zero/unlinked state so it can be reused for a
// new block without reallocating.
func (e *Entry) Reset() {
	e.Offset = 0
	e.Length = 0
	e.Index = 0
	e.Hash = 0
	e.SimilarityHash = 0
	e.Similar = None
	e.Other = NoRef
	e.Next = NoRef
}
