package dedupe

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dedupe-engine/rabin/internal/block"
	"github.com/dedupe-engine/rabin/internal/debug"
	"github.com/dedupe-engine/rabin/internal/params"
	"github.com/dedupe-engine/rabin/internal/xhash"
)

// stageAParallelThreshold is the smallest block count for which fanning
// Stage A hashing out across goroutines is worth the errgroup overhead;
// below it, hashing runs inline.
const stageAParallelThreshold = 64

// stageA computes each block's exact-duplicate content hash. It is the
// one embarrassingly-parallel step in indexing — every block's hash is
// independent of every other's — matching process_blocks' own "if (mt)"
// OpenMP-parallel loop in the original source. golang.org/x/sync/errgroup
// is restic's own dependency for exactly this kind of bounded fan-out.
func (c *Context) stageA(buf []byte, blocks []*block.Entry) error {
	compute := func(e *block.Entry) {
		data := buf[e.Offset : e.Offset+uint64(e.Length)]
		e.Hash = xhash.Hash32(data)
		if c.delta == DeltaOff {
			e.SimilarityHash = e.Hash
		}
	}

	if !c.mt || len(blocks) < stageAParallelThreshold {
		for _, e := range blocks {
			compute(e)
		}
		return nil
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, e := range blocks {
		e := e
		g.Go(func() error {
			compute(e)
			return nil
		})
	}
	return g.Wait()
}

// deltacMinDistance is the minimum offset separation two blocks must have
// before a similarity-hash collision is considered a candidate partial
// match, avoiding spurious "similar to the block right next to it"
// matches on slowly-drifting content.
const deltacMinDistance = params.EntrySize * 256

// stageB walks blocks in order, classifying each against everything seen
// so far via a bucket-chained hashtable keyed by similarity_hash, exactly
// as process_blocks' Stage B does: exact content match wins over partial
// sketch match, a block landing in an empty bucket becomes its head, and a
// block with no match is appended to the tail of its bucket's chain.
// Returns the total byte length this pass judges would be saved by
// deduplicating (matchLen), for the break-even check in Compress.
func (c *Context) stageB(buf []byte, blocks []*block.Entry) uint64 {
	n := len(blocks)
	buckets := n << 1
	heads := make([]int32, buckets)
	for i := range heads {
		heads[i] = block.NoRef
	}

	var matchLen uint64

	for i, e := range blocks {
		debug.RunHook("dedupe.Context.stageB", e)

		ck := e.SimilarityHash ^ (e.SimilarityHash / uint32max1(e.Length))
		j := int(ck) % buckets
		if j < 0 {
			j += buckets
		}

		head := heads[j]
		if head == block.NoRef {
			heads[j] = int32(i)
			continue
		}

		if other, ok := findExact(buf, blocks, head, e); ok {
			e.Similar = block.Exact
			e.Other = other
			blocks[other].Similar = block.Ref
			matchLen += uint64(blocks[other].Length)
			continue
		}

		if c.delta != DeltaOff {
			if other, ok := findSimilar(blocks, head, e); ok {
				e.Similar = block.Partial
				e.Other = other
				blocks[other].Similar = block.Ref
				matchLen += uint64(blocks[other].Length) / 2
				continue
			}
		}

		tail := head
		for blocks[tail].Next != block.NoRef {
			tail = blocks[tail].Next
		}
		blocks[tail].Next = int32(i)
	}

	return matchLen
}

func uint32max1(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	return v
}

func findExact(buf []byte, blocks []*block.Entry, head int32, e *block.Entry) (int32, bool) {
	eBytes := buf[e.Offset : e.Offset+uint64(e.Length)]
	for idx := head; idx != block.NoRef; idx = blocks[idx].Next {
		cand := blocks[idx]
		if cand.Hash != e.Hash || cand.Length != e.Length {
			continue
		}
		candBytes := buf[cand.Offset : cand.Offset+uint64(cand.Length)]
		if string(candBytes) == string(eBytes) {
			return idx, true
		}
	}
	return block.NoRef, false
}

func findSimilar(blocks []*block.Entry, head int32, e *block.Entry) (int32, bool) {
	for idx := head; idx != block.NoRef; idx = blocks[idx].Next {
		cand := blocks[idx]
		if cand.SimilarityHash != e.SimilarityHash || cand.Length != e.Length {
			continue
		}
		dist := e.Offset - cand.Offset
		if e.Offset < cand.Offset {
			dist = cand.Offset - e.Offset
		}
		if dist > deltacMinDistance {
			return idx, true
		}
	}
	return block.NoRef, false
}

// breakEven reports whether the matched byte total justifies emitting a
// deduplicated stream at all: if the bytes a dedup pass would save don't
// even cover the index table's own overhead, Compress should emit the
// buffer untouched.
func breakEven(blkNum int, matchLen uint64) bool {
	indexSize := uint64(blkNum) * params.EntrySize
	ok := matchLen >= indexSize
	debug.Log("dedupe: break-even check matchLen=%d indexSize=%d ok=%v", matchLen, indexSize, ok)
	return ok
}
