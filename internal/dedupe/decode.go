package dedupe

import (
	"encoding/binary"

	"github.com/dedupe-engine/rabin/internal/debug"
	"github.com/dedupe-engine/rabin/internal/errors"
	"github.com/dedupe-engine/rabin/internal/params"
)

type slotKind uint8

const (
	slotRaw slotKind = iota
	slotExactRef
	slotDiffRef
)

type slot struct {
	kind   slotKind
	offset int // offset into the data segment
	length int // byte length at offset (raw bytes, or patch bytes after the length prefix for diffRef)
	ref    uint32
}

// Decompress reverses Compress (spec.md §4.7): parse the header and index
// table, then reconstruct each block in order, resolving Exact references
// by copy and Partial references by binary patch.
func (c *Context) Decompress(in []byte) ([]byte, error) {
	header, err := ParseHeader(in)
	if err != nil {
		return nil, err
	}

	indexStart := uint64(params.HeaderSize)
	indexSize := header.IndexTableSize()
	dataStart := indexStart + indexSize
	if uint64(len(in)) < dataStart {
		return nil, errors.Errorf("dedupe: corrupted stream: index table truncated")
	}

	idx := make([]uint32, header.BlkNum)
	for i := range idx {
		off := indexStart + uint64(i)*params.EntrySize
		idx[i] = binary.BigEndian.Uint32(in[off : off+4])
	}

	slots := make([]slot, header.BlkNum)
	cursor := int(dataStart)

	for i, v := range idx {
		switch {
		case v&RefFlag == 0:
			length := int(v & IndexMask)
			if cursor+length > len(in) {
				return nil, errors.Errorf("dedupe: corrupted stream: raw block %d overruns buffer", i)
			}
			slots[i] = slot{kind: slotRaw, offset: cursor, length: length}
			cursor += length

		case v&SimFlag != 0:
			if cursor+diffLenPrefixSize > len(in) {
				return nil, errors.Errorf("dedupe: corrupted stream: diff block %d missing length prefix", i)
			}
			patchLen := int(binary.BigEndian.Uint32(in[cursor : cursor+diffLenPrefixSize]))
			patchStart := cursor + diffLenPrefixSize
			if patchStart+patchLen > len(in) {
				return nil, errors.Errorf("dedupe: corrupted stream: diff block %d overruns buffer", i)
			}
			slots[i] = slot{kind: slotDiffRef, offset: patchStart, length: patchLen, ref: v & IndexMask}
			cursor = patchStart + patchLen

		default:
			slots[i] = slot{kind: slotExactRef, ref: v & IndexMask}
		}
	}

	reconstructed := make([][]byte, header.BlkNum)
	var total int

	for i, s := range slots {
		switch s.kind {
		case slotRaw:
			reconstructed[i] = in[s.offset : s.offset+s.length]

		case slotExactRef:
			if int(s.ref) >= i {
				return nil, errors.Errorf("dedupe: corrupted stream: block %d references non-earlier block %d", i, s.ref)
			}
			reconstructed[i] = reconstructed[s.ref]

		case slotDiffRef:
			if int(s.ref) >= i {
				return nil, errors.Errorf("dedupe: corrupted stream: block %d references non-earlier block %d", i, s.ref)
			}
			old := reconstructed[s.ref]
			patch := in[s.offset : s.offset+s.length]
			next, err := c.differ.Patch(old, patch)
			if err != nil {
				return nil, errors.Wrapf(err, "dedupe: corrupted chunk at block %d", i)
			}
			reconstructed[i] = next
		}
		total += len(reconstructed[i])
	}

	if uint64(total) != header.OriginalSize {
		return nil, errors.Errorf("dedupe: too little dedup data processed: got %d bytes, want %d", total, header.OriginalSize)
	}

	out := make([]byte, 0, total)
	for _, b := range reconstructed {
		out = append(out, b...)
	}

	debug.Log("dedupe: decompressed %d blocks into %d bytes", header.BlkNum, len(out))
	return out, nil
}
