package dedupe

import (
	"encoding/binary"

	"github.com/dedupe-engine/rabin/internal/block"
	"github.com/dedupe-engine/rabin/internal/chunker"
	"github.com/dedupe-engine/rabin/internal/debug"
	"github.com/dedupe-engine/rabin/internal/params"
)

// Compress partitions buf into blocks, deduplicates them, and returns the
// self-describing encoded stream (spec.md §4.6). ok is false when
// deduplication wasn't attempted or didn't break even — buf is small
// enough that chunking produced nothing, or too few blocks resulted in
// savings that don't cover the index table's own overhead — in which
// case callers should fall back to storing buf untouched, exactly as
// dedupe_compress returning 0 tells its caller to do.
func (c *Context) Compress(buf []byte) (out []byte, ok bool, err error) {
	arena := c.pool.Get(c.chunkSize, c.blkSz, c.lastBlockCount)
	blocks := chunker.ChunkInto(buf, chunker.Options{
		BlkSz:       c.blkSz,
		Fixed:       c.fixed,
		Sketch:      c.delta != DeltaOff,
		SketchLevel: c.level,
	}, arena)
	if blocks == nil {
		c.valid = false
		return nil, false, nil
	}
	defer func() {
		c.lastBlockCount = len(blocks)
		c.pool.Put(c.chunkSize, c.blkSz, blocks)
	}()

	if err := c.stageA(buf, blocks); err != nil {
		return nil, false, err
	}

	var matchLen uint64
	if len(blocks) > 2 {
		matchLen = c.stageB(buf, blocks)
	}
	if !breakEven(len(blocks), matchLen) {
		c.valid = false
		return nil, false, nil
	}

	merged, toFinal := mergeUniqueRuns(blocks)
	for _, e := range merged {
		if e.Similar == block.Exact || e.Similar == block.Partial {
			e.Other = toFinal[e.Other]
		}
	}

	data, err := c.encodeBlocks(buf, merged)
	if err != nil {
		return nil, false, err
	}

	c.valid = true
	debug.Log("dedupe: compressed %d bytes into %d blocks, %d output bytes", len(buf), len(merged), len(data))
	return data, true, nil
}

// mergeUniqueRuns absorbs consecutive unique (Similar == None) blocks into
// one another while the merged length stays under MaxBlockSize — spec.md
// §4.6's Encoder Stage A — and returns the resulting ordered slot list
// plus a map from each surviving or absorbed block's original position to
// its final slot index, so Other references can be retargeted.
func mergeUniqueRuns(blocks []*block.Entry) ([]*block.Entry, map[int32]int32) {
	out := make([]*block.Entry, 0, len(blocks))
	toFinal := make(map[int32]int32, len(blocks))

	i := 0
	for i < len(blocks) {
		e := blocks[i]
		if e.Similar != block.None {
			finalIdx := int32(len(out))
			toFinal[int32(i)] = finalIdx
			e.Index = uint32(finalIdx)
			out = append(out, e)
			i++
			continue
		}

		finalIdx := int32(len(out))
		toFinal[int32(i)] = finalIdx
		leader := e
		j := i + 1
		for j < len(blocks) &&
			blocks[j].Similar == block.None &&
			uint64(leader.Length)+uint64(blocks[j].Length) <= uint64(params.MaxBlockSize) {
			toFinal[int32(j)] = finalIdx
			leader.Length += blocks[j].Length
			j++
		}
		leader.Index = uint32(finalIdx)
		out = append(out, leader)
		i = j
	}

	return out, toFinal
}

// diffLenPrefixSize is the width of the explicit length prefix this port
// writes ahead of every Partial block's patch bytes. The original format
// has no such prefix: its decoder learns a diff block's on-disk length by
// walking the bsdiff control stream directly (get_bsdiff_sz), which
// go-bsdiff's public API doesn't expose. Prefixing each patch with its own
// length is the documented adaptation (see DESIGN.md) that keeps the data
// segment self-describing without that access.
const diffLenPrefixSize = 4

// encodeBlocks writes the header, index table and data segment for an
// already-merged block list (spec.md §4.6's Encoder Stage B).
func (c *Context) encodeBlocks(buf []byte, out []*block.Entry) ([]byte, error) {
	blkNum := len(out)
	indexEntries := make([]uint32, blkNum)
	data := make([]byte, 0, len(buf))

	for i, e := range out {
		switch e.Similar {
		case block.None, block.Ref:
			raw := buf[e.Offset : e.Offset+uint64(e.Length)]
			data = append(data, raw...)
			indexEntries[i] = e.Length & IndexMask

		case block.Exact:
			indexEntries[i] = RefFlag | (uint32(e.Other) & IndexMask)

		case block.Partial:
			other := out[e.Other]
			oldBytes := buf[other.Offset : other.Offset+uint64(other.Length)]
			newBytes := buf[e.Offset : e.Offset+uint64(e.Length)]

			patch, err := c.differ.Diff(oldBytes, newBytes)
			if err != nil {
				return nil, err
			}

			if uint64(len(patch))+diffLenPrefixSize >= uint64(e.Length) {
				data = append(data, newBytes...)
				indexEntries[i] = e.Length & IndexMask
				continue
			}

			var prefix [diffLenPrefixSize]byte
			binary.BigEndian.PutUint32(prefix[:], uint32(len(patch)))
			data = append(data, prefix[:]...)
			data = append(data, patch...)
			indexEntries[i] = RefFlag | SimFlag | (uint32(e.Other) & IndexMask)
		}
	}

	header := EncodeHeader(Header{
		BlkNum:       uint32(blkNum),
		OriginalSize: uint64(len(buf)),
		DedupedSize:  uint64(len(data)),
	})

	result := make([]byte, 0, len(header)+blkNum*params.EntrySize+len(data))
	result = append(result, header...)
	var entryBuf [4]byte
	for _, v := range indexEntries {
		binary.BigEndian.PutUint32(entryBuf[:], v)
		result = append(result, entryBuf[:]...)
	}
	result = append(result, data...)
	return result, nil
}
