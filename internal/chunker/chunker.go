// Package chunker partitions a byte buffer into variable-length blocks
// using the rolling polynomial fingerprint from internal/polytable, and
// optionally computes each block's similarity sketch (spec.md §4.3/§4.4).
//
// Its shape — a struct holding the rolling window plus a cut loop exposed
// as a single pass over the buffer — follows restic's chunker.Chunker
// (_examples/restic-restic/chunker/chunker.go): a cached table, a sliding
// window, a streaming cut loop. The arithmetic itself is not restic's
// GF(2) polynomial: it follows original_source/rabin/rabin_dedup.c's
// dedupe_compress (the integer multiply-mod construction from
// internal/polytable), since that is the fingerprint spec.md specifies.
package chunker

import (
	"github.com/dedupe-engine/rabin/internal/block"
	"github.com/dedupe-engine/rabin/internal/params"
	"github.com/dedupe-engine/rabin/internal/polytable"
	"github.com/dedupe-engine/rabin/internal/sketch"
	"github.com/dedupe-engine/rabin/internal/window"
)

// Options configures a single Chunk call.
type Options struct {
	// BlkSz selects the block-size level in [1,5] (spec.md §4.1); values
	// outside that range are clamped to params.BlkSzDefault by the
	// caller (internal/dedupe.Context does this at creation time).
	BlkSz int

	// Fixed, when true, partitions the buffer into equal-sized blocks of
	// AvgBlockSize(BlkSz) instead of running the rolling-fingerprint cut
	// loop (spec.md §4.3's fixed mode).
	Fixed bool

	// Sketch enables min-hash similarity sketching of each emitted block
	// (spec.md §4.4). Fixed-mode blocks never sketch: the chunker leaves
	// their SimilarityHash at 0, and internal/dedupe (which forces delta
	// off in fixed mode) later sets it to the exact content hash.
	Sketch bool

	// SketchLevel selects which of the three retained-word fractions
	// (1, 2 or 3 — see sketch.KForLevel) governs how aggressively each
	// block's sketch is thinned. Ignored when Sketch is false.
	SketchLevel int
}

// Chunk partitions buf into blocks according to opts. The rolling path
// calls polytable.Init itself, so callers need no setup of their own.
func Chunk(buf []byte, opts Options) []*block.Entry {
	return ChunkInto(buf, opts, nil)
}

// ChunkInto is Chunk, but reuses arena's *block.Entry values (in order,
// resetting each before reuse) instead of allocating fresh ones, falling
// back to allocation once arena is exhausted. arena may be nil or shorter
// than the number of blocks this call ultimately produces; it is only an
// opportunistic reuse hint, supplied by internal/dedupe.Context from a
// blockpool.Pool. The returned slice always has len == block count,
// regardless of arena's length.
func ChunkInto(buf []byte, opts Options, arena []*block.Entry) []*block.Entry {
	blkSz := opts.BlkSz
	if blkSz < 1 || blkSz > 5 {
		blkSz = params.BlkSzDefault
	}

	if opts.Fixed {
		return chunkFixed(buf, blkSz, arena)
	}
	return chunkRolling(buf, blkSz, opts, arena)
}

func chunkFixed(buf []byte, blkSz int, arena []*block.Entry) []*block.Entry {
	size := uint64(len(buf))
	avg := uint64(params.AvgBlockSize(blkSz))
	if size < avg {
		return nil
	}

	blknum := size / avg
	remainder := size % avg

	b := newBuilder(arena, int(blknum)+1)
	var offset uint64
	for i := uint64(0); i < blknum; i++ {
		b.add(buf, offset, avg, false, 0)
		offset += avg
	}
	if remainder != 0 {
		b.add(buf, offset, remainder, false, 0)
	}
	return b.out
}

func chunkRolling(buf []byte, blkSz int, opts Options, arena []*block.Entry) []*block.Entry {
	polytable.Init()

	size := uint64(len(buf))
	minBlk := uint64(params.MinBlockSize(blkSz))
	avg := uint64(params.AvgBlockSize(blkSz))
	maxBlk := uint64(params.MaxBlockSize)

	if size < avg {
		return nil
	}
	b := newBuilder(arena, int(size/minBlk)+1)
	if size <= uint64(window.Size) {
		b.add(buf, 0, size, opts.Sketch, opts.SketchLevel)
		return b.out
	}

	var w window.Window

	offset := minBlk - uint64(params.WindowSlideOffset)
	length := offset
	lastOffset := uint64(0)
	var checksum uint64

	top := size - uint64(window.Size)
	if top > size {
		top = 0
	}

	i := offset
	for i < top {
		evicted := w.Push(buf[i])
		checksum = (checksum*polytable.RabPolynomialConst)&polytable.PolyMask + uint64(buf[i]) - polytable.OUT[evicted]
		length++

		if length < minBlk {
			i++
			continue
		}

		posChecksum := checksum ^ polytable.IR[evicted]
		cut := (posChecksum&params.BreakMask) == params.BreakPattern || length >= maxBlk

		if !cut {
			i++
			continue
		}

		blkLen := i + 1 - lastOffset
		b.add(buf, lastOffset, blkLen, opts.Sketch, opts.SketchLevel)

		lastOffset = i + 1
		if size-lastOffset <= minBlk {
			break
		}

		length = minBlk - uint64(params.WindowSlideOffset)
		// rabin_dedup.c's for-loop fires its own i++ on top of this
		// skip-ahead (original_source/rabin/rabin_dedup.c:512-513); Go's
		// `for i < top` has no implicit per-iteration increment, so that
		// extra byte has to be added back explicitly here.
		i += length + 1
		w.Reset()
		checksum = 0
	}

	if lastOffset < size {
		tailLen := size - lastOffset
		sketchTail := opts.Sketch && tailLen > minBlk
		b.add(buf, lastOffset, tailLen, sketchTail, opts.SketchLevel)
	}

	return b.out
}

// builder accumulates a chunk's block list, preferring to reuse arena's
// *block.Entry values (borrowed from a blockpool.Pool by the caller) over
// allocating new ones, in index order.
type builder struct {
	arena []*block.Entry
	out   []*block.Entry
}

func newBuilder(arena []*block.Entry, capHint int) *builder {
	if capHint < 0 {
		capHint = 0
	}
	return &builder{arena: arena, out: make([]*block.Entry, 0, capHint)}
}

// add builds a block's offset/length/index record and, if requested, its
// similarity sketch. It deliberately leaves Hash (the exact-duplicate
// content hash) unset: that is Stage A's job in internal/dedupe's indexer,
// computed in a separate, parallelizable pass over the finished block list
// rather than inline here, exactly as rabin_dedup.c splits cut detection
// (this method) from process_blocks' Stage A hashing.
func (b *builder) add(buf []byte, offset, length uint64, doSketch bool, level int) *block.Entry {
	index := uint32(len(b.out))

	var e *block.Entry
	if int(index) < len(b.arena) {
		e = b.arena[index]
		e.Reset()
	} else {
		e = &block.Entry{}
	}
	e.Offset = offset
	e.Length = uint32(length)
	e.Index = index
	e.Other = block.NoRef
	e.Next = block.NoRef

	if doSketch {
		data := buf[offset : offset+length]
		words := sketch.WordsLE(data)
		k := sketch.KForLevel(level, len(words))
		if k > 0 {
			e.SimilarityHash = sketch.Hash(sketch.Select(words, k))
		}
	}

	b.out = append(b.out, e)
	return e
}

// LastBoundary scans only the tail of buf — the last MaxBlockSize bytes —
// to find where a rolling cut would fall, without emitting any blocks.
// It is the Go analog of dedupe_compress's rabin_pos != NULL mode, used
// when a caller needs to know where this chunk's final boundary sits
// before committing to splitting it off from a following chunk.
func LastBoundary(buf []byte, blkSz int) (uint64, bool) {
	if blkSz < 1 || blkSz > 5 {
		blkSz = params.BlkSzDefault
	}
	polytable.Init()

	size := uint64(len(buf))
	minBlk := uint64(params.MinBlockSize(blkSz))
	maxBlk := uint64(params.MaxBlockSize)

	if size <= maxBlk {
		return 0, false
	}

	var w window.Window
	var checksum uint64

	startOffset := size - maxBlk
	offset := startOffset
	length := uint64(0)
	lastOffset := startOffset
	found := false

	top := size - uint64(window.Size)
	i := offset
	for i < top {
		evicted := w.Push(buf[i])
		checksum = (checksum*polytable.RabPolynomialConst)&polytable.PolyMask + uint64(buf[i]) - polytable.OUT[evicted]
		length++

		if length < minBlk {
			i++
			continue
		}

		posChecksum := checksum ^ polytable.IR[evicted]
		if (posChecksum&params.BreakMask) == params.BreakPattern || length >= maxBlk {
			lastOffset = i + 1
			found = true
			length = 0
		}
		i++
	}

	return lastOffset, found
}
