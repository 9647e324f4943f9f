// Package dedupe implements the Dedup Indexer, Encoder and Decoder from
// spec.md §4.5-§4.7: exact and similar duplicate detection within a
// chunk, a self-describing byte-stream encoding of the result, and its
// inverse. It is grounded end-to-end on
// original_source/rabin/rabin_dedup.c's process_blocks, the two encoder
// stages and dedupe_decompress.
package dedupe

import (
	"github.com/dedupe-engine/rabin/internal/blockpool"
	"github.com/dedupe-engine/rabin/internal/debug"
	"github.com/dedupe-engine/rabin/internal/differ"
	"github.com/dedupe-engine/rabin/internal/errors"
	"github.com/dedupe-engine/rabin/internal/params"
	"github.com/dedupe-engine/rabin/internal/polytable"
)

// poolCapacity bounds how many distinct (chunkSize, blkSz) shapes a single
// Context's arena pool keeps spares for. A Context only ever reuses its own
// discarded arenas, and its shape never changes, so it uses one of them.
const poolCapacity = 2

// Params configures a Context, mirroring the arguments
// create_dedupe_context takes in the original source.
type Params struct {
	// BlkSz selects the block-size level in [1,5]; out-of-range values
	// are clamped to params.BlkSzDefault.
	BlkSz int

	// Fixed partitions chunks into equal-sized blocks instead of running
	// the rolling-fingerprint cut loop. Forces Delta to DeltaOff, since
	// fixed blocks are never sketched (spec.md §4.1/§4.3).
	Fixed bool

	// Delta selects similarity (partial-match) detection aggressiveness.
	Delta DeltaMode

	// Parallel enables bounded concurrent Stage A content hashing for
	// chunks with enough blocks to make fan-out worthwhile.
	Parallel bool

	// Differ applies binary diffs for Partial-classified blocks. Nil
	// defaults to differ.BSDiff{}.
	Differ differ.Differ
}

// Context holds one dedup session's configuration plus a small arena pool.
// Block state for any single Compress call lives on that call's stack,
// borrowed from pool and returned to it when the call finishes — a
// registered-at-creation reuse hint (spec.md §5), not the original's
// scratch-buffer slab allocator (see DESIGN.md).
type Context struct {
	blkSz  int
	fixed  bool
	delta  DeltaMode
	level  int
	mt     bool
	differ differ.Differ
	valid  bool

	chunkSize      uint64
	pool           *blockpool.Pool
	lastBlockCount int
}

// CreateContext validates params and returns a ready-to-use Context.
// chunkSize is a sizing hint only (it drives BufExtra and the pool shape);
// Compress accepts buffers of any size that clears the per-call minimum.
func CreateContext(chunkSize uint64, p Params) (*Context, error) {
	if chunkSize < params.MinChunkSize {
		return nil, errors.Fatalf("dedupe: chunk size %d below minimum %d", chunkSize, params.MinChunkSize)
	}

	blkSz := p.BlkSz
	if blkSz < 1 || blkSz > 5 {
		blkSz = params.BlkSzDefault
	}
	if chunkSize/uint64(params.MinBlockSize(blkSz)) > params.MaxBlocks {
		return nil, errors.Fatalf("dedupe: chunk size %d needs more than %d blocks", chunkSize, params.MaxBlocks)
	}

	delta := p.Delta
	if p.Fixed {
		delta = DeltaOff
	}

	level := 0
	if delta != DeltaOff {
		level = deriveLevel(delta, blkSz)
	}

	d := p.Differ
	if d == nil {
		d = differ.BSDiff{}
	}

	polytable.Init()

	debug.Log("dedupe: context created blkSz=%d fixed=%v delta=%d level=%d mt=%v", blkSz, p.Fixed, delta, level, p.Parallel)

	return &Context{
		blkSz:     blkSz,
		fixed:     p.Fixed,
		delta:     delta,
		level:     level,
		mt:        p.Parallel,
		differ:    d,
		valid:     true,
		chunkSize: chunkSize,
		pool:      blockpool.New(poolCapacity),
	}, nil
}

// Reset restores c to a fresh, reusable state without discarding its arena
// pool, satisfying the create/reset/destroy lifecycle spec.md §4.2
// describes. It is safe to call between Compress calls with different
// input buffers.
func (c *Context) Reset() {
	c.valid = true
}

// Close releases c. Present for symmetry with the original's
// destroy_dedupe_context and so callers can defer it unconditionally.
func (c *Context) Close() {
	c.valid = false
}

// Valid reports whether the most recent Compress call found deduplication
// worth emitting (spec.md §4.5's break-even check). It starts true on a
// fresh or Reset Context.
func (c *Context) Valid() bool {
	return c.valid
}

// BufExtra returns how many extra scratch bytes a caller should allocate
// alongside a chunkSize-byte buffer to give Compress room for its index
// table and bucket-hashtable scratch space, following
// dedupe_buf_extra's formula: one uint32-sized slot per minimum-sized
// block the chunk could contain.
func BufExtra(chunkSize uint64, blkSz int) uint64 {
	if blkSz < 1 || blkSz > 5 {
		blkSz = params.BlkSzDefault
	}
	minBlk := uint64(params.MinBlockSize(blkSz))
	return (chunkSize / minBlk) * params.EntrySize
}
