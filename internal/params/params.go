// Package params centralizes the compile-time tunables spec.md §6 names
// (RAB_BLK_MIN_BITS, RAB_POLYNOMIAL_MAX_BLOCK_SIZE, RABIN_ENTRY_SIZE, ...)
// so the chunker and the dedupe indexer/encoder/decoder agree on one
// definition of block-size bounds without importing each other.
//
// original_source/rabin/rabin_dedup.c includes a rabin_dedup.h that defines
// these constants' numeric values; only the .c file was retrieved into this
// module's reference pack (see original_source/_INDEX.md), so the exact
// values aren't available. The values below were chosen to satisfy every
// relationship the .c file states explicitly (minBlockSize formula, the
// delta_flag threshold comparisons against avgBlockSize, maxBlockSize
// bounding every BlkSz level's minBlockSize) and are recorded here, in one
// place, rather than guessed independently in each consuming package.
package params

const (
	// BlkSzDefault is used when a caller-supplied BlkSz is out of [1,5].
	BlkSzDefault = 3

	// minBits sets the granularity of MinBlockSize's doubling per BlkSz
	// step.
	minBits = 11

	// MaxBlockSize bounds every block this engine ever emits, non-fixed
	// mode or fixed. It must exceed MinBlockSize(5), the largest minimum
	// the BlkSz range can produce. 128 KiB matches the range
	// rabin_dedup.c's own top-of-file comment documents ("dedup blocks
	// can vary in size from 4K-128K").
	MaxBlockSize = 1 << 17 // 128 KiB

	// WindowSlideOffset is how many bytes before MinBlockSize the rolling
	// window starts priming, so the window is fully warmed by the time a
	// cut becomes eligible. Must be >= polytable.WindowSize.
	WindowSlideOffset = 64

	// MinChunkSize is the smallest buffer create_context will accept.
	MinChunkSize = 4096

	// MaxBlocks caps the number of blocks a single context will track, as
	// a sanity ceiling rather than a tuning knob.
	MaxBlocks = 1 << 20

	// EntrySize is the on-disk width, in bytes, of one index-table
	// entry (spec.md's RABIN_ENTRY_SIZE).
	EntrySize = 4

	// HeaderSize is the on-disk width, in bytes, of the fixed dedupe
	// header (spec.md §4.6): one uint32 block count plus four uint64
	// accounting fields.
	HeaderSize = 4 + 4*8
)

// MinBlockSize returns the smallest block this BlkSz level will ever cut,
// other than the final trailing remainder: (1 << (blkSz + minBits)) - 1024.
func MinBlockSize(blkSz int) uint32 {
	return uint32(1<<(blkSz+minBits)) - 1024
}

// AvgBlockSize returns the nominal average block size this BlkSz level is
// documented to target. It gates dedupe_compress's short-circuit ("buffer
// smaller than one average block: nothing to do") and feeds the delta_flag
// derivation table; it is NOT the mask that actually drives cut
// probability (see BreakMask) — the original keeps those independent.
func AvgBlockSize(blkSz int) uint32 {
	return 1 << (blkSz + 12)
}

// BreakMask is the fixed bitmask applied to the rolling checksum to decide
// whether a candidate position is a cut point, independent of BlkSz.
// Expected run length before a random match is BreakMask+1 bytes.
const BreakMask = 0x1FFF

// BreakPattern is the value the masked checksum must equal for a cut.
const BreakPattern = 0
