package dedupe

import "github.com/dedupe-engine/rabin/internal/params"

// DeltaMode selects whether, and how aggressively, similar (non-identical)
// blocks are sketched and binary-diffed against earlier blocks (spec.md
// §4.4's similarity detection).
type DeltaMode uint8

const (
	// DeltaOff disables similarity sketching entirely: only byte-exact
	// duplicates are detected.
	DeltaOff DeltaMode = iota

	// DeltaNormal derives the sketch aggressiveness level from the
	// context's average block size (deriveLevel below).
	DeltaNormal

	// DeltaExtra forces level 2 regardless of average block size,
	// matching rabin_dedup.c's hard-forced DELTA_EXTRA handling.
	DeltaExtra
)

// deriveLevel computes which of the three retained-word fractions
// (sketch.KForLevel's levels 1, 2, 3 — informally "normal", "extra" and
// "extra2" in the original source) governs sketching for this context.
// Fixed mode never sketches, so its delta mode is forced off by the
// caller before this is consulted.
func deriveLevel(mode DeltaMode, blkSz int) int {
	if mode == DeltaExtra {
		return 2
	}

	avg := params.AvgBlockSize(blkSz)
	switch {
	case avg < 16*1024:
		return 1
	case avg < 64*1024:
		return 2
	default:
		return 3
	}
}
