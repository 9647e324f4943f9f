// Package polytable precomputes the two lookup tables the rolling Rabin
// fingerprint in internal/chunker depends on: OUT (the contribution to
// remove when a byte leaves the window) and IR (the evaluation of the
// fixed irreducible polynomial at a byte value). Both tables are
// process-wide, computed once, and read-only afterwards — ported from
// rabin_dedup.c's pthread_mutex-guarded `inited` flag using sync.Once,
// the idiomatic Go equivalent.
package polytable

import "sync"

const (
	// RabPolynomialConst is the fixed odd multiplier used to build the
	// rolling fingerprint (rabin_dedup.c: RAB_POLYNOMIAL_CONST).
	RabPolynomialConst uint64 = 153191

	// PolyMask keeps the fingerprint within the low 63 bits
	// (rabin_dedup.c: POLY_MASK).
	PolyMask uint64 = 0x7FFFFFFFFFFFFFFF

	// FPPoly is the fixed irreducible polynomial evaluated per byte
	// (rabin_dedup.c: FP_POLY).
	FPPoly uint64 = 0xbfe6b8a5bf378d83

	// WindowSize is the number of bytes the rolling window covers
	// (rabin_dedup.c: RAB_POLYNOMIAL_WIN_SIZE). Must stay a power of two
	// in [4, 64] per spec.md's invariants.
	WindowSize = 16
)

var (
	once sync.Once

	// OUT[b] is the contribution removed from the fingerprint when byte
	// b slides out of the window.
	OUT [256]uint64

	// IR[b] is the scalar evaluation of FPPoly at byte value b over the
	// first WindowSize bit positions.
	IR [256]uint64
)

// Init computes OUT and IR exactly once per process. Subsequent calls are
// no-ops, matching rabin_dedup.c's "Re-initialization is a no-op" contract.
func Init() {
	once.Do(compute)
}

func compute() {
	var polyPow uint64 = 1
	for i := 0; i < WindowSize; i++ {
		polyPow = (polyPow * RabPolynomialConst) & PolyMask
	}

	for b := 0; b < 256; b++ {
		OUT[b] = (uint64(b) * polyPow) & PolyMask

		var (
			term uint64 = 1
			pow  uint64 = 1
			val  uint64 = 1
		)
		for i := 0; i < WindowSize; i++ {
			if term&FPPoly != 0 {
				val += (pow * uint64(b)) & PolyMask
			}
			pow = (pow * RabPolynomialConst) & PolyMask
			term <<= 1
		}
		IR[b] = val
	}
}
