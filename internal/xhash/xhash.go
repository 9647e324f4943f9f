// Package xhash provides the 32-bit non-cryptographic content hash used
// throughout the dedupe engine for block content hashes and similarity
// sketch hashes.
package xhash

import "github.com/cespare/xxhash/v2"

// Hash32 returns a 32-bit non-cryptographic hash of data, folded down from
// xxhash's 64-bit digest. See DESIGN.md for why this replaces the original
// XXH32: no 32-bit xxHash implementation is vendored anywhere the engine
// can reuse, and xxhash/v2's 64-bit digest keeps the same avalanche
// properties the engine depends on for dedup/similarity bucketing.
func Hash32(data []byte) uint32 {
	h := xxhash.Sum64(data)
	return uint32(h) ^ uint32(h>>32)
}
