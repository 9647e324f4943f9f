// Package sketch implements the min-hash similarity fingerprint from
// spec.md §4.4: reinterpret a block as 64-bit little-endian words, select
// the K smallest via a bounded heap, then hash the selection.
//
// The bounded-heap selection is the classic partial-selection algorithm the
// original C source borrows from Python's heapq (its own comment: "min heap
// mechanism taken from the heap based priority queue implementation in
// Python"). Concretely, finding the K smallest of L values with a heap
// bounded to size K means keeping a max-heap of the K best candidates seen
// so far: the heap's root is always the worst (largest) of the retained K,
// so a new value only needs comparing against the root, and eviction is
// O(log K). container/heap (stdlib) is the idiomatic Go expression of that
// — no third-party k-smallest/heap package exists anywhere in the corpus
// this module was built against (see DESIGN.md).
package sketch

import (
	"container/heap"
	"encoding/binary"

	"github.com/dedupe-engine/rabin/internal/xhash"
)

// WordsLE reinterprets block as a slice of little-endian 64-bit signed
// integers. block's length must be a multiple of 8; any trailing partial
// word is ignored (callers only pass sketch-eligible blocks, which are
// always at least min_block_size and therefore far larger than 8 bytes).
func WordsLE(block []byte) []int64 {
	n := len(block) / 8
	words := make([]int64, n)
	for i := 0; i < n; i++ {
		words[i] = int64(binary.LittleEndian.Uint64(block[i*8:]))
	}
	return words
}

// Select returns the k smallest values of words, in unspecified order. If k
// is 0 or negative, it returns nil; if k exceeds len(words), all of words
// is returned (order unspecified, as a simple copy).
func Select(words []int64, k int) []int64 {
	if k <= 0 {
		return nil
	}
	if k >= len(words) {
		out := make([]int64, len(words))
		copy(out, words)
		return out
	}

	h := make(maxHeap, 0, k)
	for _, w := range words {
		if len(h) < k {
			heap.Push(&h, w)
			continue
		}
		if w < h[0] {
			h[0] = w
			heap.Fix(&h, 0)
		}
	}
	return []int64(h)
}

// KForLevel returns how many of a block's words the sketch should retain,
// given the block's delta level (1, 2 or 3) and its word count. The three
// fractions are rabin_dedup.c's DELTA_NORMAL_PCT, DELTA_EXTRA_PCT and
// DELTA_EXTRA2_PCT macros: 7/8, 5/8 and 1/2 of words respectively, computed
// with the same shift-and-add the C macros use rather than plain division.
func KForLevel(level int, words int) int {
	switch level {
	case 1:
		return (words >> 1) + (words >> 2) + (words >> 3)
	case 2:
		return (words >> 1) + (words >> 3)
	case 3:
		return words >> 1
	default:
		return 0
	}
}

// Hash serializes the selected words back to little-endian bytes and
// returns their 32-bit content hash — the block's similarity_hash.
func Hash(selected []int64) uint32 {
	buf := make([]byte, 8*len(selected))
	for i, v := range selected {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return xhash.Hash32(buf)
}

// maxHeap is a container/heap.Interface keyed so the root is always the
// largest element retained — the technique used to bound memory while
// selecting the K smallest of a larger stream.
type maxHeap []int64

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i] > h[j] }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(int64)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
