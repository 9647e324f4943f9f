// Package window implements the fixed-size sliding byte window the rolling
// fingerprint in internal/chunker pushes bytes through. It is the scalar
// circular-array implementation from rabin_dedup.c's non-SSE branch — the
// only window implementation this module ships, since a 128-bit SIMD
// register has no portable expression in pure Go (see DESIGN.md).
package window

// Size is the number of bytes held in the window. It must stay in sync
// with polytable.WindowSize (both derive from the same compile-time
// constant in the original C source) and must be a power of two.
const Size = 16

// Window is a fixed-size circular byte buffer: Push(b) inserts b and
// returns the byte that falls out the other end. The zero value is a
// window of all zero bytes, ready to use.
type Window struct {
	buf [Size]byte
	pos int
}

// Reset clears the window back to all zero bytes, as required between
// chunks (spec.md §4.2: "Must be reset between chunks").
func (w *Window) Reset() {
	w.buf = [Size]byte{}
	w.pos = 0
}

// Push inserts b into the window and returns the evicted byte.
func (w *Window) Push(b byte) (evicted byte) {
	evicted = w.buf[w.pos]
	w.buf[w.pos] = b
	w.pos = (w.pos + 1) & (Size - 1)
	return evicted
}
