package xhash_test

import (
	"testing"

	"github.com/dedupe-engine/rabin/internal/xhash"
)

func TestHash32Deterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	a := xhash.Hash32(data)
	b := xhash.Hash32(data)
	if a != b {
		t.Fatalf("Hash32 not deterministic: %x != %x", a, b)
	}
}

func TestHash32DiffersOnChange(t *testing.T) {
	a := xhash.Hash32([]byte("block-a"))
	b := xhash.Hash32([]byte("block-b"))
	if a == b {
		t.Fatalf("expected different hashes for different content")
	}
}
