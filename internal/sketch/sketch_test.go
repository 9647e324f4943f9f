package sketch_test

import (
	"encoding/binary"
	"math/rand"
	"sort"
	"testing"

	"github.com/dedupe-engine/rabin/internal/sketch"
)

func TestSelectReturnsKSmallest(t *testing.T) {
	words := []int64{9, 3, 7, 1, 8, 2, 6, 4, 5, 0}

	got := sketch.Select(words, 4)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	want := []int64{0, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSelectKLargerThanInput(t *testing.T) {
	words := []int64{5, 1, 3}
	got := sketch.Select(words, 10)
	if len(got) != 3 {
		t.Fatalf("expected all 3 words back, got %d", len(got))
	}
}

func TestSelectZeroK(t *testing.T) {
	if got := sketch.Select([]int64{1, 2, 3}, 0); got != nil {
		t.Fatalf("expected nil for k=0, got %v", got)
	}
}

func TestWordsLERoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	rand.New(rand.NewSource(1)).Read(buf)

	words := sketch.WordsLE(buf)
	if len(words) != 4 {
		t.Fatalf("expected 4 words, got %d", len(words))
	}
	if uint64(words[0]) != binary.LittleEndian.Uint64(buf[0:8]) {
		t.Fatalf("word 0 did not round-trip")
	}
}

func TestHashDeterministic(t *testing.T) {
	selected := []int64{1, 2, 3}
	a := sketch.Hash(selected)
	b := sketch.Hash(selected)
	if a != b {
		t.Fatalf("expected deterministic hash")
	}
}
