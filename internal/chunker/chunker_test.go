package chunker_test

import (
	"math/rand"
	"testing"

	"github.com/dedupe-engine/rabin/internal/chunker"
	"github.com/dedupe-engine/rabin/internal/params"
)

func randomBuf(n int, seed int64) []byte {
	buf := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(buf)
	return buf
}

func TestChunkPartitionsWholeBuffer(t *testing.T) {
	buf := randomBuf(400*1024, 1)
	entries := chunker.Chunk(buf, chunker.Options{BlkSz: 3})
	if len(entries) == 0 {
		t.Fatalf("expected at least one block")
	}

	var cursor uint64
	for i, e := range entries {
		if e.Offset != cursor {
			t.Fatalf("block %d: offset %d != expected cursor %d", i, e.Offset, cursor)
		}
		if e.Index != uint32(i) {
			t.Fatalf("block %d: index %d != position %d", i, e.Index, i)
		}
		cursor += uint64(e.Length)
	}
	if cursor != uint64(len(buf)) {
		t.Fatalf("blocks cover %d bytes, want %d", cursor, len(buf))
	}
}

func TestChunkRespectsMinMaxExceptTrailing(t *testing.T) {
	buf := randomBuf(1024*1024, 2)
	entries := chunker.Chunk(buf, chunker.Options{BlkSz: 2})

	min := params.MinBlockSize(2)
	max := uint32(params.MaxBlockSize)
	for i, e := range entries {
		last := i == len(entries)-1
		if e.Length > max {
			t.Fatalf("block %d length %d exceeds max %d", i, e.Length, max)
		}
		if !last && e.Length < min {
			t.Fatalf("non-trailing block %d length %d under min %d", i, e.Length, min)
		}
	}
}

func TestChunkBelowAverageReturnsNil(t *testing.T) {
	avg := params.AvgBlockSize(3)
	buf := randomBuf(int(avg)-1, 3)
	entries := chunker.Chunk(buf, chunker.Options{BlkSz: 3})
	if entries != nil {
		t.Fatalf("expected nil for undersized buffer, got %d entries", len(entries))
	}
}

func TestChunkDeterministic(t *testing.T) {
	buf := randomBuf(256*1024, 4)
	a := chunker.Chunk(buf, chunker.Options{BlkSz: 3})
	b := chunker.Chunk(buf, chunker.Options{BlkSz: 3})

	if len(a) != len(b) {
		t.Fatalf("chunking same buffer twice gave different block counts: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Offset != b[i].Offset || a[i].Length != b[i].Length || a[i].Hash != b[i].Hash {
			t.Fatalf("block %d differs between runs", i)
		}
	}
}

func TestChunkFixedModeEqualSizes(t *testing.T) {
	avg := params.AvgBlockSize(3)
	buf := randomBuf(int(avg)*5, 5)
	entries := chunker.Chunk(buf, chunker.Options{BlkSz: 3, Fixed: true})
	if len(entries) != 5 {
		t.Fatalf("expected 5 fixed blocks, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Length != avg {
			t.Fatalf("fixed block %d length %d != avg %d", i, e.Length, avg)
		}
		if e.SimilarityHash != 0 {
			t.Fatalf("fixed block %d should not be sketched by the chunker, got similarity hash %d", i, e.SimilarityHash)
		}
	}
}

func TestChunkFixedModeRemainderGoesToLastBlock(t *testing.T) {
	avg := params.AvgBlockSize(3)
	extra := uint32(777)
	buf := randomBuf(int(avg)*3+int(extra), 6)
	entries := chunker.Chunk(buf, chunker.Options{BlkSz: 3, Fixed: true})
	if len(entries) != 4 {
		t.Fatalf("expected 3 full fixed blocks plus a tail, got %d", len(entries))
	}
	if entries[3].Length != extra {
		t.Fatalf("last block should hold only the remainder: got %d, want %d", entries[3].Length, extra)
	}
}

func TestLastBoundaryOnShortBufferIsNotFound(t *testing.T) {
	buf := randomBuf(1024, 7)
	if _, ok := chunker.LastBoundary(buf, 3); ok {
		t.Fatalf("expected no boundary on a buffer shorter than MaxBlockSize")
	}
}

func TestLastBoundaryFindsCutWithinTail(t *testing.T) {
	buf := randomBuf(int(params.MaxBlockSize)*2, 8)
	pos, ok := chunker.LastBoundary(buf, 3)
	if !ok {
		t.Fatalf("expected a boundary in a buffer well beyond MaxBlockSize")
	}
	if pos == 0 || pos >= uint64(len(buf)) {
		t.Fatalf("boundary %d out of sane range for buffer of length %d", pos, len(buf))
	}
}
