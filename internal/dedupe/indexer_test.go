package dedupe

import (
	"testing"

	"github.com/dedupe-engine/rabin/internal/block"
	"github.com/dedupe-engine/rabin/internal/sketch"
)

// sketchedEntry builds a block.Entry spanning buf[offset:offset+length]
// with its similarity hash already computed at the given sketch level,
// bypassing internal/chunker so the test controls block boundaries
// exactly.
func sketchedEntry(buf []byte, offset uint64, length uint32, index uint32, level int) *block.Entry {
	e := &block.Entry{Offset: offset, Length: length, Index: index, Other: block.NoRef, Next: block.NoRef}
	data := buf[offset : offset+uint64(length)]
	words := sketch.WordsLE(data)
	k := sketch.KForLevel(level, len(words))
	e.SimilarityHash = sketch.Hash(sketch.Select(words, k))
	return e
}

// Scenario 3 (spec.md §8): two blocks that share almost all of their
// content but differ in one trailing word classify as Partial, not Exact,
// once they're far enough apart to pass the distance check. Each block is
// 1024 words (8192 bytes): the first 1023 words are zero and the last
// differs, which a min-hash sketch keeping fewer than 1023 of the
// smallest words never selects, so both blocks sketch identically despite
// their raw bytes differing.
func TestStageBClassifiesDistantNearDuplicateAsPartial(t *testing.T) {
	const blkLen = 8192
	buf := make([]byte, 3*blkLen)
	buf[blkLen-8] = 0x01   // block 0's distinguishing trailing word
	buf[2*blkLen-8] = 0xAA // block 1: unrelated filler, must not collide
	for i := 1; i < 8; i++ {
		buf[2*blkLen-8+i] = 0xAA
	}
	buf[3*blkLen-8] = 0x02 // block 2's distinguishing trailing word

	const level = 1
	blocks := []*block.Entry{
		sketchedEntry(buf, 0, blkLen, 0, level),
		sketchedEntry(buf, blkLen, blkLen, 1, level),
		sketchedEntry(buf, 2*blkLen, blkLen, 2, level),
	}

	ctx := &Context{blkSz: 1, delta: DeltaNormal, level: level}
	if err := ctx.stageA(buf, blocks); err != nil {
		t.Fatalf("stageA: %v", err)
	}
	matchLen := ctx.stageB(buf, blocks)

	if blocks[2].Similar != block.Partial {
		t.Fatalf("expected block 2 to classify as Partial, got %v", blocks[2].Similar)
	}
	if blocks[2].Other != 0 {
		t.Fatalf("expected block 2 to reference block 0, got %d", blocks[2].Other)
	}
	if blocks[2].Other >= int32(blocks[2].Index) {
		t.Fatalf("acyclic reference invariant violated: block %d references non-earlier block %d", blocks[2].Index, blocks[2].Other)
	}
	if blocks[0].Similar != block.Ref {
		t.Fatalf("expected block 0 to be marked Ref once referenced, got %v", blocks[0].Similar)
	}
	if matchLen != blkLen/2 {
		t.Fatalf("expected matchLen %d for one partial match, got %d", blkLen/2, matchLen)
	}
}

// The distance invariant: two blocks with an identical sketch but an
// offset gap at or below deltacMinDistance must never classify as
// Partial, however similar their content looks.
func TestStageBRejectsNearDuplicateWithinMinDistance(t *testing.T) {
	const blkLen = 256
	const gap = 500 // well under deltacMinDistance (1024)
	buf := make([]byte, gap+blkLen)
	buf[blkLen-8] = 0x01
	buf[gap+blkLen-8] = 0x02

	const level = 1
	blocks := []*block.Entry{
		sketchedEntry(buf, 0, blkLen, 0, level),
		sketchedEntry(buf, gap, blkLen, 1, level),
	}

	ctx := &Context{blkSz: 1, delta: DeltaNormal, level: level}
	if err := ctx.stageA(buf, blocks); err != nil {
		t.Fatalf("stageA: %v", err)
	}
	matchLen := ctx.stageB(buf, blocks)

	if blocks[1].Similar != block.None {
		t.Fatalf("expected too-close near-duplicate to stay unclassified, got %v", blocks[1].Similar)
	}
	if blocks[1].Other != block.NoRef {
		t.Fatalf("expected no reference to be recorded, got %d", blocks[1].Other)
	}
	if matchLen != 0 {
		t.Fatalf("expected no matched bytes, got %d", matchLen)
	}
}
