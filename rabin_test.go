package rabin_test

import (
	"bytes"
	"testing"

	"github.com/dedupe-engine/rabin"
)

func TestFacadeRoundTrip(t *testing.T) {
	half := make([]byte, 128*1024)
	for i := range half {
		half[i] = byte(i)
	}
	buf := append(append([]byte{}, half...), half...)

	ctx, err := rabin.CreateContext(uint64(len(buf)), rabin.Params{BlkSz: 2})
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}

	out, ok, err := ctx.Compress(buf)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !ok {
		t.Fatalf("expected concatenated duplicate halves to dedup successfully")
	}

	roundTripped, err := ctx.Decompress(out)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(roundTripped, buf) {
		t.Fatalf("facade round-trip mismatch")
	}
}

func TestFacadeBufExtra(t *testing.T) {
	if rabin.BufExtra(1<<20, 3) == 0 {
		t.Fatalf("expected a nonzero scratch-space hint")
	}
}
