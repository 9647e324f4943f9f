package differ_test

import (
	"encoding/binary"
	"testing"

	"github.com/dedupe-engine/rabin/internal/differ"
)

func TestPatchedSizeParsesHeader(t *testing.T) {
	header := make([]byte, 32)
	copy(header, "BSDIFF40")
	binary.LittleEndian.PutUint64(header[24:32], 1234)

	var d differ.BSDiff
	size, err := d.PatchedSize(header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 1234 {
		t.Fatalf("expected size 1234, got %d", size)
	}
}

func TestPatchedSizeRejectsBadMagic(t *testing.T) {
	var d differ.BSDiff
	if _, err := d.PatchedSize(make([]byte, 32)); err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

func TestPatchedSizeRejectsShortBuffer(t *testing.T) {
	var d differ.BSDiff
	if _, err := d.PatchedSize([]byte("short")); err == nil {
		t.Fatalf("expected error for short buffer")
	}
}
