// Package rabin is a thin, stable facade over internal/dedupe (spec.md
// §6.1): it re-exports the content-defined-chunking dedup engine's public
// surface under one import path, the way cmd/restic depends on restic's
// internal/... packages through a narrow, stable boundary rather than
// reaching into them directly.
package rabin

import "github.com/dedupe-engine/rabin/internal/dedupe"

// DeltaMode selects whether, and how aggressively, similar blocks are
// sketched and binary-diffed against earlier blocks.
type DeltaMode = dedupe.DeltaMode

const (
	DeltaOff    = dedupe.DeltaOff
	DeltaNormal = dedupe.DeltaNormal
	DeltaExtra  = dedupe.DeltaExtra
)

// Params configures a Context. See internal/dedupe.Params for field docs.
type Params = dedupe.Params

// Header is the fixed-size preamble written ahead of a chunk's index
// table. See internal/dedupe.Header for field docs.
type Header = dedupe.Header

// Index-entry flag bits, re-exported for callers that want to inspect an
// encoded stream's index table directly.
const (
	RefFlag   = dedupe.RefFlag
	SimFlag   = dedupe.SimFlag
	IndexMask = dedupe.IndexMask
)

// Context holds one dedup session's configuration and arena pool.
type Context = dedupe.Context

// CreateContext validates params and returns a ready-to-use Context sized
// for chunks around chunkSize bytes.
func CreateContext(chunkSize uint64, p Params) (*Context, error) {
	return dedupe.CreateContext(chunkSize, p)
}

// BufExtra returns how many extra scratch bytes a caller should allocate
// alongside a chunkSize-byte buffer to give Compress room for its index
// table.
func BufExtra(chunkSize uint64, blkSz int) uint64 {
	return dedupe.BufExtra(chunkSize, blkSz)
}

// EncodeHeader serializes h into a fixed-size header buffer.
func EncodeHeader(h Header) []byte {
	return dedupe.EncodeHeader(h)
}

// ParseHeader reads a Header back out of the front of buf.
func ParseHeader(buf []byte) (Header, error) {
	return dedupe.ParseHeader(buf)
}

// UpdateHeader patches a previously encoded header in place with the sizes
// an external compressor produced for the index table and data segment.
func UpdateHeader(buf []byte, indexSizeCompressed, dataSizeCompressed uint64) error {
	return dedupe.UpdateHeader(buf, indexSizeCompressed, dataSizeCompressed)
}
