package dedupe

import (
	"encoding/binary"

	"github.com/dedupe-engine/rabin/internal/errors"
	"github.com/dedupe-engine/rabin/internal/params"
)

// Index-entry flag bits (spec.md §6). Each of a chunk's index-table slots
// is one big-endian uint32; its top two bits classify the slot, its low 30
// bits carry either a raw length or a referenced block index.
const (
	RefFlag   uint32 = 0x80000000
	SimFlag   uint32 = 0x40000000
	IndexMask uint32 = 0x3FFFFFFF
)

// Header is the fixed-size preamble written ahead of a chunk's index
// table: a block count plus four accounting fields, all big-endian,
// following rabin_dedup.c's dedupe header layout byte-for-byte in meaning
// (its actual C struct packs these as network-order integers written with
// explicit htonl/ntohl calls; encoding/binary.BigEndian is the idiomatic
// Go equivalent restic's own internal/pack package uses for its own
// fixed-width binary headers).
type Header struct {
	// BlkNum is the number of index-table entries following the header,
	// after Encoder's Stage A unique-run merge — not the raw chunker
	// block count.
	BlkNum uint32

	// OriginalSize is the size, in bytes, of the buffer Compress was
	// given.
	OriginalSize uint64

	// IndexSizeCompressed is the size of the index table after an
	// external compressor runs over it (0 until UpdateHeader is called;
	// compressing the index itself is this engine's own non-goal).
	IndexSizeCompressed uint64

	// DedupedSize is the size, in bytes, of the data segment Compress
	// produced (raw copies plus diffs, post-dedup, pre any outer
	// compression).
	DedupedSize uint64

	// DataSizeCompressed is the size of the data segment after an
	// external compressor runs over it (0 until UpdateHeader is called).
	DataSizeCompressed uint64
}

// EncodeHeader serializes h into a params.HeaderSize-byte buffer.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, params.HeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], h.BlkNum)
	binary.BigEndian.PutUint64(buf[4:12], h.OriginalSize)
	binary.BigEndian.PutUint64(buf[12:20], h.IndexSizeCompressed)
	binary.BigEndian.PutUint64(buf[20:28], h.DedupedSize)
	binary.BigEndian.PutUint64(buf[28:36], h.DataSizeCompressed)
	return buf
}

// ParseHeader reads a Header back out of the front of buf.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < params.HeaderSize {
		return Header{}, errors.Errorf("dedupe: header truncated: need %d bytes, have %d", params.HeaderSize, len(buf))
	}
	return Header{
		BlkNum:              binary.BigEndian.Uint32(buf[0:4]),
		OriginalSize:        binary.BigEndian.Uint64(buf[4:12]),
		IndexSizeCompressed: binary.BigEndian.Uint64(buf[12:20]),
		DedupedSize:         binary.BigEndian.Uint64(buf[20:28]),
		DataSizeCompressed:  binary.BigEndian.Uint64(buf[28:36]),
	}, nil
}

// UpdateHeader patches a previously encoded header in place with the
// sizes an external compressor produced for the index table and data
// segment — the Go analog of rabin_dedup.c's update_dedupe_hdr, called
// after this engine's own Compress output is itself compressed by an
// outer stage (this module's own non-goal; it only knows how to patch the
// header fields that stage needs to fill in).
func UpdateHeader(buf []byte, indexSizeCompressed, dataSizeCompressed uint64) error {
	if len(buf) < params.HeaderSize {
		return errors.Errorf("dedupe: header truncated: need %d bytes, have %d", params.HeaderSize, len(buf))
	}
	binary.BigEndian.PutUint64(buf[12:20], indexSizeCompressed)
	binary.BigEndian.PutUint64(buf[28:36], dataSizeCompressed)
	return nil
}

// IndexTableSize returns the on-disk size, in bytes, of a BlkNum-entry
// index table.
func (h Header) IndexTableSize() uint64 {
	return uint64(h.BlkNum) * params.EntrySize
}
