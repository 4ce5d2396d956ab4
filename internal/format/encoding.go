package format

import (
	"encoding/binary"
	"math"
)

// Little-endian writers used to synthesize segment images for fixtures and
// replay files. Nothing in this module writes to a live segment.

// PutU32 writes v at off.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutI32 writes v at off.
func PutI32(b []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(b[off:off+4], uint32(v))
}

// PutF32 writes v at off.
func PutF32(b []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(b[off:off+4], math.Float32bits(v))
}

// PutText copies s into the TextCapacity buffer at off, NUL-padding the
// remainder. Text longer than the buffer fills it without a terminator.
func PutText(b []byte, off int, s string) {
	field := b[off : off+TextCapacity]
	n := copy(field, s)
	clear(field[n:])
}

// PutHeader encodes h at offset 0 of b using the v2.0 layout.
func PutHeader(b []byte, h Header) {
	PutU32(b, HeaderSignatureOffset, h.Signature)
	PutU32(b, HeaderVersionOffset, h.Version)
	PutU32(b, HeaderSizeOffset, h.HeaderSize)
	PutU32(b, HeaderEntryCountOffset, h.EntryCount)
	PutU32(b, HeaderEntrySizeOffset, h.EntrySize)
	PutI32(b, HeaderTimeOffset, h.Time)
	if len(b) >= HeaderSize {
		PutU32(b, HeaderGPUEntryCountOffset, h.GPUEntryCount)
		PutU32(b, HeaderGPUEntrySizeOffset, h.GPUEntrySize)
	}
}
