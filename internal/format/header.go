package format

import (
	"fmt"

	"github.com/joshuapare/mahmkit/internal/buf"
)

// Header is the decoded MAHM_SHARED_MEMORY_HEADER.
type Header struct {
	Signature     uint32
	Version       uint32
	HeaderSize    uint32
	EntryCount    uint32
	EntrySize     uint32
	Time          int32
	GPUEntryCount uint32
	GPUEntrySize  uint32
}

// ParseHeader validates the signature and extracts the header at offset 0.
//
// The dead sentinel is reported as ErrDead before any other field is read;
// any other unexpected tag yields a *SignatureError. GPU array descriptors
// are read only when the declared header size covers them, so v1.x layouts
// decode with zero GPU entries.
func ParseHeader(b []byte) (Header, error) {
	sig, ok := buf.U32At(b, HeaderSignatureOffset)
	if !ok {
		return Header{}, fmt.Errorf("mahm header: %w", ErrTruncated)
	}
	switch sig {
	case Signature:
	case DeadSignature:
		return Header{}, ErrDead
	default:
		return Header{}, &SignatureError{Observed: sig}
	}

	fixed, ok := buf.Slice(b, 0, HeaderMinSize)
	if !ok {
		return Header{}, fmt.Errorf("mahm header: %w", ErrTruncated)
	}
	h := Header{
		Signature:  sig,
		Version:    buf.U32LE(fixed[HeaderVersionOffset:]),
		HeaderSize: buf.U32LE(fixed[HeaderSizeOffset:]),
		EntryCount: buf.U32LE(fixed[HeaderEntryCountOffset:]),
		EntrySize:  buf.U32LE(fixed[HeaderEntrySizeOffset:]),
		Time:       buf.I32LE(fixed[HeaderTimeOffset:]),
	}
	if h.HeaderSize >= HeaderSize {
		if ext, ok := buf.Slice(b, HeaderGPUEntryCountOffset, 8); ok {
			h.GPUEntryCount = buf.U32LE(ext)
			h.GPUEntrySize = buf.U32LE(ext[4:])
		}
	}
	return h, nil
}

// Major returns the high 16 bits of the version.
func (h Header) Major() uint32 { return h.Version >> 16 }

// Minor returns the low 16 bits of the version.
func (h Header) Minor() uint32 { return h.Version & 0xFFFF }

// EntryOffset returns header_size + entry_size*i. ok is false on overflow.
func (h Header) EntryOffset(i uint32) (int, bool) {
	return buf.StrideOffset(int(h.HeaderSize), int(h.EntrySize), int(i))
}

// GPUArrayOffset returns the offset of the GPU entry array, which follows
// the entry array.
func (h Header) GPUArrayOffset() (int, bool) {
	return h.EntryOffset(h.EntryCount)
}

// GPUEntryOffset returns the offset of the i-th GPU entry.
func (h Header) GPUEntryOffset(i uint32) (int, bool) {
	base, ok := h.GPUArrayOffset()
	if !ok {
		return 0, false
	}
	return buf.StrideOffset(base, int(h.GPUEntrySize), int(i))
}

// CheckEntries verifies that both record arrays declared by h lie within a
// view of viewLen bytes. A non-empty array whose stride is shorter than the
// smallest known record is rejected, since its records would overlap.
func CheckEntries(viewLen int, h Header) error {
	if h.EntryCount > 0 && h.EntrySize < EntryMinSize {
		return fmt.Errorf("mahm entries: %w: entry size %d < %d", ErrOutOfBounds, h.EntrySize, EntryMinSize)
	}
	if h.GPUEntryCount > 0 && h.GPUEntrySize < GPUEntryMinSize {
		return fmt.Errorf("mahm gpu entries: %w: gpu entry size %d < %d", ErrOutOfBounds, h.GPUEntrySize, GPUEntryMinSize)
	}
	end, err := buf.CheckListBounds(viewLen, int(h.HeaderSize), int(h.EntryCount), int(h.EntrySize))
	if err != nil {
		return fmt.Errorf("mahm entries: %w: %v", ErrOutOfBounds, err)
	}
	if h.GPUEntryCount == 0 {
		return nil
	}
	if _, err := buf.CheckListBounds(viewLen, end, int(h.GPUEntryCount), int(h.GPUEntrySize)); err != nil {
		return fmt.Errorf("mahm gpu entries: %w: %v", ErrOutOfBounds, err)
	}
	return nil
}
