package format

import (
	"fmt"

	"github.com/joshuapare/mahmkit/internal/buf"
)

// Entry is a decoded MAHM_SHARED_MEMORY_ENTRY. The text fields alias the
// view they were parsed from and are cut at their NUL terminator; they are
// only valid while that view stays mapped.
type Entry struct {
	SrcName           []byte
	SrcUnits          []byte
	LocalizedSrcName  []byte
	LocalizedSrcUnits []byte
	RecommendedFormat []byte

	Data     float32
	MinLimit float32
	MaxLimit float32

	Flags uint32
	GPU   uint32
	SrcID uint32
}

// ParseEntry decodes entry i at header_size + entry_size*i.
//
// The record is bounded by the declared stride: fields that start beyond
// entry_size decode as zero (v1.x entries have no gpu or src_id), and a text
// buffer cut short by the stride is read up to the stride.
func ParseEntry(view []byte, h Header, i uint32) (Entry, error) {
	rec, err := record(view, h.EntryCount, int(h.EntrySize), i, h.EntryOffset)
	if err != nil {
		return Entry{}, fmt.Errorf("mahm entry %d: %w", i, err)
	}
	return Entry{
		SrcName:           text(rec, EntrySrcNameOffset),
		SrcUnits:          text(rec, EntrySrcUnitsOffset),
		LocalizedSrcName:  text(rec, EntryLocalizedSrcNameOffset),
		LocalizedSrcUnits: text(rec, EntryLocalizedSrcUnitsOffset),
		RecommendedFormat: text(rec, EntryRecommendedFormatOffset),
		Data:              buf.F32LE(buf.Clamp(rec, EntryDataOffset, 4)),
		MinLimit:          buf.F32LE(buf.Clamp(rec, EntryMinLimitOffset, 4)),
		MaxLimit:          buf.F32LE(buf.Clamp(rec, EntryMaxLimitOffset, 4)),
		Flags:             buf.U32LE(buf.Clamp(rec, EntryFlagsOffset, 4)),
		GPU:               buf.U32LE(buf.Clamp(rec, EntryGPUOffset, 4)),
		SrcID:             buf.U32LE(buf.Clamp(rec, EntrySrcIDOffset, 4)),
	}, nil
}

// record returns the stride-sized sub-slice for element i of an array.
func record(view []byte, count uint32, stride int, i uint32, offset func(uint32) (int, bool)) ([]byte, error) {
	if i >= count {
		return nil, fmt.Errorf("%w: index %d >= count %d", ErrOutOfBounds, i, count)
	}
	off, ok := offset(i)
	if !ok {
		return nil, fmt.Errorf("%w: offset overflow", ErrOutOfBounds)
	}
	rec, ok := buf.Slice(view, off, stride)
	if !ok {
		return nil, fmt.Errorf("%w: [%d,+%d) exceeds view of %d bytes", ErrOutOfBounds, off, stride, len(view))
	}
	return rec, nil
}

func text(rec []byte, off int) []byte {
	return buf.CString(buf.Clamp(rec, off, TextCapacity))
}
