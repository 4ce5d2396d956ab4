package monitor

import (
	"errors"

	"golang.org/x/text/encoding"

	"github.com/joshuapare/mahmkit/internal/format"
	"github.com/joshuapare/mahmkit/internal/shm"
	"github.com/joshuapare/mahmkit/pkg/types"
)

func convertHeader(h format.Header) types.Header {
	return types.Header{
		Signature:     types.Signature(h.Signature),
		Version:       types.Version(h.Version),
		HeaderSize:    h.HeaderSize,
		EntryCount:    h.EntryCount,
		EntrySize:     h.EntrySize,
		GPUEntryCount: h.GPUEntryCount,
		GPUEntrySize:  h.GPUEntrySize,
		Time:          format.Unix32ToTime(h.Time),
	}
}

// convertEntry copies a raw entry out of the mapping.
func convertEntry(e format.Entry, enc encoding.Encoding) types.Entry {
	return types.Entry{
		SrcName:           format.DecodeText(e.SrcName, enc),
		SrcUnits:          format.DecodeText(e.SrcUnits, enc),
		LocalizedSrcName:  format.DecodeText(e.LocalizedSrcName, enc),
		LocalizedSrcUnits: format.DecodeText(e.LocalizedSrcUnits, enc),
		RecommendedFormat: format.DecodeText(e.RecommendedFormat, enc),
		Data:              e.Data,
		MinLimit:          e.MinLimit,
		MaxLimit:          e.MaxLimit,
		Flags:             types.EntryFlags(e.Flags),
		GPU:               e.GPU,
		SrcID:             e.SrcID,
	}
}

func convertGPU(g format.GPUEntry, enc encoding.Encoding) types.GPUEntry {
	return types.GPUEntry{
		ID:        format.DecodeText(g.ID, enc),
		Family:    format.DecodeText(g.Family, enc),
		Device:    format.DecodeText(g.Device, enc),
		Driver:    format.DecodeText(g.Driver, enc),
		BIOS:      format.DecodeText(g.BIOS, enc),
		MemAmount: g.MemAmount,
	}
}

// classifySegment maps shm errors onto the public taxonomy.
func classifySegment(err error) error {
	switch {
	case errors.Is(err, shm.ErrNotFound):
		return types.Wrap(types.ErrKindSegmentNotFound, "shared memory segment not found", err)
	case errors.Is(err, shm.ErrAccessDenied):
		return types.Wrap(types.ErrKindAccessDenied, "shared memory access denied", err)
	case errors.Is(err, shm.ErrMapFailed):
		return types.Wrap(types.ErrKindSegmentMapFailed, "shared memory map failed", err)
	case errors.Is(err, shm.ErrUnsupported):
		return types.Wrap(types.ErrKindUnsupported, "unsupported platform", err)
	default:
		return types.Wrap(types.ErrKindOS, "os error", err)
	}
}

// classifyDecode maps format errors onto the public taxonomy.
func classifyDecode(err error) error {
	var sigErr *format.SignatureError
	switch {
	case errors.As(err, &sigErr):
		return &types.Error{
			Kind:     types.ErrKindBadSignature,
			Msg:      "invalid signature",
			Observed: sigErr.Observed,
			Err:      err,
		}
	case errors.Is(err, format.ErrDead):
		return types.Wrap(types.ErrKindHeaderDead, "shared memory dead", err)
	case errors.Is(err, format.ErrTruncated), errors.Is(err, format.ErrOutOfBounds):
		return types.Wrap(types.ErrKindOutOfBounds, "record out of bounds", err)
	default:
		return types.Wrap(types.ErrKindOS, "decode failed", err)
	}
}
