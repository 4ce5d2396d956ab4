package format

import (
	"fmt"

	"github.com/joshuapare/mahmkit/internal/buf"
)

// GPUEntry is a decoded MAHM_SHARED_MEMORY_GPU_ENTRY. Like Entry, its text
// fields alias the view.
type GPUEntry struct {
	ID     []byte
	Family []byte
	Device []byte
	Driver []byte
	BIOS   []byte

	// MemAmount is the on-board memory in KiB.
	MemAmount uint32
}

// ParseGPUEntry decodes GPU entry i, which follows the entry array.
func ParseGPUEntry(view []byte, h Header, i uint32) (GPUEntry, error) {
	rec, err := record(view, h.GPUEntryCount, int(h.GPUEntrySize), i, h.GPUEntryOffset)
	if err != nil {
		return GPUEntry{}, fmt.Errorf("mahm gpu entry %d: %w", i, err)
	}
	return GPUEntry{
		ID:        text(rec, GPUEntryIDOffset),
		Family:    text(rec, GPUEntryFamilyOffset),
		Device:    text(rec, GPUEntryDeviceOffset),
		Driver:    text(rec, GPUEntryDriverOffset),
		BIOS:      text(rec, GPUEntryBIOSOffset),
		MemAmount: buf.U32LE(buf.Clamp(rec, GPUEntryMemAmountOffset, 4)),
	}, nil
}
