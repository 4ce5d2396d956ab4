package ffi

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#define MAHM_NO_PROTOTYPES
#include "mahm.h"
*/
import "C"

import "unsafe"

// Readers for the C records a monitor exports, for Go-side checks of the
// boundary. They copy; nothing returned aliases C memory.

// HeaderRecord mirrors mahm_header.
type HeaderRecord struct {
	Signature     string
	Version       string
	HeaderSize    uint32
	EntryCount    uint32
	EntrySize     uint32
	GPUEntryCount uint32
	GPUEntrySize  uint32
	Time          int64
}

// EntryRecord mirrors mahm_entry.
type EntryRecord struct {
	SrcName           string
	SrcUnits          string
	LocalizedSrcName  string
	LocalizedSrcUnits string
	RecommendedFormat string
	Data              float32
	MinLimit          float32
	MaxLimit          float32
	Flags             uint32
	GPU               uint32
	SrcID             uint32
}

// GPURecord mirrors mahm_gpu_entry.
type GPURecord struct {
	ID, Family, Device, Driver, BIOS string
	MemAmount                        uint32
}

// ReadHeader returns the exported header. ok is false when the header
// pointer is NULL.
func ReadHeader(p unsafe.Pointer) (HeaderRecord, bool) {
	m := (*C.mahm_hardware_monitor)(p)
	if m == nil || m.header == nil {
		return HeaderRecord{}, false
	}
	h := m.header
	return HeaderRecord{
		Signature:     C.GoString(h.signature),
		Version:       C.GoString(h.version),
		HeaderSize:    uint32(h.header_size),
		EntryCount:    uint32(h.entry_count),
		EntrySize:     uint32(h.entry_size),
		GPUEntryCount: uint32(h.gpu_entry_count),
		GPUEntrySize:  uint32(h.gpu_entry_size),
		Time:          int64(h.time),
	}, true
}

// ReadEntries returns the exported entry array.
func ReadEntries(p unsafe.Pointer) []EntryRecord {
	m := (*C.mahm_hardware_monitor)(p)
	if m == nil || m.entries == nil {
		return nil
	}
	src := unsafe.Slice(m.entries, int(m.entry_count))
	out := make([]EntryRecord, len(src))
	for i, e := range src {
		out[i] = EntryRecord{
			SrcName:           C.GoString(e.src_name),
			SrcUnits:          C.GoString(e.src_units),
			LocalizedSrcName:  C.GoString(e.localized_src_name),
			LocalizedSrcUnits: C.GoString(e.localized_src_units),
			RecommendedFormat: C.GoString(e.recommended_format),
			Data:              float32(e.data),
			MinLimit:          float32(e.min_limit),
			MaxLimit:          float32(e.max_limit),
			Flags:             uint32(e.flags),
			GPU:               uint32(e.gpu),
			SrcID:             uint32(e.src_id),
		}
	}
	return out
}

// ReadGPUs returns the exported GPU entry array.
func ReadGPUs(p unsafe.Pointer) []GPURecord {
	m := (*C.mahm_hardware_monitor)(p)
	if m == nil || m.gpu_entries == nil {
		return nil
	}
	src := unsafe.Slice(m.gpu_entries, int(m.gpu_entry_count))
	out := make([]GPURecord, len(src))
	for i, g := range src {
		out[i] = GPURecord{
			ID:        C.GoString(g.id),
			Family:    C.GoString(g.family),
			Device:    C.GoString(g.device),
			Driver:    C.GoString(g.driver),
			BIOS:      C.GoString(g.bios),
			MemAmount: uint32(g.mem_amount),
		}
	}
	return out
}

// EntriesPointer returns the address of the exported entry array, so
// callers can tell whether a refresh replaced it.
func EntriesPointer(p unsafe.Pointer) unsafe.Pointer {
	m := (*C.mahm_hardware_monitor)(p)
	if m == nil {
		return nil
	}
	return unsafe.Pointer(m.entries)
}

// GoString copies a NUL-terminated C string. nil yields "".
func GoString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	return C.GoString((*C.char)(p))
}
