package ffi

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#define MAHM_NO_PROTOTYPES
#include "mahm.h"
*/
import "C"

import (
	"unsafe"

	"github.com/joshuapare/mahmkit/pkg/types"
)

// exportHeader copies h into a C record that owns its display strings.
func exportHeader(h types.Header) *C.mahm_header {
	p := (*C.mahm_header)(cCalloc(1, unsafe.Sizeof(C.mahm_header{})))
	p.signature = cString(h.Signature.String())
	p.version = cString(h.Version.String())
	p.header_size = C.uint32_t(h.HeaderSize)
	p.entry_count = C.uint32_t(h.EntryCount)
	p.entry_size = C.uint32_t(h.EntrySize)
	p.gpu_entry_count = C.uint32_t(h.GPUEntryCount)
	p.gpu_entry_size = C.uint32_t(h.GPUEntrySize)
	p.time = C.int64_t(h.Time.Unix())
	return p
}

func releaseHeader(p *C.mahm_header) {
	if p == nil {
		return
	}
	cFree(unsafe.Pointer(p.signature))
	cFree(unsafe.Pointer(p.version))
	cFree(unsafe.Pointer(p))
}

// exportEntries copies entries into one C array. An empty slice yields nil.
func exportEntries(entries []types.Entry) (*C.mahm_entry, C.size_t) {
	if len(entries) == 0 {
		return nil, 0
	}
	base := (*C.mahm_entry)(cCalloc(uintptr(len(entries)), unsafe.Sizeof(C.mahm_entry{})))
	out := unsafe.Slice(base, len(entries))
	for i, e := range entries {
		out[i] = C.mahm_entry{
			src_name:            cString(e.SrcName),
			src_units:           cString(e.SrcUnits),
			localized_src_name:  cString(e.LocalizedSrcName),
			localized_src_units: cString(e.LocalizedSrcUnits),
			recommended_format:  cString(e.RecommendedFormat),
			data:                C.float(e.Data),
			min_limit:           C.float(e.MinLimit),
			max_limit:           C.float(e.MaxLimit),
			flags:               C.uint32_t(e.Flags),
			gpu:                 C.uint32_t(e.GPU),
			src_id:              C.uint32_t(e.SrcID),
		}
	}
	return base, C.size_t(len(entries))
}

func releaseEntries(base *C.mahm_entry, n C.size_t) {
	if base == nil {
		return
	}
	for _, e := range unsafe.Slice(base, int(n)) {
		cFree(unsafe.Pointer(e.src_name))
		cFree(unsafe.Pointer(e.src_units))
		cFree(unsafe.Pointer(e.localized_src_name))
		cFree(unsafe.Pointer(e.localized_src_units))
		cFree(unsafe.Pointer(e.recommended_format))
	}
	cFree(unsafe.Pointer(base))
}

func exportGPUs(gpus []types.GPUEntry) (*C.mahm_gpu_entry, C.size_t) {
	if len(gpus) == 0 {
		return nil, 0
	}
	base := (*C.mahm_gpu_entry)(cCalloc(uintptr(len(gpus)), unsafe.Sizeof(C.mahm_gpu_entry{})))
	out := unsafe.Slice(base, len(gpus))
	for i, g := range gpus {
		out[i] = C.mahm_gpu_entry{
			id:         cString(g.ID),
			family:     cString(g.Family),
			device:     cString(g.Device),
			driver:     cString(g.Driver),
			bios:       cString(g.BIOS),
			mem_amount: C.uint32_t(g.MemAmount),
		}
	}
	return base, C.size_t(len(gpus))
}

func releaseGPUs(base *C.mahm_gpu_entry, n C.size_t) {
	if base == nil {
		return
	}
	for _, g := range unsafe.Slice(base, int(n)) {
		cFree(unsafe.Pointer(g.id))
		cFree(unsafe.Pointer(g.family))
		cFree(unsafe.Pointer(g.device))
		cFree(unsafe.Pointer(g.driver))
		cFree(unsafe.Pointer(g.bios))
	}
	cFree(unsafe.Pointer(base))
}
