// Package ffi implements the C boundary of libmahm.
//
// The functions here take and return unsafe.Pointer so that cmd/libmahm can
// stay a thin //export shim. Every record handed to C is a private copy
// allocated with malloc: the monitor struct owns its header, entry and GPU
// arrays, and strings returned directly to the caller are released with
// FreeString. The Go monitor behind a C monitor lives in a cgo.Handle.
package ffi

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#define MAHM_NO_PROTOTYPES
#include "mahm.h"
*/
import "C"

import (
	"errors"
	"runtime/cgo"
	"unsafe"

	"github.com/joshuapare/mahmkit/internal/config"
	"github.com/joshuapare/mahmkit/internal/install"
	"github.com/joshuapare/mahmkit/monitor"
	"github.com/joshuapare/mahmkit/pkg/types"
)

// Version is reported by mahm_version. Set with
// -ldflags "-X github.com/joshuapare/mahmkit/internal/ffi.Version=...".
var Version = "dev"

// state is the Go side of a C monitor.
type state struct {
	mon     *monitor.Monitor
	lastErr error
}

// Create returns a new C monitor configured from the environment
// (MAHM_SEGMENT_NAME, MAHM_SEGMENT_DIR, MAHM_TEXT_ENCODING). Invalid
// settings fall back to the defaults and are reported by LastError.
func Create() unsafe.Pointer {
	cfg := config.Default()
	err := cfg.ApplyEnv()
	opts, optsErr := cfg.MonitorOptions(nil)
	err = errors.Join(err, optsErr)

	mon, monErr := monitor.New(opts)
	if monErr != nil {
		err = errors.Join(err, monErr)
		opts.Encoding = ""
		mon, _ = monitor.New(opts)
	}
	p := CreateWith(mon)
	if err != nil {
		lookup(p).lastErr = err
	}
	return p
}

// CreateWith wraps an existing Go monitor in a C monitor. The C monitor
// takes ownership of mon.
func CreateWith(mon *monitor.Monitor) unsafe.Pointer {
	m := (*C.mahm_hardware_monitor)(cCalloc(1, unsafe.Sizeof(C.mahm_hardware_monitor{})))
	m.raw = C.uintptr_t(cgo.NewHandle(&state{mon: mon}))
	return unsafe.Pointer(m)
}

func lookup(p unsafe.Pointer) *state {
	m := (*C.mahm_hardware_monitor)(p)
	if m == nil || m.raw == 0 {
		return nil
	}
	st, _ := cgo.Handle(m.raw).Value().(*state)
	return st
}

// Refresh refreshes the monitor and returns a MAHM_* code.
//
// The exported header and entries are replaced only when the stored
// snapshot changed, that is on MAHM_OK and MAHM_ERR_HEADER_DEAD. Any other
// result leaves the pointers a caller already holds valid.
func Refresh(p unsafe.Pointer) int32 {
	st := lookup(p)
	if st == nil {
		return int32(types.ErrKindInvalidHandle)
	}
	err := st.mon.Refresh()
	st.lastErr = err

	kind := types.KindOf(err)
	if kind == types.ErrKindNone || kind == types.ErrKindHeaderDead {
		republish((*C.mahm_hardware_monitor)(p), st.mon)
	}
	return int32(kind)
}

// RefreshOK reports whether code is MAHM_OK.
func RefreshOK(code int32) bool {
	return code == int32(types.ErrKindNone)
}

func republish(m *C.mahm_hardware_monitor, mon *monitor.Monitor) {
	unpublish(m)
	if h, ok := mon.Header(); ok {
		m.header = exportHeader(h)
	}
	m.entries, m.entry_count = exportEntries(mon.Entries())
	m.gpu_entries, m.gpu_entry_count = exportGPUs(mon.GPUs())
}

func unpublish(m *C.mahm_hardware_monitor) {
	releaseHeader(m.header)
	releaseEntries(m.entries, m.entry_count)
	releaseGPUs(m.gpu_entries, m.gpu_entry_count)
	m.header = nil
	m.entries, m.entry_count = nil, 0
	m.gpu_entries, m.gpu_entry_count = nil, 0
}

// LastError returns a caller-owned copy of the message of the last failed
// call on p, or nil when it succeeded.
func LastError(p unsafe.Pointer) unsafe.Pointer {
	st := lookup(p)
	if st == nil {
		return unsafe.Pointer(cString(types.ErrInvalidHandle.Error()))
	}
	if st.lastErr == nil {
		return nil
	}
	return unsafe.Pointer(cString(st.lastErr.Error()))
}

// Destroy releases the monitor and everything it exported. nil is a no-op.
func Destroy(p unsafe.Pointer) {
	st := lookup(p)
	if st == nil {
		return
	}
	m := (*C.mahm_hardware_monitor)(p)
	unpublish(m)
	_ = st.mon.Close()
	cgo.Handle(m.raw).Delete()
	m.raw = 0
	cFree(p)
}

// FreeString releases a string returned by this package. nil is a no-op.
func FreeString(p unsafe.Pointer) {
	cFree(p)
}

// VersionString returns a caller-owned copy of Version.
func VersionString() unsafe.Pointer {
	return unsafe.Pointer(cString(Version))
}

// InstallationPath returns a caller-owned copy of the Afterburner install
// directory, or nil when it cannot be determined.
func InstallationPath() unsafe.Pointer {
	dir, err := install.Path()
	if err != nil || dir == "" {
		return nil
	}
	return unsafe.Pointer(cString(dir))
}
