// Command libmahm builds the C shared library:
//
//	go build -buildmode=c-shared -o libmahm.so ./cmd/libmahm
//
// The C declarations live in include/mahm.h.
package main

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#define MAHM_NO_PROTOTYPES
#include "mahm.h"
*/
import "C"

import (
	"unsafe"

	"github.com/joshuapare/mahmkit/internal/ffi"
)

//export mahm_create_hardware_monitor
func mahm_create_hardware_monitor() *C.mahm_hardware_monitor {
	return (*C.mahm_hardware_monitor)(ffi.Create())
}

//export mahm_refresh
func mahm_refresh(m *C.mahm_hardware_monitor) C.int32_t {
	return C.int32_t(ffi.Refresh(unsafe.Pointer(m)))
}

//export mahm_refresh_ok
func mahm_refresh_ok(code C.int32_t) C.bool {
	return C.bool(ffi.RefreshOK(int32(code)))
}

//export mahm_last_error
func mahm_last_error(m *C.mahm_hardware_monitor) *C.char {
	return (*C.char)(ffi.LastError(unsafe.Pointer(m)))
}

//export mahm_destroy_hardware_monitor
func mahm_destroy_hardware_monitor(m *C.mahm_hardware_monitor) {
	ffi.Destroy(unsafe.Pointer(m))
}

//export mahm_free_string
func mahm_free_string(s *C.char) {
	ffi.FreeString(unsafe.Pointer(s))
}

//export mahm_version
func mahm_version() *C.char {
	return (*C.char)(ffi.VersionString())
}

//export mahm_installation_path
func mahm_installation_path() *C.char {
	return (*C.char)(ffi.InstallationPath())
}

func main() {}
