//go:build windows

package shm

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMappingW = modkernel32.NewProc("OpenFileMappingW")
)

// Default returns the platform backend. On Windows names are kernel object
// names (for example "MAHMSharedMemory" or "Global\\..."); dir is ignored.
func Default(string) Backend {
	return namedBackend{}
}

type namedBackend struct{}

func (namedBackend) OpenHandle(name string) (Handle, error) {
	h, err := openFileMapping(windows.FILE_MAP_READ, false, name)
	if err != nil {
		return 0, classifyErrno(err)
	}
	return Handle(h), nil
}

func (namedBackend) MapView(h Handle, offset, size int) ([]byte, error) {
	off := uint64(offset)
	addr, err := windows.MapViewOfFile(windows.Handle(h), windows.FILE_MAP_READ,
		uint32(off>>32), uint32(off), uintptr(size))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapFailed, err)
	}
	if size == 0 {
		var info windows.MemoryBasicInformation
		if err := windows.VirtualQuery(addr, &info, unsafe.Sizeof(info)); err != nil {
			_ = windows.UnmapViewOfFile(addr)
			return nil, fmt.Errorf("%w: VirtualQuery: %v", ErrMapFailed, err)
		}
		size = int(info.RegionSize)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func (namedBackend) Unmap(_ Handle, view []byte) error {
	if len(view) == 0 {
		return nil
	}
	return windows.UnmapViewOfFile(uintptr(unsafe.Pointer(unsafe.SliceData(view))))
}

func (namedBackend) CloseHandle(h Handle) error {
	return windows.CloseHandle(windows.Handle(h))
}

// openFileMapping wraps OpenFileMappingW, which x/sys/windows does not
// export.
func openFileMapping(access uint32, inherit bool, name string) (windows.Handle, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	var inheritFlag uintptr
	if inherit {
		inheritFlag = 1
	}
	r, _, e := procOpenFileMappingW.Call(uintptr(access), inheritFlag, uintptr(unsafe.Pointer(namep)))
	if r == 0 {
		var errno windows.Errno
		if errors.As(e, &errno) && errno != 0 {
			return 0, errno
		}
		return 0, windows.ERROR_INVALID_HANDLE
	}
	return windows.Handle(r), nil
}

func classifyErrno(err error) error {
	switch {
	case errors.Is(err, windows.ERROR_FILE_NOT_FOUND):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	default:
		return err
	}
}
