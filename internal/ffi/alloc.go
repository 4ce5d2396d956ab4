package ffi

/*
#include <stdlib.h>
*/
import "C"

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// Tracker records every allocation the boundary hands to C and every
// release of one. While a Tracker is installed, releasing a pointer that is
// not live is counted instead of passed to free.
type Tracker struct {
	mu           sync.Mutex
	live         map[uintptr]struct{}
	allocs       int
	frees        int
	invalidFrees int
}

var tracker atomic.Pointer[Tracker]

// TrackAllocations installs a fresh Tracker and returns it.
func TrackAllocations() *Tracker {
	t := &Tracker{live: make(map[uintptr]struct{})}
	tracker.Store(t)
	return t
}

// Stop uninstalls t if it is still the active tracker.
func (t *Tracker) Stop() {
	tracker.CompareAndSwap(t, nil)
}

// Outstanding returns the number of live allocations.
func (t *Tracker) Outstanding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Allocs returns the number of allocations recorded.
func (t *Tracker) Allocs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allocs
}

// Frees returns the number of successful releases recorded.
func (t *Tracker) Frees() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frees
}

// InvalidFrees returns the number of releases of pointers that were not live.
func (t *Tracker) InvalidFrees() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.invalidFrees
}

func (t *Tracker) alloc(p unsafe.Pointer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live[uintptr(p)] = struct{}{}
	t.allocs++
}

// free reports whether p was live.
func (t *Tracker) free(p unsafe.Pointer) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.live[uintptr(p)]; !ok {
		t.invalidFrees++
		return false
	}
	delete(t.live, uintptr(p))
	t.frees++
	return true
}

// cString copies s into C memory.
func cString(s string) *C.char {
	p := C.CString(s)
	if t := tracker.Load(); t != nil {
		t.alloc(unsafe.Pointer(p))
	}
	return p
}

// cCalloc allocates n zeroed elements of size bytes.
func cCalloc(n, size uintptr) unsafe.Pointer {
	p := C.calloc(C.size_t(n), C.size_t(size))
	if p == nil {
		panic("mahm: out of memory")
	}
	if t := tracker.Load(); t != nil {
		t.alloc(p)
	}
	return p
}

// cFree releases memory from cString or cCalloc. nil is a no-op.
func cFree(p unsafe.Pointer) {
	if p == nil {
		return
	}
	if t := tracker.Load(); t != nil && !t.free(p) {
		return
	}
	C.free(p)
}
