// Package shm opens and maps named shared memory segments read-only.
//
// A Segment owns one OS handle. Views mapped from it hold a back-reference
// and count against the handle, which is closed exactly once: when the
// segment has been closed by its owner and every view has been unmapped.
// Closing the segment unmaps any view that is still live, so a view never
// outlives its handle.
package shm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no mapping with the requested name exists.
	ErrNotFound = errors.New("shm: segment not found")
	// ErrAccessDenied indicates the mapping exists but could not be opened.
	ErrAccessDenied = errors.New("shm: access denied")
	// ErrMapFailed indicates the OS refused to map a view.
	ErrMapFailed = errors.New("shm: map failed")
	// ErrClosed indicates use of a closed segment.
	ErrClosed = errors.New("shm: segment closed")
	// ErrUnsupported indicates the platform has no backend.
	ErrUnsupported = errors.New("shm: unsupported platform")
)

// DefaultDir is where the unix backend looks for segment files.
const DefaultDir = "/dev/shm"

// Handle is an opaque backend handle.
type Handle uintptr

// Backend is the OS surface a Segment drives.
type Backend interface {
	// OpenHandle opens the named mapping. Repeated calls yield distinct
	// handles.
	OpenHandle(name string) (Handle, error)
	// MapView maps [offset, offset+size) of h read-only. size == 0 maps the
	// whole region.
	MapView(h Handle, offset, size int) ([]byte, error)
	// Unmap releases a view returned by MapView.
	Unmap(h Handle, view []byte) error
	// CloseHandle releases h.
	CloseHandle(h Handle) error
}

// Segment is an open named mapping.
type Segment struct {
	name    string
	backend Backend
	handle  Handle

	// refs counts the owner reference plus one per live view.
	refs   int
	closed bool
	views  map[*View]struct{}
}

// Open opens the named segment on b. It does not map anything.
func Open(b Backend, name string) (*Segment, error) {
	h, err := b.OpenHandle(name)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", name, err)
	}
	return &Segment{
		name:    name,
		backend: b,
		handle:  h,
		refs:    1,
		views:   make(map[*View]struct{}),
	}, nil
}

// Name returns the segment name.
func (s *Segment) Name() string { return s.name }

// Handle returns the backend handle.
func (s *Segment) Handle() Handle { return s.handle }

// Views returns the number of live views.
func (s *Segment) Views() int { return len(s.views) }

// Map maps [offset, offset+size) of the segment. size == 0 maps the whole
// region.
func (s *Segment) Map(offset, size int) (*View, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 {
		return nil, fmt.Errorf("map %q: %w: negative range", s.name, ErrMapFailed)
	}
	data, err := s.backend.MapView(s.handle, offset, size)
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", s.name, err)
	}
	v := &View{seg: s, data: data}
	s.views[v] = struct{}{}
	s.refs++
	return v, nil
}

// Close unmaps every live view and releases the owner reference. The handle
// is closed once no view references it. Calling Close again is a no-op.
func (s *Segment) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for v := range s.views {
		errs = append(errs, v.unmap())
	}
	errs = append(errs, s.release())
	return errors.Join(errs...)
}

func (s *Segment) release() error {
	s.refs--
	if s.refs > 0 {
		return nil
	}
	if err := s.backend.CloseHandle(s.handle); err != nil {
		return fmt.Errorf("close %q: %w", s.name, err)
	}
	return nil
}

// View is a mapped byte range of a Segment.
type View struct {
	seg  *Segment
	data []byte
}

// Bytes returns the mapped bytes, or nil once the view is closed. The slice
// must not be used after Close.
func (v *View) Bytes() []byte { return v.data }

// Len returns the mapped length.
func (v *View) Len() int { return len(v.data) }

// Valid reports whether the view is still mapped.
func (v *View) Valid() bool { return v.data != nil }

// Segment returns the owning segment.
func (v *View) Segment() *Segment { return v.seg }

// Close unmaps the view. Calling Close again is a no-op.
func (v *View) Close() error {
	return v.unmap()
}

func (v *View) unmap() error {
	if v.data == nil {
		return nil
	}
	s := v.seg
	data := v.data
	v.data = nil
	delete(s.views, v)

	var errs []error
	if err := s.backend.Unmap(s.handle, data); err != nil {
		errs = append(errs, fmt.Errorf("unmap %q: %w", s.name, err))
	}
	errs = append(errs, s.release())
	return errors.Join(errs...)
}
