package types

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
// The numeric values are part of the C ABI (MAHM_ERR_* in mahm.h).
type ErrKind int32

const (
	ErrKindNone             ErrKind = 0 // success, only used as a C return code
	ErrKindSegmentNotFound  ErrKind = 1 // no mapping with that name exists
	ErrKindAccessDenied     ErrKind = 2 // mapping exists but cannot be opened
	ErrKindSegmentMapFailed ErrKind = 3 // the OS refused to map a view
	ErrKindHeaderDead       ErrKind = 4 // source alive but not publishing
	ErrKindBadSignature     ErrKind = 5 // header tag is not 'MAHM'
	ErrKindOutOfBounds      ErrKind = 6 // declared counts/strides exceed the mapping
	ErrKindOS               ErrKind = 7 // any other operating system failure
	ErrKindUnsupported      ErrKind = 8 // platform has no shared memory backend
	ErrKindInvalidHandle    ErrKind = 9 // C caller passed a null or destroyed handle
	ErrKindStale            ErrKind = 10
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNone:
		return "ok"
	case ErrKindSegmentNotFound:
		return "segment not found"
	case ErrKindAccessDenied:
		return "access denied"
	case ErrKindSegmentMapFailed:
		return "segment map failed"
	case ErrKindHeaderDead:
		return "header dead"
	case ErrKindBadSignature:
		return "bad signature"
	case ErrKindOutOfBounds:
		return "out of bounds"
	case ErrKindOS:
		return "os error"
	case ErrKindUnsupported:
		return "unsupported"
	case ErrKindInvalidHandle:
		return "invalid handle"
	case ErrKindStale:
		return "stale reference"
	default:
		return fmt.Sprintf("ErrKind(%d)", int32(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	// Observed is the offending signature for ErrKindBadSignature.
	Observed uint32
	Err      error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if e.Kind == ErrKindBadSignature && e.Observed != 0 {
		msg = fmt.Sprintf("%s: 0x%X", msg, e.Observed)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so the sentinels
// below match any wrapped error of their category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels commonly returned by implementations.
var (
	// ErrSegmentNotFound indicates the source application has no mapping open.
	ErrSegmentNotFound = &Error{Kind: ErrKindSegmentNotFound, Msg: "shared memory segment not found"}
	// ErrAccessDenied indicates the mapping exists but this process may not open it.
	ErrAccessDenied = &Error{Kind: ErrKindAccessDenied, Msg: "shared memory access denied"}
	// ErrSegmentMapFailed indicates the handle opened but no view could be mapped.
	ErrSegmentMapFailed = &Error{Kind: ErrKindSegmentMapFailed, Msg: "shared memory map failed"}
	// ErrHeaderDead indicates the dead sentinel; stored data was cleared.
	ErrHeaderDead = &Error{Kind: ErrKindHeaderDead, Msg: "shared memory dead"}
	// ErrBadSignature indicates a header of unknown origin.
	ErrBadSignature = &Error{Kind: ErrKindBadSignature, Msg: "invalid signature"}
	// ErrOutOfBounds indicates the header declared records beyond the mapping.
	ErrOutOfBounds = &Error{Kind: ErrKindOutOfBounds, Msg: "record out of bounds"}
	// ErrOS indicates an unclassified operating system failure.
	ErrOS = &Error{Kind: ErrKindOS, Msg: "os error"}
	// ErrUnsupported indicates the platform has no shared memory backend.
	ErrUnsupported = &Error{Kind: ErrKindUnsupported, Msg: "unsupported platform"}
	// ErrInvalidHandle indicates a null or destroyed monitor handle.
	ErrInvalidHandle = &Error{Kind: ErrKindInvalidHandle, Msg: "invalid monitor handle"}
	// ErrStale indicates a reference into a snapshot that has been replaced.
	ErrStale = &Error{Kind: ErrKindStale, Msg: "reference to a replaced snapshot"}
)

// Wrap returns a new error of kind k with cause err.
func Wrap(k ErrKind, msg string, err error) *Error {
	return &Error{Kind: k, Msg: msg, Err: err}
}

// KindOf returns the kind of err, ErrKindNone for nil, and ErrKindOS for
// errors outside this taxonomy.
func KindOf(err error) ErrKind {
	if err == nil {
		return ErrKindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindOS
}
