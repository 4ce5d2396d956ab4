package format

import (
	"errors"
	"fmt"
)

var (
	// ErrSignatureMismatch indicates the header tag was neither the magic nor
	// the dead sentinel. Returned wrapped in a *SignatureError.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrDead indicates the source is alive but not publishing.
	ErrDead = errors.New("format: shared memory dead")
	// ErrTruncated indicates the view lacked the bytes required for the header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrOutOfBounds indicates a declared count or stride points past the view.
	ErrOutOfBounds = errors.New("format: record out of bounds")
)

// SignatureError carries the tag observed in a header that failed validation.
type SignatureError struct {
	Observed uint32
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("format: invalid signature: 0x%X", e.Observed)
}

// Is matches ErrSignatureMismatch.
func (e *SignatureError) Is(target error) bool {
	return target == ErrSignatureMismatch
}
