package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, reporting ok = false when the sum overflows int.
func AddOverflowSafe(a, b int) (int, bool) {
	if b > 0 && a > math.MaxInt-b {
		return 0, false
	}
	if b < 0 && a < math.MinInt-b {
		return 0, false
	}
	return a + b, true
}

// MulOverflowSafe multiplies two non-negative ints, reporting ok = false on
// overflow or when either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// StrideOffset returns base + stride*index, the start of the index-th record
// of a packed array. ok is false when the arithmetic overflows.
func StrideOffset(base, stride, index int) (int, bool) {
	step, ok := MulOverflowSafe(stride, index)
	if !ok {
		return 0, false
	}
	return AddOverflowSafe(base, step)
}

// CheckListBounds validates that count records of elementSize bytes starting
// at offset fit inside a buffer of bufLen bytes. It returns the end offset.
//
//	end, err := buf.CheckListBounds(len(view), int(h.HeaderSize), int(h.EntryCount), int(h.EntrySize))
//	if err != nil {
//	    return fmt.Errorf("entries: %w", err)
//	}
func CheckListBounds(bufLen, offset, count, elementSize int) (int, error) {
	switch {
	case offset < 0:
		return 0, fmt.Errorf("negative offset: %d", offset)
	case count < 0:
		return 0, fmt.Errorf("negative count: %d", count)
	case elementSize < 0:
		return 0, fmt.Errorf("negative element size: %d", elementSize)
	}

	total, ok := MulOverflowSafe(count, elementSize)
	if !ok {
		return 0, fmt.Errorf("overflow: count=%d * elemSize=%d", count, elementSize)
	}
	end, ok := AddOverflowSafe(offset, total)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + size=%d", offset, total)
	}
	if end > bufLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return end, nil
}

// Slice returns b[off:off+n] if the whole range lies within b.
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end:end], true
}

// Clamp returns the part of b[off:off+n] that lies within b. Unlike Slice it
// never fails: a range starting past the end yields an empty slice.
func Clamp(b []byte, off, n int) []byte {
	if off < 0 || n <= 0 || off >= len(b) {
		return nil
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		end = len(b)
	}
	return b[off:end:end]
}

// CString returns the bytes of b before the first NUL. A buffer without a
// terminator is returned whole.
func CString(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i:i]
		}
	}
	return b
}
