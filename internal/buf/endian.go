// Package buf contains bounds-checked helpers for reading little-endian
// records out of a mapped byte view.
package buf

import (
	"encoding/binary"
	"math"
)

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// I32LE reads a little-endian int32 from b. Returns 0 when b is too short.
func I32LE(b []byte) int32 {
	return int32(U32LE(b))
}

// F32LE reads a little-endian IEEE-754 float32 from b. Returns 0 when b is
// too short.
func F32LE(b []byte) float32 {
	return math.Float32frombits(U32LE(b))
}

// U32At reads a little-endian uint32 at off, reporting whether the four bytes
// were present.
func U32At(b []byte, off int) (uint32, bool) {
	field, ok := Slice(b, off, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(field), true
}
