package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddOverflowSafe(t *testing.T) {
	sum, ok := AddOverflowSafe(10, 5)
	require.True(t, ok)
	require.Equal(t, 15, sum)

	_, ok = AddOverflowSafe(math.MaxInt, 1)
	require.False(t, ok, "adding to MaxInt must overflow")

	_, ok = AddOverflowSafe(math.MinInt, -1)
	require.False(t, ok, "subtracting from MinInt must underflow")
}

func TestMulOverflowSafe(t *testing.T) {
	got, ok := MulOverflowSafe(96, 3)
	require.True(t, ok)
	require.Equal(t, 288, got)

	got, ok = MulOverflowSafe(0, math.MaxInt)
	require.True(t, ok)
	require.Zero(t, got)

	_, ok = MulOverflowSafe(math.MaxInt/2, 3)
	require.False(t, ok)

	_, ok = MulOverflowSafe(-1, 4)
	require.False(t, ok)
}

func TestStrideOffset(t *testing.T) {
	for i := 0; i < 8; i++ {
		off, ok := StrideOffset(64, 96, i)
		require.True(t, ok)
		require.Equal(t, 64+96*i, off)
	}

	_, ok := StrideOffset(1, math.MaxInt, 2)
	require.False(t, ok)
}

func TestCheckListBounds(t *testing.T) {
	end, err := CheckListBounds(64+96*4, 64, 4, 96)
	require.NoError(t, err)
	require.Equal(t, 64+96*4, end)

	_, err = CheckListBounds(64+96*4-1, 64, 4, 96)
	require.ErrorContains(t, err, "bounds")

	_, err = CheckListBounds(100, 0, math.MaxInt, 2)
	require.ErrorContains(t, err, "overflow")

	_, err = CheckListBounds(100, -1, 1, 1)
	require.Error(t, err)

	end, err = CheckListBounds(10, 10, 0, 1324)
	require.NoError(t, err, "an empty list at the end of the buffer is valid")
	require.Equal(t, 10, end)
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}

	got, ok := Slice(data, 1, 3)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, got)
	require.Equal(t, 3, cap(got), "sub-slice must not expose trailing bytes")

	_, ok = Slice(data, 4, 2)
	require.False(t, ok)
	_, ok = Slice(data, -1, 1)
	require.False(t, ok)
	_, ok = Slice(data, 1, -1)
	require.False(t, ok)
}

func TestClamp(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}

	require.Equal(t, []byte{3, 4}, Clamp(data, 3, 10))
	require.Equal(t, []byte{1, 2}, Clamp(data, 1, 2))
	require.Empty(t, Clamp(data, 5, 4))
	require.Empty(t, Clamp(data, 9, 4))
	require.Empty(t, Clamp(data, 0, 0))
}

func TestCString(t *testing.T) {
	require.Equal(t, []byte("GPU1"), CString([]byte("GPU1\x00junk")))
	require.Empty(t, CString([]byte{0, 'x'}))

	unterminated := []byte("no terminator here")
	require.Equal(t, unterminated, CString(unterminated))
}
