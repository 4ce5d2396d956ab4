package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("refresh: %w", Wrap(ErrKindSegmentNotFound, "open MAHMSharedMemory", errors.New("file not found")))

	require.ErrorIs(t, err, ErrSegmentNotFound)
	require.NotErrorIs(t, err, ErrHeaderDead)
	require.Equal(t, ErrKindSegmentNotFound, KindOf(err))
	require.Contains(t, err.Error(), "file not found")
}

func TestErrorObservedSignature(t *testing.T) {
	err := &Error{Kind: ErrKindBadSignature, Msg: "invalid signature", Observed: 0xCAFEBABE}

	require.ErrorIs(t, err, ErrBadSignature)
	require.Equal(t, "invalid signature: 0xCAFEBABE", err.Error())
}

func TestKindOf(t *testing.T) {
	require.Equal(t, ErrKindNone, KindOf(nil))
	require.Equal(t, ErrKindOS, KindOf(errors.New("boom")))
	require.Equal(t, ErrKindHeaderDead, KindOf(ErrHeaderDead))
}

func TestErrKindString(t *testing.T) {
	require.Equal(t, "header dead", ErrKindHeaderDead.String())
	require.Equal(t, "ErrKind(99)", ErrKind(99).String())
}

func TestNilError(t *testing.T) {
	var e *Error
	require.Equal(t, "<nil>", e.Error())
	require.False(t, e.Is(ErrOS))
}
