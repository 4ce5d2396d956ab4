package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mahmkit/internal/format"
	"github.com/joshuapare/mahmkit/internal/shm"
	"github.com/joshuapare/mahmkit/internal/testutil"
	"github.com/joshuapare/mahmkit/pkg/types"
)

func newMonitor(t *testing.T, b shm.Backend) *Monitor {
	t.Helper()
	m, err := New(Options{Backend: b})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func publish(mem *shm.MemoryBackend, b *testutil.SegmentBuilder) {
	mem.Store(format.SegmentName, b.Bytes())
}

func TestRefreshDecodesSnapshot(t *testing.T) {
	mem := testutil.SampleSegment().Publish()
	m := newMonitor(t, mem)
	require.Equal(t, StateClosed, m.State())

	require.NoError(t, m.Refresh())
	require.Equal(t, StateFresh, m.State())
	require.EqualValues(t, 1, m.Generation())

	h, ok := m.Header()
	require.True(t, ok)
	assert.Equal(t, "MAHM", h.Signature.String())
	assert.Equal(t, "2.0", h.Version.String())
	assert.EqualValues(t, format.HeaderSize, h.HeaderSize)
	assert.EqualValues(t, 3, h.EntryCount)
	assert.EqualValues(t, format.EntrySize, h.EntrySize)
	assert.EqualValues(t, 1, h.GPUEntryCount)
	assert.Equal(t, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), h.Time)

	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "GPU temperature", entries[0].SrcName)
	assert.Equal(t, "GPU temperature", entries[0].LocalizedSrcName)
	assert.Equal(t, "C", entries[0].SrcUnits)
	assert.Equal(t, "%.0f", entries[0].RecommendedFormat)
	assert.InDelta(t, 54, entries[0].Data, 0.001)
	assert.InDelta(t, 100, entries[0].MaxLimit, 0.001)
	assert.True(t, entries[1].Flags.Has(types.FlagShowInOSD|types.FlagShowInTray))
	assert.EqualValues(t, 0x30, entries[1].SrcID)
	assert.EqualValues(t, 0xFFFFFFFF, entries[2].GPU)

	gpus := m.GPUs()
	require.Len(t, gpus, 1)
	assert.Equal(t, "NVIDIA GeForce RTX 4090", gpus[0].Device)
	assert.Equal(t, "546.33", gpus[0].Driver)
	assert.EqualValues(t, 24<<20, gpus[0].MemAmount)
}

func TestRefreshEmptySegment(t *testing.T) {
	m := newMonitor(t, testutil.NewSegment().Publish())
	require.NoError(t, m.Refresh())

	h, ok := m.Header()
	require.True(t, ok)
	assert.Zero(t, h.EntryCount)
	assert.Empty(t, m.Entries())
	assert.NotNil(t, m.Snapshot().Entries)
}

func TestRefreshNotFoundBeforeFirstSuccess(t *testing.T) {
	m := newMonitor(t, shm.NewMemoryBackend())

	err := m.Refresh()
	require.ErrorIs(t, err, types.ErrSegmentNotFound)
	assert.Equal(t, types.ErrKindSegmentNotFound, types.KindOf(err))
	assert.Equal(t, StateClosed, m.State())

	_, ok := m.Header()
	assert.False(t, ok)
	assert.Empty(t, m.Entries())
	assert.Zero(t, m.Generation())
}

func TestRefreshDeadClearsSnapshot(t *testing.T) {
	mem := testutil.SampleSegment().Publish()
	m := newMonitor(t, mem)
	require.NoError(t, m.Refresh())
	require.Len(t, m.Entries(), 3)

	publish(mem, testutil.SampleSegment().Dead())
	err := m.Refresh()
	require.ErrorIs(t, err, types.ErrHeaderDead)
	require.ErrorIs(t, err, format.ErrDead)

	_, ok := m.Header()
	assert.False(t, ok)
	assert.Empty(t, m.Entries())
	assert.Empty(t, m.GPUs())
	assert.EqualValues(t, 2, m.Generation())
	assert.False(t, m.Snapshot().Active())
}

func TestRefreshFailuresPreserveSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		publish func(mem *shm.MemoryBackend)
		want    *types.Error
		state   State
	}{
		{
			name:    "segment gone",
			publish: func(mem *shm.MemoryBackend) { mem.Delete(format.SegmentName) },
			want:    types.ErrSegmentNotFound,
			state:   StateClosed,
		},
		{
			name: "bad signature",
			publish: func(mem *shm.MemoryBackend) {
				b := testutil.SampleSegment()
				b.Signature = 0x12345678
				publish(mem, b)
			},
			want:  types.ErrBadSignature,
			state: StateStale,
		},
		{
			name: "declared entries exceed mapping",
			publish: func(mem *shm.MemoryBackend) {
				publish(mem, testutil.SampleSegment().DeclareEntries(1000))
			},
			want:  types.ErrOutOfBounds,
			state: StateStale,
		},
		{
			name: "zero entry stride",
			publish: func(mem *shm.MemoryBackend) {
				b := testutil.NewSegment().DeclareEntries(20_000_000)
				b.EntrySize = 0
				publish(mem, b)
			},
			want:  types.ErrOutOfBounds,
			state: StateStale,
		},
		{
			name: "entry stride shorter than v1 record",
			publish: func(mem *shm.MemoryBackend) {
				b := testutil.SampleSegment()
				b.EntrySize = format.EntryDataOffset
				publish(mem, b)
			},
			want:  types.ErrOutOfBounds,
			state: StateStale,
		},
		{
			name: "short gpu stride",
			publish: func(mem *shm.MemoryBackend) {
				b := testutil.SampleSegment()
				b.GPUEntrySize = 8
				publish(mem, b)
			},
			want:  types.ErrOutOfBounds,
			state: StateStale,
		},
		{
			name: "truncated header",
			publish: func(mem *shm.MemoryBackend) {
				mem.Store(format.SegmentName, testutil.SampleSegment().Bytes()[:8])
			},
			want:  types.ErrOutOfBounds,
			state: StateStale,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := testutil.SampleSegment().Publish()
			m := newMonitor(t, mem)
			require.NoError(t, m.Refresh())
			before := m.Snapshot()

			tt.publish(mem)
			err := m.Refresh()
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.state, m.State())

			after := m.Snapshot()
			assert.Equal(t, before, after)
			assert.EqualValues(t, 1, m.Generation())
		})
	}
}

func TestRefreshBadSignatureCarriesObserved(t *testing.T) {
	b := testutil.SampleSegment()
	b.Signature = 0xCAFEBABE
	m := newMonitor(t, b.Publish())

	err := m.Refresh()
	var typed *types.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, types.ErrKindBadSignature, typed.Kind)
	assert.EqualValues(t, 0xCAFEBABE, typed.Observed)
	assert.Contains(t, err.Error(), "0xCAFEBABE")
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	mem := testutil.SampleSegment().Publish()
	m := newMonitor(t, mem)
	require.NoError(t, m.Refresh())

	publish(mem, testutil.NewSegment().AddEntry(testutil.EntrySpec{Name: "CPU clock", Units: "MHz", Data: 4800}))
	require.NoError(t, m.Refresh())

	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "CPU clock", entries[0].SrcName)
	assert.Empty(t, m.GPUs())
	assert.EqualValues(t, 2, m.Generation())
}

func TestEntryRefsGoStale(t *testing.T) {
	mem := testutil.SampleSegment().Publish()
	m := newMonitor(t, mem)
	require.NoError(t, m.Refresh())

	refs := m.Refs()
	require.Len(t, refs, 3)
	e, err := m.Entry(refs[2])
	require.NoError(t, err)
	assert.Equal(t, "Framerate", e.SrcName)

	_, err = m.Entry(EntryRef{Generation: m.Generation(), Index: 3})
	require.ErrorIs(t, err, types.ErrOutOfBounds)

	// A failed refresh does not invalidate references.
	mem.Delete(format.SegmentName)
	require.Error(t, m.Refresh())
	_, err = m.Entry(refs[0])
	require.NoError(t, err)

	mem.Store(format.SegmentName, testutil.SampleSegment().Bytes())
	require.NoError(t, m.Refresh())
	_, err = m.Entry(refs[0])
	require.ErrorIs(t, err, types.ErrStale)
	assert.Equal(t, types.ErrKindStale, types.KindOf(err))
}

func TestRefreshV1Layout(t *testing.T) {
	b := testutil.NewSegment()
	b.Version = 1<<16 | 1
	b.HeaderSize = format.HeaderMinSize
	b.EntrySize = format.EntryFlagsOffset + 4
	b.AddEntry(testutil.EntrySpec{Name: "Core clock", Units: "MHz", Data: 1500, Flags: 1, GPU: 7, SrcID: 9})

	m := newMonitor(t, b.Publish())
	require.NoError(t, m.Refresh())

	h, ok := m.Header()
	require.True(t, ok)
	assert.Equal(t, "1.1", h.Version.String())
	assert.Zero(t, h.GPUEntryCount)

	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Core clock", entries[0].SrcName)
	assert.Equal(t, types.FlagShowInOSD, entries[0].Flags)
	assert.Zero(t, entries[0].GPU)
	assert.Zero(t, entries[0].SrcID)
	assert.Empty(t, m.GPUs())
}

func TestTextEncodings(t *testing.T) {
	b := testutil.NewSegment().AddEntry(testutil.EntrySpec{Name: "Temp", Units: "\xb0C"})

	m := newMonitor(t, b.Publish())
	require.NoError(t, m.Refresh())
	assert.Equal(t, "�C", m.Entries()[0].SrcUnits)

	ansi, err := New(Options{Backend: b.Publish(), Encoding: "windows-1252"})
	require.NoError(t, err)
	defer ansi.Close()
	require.NoError(t, ansi.Refresh())
	assert.Equal(t, "°C", ansi.Entries()[0].SrcUnits)

	_, err = New(Options{Encoding: "ebcdic"})
	require.Error(t, err)
}

func TestEntriesAreCopies(t *testing.T) {
	m := newMonitor(t, testutil.SampleSegment().Publish())
	require.NoError(t, m.Refresh())

	entries := m.Entries()
	entries[0].SrcName = "mutated"
	assert.Equal(t, "GPU temperature", m.Entries()[0].SrcName)
}

func TestSnapshotSurvivesSegmentUpdate(t *testing.T) {
	img := testutil.SampleSegment().Bytes()
	mem := shm.NewMemoryBackend()
	mem.Store(format.SegmentName, img)

	m := newMonitor(t, mem)
	require.NoError(t, m.Refresh())

	// The writer rewrites the live mapping in place.
	format.PutText(img, format.HeaderSize+format.EntrySrcNameOffset, "overwritten")
	assert.Equal(t, "GPU temperature", m.Entries()[0].SrcName)

	raw, err := m.Raw()
	require.NoError(t, err)
	assert.Equal(t, img, raw)
}

// handleCounter tracks open handles across refreshes.
type handleCounter struct {
	*shm.MemoryBackend
	open int
}

func (c *handleCounter) OpenHandle(name string) (shm.Handle, error) {
	h, err := c.MemoryBackend.OpenHandle(name)
	if err == nil {
		c.open++
	}
	return h, err
}

func (c *handleCounter) CloseHandle(h shm.Handle) error {
	c.open--
	return c.MemoryBackend.CloseHandle(h)
}

func TestRefreshReleasesPreviousSegment(t *testing.T) {
	counter := &handleCounter{MemoryBackend: testutil.SampleSegment().Publish()}
	m, err := New(Options{Backend: counter})
	require.NoError(t, err)

	for range 5 {
		require.NoError(t, m.Refresh())
		require.Equal(t, 1, counter.open)
	}

	counter.Delete(format.SegmentName)
	require.Error(t, m.Refresh())
	require.Zero(t, counter.open)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	require.Zero(t, counter.open)
	assert.Equal(t, StateClosed, m.State())

	_, err = m.Raw()
	require.ErrorIs(t, err, shm.ErrClosed)
}

func TestReadOnce(t *testing.T) {
	snap, err := ReadOnce(Options{Backend: testutil.SampleSegment().Publish()})
	require.NoError(t, err)
	require.True(t, snap.Active())
	assert.Len(t, snap.Entries, 3)
	assert.EqualValues(t, 1, snap.Generation)

	_, err = ReadOnce(Options{Backend: shm.NewMemoryBackend()})
	require.ErrorIs(t, err, types.ErrSegmentNotFound)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "stale", StateStale.String())
	assert.Equal(t, "fresh", StateFresh.String())
	assert.Equal(t, "State(9)", State(9).String())
}
