package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/text/encoding"

	"github.com/joshuapare/mahmkit/internal/format"
	"github.com/joshuapare/mahmkit/internal/shm"
	"github.com/joshuapare/mahmkit/pkg/types"
)

// State describes how current the stored snapshot is.
type State int

const (
	// StateClosed means no segment is mapped.
	StateClosed State = iota
	// StateStale means a segment is mapped but the last refresh did not
	// store a new snapshot.
	StateStale
	// StateFresh means the last refresh stored a new snapshot.
	StateFresh
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateStale:
		return "stale"
	case StateFresh:
		return "fresh"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Monitor. The zero value reads the live segment with
// the platform backend.
type Options struct {
	// SegmentName defaults to format.SegmentName.
	SegmentName string
	// Dir is the directory the unix backend resolves names in.
	Dir string
	// Encoding names the text encoding of the entry buffers ("utf-8" or
	// "windows-1252"). Empty selects UTF-8.
	Encoding string
	// Backend overrides the platform backend.
	Backend shm.Backend
	// Logger receives debug output. Nil discards.
	Logger *slog.Logger
}

// EntryRef identifies an entry of one particular snapshot.
type EntryRef struct {
	Generation uint64
	Index      int
}

// Monitor holds the most recently decoded snapshot.
type Monitor struct {
	name    string
	backend shm.Backend
	enc     encoding.Encoding
	log     *slog.Logger

	seg   *shm.Segment
	view  *shm.View
	state State

	header     *types.Header
	entries    []types.Entry
	gpus       []types.GPUEntry
	generation uint64
}

// New returns a Monitor in StateClosed with no snapshot. It does not touch
// the segment.
func New(opts Options) (*Monitor, error) {
	enc, ok := format.LookupEncoding(opts.Encoding)
	if !ok {
		return nil, fmt.Errorf("monitor: unknown text encoding %q", opts.Encoding)
	}
	m := &Monitor{
		name:    opts.SegmentName,
		backend: opts.Backend,
		enc:     enc,
		log:     opts.Logger,
	}
	if m.name == "" {
		m.name = format.SegmentName
	}
	if m.backend == nil {
		m.backend = shm.Default(opts.Dir)
	}
	if m.log == nil {
		m.log = slog.New(slog.DiscardHandler)
	}
	return m, nil
}

// Refresh reopens the segment and replaces the stored snapshot.
//
// On failure the stored snapshot is left untouched and the error matches
// one of the types sentinels, with one exception: when the source reports
// the dead sentinel the snapshot is cleared and ErrHeaderDead is returned.
func (m *Monitor) Refresh() error {
	if err := m.closeSegment(); err != nil {
		m.log.Debug("close previous segment", "segment", m.name, "error", err)
	}

	seg, err := shm.Open(m.backend, m.name)
	if err != nil {
		return m.fail(classifySegment(err))
	}
	view, err := seg.Map(0, 0)
	if err != nil {
		_ = seg.Close()
		return m.fail(classifySegment(err))
	}
	m.seg, m.view, m.state = seg, view, StateStale

	data := view.Bytes()
	hdr, err := format.ParseHeader(data)
	if errors.Is(err, format.ErrDead) {
		m.replace(nil, nil, nil)
		m.log.Debug("segment dead, snapshot cleared", "segment", m.name, "generation", m.generation)
		return types.Wrap(types.ErrKindHeaderDead, "shared memory dead", err)
	}
	if err != nil {
		return m.fail(classifyDecode(err))
	}
	if err := format.CheckEntries(len(data), hdr); err != nil {
		return m.fail(classifyDecode(err))
	}

	entries := make([]types.Entry, 0, hdr.EntryCount)
	for i := range hdr.EntryCount {
		raw, err := format.ParseEntry(data, hdr, i)
		if err != nil {
			return m.fail(classifyDecode(err))
		}
		entries = append(entries, convertEntry(raw, m.enc))
	}
	var gpus []types.GPUEntry
	if hdr.GPUEntryCount > 0 {
		gpus = make([]types.GPUEntry, 0, hdr.GPUEntryCount)
	}
	for i := range hdr.GPUEntryCount {
		raw, err := format.ParseGPUEntry(data, hdr, i)
		if err != nil {
			return m.fail(classifyDecode(err))
		}
		gpus = append(gpus, convertGPU(raw, m.enc))
	}

	h := convertHeader(hdr)
	m.replace(&h, entries, gpus)
	m.log.Debug("snapshot refreshed",
		"segment", m.name,
		"version", h.Version.String(),
		"entries", len(entries),
		"gpus", len(gpus),
		"generation", m.generation,
	)
	return nil
}

func (m *Monitor) replace(h *types.Header, entries []types.Entry, gpus []types.GPUEntry) {
	m.header = h
	m.entries = entries
	m.gpus = gpus
	m.generation++
	m.state = StateFresh
}

func (m *Monitor) fail(err error) error {
	m.log.Debug("refresh failed", "segment", m.name, "error", err, "state", m.state.String())
	return err
}

func (m *Monitor) closeSegment() error {
	if m.seg == nil {
		return nil
	}
	err := m.seg.Close()
	m.seg, m.view = nil, nil
	m.state = StateClosed
	return err
}

// Close unmaps the segment. The stored snapshot stays readable. Calling
// Close again is a no-op.
func (m *Monitor) Close() error {
	return m.closeSegment()
}

// State returns the current state.
func (m *Monitor) State() State { return m.state }

// Generation counts the snapshots stored so far, including cleared ones.
func (m *Monitor) Generation() uint64 { return m.generation }

// Header returns the stored header. ok is false before the first
// successful refresh and after the source reported the dead sentinel.
func (m *Monitor) Header() (types.Header, bool) {
	if m.header == nil {
		return types.Header{}, false
	}
	return *m.header, true
}

// Entries returns a copy of the stored entries.
func (m *Monitor) Entries() []types.Entry {
	return slices.Clone(m.entries)
}

// GPUs returns a copy of the stored GPU entries.
func (m *Monitor) GPUs() []types.GPUEntry {
	return slices.Clone(m.gpus)
}

// Snapshot returns a copy of the stored snapshot.
func (m *Monitor) Snapshot() types.Snapshot {
	s := types.Snapshot{
		Entries:    slices.Clone(m.entries),
		GPUs:       slices.Clone(m.gpus),
		Generation: m.generation,
	}
	if s.Entries == nil {
		s.Entries = []types.Entry{}
	}
	if m.header != nil {
		h := *m.header
		s.Header = &h
	}
	return s
}

// Refs returns a reference to every stored entry.
func (m *Monitor) Refs() []EntryRef {
	refs := make([]EntryRef, len(m.entries))
	for i := range refs {
		refs[i] = EntryRef{Generation: m.generation, Index: i}
	}
	return refs
}

// Entry resolves ref. It fails with ErrStale once the snapshot ref was taken
// from has been replaced or cleared.
func (m *Monitor) Entry(ref EntryRef) (types.Entry, error) {
	if ref.Generation != m.generation {
		return types.Entry{}, fmt.Errorf("entry %d of generation %d (current %d): %w",
			ref.Index, ref.Generation, m.generation, types.ErrStale)
	}
	if ref.Index < 0 || ref.Index >= len(m.entries) {
		return types.Entry{}, fmt.Errorf("entry %d of %d: %w", ref.Index, len(m.entries), types.ErrOutOfBounds)
	}
	return m.entries[ref.Index], nil
}

// Raw returns a copy of the mapped segment bytes. It fails when no segment
// is mapped.
func (m *Monitor) Raw() ([]byte, error) {
	if m.view == nil || !m.view.Valid() {
		return nil, fmt.Errorf("monitor: %w", shm.ErrClosed)
	}
	return slices.Clone(m.view.Bytes()), nil
}

// ReadOnce opens a Monitor, refreshes it once and returns the snapshot.
func ReadOnce(opts Options) (types.Snapshot, error) {
	m, err := New(opts)
	if err != nil {
		return types.Snapshot{}, err
	}
	defer m.Close()
	if err := m.Refresh(); err != nil {
		return m.Snapshot(), err
	}
	return m.Snapshot(), nil
}
