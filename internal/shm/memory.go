package shm

import (
	"fmt"
	"sync"
)

// MemoryBackend serves named regions held in process memory. Views alias the
// stored bytes, so a region updated with Store is visible through views
// mapped afterwards, like a real mapping.
type MemoryBackend struct {
	mu      sync.Mutex
	regions map[string][]byte
	handles map[Handle][]byte
	next    Handle
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		regions: make(map[string][]byte),
		handles: make(map[Handle][]byte),
	}
}

// Store publishes data under name, replacing any previous region.
func (m *MemoryBackend) Store(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions[name] = data
}

// Delete removes the named region. Open handles keep the old bytes.
func (m *MemoryBackend) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.regions, name)
}

// OpenHandle implements Backend.
func (m *MemoryBackend) OpenHandle(name string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.regions[name]
	if !ok {
		return 0, ErrNotFound
	}
	m.next++
	m.handles[m.next] = data
	return m.next, nil
}

// MapView implements Backend.
func (m *MemoryBackend) MapView(h Handle, offset, size int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.handles[h]
	if !ok {
		return nil, fmt.Errorf("%w: unknown handle %d", ErrMapFailed, h)
	}
	if size == 0 {
		size = len(data) - offset
	}
	if offset > len(data) || size < 0 || offset+size > len(data) {
		return nil, fmt.Errorf("%w: [%d,+%d) exceeds region of %d bytes", ErrMapFailed, offset, size, len(data))
	}
	if size == 0 {
		return []byte{}, nil
	}
	return data[offset : offset+size : offset+size], nil
}

// Unmap implements Backend.
func (m *MemoryBackend) Unmap(Handle, []byte) error { return nil }

// CloseHandle implements Backend.
func (m *MemoryBackend) CloseHandle(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.handles[h]; !ok {
		return fmt.Errorf("shm: close of unknown handle %d", h)
	}
	delete(m.handles, h)
	return nil
}
