package blob

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu     sync.RWMutex
	quota  int
	values map[string][]byte
}

// NewMemory returns an in-process Store. A positive quota rejects any single
// value larger than quota bytes with ErrQuotaExceeded.
func NewMemory(quota int) Store {
	return &memoryStore{quota: quota, values: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte) error {
	if m.quota > 0 && len(value) > m.quota {
		return ErrQuotaExceeded
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.mu.Lock()
	m.values[key] = v
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}
