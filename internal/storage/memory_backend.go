package storage

import (
	"sort"
	"sync"
)

// MemoryBackend keeps records in process memory. A positive quota bounds the
// summed size of all values.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]Entry
	quota   int
}

func NewMemoryBackend(quota int) *MemoryBackend {
	return &MemoryBackend{records: make(map[string]Entry), quota: quota}
}

func (m *MemoryBackend) Get(key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.records[key]
	if !ok {
		return Entry{}, false, nil
	}
	return cloneEntry(e), true, nil
}

func (m *MemoryBackend) PutMany(entries map[string]Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		size := 0
		for k, e := range m.records {
			if _, replaced := entries[k]; !replaced {
				size += len(e.Value)
			}
		}
		for _, e := range entries {
			size += len(e.Value)
		}
		if size > m.quota {
			return ErrQuotaExceeded
		}
	}

	for k, e := range entries {
		m.records[k] = cloneEntry(e)
	}
	return nil
}

func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

func (m *MemoryBackend) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryBackend) Close() error { return nil }
