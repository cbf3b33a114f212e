package storage

import (
	"citystate/internal/providers"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// Store wraps a Backend with the local-storage contract: reads fall back to
// a default, writes never fail the caller. Failures are logged and counted.
type Store struct {
	backend  Backend
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	mu       sync.RWMutex
	versions map[string]int
}

func NewStore(backend Backend, logger providers.Logger, metrics providers.MetricsProviderInterface) *Store {
	return &Store{
		backend:  backend,
		logger:   logger,
		metrics:  metrics,
		versions: make(map[string]int),
	}
}

// SetSchemaVersion declares the version that fresh writes of key are stamped with.
func (s *Store) SetSchemaVersion(key string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[key] = version
}

func (s *Store) SchemaVersion(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[key]
}

// Load returns the value stored under key, or def when the key is absent or
// its value cannot be decoded into T.
func Load[T any](s *Store, key string, def T) T {
	entry, ok := s.LoadEntry(key)
	if !ok {
		return def
	}
	var v T
	if err := json.Unmarshal(entry.Value, &v); err != nil {
		s.logger.Warnf(providers.TypeStore, "Unable to decode %q, using default: %s", key, err)
		s.metrics.IncStoreFailures("decode")
		return def
	}
	return v
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.LoadEntry(key)
	return ok
}

// LoadEntry returns the raw record. Backend errors read as absence.
func (s *Store) LoadEntry(key string) (Entry, bool) {
	entry, ok, err := s.backend.Get(key)
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "Unable to read %q: %s", key, err)
		s.metrics.IncStoreFailures("load")
		return Entry{}, false
	}
	return entry, ok
}

// Save encodes and writes value under key.
func (s *Store) Save(key string, value any) {
	s.SaveAll(map[string]any{key: value})
}

// SaveAll writes several records as one backend transaction: either every
// record lands or none does.
func (s *Store) SaveAll(values map[string]any) {
	entries := make(map[string]Entry, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			s.logger.Errorf(providers.TypeStore, "Unable to encode %q, write dropped: %s", key, err)
			s.metrics.IncStoreFailures("encode")
			return
		}
		entries[key] = Entry{SchemaVersion: s.SchemaVersion(key), Value: raw}
	}
	s.put(entries)
}

// SaveEntry writes a raw record with an explicit schema version and reports
// whether it was persisted.
func (s *Store) SaveEntry(key string, entry Entry) bool {
	return s.put(map[string]Entry{key: entry})
}

func (s *Store) Delete(key string) {
	if err := s.backend.Delete(key); err != nil {
		s.logger.Warnf(providers.TypeStore, "Unable to delete %q: %s", key, err)
		s.metrics.IncStoreFailures("delete")
	}
}

func (s *Store) Keys() []string {
	keys, err := s.backend.Keys()
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "Unable to list keys: %s", err)
		s.metrics.IncStoreFailures("keys")
		return nil
	}
	return keys
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) put(entries map[string]Entry) bool {
	start := time.Now()
	err := s.backend.PutMany(entries)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		s.logger.Warnf(providers.TypeStore, "Write of %v dropped: %s", keys, err)
		s.metrics.IncStoreFailures("save")
		return false
	}
	return true
}
