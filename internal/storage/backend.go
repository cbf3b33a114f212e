// Package storage persists named JSON records behind a fail-safe store.
package storage

import (
	"errors"

	json "github.com/goccy/go-json"
)

var (
	// ErrQuotaExceeded is returned by a backend when a write would grow the
	// stored data past its configured quota. Nothing is written.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrUnknownBackend is returned for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Entry is a record as persisted: the encoded value and the schema version
// it was written with.
type Entry struct {
	SchemaVersion int             `json:"schemaVersion"`
	Value         json.RawMessage `json:"value"`
}

// Backend is the raw persistence layer. PutMany applies all entries or none.
type Backend interface {
	Get(key string) (Entry, bool, error)
	PutMany(entries map[string]Entry) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

func cloneEntry(e Entry) Entry {
	raw := make(json.RawMessage, len(e.Value))
	copy(raw, e.Value)
	return Entry{SchemaVersion: e.SchemaVersion, Value: raw}
}
