package storage

import (
	"citystate/internal/providers"
	"citystate/internal/structures"
	"fmt"
)

// NewBackendProvider opens the backend named in the storage config.
func NewBackendProvider(conf *structures.Config, logger providers.Logger) (Backend, error) {
	switch conf.Storage.Backend {
	case "file":
		compressor, err := NewZstdCompressor()
		if err != nil {
			return nil, err
		}
		return NewFileBackend(conf.Storage.FilePath, conf.Storage.QuotaBytes, compressor, logger)
	case "sqlite":
		return NewSQLiteBackend(conf.Storage.SqlitePath, conf.Storage.QuotaBytes, logger)
	case "memory":
		logger.Warnf(providers.TypeStore, "Using in-memory store, nothing will survive a restart")
		return NewMemoryBackend(conf.Storage.QuotaBytes), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, conf.Storage.Backend)
}
