package storage

import (
	"citystate/internal/providers"
	"citystate/internal/storage/interfaces"
	"os"
	"path/filepath"
	"sort"
	"sync"

	json "github.com/goccy/go-json"
)

const documentVersion = 1

// document is the on-disk envelope: every record lives in one file so a
// multi-record write is a single rename.
type document struct {
	Version int              `json:"version"`
	Records map[string]Entry `json:"records"`
}

// FileBackend keeps the whole store in one compressed JSON document and
// rewrites it atomically on every change.
type FileBackend struct {
	mu         sync.RWMutex
	path       string
	quota      int
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	records    map[string]Entry
}

func NewFileBackend(path string, quota int, compressor interfaces.CompressorInterface, logger providers.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	fb := &FileBackend{
		path:       path,
		quota:      quota,
		compressor: compressor,
		logger:     logger,
		records:    make(map[string]Entry),
	}
	fb.load()
	return fb, nil
}

func (f *FileBackend) Get(key string) (Entry, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.records[key]
	if !ok {
		return Entry{}, false, nil
	}
	return cloneEntry(e), true, nil
}

func (f *FileBackend) PutMany(entries map[string]Entry) error {
	return f.commit(func(next map[string]Entry) {
		for k, e := range entries {
			next[k] = cloneEntry(e)
		}
	})
}

func (f *FileBackend) Delete(key string) error {
	return f.commit(func(next map[string]Entry) {
		delete(next, key)
	})
}

func (f *FileBackend) Keys() ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	keys := make([]string, 0, len(f.records))
	for k := range f.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileBackend) Close() error {
	f.compressor.Close()
	return nil
}

// commit applies mutate to a copy of the records and swaps it in only after
// the new document is on disk.
func (f *FileBackend) commit(mutate func(next map[string]Entry)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make(map[string]Entry, len(f.records)+1)
	for k, e := range f.records {
		next[k] = e
	}
	mutate(next)

	jsonData, err := json.Marshal(document{Version: documentVersion, Records: next})
	if err != nil {
		return err
	}
	if f.quota > 0 && len(jsonData) > f.quota {
		return ErrQuotaExceeded
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}
	if err := writeAtomic(f.path, data); err != nil {
		return err
	}
	f.records = next
	return nil
}

func writeAtomic(fileName string, data []byte) error {
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// load reads the document at startup. An unreadable document is moved aside
// and the store starts empty.
func (f *FileBackend) load() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Errorf(providers.TypeStore, "Unable to read %s: %s", f.path, err)
		}
		return
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		f.logger.Errorf(providers.TypeStore, "Unable to decompress %s: %s", f.path, err)
		f.quarantine()
		return
	}

	var doc document
	if err := json.Unmarshal(decompressed, &doc); err == nil && doc.Version > 0 && doc.Records != nil {
		f.records = doc.Records
		return
	}

	// Flat {"key": <value>} export from the browser's local storage.
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(decompressed, &flat); err != nil {
		f.logger.Errorf(providers.TypeStore, "Unable to parse %s: %s", f.path, err)
		f.quarantine()
		return
	}
	f.logger.Warnf(providers.TypeStore, "Importing %d records from flat document %s", len(flat), f.path)
	for k, v := range flat {
		f.records[k] = Entry{SchemaVersion: 0, Value: v}
	}
}

func (f *FileBackend) quarantine() {
	target := f.path + ".corrupt"
	if err := os.Rename(f.path, target); err != nil {
		f.logger.Errorf(providers.TypeStore, "Unable to move corrupt document aside: %s", err)
		return
	}
	f.logger.Warnf(providers.TypeStore, "Corrupt document moved to %s", target)
}
