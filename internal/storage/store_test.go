package storage

import (
	"citystate/internal/testutil"
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBackend struct {
	*MemoryBackend
	getErr error
	putErr error
}

func (f *failingBackend) Get(key string) (Entry, bool, error) {
	if f.getErr != nil {
		return Entry{}, false, f.getErr
	}
	return f.MemoryBackend.Get(key)
}

func (f *failingBackend) PutMany(entries map[string]Entry) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemoryBackend.PutMany(entries)
}

type sample struct {
	Name  string            `json:"name"`
	Tags  []string          `json:"tags"`
	Inner map[string]string `json:"inner"`
}

func newTestStore(b Backend) (*Store, *testutil.MockLogger, *testutil.MockMetrics) {
	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()
	return NewStore(b, logger, metrics), logger, metrics
}

func TestStore_Load_MissingKeyReturnsDefault(t *testing.T) {
	s, _, _ := newTestStore(NewMemoryBackend(0))
	got := Load(s, "missing", []string{"default"})
	assert.Equal(t, []string{"default"}, got)
}

func TestStore_Load_CorruptValueReturnsDefault(t *testing.T) {
	b := NewMemoryBackend(0)
	require.NoError(t, b.PutMany(map[string]Entry{"k": {Value: json.RawMessage(`{"name":`)}}))
	s, logger, metrics := newTestStore(b)

	got := Load(s, "k", sample{Name: "fallback"})
	assert.Equal(t, "fallback", got.Name)
	assert.Equal(t, 1, metrics.Failures("decode"))
	assert.Equal(t, 1, logger.Count("warn"))
}

func TestStore_Load_WrongShapeReturnsDefault(t *testing.T) {
	b := NewMemoryBackend(0)
	require.NoError(t, b.PutMany(map[string]Entry{"k": {Value: json.RawMessage(`"a string"`)}}))
	s, _, _ := newTestStore(b)

	got := Load(s, "k", []int{7})
	assert.Equal(t, []int{7}, got)
}

func TestStore_Load_BackendErrorReturnsDefault(t *testing.T) {
	s, _, metrics := newTestStore(&failingBackend{MemoryBackend: NewMemoryBackend(0), getErr: errors.New("io")})
	assert.Equal(t, 3, Load(s, "k", 3))
	assert.Equal(t, 1, metrics.Failures("load"))
}

func TestStore_SaveLoad_DeepRoundTrip(t *testing.T) {
	s, _, metrics := newTestStore(NewMemoryBackend(0))
	in := sample{Name: "n", Tags: []string{"a", "b"}, Inner: map[string]string{"x": "y"}}

	s.Save("k", in)
	out := Load(s, "k", sample{})

	assert.Equal(t, in, out)
	assert.Equal(t, 1, metrics.Persistence)
}

func TestStore_Save_StampsRegisteredVersion(t *testing.T) {
	b := NewMemoryBackend(0)
	s, _, _ := newTestStore(b)
	s.SetSchemaVersion(KeyUsers, 2)

	s.Save(KeyUsers, []string{})

	e, ok, _ := b.Get(KeyUsers)
	require.True(t, ok)
	assert.Equal(t, 2, e.SchemaVersion)
}

func TestStore_Save_QuotaFailureIsSwallowed(t *testing.T) {
	s, logger, metrics := newTestStore(NewMemoryBackend(4))

	assert.NotPanics(t, func() { s.Save("k", "far too long for the quota") })
	assert.False(t, s.Has("k"))
	assert.Equal(t, 1, metrics.Failures("save"))
	assert.True(t, logger.Contains("warn", "dropped"))
}

func TestStore_Save_UnencodableValueIsSwallowed(t *testing.T) {
	s, _, metrics := newTestStore(NewMemoryBackend(0))
	s.Save("k", func() {})
	assert.False(t, s.Has("k"))
	assert.Equal(t, 1, metrics.Failures("encode"))
}

func TestStore_SaveAll_AllOrNothing(t *testing.T) {
	b := &failingBackend{MemoryBackend: NewMemoryBackend(0), putErr: errors.New("disk full")}
	s, _, _ := newTestStore(b)

	s.SaveAll(map[string]any{KeyFlags: map[string]bool{"a": true}, KeyScene: map[string]any{}})

	assert.False(t, s.Has(KeyFlags))
	assert.False(t, s.Has(KeyScene))
}

func TestStore_SaveEntryAndDelete(t *testing.T) {
	s, _, _ := newTestStore(NewMemoryBackend(0))
	ok := s.SaveEntry("k", Entry{SchemaVersion: 3, Value: json.RawMessage(`1`)})
	require.True(t, ok)

	e, found := s.LoadEntry("k")
	require.True(t, found)
	assert.Equal(t, 3, e.SchemaVersion)
	assert.Equal(t, []string{"k"}, s.Keys())

	s.Delete("k")
	assert.False(t, s.Has("k"))
}
