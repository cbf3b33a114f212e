package storage

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_GetReturnsCopy(t *testing.T) {
	m := NewMemoryBackend(0)
	require.NoError(t, m.PutMany(map[string]Entry{"k": {Value: json.RawMessage(`"abc"`)}}))

	e, ok, err := m.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	e.Value[1] = 'z'

	again, _, _ := m.Get("k")
	assert.Equal(t, `"abc"`, string(again.Value))
}

func TestMemoryBackend_QuotaIsAllOrNothing(t *testing.T) {
	m := NewMemoryBackend(10)
	require.NoError(t, m.PutMany(map[string]Entry{"a": {Value: json.RawMessage(`12345`)}}))

	err := m.PutMany(map[string]Entry{"b": {Value: json.RawMessage(`123`)}, "c": {Value: json.RawMessage(`123`)}})
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	keys, _ := m.Keys()
	assert.Equal(t, []string{"a"}, keys)
}

func TestMemoryBackend_ReplacementDoesNotDoubleCount(t *testing.T) {
	m := NewMemoryBackend(6)
	require.NoError(t, m.PutMany(map[string]Entry{"a": {Value: json.RawMessage(`12345`)}}))
	assert.NoError(t, m.PutMany(map[string]Entry{"a": {Value: json.RawMessage(`123456`)}}))
}

func TestMemoryBackend_Delete(t *testing.T) {
	m := NewMemoryBackend(0)
	require.NoError(t, m.PutMany(map[string]Entry{"a": {Value: json.RawMessage(`1`)}}))
	require.NoError(t, m.Delete("a"))
	_, ok, _ := m.Get("a")
	assert.False(t, ok)
}
