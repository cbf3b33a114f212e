package storage

import (
	"citystate/internal/testutil"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteBackend(t *testing.T, quota int) *SQLiteBackend {
	t.Helper()
	sb, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "city.db"), quota, &testutil.MockLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sb.Close() })
	return sb
}

func TestSQLiteBackend_RoundTripAndUpsert(t *testing.T) {
	sb := newTestSQLiteBackend(t, 0)

	require.NoError(t, sb.PutMany(map[string]Entry{KeyFlags: {SchemaVersion: 1, Value: json.RawMessage(`{"a":true}`)}}))
	require.NoError(t, sb.PutMany(map[string]Entry{KeyFlags: {SchemaVersion: 2, Value: json.RawMessage(`{"a":false}`)}}))

	e, ok, err := sb.Get(KeyFlags)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, e.SchemaVersion)
	assert.JSONEq(t, `{"a":false}`, string(e.Value))
}

func TestSQLiteBackend_MissingKey(t *testing.T) {
	sb := newTestSQLiteBackend(t, 0)
	_, ok, err := sb.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteBackend_QuotaRollsBack(t *testing.T) {
	sb := newTestSQLiteBackend(t, 16)
	require.NoError(t, sb.PutMany(map[string]Entry{"a": {Value: json.RawMessage(`"12345"`)}}))

	err := sb.PutMany(map[string]Entry{
		"b": {Value: json.RawMessage(`"1234567890"`)},
		"c": {Value: json.RawMessage(`"1234567890"`)},
	})
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	keys, err := sb.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)
}

func TestSQLiteBackend_DeleteAndKeys(t *testing.T) {
	sb := newTestSQLiteBackend(t, 0)
	require.NoError(t, sb.PutMany(map[string]Entry{
		KeyUsers:   {Value: json.RawMessage(`[]`)},
		KeySession: {Value: json.RawMessage(`{}`)},
	}))
	require.NoError(t, sb.Delete(KeySession))

	keys, err := sb.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyUsers}, keys)
}
