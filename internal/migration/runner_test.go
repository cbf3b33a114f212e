package migration

import (
	"citystate/internal/models"
	"citystate/internal/storage"
	"citystate/internal/testutil"
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, seed map[string]storage.Entry) (*Runner, *storage.Store, *testutil.MockMetrics) {
	t.Helper()
	backend := storage.NewMemoryBackend(0)
	if len(seed) > 0 {
		require.NoError(t, backend.PutMany(seed))
	}
	metrics := testutil.NewMockMetrics()
	store := storage.NewStore(backend, &testutil.MockLogger{}, metrics)
	return NewRunner(store, &testutil.MockLogger{}, metrics), store, metrics
}

func TestRunner_FreshStore(t *testing.T) {
	r, store, _ := newTestRunner(t, nil)

	report := r.Run()

	assert.Empty(t, report.Migrated)
	assert.True(t, report.FlagsMerged)
	assert.ElementsMatch(t, []string{storage.KeySeasonPass, storage.KeyLeads, storage.KeyFlights, storage.KeyComplianceNotes}, report.Bootstrapped)

	flags := storage.Load(store, storage.KeyFlags, models.Flags(nil))
	assert.True(t, flags.Equal(models.DefaultFlags()))
	e, ok := store.LoadEntry(storage.KeyFlags)
	require.True(t, ok)
	assert.Equal(t, 1, e.SchemaVersion)
}

func TestRunner_UpgradesLegacyUsers(t *testing.T) {
	r, store, metrics := newTestRunner(t, map[string]storage.Entry{
		storage.KeyUsers: {Value: json.RawMessage(`[
			{"email":"old@x","password":"p","name":"Old"},
			{"email":"admin@x","password":"p","name":"Admin","role":"ADMIN"},
			{"email":"org@x","password":"p","name":"Org","orgContext":{"orgId":"o1","orgName":"Acme"}}
		]`)},
	})

	report := r.Run()

	assert.Equal(t, []string{storage.KeyUsers}, report.Migrated)
	assert.Equal(t, 1, metrics.Migrations[storage.KeyUsers])

	users := storage.Load(store, storage.KeyUsers, []*models.User(nil))
	require.Len(t, users, 3)
	for _, u := range users {
		assert.NotEmpty(t, u.Role)
	}
	assert.Equal(t, models.RoleViewer, users[0].Role)
	assert.Equal(t, models.RoleAdmin, users[1].Role)
	assert.Equal(t, models.AccountIndividual, users[0].AccountType)
	assert.Equal(t, models.AccountOrganization, users[2].AccountType)

	e, _ := store.LoadEntry(storage.KeyUsers)
	assert.Equal(t, 2, e.SchemaVersion)
}

func TestRunner_SecondRunIsNoop(t *testing.T) {
	r, _, metrics := newTestRunner(t, map[string]storage.Entry{
		storage.KeyUsers: {Value: json.RawMessage(`[{"email":"a@x"}]`)},
		storage.KeyFlags: {Value: json.RawMessage(`{"missionsForGuest":true}`)},
	})
	first := r.Run()
	require.ElementsMatch(t, []string{storage.KeyFlags, storage.KeyUsers}, first.Migrated)

	second := r.Run()

	assert.Empty(t, second.Migrated)
	assert.False(t, second.FlagsMerged)
	assert.Empty(t, second.Bootstrapped)
	assert.Equal(t, 1, metrics.Migrations[storage.KeyFlags])
}

func TestRunner_StoredFlagValuesWin(t *testing.T) {
	r, store, _ := newTestRunner(t, map[string]storage.Entry{
		storage.KeyFlags: {SchemaVersion: 1, Value: json.RawMessage(`{"enableAuditLog":false,"retired":true}`)},
	})

	report := r.Run()

	assert.True(t, report.FlagsMerged)
	flags := storage.Load(store, storage.KeyFlags, models.Flags(nil))
	assert.False(t, flags[models.FlagEnableAuditLog])
	assert.True(t, flags["retired"])
	assert.True(t, flags[models.FlagShowMyProgress])
}

func TestRunner_FailedStepKeepsLastGoodVersion(t *testing.T) {
	backend := storage.NewMemoryBackend(0)
	require.NoError(t, backend.PutMany(map[string]storage.Entry{
		"widgets": {Value: json.RawMessage(`1`)},
	}))
	store := storage.NewStore(backend, &testutil.MockLogger{}, testutil.NewMockMetrics())
	plan := Plan{Key: "widgets", Steps: []Step{
		func(raw json.RawMessage) (json.RawMessage, error) { return json.RawMessage(`2`), nil },
		func(raw json.RawMessage) (json.RawMessage, error) { return nil, errors.New("broken") },
	}}
	r := newRunner(store, &testutil.MockLogger{}, testutil.NewMockMetrics(), []Plan{plan})

	report := r.Run()

	assert.Equal(t, []string{"widgets"}, report.Failed)
	e, ok := store.LoadEntry("widgets")
	require.True(t, ok)
	assert.Equal(t, 1, e.SchemaVersion)
	assert.Equal(t, "2", string(e.Value))
}

func TestRunner_MalformedFlagsAreNotReplacedByDefaults(t *testing.T) {
	raw := json.RawMessage(`{"enableAuditLog":false,"missionsForGuest":true,"legacyBeta":"1"}`)
	r, store, _ := newTestRunner(t, map[string]storage.Entry{
		storage.KeyFlags: {Value: raw},
	})

	report := r.Run()

	assert.Contains(t, report.Failed, storage.KeyFlags)
	assert.False(t, report.FlagsMerged)
	e, ok := store.LoadEntry(storage.KeyFlags)
	require.True(t, ok)
	assert.Equal(t, 0, e.SchemaVersion)
	assert.Equal(t, string(raw), string(e.Value))

	report = r.Run()
	assert.Contains(t, report.Failed, storage.KeyFlags)
	e, _ = store.LoadEntry(storage.KeyFlags)
	assert.Equal(t, string(raw), string(e.Value))
}

func TestRunner_BootstrapKeepsExisting(t *testing.T) {
	r, store, _ := newTestRunner(t, map[string]storage.Entry{
		storage.KeyLeads: {Value: json.RawMessage(`[{"email":"lead@x"}]`)},
	})

	report := r.Run()

	assert.NotContains(t, report.Bootstrapped, storage.KeyLeads)
	leads := storage.Load(store, storage.KeyLeads, []map[string]any(nil))
	assert.Len(t, leads, 1)
}
