package services

import (
	"citystate/internal/models"
	"citystate/internal/storage"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_AppendsWhenEnabled(t *testing.T) {
	store := newTestStore()
	a := newTestAudit(store)

	ok := a.Append("admin@city.test", "role_set", map[string]any{"email": "x@y"})

	require.True(t, ok)
	entries := a.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "role_set", entries[0].Action)
	assert.Equal(t, fixedNow.UnixMilli(), entries[0].Timestamp)
	_, err := uuid.Parse(entries[0].ID)
	assert.NoError(t, err)

	stored := storage.Load(store, storage.KeyAdminLog, []models.AdminLogEntry{})
	assert.Len(t, stored, 1)
}

func TestAuditService_DisabledFlagSkips(t *testing.T) {
	store := newTestStore()
	store.Save(storage.KeyFlags, models.Flags{models.FlagEnableAuditLog: false})
	a := newTestAudit(store)

	assert.False(t, a.Append("admin@city.test", "role_set", nil))
	assert.Empty(t, a.Entries())
	assert.False(t, store.Has(storage.KeyAdminLog))
}

func TestAuditService_SystemActor(t *testing.T) {
	a := newTestAudit(newTestStore())
	a.Append("", "panel_failure", nil)
	assert.Equal(t, "system", a.Entries()[0].Actor)
}

func TestAuditService_Bounded(t *testing.T) {
	a := newTestAudit(newTestStore())
	for i := 0; i < 210; i++ {
		a.Append("admin", "tick", map[string]any{"i": i})
	}
	entries := a.Entries()
	require.Len(t, entries, 200)
	assert.EqualValues(t, 10, entries[0].Payload["i"])
}
