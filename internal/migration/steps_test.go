package migration

import (
	"citystate/internal/models"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFlags_StoredWins(t *testing.T) {
	defaults := models.Flags{"a": true, "b": false}
	stored := models.Flags{"a": false, "legacy": true}

	merged := MergeFlags(defaults, stored)

	assert.Equal(t, models.Flags{"a": false, "b": false, "legacy": true}, merged)
}

func TestMergeFlags_Idempotent(t *testing.T) {
	defaults := models.DefaultFlags()
	inputs := []models.Flags{
		nil,
		{},
		{models.FlagMissionsForGuest: true},
		{models.FlagEnableAuditLog: false, "retired": true},
		models.DefaultFlags(),
	}
	for _, stored := range inputs {
		once := MergeFlags(defaults, stored)
		twice := MergeFlags(defaults, once)
		assert.True(t, once.Equal(twice), "stored=%v", stored)
		for k := range defaults {
			_, ok := once[k]
			assert.True(t, ok, "default %q missing", k)
		}
	}
}

func TestBackfillRoles(t *testing.T) {
	users := []map[string]any{
		{"email": "a@x"},
		{"email": "b@x", "role": "ADMIN"},
		{"email": "c@x", "role": ""},
		{"email": "d@x", "role": nil},
	}

	changed := BackfillRoles(users)

	assert.Equal(t, 3, changed)
	assert.Equal(t, "VIEWER", users[0]["role"])
	assert.Equal(t, "ADMIN", users[1]["role"])
	assert.Equal(t, "VIEWER", users[2]["role"])
	assert.Equal(t, "VIEWER", users[3]["role"])
}

func TestBackfillAccountTypes(t *testing.T) {
	users := []map[string]any{
		{"email": "a@x"},
		{"email": "b@x", "orgContext": map[string]any{"orgId": "o1"}},
		{"email": "c@x", "accountType": "guest"},
	}

	assert.Equal(t, 2, BackfillAccountTypes(users))
	assert.Equal(t, "individual", users[0]["accountType"])
	assert.Equal(t, "organization", users[1]["accountType"])
	assert.Equal(t, "guest", users[2]["accountType"])
}

func TestUsersStep_KeepsUnknownFields(t *testing.T) {
	raw := json.RawMessage(`[{"email":"a@x","avatar":"cat.png","joined":1700000000000}]`)

	out, err := usersStep(BackfillRoles)(raw)
	require.NoError(t, err)

	var users []map[string]any
	require.NoError(t, json.Unmarshal(out, &users))
	assert.Equal(t, "cat.png", users[0]["avatar"])
	assert.Equal(t, "VIEWER", users[0]["role"])
	assert.EqualValues(t, 1700000000000, users[0]["joined"])
}

func TestUsersStep_RejectsNonList(t *testing.T) {
	_, err := usersStep(BackfillRoles)(json.RawMessage(`{"not":"a list"}`))
	assert.Error(t, err)
}
