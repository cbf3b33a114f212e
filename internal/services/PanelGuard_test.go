package services

import (
	"citystate/internal/testutil"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_Render(t *testing.T) {
	audit := newTestAudit(newTestStore())
	g := NewGuard(audit, &testutil.MockLogger{})

	ok := g.Render("leaderboard", "a@x", func() (any, error) { return []int{1}, nil })
	assert.True(t, ok.OK)
	assert.Equal(t, []int{1}, ok.Data)
	assert.Empty(t, audit.Entries())

	failed := g.Render("campaigns", "a@x", func() (any, error) { return nil, errors.New("bad data") })
	assert.False(t, failed.OK)
	assert.Nil(t, failed.Data)
	assert.Equal(t, PanelFallbackMessage, failed.Message)

	panicked := g.Render("brand", "a@x", func() (any, error) { panic("nil map") })
	assert.False(t, panicked.OK)
	assert.Equal(t, "brand", panicked.Panel)

	entries := audit.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "panel_failure", entries[0].Action)
	assert.Equal(t, "campaigns", entries[0].Payload["panel"])
	assert.Contains(t, entries[1].Payload["error"], "nil map")
}
