package services

import (
	"citystate/internal/models"
	"citystate/internal/storage"
	"citystate/internal/testutil"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalytics(store *storage.Store, metrics *testutil.MockMetrics) *AnalyticsService {
	as := NewAnalyticsService(testConfig(), store, &testutil.MockLogger{}, metrics).(*AnalyticsService)
	as.clock = func() time.Time { return fixedNow }
	return as
}

func TestAnalyticsService_RecordPersists(t *testing.T) {
	store := newTestStore()
	metrics := testutil.NewMockMetrics()
	as := newTestAnalytics(store, metrics)

	ev := as.Record(models.EventClick, map[string]any{"campaignId": "X", "placementId": "b1"})

	assert.Equal(t, fixedNow.UnixMilli(), ev.Timestamp)
	stored := storage.Load(store, storage.KeyAnalytics, []models.AnalyticsEvent{})
	require.Len(t, stored, 1)
	assert.Equal(t, models.EventClick, stored[0].Type)
	assert.Equal(t, "X", stored[0].CampaignID())
	assert.Equal(t, 1, metrics.EventsTotal)
}

func TestAnalyticsService_EvictsOldestBeyondCap(t *testing.T) {
	store := newTestStore()
	as := newTestAnalytics(store, testutil.NewMockMetrics())

	for i := 0; i < 205; i++ {
		as.Record(models.EventImpression, map[string]any{"campaignId": fmt.Sprintf("c%d", i)})
	}

	events := as.Events()
	require.Len(t, events, 200)
	assert.Equal(t, "c5", events[0].CampaignID())
	assert.Equal(t, "c204", events[199].CampaignID())

	reloaded := newTestAnalytics(store, testutil.NewMockMetrics())
	assert.Len(t, reloaded.Events(), 200)
}

func TestAnalyticsService_TrimsOversizedStoredLog(t *testing.T) {
	store := newTestStore()
	events := make([]models.AnalyticsEvent, 250)
	for i := range events {
		events[i] = models.NewEvent(models.EventDwell, fixedNow, map[string]any{"seconds": i})
	}
	store.Save(storage.KeyAnalytics, events)

	as := newTestAnalytics(store, testutil.NewMockMetrics())

	got := as.Events()
	require.Len(t, got, 200)
	assert.Equal(t, float64(50), got[0].Seconds())
}

func TestAnalyticsService_RevisionAdvances(t *testing.T) {
	as := newTestAnalytics(newTestStore(), testutil.NewMockMetrics())
	before := as.Revision()

	as.Append()
	assert.Equal(t, before, as.Revision())

	as.Record(models.EventClick, nil)
	assert.Equal(t, before+1, as.Revision())
}
