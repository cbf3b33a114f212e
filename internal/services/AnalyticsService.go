package services

import (
	"citystate/internal/models"
	"citystate/internal/providers"
	"citystate/internal/storage"
	"citystate/internal/structures"
	"sync"
	"time"
)

type AnalyticsServiceInterface interface {
	Record(eventType string, payload map[string]any) models.AnalyticsEvent
	Append(events ...models.AnalyticsEvent)
	Events() []models.AnalyticsEvent
	Revision() uint64
}

// AnalyticsService keeps the bounded event log in memory and writes it
// through to the store on every append.
type AnalyticsService struct {
	mu       sync.Mutex
	store    *storage.Store
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	log      *models.BoundedLog[models.AnalyticsEvent]
	revision uint64
	clock    func() time.Time
}

func NewAnalyticsService(conf *structures.Config, store *storage.Store, logger providers.Logger, metrics providers.MetricsProviderInterface) AnalyticsServiceInterface {
	stored := storage.Load(store, storage.KeyAnalytics, []models.AnalyticsEvent{})
	log := models.NewBoundedLog(conf.Analytics.MaxEvents, stored)
	if len(stored) > log.Len() {
		logger.Infof(providers.TypeApp, "Analytics log trimmed from %d to %d events", len(stored), log.Len())
	}
	metrics.SetEventsTotal(log.Len())
	return &AnalyticsService{
		store:   store,
		logger:  logger,
		metrics: metrics,
		log:     log,
		clock:   time.Now,
	}
}

// Record stamps a new event with the current time and appends it.
func (as *AnalyticsService) Record(eventType string, payload map[string]any) models.AnalyticsEvent {
	ev := models.NewEvent(eventType, as.clock(), payload)
	as.Append(ev)
	return ev
}

// Append adds events, evicting the oldest beyond the cap.
func (as *AnalyticsService) Append(events ...models.AnalyticsEvent) {
	if len(events) == 0 {
		return
	}
	as.mu.Lock()
	defer as.mu.Unlock()

	as.log.Append(events...)
	as.revision++
	entries := as.log.Entries()
	as.store.Save(storage.KeyAnalytics, entries)
	as.metrics.SetEventsTotal(len(entries))
}

func (as *AnalyticsService) Events() []models.AnalyticsEvent {
	return as.log.Entries()
}

// Revision changes on every append. Read models key their caches on it.
func (as *AnalyticsService) Revision() uint64 {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.revision
}
