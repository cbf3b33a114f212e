package controllers

import (
	"citystate/internal/services"
	"citystate/internal/storage"
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"time"
)

type HealthController struct {
	store     *storage.Store
	analytics services.AnalyticsServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string   `json:"status"`
	Uptime        string   `json:"uptime"`
	UptimeSeconds float64  `json:"uptime_seconds"`
	Records       int      `json:"records"`
	Events        int      `json:"events"`
	Stale         []string `json:"stale,omitempty"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	keys := hc.store.Keys()
	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Records:       len(keys),
		Events:        len(hc.analytics.Events()),
		Stale:         staleKeys(hc.store, keys),
	}
	if len(resp.Stale) > 0 {
		resp.Status = "degraded"
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// staleKeys lists records stored below their registered schema version,
// which happens when a migration step failed on startup.
func staleKeys(store *storage.Store, keys []string) []string {
	var stale []string
	for _, key := range keys {
		entry, ok := store.LoadEntry(key)
		if ok && entry.SchemaVersion < store.SchemaVersion(key) {
			stale = append(stale, key)
		}
	}
	return stale
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(store *storage.Store, analytics services.AnalyticsServiceInterface) *HealthController {
	return &HealthController{
		store:     store,
		analytics: analytics,
		startTime: time.Now(),
	}
}
