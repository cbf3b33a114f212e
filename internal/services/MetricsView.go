package services

import (
	"citystate/internal/access"
	"citystate/internal/models"
	"citystate/internal/providers"
	"fmt"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	json "github.com/goccy/go-json"
)

// UnscopedCampaign collects events that carry no campaign id.
const UnscopedCampaign = "unscoped"

type CampaignMetrics struct {
	CampaignID   string  `json:"campaignId"`
	SponsorName  string  `json:"sponsorName"`
	Impressions  int     `json:"impressions"`
	Clicks       int     `json:"clicks"`
	DwellSeconds float64 `json:"dwellSeconds"`
	CTR          float64 `json:"ctr"`
	CTRLabel     string  `json:"ctrLabel"`
	Reach        uint64  `json:"reach"`
}

// PlacementReport is the brand panel metrics block of one placement. A
// redacted report carries no numbers at all.
type PlacementReport struct {
	PlacementID string           `json:"placementId"`
	Redacted    bool             `json:"redacted"`
	Message     string           `json:"message,omitempty"`
	Metrics     *CampaignMetrics `json:"metrics,omitempty"`
}

const redactedMessage = "Confidential: metrics are visible to the renting organization only."

// CTR is clicks over impressions, 0 without impressions.
func CTR(clicks, impressions int) float64 {
	if impressions <= 0 {
		return 0
	}
	return float64(clicks) / float64(impressions)
}

func FormatCTR(ctr float64) string {
	return fmt.Sprintf("%.2f%%", ctr*100)
}

// scopeFilter returns the predicate deciding which events may enter the
// aggregate for v, or nil when v may see nothing.
func scopeFilter(v access.Viewer, placements map[string]*models.Placement) func(models.AnalyticsEvent) bool {
	if v.IsAdmin() {
		return func(models.AnalyticsEvent) bool { return true }
	}
	if v.AccountType != models.AccountOrganization || v.OrgID() == "" {
		return nil
	}
	return func(ev models.AnalyticsEvent) bool {
		return access.CanSeeMetrics(v, placements[ev.PlacementID()])
	}
}

// tally accumulates one campaign. Viewer ids are mapped to dense integers
// shared across tallies of the same aggregation.
type tally struct {
	m         CampaignMetrics
	viewers   *roaring.Bitmap
	viewerIDs map[string]uint32
}

func newTally(id string, viewerIDs map[string]uint32) *tally {
	return &tally{m: CampaignMetrics{CampaignID: id}, viewers: roaring.New(), viewerIDs: viewerIDs}
}

func (t *tally) add(ev models.AnalyticsEvent) {
	switch ev.Type {
	case models.EventImpression:
		t.m.Impressions++
	case models.EventClick:
		t.m.Clicks++
	case models.EventDwell:
		t.m.DwellSeconds += ev.Seconds()
	}
	if viewer := ev.ViewerID(); viewer != "" {
		n, seen := t.viewerIDs[viewer]
		if !seen {
			n = uint32(len(t.viewerIDs))
			t.viewerIDs[viewer] = n
		}
		t.viewers.Add(n)
	}
}

func (t *tally) result() CampaignMetrics {
	m := t.m
	m.CTR = CTR(m.Clicks, m.Impressions)
	m.CTRLabel = FormatCTR(m.CTR)
	m.Reach = t.viewers.GetCardinality()
	return m
}

// AggregateCampaigns filters events by the viewer's ownership scope and
// then groups them by campaign. Events outside the scope never reach the
// counters.
func AggregateCampaigns(events []models.AnalyticsEvent, placements map[string]*models.Placement, v access.Viewer) []CampaignMetrics {
	keep := scopeFilter(v, placements)
	if keep == nil {
		return []CampaignMetrics{}
	}

	viewerIDs := make(map[string]uint32)
	byCampaign := make(map[string]*tally)
	for _, ev := range events {
		if !keep(ev) {
			continue
		}
		id := ev.CampaignID()
		if id == "" {
			id = UnscopedCampaign
		}
		t, ok := byCampaign[id]
		if !ok {
			t = newTally(id, viewerIDs)
			byCampaign[id] = t
		}
		if t.m.SponsorName == "" {
			t.m.SponsorName = sponsorOf(ev, placements)
		}
		t.add(ev)
	}

	out := make([]CampaignMetrics, 0, len(byCampaign))
	for _, t := range byCampaign {
		out = append(out, t.result())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CampaignID < out[j].CampaignID })
	return out
}

func sponsorOf(ev models.AnalyticsEvent, placements map[string]*models.Placement) string {
	if name := ev.SponsorName(); name != "" {
		return name
	}
	if p := placements[ev.PlacementID()]; p != nil && p.Brand != nil {
		return p.Brand.OrgName
	}
	return ""
}

type MetricsViewInterface interface {
	Campaigns(v access.Viewer) []CampaignMetrics
	CampaignsJSON(v access.Viewer) ([]byte, error)
	PlacementMetrics(placementID string, v access.Viewer) PlacementReport
}

// MetricsView serves aggregates to the brand panel and admin dashboard.
type MetricsView struct {
	analytics AnalyticsServiceInterface
	scene     SceneServiceInterface
	cache     providers.CacheProviderInterface
	logger    providers.Logger

	mu   sync.Mutex
	keys map[string]string
}

func NewMetricsView(analytics AnalyticsServiceInterface, scene SceneServiceInterface, cache providers.CacheProviderInterface, logger providers.Logger) MetricsViewInterface {
	return &MetricsView{analytics: analytics, scene: scene, cache: cache, logger: logger, keys: make(map[string]string)}
}

func (mv *MetricsView) Campaigns(v access.Viewer) []CampaignMetrics {
	return AggregateCampaigns(mv.analytics.Events(), mv.scene.Scene().Placements, v)
}

func scopeKey(v access.Viewer) string {
	switch {
	case v.IsAdmin():
		return "admin"
	case v.AccountType == models.AccountOrganization && v.OrgID() != "":
		return "org:" + v.OrgID()
	}
	return "none"
}

// CampaignsJSON returns the encoded campaign report. The cache key carries
// the analytics and scene revisions, so any append or rental change misses.
// Each scope keeps one report; the superseded one is evicted on refresh.
func (mv *MetricsView) CampaignsJSON(v access.Viewer) ([]byte, error) {
	scope := scopeKey(v)
	key := fmt.Sprintf("campaigns:%s:%d:%d", scope, mv.analytics.Revision(), mv.scene.Revision())
	if data, ok := mv.cache.Get(key); ok {
		return data, nil
	}
	data, err := json.Marshal(mv.Campaigns(v))
	if err != nil {
		return nil, err
	}
	mv.cache.Set(key, data)

	mv.mu.Lock()
	prev := mv.keys[scope]
	mv.keys[scope] = key
	mv.mu.Unlock()
	if prev != "" && prev != key {
		mv.cache.Delete(prev)
	}
	return data, nil
}

func (mv *MetricsView) PlacementMetrics(placementID string, v access.Viewer) PlacementReport {
	placements := mv.scene.Scene().Placements
	p, ok := placements[placementID]
	if !ok || !access.CanSeeMetrics(v, p) {
		mv.logger.Debugf(providers.TypeAccess, "Metrics of %q redacted for %s", placementID, scopeKey(v))
		return PlacementReport{PlacementID: placementID, Redacted: true, Message: redactedMessage}
	}

	t := newTally(placementID, make(map[string]uint32))
	if p.Brand != nil {
		t.m.SponsorName = p.Brand.OrgName
	}
	for _, ev := range mv.analytics.Events() {
		if ev.PlacementID() == placementID {
			t.add(ev)
		}
	}
	m := t.result()
	return PlacementReport{PlacementID: placementID, Metrics: &m}
}
