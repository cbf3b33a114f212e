package models

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

const (
	EventImpression = "impression"
	EventClick      = "click"
	EventDwell      = "dwell"
)

// AnalyticsEvent is stored flat on the wire: {"type":..,"timestamp":..,<payload>}.
type AnalyticsEvent struct {
	Type      string
	Timestamp int64
	Payload   map[string]any
}

func NewEvent(eventType string, at time.Time, payload map[string]any) AnalyticsEvent {
	if payload == nil {
		payload = make(map[string]any)
	}
	return AnalyticsEvent{Type: eventType, Timestamp: at.UnixMilli(), Payload: payload}
}

func (e AnalyticsEvent) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(e.Payload)+2)
	for k, v := range e.Payload {
		flat[k] = v
	}
	flat["type"] = e.Type
	flat["timestamp"] = e.Timestamp
	return json.Marshal(flat)
}

func (e *AnalyticsEvent) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	e.Type = cast.ToString(flat["type"])
	e.Timestamp = cast.ToInt64(flat["timestamp"])
	delete(flat, "type")
	delete(flat, "timestamp")
	e.Payload = flat
	return nil
}

func (e AnalyticsEvent) str(key string) string {
	return cast.ToString(e.Payload[key])
}

func (e AnalyticsEvent) CampaignID() string  { return e.str("campaignId") }
func (e AnalyticsEvent) PlacementID() string { return e.str("placementId") }
func (e AnalyticsEvent) SponsorName() string { return e.str("sponsorName") }
func (e AnalyticsEvent) ViewerID() string    { return e.str("viewerId") }

// Seconds is the dwell duration carried by dwell events; malformed values count as zero.
func (e AnalyticsEvent) Seconds() float64 {
	s, err := cast.ToFloat64E(e.Payload["seconds"])
	if err != nil || s < 0 {
		return 0
	}
	return s
}

// AdminLogEntry records an administrative action.
type AdminLogEntry struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Payload   map[string]any `json:"payload,omitempty"`
}
