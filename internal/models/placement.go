package models

import (
	"sort"
	"time"
)

type PlacementKind string

const (
	KindBuilding  PlacementKind = "building"
	KindBillboard PlacementKind = "billboard"
	KindWall      PlacementKind = "wall"
)

func (k PlacementKind) Valid() bool {
	switch k {
	case KindBuilding, KindBillboard, KindWall:
		return true
	}
	return false
}

// Brand is the rental attached to a placement. Dates are ISO-8601 strings
// as entered in the brand panel.
type Brand struct {
	OrgID      string `json:"orgId"`
	OrgName    string `json:"orgName"`
	BrandEmail string `json:"brandEmail,omitempty"`
	StartISO   string `json:"startISO,omitempty"`
	EndISO     string `json:"endISO,omitempty"`
	PriceTag   string `json:"priceTag,omitempty"`
}

// Active reports whether the rental window contains t. Unparseable or empty
// bounds are treated as open.
func (b *Brand) Active(t time.Time) bool {
	if b == nil {
		return false
	}
	if start, err := parseISO(b.StartISO); err == nil && t.Before(start) {
		return false
	}
	if end, err := parseISO(b.EndISO); err == nil && t.After(end) {
		return false
	}
	return true
}

func parseISO(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

type Vec3 [3]float64

// Placement is an advertisable object in the scene.
type Placement struct {
	ID       string        `json:"id"`
	Kind     PlacementKind `json:"kind"`
	Label    string        `json:"label,omitempty"`
	Position Vec3          `json:"position"`
	Size     Vec3          `json:"size"`
	Creative string        `json:"creative,omitempty"`
	Brand    *Brand        `json:"brand,omitempty"`
}

// Scene is the persisted layout under the "scene" key.
type Scene struct {
	Placements map[string]*Placement `json:"placements"`
}

func NewScene() *Scene {
	return &Scene{Placements: make(map[string]*Placement)}
}

// IDs returns placement IDs in a stable order.
func (s *Scene) IDs() []string {
	ids := make([]string, 0, len(s.Placements))
	for id := range s.Placements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
