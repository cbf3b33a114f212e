package services

import (
	"citystate/internal/models"
	"citystate/internal/providers"
	"citystate/internal/storage"
	"net/url"
	"strings"
	"time"
)

// Referral is the first referral code the page was ever opened with.
type Referral struct {
	Code       string `json:"code"`
	Source     string `json:"source,omitempty"`
	CapturedAt int64  `json:"capturedAt"`
}

// CaptureReferral reads the ref query parameter of launchURL and stores it
// unless a referral was captured before. It reports whether a new referral
// was stored.
func CaptureReferral(store *storage.Store, logger providers.Logger, launchURL string, now time.Time) (Referral, bool) {
	if existing := storage.Load(store, storage.KeyReferral, Referral{}); existing.Code != "" {
		return existing, false
	}
	if !loadFlags(store).Enabled(models.FlagEnableReferrals) || launchURL == "" {
		return Referral{}, false
	}
	u, err := url.Parse(launchURL)
	if err != nil {
		logger.Warnf(providers.TypeApp, "Ignoring unparsable launch URL: %s", err)
		return Referral{}, false
	}
	code := strings.TrimSpace(u.Query().Get("ref"))
	if code == "" {
		return Referral{}, false
	}
	ref := Referral{Code: code, Source: u.Host, CapturedAt: now.UnixMilli()}
	store.Save(storage.KeyReferral, ref)
	logger.Infof(providers.TypeApp, "Captured referral %q", code)
	return ref, true
}
