package storage

// Persisted record keys.
const (
	KeyUsers           = "users"
	KeyScene           = "scene"
	KeyFlags           = "flags"
	KeySession         = "session"
	KeyAnalytics       = "analytics"
	KeyAdminLog        = "adminLog"
	KeySeasonPass      = "seasonPass"
	KeyLeads           = "leads"
	KeyFlights         = "flights"
	KeyComplianceNotes = "complianceNotes"
	KeyReferral        = "referral"
)
