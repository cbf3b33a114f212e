// Package access decides what a viewer may see. Every capability check in
// the application goes through Resolve or CanSeeMetrics.
package access

import "citystate/internal/models"

// Viewer is the identity a capability set is computed for.
type Viewer struct {
	Email       string
	Role        models.Role
	AccountType models.AccountType
	OrgContext  *models.OrgContext
}

// Guest is the viewer of a page without a session.
func Guest() Viewer {
	return Viewer{Role: models.RoleVisitor, AccountType: models.AccountGuest}
}

// FromSession returns Guest for a nil session.
func FromSession(s *models.Session) Viewer {
	if s == nil {
		return Guest()
	}
	v := Viewer{Email: s.Email, Role: s.Role, AccountType: s.AccountType, OrgContext: s.OrgContext}
	if v.AccountType == "" {
		v.AccountType = models.AccountGuest
	}
	return v
}

// IsAdmin is true for global admins only. ORG_ADMIN administers its own
// organization and nothing else.
func (v Viewer) IsAdmin() bool {
	return v.Role == models.RoleAdmin
}

func (v Viewer) IsGuest() bool {
	return v.AccountType == models.AccountGuest
}

func (v Viewer) OrgID() string {
	if v.OrgContext == nil {
		return ""
	}
	return v.OrgContext.OrgID
}

// Capabilities is the set of UI gates for one viewer.
type Capabilities struct {
	BrandMode      bool `json:"brandMode"`
	BrandPanel     bool `json:"brandPanel"`
	MyProgress     bool `json:"myProgress"`
	Missions       bool `json:"missions"`
	Vault          bool `json:"vault"`
	AdminDashboard bool `json:"adminDashboard"`
	AuditLog       bool `json:"auditLog"`
	EditScene      bool `json:"editScene"`
	Leaderboard    bool `json:"leaderboard"`
	SeasonPass     bool `json:"seasonPass"`
}

// Resolve is a pure function of the viewer and the flags. Results must not
// be cached across flag or session changes.
func Resolve(v Viewer, flags models.Flags) Capabilities {
	brand := v.IsAdmin() || v.AccountType == models.AccountOrganization
	missions := !v.IsGuest() || flags.Enabled(models.FlagMissionsForGuest)

	return Capabilities{
		BrandMode:      brand,
		BrandPanel:     brand,
		MyProgress:     v.AccountType == models.AccountIndividual && flags.Enabled(models.FlagShowMyProgress),
		Missions:       missions,
		Vault:          missions,
		AdminDashboard: v.IsAdmin(),
		AuditLog:       v.IsAdmin() && flags.Enabled(models.FlagEnableAuditLog),
		EditScene:      v.Role == models.RoleAdmin || v.Role == models.RoleEditor,
		Leaderboard:    flags.Enabled(models.FlagEnableLeaderboard),
		SeasonPass:     !v.IsGuest() && flags.Enabled(models.FlagEnableSeasonPass),
	}
}

// CanSeeMetrics reports whether v may see the analytics of p. An unbranded
// placement is visible to admins only.
func CanSeeMetrics(v Viewer, p *models.Placement) bool {
	if v.IsAdmin() {
		return true
	}
	if p == nil || p.Brand == nil || v.AccountType != models.AccountOrganization {
		return false
	}
	orgID := v.OrgID()
	return orgID != "" && orgID == p.Brand.OrgID
}
