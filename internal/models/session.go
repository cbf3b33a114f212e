package models

// Session is the single signed-in (or guest) identity of the local page.
type Session struct {
	Email       string      `json:"email,omitempty"`
	Name        string      `json:"name,omitempty"`
	Role        Role        `json:"role"`
	AccountType AccountType `json:"accountType"`
	OrgContext  *OrgContext `json:"orgContext,omitempty"`
	StartedAt   int64       `json:"startedAt"`
}

func GuestSession(now int64) *Session {
	return &Session{Role: RoleVisitor, AccountType: AccountGuest, StartedAt: now}
}

func SessionFor(u *User, now int64) *Session {
	s := &Session{
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		AccountType: u.AccountType,
		StartedAt:   now,
	}
	if u.OrgContext != nil {
		oc := *u.OrgContext
		s.OrgContext = &oc
	}
	return s
}

type SeasonPass struct {
	Tier    int      `json:"tier"`
	XP      int      `json:"xp"`
	Claimed []string `json:"claimed"`
}

func DefaultSeasonPass() SeasonPass {
	return SeasonPass{Claimed: []string{}}
}
