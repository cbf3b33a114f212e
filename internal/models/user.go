package models

import (
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEditor   Role = "EDITOR"
	RoleViewer   Role = "VIEWER"
	RoleVisitor  Role = "VISITOR"
	RoleOrgAdmin Role = "ORG_ADMIN"
	RoleMarketer Role = "MARKETER"
)

// BaselineRole is assigned to stored users that predate roles.
const BaselineRole = RoleViewer

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer, RoleVisitor, RoleOrgAdmin, RoleMarketer:
		return true
	}
	return false
}

type AccountType string

const (
	AccountGuest        AccountType = "guest"
	AccountIndividual   AccountType = "individual"
	AccountOrganization AccountType = "organization"
)

func (a AccountType) Valid() bool {
	switch a {
	case AccountGuest, AccountIndividual, AccountOrganization:
		return true
	}
	return false
}

// OrgContext is the organization identity attached to an organization account.
type OrgContext struct {
	OrgID       string `json:"orgId"`
	OrgName     string `json:"orgName"`
	OrgIndustry string `json:"orgIndustry,omitempty"`
	Role        string `json:"role,omitempty"`
}

// User is a persisted account. Passwords are kept as entered.
type User struct {
	Email        string      `json:"email"`
	Password     string      `json:"password"`
	Name         string      `json:"name"`
	Role         Role        `json:"role,omitempty"`
	AccountType  AccountType `json:"accountType,omitempty"`
	OrgContext   *OrgContext `json:"orgContext,omitempty"`
	Blocked      bool        `json:"blocked"`
	WeeklyPoints int         `json:"weeklyPoints"`
	Joined       int64       `json:"joined"`

	// Extra holds stored fields this build does not know about, written back
	// unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

var userFields = map[string]struct{}{
	"email": {}, "password": {}, "name": {}, "role": {}, "accountType": {},
	"orgContext": {}, "blocked": {}, "weeklyPoints": {}, "joined": {},
}

type userAlias User

func (u *User) UnmarshalJSON(data []byte) error {
	var known userAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k := range userFields {
		delete(all, k)
	}
	*u = User(known)
	u.Extra = nil
	if len(all) > 0 {
		u.Extra = all
	}
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(userAlias(u))
	if err != nil || len(u.Extra) == 0 {
		return data, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, v := range u.Extra {
		if _, ok := userFields[k]; !ok {
			all[k] = v
		}
	}
	return json.Marshal(all)
}

// NewUser builds a user with every field populated, so callers never have
// to guess what a missing field means.
func NewUser(email, password, name string, accountType AccountType, now time.Time) *User {
	role := RoleViewer
	if accountType == AccountGuest {
		role = RoleVisitor
	}
	return &User{
		Email:       NormalizeEmail(email),
		Password:    password,
		Name:        strings.TrimSpace(name),
		Role:        role,
		AccountType: accountType,
		Joined:      now.UnixMilli(),
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindUser returns the index of the user with the given email or -1.
func FindUser(users []*User, email string) int {
	email = NormalizeEmail(email)
	for i, u := range users {
		if u != nil && NormalizeEmail(u.Email) == email {
			return i
		}
	}
	return -1
}
