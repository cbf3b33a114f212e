package migration

import (
	"citystate/internal/models"
	"citystate/internal/storage"
	"fmt"

	json "github.com/goccy/go-json"
)

// Step upgrades an encoded record by exactly one schema version.
type Step func(raw json.RawMessage) (json.RawMessage, error)

// Plan lists the steps of one key. The target version is len(Steps).
type Plan struct {
	Key   string
	Steps []Step
}

func (p Plan) Target() int { return len(p.Steps) }

// MergeFlags returns defaults overlaid with stored. Stored values win and
// stored names missing from defaults are kept.
func MergeFlags(defaults, stored models.Flags) models.Flags {
	merged := make(models.Flags, len(defaults)+len(stored))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range stored {
		merged[k] = v
	}
	return merged
}

func flagsV1(raw json.RawMessage) (json.RawMessage, error) {
	var stored models.Flags
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode flags: %w", err)
	}
	return json.Marshal(MergeFlags(models.DefaultFlags(), stored))
}

// Users are rewritten as generic objects so fields this build does not know
// about survive the upgrade.
func decodeUsers(raw json.RawMessage) ([]map[string]any, error) {
	var users []map[string]any
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func missing(u map[string]any, field string) bool {
	v, ok := u[field]
	if !ok || v == nil {
		return true
	}
	s, isString := v.(string)
	return isString && s == ""
}

// BackfillRoles gives the baseline role to every user without one and
// reports how many were changed.
func BackfillRoles(users []map[string]any) int {
	changed := 0
	for _, u := range users {
		if u != nil && missing(u, "role") {
			u["role"] = string(models.BaselineRole)
			changed++
		}
	}
	return changed
}

// BackfillAccountTypes derives the account type of users created before
// account types existed.
func BackfillAccountTypes(users []map[string]any) int {
	changed := 0
	for _, u := range users {
		if u == nil || !missing(u, "accountType") {
			continue
		}
		if org, ok := u["orgContext"].(map[string]any); ok && org != nil {
			u["accountType"] = string(models.AccountOrganization)
		} else {
			u["accountType"] = string(models.AccountIndividual)
		}
		changed++
	}
	return changed
}

func usersStep(fn func([]map[string]any) int) Step {
	return func(raw json.RawMessage) (json.RawMessage, error) {
		users, err := decodeUsers(raw)
		if err != nil {
			return nil, err
		}
		if users == nil {
			users = []map[string]any{}
		}
		fn(users)
		return json.Marshal(users)
	}
}

// DefaultPlans is the migration table of every versioned key.
func DefaultPlans() []Plan {
	return []Plan{
		{Key: storage.KeyFlags, Steps: []Step{flagsV1}},
		{Key: storage.KeyUsers, Steps: []Step{usersStep(BackfillRoles), usersStep(BackfillAccountTypes)}},
	}
}
