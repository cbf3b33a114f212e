package models

const (
	FlagEnableAuditLog        = "enableAuditLog"
	FlagMissionsForGuest      = "missionsForGuest"
	FlagShowMyProgress        = "showMyProgress"
	FlagEnableSeasonPass      = "enableSeasonPass"
	FlagEnableLeaderboard     = "enableLeaderboard"
	FlagEnableReferrals       = "enableReferrals"
	FlagEnableCreativeChecker = "enableCreativeChecker"
)

type Flags map[string]bool

// DefaultFlags returns a fresh copy of the default flag set.
func DefaultFlags() Flags {
	return Flags{
		FlagEnableAuditLog:        true,
		FlagMissionsForGuest:      false,
		FlagShowMyProgress:        true,
		FlagEnableSeasonPass:      true,
		FlagEnableLeaderboard:     true,
		FlagEnableReferrals:       true,
		FlagEnableCreativeChecker: true,
	}
}

// Enabled treats unknown flags as off.
func (f Flags) Enabled(name string) bool {
	return f[name]
}

func (f Flags) Clone() Flags {
	out := make(Flags, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (f Flags) Equal(other Flags) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
