package migration

import (
	"citystate/internal/models"
	"citystate/internal/providers"
	"citystate/internal/storage"
)

// Report lists what a run changed.
type Report struct {
	Migrated     []string
	FlagsMerged  bool
	Bootstrapped []string
	Failed       []string
}

// Runner upgrades persisted records on process start.
type Runner struct {
	store   *storage.Store
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	plans   []Plan
}

// NewRunner registers the target version of every planned key with the
// store, so records written afterwards carry the current version.
func NewRunner(store *storage.Store, logger providers.Logger, metrics providers.MetricsProviderInterface) *Runner {
	return newRunner(store, logger, metrics, DefaultPlans())
}

func newRunner(store *storage.Store, logger providers.Logger, metrics providers.MetricsProviderInterface, plans []Plan) *Runner {
	for _, p := range plans {
		store.SetSchemaVersion(p.Key, p.Target())
	}
	return &Runner{store: store, logger: logger, metrics: metrics, plans: plans}
}

// Run applies the migration table, merges flags and bootstraps auxiliary
// keys. Failures are logged and retried on the next run.
func (r *Runner) Run() Report {
	var report Report
	for _, p := range r.plans {
		migrated, ok := r.apply(p)
		if !ok {
			report.Failed = append(report.Failed, p.Key)
		}
		if migrated {
			report.Migrated = append(report.Migrated, p.Key)
		}
	}
	report.FlagsMerged = r.mergeFlags()
	report.Bootstrapped = r.bootstrap()

	r.logger.Infof(providers.TypeMigration, "Migration finished: migrated=%v flagsMerged=%t bootstrapped=%v failed=%v",
		report.Migrated, report.FlagsMerged, report.Bootstrapped, report.Failed)
	return report
}

// apply walks one key from its stored version to the plan's target. On a
// failing step the record is saved at its last good version.
func (r *Runner) apply(p Plan) (migrated bool, ok bool) {
	entry, found := r.store.LoadEntry(p.Key)
	if !found || entry.SchemaVersion >= p.Target() {
		return false, true
	}

	from := entry.SchemaVersion
	raw := entry.Value
	version := from
	for version < p.Target() {
		next, err := p.Steps[version](raw)
		if err != nil {
			r.logger.Errorf(providers.TypeMigration, "Migrating %q v%d -> v%d failed: %s", p.Key, version, version+1, err)
			break
		}
		raw = next
		version++
	}
	if version == from {
		return false, false
	}
	if !r.store.SaveEntry(p.Key, storage.Entry{SchemaVersion: version, Value: raw}) {
		return false, false
	}
	r.metrics.IncMigrations(p.Key)
	r.logger.Infof(providers.TypeMigration, "Migrated %q v%d -> v%d", p.Key, from, version)
	return true, version == p.Target()
}

// mergeFlags only touches a flags record at the current schema version; a
// record left behind by a failed step keeps its bytes for the next run.
func (r *Runner) mergeFlags() bool {
	if entry, ok := r.store.LoadEntry(storage.KeyFlags); ok && entry.SchemaVersion < r.store.SchemaVersion(storage.KeyFlags) {
		r.logger.Warnf(providers.TypeMigration, "Skipping flag merge: %q stored at v%d", storage.KeyFlags, entry.SchemaVersion)
		return false
	}
	stored := storage.Load(r.store, storage.KeyFlags, models.Flags(nil))
	merged := MergeFlags(models.DefaultFlags(), stored)
	if merged.Equal(stored) {
		return false
	}
	r.store.Save(storage.KeyFlags, merged)
	return true
}

func (r *Runner) bootstrap() []string {
	defaults := []struct {
		key   string
		value any
	}{
		{storage.KeySeasonPass, models.DefaultSeasonPass()},
		{storage.KeyLeads, []any{}},
		{storage.KeyFlights, []any{}},
		{storage.KeyComplianceNotes, []any{}},
	}
	var created []string
	for _, d := range defaults {
		if r.store.Has(d.key) {
			continue
		}
		r.store.Save(d.key, d.value)
		if r.store.Has(d.key) {
			created = append(created, d.key)
		}
	}
	return created
}
