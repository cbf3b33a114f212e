package services

import (
	"citystate/internal/models"
	"citystate/internal/providers"
	"citystate/internal/storage"
	"citystate/internal/structures"
	"sync"
	"time"

	"github.com/google/uuid"
)

type AuditServiceInterface interface {
	Append(actor, action string, payload map[string]any) bool
	Entries() []models.AdminLogEntry
}

// AuditService is the bounded admin log. Nothing is recorded while the
// enableAuditLog flag is off.
type AuditService struct {
	mu     sync.Mutex
	store  *storage.Store
	logger providers.Logger
	log    *models.BoundedLog[models.AdminLogEntry]
	clock  func() time.Time
}

func NewAuditService(conf *structures.Config, store *storage.Store, logger providers.Logger) AuditServiceInterface {
	stored := storage.Load(store, storage.KeyAdminLog, []models.AdminLogEntry{})
	return &AuditService{
		store:  store,
		logger: logger,
		log:    models.NewBoundedLog(conf.Analytics.MaxAdminLog, stored),
		clock:  time.Now,
	}
}

// Append reports whether the entry was recorded.
func (a *AuditService) Append(actor, action string, payload map[string]any) bool {
	if !loadFlags(a.store).Enabled(models.FlagEnableAuditLog) {
		return false
	}
	if actor == "" {
		actor = "system"
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.log.Append(models.AdminLogEntry{
		ID:        uuid.NewString(),
		Timestamp: a.clock().UnixMilli(),
		Actor:     actor,
		Action:    action,
		Payload:   payload,
	})
	a.store.Save(storage.KeyAdminLog, a.log.Entries())
	a.logger.Infof(providers.TypeAccess, "Audit: %s %s", actor, action)
	return true
}

func (a *AuditService) Entries() []models.AdminLogEntry {
	return a.log.Entries()
}

// loadFlags reads the persisted flags on top of the defaults.
func loadFlags(store *storage.Store) models.Flags {
	stored := storage.Load(store, storage.KeyFlags, models.Flags(nil))
	flags := models.DefaultFlags()
	for k, v := range stored {
		flags[k] = v
	}
	return flags
}
