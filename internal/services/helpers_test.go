package services

import (
	"citystate/internal/access"
	"citystate/internal/models"
	"citystate/internal/storage"
	"citystate/internal/structures"
	"citystate/internal/testutil"
	"time"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *structures.Config {
	return &structures.Config{
		Analytics: structures.AnalyticsConfig{MaxEvents: 200, MaxAdminLog: 200},
	}
}

func newTestStore() *storage.Store {
	return storage.NewStore(storage.NewMemoryBackend(0), &testutil.MockLogger{}, testutil.NewMockMetrics())
}

func adminViewer() access.Viewer {
	return access.Viewer{Email: "admin@city.test", Role: models.RoleAdmin, AccountType: models.AccountIndividual}
}

func orgViewer(orgID string) access.Viewer {
	return access.Viewer{
		Email:       orgID + "@brand.test",
		Role:        models.RoleOrgAdmin,
		AccountType: models.AccountOrganization,
		OrgContext:  &models.OrgContext{OrgID: orgID, OrgName: "Org " + orgID},
	}
}

func individualViewer() access.Viewer {
	return access.Viewer{Email: "ind@city.test", Role: models.RoleViewer, AccountType: models.AccountIndividual}
}

func newTestAudit(store *storage.Store) *AuditService {
	a := NewAuditService(testConfig(), store, &testutil.MockLogger{}).(*AuditService)
	a.clock = func() time.Time { return fixedNow }
	return a
}

func newTestScene(store *storage.Store) *SceneService {
	s := NewSceneService(store, newTestAudit(store), &testutil.MockLogger{}).(*SceneService)
	s.clock = func() time.Time { return fixedNow }
	return s
}

func seedScene(store *storage.Store, placements ...*models.Placement) {
	scene := models.NewScene()
	for _, p := range placements {
		scene.Placements[p.ID] = p
	}
	store.Save(storage.KeyScene, scene)
}

func brandedPlacement(id, orgID string) *models.Placement {
	return &models.Placement{
		ID:   id,
		Kind: models.KindBillboard,
		Brand: &models.Brand{
			OrgID:   orgID,
			OrgName: "Org " + orgID,
		},
	}
}
