//go:build wireinject
// +build wireinject

package di

import (
	"citystate/internal"
	"citystate/internal/controllers"
	"citystate/internal/migration"
	"citystate/internal/providers"
	"citystate/internal/scheduler"
	"citystate/internal/services"
	"citystate/internal/storage"
	"citystate/internal/structures"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewBackendProvider,
		storage.NewStore,
		migration.NewRunner,
		services.NewAuditService,
		services.NewAccountService,
		services.NewSceneService,
		services.NewAnalyticsService,
		services.NewMetricsView,
		services.NewGuard,
		scheduler.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
