//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"wiltd/internal"
	"wiltd/internal/activity"
	"wiltd/internal/api"
	"wiltd/internal/controllers"
	"wiltd/internal/feed"
	"wiltd/internal/providers"
	"wiltd/internal/search"
	"wiltd/internal/session"
	"wiltd/internal/store"
	"wiltd/internal/structures"
	"wiltd/internal/syncer"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		session.NewFileTokenSource,
		provideTokenSource,
		api.NewClient,
		provideHistoryAPI,
		provideActivityAPI,

		store.NewDB,
		store.NewArtistWeekStore,
		store.NewTrackPlayStore,
		store.NewListenLaterStore,
		provideArtistWeekDao,
		provideTrackPlayDao,
		provideListenLaterDao,
		store.NewProfileAPIAdapter,
		store.NewProfileCache,

		activity.NewZstdCompressor,
		activity.NewCache,

		providePlayHistoryPager,
		provideTrackHistoryPager,
		feed.NewController,
		feed.NewHistoryController,
		search.NewSearcher,
		session.NewManager,
		syncer.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
