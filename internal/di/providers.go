package di

import (
	"wiltd/internal/activity"
	"wiltd/internal/api"
	"wiltd/internal/pager"
	"wiltd/internal/providers"
	"wiltd/internal/session"
	"wiltd/internal/store"
	"wiltd/internal/structures"
)

func provideTokenSource(s *session.FileTokenSource) api.TokenSource {
	return s
}

func provideHistoryAPI(c *api.Client) api.HistoryAPI {
	return c
}

func provideActivityAPI(c api.HistoryAPI) activity.ActivityAPI {
	return c
}

func provideArtistWeekDao(s *store.ArtistWeekStore) store.ArtistWeekDao {
	return s
}

func provideTrackPlayDao(s *store.TrackPlayStore) store.TrackPlayDao {
	return s
}

func provideListenLaterDao(s *store.ListenLaterStore) store.ListenLaterDao {
	return s
}

func providePlayHistoryPager(client api.HistoryAPI, dao store.ArtistWeekDao, conf *structures.Config, metrics providers.MetricsProviderInterface) *pager.PlayHistoryPager {
	return pager.NewPlayHistoryPager(client, dao, conf.Feed.PageSize, metrics)
}

func provideTrackHistoryPager(client api.HistoryAPI, dao store.TrackPlayDao, conf *structures.Config, metrics providers.MetricsProviderInterface) *pager.TrackHistoryPager {
	return pager.NewTrackHistoryPager(client, dao, conf.Feed.PageSize, metrics)
}
