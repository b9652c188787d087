package internal

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiltd/internal/activity"
	"wiltd/internal/controllers"
	"wiltd/internal/feed"
	"wiltd/internal/pager"
	"wiltd/internal/providers"
	"wiltd/internal/search"
	"wiltd/internal/store"
	"wiltd/internal/structures"
	"wiltd/internal/testutil"
)

func routesTestController(t *testing.T) (*controllers.ApiController, *structures.Config) {
	t.Helper()

	conf := &structures.Config{}
	conf.Store.Path = filepath.Join(t.TempDir(), "wilt.db")
	conf.Feed.PageSize = 10
	conf.Feed.ProfileTTL = 24 * time.Hour
	conf.Activity.Dir = t.TempDir()
	conf.Activity.TTL = 240 * time.Hour
	conf.Search.DebounceDelay = time.Millisecond

	logger := &testutil.MockLogger{}
	metrics := providers.NewMetricsProvider(&structures.Config{})

	db, err := store.NewDB(conf, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	remote := &testutil.FakeHistoryAPI{}
	weeks := store.NewArtistWeekStore(db)
	tracks := store.NewTrackPlayStore(db)
	listenLater := store.NewListenLaterStore(db)
	profile := store.NewProfileCache(db, conf, store.NewProfileAPIAdapter(remote), logger)

	activityCache, err := activity.NewCache(conf, remote, &testutil.MockCompressor{}, logger)
	require.NoError(t, err)
	t.Cleanup(activityCache.Close)

	feedCtrl := feed.NewController(weeks, listenLater, pager.NewPlayHistoryPager(remote, weeks, conf.Feed.PageSize, metrics), logger)
	t.Cleanup(feedCtrl.Close)
	historyCtrl := feed.NewHistoryController(tracks, pager.NewTrackHistoryPager(remote, tracks, conf.Feed.PageSize, metrics), logger)
	t.Cleanup(historyCtrl.Close)

	searcher := search.NewSearcher(conf, remote)

	ac := controllers.NewApiController(
		logger, feedCtrl, historyCtrl, profile, activityCache, searcher, listenLater, testutil.NewMockCache(),
	)
	return ac, conf
}

func TestInitRoutes_RegistersAllRoutes(t *testing.T) {
	ac, conf := routesTestController(t)

	router := InitRoutes(ac, conf)
	routes := router.GetRoutes()

	require.Len(t, routes, 12)

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}

	assert.Contains(t, urls, "/feed")
	assert.Contains(t, urls, "/feed/refresh")
	assert.Contains(t, urls, "/feed/more")
	assert.Contains(t, urls, "/history")
	assert.Contains(t, urls, "/history/more")
	assert.Contains(t, urls, "/profile/top-artist")
	assert.Contains(t, urls, "/profile/top-track")
	assert.Contains(t, urls, "/artist/activity")
	assert.Contains(t, urls, "/search")
	assert.Contains(t, urls, "/listen-later")
	assert.Contains(t, urls, "/listen-later/add")
	assert.Contains(t, urls, "/listen-later/remove")
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	ac, conf := routesTestController(t)

	router := InitRoutes(ac, conf)
	routes := router.GetRoutes()

	mux := http.NewServeMux()
	for _, r := range routes {
		mux.Handle(r.Url, r.Handler)
	}

	// GET /feed with POST should fail
	req := httptest.NewRequest(http.MethodPost, "/feed", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	// POST /feed/refresh with GET should fail
	req = httptest.NewRequest(http.MethodGet, "/feed/refresh", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	// DELETE /listen-later/remove with POST should fail
	req = httptest.NewRequest(http.MethodPost, "/listen-later/remove", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
