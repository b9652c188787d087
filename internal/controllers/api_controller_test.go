package controllers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiltd/internal/activity"
	"wiltd/internal/api"
	"wiltd/internal/feed"
	"wiltd/internal/models"
	"wiltd/internal/pager"
	"wiltd/internal/providers"
	"wiltd/internal/search"
	"wiltd/internal/session"
	"wiltd/internal/store"
	"wiltd/internal/structures"
	"wiltd/internal/testutil"
)

type fixture struct {
	controller    *ApiController
	remote        *testutil.FakeHistoryAPI
	cache         *testutil.MockCache
	weeks         *store.ArtistWeekStore
	tracks        *store.TrackPlayStore
	listenLater   *store.ListenLaterStore
	profile       *store.ProfileCache
	activityCache *activity.Cache
	feed          *feed.Controller
	history       *feed.HistoryController
	conf          *structures.Config
}

func newFixture(t *testing.T) *fixture {
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

	cache := testutil.NewMockCache()
	searcher := search.NewSearcher(conf, remote)

	return &fixture{
		controller:    NewApiController(logger, feedCtrl, historyCtrl, profile, activityCache, searcher, listenLater, cache),
		remote:        remote,
		cache:         cache,
		weeks:         weeks,
		tracks:        tracks,
		listenLater:   listenLater,
		profile:       profile,
		activityCache: activityCache,
		feed:          feedCtrl,
		history:       historyCtrl,
		conf:          conf,
	}
}

func TestGetFeed_RespondsWithStateAndItems(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	rr := httptest.NewRecorder()
	f.controller.GetFeed(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp struct {
		State string      `json:"state"`
		Items []feed.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.State)
}

func TestLoadMoreFeed_Accepted(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/feed/more", nil)
	rr := httptest.NewRecorder()
	f.controller.LoadMoreFeed(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func TestGetTopArtist_ServedFromResponseCacheOnRepeat(t *testing.T) {
	f := newFixture(t)
	calls := 0
	f.remote.TopArtistFn = func(timeRange models.TimeRange, index int) (*models.TopArtistInfo, error) {
		calls++
		return &models.TopArtistInfo{Name: "Pinegrove", Plays: 99}, nil
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/profile/top-artist?range=long_term&index=0", nil)
		rr := httptest.NewRecorder()
		f.controller.GetTopArtist(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var artist models.TopArtistInfo
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &artist))
		assert.Equal(t, "Pinegrove", artist.Name)
	}

	// The second response came out of the rendered-response cache.
	assert.Equal(t, 1, calls)
}

func TestGetTopArtist_InvalidRangeIsBadRequest(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/profile/top-artist?range=all_time&index=0", nil)
	rr := httptest.NewRecorder()
	f.controller.GetTopArtist(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetTopArtist_SessionInvalidIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.remote.TopArtistFn = func(timeRange models.TimeRange, index int) (*models.TopArtistInfo, error) {
		return nil, api.ErrSessionInvalid
	}

	req := httptest.NewRequest(http.MethodGet, "/profile/top-artist?range=long_term&index=0", nil)
	rr := httptest.NewRecorder()
	f.controller.GetTopArtist(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

type logoutRecorder struct {
	calls int
}

func (d *logoutRecorder) LoggedOut() { d.calls++ }

func TestGetTopArtist_SessionInvalidLogsOut(t *testing.T) {
	f := newFixture(t)
	f.conf.API.TokenPath = filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(f.conf.API.TokenPath, []byte("tok-123"), 0600))

	token := session.NewFileTokenSource(f.conf)
	manager := session.NewManager(token, f.weeks, f.tracks, f.listenLater, f.profile, f.activityCache, &testutil.MockLogger{})
	f.controller.SetDelegate(manager)

	f.remote.TopArtistFn = func(timeRange models.TimeRange, index int) (*models.TopArtistInfo, error) {
		return nil, api.ErrSessionInvalid
	}

	req := httptest.NewRequest(http.MethodGet, "/profile/top-artist?range=long_term&index=0", nil)
	rr := httptest.NewRecorder()
	f.controller.GetTopArtist(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, manager.Active())
	_, err := os.Stat(f.conf.API.TokenPath)
	assert.True(t, os.IsNotExist(err))
}

func TestGetTopTrack_SessionInvalidLogsOut(t *testing.T) {
	f := newFixture(t)
	delegate := &logoutRecorder{}
	f.controller.SetDelegate(delegate)
	f.remote.TopTrackFn = func(timeRange models.TimeRange, index int) (*models.TopTrackInfo, error) {
		return nil, api.ErrSessionInvalid
	}

	req := httptest.NewRequest(http.MethodGet, "/profile/top-track?range=medium_term&index=0", nil)
	rr := httptest.NewRecorder()
	f.controller.GetTopTrack(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 1, delegate.calls)
}

func TestGetArtistActivity_SessionInvalidLogsOut(t *testing.T) {
	f := newFixture(t)
	delegate := &logoutRecorder{}
	f.controller.SetDelegate(delegate)
	f.remote.ArtistActivityFn = func(artistName string) ([]models.ActivityPoint, error) {
		return nil, &api.NetworkError{Op: "activity", Err: api.ErrSessionInvalid}
	}

	req := httptest.NewRequest(http.MethodGet, "/artist/activity?name=Pinegrove", nil)
	rr := httptest.NewRecorder()
	f.controller.GetArtistActivity(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 1, delegate.calls)
}

func TestGetTopTrack_RemoteFailureIsBadGateway(t *testing.T) {
	f := newFixture(t)
	f.remote.TopTrackFn = func(timeRange models.TimeRange, index int) (*models.TopTrackInfo, error) {
		return nil, &api.NetworkError{Op: "topTrack", Err: assert.AnError}
	}

	req := httptest.NewRequest(http.MethodGet, "/profile/top-track?range=short_term&index=0", nil)
	rr := httptest.NewRecorder()
	f.controller.GetTopTrack(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestGetArtistActivity_RequiresName(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/artist/activity", nil)
	rr := httptest.NewRecorder()
	f.controller.GetArtistActivity(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetArtistActivity_ReturnsSeries(t *testing.T) {
	f := newFixture(t)
	f.remote.ArtistActivityFn = func(artistName string) ([]models.ActivityPoint, error) {
		return []models.ActivityPoint{{Date: time.Date(2018, 2, 1, 0, 0, 0, 0, time.UTC), Plays: 4}}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/artist/activity?name=Pinegrove", nil)
	rr := httptest.NewRecorder()
	f.controller.GetArtistActivity(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var points []models.ActivityPoint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &points))
	require.Len(t, points, 1)
	assert.Equal(t, 4, points[0].Plays)
}

func TestSearchArtists_EmptyQueryIsEmptyResult(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	rr := httptest.NewRecorder()
	f.controller.SearchArtists(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	assert.Empty(t, f.remote.SearchCalls)
}

func TestSearchArtists_ReturnsMatches(t *testing.T) {
	f := newFixture(t)
	f.remote.SearchArtistsFn = func(query string) ([]models.ArtistResult, error) {
		return []models.ArtistResult{{Name: "Pinegrove"}}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/search?q=pine", nil)
	rr := httptest.NewRecorder()
	f.controller.SearchArtists(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var results []models.ArtistResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Pinegrove", results[0].Name)
}

func TestListenLater_CRUD(t *testing.T) {
	f := newFixture(t)

	// Add.
	body := `{"name":"Pinegrove","imageUrl":"p.jpg"}`
	req := httptest.NewRequest(http.MethodPost, "/listen-later/add", strings.NewReader(body))
	rr := httptest.NewRecorder()
	f.controller.AddListenLater(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	// List.
	req = httptest.NewRequest(http.MethodGet, "/listen-later", nil)
	rr = httptest.NewRecorder()
	f.controller.GetListenLater(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var items []models.ListenLaterArtist
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Pinegrove", items[0].Name)

	// Remove.
	req = httptest.NewRequest(http.MethodDelete, "/listen-later/remove?name=Pinegrove", nil)
	rr = httptest.NewRecorder()
	f.controller.RemoveListenLater(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	ok, err := f.listenLater.Contains("Pinegrove")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddListenLater_RejectsBadPayload(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{`not json`, `{}`, `{"name":""}`} {
		req := httptest.NewRequest(http.MethodPost, "/listen-later/add", strings.NewReader(body))
		rr := httptest.NewRecorder()
		f.controller.AddListenLater(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}
}

func TestRemoveListenLater_RequiresName(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodDelete, "/listen-later/remove", nil)
	rr := httptest.NewRecorder()
	f.controller.RemoveListenLater(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
