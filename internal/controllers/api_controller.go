package controllers

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"wiltd/internal/activity"
	"wiltd/internal/api"
	"wiltd/internal/feed"
	"wiltd/internal/models"
	"wiltd/internal/providers"
	"wiltd/internal/search"
	"wiltd/internal/store"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger      providers.Logger
	feed        *feed.Controller
	history     *feed.HistoryController
	profile     *store.ProfileCache
	activity    *activity.Cache
	searcher    *search.Searcher
	listenLater store.ListenLaterDao
	cache       providers.CacheProviderInterface
	delegate    feed.Delegate
}

func NewApiController(logger providers.Logger, feedCtrl *feed.Controller, historyCtrl *feed.HistoryController, profile *store.ProfileCache, activityCache *activity.Cache, searcher *search.Searcher, listenLater store.ListenLaterDao, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:      logger,
		feed:        feedCtrl,
		history:     historyCtrl,
		profile:     profile,
		activity:    activityCache,
		searcher:    searcher,
		listenLater: listenLater,
		cache:       cache,
	}
}

type feedResponse struct {
	State string      `json:"state"`
	Items []feed.Item `json:"items"`
}

type historyResponse struct {
	State string             `json:"state"`
	Items []feed.HistoryItem `json:"items"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// SetDelegate wires the surface that owns logout. A rejected session
// on any remote call must tear the local caches down, not just 401.
func (ac *ApiController) SetDelegate(d feed.Delegate) {
	ac.delegate = d
}

func (ac *ApiController) writeError(w http.ResponseWriter, err error) {
	var netErr *api.NetworkError
	var parseErr *api.ParseError
	switch {
	case api.IsSessionInvalid(err):
		if ac.delegate != nil {
			ac.delegate.LoggedOut()
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.As(err, &netErr), errors.As(err, &parseErr):
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// GetFeed returns the rows currently held locally plus the machine
// state. The first request after startup also kicks off the initial
// page load.
func (ac *ApiController) GetFeed(w http.ResponseWriter, r *http.Request) {
	ac.feed.OnViewAppeared()
	items, err := ac.feed.Items()
	if err != nil {
		ac.logger.Errorf(providers.TypeHttp, "Unable to read feed rows: %s", err)
		ac.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedResponse{
		State: ac.feed.State().String(),
		Items: items,
	})
}

func (ac *ApiController) RefreshFeed(w http.ResponseWriter, r *http.Request) {
	ac.feed.Refresh()
	writeJSON(w, http.StatusAccepted, map[string]string{"state": ac.feed.State().String()})
}

// LoadMoreFeed pulls the next page of older weeks, as a scroll to the
// bottom of the feed would.
func (ac *ApiController) LoadMoreFeed(w http.ResponseWriter, r *http.Request) {
	ac.feed.OnScrolledToBottom()
	writeJSON(w, http.StatusAccepted, map[string]string{"state": ac.feed.State().String()})
}

func (ac *ApiController) GetHistory(w http.ResponseWriter, r *http.Request) {
	ac.history.SetArtistFilter(r.URL.Query().Get("artist"))
	ac.history.OnViewAppeared()
	items, err := ac.history.Items()
	if err != nil {
		ac.logger.Errorf(providers.TypeHttp, "Unable to read track history: %s", err)
		ac.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{
		State: ac.history.State().String(),
		Items: items,
	})
}

func (ac *ApiController) LoadMoreHistory(w http.ResponseWriter, r *http.Request) {
	ac.history.OnScrolledToBottom()
	writeJSON(w, http.StatusAccepted, map[string]string{"state": ac.history.State().String()})
}

func profileParams(r *http.Request) (models.TimeRange, int, bool) {
	timeRange := models.TimeRange(r.URL.Query().Get("range"))
	if !timeRange.Valid() {
		return "", 0, false
	}
	index := cast.ToInt(r.URL.Query().Get("index"))
	if index < 0 {
		return "", 0, false
	}
	return timeRange, index, true
}

func (ac *ApiController) GetTopArtist(w http.ResponseWriter, r *http.Request) {
	timeRange, index, ok := profileParams(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.serveFromCacheOrCompute(w, "ta:"+string(timeRange)+":"+cast.ToString(index), func() (any, error) {
		return ac.profile.TopArtist(r.Context(), timeRange, index)
	})
}

func (ac *ApiController) GetTopTrack(w http.ResponseWriter, r *http.Request) {
	timeRange, index, ok := profileParams(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.serveFromCacheOrCompute(w, "tt:"+string(timeRange)+":"+cast.ToString(index), func() (any, error) {
		return ac.profile.TopTrack(r.Context(), timeRange, index)
	})
}

func (ac *ApiController) GetArtistActivity(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	points, err := ac.activity.Get(r.Context(), name)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (ac *ApiController) SearchArtists(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusOK, []models.ArtistResult{})
		return
	}
	results, err := ac.searcher.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, search.ErrSuperseded) {
			http.Error(w, "Conflict", http.StatusConflict)
			return
		}
		ac.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (ac *ApiController) GetListenLater(w http.ResponseWriter, r *http.Request) {
	items, err := ac.listenLater.Items()
	if err != nil {
		ac.logger.Errorf(providers.TypeHttp, "Unable to read listen later list: %s", err)
		ac.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (ac *ApiController) AddListenLater(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.ListenLaterArtist
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil || payload.Name == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := ac.listenLater.Insert(payload); err != nil {
		ac.logger.Errorf(providers.TypeHttp, "Unable to store listen later artist: %s", err)
		ac.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (ac *ApiController) RemoveListenLater(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := ac.listenLater.Delete(name); err != nil {
		ac.logger.Errorf(providers.TypeHttp, "Unable to delete listen later artist: %s", err)
		ac.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
