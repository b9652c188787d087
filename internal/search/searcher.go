package search

import (
	"context"
	"errors"
	"sync"

	"wiltd/internal/api"
	"wiltd/internal/models"
	"wiltd/internal/structures"
)

// ErrSuperseded is returned to a caller whose query was replaced by a
// newer one before the debounce delay elapsed.
var ErrSuperseded = errors.New("search superseded by newer query")

// Searcher funnels artist search queries through one debouncer so that
// only the newest query in a burst reaches the network.
type Searcher struct {
	api       api.HistoryAPI
	debouncer *Debouncer

	mu        sync.Mutex
	supersede chan struct{}
}

func NewSearcher(conf *structures.Config, client api.HistoryAPI) *Searcher {
	return &Searcher{
		api:       client,
		debouncer: NewDebouncer(conf.Search.DebounceDelay),
	}
}

func (s *Searcher) Search(ctx context.Context, query string) ([]models.ArtistResult, error) {
	s.mu.Lock()
	if s.supersede != nil {
		close(s.supersede)
	}
	superseded := make(chan struct{})
	s.supersede = superseded
	s.mu.Unlock()

	done := make(chan struct{})
	var results []models.ArtistResult
	var err error
	s.debouncer.Submit(func() {
		results, err = s.api.SearchArtists(ctx, query)
		close(done)
	})

	select {
	case <-done:
		return results, err
	case <-superseded:
		return nil, ErrSuperseded
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
