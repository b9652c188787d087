// Package pager turns "load earlier / load later / load from empty"
// requests into correctly bounded remote page requests and merges the
// responses into the stores. Pagers never retry on their own; retry is
// always an explicit caller action.
package pager

import (
	"context"
	"time"

	"go.uber.org/atomic"

	"wiltd/internal/api"
	"wiltd/internal/models"
	"wiltd/internal/providers"
	"wiltd/internal/store"
)

// PlayHistoryPager pages the aggregated weekly history. A single item
// is one week's worth of plays, so window math is whole weeks.
type PlayHistoryPager struct {
	api      api.HistoryAPI
	dao      store.ArtistWeekDao
	pageSize int
	metrics  providers.MetricsProviderInterface
	now      func() time.Time

	// The current week keeps accumulating plays, so it is re-requested
	// once per process lifetime. refreshedCurrentWeek remembers that
	// the one refresh happened; refreshingCurrentWeek marks the
	// in-flight refresh so the immediate follow-up load doesn't hammer
	// the same window.
	refreshedCurrentWeek  atomic.Bool
	refreshingCurrentWeek atomic.Bool
}

func NewPlayHistoryPager(client api.HistoryAPI, dao store.ArtistWeekDao, pageSize int, metrics providers.MetricsProviderInterface) *PlayHistoryPager {
	return &PlayHistoryPager{
		api:      client,
		dao:      dao,
		pageSize: pageSize,
		metrics:  metrics,
		now:      time.Now,
	}
}

// OnZeroItemsLoaded seeds an empty store. The window reaches one week
// past now so the in-progress week is included, and two pages back so
// the first screen has depth. An empty response is a valid empty
// state, not an error.
func (p *PlayHistoryPager) OnZeroItemsLoaded(ctx context.Context) (int, error) {
	endDate := PlusWeeks(StartOfWeek(p.now()), 1)
	startDate := MinusWeeks(endDate, p.pageSize*2)
	return p.topArtists(ctx, Window{Start: startDate.Unix(), End: endDate.Unix()}, true)
}

// LoadLaterPage requests the page after latestItem. The first call
// whose window starts at the current week re-requests that week; every
// later call advances past it.
func (p *PlayHistoryPager) LoadLaterPage(ctx context.Context, latestItem models.ArtistWeek) (int, error) {
	// A load arriving while the current-week refresh response is still
	// settling would recompute the same window; skip it once. The flag
	// is dropped so the next call proceeds normally.
	if p.refreshingCurrentWeek.Load() {
		p.refreshingCurrentWeek.Store(false)
		return 0, nil
	}

	date := StartOfWeek(latestItem.Date)
	startDate := date
	if p.refreshedCurrentWeek.Load() {
		// Already refreshed once this session; move on to the next week.
		startDate = PlusWeeks(date, 1)
	} else {
		p.refreshingCurrentWeek.Store(true)
	}
	p.refreshedCurrentWeek.Store(true)

	endDate := PlusWeeks(startDate, p.pageSize)
	return p.topArtists(ctx, Window{Start: startDate.Unix(), End: endDate.Unix()}, false)
}

// LoadEarlierPage requests the page before earliestItem. The end is
// pulled back one week so the week already in store isn't re-fetched.
func (p *PlayHistoryPager) LoadEarlierPage(ctx context.Context, earliestItem models.ArtistWeek) (int, error) {
	endDate := MinusWeeks(StartOfWeek(earliestItem.Date), 1)
	startDate := MinusWeeks(endDate, p.pageSize)
	return p.topArtists(ctx, Window{Start: startDate.Unix(), End: endDate.Unix()}, false)
}

func (p *PlayHistoryPager) topArtists(ctx context.Context, window Window, firstLoad bool) (int, error) {
	p.metrics.IncPageLoads("weeks")
	items, err := p.api.TopArtistsPerWeek(ctx, window.Start, window.End)
	if err != nil {
		p.metrics.IncPageLoadErrors("weeks")
		// A failed refresh should be retried next time rather than
		// permanently blocked.
		p.refreshingCurrentWeek.Store(false)
		return 0, err
	}

	if firstLoad && len(items) == 0 {
		return 0, nil
	}

	// More than one week of data means this was a real page, not just
	// a refresh of the current week.
	if len(items) > 1 {
		p.refreshingCurrentWeek.Store(false)
	}

	if err := p.dao.BatchUpsert(items); err != nil {
		p.refreshingCurrentWeek.Store(false)
		return 0, err
	}
	return len(items), nil
}
