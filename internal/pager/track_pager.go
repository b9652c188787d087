package pager

import (
	"context"
	"time"

	"wiltd/internal/api"
	"wiltd/internal/models"
	"wiltd/internal/providers"
	"wiltd/internal/store"
)

// TrackHistoryPager pages the per-song play event history. Events are
// immutable, so paging is plain before/after cursors on the event
// timestamp and merging is insert-only.
type TrackHistoryPager struct {
	api      api.HistoryAPI
	dao      store.TrackPlayDao
	pageSize int
	metrics  providers.MetricsProviderInterface
	now      func() time.Time
}

func NewTrackHistoryPager(client api.HistoryAPI, dao store.TrackPlayDao, pageSize int, metrics providers.MetricsProviderInterface) *TrackHistoryPager {
	return &TrackHistoryPager{
		api:      client,
		dao:      dao,
		pageSize: pageSize,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (p *TrackHistoryPager) OnZeroItemsLoaded(ctx context.Context, artistQuery string) (int, error) {
	items, err := p.fetch(ctx, func(ctx context.Context) ([]models.TrackPlay, error) {
		return p.api.TrackHistoryBefore(ctx, p.pageSize, p.now().Unix(), artistQuery)
	})
	if err != nil {
		return 0, err
	}
	// Initial load with nothing available is a valid empty state.
	if len(items) == 0 {
		return 0, nil
	}
	return p.merge(items)
}

func (p *TrackHistoryPager) LoadLaterPage(ctx context.Context, latestItem models.TrackPlay, artistQuery string) (int, error) {
	after := latestItem.Date.Unix()
	items, err := p.fetch(ctx, func(ctx context.Context) ([]models.TrackPlay, error) {
		return p.api.TrackHistoryAfter(ctx, p.pageSize, after, artistQuery)
	})
	if err != nil {
		return 0, err
	}
	return p.merge(items)
}

func (p *TrackHistoryPager) LoadEarlierPage(ctx context.Context, earliestItem models.TrackPlay, artistQuery string) (int, error) {
	before := earliestItem.Date.Unix()
	items, err := p.fetch(ctx, func(ctx context.Context) ([]models.TrackPlay, error) {
		return p.api.TrackHistoryBefore(ctx, p.pageSize, before, artistQuery)
	})
	if err != nil {
		return 0, err
	}
	return p.merge(items)
}

func (p *TrackHistoryPager) fetch(ctx context.Context, call func(context.Context) ([]models.TrackPlay, error)) ([]models.TrackPlay, error) {
	p.metrics.IncPageLoads("tracks")
	items, err := call(ctx)
	if err != nil {
		p.metrics.IncPageLoadErrors("tracks")
		return nil, err
	}
	return items, nil
}

func (p *TrackHistoryPager) merge(items []models.TrackPlay) (int, error) {
	if err := p.dao.BatchInsertIfAbsent(items); err != nil {
		return 0, err
	}
	return len(items), nil
}
