package feed

import (
	"context"
	"sync"
	"time"

	"wiltd/internal/api"
	"wiltd/internal/pager"
	"wiltd/internal/providers"
	"wiltd/internal/queue"
	"wiltd/internal/store"
)

// HistoryItem is one rendered per-song history row.
type HistoryItem struct {
	Song        string    `json:"song"`
	ArtistName  string    `json:"artistName"`
	Date        time.Time `json:"date"`
	ImageURL    string    `json:"imageUrl"`
	ExternalURL string    `json:"externalUrl"`
}

// HistoryController drives the per-song play feed with the same state
// machine as the weekly feed, over cursor-based insert-only paging.
type HistoryController struct {
	historyDao store.TrackPlayDao
	pager      *pager.TrackHistoryPager
	logger     providers.Logger
	queue      *queue.Serial

	mu            sync.Mutex
	state         State
	artistQuery   string
	onViewUpdate  func(State)
	onRowsUpdated func()
	delegate      Delegate
}

func NewHistoryController(historyDao store.TrackPlayDao, p *pager.TrackHistoryPager, logger providers.Logger) *HistoryController {
	c := &HistoryController{
		historyDao: historyDao,
		pager:      p,
		logger:     logger,
		queue:      queue.NewSerial(),
	}
	historyDao.SetOnChange(func() {
		c.mu.Lock()
		fn := c.onRowsUpdated
		c.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
	return c
}

func (c *HistoryController) SetDelegate(d Delegate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delegate = d
}

func (c *HistoryController) SetOnViewUpdate(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onViewUpdate = fn
}

func (c *HistoryController) SetOnRowsUpdated(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRowsUpdated = fn
}

// SetArtistFilter narrows future page requests to one artist. Already
// cached rows are unaffected.
func (c *HistoryController) SetArtistFilter(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artistQuery = query
}

func (c *HistoryController) filter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.artistQuery
}

func (c *HistoryController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *HistoryController) updateState(state State) {
	c.mu.Lock()
	c.state = state
	fn := c.onViewUpdate
	c.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}

func (c *HistoryController) enterLoading(state State) bool {
	c.mu.Lock()
	if c.state == state {
		c.mu.Unlock()
		return false
	}
	c.state = state
	fn := c.onViewUpdate
	c.mu.Unlock()
	if fn != nil {
		fn(state)
	}
	return true
}

func (c *HistoryController) OnViewAppeared() {
	if !c.enterLoading(StateLoadingAtTop) {
		return
	}
	c.loadLaterPage()
}

func (c *HistoryController) Refresh() {
	if !c.enterLoading(StateLoadingAtTop) {
		return
	}
	c.loadLaterPage()
}

func (c *HistoryController) OnRetryHeaderPressed() {
	if !c.enterLoading(StateLoadingAtTop) {
		return
	}
	c.loadLaterPage()
}

func (c *HistoryController) OnScrolledToBottom() {
	if !c.enterLoading(StateLoadingAtBottom) {
		return
	}
	c.loadEarlierPage()
}

func (c *HistoryController) OnRetryFooterPressed() {
	c.OnScrolledToBottom()
}

func (c *HistoryController) OnViewDisappeared() {
	c.mu.Lock()
	loading := c.state == StateLoadingAtTop || c.state == StateLoadingAtBottom
	c.mu.Unlock()
	if !loading {
		return
	}
	c.updateState(StateDisplayingRows)
}

func (c *HistoryController) Items() ([]HistoryItem, error) {
	plays, err := c.historyDao.Items()
	if err != nil {
		return nil, err
	}
	items := make([]HistoryItem, 0, len(plays))
	for _, play := range plays {
		items = append(items, HistoryItem{
			Song:        play.Song,
			ArtistName:  play.Artist,
			Date:        play.Date,
			ImageURL:    play.ImageURL,
			ExternalURL: play.ExternalURL,
		})
	}
	return items, nil
}

func (c *HistoryController) loadLaterPage() {
	c.queue.Async(func() {
		latest, err := c.historyDao.Latest()
		if err != nil {
			c.logger.Errorf(providers.TypeSync, "Store read failed: %s", err)
			c.updateState(StateErrorAtTop)
			return
		}
		if latest == nil {
			count, err := c.pager.OnZeroItemsLoaded(context.Background(), c.filter())
			c.handleLoadResult(count, err, true, StateErrorAtTop)
			return
		}
		count, err := c.pager.LoadLaterPage(context.Background(), *latest, c.filter())
		c.handleLoadResult(count, err, false, StateErrorAtTop)
	})
}

func (c *HistoryController) loadEarlierPage() {
	c.queue.Async(func() {
		earliest, err := c.historyDao.Earliest()
		if err != nil {
			c.logger.Errorf(providers.TypeSync, "Store read failed: %s", err)
			c.updateState(StateErrorAtBottom)
			return
		}
		if earliest == nil {
			count, err := c.pager.OnZeroItemsLoaded(context.Background(), c.filter())
			c.handleLoadResult(count, err, true, StateErrorAtTop)
			return
		}
		count, err := c.pager.LoadEarlierPage(context.Background(), *earliest, c.filter())
		c.handleLoadResult(count, err, false, StateErrorAtBottom)
	})
}

func (c *HistoryController) handleLoadResult(count int, err error, isItemsEmpty bool, errorState State) {
	if err != nil {
		if api.IsSessionInvalid(err) {
			c.mu.Lock()
			delegate := c.delegate
			c.mu.Unlock()
			if delegate != nil {
				delegate.LoggedOut()
			}
			return
		}
		c.logger.Errorf(providers.TypeSync, "Page load failed: %s", err)
		c.updateState(errorState)
		return
	}
	if isItemsEmpty && count == 0 {
		c.updateState(StateEmpty)
		return
	}
	c.updateState(StateDisplayingRows)
}

func (c *HistoryController) Close() {
	c.queue.Close()
}
