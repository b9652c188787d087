// Package feed reconciles asynchronous, possibly-failing page loads
// into a small set of view-facing states. Controllers hold no
// persisted state; the stores are the single source of truth.
package feed

import (
	"context"
	"sync"
	"time"

	"wiltd/internal/api"
	"wiltd/internal/models"
	"wiltd/internal/pager"
	"wiltd/internal/providers"
	"wiltd/internal/queue"
	"wiltd/internal/store"
)

// State is the top-level condition of a feed view.
type State int

const (
	// StateNone is the zero value before the first appearance.
	StateNone State = iota
	StateDisplayingRows
	StateLoadingAtTop
	StateLoadingAtBottom
	StateErrorAtTop
	StateErrorAtBottom
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateDisplayingRows:
		return "displayingRows"
	case StateLoadingAtTop:
		return "loadingAtTop"
	case StateLoadingAtBottom:
		return "loadingAtBottom"
	case StateErrorAtTop:
		return "errorAtTop"
	case StateErrorAtBottom:
		return "errorAtBottom"
	case StateEmpty:
		return "empty"
	default:
		return "none"
	}
}

// Delegate receives the signals that leave the feed entirely.
type Delegate interface {
	LoggedOut()
}

// Item is one rendered feed row: an artist week joined with its
// listen-later flag.
type Item struct {
	ArtistName  string    `json:"artistName"`
	Plays       int64     `json:"plays"`
	Week        string    `json:"week"`
	Date        time.Time `json:"date"`
	ImageURL    string    `json:"imageUrl"`
	ExternalURL string    `json:"externalUrl"`
	Starred     bool      `json:"starred"`
}

// Controller drives the weekly top-artists feed. Page loads run on the
// controller's serial queue; the state guard refuses to re-enter a
// state it is already in, which is what prevents duplicate in-flight
// page requests for one direction.
type Controller struct {
	historyDao     store.ArtistWeekDao
	listenLaterDao store.ListenLaterDao
	pager          *pager.PlayHistoryPager
	logger         providers.Logger
	queue          *queue.Serial

	mu            sync.Mutex
	state         State
	onViewUpdate  func(State)
	onRowsUpdated func()
	delegate      Delegate
}

func NewController(historyDao store.ArtistWeekDao, listenLaterDao store.ListenLaterDao, p *pager.PlayHistoryPager, logger providers.Logger) *Controller {
	c := &Controller{
		historyDao:     historyDao,
		listenLaterDao: listenLaterDao,
		pager:          p,
		logger:         logger,
		queue:          queue.NewSerial(),
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

func (c *Controller) SetDelegate(d Delegate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delegate = d
}

// SetOnViewUpdate registers the state observer.
func (c *Controller) SetOnViewUpdate(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onViewUpdate = fn
}

// SetOnRowsUpdated registers the row-change observer. Row changes are
// deliberately separate from state changes: they reload content
// without touching the top-level state.
func (c *Controller) SetOnRowsUpdated(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRowsUpdated = fn
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) updateState(state State) {
	c.mu.Lock()
	c.state = state
	fn := c.onViewUpdate
	c.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}

// enterLoading transitions into the given loading state unless the
// controller is already there. Double-invoked view callbacks therefore
// trigger exactly one load.
func (c *Controller) enterLoading(state State) bool {
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

func (c *Controller) OnViewAppeared() {
	if !c.enterLoading(StateLoadingAtTop) {
		return
	}
	c.loadLaterPage()
}

func (c *Controller) Refresh() {
	if !c.enterLoading(StateLoadingAtTop) {
		return
	}
	c.loadLaterPage()
}

func (c *Controller) OnRetryHeaderPressed() {
	if !c.enterLoading(StateLoadingAtTop) {
		return
	}
	c.loadLaterPage()
}

func (c *Controller) OnScrolledToBottom() {
	if !c.enterLoading(StateLoadingAtBottom) {
		return
	}
	c.loadEarlierPage()
}

func (c *Controller) OnRetryFooterPressed() {
	c.OnScrolledToBottom()
}

// OnViewDisappeared releases a stuck loading affordance. The load
// itself is not cancelled; this is purely a view-state correction.
func (c *Controller) OnViewDisappeared() {
	c.mu.Lock()
	loading := c.state == StateLoadingAtTop || c.state == StateLoadingAtBottom
	c.mu.Unlock()
	if !loading {
		return
	}
	c.updateState(StateDisplayingRows)
}

// Items returns the rows to render, newest week first, each annotated
// with its listen-later flag.
func (c *Controller) Items() ([]Item, error) {
	weeks, err := c.historyDao.Items()
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(weeks))
	for _, week := range weeks {
		// A flag lookup failure just renders unstarred.
		starred, _ := c.listenLaterDao.Contains(week.Artist)
		items = append(items, Item{
			ArtistName:  week.Artist,
			Plays:       week.Plays,
			Week:        week.Week,
			Date:        week.Date,
			ImageURL:    week.ImageURL,
			ExternalURL: week.ExternalURL,
			Starred:     starred,
		})
	}
	return items, nil
}

// Star flags an artist for later listening.
func (c *Controller) Star(item models.ListenLaterArtist) {
	c.queue.Async(func() {
		if err := c.listenLaterDao.Insert(item); err != nil {
			c.logger.Errorf(providers.TypeSync, "Star failed for %q: %s", item.Name, err)
		}
	})
}

// Unstar removes an artist's flag.
func (c *Controller) Unstar(name string) {
	c.queue.Async(func() {
		if err := c.listenLaterDao.Delete(name); err != nil {
			c.logger.Errorf(providers.TypeSync, "Unstar failed for %q: %s", name, err)
		}
	})
}

func (c *Controller) loadLaterPage() {
	c.queue.Async(func() {
		latest, err := c.historyDao.Latest()
		if err != nil {
			c.logger.Errorf(providers.TypeSync, "Store read failed: %s", err)
			c.updateState(StateErrorAtTop)
			return
		}
		if latest == nil {
			count, err := c.pager.OnZeroItemsLoaded(context.Background())
			c.handleLoadResult(count, err, true, StateErrorAtTop)
			return
		}
		count, err := c.pager.LoadLaterPage(context.Background(), *latest)
		c.handleLoadResult(count, err, false, StateErrorAtTop)
	})
}

func (c *Controller) loadEarlierPage() {
	c.queue.Async(func() {
		earliest, err := c.historyDao.Earliest()
		if err != nil {
			c.logger.Errorf(providers.TypeSync, "Store read failed: %s", err)
			c.updateState(StateErrorAtBottom)
			return
		}
		if earliest == nil {
			count, err := c.pager.OnZeroItemsLoaded(context.Background())
			c.handleLoadResult(count, err, true, StateErrorAtTop)
			return
		}
		count, err := c.pager.LoadEarlierPage(context.Background(), *earliest)
		c.handleLoadResult(count, err, false, StateErrorAtBottom)
	})
}

func (c *Controller) handleLoadResult(count int, err error, isItemsEmpty bool, errorState State) {
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

// Close drains the controller's queue.
func (c *Controller) Close() {
	c.queue.Close()
}
