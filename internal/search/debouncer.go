// Package search provides the debounced artist search used by the
// search endpoint. Keystroke-rate queries are collapsed with a
// cancel-then-reschedule delay rather than cancelling requests that
// are already on the wire.
package search

import (
	"sync"
	"time"
)

// Debouncer runs only the most recently submitted job, after a fixed
// delay. Submitting again before the delay elapses discards the
// previous pending job.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Submit(job func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, job)
}

// Stop discards a pending job, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
