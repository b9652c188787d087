// Package queue provides the serial work queues that back every pager,
// cache and feed controller instance. One instance owns one goroutine;
// jobs submitted to it never run concurrently with each other.
package queue

import "sync"

type Serial struct {
	jobs      chan func()
	closeOnce sync.Once
	done      chan struct{}
}

func NewSerial() *Serial {
	q := &Serial{
		jobs: make(chan func(), 64),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Serial) run() {
	defer close(q.done)
	for job := range q.jobs {
		job()
	}
}

// Async enqueues a job and returns immediately. Jobs submitted after
// Close are dropped.
func (q *Serial) Async(job func()) {
	defer func() {
		// Sending on a closed channel panics; a dropped job after
		// shutdown is the intended behaviour.
		_ = recover()
	}()
	q.jobs <- job
}

// Sync enqueues a job and blocks until it has run. All previously
// enqueued jobs complete first, which makes Sync a drain barrier.
func (q *Serial) Sync(job func()) {
	ran := make(chan struct{})
	q.Async(func() {
		defer close(ran)
		job()
	})
	select {
	case <-ran:
	case <-q.done:
	}
}

// Close stops the worker after the pending jobs finish.
func (q *Serial) Close() {
	q.closeOnce.Do(func() {
		close(q.jobs)
	})
	<-q.done
}
