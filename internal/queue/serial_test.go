package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.uber.org/atomic"
)

func TestSerial_JobsRunInSubmissionOrder(t *testing.T) {
	q := NewSerial()
	defer q.Close()

	var order []int
	for i := 0; i < 10; i++ {
		i := i
		q.Async(func() { order = append(order, i) })
	}
	q.Sync(func() {})

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestSerial_SyncIsDrainBarrier(t *testing.T) {
	q := NewSerial()
	defer q.Close()

	var pending atomic.Int32
	for i := 0; i < 5; i++ {
		q.Async(func() {
			time.Sleep(time.Millisecond)
			pending.Inc()
		})
	}

	q.Sync(func() {})
	assert.Equal(t, int32(5), pending.Load())
}

func TestSerial_CloseWaitsForPendingJobs(t *testing.T) {
	q := NewSerial()

	var ran atomic.Int32
	q.Async(func() {
		time.Sleep(10 * time.Millisecond)
		ran.Inc()
	})

	q.Close()
	assert.Equal(t, int32(1), ran.Load())
}

func TestSerial_JobsAfterCloseAreDropped(t *testing.T) {
	q := NewSerial()
	q.Close()

	var ran atomic.Int32
	q.Async(func() { ran.Inc() })
	q.Sync(func() { ran.Inc() })

	assert.Equal(t, int32(0), ran.Load())
}

func TestSerial_CloseIsIdempotent(t *testing.T) {
	q := NewSerial()
	q.Close()
	q.Close()
}
