// Package lane serializes transaction submissions per signing authority.
// Concurrent submissions from one account would race on the chain nonce;
// each authority therefore gets a FIFO execution lane, while lanes for
// different authorities proceed independently.
package lane

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cyphera/jobdispatch/internal/logger"

	"go.uber.org/zap"
)

// DefaultGap is the minimum pause between tasks on one lane. It absorbs
// provider-side lag in pending-nonce visibility after a broadcast.
const DefaultGap = 500 * time.Millisecond

// Task is a unit of work executed on a lane.
type Task func(ctx context.Context) error

// Queue manages one FIFO lane per authority key.
type Queue struct {
	mu    sync.Mutex
	lanes map[string]*laneState
	gap   time.Duration
}

type laneState struct {
	// tail is closed when the lane is free for the next task.
	tail chan struct{}
	// completed counts successfully settled tasks. Diagnostics only;
	// never consulted for on-chain nonce values.
	completed atomic.Uint64
}

// Option configures a Queue.
type Option func(*Queue)

// WithGap overrides the minimum inter-task delay.
func WithGap(gap time.Duration) Option {
	return func(q *Queue) {
		q.gap = gap
	}
}

// NewQueue creates an empty Queue.
func NewQueue(options ...Option) *Queue {
	q := &Queue{
		lanes: make(map[string]*laneState),
		gap:   DefaultGap,
	}
	for _, option := range options {
		option(q)
	}
	return q
}

// Enqueue appends task to the authority's lane and returns a channel that
// receives the task's outcome once it settles. The task does not start
// until every previously enqueued task on the same lane has settled and
// the inter-task gap has elapsed. Once enqueued a task cannot be
// cancelled; the lane always drains.
func (q *Queue) Enqueue(ctx context.Context, authority string, task Task) <-chan error {
	q.mu.Lock()
	ls, ok := q.lanes[authority]
	if !ok {
		free := make(chan struct{})
		close(free)
		ls = &laneState{tail: free}
		q.lanes[authority] = ls
	}
	turn := ls.tail
	next := make(chan struct{})
	ls.tail = next
	q.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		<-turn

		logger.Debug("lane task starting", zap.String("authority", authority))
		err := task(ctx)
		if err == nil {
			ls.completed.Add(1)
		} else {
			logger.Debug("lane task failed",
				zap.String("authority", authority),
				zap.Error(err))
		}
		done <- err

		// Hold the lane for the gap so the provider sees the previous
		// broadcast before the next submission builds on it.
		time.AfterFunc(q.gap, func() {
			close(next)
		})
	}()
	return done
}

// Do enqueues task and blocks until it settles.
func (q *Queue) Do(ctx context.Context, authority string, task Task) error {
	return <-q.Enqueue(ctx, authority, task)
}

// Completed returns the number of successfully settled tasks for an
// authority.
func (q *Queue) Completed(authority string) uint64 {
	q.mu.Lock()
	ls, ok := q.lanes[authority]
	q.mu.Unlock()
	if !ok {
		return 0
	}
	return ls.completed.Load()
}
