// Package jobs runs background work on a bounded queue with a fixed worker pool.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/soyeahso/evaluet/internal/logging"
)

// ErrQueueClosed is returned by TrySubmit after Stop.
var ErrQueueClosed = errors.New("job queue closed")

// ErrQueueFull is returned by TrySubmit when no slot is free.
var ErrQueueFull = errors.New("job queue full")

// Job is one unit of background work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Queue buffers jobs and runs them on a fixed set of workers. Enqueueing
// never blocks: when the buffer is full the job is dropped.
type Queue struct {
	jobs    chan Job
	workers int
	timeout time.Duration
	log     *logging.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New creates a queue with the given buffer size, worker count and per-job
// timeout (zero means no timeout).
func New(size, workers int, timeout time.Duration, log *logging.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		jobs:    make(chan Job, size),
		workers: workers,
		timeout: timeout,
		log:     log.Sub("jobs"),
	}
}

// Start launches the workers. Jobs inherit ctx; canceling it aborts running
// jobs but workers keep draining the queue until Stop.
func (q *Queue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	q.log.Info().Int("workers", q.workers).Int("capacity", cap(q.jobs)).Msg("job queue started")
}

// Submit enqueues job and reports whether it was accepted.
func (q *Queue) Submit(job Job) bool {
	err := q.TrySubmit(job)
	if err != nil {
		q.log.Warn().Err(err).Str("job", job.Name).Msg("job dropped")
		return false
	}
	return true
}

// TrySubmit enqueues job without blocking.
func (q *Queue) TrySubmit(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued jobs not yet picked up.
func (q *Queue) Pending() int {
	return len(q.jobs)
}

// Stop refuses new jobs, waits for queued ones to finish, then returns.
// Safe to call more than once.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	if q.cancel != nil {
		q.cancel()
	}
	q.log.Info().Msg("job queue stopped")
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	for job := range q.jobs {
		q.run(ctx, id, job)
	}
}

func (q *Queue) run(ctx context.Context, id int, job Job) {
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	start := time.Now()
	err := safeRun(ctx, job)
	log := q.log.With("job", job.Name)
	if err != nil {
		log.Error().Err(err).Int("worker", id).Dur("elapsed", time.Since(start)).Msg("job failed")
		return
	}
	log.Debug().Int("worker", id).Dur("elapsed", time.Since(start)).Msg("job finished")
}

func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.Run(ctx)
}
