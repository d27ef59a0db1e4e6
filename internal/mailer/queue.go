package mailer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("mailer: queue closed")
	ErrQueueFull   = errors.New("mailer: queue full")
)

// Job is one unit of delivery work run by a Queue worker.
type Job func(ctx context.Context)

// Queue runs delivery jobs on a fixed set of workers so a burst of signups
// cannot fan out into unbounded goroutines.
type Queue struct {
	workers int
	jobs    chan Job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
}

func NewQueue(workers, buffer int, logger *slog.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		workers: workers,
		jobs:    make(chan Job, buffer),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
	}
}

// Start launches the worker goroutines.
func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Info("mail_queue_started", "workers", q.workers)
}

// Submit enqueues a job without blocking. It fails with ErrQueueFull when every buffer
// slot is taken and with ErrQueueClosed once Close has been called.
func (q *Queue) Submit(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
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

// Dispatch is Submit for fire-and-forget callers: a rejected job is logged and dropped.
func (q *Queue) Dispatch(fn func(ctx context.Context)) {
	if err := q.Submit(fn); err != nil {
		q.logger.Warn("mail_job_dropped", "error", err)
	}
}

// Close stops accepting jobs and waits for the queued ones to finish. When ctx expires
// first, the job context is cancelled and Close returns ctx.Err() without waiting for
// workers that are still busy.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		q.logger.Info("mail_queue_drained")
		return nil
	case <-ctx.Done():
		q.cancel()
		q.logger.Warn("mail_queue_abandoned", "pending", len(q.jobs))
		return ctx.Err()
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for job := range q.jobs {
		select {
		case <-q.ctx.Done():
			return
		default:
		}
		q.run(id, job)
	}
}

func (q *Queue) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("mail_job_panic", "worker", id, "panic", r)
		}
	}()
	job(q.ctx)
}
