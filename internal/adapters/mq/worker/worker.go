// Package worker drains sync jobs from the queue into the document store.
// Failed jobs are logged and counted, never retried.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/workforce/internal/adapters/mq/queue"
	"github.com/okian/workforce/internal/domain/model"
	"github.com/okian/workforce/pkg/logger"
	"github.com/okian/workforce/pkg/metrics"
)

const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Writer persists records and reports how many rows were written.
type Writer interface {
	Upsert(ctx context.Context, records []model.Record) (int, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Result is the outcome of one job.
type Result struct {
	JobID    string
	Written  int
	Err      error
	Duration time.Duration
}

// Observer is told about every finished job.
type Observer func(Result)

// Worker processes sync jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	writer   Writer
	name     string
	observer Observer

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, writer Writer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		writer:   writer,
		name:     "worker",
		observer: func(Result) {},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "sync job failed", logger.String("job_id", job.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker loop.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) error {
	start := time.Now()
	written, err := w.writer.Upsert(ctx, job.Records)
	elapsed := time.Since(start)

	metrics.RecordSyncLatency(float64(elapsed.Milliseconds()))
	metrics.RecordSyncRecords(written)
	w.observer(Result{JobID: job.ID, Written: written, Err: err, Duration: elapsed})

	if err != nil {
		metrics.RecordSyncJob("failed")
		metrics.RecordErrorByComponent("worker", "sync_error")
		metrics.RecordErrorByType("sync_error", "high")
		return fmt.Errorf("sync job %s: %w", job.ID, err)
	}

	metrics.RecordSyncJob("done")
	w.logger.Info(ctx, "sync job written",
		logger.String("job_id", job.ID),
		logger.Int("records", written),
		logger.Duration("elapsed", elapsed),
	)
	return nil
}

// Stats counts finished jobs.
type Stats struct {
	Done    int64 `json:"done"`
	Failed  int64 `json:"failed"`
	Written int64 `json:"written"`
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	done    atomic.Int64
	failed  atomic.Int64
	written atomic.Int64

	logger logger.Logger
}

// NewPool creates a worker pool. A count below one uses the default.
func NewPool(workerCount int, q Queue, writer Writer) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewInMemoryWorker(q, writer,
			WithName("worker-"+strconv.Itoa(i)),
			WithObserver(p.observe),
		)
	}

	metrics.UpdateSyncWorkers(workerCount)
	return p
}

func (p *Pool) observe(r Result) {
	if r.Err != nil {
		p.failed.Add(1)
		return
	}
	p.done.Add(1)
	p.written.Add(int64(r.Written))
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stats returns the job counters.
func (p *Pool) Stats() Stats {
	return Stats{Done: p.done.Load(), Failed: p.failed.Load(), Written: p.written.Load()}
}

// Shutdown closes the queue, lets workers drain pending jobs and stops any
// worker still busy when ctx or the pool timeout expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			w.stopOnce.Do(func() { close(w.shutdown) })
		}
	}
	metrics.UpdateSyncWorkers(0)
	return nil
}
