package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Config holds configuration for the Runner.
type Config struct {
	// WorkerCount determines how many concurrent workers process jobs.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// QueueSize determines the buffer size of the job queue.
	QueueSize int

	// JobTimeout bounds a single Execute call. Zero means no limit.
	JobTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		WorkerCount: 2,
		QueueSize:   100,
		JobTimeout:  30 * time.Second,
	}
}

// Runner executes submitted jobs on a fixed pool of workers.
type Runner struct {
	queue      *Queue
	cfg        Config
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	startOnce  sync.Once
	stopOnce   sync.Once
	logger     *slog.Logger
	errHandler func(job Job, err error)
}

// NewRunner creates a Runner. Call Start, or Run, before submitting work
// that must be processed promptly; jobs submitted earlier wait in the queue.
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "job_runner"))

	if cfg.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", cfg.WorkerCount),
			slog.Int("default_count", 1))
		cfg.WorkerCount = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		queue:  NewQueue(cfg.QueueSize, logger),
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// SetErrorHandler installs a callback for failed jobs. Failures are always
// logged; the handler is called in addition.
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.errHandler = handler
}

// Submit queues job without blocking. It returns ErrQueueFull when the queue
// is at capacity and ErrQueueClosed after Stop.
func (r *Runner) Submit(job Job) error {
	return r.queue.Enqueue(job)
}

// Start launches the workers. Calling it more than once has no effect.
func (r *Runner) Start() {
	r.startOnce.Do(func() {
		for i := 0; i < r.cfg.WorkerCount; i++ {
			r.wg.Add(1)
			go r.worker(i)
		}
		r.logger.Info("job runner started", slog.Int("workers", r.cfg.WorkerCount))
	})
}

// Stop closes the queue, waits for the workers to drain it and returns.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.queue.Close()
		r.wg.Wait()
		r.cancel()
		r.logger.Info("job runner stopped")
	})
}

// Run starts the runner, blocks until ctx is done, then stops it.
func (r *Runner) Run(ctx context.Context) error {
	r.Start()
	<-ctx.Done()
	r.Stop()
	return nil
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	for job := range r.queue.Jobs() {
		r.process(job, id)
	}
	r.logger.Debug("job queue drained, stopping worker", slog.Int("worker_id", id))
}

func (r *Runner) process(job Job, workerID int) {
	log := r.logger.With(
		slog.String("job_id", job.ID().String()),
		slog.String("job_type", job.Type()),
		slog.Int("worker_id", workerID))

	ctx := r.ctx
	if r.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.JobTimeout)
		defer cancel()
	}

	started := time.Now()
	if err := execute(ctx, job); err != nil {
		log.Error("job failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(started)))
		if r.errHandler != nil {
			r.errHandler(job, err)
		}
		return
	}
	log.Debug("job completed", slog.Duration("duration", time.Since(started)))
}

func execute(ctx context.Context, job Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return job.Execute(ctx)
}
