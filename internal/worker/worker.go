package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/42-Course/matcha/internal/metrics"
)

type dispatched struct {
	name string
	job  Job
}

// Runner runs every registered job on each tick using a fixed pool of goroutines
type Runner struct {
	registry       *Registry
	logger         *zap.Logger
	tickInterval   time.Duration
	jobTimeout     time.Duration
	maxConcurrency int

	mu      sync.Mutex
	running map[string]bool
}

// Config holds runner configuration
type Config struct {
	TickInterval   time.Duration // How often jobs are dispatched
	JobTimeout     time.Duration // Maximum time for one job run
	MaxConcurrency int           // Number of jobs running at once
}

// NewRunner creates a new runner instance
func NewRunner(registry *Registry, logger *zap.Logger, config Config) *Runner {
	if config.TickInterval == 0 {
		config.TickInterval = time.Minute
	}
	if config.JobTimeout == 0 {
		config.JobTimeout = 30 * time.Second
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		registry:       registry,
		logger:         logger,
		tickInterval:   config.TickInterval,
		jobTimeout:     config.JobTimeout,
		maxConcurrency: config.MaxConcurrency,
		running:        make(map[string]bool),
	}
}

// Start dispatches jobs until ctx is cancelled, then waits for in-flight runs
func (r *Runner) Start(ctx context.Context) error {
	r.logger.Info("Maintenance runner started",
		zap.Duration("tick_interval", r.tickInterval),
		zap.Duration("job_timeout", r.jobTimeout),
		zap.Int("max_concurrency", r.maxConcurrency),
		zap.Strings("jobs", r.registry.List()),
	)

	// Job channel acts as a buffer between the dispatcher and the pool
	jobChan := make(chan dispatched, r.maxConcurrency)

	var wg sync.WaitGroup
	for i := 0; i < r.maxConcurrency; i++ {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()
			r.workerLoop(ctx, workerNum, jobChan)
		}(i + 1)
	}

	r.dispatcherLoop(ctx, jobChan)
	close(jobChan)
	wg.Wait()

	r.logger.Info("Maintenance runner stopped")
	return ctx.Err()
}

// dispatcherLoop queues every registered job on each tick, starting with an immediate round
func (r *Runner) dispatcherLoop(ctx context.Context, jobChan chan<- dispatched) {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		r.dispatchAll(ctx, jobChan)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) dispatchAll(ctx context.Context, jobChan chan<- dispatched) {
	for _, name := range r.registry.List() {
		job, err := r.registry.Get(name)
		if err != nil {
			continue
		}

		// A job still running from an earlier tick is skipped
		if !r.markRunning(name) {
			metrics.IncrementJobRun(name, metrics.ResultSkipped)
			r.logger.Debug("Job still running, skipped", zap.String("job", name))
			continue
		}

		select {
		case jobChan <- dispatched{name: name, job: job}:
		case <-ctx.Done():
			r.markDone(name)
			return
		}
	}
}

func (r *Runner) markRunning(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running[name] {
		return false
	}
	r.running[name] = true
	return true
}

func (r *Runner) markDone(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.running, name)
}

// workerLoop runs jobs from the channel until it is closed
func (r *Runner) workerLoop(ctx context.Context, workerNum int, jobChan <-chan dispatched) {
	for d := range jobChan {
		if ctx.Err() != nil {
			r.markDone(d.name)
			continue
		}
		_ = r.runJob(ctx, workerNum, d.name, d.job)
	}
}

// RunOnce runs every registered job once, in name order, and returns the joined errors
func (r *Runner) RunOnce(ctx context.Context) error {
	var errs []error
	for _, name := range r.registry.List() {
		job, err := r.registry.Get(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !r.markRunning(name) {
			continue
		}
		if err := r.runJob(ctx, 0, name, job); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// runJob executes one job with the configured timeout
func (r *Runner) runJob(ctx context.Context, workerNum int, name string, job Job) error {
	defer r.markDone(name)

	jobCtx, cancel := context.WithTimeout(ctx, r.jobTimeout)
	defer cancel()

	start := time.Now()
	affected, err := job.Run(jobCtx)
	if err != nil {
		metrics.IncrementJobRun(name, metrics.ResultFailed)
		r.logger.Error("Job failed",
			zap.String("job", name),
			zap.Int("worker_num", workerNum),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return err
	}

	metrics.IncrementJobRun(name, metrics.ResultSuccess)
	r.logger.Info("Job finished",
		zap.String("job", name),
		zap.Int("worker_num", workerNum),
		zap.Int64("affected", affected),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
