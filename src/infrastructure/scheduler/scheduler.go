package scheduler

import (
	"context"
	"fmt"
	"go-restaurant-pos/src/infrastructure/log"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Task is a unit of background work. The context is cancelled when the
// scheduler stops or the run exceeds its interval.
type Task func(ctx context.Context) error

// JobScheduler runs periodic maintenance jobs such as the outbox replay.
type JobScheduler struct {
	scheduler gocron.Scheduler
	logger    log.Logger

	mu     sync.RWMutex
	jobs   map[string]gocron.Job
	ctx    context.Context
	cancel context.CancelFunc
}

func NewJobScheduler(logger log.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &JobScheduler{
		scheduler: scheduler,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// AddJob schedules task every interval. A run that is still going when the
// next one is due causes that next run to be skipped.
func (js *JobScheduler) AddJob(name string, interval time.Duration, task Task) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	js.mu.Lock()
	defer js.mu.Unlock()
	if _, exists := js.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(js.run, name, interval, task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", name, err)
	}
	js.jobs[name] = job
	js.logger.Info(js.ctx, "Registered background job: "+name)
	return nil
}

func (js *JobScheduler) run(name string, interval time.Duration, task Task) {
	ctx, cancel := context.WithTimeout(js.ctx, interval)
	defer cancel()
	ctx = js.logger.WithCorrelationID(ctx, "job-"+name)

	started := time.Now()
	if err := task(ctx); err != nil {
		js.logger.Exception(ctx, fmt.Sprintf("Background job %s failed", name), err)
		return
	}
	js.logger.InfoWithExtra(ctx, "Background job completed", map[string]any{
		"Job":      name,
		"Duration": time.Since(started).Milliseconds(),
	})
}

func (js *JobScheduler) Start() {
	js.logger.Info(js.ctx, "Starting background job scheduler")
	js.scheduler.Start()
}

// Stop cancels running tasks and waits for them to return.
func (js *JobScheduler) Stop() error {
	js.logger.Info(js.ctx, "Stopping background job scheduler")
	js.cancel()
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
