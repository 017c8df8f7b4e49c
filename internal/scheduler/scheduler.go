// Package scheduler repeats the checkout suite on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/checkoutprobe/checkoutprobe/internal/config"
)

// ErrAlreadyStarted is returned by a second Start
var ErrAlreadyStarted = errors.New("scheduler already started")

// Job is one scheduled execution of the suite
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron schedule
type Scheduler struct {
	cron     *cron.Cron
	config   config.ScheduleConfig
	job      Job
	mu       sync.Mutex
	ctx      context.Context
	entryID  cron.EntryID
	started  bool
	stopped  chan struct{}
	stopOnce sync.Once
}

// New creates a scheduler for job. Nothing runs until Start.
func New(cfg *config.ScheduleConfig, job Job) *Scheduler {
	return &Scheduler{
		cron:    newCron(cfg.Policy, newParser()),
		config:  *cfg,
		job:     job,
		stopped: make(chan struct{}),
	}
}

// newParser accepts five-field specs and descriptors like @daily or @every 1h
func newParser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

func newCron(policy string, parser cron.Parser) *cron.Cron {
	var wrapper cron.JobWrapper
	switch policy {
	case "delay":
		wrapper = cron.DelayIfStillRunning(cron.DefaultLogger)
	default:
		wrapper = cron.SkipIfStillRunning(cron.DefaultLogger)
	}
	return cron.New(cron.WithParser(parser), cron.WithChain(wrapper))
}

// Validate parses a cron spec with the scheduler's parser
func Validate(spec string) error {
	if _, err := newParser().Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Start registers the job and starts the cron loop. The scheduler stops
// when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	s.ctx = ctx
	entryID, err := s.cron.AddFunc(s.config.Spec, s.run)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.config.Spec, err)
	}
	s.entryID = entryID
	s.started = true

	s.cron.Start()
	log.Printf("Scheduler started (schedule=%s, policy=%s, next run %s)",
		s.config.Spec, s.config.Policy, s.cron.Entry(entryID).Next.Format(time.RFC3339))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunNow executes the job immediately, outside the cron schedule
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.execute(ctx)
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if err := s.execute(ctx); err != nil {
		log.Printf("Scheduled run failed: %v", err)
	}
	if next := s.Next(); !next.IsZero() {
		log.Printf("Next scheduled run at %s", next.Format(time.RFC3339))
	}
}

func (s *Scheduler) execute(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	started := time.Now()
	log.Println("Scheduled run starting")
	err := s.job(ctx)
	log.Printf("Scheduled run finished in %s", time.Since(started).Round(time.Second))
	return err
}

// Next returns the next scheduled time, or zero before Start
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Stop stops the cron loop and waits for a running job. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		log.Println("Scheduler stopping...")
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		close(s.stopped)
		log.Println("Scheduler stopped")
	})
}

// Done returns a channel that is closed when the scheduler has fully stopped
func (s *Scheduler) Done() <-chan struct{} {
	return s.stopped
}
