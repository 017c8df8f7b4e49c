package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/checkoutprobe/checkoutprobe/internal/browser"
	"github.com/checkoutprobe/checkoutprobe/internal/models"
	"github.com/checkoutprobe/checkoutprobe/internal/scenario"
)

// RunRepository defines the interface for run persistence
type RunRepository interface {
	CreateRun(ctx context.Context, run *models.Run) error
	UpdateRun(ctx context.Context, run *models.Run) error
	GetRunByReference(ctx context.Context, reference string) (*models.Run, error)
	ListRecentRuns(ctx context.Context, limit int) ([]*models.Run, error)
}

// PageOpener opens a fresh browser page. *browser.Session satisfies it.
type PageOpener interface {
	NewPage() (browser.Page, error)
}

// RunResult is the outcome of one batch of scenarios
type RunResult struct {
	Summary *models.Summary
	Runs    []*models.Run
}

// RunService executes scenarios and keeps their history
type RunService interface {
	RunAll(ctx context.Context, pages PageOpener, scenarios []scenario.Scenario) (*RunResult, error)
	GetRun(ctx context.Context, reference string) (*models.Run, error)
	RecentRuns(ctx context.Context, limit int) ([]*models.Run, error)
}

// RunServiceImpl implements RunService
type RunServiceImpl struct {
	runner   ScenarioRunner
	runRepo  RunRepository
	notifier Notifier
	parallel int
}

// NewRunService creates a new run service. runRepo and notifier may be nil
// when history or notifications are disabled.
func NewRunService(runner ScenarioRunner, runRepo RunRepository, notifier Notifier, parallel int) RunService {
	if parallel < 1 {
		parallel = 1
	}
	return &RunServiceImpl{
		runner:   runner,
		runRepo:  runRepo,
		notifier: notifier,
		parallel: parallel,
	}
}

// RunAll runs every scenario, each in its own page. Scenario failures are
// recorded in the result; the returned error reports persistence problems.
func (s *RunServiceImpl) RunAll(ctx context.Context, pages PageOpener, scenarios []scenario.Scenario) (*RunResult, error) {
	runs := make([]*models.Run, len(scenarios))

	var g errgroup.Group
	g.SetLimit(s.parallel)

	var mu sync.Mutex
	var saveErr error
	for i, sc := range scenarios {
		g.Go(func() error {
			run, err := s.runOne(ctx, pages, sc)
			runs[i] = run
			if err != nil {
				mu.Lock()
				if saveErr == nil {
					saveErr = err
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := models.NewSummary()
	for _, run := range runs {
		if run != nil {
			summary.RecordRun(run)
		}
	}
	result := &RunResult{Summary: summary, Runs: runs}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, result); err != nil {
			log.Printf("Warning: failed to send run notification: %v", err)
		}
	}

	return result, saveErr
}

func (s *RunServiceImpl) runOne(ctx context.Context, pages PageOpener, sc scenario.Scenario) (*models.Run, error) {
	run, err := models.NewRun(sc.Name, string(sc.PaymentMethod))
	if err != nil {
		return nil, fmt.Errorf("invalid run: %w", err)
	}

	// A run that could not be stored still executes; history is best effort.
	var createErr error
	if s.runRepo != nil {
		if err := s.runRepo.CreateRun(ctx, run); err != nil {
			createErr = fmt.Errorf("failed to create run %s: %w", run.Reference, err)
			log.Printf("Warning: %v", createErr)
		}
	}
	save := func() error {
		if createErr != nil {
			return createErr
		}
		return s.save(ctx, run)
	}

	page, err := pages.NewPage()
	if err != nil {
		_ = run.Abort(err.Error())
		return run, save()
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Printf("Warning: failed to close page for %s: %v", run.Label(), err)
		}
	}()

	if err := s.runner.Execute(ctx, page, sc, run); err != nil {
		_ = run.Abort(err.Error())
	}

	return run, save()
}

func (s *RunServiceImpl) save(ctx context.Context, run *models.Run) error {
	if s.runRepo == nil {
		return nil
	}
	// persist even if the run itself was cancelled
	if err := s.runRepo.UpdateRun(context.WithoutCancel(ctx), run); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by its reference
func (s *RunServiceImpl) GetRun(ctx context.Context, reference string) (*models.Run, error) {
	if s.runRepo == nil {
		return nil, ErrHistoryDisabled
	}
	run, err := s.runRepo.GetRunByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// RecentRuns lists the latest runs, newest first
func (s *RunServiceImpl) RecentRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	if s.runRepo == nil {
		return nil, ErrHistoryDisabled
	}
	runs, err := s.runRepo.ListRecentRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
