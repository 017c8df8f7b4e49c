package handlers

import (
	"context"
	"fmt"
	"html/template"
	"testing"

	"github.com/checkoutprobe/checkoutprobe/internal/models"
	"github.com/checkoutprobe/checkoutprobe/internal/report"
	"github.com/checkoutprobe/checkoutprobe/internal/scenario"
	"github.com/checkoutprobe/checkoutprobe/internal/services"
)

// MockRunService is a mock implementation of RunService for testing
type MockRunService struct {
	GetRunFunc     func(string) (*models.Run, error)
	RecentRunsFunc func(int) ([]*models.Run, error)
}

func (m *MockRunService) RunAll(context.Context, services.PageOpener, []scenario.Scenario) (*services.RunResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *MockRunService) GetRun(_ context.Context, reference string) (*models.Run, error) {
	if m.GetRunFunc != nil {
		return m.GetRunFunc(reference)
	}
	return nil, nil
}

func (m *MockRunService) RecentRuns(_ context.Context, limit int) ([]*models.Run, error) {
	if m.RecentRunsFunc != nil {
		return m.RecentRunsFunc(limit)
	}
	return nil, nil
}

func testTemplates(t *testing.T) *template.Template {
	t.Helper()
	tmpl, err := report.Templates(true)
	if err != nil {
		t.Fatalf("Templates() error = %v", err)
	}
	return tmpl
}

// finished builds a run in a terminal state
func finished(t *testing.T, scenarioName, method string, pass bool) *models.Run {
	t.Helper()
	run, err := models.NewRun(scenarioName, method)
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}
	_ = run.Start()
	run.AddStep(models.StepResult{Name: "open package list", Passed: true, Attempts: 1})
	if pass {
		_ = run.Pass()
	} else {
		run.AddStep(models.StepResult{Name: "payment succeeded", Attempts: 1, Error: "no success text"})
		_ = run.Fail(models.FailureIndicatorMissing, `step "payment succeeded": no success text`)
	}
	return run
}
