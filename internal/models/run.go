package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents valid scenario run states
type RunStatus string

// Run statuses
const (
	RunStatusPending RunStatus = "pending"
	RunStatusRunning RunStatus = "running"
	RunStatusPassed  RunStatus = "passed"
	RunStatusFailed  RunStatus = "failed"
	RunStatusError   RunStatus = "error"
)

// Run is one execution of one checkout scenario against the target site
type Run struct {
	ID            string
	Reference     string
	Scenario      string
	PaymentMethod string
	Status        RunStatus
	FailureKind   FailureKind
	Message       string
	Steps         []StepResult
	StartedAt     time.Time
	FinishedAt    time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Domain errors
var (
	ErrInvalidScenario         = errors.New("scenario name cannot be empty")
	ErrInvalidStatusTransition = errors.New("invalid run status transition")
)

// NewRun creates a pending run for a scenario
func NewRun(scenario, paymentMethod string) (*Run, error) {
	if strings.TrimSpace(scenario) == "" {
		return nil, ErrInvalidScenario
	}

	now := time.Now()
	id := uuid.New().String()
	return &Run{
		ID:            id,
		Reference:     newReference(now, scenario, paymentMethod, id),
		Scenario:      scenario,
		PaymentMethod: paymentMethod,
		Status:        RunStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// newReference builds RUN-<unix>-<scenario>[-<method>]-<id prefix>. The id
// prefix keeps references unique when one family runs for several methods
// within the same second.
func newReference(now time.Time, scenario, paymentMethod, id string) string {
	ref := fmt.Sprintf("RUN-%d-%s", now.Unix(), scenario)
	if paymentMethod != "" {
		ref += "-" + paymentMethod
	}
	return ref + "-" + id[:8]
}

// Start marks the run as running
func (r *Run) Start() error {
	if r.Status != RunStatusPending {
		return fmt.Errorf("%w: cannot start run with status %s", ErrInvalidStatusTransition, r.Status)
	}
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = now
	r.UpdatedAt = now
	return nil
}

// Pass marks a running run as passed
func (r *Run) Pass() error {
	if r.Status != RunStatusRunning {
		return fmt.Errorf("%w: cannot pass run with status %s", ErrInvalidStatusTransition, r.Status)
	}
	r.finish(RunStatusPassed)
	return nil
}

// Fail marks a running run as failed with a classified reason
func (r *Run) Fail(kind FailureKind, message string) error {
	if r.Status != RunStatusRunning {
		return fmt.Errorf("%w: cannot fail run with status %s", ErrInvalidStatusTransition, r.Status)
	}
	r.FailureKind = kind
	r.Message = message
	r.finish(RunStatusFailed)
	return nil
}

// Abort marks a run that could not execute at all, e.g. the browser never started
func (r *Run) Abort(message string) error {
	if r.IsFinished() {
		return fmt.Errorf("%w: cannot abort run with status %s", ErrInvalidStatusTransition, r.Status)
	}
	r.FailureKind = FailureSetup
	r.Message = message
	r.finish(RunStatusError)
	return nil
}

func (r *Run) finish(status RunStatus) {
	now := time.Now()
	r.Status = status
	r.FinishedAt = now
	r.UpdatedAt = now
}

// AddStep appends a step result to the run
func (r *Run) AddStep(step StepResult) {
	r.Steps = append(r.Steps, step)
	r.UpdatedAt = time.Now()
}

// IsPassed returns true if the run passed
func (r *Run) IsPassed() bool {
	return r.Status == RunStatusPassed
}

// IsFinished returns true once the run reached a terminal status
func (r *Run) IsFinished() bool {
	switch r.Status {
	case RunStatusPassed, RunStatusFailed, RunStatusError:
		return true
	}
	return false
}

// Duration returns the wall time between start and finish
func (r *Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Label is the display name combining scenario and payment method
func (r *Run) Label() string {
	if r.PaymentMethod == "" {
		return r.Scenario
	}
	return r.Scenario + " (" + r.PaymentMethod + ")"
}
