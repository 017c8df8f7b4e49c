package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/database"
	"github.com/checkoutprobe/checkoutprobe/internal/models"
)

// ErrRunNotFound is returned when no run matches a reference
var ErrRunNotFound = errors.New("run not found")

// RunRepository handles database operations for scenario runs
type RunRepository struct {
	db     *sql.DB
	driver string
}

// NewRunRepository creates a new run repository on the connected database
func NewRunRepository() *RunRepository {
	return &RunRepository{
		db:     database.DB,
		driver: database.Driver,
	}
}

// NewRunRepositoryWithDB creates a new run repository with a specific database connection
func NewRunRepositoryWithDB(db *sql.DB, driver string) *RunRepository {
	return &RunRepository{
		db:     db,
		driver: driver,
	}
}

func (r *RunRepository) q(query string) string {
	return database.Rebind(r.driver, query)
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// CreateRun stores a new run together with any steps it already has
func (r *RunRepository) CreateRun(ctx context.Context, run *models.Run) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO runs (id, reference, scenario, payment_method, status, failure_kind, message,
		                  started_at, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, r.q(query),
		run.ID,
		run.Reference,
		run.Scenario,
		run.PaymentMethod,
		string(run.Status),
		string(run.FailureKind),
		run.Message,
		nullTime(run.StartedAt),
		nullTime(run.FinishedAt),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	if err := r.insertSteps(ctx, tx, run); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.CreatedAt = now
	run.UpdatedAt = now
	return nil
}

// UpdateRun writes the run's status, failure and timing, and replaces its steps
func (r *RunRepository) UpdateRun(ctx context.Context, run *models.Run) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE runs
		SET status = ?, failure_kind = ?, message = ?, started_at = ?, finished_at = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, r.q(query),
		string(run.Status),
		string(run.FailureKind),
		run.Message,
		nullTime(run.StartedAt),
		nullTime(run.FinishedAt),
		now,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrRunNotFound
	}

	if _, err := tx.ExecContext(ctx, r.q(`DELETE FROM run_steps WHERE run_id = ?`), run.ID); err != nil {
		return fmt.Errorf("failed to clear run steps: %w", err)
	}
	if err := r.insertSteps(ctx, tx, run); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.UpdatedAt = now
	return nil
}

func (r *RunRepository) insertSteps(ctx context.Context, tx *sql.Tx, run *models.Run) error {
	query := r.q(`
		INSERT INTO run_steps (run_id, position, name, passed, skipped, attempts, duration_ms, error, screenshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for i, st := range run.Steps {
		_, err := tx.ExecContext(ctx, query,
			run.ID,
			i+1,
			st.Name,
			st.Passed,
			st.Skipped,
			st.Attempts,
			st.Duration.Milliseconds(),
			st.Error,
			st.Screenshot,
		)
		if err != nil {
			return fmt.Errorf("failed to store step %d: %w", i+1, err)
		}
	}
	return nil
}

const runColumns = `id, reference, scenario, payment_method, status, failure_kind, message,
		       started_at, finished_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	run := &models.Run{}
	var status, kind string
	var started, finished sql.NullTime
	err := row.Scan(
		&run.ID,
		&run.Reference,
		&run.Scenario,
		&run.PaymentMethod,
		&status,
		&kind,
		&run.Message,
		&started,
		&finished,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Status = models.RunStatus(status)
	run.FailureKind = models.FailureKind(kind)
	if started.Valid {
		run.StartedAt = started.Time
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return run, nil
}

// GetRunByReference retrieves a run and its steps by reference
func (r *RunRepository) GetRunByReference(ctx context.Context, reference string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE reference = ?`

	run, err := scanRun(r.db.QueryRowContext(ctx, r.q(query), reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	steps, err := r.loadSteps(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Steps = steps
	return run, nil
}

func (r *RunRepository) loadSteps(ctx context.Context, runID string) ([]models.StepResult, error) {
	query := `
		SELECT name, passed, skipped, attempts, duration_ms, error, screenshot
		FROM run_steps
		WHERE run_id = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, r.q(query), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run steps: %w", err)
	}
	defer rows.Close()

	var steps []models.StepResult
	for rows.Next() {
		var st models.StepResult
		var ms int64
		if err := rows.Scan(&st.Name, &st.Passed, &st.Skipped, &st.Attempts, &ms, &st.Error, &st.Screenshot); err != nil {
			return nil, fmt.Errorf("failed to scan run step: %w", err)
		}
		st.Duration = time.Duration(ms) * time.Millisecond
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read run steps: %w", err)
	}
	return steps, nil
}

// ListRecentRuns returns up to limit runs, newest first. Steps are not loaded.
func (r *RunRepository) ListRecentRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, reference DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, r.q(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}
