package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lutfarm/database"
	"lutfarm/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RunRepository implements the RunRepository interface
type RunRepository struct {
	q queryable
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *database.DB) *RunRepository {
	return &RunRepository{q: db.Pool}
}

func newRunRepositoryWithTx(tx queryable) *RunRepository {
	return &RunRepository{q: tx}
}

const runColumns = `id, run_id, game_name, bet_mode, setup, status, best_score,
	error_message, started_at, finished_at, created_at`

// Create inserts a run and fills its ID and timestamps
func (r *RunRepository) Create(ctx context.Context, run *models.OptimizationRun) error {
	if run.RunID == uuid.Nil {
		run.RunID = uuid.New()
	}
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	setupJSON, err := json.Marshal(run.Setup)
	if err != nil {
		return fmt.Errorf("failed to marshal setup: %w", err)
	}

	query := `
		INSERT INTO optimization_runs (run_id, game_name, bet_mode, setup, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err = r.q.QueryRow(ctx, query,
		run.RunID, run.GameName, run.BetMode, setupJSON, run.Status, run.StartedAt,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create optimization run: %w", err)
	}
	return nil
}

// GetByRunID retrieves a run by its public id
func (r *RunRepository) GetByRunID(ctx context.Context, runID uuid.UUID) (*models.OptimizationRun, error) {
	query := `SELECT ` + runColumns + ` FROM optimization_runs WHERE run_id = $1`

	run, err := scanRun(r.q.QueryRow(ctx, query, runID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get optimization run %s: %w", runID, err)
	}
	return run, nil
}

// Complete marks a run completed with its best score
func (r *RunRepository) Complete(ctx context.Context, id int64, bestScore float64, finishedAt time.Time) error {
	query := `
		UPDATE optimization_runs
		SET status = $2, best_score = $3, finished_at = $4
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query, id, models.RunStatusCompleted, bestScore, finishedAt)
	if err != nil {
		return fmt.Errorf("failed to complete optimization run %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("optimization run %d not found", id)
	}
	return nil
}

// Fail marks a run failed with an error message
func (r *RunRepository) Fail(ctx context.Context, id int64, message string, finishedAt time.Time) error {
	query := `
		UPDATE optimization_runs
		SET status = $2, error_message = $3, finished_at = $4
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query, id, models.RunStatusFailed, message, finishedAt)
	if err != nil {
		return fmt.Errorf("failed to mark optimization run %d failed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("optimization run %d not found", id)
	}
	return nil
}

// ListRecent returns the latest runs of a game bet mode, newest first
func (r *RunRepository) ListRecent(ctx context.Context, gameName, betMode string, limit int) ([]*models.OptimizationRun, error) {
	query := `SELECT ` + runColumns + `
		FROM optimization_runs
		WHERE game_name = $1 AND bet_mode = $2
		ORDER BY started_at DESC, id DESC
		LIMIT $3
	`
	rows, err := r.q.Query(ctx, query, gameName, betMode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimization runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.OptimizationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan optimization run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*models.OptimizationRun, error) {
	var run models.OptimizationRun
	var setupJSON []byte

	err := row.Scan(
		&run.ID,
		&run.RunID,
		&run.GameName,
		&run.BetMode,
		&setupJSON,
		&run.Status,
		&run.BestScore,
		&run.ErrorMessage,
		&run.StartedAt,
		&run.FinishedAt,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(setupJSON) > 0 {
		if err := json.Unmarshal(setupJSON, &run.Setup); err != nil {
			return nil, fmt.Errorf("failed to unmarshal setup: %w", err)
		}
	}
	return &run, nil
}
