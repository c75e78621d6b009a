package repository

import (
	"context"
	"fmt"

	"lutfarm/database"
	"lutfarm/models"

	"github.com/jackc/pgx/v5"
)

// PublishedWeightRepository implements the PublishedWeightRepository interface
type PublishedWeightRepository struct {
	q queryable
}

// NewPublishedWeightRepository creates a new published weight repository
func NewPublishedWeightRepository(db *database.DB) *PublishedWeightRepository {
	return &PublishedWeightRepository{q: db.Pool}
}

func newPublishedWeightRepositoryWithTx(tx queryable) *PublishedWeightRepository {
	return &PublishedWeightRepository{q: tx}
}

var publishedWeightColumns = []string{"run_id", "outcome_id", "weight", "win_hundredths"}

// CreateBatch bulk-inserts a published table with COPY
func (r *PublishedWeightRepository) CreateBatch(ctx context.Context, weights []models.PublishedWeight) (int64, error) {
	n, err := r.q.CopyFrom(ctx,
		pgx.Identifier{"published_weights"},
		publishedWeightColumns,
		pgx.CopyFromSlice(len(weights), func(i int) ([]any, error) {
			w := weights[i]
			return []any{w.RunID, w.OutcomeID, w.Weight, w.WinHundredths}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy published weights: %w", err)
	}
	return n, nil
}

// GetByRun returns a run's published table ordered by outcome id
func (r *PublishedWeightRepository) GetByRun(ctx context.Context, runID int64) ([]models.PublishedWeight, error) {
	query := `
		SELECT run_id, outcome_id, weight, win_hundredths
		FROM published_weights
		WHERE run_id = $1
		ORDER BY outcome_id
	`
	rows, err := r.q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get published weights of run %d: %w", runID, err)
	}

	weights, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.PublishedWeight])
	if err != nil {
		return nil, fmt.Errorf("failed to scan published weights: %w", err)
	}
	return weights, nil
}
