package repository

import (
	"context"
	"fmt"

	"lutfarm/database"
	"lutfarm/models"

	"github.com/jackc/pgx/v5"
)

// RankedSolutionRepository implements the RankedSolutionRepository interface
type RankedSolutionRepository struct {
	q queryable
}

// NewRankedSolutionRepository creates a new ranked solution repository
func NewRankedSolutionRepository(db *database.DB) *RankedSolutionRepository {
	return &RankedSolutionRepository{q: db.Pool}
}

func newRankedSolutionRepositoryWithTx(tx queryable) *RankedSolutionRepository {
	return &RankedSolutionRepository{q: tx}
}

// CreateBatch inserts the reported solutions of a run and fills their IDs
func (r *RankedSolutionRepository) CreateBatch(ctx context.Context, solutions []*models.RankedSolution) error {
	query := `
		INSERT INTO ranked_solutions (run_id, rank, score, rtp, candidate_indexes, curve)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	for _, s := range solutions {
		indexes := make([]int32, len(s.CandidateIndexes))
		for i, v := range s.CandidateIndexes {
			indexes[i] = int32(v)
		}
		curve := s.Curve
		if curve == nil {
			curve = []float64{}
		}

		err := r.q.QueryRow(ctx, query, s.RunID, s.Rank, s.Score, s.RTP, indexes, curve).
			Scan(&s.ID, &s.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert ranked solution %d: %w", s.Rank, err)
		}
	}
	return nil
}

// GetByRun returns a run's solutions ordered by rank
func (r *RankedSolutionRepository) GetByRun(ctx context.Context, runID int64) ([]*models.RankedSolution, error) {
	query := `
		SELECT id, run_id, rank, score, rtp, candidate_indexes, curve, created_at
		FROM ranked_solutions
		WHERE run_id = $1
		ORDER BY rank
	`
	rows, err := r.q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ranked solutions of run %d: %w", runID, err)
	}
	defer rows.Close()

	solutions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.RankedSolution, error) {
		var s models.RankedSolution
		var indexes []int32
		if err := row.Scan(&s.ID, &s.RunID, &s.Rank, &s.Score, &s.RTP, &indexes, &s.Curve, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.CandidateIndexes = make([]int, len(indexes))
		for i, v := range indexes {
			s.CandidateIndexes[i] = int(v)
		}
		return &s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan ranked solutions: %w", err)
	}
	return solutions, nil
}
