package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the lifecycle state of an optimization run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// OptimizationRun records one farm execution for a game bet mode
type OptimizationRun struct {
	ID           int64                  `db:"id"`
	RunID        uuid.UUID              `db:"run_id"`
	GameName     string                 `db:"game_name"`
	BetMode      string                 `db:"bet_mode"`
	Setup        map[string]interface{} `db:"setup"`
	Status       RunStatus              `db:"status"`
	BestScore    *float64               `db:"best_score"`
	ErrorMessage *string                `db:"error_message"`
	StartedAt    time.Time              `db:"started_at"`
	FinishedAt   *time.Time             `db:"finished_at"`
	CreatedAt    time.Time              `db:"created_at"`
}

// RankedSolution is one reported full solution of a run
type RankedSolution struct {
	ID               int64     `db:"id"`
	RunID            int64     `db:"run_id"`
	Rank             int       `db:"rank"`
	Score            float64   `db:"score"`
	RTP              float64   `db:"rtp"`
	CandidateIndexes []int     `db:"candidate_indexes"`
	Curve            []float64 `db:"curve"`
	CreatedAt        time.Time `db:"created_at"`
}

// PublishedWeight is one row of the published lookup table
type PublishedWeight struct {
	RunID         int64 `db:"run_id"`
	OutcomeID     int64 `db:"outcome_id"`
	Weight        int64 `db:"weight"`
	WinHundredths int64 `db:"win_hundredths"`
}
