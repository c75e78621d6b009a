package testutil

import (
	"time"

	"lutfarm/models"

	"github.com/google/uuid"
)

// CreateTestRun creates a running optimization run with default values
func CreateTestRun(game, mode string) *models.OptimizationRun {
	return &models.OptimizationRun{
		RunID:    uuid.New(),
		GameName: game,
		BetMode:  mode,
		Setup: map[string]interface{}{
			"population_target": float64(100),
			"trials":            float64(1000),
		},
		Status:    models.RunStatusRunning,
		StartedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// CreateTestRankedSolution creates a ranked solution for a stored run
func CreateTestRankedSolution(runID int64, rank int, score float64) *models.RankedSolution {
	return &models.RankedSolution{
		RunID:            runID,
		Rank:             rank,
		Score:            score,
		RTP:              0.96,
		CandidateIndexes: []int{rank, rank + 1, 0},
		Curve:            []float64{0.5, 0.75, 0.875},
	}
}

// CreateTestPublishedWeights creates n published rows with ids 1..n
func CreateTestPublishedWeights(runID int64, n int) []models.PublishedWeight {
	weights := make([]models.PublishedWeight, n)
	for i := range weights {
		weights[i] = models.PublishedWeight{
			RunID:         runID,
			OutcomeID:     int64(i + 1),
			Weight:        int64(1) << 40,
			WinHundredths: int64(i * 50),
		}
	}
	return weights
}
