package service

import (
	"context"
	"time"

	"lutfarm/events"
	"lutfarm/farm"
	"lutfarm/models"
	"lutfarm/report"

	"github.com/google/uuid"
)

// RunRepository defines the interface for optimization run records
type RunRepository interface {
	// Create inserts a run and fills its ID and timestamps
	Create(ctx context.Context, run *models.OptimizationRun) error

	// GetByRunID retrieves a run by its public id, nil if absent
	GetByRunID(ctx context.Context, runID uuid.UUID) (*models.OptimizationRun, error)

	// Complete marks a run completed with its best score
	Complete(ctx context.Context, id int64, bestScore float64, finishedAt time.Time) error

	// Fail marks a run failed with an error message
	Fail(ctx context.Context, id int64, message string, finishedAt time.Time) error

	// ListRecent returns the latest runs of a game bet mode, newest first
	ListRecent(ctx context.Context, gameName, betMode string, limit int) ([]*models.OptimizationRun, error)
}

// RankedSolutionRepository defines the interface for reported solutions
type RankedSolutionRepository interface {
	// CreateBatch inserts the reported solutions of a run
	CreateBatch(ctx context.Context, solutions []*models.RankedSolution) error

	// GetByRun returns a run's solutions ordered by rank
	GetByRun(ctx context.Context, runID int64) ([]*models.RankedSolution, error)
}

// PublishedWeightRepository defines the interface for published lookup tables
type PublishedWeightRepository interface {
	// CreateBatch bulk-inserts a run's published table and returns the row count
	CreateBatch(ctx context.Context, weights []models.PublishedWeight) (int64, error)

	// GetByRun returns a run's published table ordered by outcome id
	GetByRun(ctx context.Context, runID int64) ([]models.PublishedWeight, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork manages a database transaction and the repositories bound to it
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	RunRepository() RunRepository
	RankedSolutionRepository() RankedSolutionRepository
	PublishedWeightRepository() PublishedWeightRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// Notifier delivers run outcomes to people
type Notifier interface {
	NotifyRunCompleted(ctx context.Context, e events.RunCompletedEvent) error
	NotifyRunFailed(ctx context.Context, e events.RunFailedEvent) error
}

// ReportWriter writes run outputs for a bet mode
type ReportWriter interface {
	Write(mode string, top []farm.Ranked) (*report.Files, error)
}

// OptimizationService runs the weight farm for one game bet mode
type OptimizationService interface {
	Run(ctx context.Context) (*RunSummary, error)
}
