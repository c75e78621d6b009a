package service

import (
	"context"
	"time"

	"lutfarm/events"
	"lutfarm/farm"
	"lutfarm/models"
	"lutfarm/report"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRunRepository is a mock implementation of RunRepository
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Create(ctx context.Context, run *models.OptimizationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) GetByRunID(ctx context.Context, runID uuid.UUID) (*models.OptimizationRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OptimizationRun), args.Error(1)
}

func (m *MockRunRepository) Complete(ctx context.Context, id int64, bestScore float64, finishedAt time.Time) error {
	args := m.Called(ctx, id, bestScore, finishedAt)
	return args.Error(0)
}

func (m *MockRunRepository) Fail(ctx context.Context, id int64, message string, finishedAt time.Time) error {
	args := m.Called(ctx, id, message, finishedAt)
	return args.Error(0)
}

func (m *MockRunRepository) ListRecent(ctx context.Context, gameName, betMode string, limit int) ([]*models.OptimizationRun, error) {
	args := m.Called(ctx, gameName, betMode, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OptimizationRun), args.Error(1)
}

// MockRankedSolutionRepository is a mock implementation of RankedSolutionRepository
type MockRankedSolutionRepository struct {
	mock.Mock
}

func (m *MockRankedSolutionRepository) CreateBatch(ctx context.Context, solutions []*models.RankedSolution) error {
	args := m.Called(ctx, solutions)
	return args.Error(0)
}

func (m *MockRankedSolutionRepository) GetByRun(ctx context.Context, runID int64) ([]*models.RankedSolution, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RankedSolution), args.Error(1)
}

// MockPublishedWeightRepository is a mock implementation of PublishedWeightRepository
type MockPublishedWeightRepository struct {
	mock.Mock
}

func (m *MockPublishedWeightRepository) CreateBatch(ctx context.Context, weights []models.PublishedWeight) (int64, error) {
	args := m.Called(ctx, weights)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPublishedWeightRepository) GetByRun(ctx context.Context, runID int64) ([]models.PublishedWeight, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PublishedWeight), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	runRepo             RunRepository
	rankedSolutionRepo  RankedSolutionRepository
	publishedWeightRepo PublishedWeightRepository
	eventBus            EventPublisher
}

// SetRepositories wires the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(runs RunRepository, solutions RankedSolutionRepository, weights PublishedWeightRepository, bus EventPublisher) {
	m.runRepo = runs
	m.rankedSolutionRepo = solutions
	m.publishedWeightRepo = weights
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) RunRepository() RunRepository {
	return m.runRepo
}

func (m *MockUnitOfWork) RankedSolutionRepository() RankedSolutionRepository {
	return m.rankedSolutionRepo
}

func (m *MockUnitOfWork) PublishedWeightRepository() PublishedWeightRepository {
	return m.publishedWeightRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyRunCompleted(ctx context.Context, e events.RunCompletedEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockNotifier) NotifyRunFailed(ctx context.Context, e events.RunFailedEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// MockReportWriter is a mock implementation of ReportWriter
type MockReportWriter struct {
	mock.Mock
}

func (m *MockReportWriter) Write(mode string, top []farm.Ranked) (*report.Files, error) {
	args := m.Called(mode, top)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Files), args.Error(1)
}
