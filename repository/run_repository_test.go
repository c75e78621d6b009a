package repository

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"lutfarm/events"
	"lutfarm/models"
	"lutfarm/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRepository_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRunRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing run", func(t *testing.T) {
		run, err := repo.GetByRunID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, run)
	})

	t.Run("create and complete", func(t *testing.T) {
		run := testutil.CreateTestRun("0_0_lines", "base")
		require.NoError(t, repo.Create(ctx, run))
		assert.NotZero(t, run.ID)
		assert.False(t, run.CreatedAt.IsZero())

		stored, err := repo.GetByRunID(ctx, run.RunID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, models.RunStatusRunning, stored.Status)
		assert.Nil(t, stored.BestScore)
		assert.Equal(t, float64(100), stored.Setup["population_target"])

		finished := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, repo.Complete(ctx, run.ID, 0.73, finished))

		stored, err = repo.GetByRunID(ctx, run.RunID)
		require.NoError(t, err)
		assert.Equal(t, models.RunStatusCompleted, stored.Status)
		require.NotNil(t, stored.BestScore)
		assert.InDelta(t, 0.73, *stored.BestScore, 1e-12)
		require.NotNil(t, stored.FinishedAt)
		assert.True(t, finished.Equal(*stored.FinishedAt))
	})

	t.Run("fail", func(t *testing.T) {
		run := testutil.CreateTestRun("0_0_lines", "bonus")
		require.NoError(t, repo.Create(ctx, run))
		require.NoError(t, repo.Fail(ctx, run.ID, "target unreachable", time.Now()))

		stored, err := repo.GetByRunID(ctx, run.RunID)
		require.NoError(t, err)
		assert.Equal(t, models.RunStatusFailed, stored.Status)
		require.NotNil(t, stored.ErrorMessage)
		assert.Equal(t, "target unreachable", *stored.ErrorMessage)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.Error(t, repo.Complete(ctx, 987654, 1, time.Now()))
		assert.Error(t, repo.Fail(ctx, 987654, "x", time.Now()))
	})

	t.Run("list recent", func(t *testing.T) {
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			run := testutil.CreateTestRun("listing", "base")
			run.StartedAt = base.Add(time.Duration(i) * time.Hour)
			require.NoError(t, repo.Create(ctx, run))
		}
		other := testutil.CreateTestRun("listing", "bonus")
		require.NoError(t, repo.Create(ctx, other))

		runs, err := repo.ListRecent(ctx, "listing", "base", 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
		for _, r := range runs {
			assert.Equal(t, "base", r.BetMode)
		}
	})
}

func TestRankedSolutionRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	run := testutil.CreateTestRun("0_0_lines", "base")
	require.NoError(t, NewRunRepository(testDB.DB).Create(ctx, run))

	repo := NewRankedSolutionRepository(testDB.DB)
	solutions := []*models.RankedSolution{
		testutil.CreateTestRankedSolution(run.ID, 1, 0.9),
		testutil.CreateTestRankedSolution(run.ID, 0, 0.95),
	}
	require.NoError(t, repo.CreateBatch(ctx, solutions))
	for _, s := range solutions {
		assert.NotZero(t, s.ID)
	}

	stored, err := repo.GetByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 0, stored[0].Rank)
	assert.Equal(t, []int{0, 1, 0}, stored[0].CandidateIndexes)
	assert.Equal(t, []float64{0.5, 0.75, 0.875}, stored[0].Curve)
	assert.Equal(t, 1, stored[1].Rank)

	t.Run("duplicate rank rejected", func(t *testing.T) {
		err := repo.CreateBatch(ctx, []*models.RankedSolution{testutil.CreateTestRankedSolution(run.ID, 0, 0.1)})
		assert.Error(t, err)
	})
}

func TestPublishedWeightRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	run := testutil.CreateTestRun("0_0_lines", "base")
	require.NoError(t, NewRunRepository(testDB.DB).Create(ctx, run))

	repo := NewPublishedWeightRepository(testDB.DB)
	n, err := repo.CreateBatch(ctx, testutil.CreateTestPublishedWeights(run.ID, 250))
	require.NoError(t, err)
	assert.Equal(t, int64(250), n)

	stored, err := repo.GetByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, stored, 250)
	assert.Equal(t, int64(1), stored[0].OutcomeID)
	assert.Equal(t, int64(1)<<40, stored[0].Weight)
	assert.Equal(t, int64(249*50), stored[249].WinHundredths)
}

func TestUnitOfWork(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	var delivered atomic.Int32
	bus.Subscribe(events.EventTypeRunPersisted, func(ctx context.Context, e events.Event) {
		delivered.Add(1)
	})
	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	t.Run("getters panic before begin", func(t *testing.T) {
		uow := factory.Create()
		assert.Panics(t, func() { uow.RunRepository() })
		assert.Panics(t, func() { uow.PublishedWeightRepository() })
	})

	t.Run("rollback discards writes and events", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))

		run := testutil.CreateTestRun("uow", "base")
		require.NoError(t, uow.RunRepository().Create(ctx, run))
		uow.EventBus().Publish(events.RunPersistedEvent{RunID: run.RunID.String()})
		require.NoError(t, uow.Rollback())

		stored, err := NewRunRepository(testDB.DB).GetByRunID(ctx, run.RunID)
		require.NoError(t, err)
		assert.Nil(t, stored)
		assert.Equal(t, int32(0), delivered.Load())
	})

	t.Run("commit persists and flushes events", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		assert.Error(t, uow.Begin(ctx))

		run := testutil.CreateTestRun("uow", "base")
		require.NoError(t, uow.RunRepository().Create(ctx, run))
		require.NoError(t, uow.RankedSolutionRepository().CreateBatch(ctx,
			[]*models.RankedSolution{testutil.CreateTestRankedSolution(run.ID, 0, 0.5)}))
		_, err := uow.PublishedWeightRepository().CreateBatch(ctx, testutil.CreateTestPublishedWeights(run.ID, 3))
		require.NoError(t, err)
		uow.EventBus().Publish(events.RunPersistedEvent{RunID: run.RunID.String(), Solutions: 1, Weights: 3})
		require.NoError(t, uow.Commit())

		stored, err := NewRunRepository(testDB.DB).GetByRunID(ctx, run.RunID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Eventually(t, func() bool { return delivered.Load() == 1 }, time.Second, 10*time.Millisecond)

		assert.NoError(t, uow.Rollback())
		assert.Error(t, uow.Commit())
	})
}
