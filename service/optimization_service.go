package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"lutfarm/config"
	"lutfarm/events"
	"lutfarm/farm"
	"lutfarm/fence"
	"lutfarm/library"
	"lutfarm/models"
	"lutfarm/montecarlo"
	"lutfarm/report"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// IntervalConfidence is the confidence level of the logged survival interval
const IntervalConfidence = 0.95

// intervalStream is the PCG stream of the interval re-simulation
const intervalStream = 0x696e74657276616c

// RunSummary describes a finished optimization run
type RunSummary struct {
	RunID    uuid.UUID
	Game     string
	BetMode  string
	Result   *farm.Result
	Files    *report.Files
	Interval montecarlo.Interval // of the best solution at its longest test window
	Stored   bool
}

type optimizationService struct {
	setup      *config.SetupConfig
	paths      library.Paths
	emitter    events.Emitter
	writer     ReportWriter
	uowFactory UnitOfWorkFactory // nil disables persistence
	notifier   Notifier          // nil disables notifications
}

// NewOptimizationService creates a service running setup against the game
// library at paths. uowFactory and notifier are optional.
func NewOptimizationService(setup *config.SetupConfig, paths library.Paths, emitter events.Emitter, writer ReportWriter, uowFactory UnitOfWorkFactory, notifier Notifier) OptimizationService {
	if emitter == nil {
		emitter = events.Discard
	}
	return &optimizationService{
		setup:      setup,
		paths:      paths,
		emitter:    emitter,
		writer:     writer,
		uowFactory: uowFactory,
		notifier:   notifier,
	}
}

func (s *optimizationService) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:   uuid.New(),
		Game:    s.setup.GameName,
		BetMode: s.setup.BetType,
	}
	logger := log.WithFields(log.Fields{
		"run_id": summary.RunID,
		"game":   summary.Game,
		"mode":   summary.BetMode,
	})
	logger.Info("Starting optimization run")

	var run *models.OptimizationRun
	if s.uowFactory != nil {
		var err error
		run, err = s.recordStart(ctx, summary.RunID)
		if err != nil {
			return nil, err
		}
	}

	opts, err := s.execute(ctx, summary)
	if err != nil {
		s.fail(ctx, summary, run, err)
		return nil, err
	}

	best, _ := summary.Result.Best()
	summary.Interval = s.bestInterval(ctx, best, opts.Simulation)
	logger.WithFields(log.Fields{
		"score":       best.Solution.Score,
		"rtp":         best.RTP,
		"interval_lo": summary.Interval.Lo,
		"interval_hi": summary.Interval.Hi,
		"confidence":  IntervalConfidence,
	}).Info("Best solution selected")

	if run != nil {
		if err := s.persist(ctx, run, summary.Result); err != nil {
			s.fail(ctx, summary, run, err)
			return nil, err
		}
		summary.Stored = true
	}

	completed := events.RunCompletedEvent{
		RunID:     summary.RunID.String(),
		Game:      summary.Game,
		BetMode:   summary.BetMode,
		BestScore: best.Solution.Score,
		RTP:       best.RTP,
		Retained:  len(summary.Result.Solutions),
		Duration:  summary.Result.Duration,
	}
	s.emitter.Emit(ctx, completed)
	if s.notifier != nil {
		if err := s.notifier.NotifyRunCompleted(ctx, completed); err != nil {
			logger.WithError(err).Warn("Failed to send run notification")
		}
	}

	logger.WithField("duration", summary.Result.Duration).Info("Optimization run completed")
	return summary, nil
}

// execute loads the game library, runs the farm and writes its outputs
func (s *optimizationService) execute(ctx context.Context, summary *RunSummary) (farm.Options, error) {
	mode := s.setup.BetType

	mathConfig, err := library.LoadMathConfig(s.paths.MathConfig(), mode)
	if err != nil {
		return farm.Options{}, err
	}
	forces, err := library.LoadForceRecords(s.paths.ForceRecord(mode))
	if err != nil {
		return farm.Options{}, err
	}
	catalog, err := library.LoadLookupTable(s.paths.LookupTable(mode))
	if err != nil {
		return farm.Options{}, err
	}

	fences, err := fence.Build(mathConfig, catalog, forces)
	if err != nil {
		return farm.Options{}, fmt.Errorf("failed to build fences: %w", err)
	}

	opts := farm.NewOptions(s.setup, mathConfig.BetMode.Cost)
	result, err := farm.New(fences, mathConfig.Bias, catalog, opts, s.emitter).Run(ctx)
	if err != nil {
		return opts, err
	}
	if len(result.Top) == 0 {
		return opts, fmt.Errorf("run retained no full solutions")
	}
	summary.Result = result

	files, err := s.writer.Write(mode, result.Top)
	if err != nil {
		return opts, fmt.Errorf("failed to write reports: %w", err)
	}
	summary.Files = files
	return opts, nil
}

// bestInterval re-simulates the best table and returns the Clopper-Pearson
// interval of its survival at the longest test window
func (s *optimizationService) bestInterval(ctx context.Context, best farm.Ranked, p montecarlo.Params) montecarlo.Interval {
	seed := rand.Uint64()
	if s.setup.Seed != nil {
		seed = *s.setup.Seed
	}
	successes, err := montecarlo.WindowSuccesses(ctx, best.Table, p, rand.New(rand.NewPCG(seed, intervalStream)))
	if err != nil {
		log.WithError(err).Warn("Failed to compute survival interval")
		return montecarlo.Interval{}
	}
	return montecarlo.SurvivalInterval(successes[len(successes)-1], p.Trials, IntervalConfidence)
}

func (s *optimizationService) recordStart(ctx context.Context, runID uuid.UUID) (*models.OptimizationRun, error) {
	setup, err := setupDocument(s.setup)
	if err != nil {
		return nil, err
	}
	run := &models.OptimizationRun{
		RunID:     runID,
		GameName:  s.setup.GameName,
		BetMode:   s.setup.BetType,
		Setup:     setup,
		Status:    models.RunStatusRunning,
		StartedAt: time.Now(),
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.RunRepository().Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record run start: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return run, nil
}

// persist stores the ranked solutions and the published table of a run
func (s *optimizationService) persist(ctx context.Context, run *models.OptimizationRun, result *farm.Result) error {
	best, _ := result.Best()

	solutions := make([]*models.RankedSolution, len(result.Top))
	for i, r := range result.Top {
		solutions[i] = &models.RankedSolution{
			RunID:            run.ID,
			Rank:             r.Rank,
			Score:            r.Solution.Score,
			RTP:              r.RTP,
			CandidateIndexes: r.Solution.CandidateIndexes,
			Curve:            r.Curve,
		}
	}

	weights := make([]models.PublishedWeight, len(best.Outcomes))
	for i, o := range best.Outcomes {
		weights[i] = models.PublishedWeight{
			RunID:         run.ID,
			OutcomeID:     int64(o.ID),
			Weight:        int64(o.Weight),
			WinHundredths: report.Hundredths(o.Win),
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.RunRepository().Complete(ctx, run.ID, best.Solution.Score, time.Now()); err != nil {
		return err
	}
	if err := uow.RankedSolutionRepository().CreateBatch(ctx, solutions); err != nil {
		return err
	}
	stored, err := uow.PublishedWeightRepository().CreateBatch(ctx, weights)
	if err != nil {
		return err
	}

	uow.EventBus().Publish(events.RunPersistedEvent{
		RunID:     run.RunID.String(),
		Solutions: len(solutions),
		Weights:   int(stored),
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// fail records, emits and announces a failed run. Its own errors are logged.
func (s *optimizationService) fail(ctx context.Context, summary *RunSummary, run *models.OptimizationRun, cause error) {
	ctx = context.WithoutCancel(ctx)
	logger := log.WithField("run_id", summary.RunID)
	logger.WithError(cause).Error("Optimization run failed")

	if run != nil {
		if err := s.recordFailure(ctx, run.ID, cause); err != nil {
			logger.WithError(err).Warn("Failed to record run failure")
		}
	}

	failed := events.RunFailedEvent{
		RunID:   summary.RunID.String(),
		Game:    summary.Game,
		BetMode: summary.BetMode,
		Error:   cause.Error(),
	}
	s.emitter.Emit(ctx, failed)
	if s.notifier != nil {
		if err := s.notifier.NotifyRunFailed(ctx, failed); err != nil {
			logger.WithError(err).Warn("Failed to send failure notification")
		}
	}
}

func (s *optimizationService) recordFailure(ctx context.Context, id int64, cause error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.RunRepository().Fail(ctx, id, cause.Error(), time.Now()); err != nil {
		return err
	}
	return uow.Commit()
}

// setupDocument converts the setup into the JSON document stored with a run
func setupDocument(setup *config.SetupConfig) (map[string]interface{}, error) {
	data, err := json.Marshal(setup)
	if err != nil {
		return nil, fmt.Errorf("failed to encode setup: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode setup: %w", err)
	}
	return doc, nil
}
