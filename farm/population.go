package farm

import (
	"context"
	"fmt"

	"lutfarm/breeder"
	"lutfarm/events"
	"lutfarm/fence"
	"lutfarm/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Populate builds the candidate pen of one distribution fence. The population
// target is split evenly across workers; their children are concatenated.
func (f *Farm) Populate(ctx context.Context, fenceIndex int, fc *models.Fence) ([]models.Candidate, error) {
	workers := max(f.opts.FenceWorkers, 1)
	perWorker := f.opts.PopulationTarget / workers
	bias := fence.BiasFor(f.bias, fc.Name)
	env := fence.NewEnvironment(fc, f.opts.Bet, perWorker, bias, f.opts.MaxKernels)

	log.WithFields(log.Fields{
		"fence":     fc.Name,
		"workers":   workers,
		"perWorker": perWorker,
		"avgWin":    env.AvgWin,
	}).Info("Creating fence population")
	f.emitter.Emit(ctx, events.FenceStartedEvent{Fence: fc.Name, Workers: workers, PopulationTarget: f.opts.PopulationTarget})

	results := make([][]models.Candidate, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			rng := f.opts.rng(streamPopulation, fenceIndex<<16|w)
			children, err := breeder.NewGenerator(env, rng, f.emitter, f.opts.Breeder, w).Run(gctx)
			if err != nil {
				return err
			}
			results[w] = children
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to populate fence %q: %w", fc.Name, err)
	}

	var pen []models.Candidate
	for _, children := range results {
		pen = append(pen, children...)
	}
	if len(pen) == 0 {
		return nil, fmt.Errorf("fence %q produced no candidates", fc.Name)
	}

	log.WithFields(log.Fields{"fence": fc.Name, "candidates": len(pen)}).Info("Fence population ready")
	f.emitter.Emit(ctx, events.PopulationReadyEvent{Fence: fc.Name, Size: len(pen)})
	return pen, nil
}
