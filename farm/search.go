package farm

import (
	"context"
	"fmt"
	"sort"

	"lutfarm/events"
	"lutfarm/models"
	"lutfarm/montecarlo"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Search proposes full solutions on every search worker and returns the
// retained ones ranked by score descending.
func (f *Farm) Search(ctx context.Context, layout *Layout, pens [][]models.Candidate) ([]models.FullSolution, error) {
	workers := max(f.opts.SearchWorkers, 1)
	perWorker := f.opts.Proposals / workers

	results := make([][]models.FullSolution, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			kept, err := f.searchWorker(gctx, w, perWorker, layout, pens)
			if err != nil {
				return err
			}
			results[w] = kept
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("full solution search failed: %w", err)
	}

	var all []models.FullSolution
	for _, kept := range results {
		all = append(all, kept...)
	}
	Rank(all)
	return all, nil
}

func (f *Farm) searchWorker(ctx context.Context, worker, proposals int, layout *Layout, pens [][]models.Candidate) ([]models.FullSolution, error) {
	keep, err := newRetainer(f.opts.Retention, f.opts.TopK)
	if err != nil {
		return nil, err
	}

	rng := f.opts.rng(streamSearch, worker)
	asm := layout.newAssembler()
	weights := make([]float64, len(layout.payouts))
	table := models.WeightTable{Payouts: layout.payouts, Weights: weights}
	half := proposals / 2

	logger := log.WithField("worker", worker)
	logger.Debug("Creating full solutions")

	for p := 0; p < proposals; p++ {
		picks := make([]int, len(pens))
		for i, pen := range pens {
			picks[i] = rng.IntN(len(pen))
		}
		asm.assemble(pens, picks, weights)

		score, err := montecarlo.Score(ctx, table, f.opts.Simulation, rng)
		if err != nil {
			return nil, err
		}
		keep.offer(models.FullSolution{CandidateIndexes: picks, Score: score})

		if half > 0 && (p+1)%half == 0 {
			logger.WithFields(log.Fields{
				"done":     p + 1,
				"total":    proposals,
				"retained": len(keep.kept()),
			}).Infof("Search %.0f%% done", 100*float64(p+1)/float64(proposals))
			f.emitter.Emit(ctx, events.SearchProgressEvent{
				Worker:   worker,
				Done:     p + 1,
				Total:    proposals,
				Retained: len(keep.kept()),
			})
		}
	}

	return keep.kept(), nil
}

// Rank orders solutions by score descending; ties keep their input order
func Rank(solutions []models.FullSolution) {
	sort.SliceStable(solutions, func(i, j int) bool {
		return solutions[i].Score > solutions[j].Score
	})
}
