package breeder

import (
	"context"

	"lutfarm/density"
	"lutfarm/events"
	"lutfarm/models"

	log "github.com/sirupsen/logrus"
)

// Breed produces len(pos)*len(neg) children. Each child comes from a fresh
// random parent pair, redrawn until the child's average-to-median ratio is
// acceptable.
func (g *Generator) Breed(ctx context.Context, pos, neg []models.Candidate) ([]models.Candidate, error) {
	if len(pos) == 0 || len(neg) == 0 {
		return nil, nil
	}

	total := len(pos) * len(neg)
	children := make([]models.Candidate, 0, total)
	weights := make([]float64, len(g.env.Payouts))

	logger := log.WithFields(log.Fields{"fence": g.env.FenceName, "worker": g.worker})
	logger.Debug("Combining criteria distributions")

	for len(children) < total {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		accepted := false
		for attempt := 1; !accepted; attempt++ {
			if attempt > g.opts.MaxBreedingAttempts {
				return nil, &ConvergenceError{
					Fence:      g.env.FenceName,
					Stage:      StageBreeding,
					Iterations: attempt - 1,
					Hint:       "mean to median bound not met",
				}
			}

			p := &pos[g.rng.IntN(len(pos))]
			n := &neg[g.rng.IntN(len(neg))]
			child := Combine(p, n, g.env.AvgWin)

			g.eval.Evaluate(&child, weights)
			median := density.Median(g.env.Payouts, weights)
			accepted = AcceptsMeanToMedian(g.env.AvgWin, median, g.env.MinMeanToMedian, g.env.MaxMeanToMedian)

			if attempt%progressInterval == 0 {
				ratio := g.env.AvgWin / median
				logger.WithFields(log.Fields{
					"attempts": attempt,
					"ratio":    ratio,
					"min":      g.env.MinMeanToMedian,
					"max":      g.env.MaxMeanToMedian,
				}).Info("Mean to median")
				g.emitter.Emit(ctx, events.MeanToMedianProgressEvent{
					Fence:    g.env.FenceName,
					Worker:   g.worker,
					Attempts: attempt,
					Ratio:    ratio,
					Min:      g.env.MinMeanToMedian,
					Max:      g.env.MaxMeanToMedian,
				})
			}

			if accepted {
				children = append(children, child)
			}
		}
	}

	return children, nil
}

// AcceptsMeanToMedian rejects a candidate only when its median is positive and
// avgWin/median falls at or outside either bound.
func AcceptsMeanToMedian(avgWin, median, minRatio, maxRatio float64) bool {
	if median <= 0 {
		return true
	}
	ratio := avgWin / median
	return ratio > minRatio && ratio < maxRatio
}
