package montecarlo

import (
	"context"
	"math/rand/v2"

	"lutfarm/models"

	"golang.org/x/sync/errgroup"
)

// Curve computes the survival rate for every spin count from 1 to
// p.MaxSpins(). Each spin count resamples p.Trials fresh sequences on its own
// random stream derived from seed; spin counts run in parallel on up to
// workers goroutines.
func Curve(ctx context.Context, table models.WeightTable, p Params, workers int, seed uint64) ([]float64, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := ValidateWeights(table); err != nil {
		return nil, err
	}

	curve := make([]float64, p.MaxSpins())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i := range curve {
		spins := i + 1
		g.Go(func() error {
			rate, err := survivalAt(ctx, table, p, spins, rand.New(rand.NewPCG(seed, uint64(spins))))
			if err != nil {
				return err
			}
			curve[i] = rate
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return curve, nil
}

func survivalAt(ctx context.Context, table models.WeightTable, p Params, spins int, rng *rand.Rand) (float64, error) {
	sampler, err := NewSampler(table, rng)
	if err != nil {
		return 0, err
	}

	var success int
	for trial := 0; trial < p.Trials; trial++ {
		if trial%ctxCheckTrials == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		var bank float64
		for s := 0; s < spins; s++ {
			bank += sampler.Spin()
		}
		if bank/(float64(spins)*p.Bet) >= p.PMB {
			success++
		}
	}
	return float64(success) / float64(p.Trials), nil
}
