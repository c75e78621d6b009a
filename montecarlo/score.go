package montecarlo

import (
	"context"
	"fmt"
	"math/rand/v2"

	"lutfarm/models"
)

const ctxCheckTrials = 64

// Params describes a survival simulation
type Params struct {
	Bet              float64
	PMB              float64 // minimum return per unit bet counted as survival
	TestSpins        []int   // ascending
	TestSpinsWeights []float64
	Trials           int
}

// MaxSpins is the longest spin sequence a simulation needs
func (p Params) MaxSpins() int {
	if len(p.TestSpins) == 0 {
		return 0
	}
	return p.TestSpins[len(p.TestSpins)-1]
}

func (p Params) validate() error {
	switch {
	case len(p.TestSpins) == 0:
		return fmt.Errorf("no test spins")
	case len(p.TestSpins) != len(p.TestSpinsWeights):
		return fmt.Errorf("%d test spins but %d weights", len(p.TestSpins), len(p.TestSpinsWeights))
	case p.Trials < 1:
		return fmt.Errorf("trials must be positive, got %d", p.Trials)
	case p.Bet <= 0:
		return fmt.Errorf("bet must be positive, got %v", p.Bet)
	}
	prev := 0
	for _, s := range p.TestSpins {
		if s <= prev {
			return fmt.Errorf("test spins must be positive and ascending, got %v", p.TestSpins)
		}
		prev = s
	}
	return nil
}

// Score is the windowed fitness of a weight table: the survival rate at each
// test spin count, weighted by its test spin weight and summed.
func Score(ctx context.Context, table models.WeightTable, p Params, rng *rand.Rand) (float64, error) {
	successes, err := WindowSuccesses(ctx, table, p, rng)
	if err != nil {
		return 0, err
	}
	var score float64
	for i, s := range successes {
		score += float64(s) / float64(p.Trials) * p.TestSpinsWeights[i]
	}
	return score, nil
}

// WindowSuccesses runs p.Trials spin sequences of p.MaxSpins() spins and
// counts, per test spin count t, the trials whose first t spins returned at
// least p.PMB per unit bet.
func WindowSuccesses(ctx context.Context, table models.WeightTable, p Params, rng *rand.Rand) ([]int, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	sampler, err := NewSampler(table, rng)
	if err != nil {
		return nil, err
	}

	successes := make([]int, len(p.TestSpins))
	maxSpins := p.MaxSpins()

	for trial := 0; trial < p.Trials; trial++ {
		if trial%ctxCheckTrials == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		var bank float64
		next := 0
		for spin := 1; spin <= maxSpins; spin++ {
			bank += sampler.Spin()
			if spin == p.TestSpins[next] {
				if bank/(float64(spin)*p.Bet) >= p.PMB {
					successes[next]++
				}
				next++
			}
		}
	}

	return successes, nil
}
