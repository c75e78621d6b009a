package montecarlo

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"lutfarm/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidWeights is returned when a weight table cannot back a categorical distribution
var ErrInvalidWeights = errors.New("invalid categorical weights")

// Sampler draws payouts from a weight table. It wraps a random source and is
// not safe for concurrent use.
type Sampler struct {
	payouts []float64
	dist    distuv.Categorical
}

// NewSampler validates table and builds a categorical sampler over it
func NewSampler(table models.WeightTable, src rand.Source) (*Sampler, error) {
	if err := ValidateWeights(table); err != nil {
		return nil, err
	}
	return &Sampler{
		payouts: table.Payouts,
		dist:    distuv.NewCategorical(table.Weights, src),
	}, nil
}

// ValidateWeights rejects empty, mismatched, negative, non-finite and zero-mass tables
func ValidateWeights(table models.WeightTable) error {
	if len(table.Payouts) == 0 {
		return fmt.Errorf("%w: empty table", ErrInvalidWeights)
	}
	if len(table.Payouts) != len(table.Weights) {
		return fmt.Errorf("%w: %d payouts but %d weights", ErrInvalidWeights, len(table.Payouts), len(table.Weights))
	}
	for i, w := range table.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("%w: weight %v at payout %v", ErrInvalidWeights, w, table.Payouts[i])
		}
	}
	if floats.Sum(table.Weights) <= 0 {
		return fmt.Errorf("%w: total mass is zero", ErrInvalidWeights)
	}
	return nil
}

// Spin draws one payout
func (s *Sampler) Spin() float64 {
	return s.payouts[int(s.dist.Rand())]
}
