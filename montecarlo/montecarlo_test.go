package montecarlo

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"lutfarm/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coinTable() models.WeightTable {
	return models.WeightTable{Payouts: []float64{0, 10}, Weights: []float64{0.5, 0.5}}
}

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name  string
		table models.WeightTable
	}{
		{"empty", models.WeightTable{}},
		{"length mismatch", models.WeightTable{Payouts: []float64{1, 2}, Weights: []float64{1}}},
		{"negative", models.WeightTable{Payouts: []float64{1, 2}, Weights: []float64{1, -1}}},
		{"nan", models.WeightTable{Payouts: []float64{1, 2}, Weights: []float64{1, math.NaN()}}},
		{"zero mass", models.WeightTable{Payouts: []float64{1, 2}, Weights: []float64{0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateWeights(tt.table), ErrInvalidWeights)
			_, err := NewSampler(tt.table, rand.NewPCG(1, 1))
			assert.ErrorIs(t, err, ErrInvalidWeights)
		})
	}

	assert.NoError(t, ValidateWeights(coinTable()))
}

func TestSampler_Spin(t *testing.T) {
	table := models.WeightTable{Payouts: []float64{1, 2, 3}, Weights: []float64{0, 3, 1}}
	s, err := NewSampler(table, rand.NewPCG(7, 7))
	require.NoError(t, err)

	counts := map[float64]int{}
	for i := 0; i < 20000; i++ {
		counts[s.Spin()]++
	}
	assert.Zero(t, counts[1])
	assert.InDelta(t, 0.75, float64(counts[2])/20000, 0.02)
	assert.InDelta(t, 0.25, float64(counts[3])/20000, 0.02)
}

func TestScore(t *testing.T) {
	ctx := context.Background()

	t.Run("two-outcome survival", func(t *testing.T) {
		// Survival needs at least one 10 in 10 spins: 1 - 0.5^10.
		p := Params{Bet: 1, PMB: 0.5, TestSpins: []int{10}, TestSpinsWeights: []float64{1}, Trials: 1000}
		score, err := Score(ctx, coinTable(), p, rand.New(rand.NewPCG(1, 2)))
		require.NoError(t, err)
		assert.InDelta(t, 1-math.Pow(0.5, 10), score, 0.01)
	})

	t.Run("per-window weights", func(t *testing.T) {
		table := models.WeightTable{Payouts: []float64{1}, Weights: []float64{1}}
		p := Params{Bet: 1, PMB: 1, TestSpins: []int{5, 10}, TestSpinsWeights: []float64{0.25, 2}, Trials: 10}
		score, err := Score(ctx, table, p, rand.New(rand.NewPCG(1, 2)))
		require.NoError(t, err)
		assert.InDelta(t, 2.25, score, 1e-12)

		p.PMB = 1.01
		score, err = Score(ctx, table, p, rand.New(rand.NewPCG(1, 2)))
		require.NoError(t, err)
		assert.Zero(t, score)
	})

	t.Run("bet scales the threshold", func(t *testing.T) {
		table := models.WeightTable{Payouts: []float64{2}, Weights: []float64{1}}
		p := Params{Bet: 2, PMB: 1, TestSpins: []int{3}, TestSpinsWeights: []float64{1}, Trials: 5}
		score, err := Score(ctx, table, p, rand.New(rand.NewPCG(1, 2)))
		require.NoError(t, err)
		assert.Equal(t, 1.0, score)
	})

	t.Run("monotone in pmb", func(t *testing.T) {
		table := models.WeightTable{Payouts: []float64{0, 0.5, 2, 20}, Weights: []float64{0.6, 0.25, 0.13, 0.02}}
		prev := math.Inf(1)
		for _, pmb := range []float64{0, 0.2, 0.5, 0.8, 1, 1.5, 3} {
			p := Params{Bet: 1, PMB: pmb, TestSpins: []int{10, 50, 100}, TestSpinsWeights: []float64{0.2, 0.3, 0.5}, Trials: 400}
			score, err := Score(ctx, table, p, rand.New(rand.NewPCG(42, 42)))
			require.NoError(t, err)
			assert.LessOrEqual(t, score, prev, "pmb %v", pmb)
			prev = score
		}
	})

	t.Run("invalid params", func(t *testing.T) {
		bad := []Params{
			{Bet: 1, TestSpins: nil, Trials: 1},
			{Bet: 1, TestSpins: []int{1, 2}, TestSpinsWeights: []float64{1}, Trials: 1},
			{Bet: 1, TestSpins: []int{5, 2}, TestSpinsWeights: []float64{1, 1}, Trials: 1},
			{Bet: 1, TestSpins: []int{5}, TestSpinsWeights: []float64{1}, Trials: 0},
			{Bet: 0, TestSpins: []int{5}, TestSpinsWeights: []float64{1}, Trials: 1},
		}
		for _, p := range bad {
			_, err := Score(ctx, coinTable(), p, rand.New(rand.NewPCG(1, 2)))
			assert.Error(t, err)
		}
	})

	t.Run("invalid weights", func(t *testing.T) {
		p := Params{Bet: 1, PMB: 1, TestSpins: []int{5}, TestSpinsWeights: []float64{1}, Trials: 5}
		table := models.WeightTable{Payouts: []float64{1}, Weights: []float64{0}}
		_, err := Score(ctx, table, p, rand.New(rand.NewPCG(1, 2)))
		assert.ErrorIs(t, err, ErrInvalidWeights)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		p := Params{Bet: 1, PMB: 1, TestSpins: []int{5}, TestSpinsWeights: []float64{1}, Trials: 5}
		_, err := Score(ctx, coinTable(), p, rand.New(rand.NewPCG(1, 2)))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWindowSuccesses(t *testing.T) {
	p := Params{Bet: 1, PMB: 0.5, TestSpins: []int{1, 2, 10}, TestSpinsWeights: []float64{1, 1, 1}, Trials: 4000}
	successes, err := WindowSuccesses(context.Background(), coinTable(), p, rand.New(rand.NewPCG(3, 3)))
	require.NoError(t, err)
	require.Len(t, successes, 3)

	assert.InDelta(t, 0.5, float64(successes[0])/4000, 0.03)
	assert.InDelta(t, 0.75, float64(successes[1])/4000, 0.03)
	assert.LessOrEqual(t, successes[0], successes[1])
	assert.LessOrEqual(t, successes[1], successes[2])
}

func TestCurve(t *testing.T) {
	ctx := context.Background()
	p := Params{Bet: 1, PMB: 0.5, TestSpins: []int{3, 8}, TestSpinsWeights: []float64{0.5, 0.5}, Trials: 3000}

	curve, err := Curve(ctx, coinTable(), p, 4, 99)
	require.NoError(t, err)
	require.Len(t, curve, 8)
	for i, rate := range curve {
		assert.InDelta(t, 1-math.Pow(0.5, float64(i+1)), rate, 0.03, "spin %d", i+1)
	}

	again, err := Curve(ctx, coinTable(), p, 2, 99)
	require.NoError(t, err)
	assert.Equal(t, curve, again, "same seed reproduces the curve regardless of worker count")

	_, err = Curve(ctx, models.WeightTable{Payouts: []float64{1}, Weights: []float64{-1}}, p, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestSurvivalInterval(t *testing.T) {
	t.Run("interior", func(t *testing.T) {
		ci := SurvivalInterval(50, 100, 0.95)
		assert.InDelta(t, 0.3983, ci.Lo, 1e-3)
		assert.InDelta(t, 0.6017, ci.Hi, 1e-3)
	})

	t.Run("edges", func(t *testing.T) {
		none := SurvivalInterval(0, 20, 0.95)
		assert.Zero(t, none.Lo)
		assert.Less(t, none.Hi, 0.2)

		all := SurvivalInterval(20, 20, 0.95)
		assert.Equal(t, 1.0, all.Hi)
		assert.Greater(t, all.Lo, 0.8)
	})

	t.Run("no trials", func(t *testing.T) {
		assert.Equal(t, Interval{Lo: 0, Hi: 1}, SurvivalInterval(0, 0, 0.95))
	})
}
