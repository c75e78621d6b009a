package fence

import (
	"errors"
	"fmt"

	"lutfarm/models"
)

var (
	// ErrInvalidHitRates is returned when fence hit-rates cannot form a distribution
	ErrInvalidHitRates = errors.New("invalid fence hit-rates")
	// ErrPayoutNotInCatalog is returned when a single-value fence pins a payout no book pays
	ErrPayoutNotInCatalog = errors.New("payout not found in lookup table")
)

const (
	defaultMinMeanToMedian = 0
	defaultMaxMeanToMedian = 10
	unknown                = -1.0
)

// Targets are the resolved hit-rate, RTP and average win of a fence. A
// HitRate of -1 marks the fence that receives the complement probability.
type Targets struct {
	HitRate float64
	RTP     float64
	AvgWin  float64
}

// Known reports whether the hit-rate is resolved
func (t Targets) Known() bool {
	return t.HitRate > 0
}

// ResolveTargets back-solves the missing one of hit-rate, RTP and average win:
// avgWin = hitRate*rtp, rtp = avgWin/hitRate, hitRate = avgWin/(rtp*bet).
func ResolveTargets(spec models.FenceSpec, betAmount float64) Targets {
	t := Targets{HitRate: unknown, RTP: unknown, AvgWin: unknown}
	if spec.RTP != nil {
		t.RTP = *spec.RTP
	}
	if spec.AvgWin != nil {
		t.AvgWin = *spec.AvgWin
	}
	if spec.HitRateUnknown {
		return t
	}
	if spec.HitRate != nil {
		t.HitRate = *spec.HitRate
	}

	if t.HitRate > 0 && t.RTP > 0 {
		t.AvgWin = t.HitRate * t.RTP
	}
	if t.HitRate > 0 && t.AvgWin > 0 {
		t.RTP = t.AvgWin / t.HitRate
	}
	if t.HitRate < 0 && t.RTP > 0 && t.AvgWin > 0 {
		t.HitRate = t.AvgWin / t.RTP / betAmount
	}
	return t
}

// CompleteTargets assigns the complement probability to the single fence with
// an unknown hit-rate. The sum of 1/hitRate over known fences must stay below
// one when such a fence exists and may not exceed one otherwise.
func CompleteTargets(names []string, targets []Targets) error {
	var totalProb float64
	unknownIndex := -1
	for i, t := range targets {
		if t.Known() {
			totalProb += 1 / t.HitRate
			continue
		}
		if unknownIndex >= 0 {
			return fmt.Errorf("%w: fences %q and %q both have unknown hit-rates",
				ErrInvalidHitRates, names[unknownIndex], names[i])
		}
		unknownIndex = i
	}

	if unknownIndex < 0 {
		if totalProb > 1+1e-9 {
			return fmt.Errorf("%w: hit probabilities sum to %.6f", ErrInvalidHitRates, totalProb)
		}
		return nil
	}

	if totalProb >= 1 {
		return fmt.Errorf("%w: hit probabilities sum to %.6f leaving nothing for %q",
			ErrInvalidHitRates, totalProb, names[unknownIndex])
	}
	t := &targets[unknownIndex]
	if t.RTP < 0 {
		return fmt.Errorf("%w: fence %q needs an rtp to derive its hit-rate", ErrInvalidHitRates, names[unknownIndex])
	}
	t.HitRate = 1 / (1 - totalProb)
	t.AvgWin = t.HitRate * t.RTP
	return nil
}
