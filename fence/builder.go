package fence

import (
	"fmt"

	"lutfarm/models"

	log "github.com/sirupsen/logrus"
)

// Build resolves every fence of a bet mode, attaches its dresses and
// partitions the catalog among the fences in configuration order.
func Build(cfg *models.MathConfig, catalog models.Catalog, forces []models.ForceResult) ([]*models.Fence, error) {
	names := make([]string, len(cfg.Fences))
	targets := make([]Targets, len(cfg.Fences))
	for i, spec := range cfg.Fences {
		names[i] = spec.Name
		targets[i] = ResolveTargets(spec, cfg.BetMode.Cost)
	}
	if err := CompleteTargets(names, targets); err != nil {
		return nil, err
	}

	pool := catalog.Clone()
	fences := make([]*models.Fence, 0, len(cfg.Fences))
	for i, spec := range cfg.Fences {
		f := &models.Fence{
			Name:            spec.Name,
			HitRate:         targets[i].HitRate,
			RTP:             targets[i].RTP,
			AvgWin:          targets[i].AvgWin,
			Identity:        spec.Identity,
			SingleValue:     spec.Identity.PinsSingleValue(),
			MinMeanToMedian: defaultMinMeanToMedian,
			MaxMeanToMedian: defaultMaxMeanToMedian,
		}
		if spec.MinMeanToMedian != nil {
			f.MinMeanToMedian = *spec.MinMeanToMedian
		}
		if spec.MaxMeanToMedian != nil {
			f.MaxMeanToMedian = *spec.MaxMeanToMedian
		}
		for _, d := range cfg.Dresses {
			if d.Fence == f.Name {
				f.Dresses = append(f.Dresses, NewDress(d))
			}
		}

		if f.SingleValue && !f.Identity.Opposite && !catalog.HasPayout(f.Identity.WinRangeStart) {
			return nil, fmt.Errorf("%w: fence %q pins payout %v", ErrPayoutNotInCatalog, f.Name, f.Identity.WinRangeStart)
		}

		Partition(f, pool, forces)
		if len(f.Groups) == 0 {
			return nil, fmt.Errorf("fence %q matched no outcomes", f.Name)
		}

		log.WithFields(log.Fields{
			"fence":       f.Name,
			"hitRate":     f.HitRate,
			"rtp":         f.RTP,
			"avgWin":      f.AvgWin,
			"singleValue": f.SingleValue,
			"payouts":     len(f.Groups),
			"outcomes":    f.OutcomeCount(),
			"dresses":     len(f.Dresses),
		}).Info("Fence constructed")

		fences = append(fences, f)
	}

	if len(pool) > 0 {
		log.WithField("unclaimed", len(pool)).Warn("Outcomes not claimed by any fence will carry zero weight")
	}

	return fences, nil
}

// BiasFor returns the bias rule of a fence, if any
func BiasFor(rules []models.BiasRule, fenceName string) *models.BiasRule {
	for i := range rules {
		if rules[i].Criteria == fenceName {
			return &rules[i]
		}
	}
	return nil
}

// NewEnvironment builds the generation context of a distribution fence.
// populationTarget is the per-worker candidate count.
func NewEnvironment(f *models.Fence, betAmount float64, populationTarget int, bias *models.BiasRule, maxKernels int) models.Environment {
	payouts := f.Payouts()
	indexes := make([]int, len(f.Dresses))
	for i := range f.Dresses {
		indexes[i] = i
	}
	return models.Environment{
		FenceName:        f.Name,
		BetAmount:        betAmount,
		Payouts:          payouts,
		RTP:              f.RTP,
		Arena:            f.Dresses,
		DressIndexes:     indexes,
		PopulationTarget: populationTarget,
		MinWin:           payouts[0],
		MaxWin:           payouts[len(payouts)-1],
		AvgWin:           f.AvgWin * betAmount,
		MinMeanToMedian:  f.MinMeanToMedian,
		MaxMeanToMedian:  f.MaxMeanToMedian,
		Bias:             bias,
		MaxKernels:       maxKernels,
	}
}
