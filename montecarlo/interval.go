package montecarlo

import "gonum.org/v1/gonum/stat/distuv"

// Interval is a two-sided confidence interval
type Interval struct {
	Lo float64
	Hi float64
}

// SurvivalInterval returns the Clopper-Pearson interval of a survival rate
// observed as successes out of trials.
func SurvivalInterval(successes, trials int, confidence float64) Interval {
	if trials <= 0 {
		return Interval{Lo: 0, Hi: 1}
	}
	alpha := 1 - confidence

	var ci Interval
	if successes <= 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(successes), Beta: float64(trials - successes + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if successes >= trials {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(successes + 1), Beta: float64(trials - successes)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return ci
}
