package density

import (
	"math"
	"sort"

	"lutfarm/models"

	"gonum.org/v1/gonum/floats"
)

// KernelScale is the peak multiplier of every kernel's bell term
const KernelScale = 20000.0

const minStd = 1e-9

// Evaluator converts candidates into per-payout weights over a fixed payout
// axis. It keeps jitter scratch buffers and must not be shared between goroutines.
type Evaluator struct {
	payouts []float64
	jitter  [][]float64
}

// NewEvaluator creates an evaluator for ascending payouts
func NewEvaluator(payouts []float64) *Evaluator {
	return &Evaluator{payouts: payouts}
}

// Payouts returns the evaluator's payout axis
func (e *Evaluator) Payouts() []float64 {
	return e.payouts
}

// KernelValue is the contribution of one kernel at a payout
func KernelValue(k models.Kernel, payout float64) float64 {
	std := math.Max(k.Std, minStd)
	z := (payout - k.Mean) / std
	return k.Amp * (1 + KernelScale/(std*math.Sqrt(2*math.Pi))*math.Exp(-0.5*z*z))
}

func (e *Evaluator) prepareJitter(c *models.Candidate) {
	for len(e.jitter) < len(c.Jitters) {
		e.jitter = append(e.jitter, make([]float64, len(e.payouts)))
	}
	for i, j := range c.Jitters {
		JitterFactors(j.Seed, j.Strength, e.jitter[i])
	}
}

// weightAt sums every kernel's contribution at payout index i, applying the
// regions and jitters gated to that kernel.
func (e *Evaluator) weightAt(c *models.Candidate, i int) float64 {
	payout := e.payouts[i]
	var total float64
	for k, kernel := range c.Kernels {
		w := KernelValue(kernel, payout)
		for _, r := range c.Regions {
			if payout >= r.Low && payout <= r.High && contains(r.Kernels, k) {
				w *= r.Scale
			}
		}
		for j, jit := range c.Jitters {
			if contains(jit.Kernels, k) {
				w *= e.jitter[j][i]
			}
		}
		total += w
	}
	return total
}

// Evaluate writes one weight per payout into out, which must have the length
// of the payout axis. The result is a pure function of the candidate.
func (e *Evaluator) Evaluate(c *models.Candidate, out []float64) {
	e.prepareJitter(c)
	for i := range e.payouts {
		out[i] = e.weightAt(c, i)
	}
}

// Summarize returns the candidate's realized RTP (mass-weighted mean payout)
// and total mass without materializing the weights.
func (e *Evaluator) Summarize(c *models.Candidate) (rtp, mass float64) {
	e.prepareJitter(c)
	var totalWin float64
	for i, payout := range e.payouts {
		w := e.weightAt(c, i)
		mass += w
		totalWin += w * payout
	}
	if mass == 0 {
		return 0, 0
	}
	return totalWin / mass, mass
}

// Weights evaluates a candidate into a freshly allocated slice
func Weights(payouts []float64, c *models.Candidate) []float64 {
	out := make([]float64, len(payouts))
	NewEvaluator(payouts).Evaluate(c, out)
	return out
}

// Median returns the first payout at which the cumulative share of mass
// reaches one half.
func Median(payouts, weights []float64) float64 {
	total := floats.Sum(weights)
	if total <= 0 {
		return 0
	}
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if cumulative/total >= 0.5 {
			return payouts[i]
		}
	}
	return payouts[len(payouts)-1]
}

// RTP returns the mass-weighted mean payout of a weight vector
func RTP(payouts, weights []float64) float64 {
	total := floats.Sum(weights)
	if total == 0 {
		return 0
	}
	return floats.Dot(payouts, weights) / total
}

func contains(sorted []int, v int) bool {
	i := sort.SearchInts(sorted, v)
	return i < len(sorted) && sorted[i] == v
}
