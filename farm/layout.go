package farm

import (
	"math"
	"sort"

	"lutfarm/density"
	"lutfarm/models"

	"gonum.org/v1/gonum/floats"
)

// weightScale converts normalized probability mass into integer book weights
var weightScale = math.Pow(2, 50)

// Layout is the merged payout axis shared by every full solution of a bet
// mode. Single-value fences contribute fixed mass; each distribution fence
// contributes the weights of one chosen candidate.
type Layout struct {
	fences       []*models.Fence
	payouts      []float64
	index        map[models.PayoutKey]int
	fixed        []float64
	distribution []*models.Fence
	fencePayouts [][]float64
	positions    [][]int // merged index of each distribution fence payout
}

// NewLayout indexes the payouts of fences
func NewLayout(fences []*models.Fence) *Layout {
	l := &Layout{fences: fences, index: make(map[models.PayoutKey]int)}

	var keys []models.PayoutKey
	for _, f := range fences {
		for k := range f.Groups {
			if _, ok := l.index[k]; !ok {
				l.index[k] = -1
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	l.payouts = make([]float64, len(keys))
	for i, k := range keys {
		l.index[k] = i
		l.payouts[i] = k.Win()
	}

	l.fixed = make([]float64, len(keys))
	for _, f := range fences {
		if f.SingleValue {
			count := float64(f.OutcomeCount())
			for k, ids := range f.Groups {
				l.fixed[l.index[k]] += 1 / f.HitRate * float64(len(ids)) / count
			}
			continue
		}

		payouts := f.Payouts()
		pos := make([]int, len(payouts))
		for i, p := range payouts {
			pos[i] = l.index[models.KeyOf(p)]
		}
		l.distribution = append(l.distribution, f)
		l.fencePayouts = append(l.fencePayouts, payouts)
		l.positions = append(l.positions, pos)
	}

	return l
}

// Payouts returns the merged ascending payout axis
func (l *Layout) Payouts() []float64 {
	return l.payouts
}

// DistributionFences returns the fences that choose a candidate, in configuration order
func (l *Layout) DistributionFences() []*models.Fence {
	return l.distribution
}

// assembler turns candidate picks into weight tables. Each goroutine needs its own.
type assembler struct {
	layout       *Layout
	evals        []*density.Evaluator
	fenceWeights [][]float64
}

func (l *Layout) newAssembler() *assembler {
	a := &assembler{layout: l}
	for _, payouts := range l.fencePayouts {
		a.evals = append(a.evals, density.NewEvaluator(payouts))
		a.fenceWeights = append(a.fenceWeights, make([]float64, len(payouts)))
	}
	return a
}

// assemble writes the normalized merged table of one pick into out. Afterwards
// a.fenceWeights holds each chosen candidate's weights normalized to unit mass.
func (a *assembler) assemble(pens [][]models.Candidate, picks []int, out []float64) {
	l := a.layout
	copy(out, l.fixed)

	for i, f := range l.distribution {
		w := a.fenceWeights[i]
		a.evals[i].Evaluate(&pens[i][picks[i]], w)
		if mass := floats.Sum(w); mass > 0 {
			floats.Scale(1/mass, w)
		}
		for j, pos := range l.positions[i] {
			out[pos] += w[j] / f.HitRate
		}
	}

	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
}

// table materializes the weight table of one pick
func (a *assembler) table(pens [][]models.Candidate, picks []int) models.WeightTable {
	weights := make([]float64, len(a.layout.payouts))
	a.assemble(pens, picks, weights)
	return models.WeightTable{Payouts: a.layout.payouts, Weights: weights}
}

// OutcomeWeights assigns an integer weight to every catalog outcome, in id
// order. fenceWeights holds the unit-mass weights of each distribution
// fence's chosen candidate. Outcomes claimed by no fence get weight 0.
func (l *Layout) OutcomeWeights(catalog models.Catalog, fenceWeights [][]float64) []models.OutcomeRecord {
	weights := make(map[uint32]uint64, len(catalog))

	dist := 0
	for _, f := range l.fences {
		if f.SingleValue {
			w := integerWeight(1 / f.HitRate / float64(f.OutcomeCount()))
			for _, ids := range f.Groups {
				for _, id := range ids {
					weights[id] = w
				}
			}
			continue
		}

		fw := fenceWeights[dist]
		for j, p := range l.fencePayouts[dist] {
			ids := f.Groups[models.KeyOf(p)]
			w := integerWeight(fw[j] / f.HitRate / float64(len(ids)))
			for _, id := range ids {
				weights[id] = w
			}
		}
		dist++
	}

	out := make([]models.OutcomeRecord, 0, len(catalog))
	for _, id := range catalog.SortedIDs() {
		out = append(out, models.OutcomeRecord{ID: id, Weight: weights[id], Win: catalog[id].Win})
	}
	return out
}

func integerWeight(mass float64) uint64 {
	return uint64(math.Round(mass * weightScale))
}

// TableRTP is the payout expectation of an integer-weighted outcome table
func TableRTP(outcomes []models.OutcomeRecord) float64 {
	var total, mass float64
	for _, o := range outcomes {
		total += float64(o.Weight) * o.Win
		mass += float64(o.Weight)
	}
	if mass == 0 {
		return 0
	}
	return total / mass
}
