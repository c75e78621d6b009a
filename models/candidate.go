package models

// Kernel is one bell-shaped component of a candidate density
type Kernel struct {
	Amp  float64
	Mean float64
	Std  float64
}

// Region multiplies the contribution of the listed kernels for payouts in [Low, High]
type Region struct {
	Low     float64
	High    float64
	Scale   float64
	Kernels []int // ascending
}

// Jitter is a seeded multiplicative perturbation of the listed kernels
type Jitter struct {
	Seed     uint64
	Strength float64
	Kernels  []int // ascending
}

// Candidate is one generated mixture density for a distribution fence
type Candidate struct {
	Kernels []Kernel
	Regions []Region
	Jitters []Jitter
	RTP     float64
	Mass    float64
}

// Environment is the read-only generation context of one distribution fence
type Environment struct {
	FenceName        string
	BetAmount        float64
	Payouts          []float64 // ascending
	RTP              float64
	Arena            []Dress // the owning fence's dresses
	DressIndexes     []int
	PopulationTarget int
	MinWin           float64
	MaxWin           float64
	AvgWin           float64
	MinMeanToMedian  float64
	MaxMeanToMedian  float64
	Bias             *BiasRule
	MaxKernels       int
}

// FullSolution is one pick of candidates across all distribution fences
type FullSolution struct {
	CandidateIndexes []int
	Score            float64
}

// WeightTable maps each payout to its probability mass
type WeightTable struct {
	Payouts []float64 // ascending
	Weights []float64
}

// RTP returns the table's expected payout divided by its mass
func (t WeightTable) RTP() float64 {
	var total, mass float64
	for i, w := range t.Weights {
		total += w * t.Payouts[i]
		mass += w
	}
	if mass == 0 {
		return 0
	}
	return total / mass
}
