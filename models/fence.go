package models

import "sort"

// SearchKey is a single named tag constraint
type SearchKey struct {
	Name  string
	Value string
}

// ForceResult is one grouped search result from a force record file
type ForceResult struct {
	Search         []SearchKey
	TimesTriggered uint32
	BookIDs        []uint32
}

// IdentityCondition decides which outcomes a fence claims
type IdentityCondition struct {
	Search        []SearchKey
	Opposite      bool
	WinRangeStart float64
	WinRangeEnd   float64
}

// PinsSingleValue reports whether the condition names exactly one payout
func (c IdentityCondition) PinsSingleValue() bool {
	return c.WinRangeStart > -1 && c.WinRangeEnd == c.WinRangeStart
}

// AbsorbsRemainder reports whether the condition claims every unclaimed outcome
func (c IdentityCondition) AbsorbsRemainder() bool {
	return len(c.Search) == 0 && c.WinRangeStart == -1 && !c.Opposite
}

// Dress is a scoped payout-range multiplier belonging to one fence
type Dress struct {
	Fence       string
	Scale       float64
	RandomScale bool // re-rolled as Scale*U[0,1) per candidate
	Low         float64
	High        float64
	Prob        float64
}

// BiasRule overrides kernel mean placement for one fence
type BiasRule struct {
	Criteria string
	Low      float64
	High     float64
	Prob     float64
}

// Fence is a named slice of outcome space with its own hit-rate and RTP targets
type Fence struct {
	Name            string
	HitRate         float64
	RTP             float64
	AvgWin          float64
	Identity        IdentityCondition
	SingleValue     bool
	Dresses         []Dress
	Groups          map[PayoutKey][]uint32
	MinMeanToMedian float64
	MaxMeanToMedian float64
}

// Payouts returns the fence's distinct payouts in ascending order
func (f *Fence) Payouts() []float64 {
	keys := make([]PayoutKey, 0, len(f.Groups))
	for k := range f.Groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	wins := make([]float64, len(keys))
	for i, k := range keys {
		wins[i] = k.Win()
	}
	return wins
}

// OutcomeCount returns the number of book ids claimed by the fence
func (f *Fence) OutcomeCount() int {
	n := 0
	for _, ids := range f.Groups {
		n += len(ids)
	}
	return n
}
