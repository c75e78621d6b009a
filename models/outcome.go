package models

import (
	"math"
	"sort"
)

// OutcomeRecord is a single book from the lookup table
type OutcomeRecord struct {
	ID     uint32
	Weight uint64
	Win    float64 // payout in currency units
}

// PayoutKey is a payout quantized to hundredths. Payout maps are keyed on it
// so that equal payouts always hash the same.
type PayoutKey int64

// KeyOf quantizes a payout to its key
func KeyOf(win float64) PayoutKey {
	return PayoutKey(math.Round(win * 100))
}

// Win returns the payout the key stands for
func (k PayoutKey) Win() float64 {
	return float64(k) / 100
}

// Catalog is the full outcome catalog indexed by book id
type Catalog map[uint32]OutcomeRecord

// SortedIDs returns the catalog ids in ascending order
func (c Catalog) SortedIDs() []uint32 {
	ids := make([]uint32, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// HasPayout reports whether any record pays exactly win
func (c Catalog) HasPayout(win float64) bool {
	key := KeyOf(win)
	for _, rec := range c {
		if KeyOf(rec.Win) == key {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy that can be consumed independently
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for id, rec := range c {
		out[id] = rec
	}
	return out
}
