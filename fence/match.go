package fence

import (
	"sort"

	"lutfarm/models"
)

// Partition moves the outcomes a fence claims from pool into its groups. Each
// outcome is claimed at most once across fences sharing the same pool.
func Partition(f *models.Fence, pool models.Catalog, forces []models.ForceResult) {
	if f.Groups == nil {
		f.Groups = make(map[models.PayoutKey][]uint32)
	}

	switch {
	case f.SingleValue:
		target := models.KeyOf(f.Identity.WinRangeStart)
		for _, rec := range pool {
			if (models.KeyOf(rec.Win) == target) != f.Identity.Opposite {
				claim(f, pool, rec)
			}
		}
	case f.Identity.AbsorbsRemainder():
		for _, rec := range pool {
			claim(f, pool, rec)
		}
	default:
		for _, option := range forces {
			satisfied := matchesSearch(f.Identity.Search, option.Search)
			if f.Identity.Opposite {
				satisfied = !satisfied
			}
			if !satisfied {
				continue
			}
			for _, id := range option.BookIDs {
				if rec, ok := pool[id]; ok {
					claim(f, pool, rec)
				}
			}
		}
	}

	for key := range f.Groups {
		ids := f.Groups[key]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
}

func claim(f *models.Fence, pool models.Catalog, rec models.OutcomeRecord) {
	key := models.KeyOf(rec.Win)
	f.Groups[key] = append(f.Groups[key], rec.ID)
	delete(pool, rec.ID)
}

// matchesSearch reports whether every constrained key appears in the option.
// Keys valued "None" or empty are unconstrained.
func matchesSearch(want, have []models.SearchKey) bool {
	for _, w := range want {
		if w.Value == "None" || w.Value == "" {
			continue
		}
		found := false
		for _, h := range have {
			if h.Name == w.Name && h.Value == w.Value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
