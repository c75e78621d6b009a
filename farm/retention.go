package farm

import (
	"fmt"
	"sort"

	"lutfarm/config"
	"lutfarm/models"
)

// retainer decides which proposals a search worker keeps. Zero scores are never kept.
type retainer interface {
	offer(s models.FullSolution) bool
	kept() []models.FullSolution
}

func newRetainer(policy string, k int) (retainer, error) {
	switch policy {
	case config.RetentionGreedy, "":
		return &greedy{}, nil
	case config.RetentionTopK:
		if k < 1 {
			return nil, fmt.Errorf("top-k retention needs k >= 1, got %d", k)
		}
		return &topK{k: k}, nil
	default:
		return nil, fmt.Errorf("unknown retention policy %q", policy)
	}
}

// greedy keeps every proposal that ties or beats the worker's best so far
type greedy struct {
	best      float64
	solutions []models.FullSolution
}

func (g *greedy) offer(s models.FullSolution) bool {
	if s.Score == 0 || s.Score < g.best {
		return false
	}
	g.best = s.Score
	g.solutions = append(g.solutions, s)
	return true
}

func (g *greedy) kept() []models.FullSolution {
	return g.solutions
}

// topK keeps the k best proposals, ordered by score descending
type topK struct {
	k         int
	solutions []models.FullSolution
}

func (t *topK) offer(s models.FullSolution) bool {
	if s.Score == 0 {
		return false
	}
	if len(t.solutions) == t.k && s.Score <= t.solutions[t.k-1].Score {
		return false
	}

	i := sort.Search(len(t.solutions), func(i int) bool { return t.solutions[i].Score < s.Score })
	if len(t.solutions) < t.k {
		t.solutions = append(t.solutions, models.FullSolution{})
	}
	copy(t.solutions[i+1:], t.solutions[i:])
	t.solutions[i] = s
	return true
}

func (t *topK) kept() []models.FullSolution {
	return t.solutions
}
