package farm

import (
	"context"
	"fmt"
	"time"

	"lutfarm/events"
	"lutfarm/models"
	"lutfarm/montecarlo"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Farm runs the population, search and reconstruction phases for one bet mode
type Farm struct {
	fences  []*models.Fence
	bias    []models.BiasRule
	catalog models.Catalog
	opts    Options
	emitter events.Emitter
}

// Ranked is one reconstructed top solution
type Ranked struct {
	Rank     int // 1-based
	Solution models.FullSolution
	Table    models.WeightTable
	Curve    []float64
	Outcomes []models.OutcomeRecord // integer weights in id order
	RTP      float64                // of the integer table
}

// Result is the outcome of a farm run
type Result struct {
	Fences    []*models.Fence
	Solutions []models.FullSolution // every retained solution, ranked
	Top       []Ranked
	Duration  time.Duration
}

// Best returns the top-ranked solution, if any
func (r *Result) Best() (Ranked, bool) {
	if len(r.Top) == 0 {
		return Ranked{}, false
	}
	return r.Top[0], true
}

// New creates a farm over fences built from catalog
func New(fences []*models.Fence, bias []models.BiasRule, catalog models.Catalog, opts Options, emitter events.Emitter) *Farm {
	if emitter == nil {
		emitter = events.Discard
	}
	return &Farm{
		fences:  fences,
		bias:    bias,
		catalog: catalog,
		opts:    opts,
		emitter: emitter,
	}
}

// Run executes every phase in order
func (f *Farm) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	layout := NewLayout(f.fences)

	pens := make([][]models.Candidate, 0, len(layout.distribution))
	for i, fc := range layout.distribution {
		pen, err := f.Populate(ctx, i, fc)
		if err != nil {
			return nil, err
		}
		pens = append(pens, pen)
	}

	log.WithField("proposals", f.opts.Proposals).Info("Searching full solutions")
	solutions, err := f.Search(ctx, layout, pens)
	if err != nil {
		return nil, err
	}
	log.WithField("retained", len(solutions)).Info("Full solutions ranked")

	top, err := f.Reconstruct(ctx, layout, pens, solutions)
	if err != nil {
		return nil, err
	}

	return &Result{
		Fences:    f.fences,
		Solutions: solutions,
		Top:       top,
		Duration:  time.Since(start),
	}, nil
}

// Reconstruct rebuilds the weight tables of the best ReportCount solutions,
// runs the full-curve scorer on each and assigns integer outcome weights.
func (f *Farm) Reconstruct(ctx context.Context, layout *Layout, pens [][]models.Candidate, ranked []models.FullSolution) ([]Ranked, error) {
	n := min(f.opts.ReportCount, len(ranked))
	if n < f.opts.ReportCount {
		log.WithFields(log.Fields{"wanted": f.opts.ReportCount, "available": n}).Warn("Fewer retained solutions than requested reports")
	}

	top := make([]Ranked, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.opts.SearchWorkers, 1))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			log.WithField("rank", i+1).Info("Reconstructing solution")
			asm := layout.newAssembler()
			table := asm.table(pens, ranked[i].CandidateIndexes)
			outcomes := layout.OutcomeWeights(f.catalog, asm.fenceWeights)

			seed := f.opts.rng(streamCurve, i).Uint64()
			curve, err := montecarlo.Curve(gctx, table, f.opts.Simulation, f.opts.SearchWorkers, seed)
			if err != nil {
				return fmt.Errorf("failed to compute survival curve of solution %d: %w", i+1, err)
			}

			top[i] = Ranked{
				Rank:     i + 1,
				Solution: ranked[i],
				Table:    table,
				Curve:    curve,
				Outcomes: outcomes,
				RTP:      TableRTP(outcomes),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return top, nil
}
