package breeder

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"lutfarm/density"
	"lutfarm/events"
	"lutfarm/fence"
	"lutfarm/models"

	log "github.com/sirupsen/logrus"
)

const (
	minKernels       = 5
	spreadStart      = 70.0
	spreadFloor      = 20.0
	spreadCeiling    = 400.0
	maxJitterSeed    = 1_000_000_000
	hintFactor       = 5
	defaultIterCap   = 200
	progressInterval = 500
	ctxCheckInterval = 256
)

// Options bounds the rejection-sampling loops
type Options struct {
	// MaxIterations caps ancestor generation; 0 means 200 × PopulationTarget.
	MaxIterations int
	// MaxBreedingAttempts caps the parent draws for a single child.
	MaxBreedingAttempts int
}

// Generator builds one worker's share of a fence's candidate population
type Generator struct {
	env     models.Environment
	rng     *rand.Rand
	eval    *density.Evaluator
	emitter events.Emitter
	opts    Options
	worker  int

	spread     float64
	spreadDown bool
	extra      []models.Dress
}

// NewGenerator creates a generator. rng is owned by the generator from here on.
func NewGenerator(env models.Environment, rng *rand.Rand, emitter events.Emitter, opts Options, worker int) *Generator {
	if emitter == nil {
		emitter = events.Discard
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = defaultIterCap * max(env.PopulationTarget, 1)
	}
	if opts.MaxBreedingAttempts <= 0 {
		opts.MaxBreedingAttempts = 100000
	}
	if env.MaxKernels < minKernels {
		env.MaxKernels = minKernels
	}
	return &Generator{
		env:     env,
		rng:     rng,
		eval:    density.NewEvaluator(env.Payouts),
		emitter: emitter,
		opts:    opts,
		worker:  worker,
		spread:  spreadStart,
	}
}

// PoolSize is the size of each of the above/below ancestor pools
func PoolSize(populationTarget int) int {
	return int(math.Ceil(math.Sqrt(float64(populationTarget))))
}

// Run generates ancestors and breeds them into PoolSize² children that match
// the fence's average win and satisfy its mean-to-median bound.
func (g *Generator) Run(ctx context.Context) ([]models.Candidate, error) {
	if !(g.env.MinWin < g.env.AvgWin && g.env.AvgWin < g.env.MaxWin) {
		return nil, fmt.Errorf("%w: fence %q wants %v within [%v, %v]",
			ErrUnreachableTarget, g.env.FenceName, g.env.AvgWin, g.env.MinWin, g.env.MaxWin)
	}

	pos, neg, err := g.Ancestors(ctx)
	if err != nil {
		return nil, err
	}
	return g.Breed(ctx, pos, neg)
}

// Ancestors draws random candidates until both the above-target and the
// below-target pools are full. Candidates that would overfill a pool are dropped.
func (g *Generator) Ancestors(ctx context.Context) (pos, neg []models.Candidate, err error) {
	target := PoolSize(g.env.PopulationTarget)
	pos = make([]models.Candidate, 0, target)
	neg = make([]models.Candidate, 0, target)
	n := float64(max(g.env.PopulationTarget, 1))
	step := 1 / math.Pow(n, 0.9)
	hinted := false
	extraAdded := false

	logger := log.WithFields(log.Fields{"fence": g.env.FenceName, "worker": g.worker})
	logger.Debug("Creating initial random distributions")

	for iter := 1; len(pos) < target || len(neg) < target; iter++ {
		if iter%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		if iter > g.opts.MaxIterations {
			return nil, nil, &ConvergenceError{
				Fence:      g.env.FenceName,
				Stage:      StageGeneration,
				Iterations: iter - 1,
				Hint:       direction(len(pos), len(neg)),
			}
		}

		g.anneal(step)
		c := g.draw(iter)
		c.RTP, c.Mass = g.eval.Summarize(&c)

		switch {
		case c.RTP > g.env.AvgWin && len(pos) < target:
			pos = append(pos, c)
		case c.RTP < g.env.AvgWin && len(neg) < target:
			neg = append(neg, c)
		}

		if !extraAdded && len(pos) >= target {
			extraAdded = true
			g.extra = append(g.extra,
				models.Dress{Scale: 150, Low: g.env.MinWin, High: g.env.AvgWin / 2, Prob: 1},
				models.Dress{Scale: 0.0001, Low: g.env.AvgWin / 2, High: g.env.MaxWin, Prob: 1},
			)
		}
		if !extraAdded && len(neg) >= target {
			extraAdded = true
			g.extra = append(g.extra,
				models.Dress{Scale: 50, Low: g.env.AvgWin * 2, High: g.env.MaxWin, Prob: 1},
				models.Dress{Scale: 0.0001, Low: g.env.MinWin, High: g.env.AvgWin, Prob: 1},
			)
		}

		if !hinted && iter > hintFactor*g.env.PopulationTarget {
			hinted = true
			hint := direction(len(pos), len(neg))
			logger.WithField("iterations", iter).Warn(hint)
			g.emitter.Emit(ctx, events.ConvergenceHintEvent{
				Fence:      g.env.FenceName,
				Worker:     g.worker,
				Iterations: iter,
				Direction:  hint,
			})
		}
	}

	return pos, neg, nil
}

func direction(pos, neg int) string {
	if neg > pos {
		return "RTP too low"
	}
	return "RTP too high"
}

// anneal moves the kernel spread multiplicatively between 20 and 400,
// reversing direction whenever it saturates.
func (g *Generator) anneal(step float64) {
	if g.spreadDown {
		g.spread = math.Min(g.spread*(1-step), spreadCeiling)
	} else {
		g.spread = math.Min(g.spread*(1+step), spreadCeiling)
	}
	if math.Abs(g.spread-spreadCeiling) < 1e-5 {
		g.spreadDown = true
	}
	g.spread = math.Max(g.spread, spreadFloor)
	if math.Abs(g.spread-spreadFloor) < 1e-5 {
		g.spreadDown = false
	}
}

// draw builds one random candidate. Even iterations place kernels around the
// average win; odd iterations spread them from the minimum payout upward.
func (g *Generator) draw(iter int) models.Candidate {
	env := &g.env
	count := minKernels + g.rng.IntN(env.MaxKernels-minKernels+1)
	kernels := make([]models.Kernel, count)

	for i := range kernels {
		v := g.rng.Float64()
		biased := env.Bias != nil && env.Bias.Prob > 0 && v <= env.Bias.Prob

		if iter%2 == 0 {
			amp := float64(1 + g.rng.IntN(14))
			var mean float64
			if biased {
				mean = g.uniform(env.Bias.Low, env.Bias.High)
			} else {
				mean = env.AvgWin * (1 - 0.25*v) * float64(5+g.rng.IntN(11)) / 10
			}
			std := g.rng.Float64() * 30 * g.rng.Float64() * g.spread
			kernels[i] = models.Kernel{Amp: amp, Mean: mean, Std: std}
			continue
		}

		spreadDraw := g.rng.Float64()
		var mean float64
		if biased {
			mean = g.uniform(env.Bias.Low, env.Bias.High)
		} else {
			mean = math.Max(v*env.AvgWin+0.01*spreadDraw*env.MaxWin, env.MinWin)
		}
		std := g.rng.Float64() * g.spread
		amp := g.rng.Float64()
		kernels[i] = models.Kernel{Amp: amp, Mean: mean, Std: std}
	}

	c := models.Candidate{Kernels: kernels}
	for _, idx := range env.DressIndexes {
		d := env.Arena[idx]
		if g.rng.Float64() < d.Prob {
			c.Regions = append(c.Regions, g.region(d, count))
		}
	}
	for _, d := range g.extra {
		c.Regions = append(c.Regions, g.region(d, count))
	}

	c.Jitters = []models.Jitter{{
		Seed:     g.rng.Uint64N(maxJitterSeed + 1),
		Strength: g.rng.Float64(),
		Kernels:  allKernels(count),
	}}
	return c
}

func (g *Generator) region(d models.Dress, kernels int) models.Region {
	return models.Region{
		Low:     d.Low,
		High:    d.High,
		Scale:   fence.DrawScale(d, g.rng.Float64),
		Kernels: allKernels(kernels),
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}
