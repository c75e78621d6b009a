package farm

import (
	"math/rand/v2"

	"lutfarm/breeder"
	"lutfarm/config"
	"lutfarm/montecarlo"
)

// Options configures one farm run
type Options struct {
	Bet              float64
	PopulationTarget int // candidates per distribution fence, across all workers
	FenceWorkers     int
	SearchWorkers    int
	Proposals        int // full solutions proposed across all search workers
	Retention        string
	TopK             int
	ReportCount      int
	MaxKernels       int
	Breeder          breeder.Options
	Simulation       montecarlo.Params
	// Seed makes exploration reproducible; nil seeds from the runtime.
	Seed *uint64
}

// NewOptions maps a setup file onto farm options for a bet mode costing bet
func NewOptions(setup *config.SetupConfig, bet float64) Options {
	return Options{
		Bet:              bet,
		PopulationTarget: setup.NumPigsPerFence,
		FenceWorkers:     setup.ThreadsForFenceConstruction,
		SearchWorkers:    setup.ThreadsForShowConstruction,
		Proposals:        setup.NumShowPigs,
		Retention:        setup.Retention,
		TopK:             setup.TopK,
		ReportCount:      setup.ReportCount,
		MaxKernels:       setup.MaxTrialDist,
		Breeder: breeder.Options{
			MaxIterations:       setup.MaxGenerationIterations,
			MaxBreedingAttempts: setup.MaxBreedingAttempts,
		},
		Simulation: montecarlo.Params{
			Bet:              bet,
			PMB:              setup.PMBRTP,
			TestSpins:        setup.TestSpins,
			TestSpinsWeights: setup.TestSpinsWeights,
			Trials:           setup.SimulationTrials,
		},
		Seed: setup.Seed,
	}
}

// Random stream families. Each task gets its own stream inside a family.
const (
	streamPopulation uint64 = iota + 1
	streamSearch
	streamCurve
)

// rng returns the exploration source of one task
func (o Options) rng(family uint64, task int) *rand.Rand {
	if o.Seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*o.Seed, family<<32|uint64(task)))
}
