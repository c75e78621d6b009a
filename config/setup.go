package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrInvalidSetup is returned when setup.toml values are inconsistent
var ErrInvalidSetup = errors.New("invalid setup")

// Retention policies for the full-solution search
const (
	RetentionGreedy = "greedy" // worker-local best-so-far
	RetentionTopK   = "topk"   // worker-local top K
)

// SetupConfig holds the parameters of a single optimization run
type SetupConfig struct {
	GameName                    string    `toml:"game_name"`
	BetType                     string    `toml:"bet_type"`
	NumShowPigs                 int       `toml:"num_show_pigs"`
	NumPigsPerFence             int       `toml:"num_pigs_per_fence"`
	ThreadsForFenceConstruction int       `toml:"threads_for_fence_construction"`
	ThreadsForShowConstruction  int       `toml:"threads_for_show_construction"`
	ScoreType                   string    `toml:"score_type"`
	TestSpins                   []int     `toml:"test_spins"`
	TestSpinsWeights            []float64 `toml:"test_spins_weights"`
	SimulationTrials            int       `toml:"simulation_trials"`
	Run1000Batch                bool      `toml:"run_1000_batch"`
	PathToGames                 string    `toml:"path_to_games"`
	MinMeanToMedian             float64   `toml:"min_mean_to_median"`
	MaxMeanToMedian             float64   `toml:"max_mean_to_median"`
	PMBRTP                      float64   `toml:"pmb_rtp"`
	MaxTrialDist                int       `toml:"max_trial_dist"`

	// Search behaviour
	Retention               string  `toml:"retention"`
	TopK                    int     `toml:"top_k"`
	ReportCount             int     `toml:"report_count"`
	MaxGenerationIterations int     `toml:"max_generation_iterations"`
	MaxBreedingAttempts     int     `toml:"max_breeding_attempts"`
	Seed                    *uint64 `toml:"seed"`
	Chart                   bool    `toml:"chart"`
}

// LoadSetup reads and validates a setup file
func LoadSetup(path string) (*SetupConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read setup file %s: %w", path, err)
	}
	return ParseSetup(data)
}

// ParseSetup decodes setup TOML, applies defaults and validates the result
func ParseSetup(data []byte) (*SetupConfig, error) {
	var setup SetupConfig
	if _, err := toml.Decode(string(data), &setup); err != nil {
		return nil, fmt.Errorf("failed to parse setup file: %w", err)
	}
	setup.applyDefaults()
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	return &setup, nil
}

func (s *SetupConfig) applyDefaults() {
	if s.MaxTrialDist == 0 {
		s.MaxTrialDist = 15
	}
	if s.Retention == "" {
		s.Retention = RetentionGreedy
	}
	if s.TopK == 0 {
		s.TopK = 10
	}
	if s.ReportCount == 0 {
		s.ReportCount = 10
	}
	if s.MaxBreedingAttempts == 0 {
		s.MaxBreedingAttempts = 100000
	}
	if s.ScoreType == "" {
		s.ScoreType = "rtp"
	}
}

// Validate checks the setup for values the farm cannot run with
func (s *SetupConfig) Validate() error {
	switch {
	case s.GameName == "":
		return fmt.Errorf("%w: game_name is required", ErrInvalidSetup)
	case s.BetType == "":
		return fmt.Errorf("%w: bet_type is required", ErrInvalidSetup)
	case s.ThreadsForFenceConstruction < 1 || s.ThreadsForShowConstruction < 1:
		return fmt.Errorf("%w: thread counts must be at least 1", ErrInvalidSetup)
	case s.NumPigsPerFence < s.ThreadsForFenceConstruction:
		return fmt.Errorf("%w: num_pigs_per_fence (%d) must be at least threads_for_fence_construction (%d)",
			ErrInvalidSetup, s.NumPigsPerFence, s.ThreadsForFenceConstruction)
	case s.NumShowPigs < s.ThreadsForShowConstruction:
		return fmt.Errorf("%w: num_show_pigs (%d) must be at least threads_for_show_construction (%d)",
			ErrInvalidSetup, s.NumShowPigs, s.ThreadsForShowConstruction)
	case len(s.TestSpins) == 0:
		return fmt.Errorf("%w: test_spins must not be empty", ErrInvalidSetup)
	case len(s.TestSpins) != len(s.TestSpinsWeights):
		return fmt.Errorf("%w: test_spins and test_spins_weights differ in length (%d vs %d)",
			ErrInvalidSetup, len(s.TestSpins), len(s.TestSpinsWeights))
	case s.SimulationTrials < 1:
		return fmt.Errorf("%w: simulation_trials must be at least 1", ErrInvalidSetup)
	case s.MaxTrialDist < 5:
		return fmt.Errorf("%w: max_trial_dist must be at least 5", ErrInvalidSetup)
	case s.Retention != RetentionGreedy && s.Retention != RetentionTopK:
		return fmt.Errorf("%w: unknown retention %q", ErrInvalidSetup, s.Retention)
	case s.ReportCount < 1:
		return fmt.Errorf("%w: report_count must be at least 1", ErrInvalidSetup)
	}

	prev := 0
	for _, spins := range s.TestSpins {
		if spins <= prev {
			return fmt.Errorf("%w: test_spins must be positive and ascending", ErrInvalidSetup)
		}
		prev = spins
	}
	return nil
}

// MaxTestSpins returns the longest configured spin window
func (s *SetupConfig) MaxTestSpins() int {
	return s.TestSpins[len(s.TestSpins)-1]
}
