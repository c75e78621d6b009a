package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lutfarm/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMathConfig = `{
  "game_id": "0_0_lines",
  "bet_modes": [
    {"bet_mode": "base", "cost": 1.0, "rtp": 0.97, "max_win": 5000.0},
    {"bet_mode": "bonus", "cost": 100.0, "rtp": 0.97, "max_win": 5000.0}
  ],
  "fences": [
    {"bet_mode": "base", "fences": [
      {"name": "wincap", "hr": "200000", "rtp": "0.01", "avg_win": null,
       "identity_condition": {"search": [], "opposite": false, "win_range_start": 5000.0, "win_range_end": 5000.0}},
      {"name": "freegame", "hr": 150, "rtp": "0.37", "avg_win": null,
       "identity_condition": {"search": [{"name": "symbol", "value": "scatter"}], "opposite": false, "win_range_start": -1, "win_range_end": -1},
       "min_mean_to_median": "4", "max_mean_to_median": "8"},
      {"name": "basegame", "hr": "x", "rtp": "0.59", "avg_win": null,
       "identity_condition": {"search": [], "opposite": false, "win_range_start": -1, "win_range_end": -1}}
    ]}
  ],
  "dresses": [
    {"bet_mode": "base", "dresses": [
      {"fence": "freegame", "scale_factor": "5r", "identity_condition_win_range": [10.0, 50.0], "prob": 0.5},
      {"fence": "basegame", "scale_factor": "1.5", "identity_condition_win_range": null, "prob": null}
    ]}
  ],
  "bias": [
    {"bet_mode": "base", "bias": [{"criteria": "freegame", "range": [20.0, 40.0], "prob": 0.25}]}
  ]
}`

func TestParseMathConfig(t *testing.T) {
	t.Run("selects bet mode", func(t *testing.T) {
		cfg, err := ParseMathConfig([]byte(sampleMathConfig), "base")
		require.NoError(t, err)

		assert.Equal(t, "0_0_lines", cfg.GameID)
		assert.Equal(t, 1.0, cfg.BetMode.Cost)
		assert.Equal(t, 0.97, cfg.BetMode.RTP)
		require.Len(t, cfg.Fences, 3)
		require.Len(t, cfg.Dresses, 2)
		require.Len(t, cfg.Bias, 1)
	})

	t.Run("string, number and null fields", func(t *testing.T) {
		cfg, err := ParseMathConfig([]byte(sampleMathConfig), "base")
		require.NoError(t, err)

		wincap := cfg.Fences[0]
		require.NotNil(t, wincap.HitRate)
		assert.Equal(t, 200000.0, *wincap.HitRate)
		assert.Nil(t, wincap.AvgWin)
		assert.True(t, wincap.Identity.PinsSingleValue())

		freegame := cfg.Fences[1]
		require.NotNil(t, freegame.HitRate)
		assert.Equal(t, 150.0, *freegame.HitRate)
		require.NotNil(t, freegame.MinMeanToMedian)
		assert.Equal(t, 4.0, *freegame.MinMeanToMedian)
		assert.Equal(t, []models.SearchKey{{Name: "symbol", Value: "scatter"}}, freegame.Identity.Search)

		basegame := cfg.Fences[2]
		assert.True(t, basegame.HitRateUnknown)
		assert.Nil(t, basegame.HitRate)
		assert.True(t, basegame.Identity.AbsorbsRemainder())
	})

	t.Run("dresses and bias", func(t *testing.T) {
		cfg, err := ParseMathConfig([]byte(sampleMathConfig), "base")
		require.NoError(t, err)

		assert.Equal(t, "5r", cfg.Dresses[0].ScaleFactor)
		require.NotNil(t, cfg.Dresses[0].WinRange)
		assert.Equal(t, [2]float64{10, 50}, *cfg.Dresses[0].WinRange)
		assert.Nil(t, cfg.Dresses[1].WinRange)
		assert.Nil(t, cfg.Dresses[1].Prob)

		assert.Equal(t, models.BiasRule{Criteria: "freegame", Low: 20, High: 40, Prob: 0.25}, cfg.Bias[0])
	})

	t.Run("missing bet mode", func(t *testing.T) {
		_, err := ParseMathConfig([]byte(sampleMathConfig), "bonus")
		assert.ErrorIs(t, err, ErrBetModeNotFound)

		_, err = ParseMathConfig([]byte(sampleMathConfig), "super")
		assert.ErrorIs(t, err, ErrBetModeNotFound)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseMathConfig([]byte(`{"bet_modes": [`), "base")
		assert.ErrorIs(t, err, ErrMalformedConfig)
	})

	t.Run("non numeric string", func(t *testing.T) {
		broken := strings.Replace(sampleMathConfig, `"rtp": "0.37"`, `"rtp": "abc"`, 1)
		_, err := ParseMathConfig([]byte(broken), "base")
		assert.ErrorIs(t, err, ErrMalformedConfig)
	})
}

func TestParseForceRecords(t *testing.T) {
	data := `[
	  {"search": [{"name": "symbol", "value": "scatter"}, {"name": "kind", "value": 3}], "timesTriggered": 12, "bookIds": [1, 4, 9]},
	  {"search": [], "timesTriggered": 1, "bookIds": [2]}
	]`

	results, err := ParseForceRecords([]byte(data))
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, []models.SearchKey{{Name: "symbol", Value: "scatter"}, {Name: "kind", Value: "3"}}, results[0].Search)
	assert.Equal(t, uint32(12), results[0].TimesTriggered)
	assert.Equal(t, []uint32{1, 4, 9}, results[0].BookIDs)
	assert.Empty(t, results[1].Search)

	_, err = ParseForceRecords([]byte(`{"search": []}`))
	assert.ErrorIs(t, err, ErrMalformedConfig)
}

func TestReadLookupTable(t *testing.T) {
	t.Run("parses rows", func(t *testing.T) {
		catalog, err := ReadLookupTable(strings.NewReader("1,1,0\n2,1,150\n3,5,1000\n"))
		require.NoError(t, err)
		require.Len(t, catalog, 3)

		assert.Equal(t, models.OutcomeRecord{ID: 2, Weight: 1, Win: 1.5}, catalog[2])
		assert.Equal(t, 10.0, catalog[3].Win)
		assert.Equal(t, []uint32{1, 2, 3}, catalog.SortedIDs())
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := ReadLookupTable(strings.NewReader("1,1,0\n1,1,150\n"))
		assert.ErrorIs(t, err, ErrMalformedLookup)
	})

	t.Run("rejects bad columns", func(t *testing.T) {
		_, err := ReadLookupTable(strings.NewReader("1,1\n"))
		assert.ErrorIs(t, err, ErrMalformedLookup)

		_, err = ReadLookupTable(strings.NewReader("1,x,100\n"))
		assert.ErrorIs(t, err, ErrMalformedLookup)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ReadLookupTable(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrMalformedLookup)
	})
}

func TestPathsAndLoaders(t *testing.T) {
	root := t.TempDir()
	paths := NewPaths(root, "0_0_lines")

	assert.Equal(t, filepath.Join(root, "0_0_lines", "library", "configs", "math_config.json"), paths.MathConfig())
	assert.Equal(t, filepath.Join(root, "0_0_lines", "library", "optimization_files", "base_0_3.csv"), paths.Report("base", 3))
	assert.Equal(t, filepath.Join(root, "0_0_lines", "library", "publish_files", "lookUpTable_base_0.csv"), paths.Published("base"))

	writeFile := func(path, content string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	writeFile(paths.MathConfig(), sampleMathConfig)
	writeFile(paths.ForceRecord("base"), `[{"search": [], "timesTriggered": 1, "bookIds": [1]}]`)
	writeFile(paths.LookupTable("base"), "1,1,0\n2,1,500\n")

	cfg, err := LoadMathConfig(paths.MathConfig(), "base")
	require.NoError(t, err)
	assert.Len(t, cfg.Fences, 3)

	forces, err := LoadForceRecords(paths.ForceRecord("base"))
	require.NoError(t, err)
	assert.Len(t, forces, 1)

	catalog, err := LoadLookupTable(paths.LookupTable("base"))
	require.NoError(t, err)
	assert.Len(t, catalog, 2)

	_, err = LoadLookupTable(paths.LookupTable("bonus"))
	assert.Error(t, err)
}
