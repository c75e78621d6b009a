package report

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lutfarm/farm"
	"lutfarm/library"
	"lutfarm/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRanked(rank int) farm.Ranked {
	return farm.Ranked{
		Rank:     rank,
		Solution: models.FullSolution{CandidateIndexes: []int{3}, Score: 0.75},
		Table: models.WeightTable{
			Payouts: []float64{0, 0.5, 2, 12},
			Weights: []float64{0.5, 0.25, 0.2, 0.05},
		},
		Curve: []float64{0.5, 0.75, 0.875},
		Outcomes: []models.OutcomeRecord{
			{ID: 1, Weight: 4, Win: 0},
			{ID: 2, Weight: 2, Win: 0.5},
			{ID: 3, Weight: 2, Win: 2},
			{ID: 4, Weight: 0, Win: 12.345},
		},
		RTP: 0.625,
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleRanked(2)))

	want := strings.Join([]string{
		"Name,Pig2",
		"Score,0.75",
		"LockedUpRTP,",
		"Rtp,0.625",
		"Win Ranges",
		"0,0.1,1 in 2.000",
		"0.1,1,1 in 4.000",
		"1,2,1 in never",
		"2,3,1 in 5.000",
		"3,5,1 in never",
		"5,10,1 in never",
		"10,20,1 in 20.000",
		"20,50,1 in never",
		"50,100,1 in never",
		"100,200,1 in never",
		"200,500,1 in never",
		"500,1000,1 in never",
		"1000,2000,1 in never",
		"2000,3000,1 in never",
		"3000,5001,1 in never",
		"Distribution",
		"1,4,0.00",
		"2,2,0.50",
		"3,2,2.00",
		"4,0,12.35",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestBandMass(t *testing.T) {
	mass := BandMass(models.WeightTable{
		Payouts: []float64{0.1, 1, 5000, 5001},
		Weights: []float64{1, 2, 3, 4},
	})
	require.Len(t, mass, len(WinBands))
	assert.Equal(t, 1.0, mass[1], "bands are closed below")
	assert.Equal(t, 2.0, mass[2])
	assert.Equal(t, 3.0, mass[len(WinBands)-1], "5001 falls outside every band")
	assert.Zero(t, mass[0])
}

func TestWritePublished(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePublished(&buf, sampleRanked(1).Outcomes))
	assert.Equal(t, "1,4,0\n2,2,50\n3,2,200\n4,0,1235\n", buf.String())
}

func TestHundredths(t *testing.T) {
	assert.Equal(t, int64(29), Hundredths(0.29))
	assert.Equal(t, int64(101), Hundredths(1.005))
	assert.Equal(t, int64(500000), Hundredths(5000))
	assert.Equal(t, int64(0), Hundredths(0))
}

func TestWriteCurve(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCurve(&buf, []float64{0.5, 0.75, 1}))
	assert.Equal(t, "0.5, 0.75, 1", buf.String())
}

func TestWriteCurveChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCurveChart(&buf, "demo", []float64{0.2, 0.5, 0.9}, DefaultChartStyle))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultChartStyle.Width, img.Bounds().Dx())
	assert.Equal(t, DefaultChartStyle.Height, img.Bounds().Dy())

	assert.Error(t, WriteCurveChart(&bytes.Buffer{}, "empty", nil, DefaultChartStyle))
}

func TestReadDistribution(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleRanked(1)))

	outcomes, err := ReadDistribution(&buf)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)
	assert.Equal(t, models.OutcomeRecord{ID: 4, Weight: 0, Win: 12.35}, outcomes[3])

	_, err = ReadDistribution(strings.NewReader("Name,Pig1\nScore,1\n"))
	assert.ErrorIs(t, err, ErrNoDistribution)

	_, err = ReadDistribution(strings.NewReader("Distribution\n1,2\n"))
	assert.Error(t, err)
}

func TestWriter_Write(t *testing.T) {
	paths := library.NewPaths(t.TempDir(), "demo_game")
	top := []farm.Ranked{sampleRanked(1), sampleRanked(2)}
	top[1].Outcomes = []models.OutcomeRecord{{ID: 1, Weight: 9, Win: 0}}

	files, err := NewWriter(paths, true).Write("base", top)
	require.NoError(t, err)

	assert.Equal(t, []string{paths.Report("base", 1), paths.Report("base", 2)}, files.Reports)
	assert.Equal(t, paths.Published("base"), files.Published)
	require.Len(t, files.Charts, 2)
	for _, f := range append(append(files.Reports, files.Curves...), files.Charts...) {
		assert.FileExists(t, f)
	}

	published, err := os.ReadFile(files.Published)
	require.NoError(t, err)
	assert.Equal(t, "1,4,0\n2,2,50\n3,2,200\n4,0,1235\n", string(published))

	curve, err := os.ReadFile(paths.Curve("base", 2))
	require.NoError(t, err)
	assert.Equal(t, "0.5, 0.75, 0.875", string(curve))

	leftovers, err := filepath.Glob(filepath.Join(paths.OptimizationDir(), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	t.Run("swap publishes another report", func(t *testing.T) {
		n, err := Swap(paths.Report("base", 2), paths.Published("base"))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		published, err := os.ReadFile(paths.Published("base"))
		require.NoError(t, err)
		assert.Equal(t, "1,9,0\n", string(published))
	})

	t.Run("nothing to write", func(t *testing.T) {
		_, err := NewWriter(paths, false).Write("base", nil)
		assert.Error(t, err)
	})
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	sum, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)

	hashes, err := HashFiles([]string{path})
	require.NoError(t, err)
	assert.Equal(t, []FileHash{{Path: path, Hash: sum}}, hashes)

	_, err = HashFiles([]string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}
