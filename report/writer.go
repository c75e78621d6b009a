package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lutfarm/farm"
	"lutfarm/library"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Files lists everything a Writer produced
type Files struct {
	Reports   []string
	Curves    []string
	Charts    []string
	Published string
}

// Writer writes run outputs into a game library
type Writer struct {
	paths library.Paths
	chart bool
}

// NewWriter creates a writer; chart enables survival chart images
func NewWriter(paths library.Paths, chart bool) *Writer {
	return &Writer{paths: paths, chart: chart}
}

// Write produces the report and curve of every ranked solution and publishes
// the lookup table of the best one.
func (w *Writer) Write(mode string, top []farm.Ranked) (*Files, error) {
	if len(top) == 0 {
		return nil, fmt.Errorf("no ranked solutions to write")
	}
	for _, dir := range []string{w.paths.OptimizationDir(), w.paths.PublishDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	files := &Files{
		Reports: make([]string, len(top)),
		Curves:  make([]string, len(top)),
	}
	if w.chart {
		files.Charts = make([]string, len(top))
	}

	var g errgroup.Group
	for i, r := range top {
		g.Go(func() error {
			files.Reports[i] = w.paths.Report(mode, r.Rank)
			if err := writeFile(files.Reports[i], func(f io.Writer) error { return WriteReport(f, r) }); err != nil {
				return err
			}

			files.Curves[i] = w.paths.Curve(mode, r.Rank)
			if err := writeFile(files.Curves[i], func(f io.Writer) error { return WriteCurve(f, r.Curve) }); err != nil {
				return err
			}

			if w.chart {
				files.Charts[i] = w.paths.Chart(mode, r.Rank)
				title := fmt.Sprintf("%s %s #%d", w.paths.Game, mode, r.Rank)
				if err := writeFile(files.Charts[i], func(f io.Writer) error {
					return WriteCurveChart(f, title, r.Curve, DefaultChartStyle)
				}); err != nil {
					return err
				}
			}

			log.WithFields(log.Fields{"rank": r.Rank, "score": r.Solution.Score, "rtp": r.RTP}).Info("Report written")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files.Published = w.paths.Published(mode)
	if err := writeFile(files.Published, func(f io.Writer) error { return WritePublished(f, top[0].Outcomes) }); err != nil {
		return nil, err
	}
	log.WithField("path", files.Published).Info("Lookup table published")

	return files, nil
}

// writeFile creates path through a temporary sibling so readers never see a partial file
func writeFile(path string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
