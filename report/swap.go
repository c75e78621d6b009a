package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lutfarm/models"

	"github.com/shopspring/decimal"
)

// ErrNoDistribution is returned when a report has no Distribution block
var ErrNoDistribution = errors.New("report has no distribution block")

const distributionHeader = "Distribution"

// ReadDistribution parses the Distribution block of a report
func ReadDistribution(r io.Reader) ([]models.OutcomeRecord, error) {
	scanner := bufio.NewScanner(r)
	found := false
	var out []models.OutcomeRecord

	for line := 0; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if !found {
			found = text == distributionHeader
			continue
		}
		if text == "" {
			continue
		}

		fields := strings.Split(text, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 fields, got %d", line+1, len(fields))
		}
		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid id %q: %w", line+1, fields[0], err)
		}
		weight, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid weight %q: %w", line+1, fields[1], err)
		}
		win, err := decimal.NewFromString(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid payout %q: %w", line+1, fields[2], err)
		}
		out = append(out, models.OutcomeRecord{ID: uint32(id), Weight: weight, Win: win.InexactFloat64()})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoDistribution
	}
	return out, nil
}

// Swap republishes the distribution of a stored report as the published lookup table
func Swap(reportPath, publishedPath string) (int, error) {
	in, err := os.Open(reportPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open report: %w", err)
	}
	defer in.Close()

	outcomes, err := ReadDistribution(in)
	if err != nil {
		return 0, fmt.Errorf("failed to read report %s: %w", reportPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(publishedPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", filepath.Dir(publishedPath), err)
	}
	if err := writeFile(publishedPath, func(w io.Writer) error {
		return WritePublished(w, outcomes)
	}); err != nil {
		return 0, err
	}
	return len(outcomes), nil
}
