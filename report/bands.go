package report

import (
	"fmt"
	"io"
	"strconv"

	"lutfarm/models"
)

// Band is a half-open payout range [Low, High)
type Band struct {
	Low  float64
	High float64
}

// WinBands are the payout ranges summarized in every report
var WinBands = []Band{
	{0, 0.1}, {0.1, 1}, {1, 2}, {2, 3}, {3, 5}, {5, 10}, {10, 20}, {20, 50},
	{50, 100}, {100, 200}, {200, 500}, {500, 1000}, {1000, 2000}, {2000, 3000}, {3000, 5001},
}

// BandMass sums the table's mass falling into each band
func BandMass(table models.WeightTable) []float64 {
	mass := make([]float64, len(WinBands))
	for i, p := range table.Payouts {
		for b, band := range WinBands {
			if p >= band.Low && p < band.High {
				mass[b] += table.Weights[i]
			}
		}
	}
	return mass
}

// writeWinRanges writes one "low,high,1 in X" line per band
func writeWinRanges(w io.Writer, table models.WeightTable) error {
	for b, m := range BandMass(table) {
		band := WinBands[b]
		odds := "1 in never"
		if m != 0 {
			odds = fmt.Sprintf("1 in %.3f", 1/m)
		}
		if _, err := fmt.Fprintf(w, "%s,%s,%s\n", formatFloat(band.Low), formatFloat(band.High), odds); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
