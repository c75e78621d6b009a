package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"lutfarm/farm"
	"lutfarm/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// WriteReport writes the human-readable summary of one ranked solution
func WriteReport(w io.Writer, r farm.Ranked) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Name,Pig%d\n", r.Rank)
	fmt.Fprintf(bw, "Score,%s\n", formatFloat(r.Solution.Score))
	fmt.Fprint(bw, "LockedUpRTP,\n")
	fmt.Fprintf(bw, "Rtp,%s\n", formatFloat(r.RTP))
	fmt.Fprint(bw, "Win Ranges\n")
	if err := writeWinRanges(bw, r.Table); err != nil {
		return err
	}
	fmt.Fprint(bw, "Distribution\n")
	for _, o := range r.Outcomes {
		fmt.Fprintf(bw, "%d,%d,%s\n", o.ID, o.Weight, decimal.NewFromFloat(o.Win).StringFixed(2))
	}
	return bw.Flush()
}

// WritePublished writes the lookup table consumed by the game server: one
// id,weight,payoutInHundredths line per outcome in id order.
func WritePublished(w io.Writer, outcomes []models.OutcomeRecord) error {
	bw := bufio.NewWriter(w)
	for _, o := range outcomes {
		if _, err := fmt.Fprintf(bw, "%d,%d,%d\n", o.ID, o.Weight, Hundredths(o.Win)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCurve writes survival rates as a single comma-separated line
func WriteCurve(w io.Writer, curve []float64) error {
	parts := make([]string, len(curve))
	for i, v := range curve {
		parts[i] = formatFloat(v)
	}
	_, err := io.WriteString(w, strings.Join(parts, ", "))
	return err
}

// Hundredths converts a payout to whole hundredths, rounding half away from zero
func Hundredths(win float64) int64 {
	return decimal.NewFromFloat(win).Mul(hundred).Round(0).IntPart()
}
