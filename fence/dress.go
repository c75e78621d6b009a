package fence

import (
	"strconv"
	"strings"

	"lutfarm/models"
)

// ParseScale reads a dress scale factor. A trailing "r" marks a factor that is
// multiplied by a fresh uniform draw for every candidate.
func ParseScale(s string) (scale float64, random bool) {
	s = strings.TrimSpace(s)
	if trimmed, ok := strings.CutSuffix(s, "r"); ok {
		if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return v, true
		}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, false
	}
	return 1, false
}

// NewDress resolves a dress definition
func NewDress(spec models.DressSpec) models.Dress {
	scale, random := ParseScale(spec.ScaleFactor)
	d := models.Dress{
		Fence:       spec.Fence,
		Scale:       scale,
		RandomScale: random,
		Prob:        1,
	}
	if spec.WinRange != nil {
		d.Low, d.High = spec.WinRange[0], spec.WinRange[1]
	}
	if spec.Prob != nil {
		d.Prob = *spec.Prob
	}
	return d
}

// DrawScale returns the multiplier for one candidate
func DrawScale(d models.Dress, uniform func() float64) float64 {
	if d.RandomScale {
		return d.Scale * uniform()
	}
	return d.Scale
}
