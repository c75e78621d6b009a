package library

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"lutfarm/models"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

var (
	// ErrBetModeNotFound is returned when a bet mode is missing from a required section
	ErrBetModeNotFound = errors.New("bet mode not found")
	// ErrMalformedConfig is returned for JSON that cannot be interpreted
	ErrMalformedConfig = errors.New("malformed math config")
)

// LoadMathConfig reads math_config.json and selects one bet mode
func LoadMathConfig(path, mode string) (*models.MathConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read math config %s: %w", path, err)
	}
	cfg, err := ParseMathConfig(data, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse math config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseMathConfig extracts the bet mode, fences, dresses and bias rules of
// one bet mode. Numeric fence fields may be numbers, numeric strings or null.
func ParseMathConfig(data []byte, mode string) (*models.MathConfig, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedConfig)
	}
	root := gjson.ParseBytes(data)

	cfg := &models.MathConfig{GameID: root.Get("game_id").String()}

	betMode, ok := findByMode(root.Get("bet_modes"), mode)
	if !ok {
		return nil, fmt.Errorf("%w: %q in bet_modes", ErrBetModeNotFound, mode)
	}
	cfg.BetMode = models.BetMode{
		Name:   mode,
		Cost:   betMode.Get("cost").Float(),
		RTP:    betMode.Get("rtp").Float(),
		MaxWin: betMode.Get("max_win").Float(),
	}
	if cfg.BetMode.Cost <= 0 {
		return nil, fmt.Errorf("%w: bet mode %q has non-positive cost", ErrMalformedConfig, mode)
	}

	fences, ok := findByMode(root.Get("fences"), mode)
	if !ok {
		return nil, fmt.Errorf("%w: %q in fences", ErrBetModeNotFound, mode)
	}
	for _, f := range fences.Get("fences").Array() {
		spec, err := parseFenceSpec(f)
		if err != nil {
			return nil, err
		}
		cfg.Fences = append(cfg.Fences, spec)
	}

	if dresses, ok := findByMode(root.Get("dresses"), mode); ok {
		for _, d := range dresses.Get("dresses").Array() {
			spec, err := parseDressSpec(d)
			if err != nil {
				return nil, err
			}
			cfg.Dresses = append(cfg.Dresses, spec)
		}
	} else {
		log.WithField("betMode", mode).Debug("No dresses configured for bet mode")
	}

	if bias, ok := findByMode(root.Get("bias"), mode); ok {
		for _, b := range bias.Get("bias").Array() {
			rng := b.Get("range").Array()
			if len(rng) != 2 {
				return nil, fmt.Errorf("%w: bias %q range must have two values", ErrMalformedConfig, b.Get("criteria").String())
			}
			cfg.Bias = append(cfg.Bias, models.BiasRule{
				Criteria: b.Get("criteria").String(),
				Low:      rng[0].Float(),
				High:     rng[1].Float(),
				Prob:     b.Get("prob").Float(),
			})
		}
	}

	return cfg, nil
}

func findByMode(list gjson.Result, mode string) (gjson.Result, bool) {
	var found gjson.Result
	ok := false
	list.ForEach(func(_, value gjson.Result) bool {
		if value.Get("bet_mode").String() == mode {
			found = value
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

func parseFenceSpec(f gjson.Result) (models.FenceSpec, error) {
	spec := models.FenceSpec{Name: f.Get("name").String()}
	if spec.Name == "" {
		return spec, fmt.Errorf("%w: fence without name", ErrMalformedConfig)
	}

	hr := f.Get("hr")
	if hr.Type == gjson.String && strings.EqualFold(strings.TrimSpace(hr.Str), "x") {
		spec.HitRateUnknown = true
	} else {
		v, err := optionalFloat(hr)
		if err != nil {
			return spec, fmt.Errorf("%w: fence %q hr: %v", ErrMalformedConfig, spec.Name, err)
		}
		spec.HitRate = v
	}

	var err error
	if spec.RTP, err = optionalFloat(f.Get("rtp")); err != nil {
		return spec, fmt.Errorf("%w: fence %q rtp: %v", ErrMalformedConfig, spec.Name, err)
	}
	if spec.AvgWin, err = optionalFloat(f.Get("avg_win")); err != nil {
		return spec, fmt.Errorf("%w: fence %q avg_win: %v", ErrMalformedConfig, spec.Name, err)
	}
	if spec.MinMeanToMedian, err = optionalFloat(f.Get("min_mean_to_median")); err != nil {
		return spec, fmt.Errorf("%w: fence %q min_mean_to_median: %v", ErrMalformedConfig, spec.Name, err)
	}
	if spec.MaxMeanToMedian, err = optionalFloat(f.Get("max_mean_to_median")); err != nil {
		return spec, fmt.Errorf("%w: fence %q max_mean_to_median: %v", ErrMalformedConfig, spec.Name, err)
	}

	ic := f.Get("identity_condition")
	spec.Identity = models.IdentityCondition{
		Search:        parseSearchKeys(ic.Get("search")),
		Opposite:      ic.Get("opposite").Bool(),
		WinRangeStart: -1,
		WinRangeEnd:   -1,
	}
	if start := ic.Get("win_range_start"); start.Exists() && start.Type != gjson.Null {
		spec.Identity.WinRangeStart = start.Float()
	}
	if end := ic.Get("win_range_end"); end.Exists() && end.Type != gjson.Null {
		spec.Identity.WinRangeEnd = end.Float()
	}

	return spec, nil
}

func parseDressSpec(d gjson.Result) (models.DressSpec, error) {
	spec := models.DressSpec{
		Fence:       d.Get("fence").String(),
		ScaleFactor: d.Get("scale_factor").String(),
	}
	if wr := d.Get("identity_condition_win_range"); wr.IsArray() {
		values := wr.Array()
		if len(values) != 2 {
			return spec, fmt.Errorf("%w: dress for %q win range must have two values", ErrMalformedConfig, spec.Fence)
		}
		spec.WinRange = &[2]float64{values[0].Float(), values[1].Float()}
	}
	prob, err := optionalFloat(d.Get("prob"))
	if err != nil {
		return spec, fmt.Errorf("%w: dress for %q prob: %v", ErrMalformedConfig, spec.Fence, err)
	}
	spec.Prob = prob
	return spec, nil
}

func parseSearchKeys(list gjson.Result) []models.SearchKey {
	var keys []models.SearchKey
	for _, k := range list.Array() {
		keys = append(keys, models.SearchKey{
			Name:  k.Get("name").String(),
			Value: k.Get("value").String(),
		})
	}
	return keys
}

// optionalFloat reads a number, a numeric string or null
func optionalFloat(r gjson.Result) (*float64, error) {
	switch r.Type {
	case gjson.Null:
		return nil, nil
	case gjson.Number:
		v := r.Num
		return &v, nil
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("unexpected value %s", r.Raw)
	}
}
