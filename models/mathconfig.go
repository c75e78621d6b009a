package models

// BetMode is one bet mode summary from math_config.json
type BetMode struct {
	Name   string
	Cost   float64
	RTP    float64
	MaxWin float64
}

// FenceSpec is an unresolved fence definition. Nil pointers are fields that
// were null or absent in the configuration.
type FenceSpec struct {
	Name            string
	HitRate         *float64
	HitRateUnknown  bool // hit-rate given as "x"
	RTP             *float64
	AvgWin          *float64
	Identity        IdentityCondition
	MinMeanToMedian *float64
	MaxMeanToMedian *float64
}

// DressSpec is an unresolved dress definition
type DressSpec struct {
	Fence       string
	ScaleFactor string
	WinRange    *[2]float64
	Prob        *float64
}

// MathConfig is the bet-mode scoped view of math_config.json
type MathConfig struct {
	GameID  string
	BetMode BetMode
	Fences  []FenceSpec
	Dresses []DressSpec
	Bias    []BiasRule
}
