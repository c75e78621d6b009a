package breeder

import (
	"errors"
	"fmt"
)

// ErrUnreachableTarget is returned when a fence's average win lies outside its payout range
var ErrUnreachableTarget = errors.New("target average win outside payout range")

// Stage names the loop that failed to converge
type Stage string

const (
	StageGeneration Stage = "generation"
	StageBreeding   Stage = "breeding"
)

// ConvergenceError is returned when a rejection-sampling loop hits its iteration cap
type ConvergenceError struct {
	Fence      string
	Stage      Stage
	Iterations int
	Hint       string
}

func (e *ConvergenceError) Error() string {
	msg := fmt.Sprintf("fence %q: %s did not converge after %d iterations", e.Fence, e.Stage, e.Iterations)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}
