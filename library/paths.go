package library

import (
	"fmt"
	"path/filepath"
)

// Paths resolves the file layout of one game's library directory
type Paths struct {
	Root string // path_to_games
	Game string
}

// NewPaths creates a path resolver for a game
func NewPaths(root, game string) Paths {
	return Paths{Root: root, Game: game}
}

func (p Paths) library(parts ...string) string {
	return filepath.Join(append([]string{p.Root, p.Game, "library"}, parts...)...)
}

// MathConfig returns the path of math_config.json
func (p Paths) MathConfig() string {
	return p.library("configs", "math_config.json")
}

// ForceRecord returns the force record file of a bet mode
func (p Paths) ForceRecord(mode string) string {
	return p.library("forces", fmt.Sprintf("force_record_%s.json", mode))
}

// LookupTable returns the input lookup table of a bet mode
func (p Paths) LookupTable(mode string) string {
	return p.library("lookup_tables", fmt.Sprintf("lookUpTable_%s.csv", mode))
}

// OptimizationDir returns the directory holding per-candidate reports
func (p Paths) OptimizationDir() string {
	return p.library("optimization_files")
}

// PublishDir returns the directory holding published lookup tables
func (p Paths) PublishDir() string {
	return p.library("publish_files")
}

// Report returns the report file of the n-th ranked candidate (1-based)
func (p Paths) Report(mode string, n int) string {
	return filepath.Join(p.OptimizationDir(), fmt.Sprintf("%s_0_%d.csv", mode, n))
}

// Curve returns the survival curve file of the n-th ranked candidate
func (p Paths) Curve(mode string, n int) string {
	return filepath.Join(p.OptimizationDir(), fmt.Sprintf("%s_0_%d_curve.csv", mode, n))
}

// Chart returns the survival chart image of the n-th ranked candidate
func (p Paths) Chart(mode string, n int) string {
	return filepath.Join(p.OptimizationDir(), fmt.Sprintf("%s_0_%d_curve.png", mode, n))
}

// Published returns the published lookup table of a bet mode
func (p Paths) Published(mode string) string {
	return filepath.Join(p.PublishDir(), fmt.Sprintf("lookUpTable_%s_0.csv", mode))
}
