// Package config handles clustering parameters and their sources.
package config

import (
	"errors"
	"fmt"
	"math"
)

// Defaults used when no config file, environment variable or flag sets a value.
const (
	DefaultMassWindow          = 2.0
	DefaultPeakTolerance       = 0.02
	DefaultSimilarityThreshold = 0.7
	DefaultTopK                = 5
)

// Params carries the tunable thresholds for one clustering run.
// It is passed by value into the similarity engine and the assigner.
type Params struct {
	// Precursor masses must differ by strictly less than this (Da)
	MassWindow float64 `yaml:"mass_window" json:"mass_window"`

	// Peaks match when their m/z differ by strictly less than this.
	// Also used as the bucket width of the peak-locality index.
	PeakTolerance float64 `yaml:"peak_tolerance" json:"peak_tolerance"`

	// Cosine similarity must be strictly greater than this to merge
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold"`

	// Number of lowest-m/z peaks used for the peak-locality index
	TopK int `yaml:"top_k" json:"top_k"`
}

// ErrInvalidParams is wrapped by every Validate failure.
var ErrInvalidParams = errors.New("invalid clustering parameters")

// Default returns the built-in parameters.
func Default() Params {
	return Params{
		MassWindow:          DefaultMassWindow,
		PeakTolerance:       DefaultPeakTolerance,
		SimilarityThreshold: DefaultSimilarityThreshold,
		TopK:                DefaultTopK,
	}
}

// Validate checks that the parameters describe a usable run.
func (p Params) Validate() error {
	if !(p.MassWindow > 0) || math.IsInf(p.MassWindow, 0) {
		return fmt.Errorf("%w: mass_window must be positive, got %v", ErrInvalidParams, p.MassWindow)
	}
	if !(p.PeakTolerance > 0) || math.IsInf(p.PeakTolerance, 0) {
		return fmt.Errorf("%w: peak_tolerance must be positive, got %v", ErrInvalidParams, p.PeakTolerance)
	}
	if math.IsNaN(p.SimilarityThreshold) {
		return fmt.Errorf("%w: similarity_threshold is NaN", ErrInvalidParams)
	}
	if p.TopK < 1 {
		return fmt.Errorf("%w: top_k must be at least 1, got %d", ErrInvalidParams, p.TopK)
	}
	return nil
}
