// Package spectrum defines the core domain types for MS/MS spectra.
package spectrum

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Peak is a single fragment measurement.
type Peak struct {
	MZ        float64 `json:"mz"`
	Intensity float64 `json:"intensity"`
}

// Spectrum is one parsed MS/MS spectrum.
type Spectrum struct {
	// Metadata
	Title         string  `json:"title"`
	RetentionTime float64 `json:"rt_seconds"` // Not used by clustering

	// Precursor (intact compound) mass, used as a coarse compatibility gate
	PrecursorMass float64 `json:"pepmass"`

	// Fragment peaks, non-decreasing by MZ once held by a Store
	Peaks []Peak `json:"peaks"`
}

// ValidationError describes a spectrum that cannot be clustered.
type ValidationError struct {
	Index   int // Position in input order
	Title   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("spectrum %d (%s): %s", e.Index, e.Title, e.Message)
	}
	return fmt.Sprintf("spectrum %d: %s", e.Index, e.Message)
}

// NumPeaks returns the number of peaks.
func (s *Spectrum) NumPeaks() int {
	return len(s.Peaks)
}

// PeaksSorted reports whether peaks are non-decreasing by MZ.
func (s *Spectrum) PeaksSorted() bool {
	return slices.IsSortedFunc(s.Peaks, comparePeaks)
}

// SortPeaks stable-sorts peaks by MZ so equal masses keep their input order.
func (s *Spectrum) SortPeaks() {
	slices.SortStableFunc(s.Peaks, comparePeaks)
}

func comparePeaks(a, b Peak) int {
	switch {
	case a.MZ < b.MZ:
		return -1
	case a.MZ > b.MZ:
		return 1
	}
	return 0
}

// validate checks the numeric fields that the similarity merge depends on.
func (s *Spectrum) validate() []string {
	var errs []string
	if math.IsNaN(s.PrecursorMass) || math.IsInf(s.PrecursorMass, 0) {
		errs = append(errs, "precursor mass is not finite")
	}
	for i, p := range s.Peaks {
		if math.IsNaN(p.MZ) || math.IsInf(p.MZ, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid m/z", i))
		}
		if math.IsNaN(p.Intensity) || math.IsInf(p.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		} else if p.Intensity < 0 {
			errs = append(errs, fmt.Sprintf("peak %d intensity must be non-negative", i))
		}
	}
	return errs
}

// Describe returns a human-readable summary, optionally with every peak.
func (s *Spectrum) Describe(verbose bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", s.Title)
	fmt.Fprintf(&sb, "Pepmass: %f\n", s.PrecursorMass)
	fmt.Fprintf(&sb, "RT (s): %f\n", s.RetentionTime)
	fmt.Fprintf(&sb, "Peaks: %d\n", len(s.Peaks))
	if verbose {
		for _, p := range s.Peaks {
			fmt.Fprintf(&sb, "  %f\t%g\n", p.MZ, p.Intensity)
		}
	}
	return sb.String()
}
