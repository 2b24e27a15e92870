// Package similarity scores pairs of spectra for the clustering gates.
package similarity

import (
	"math"

	"github.com/matsen/specclust/internal/config"
	"github.com/matsen/specclust/internal/spectrum"
)

// Cosine computes the cosine similarity of two peak lists sorted by m/z.
//
// Peaks are aligned with a single two-cursor merge: peaks within tol of each
// other are paired, otherwise the lower-m/z cursor advances alone. The merge
// stops as soon as either list is exhausted, so the remaining tail of the
// longer list is not added to its norm.
//
// The result is NaN when either norm is zero (no peaks, or only zero
// intensities before the merge stopped). Callers compare with > so NaN
// never passes a threshold.
func Cosine(a, b []spectrum.Peak, tol float64) float64 {
	var dot, normA, normB float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		pa, pb := a[i], b[j]
		switch {
		case math.Abs(pa.MZ-pb.MZ) < tol:
			dot += pa.Intensity * pb.Intensity
			normA += pa.Intensity * pa.Intensity
			normB += pb.Intensity * pb.Intensity
			i++
			j++
		case pa.MZ < pb.MZ:
			normA += pa.Intensity * pa.Intensity
			i++
		default:
			normB += pb.Intensity * pb.Intensity
			j++
		}
	}
	return dot / math.Sqrt(normA*normB)
}

// Engine applies the precursor and cosine gates with fixed parameters.
type Engine struct {
	params config.Params
}

// NewEngine creates an engine for the given parameters.
func NewEngine(p config.Params) *Engine {
	return &Engine{params: p}
}

// PrecursorCompatible reports whether the precursor masses differ by less
// than the mass window.
func (e *Engine) PrecursorCompatible(a, b *spectrum.Spectrum) bool {
	return math.Abs(a.PrecursorMass-b.PrecursorMass) < e.params.MassWindow
}

// Similarity returns the cosine similarity of a and b.
func (e *Engine) Similarity(a, b *spectrum.Spectrum) float64 {
	return Cosine(a.Peaks, b.Peaks, e.params.PeakTolerance)
}

// Passes reports whether the similarity strictly exceeds the threshold.
func (e *Engine) Passes(a, b *spectrum.Spectrum) bool {
	return e.Similarity(a, b) > e.params.SimilarityThreshold
}

// Matches applies the precursor gate, then the similarity gate.
func (e *Engine) Matches(a, b *spectrum.Spectrum) bool {
	return e.PrecursorCompatible(a, b) && e.Passes(a, b)
}
