package spectrum

import "strings"

// Store is the immutable, value-owned collection of spectra for one run.
// Indices are input order and are the identifiers used by the clustering
// and index packages.
type Store struct {
	spectra []Spectrum
}

// NewStore takes ownership of spectra, sorting each peak list by MZ and
// rejecting records with non-finite values or negative intensities.
// The caller must not modify spectra afterwards.
func NewStore(spectra []Spectrum) (*Store, error) {
	for i := range spectra {
		s := &spectra[i]
		if errs := s.validate(); len(errs) > 0 {
			return nil, &ValidationError{
				Index:   i,
				Title:   s.Title,
				Message: strings.Join(errs, "; "),
			}
		}
		if !s.PeaksSorted() {
			s.SortPeaks()
		}
	}
	return &Store{spectra: spectra}, nil
}

// Len returns the number of spectra.
func (st *Store) Len() int {
	return len(st.spectra)
}

// At returns the spectrum at index i. The result must be treated as read-only.
func (st *Store) At(i int) *Spectrum {
	return &st.spectra[i]
}

// TotalPeaks returns the number of peaks across all spectra.
func (st *Store) TotalPeaks() int {
	n := 0
	for i := range st.spectra {
		n += len(st.spectra[i].Peaks)
	}
	return n
}
