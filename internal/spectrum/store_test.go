package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_SortsPeaks(t *testing.T) {
	spectra := []Spectrum{
		{
			Title:         "unsorted",
			PrecursorMass: 500,
			Peaks: []Peak{
				{MZ: 300, Intensity: 3},
				{MZ: 100, Intensity: 1},
				{MZ: 200, Intensity: 2},
			},
		},
	}

	st, err := NewStore(spectra)
	require.NoError(t, err)
	require.Equal(t, 1, st.Len())

	s := st.At(0)
	assert.True(t, s.PeaksSorted())
	assert.Equal(t, []Peak{{100, 1}, {200, 2}, {300, 3}}, s.Peaks)
}

func TestNewStore_StableForEqualMasses(t *testing.T) {
	spectra := []Spectrum{
		{Peaks: []Peak{{MZ: 200, Intensity: 9}, {MZ: 100, Intensity: 1}, {MZ: 100, Intensity: 2}}},
	}

	st, err := NewStore(spectra)
	require.NoError(t, err)
	assert.Equal(t, []Peak{{100, 1}, {100, 2}, {200, 9}}, st.At(0).Peaks)
}

func TestNewStore_Rejects(t *testing.T) {
	tests := []struct {
		name string
		s    Spectrum
		msg  string
	}{
		{
			name: "NaN m/z",
			s:    Spectrum{Peaks: []Peak{{MZ: math.NaN(), Intensity: 1}}},
			msg:  "invalid m/z",
		},
		{
			name: "infinite intensity",
			s:    Spectrum{Peaks: []Peak{{MZ: 100, Intensity: math.Inf(1)}}},
			msg:  "invalid intensity",
		},
		{
			name: "negative intensity",
			s:    Spectrum{Peaks: []Peak{{MZ: 100, Intensity: -1}}},
			msg:  "non-negative",
		},
		{
			name: "NaN precursor",
			s:    Spectrum{PrecursorMass: math.NaN()},
			msg:  "precursor mass",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.s.Title = "bad"
			_, err := NewStore([]Spectrum{{Title: "ok"}, tt.s})
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, 1, verr.Index)
			assert.Equal(t, "bad", verr.Title)
			assert.Contains(t, verr.Error(), tt.msg)
		})
	}
}

func TestNewStore_AllowsEmptySpectra(t *testing.T) {
	st, err := NewStore([]Spectrum{{Title: "empty"}, {Title: "zeros", Peaks: []Peak{{100, 0}}}})
	require.NoError(t, err)
	assert.Equal(t, 2, st.Len())
	assert.Equal(t, 1, st.TotalPeaks())
}

func TestDescribe(t *testing.T) {
	s := Spectrum{
		Title:         "scan=12",
		PrecursorMass: 445.12,
		RetentionTime: 61.5,
		Peaks:         []Peak{{MZ: 101.5, Intensity: 20}},
	}

	short := s.Describe(false)
	assert.Contains(t, short, "Title: scan=12")
	assert.Contains(t, short, "Peaks: 1")
	assert.NotContains(t, short, "101.5")

	long := s.Describe(true)
	assert.Contains(t, long, "101.500000")
}
