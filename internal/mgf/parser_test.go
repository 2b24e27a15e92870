package mgf

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/specclust/internal/spectrum"
)

const twoSpectra = `MASS=Monoisotopic
BEGIN IONS
TITLE=run1.scan=10
PEPMASS=445.12 10234.5
RTINSECONDS=61.25
101.5 20
150.25	300

203.75 0.5
END IONS

BEGIN IONS
TITLE=run1.scan=11
PEPMASS=512.3
RTINSECONDS=62
END IONS
`

func TestParse(t *testing.T) {
	spectra, err := Parse(strings.NewReader(twoSpectra))
	require.NoError(t, err)
	require.Len(t, spectra, 2)

	first := spectra[0]
	assert.Equal(t, "run1.scan=10", first.Title)
	assert.Equal(t, 445.12, first.PrecursorMass)
	assert.Equal(t, 61.25, first.RetentionTime)
	assert.Equal(t, []spectrum.Peak{
		{MZ: 101.5, Intensity: 20},
		{MZ: 150.25, Intensity: 300},
		{MZ: 203.75, Intensity: 0.5},
	}, first.Peaks)

	second := spectra[1]
	assert.Equal(t, "run1.scan=11", second.Title)
	assert.Equal(t, 512.3, second.PrecursorMass)
	assert.Empty(t, second.Peaks)
}

func TestParse_CRLF(t *testing.T) {
	in := strings.ReplaceAll(twoSpectra, "\n", "\r\n")
	spectra, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, spectra, 2)
	assert.Len(t, spectra[0].Peaks, 3)
}

func TestParse_Empty(t *testing.T) {
	spectra, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, spectra)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
		ordinal  int
		line     int
		content  string
	}{
		{
			name:     "unknown property",
			input:    "BEGIN IONS\nTITLE=a\nCHARGE=2+\nRTINSECONDS=1\nEND IONS\n",
			sentinel: ErrUnknownProperty,
			ordinal:  1,
			line:     3,
			content:  "CHARGE=2+",
		},
		{
			name:     "peak before RTINSECONDS",
			input:    "BEGIN IONS\nPEPMASS=400\n100 2\nEND IONS\n",
			sentinel: ErrUnexpectedLine,
			ordinal:  1,
			line:     3,
			content:  "100 2",
		},
		{
			name:     "single-field peak",
			input:    "BEGIN IONS\nRTINSECONDS=1\nEND IONS\nBEGIN IONS\nRTINSECONDS=2\n100.5\nEND IONS\n",
			sentinel: ErrMalformedPeak,
			ordinal:  2,
			line:     6,
			content:  "100.5",
		},
		{
			name:     "non-numeric intensity",
			input:    "BEGIN IONS\nRTINSECONDS=1\n100.5 high\nEND IONS\n",
			sentinel: ErrMalformedPeak,
			ordinal:  1,
			line:     3,
			content:  "100.5 high",
		},
		{
			name:     "property after peaks start",
			input:    "BEGIN IONS\nRTINSECONDS=1\nTITLE=late\nEND IONS\n",
			sentinel: ErrMalformedPeak,
			ordinal:  1,
			line:     3,
			content:  "TITLE=late",
		},
		{
			name:     "bad pepmass",
			input:    "BEGIN IONS\nPEPMASS=abc\nRTINSECONDS=1\nEND IONS\n",
			sentinel: ErrBadValue,
			ordinal:  1,
			line:     2,
			content:  "PEPMASS=abc",
		},
		{
			name:     "END outside record",
			input:    "END IONS\n",
			sentinel: ErrUnexpectedLine,
			ordinal:  0,
			line:     1,
			content:  "END IONS",
		},
		{
			name:     "nested BEGIN",
			input:    "BEGIN IONS\nTITLE=a\nBEGIN IONS\n",
			sentinel: ErrUnexpectedLine,
			ordinal:  1,
			line:     3,
			content:  "BEGIN IONS",
		},
		{
			name:     "unterminated",
			input:    "BEGIN IONS\nRTINSECONDS=1\n100 1\n",
			sentinel: ErrUnterminated,
			ordinal:  1,
			line:     3,
			content:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spectra, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, spectra)
			assert.True(t, errors.Is(err, tt.sentinel), "error %v should wrap %v", err, tt.sentinel)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.ordinal, perr.Spectrum)
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.content, perr.Content)
		})
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Spectrum: 3, Line: 42, Content: "1.0 x", Err: ErrMalformedPeak}
	assert.Equal(t, `spectrum 3, line 42: malformed peak line: "1.0 x"`, err.Error())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", stateIdle.String())
	assert.Equal(t, "properties", stateProperties.String())
	assert.Equal(t, "peaks", statePeaks.String())
	assert.Equal(t, "state(9)", state(9).String())
}
