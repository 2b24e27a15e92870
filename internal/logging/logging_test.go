package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"", FormatText, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	quiet := New(&buf, FormatText, false)
	quiet.Debug("hidden")
	quiet.Info("hidden too")
	assert.Empty(t, buf.String())

	quiet.Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	verbose := New(&buf, FormatText, true)
	verbose.Debug("parsed", "spectra", 3)
	assert.Contains(t, buf.String(), "spectra=3")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, FormatJSON, true).Debug("clustered", "clusters", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "clustered", rec["msg"])
	assert.Equal(t, float64(7), rec["clusters"])
}
