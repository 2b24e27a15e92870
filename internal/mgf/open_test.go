package mgf

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCompressed(t *testing.T, path string, wrap func(io.Writer) (io.WriteCloser, error)) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := wrap(f)
	require.NoError(t, err)
	_, err = io.WriteString(w, twoSpectra)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestDetectCompression(t *testing.T) {
	tests := map[string]Compression{
		"a.mgf":     CompressionNone,
		"a.mgf.gz":  CompressionGzip,
		"a.MGF.GZ":  CompressionGzip,
		"a.mgf.zst": CompressionZstd,
		"a.mgf.lz4": CompressionLZ4,
		"noext":     CompressionNone,
	}
	for path, want := range tests {
		assert.Equal(t, want, DetectCompression(path), path)
	}
}

func TestReadFile_Compressed(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		file string
		wrap func(io.Writer) (io.WriteCloser, error)
	}{
		{"plain", "plain.mgf", func(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }},
		{"gzip", "in.mgf.gz", func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }},
		{"zstd", "in.mgf.zst", func(w io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(w) }},
		{"lz4", "in.mgf.lz4", func(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			writeCompressed(t, path, tt.wrap)

			spectra, err := ReadFile(path)
			require.NoError(t, err)
			require.Len(t, spectra, 2)
			assert.Equal(t, "run1.scan=10", spectra[0].Title)
			assert.Len(t, spectra[0].Peaks, 3)
		})
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func TestReadFile_NotFound(t *testing.T) {
	_, err := ReadFile("/nonexistent/spectra.mgf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadFile_ParseErrorNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mgf")
	require.NoError(t, os.WriteFile(path, []byte("BEGIN IONS\nFOO=1\n"), 0644))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.mgf")
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestReadFiles_PreservesArgumentOrder(t *testing.T) {
	tmpDir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.mgf", "a.mgf", "b.mgf"} {
		path := filepath.Join(tmpDir, name)
		content := "BEGIN IONS\nTITLE=" + name + "\nPEPMASS=1\nRTINSECONDS=1\n10 1\nEND IONS\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		paths = append(paths, path)
	}

	spectra, err := ReadFiles(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, spectra, 3)
	assert.Equal(t, "c.mgf", spectra[0].Title)
	assert.Equal(t, "a.mgf", spectra[1].Title)
	assert.Equal(t, "b.mgf", spectra[2].Title)
}

func TestReadFiles_FailsOnAnyError(t *testing.T) {
	good := filepath.Join(t.TempDir(), "good.mgf")
	require.NoError(t, os.WriteFile(good, []byte(twoSpectra), 0644))

	_, err := ReadFiles(context.Background(), []string{good, "/nonexistent/x.mgf"})
	assert.Error(t, err)
}
