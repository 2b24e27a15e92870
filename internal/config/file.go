package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "specclust"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// FileConfig is the YAML config file layout. Unset keys stay nil so they
// do not override lower-priority sources.
type FileConfig struct {
	MassWindow          *float64 `yaml:"mass_window,omitempty"`
	PeakTolerance       *float64 `yaml:"peak_tolerance,omitempty"`
	SimilarityThreshold *float64 `yaml:"similarity_threshold,omitempty"`
	TopK                *int     `yaml:"top_k,omitempty"`
}

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/specclust/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadFile reads a YAML config file.
// When required is false a missing file yields an empty config, not an error.
func LoadFile(path string, required bool) (*FileConfig, error) {
	if path == "" {
		return &FileConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// apply copies every key set in the file onto r.
func (c *FileConfig) apply(r *Resolved) {
	if c.MassWindow != nil {
		r.Params.MassWindow = *c.MassWindow
		r.Sources[KeyMassWindow] = SourceFile
	}
	if c.PeakTolerance != nil {
		r.Params.PeakTolerance = *c.PeakTolerance
		r.Sources[KeyPeakTolerance] = SourceFile
	}
	if c.SimilarityThreshold != nil {
		r.Params.SimilarityThreshold = *c.SimilarityThreshold
		r.Sources[KeySimilarityThreshold] = SourceFile
	}
	if c.TopK != nil {
		r.Params.TopK = *c.TopK
		r.Sources[KeyTopK] = SourceFile
	}
}

// Save writes the parameters as a YAML config file, creating parent directories.
func Save(path string, p Params) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Update sets one key in the config file at path, creating the file if
// needed. Defaults fill keys the file does not set, and the result is
// validated before anything is written.
func Update(path, key, raw string) (Params, error) {
	fc, err := LoadFile(path, false)
	if err != nil {
		return Params{}, err
	}
	r := newResolved()
	fc.apply(r)
	if err := r.Set(key, raw, SourceFile); err != nil {
		return Params{}, err
	}
	if err := r.Params.Validate(); err != nil {
		return Params{}, err
	}
	if err := Save(path, r.Params); err != nil {
		return Params{}, err
	}
	return r.Params, nil
}
