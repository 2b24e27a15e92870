package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Parameter keys, shared by the YAML file, env vars and CLI reporting.
const (
	KeyMassWindow          = "mass_window"
	KeyPeakTolerance       = "peak_tolerance"
	KeySimilarityThreshold = "similarity_threshold"
	KeyTopK                = "top_k"
)

// EnvPrefix is prepended to the upper-cased key to form the env var name,
// e.g. SPECCLUST_MASS_WINDOW.
const EnvPrefix = "SPECCLUST_"

// Source records where a parameter value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// Resolved holds effective parameters and the source of each one.
type Resolved struct {
	Params  Params            `json:"params"`
	Sources map[string]Source `json:"sources"`
	File    string            `json:"file,omitempty"` // Config file consulted, if any
}

// Keys returns all parameter keys in a stable order.
func Keys() []string {
	keys := []string{KeyMassWindow, KeyPeakTolerance, KeySimilarityThreshold, KeyTopK}
	sort.Strings(keys)
	return keys
}

// EnvName returns the environment variable name for a key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

func newResolved() *Resolved {
	r := &Resolved{
		Params:  Default(),
		Sources: make(map[string]Source),
	}
	for _, k := range Keys() {
		r.Sources[k] = SourceDefault
	}
	return r
}

// Resolve layers defaults, the config file and the environment.
// If path is empty the global config file is used when present; an explicit
// path must exist. A .env file in the working directory is loaded first and
// never overrides variables already set in the process environment.
func Resolve(path string) (*Resolved, error) {
	r := newResolved()

	required := path != ""
	if !required {
		path = GlobalConfigPath()
	}
	fc, err := LoadFile(path, required)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		r.File = path
	}
	fc.apply(r)

	// Ignore missing .env; it is optional
	_ = godotenv.Load()

	for _, k := range Keys() {
		raw, ok := os.LookupEnv(EnvName(k))
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		if err := r.Set(k, raw, SourceEnv); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvName(k), err)
		}
	}

	return r, nil
}

// Set parses raw into the parameter named by key and records src.
func (r *Resolved) Set(key, raw string, src Source) error {
	raw = strings.TrimSpace(raw)
	switch key {
	case KeyTopK:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
		r.Params.TopK = v
	case KeyMassWindow, KeyPeakTolerance, KeySimilarityThreshold:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
		switch key {
		case KeyMassWindow:
			r.Params.MassWindow = v
		case KeyPeakTolerance:
			r.Params.PeakTolerance = v
		default:
			r.Params.SimilarityThreshold = v
		}
	default:
		return fmt.Errorf("unknown parameter %q", key)
	}
	r.Sources[key] = src
	return nil
}
