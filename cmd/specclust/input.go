package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/matsen/specclust/internal/config"
	"github.com/matsen/specclust/internal/mgf"
	"github.com/matsen/specclust/internal/spectrum"
	"github.com/spf13/cobra"
)

// paramFlags maps CLI flag names to config keys.
var paramFlags = []struct {
	flag string
	key  string
}{
	{"mass-window", config.KeyMassWindow},
	{"peak-tolerance", config.KeyPeakTolerance},
	{"threshold", config.KeySimilarityThreshold},
	{"top-k", config.KeyTopK},
}

// inputFlags holds the input file and clustering parameter flags shared by
// the commands that read spectra.
type inputFlags struct {
	files  []string
	params config.Params
}

// register adds the input flags to cmd. Parameter flags are only applied
// when set explicitly, so config file and env values are not masked by
// flag defaults.
func (f *inputFlags) register(cmd *cobra.Command, withParams bool) {
	cmd.Flags().StringArrayVarP(&f.files, "file", "f", nil, "MGF input file (repeatable; .gz, .zst, .lz4 accepted)")
	if !withParams {
		return
	}
	d := config.Default()
	cmd.Flags().Float64VarP(&f.params.MassWindow, "mass-window", "m", d.MassWindow, "Precursor mass window (Da)")
	cmd.Flags().Float64VarP(&f.params.PeakTolerance, "peak-tolerance", "p", d.PeakTolerance, "Fragment peak m/z tolerance, also the index bin width")
	cmd.Flags().Float64VarP(&f.params.SimilarityThreshold, "threshold", "t", d.SimilarityThreshold, "Cosine similarity threshold (exclusive)")
	cmd.Flags().IntVar(&f.params.TopK, "top-k", d.TopK, "Number of lowest-m/z peaks used as index keys")
}

// resolveParams layers explicitly set flags over the config file and env.
func resolveParams(cmd *cobra.Command) (*config.Resolved, error) {
	r, err := config.Resolve(configPath)
	if err != nil {
		return nil, err
	}
	for _, pf := range paramFlags {
		fl := cmd.Flags().Lookup(pf.flag)
		if fl == nil || !fl.Changed {
			continue
		}
		if err := r.Set(pf.key, fl.Value.String(), config.SourceFlag); err != nil {
			return nil, fmt.Errorf("--%s: %w", pf.flag, err)
		}
	}
	if err := r.Params.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// mustResolveParams resolves parameters or exits with ExitConfigError.
func mustResolveParams(cmd *cobra.Command) *config.Resolved {
	r, err := resolveParams(cmd)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	logger.Debug("resolved parameters",
		"mass_window", r.Params.MassWindow,
		"peak_tolerance", r.Params.PeakTolerance,
		"similarity_threshold", r.Params.SimilarityThreshold,
		"top_k", r.Params.TopK,
		"config_file", r.File,
	)
	return r
}

// requireFiles prints usage when no input file was given.
func requireFiles(cmd *cobra.Command, files []string) error {
	if len(files) > 0 {
		return nil
	}
	cmd.Usage()
	return errors.New("at least one input file is required (-f)")
}

// loadResult is a parsed and validated input set.
type loadResult struct {
	store    *spectrum.Store
	duration time.Duration
}

// loadStore parses every input file and builds the spectrum store.
func loadStore(ctx context.Context, files []string) (*loadResult, error) {
	start := time.Now()
	spectra, err := mgf.ReadFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	st, err := spectrum.NewStore(spectra)
	if err != nil {
		return nil, err
	}
	res := &loadResult{store: st, duration: time.Since(start)}
	logger.Debug("loaded spectra",
		"files", len(files),
		"spectra", st.Len(),
		"peaks", st.TotalPeaks(),
		"duration", res.duration,
	)
	return res, nil
}

// loadExitCode maps a load error to an exit code.
func loadExitCode(err error) int {
	var parseErr *mgf.ParseError
	var validationErr *spectrum.ValidationError
	switch {
	case errors.As(err, &parseErr), errors.As(err, &validationErr):
		return ExitDataError
	default:
		return ExitError
	}
}

// mustLoadStore loads the inputs or exits with the matching exit code.
func mustLoadStore(cmd *cobra.Command, files []string) *loadResult {
	res, err := loadStore(cmd.Context(), files)
	if err == nil {
		return res
	}
	if errors.Is(err, fs.ErrNotExist) {
		exitWithError(ExitError, "%v (run '%s --help' for usage)", err, cmd.CommandPath())
	}
	exitWithError(loadExitCode(err), "%v", err)
	return nil
}
