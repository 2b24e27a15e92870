package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/matsen/specclust/internal/config"
	"github.com/spf13/cobra"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set clustering parameters",
	Long: `Get or set clustering parameters.

Usage:
  specclust config                          # Show effective parameters and their sources
  specclust config threshold                # Get specific value
  specclust config similarity-threshold 0.8 # Set value in the config file
  specclust config init                     # Write a config file with the defaults

Keys:
  mass-window           Precursor mass window in Da (default 2.0)
  peak-tolerance        Fragment m/z tolerance and index bin width (default 0.02)
  similarity-threshold  Cosine threshold, exclusive (default 0.7)
  top-k                 Lowest-m/z peaks used as index keys (default 5)

Precedence: defaults < config file < SPECCLUST_* environment (.env honored) < flags.
The config file is --config, or $XDG_CONFIG_HOME/specclust/config.yml.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default parameters",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ParamValue is one parameter in config output.
type ParamValue struct {
	Key    string        `json:"key"`
	Value  string        `json:"value"`
	Source config.Source `json:"source"`
	Env    string        `json:"env"`
}

// normalizeKey maps CLI spellings onto config keys.
func normalizeKey(key string) (string, error) {
	k := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
	if k == "threshold" {
		k = config.KeySimilarityThreshold
	}
	for _, valid := range config.Keys() {
		if k == valid {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown config key: %s (valid: mass-window, peak-tolerance, similarity-threshold, top-k)", key)
}

// paramValue formats one resolved parameter.
func paramValue(p config.Params, key string) string {
	switch key {
	case config.KeyMassWindow:
		return fmt.Sprintf("%g", p.MassWindow)
	case config.KeyPeakTolerance:
		return fmt.Sprintf("%g", p.PeakTolerance)
	case config.KeySimilarityThreshold:
		return fmt.Sprintf("%g", p.SimilarityThreshold)
	case config.KeyTopK:
		return fmt.Sprintf("%d", p.TopK)
	}
	return ""
}

// configFilePath returns the file config writes go to.
func configFilePath() string {
	if configPath != "" {
		return configPath
	}
	return config.GlobalConfigPath()
}

func runConfig(cmd *cobra.Command, args []string) error {
	// Set
	if len(args) == 2 {
		key, err := normalizeKey(args[0])
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		path := configFilePath()
		p, err := config.Update(path, key, args[1])
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		value := paramValue(p, key)
		if humanOutput {
			outputHuman("Set %s = %s in %s\n", key, value, path)
			return nil
		}
		return outputJSON(UpdateResponse{Status: "updated", Path: path, Key: key, Value: value})
	}

	r, err := config.Resolve(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	// Get
	if len(args) == 1 {
		key, err := normalizeKey(args[0])
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		value := paramValue(r.Params, key)
		if humanOutput {
			fmt.Println(value)
			return nil
		}
		return outputJSON(ParamValue{Key: key, Value: value, Source: r.Sources[key], Env: config.EnvName(key)})
	}

	// Show all
	if humanOutput {
		if r.File != "" {
			outputHuman("config file: %s\n", r.File)
		} else {
			outputHuman("config file: (none)\n")
		}
		for _, k := range config.Keys() {
			outputHuman("%-22s %-8s (%s)\n", k+":", paramValue(r.Params, k), r.Sources[k])
		}
		return nil
	}
	return outputJSON(r)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFilePath()
	if _, err := os.Stat(path); err == nil && !configInitForce {
		exitWithError(ExitConfigError, "config file already exists: %s (use --force to overwrite)", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if humanOutput {
		outputHuman("Wrote default parameters to %s\n", path)
		return nil
	}
	return outputJSON(StatusResponse{Status: "created", Path: path})
}
