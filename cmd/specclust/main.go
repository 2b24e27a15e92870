// Package main provides the specclust CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/matsen/specclust/internal/logging"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool

	configPath string
	verbose    bool
	logFormat  string

	logger = slog.New(slog.DiscardHandler)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "specclust",
	Short: "Greedy cosine clustering of MS/MS spectra",
	Long: `specclust groups MS/MS spectra that likely come from the same compound.

Spectra are read from MGF files (optionally .gz, .zst or .lz4 compressed) and
clustered in a single greedy pass: each spectrum joins the first earlier
cluster leader whose precursor mass is within the mass window and whose
cosine similarity exceeds the threshold, or it starts a new cluster.

Input order matters. Reordering the input can change cluster leaders and,
when similarity is not transitive, the clusters themselves.

All commands output JSON by default; use --human for readable text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := logging.ParseFormat(logFormat)
		if err != nil {
			return err
		}
		logger = logging.New(os.Stderr, format, verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/specclust/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.Version = Version
}
