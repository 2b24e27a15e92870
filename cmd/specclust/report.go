package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/matsen/specclust/internal/storage"
	"github.com/spf13/cobra"
)

var (
	reportRun   int64
	reportRuns  bool
	reportLimit int
)

func init() {
	reportCmd.Flags().Int64Var(&reportRun, "run", 0, "Run ID to report (SQLite only; default latest)")
	reportCmd.Flags().BoolVar(&reportRuns, "runs", false, "List stored runs instead of reporting one (SQLite only)")
	reportCmd.Flags().IntVar(&reportLimit, "limit", DefaultListLimit, "Maximum clusters to list (0 for all)")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <path>",
	Short: "Summarize an exported clustering result",
	Long: `Read assignments written by 'cluster --out' and report cluster sizes.

A .jsonl file holds one run. A .db/.sqlite file accumulates runs; --run picks
one (default: the latest) and --runs lists them all.

Examples:
  specclust report assignments.jsonl
  specclust report runs.db --runs
  specclust report runs.db --run 2 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

// ReportResponse is the JSON output of the report command.
type ReportResponse struct {
	Path     string                `json:"path"`
	Run      *storage.Run          `json:"run,omitempty"`
	Spectra  int                   `json:"spectra"`
	Clusters int                   `json:"clusters"`
	Sizes    []storage.ClusterSize `json:"sizes"`
}

// RunsResponse is the JSON output of report --runs.
type RunsResponse struct {
	Path string        `json:"path"`
	Runs []storage.Run `json:"runs"`
}

func runReport(cmd *cobra.Command, args []string) error {
	path := args[0]
	if reportRuns {
		return runReportList(path)
	}

	run, records, err := storage.Load(path, reportRun)
	if err != nil {
		exitWithError(reportExitCode(err), "%v", err)
	}
	a, err := storage.Assignment(records)
	if err != nil {
		exitWithError(ExitDataError, "%s: %v", path, err)
	}

	sizes := sizesBySize(a)
	resp := ReportResponse{
		Path:     path,
		Run:      run,
		Spectra:  len(a),
		Clusters: len(sizes),
		Sizes:    sizes,
	}
	if reportLimit > 0 && reportLimit < len(resp.Sizes) {
		resp.Sizes = resp.Sizes[:reportLimit]
	}

	if !humanOutput {
		return outputJSON(resp)
	}

	if run != nil {
		outputHuman("Run %d (%s, %s mode, %s)\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Mode, formatDuration(time.Duration(run.DurationMs)*time.Millisecond))
		outputHuman("  inputs: %s\n", truncateString(strings.Join(run.Inputs, ", "), TitleMaxLen))
		outputHuman("  parameters: mass window %g, peak tolerance %g, threshold %g, top-k %d\n",
			run.Params.MassWindow, run.Params.PeakTolerance, run.Params.SimilarityThreshold, run.Params.TopK)
	}
	outputHuman("%d spectra in %d clusters\n", resp.Spectra, resp.Clusters)
	for _, s := range resp.Sizes {
		title := ""
		if s.Leader < len(records) {
			title = truncateString(records[s.Leader].Title, TitleMaxLen)
		}
		outputHuman("  %6d  %5d  %s\n", s.Leader, s.Size, title)
	}
	if len(resp.Sizes) < resp.Clusters {
		outputHuman("  ... %d more clusters (use --limit 0 to show all)\n", resp.Clusters-len(resp.Sizes))
	}
	return nil
}

func runReportList(path string) error {
	if !isDatabasePath(path) {
		exitWithError(ExitError, "--runs needs a .db or .sqlite file, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	db, err := storage.OpenDB(path)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if !humanOutput {
		return outputJSON(RunsResponse{Path: path, Runs: runs})
	}
	if len(runs) == 0 {
		outputHuman("No runs in %s\n", path)
		return nil
	}
	for _, r := range runs {
		outputHuman("%4d  %s  %-7s  %d spectra -> %d clusters  (%s)\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Mode, r.Spectra, r.Clusters,
			truncateString(strings.Join(r.Inputs, ", "), TitleMaxLen))
	}
	return nil
}

// isDatabasePath reports whether path names a SQLite export.
func isDatabasePath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// reportExitCode maps a load error to an exit code.
func reportExitCode(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, storage.ErrUnsupportedFormat),
		errors.Is(err, storage.ErrRunNotFound):
		return ExitError
	default:
		return ExitDataError
	}
}
