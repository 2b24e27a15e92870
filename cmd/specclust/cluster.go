package main

import (
	"cmp"
	"slices"
	"time"

	"github.com/matsen/specclust/internal/cluster"
	"github.com/matsen/specclust/internal/config"
	"github.com/matsen/specclust/internal/spectrum"
	"github.com/matsen/specclust/internal/storage"
	"github.com/spf13/cobra"
)

var (
	clusterInput       inputFlags
	clusterNaive       bool
	clusterAssignments bool
	clusterSizes       bool
	clusterOut         string
	clusterNoProgress  bool
)

func init() {
	clusterCmd.Flags().BoolVar(&clusterNaive, "naive", false, "Use the exhaustive O(N^2) baseline instead of the peak index")
	clusterCmd.Flags().BoolVar(&clusterAssignments, "assignments", false, "Include the leader of every spectrum in the output")
	clusterCmd.Flags().BoolVar(&clusterSizes, "sizes", false, "Include cluster sizes, largest first")
	clusterCmd.Flags().StringVarP(&clusterOut, "out", "o", "", "Write assignments to a .jsonl or .db/.sqlite file")
	clusterCmd.Flags().BoolVar(&clusterNoProgress, "no-progress", false, "Suppress progress output")
	clusterInput.register(clusterCmd, true)
	rootCmd.AddCommand(clusterCmd)
}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Cluster spectra from MGF files",
	Long: `Cluster spectra from one or more MGF files.

Files are read in argument order and concatenated; that order is the
clustering order. By default candidates come from the peak-locality index.
Use --naive for the exhaustive baseline.

Examples:
  specclust cluster -f run1.mgf
  specclust cluster -f run1.mgf.gz -f run2.mgf.gz -t 0.8 --human
  specclust cluster -f run1.mgf --out assignments.db --sizes`,
	RunE: runCluster,
}

// ClusterResponse is the JSON output of the cluster command.
type ClusterResponse struct {
	Files       []string              `json:"files"`
	Spectra     int                   `json:"spectra"`
	Params      config.Params         `json:"params"`
	Mode        cluster.Mode          `json:"mode"`
	ReadMs      int64                 `json:"read_ms"`
	ClusterMs   int64                 `json:"cluster_ms"`
	Clusters    int                   `json:"clusters"`
	Stats       *cluster.Stats        `json:"stats"`
	Assignments []int                 `json:"assignments,omitempty"`
	Sizes       []storage.ClusterSize `json:"sizes,omitempty"`
	Output      string                `json:"output,omitempty"`
}

func runCluster(cmd *cobra.Command, args []string) error {
	if err := requireFiles(cmd, clusterInput.files); err != nil {
		return err
	}
	if err := checkOutPath(clusterOut); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	resolved := mustResolveParams(cmd)
	params := resolved.Params

	loaded := mustLoadStore(cmd, clusterInput.files)
	st := loaded.store
	if humanOutput {
		outputHuman("Reading the file took %s\n", formatDuration(loaded.duration))
		outputHuman("Using parameters: mass window %g, peak tolerance %g, threshold %g, top-k %d\n",
			params.MassWindow, params.PeakTolerance, params.SimilarityThreshold, params.TopK)
		outputHuman("Clustering %d spectra...\n", st.Len())
	}

	assigner := cluster.NewAssigner(params)
	assigner.SetLogger(logger)
	showProgress := humanOutput && !clusterNoProgress && st.Len() > 0
	if showProgress {
		assigner.SetProgressReporter(cluster.ProgressFunc(throttledProgress()))
	}

	var (
		assignment cluster.Assignment
		stats      *cluster.Stats
	)
	if clusterNaive {
		assignment, stats = assigner.ClusterNaive(st)
	} else {
		assignment, stats = assigner.Cluster(st)
	}
	if showProgress {
		clearProgress()
	}

	if clusterOut != "" {
		if err := exportAssignment(clusterOut, st, clusterInput.files, params, assignment, stats); err != nil {
			exitWithError(ExitError, "exporting assignments: %v", err)
		}
	}

	resp := ClusterResponse{
		Files:     clusterInput.files,
		Spectra:   st.Len(),
		Params:    params,
		Mode:      stats.Mode,
		ReadMs:    loaded.duration.Milliseconds(),
		ClusterMs: stats.Duration.Milliseconds(),
		Clusters:  stats.Clusters,
		Stats:     stats,
		Output:    clusterOut,
	}
	if clusterAssignments {
		resp.Assignments = assignment
	}
	if clusterSizes {
		resp.Sizes = sizesBySize(assignment)
	}

	if !humanOutput {
		return outputJSON(resp)
	}
	printClusterHuman(resp)
	return nil
}

// checkOutPath validates --out before any input is read.
func checkOutPath(path string) error {
	if path == "" {
		return nil
	}
	return storage.SupportedFormat(path)
}

// exportAssignment writes the assignment to path as a new run.
func exportAssignment(path string, st *spectrum.Store, files []string, params config.Params, a cluster.Assignment, stats *cluster.Stats) error {
	records, err := storage.Records(st, a)
	if err != nil {
		return err
	}
	run := storage.Run{
		CreatedAt:  time.Now().UTC(),
		Mode:       stats.Mode,
		Params:     params,
		Inputs:     files,
		Spectra:    stats.Spectra,
		Clusters:   stats.Clusters,
		DurationMs: stats.Duration.Milliseconds(),
	}
	if err := storage.Export(path, run, records); err != nil {
		return err
	}
	logger.Debug("exported assignments", "path", path, "records", len(records))
	return nil
}

// sizesBySize returns cluster sizes, largest first, ties by leader index.
func sizesBySize(a cluster.Assignment) []storage.ClusterSize {
	groups := a.Groups()
	sizes := make([]storage.ClusterSize, len(groups))
	for i, g := range groups {
		sizes[i] = storage.ClusterSize{Leader: g.Leader, Size: g.Size()}
	}
	slices.SortStableFunc(sizes, func(x, y storage.ClusterSize) int {
		if c := cmp.Compare(y.Size, x.Size); c != 0 {
			return c
		}
		return cmp.Compare(x.Leader, y.Leader)
	})
	return sizes
}

func printClusterHuman(resp ClusterResponse) {
	outputHuman("Clustering took %s\n", formatDuration(time.Duration(resp.ClusterMs)*time.Millisecond))
	outputHuman("The %d spectra could be clustered into %d clusters\n", resp.Spectra, resp.Clusters)
	if resp.Stats != nil {
		outputHuman("  mode: %s, candidates checked: %d, similarity computations: %d\n",
			resp.Stats.Mode, resp.Stats.CandidatesChecked, resp.Stats.SimilarityComputations)
	}
	if resp.Output != "" {
		outputHuman("Assignments written to %s\n", resp.Output)
	}

	if len(resp.Sizes) > 0 {
		outputHuman("\nCluster sizes:\n")
		for _, s := range resp.Sizes {
			outputHuman("  %6d: %d\n", s.Leader, s.Size)
		}
	}

	if len(resp.Assignments) > 0 {
		outputHuman("\nAssignments:\n")
		for i, leader := range resp.Assignments {
			marker := ""
			if i == leader {
				marker = " (leader)"
			}
			outputHuman("  %6d -> %d%s\n", i, leader, marker)
		}
	}
}
