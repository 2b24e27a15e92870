package main

import (
	"strconv"
	"strings"

	"github.com/matsen/specclust/internal/cluster"
	"github.com/matsen/specclust/internal/peakindex"
	"github.com/spf13/cobra"
)

var (
	bucketsInput inputFlags
	bucketsLimit int
)

func init() {
	bucketsCmd.Flags().IntVar(&bucketsLimit, "limit", DefaultListLimit, "Maximum buckets to show (0 for all)")
	bucketsInput.register(bucketsCmd, true)
	rootCmd.AddCommand(bucketsCmd)
}

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "Dump the peak-locality index after clustering",
	Long: `Run the indexed clustering pass and print the resulting index: for each
bucket key (floor(m/z / peak tolerance)) the cluster leaders registered
under it, in registration order.`,
	RunE: runBuckets,
}

// BucketsResponse is the JSON output of the buckets command.
type BucketsResponse struct {
	Spectra    int                `json:"spectra"`
	Leaders    int                `json:"leaders"`
	BinWidth   float64            `json:"bin_width"`
	TopK       int                `json:"top_k"`
	Total      int                `json:"total"`
	IndexBytes uint64             `json:"index_bytes"`
	Buckets    []peakindex.Bucket `json:"buckets"`
}

func runBuckets(cmd *cobra.Command, args []string) error {
	if err := requireFiles(cmd, bucketsInput.files); err != nil {
		return err
	}
	params := mustResolveParams(cmd).Params
	st := mustLoadStore(cmd, bucketsInput.files).store

	assigner := cluster.NewAssigner(params)
	assigner.SetLogger(logger)
	_, idx, stats := assigner.ClusterWithIndex(st)

	buckets := idx.Buckets()
	total := len(buckets)
	if bucketsLimit > 0 && bucketsLimit < total {
		buckets = buckets[:bucketsLimit]
	}

	resp := BucketsResponse{
		Spectra:    stats.Spectra,
		Leaders:    idx.Leaders(),
		BinWidth:   params.PeakTolerance,
		TopK:       params.TopK,
		Total:      total,
		IndexBytes: idx.SizeInBytes(),
		Buckets:    buckets,
	}
	if !humanOutput {
		return outputJSON(resp)
	}

	outputHuman("%d buckets over %d leaders (%d spectra), index size %s\n",
		resp.Total, resp.Leaders, resp.Spectra, formatBytes(resp.IndexBytes))
	for _, b := range buckets {
		outputHuman("  %8d [%.4f): %s\n", b.Key, b.LowMZ, formatLeaders(b.Leaders))
	}
	if len(buckets) < total {
		outputHuman("  ... %d more buckets (use --limit 0 to show all)\n", total-len(buckets))
	}
	return nil
}

// formatLeaders joins leader indices with spaces.
func formatLeaders(leaders []int) string {
	parts := make([]string, len(leaders))
	for i, l := range leaders {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, " ")
}
