package cluster

import (
	"log/slog"
	"time"

	"github.com/matsen/specclust/internal/config"
	"github.com/matsen/specclust/internal/peakindex"
	"github.com/matsen/specclust/internal/similarity"
	"github.com/matsen/specclust/internal/spectrum"
)

// Mode names the candidate search strategy.
type Mode string

const (
	// ModeIndexed searches only leaders sharing a peak bucket.
	ModeIndexed Mode = "indexed"
	// ModeNaive searches every earlier spectrum's leader.
	ModeNaive Mode = "naive"
)

// Stats describes one clustering pass.
type Stats struct {
	Mode     Mode          `json:"mode"`
	Spectra  int           `json:"spectra"`
	Clusters int           `json:"clusters"`
	Duration time.Duration `json:"duration"`

	// Leaders considered, before the precursor gate
	CandidatesChecked int64 `json:"candidates_checked"`
	// Cosine computations performed (candidates that passed the precursor gate)
	SimilarityComputations int64 `json:"similarity_computations"`

	// Index size after the pass, indexed mode only
	Buckets int `json:"buckets,omitempty"`
}

// Assigner runs clustering passes with fixed parameters.
// A single Assigner may run several passes, one at a time.
type Assigner struct {
	params   config.Params
	engine   *similarity.Engine
	progress ProgressReporter
	logger   *slog.Logger
}

// NewAssigner creates an assigner for the given parameters.
func NewAssigner(p config.Params) *Assigner {
	return &Assigner{
		params: p,
		engine: similarity.NewEngine(p),
		logger: slog.New(slog.DiscardHandler),
	}
}

// SetProgressReporter sets the progress reporter for subsequent passes.
func (a *Assigner) SetProgressReporter(reporter ProgressReporter) {
	a.progress = reporter
}

// SetLogger sets the logger for subsequent passes.
func (a *Assigner) SetLogger(logger *slog.Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// Engine returns the similarity engine used for the gates.
func (a *Assigner) Engine() *similarity.Engine {
	return a.engine
}

// tryLeader applies both gates of spectrum s against leader c.
func (a *Assigner) tryLeader(s, c *spectrum.Spectrum, stats *Stats) bool {
	stats.CandidatesChecked++
	if !a.engine.PrecursorCompatible(s, c) {
		return false
	}
	stats.SimilarityComputations++
	return a.engine.Passes(s, c)
}

func (a *Assigner) report(i, total int) {
	if a.progress == nil {
		return
	}
	if (i+1)%progressStep(total) == 0 || i+1 == total {
		a.progress.OnProgress(i+1, total)
	}
}

// Cluster runs the indexed pass.
func (a *Assigner) Cluster(st *spectrum.Store) (Assignment, *Stats) {
	assignment, _, stats := a.ClusterWithIndex(st)
	return assignment, stats
}

// ClusterWithIndex runs the indexed pass and also returns the final index.
//
// For each spectrum, candidates are the leaders sharing a bucket with one of
// its first TopK peaks, tried in index order; the first that passes both
// gates wins. Spectra that match nothing become leaders and are registered.
// Absorbed spectra are never registered.
func (a *Assigner) ClusterWithIndex(st *spectrum.Store) (Assignment, *peakindex.Index, *Stats) {
	start := time.Now()
	n := st.Len()
	assignment := NewAssignment(n)
	idx := peakindex.New(a.params.PeakTolerance, a.params.TopK)
	stats := &Stats{Mode: ModeIndexed, Spectra: n}

	for i := 0; i < n; i++ {
		s := st.At(i)
		joined := false
		for _, c := range idx.Candidates(s) {
			if a.tryLeader(s, st.At(c), stats) {
				assignment[i] = c
				joined = true
				break
			}
		}
		if !joined {
			idx.Register(s, i)
		}
		a.report(i, n)
	}

	stats.Clusters = idx.Leaders()
	stats.Buckets = idx.Len()
	stats.Duration = time.Since(start)
	a.logPass(stats)
	return assignment, idx, stats
}

// ClusterNaive runs the exhaustive baseline pass.
//
// Spectrum i is tested against the leader of every earlier spectrum j in
// order, skipping leaders already tried for i. It considers a superset of
// the indexed pass's candidates and serves as its reference.
func (a *Assigner) ClusterNaive(st *spectrum.Store) (Assignment, *Stats) {
	start := time.Now()
	n := st.Len()
	assignment := NewAssignment(n)
	stats := &Stats{Mode: ModeNaive, Spectra: n}

	if n > 0 {
		a.report(0, n)
	}
	for i := 1; i < n; i++ {
		s := st.At(i)
		tried := make(map[int]struct{})
		for j := 0; j < i; j++ {
			c := assignment[j]
			if _, seen := tried[c]; seen {
				continue
			}
			if a.tryLeader(s, st.At(c), stats) {
				assignment[i] = c
				break
			}
			tried[c] = struct{}{}
		}
		a.report(i, n)
	}

	stats.Clusters = assignment.Count()
	stats.Duration = time.Since(start)
	a.logPass(stats)
	return assignment, stats
}

func (a *Assigner) logPass(stats *Stats) {
	a.logger.Debug("clustering pass complete",
		"mode", stats.Mode,
		"spectra", stats.Spectra,
		"clusters", stats.Clusters,
		"candidates_checked", stats.CandidatesChecked,
		"similarity_computations", stats.SimilarityComputations,
		"buckets", stats.Buckets,
		"duration", stats.Duration,
	)
}
