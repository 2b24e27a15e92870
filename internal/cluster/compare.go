package cluster

import "fmt"

// Divergence summarizes how an indexed pass differs from the naive baseline
// over the same input.
type Divergence struct {
	NaiveClusters   int `json:"naive_clusters"`
	IndexedClusters int `json:"indexed_clusters"`

	// Spectra whose leader differs between the two passes
	Differing []int `json:"differing"`
}

// Identical reports whether both passes produced the same assignment.
func (d *Divergence) Identical() bool {
	return len(d.Differing) == 0
}

// Compare diffs an indexed assignment against the naive baseline.
func Compare(naive, indexed Assignment) (*Divergence, error) {
	if len(naive) != len(indexed) {
		return nil, fmt.Errorf("assignment lengths differ: naive %d, indexed %d", len(naive), len(indexed))
	}
	if err := naive.Validate(); err != nil {
		return nil, fmt.Errorf("naive: %w", err)
	}
	if err := indexed.Validate(); err != nil {
		return nil, fmt.Errorf("indexed: %w", err)
	}

	d := &Divergence{
		NaiveClusters:   naive.Count(),
		IndexedClusters: indexed.Count(),
		Differing:       []int{},
	}
	for i := range naive {
		if naive[i] != indexed[i] {
			d.Differing = append(d.Differing, i)
		}
	}
	return d, nil
}
