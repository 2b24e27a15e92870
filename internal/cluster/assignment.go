// Package cluster implements greedy single-pass clustering of spectra.
//
// Both assigners visit spectra in input order and put each one into the
// first existing cluster whose leader passes the precursor and similarity
// gates, or make it the leader of a new cluster. The result depends on
// input order: reordering the input can change which spectrum leads a
// cluster and, when the gates are not transitive, the clusters themselves.
package cluster

import (
	"errors"
	"fmt"
)

// ErrInvalidAssignment is wrapped by Validate failures.
var ErrInvalidAssignment = errors.New("invalid assignment")

// Assignment maps each spectrum index to the index of its cluster leader.
// Leaders map to themselves.
type Assignment []int

// NewAssignment returns the identity assignment for n spectra.
func NewAssignment(n int) Assignment {
	a := make(Assignment, n)
	for i := range a {
		a[i] = i
	}
	return a
}

// Validate checks that every entry points at itself or at an earlier leader.
func (a Assignment) Validate() error {
	for i, r := range a {
		if r < 0 || r > i {
			return fmt.Errorf("%w: spectrum %d assigned to %d", ErrInvalidAssignment, i, r)
		}
		if a[r] != r {
			return fmt.Errorf("%w: spectrum %d assigned to %d, which is not a leader", ErrInvalidAssignment, i, r)
		}
	}
	return nil
}

// Count returns the number of clusters.
func (a Assignment) Count() int {
	n := 0
	for i, r := range a {
		if r == i {
			n++
		}
	}
	return n
}

// Leaders returns the leader indices in ascending order.
func (a Assignment) Leaders() []int {
	leaders := make([]int, 0)
	for i, r := range a {
		if r == i {
			leaders = append(leaders, i)
		}
	}
	return leaders
}

// Group is one cluster and its members in input order (leader first).
type Group struct {
	Leader  int   `json:"leader"`
	Members []int `json:"members"`
}

// Size returns the number of members, including the leader.
func (g Group) Size() int {
	return len(g.Members)
}

// Groups returns all clusters ordered by leader index.
func (a Assignment) Groups() []Group {
	pos := make(map[int]int)
	var groups []Group
	for i, r := range a {
		gi, ok := pos[r]
		if !ok {
			gi = len(groups)
			pos[r] = gi
			groups = append(groups, Group{Leader: r})
		}
		groups[gi].Members = append(groups[gi].Members, i)
	}
	return groups
}
