// Package storage exports clustering results as JSONL or SQLite.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/specclust/internal/cluster"
	"github.com/matsen/specclust/internal/spectrum"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// Record is one spectrum's cluster assignment with identifying metadata.
type Record struct {
	Index         int     `json:"index"`
	Title         string  `json:"title"`
	PrecursorMass float64 `json:"pepmass"`
	RetentionTime float64 `json:"rt_seconds"`
	NumPeaks      int     `json:"num_peaks"`
	Leader        int     `json:"leader"`
}

// IsLeader reports whether the spectrum leads its cluster.
func (r Record) IsLeader() bool {
	return r.Index == r.Leader
}

// Records pairs every spectrum in st with its leader from a.
func Records(st *spectrum.Store, a cluster.Assignment) ([]Record, error) {
	if st.Len() != len(a) {
		return nil, fmt.Errorf("assignment covers %d spectra, store has %d", len(a), st.Len())
	}
	records := make([]Record, st.Len())
	for i := range records {
		s := st.At(i)
		records[i] = Record{
			Index:         i,
			Title:         s.Title,
			PrecursorMass: s.PrecursorMass,
			RetentionTime: s.RetentionTime,
			NumPeaks:      s.NumPeaks(),
			Leader:        a[i],
		}
	}
	return records, nil
}

// WriteJSONL writes all records to a JSONL file, replacing existing content.
func WriteJSONL(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating assignments file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}

		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing assignments file: %w", err)
	}
	return f.Close()
}

// ReadJSONL reads all records from a JSONL file.
func ReadJSONL(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening assignments file: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading assignments file: %w", err)
	}

	return records, nil
}

// Assignment rebuilds the assignment array from records in index order.
func Assignment(records []Record) (cluster.Assignment, error) {
	a := make(cluster.Assignment, len(records))
	for i, r := range records {
		if r.Index != i {
			return nil, fmt.Errorf("record %d has index %d", i, r.Index)
		}
		a[i] = r.Leader
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
