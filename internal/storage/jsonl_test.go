package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/specclust/internal/cluster"
	"github.com/matsen/specclust/internal/spectrum"
)

// testStore creates a small store of three spectra.
func testStore(t *testing.T) *spectrum.Store {
	t.Helper()
	st, err := spectrum.NewStore([]spectrum.Spectrum{
		{Title: "scan=1", PrecursorMass: 445.1, RetentionTime: 10, Peaks: []spectrum.Peak{{MZ: 100, Intensity: 1}}},
		{Title: "scan=2", PrecursorMass: 445.3, RetentionTime: 11, Peaks: []spectrum.Peak{{MZ: 100, Intensity: 2}, {MZ: 150, Intensity: 1}}},
		{Title: "scan=3", PrecursorMass: 812.0, RetentionTime: 40},
	})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return st
}

func TestRecords(t *testing.T) {
	st := testStore(t)
	records, err := Records(st, cluster.Assignment{0, 0, 2})
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Records() returned %d records, want 3", len(records))
	}

	r := records[1]
	if r.Index != 1 || r.Title != "scan=2" || r.Leader != 0 || r.NumPeaks != 2 {
		t.Errorf("records[1] = %+v", r)
	}
	if r.IsLeader() {
		t.Error("records[1].IsLeader() = true, want false")
	}
	if !records[2].IsLeader() {
		t.Error("records[2].IsLeader() = false, want true")
	}
}

func TestRecords_LengthMismatch(t *testing.T) {
	if _, err := Records(testStore(t), cluster.Assignment{0}); err == nil {
		t.Error("Records() should fail when the assignment is shorter than the store")
	}
}

func TestWriteReadJSONL(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "assignments.jsonl")

	records, err := Records(testStore(t), cluster.Assignment{0, 0, 2})
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if err := WriteJSONL(path, records); err != nil {
		t.Fatalf("WriteJSONL() error = %v", err)
	}

	got, err := ReadJSONL(path)
	if err != nil {
		t.Fatalf("ReadJSONL() error = %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("ReadJSONL() returned %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], records[i])
		}
	}

	a, err := Assignment(got)
	if err != nil {
		t.Fatalf("Assignment() error = %v", err)
	}
	if a.Count() != 2 {
		t.Errorf("Assignment().Count() = %d, want 2", a.Count())
	}
}

func TestReadJSONL_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jsonl")
	content := `{"index":0,"title":"x","pepmass":1,"rt_seconds":0,"num_peaks":0,"leader":0}

{"index":1,"title":"y","pepmass":1,"rt_seconds":0,"num_peaks":0,"leader":0}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	records, err := ReadJSONL(path)
	if err != nil {
		t.Fatalf("ReadJSONL() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("ReadJSONL() returned %d records, want 2", len(records))
	}
}

func TestReadJSONL_InvalidLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := ReadJSONL(path); err == nil {
		t.Error("ReadJSONL() should fail on invalid JSON")
	}
}

func TestAssignment_RejectsBadRecords(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
	}{
		{"out of order", []Record{{Index: 1, Leader: 1}, {Index: 0, Leader: 0}}},
		{"forward leader", []Record{{Index: 0, Leader: 1}, {Index: 1, Leader: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Assignment(tt.records); err == nil {
				t.Error("Assignment() should fail")
			}
		})
	}
}
