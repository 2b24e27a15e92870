package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/matsen/specclust/internal/storage"
)

func TestIsDatabasePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"runs.db", true},
		{"RUNS.SQLITE", true},
		{"out/runs.sqlite3", true},
		{"assignments.jsonl", false},
		{"db", false},
	}
	for _, tt := range tests {
		if got := isDatabasePath(tt.path); got != tt.want {
			t.Errorf("isDatabasePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestReportExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", storage.ErrRunNotFound), ExitError},
		{fmt.Errorf("wrap: %w", storage.ErrUnsupportedFormat), ExitError},
		{errors.New("parsing line 3: bad json"), ExitDataError},
	}
	for _, tt := range tests {
		if got := reportExitCode(tt.err); got != tt.want {
			t.Errorf("reportExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
