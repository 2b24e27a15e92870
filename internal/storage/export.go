package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for output paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported output format (want .jsonl, .db or .sqlite)")

// SupportedFormat returns ErrUnsupportedFormat unless path has an extension
// Export and Load understand.
func SupportedFormat(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".db", ".sqlite", ".sqlite3":
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Export writes records to path, choosing JSONL or SQLite from the extension.
// For SQLite the run is appended to any runs already in the database.
func Export(path string, run Run, records []Record) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return WriteJSONL(path, records)
	case ".db", ".sqlite", ".sqlite3":
		db, err := OpenDB(path)
		if err != nil {
			return err
		}
		defer db.Close()
		if _, err := db.SaveRun(run, records); err != nil {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ErrRunNotFound is returned by Load when the requested run does not exist.
var ErrRunNotFound = errors.New("run not found")

// Load reads exported records back from path. For SQLite, runID selects the
// run and 0 means the latest one. JSONL files carry no run metadata, so the
// returned run is nil.
func Load(path string, runID int64) (*Run, []Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		records, err := ReadJSONL(path)
		if err != nil {
			return nil, nil, err
		}
		return nil, records, nil
	case ".db", ".sqlite", ".sqlite3":
		if _, err := os.Stat(path); err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		db, err := OpenDB(path)
		if err != nil {
			return nil, nil, err
		}
		defer db.Close()

		if runID == 0 {
			if runID, err = db.LatestRunID(); err != nil {
				return nil, nil, err
			}
		}
		run, err := db.GetRun(runID)
		if err != nil {
			return nil, nil, err
		}
		if run == nil {
			return nil, nil, fmt.Errorf("%w: %d in %s", ErrRunNotFound, runID, path)
		}
		records, err := db.Records(runID)
		if err != nil {
			return nil, nil, err
		}
		return run, records, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}
