package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matsen/specclust/internal/cluster"
	"github.com/matsen/specclust/internal/config"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Run describes one clustering pass stored in the database.
type Run struct {
	ID         int64         `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	Mode       cluster.Mode  `json:"mode"`
	Params     config.Params `json:"params"`
	Inputs     []string      `json:"inputs"`
	Spectra    int           `json:"spectra"`
	Clusters   int           `json:"clusters"`
	DurationMs int64         `json:"duration_ms"`
}

// ClusterSize is a leader and the number of spectra in its cluster.
type ClusterSize struct {
	Leader int `json:"leader"`
	Size   int `json:"size"`
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at INTEGER NOT NULL,
			mode TEXT NOT NULL,
			params_json TEXT NOT NULL,
			inputs_json TEXT NOT NULL,
			spectra INTEGER NOT NULL,
			clusters INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS assignments (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			idx INTEGER NOT NULL,
			title TEXT,
			pepmass REAL NOT NULL,
			rt_seconds REAL NOT NULL,
			num_peaks INTEGER NOT NULL,
			leader INTEGER NOT NULL,
			PRIMARY KEY (run_id, idx)
		);

		CREATE INDEX IF NOT EXISTS idx_assignments_leader ON assignments(run_id, leader);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveRun stores a run and its records in one transaction and returns the run ID.
func (d *DB) SaveRun(run Run, records []Record) (int64, error) {
	paramsJSON, err := json.Marshal(run.Params)
	if err != nil {
		return 0, fmt.Errorf("marshaling params: %w", err)
	}
	inputsJSON, err := json.Marshal(run.Inputs)
	if err != nil {
		return 0, fmt.Errorf("marshaling inputs: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (created_at, mode, params_json, inputs_json, spectra, clusters, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.CreatedAt.Unix(), string(run.Mode), string(paramsJSON), string(inputsJSON),
		run.Spectra, run.Clusters, run.DurationMs)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting run id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO assignments (run_id, idx, title, pepmass, rt_seconds, num_peaks, leader)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing assignment insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(runID, r.Index, r.Title, r.PrecursorMass, r.RetentionTime, r.NumPeaks, r.Leader); err != nil {
			return 0, fmt.Errorf("inserting assignment %d: %w", r.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// GetRun retrieves a run by ID.
func (d *DB) GetRun(id int64) (*Run, error) {
	var (
		run                    Run
		createdAt              int64
		mode                   string
		paramsJSON, inputsJSON string
	)
	err := d.db.QueryRow(`
		SELECT id, created_at, mode, params_json, inputs_json, spectra, clusters, duration_ms
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &createdAt, &mode, &paramsJSON, &inputsJSON, &run.Spectra, &run.Clusters, &run.DurationMs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying run %d: %w", id, err)
	}

	run.CreatedAt = time.Unix(createdAt, 0)
	run.Mode = cluster.Mode(mode)
	if err := json.Unmarshal([]byte(paramsJSON), &run.Params); err != nil {
		return nil, fmt.Errorf("unmarshaling params: %w", err)
	}
	if err := json.Unmarshal([]byte(inputsJSON), &run.Inputs); err != nil {
		return nil, fmt.Errorf("unmarshaling inputs: %w", err)
	}
	return &run, nil
}

// Records returns a run's records in index order.
func (d *DB) Records(runID int64) ([]Record, error) {
	rows, err := d.db.Query(`
		SELECT idx, title, pepmass, rt_seconds, num_peaks, leader
		FROM assignments WHERE run_id = ? ORDER BY idx
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying assignments: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var title sql.NullString
		if err := rows.Scan(&r.Index, &title, &r.PrecursorMass, &r.RetentionTime, &r.NumPeaks, &r.Leader); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		r.Title = title.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListRuns returns every stored run in ID order.
func (d *DB) ListRuns() ([]Run, error) {
	rows, err := d.db.Query(`SELECT id FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning run id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	runs := make([]Run, 0, len(ids))
	for _, id := range ids {
		run, err := d.GetRun(id)
		if err != nil {
			return nil, err
		}
		if run != nil {
			runs = append(runs, *run)
		}
	}
	return runs, nil
}

// LatestRunID returns the highest run ID, or 0 if the database has no runs.
func (d *DB) LatestRunID() (int64, error) {
	var id sql.NullInt64
	if err := d.db.QueryRow(`SELECT MAX(id) FROM runs`).Scan(&id); err != nil {
		return 0, fmt.Errorf("querying latest run: %w", err)
	}
	return id.Int64, nil
}
