package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// MarkerReader reads recorded scan runs.
type MarkerReader struct {
	db *sql.DB
}

// NewMarkerReader creates a MarkerReader instance.
// DB should have schema already created.
func NewMarkerReader(db *sql.DB) *MarkerReader {
	return &MarkerReader{db: db}
}

var runColumns = []string{"id", "root", "started_at", "finished_at", "files", "skipped"}

// LatestRun returns the most recently written run.
// Returns (nil, nil) if nothing has been recorded.
func (r *MarkerReader) LatestRun() (*ScanRun, error) {
	row := sq.Select(runColumns...).
		From("scan_runs").
		OrderBy("rowid DESC").
		Limit(1).
		RunWith(r.db).
		QueryRow()
	return scanRun(row)
}

// Run returns the run with the given ID.
// Returns (nil, nil) if not found.
func (r *MarkerReader) Run(id string) (*ScanRun, error) {
	row := sq.Select(runColumns...).
		From("scan_runs").
		Where(sq.Eq{"id": id}).
		RunWith(r.db).
		QueryRow()
	return scanRun(row)
}

// Runs returns every run, newest first.
func (r *MarkerReader) Runs() ([]*ScanRun, error) {
	rows, err := sq.Select(runColumns...).
		From("scan_runs").
		OrderBy("rowid DESC").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []*ScanRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Markers returns the markers of a run ordered by path and line. A non-empty
// name restricts the result to that command.
func (r *MarkerReader) Markers(runID, name string) ([]MarkerRecord, error) {
	where := sq.Eq{"run_id": runID}
	if name != "" {
		where["name"] = name
	}

	rows, err := sq.Select("path", "line", "name", "args").
		From("markers").
		Where(where).
		OrderBy("path", "line", "id").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query markers for run %s: %w", runID, err)
	}
	defer rows.Close()

	markers := []MarkerRecord{}
	for rows.Next() {
		var m MarkerRecord
		var args string
		if err := rows.Scan(&m.Path, &m.Line, &m.Name, &args); err != nil {
			return nil, fmt.Errorf("failed to scan marker: %w", err)
		}
		if err := json.Unmarshal([]byte(args), &m.Args); err != nil {
			return nil, fmt.Errorf("failed to decode args for %s:%d: %w", m.Path, m.Line, err)
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

// NameCount is the number of markers for one command name.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CountByName tallies a run's markers per command, most frequent first.
func (r *MarkerReader) CountByName(runID string) ([]NameCount, error) {
	rows, err := sq.Select("name", "COUNT(*) AS n").
		From("markers").
		Where(sq.Eq{"run_id": runID}).
		GroupBy("name").
		OrderBy("n DESC", "name").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to count markers for run %s: %w", runID, err)
	}
	defer rows.Close()

	var counts []NameCount
	for rows.Next() {
		var c NameCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*ScanRun, error) {
	run := &ScanRun{}
	var startedAt, finishedAt string

	err := row.Scan(&run.ID, &run.Root, &startedAt, &finishedAt, &run.Files, &run.Skipped)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	run.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)
	return run, nil
}
