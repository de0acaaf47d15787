package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// MarkerWriter records scan runs.
type MarkerWriter struct {
	db *sql.DB
}

// NewMarkerWriter creates a MarkerWriter instance.
// DB must have schema already created via CreateSchema().
func NewMarkerWriter(db *sql.DB) *MarkerWriter {
	return &MarkerWriter{db: db}
}

// WriteRun stores the run and all of its markers in a single transaction.
// A zero FinishedAt is set to the current time.
func (w *MarkerWriter) WriteRun(run *ScanRun, markers []MarkerRecord) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	_, err = sq.Insert("scan_runs").
		Columns("id", "root", "started_at", "finished_at", "files", "skipped").
		Values(
			run.ID,
			run.Root,
			run.StartedAt.Format(time.RFC3339),
			run.FinishedAt.Format(time.RFC3339),
			run.Files,
			run.Skipped,
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert scan run %s: %w", run.ID, err)
	}

	if len(markers) > 0 {
		// Build the query once with Squirrel, then get SQL for preparation
		sqlStr, _, err := sq.Insert("markers").
			Columns("run_id", "path", "line", "name", "args").
			Values("", "", 0, "", "").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build SQL: %w", err)
		}

		stmt, err := tx.Prepare(sqlStr)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, m := range markers {
			args := m.Args
			if args == nil {
				args = []string{}
			}
			encoded, err := json.Marshal(args)
			if err != nil {
				return fmt.Errorf("failed to encode args for %s:%d: %w", m.Path, m.Line, err)
			}
			if _, err := stmt.Exec(run.ID, m.Path, m.Line, m.Name, string(encoded)); err != nil {
				return fmt.Errorf("failed to insert marker %s:%d: %w", m.Path, m.Line, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scan run: %w", err)
	}
	return nil
}

// PruneRuns deletes all but the keep most recent runs. Their markers go with
// them through the foreign key cascade. keep <= 0 keeps everything.
func (w *MarkerWriter) PruneRuns(keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	recent := sq.Select("id").From("scan_runs").OrderBy("rowid DESC").Limit(uint64(keep))
	recentSQL, recentArgs, err := recent.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL: %w", err)
	}

	res, err := sq.Delete("scan_runs").
		Where("id NOT IN ("+recentSQL+")", recentArgs...).
		RunWith(w.db).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to prune scan runs: %w", err)
	}
	return res.RowsAffected()
}
