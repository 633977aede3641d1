package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/terrane-data/curvetrace/internal/timeutil"
)

// ErrNotFound is wrapped into lookup errors when no row matches.
var ErrNotFound = errors.New("not found")

// DetectionRun records one execution of the trend detector: where the
// points came from, the parameters used, and summary counts. The lines
// themselves live in trend_lines keyed by RunID.
type DetectionRun struct {
	RunID      string          `json:"run_id"`
	Source     string          `json:"source"`
	Params     json.RawMessage `json:"params,omitempty"`
	PointCount int             `json:"point_count"`
	EdgeCount  int             `json:"edge_count"`
	LineCount  int             `json:"line_count"`
	DurationMS int64           `json:"duration_ms"`
	CreatedAt  int64           `json:"created_at"`
}

// RunStore provides persistence for detection run records.
type RunStore struct {
	db    *DB
	clock timeutil.Clock
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db, clock: timeutil.RealClock{}}
}

// Insert persists a new detection run. If RunID is empty, a UUID is
// generated; if CreatedAt is zero, the current time is used.
func (s *RunStore) Insert(run *DetectionRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}

	var paramsStr interface{}
	if len(run.Params) > 0 {
		paramsStr = string(run.Params)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO detection_runs (
				run_id, source, params_json,
				point_count, edge_count, line_count,
				duration_ms, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Source, paramsStr,
			run.PointCount, run.EdgeCount, run.LineCount,
			run.DurationMS, run.CreatedAt,
		)
		return err
	})
}

// Get returns a single detection run by ID.
func (s *RunStore) Get(runID string) (*DetectionRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, source, params_json,
		       point_count, edge_count, line_count,
		       duration_ms, created_at
		FROM detection_runs
		WHERE run_id = ?`, runID)

	var r DetectionRun
	var paramsStr sql.NullString
	err := row.Scan(
		&r.RunID, &r.Source, &paramsStr,
		&r.PointCount, &r.EdgeCount, &r.LineCount,
		&r.DurationMS, &r.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if paramsStr.Valid {
		r.Params = json.RawMessage(paramsStr.String)
	}
	return &r, nil
}

// List returns detection runs ordered by creation time descending.
// A limit of 0 or less returns all runs.
func (s *RunStore) List(limit int) ([]*DetectionRun, error) {
	query := `
		SELECT run_id, source, params_json,
		       point_count, edge_count, line_count,
		       duration_ms, created_at
		FROM detection_runs
		ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*DetectionRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Delete removes a detection run and all of its lines. The lines are
// deleted explicitly in the same transaction rather than relying on the
// foreign key cascade, so the operation holds on connections opened
// without the foreign_keys pragma.
func (s *RunStore) Delete(runID string) error {
	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin delete: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM trend_lines WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("delete run lines: %w", err)
		}

		result, err := tx.Exec(`DELETE FROM detection_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}

		return tx.Commit()
	})
}

// scanRun scans a detection run row from a sql.Rows cursor.
func scanRun(rows *sql.Rows) (*DetectionRun, error) {
	var r DetectionRun
	var paramsStr sql.NullString
	err := rows.Scan(
		&r.RunID, &r.Source, &paramsStr,
		&r.PointCount, &r.EdgeCount, &r.LineCount,
		&r.DurationMS, &r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run row: %w", err)
	}
	if paramsStr.Valid {
		r.Params = json.RawMessage(paramsStr.String)
	}
	return &r, nil
}
