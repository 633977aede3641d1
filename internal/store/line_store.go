package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/terrane-data/curvetrace/internal/timeutil"
	"github.com/terrane-data/curvetrace/internal/trend"
)

// LineGeometry is the JSON payload stored per line: vertex indices in path
// order, the matching [x,y,z] coordinates, and the per-vertex values.
type LineGeometry struct {
	Vertices []int        `json:"vertices"`
	Coords   [][3]float64 `json:"coords"`
	Values   []float64    `json:"values,omitempty"`
}

// StoredLine is one persisted trend line with its summary stats and
// geometry. LineIndex preserves the detector's output order within a run.
type StoredLine struct {
	LineID      string          `json:"line_id"`
	RunID       string          `json:"run_id"`
	LineIndex   int             `json:"line_index"`
	Label       float64         `json:"label,omitempty"`
	VertexCount int             `json:"vertex_count"`
	Length      float64         `json:"length"`
	Sinuosity   float64         `json:"sinuosity"`
	MeanAzimuth float64         `json:"mean_azimuth"`
	Geometry    json.RawMessage `json:"geometry"`
	CreatedAt   int64           `json:"created_at"`
}

// NewStoredLine builds a StoredLine from detector output, computing the
// summary stats and encoding the geometry payload.
func NewStoredLine(runID string, index int, line trend.TrendLine) (*StoredLine, error) {
	geom := LineGeometry{
		Vertices: line.Vertices,
		Coords:   make([][3]float64, len(line.Points)),
		Values:   line.Values(),
	}
	for i, p := range line.Points {
		geom.Coords[i] = [3]float64{p.X, p.Y, p.Z}
	}
	geomJSON, err := json.Marshal(geom)
	if err != nil {
		return nil, fmt.Errorf("encode line geometry: %w", err)
	}

	stats := trend.ComputeStats(line)
	return &StoredLine{
		RunID:       runID,
		LineIndex:   index,
		Label:       line.Label,
		VertexCount: stats.VertexCount,
		Length:      stats.Length,
		Sinuosity:   stats.Sinuosity,
		MeanAzimuth: stats.MeanAzimuth,
		Geometry:    geomJSON,
	}, nil
}

// DecodeGeometry unpacks the stored geometry payload.
func (l *StoredLine) DecodeGeometry() (LineGeometry, error) {
	var g LineGeometry
	if err := json.Unmarshal(l.Geometry, &g); err != nil {
		return g, fmt.Errorf("decode line geometry: %w", err)
	}
	return g, nil
}

// LineStore provides persistence for trend lines.
type LineStore struct {
	db    *DB
	clock timeutil.Clock
}

// NewLineStore creates a new LineStore.
func NewLineStore(db *DB) *LineStore {
	return &LineStore{db: db, clock: timeutil.RealClock{}}
}

// InsertBatch persists all lines of one run in a single transaction,
// preserving detector output order as line_index. It returns the stored
// records with their generated IDs.
func (s *LineStore) InsertBatch(runID string, lines []trend.TrendLine) ([]*StoredLine, error) {
	stored := make([]*StoredLine, len(lines))
	now := s.clock.Now().UnixNano()
	for i, line := range lines {
		sl, err := NewStoredLine(runID, i, line)
		if err != nil {
			return nil, err
		}
		sl.LineID = uuid.New().String()
		sl.CreatedAt = now
		stored[i] = sl
	}

	err := retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin insert: %w", err)
		}
		defer tx.Rollback()

		stmt, err := tx.Prepare(`
			INSERT INTO trend_lines (
				line_id, run_id, line_index, label,
				vertex_count, length, sinuosity, mean_azimuth,
				geometry_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, sl := range stored {
			_, err := stmt.Exec(
				sl.LineID, sl.RunID, sl.LineIndex, sl.Label,
				sl.VertexCount, sl.Length, sl.Sinuosity, sl.MeanAzimuth,
				string(sl.Geometry), sl.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert line %d: %w", sl.LineIndex, err)
			}
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ListByRun returns all lines of a run in detector output order.
func (s *LineStore) ListByRun(runID string) ([]*StoredLine, error) {
	rows, err := s.db.Query(`
		SELECT line_id, run_id, line_index, label,
		       vertex_count, length, sinuosity, mean_azimuth,
		       geometry_json, created_at
		FROM trend_lines
		WHERE run_id = ?
		ORDER BY line_index ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()

	var lines []*StoredLine
	for rows.Next() {
		l, err := scanStoredLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// scanStoredLine scans a trend line row from a sql.Rows cursor.
func scanStoredLine(rows *sql.Rows) (*StoredLine, error) {
	var l StoredLine
	var geomStr string
	err := rows.Scan(
		&l.LineID, &l.RunID, &l.LineIndex, &l.Label,
		&l.VertexCount, &l.Length, &l.Sinuosity, &l.MeanAzimuth,
		&geomStr, &l.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan line row: %w", err)
	}
	l.Geometry = json.RawMessage(geomStr)
	return &l, nil
}
