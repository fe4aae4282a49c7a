package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/dojang-data/kick.report/internal/pose/pipeline"
)

// MetricStore persists the per-frame kinematic trace of a session for
// the debug charts.
type MetricStore struct {
	db *sql.DB
}

// NewMetricStore creates a new MetricStore.
func NewMetricStore(db *sql.DB) *MetricStore {
	return &MetricStore{db: db}
}

// InsertFrameMetrics writes a session's full trace in one transaction,
// keyed by (session_id, frame_idx). Re-inserting replaces rows.
func (s *MetricStore) InsertFrameMetrics(sessionID string, metrics []pipeline.FrameMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin metrics transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO kick_frame_metrics (
			session_id, frame_idx, knee_angle, hip_flexion, kick_height, foot_speed
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, frame_idx) DO UPDATE SET
			knee_angle = excluded.knee_angle,
			hip_flexion = excluded.hip_flexion,
			kick_height = excluded.kick_height,
			foot_speed = excluded.foot_speed
	`)
	if err != nil {
		return fmt.Errorf("prepare metrics insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range metrics {
		_, err := stmt.Exec(sessionID, m.FrameIndex, m.KneeAngle, m.HipFlexion, m.KickHeight, m.FootSpeed)
		if err != nil {
			return fmt.Errorf("insert frame metric %d: %w", m.FrameIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit metrics transaction: %w", err)
	}

	return nil
}

// ListFrameMetrics retrieves a session's trace in frame order.
func (s *MetricStore) ListFrameMetrics(sessionID string) ([]pipeline.FrameMetric, error) {
	rows, err := s.db.Query(`
		SELECT frame_idx, knee_angle, hip_flexion, kick_height, foot_speed
		FROM kick_frame_metrics
		WHERE session_id = ?
		ORDER BY frame_idx ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list frame metrics: %w", err)
	}
	defer rows.Close()

	var metrics []pipeline.FrameMetric
	for rows.Next() {
		var m pipeline.FrameMetric
		if err := rows.Scan(&m.FrameIndex, &m.KneeAngle, &m.HipFlexion, &m.KickHeight, &m.FootSpeed); err != nil {
			return nil, fmt.Errorf("scan frame metric row: %w", err)
		}
		metrics = append(metrics, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list frame metrics rows: %w", err)
	}

	return metrics, nil
}
