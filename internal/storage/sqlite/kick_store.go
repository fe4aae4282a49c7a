package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/dojang-data/kick.report/internal/pose/l4phases"
)

// KickRow is the persisted flattening of one kick instance. The nested
// stats and ranked classification collapse to the columns the report
// queries actually need.
type KickRow struct {
	SessionID        string  `json:"session_id"`
	Seq              int     `json:"seq"`
	KickID           string  `json:"kick_id"`
	Side             string  `json:"side"`
	StartFrame       int     `json:"start_frame"`
	EndFrame         int     `json:"end_frame"`
	ChamberSecs      float64 `json:"chamber_secs"`
	ExtensionSecs    float64 `json:"extension_secs"`
	RetractionSecs   float64 `json:"retraction_secs"`
	TotalSecs        float64 `json:"total_secs"`
	KneeAngleMin     float64 `json:"knee_angle_min"`
	KneeAngleMax     float64 `json:"knee_angle_max"`
	KneeAngleAvg     float64 `json:"knee_angle_avg"`
	HipFlexionAvg    float64 `json:"hip_flexion_avg"`
	KickHeightMax    float64 `json:"kick_height_max"`
	PeakVelocity     float64 `json:"peak_velocity"`
	HipRotationDelta float64 `json:"hip_rotation_delta"`
	Curvature        float64 `json:"curvature"`
	Form             float64 `json:"form_score"`
	Power            float64 `json:"power_score"`
	Balance          float64 `json:"balance_score"`
	Overall          float64 `json:"overall_score"`
	Archetype        string  `json:"archetype"`
	Confidence       float64 `json:"confidence"`
	Ambiguous        bool    `json:"ambiguous"`
	TimedOut         bool    `json:"timed_out"`
}

// KickStore provides persistence for kick instances within a session.
type KickStore struct {
	db *sql.DB
}

// NewKickStore creates a new KickStore.
func NewKickStore(db *sql.DB) *KickStore {
	return &KickStore{db: db}
}

// InsertKicks writes all kicks of a session in one transaction, keyed
// by (session_id, seq). Re-inserting the same session replaces rows.
func (s *KickStore) InsertKicks(sessionID string, kicks []*l4phases.KickInstance) error {
	if len(kicks) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin kicks transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO kicks (
			session_id, seq, kick_id, side, start_frame, end_frame,
			chamber_secs, extension_secs, retraction_secs, total_secs,
			knee_angle_min, knee_angle_max, knee_angle_avg,
			hip_flexion_avg, kick_height_max,
			peak_velocity, hip_rotation_delta, curvature,
			form_score, power_score, balance_score, overall_score,
			archetype, confidence, ambiguous, timed_out
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, seq) DO UPDATE SET
			kick_id = excluded.kick_id,
			side = excluded.side,
			start_frame = excluded.start_frame,
			end_frame = excluded.end_frame,
			chamber_secs = excluded.chamber_secs,
			extension_secs = excluded.extension_secs,
			retraction_secs = excluded.retraction_secs,
			total_secs = excluded.total_secs,
			knee_angle_min = excluded.knee_angle_min,
			knee_angle_max = excluded.knee_angle_max,
			knee_angle_avg = excluded.knee_angle_avg,
			hip_flexion_avg = excluded.hip_flexion_avg,
			kick_height_max = excluded.kick_height_max,
			peak_velocity = excluded.peak_velocity,
			hip_rotation_delta = excluded.hip_rotation_delta,
			curvature = excluded.curvature,
			form_score = excluded.form_score,
			power_score = excluded.power_score,
			balance_score = excluded.balance_score,
			overall_score = excluded.overall_score,
			archetype = excluded.archetype,
			confidence = excluded.confidence,
			ambiguous = excluded.ambiguous,
			timed_out = excluded.timed_out
	`

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("prepare kicks insert: %w", err)
	}
	defer stmt.Close()

	for seq, k := range kicks {
		confidence := 0.0
		if len(k.Classification.Ranked) > 0 {
			confidence = k.Classification.Ranked[0].Confidence
		}

		_, err := stmt.Exec(
			sessionID, seq, k.ID, string(k.Side), k.StartFrame, k.EndFrame,
			k.ChamberTimeSecs, k.ExtensionTimeSecs, k.RetractionTimeSecs, k.TotalTimeSecs,
			k.KneeAngle.Min, k.KneeAngle.Max, k.KneeAngle.Avg,
			k.HipFlexion.Avg, k.KickHeight.Max,
			k.PeakVelocity, k.HipRotationDelta, k.Curvature,
			k.Scores.Form, k.Scores.Power, k.Scores.Balance, k.Scores.Overall,
			k.Classification.Best, confidence, k.Classification.Ambiguous, k.TimedOut,
		)
		if err != nil {
			return fmt.Errorf("insert kick %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit kicks transaction: %w", err)
	}

	return nil
}

// ListKicks retrieves all kicks for a session in stream order.
func (s *KickStore) ListKicks(sessionID string) ([]*KickRow, error) {
	query := `
		SELECT session_id, seq, kick_id, side, start_frame, end_frame,
		       chamber_secs, extension_secs, retraction_secs, total_secs,
		       knee_angle_min, knee_angle_max, knee_angle_avg,
		       hip_flexion_avg, kick_height_max,
		       peak_velocity, hip_rotation_delta, curvature,
		       form_score, power_score, balance_score, overall_score,
		       archetype, confidence, ambiguous, timed_out
		FROM kicks
		WHERE session_id = ?
		ORDER BY seq ASC
	`

	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list kicks: %w", err)
	}
	defer rows.Close()

	var kicks []*KickRow
	for rows.Next() {
		var k KickRow
		err := rows.Scan(
			&k.SessionID, &k.Seq, &k.KickID, &k.Side, &k.StartFrame, &k.EndFrame,
			&k.ChamberSecs, &k.ExtensionSecs, &k.RetractionSecs, &k.TotalSecs,
			&k.KneeAngleMin, &k.KneeAngleMax, &k.KneeAngleAvg,
			&k.HipFlexionAvg, &k.KickHeightMax,
			&k.PeakVelocity, &k.HipRotationDelta, &k.Curvature,
			&k.Form, &k.Power, &k.Balance, &k.Overall,
			&k.Archetype, &k.Confidence, &k.Ambiguous, &k.TimedOut,
		)
		if err != nil {
			return nil, fmt.Errorf("scan kick row: %w", err)
		}
		kicks = append(kicks, &k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list kicks rows: %w", err)
	}

	return kicks, nil
}
