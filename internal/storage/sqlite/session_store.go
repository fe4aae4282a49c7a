package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one persisted analysis run: who kicked, how many frames,
// and the headline outcome. Detailed per-kick rows hang off it in the
// kicks table.
type Session struct {
	SessionID    string  `json:"session_id"`
	CreatedAtNs  int64   `json:"created_at_ns"`
	Athlete      string  `json:"athlete,omitempty"`
	FPS          float64 `json:"fps"`
	FrameCount   int     `json:"frame_count"`
	Status       string  `json:"status"`
	KickType     string  `json:"kick_type,omitempty"`
	OverallScore float64 `json:"overall_score"`
	Grade        string  `json:"grade,omitempty"`
}

// SessionStore provides persistence for analysis sessions.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// InsertSession creates or replaces a session row. If SessionID is
// empty a new UUID is generated; if CreatedAtNs is zero the current
// time is stamped.
func (s *SessionStore) InsertSession(session *Session) error {
	if session.SessionID == "" {
		session.SessionID = uuid.New().String()
	}
	if session.CreatedAtNs == 0 {
		session.CreatedAtNs = time.Now().UnixNano()
	}

	query := `
		INSERT INTO sessions (
			session_id, created_at_ns, athlete, fps, frame_count,
			status, kick_type, overall_score, grade
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			athlete = excluded.athlete,
			fps = excluded.fps,
			frame_count = excluded.frame_count,
			status = excluded.status,
			kick_type = excluded.kick_type,
			overall_score = excluded.overall_score,
			grade = excluded.grade
	`

	_, err := s.db.Exec(query,
		session.SessionID,
		session.CreatedAtNs,
		nullString(session.Athlete),
		session.FPS,
		session.FrameCount,
		session.Status,
		nullString(session.KickType),
		session.OverallScore,
		nullString(session.Grade),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID.
func (s *SessionStore) GetSession(sessionID string) (*Session, error) {
	query := `
		SELECT session_id, created_at_ns, athlete, fps, frame_count,
		       status, kick_type, overall_score, grade
		FROM sessions
		WHERE session_id = ?
	`

	var session Session
	var athlete, kickType, grade sql.NullString

	err := s.db.QueryRow(query, sessionID).Scan(
		&session.SessionID,
		&session.CreatedAtNs,
		&athlete,
		&session.FPS,
		&session.FrameCount,
		&session.Status,
		&kickType,
		&session.OverallScore,
		&grade,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	session.Athlete = athlete.String
	session.KickType = kickType.String
	session.Grade = grade.String

	return &session, nil
}

// ListSessions retrieves sessions newest first, optionally filtered by
// athlete. limit <= 0 means no limit.
func (s *SessionStore) ListSessions(athlete string, limit int) ([]*Session, error) {
	query := `
		SELECT session_id, created_at_ns, athlete, fps, frame_count,
		       status, kick_type, overall_score, grade
		FROM sessions
	`
	var args []interface{}
	if athlete != "" {
		query += " WHERE athlete = ?"
		args = append(args, athlete)
	}
	query += " ORDER BY created_at_ns DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var session Session
		var ath, kickType, grade sql.NullString

		err := rows.Scan(
			&session.SessionID,
			&session.CreatedAtNs,
			&ath,
			&session.FPS,
			&session.FrameCount,
			&session.Status,
			&kickType,
			&session.OverallScore,
			&grade,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}

		session.Athlete = ath.String
		session.KickType = kickType.String
		session.Grade = grade.String

		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions rows: %w", err)
	}

	return sessions, nil
}

// DeleteSession removes a session and, via foreign keys, its kicks and
// frame metrics.
func (s *SessionStore) DeleteSession(sessionID string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
