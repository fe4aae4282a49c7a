package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dojang-data/kick.report/internal/config"
	"github.com/dojang-data/kick.report/internal/pose"
	"github.com/dojang-data/kick.report/internal/pose/pipeline"
	"github.com/dojang-data/kick.report/internal/storage/sqlite"
	"github.com/dojang-data/kick.report/internal/units"
	"github.com/dojang-data/kick.report/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// maxAnalyzeBodyBytes bounds the request body of /api/analyze. A
// 10-minute recording at 60fps is well under this.
const maxAnalyzeBodyBytes = 64 << 20

// Server exposes the analysis pipeline and session store over HTTP.
// db may be nil, in which case the session endpoints report 503 and
// analyze requests cannot persist.
type Server struct {
	db       *sql.DB
	sessions *sqlite.SessionStore
	kicks    *sqlite.KickStore
	metrics  *sqlite.MetricStore
	cfg      *config.TuningConfig
	units    string
}

// NewServer builds a Server on the given database handle and tuning
// config. units is the default display unit for speed fields.
func NewServer(db *sql.DB, cfg *config.TuningConfig, displayUnits string) *Server {
	s := &Server{
		db:    db,
		cfg:   cfg,
		units: displayUnits,
	}
	if db != nil {
		s.sessions = sqlite.NewSessionStore(db)
		s.kicks = sqlite.NewKickStore(db)
		s.metrics = sqlite.NewMetricStore(db)
	}
	return s
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the route table for the API surface.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", s.analyzeHandler)
	mux.HandleFunc("/api/sessions", s.listSessionsHandler)
	mux.HandleFunc("/api/sessions/", s.sessionHandler)
	mux.HandleFunc("/api/engine/params", s.showEngineParams)
	mux.HandleFunc("/api/version", s.showVersion)
	return mux
}

func (s *Server) showVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// resolveUnits picks the display unit: query param wins, then the
// server default. Returns "" and writes the error on an invalid param.
func (s *Server) resolveUnits(w http.ResponseWriter, r *http.Request) (string, bool) {
	u := r.URL.Query().Get("units")
	if u == "" {
		return s.units, true
	}
	if !units.IsValid(u) {
		s.writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid 'units' parameter: must be one of %s", units.GetValidUnitsString()))
		return "", false
	}
	return u, true
}

type analyzeRequest struct {
	FPS     float64           `json:"fps"`
	Athlete string            `json:"athlete,omitempty"`
	Frames  [][]pose.Landmark `json:"frames"`
}

type analyzeResponse struct {
	SessionID string `json:"session_id,omitempty"`
	Units     string `json:"units"`
	*pipeline.AnalysisResult
}

func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	displayUnits, ok := s.resolveUnits(w, r)
	if !ok {
		return
	}

	persist := r.URL.Query().Get("persist") == "true"
	if persist && s.db == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "Persistence not configured")
		return
	}

	var req analyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxAnalyzeBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if req.FPS <= 0 {
		s.writeJSONError(w, http.StatusBadRequest, "fps must be positive")
		return
	}
	if len(req.Frames) == 0 {
		s.writeJSONError(w, http.StatusBadRequest, "frames must not be empty")
		return
	}

	analyzer, err := pipeline.New(s.cfg, req.FPS)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Failed to build analyzer: %v", err))
		return
	}
	if persist {
		analyzer.EnableTrace()
	}

	for i, lms := range req.Frames {
		if err := r.Context().Err(); err != nil {
			return
		}
		f, err := pose.FrameFromSlice(i, float64(i)/req.FPS, lms)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Frame %d: %v", i, err))
			return
		}
		if _, err := analyzer.Process(f); err != nil {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Frame %d: %v", i, err))
			return
		}
	}
	analyzer.Flush()
	result := analyzer.Result()

	resp := analyzeResponse{Units: displayUnits, AnalysisResult: result}
	resp.PeakVelocityMps = units.ConvertSpeed(result.PeakVelocityMps, displayUnits)

	if persist {
		sessionID, err := s.persistResult(req.Athlete, analyzer, result)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to persist session: %v", err))
			return
		}
		resp.SessionID = sessionID
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write analysis result")
		return
	}
}

// persistResult stores the session summary, its kicks and the frame
// trace, returning the new session ID.
func (s *Server) persistResult(athlete string, analyzer *pipeline.Analyzer, result *pipeline.AnalysisResult) (string, error) {
	session := &sqlite.Session{
		Athlete:      athlete,
		FPS:          result.FPS,
		FrameCount:   result.FrameCount,
		Status:       string(result.Status),
		KickType:     result.KickType,
		OverallScore: result.Scores.Overall,
		Grade:        result.Grade,
	}
	if err := s.sessions.InsertSession(session); err != nil {
		return "", err
	}
	if err := s.kicks.InsertKicks(session.SessionID, result.Kicks); err != nil {
		return "", err
	}
	if err := s.metrics.InsertFrameMetrics(session.SessionID, analyzer.Trace()); err != nil {
		return "", err
	}
	return session.SessionID, nil
}

func (s *Server) listSessionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.db == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "Persistence not configured")
		return
	}

	limit := 100 // default value
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	sessions, err := s.sessions.ListSessions(r.URL.Query().Get("athlete"), limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to retrieve sessions: %v", err))
		return
	}
	if sessions == nil {
		sessions = []*sqlite.Session{}
	}

	if err := json.NewEncoder(w).Encode(sessions); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write sessions")
		return
	}
}

// sessionHandler routes /api/sessions/{id}, /api/sessions/{id}/kicks
// and /api/sessions/{id}/metrics.
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.db == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "Persistence not configured")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, sub, _ := strings.Cut(rest, "/")
	if sessionID == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing session ID")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		s.showSession(w, r, sessionID)
	case sub == "" && r.Method == http.MethodDelete:
		s.deleteSession(w, sessionID)
	case sub == "kicks" && r.Method == http.MethodGet:
		s.listSessionKicks(w, r, sessionID)
	case sub == "metrics" && r.Method == http.MethodGet:
		s.listSessionMetrics(w, sessionID)
	case sub == "" || sub == "kicks" || sub == "metrics":
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		s.writeJSONError(w, http.StatusNotFound, "Not found")
	}
}

type sessionDetail struct {
	*sqlite.Session
	Kicks []*sqlite.KickRow `json:"kicks"`
}

func (s *Server) showSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("Session not found: %s", sessionID))
		return
	}

	kicks, err := s.kicks.ListKicks(sessionID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to retrieve kicks: %v", err))
		return
	}
	if kicks == nil {
		kicks = []*sqlite.KickRow{}
	}

	if err := json.NewEncoder(w).Encode(sessionDetail{Session: session, Kicks: kicks}); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write session")
		return
	}
}

func (s *Server) deleteSession(w http.ResponseWriter, sessionID string) {
	if err := s.sessions.DeleteSession(sessionID); err != nil {
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("Session not found: %s", sessionID))
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"deleted": sessionID})
}

func (s *Server) listSessionKicks(w http.ResponseWriter, r *http.Request, sessionID string) {
	displayUnits, ok := s.resolveUnits(w, r)
	if !ok {
		return
	}

	kicks, err := s.kicks.ListKicks(sessionID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to retrieve kicks: %v", err))
		return
	}
	if kicks == nil {
		kicks = []*sqlite.KickRow{}
	}

	// Peak velocity is stored in torso lengths per second; convert to
	// metric, then to the requested display unit.
	torso := s.cfg.GetTorsoLengthMeters()
	for i := range kicks {
		kicks[i].PeakVelocity = units.ConvertSpeed(kicks[i].PeakVelocity*torso, displayUnits)
	}

	if err := json.NewEncoder(w).Encode(kicks); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write kicks")
		return
	}
}

func (s *Server) listSessionMetrics(w http.ResponseWriter, sessionID string) {
	metrics, err := s.metrics.ListFrameMetrics(sessionID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to retrieve frame metrics: %v", err))
		return
	}
	if metrics == nil {
		metrics = []pipeline.FrameMetric{}
	}

	if err := json.NewEncoder(w).Encode(metrics); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write frame metrics")
		return
	}
}

// showEngineParams reports the effective tuning values after defaults
// are applied, so a partial config file can be inspected as deployed.
func (s *Server) showEngineParams(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	params := map[string]interface{}{
		"visibility_threshold":           s.cfg.GetVisibilityThreshold(),
		"smoothing_window":               s.cfg.GetSmoothingWindow(),
		"high_motion_threshold":          s.cfg.GetHighMotionThreshold(),
		"max_hold_frames":                s.cfg.GetMaxHoldFrames(),
		"chamber_velocity_threshold":     s.cfg.GetChamberVelocityThreshold(),
		"extension_velocity_threshold":   s.cfg.GetExtensionVelocityThreshold(),
		"support_stability_threshold":    s.cfg.GetSupportStabilityThreshold(),
		"retraction_speed_fraction":      s.cfg.GetRetractionSpeedFraction(),
		"retraction_proximity_threshold": s.cfg.GetRetractionProximityThreshold(),
		"max_kick_duration_frames":       s.cfg.GetMaxKickDurationFrames(),
		"form_weight":                    s.cfg.GetFormWeight(),
		"power_weight":                   s.cfg.GetPowerWeight(),
		"balance_weight":                 s.cfg.GetBalanceWeight(),
		"reference_peak_velocity_mps":    s.cfg.GetReferencePeakVelocityMps(),
		"torso_length_meters":            s.cfg.GetTorsoLengthMeters(),
		"balance_variance_scale":         s.cfg.GetBalanceVarianceScale(),
		"lateral_deviation_scale":        s.cfg.GetLateralDeviationScale(),
		"min_classification_confidence":  s.cfg.GetMinClassificationConfidence(),
		"distance_scale":                 s.cfg.GetDistanceScale(),
		"ambiguity_epsilon":              s.cfg.GetAmbiguityEpsilon(),
		"signatures_path":                s.cfg.GetSignaturesPath(),
		"ingest_queue_depth":             s.cfg.GetIngestQueueDepth(),
		"max_gap_frames":                 s.cfg.GetMaxGapFrames(),
		"units":                          s.units,
	}

	if err := json.NewEncoder(w).Encode(params); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write engine params")
		return
	}
}
