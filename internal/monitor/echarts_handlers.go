// Package monitor serves debugging-only chart endpoints (no auth) for
// visually inspecting persisted sessions without a frontend build.
package monitor

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/dojang-data/kick.report/internal/httputil"
	"github.com/dojang-data/kick.report/internal/storage/sqlite"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// WebServer renders debug charts from the session store.
type WebServer struct {
	db       *sql.DB
	sessions *sqlite.SessionStore
	kicks    *sqlite.KickStore
	metrics  *sqlite.MetricStore
}

// NewWebServer builds a WebServer over the given database handle.
func NewWebServer(db *sql.DB) *WebServer {
	return &WebServer{
		db:       db,
		sessions: sqlite.NewSessionStore(db),
		kicks:    sqlite.NewKickStore(db),
		metrics:  sqlite.NewMetricStore(db),
	}
}

// RegisterRoutes adds the debug chart endpoints to mux.
func (ws *WebServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/charts/kick-trace", ws.handleKickTraceChart)
	mux.HandleFunc("/debug/charts/scores", ws.handleScoresChart)
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	httputil.WriteJSONError(w, status, msg)
}

// handleKickTraceChart renders a line chart (HTML) of the kicking leg's
// per-frame kinematics for one session: knee angle, hip flexion and
// kick height over the frame index.
// Query params:
//   - session_id (required)
func (ws *WebServer) handleKickTraceChart(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		ws.writeJSONError(w, http.StatusBadRequest, "missing session_id")
		return
	}

	session, err := ws.sessions.GetSession(sessionID)
	if err != nil {
		ws.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("session not found: %s", sessionID))
		return
	}

	metrics, err := ws.metrics.ListFrameMetrics(sessionID)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load frame metrics: %v", err))
		return
	}
	if len(metrics) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no frame metrics for session")
		return
	}

	x := make([]int, 0, len(metrics))
	knee := make([]opts.LineData, 0, len(metrics))
	hip := make([]opts.LineData, 0, len(metrics))
	height := make([]opts.LineData, 0, len(metrics))
	for _, m := range metrics {
		x = append(x, m.FrameIndex)
		knee = append(knee, opts.LineData{Value: m.KneeAngle})
		hip = append(hip, opts.LineData{Value: m.HipFlexion})
		height = append(height, opts.LineData{Value: m.KickHeight})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Kick Trace", Theme: "dark", Width: "1200px", Height: "600px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Kick Trace", Subtitle: fmt.Sprintf("session=%s athlete=%s frames=%d", sessionID, session.Athlete, len(metrics))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "deg / % height"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(x).
		AddSeries("knee angle", knee).
		AddSeries("hip flexion", hip).
		AddSeries("kick height", height)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleScoresChart renders a bar chart (HTML) of per-kick scores for
// one session, labelled by the classified archetype.
// Query params:
//   - session_id (required)
func (ws *WebServer) handleScoresChart(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		ws.writeJSONError(w, http.StatusBadRequest, "missing session_id")
		return
	}

	session, err := ws.sessions.GetSession(sessionID)
	if err != nil {
		ws.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("session not found: %s", sessionID))
		return
	}

	kicks, err := ws.kicks.ListKicks(sessionID)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load kicks: %v", err))
		return
	}
	if len(kicks) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no kicks for session")
		return
	}

	x := make([]string, 0, len(kicks))
	form := make([]opts.BarData, 0, len(kicks))
	power := make([]opts.BarData, 0, len(kicks))
	balance := make([]opts.BarData, 0, len(kicks))
	overall := make([]opts.BarData, 0, len(kicks))
	for _, k := range kicks {
		x = append(x, fmt.Sprintf("#%d %s", k.Seq, k.Archetype))
		form = append(form, opts.BarData{Value: k.Form})
		power = append(power, opts.BarData{Value: k.Power})
		balance = append(balance, opts.BarData{Value: k.Balance})
		overall = append(overall, opts.BarData{Value: k.Overall})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Kick Scores", Theme: "dark", Width: "1200px", Height: "600px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Kick Scores", Subtitle: fmt.Sprintf("session=%s grade=%s", sessionID, session.Grade)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "score", Min: 0, Max: 100}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("form", form).
		AddSeries("power", power).
		AddSeries("balance", balance).
		AddSeries("overall", overall,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
