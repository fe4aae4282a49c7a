package pipeline

import (
	"github.com/dojang-data/kick.report/internal/pose"
	"github.com/dojang-data/kick.report/internal/pose/l4phases"
	"github.com/dojang-data/kick.report/internal/pose/l5scoring"
)

// AnalysisResult is the full report for one analyzed stream. Kicks are
// in stream order; the headline fields (KickType, Scores, Grade,
// Recommendations) describe the best-scored kick.
type AnalysisResult struct {
	Status     pose.Status `json:"status"`
	FrameCount int         `json:"frame_count"`
	FPS        float64     `json:"fps"`

	KickType       string              `json:"kick_type,omitempty"`
	Scores         pose.Scores         `json:"scores,omitempty"`
	Grade          string              `json:"grade,omitempty"`
	Classification pose.Classification `json:"classification,omitempty"`

	// PeakVelocityMps is the best kick's peak foot speed converted to
	// meters per second via the configured torso length.
	PeakVelocityMps float64 `json:"peak_velocity_mps,omitempty"`

	Recommendations []string `json:"recommendations,omitempty"`

	Kicks []*l4phases.KickInstance `json:"kicks,omitempty"`
}

// Result assembles the report from the kicks completed so far. Call
// after Flush; calling mid-stream reports only the kicks seen to that
// point.
func (a *Analyzer) Result() *AnalysisResult {
	res := &AnalysisResult{
		Status:     pose.StatusNoKickDetected,
		FrameCount: a.seenFrames,
		FPS:        a.fps,
		Kicks:      a.kicks,
	}
	if len(a.kicks) == 0 {
		return res
	}

	best := a.kicks[0]
	for _, k := range a.kicks[1:] {
		if k.Scores.Overall > best.Scores.Overall {
			best = k
		}
	}

	res.Status = pose.StatusOK
	res.KickType = best.Classification.Best
	res.Scores = best.Scores
	res.Grade = l5scoring.Grade(best.Scores.Overall)
	res.Classification = best.Classification
	res.PeakVelocityMps = best.PeakVelocity * a.cfg.GetTorsoLengthMeters()
	res.Recommendations = l5scoring.Recommendations(best)
	return res
}
