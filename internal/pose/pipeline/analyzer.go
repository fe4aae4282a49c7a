// Package pipeline composes the six analysis stages into batch and
// streaming analyzers. A frame enters as raw landmark coordinates and
// leaves as scored, classified kick instances:
//
//	l1norm -> l2smooth -> l3kinematics -> l4phases -> l5scoring -> l6classify
package pipeline

import (
	"context"
	"fmt"

	"github.com/dojang-data/kick.report/internal/config"
	"github.com/dojang-data/kick.report/internal/pose"
	"github.com/dojang-data/kick.report/internal/pose/l1norm"
	"github.com/dojang-data/kick.report/internal/pose/l2smooth"
	"github.com/dojang-data/kick.report/internal/pose/l3kinematics"
	"github.com/dojang-data/kick.report/internal/pose/l4phases"
	"github.com/dojang-data/kick.report/internal/pose/l5scoring"
	"github.com/dojang-data/kick.report/internal/pose/l6classify"
)

// Analyzer runs the full stage chain over one frame stream. It carries
// per-stream state (smoother history, velocity look-back, the phase
// machine) and is not safe for concurrent use; each stream gets its
// own Analyzer.
type Analyzer struct {
	cfg *config.TuningConfig
	fps float64

	normalizer *l1norm.Normalizer
	smoother   *l2smooth.Smoother
	extractor  *l3kinematics.Extractor
	machine    *l4phases.Machine
	scorer     *l5scoring.Scorer
	classifier *l6classify.Classifier

	lastIndex  int
	seenFrames int
	kicks      []*l4phases.KickInstance

	traceOn bool
	trace   []FrameMetric
}

// FrameMetric is one per-frame sample of the kicking leg's kinematics,
// recorded when tracing is enabled. Invalid samples carry zero values.
type FrameMetric struct {
	FrameIndex int     `json:"frame_index"`
	KneeAngle  float64 `json:"knee_angle"`
	HipFlexion float64 `json:"hip_flexion"`
	KickHeight float64 `json:"kick_height"`
	FootSpeed  float64 `json:"foot_speed"`
}

// New builds an Analyzer from the tuning config for a stream at the
// given frame rate. fps must be positive.
func New(cfg *config.TuningConfig, fps float64) (*Analyzer, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("%w: %g", pose.ErrInvalidFPS, fps)
	}
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}

	signatures := l6classify.DefaultSignatures()
	if path := cfg.GetSignaturesPath(); path != "" {
		loaded, err := l6classify.LoadSignatures(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load signature library: %w", err)
		}
		signatures = loaded
		pose.Opsf("[pipeline] loaded %d kick signatures from %s", len(loaded), path)
	}

	a := &Analyzer{
		cfg:        cfg,
		fps:        fps,
		normalizer: l1norm.New(cfg.GetVisibilityThreshold()),
		smoother: l2smooth.New(l2smooth.Config{
			Window:              cfg.GetSmoothingWindow(),
			HighMotionThreshold: cfg.GetHighMotionThreshold(),
			MaxHoldFrames:       cfg.GetMaxHoldFrames(),
		}),
		extractor: l3kinematics.New(),
		machine: l4phases.NewMachine(l4phases.Config{
			ChamberVelocityThreshold:     cfg.GetChamberVelocityThreshold(),
			ExtensionVelocityThreshold:   cfg.GetExtensionVelocityThreshold(),
			SupportStabilityThreshold:    cfg.GetSupportStabilityThreshold(),
			RetractionSpeedFraction:      cfg.GetRetractionSpeedFraction(),
			RetractionProximityThreshold: cfg.GetRetractionProximityThreshold(),
			MaxKickDurationFrames:        cfg.GetMaxKickDurationFrames(),
			FrameIntervalSecs:            1.0 / fps,
		}),
		scorer: l5scoring.New(l5scoring.Config{
			FormWeight:               cfg.GetFormWeight(),
			PowerWeight:              cfg.GetPowerWeight(),
			BalanceWeight:            cfg.GetBalanceWeight(),
			ReferencePeakVelocityMps: cfg.GetReferencePeakVelocityMps(),
			TorsoLengthMeters:        cfg.GetTorsoLengthMeters(),
			BalanceVarianceScale:     cfg.GetBalanceVarianceScale(),
			LateralDeviationScale:    cfg.GetLateralDeviationScale(),
		}),
		classifier: l6classify.New(signatures, l6classify.Config{
			DistanceScale:    cfg.GetDistanceScale(),
			MinConfidence:    cfg.GetMinClassificationConfidence(),
			AmbiguityEpsilon: cfg.GetAmbiguityEpsilon(),
		}),
		lastIndex: -1,
	}
	return a, nil
}

// FPS returns the stream frame rate the Analyzer was built for.
func (a *Analyzer) FPS() float64 { return a.fps }

// EnableTrace records a per-frame kinematic sample for every processed
// frame. Intended for persistence and debug charts; leave disabled for
// long-running streams.
func (a *Analyzer) EnableTrace() { a.traceOn = true }

// Trace returns the recorded per-frame samples, in stream order.
func (a *Analyzer) Trace() []FrameMetric { return a.trace }

// Process pushes one raw frame through the stage chain. A completed
// kick, if any, is scored, classified, recorded and returned. Frame
// indices must be strictly increasing.
func (a *Analyzer) Process(f pose.Frame) (*l4phases.KickInstance, error) {
	if f.Index <= a.lastIndex {
		return nil, fmt.Errorf("%w: frame %d after frame %d", pose.ErrNonMonotonicFrames, f.Index, a.lastIndex)
	}

	// A gap wider than the tolerance invalidates smoothing history,
	// velocity look-back and any in-flight kick.
	if a.lastIndex >= 0 && f.Index-a.lastIndex > a.cfg.GetMaxGapFrames() {
		pose.Diagf("[pipeline] gap of %d frames at frame %d, resetting stream state", f.Index-a.lastIndex, f.Index)
		a.smoother.Reset()
		a.extractor.Reset()
		a.machine.Abort(fmt.Sprintf("gap of %d frames", f.Index-a.lastIndex))
	}
	a.lastIndex = f.Index
	a.seenFrames++

	normalized := a.normalizer.Normalize(f)
	smoothed := a.smoother.Smooth(normalized)
	feats := a.extractor.Extract(smoothed)

	if a.traceOn {
		leg := feats.Leg(feats.KickingSide)
		m := FrameMetric{FrameIndex: f.Index}
		if leg.KneeValid {
			m.KneeAngle = leg.KneeAngle
		}
		if leg.HipFlexValid {
			m.HipFlexion = leg.HipFlexion
		}
		if leg.HeightValid {
			m.KickHeight = leg.KickHeightPct
		}
		if leg.FootSpeedValid {
			m.FootSpeed = leg.FootSpeed
		}
		a.trace = append(a.trace, m)
	}

	inst := a.machine.Step(feats)
	if inst == nil {
		return nil, nil
	}
	a.finalize(inst)
	return inst, nil
}

// Flush finalizes end-of-stream state. A kick that was already
// retracting is completed with the frames observed; partial cycles are
// discarded.
func (a *Analyzer) Flush() *l4phases.KickInstance {
	inst := a.machine.Flush()
	if inst == nil {
		return nil
	}
	a.finalize(inst)
	return inst
}

// Kicks returns all kicks completed so far, in stream order.
func (a *Analyzer) Kicks() []*l4phases.KickInstance { return a.kicks }

// finalize scores and classifies a completed instance and records it.
func (a *Analyzer) finalize(inst *l4phases.KickInstance) {
	inst.Scores = a.scorer.Score(inst)
	inst.Classification = a.classifier.Classify(inst.FeatureVector())
	a.kicks = append(a.kicks, inst)
	pose.Opsf("[pipeline] kick %s: %s (%.0f%% confidence), overall %.1f",
		inst.ID, inst.Classification.Best, topConfidence(inst.Classification), inst.Scores.Overall)
}

func topConfidence(c pose.Classification) float64 {
	if len(c.Ranked) == 0 {
		return 0
	}
	return c.Ranked[0].Confidence
}

// AnalyzeFrames runs the whole chain over a complete recording.
// Each frame is a full landmark slice in canonical order; frame i is
// stamped at i/fps seconds. The context is checked between frames so
// long recordings can be cancelled.
func AnalyzeFrames(ctx context.Context, cfg *config.TuningConfig, frames [][]pose.Landmark, fps float64) (*AnalysisResult, error) {
	a, err := New(cfg, fps)
	if err != nil {
		return nil, err
	}
	for i, lms := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := pose.FrameFromSlice(i, float64(i)/fps, lms)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		if _, err := a.Process(f); err != nil {
			return nil, err
		}
	}
	a.Flush()
	return a.Result(), nil
}
