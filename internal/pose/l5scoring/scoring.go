package l5scoring

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/dojang-data/kick.report/internal/pose"
	"github.com/dojang-data/kick.report/internal/pose/l4phases"
)

// Form sub-score weights. Extension dominates: a locked-out strike is
// the first thing a judge scores.
const (
	extensionWeight  = 0.5
	chamberWeight    = 0.3
	smoothnessWeight = 0.2
)

// Power blend: peak foot speed carries most of the signal, hip rotation
// the rest.
const (
	velocityWeight    = 0.8
	hipRotationWeight = 0.2
	hipRotationRef    = 90.0 // degrees for a full rotation contribution
)

// Chamber compactness floor: chambers shorter than this score full
// marks; compactness decays linearly to zero at maxChamberSecs.
const (
	minChamberSecs = 0.1
	maxChamberSecs = 0.6
)

// Config holds scoring tuning.
type Config struct {
	FormWeight    float64
	PowerWeight   float64
	BalanceWeight float64

	// ReferencePeakVelocityMps anchors the power scale; a kick at this
	// foot speed scores full velocity marks.
	ReferencePeakVelocityMps float64

	// TorsoLengthMeters converts body-relative speeds to m/s.
	TorsoLengthMeters float64

	// BalanceVarianceScale is the support-ankle positional variance
	// (torso units squared) at which balance reaches zero.
	BalanceVarianceScale float64

	// LateralDeviationScale is the out-of-plane foot deviation (torso
	// units) at which path smoothness reaches zero.
	LateralDeviationScale float64
}

// Scorer computes composite scores for finalized kick instances. Safe
// for concurrent use; it holds only immutable configuration.
type Scorer struct {
	cfg Config
}

// New returns a Scorer.
func New(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the four composite scores for a kick instance.
func (s *Scorer) Score(k *l4phases.KickInstance) pose.Scores {
	form := s.formScore(k)
	power := s.powerScore(k)
	balance := s.balanceScore(k)

	fw, pw, bw := s.cfg.FormWeight, s.cfg.PowerWeight, s.cfg.BalanceWeight
	sum := fw + pw + bw
	if sum <= 0 {
		fw, pw, bw, sum = 0.4, 0.35, 0.25, 1.0
	}
	overall := (fw*form + pw*power + bw*balance) / sum

	return pose.Scores{
		Form:    clampScore(form),
		Power:   clampScore(power),
		Balance: clampScore(balance),
		Overall: clampScore(overall),
	}
}

// formScore blends peak extension closeness to a locked-out 180° knee,
// chamber compactness, and foot-path smoothness.
func (s *Scorer) formScore(k *l4phases.KickInstance) float64 {
	// 120° or less reads as a fully bent strike, 180° as locked out.
	extension := pose.Clamp01((k.KneeAngle.Max - 120.0) / 60.0)
	if k.KneeAngle.Count == 0 {
		extension = 0
	}

	compactness := pose.Clamp01((maxChamberSecs - k.ChamberTimeSecs) / (maxChamberSecs - minChamberSecs))

	smoothness := 1 - pose.Clamp01(lateralDeviation(k.FootPath)/s.cfg.LateralDeviationScale)

	return 100 * (extensionWeight*extension + chamberWeight*compactness + smoothnessWeight*smoothness)
}

// powerScore normalises peak foot speed against the reference maximum
// and blends in the hip rotation contribution during extension.
func (s *Scorer) powerScore(k *l4phases.KickInstance) float64 {
	peakMps := k.PeakVelocity * s.cfg.TorsoLengthMeters
	velocity := 0.0
	if s.cfg.ReferencePeakVelocityMps > 0 {
		velocity = pose.Clamp01(peakMps / s.cfg.ReferencePeakVelocityMps)
	}
	rotation := pose.Clamp01(k.HipRotationDelta / hipRotationRef)
	return 100 * pose.Clamp01(velocityWeight*velocity+hipRotationWeight*rotation)
}

// balanceScore is the inverse of the support ankle's positional variance
// over the kick window: the stiller the base, the higher the score.
func (s *Scorer) balanceScore(k *l4phases.KickInstance) float64 {
	if len(k.SupportPath) < 2 {
		return 0
	}
	xs := make([]float64, len(k.SupportPath))
	ys := make([]float64, len(k.SupportPath))
	for i, p := range k.SupportPath {
		xs[i] = p.X
		ys[i] = p.Y
	}
	variance := stat.Variance(xs, nil) + stat.Variance(ys, nil)
	if s.cfg.BalanceVarianceScale <= 0 {
		return 0
	}
	return 100 * (1 - pose.Clamp01(variance/s.cfg.BalanceVarianceScale))
}

// lateralDeviation measures how far the foot strays from the dominant
// kick plane, taken as the vertical plane through the path's endpoints.
func lateralDeviation(path []pose.Vec3) float64 {
	if len(path) < 3 {
		return 0
	}
	first, last := path[0], path[len(path)-1]
	// In-plane horizontal direction.
	dx, dz := last.X-first.X, last.Z-first.Z
	n := math.Hypot(dx, dz)
	if n < 1e-9 {
		return 0
	}
	// Horizontal normal to the kick plane.
	nx, nz := -dz/n, dx/n

	maxDev := 0.0
	for _, p := range path {
		dev := math.Abs((p.X-first.X)*nx + (p.Z-first.Z)*nz)
		maxDev = math.Max(maxDev, dev)
	}
	return maxDev
}

func clampScore(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
