package l1norm

import (
	"github.com/dojang-data/kick.report/internal/pose"
)

// minTorsoLength rejects frames whose hip/shoulder landmarks have
// collapsed to a point; scaling by such a torso would blow up every
// coordinate.
const minTorsoLength = 1e-4

// Normalizer recentres and rescales raw landmark frames.
type Normalizer struct {
	visibilityThreshold float64
}

// New returns a Normalizer with the given visibility cutoff.
func New(visibilityThreshold float64) *Normalizer {
	return &Normalizer{visibilityThreshold: visibilityThreshold}
}

// Normalize returns a new Frame with every landmark position re-expressed
// relative to the hip centre and scaled by torso length (hip centre to
// shoulder centre). Landmarks whose visibility falls below the threshold
// are marked unreliable but kept, so downstream stages can hold or
// exclude them. The input frame is not modified.
//
// When the torso reference pair itself is unusable (hips or shoulders
// missing, or degenerate torso length) every landmark in the returned
// frame is marked unreliable; the pipeline carries on and the frame is
// excluded from aggregates downstream.
func (n *Normalizer) Normalize(f pose.Frame) pose.Frame {
	out := f.Clone()

	lHip, okLH := f.GetAny(pose.LeftHip)
	rHip, okRH := f.GetAny(pose.RightHip)
	lSh, okLS := f.GetAny(pose.LeftShoulder)
	rSh, okRS := f.GetAny(pose.RightShoulder)

	refOK := okLH && okRH && okLS && okRS &&
		lHip.Visibility >= n.visibilityThreshold &&
		rHip.Visibility >= n.visibilityThreshold

	var hipCentre pose.Vec3
	torso := 0.0
	if refOK {
		hipCentre = lHip.Pos().Add(rHip.Pos()).Scale(0.5)
		shoulderCentre := lSh.Pos().Add(rSh.Pos()).Scale(0.5)
		torso = hipCentre.Dist(shoulderCentre)
		if torso < minTorsoLength {
			refOK = false
		}
	}

	if !refOK {
		pose.Diagf("[l1norm] frame %d: torso reference unusable, marking frame unreliable", f.Index)
		for id, lm := range out.Landmarks {
			lm.Reliable = false
			out.Landmarks[id] = lm
		}
		return out
	}

	inv := 1.0 / torso
	for id, lm := range out.Landmarks {
		p := lm.Pos().Sub(hipCentre).Scale(inv)
		lm.X, lm.Y, lm.Z = p.X, p.Y, p.Z
		lm.Reliable = lm.Visibility >= n.visibilityThreshold
		out.Landmarks[id] = lm
	}
	return out
}
