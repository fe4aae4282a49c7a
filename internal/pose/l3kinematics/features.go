package l3kinematics

import (
	"math"

	"github.com/dojang-data/kick.report/internal/pose"
)

// LegFeatures holds the kinematics of one leg treated as the kicking
// leg, with the opposite leg as support. Valid flags are false when the
// underlying landmarks were unreliable or the geometry degenerate; such
// values must be excluded from aggregates.
type LegFeatures struct {
	KneeAngle      float64 // degrees, [0,180]
	KneeValid      bool
	HipFlexion     float64 // degrees, shoulder-hip-knee
	HipFlexValid   bool
	SupportKnee    float64 // degrees, support-leg hip-knee-ankle
	SupportValid   bool
	KickHeightPct  float64 // foot height vs body height, [0,100]
	HeightValid    bool
	FootPos        pose.Vec3
	FootPosValid   bool
	FootSpeed      float64 // torso lengths per second
	FootSpeedValid bool
	KneeAngularVel float64 // degrees per second, positive = extending
	AngularValid   bool
	SupportAnklePos   pose.Vec3
	SupportPosValid   bool
	SupportAnkleSpeed float64 // torso lengths per second
	SupportSpeedValid bool
}

// Features is the full per-frame feature record.
type Features struct {
	FrameIndex  int
	TimeSecs    float64
	KickingSide pose.Side // leg with the higher foot this frame
	HipRotation float64   // degrees between shoulder and hip lines (x/z plane)
	Left        LegFeatures
	Right       LegFeatures
}

// Leg returns the features for the given side.
func (f Features) Leg(side pose.Side) LegFeatures {
	if side == pose.SideLeft {
		return f.Left
	}
	return f.Right
}

type legState struct {
	footPos        pose.Vec3
	footValid      bool
	kneeAngle      float64
	kneeValid      bool
	supportPos     pose.Vec3
	supportValid   bool
}

// Extractor computes features frame by frame, keeping one frame of
// look-back for finite-difference velocities. Not safe for concurrent
// use; each stream gets its own instance.
type Extractor struct {
	prevTime float64
	hasPrev  bool
	prev     map[pose.Side]legState
}

// New returns an Extractor for one frame stream.
func New() *Extractor {
	return &Extractor{prev: make(map[pose.Side]legState, 2)}
}

// Reset drops velocity look-back state, e.g. after a stream gap.
func (e *Extractor) Reset() {
	e.hasPrev = false
	e.prev = make(map[pose.Side]legState, 2)
}

// Extract computes the feature record for one smoothed frame.
func (e *Extractor) Extract(f pose.Frame) Features {
	feats := Features{
		FrameIndex:  f.Index,
		TimeSecs:    f.TimeSecs,
		KickingSide: kickingSide(f),
		HipRotation: hipRotation(f),
	}
	dt := f.TimeSecs - e.prevTime

	feats.Left = e.legFeatures(f, pose.SideLeft, dt)
	feats.Right = e.legFeatures(f, pose.SideRight, dt)

	e.prevTime = f.TimeSecs
	e.hasPrev = true
	return feats
}

func (e *Extractor) legFeatures(f pose.Frame, side pose.Side, dt float64) LegFeatures {
	var lf LegFeatures
	opp := side.Opposite()

	hip, hipOK := f.Get(side.Hip())
	knee, kneeOK := f.Get(side.Knee())
	ankle, ankleOK := f.Get(side.Ankle())
	shoulder, shOK := f.Get(side.Shoulder())
	foot, footOK := f.Get(side.Foot())
	if !footOK && ankleOK {
		// Foot tip often drops out at the top of a kick; the ankle is
		// an acceptable stand-in for trajectory purposes.
		foot, footOK = ankle, true
	}
	sHip, sHipOK := f.Get(opp.Hip())
	sKnee, sKneeOK := f.Get(opp.Knee())
	sAnkle, sAnkleOK := f.Get(opp.Ankle())

	if hipOK && kneeOK && ankleOK {
		lf.KneeAngle, lf.KneeValid = pose.JointAngle(hip.Pos(), knee.Pos(), ankle.Pos())
	}
	if shOK && hipOK && kneeOK {
		lf.HipFlexion, lf.HipFlexValid = pose.JointAngle(shoulder.Pos(), hip.Pos(), knee.Pos())
	}
	if sHipOK && sKneeOK && sAnkleOK {
		lf.SupportKnee, lf.SupportValid = pose.JointAngle(sHip.Pos(), sKnee.Pos(), sAnkle.Pos())
	}

	if footOK {
		lf.FootPos = foot.Pos()
		lf.FootPosValid = true
	}
	if sAnkleOK {
		lf.SupportAnklePos = sAnkle.Pos()
		lf.SupportPosValid = true
	}

	// Kick height: kicking foot's rise above the support ankle as a
	// percentage of body height (support ankle to nose). Y grows down.
	if nose, noseOK := f.Get(pose.Nose); noseOK && footOK && sAnkleOK {
		bodyH := math.Abs(sAnkle.Y - nose.Y)
		if bodyH > 1e-2 {
			pct := (sAnkle.Y - foot.Y) / bodyH * 100
			lf.KickHeightPct = pose.Clamp01(pct/100) * 100
			lf.HeightValid = true
		}
	}

	// Finite-difference velocities against the previous frame.
	if prev, ok := e.prev[side]; ok && e.hasPrev && dt > 0 {
		if lf.FootPosValid && prev.footValid {
			lf.FootSpeed = lf.FootPos.Dist(prev.footPos) / dt
			lf.FootSpeedValid = true
		}
		if lf.KneeValid && prev.kneeValid {
			lf.KneeAngularVel = (lf.KneeAngle - prev.kneeAngle) / dt
			lf.AngularValid = true
		}
		if lf.SupportPosValid && prev.supportValid {
			lf.SupportAnkleSpeed = lf.SupportAnklePos.Dist(prev.supportPos) / dt
			lf.SupportSpeedValid = true
		}
	}
	e.prev[side] = legState{
		footPos:      lf.FootPos,
		footValid:    lf.FootPosValid,
		kneeAngle:    lf.KneeAngle,
		kneeValid:    lf.KneeValid,
		supportPos:   lf.SupportAnklePos,
		supportValid: lf.SupportPosValid,
	}
	return lf
}

// kickingSide picks the leg with the higher foot (smaller y). Falls back
// to ankles when foot tips are unreliable, and to the left leg when both
// legs are level or missing.
func kickingSide(f pose.Frame) pose.Side {
	leftY, leftOK := footY(f, pose.SideLeft)
	rightY, rightOK := footY(f, pose.SideRight)
	switch {
	case leftOK && rightOK:
		if rightY < leftY {
			return pose.SideRight
		}
		return pose.SideLeft
	case rightOK:
		return pose.SideRight
	default:
		return pose.SideLeft
	}
}

func footY(f pose.Frame, side pose.Side) (float64, bool) {
	if lm, ok := f.Get(side.Foot()); ok {
		return lm.Y, true
	}
	if lm, ok := f.Get(side.Ankle()); ok {
		return lm.Y, true
	}
	return 0, false
}

// hipRotation measures the angle between the hip line and the shoulder
// line projected onto the floor plane (x/z). A squared-up stance reads
// near zero; a fully rotated roundhouse or spinning kick reads high.
func hipRotation(f pose.Frame) float64 {
	lHip, ok1 := f.Get(pose.LeftHip)
	rHip, ok2 := f.Get(pose.RightHip)
	lSh, ok3 := f.Get(pose.LeftShoulder)
	rSh, ok4 := f.Get(pose.RightShoulder)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0
	}
	hipAng := math.Atan2(rHip.Z-lHip.Z, rHip.X-lHip.X)
	shAng := math.Atan2(rSh.Z-lSh.Z, rSh.X-lSh.X)
	deg := math.Abs(hipAng-shAng) * 180 / math.Pi
	if deg > 180 {
		deg = 360 - deg
	}
	return deg
}
