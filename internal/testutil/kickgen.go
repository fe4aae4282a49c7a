package testutil

import (
	"math"

	"github.com/dojang-data/kick.report/internal/pose"
)

// Provider landmark indices for the points the generator animates.
// Everything else is filled with plausible static positions so frames
// carry the full 33-point set.
const (
	idxNose          = 0
	idxLeftShoulder  = 11
	idxRightShoulder = 12
	idxLeftElbow     = 13
	idxRightElbow    = 14
	idxLeftWrist     = 15
	idxRightWrist    = 16
	idxLeftHip       = 23
	idxRightHip      = 24
	idxLeftKnee      = 25
	idxRightKnee     = 26
	idxLeftAnkle     = 27
	idxRightAnkle    = 28
	idxLeftHeel      = 29
	idxRightHeel     = 30
	idxLeftFoot      = 31
	idxRightFoot     = 32
)

const genVisibility = 0.95

// Skeleton proportions in provider image coordinates (y grows down).
// Torso length is fixed at 0.3 so normalised distances are exactly
// raw/0.3.
const (
	hipCX        = 0.50
	hipCY        = 0.65
	hipHalf      = 0.06
	shoulderHalf = 0.08
	torsoLen     = 0.30
	thighLen     = 0.30
	shankLen     = 0.30
)

// KickPose is one scripted posture of the synthetic athlete. The right
// leg kicks toward +x; the left leg stays planted.
type KickPose struct {
	KneeDeg   float64 // kicking-knee joint angle
	ThighDeg  float64 // kicking thigh from vertical-down, toward the target
	LeanDeg   float64 // torso lean away from the target
	HipRotDeg float64 // hip line rotation in the floor plane
}

// StandingPose is the neutral stance every sequence starts and ends in.
func StandingPose() KickPose { return KickPose{KneeDeg: 175} }

// Landmarks renders a posture as a full provider landmark slice.
func Landmarks(p KickPose) []pose.Landmark {
	lms := make([]pose.Landmark, pose.LandmarkCount)
	set := func(i int, x, y, z float64) {
		lms[i] = pose.Landmark{X: x, Y: y, Z: z, Visibility: genVisibility}
	}
	rad := math.Pi / 180

	r := p.HipRotDeg * rad
	lHipX, lHipZ := hipCX-hipHalf*math.Cos(r), -hipHalf*math.Sin(r)
	rHipX, rHipZ := hipCX+hipHalf*math.Cos(r), hipHalf*math.Sin(r)
	set(idxLeftHip, lHipX, hipCY, lHipZ)
	set(idxRightHip, rHipX, hipCY, rHipZ)

	l := p.LeanDeg * rad
	shCX, shCY := hipCX-torsoLen*math.Sin(l), hipCY-torsoLen*math.Cos(l)
	set(idxLeftShoulder, shCX-shoulderHalf, shCY, 0)
	set(idxRightShoulder, shCX+shoulderHalf, shCY, 0)
	set(idxNose, shCX+0.02, shCY-0.15, 0)

	// Arms hang from the shoulders; static relative to the torso.
	set(idxLeftElbow, shCX-shoulderHalf-0.03, shCY+0.18, 0)
	set(idxRightElbow, shCX+shoulderHalf+0.03, shCY+0.18, 0)
	set(idxLeftWrist, shCX-shoulderHalf-0.03, shCY+0.36, 0)
	set(idxRightWrist, shCX+shoulderHalf+0.03, shCY+0.36, 0)

	// Support leg, planted.
	set(idxLeftKnee, 0.44, hipCY+thighLen, 0)
	set(idxLeftAnkle, 0.44, hipCY+thighLen+shankLen, 0)
	set(idxLeftHeel, 0.42, hipCY+thighLen+shankLen+0.06, 0)
	set(idxLeftFoot, 0.48, hipCY+thighLen+shankLen+0.05, 0)

	// Kicking leg: thigh from the hip at ThighDeg, shank folded behind
	// it by the knee angle. The whole leg shares the hip's depth so leg
	// joint angles stay planar.
	t := p.ThighDeg * rad
	phi := (p.ThighDeg - (180 - p.KneeDeg)) * rad
	kneeX := rHipX + thighLen*math.Sin(t)
	kneeY := hipCY + thighLen*math.Cos(t)
	ankleX := kneeX + shankLen*math.Sin(phi)
	ankleY := kneeY + shankLen*math.Cos(phi)
	set(idxRightKnee, kneeX, kneeY, rHipZ)
	set(idxRightAnkle, ankleX, ankleY, rHipZ)
	set(idxRightHeel, ankleX-0.02, ankleY+0.05, rHipZ)
	set(idxRightFoot, ankleX+0.04, ankleY+0.05, rHipZ)

	// Remaining face and hand points: static filler around the head and
	// wrists.
	for i := 1; i <= 10; i++ {
		set(i, shCX+0.02+0.01*float64(i%3-1), shCY-0.16+0.005*float64(i/3), 0)
	}
	for i := 17; i <= 22; i++ {
		dx := -shoulderHalf - 0.04
		if i%2 == 0 {
			dx = shoulderHalf + 0.04
		}
		set(i, shCX+dx, shCY+0.40, 0)
	}
	return lms
}

// RoundhousePoses is the scripted 19-posture roundhouse cycle: a sharp
// chamber snap, an eight-frame sweeping extension with the hips
// rotating through, and a retraction back to the stance. At 30 fps the
// cycle spans 0.633s.
func RoundhousePoses() []KickPose {
	return []KickPose{
		// Chamber: knee snaps shut, thigh rises.
		{90, 75, 10, 5},
		{90, 85, 20, 8},
		{88, 95, 30, 10},
		// Extension: knee opens 100->170 as the hips rotate through.
		{100, 100, 35, 20},
		{110, 101, 40, 30},
		{120, 103, 40, 40},
		{130, 104, 40, 50},
		{140, 106, 40, 60},
		{150, 107, 40, 70},
		{160, 109, 40, 80},
		{170, 110, 40, 90},
		// Retraction: leg lowers and refolds to the stance.
		{168, 95, 35, 85},
		{160, 75, 30, 70},
		{155, 68, 28, 62},
		{150, 60, 25, 55},
		{160, 40, 15, 35},
		{168, 25, 8, 20},
		{172, 12, 3, 8},
		{175, 5, 0, 3},
	}
}

// IdleFrames returns n frames of the standing stance.
func IdleFrames(n int) [][]pose.Landmark {
	frames := make([][]pose.Landmark, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, Landmarks(StandingPose()))
	}
	return frames
}

// RoundhouseFrames returns a stream of idleLeadIn standing frames
// followed by one full roundhouse cycle.
func RoundhouseFrames(idleLeadIn int) [][]pose.Landmark {
	frames := IdleFrames(idleLeadIn)
	for _, p := range RoundhousePoses() {
		frames = append(frames, Landmarks(p))
	}
	return frames
}
