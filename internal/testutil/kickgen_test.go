package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojang-data/kick.report/internal/pose"
)

func TestLandmarksFullSet(t *testing.T) {
	lms := Landmarks(StandingPose())
	require.Len(t, lms, pose.LandmarkCount)
	for i, lm := range lms {
		assert.GreaterOrEqual(t, lm.Visibility, 0.9, "landmark %d visibility", i)
	}

	_, err := pose.FrameFromSlice(0, 0, lms)
	require.NoError(t, err)
}

func TestStandingGeometry(t *testing.T) {
	f, err := pose.FrameFromSlice(0, 0, Landmarks(StandingPose()))
	require.NoError(t, err)

	lHip, _ := f.GetAny(pose.LeftHip)
	rHip, _ := f.GetAny(pose.RightHip)
	lSh, _ := f.GetAny(pose.LeftShoulder)
	rSh, _ := f.GetAny(pose.RightShoulder)

	hipC := lHip.Pos().Add(rHip.Pos()).Scale(0.5)
	shC := lSh.Pos().Add(rSh.Pos()).Scale(0.5)
	assert.InDelta(t, torsoLen, hipC.Dist(shC), 1e-9, "torso length must be fixed")

	// The scripted knee angle must match what the joint-angle measure
	// recovers from the rendered skeleton.
	hip, _ := f.GetAny(pose.RightHip)
	knee, _ := f.GetAny(pose.RightKnee)
	ankle, _ := f.GetAny(pose.RightAnkle)
	angle, ok := pose.JointAngle(hip.Pos(), knee.Pos(), ankle.Pos())
	require.True(t, ok)
	assert.InDelta(t, 175, angle, 0.5)
}

func TestRenderedKneeAngleTracksScript(t *testing.T) {
	for _, p := range RoundhousePoses() {
		f, err := pose.FrameFromSlice(0, 0, Landmarks(p))
		require.NoError(t, err)

		hip, _ := f.GetAny(pose.RightHip)
		knee, _ := f.GetAny(pose.RightKnee)
		ankle, _ := f.GetAny(pose.RightAnkle)
		angle, ok := pose.JointAngle(hip.Pos(), knee.Pos(), ankle.Pos())
		require.True(t, ok)
		assert.InDelta(t, p.KneeDeg, angle, 0.5, "pose %+v", p)
	}
}

func TestRoundhouseFramesLayout(t *testing.T) {
	frames := RoundhouseFrames(15)
	assert.Len(t, frames, 15+len(RoundhousePoses()))
	for i, lms := range frames {
		assert.Len(t, lms, pose.LandmarkCount, "frame %d", i)
	}
}
