package l3kinematics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojang-data/kick.report/internal/pose"
	"github.com/dojang-data/kick.report/internal/pose/l1norm"
	"github.com/dojang-data/kick.report/internal/testutil"
)

func normFrame(t *testing.T, idx int, p testutil.KickPose) pose.Frame {
	t.Helper()
	f, err := pose.FrameFromSlice(idx, float64(idx)/30, testutil.Landmarks(p))
	require.NoError(t, err)
	return l1norm.New(0.3).Normalize(f)
}

func TestExtractKneeAngle(t *testing.T) {
	e := New()
	feats := e.Extract(normFrame(t, 0, testutil.StandingPose()))

	right := feats.Leg(pose.SideRight)
	require.True(t, right.KneeValid)
	assert.InDelta(t, 175, right.KneeAngle, 0.5)

	chambered := testutil.KickPose{KneeDeg: 90, ThighDeg: 75, LeanDeg: 10, HipRotDeg: 5}
	feats = e.Extract(normFrame(t, 1, chambered))
	right = feats.Leg(pose.SideRight)
	require.True(t, right.KneeValid)
	assert.InDelta(t, 90, right.KneeAngle, 0.5)
}

func TestKickingSideDetection(t *testing.T) {
	e := New()

	raised := testutil.KickPose{KneeDeg: 120, ThighDeg: 90, LeanDeg: 20, HipRotDeg: 30}
	feats := e.Extract(normFrame(t, 0, raised))
	assert.Equal(t, pose.SideRight, feats.KickingSide,
		"the leg with the higher foot is the kicking leg")
}

func TestVelocitiesNeedLookback(t *testing.T) {
	e := New()

	feats := e.Extract(normFrame(t, 0, testutil.StandingPose()))
	right := feats.Leg(pose.SideRight)
	assert.False(t, right.FootSpeedValid, "no velocity from a single frame")
	assert.False(t, right.AngularValid)

	chambered := testutil.KickPose{KneeDeg: 90, ThighDeg: 75, LeanDeg: 10, HipRotDeg: 5}
	feats = e.Extract(normFrame(t, 1, chambered))
	right = feats.Leg(pose.SideRight)
	require.True(t, right.AngularValid)
	// 175 -> 90 degrees in one frame at 30 fps.
	assert.InDelta(t, -2550, right.KneeAngularVel, 25)
	require.True(t, right.FootSpeedValid)
	assert.Greater(t, right.FootSpeed, 0.0)

	// Support ankle has not moved.
	require.True(t, right.SupportSpeedValid)
	assert.InDelta(t, 0, right.SupportAnkleSpeed, 1e-6)
}

func TestResetDropsLookback(t *testing.T) {
	e := New()
	e.Extract(normFrame(t, 0, testutil.StandingPose()))
	e.Reset()

	chambered := testutil.KickPose{KneeDeg: 90, ThighDeg: 75, LeanDeg: 10, HipRotDeg: 5}
	feats := e.Extract(normFrame(t, 5, chambered))
	assert.False(t, feats.Leg(pose.SideRight).AngularValid,
		"velocities must not bridge a reset")
}

func TestLowVisibilityKneeExcluded(t *testing.T) {
	e := New()

	f, err := pose.FrameFromSlice(0, 0, testutil.Landmarks(testutil.StandingPose()))
	require.NoError(t, err)
	lm := f.Landmarks[pose.RightKnee]
	lm.Visibility = 0.1
	f.Landmarks[pose.RightKnee] = lm

	feats := e.Extract(l1norm.New(0.3).Normalize(f))
	right := feats.Leg(pose.SideRight)
	assert.False(t, right.KneeValid, "an occluded knee yields no angle")
	assert.False(t, right.HipFlexValid, "hip flexion needs the knee too")

	// The support leg is unaffected.
	assert.True(t, right.SupportValid)
}

func TestKickHeight(t *testing.T) {
	e := New()

	feats := e.Extract(normFrame(t, 0, testutil.StandingPose()))
	right := feats.Leg(pose.SideRight)
	require.True(t, right.HeightValid)
	assert.Less(t, right.KickHeightPct, 10.0, "standing foot is near the floor")

	extended := testutil.KickPose{KneeDeg: 170, ThighDeg: 110, LeanDeg: 40, HipRotDeg: 90}
	feats = e.Extract(normFrame(t, 1, extended))
	right = feats.Leg(pose.SideRight)
	require.True(t, right.HeightValid)
	assert.Greater(t, right.KickHeightPct, 60.0)
	assert.LessOrEqual(t, right.KickHeightPct, 100.0)
}

func TestHipRotation(t *testing.T) {
	e := New()

	feats := e.Extract(normFrame(t, 0, testutil.StandingPose()))
	assert.InDelta(t, 0, feats.HipRotation, 1)

	rotated := testutil.KickPose{KneeDeg: 170, ThighDeg: 110, LeanDeg: 40, HipRotDeg: 90}
	feats = e.Extract(normFrame(t, 1, rotated))
	assert.InDelta(t, 90, feats.HipRotation, 1)
}

func TestFeatureAnglesStayInRange(t *testing.T) {
	e := New()
	for i, p := range testutil.RoundhousePoses() {
		feats := e.Extract(normFrame(t, i, p))
		for _, leg := range []LegFeatures{feats.Left, feats.Right} {
			if leg.KneeValid {
				assert.GreaterOrEqual(t, leg.KneeAngle, 0.0)
				assert.LessOrEqual(t, leg.KneeAngle, 180.0)
			}
			if leg.HipFlexValid {
				assert.GreaterOrEqual(t, leg.HipFlexion, 0.0)
				assert.LessOrEqual(t, leg.HipFlexion, 180.0)
			}
			if leg.HeightValid {
				assert.GreaterOrEqual(t, leg.KickHeightPct, 0.0)
				assert.LessOrEqual(t, leg.KickHeightPct, 100.0)
			}
		}
	}
}
