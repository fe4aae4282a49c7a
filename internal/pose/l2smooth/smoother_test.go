package l2smooth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojang-data/kick.report/internal/pose"
)

func frameWith(t *testing.T, idx int, x float64, visible bool) pose.Frame {
	t.Helper()
	lms := make([]pose.Landmark, pose.LandmarkCount)
	for i := range lms {
		lms[i] = pose.Landmark{X: x, Visibility: 0.9}
	}
	f, err := pose.FrameFromSlice(idx, float64(idx)/30, lms)
	require.NoError(t, err)
	if !visible {
		for id, lm := range f.Landmarks {
			lm.Reliable = false
			f.Landmarks[id] = lm
		}
	}
	return f
}

func TestSmoothSeedsOnFirstFrame(t *testing.T) {
	s := New(Config{Window: 5, HighMotionThreshold: 0.15, MaxHoldFrames: 5})
	out := s.Smooth(frameWith(t, 0, 1.0, true))

	lm, ok := out.Get(pose.Nose)
	require.True(t, ok)
	assert.Equal(t, 1.0, lm.X, "first sample passes through unsmoothed")
}

func TestSmoothBlendsTowardNewValue(t *testing.T) {
	s := New(Config{Window: 5, HighMotionThreshold: 10, MaxHoldFrames: 5})
	s.Smooth(frameWith(t, 0, 0, true))
	out := s.Smooth(frameWith(t, 1, 1.0, true))

	// alpha = 2/(5+1) = 1/3.
	lm, _ := out.Get(pose.Nose)
	assert.InDelta(t, 1.0/3.0, lm.X, 1e-9)

	// Repeated samples converge on the true position.
	for i := 2; i < 40; i++ {
		out = s.Smooth(frameWith(t, i, 1.0, true))
	}
	lm, _ = out.Get(pose.Nose)
	assert.InDelta(t, 1.0, lm.X, 1e-4)
}

func TestSmoothFastPathOnHighMotion(t *testing.T) {
	s := New(Config{Window: 9, HighMotionThreshold: 0.15, MaxHoldFrames: 5})
	s.Smooth(frameWith(t, 0, 0, true))

	// A jump well past the threshold takes the fast blend, not the
	// sluggish nominal window.
	out := s.Smooth(frameWith(t, 1, 1.0, true))
	lm, _ := out.Get(pose.Nose)
	assert.InDelta(t, 0.85, lm.X, 1e-9)
}

func TestSmoothHoldsThroughDropout(t *testing.T) {
	s := New(Config{Window: 5, HighMotionThreshold: 10, MaxHoldFrames: 3})
	s.Smooth(frameWith(t, 0, 0.7, true))

	// Landmarks vanish; held values keep the last good position but
	// stay unreliable so aggregates exclude them.
	for i := 1; i <= 4; i++ {
		out := s.Smooth(frameWith(t, i, 5.0, false))
		lm, ok := out.Get(pose.Nose)
		assert.False(t, ok)
		assert.Equal(t, 0.7, lm.X, "held value must not drift, frame %d", i)
	}
	assert.Equal(t, 4, s.HoldCount(pose.Nose))

	// Recovery resumes blending from the held value.
	out := s.Smooth(frameWith(t, 5, 0.7, true))
	lm, ok := out.Get(pose.Nose)
	require.True(t, ok)
	assert.Equal(t, 0.7, lm.X)
	assert.Equal(t, 0, s.HoldCount(pose.Nose))
}

func TestSmoothUnseededUnreliableFrame(t *testing.T) {
	s := New(Config{Window: 5, HighMotionThreshold: 10, MaxHoldFrames: 3})

	// Nothing to hold yet; the frame passes through still unreliable.
	out := s.Smooth(frameWith(t, 0, 2.0, false))
	_, ok := out.Get(pose.Nose)
	assert.False(t, ok)
}

func TestReset(t *testing.T) {
	s := New(Config{Window: 5, HighMotionThreshold: 10, MaxHoldFrames: 3})
	s.Smooth(frameWith(t, 0, 1.0, true))
	s.Reset()

	// After a reset the next frame seeds fresh.
	out := s.Smooth(frameWith(t, 10, 0.2, true))
	lm, _ := out.Get(pose.Nose)
	assert.Equal(t, 0.2, lm.X)
}
