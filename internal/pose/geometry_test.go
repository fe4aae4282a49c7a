package pose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJointAngle(t *testing.T) {
	tests := []struct {
		name         string
		a, vertex, b Vec3
		want         float64
	}{
		{
			name: "right angle",
			a:    Vec3{X: 1}, vertex: Vec3{}, b: Vec3{Y: 1},
			want: 90,
		},
		{
			name: "straight limb",
			a:    Vec3{X: -1}, vertex: Vec3{}, b: Vec3{X: 1},
			want: 180,
		},
		{
			name: "folded limb",
			a:    Vec3{X: 1}, vertex: Vec3{}, b: Vec3{X: 1, Y: 1e-9},
			want: 0,
		},
		{
			name: "45 degrees in 3d",
			a:    Vec3{Z: 2}, vertex: Vec3{}, b: Vec3{Y: 1, Z: 1},
			want: 45,
		},
		{
			name: "translation invariant",
			a:    Vec3{X: 6, Y: 7, Z: 3}, vertex: Vec3{X: 5, Y: 7, Z: 3}, b: Vec3{X: 5, Y: 8, Z: 3},
			want: 90,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := JointAngle(tt.a, tt.vertex, tt.b)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestJointAngleDegenerate(t *testing.T) {
	// Coincident landmarks produce no usable angle.
	_, ok := JointAngle(Vec3{}, Vec3{}, Vec3{X: 1})
	assert.False(t, ok)

	_, ok = JointAngle(Vec3{X: 1}, Vec3{}, Vec3{Z: 1e-9})
	assert.False(t, ok)
}

func TestJointAngleRange(t *testing.T) {
	// Whatever the geometry, the angle stays in [0, 180].
	for i := 0; i < 360; i += 7 {
		rad := float64(i) * math.Pi / 180
		a := Vec3{X: math.Cos(rad), Y: math.Sin(rad)}
		got, ok := JointAngle(a, Vec3{}, Vec3{X: 1})
		require.True(t, ok)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 180.0)
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
	assert.Equal(t, 0.5, Clamp01(0.5))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 1.0, Clamp01(math.Inf(1)))
}

func TestFrameFromSlice(t *testing.T) {
	lms := make([]Landmark, LandmarkCount)
	for i := range lms {
		lms[i] = Landmark{X: float64(i), Visibility: 0.9}
	}
	f, err := FrameFromSlice(7, 0.25, lms)
	require.NoError(t, err)
	assert.Equal(t, 7, f.Index)
	assert.InDelta(t, 0.25, f.TimeSecs, 1e-12)
	assert.Len(t, f.Landmarks, LandmarkCount)

	nose, ok := f.Get(Nose)
	require.True(t, ok)
	assert.Equal(t, 0.0, nose.X)

	lAnkle, ok := f.Get(LeftAnkle)
	require.True(t, ok)
	assert.Equal(t, 27.0, lAnkle.X)

	_, err = FrameFromSlice(0, 0, lms[:20])
	assert.ErrorIs(t, err, ErrLandmarkCount)
}

func TestFrameGetReliability(t *testing.T) {
	lms := make([]Landmark, LandmarkCount)
	f, err := FrameFromSlice(0, 0, lms)
	require.NoError(t, err)

	lm := f.Landmarks[RightKnee]
	lm.Reliable = false
	f.Landmarks[RightKnee] = lm

	_, ok := f.Get(RightKnee)
	assert.False(t, ok, "Get must hide unreliable landmarks")
	_, ok = f.GetAny(RightKnee)
	assert.True(t, ok)
}

func TestSideAccessors(t *testing.T) {
	assert.Equal(t, LeftKnee, SideLeft.Knee())
	assert.Equal(t, RightAnkle, SideRight.Ankle())
	assert.Equal(t, RightFootIndex, SideRight.Foot())
	assert.Equal(t, SideRight, SideLeft.Opposite())
	assert.Equal(t, SideLeft, SideRight.Opposite())
}
