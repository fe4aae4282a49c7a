package l4phases

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dojang-data/kick.report/internal/pose"
)

func TestNewStat(t *testing.T) {
	s := newStat([]float64{90, 120, 150})
	assert.Equal(t, 90.0, s.Min)
	assert.Equal(t, 150.0, s.Max)
	assert.InDelta(t, 120.0, s.Avg, 1e-9)
	assert.Equal(t, 3, s.Count)

	assert.Equal(t, Stat{}, newStat(nil), "no valid samples yields a zero stat")
}

func TestPathCurvatureStraightLine(t *testing.T) {
	var path []pose.Vec3
	for i := 0; i < 10; i++ {
		path = append(path, pose.Vec3{X: float64(i) * 0.1, Y: -0.02 * float64(i)})
	}
	assert.InDelta(t, 0, pathCurvature(path), 1e-9,
		"a linear thrust has no curvature")
}

func TestPathCurvatureArc(t *testing.T) {
	// Quarter circle of radius 1: sagitta/chord ~ 0.207.
	var path []pose.Vec3
	for i := 0; i <= 12; i++ {
		a := float64(i) / 12 * math.Pi / 2
		path = append(path, pose.Vec3{X: math.Cos(a), Y: math.Sin(a)})
	}
	c := pathCurvature(path)
	assert.InDelta(t, 2.5*0.2071, c, 0.02)
}

func TestPathCurvatureSaturatesOnLoop(t *testing.T) {
	// A nearly closed circle: chord collapses against path length.
	var path []pose.Vec3
	for i := 0; i <= 36; i++ {
		a := float64(i) / 36 * 2 * math.Pi * 0.99
		path = append(path, pose.Vec3{X: math.Cos(a), Y: math.Sin(a)})
	}
	assert.Equal(t, 1.0, pathCurvature(path),
		"spinning techniques saturate the indicator")
}

func TestPathCurvatureDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, pathCurvature(nil))
	assert.Equal(t, 0.0, pathCurvature([]pose.Vec3{{X: 1}, {X: 2}}))

	// All points coincident.
	same := []pose.Vec3{{X: 1}, {X: 1}, {X: 1}}
	assert.Equal(t, 0.0, pathCurvature(same))
}

func TestFeatureVector(t *testing.T) {
	k := KickInstance{
		KneeAngle:  Stat{Avg: 141},
		HipFlexion: Stat{Avg: 122},
		KickHeight: Stat{Max: 71, Avg: 30},
		Curvature:  0.47,
	}
	assert.Equal(t, [4]float64{141, 122, 71, 0.47}, k.FeatureVector())
}
