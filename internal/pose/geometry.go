package pose

import "math"

// Vec3 is a position or displacement in body-relative coordinates.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v − o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Dist returns the Euclidean distance between v and o.
func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Norm() }

// minVectorNorm guards angle computations against degenerate limb
// vectors (coincident landmarks).
const minVectorNorm = 1e-6

// JointAngle computes the angle in degrees at vertex between the limb
// vectors vertex→a and vertex→b, clamped to [0, 180]. The second return
// is false for degenerate geometry (near-zero-length limb vectors), in
// which case the angle must be excluded from aggregates.
func JointAngle(a, vertex, b Vec3) (float64, bool) {
	v1 := a.Sub(vertex)
	v2 := b.Sub(vertex)
	n1 := v1.Norm()
	n2 := v2.Norm()
	if n1 < minVectorNorm || n2 < minVectorNorm {
		return 0, false
	}
	cos := v1.Dot(v2) / (n1 * n2)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi, true
}

// Clamp01 clamps a ratio to [0, 1]. Every intermediate score ratio goes
// through this before scaling to [0, 100] so malformed inputs cannot
// push a score out of range.
func Clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
