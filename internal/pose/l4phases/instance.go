package l4phases

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/dojang-data/kick.report/internal/pose"
)

// Stat summarises one metric over the valid frames of a kick window.
type Stat struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int     `json:"-"`
}

func newStat(values []float64) Stat {
	if len(values) == 0 {
		return Stat{}
	}
	s := Stat{Min: values[0], Max: values[0], Count: len(values)}
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Avg = stat.Mean(values, nil)
	return s
}

// PhaseSegment is one contiguous phase range inside a kick window.
// EndFrame is exclusive, so consecutive segments tile the window and
// their durations telescope to the total.
type PhaseSegment struct {
	Phase        pose.Phase `json:"phase"`
	StartFrame   int        `json:"start_frame"`
	EndFrame     int        `json:"end_frame"`
	DurationSecs float64    `json:"duration_secs"`
}

// KickInstance is one complete chamber→extension→retraction cycle.
// The segmentation machine emits it without scores; the pipeline fills
// Scores and Classification exactly once and then treats the value as
// frozen. Instances are passed and stored by value, never shared.
type KickInstance struct {
	ID   string    `json:"id"`
	Side pose.Side `json:"side"`

	StartFrame int `json:"start_frame"`
	EndFrame   int `json:"end_frame"` // exclusive

	Segments []PhaseSegment `json:"segments"`

	KneeAngle  Stat `json:"knee_angle"`
	HipFlexion Stat `json:"hip_flexion"`
	KickHeight Stat `json:"kick_height"`

	ChamberTimeSecs    float64 `json:"chamber_time_secs"`
	ExtensionTimeSecs  float64 `json:"extension_time_secs"`
	RetractionTimeSecs float64 `json:"retraction_time_secs"`
	TotalTimeSecs      float64 `json:"total_time_secs"`

	// PeakVelocity is the kicking foot's maximum speed in torso lengths
	// per second over the kick window.
	PeakVelocity float64 `json:"peak_velocity"`

	// HipRotationDelta is the change in hip orientation during the
	// extension phase, degrees.
	HipRotationDelta float64 `json:"hip_rotation_delta"`

	// Curvature distinguishes circular from linear foot paths during
	// extension, in [0,1].
	Curvature float64 `json:"curvature"`

	// TimedOut marks an instance whose retraction hit the maximum kick
	// duration; scores and classification are computed on the truncated
	// data.
	TimedOut bool `json:"timed_out"`

	// Raw paths over the kick window (valid samples only), retained for
	// scoring. Not part of the serialised result.
	FootPath    []pose.Vec3 `json:"-"`
	SupportPath []pose.Vec3 `json:"-"`

	Scores         pose.Scores         `json:"scores"`
	Classification pose.Classification `json:"classification"`
}

// FeatureVector is the aggregated vector the classifier consumes:
// {kneeAngle.avg, hipFlexion.avg, kickHeight.max, curvature}. Peak
// height rather than average: the average is dominated by the low
// chamber and retraction tails, while the peak is what separates a
// head-height technique from a body-height one.
func (k KickInstance) FeatureVector() [4]float64 {
	return [4]float64{k.KneeAngle.Avg, k.HipFlexion.Avg, k.KickHeight.Max, k.Curvature}
}

// curvatureScale maps the sagitta-to-chord ratio of a circular kick arc
// onto the [0,1] indicator range; a straight snap kick stays near zero.
const curvatureScale = 2.5

// pathCurvature measures how far the foot path bows away from the chord
// between its endpoints, normalised by chord length and clamped to [0,1].
// A chord that nearly closes on itself (spinning techniques) saturates
// at 1.
func pathCurvature(path []pose.Vec3) float64 {
	if len(path) < 3 {
		return 0
	}
	first := path[0]
	last := path[len(path)-1]
	chordVec := last.Sub(first)
	chord := chordVec.Norm()

	pathLen := 0.0
	for i := 1; i < len(path); i++ {
		pathLen += path[i].Dist(path[i-1])
	}
	if pathLen < 1e-9 {
		return 0
	}
	if chord < 0.05*pathLen {
		return 1
	}

	// Max perpendicular deviation from the chord.
	maxPerp := 0.0
	for _, p := range path[1 : len(path)-1] {
		d := p.Sub(first)
		along := d.Dot(chordVec) / (chord * chord)
		perp := d.Sub(chordVec.Scale(along)).Norm()
		maxPerp = math.Max(maxPerp, perp)
	}
	return pose.Clamp01(curvatureScale * maxPerp / chord)
}
