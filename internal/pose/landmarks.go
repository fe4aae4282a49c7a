package pose

import "fmt"

// LandmarkID names a body keypoint in the 33-point vocabulary emitted by
// the external pose-estimation provider.
type LandmarkID string

// Landmarks the engine consumes by name. The provider emits the full
// 33-point set; the remaining points are carried through untouched.
const (
	Nose           LandmarkID = "nose"
	LeftShoulder   LandmarkID = "left_shoulder"
	RightShoulder  LandmarkID = "right_shoulder"
	LeftElbow      LandmarkID = "left_elbow"
	RightElbow     LandmarkID = "right_elbow"
	LeftWrist      LandmarkID = "left_wrist"
	RightWrist     LandmarkID = "right_wrist"
	LeftHip        LandmarkID = "left_hip"
	RightHip       LandmarkID = "right_hip"
	LeftKnee       LandmarkID = "left_knee"
	RightKnee      LandmarkID = "right_knee"
	LeftAnkle      LandmarkID = "left_ankle"
	RightAnkle     LandmarkID = "right_ankle"
	LeftHeel       LandmarkID = "left_heel"
	RightHeel      LandmarkID = "right_heel"
	LeftFootIndex  LandmarkID = "left_foot_index"
	RightFootIndex LandmarkID = "right_foot_index"
)

// LandmarkCount is the size of the provider's landmark set. A frame with
// any other count is structurally invalid.
const LandmarkCount = 33

// indexToID maps the provider's positional landmark order onto named
// identifiers. Unnamed points get synthetic "point_NN" identifiers so a
// full frame round-trips without loss.
var indexToID = map[int]LandmarkID{
	0:  Nose,
	11: LeftShoulder,
	12: RightShoulder,
	13: LeftElbow,
	14: RightElbow,
	15: LeftWrist,
	16: RightWrist,
	23: LeftHip,
	24: RightHip,
	25: LeftKnee,
	26: RightKnee,
	27: LeftAnkle,
	28: RightAnkle,
	29: LeftHeel,
	30: RightHeel,
	31: LeftFootIndex,
	32: RightFootIndex,
}

// IDForIndex returns the landmark identifier for a positional index in
// the provider's ordering.
func IDForIndex(i int) LandmarkID {
	if id, ok := indexToID[i]; ok {
		return id
	}
	return LandmarkID(fmt.Sprintf("point_%02d", i))
}

// Landmark is a single body keypoint in one frame. Positions are in the
// provider's normalised image coordinates until l1norm re-expresses them
// relative to hip centre and torso length. Y grows downward.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`

	// Reliable is cleared by the normaliser when Visibility falls below
	// the configured threshold. Unreliable landmarks are kept so
	// downstream stages can choose to hold or exclude them.
	Reliable bool `json:"-"`
}

// Pos returns the landmark position as a vector.
func (l Landmark) Pos() Vec3 { return Vec3{l.X, l.Y, l.Z} }

// Frame is one sample of the landmark stream.
type Frame struct {
	Index     int
	TimeSecs  float64
	Landmarks map[LandmarkID]Landmark
}

// Get returns the named landmark. The second return is false when the
// landmark is absent or marked unreliable.
func (f Frame) Get(id LandmarkID) (Landmark, bool) {
	lm, ok := f.Landmarks[id]
	if !ok || !lm.Reliable {
		return lm, false
	}
	return lm, true
}

// GetAny returns the named landmark regardless of reliability.
func (f Frame) GetAny(id LandmarkID) (Landmark, bool) {
	lm, ok := f.Landmarks[id]
	return lm, ok
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	out := Frame{Index: f.Index, TimeSecs: f.TimeSecs, Landmarks: make(map[LandmarkID]Landmark, len(f.Landmarks))}
	for id, lm := range f.Landmarks {
		out.Landmarks[id] = lm
	}
	return out
}

// FrameFromSlice builds a Frame from the provider's positional landmark
// array. Returns ErrLandmarkCount when the array is not the full set.
func FrameFromSlice(index int, timeSecs float64, lms []Landmark) (Frame, error) {
	if len(lms) != LandmarkCount {
		return Frame{}, fmt.Errorf("frame %d has %d landmarks, want %d: %w", index, len(lms), LandmarkCount, ErrLandmarkCount)
	}
	f := Frame{Index: index, TimeSecs: timeSecs, Landmarks: make(map[LandmarkID]Landmark, LandmarkCount)}
	for i, lm := range lms {
		lm.Reliable = true
		f.Landmarks[IDForIndex(i)] = lm
	}
	return f, nil
}
