package pose

import "errors"

// Structurally invalid input is the only fatal failure class. Per-frame
// data problems (low visibility, degenerate geometry, missing motion)
// are recovered locally and surfaced as result status or flags.
var (
	// ErrLandmarkCount reports a frame whose landmark set is not the
	// full provider vocabulary.
	ErrLandmarkCount = errors.New("wrong landmark count")

	// ErrNonMonotonicFrames reports frame indices that do not strictly
	// increase.
	ErrNonMonotonicFrames = errors.New("non-monotonic frame indices")

	// ErrInvalidFPS reports a non-positive sampling rate.
	ErrInvalidFPS = errors.New("invalid fps")
)

// Status summarises an analysis outcome.
type Status string

const (
	// StatusOK means at least one complete kick cycle was detected.
	StatusOK Status = "ok"

	// StatusNoKickDetected means the analysed window contained no full
	// chamber→extension→retraction cycle. This is a normal outcome,
	// not an error.
	StatusNoKickDetected Status = "no_kick_detected"
)

// Phase is one state of the kick lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseChamber    Phase = "chamber"
	PhaseExtension  Phase = "extension"
	PhaseRetraction Phase = "retraction"
	PhaseComplete   Phase = "complete"
)

// Side identifies the kicking leg.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Hip returns the hip landmark for the side.
func (s Side) Hip() LandmarkID {
	if s == SideLeft {
		return LeftHip
	}
	return RightHip
}

// Knee returns the knee landmark for the side.
func (s Side) Knee() LandmarkID {
	if s == SideLeft {
		return LeftKnee
	}
	return RightKnee
}

// Ankle returns the ankle landmark for the side.
func (s Side) Ankle() LandmarkID {
	if s == SideLeft {
		return LeftAnkle
	}
	return RightAnkle
}

// Foot returns the foot-index landmark for the side.
func (s Side) Foot() LandmarkID {
	if s == SideLeft {
		return LeftFootIndex
	}
	return RightFootIndex
}

// Shoulder returns the shoulder landmark for the side.
func (s Side) Shoulder() LandmarkID {
	if s == SideLeft {
		return LeftShoulder
	}
	return RightShoulder
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}
