package l2smooth

import (
	"github.com/dojang-data/kick.report/internal/pose"
)

// fastAlpha is the blend factor applied during high-velocity segments.
// Close to 1 so fast transitions pass through nearly unsmoothed.
const fastAlpha = 0.85

// Config holds smoother tuning.
type Config struct {
	// Window is the nominal moving-average window in frames. The EMA
	// blend factor is derived as 2/(window+1).
	Window int

	// HighMotionThreshold is the per-frame displacement (torso lengths)
	// above which the fast blend factor is used instead.
	HighMotionThreshold float64

	// MaxHoldFrames bounds how many consecutive unreliable frames a
	// landmark's last good value is held before the outage counts as a
	// gap for the caller.
	MaxHoldFrames int
}

type landmarkState struct {
	val    pose.Vec3
	seeded bool
	hold   int
}

// Smoother carries per-landmark EMA state for one stream. Not safe for
// concurrent use; each stream gets its own instance.
type Smoother struct {
	cfg   Config
	alpha float64
	state map[pose.LandmarkID]*landmarkState
}

// New returns a Smoother for one frame stream.
func New(cfg Config) *Smoother {
	if cfg.Window < 1 {
		cfg.Window = 1
	}
	return &Smoother{
		cfg:   cfg,
		alpha: 2.0 / (float64(cfg.Window) + 1),
		state: make(map[pose.LandmarkID]*landmarkState),
	}
}

// Reset drops all per-landmark state, e.g. after a stream gap.
func (s *Smoother) Reset() {
	s.state = make(map[pose.LandmarkID]*landmarkState)
}

// Smooth returns the frame with each reliable landmark blended into its
// running average. Unreliable landmarks keep their last good smoothed
// position (frozen, never extrapolated) and stay marked unreliable so
// downstream aggregates exclude them.
func (s *Smoother) Smooth(f pose.Frame) pose.Frame {
	out := f.Clone()
	for id, lm := range out.Landmarks {
		st := s.state[id]
		if st == nil {
			st = &landmarkState{}
			s.state[id] = st
		}

		if !lm.Reliable {
			if st.seeded {
				// Position freeze: hold the last good value.
				st.hold++
				lm.X, lm.Y, lm.Z = st.val.X, st.val.Y, st.val.Z
				if st.hold == s.cfg.MaxHoldFrames+1 {
					pose.Tracef("[l2smooth] frame %d: %s unreliable beyond hold window (%d frames)", f.Index, id, st.hold)
				}
			}
			out.Landmarks[id] = lm
			continue
		}

		raw := lm.Pos()
		if !st.seeded {
			st.val = raw
			st.seeded = true
		} else {
			a := s.alpha
			if raw.Dist(st.val) > s.cfg.HighMotionThreshold {
				// Fast transition: shorten the effective window so
				// kick onset is not lagged.
				a = fastAlpha
			}
			st.val = st.val.Scale(1 - a).Add(raw.Scale(a))
		}
		st.hold = 0
		lm.X, lm.Y, lm.Z = st.val.X, st.val.Y, st.val.Z
		out.Landmarks[id] = lm
	}
	return out
}

// HoldCount reports how many consecutive frames the landmark has been
// held at its last good value.
func (s *Smoother) HoldCount(id pose.LandmarkID) int {
	if st := s.state[id]; st != nil {
		return st.hold
	}
	return 0
}
