package l4phases

import (
	"fmt"
	"math"

	"github.com/dojang-data/kick.report/internal/pose"
	"github.com/dojang-data/kick.report/internal/pose/l3kinematics"
)

// Config holds the segmentation thresholds. Zero values are not usable;
// build one from the tuning config via the pipeline package.
type Config struct {
	// ChamberVelocityThreshold is the knee flexion rate (deg/s,
	// magnitude) that marks chamber onset.
	ChamberVelocityThreshold float64

	// ExtensionVelocityThreshold is the knee extension rate (deg/s)
	// that marks the strike beginning.
	ExtensionVelocityThreshold float64

	// SupportStabilityThreshold is the maximum support-ankle speed
	// (torso lengths/s) for the support leg to count as planted.
	SupportStabilityThreshold float64

	// RetractionSpeedFraction: extension ends when foot speed drops
	// below this fraction of its peak.
	RetractionSpeedFraction float64

	// RetractionProximityThreshold: retraction completes when the foot
	// returns within this distance (torso lengths) of its pre-kick
	// position.
	RetractionProximityThreshold float64

	// MaxKickDurationFrames forces completion of an overlong kick.
	MaxKickDurationFrames int

	// FrameIntervalSecs is 1/fps, used for phase durations.
	FrameIntervalSecs float64
}

type snapshot struct {
	idx         int
	timeSecs    float64
	leg         l3kinematics.LegFeatures
	hipRotation float64
}

// Machine is the phase segmentation state machine for one stream. Not
// safe for concurrent use; each stream gets its own instance.
type Machine struct {
	cfg   Config
	state pose.Phase
	side  pose.Side

	// window holds every frame since chamber onset (bounded by
	// MaxKickDurationFrames); extStart/retrStart index into it.
	window    []snapshot
	extStart  int
	retrStart int

	preKickFoot  pose.Vec3
	preKickValid bool
	lastIdleFoot map[pose.Side]pose.Vec3
	lastIdleSeen map[pose.Side]bool

	peakFootSpeed float64
	emitted       int
}

// NewMachine returns a Machine in the Idle state.
func NewMachine(cfg Config) *Machine {
	return &Machine{
		cfg:          cfg,
		state:        pose.PhaseIdle,
		lastIdleFoot: make(map[pose.Side]pose.Vec3, 2),
		lastIdleSeen: make(map[pose.Side]bool, 2),
	}
}

// State returns the current phase.
func (m *Machine) State() pose.Phase { return m.state }

// Step consumes one frame's features and returns a finalized
// KickInstance when a full cycle completes, or nil otherwise.
func (m *Machine) Step(feats l3kinematics.Features) *KickInstance {
	switch m.state {
	case pose.PhaseIdle:
		m.stepIdle(feats)
		return nil
	case pose.PhaseChamber:
		return m.stepChamber(feats)
	case pose.PhaseExtension:
		return m.stepExtension(feats)
	case pose.PhaseRetraction:
		return m.stepRetraction(feats)
	default:
		return nil
	}
}

func (m *Machine) stepIdle(feats l3kinematics.Features) {
	// Remember where each foot rests so retraction proximity has a
	// pre-kick reference.
	for _, side := range []pose.Side{pose.SideLeft, pose.SideRight} {
		if leg := feats.Leg(side); leg.FootPosValid {
			m.lastIdleFoot[side] = leg.FootPos
			m.lastIdleSeen[side] = true
		}
	}

	side := feats.KickingSide
	leg := feats.Leg(side)
	if !m.chamberOnset(leg) {
		return
	}

	m.side = side
	m.preKickFoot, m.preKickValid = m.lastIdleFoot[side], m.lastIdleSeen[side]
	m.window = m.window[:0]
	m.window = append(m.window, m.snap(feats))
	m.extStart, m.retrStart = -1, -1
	m.peakFootSpeed = 0
	if leg.FootSpeedValid {
		m.peakFootSpeed = leg.FootSpeed
	}
	m.state = pose.PhaseChamber
	pose.Diagf("[l4phases] frame %d: chamber onset, %s leg (knee vel %.0f deg/s)", feats.FrameIndex, side, leg.KneeAngularVel)
}

// chamberOnset: rapid knee flexion while the support leg stays planted.
func (m *Machine) chamberOnset(leg l3kinematics.LegFeatures) bool {
	if !leg.AngularValid || leg.KneeAngularVel > -m.cfg.ChamberVelocityThreshold {
		return false
	}
	if leg.SupportSpeedValid && leg.SupportAnkleSpeed > m.cfg.SupportStabilityThreshold {
		return false
	}
	return true
}

func (m *Machine) stepChamber(feats l3kinematics.Features) *KickInstance {
	m.append(feats)
	if m.overlong() {
		pose.Diagf("[l4phases] frame %d: chamber never extended within %d frames, discarding", feats.FrameIndex, m.cfg.MaxKickDurationFrames)
		m.reset()
		return nil
	}
	leg := feats.Leg(m.side)
	if leg.AngularValid && leg.KneeAngularVel >= m.cfg.ExtensionVelocityThreshold {
		m.extStart = len(m.window) - 1
		m.state = pose.PhaseExtension
		// Track the strike's own speed peak; the chamber wind-up spike
		// must not count toward the retraction trigger.
		m.peakFootSpeed = 0
		pose.Tracef("[l4phases] frame %d: extension begins (knee vel %.0f deg/s)", feats.FrameIndex, leg.KneeAngularVel)
	}
	return nil
}

func (m *Machine) stepExtension(feats l3kinematics.Features) *KickInstance {
	m.append(feats)
	if m.overlong() {
		pose.Diagf("[l4phases] frame %d: extension never peaked within %d frames, discarding", feats.FrameIndex, m.cfg.MaxKickDurationFrames)
		m.reset()
		return nil
	}
	leg := feats.Leg(m.side)
	if leg.FootSpeedValid {
		m.peakFootSpeed = math.Max(m.peakFootSpeed, leg.FootSpeed)
	}

	// Knee angle local maximum: angular velocity crosses + to −.
	peaked := leg.AngularValid && leg.KneeAngularVel < 0
	// Or foot speed has peaked and fallen off. Needs at least two
	// extension frames so a peak exists to fall from.
	slowed := leg.FootSpeedValid && m.peakFootSpeed > 0 &&
		len(m.window)-m.extStart > 2 &&
		leg.FootSpeed < m.cfg.RetractionSpeedFraction*m.peakFootSpeed

	if peaked || slowed {
		m.retrStart = len(m.window) - 1
		m.state = pose.PhaseRetraction
		pose.Tracef("[l4phases] frame %d: retraction begins (peaked=%v slowed=%v)", feats.FrameIndex, peaked, slowed)
	}
	return nil
}

func (m *Machine) stepRetraction(feats l3kinematics.Features) *KickInstance {
	m.append(feats)
	leg := feats.Leg(m.side)

	if leg.FootPosValid && m.preKickValid &&
		leg.FootPos.Dist(m.preKickFoot) <= m.cfg.RetractionProximityThreshold {
		return m.complete(false)
	}
	if m.overlong() {
		pose.Diagf("[l4phases] frame %d: kick exceeded %d frames, completing as timed out", feats.FrameIndex, m.cfg.MaxKickDurationFrames)
		return m.complete(true)
	}
	return nil
}

// Flush finalizes end-of-stream state: a kick already retracting is
// completed with the frames observed; anything earlier is a partial
// cycle and is discarded.
func (m *Machine) Flush() *KickInstance {
	if m.state == pose.PhaseRetraction {
		return m.complete(false)
	}
	if m.state != pose.PhaseIdle {
		pose.Diagf("[l4phases] stream ended mid-%s, discarding partial kick", m.state)
	}
	m.reset()
	return nil
}

// Abort discards any in-flight kick, e.g. on a stream gap or caller
// cancellation. Partial instances are never emitted.
func (m *Machine) Abort(reason string) {
	if m.state != pose.PhaseIdle {
		pose.Diagf("[l4phases] aborting in-flight kick mid-%s: %s", m.state, reason)
	}
	m.reset()
}

func (m *Machine) append(feats l3kinematics.Features) {
	m.window = append(m.window, m.snap(feats))
}

func (m *Machine) snap(feats l3kinematics.Features) snapshot {
	side := m.side
	if m.state == pose.PhaseIdle {
		side = feats.KickingSide
	}
	return snapshot{
		idx:         feats.FrameIndex,
		timeSecs:    feats.TimeSecs,
		leg:         feats.Leg(side),
		hipRotation: feats.HipRotation,
	}
}

func (m *Machine) overlong() bool {
	return len(m.window) >= m.cfg.MaxKickDurationFrames
}

func (m *Machine) reset() {
	m.state = pose.PhaseIdle
	m.window = m.window[:0]
	m.extStart, m.retrStart = -1, -1
	m.preKickValid = false
	m.peakFootSpeed = 0
}

// complete packages the window as a KickInstance and resets to Idle.
func (m *Machine) complete(timedOut bool) *KickInstance {
	// A cycle without all three phases is not a kick.
	if m.extStart < 0 || m.retrStart < 0 || len(m.window) == 0 {
		m.reset()
		return nil
	}

	m.emitted++
	inst := &KickInstance{
		ID:         fmt.Sprintf("kick-%04d", m.emitted),
		Side:       m.side,
		StartFrame: m.window[0].idx,
		EndFrame:   m.window[len(m.window)-1].idx + 1,
		TimedOut:   timedOut,
	}

	dt := m.cfg.FrameIntervalSecs
	endExcl := len(m.window)
	inst.ChamberTimeSecs = float64(m.extStart) * dt
	inst.ExtensionTimeSecs = float64(m.retrStart-m.extStart) * dt
	inst.RetractionTimeSecs = float64(endExcl-m.retrStart) * dt
	inst.TotalTimeSecs = inst.ChamberTimeSecs + inst.ExtensionTimeSecs + inst.RetractionTimeSecs

	start := m.window[0].idx
	inst.Segments = []PhaseSegment{
		{Phase: pose.PhaseChamber, StartFrame: start, EndFrame: start + m.extStart, DurationSecs: inst.ChamberTimeSecs},
		{Phase: pose.PhaseExtension, StartFrame: start + m.extStart, EndFrame: start + m.retrStart, DurationSecs: inst.ExtensionTimeSecs},
		{Phase: pose.PhaseRetraction, StartFrame: start + m.retrStart, EndFrame: start + endExcl, DurationSecs: inst.RetractionTimeSecs},
	}

	var knees, hips, heights []float64
	for _, s := range m.window {
		if s.leg.KneeValid {
			knees = append(knees, s.leg.KneeAngle)
		}
		if s.leg.HipFlexValid {
			hips = append(hips, s.leg.HipFlexion)
		}
		if s.leg.HeightValid {
			heights = append(heights, s.leg.KickHeightPct)
		}
		if s.leg.FootSpeedValid {
			inst.PeakVelocity = math.Max(inst.PeakVelocity, s.leg.FootSpeed)
		}
		if s.leg.FootPosValid {
			inst.FootPath = append(inst.FootPath, s.leg.FootPos)
		}
		if s.leg.SupportPosValid {
			inst.SupportPath = append(inst.SupportPath, s.leg.SupportAnklePos)
		}
	}
	inst.KneeAngle = newStat(knees)
	inst.HipFlexion = newStat(hips)
	inst.KickHeight = newStat(heights)

	// Extension-only views: rotation delta and foot-path curvature
	// describe the strike, not the wind-up or withdrawal.
	minRot, maxRot := math.Inf(1), math.Inf(-1)
	var strike []pose.Vec3
	for _, s := range m.window[m.extStart:m.retrStart] {
		minRot = math.Min(minRot, s.hipRotation)
		maxRot = math.Max(maxRot, s.hipRotation)
		if s.leg.FootPosValid {
			strike = append(strike, s.leg.FootPos)
		}
	}
	if maxRot >= minRot {
		inst.HipRotationDelta = maxRot - minRot
	}
	inst.Curvature = pathCurvature(strike)

	pose.Diagf("[l4phases] kick %s complete: frames %d-%d, total %.3fs, peak %.2f u/s, timedOut=%v",
		inst.ID, inst.StartFrame, inst.EndFrame, inst.TotalTimeSecs, inst.PeakVelocity, timedOut)

	m.reset()
	return inst
}
