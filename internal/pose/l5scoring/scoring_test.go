package l5scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojang-data/kick.report/internal/pose"
	"github.com/dojang-data/kick.report/internal/pose/l4phases"
)

func testCfg() Config {
	return Config{
		FormWeight:               0.4,
		PowerWeight:              0.35,
		BalanceWeight:            0.25,
		ReferencePeakVelocityMps: 12,
		TorsoLengthMeters:        0.5,
		BalanceVarianceScale:     0.05,
		LateralDeviationScale:    0.5,
	}
}

func stillSupport(n int) []pose.Vec3 {
	path := make([]pose.Vec3, n)
	for i := range path {
		path[i] = pose.Vec3{X: -0.2, Y: 1}
	}
	return path
}

func goodKick() *l4phases.KickInstance {
	return &l4phases.KickInstance{
		KneeAngle:        l4phases.Stat{Min: 88, Max: 180, Avg: 140, Count: 19},
		KickHeight:       l4phases.Stat{Max: 72, Avg: 30, Count: 19},
		ChamberTimeSecs:  0.1,
		TotalTimeSecs:    0.63,
		PeakVelocity:     24, // 12 m/s at 0.5m torso
		HipRotationDelta: 90,
		FootPath: []pose.Vec3{
			{X: 0.3, Y: 0.5}, {X: 0.6, Y: 0.3}, {X: 0.9, Y: 0.2}, {X: 1.1, Y: 0.2},
		},
		SupportPath: stillSupport(19),
	}
}

func TestScorePerfectComponents(t *testing.T) {
	s := New(testCfg())
	scores := s.Score(goodKick())

	// Locked-out extension, compact chamber, planar path.
	assert.InDelta(t, 100, scores.Form, 1e-6)
	// Reference-speed kick with full hip rotation.
	assert.InDelta(t, 100, scores.Power, 1e-6)
	// A motionless support ankle.
	assert.InDelta(t, 100, scores.Balance, 1e-6)
	assert.InDelta(t, 100, scores.Overall, 1e-6)
}

func TestScoreWeakKick(t *testing.T) {
	s := New(testCfg())
	k := goodKick()
	k.KneeAngle.Max = 120 // never extended
	k.ChamberTimeSecs = 0.8
	k.PeakVelocity = 2
	k.HipRotationDelta = 0

	scores := s.Score(k)
	assert.Less(t, scores.Form, 50.0)
	assert.Less(t, scores.Power, 20.0)
	assert.Less(t, scores.Overall, scores.Balance)
}

func TestScoreBoundsUnderAdversarialInput(t *testing.T) {
	s := New(testCfg())
	cases := []*l4phases.KickInstance{
		{},
		{KneeAngle: l4phases.Stat{Max: math.Inf(1), Count: 1},
			PeakVelocity: math.Inf(1), HipRotationDelta: 1e9},
		{KneeAngle: l4phases.Stat{Max: math.NaN(), Count: 1},
			ChamberTimeSecs: math.NaN(), PeakVelocity: math.NaN()},
		{KneeAngle: l4phases.Stat{Max: -500, Count: 1},
			PeakVelocity: -3, HipRotationDelta: -40},
	}
	for i, k := range cases {
		scores := s.Score(k)
		for name, v := range map[string]float64{
			"form": scores.Form, "power": scores.Power,
			"balance": scores.Balance, "overall": scores.Overall,
		} {
			assert.GreaterOrEqualf(t, v, 0.0, "case %d %s", i, name)
			assert.LessOrEqualf(t, v, 100.0, "case %d %s", i, name)
			assert.Falsef(t, math.IsNaN(v), "case %d %s is NaN", i, name)
		}
	}
}

func TestBalancePenalisesWobble(t *testing.T) {
	s := New(testCfg())

	steady := goodKick()
	wobbly := goodKick()
	wobbly.SupportPath = nil
	for i := 0; i < 19; i++ {
		wobbly.SupportPath = append(wobbly.SupportPath,
			pose.Vec3{X: -0.2 + 0.6*float64(i%2), Y: 1})
	}

	sSteady := s.Score(steady)
	sWobbly := s.Score(wobbly)
	assert.Greater(t, sSteady.Balance, sWobbly.Balance)
	assert.Equal(t, 0.0, sWobbly.Balance, "hopping past the variance scale zeroes balance")
}

func TestFormPenalisesOutOfPlanePath(t *testing.T) {
	s := New(testCfg())

	flat := goodKick()
	swerving := goodKick()
	swerving.FootPath = []pose.Vec3{
		{X: 0.3, Y: 0.5}, {X: 0.6, Y: 0.3, Z: 0.4}, {X: 0.9, Y: 0.2, Z: -0.4}, {X: 1.1, Y: 0.2},
	}

	assert.Greater(t, s.Score(flat).Form, s.Score(swerving).Form)
}

func TestWeightRenormalisation(t *testing.T) {
	cfg := testCfg()
	cfg.FormWeight, cfg.PowerWeight, cfg.BalanceWeight = 1, 1, 0
	s := New(cfg)

	k := goodKick()
	scores := s.Score(k)
	// With balance weighted out, overall is the form/power mean.
	assert.InDelta(t, (scores.Form+scores.Power)/2, scores.Overall, 1e-6)
}

func TestGrade(t *testing.T) {
	tests := []struct {
		overall float64
		want    string
	}{
		{95, "A+"}, {90, "A+"}, {87, "A"}, {82, "A-"}, {77, "B+"},
		{72, "B"}, {67, "B-"}, {61, "C+"}, {56, "C"}, {30, "D"}, {0, "D"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.overall), "overall %.0f", tt.overall)
	}
}

func TestRecommendations(t *testing.T) {
	k := goodKick()
	recs := Recommendations(k)
	require.NotEmpty(t, recs)
	assert.Contains(t, recs, "Full leg extension, maximum reach")
	assert.Contains(t, recs, "Head-level kick, competition standard")

	bent := goodKick()
	bent.KneeAngle.Max = 120
	bent.KickHeight.Max = 30
	bent.ChamberTimeSecs = 0.9
	bent.TimedOut = true
	recs = Recommendations(bent)
	assert.Contains(t, recs, "Bent knee at impact; focus on snapping the extension")
	assert.Contains(t, recs, "Low kick; work on hip mobility for height")
	assert.Contains(t, recs, "Slow chamber telegraphs the kick; drive the knee up faster")
	assert.Contains(t, recs, "Retraction did not return to stance; rechamber and set down under control")

	untracked := &l4phases.KickInstance{}
	recs = Recommendations(untracked)
	assert.Contains(t, recs, "Knee not tracked reliably; film side-on with the full body in frame")
}
