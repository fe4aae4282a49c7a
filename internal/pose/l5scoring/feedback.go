package l5scoring

import "github.com/dojang-data/kick.report/internal/pose/l4phases"

// Grade maps an overall score onto a coaching letter grade.
func Grade(overall float64) string {
	switch {
	case overall >= 90:
		return "A+"
	case overall >= 85:
		return "A"
	case overall >= 80:
		return "A-"
	case overall >= 75:
		return "B+"
	case overall >= 70:
		return "B"
	case overall >= 65:
		return "B-"
	case overall >= 60:
		return "C+"
	case overall >= 55:
		return "C"
	default:
		return "D"
	}
}

// Recommendations derives coaching hints from a kick's kinematics.
// Bands follow competition coaching practice: full knee extension past
// 160°, head-height kicks at 70%+ of body height, a deep chamber, and a
// planted support leg.
func Recommendations(k *l4phases.KickInstance) []string {
	var recs []string

	switch {
	case k.KneeAngle.Count == 0:
		recs = append(recs, "Knee not tracked reliably; film side-on with the full body in frame")
	case k.KneeAngle.Max >= 160:
		recs = append(recs, "Full leg extension, maximum reach")
	case k.KneeAngle.Max >= 140:
		recs = append(recs, "Good extension; aim for a full lock at impact")
	default:
		recs = append(recs, "Bent knee at impact; focus on snapping the extension")
	}

	switch {
	case k.KickHeight.Count == 0:
	case k.KickHeight.Max >= 70:
		recs = append(recs, "Head-level kick, competition standard")
	case k.KickHeight.Max >= 50:
		recs = append(recs, "Chest-level kick; raise the knee higher in the chamber")
	default:
		recs = append(recs, "Low kick; work on hip mobility for height")
	}

	if k.ChamberTimeSecs > maxChamberSecs {
		recs = append(recs, "Slow chamber telegraphs the kick; drive the knee up faster")
	}

	if k.TimedOut {
		recs = append(recs, "Retraction did not return to stance; rechamber and set down under control")
	}

	return recs
}
