package l6classify

import (
	"math"
	"sort"

	"github.com/dojang-data/kick.report/internal/pose"
)

const (
	// UnknownKickType is reported when no archetype clears the
	// confidence floor.
	UnknownKickType = "unknown"

	defaultDistanceScale    = 2.0
	defaultMinConfidence    = 20.0
	defaultAmbiguityEpsilon = 5.0
)

// Config holds the classifier tunables. Zero values fall back to the
// built-in defaults.
type Config struct {
	// DistanceScale maps weighted feature distance onto confidence:
	// confidence = 100 * max(0, 1 - d/DistanceScale).
	DistanceScale float64
	// MinConfidence is the floor below which the best match is
	// reported as unknown.
	MinConfidence float64
	// AmbiguityEpsilon flags the result ambiguous when the top two
	// confidences are within this many points of each other.
	AmbiguityEpsilon float64
}

// Classifier matches a kick's aggregated feature vector against an
// archetype signature library. It holds no per-kick state and is safe
// for concurrent use.
type Classifier struct {
	signatures []Signature
	cfg        Config
}

// New builds a classifier over the given signature library. A nil or
// empty library falls back to DefaultSignatures.
func New(signatures []Signature, cfg Config) *Classifier {
	if len(signatures) == 0 {
		signatures = DefaultSignatures()
	}
	if cfg.DistanceScale <= 0 {
		cfg.DistanceScale = defaultDistanceScale
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = defaultMinConfidence
	}
	if cfg.AmbiguityEpsilon <= 0 {
		cfg.AmbiguityEpsilon = defaultAmbiguityEpsilon
	}
	return &Classifier{signatures: signatures, cfg: cfg}
}

// Classify scores the feature vector against every signature and
// returns the full ranking, best match first. Ties in confidence break
// on archetype ID so the ranking is deterministic.
func (c *Classifier) Classify(features [NumDims]float64) pose.Classification {
	ranked := make([]pose.ArchetypeConfidence, 0, len(c.signatures))
	for _, sig := range c.signatures {
		ranked = append(ranked, pose.ArchetypeConfidence{
			Archetype:  sig.ID,
			Name:       sig.Name,
			Confidence: c.confidence(features, sig),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].Archetype < ranked[j].Archetype
	})

	out := pose.Classification{Best: UnknownKickType, Ranked: ranked}
	if len(ranked) == 0 {
		return out
	}
	if ranked[0].Confidence >= c.cfg.MinConfidence {
		out.Best = ranked[0].Archetype
	}
	if len(ranked) > 1 && ranked[0].Confidence-ranked[1].Confidence < c.cfg.AmbiguityEpsilon {
		out.Ambiguous = true
	}
	return out
}

// confidence converts the weighted Euclidean distance between the
// feature vector and a signature centroid into a [0,100] score.
func (c *Classifier) confidence(features [NumDims]float64, sig Signature) float64 {
	var sum float64
	for i := 0; i < NumDims; i++ {
		d := sig.Weights[i] * (features[i] - sig.Centroid[i])
		sum += d * d
	}
	dist := math.Sqrt(sum)
	conf := 100 * (1 - dist/c.cfg.DistanceScale)
	if conf < 0 {
		return 0
	}
	return conf
}
