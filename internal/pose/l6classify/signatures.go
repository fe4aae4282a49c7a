package l6classify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Feature vector dimensions, in order.
const (
	DimKneeAngle = iota // degrees, average over the kick window
	DimHipFlexion
	DimKickHeight // peak, percent of body height
	DimCurvature  // [0,1] circular-vs-linear foot path
	NumDims
)

// Signature is the immutable reference prototype for one kick archetype:
// a centroid in feature space plus per-dimension weights. Weights double
// as inverse scales, making the distance dimensionless across degrees,
// percentages and ratios.
type Signature struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Centroid [NumDims]float64  `json:"centroid"`
	Weights  [NumDims]float64  `json:"weights"`
}

// defaultWeights normalise each dimension by its typical spread between
// archetypes: ~40° of knee angle, ~35° of hip flexion, ~30 points of
// height, ~0.35 of curvature.
var defaultWeights = [NumDims]float64{1.0 / 40, 1.0 / 35, 1.0 / 30, 1.0 / 0.35}

// DefaultSignatures returns the built-in archetype library: the eight
// standard Taekwondo kicks. Centroids are in feature-vector units
// (degrees, degrees, percent, ratio).
func DefaultSignatures() []Signature {
	mk := func(id, name string, knee, hip, height, curvature float64) Signature {
		return Signature{
			ID:       id,
			Name:     name,
			Centroid: [NumDims]float64{knee, hip, height, curvature},
			Weights:  defaultWeights,
		}
	}
	return []Signature{
		mk("dollyo_chagi", "Roundhouse Kick (Dollyo Chagi)", 140, 130, 70, 0.50),
		mk("ap_chagi", "Front Kick (Ap Chagi)", 150, 115, 55, 0.15),
		mk("yeop_chagi", "Side Kick (Yeop Chagi)", 155, 100, 62, 0.20),
		mk("dwi_chagi", "Back Kick (Dwi Chagi)", 145, 95, 52, 0.25),
		mk("naeryeo_chagi", "Axe Kick (Naeryeo Chagi)", 165, 130, 88, 0.35),
		mk("huryo_chagi", "Hook Kick (Huryo Chagi)", 132, 108, 68, 0.72),
		mk("bandal_chagi", "Crescent Kick (Bandal Chagi)", 160, 125, 78, 0.42),
		mk("mom_dollyo_chagi", "Spinning Kick (Mom Dollyo Chagi)", 138, 112, 70, 0.90),
	}
}

// LoadSignatures reads an archetype library from a JSON file, for sites
// that tune centroids to their own athletes. Signatures with missing
// weights inherit the default per-dimension weights.
func LoadSignatures(path string) ([]Signature, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read signatures file: %w", err)
	}
	var sigs []Signature
	if err := json.Unmarshal(data, &sigs); err != nil {
		return nil, fmt.Errorf("failed to parse signatures JSON: %w", err)
	}
	if len(sigs) == 0 {
		return nil, fmt.Errorf("signatures file %s contains no signatures", path)
	}
	for i := range sigs {
		if sigs[i].ID == "" {
			return nil, fmt.Errorf("signature %d has no id", i)
		}
		var zero [NumDims]float64
		if sigs[i].Weights == zero {
			sigs[i].Weights = defaultWeights
		}
	}
	return sigs, nil
}
