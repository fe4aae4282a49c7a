package l6classify

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyArchetypes(t *testing.T) {
	c := New(nil, Config{})

	tests := []struct {
		name     string
		features [NumDims]float64
		want     string
	}{
		{
			name:     "roundhouse near centroid",
			features: [NumDims]float64{142, 128, 72, 0.52},
			want:     "dollyo_chagi",
		},
		{
			name:     "front kick linear low curvature",
			features: [NumDims]float64{152, 114, 53, 0.12},
			want:     "ap_chagi",
		},
		{
			name:     "axe kick high and extended",
			features: [NumDims]float64{168, 128, 90, 0.33},
			want:     "naeryeo_chagi",
		},
		{
			name:     "spinning kick saturated curvature",
			features: [NumDims]float64{136, 110, 69, 0.95},
			want:     "mom_dollyo_chagi",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.features)
			assert.Equal(t, tt.want, got.Best)
			require.Len(t, got.Ranked, len(DefaultSignatures()))
			assert.Equal(t, tt.want, got.Ranked[0].Archetype)
		})
	}
}

func TestClassifyRankingOrderedAndBounded(t *testing.T) {
	c := New(nil, Config{})
	got := c.Classify([NumDims]float64{145, 110, 65, 0.4})

	for i, rc := range got.Ranked {
		assert.GreaterOrEqual(t, rc.Confidence, 0.0)
		assert.LessOrEqual(t, rc.Confidence, 100.0)
		if i > 0 {
			assert.GreaterOrEqual(t, got.Ranked[i-1].Confidence, rc.Confidence,
				"ranking must be non-increasing")
		}
	}
}

func TestClassifyUnknownBelowFloor(t *testing.T) {
	c := New(nil, Config{})

	// A feature vector far from every centroid.
	got := c.Classify([NumDims]float64{10, 300, -40, 5})
	assert.Equal(t, UnknownKickType, got.Best)
	for _, rc := range got.Ranked {
		assert.Less(t, rc.Confidence, 20.0)
	}
}

func TestClassifyAmbiguousFlag(t *testing.T) {
	// Two signatures made equidistant from the query point.
	sigs := []Signature{
		{ID: "a", Centroid: [NumDims]float64{140, 120, 70, 0.4}, Weights: defaultWeights},
		{ID: "b", Centroid: [NumDims]float64{150, 120, 70, 0.4}, Weights: defaultWeights},
	}
	c := New(sigs, Config{})

	got := c.Classify([NumDims]float64{145, 120, 70, 0.4})
	assert.True(t, got.Ambiguous)
	// Equal confidences break the tie on archetype ID.
	assert.Equal(t, "a", got.Best)

	got = c.Classify([NumDims]float64{140, 120, 70, 0.4})
	assert.False(t, got.Ambiguous)
	assert.Equal(t, "a", got.Best)
}

func TestClassifyDeterministic(t *testing.T) {
	c := New(nil, Config{})
	features := [NumDims]float64{141.3, 119.8, 71.2, 0.51}

	first := c.Classify(features)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, c.Classify(features)); diff != "" {
			t.Fatalf("classification not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestConfidenceFormula(t *testing.T) {
	c := New(nil, Config{DistanceScale: 2})
	sig := Signature{Centroid: [NumDims]float64{140, 120, 70, 0.5}, Weights: defaultWeights}

	// Exact centroid match is full confidence.
	assert.InDelta(t, 100, c.confidence(sig.Centroid, sig), 1e-9)

	// One weighted unit away in a single dimension.
	features := sig.Centroid
	features[DimKneeAngle] += 40 // weight 1/40 makes this distance 1.0
	assert.InDelta(t, 100*(1-1.0/2.0), c.confidence(features, sig), 1e-9)

	// Beyond the scale clamps to zero rather than going negative.
	features[DimKneeAngle] = sig.Centroid[DimKneeAngle] + 40*2.5
	assert.Equal(t, 0.0, c.confidence(features, sig))
}

func TestLoadSignatures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sigs.json")
	payload := `[
		{"id": "custom_kick", "name": "Custom", "centroid": [150, 110, 60, 0.3]},
		{"id": "weighted_kick", "centroid": [140, 120, 70, 0.5],
		 "weights": [0.05, 0.05, 0.05, 4]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	sigs, err := LoadSignatures(path)
	require.NoError(t, err)
	require.Len(t, sigs, 2)

	// Missing weights inherit the defaults.
	assert.Equal(t, defaultWeights, sigs[0].Weights)
	assert.Equal(t, [NumDims]float64{0.05, 0.05, 0.05, 4}, sigs[1].Weights)
}

func TestLoadSignaturesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSignatures(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o644))
	_, err = LoadSignatures(empty)
	assert.Error(t, err)

	noID := filepath.Join(dir, "noid.json")
	require.NoError(t, os.WriteFile(noID, []byte(`[{"centroid":[1,2,3,4]}]`), 0o644))
	_, err = LoadSignatures(noID)
	assert.Error(t, err)
}

func TestDefaultSignaturesSeparation(t *testing.T) {
	sigs := DefaultSignatures()
	require.Len(t, sigs, 8)

	// Every pair of centroids must be separated by enough weighted
	// distance that a query at one centroid is never ambiguous.
	for i := range sigs {
		for j := i + 1; j < len(sigs); j++ {
			var sum float64
			for d := 0; d < NumDims; d++ {
				diff := defaultWeights[d] * (sigs[i].Centroid[d] - sigs[j].Centroid[d])
				sum += diff * diff
			}
			assert.Greater(t, math.Sqrt(sum), 0.2,
				"%s and %s centroids too close", sigs[i].ID, sigs[j].ID)
		}
	}
}
