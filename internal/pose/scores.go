package pose

// Scores are the composite 0-100 ratings of one kick instance.
type Scores struct {
	Form    float64 `json:"form"`
	Power   float64 `json:"power"`
	Balance float64 `json:"balance"`
	Overall float64 `json:"overall"`
}

// ArchetypeConfidence is one entry of a ranked classification.
type ArchetypeConfidence struct {
	Archetype  string  `json:"archetype"`
	Name       string  `json:"name,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Classification is the ranked outcome of matching a kick against the
// signature library.
type Classification struct {
	// Best is the top archetype identifier, or "unknown" when the top
	// confidence falls below the configured minimum.
	Best string `json:"best"`

	// Ambiguous is set when the top two confidences are within the
	// configured epsilon. The ranking is still returned, ordered
	// deterministically.
	Ambiguous bool `json:"ambiguous"`

	Ranked []ArchetypeConfidence `json:"ranked"`
}
