package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dojang-data/kick.report/internal/pose"
)

// Recording is the on-disk form of a captured landmark stream: one
// landmark slice per frame in canonical 33-point order, at a fixed
// frame rate.
type Recording struct {
	FPS     float64           `json:"fps"`
	Athlete string            `json:"athlete,omitempty"`
	Frames  [][]pose.Landmark `json:"frames"`
}

// LoadRecording reads and validates a recording JSON file.
func LoadRecording(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}

	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse recording: %w", err)
	}
	if rec.FPS <= 0 {
		return nil, fmt.Errorf("recording fps must be positive, got %g", rec.FPS)
	}
	if len(rec.Frames) == 0 {
		return nil, fmt.Errorf("recording has no frames")
	}
	return &rec, nil
}
