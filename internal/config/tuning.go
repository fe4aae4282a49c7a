package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for engine tuning
// parameters. The schema matches the /api/engine/params endpoint so the
// same JSON works for both startup configuration and runtime inspection.
// Fields omitted from the JSON retain their defaults, so partial configs
// are safe.
type TuningConfig struct {
	// Normaliser params
	VisibilityThreshold *float64 `json:"visibility_threshold,omitempty"`

	// Smoother params
	SmoothingWindow     *int     `json:"smoothing_window,omitempty"`
	HighMotionThreshold *float64 `json:"high_motion_threshold,omitempty"`
	MaxHoldFrames       *int     `json:"max_hold_frames,omitempty"`

	// Phase segmentation params
	ChamberVelocityThreshold     *float64 `json:"chamber_velocity_threshold,omitempty"`
	ExtensionVelocityThreshold   *float64 `json:"extension_velocity_threshold,omitempty"`
	SupportStabilityThreshold    *float64 `json:"support_stability_threshold,omitempty"`
	RetractionSpeedFraction      *float64 `json:"retraction_speed_fraction,omitempty"`
	RetractionProximityThreshold *float64 `json:"retraction_proximity_threshold,omitempty"`
	MaxKickDurationFrames        *int     `json:"max_kick_duration_frames,omitempty"`

	// Scoring params
	FormWeight               *float64 `json:"form_weight,omitempty"`
	PowerWeight              *float64 `json:"power_weight,omitempty"`
	BalanceWeight            *float64 `json:"balance_weight,omitempty"`
	ReferencePeakVelocityMps *float64 `json:"reference_peak_velocity_mps,omitempty"`
	TorsoLengthMeters        *float64 `json:"torso_length_meters,omitempty"`
	BalanceVarianceScale     *float64 `json:"balance_variance_scale,omitempty"`
	LateralDeviationScale    *float64 `json:"lateral_deviation_scale,omitempty"`

	// Classification params
	MinClassificationConfidence *float64 `json:"min_classification_confidence,omitempty"`
	DistanceScale               *float64 `json:"distance_scale,omitempty"`
	AmbiguityEpsilon            *float64 `json:"ambiguity_epsilon,omitempty"`
	SignaturesPath              *string  `json:"signatures_path,omitempty"`

	// Streaming ingest params
	IngestQueueDepth *int `json:"ingest_queue_depth,omitempty"`
	MaxGapFrames     *int `json:"max_gap_frames,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file is
// validated to have a .json extension and to stay under the max size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath, searching the current directory and common parent
// directories. Panics if the file cannot be loaded, intended for test
// setup and binaries that have already validated config availability.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/pose/l4phases/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are in range.
func (c *TuningConfig) Validate() error {
	if c.VisibilityThreshold != nil {
		if *c.VisibilityThreshold < 0 || *c.VisibilityThreshold > 1 {
			return fmt.Errorf("visibility_threshold must be between 0 and 1, got %f", *c.VisibilityThreshold)
		}
	}
	if c.SmoothingWindow != nil && *c.SmoothingWindow < 1 {
		return fmt.Errorf("smoothing_window must be at least 1, got %d", *c.SmoothingWindow)
	}
	if c.RetractionSpeedFraction != nil {
		if *c.RetractionSpeedFraction <= 0 || *c.RetractionSpeedFraction >= 1 {
			return fmt.Errorf("retraction_speed_fraction must be in (0,1), got %f", *c.RetractionSpeedFraction)
		}
	}
	if c.MaxKickDurationFrames != nil && *c.MaxKickDurationFrames < 1 {
		return fmt.Errorf("max_kick_duration_frames must be positive, got %d", *c.MaxKickDurationFrames)
	}
	for name, w := range map[string]*float64{
		"form_weight":    c.FormWeight,
		"power_weight":   c.PowerWeight,
		"balance_weight": c.BalanceWeight,
	} {
		if w != nil && (*w < 0 || *w > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *w)
		}
	}
	if c.DistanceScale != nil && *c.DistanceScale <= 0 {
		return fmt.Errorf("distance_scale must be positive, got %f", *c.DistanceScale)
	}
	if c.IngestQueueDepth != nil && *c.IngestQueueDepth < 1 {
		return fmt.Errorf("ingest_queue_depth must be at least 1, got %d", *c.IngestQueueDepth)
	}
	return nil
}

// GetVisibilityThreshold returns the visibility_threshold value or the default.
func (c *TuningConfig) GetVisibilityThreshold() float64 {
	if c.VisibilityThreshold == nil {
		return 0.3
	}
	return *c.VisibilityThreshold
}

// GetSmoothingWindow returns the smoothing_window value or the default.
func (c *TuningConfig) GetSmoothingWindow() int {
	if c.SmoothingWindow == nil {
		return 5
	}
	return *c.SmoothingWindow
}

// GetHighMotionThreshold returns the high_motion_threshold value or the
// default. Units: torso lengths per frame.
func (c *TuningConfig) GetHighMotionThreshold() float64 {
	if c.HighMotionThreshold == nil {
		return 0.15
	}
	return *c.HighMotionThreshold
}

// GetMaxHoldFrames returns the max_hold_frames value or the default.
func (c *TuningConfig) GetMaxHoldFrames() int {
	if c.MaxHoldFrames == nil {
		return 5
	}
	return *c.MaxHoldFrames
}

// GetChamberVelocityThreshold returns the chamber_velocity_threshold
// value or the default. Units: degrees per second of knee flexion.
func (c *TuningConfig) GetChamberVelocityThreshold() float64 {
	if c.ChamberVelocityThreshold == nil {
		return 150.0
	}
	return *c.ChamberVelocityThreshold
}

// GetExtensionVelocityThreshold returns the extension_velocity_threshold
// value or the default. Units: degrees per second of knee extension.
func (c *TuningConfig) GetExtensionVelocityThreshold() float64 {
	if c.ExtensionVelocityThreshold == nil {
		return 120.0
	}
	return *c.ExtensionVelocityThreshold
}

// GetSupportStabilityThreshold returns the support_stability_threshold
// value or the default. Units: torso lengths per second.
func (c *TuningConfig) GetSupportStabilityThreshold() float64 {
	if c.SupportStabilityThreshold == nil {
		return 1.0
	}
	return *c.SupportStabilityThreshold
}

// GetRetractionSpeedFraction returns the retraction_speed_fraction value
// or the default.
func (c *TuningConfig) GetRetractionSpeedFraction() float64 {
	if c.RetractionSpeedFraction == nil {
		return 0.7
	}
	return *c.RetractionSpeedFraction
}

// GetRetractionProximityThreshold returns the
// retraction_proximity_threshold value or the default. Units: torso lengths.
func (c *TuningConfig) GetRetractionProximityThreshold() float64 {
	if c.RetractionProximityThreshold == nil {
		return 0.25
	}
	return *c.RetractionProximityThreshold
}

// GetMaxKickDurationFrames returns the max_kick_duration_frames value or
// the default.
func (c *TuningConfig) GetMaxKickDurationFrames() int {
	if c.MaxKickDurationFrames == nil {
		return 90
	}
	return *c.MaxKickDurationFrames
}

// GetFormWeight returns the form_weight value or the default.
func (c *TuningConfig) GetFormWeight() float64 {
	if c.FormWeight == nil {
		return 0.4
	}
	return *c.FormWeight
}

// GetPowerWeight returns the power_weight value or the default.
func (c *TuningConfig) GetPowerWeight() float64 {
	if c.PowerWeight == nil {
		return 0.35
	}
	return *c.PowerWeight
}

// GetBalanceWeight returns the balance_weight value or the default.
func (c *TuningConfig) GetBalanceWeight() float64 {
	if c.BalanceWeight == nil {
		return 0.25
	}
	return *c.BalanceWeight
}

// GetReferencePeakVelocityMps returns the reference_peak_velocity_mps
// value or the default.
func (c *TuningConfig) GetReferencePeakVelocityMps() float64 {
	if c.ReferencePeakVelocityMps == nil {
		return 12.0
	}
	return *c.ReferencePeakVelocityMps
}

// GetTorsoLengthMeters returns the torso_length_meters value or the
// default. Converts body-relative velocities to metric speeds.
func (c *TuningConfig) GetTorsoLengthMeters() float64 {
	if c.TorsoLengthMeters == nil {
		return 0.5
	}
	return *c.TorsoLengthMeters
}

// GetBalanceVarianceScale returns the balance_variance_scale value or
// the default.
func (c *TuningConfig) GetBalanceVarianceScale() float64 {
	if c.BalanceVarianceScale == nil {
		return 0.05
	}
	return *c.BalanceVarianceScale
}

// GetLateralDeviationScale returns the lateral_deviation_scale value or
// the default.
func (c *TuningConfig) GetLateralDeviationScale() float64 {
	if c.LateralDeviationScale == nil {
		return 0.5
	}
	return *c.LateralDeviationScale
}

// GetMinClassificationConfidence returns the
// min_classification_confidence value or the default.
func (c *TuningConfig) GetMinClassificationConfidence() float64 {
	if c.MinClassificationConfidence == nil {
		return 20.0
	}
	return *c.MinClassificationConfidence
}

// GetDistanceScale returns the distance_scale value or the default.
func (c *TuningConfig) GetDistanceScale() float64 {
	if c.DistanceScale == nil {
		return 2.0
	}
	return *c.DistanceScale
}

// GetAmbiguityEpsilon returns the ambiguity_epsilon value or the
// default. Units: confidence points.
func (c *TuningConfig) GetAmbiguityEpsilon() float64 {
	if c.AmbiguityEpsilon == nil {
		return 5.0
	}
	return *c.AmbiguityEpsilon
}

// GetSignaturesPath returns the signatures_path value or empty for the
// built-in signature table.
func (c *TuningConfig) GetSignaturesPath() string {
	if c.SignaturesPath == nil {
		return ""
	}
	return *c.SignaturesPath
}

// GetIngestQueueDepth returns the ingest_queue_depth value or the default.
func (c *TuningConfig) GetIngestQueueDepth() int {
	if c.IngestQueueDepth == nil {
		return 32
	}
	return *c.IngestQueueDepth
}

// GetMaxGapFrames returns the max_gap_frames value or the default.
// A mid-kick index gap beyond this discards the in-flight kick instance.
func (c *TuningConfig) GetMaxGapFrames() int {
	if c.MaxGapFrames == nil {
		return 5
	}
	return *c.MaxGapFrames
}
