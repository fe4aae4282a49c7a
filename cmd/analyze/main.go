// Command analyze runs the kick analysis pipeline over a recorded
// landmark stream and prints the report as JSON.
//
// Usage:
//
//	analyze -in recording.json [-config tuning.json] [-units mph] [-fps 30]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/dojang-data/kick.report/internal/config"
	"github.com/dojang-data/kick.report/internal/pose/pipeline"
	"github.com/dojang-data/kick.report/internal/units"
)

var (
	inFile     = flag.String("in", "", "Recording JSON file (required)")
	configPath = flag.String("config", "", "Tuning config JSON (engine defaults when empty)")
	unitsFlag  = flag.String("units", units.MPS, "Display units for speed fields")
	fpsFlag    = flag.Float64("fps", 0, "Override the recording's frame rate")
	pretty     = flag.Bool("pretty", true, "Indent the JSON output")
)

func main() {
	flag.Parse()

	if *inFile == "" {
		flag.Usage()
		os.Exit(1)
	}
	if !units.IsValid(*unitsFlag) {
		log.Fatalf("Invalid units %q: must be one of %s", *unitsFlag, units.GetValidUnitsString())
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
	}

	rec, err := pipeline.LoadRecording(*inFile)
	if err != nil {
		log.Fatalf("Failed to load recording: %v", err)
	}

	fps := rec.FPS
	if *fpsFlag > 0 {
		fps = *fpsFlag
	}

	result, err := pipeline.AnalyzeFrames(context.Background(), cfg, rec.Frames, fps)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
	result.PeakVelocityMps = units.ConvertSpeed(result.PeakVelocityMps, *unitsFlag)

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}
}
