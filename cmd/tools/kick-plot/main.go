// Command kick-plot renders PNG charts from a recorded landmark
// stream: the per-frame kinematic trace with phase boundaries, and the
// kicking foot's path for each detected kick.
//
// Usage:
//
//	kick-plot -in recording.json -out plots/ [-config tuning.json]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/dojang-data/kick.report/internal/config"
	"github.com/dojang-data/kick.report/internal/pose"
	"github.com/dojang-data/kick.report/internal/pose/l4phases"
	"github.com/dojang-data/kick.report/internal/pose/pipeline"
)

var (
	inFile     = flag.String("in", "", "Recording JSON file (required)")
	outDir     = flag.String("out", "plots", "Output directory for PNG files")
	configPath = flag.String("config", "", "Tuning config JSON (engine defaults when empty)")
)

func main() {
	flag.Parse()

	if *inFile == "" {
		flag.Usage()
		os.Exit(1)
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

	analyzer, err := pipeline.New(cfg, rec.FPS)
	if err != nil {
		log.Fatalf("Failed to build analyzer: %v", err)
	}
	analyzer.EnableTrace()

	for i, lms := range rec.Frames {
		f, err := pose.FrameFromSlice(i, float64(i)/rec.FPS, lms)
		if err != nil {
			log.Fatalf("Frame %d: %v", i, err)
		}
		if _, err := analyzer.Process(f); err != nil {
			log.Fatalf("Frame %d: %v", i, err)
		}
	}
	analyzer.Flush()

	kicks := analyzer.Kicks()
	log.Printf("Analyzed %d frames, detected %d kicks", len(rec.Frames), len(kicks))

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	traceFile := filepath.Join(*outDir, "kick_trace.png")
	if err := plotTrace(analyzer.Trace(), kicks, traceFile); err != nil {
		log.Fatalf("Failed to plot trace: %v", err)
	}
	log.Printf("Wrote %s", traceFile)

	for _, k := range kicks {
		pathFile := filepath.Join(*outDir, fmt.Sprintf("foot_path_%s.png", k.ID))
		if err := plotFootPath(k, pathFile); err != nil {
			log.Fatalf("Failed to plot foot path for %s: %v", k.ID, err)
		}
		log.Printf("Wrote %s", pathFile)
	}
}

// plotTrace draws knee angle and kick height over the frame index,
// with vertical markers at each kick's phase boundaries.
func plotTrace(trace []pipeline.FrameMetric, kicks []*l4phases.KickInstance, outFile string) error {
	p := plot.New()
	p.Title.Text = "Kick Trace"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Knee Angle (deg) / Kick Height (%)"

	kneePts := make(plotter.XYs, 0, len(trace))
	heightPts := make(plotter.XYs, 0, len(trace))
	maxY := 0.0
	for _, m := range trace {
		kneePts = append(kneePts, plotter.XY{X: float64(m.FrameIndex), Y: m.KneeAngle})
		heightPts = append(heightPts, plotter.XY{X: float64(m.FrameIndex), Y: m.KickHeight})
		if m.KneeAngle > maxY {
			maxY = m.KneeAngle
		}
	}

	kneeLine, err := plotter.NewLine(kneePts)
	if err != nil {
		return fmt.Errorf("knee line: %w", err)
	}
	kneeLine.Width = vg.Points(1)
	kneeLine.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}

	heightLine, err := plotter.NewLine(heightPts)
	if err != nil {
		return fmt.Errorf("height line: %w", err)
	}
	heightLine.Width = vg.Points(1)
	heightLine.Color = color.RGBA{R: 44, G: 160, B: 44, A: 255}

	p.Add(kneeLine, heightLine)
	p.Legend.Add("knee angle", kneeLine)
	p.Legend.Add("kick height", heightLine)

	// Phase boundaries as vertical grey markers.
	for _, k := range kicks {
		for _, seg := range k.Segments {
			boundary, err := plotter.NewLine(plotter.XYs{
				{X: float64(seg.StartFrame), Y: 0},
				{X: float64(seg.StartFrame), Y: maxY},
			})
			if err != nil {
				return fmt.Errorf("phase boundary: %w", err)
			}
			boundary.Width = vg.Points(0.5)
			boundary.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
			boundary.Color = color.RGBA{R: 128, G: 128, B: 128, A: 255}
			p.Add(boundary)
		}
	}

	return p.Save(14*vg.Inch, 6*vg.Inch, outFile)
}

// plotFootPath draws the kicking foot's x/y trajectory over one kick.
// The y axis is flipped because landmark coordinates are image-space
// (y grows downward).
func plotFootPath(k *l4phases.KickInstance, outFile string) error {
	if len(k.FootPath) == 0 {
		return fmt.Errorf("kick %s has no foot path samples", k.ID)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Foot Path %s (%s, curvature %.2f)", k.ID, k.Classification.Best, k.Curvature)
	p.X.Label.Text = "X (torso lengths)"
	p.Y.Label.Text = "Height (torso lengths)"

	pts := make(plotter.XYs, 0, len(k.FootPath))
	for _, v := range k.FootPath {
		pts = append(pts, plotter.XY{X: v.X, Y: -v.Y})
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("foot path line: %w", err)
	}
	line.Width = vg.Points(1.5)
	line.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	p.Add(line)

	return p.Save(8*vg.Inch, 8*vg.Inch, outFile)
}
