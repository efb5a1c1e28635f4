// Package main extracts per-frame detection boxes and keypoint frames from
// pose estimation JSON, ready for a box tracker and later re-merge.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/kinemetric/trackmerge/internal/pose"
)

// Config holds the extraction configuration.
type Config struct {
	Input    string
	OutJSON  string
	OutKps   string
	MinScore float64
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.Input, "input", "", "Path to pose estimation JSON")
	flag.StringVar(&cfg.OutJSON, "out-json", "", "Path for per-frame detection boxes JSON")
	flag.StringVar(&cfg.OutKps, "out-kps", "", "Optional path for the kept keypoint frames JSON")
	flag.Float64Var(&cfg.MinScore, "min-score", 0, "Drop instances whose score is below this")

	flag.Parse()

	return cfg
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	cfg := parseFlags()

	if cfg.Input == "" || cfg.OutJSON == "" {
		log.Fatal("-input and -out-json are required")
	}

	coll, err := pose.Load(cfg.Input)
	if err != nil {
		log.Fatalf("load pose file: %v", err)
	}

	dets, frames := pose.ExtractDetections(coll, cfg.MinScore)

	if err := writeJSON(cfg.OutJSON, dets); err != nil {
		log.Fatalf("write detections: %v", err)
	}
	log.Printf("wrote %d detection frames to %s", len(dets), cfg.OutJSON)

	if cfg.OutKps != "" {
		if err := writeJSON(cfg.OutKps, frames); err != nil {
			log.Fatalf("write keypoint frames: %v", err)
		}
		log.Printf("wrote %d keypoint frames to %s", len(frames), cfg.OutKps)
	}
}
