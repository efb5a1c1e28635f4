// Package main merges multi-object-tracker boxes into per-frame pose
// estimation output: each pose instance gains the track_id of the tracker
// box it best overlaps, so downstream action models see stable identities.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kinemetric/trackmerge/internal/merge"
	"github.com/kinemetric/trackmerge/internal/pose"
	"github.com/kinemetric/trackmerge/internal/report"
	"github.com/kinemetric/trackmerge/internal/storage/sqlite"
	"github.com/kinemetric/trackmerge/internal/track"
	"github.com/kinemetric/trackmerge/internal/version"
)

// Config holds the merge run configuration.
type Config struct {
	MOTPath        string
	PosePath       string
	OutPath        string
	MinIoU         float64
	CenterFallback bool
	Video          string
	StatsDB        string
	ReportPath     string
	ShowVersion    bool
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.MOTPath, "mot", "", "Path to tracker output txt (frame,id,x,y,w,h,...)")
	flag.StringVar(&cfg.PosePath, "pose", "", "Path to pose estimation JSON")
	flag.StringVar(&cfg.OutPath, "out", "", "Path for merged JSON output")
	flag.Float64Var(&cfg.MinIoU, "min-iou", 0, "Minimum IoU to accept an overlap match")
	flag.BoolVar(&cfg.CenterFallback, "center-fallback", false, "Fall back to nearest box center when no overlap clears the floor")
	flag.StringVar(&cfg.Video, "video", "", "Video name to record with the run summary")
	flag.StringVar(&cfg.StatsDB, "stats-db", "", "Optional sqlite database to record the run summary in")
	flag.StringVar(&cfg.ReportPath, "report", "", "Optional HTML report of per-frame match counts")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print the version and exit")

	flag.Parse()

	return cfg
}

// run executes a merge end to end. Both inputs are loaded and merged fully
// before anything is written, so a malformed tracker file leaves no partial
// output artifact behind.
func run(cfg Config) error {
	idx, err := track.LoadMOTFile(cfg.MOTPath)
	if err != nil {
		return fmt.Errorf("load tracker file: %w", err)
	}

	coll, err := pose.Load(cfg.PosePath)
	if err != nil {
		return fmt.Errorf("load pose file: %w", err)
	}

	result := merge.Run(coll, idx, track.Config{
		MinIoU:            cfg.MinIoU,
		UseCenterFallback: cfg.CenterFallback,
	})

	if err := result.Collection.Write(cfg.OutPath); err != nil {
		return fmt.Errorf("write merged output: %w", err)
	}

	s := result.Summary
	log.Printf("merged %d instances across %d frames: %d by overlap, %d by center, %d unmatched",
		s.Instances, s.Frames, s.MatchedIoU, s.MatchedCenter, s.NoCandidate)

	if cfg.StatsDB != "" {
		store, err := sqlite.Open(cfg.StatsDB)
		if err != nil {
			return fmt.Errorf("open stats database: %w", err)
		}
		defer store.Close()

		runID, err := store.Insert(sqlite.MergeRun{
			Video:          cfg.Video,
			MOTPath:        cfg.MOTPath,
			PosePath:       cfg.PosePath,
			MinIoU:         cfg.MinIoU,
			CenterFallback: cfg.CenterFallback,
			MatchedIoU:     s.MatchedIoU,
			MatchedCenter:  s.MatchedCenter,
			NoCandidate:    s.NoCandidate,
			Frames:         s.Frames,
			Instances:      s.Instances,
			MeanMatchedIoU: s.MeanMatchedIoU,
		})
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		log.Printf("run recorded as %s", runID)
	}

	if cfg.ReportPath != "" {
		title := cfg.Video
		if title == "" {
			title = cfg.PosePath
		}
		if err := report.WriteMatchChart(cfg.ReportPath, title, result.PerFrame); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Printf("report written to %s", cfg.ReportPath)
	}

	return nil
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Println("trackmerge " + version.String())
		os.Exit(0)
	}

	if cfg.MOTPath == "" || cfg.PosePath == "" || cfg.OutPath == "" {
		log.Fatal("-mot, -pose and -out are required")
	}

	if err := run(cfg); err != nil {
		log.Fatalf("%v", err)
	}
}
