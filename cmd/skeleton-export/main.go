// Package main exports merged pose JSON files as plain-text skeleton files
// for graph-convolution action models. Input may be a single file, a
// directory of JSON files, or a glob pattern; each input becomes one
// numbered output under the "00nA00m" naming scheme.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kinemetric/trackmerge/internal/pose"
	"github.com/kinemetric/trackmerge/internal/skeleton"
)

// Config holds the export configuration.
type Config struct {
	Input          string
	OutDir         string
	Joints         int
	ActionIndex    int
	StartNum       int
	PadN           int
	PadM           int
	Ext            string
	Overwrite      bool
	RequireNonzero bool
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.Input, "input", "", "Pose JSON file, directory, or glob pattern")
	flag.StringVar(&cfg.OutDir, "outdir", "", "Directory for skeleton output files")
	flag.IntVar(&cfg.Joints, "joints", 17, "Required joint count per person")
	flag.IntVar(&cfg.ActionIndex, "action-index", 1, "Action class index for output naming")
	flag.IntVar(&cfg.StartNum, "start-num", 1, "First sequence number for output naming")
	flag.IntVar(&cfg.PadN, "pad-n", 3, "Zero padding width of the action index")
	flag.IntVar(&cfg.PadM, "pad-m", 3, "Zero padding width of the sequence number")
	flag.StringVar(&cfg.Ext, "ext", ".skeleton", "Output file extension")
	flag.BoolVar(&cfg.Overwrite, "overwrite", false, "Overwrite existing output files instead of skipping to a free name")
	flag.BoolVar(&cfg.RequireNonzero, "require-nonzero", false, "Exclude persons whose joints are all (0,0,0)")

	flag.Parse()

	return cfg
}

// listInputs resolves the input argument to a sorted list of JSON files.
// A directory is walked recursively for *.json files.
func listInputs(input string) ([]string, error) {
	if strings.ContainsAny(input, "*?[") {
		paths, err := filepath.Glob(input)
		if err != nil {
			return nil, err
		}
		sort.Strings(paths)
		return paths, nil
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	var paths []string
	err = filepath.WalkDir(input, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".json" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func main() {
	cfg := parseFlags()

	if cfg.Input == "" || cfg.OutDir == "" {
		log.Fatal("-input and -outdir are required")
	}

	inputs, err := listInputs(cfg.Input)
	if err != nil {
		log.Fatalf("list inputs: %v", err)
	}
	if len(inputs) == 0 {
		log.Fatalf("no input files matched %s", cfg.Input)
	}

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}

	opts := skeleton.Options{Joints: cfg.Joints, RequireNonzero: cfg.RequireNonzero}

	m := cfg.StartNum
	for _, in := range inputs {
		coll, err := pose.Load(in)
		if err != nil {
			log.Fatalf("load %s: %v", in, err)
		}

		lines, err := skeleton.Lines(coll.Frames, opts)
		if err != nil {
			log.Fatalf("convert %s: %v", in, err)
		}

		var out string
		out, m = skeleton.NextFreePath(cfg.OutDir, cfg.ActionIndex, m, cfg.PadN, cfg.PadM, cfg.Ext, cfg.Overwrite)
		if err := os.WriteFile(out, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
			log.Fatalf("write %s: %v", out, err)
		}
		log.Printf("%s -> %s", in, out)
		m++
	}
}
