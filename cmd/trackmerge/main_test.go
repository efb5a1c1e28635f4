package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinemetric/trackmerge/internal/track"
)

func writeInput(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestRunMalformedTrackerLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		MOTPath: writeInput(t, dir, "tracks.txt", "abc,1,2,3,4,5\n"),
		PosePath: writeInput(t, dir, "pose.json", `[
			{"frame_id": 1, "instances": [{"bbox": [0, 0, 10, 10]}]}
		]`),
		OutPath: filepath.Join(dir, "merged.json"),
	}

	err := run(cfg)
	require.Error(t, err)
	var ferr *track.FormatError
	assert.ErrorAs(t, err, &ferr)

	_, statErr := os.Stat(cfg.OutPath)
	assert.True(t, os.IsNotExist(statErr), "no output artifact may exist after a fatal tracker error")
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		MOTPath: writeInput(t, dir, "tracks.txt", "1,7,0,0,10,10,1,-1,-1,-1\n"),
		PosePath: writeInput(t, dir, "pose.json", `[
			{"frame_id": 1, "instances": [{"bbox": [0, 0, 10, 10], "keypoints": [[1, 2, 3]]}]}
		]`),
		OutPath:    filepath.Join(dir, "merged.json"),
		Video:      "clip.mp4",
		StatsDB:    filepath.Join(dir, "runs.db"),
		ReportPath: filepath.Join(dir, "report.html"),
	}

	require.NoError(t, run(cfg))

	data, err := os.ReadFile(cfg.OutPath)
	require.NoError(t, err)

	var frames []struct {
		Instances []struct {
			TrackID int `json:"track_id"`
		} `json:"instances"`
	}
	require.NoError(t, json.Unmarshal(data, &frames))
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Instances, 1)
	assert.Equal(t, 7, frames[0].Instances[0].TrackID)

	for _, path := range []string{cfg.StatsDB, cfg.ReportPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}
}
