// Package sqlite persists merge run summaries so repeated runs over the
// same footage can be compared later.
package sqlite

import (
	"database/sql"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kinemetric/trackmerge/internal/timeutil"
)

// MergeRun is one recorded association run: its inputs, configuration, and
// the counters it produced.
type MergeRun struct {
	RunID          string  `json:"run_id"`
	Video          string  `json:"video"`
	MOTPath        string  `json:"mot_path"`
	PosePath       string  `json:"pose_path"`
	MinIoU         float64 `json:"min_iou"`
	CenterFallback bool    `json:"center_fallback"`
	MatchedIoU     int     `json:"matched_iou"`
	MatchedCenter  int     `json:"matched_center"`
	NoCandidate    int     `json:"no_candidate"`
	Frames         int     `json:"frames"`
	Instances      int     `json:"instances"`
	MeanMatchedIoU float64 `json:"mean_matched_iou"`
	CreatedAt      int64   `json:"created_at"`
}

// RunStore records merge runs in a sqlite database.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (creating if needed) the run database at path.
func Open(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS merge_runs (
			run_id TEXT PRIMARY KEY,
			video TEXT,
			mot_path TEXT,
			pose_path TEXT,
			min_iou DOUBLE,
			center_fallback INTEGER,
			matched_iou INTEGER,
			matched_center INTEGER,
			no_candidate INTEGER,
			frames INTEGER,
			instances INTEGER,
			mean_matched_iou DOUBLE,
			created_at BIGINT
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &RunStore{db: db, clock: timeutil.RealClock{}}, nil
}

// Insert stores the run, assigning a fresh run id and timestamp when they
// are unset, and returns the run id used.
func (s *RunStore) Insert(run MergeRun) (string, error) {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}
	_, err := s.db.Exec(`
		INSERT INTO merge_runs (
			run_id, video, mot_path, pose_path, min_iou, center_fallback,
			matched_iou, matched_center, no_candidate, frames, instances,
			mean_matched_iou, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Video, run.MOTPath, run.PosePath, run.MinIoU, run.CenterFallback,
		run.MatchedIoU, run.MatchedCenter, run.NoCandidate, run.Frames, run.Instances,
		run.MeanMatchedIoU, run.CreatedAt)
	if err != nil {
		return "", err
	}
	return run.RunID, nil
}

// Get returns the run with the given id, or sql.ErrNoRows.
func (s *RunStore) Get(runID string) (MergeRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, video, mot_path, pose_path, min_iou, center_fallback,
			matched_iou, matched_center, no_candidate, frames, instances,
			mean_matched_iou, created_at
		FROM merge_runs WHERE run_id = ?`, runID)
	return scanRun(row)
}

// ListByVideo returns all runs recorded for the video, newest first.
func (s *RunStore) ListByVideo(video string) ([]MergeRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, video, mot_path, pose_path, min_iou, center_fallback,
			matched_iou, matched_center, no_candidate, frames, instances,
			mean_matched_iou, created_at
		FROM merge_runs WHERE video = ? ORDER BY created_at DESC`, video)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []MergeRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (MergeRun, error) {
	var run MergeRun
	err := row.Scan(&run.RunID, &run.Video, &run.MOTPath, &run.PosePath,
		&run.MinIoU, &run.CenterFallback, &run.MatchedIoU, &run.MatchedCenter,
		&run.NoCandidate, &run.Frames, &run.Instances, &run.MeanMatchedIoU,
		&run.CreatedAt)
	return run, err
}
