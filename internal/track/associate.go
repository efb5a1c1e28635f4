package track

import "math"

// Unassigned is the sentinel track identity for detections that no candidate
// could be matched to.
const Unassigned = -1

// Config holds the association options.
type Config struct {
	// MinIoU is the acceptance floor for overlap matching. At the default of
	// 0.0 the best candidate is accepted whenever one remains, including at
	// zero overlap. Negative values are treated as 0.
	MinIoU float64
	// UseCenterFallback enables the centroid-distance fallback phase for
	// detections that overlap matching could not assign.
	UseCenterFallback bool
}

// Method identifies which phase produced an assignment.
type Method int

const (
	MethodNone Method = iota
	MethodIoU
	MethodCenter
)

func (m Method) String() string {
	switch m {
	case MethodIoU:
		return "iou"
	case MethodCenter:
		return "center"
	default:
		return "none"
	}
}

// Detection is the engine's view of one detection instance: a box and
// whether the instance carried a usable box at all. The engine knows nothing
// about keypoints or any other detector payload.
type Detection struct {
	Box    Rect
	HasBox bool
}

// Assignment is the association outcome for one detection, in detection
// order. IoU holds the winning overlap for MethodIoU assignments.
type Assignment struct {
	TrackID int
	Method  Method
	IoU     float64
}

// Stats counts association outcomes. Exactly one counter increments per
// detection, so the counters always sum to the number of detections
// processed.
type Stats struct {
	MatchedIoU    int `json:"matched_iou"`
	MatchedCenter int `json:"matched_center"`
	NoCandidate   int `json:"no_candidate"`
}

// Total returns the number of detections the stats account for.
func (s Stats) Total() int {
	return s.MatchedIoU + s.MatchedCenter + s.NoCandidate
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.MatchedIoU += o.MatchedIoU
	s.MatchedCenter += o.MatchedCenter
	s.NoCandidate += o.NoCandidate
}

// Associate matches one frame's detections against its tracker candidates.
// Detections are processed strictly in input order. Each detection first
// seeks the not-yet-consumed candidate with maximum IoU (first candidate
// wins ties) and accepts it when the overlap meets cfg.MinIoU; failing that,
// with the fallback enabled, it takes the unconsumed candidate with the
// nearest center regardless of distance. A matched candidate is consumed
// immediately, so a track identity is assigned at most once per frame.
// Detections without a usable box, or left over when candidates run out,
// get the Unassigned sentinel.
func Associate(dets []Detection, cands []Candidate, cfg Config) ([]Assignment, Stats) {
	out := make([]Assignment, len(dets))
	var stats Stats

	minIoU := math.Max(0, cfg.MinIoU)
	used := make([]bool, len(cands))

	for di, det := range dets {
		out[di] = Assignment{TrackID: Unassigned}
		if !det.HasBox || len(cands) == 0 {
			stats.NoCandidate++
			continue
		}

		// Phase 1: overlap. Strict > keeps the earliest candidate on ties.
		bestIoU, bestIdx := -1.0, -1
		for ci := range cands {
			if used[ci] {
				continue
			}
			if v := IoU(det.Box, cands[ci].Box); v > bestIoU {
				bestIoU, bestIdx = v, ci
			}
		}
		if bestIdx != -1 && bestIoU >= minIoU {
			used[bestIdx] = true
			out[di] = Assignment{TrackID: cands[bestIdx].TrackID, Method: MethodIoU, IoU: bestIoU}
			stats.MatchedIoU++
			continue
		}

		// Phase 2: nearest center among whatever remains, no threshold.
		if cfg.UseCenterFallback {
			cx, cy := det.Box.Center()
			bestD2, nearIdx := math.Inf(1), -1
			for ci := range cands {
				if used[ci] {
					continue
				}
				kx, ky := cands[ci].Box.Center()
				d2 := (cx-kx)*(cx-kx) + (cy-ky)*(cy-ky)
				if d2 < bestD2 {
					bestD2, nearIdx = d2, ci
				}
			}
			if nearIdx != -1 {
				used[nearIdx] = true
				out[di] = Assignment{TrackID: cands[nearIdx].TrackID, Method: MethodCenter}
				stats.MatchedCenter++
				continue
			}
		}

		stats.NoCandidate++
	}
	return out, stats
}
