// Package merge drives per-frame detection-to-track association across a
// whole detection collection and aggregates the run statistics.
package merge

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kinemetric/trackmerge/internal/pose"
	"github.com/kinemetric/trackmerge/internal/track"
)

// Summary is the whole-run association outcome. The embedded counters always
// sum to Instances.
type Summary struct {
	track.Stats
	Frames           int     `json:"frames"`
	Instances        int     `json:"instances"`
	MeanMatchedIoU   float64 `json:"mean_matched_iou"`
	MedianMatchedIoU float64 `json:"median_matched_iou"`
}

// FrameTally is one frame's match outcome, kept for reporting.
type FrameTally struct {
	FrameID   int
	Matched   int
	Unmatched int
}

// Result bundles the augmented collection with the run statistics.
type Result struct {
	Collection *pose.Collection
	Summary    Summary
	PerFrame   []FrameTally
}

// Run merges tracker identities into the detection collection. Frames are
// visited in stored order; candidates are looked up by frame id, with absent
// frames treated as having no candidates. The input collection is not
// mutated: the returned Result holds a new augmented collection, so callers
// keeping the original around see no aliasing surprises.
func Run(coll *pose.Collection, idx track.FrameIndex, cfg track.Config) *Result {
	out := coll.Clone()
	res := &Result{Collection: out}

	var matchedIoUs []float64
	for _, fr := range out.Frames {
		cands := idx[fr.FrameID]

		dets := make([]track.Detection, len(fr.Instances))
		for i, in := range fr.Instances {
			if b := in.Bbox; len(b) == 4 {
				dets[i] = track.Detection{
					Box:    track.Rect{X1: b[0], Y1: b[1], X2: b[2], Y2: b[3]},
					HasBox: true,
				}
			}
		}

		assignments, stats := track.Associate(dets, cands, cfg)
		for i, a := range assignments {
			fr.Instances[i].SetTrackID(a.TrackID)
			if a.Method == track.MethodIoU {
				matchedIoUs = append(matchedIoUs, a.IoU)
			}
		}

		res.Summary.Stats.Add(stats)
		res.Summary.Frames++
		res.Summary.Instances += len(fr.Instances)
		res.PerFrame = append(res.PerFrame, FrameTally{
			FrameID:   fr.FrameID,
			Matched:   stats.MatchedIoU + stats.MatchedCenter,
			Unmatched: stats.NoCandidate,
		})
	}

	if len(matchedIoUs) > 0 {
		res.Summary.MeanMatchedIoU = stat.Mean(matchedIoUs, nil)
		sort.Float64s(matchedIoUs)
		res.Summary.MedianMatchedIoU = stat.Quantile(0.5, stat.Empirical, matchedIoUs, nil)
	}
	return res
}
