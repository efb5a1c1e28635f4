package pose

import (
	"encoding/json"
	"sort"
	"strconv"
)

// DetFrame is one frame's detections in the tracker-input format: rows of
// [x1, y1, x2, y2, score].
type DetFrame struct {
	FrameID int         `json:"frame_id"`
	Dets    [][]float64 `json:"dets_xyxy5"`
}

// extractBBox reads an instance bbox leniently for extraction: either a
// four-number array or the same wrapped in one extra list level, as some
// detector exports do.
func extractBBox(in *Instance) []float64 {
	raw, ok := in.Field("bbox")
	if !ok {
		return nil
	}
	var box []float64
	if err := json.Unmarshal(raw, &box); err == nil && len(box) == 4 {
		return box
	}
	var nested [][]float64
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) == 1 && len(nested[0]) == 4 {
		return nested[0]
	}
	return nil
}

// instanceScore reads the detection confidence, preferring bbox_score over
// score and defaulting to 1.0.
func instanceScore(in *Instance) float64 {
	for _, key := range []string{"bbox_score", "score"} {
		raw, ok := in.Field(key)
		if !ok {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return 1.0
}

// newDetInstance rebuilds a minimal instance carrying just the fields the
// downstream merge and skeleton tools consume.
func newDetInstance(bbox []float64, score float64, keypoints, keypointScores json.RawMessage) *Instance {
	bboxRaw, _ := json.Marshal(bbox)
	if keypoints == nil {
		keypoints = json.RawMessage("[]")
	}
	if keypointScores == nil {
		keypointScores = json.RawMessage("[]")
	}
	return &Instance{
		fields: []field{
			{key: "bbox", raw: bboxRaw},
			{key: "score", raw: json.RawMessage(strconv.FormatFloat(score, 'g', -1, 64))},
			{key: "keypoints", raw: keypoints},
			{key: "keypoint_scores", raw: keypointScores},
		},
		Bbox: bbox,
	}
}

// ExtractDetections splits a raw detector results collection into (a)
// per-frame bbox+score rows suitable as tracker input and (b) a rebuilt
// per-frame instance list preserving the full keypoint payloads. Instances
// without a usable bbox or scoring below minScore are dropped, as are frame
// entries with negative frame ids. Both outputs are sorted by frame id.
func ExtractDetections(c *Collection, minScore float64) ([]DetFrame, []*Frame) {
	perFrameDets := make(map[int][][]float64)
	perFrameInsts := make(map[int][]*Instance)

	for _, fr := range c.Frames {
		if fr.FrameID < 0 {
			continue
		}
		for _, in := range fr.Instances {
			bbox := extractBBox(in)
			if bbox == nil {
				continue
			}
			score := instanceScore(in)
			if score < minScore {
				continue
			}

			perFrameDets[fr.FrameID] = append(perFrameDets[fr.FrameID],
				[]float64{bbox[0], bbox[1], bbox[2], bbox[3], score})

			kps, _ := in.Field("keypoints")
			kpScores, _ := in.Field("keypoint_scores")
			perFrameInsts[fr.FrameID] = append(perFrameInsts[fr.FrameID],
				newDetInstance(bbox, score, kps, kpScores))
		}
	}

	ids := make([]int, 0, len(perFrameDets))
	for id := range perFrameDets {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	dets := make([]DetFrame, 0, len(ids))
	frames := make([]*Frame, 0, len(ids))
	for _, id := range ids {
		dets = append(dets, DetFrame{FrameID: id, Dets: perFrameDets[id]})
		frames = append(frames, NewFrame(id, perFrameInsts[id]))
	}
	return dets, frames
}
