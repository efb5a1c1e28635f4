package pose

import (
	"encoding/json"
	"fmt"
)

// trackIdentityKeys are the field names accepted as a person's track
// identity, in preference order.
var trackIdentityKeys = []string{"track_id", "tracking_id", "id", "person_id"}

// Keypoints returns the instance's joints as [x y z] triples. A single
// extra level of array nesting is unwrapped. Each point must carry at least
// three numbers; trailing values are dropped.
func (in *Instance) Keypoints() ([][3]float64, error) {
	raw, ok := in.Field("keypoints")
	if !ok {
		return nil, nil
	}

	var pts [][]float64
	if err := json.Unmarshal(raw, &pts); err != nil {
		var nested [][][]float64
		if err2 := json.Unmarshal(raw, &nested); err2 == nil && len(nested) == 1 {
			pts = nested[0]
		} else {
			return nil, fmt.Errorf("invalid keypoints structure: expected a list of [x,y,z]")
		}
	}

	out := make([][3]float64, len(pts))
	for i, p := range pts {
		if len(p) < 3 {
			return nil, fmt.Errorf("keypoint %d has %d values, want at least 3", i, len(p))
		}
		out[i] = [3]float64{p[0], p[1], p[2]}
	}
	return out, nil
}

// TrackIdentity resolves the instance's track identity from the first
// recognized identity field; fallback (typically the 1-based in-frame index)
// is returned when none parses.
func (in *Instance) TrackIdentity(fallback int) int {
	if in.hasTrackID {
		return in.trackID
	}
	for _, key := range trackIdentityKeys {
		raw, ok := in.Field(key)
		if !ok {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err == nil {
			return int(v)
		}
		break
	}
	return fallback
}
