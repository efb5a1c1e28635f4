// Package skeleton renders merged pose collections into the plain-text
// skeleton format consumed by graph-convolution action models: a frame
// count, then per frame a person count and per person the track identity,
// the joint count, and one "x y z" line per joint.
package skeleton

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/kinemetric/trackmerge/internal/pose"
)

// Options controls skeleton emission.
type Options struct {
	// Joints is the required joint count V; every emitted person must have
	// exactly this many keypoints.
	Joints int
	// RequireNonzero excludes persons whose joints are all exactly (0,0,0)
	// from the per-frame count and the output.
	RequireNonzero bool
}

func allZero(kps [][3]float64) bool {
	for _, p := range kps {
		if p[0] != 0 || p[1] != 0 || p[2] != 0 {
			return false
		}
	}
	return true
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Lines converts the frames into skeleton text lines. Frames are emitted in
// frame-id order; persons within a frame in track-identity order, where the
// identity comes from the instance's track fields with the 1-based in-frame
// index as fallback. Duplicate identities within a frame keep the last
// occurrence.
func Lines(frames []*pose.Frame, opts Options) ([]string, error) {
	ordered := make([]*pose.Frame, len(frames))
	copy(ordered, frames)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].FrameID < ordered[j].FrameID
	})

	perFrame := make([]map[int][][3]float64, 0, len(ordered))
	for _, fr := range ordered {
		persons := make(map[int][][3]float64)
		for i, in := range fr.Instances {
			tid := in.TrackIdentity(i + 1)
			kps, err := in.Keypoints()
			if err != nil {
				return nil, fmt.Errorf("frame %d track %d: %w", fr.FrameID, tid, err)
			}
			if len(kps) != opts.Joints {
				return nil, fmt.Errorf("frame %d track %d: keypoints length %d != joints %d",
					fr.FrameID, tid, len(kps), opts.Joints)
			}
			if opts.RequireNonzero && allZero(kps) {
				continue
			}
			persons[tid] = kps
		}
		perFrame = append(perFrame, persons)
	}

	lines := []string{strconv.Itoa(len(perFrame))}
	for _, persons := range perFrame {
		ids := make([]int, 0, len(persons))
		for id := range persons {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		lines = append(lines, strconv.Itoa(len(ids)))
		for _, id := range ids {
			lines = append(lines, strconv.Itoa(id), strconv.Itoa(opts.Joints))
			for _, p := range persons[id] {
				lines = append(lines, formatCoord(p[0])+" "+formatCoord(p[1])+" "+formatCoord(p[2]))
			}
		}
	}
	return lines, nil
}

// BuildName composes the "00nA00m" output name from a zero-padded action
// index and sequence number.
func BuildName(actionIndex, m, padN, padM int) string {
	return fmt.Sprintf("%0*dA%0*d", padN, actionIndex, padM, m)
}

// NextFreePath returns the first output path at or past startM whose file
// does not exist yet, along with the sequence number used. With overwrite
// set, startM is used unconditionally.
func NextFreePath(dir string, actionIndex, startM, padN, padM int, ext string, overwrite bool) (string, int) {
	if overwrite {
		return filepath.Join(dir, BuildName(actionIndex, startM, padN, padM)+ext), startM
	}
	for m := startM; ; m++ {
		path := filepath.Join(dir, BuildName(actionIndex, m, padN, padM)+ext)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, m
		}
	}
}
