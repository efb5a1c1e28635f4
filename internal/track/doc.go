// Package track implements detection-to-track association for per-frame
// perception outputs.
//
// Responsibilities: axis-aligned box geometry (IoU, centers), loading
// MOTChallenge-style tracker records into a per-frame candidate index, and
// the greedy per-frame association engine that matches detections to
// candidates by overlap with an optional centroid-distance fallback.
//
// The engine is a pure function of a single frame's inputs; it keeps no
// cross-frame state. Matching is greedy and order-dependent by design:
// detections are processed in stored order, and a consumed candidate never
// re-enters consideration within the frame. This trades optimality for
// determinism and linear-ish cost.
package track
