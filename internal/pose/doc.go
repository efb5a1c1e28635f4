// Package pose models the pose detector's per-frame output collection and
// its JSON encoding.
//
// The collection is treated as an opaque pass-through artifact: frame
// entries and detection instances keep every field they arrived with,
// byte-for-byte and in original key order, so a merged file diffs cleanly
// against its source. The only field this package ever writes is the
// injected track identity. Known fields (frame id, bbox, track id) are
// additionally parsed into typed accessors for the association layer.
package pose
