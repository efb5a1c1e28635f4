package pose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// field is one raw JSON object member, kept in document order.
type field struct {
	key string
	raw json.RawMessage
}

// decodeOrdered splits a JSON object into its members without losing their
// order, which encoding/json's map decoding would.
func decodeOrdered(data []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}
	var fields []field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		fields = append(fields, field{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

func writeObject(buf *bytes.Buffer, emit func(write func(key string, raw json.RawMessage))) {
	buf.WriteByte('{')
	first := true
	emit(func(key string, raw json.RawMessage) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(raw)
	})
	buf.WriteByte('}')
}

// Instance is one per-person detection within a frame: a bounding box plus
// an open set of detector payload fields (keypoints, scores, ...) that pass
// through untouched.
type Instance struct {
	fields []field

	// Bbox holds the parsed box when the instance carries a usable
	// four-number "bbox" array; nil otherwise.
	Bbox []float64

	trackID    int
	hasTrackID bool
}

// TrackID returns the instance's track identity and whether one is present.
func (in *Instance) TrackID() (int, bool) {
	return in.trackID, in.hasTrackID
}

// SetTrackID injects a track identity, overwriting any existing one.
func (in *Instance) SetTrackID(id int) {
	in.trackID = id
	in.hasTrackID = true
}

// Field returns the raw value of a named instance field.
func (in *Instance) Field(key string) (json.RawMessage, bool) {
	for _, f := range in.fields {
		if f.key == key {
			return f.raw, true
		}
	}
	return nil, false
}

// Clone returns a copy that can take a new track identity without touching
// the receiver. The raw payload fields are shared; they are never mutated.
func (in *Instance) Clone() *Instance {
	cp := *in
	return &cp
}

func (in *Instance) UnmarshalJSON(data []byte) error {
	fields, err := decodeOrdered(data)
	if err != nil {
		return fmt.Errorf("instance: %w", err)
	}
	in.fields = fields
	in.Bbox = nil
	in.hasTrackID = false
	for _, f := range fields {
		switch f.key {
		case "bbox":
			var box []float64
			if err := json.Unmarshal(f.raw, &box); err == nil && len(box) == 4 {
				in.Bbox = box
			}
		case "track_id":
			var v float64
			if err := json.Unmarshal(f.raw, &v); err == nil {
				in.trackID = int(v)
				in.hasTrackID = true
			}
		}
	}
	return nil
}

func (in *Instance) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	wroteTrack := false
	writeObject(&buf, func(write func(string, json.RawMessage)) {
		for _, f := range in.fields {
			if f.key == "track_id" && in.hasTrackID {
				write(f.key, json.RawMessage(strconv.Itoa(in.trackID)))
				wroteTrack = true
				continue
			}
			write(f.key, f.raw)
		}
		if in.hasTrackID && !wroteTrack {
			write("track_id", json.RawMessage(strconv.Itoa(in.trackID)))
		}
	})
	return buf.Bytes(), nil
}

// Frame is one frame entry of the collection: a frame id and its ordered
// instance list, plus any other fields the producer wrote.
type Frame struct {
	fields []field

	// FrameID is -1 when the entry carries no frame_id field, matching the
	// candidate-lookup behavior for unidentified frames.
	FrameID   int
	Instances []*Instance
}

// NewFrame builds a frame entry from scratch, for converters that emit
// collections rather than rewrite them.
func NewFrame(frameID int, instances []*Instance) *Frame {
	return &Frame{
		fields: []field{
			{key: "frame_id", raw: json.RawMessage(strconv.Itoa(frameID))},
			{key: "instances"},
		},
		FrameID:   frameID,
		Instances: instances,
	}
}

// Clone returns a copy with cloned instances; frame-level raw fields are
// shared and never mutated.
func (fr *Frame) Clone() *Frame {
	cp := *fr
	cp.Instances = make([]*Instance, len(fr.Instances))
	for i, in := range fr.Instances {
		cp.Instances[i] = in.Clone()
	}
	return &cp
}

func (fr *Frame) UnmarshalJSON(data []byte) error {
	fields, err := decodeOrdered(data)
	if err != nil {
		return fmt.Errorf("frame entry: %w", err)
	}
	fr.fields = fields
	fr.FrameID = -1
	fr.Instances = nil
	for _, f := range fields {
		switch f.key {
		case "frame_id":
			var v float64
			if err := json.Unmarshal(f.raw, &v); err == nil {
				fr.FrameID = int(v)
			}
		case "instances":
			if err := json.Unmarshal(f.raw, &fr.Instances); err != nil {
				return fmt.Errorf("frame %d instances: %w", fr.FrameID, err)
			}
		}
	}
	return nil
}

func (fr *Frame) MarshalJSON() ([]byte, error) {
	instances, err := json.Marshal(fr.Instances)
	if err != nil {
		return nil, err
	}
	if fr.Instances == nil {
		instances = json.RawMessage("[]")
	}
	var buf bytes.Buffer
	writeObject(&buf, func(write func(string, json.RawMessage)) {
		for _, f := range fr.fields {
			if f.key == "instances" {
				write(f.key, instances)
				continue
			}
			write(f.key, f.raw)
		}
	})
	return buf.Bytes(), nil
}

// Collection is a whole-video detector output: an ordered sequence of frame
// entries, serialized either as a bare array or wrapped in an object under
// "instance_info". Output mirrors the input shape.
type Collection struct {
	Frames []*Frame

	wrapped    bool
	rootFields []field
}

// Load reads a collection from disk.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read detection collection: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a collection from JSON.
func Parse(data []byte) (*Collection, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty detection collection")
	}
	c := &Collection{}
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(data, &c.Frames); err != nil {
			return nil, fmt.Errorf("frame list: %w", err)
		}
	case '{':
		fields, err := decodeOrdered(data)
		if err != nil {
			return nil, err
		}
		c.wrapped = true
		c.rootFields = fields
		found := false
		for _, f := range fields {
			if f.key == "instance_info" {
				if err := json.Unmarshal(f.raw, &c.Frames); err != nil {
					return nil, fmt.Errorf("instance_info: %w", err)
				}
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unsupported JSON root: expected a frame list or an object with instance_info")
		}
	default:
		return nil, fmt.Errorf("unsupported JSON root: expected a frame list or an object with instance_info")
	}
	return c, nil
}

// Clone returns a copy whose frames and instances can be augmented without
// touching the receiver.
func (c *Collection) Clone() *Collection {
	cp := *c
	cp.Frames = make([]*Frame, len(c.Frames))
	for i, fr := range c.Frames {
		cp.Frames[i] = fr.Clone()
	}
	return &cp
}

func (c *Collection) MarshalJSON() ([]byte, error) {
	frames, err := json.Marshal(c.Frames)
	if err != nil {
		return nil, err
	}
	if c.Frames == nil {
		frames = json.RawMessage("[]")
	}
	if !c.wrapped {
		return frames, nil
	}
	var buf bytes.Buffer
	writeObject(&buf, func(write func(string, json.RawMessage)) {
		for _, f := range c.rootFields {
			if f.key == "instance_info" {
				write(f.key, frames)
				continue
			}
			write(f.key, f.raw)
		}
	})
	return buf.Bytes(), nil
}

// Write serializes the collection to path with two-space indentation.
func (c *Collection) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	return f.Close()
}
