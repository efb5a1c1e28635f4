package track

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Candidate is one tracker record scoped to a single frame: a persistent
// track identity plus the tracked box for that frame.
type Candidate struct {
	Frame   int
	TrackID int
	Box     Rect
}

// FrameIndex groups tracker candidates by frame id. Within a frame the
// candidates keep the relative order of the source records; the association
// engine's tie-break rule depends on that order.
type FrameIndex map[int][]Candidate

// FormatError reports a structurally malformed tracker record. It is fatal
// for the whole run: a merge must not proceed on a partially readable
// tracker file.
type FormatError struct {
	Line   int
	Record string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("tracker record on line %d: %s (%q)", e.Line, e.Reason, e.Record)
}

// LoadMOTFile reads a MOTChallenge-style result file into a FrameIndex.
func LoadMOTFile(path string) (FrameIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tracker file: %w", err)
	}
	defer f.Close()
	idx, err := ParseMOT(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// ParseMOT parses comma-separated tracker records, one per line, with fields
// frame, track_id, x, y, w, h and any number of trailing fields (ignored).
// Box encoding converts from (x,y,w,h) to corner form (x, y, x+w, y+h).
// Blank lines are skipped; any other record with fewer than six fields or a
// non-numeric field in positions 0-5 yields a *FormatError.
func ParseMOT(r io.Reader) (FrameIndex, error) {
	idx := make(FrameIndex)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) < 6 {
			return nil, &FormatError{
				Line:   line,
				Record: text,
				Reason: fmt.Sprintf("want at least 6 fields, got %d", len(fields)),
			}
		}
		var vals [6]float64
		for i := 0; i < 6; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
			if err != nil {
				return nil, &FormatError{
					Line:   line,
					Record: text,
					Reason: fmt.Sprintf("field %d is not numeric", i),
				}
			}
			vals[i] = v
		}
		// Frame and track ids may be written as floats; truncate.
		frame := int(vals[0])
		x, y, w, h := vals[2], vals[3], vals[4], vals[5]
		idx[frame] = append(idx[frame], Candidate{
			Frame:   frame,
			TrackID: int(vals[1]),
			Box:     Rect{X1: x, Y1: y, X2: x + w, Y2: y + h},
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tracker records: %w", err)
	}
	return idx, nil
}
