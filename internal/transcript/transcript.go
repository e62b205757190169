package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/truthquest/internal/model"
)

// Segment is one timed caption line
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is the ordered caption track for one video
type Transcript struct {
	VideoID  string    `json:"video_id,omitempty"`
	Segments []Segment `json:"segments"`
	Method   string    `json:"method,omitempty"` // e.g. "file", "captions"
}

// FullText joins trimmed segment texts with single spaces
func (t *Transcript) FullText() string {
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if text := strings.TrimSpace(s.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// wireTranscript is the JSON shape produced by the transcript service:
// {"full": "...", "segments": [...]}, optionally under a "transcript" key.
type wireTranscript struct {
	VideoID    string          `json:"video_id"`
	Full       string          `json:"full"`
	Segments   []Segment       `json:"segments"`
	Method     string          `json:"method"`
	Transcript *wireTranscript `json:"transcript"`
}

// Parse decodes transcript data. JSON input uses the service wire shape;
// anything else is treated as plain text forming a single segment.
func Parse(data []byte) (*Transcript, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty transcript", model.ErrTranscriptUnavailable)
	}

	if trimmed[0] != '{' {
		return &Transcript{
			Segments: []Segment{{Text: string(trimmed)}},
			Method:   "text",
		}, nil
	}

	var wire wireTranscript
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, fmt.Errorf("parse transcript JSON: %w", err)
	}
	if wire.Transcript != nil {
		inner := *wire.Transcript
		if inner.VideoID == "" {
			inner.VideoID = wire.VideoID
		}
		wire = inner
	}

	t := &Transcript{VideoID: wire.VideoID, Segments: wire.Segments, Method: wire.Method}
	if len(t.Segments) == 0 && strings.TrimSpace(wire.Full) != "" {
		t.Segments = []Segment{{Text: wire.Full}}
	}

	if t.FullText() == "" {
		return nil, fmt.Errorf("%w: transcript has no text", model.ErrTranscriptUnavailable)
	}
	return t, nil
}

// Load reads and parses a transcript file
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", model.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if t.Method == "" {
		t.Method = "file"
	}
	return t, nil
}
