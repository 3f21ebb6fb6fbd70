// Package transcript holds the transcription data model and the
// TXT/JSON/SRT/VTT renderers that turn a segment list into output files.
package transcript

import "strings"

// Segment is one timed unit of recognized speech. Segments arrive from the
// engine in chronological order and are never mutated afterwards.
type Segment struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Result is the outcome of transcribing one audio file.
type Result struct {
	Language string    `json:"language"`
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// FullText returns the newline-joined, per-segment-trimmed transcript text.
// When the engine produced no segments the trimmed full text is used instead.
func (r Result) FullText() string {
	if len(r.Segments) == 0 {
		return strings.TrimSpace(r.Text)
	}

	parts := make([]string, 0, len(r.Segments))
	for _, segment := range r.Segments {
		parts = append(parts, strings.TrimSpace(segment.Text))
	}
	return strings.Join(parts, "\n")
}
