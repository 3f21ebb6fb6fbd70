package transcript

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Render serializes the result in the given format.
func Render(result Result, format Format) ([]byte, error) {
	switch format {
	case FormatTXT:
		return []byte(RenderTXT(result)), nil
	case FormatJSON:
		return RenderJSON(result)
	case FormatSRT:
		return []byte(RenderSRT(result)), nil
	case FormatVTT:
		return []byte(RenderVTT(result)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// RenderTXT joins the trimmed segment texts with newlines.
func RenderTXT(result Result) string {
	return result.FullText() + "\n"
}

// RenderJSON emits the result as structured data with start/end/confidence
// kept numeric.
func RenderJSON(result Result) ([]byte, error) {
	if result.Segments == nil {
		result.Segments = []Segment{}
	}
	if result.Text == "" {
		result.Text = result.FullText()
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal transcription result: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderSRT emits one subtitle cue per segment: a 1-based index, a
// `HH:MM:SS,mmm --> HH:MM:SS,mmm` timecode line, the trimmed text, and a
// blank separator line.
func RenderSRT(result Result) string {
	var b strings.Builder
	for i, segment := range result.Segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", srtTimecode(segment.Start), srtTimecode(segment.End))
		b.WriteString(strings.TrimSpace(segment.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderVTT emits the WebVTT variant: a WEBVTT header and dot-millisecond
// timecodes, no index lines.
func RenderVTT(result Result) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, segment := range result.Segments {
		fmt.Fprintf(&b, "%s --> %s\n", vttTimecode(segment.Start), vttTimecode(segment.End))
		b.WriteString(strings.TrimSpace(segment.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// srtTimecode converts seconds to HH:MM:SS,mmm. Milliseconds are rounded
// half-up before splitting into fields, so adjacent cue boundaries that
// share a seconds value never drift apart by a millisecond.
func srtTimecode(seconds float64) string {
	hours, minutes, secs, millis := splitTimecode(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

func vttTimecode(seconds float64) string {
	hours, minutes, secs, millis := splitTimecode(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

func splitTimecode(seconds float64) (int64, int64, int64, int64) {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	totalMillis := int64(math.Floor(seconds*1000 + 0.5))
	millis := totalMillis % 1000
	totalSecs := totalMillis / 1000

	return totalSecs / 3600, (totalSecs % 3600) / 60, totalSecs % 60, millis
}
