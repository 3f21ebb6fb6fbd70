package transcript

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderTXTJoinsTrimmedSegments(t *testing.T) {
	t.Parallel()

	result := Result{
		Segments: []Segment{
			{Text: "  Hello there. ", Start: 0, End: 1.5},
			{Text: "General Kenobi.", Start: 1.5, End: 3},
		},
	}

	require.Equal(t, "Hello there.\nGeneral Kenobi.\n", RenderTXT(result))
}

func TestRenderTXTFallsBackToFullText(t *testing.T) {
	t.Parallel()

	result := Result{Text: "  just the text  "}
	require.Equal(t, "just the text\n", RenderTXT(result))
}

func TestRenderJSONRoundTripsExactValues(t *testing.T) {
	t.Parallel()

	original := Result{
		Language: "en",
		Text:     "Hello world",
		Segments: []Segment{
			{Text: "Hello", Start: 0.0, End: 1.5, Confidence: 0.9},
			{Text: "world", Start: 1.5, End: 3.25, Confidence: 0.8123456789},
		},
	}

	data, err := RenderJSON(original)
	require.NoError(t, err)

	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, original, decoded)
}

func TestRenderJSONEmitsEmptySegmentArray(t *testing.T) {
	t.Parallel()

	data, err := RenderJSON(Result{Language: "en", Text: "hi"})
	require.NoError(t, err)
	require.Contains(t, string(data), "\"segments\": []")
}

func TestRenderSRTGolden(t *testing.T) {
	t.Parallel()

	result := Result{
		Segments: []Segment{
			{Text: "Hello", Start: 0.0, End: 1.5, Confidence: 0.9},
			{Text: "world", Start: 1.5, End: 3.25, Confidence: 0.8},
		},
	}

	want := "1\n" +
		"00:00:00,000 --> 00:00:01,500\n" +
		"Hello\n" +
		"\n" +
		"2\n" +
		"00:00:01,500 --> 00:00:03,250\n" +
		"world\n" +
		"\n"

	require.Equal(t, want, RenderSRT(result))
}

func TestRenderVTTHeaderAndDotMillis(t *testing.T) {
	t.Parallel()

	result := Result{
		Segments: []Segment{
			{Text: " Hi ", Start: 0.25, End: 2},
		},
	}

	require.Equal(t, "WEBVTT\n\n00:00:00.250 --> 00:00:02.000\nHi\n\n", RenderVTT(result))
}

func TestSRTTimecodeRoundsHalfUpWithCarry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{0.0004, "00:00:00,000"},
		{0.0005, "00:00:00,001"},
		{1.5, "00:00:01,500"},
		{59.9995, "00:01:00,000"},
		{3599.9995, "01:00:00,000"},
		{3661.25, "01:01:01,250"},
		{359999.999, "99:59:59,999"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, srtTimecode(tt.seconds), "seconds=%v", tt.seconds)
	}
}

func TestSRTTimecodeMonotonicWithThreeMillisDigits(t *testing.T) {
	t.Parallel()

	previous := ""
	for seconds := 0.0; seconds < 359999.999; seconds += 997.771 {
		code := srtTimecode(seconds)
		require.Len(t, code, 12)
		require.Equal(t, byte(','), code[8])
		if previous != "" {
			require.Greater(t, code, previous)
		}
		previous = code
	}
}
