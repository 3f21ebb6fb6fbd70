package whisper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const engineOutputFixture = `{
  "result": {"language": "en"},
  "transcription": [
    {
      "timestamps": {"from": "00:00:00,000", "to": "00:00:01,500"},
      "offsets": {"from": 0, "to": 1500},
      "text": " Hello",
      "tokens": [
        {"text": "[_BEG_]", "p": 0.42},
        {"text": " Hello", "p": 0.9},
        {"text": ".", "p": 0.7}
      ]
    },
    {
      "timestamps": {"from": "00:00:01,500", "to": "00:00:03,250"},
      "offsets": {"from": 1500, "to": 3250},
      "text": " world",
      "tokens": []
    }
  ]
}`

func TestParseEngineOutput(t *testing.T) {
	t.Parallel()

	result, err := parseEngineOutput([]byte(engineOutputFixture))
	require.NoError(t, err)

	require.Equal(t, "en", result.Language)
	require.Equal(t, "Hello\nworld", result.Text)
	require.Len(t, result.Segments, 2)

	first := result.Segments[0]
	require.Equal(t, "Hello", first.Text)
	require.Equal(t, 0.0, first.Start)
	require.Equal(t, 1.5, first.End)
	// Mean of the two real tokens; the [_BEG_] marker is skipped.
	require.InDelta(t, 0.8, first.Confidence, 1e-9)

	second := result.Segments[1]
	require.Equal(t, 1.5, second.Start)
	require.Equal(t, 3.25, second.End)
	require.Equal(t, 1.0, second.Confidence)
}

func TestParseEngineOutputSkipsEmptySegments(t *testing.T) {
	t.Parallel()

	result, err := parseEngineOutput([]byte(`{
	  "result": {"language": "de"},
	  "transcription": [
	    {"offsets": {"from": 0, "to": 500}, "text": "   "},
	    {"offsets": {"from": 500, "to": 900}, "text": " Hallo"}
	  ]
	}`))
	require.NoError(t, err)
	require.Len(t, result.Segments, 1)
	require.Equal(t, "Hallo", result.Segments[0].Text)
}

func TestParseEngineOutputRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := parseEngineOutput([]byte("whisper.cpp crashed"))
	require.Error(t, err)
}

func TestIsMissingSharedLibraryError(t *testing.T) {
	t.Parallel()

	require.True(t, isMissingSharedLibraryError("whisper-cli: error while loading shared libraries: libggml.so"))
	require.True(t, isMissingSharedLibraryError("dyld: Library not loaded: @rpath/libwhisper.dylib"))
	require.False(t, isMissingSharedLibraryError("failed to read audio"))
	require.False(t, isMissingSharedLibraryError(""))
}
