package pipeline

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tbraun/vidscribe/internal/transcript"
)

type fakeExtractor struct {
	calls []string
	fail  error
}

func (f *fakeExtractor) ExtractAudio(_ context.Context, videoPath, audioPath string) error {
	f.calls = append(f.calls, videoPath)
	if f.fail != nil {
		return f.fail
	}
	return os.WriteFile(audioPath, []byte("fake audio"), 0o644)
}

type fakeRunner struct {
	audioPaths []string
	languages  []string
	result     transcript.Result
	fail       error
}

func (f *fakeRunner) Transcribe(_ context.Context, audioPath, language string) (transcript.Result, error) {
	f.audioPaths = append(f.audioPaths, audioPath)
	f.languages = append(f.languages, language)
	if f.fail != nil {
		return transcript.Result{}, f.fail
	}
	return f.result, nil
}

func newTestPipeline(extractor *fakeExtractor, runner *fakeRunner) *Pipeline {
	return &Pipeline{
		Extractor: extractor,
		Runner:    runner,
		Writer:    transcript.NewWriter(nil),
	}
}

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("input bytes"), 0o644))
	return path
}

func TestRunExtractsAudioForVideoInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeInput(t, dir, "talk.mp4")

	extractor := &fakeExtractor{}
	runner := &fakeRunner{result: transcript.Result{
		Language: "en",
		Segments: []transcript.Segment{{Text: "Hello", Start: 0, End: 1, Confidence: 0.9}},
	}}

	outcome, err := newTestPipeline(extractor, runner).Run(context.Background(), Request{
		Input:    input,
		Language: "auto",
		Formats:  []transcript.Format{transcript.FormatTXT, transcript.FormatSRT},
	})
	require.NoError(t, err)

	wantDir := filepath.Join(dir, "talk_transcription")
	require.Equal(t, wantDir, outcome.OutputDir)
	require.Equal(t, filepath.Join(wantDir, "talk.wav"), outcome.AudioPath)
	require.Equal(t, []string{input}, extractor.calls)
	require.Equal(t, []string{outcome.AudioPath}, runner.audioPaths)
	require.Equal(t, []string{"auto"}, runner.languages)

	require.Len(t, outcome.Files, 2)
	require.FileExists(t, filepath.Join(wantDir, "talk_transcription.txt"))
	require.FileExists(t, filepath.Join(wantDir, "talk_transcription.srt"))
	// The extracted audio stays in the output directory after success.
	require.FileExists(t, outcome.AudioPath)
}

func TestRunSkipsExtractionForAudioInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeInput(t, dir, "voice.mp3")

	extractor := &fakeExtractor{}
	runner := &fakeRunner{result: transcript.Result{Language: "en", Text: "hi"}}

	outcome, err := newTestPipeline(extractor, runner).Run(context.Background(), Request{
		Input:   input,
		Formats: []transcript.Format{transcript.FormatTXT},
	})
	require.NoError(t, err)
	require.Empty(t, extractor.calls)
	require.Equal(t, []string{input}, runner.audioPaths)
	require.Empty(t, outcome.AudioPath)
}

func TestRunRequiresFormatsBeforeAnyWork(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{}
	runner := &fakeRunner{}

	_, err := newTestPipeline(extractor, runner).Run(context.Background(), Request{Input: "whatever.mp4"})
	require.Error(t, err)
	require.Empty(t, extractor.calls)
	require.Empty(t, runner.audioPaths)
}

func TestRunFailsForMissingInput(t *testing.T) {
	t.Parallel()

	_, err := newTestPipeline(&fakeExtractor{}, &fakeRunner{}).Run(context.Background(), Request{
		Input:   filepath.Join(t.TempDir(), "ghost.mp4"),
		Formats: []transcript.Format{transcript.FormatTXT},
	})
	require.Error(t, err)
}

func TestRunStopsAfterExtractionFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeInput(t, dir, "talk.mp4")

	extractor := &fakeExtractor{fail: errors.New("no audio stream")}
	runner := &fakeRunner{}

	_, err := newTestPipeline(extractor, runner).Run(context.Background(), Request{
		Input:   input,
		Formats: []transcript.Format{transcript.FormatTXT},
	})
	require.Error(t, err)
	require.Empty(t, runner.audioPaths)
	require.NoFileExists(t, filepath.Join(dir, "talk_transcription", "talk_transcription.txt"))
}

func TestRunRemovesExtractedAudioWhenTranscriptionFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeInput(t, dir, "talk.mkv")

	extractor := &fakeExtractor{}
	runner := &fakeRunner{fail: errors.New("inference crashed")}

	_, err := newTestPipeline(extractor, runner).Run(context.Background(), Request{
		Input:   input,
		Formats: []transcript.Format{transcript.FormatTXT},
	})
	require.Error(t, err)
	require.NoFileExists(t, filepath.Join(dir, "talk_transcription", "talk.wav"))
}

func TestRunReportsStages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeInput(t, dir, "talk.mp4")

	p := newTestPipeline(&fakeExtractor{}, &fakeRunner{result: transcript.Result{Text: "ok"}})

	var stages []Stage
	p.OnStage = func(stage Stage, _ string) {
		stages = append(stages, stage)
	}

	_, err := p.Run(context.Background(), Request{
		Input:   input,
		Formats: []transcript.Format{transcript.FormatTXT},
	})
	require.NoError(t, err)
	require.Equal(t, []Stage{StageExtracting, StageTranscribing, StageWriting}, stages)
}

func TestRunSilenceGateSkipsTranscription(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeSilentWAV(t, dir, "quiet.wav")

	runner := &fakeRunner{}
	p := newTestPipeline(&fakeExtractor{}, runner)
	p.SilenceThresholdDBFS = -65

	outcome, err := p.Run(context.Background(), Request{
		Input:    input,
		Language: "en",
		Formats:  []transcript.Format{transcript.FormatTXT, transcript.FormatJSON},
	})
	require.NoError(t, err)
	require.True(t, outcome.SkippedSilent)
	require.Empty(t, runner.audioPaths)
	require.Len(t, outcome.Files, 2)
}

func writeSilentWAV(t *testing.T, dir, name string) string {
	t.Helper()

	const sampleRate = 16000
	samples := make([]int16, sampleRate/2)
	dataSize := len(samples) * 2

	out := make([]byte, 44+dataSize)
	copy(out, "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], 1)
	binary.LittleEndian.PutUint32(out[24:], sampleRate)
	binary.LittleEndian.PutUint32(out[28:], sampleRate*2)
	binary.LittleEndian.PutUint16(out[32:], 2)
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, out, 0o644))
	return path
}
