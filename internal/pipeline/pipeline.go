// Package pipeline runs the linear video→audio→transcript flow for one
// media file at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tbraun/vidscribe/internal/audio"
	"github.com/tbraun/vidscribe/internal/media"
	"github.com/tbraun/vidscribe/internal/transcript"
	"go.uber.org/zap"
)

// Stage identifies a pipeline step for progress reporting.
type Stage string

const (
	StageExtracting   Stage = "extracting"
	StageTranscribing Stage = "transcribing"
	StageWriting      Stage = "writing"
)

// AudioExtractor pulls an audio stream out of a video container.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
}

// Transcriber turns one audio file into a transcription result.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (transcript.Result, error)
}

// ResultWriter persists a result in the requested formats.
type ResultWriter interface {
	WriteAll(result transcript.Result, spec transcript.OutputSpec) ([]string, error)
}

type Request struct {
	Input     string
	Language  string
	Formats   []transcript.Format
	OutputDir string // empty means <input-dir>/<basename>_transcription
}

type Outcome struct {
	OutputDir     string
	AudioPath     string // extracted audio; empty when the input was audio already
	Result        transcript.Result
	Files         []string
	SkippedSilent bool
}

type Pipeline struct {
	Extractor AudioExtractor
	Runner    Transcriber
	Writer    ResultWriter
	Logger    *zap.Logger

	// SilenceThresholdDBFS gates transcription of WAV inputs whose signal
	// sits below it; 0 disables the gate.
	SilenceThresholdDBFS float64

	// OnStage, when set, is called before each step starts.
	OnStage func(stage Stage, detail string)
}

func (p *Pipeline) log() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p *Pipeline) stage(stage Stage, detail string) {
	if p.OnStage != nil {
		p.OnStage(stage, detail)
	}
}

// OutputDirFor returns the default per-input output directory,
// <basename>_transcription next to the input file.
func OutputDirFor(input string) string {
	return filepath.Join(filepath.Dir(input), BaseName(input)+"_transcription")
}

// BaseName is the input file name without its extension.
func BaseName(input string) string {
	name := filepath.Base(input)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Run executes the pipeline for one file: extract audio when the input is a
// video container, transcribe, then write every requested format. One
// failing step aborts the run and the extracted audio file is removed, so a
// failed transcription yields no output files. Per-format write failures are
// the exception: formats that succeeded stay on disk and the error reports
// the ones that did not.
func (p *Pipeline) Run(ctx context.Context, req Request) (Outcome, error) {
	if len(req.Formats) == 0 {
		return Outcome{}, errors.New("no output formats requested")
	}

	input := filepath.Clean(req.Input)
	if _, err := os.Stat(input); err != nil {
		return Outcome{}, fmt.Errorf("input file not found: %w", err)
	}

	outcome := Outcome{OutputDir: req.OutputDir}
	if outcome.OutputDir == "" {
		outcome.OutputDir = OutputDirFor(input)
	}
	if err := os.MkdirAll(outcome.OutputDir, 0o755); err != nil {
		return Outcome{}, &transcript.WriteError{Path: outcome.OutputDir, Err: err}
	}

	audioPath := input
	if media.IsVideoPath(input) {
		outcome.AudioPath = filepath.Join(outcome.OutputDir, BaseName(input)+".wav")

		p.stage(StageExtracting, input)
		p.log().Info("extracting audio", zap.String("video", input), zap.String("audio", outcome.AudioPath))
		if err := p.Extractor.ExtractAudio(ctx, input, outcome.AudioPath); err != nil {
			return Outcome{}, err
		}
		audioPath = outcome.AudioPath
	}

	success := false
	defer func() {
		if !success && outcome.AudioPath != "" {
			if err := os.Remove(outcome.AudioPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				p.log().Warn("failed to remove extracted audio", zap.String("path", outcome.AudioPath), zap.Error(err))
			}
		}
	}()

	result, skipped := p.gateSilentAudio(audioPath, req.Language)
	outcome.SkippedSilent = skipped
	if !skipped {
		p.stage(StageTranscribing, audioPath)
		transcribed, err := p.Runner.Transcribe(ctx, audioPath, req.Language)
		if err != nil {
			return Outcome{}, err
		}
		result = transcribed
	}
	outcome.Result = result

	p.stage(StageWriting, outcome.OutputDir)
	files, err := p.Writer.WriteAll(result, transcript.OutputSpec{
		Dir:      outcome.OutputDir,
		BaseName: BaseName(input),
		Formats:  req.Formats,
	})
	outcome.Files = files
	if err != nil {
		return outcome, err
	}

	success = true
	return outcome, nil
}

// gateSilentAudio skips inference for WAV files whose signal is below the
// silence threshold. Analysis problems are logged and transcription
// proceeds as usual.
func (p *Pipeline) gateSilentAudio(audioPath, language string) (transcript.Result, bool) {
	if p.SilenceThresholdDBFS == 0 {
		return transcript.Result{}, false
	}
	if !strings.EqualFold(filepath.Ext(audioPath), ".wav") {
		return transcript.Result{}, false
	}

	info, err := audio.ReadInfo(audioPath)
	if err != nil {
		p.log().Warn("audio analysis failed; transcribing anyway", zap.String("audio", audioPath), zap.Error(err))
		return transcript.Result{}, false
	}

	p.log().Debug("audio stream",
		zap.String("audio", audioPath),
		zap.Duration("duration", info.Duration),
		zap.Int("sample_rate", info.SampleRate),
		zap.Float64("rms_dbfs", info.RMSdBFS),
	)

	if !info.IsSilent(p.SilenceThresholdDBFS) {
		return transcript.Result{}, false
	}

	p.log().Warn("audio considered silent; writing empty transcription",
		zap.String("audio", audioPath),
		zap.Float64("rms_dbfs", info.RMSdBFS),
		zap.Float64("threshold_dbfs", p.SilenceThresholdDBFS),
	)

	return transcript.Result{Language: language, Segments: []transcript.Segment{}}, true
}
