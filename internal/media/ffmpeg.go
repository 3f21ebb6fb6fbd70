// Package media wraps the external ffmpeg/ffprobe binaries for audio
// extraction and container inspection.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ExtractionError reports a failed audio extraction. It is terminal for the
// current file; no retry is attempted and partial output has been removed.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract audio from %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor pulls the audio stream out of a video container as mono 16 kHz
// PCM WAV, the input format the whisper engine expects.
type Extractor struct {
	FFmpegPath string
	Logger     *zap.Logger

	// runFn is swappable for tests; nil runs the real command.
	runFn func(ctx context.Context, name string, args []string) (string, error)
}

func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{FFmpegPath: "ffmpeg", Logger: logger}
}

func (e *Extractor) ffmpeg() string {
	if e.FFmpegPath == "" {
		return "ffmpeg"
	}
	return e.FFmpegPath
}

// Available reports whether the ffmpeg binary can be found.
func (e *Extractor) Available() bool {
	_, err := exec.LookPath(e.ffmpeg())
	return err == nil
}

// ExtractAudio writes the audio stream of videoPath to audioPath,
// overwriting an existing file. On failure the partial output file is
// removed and a *ExtractionError is returned.
func (e *Extractor) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	if strings.TrimSpace(videoPath) == "" {
		return &ExtractionError{Source: videoPath, Err: errors.New("source path is required")}
	}
	if strings.TrimSpace(audioPath) == "" {
		return &ExtractionError{Source: videoPath, Err: errors.New("destination path is required")}
	}

	if _, err := os.Stat(videoPath); err != nil {
		return &ExtractionError{Source: videoPath, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(audioPath), 0o755); err != nil {
		return &ExtractionError{Source: videoPath, Err: err}
	}

	args := []string{
		"-nostdin", "-hide_banner", "-loglevel", "error", "-y",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		audioPath,
	}

	e.Logger.Debug("running ffmpeg", zap.String("source", videoPath), zap.String("destination", audioPath))

	output, err := e.run(ctx, e.ffmpeg(), args)
	if err != nil {
		if removeErr := removePartialOutput(audioPath); removeErr != nil {
			e.Logger.Warn("failed to remove partial audio file", zap.String("path", audioPath), zap.Error(removeErr))
		}

		if isNoAudioStreamError(output) {
			return &ExtractionError{Source: videoPath, Err: fmt.Errorf("no audio stream found: %s", firstLine(output))}
		}
		if output != "" {
			return &ExtractionError{Source: videoPath, Err: fmt.Errorf("%w (%s)", err, firstLine(output))}
		}
		return &ExtractionError{Source: videoPath, Err: err}
	}

	e.Logger.Info("audio extracted", zap.String("source", videoPath), zap.String("audio", audioPath))
	return nil
}

func (e *Extractor) run(ctx context.Context, name string, args []string) (string, error) {
	if e.runFn != nil {
		return e.runFn(ctx, name, args)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

func removePartialOutput(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// isNoAudioStreamError matches the ffmpeg messages emitted when the
// container carries no mappable audio stream.
func isNoAudioStreamError(output string) bool {
	value := strings.ToLower(output)
	patterns := []string{
		"does not contain any stream",
		"stream map '0:a' matches no streams",
		"output file does not contain any stream",
		"no audio stream",
	}

	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}

	return false
}

func firstLine(output string) string {
	if idx := strings.IndexByte(output, '\n'); idx >= 0 {
		return strings.TrimSpace(output[:idx])
	}
	return output
}
