package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/tbraun/vidscribe/internal/transcript"
	"go.uber.org/zap"
)

// CLIEngine runs the whisper.cpp command-line binary as the inference
// backend and parses its full-JSON output into segments.
type CLIEngine struct {
	Executable string
	Logger     *zap.Logger
}

// NewCLIEngine locates whisper-cli: the VIDSCRIBE_WHISPER_PATH override
// first, then PATH, then well-known locations next to the vidscribe binary.
func NewCLIEngine(logger *zap.Logger) (*CLIEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if override := strings.TrimSpace(os.Getenv("VIDSCRIBE_WHISPER_PATH")); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("VIDSCRIBE_WHISPER_PATH is not executable: %w", err)
		}
		return &CLIEngine{Executable: override, Logger: logger}, nil
	}

	if onPath, err := exec.LookPath(engineBinaryName()); err == nil {
		return &CLIEngine{Executable: onPath, Logger: logger}, nil
	}

	selfExe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve vidscribe executable path: %w", err)
	}

	for _, candidate := range enginePathCandidates(selfExe) {
		if err := ensureExecutable(candidate); err == nil {
			return &CLIEngine{Executable: candidate, Logger: logger}, nil
		}
	}

	return nil, fmt.Errorf("whisper engine not found: install whisper.cpp so %s is on PATH, or set VIDSCRIBE_WHISPER_PATH", engineBinaryName())
}

func enginePathCandidates(selfExecutable string) []string {
	binDir := filepath.Dir(selfExecutable)
	engineName := engineBinaryName()

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, engineName),
	}
}

func (e *CLIEngine) Transcribe(ctx context.Context, req Request) (transcript.Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return transcript.Result{}, errors.New("audio path is required")
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return transcript.Result{}, errors.New("model path is required")
	}

	if err := ensureExecutable(e.Executable); err != nil {
		return transcript.Result{}, fmt.Errorf("whisper engine missing or not executable: %w", err)
	}

	outBase := filepath.Join(os.TempDir(), fmt.Sprintf("vidscribe-%d", time.Now().UnixNano()))
	jsonOut := outBase + ".json"

	language := strings.TrimSpace(strings.ToLower(req.Language))
	if language == "" {
		language = "auto"
	}

	args := []string{"-m", req.ModelPath, "-f", req.AudioPath, "-l", language, "-oj", "-ojf", "-of", outBase, "-np"}

	cmd := exec.CommandContext(ctx, e.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	e.logger().Debug("running whisper engine", zap.String("engine", e.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if isMissingSharedLibraryError(errText) {
			return transcript.Result{}, fmt.Errorf("whisper engine at %s is missing required shared libraries (%s); rebuild whisper-cli with BUILD_SHARED_LIBS=OFF or fix the library path", e.Executable, errText)
		}
		if errText != "" {
			return transcript.Result{}, fmt.Errorf("whisper engine failed: %w (%s)", err, errText)
		}
		return transcript.Result{}, fmt.Errorf("whisper engine failed: %w", err)
	}

	defer os.Remove(jsonOut)
	content, err := os.ReadFile(jsonOut)
	if err != nil {
		return transcript.Result{}, fmt.Errorf("read whisper output: %w", err)
	}

	return parseEngineOutput(content)
}

func (e *CLIEngine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// engineOutput mirrors the parts of whisper.cpp's full-JSON output this tool
// consumes: the detected language plus per-segment millisecond offsets, text
// and token probabilities.
type engineOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text   string        `json:"text"`
		Tokens []engineToken `json:"tokens"`
	} `json:"transcription"`
}

type engineToken struct {
	Text string  `json:"text"`
	P    float64 `json:"p"`
}

func parseEngineOutput(data []byte) (transcript.Result, error) {
	var parsed engineOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return transcript.Result{}, fmt.Errorf("parse whisper output: %w", err)
	}

	result := transcript.Result{Language: parsed.Result.Language}
	var fullText []string
	for _, raw := range parsed.Transcription {
		text := strings.TrimSpace(raw.Text)
		if text == "" {
			continue
		}

		result.Segments = append(result.Segments, transcript.Segment{
			Text:       text,
			Start:      float64(raw.Offsets.From) / 1000,
			End:        float64(raw.Offsets.To) / 1000,
			Confidence: segmentConfidence(raw.Tokens),
		})
		fullText = append(fullText, text)
	}

	result.Text = strings.Join(fullText, "\n")
	return result, nil
}

// segmentConfidence averages the token probabilities, skipping whisper's
// special marker tokens ("[_BEG_]" and friends). Engines built without
// token output yield 1.
func segmentConfidence(tokens []engineToken) float64 {
	var sum float64
	var count int
	for _, token := range tokens {
		if strings.HasPrefix(token.Text, "[_") {
			continue
		}
		sum += token.P
		count++
	}

	if count == 0 {
		return 1
	}
	return sum / float64(count)
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	patterns := []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	}

	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}

	return false
}
