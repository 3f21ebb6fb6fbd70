package whisper

import (
	"context"
	"fmt"
	"sync"

	"github.com/tbraun/vidscribe/internal/download"
	"github.com/tbraun/vidscribe/internal/transcript"
	"go.uber.org/zap"
)

// Runner owns the lazily-initialized model handle: the first transcription
// resolves (and, when allowed, downloads) the requested tier, later ones
// reuse the resolved path. Construct one Runner per process; it is safe for
// sequential reuse across files.
type Runner struct {
	Model        string
	ModelDir     string
	AutoDownload bool
	NoProgress   bool
	Engine       Engine
	Logger       *zap.Logger

	// DownloadFn is swappable for tests; nil means download.DownloadFile.
	DownloadFn func(ctx context.Context, opts download.Options) error

	mu        sync.Mutex
	modelPath string
}

func (r *Runner) log() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// EnsureModel resolves the model to a local file path, downloading the
// weights on first use. Subsequent calls return the cached path.
func (r *Runner) EnsureModel(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.modelPath != "" {
		return r.modelPath, nil
	}

	resolved, err := ResolveModel(r.Model, r.ModelDir)
	if err != nil {
		return "", &ModelLoadError{Model: r.Model, Err: err}
	}

	if resolved.NeedsDownload {
		if !r.AutoDownload {
			return "", &ModelLoadError{
				Model: resolved.Name,
				Err:   fmt.Errorf("model is missing at %s; run `vidscribe setup --model %s` or use --auto-download=true", resolved.Path, resolved.Name),
			}
		}

		downloadFn := r.DownloadFn
		if downloadFn == nil {
			downloadFn = download.DownloadFile
		}

		r.log().Info("model not found, downloading", zap.String("model", resolved.Name), zap.String("destination", resolved.Path))
		if err := downloadFn(ctx, download.Options{
			URL:            resolved.URL,
			Destination:    resolved.Path,
			ExpectedSHA256: resolved.SHA256,
			NoProgress:     r.NoProgress,
			Logger:         r.log(),
		}); err != nil {
			return "", &ModelLoadError{Model: resolved.Name, Err: err}
		}
	}

	r.modelPath = resolved.Path
	return r.modelPath, nil
}

// Transcribe runs inference on one audio file, loading the model first if
// this is the initial call.
func (r *Runner) Transcribe(ctx context.Context, audioPath, language string) (transcript.Result, error) {
	modelPath, err := r.EnsureModel(ctx)
	if err != nil {
		return transcript.Result{}, err
	}

	result, err := r.Engine.Transcribe(ctx, Request{
		AudioPath: audioPath,
		ModelPath: modelPath,
		Language:  language,
	})
	if err != nil {
		return transcript.Result{}, &TranscriptionError{AudioPath: audioPath, Err: err}
	}

	return result, nil
}
