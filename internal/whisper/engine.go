package whisper

import (
	"context"

	"github.com/tbraun/vidscribe/internal/transcript"
)

type Request struct {
	AudioPath string
	ModelPath string
	Language  string
}

// Engine runs speech-to-text inference on one audio file. Implementations
// wrap an external model runtime; tests substitute a fake.
type Engine interface {
	Transcribe(ctx context.Context, req Request) (transcript.Result, error)
}
