package transcript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// WriteError reports that one output file could not be produced. Other
// requested formats are still attempted; nothing is rolled back.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write transcription %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// OutputSpec describes where transcription files go. One file per requested
// format is written as <BaseName>_transcription.<ext> inside Dir.
type OutputSpec struct {
	Dir      string
	BaseName string
	Formats  []Format
}

func (s OutputSpec) FilePath(format Format) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s_transcription.%s", s.BaseName, format.Ext()))
}

type Writer struct {
	Logger *zap.Logger
}

func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{Logger: logger}
}

// WriteAll renders and writes every requested format. It returns the paths
// that were written; when some formats fail, the error is the join of one
// *WriteError per failed format and the returned paths still list the
// successful ones.
func (w *Writer) WriteAll(result Result, spec OutputSpec) ([]string, error) {
	if len(spec.Formats) == 0 {
		return nil, errors.New("no output formats requested")
	}

	if err := os.MkdirAll(spec.Dir, 0o755); err != nil {
		return nil, &WriteError{Path: spec.Dir, Err: err}
	}

	var written []string
	var errs []error
	for _, format := range spec.Formats {
		path := spec.FilePath(format)

		data, err := Render(result, format)
		if err != nil {
			errs = append(errs, &WriteError{Path: path, Err: err})
			continue
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			errs = append(errs, &WriteError{Path: path, Err: err})
			continue
		}

		w.Logger.Info("transcription saved", zap.String("path", path), zap.String("format", string(format)))
		written = append(written, path)
	}

	return written, errors.Join(errs...)
}
