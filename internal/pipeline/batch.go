package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tbraun/vidscribe/internal/media"
	"go.uber.org/zap"
)

// BatchResult pairs one input file with its run outcome.
type BatchResult struct {
	Input   string
	Outcome Outcome
	Err     error
}

// RunBatch processes every media file directly inside dir, in name order.
// A failing file is recorded and processing continues with the next one;
// only cancellation stops the loop early.
func (p *Pipeline) RunBatch(ctx context.Context, dir string, base Request) ([]BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var inputs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if media.IsMediaPath(entry.Name()) {
			inputs = append(inputs, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(inputs)

	if len(inputs) == 0 {
		return nil, fmt.Errorf("no media files found in %s", dir)
	}

	p.log().Info("batch processing", zap.Int("files", len(inputs)), zap.String("dir", dir))

	results := make([]BatchResult, 0, len(inputs))
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		p.log().Info("processing file", zap.Int("index", i+1), zap.Int("total", len(inputs)), zap.String("input", input))

		req := base
		req.Input = input
		req.OutputDir = "" // each input gets its own sibling directory

		outcome, err := p.Run(ctx, req)
		if err != nil {
			p.log().Warn("file failed", zap.String("input", input), zap.Error(err))
		}
		results = append(results, BatchResult{Input: input, Outcome: outcome, Err: err})
	}

	return results, nil
}
