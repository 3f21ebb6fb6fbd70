package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Prober shows container and stream diagnostics for a media file via
// ffprobe, used by the `inspect` command.
type Prober struct {
	FFprobePath string
}

func NewProber() *Prober {
	return &Prober{FFprobePath: "ffprobe"}
}

func (p *Prober) ffprobe() string {
	if p.FFprobePath == "" {
		return "ffprobe"
	}
	return p.FFprobePath
}

func (p *Prober) Available() bool {
	_, err := exec.LookPath(p.ffprobe())
	return err == nil
}

// Probe returns ffprobe's format and stream report for the file.
func (p *Prober) Probe(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, p.ffprobe(), "-hide_banner", "-show_format", "-show_streams", path)
	out, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if trimmed != "" {
			return "", fmt.Errorf("ffprobe %s failed: %w (%s)", path, err, firstLine(trimmed))
		}
		return "", fmt.Errorf("ffprobe %s failed: %w", path, err)
	}
	return trimmed, nil
}
