package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tbraun/vidscribe/internal/media"
)

func newInspectCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <media-file>",
		Short: "Show container and stream details of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaPath := filepath.Clean(args[0])
			if !media.IsMediaPath(mediaPath) {
				return fmt.Errorf("unsupported media file: %s", mediaPath)
			}

			prober := media.NewProber()
			if !prober.Available() {
				return fmt.Errorf("ffprobe not found in PATH; install ffmpeg to inspect media files")
			}

			report, err := prober.Probe(cmd.Context(), mediaPath)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), report)
			return nil
		},
	}

	bindLoggingFlags(cmd, app)

	return cmd
}
