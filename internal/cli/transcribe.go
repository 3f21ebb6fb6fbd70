package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tbraun/vidscribe/internal/clipboard"
	"github.com/tbraun/vidscribe/internal/media"
)

func newTranscribeCmd(app *appState) *cobra.Command {
	var copyToClipboard bool

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file and save the requested output formats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audioPath := filepath.Clean(args[0])
			if !media.IsAudioPath(audioPath) {
				return fmt.Errorf("unsupported audio file: %s (for video files run `vidscribe %s`)", audioPath, audioPath)
			}

			copyFn := app.copyFn
			if copyFn == nil {
				copyFn = clipboard.CopyText
			}

			outcome, err := app.runPipeline(cmd.Context(), audioPath)
			if err != nil {
				return err
			}

			text := outcome.Result.FullText()
			fmt.Fprintln(cmd.OutOrStdout(), text)
			if isBlankTranscript(text) {
				app.log().Warn(noSpeechHint())
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Files saved to %s\n", outcome.OutputDir)

			if copyToClipboard {
				if isBlankTranscript(text) {
					return nil
				}

				if err := copyFn(cmd.Context(), text); err != nil {
					return err
				}
				app.log().Info("transcript copied to clipboard")
			}
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageFlags(cmd, app)
	bindOutputFlags(cmd, app)
	bindSilenceFlags(cmd, app)
	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Copy transcript to clipboard")

	return cmd
}
