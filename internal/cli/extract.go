package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tbraun/vidscribe/internal/media"
	"go.uber.org/zap"
)

func newExtractCmd(app *appState) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "extract <video-file>",
		Short: "Extract the audio track of a video file as 16 kHz mono WAV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoPath := filepath.Clean(args[0])
			if !media.IsVideoPath(videoPath) {
				return fmt.Errorf("unsupported video file: %s", videoPath)
			}

			audioPath := outputPath
			if audioPath == "" {
				audioPath = defaultAudioPath(videoPath)
			}

			extractFn := app.extractFn
			if extractFn == nil {
				extractFn = app.extractAudio
			}

			if err := extractFn(cmd.Context(), videoPath, audioPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Audio saved to %s\n", audioPath)
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination WAV path; default <video>.wav next to the input")

	return cmd
}

func (a *appState) extractAudio(ctx context.Context, videoPath, audioPath string) error {
	extractor := media.NewExtractor(a.log())
	if !extractor.Available() {
		return fmt.Errorf("ffmpeg not found in PATH; install ffmpeg to extract audio")
	}

	a.log().Info("extracting audio", zap.String("video", videoPath), zap.String("audio", audioPath))
	stopSpinner := startSpinner(a.progressEnabled(), "Extracting audio")
	defer stopSpinner()

	return extractor.ExtractAudio(ctx, videoPath, audioPath)
}

func defaultAudioPath(videoPath string) string {
	stem := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	return stem + ".wav"
}
