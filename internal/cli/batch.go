package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tbraun/vidscribe/internal/pipeline"
	"github.com/tbraun/vidscribe/internal/transcript"
)

func newBatchCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Transcribe every media file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := transcript.ParseFormats(app.formats)
			if err != nil {
				return err
			}

			batchFn := app.batchFn
			if batchFn == nil {
				batchFn = app.runRealBatch
			}

			results, err := batchFn(cmd.Context(), args[0], pipeline.Request{
				Language: app.language,
				Formats:  formats,
			})
			if err != nil {
				return err
			}

			failed := 0
			for _, result := range results {
				if result.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %v\n", result.Input, result.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK    %s -> %s\n", result.Input, result.Outcome.OutputDir)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d files, %d failed\n", len(results), failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
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

	return cmd
}

func (a *appState) runRealBatch(ctx context.Context, dir string, base pipeline.Request) ([]pipeline.BatchResult, error) {
	p, err := a.newPipeline()
	if err != nil {
		return nil, err
	}
	return p.RunBatch(ctx, dir, base)
}
