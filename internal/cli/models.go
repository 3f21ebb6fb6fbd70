package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tbraun/vidscribe/internal/whisper"
)

func newModelsCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List available model tiers and their download state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			modelDir, err := app.modelStorageDir()
			if err != nil {
				return err
			}

			for _, name := range whisper.ModelNames() {
				model, ok := whisper.LookupModel(name)
				if !ok {
					continue
				}

				state := "not downloaded"
				if _, err := os.Stat(filepath.Join(modelDir, model.FileName)); err == nil {
					state = "downloaded"
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("stat model %s: %w", model.FileName, err)
				}

				marker := " "
				if name == app.model {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-8s %-14s %s\n", marker, name, state, model.Description)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nModel directory: %s\n", modelDir)
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindModelFlags(cmd, app)

	return cmd
}
