package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tbraun/vidscribe/internal/logging"
	"github.com/tbraun/vidscribe/internal/media"
	"github.com/tbraun/vidscribe/internal/pipeline"
	"github.com/tbraun/vidscribe/internal/platform"
	"github.com/tbraun/vidscribe/internal/transcript"
	"github.com/tbraun/vidscribe/internal/version"
	"github.com/tbraun/vidscribe/internal/whisper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

type appState struct {
	verbose      bool
	jsonLogs     bool
	noProgress   bool
	model        string
	modelDir     string
	language     string
	autoDownload bool
	formats      []string
	outputDir    string
	silenceGate  bool
	silenceDBFS  float64

	logger *zap.Logger

	runFn     func(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
	batchFn   func(ctx context.Context, dir string, base pipeline.Request) ([]pipeline.BatchResult, error)
	extractFn func(ctx context.Context, videoPath, audioPath string) error
	copyFn    func(ctx context.Context, value string) error
}

func NewRootCmd() *cobra.Command {
	app := &appState{
		model:        whisper.DefaultModel,
		language:     "auto",
		autoDownload: true,
		silenceGate:  true,
		silenceDBFS:  -65,
	}

	cmd := &cobra.Command{
		Use:           "vidscribe <media-file>",
		Short:         "Extract audio from video files and transcribe it to TXT, JSON, SRT and VTT",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.language = sanitizeLanguage(app.language)
			app.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return app.runDefault(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageFlags(cmd, app)
	bindOutputFlags(cmd, app)
	bindSilenceFlags(cmd, app)

	cmd.AddCommand(newExtractCmd(app))
	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newBatchCmd(app))
	cmd.AddCommand(newModelsCmd(app))
	cmd.AddCommand(newInspectCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.Flags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.model, "model", app.model, "Model tier (tiny|base|small|medium|large) or model file path")
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
	cmd.Flags().BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
}

func bindLanguageFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.language, "language", app.language, "Language code (auto|en|de|ru|...) for transcription")
}

func bindOutputFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringSliceVar(&app.formats, "formats", app.formats, "Output formats (txt,json,srt,vtt); default txt,json,srt")
	cmd.Flags().StringVar(&app.outputDir, "output-dir", app.outputDir, "Output directory; default <input>_transcription next to the input")
}

func bindSilenceFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.silenceGate, "silence-gate", app.silenceGate, "Skip transcription of near-silent WAV audio")
	cmd.Flags().Float64Var(&app.silenceDBFS, "silence-threshold-dbfs", app.silenceDBFS, "Silence gate threshold in dBFS")
}

// runDefault is the full pipeline: extract when the input is a video,
// transcribe, write the requested formats.
func (a *appState) runDefault(ctx context.Context, out io.Writer, input string) error {
	outcome, err := a.runPipeline(ctx, input)
	if err != nil {
		return err
	}

	if outcome.SkippedSilent {
		a.log().Warn(noSpeechHint())
	}

	fmt.Fprintf(out, "Transcription complete. Files saved to %s\n", outcome.OutputDir)
	for _, file := range outcome.Files {
		fmt.Fprintf(out, "  %s\n", file)
	}
	return nil
}

// runPipeline validates the requested formats before any model work, then
// hands the request to the pipeline (or its test double).
func (a *appState) runPipeline(ctx context.Context, input string) (pipeline.Outcome, error) {
	formats, err := transcript.ParseFormats(a.formats)
	if err != nil {
		return pipeline.Outcome{}, err
	}

	runFn := a.runFn
	if runFn == nil {
		runFn = a.runRealPipeline
	}

	return runFn(ctx, pipeline.Request{
		Input:     input,
		Language:  a.language,
		Formats:   formats,
		OutputDir: a.outputDir,
	})
}

func (a *appState) runRealPipeline(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error) {
	p, err := a.newPipeline()
	if err != nil {
		return pipeline.Outcome{}, err
	}

	stopSpinner := func() {}
	p.OnStage = func(stage pipeline.Stage, _ string) {
		stopSpinner()
		stopSpinner = startSpinner(a.progressEnabled(), stageDescription(stage))
	}
	defer func() { stopSpinner() }()

	return p.Run(ctx, req)
}

func (a *appState) newPipeline() (*pipeline.Pipeline, error) {
	runner, err := a.newRunner()
	if err != nil {
		return nil, err
	}

	extractor := media.NewExtractor(a.log())

	p := &pipeline.Pipeline{
		Extractor: extractor,
		Runner:    runner,
		Writer:    transcript.NewWriter(a.log()),
		Logger:    a.log(),
	}
	if a.silenceGate {
		p.SilenceThresholdDBFS = a.silenceDBFS
	}

	return p, nil
}

func (a *appState) newRunner() (*whisper.Runner, error) {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return nil, err
	}

	engine, err := whisper.NewCLIEngine(a.log())
	if err != nil {
		return nil, err
	}

	return &whisper.Runner{
		Model:        a.model,
		ModelDir:     modelDir,
		AutoDownload: a.autoDownload,
		NoProgress:   a.noProgress,
		Engine:       engine,
		Logger:       a.log(),
	}, nil
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.modelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func stageDescription(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageExtracting:
		return "Extracting audio"
	case pipeline.StageTranscribing:
		return "Transcribing"
	case pipeline.StageWriting:
		return "Writing transcriptions"
	default:
		return string(stage)
	}
}
