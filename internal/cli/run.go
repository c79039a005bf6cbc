package cli

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vvka-141/httpsify/internal/files/filesystem"
	"github.com/vvka-141/httpsify/internal/files/rewriter"
	"github.com/vvka-141/httpsify/internal/logging"
	"github.com/vvka-141/httpsify/internal/tui"
	"github.com/vvka-141/httpsify/pkg/httpsify"
)

type runOptions struct {
	rewriteFlags
	noProgress bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [root]",
		Short: "Rewrite every matching file under root once",
		Long: `Rewrite every matching file under root (default: the current directory).

Every directory entry is processed concurrently. Per-entry failures are
logged and summarized; the exit code is 11 when the root itself cannot be
listed and 12 when any other entry failed.`,
		Example: `  httpsify run ./public
  httpsify run ./public --dry-run
  httpsify run ./site --ext .html,.htm --max-concurrent 64
  httpsify run --from http://cdn.example.com --to https://cdn.example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(cmd, args, opts)
		},
	}
	addRewriteFlags(cmd, &opts.rewriteFlags)
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Print log lines instead of the live progress view")
	return cmd
}

func runRewrite(cmd *cobra.Command, args []string, opts *runOptions) error {
	cfg, err := resolveConfig(cmd, args, &opts.rewriteFlags)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context(), cmd.ErrOrStderr())
	defer stop()

	fsProvider := filesystem.NewOSFileSystem()
	if !opts.noProgress && cfg.LogFormat == httpsify.LogFormatConsole && tui.IsInteractive() {
		return runWithProgress(ctx, cmd, fsProvider, cfg)
	}

	logger, flush, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer flush()

	runID := uuid.NewString()
	logger = logging.WithRunID(logger, runID)
	rw, err := rewriter.New(fsProvider, cfg, logger, rewriter.WithRunID(runID))
	if err != nil {
		return err
	}

	report, err := rw.Run(ctx, cfg.Root)
	if report.Canceled > 0 {
		logger.Info("interrupted: %d entries not started", report.Canceled)
	}
	logger.Info("%s", report.Summary())
	return err
}

// runWithProgress drives the pass behind the bubbletea progress view.
// Per-file log lines are suppressed while the view is live; once it has
// exited every entry failure is written to stderr.
func runWithProgress(ctx context.Context, cmd *cobra.Command, fsProvider filesystem.FileSystemProvider, cfg httpsify.RewriteConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	display := tui.NewDisplay(cfg.Root, cfg.DryRun, cancel, cmd.OutOrStdout())
	rw, err := rewriter.New(fsProvider, cfg, logging.NewNullLogger(), rewriter.WithObserver(display.Observe))
	if err != nil {
		return err
	}

	var (
		report httpsify.Report
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		report, runErr = rw.Run(ctx, cfg.Root)
		display.Finish(report, runErr)
	}()

	_, viewErr := display.Run()
	if viewErr != nil {
		cancel()
	}
	<-done

	logReportErrors(logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), false), report)
	if viewErr != nil {
		return viewErr
	}
	return runErr
}

// logReportErrors writes every entry failure of report, in the order they
// were recorded.
func logReportErrors(logger httpsify.Logger, report httpsify.Report) {
	for _, e := range report.Errors {
		logger.Error("%v", e)
	}
}
