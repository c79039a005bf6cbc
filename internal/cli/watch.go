package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/httpsify/internal/files/filesystem"
	"github.com/vvka-141/httpsify/internal/watch"
	"github.com/vvka-141/httpsify/pkg/httpsify"
)

type watchOptions struct {
	rewriteFlags
	debounce time.Duration
}

func newWatchCmd() *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Rewrite once, then keep rewriting files as they change",
		Long: `Rewrite every matching file under root, then watch the tree and rewrite
matching files again whenever they are created or modified. New directories
are picked up automatically. Files holding nothing to replace are never
written, so the watcher does not react to its own output.

Stop with Ctrl+C.`,
		Example: `  httpsify watch ./public
  httpsify watch ./public --debounce 1s --log-format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}
	addRewriteFlags(cmd, &opts.rewriteFlags)
	cmd.Flags().DurationVar(&opts.debounce, "debounce", httpsify.DefaultWatchDebounce, "How long a file must stay quiet before it is rewritten")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *watchOptions) error {
	cfg, err := resolveConfig(cmd, args, &opts.rewriteFlags)
	if err != nil {
		return err
	}

	logger, flush, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer flush()

	w, err := watch.New(filesystem.NewOSFileSystem(), cfg, logger, watch.WithDebounce(opts.debounce))
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context(), cmd.ErrOrStderr())
	defer stop()

	if err := w.Run(ctx); err != nil {
		return err
	}
	stats := w.Stats()
	logger.Verbose("watch finished: %d passes, %d directories watched, %d errors", stats.Passes, stats.DirsAdded, stats.Errors)
	return nil
}
