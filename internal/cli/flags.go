package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vvka-141/httpsify/internal/config"
	"github.com/vvka-141/httpsify/internal/logging"
	"github.com/vvka-141/httpsify/pkg/httpsify"
)

// rewriteFlags holds the flags shared by run, watch and config.
type rewriteFlags struct {
	extensions    []string
	from          string
	to            string
	maxConcurrent int
	rate          float64
	dryRun        bool
	skipUnchanged bool
	configFile    string
	envFiles      []string
	logFormat     string
}

func addRewriteFlags(cmd *cobra.Command, f *rewriteFlags) {
	flags := cmd.Flags()
	flags.StringSliceVar(&f.extensions, "ext", nil, "File extensions to rewrite, repeatable or comma separated (default .html)")
	flags.StringVar(&f.from, "from", "", "Literal text to replace (default http://)")
	flags.StringVar(&f.to, "to", "", "Replacement text (default https://)")
	flags.IntVar(&f.maxConcurrent, "max-concurrent", 0, "Maximum in-flight filesystem operations (0 = unbounded)")
	flags.Float64Var(&f.rate, "rate", 0, "Maximum file rewrites per second (0 = unlimited)")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Report what would change without writing")
	flags.BoolVar(&f.skipUnchanged, "skip-unchanged", false, "Do not write files that contain nothing to replace")
	flags.StringVar(&f.configFile, "config", "", "Path to a config file (default <root>/"+httpsify.ConfigFileName+" when present)")
	flags.StringArrayVar(&f.envFiles, "env-file", nil, "Load HTTPSIFY_* variables from a dotenv file (repeatable, default .env when present)")
	flags.StringVar(&f.logFormat, "log-format", "", "Log output format: console or json")
}

// resolveConfig merges flags, environment, config file and defaults.
// Only flags the user actually set override lower layers.
func resolveConfig(cmd *cobra.Command, args []string, f *rewriteFlags) (httpsify.RewriteConfig, error) {
	searchDir := "."
	if len(args) > 0 {
		searchDir = args[0]
	}

	changed := cmd.Flags().Changed
	return config.Resolve(config.Sources{
		ConfigFile: f.configFile,
		SearchDir:  searchDir,
		EnvFiles:   f.envFiles,
		Flags: func(c *httpsify.RewriteConfig) {
			if len(args) > 0 {
				c.Root = args[0]
			}
			if changed("ext") {
				c.Extensions = f.extensions
			}
			if changed("from") {
				c.From = f.from
			}
			if changed("to") {
				c.To = f.to
			}
			if changed("max-concurrent") {
				c.MaxConcurrent = f.maxConcurrent
			}
			if changed("rate") {
				c.RatePerSecond = f.rate
			}
			if changed("dry-run") {
				c.DryRun = f.dryRun
			}
			if changed("skip-unchanged") {
				c.SkipUnchanged = f.skipUnchanged
			}
			if changed("log-format") {
				c.LogFormat = f.logFormat
			}
			c.Verbose = getVerboseFlag(cmd)
		},
	})
}

// newLogger builds the configured logger on w.
func newLogger(cfg httpsify.RewriteConfig, w io.Writer) (httpsify.Logger, func(), error) {
	logger, err := logging.New(cfg.LogFormat, w, cfg.Verbose)
	if err != nil {
		return nil, nil, err
	}
	flush := func() {}
	if zl, ok := logger.(*logging.ZapLogger); ok {
		flush = func() { _ = zl.Sync() }
	}
	return logger, flush, nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM. In-flight file writes finish first.
func signalContext(parent context.Context, w io.Writer) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	// Handle interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(w, "\n[INTERRUPT] Received interrupt signal, finishing in-flight files...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
