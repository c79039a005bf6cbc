// Package rewriter walks a directory tree and rewrites matching files in place.
//
// A TreeRewriter lists a directory, fans out one goroutine per entry, and for
// every regular file whose extension matches the configured filter replaces
// each literal occurrence of a source string with a target string, writing
// the result back to the same path in a single write.
//
// # Completion
//
// ProcessDirectory dispatches work and returns immediately; it never waits
// for the subtree. Wait blocks until everything dispatched so far has
// finished and returns the aggregated Report. Run does both.
//
//	rw, err := rewriter.New(filesystem.NewOSFileSystem(), cfg, logger)
//	if err != nil {
//	    return err
//	}
//	report, err := rw.Run(ctx, cfg.Root)
//
// # Failure Policy
//
// Every error is handled at the narrowest scope: a directory that cannot be
// listed abandons only its own subtree, an entry whose metadata cannot be read
// is skipped, and a file that cannot be read or written is reported on its
// own. No error aborts the pass; all of them are collected in the Report.
//
// # Concurrency
//
// MaxConcurrent bounds how many list, stat and rewrite operations are in
// flight at once; zero leaves fan-out unbounded. RatePerSecond paces
// rewrites. Once the context is done, work that has not started is skipped
// and counted as canceled; a write in progress is never interrupted.
package rewriter
