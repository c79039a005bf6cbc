package rewriter

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/vvka-141/httpsify/internal/checksum"
	"github.com/vvka-141/httpsify/internal/files/filesystem"
	"github.com/vvka-141/httpsify/pkg/httpsify"
)

var errNotRegular = errors.New("not a regular file")

// Option customizes a TreeRewriter.
type Option func(*TreeRewriter)

// WithObserver registers fn to be called once for every finished rewrite target.
// fn is called from worker goroutines and must be safe for concurrent use.
func WithObserver(fn func(httpsify.FileResult)) Option {
	return func(r *TreeRewriter) { r.observer = fn }
}

// WithRunID replaces the generated run identifier, so callers can tag
// their logger with the same id before the pass starts.
func WithRunID(id string) Option {
	return func(r *TreeRewriter) {
		if id != "" {
			r.report.RunID = id
		}
	}
}

// TreeRewriter rewrites every matching file reachable from the directories it is given.
// A TreeRewriter owns the sequence counter and report of one traversal pass;
// it is safe for concurrent use by multiple goroutines.
type TreeRewriter struct {
	fs       filesystem.FileSystemProvider
	cfg      httpsify.RewriteConfig
	logger   httpsify.Logger
	calc     checksum.Calculator
	sub      Substituter
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
	observer func(httpsify.FileResult)

	seq atomic.Int64
	wg  sync.WaitGroup

	mu     sync.Mutex
	report httpsify.Report
}

// New creates a TreeRewriter for cfg on top of fsProvider.
// Panics if fsProvider or logger is nil.
func New(fsProvider filesystem.FileSystemProvider, cfg httpsify.RewriteConfig, logger httpsify.Logger, opts ...Option) (*TreeRewriter, error) {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &TreeRewriter{
		fs:     fsProvider,
		cfg:    cfg,
		logger: logger,
		calc:   checksum.New(),
		sub:    NewSubstituter(cfg.From, cfg.To),
		report: httpsify.Report{
			RunID:     uuid.NewString(),
			DryRun:    cfg.DryRun,
			StartedAt: time.Now(),
		},
	}
	if cfg.MaxConcurrent > 0 {
		r.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	if cfg.RatePerSecond > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RunID identifies this pass in logs and reports.
func (r *TreeRewriter) RunID() string {
	return r.report.RunID
}

// ProcessDirectory lists dir and dispatches every entry for processing.
// It returns without waiting for the subtree; call Wait for completion.
func (r *TreeRewriter) ProcessDirectory(ctx context.Context, dir string) {
	r.mu.Lock()
	if r.report.Root == "" {
		r.report.Root = dir
	}
	r.mu.Unlock()

	r.spawn(func() { r.processDirectory(ctx, dir) })
}

// Wait blocks until all dispatched work has finished and returns the report so far.
func (r *TreeRewriter) Wait() httpsify.Report {
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Duration = time.Since(r.report.StartedAt)
	out := r.report
	out.Errors = append([]error(nil), r.report.Errors...)
	return out
}

// Run processes root, waits for the whole tree and returns the report.
// The error is non-nil when any entry failed; see httpsify.Report.Err.
func (r *TreeRewriter) Run(ctx context.Context, root string) (httpsify.Report, error) {
	r.logger.Verbose("run %s: rewriting %q -> %q in %v under %s", r.RunID(), r.cfg.From, r.cfg.To, r.cfg.Extensions, root)
	r.ProcessDirectory(ctx, root)
	report := r.Wait()
	return report, report.Err()
}

// RewriteFile rewrites a single file synchronously.
// The file's metadata is read first to keep its permission bits.
func (r *TreeRewriter) RewriteFile(ctx context.Context, path string) httpsify.FileResult {
	if !r.acquire(ctx) {
		r.recordCanceled()
		return httpsify.FileResult{Path: path, Status: httpsify.StatusCanceled, Err: ctx.Err()}
	}
	info, err := r.fs.Stat(path)
	r.release()
	if err != nil {
		rerr := r.fail(httpsify.MetadataError, path, err)
		return httpsify.FileResult{Path: path, Status: httpsify.StatusFailed, Err: rerr}
	}
	if !info.Mode().IsRegular() {
		rerr := r.fail(httpsify.MetadataError, path, errNotRegular)
		return httpsify.FileResult{Path: path, Status: httpsify.StatusFailed, Err: rerr}
	}
	return r.rewrite(ctx, path, info)
}

func (r *TreeRewriter) spawn(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

func (r *TreeRewriter) acquire(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if r.sem == nil {
		return true
	}
	return r.sem.Acquire(ctx, 1) == nil
}

func (r *TreeRewriter) release() {
	if r.sem != nil {
		r.sem.Release(1)
	}
}

func (r *TreeRewriter) processDirectory(ctx context.Context, dir string) {
	if !r.acquire(ctx) {
		r.recordCanceled()
		return
	}
	names, err := r.fs.ReadDir(dir)
	r.release()
	if err != nil {
		r.fail(httpsify.ListError, dir, err)
		return
	}

	r.mu.Lock()
	r.report.Directories++
	r.mu.Unlock()
	r.logger.Verbose("listed %s (%d entries)", dir, len(names))

	for _, name := range names {
		entry := filepath.Join(dir, name)
		r.spawn(func() { r.processEntry(ctx, entry) })
	}
}

func (r *TreeRewriter) processEntry(ctx context.Context, entry string) {
	if !r.acquire(ctx) {
		r.recordCanceled()
		return
	}
	info, err := r.fs.Stat(entry)
	r.release()
	if err != nil {
		r.fail(httpsify.MetadataError, entry, err)
		return
	}

	switch {
	case info.IsDir():
		r.processDirectory(ctx, entry)
	case info.Mode().IsRegular() && r.cfg.MatchesExtension(filepath.Base(entry)):
		r.rewrite(ctx, entry, info)
	default:
		r.mu.Lock()
		r.report.Ignored++
		r.mu.Unlock()
	}
}

// rewrite performs read, substitute and write for one rewrite target.
func (r *TreeRewriter) rewrite(ctx context.Context, path string, info filesystem.FileInfo) httpsify.FileResult {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			r.recordCanceled()
			return httpsify.FileResult{Path: path, Status: httpsify.StatusCanceled, Err: err}
		}
	}
	if !r.acquire(ctx) {
		r.recordCanceled()
		return httpsify.FileResult{Path: path, Status: httpsify.StatusCanceled, Err: ctx.Err()}
	}
	defer r.release()

	seq := r.seq.Add(1)
	r.mu.Lock()
	r.report.Matched++
	r.mu.Unlock()

	r.logger.Info("start processing %s [%d]", path, seq)
	result := httpsify.FileResult{Seq: seq, Path: path}

	content, err := r.fs.ReadFile(path)
	if err != nil {
		return r.finishFailed(result, r.fail(httpsify.ReadError, path, err))
	}
	if !utf8.Valid(content) {
		return r.finishFailed(result, r.fail(httpsify.ReadError, path, httpsify.ErrInvalidEncoding))
	}

	rewritten, n := r.sub.Apply(content)
	result.Replacements = n
	result.ChecksumBefore = r.calc.Calculate(content)
	result.ChecksumAfter = result.ChecksumBefore
	if n > 0 {
		result.ChecksumAfter = r.calc.Calculate(rewritten)
	}

	switch {
	case r.cfg.DryRun && n > 0:
		result.Status = httpsify.StatusWouldRewrite
		r.logger.Info("would rewrite %s [%d] (%d replacements)", path, seq, n)
	case r.cfg.DryRun, r.cfg.SkipUnchanged && n == 0:
		result.Status = httpsify.StatusUnchanged
		r.logger.Verbose("no change needed %s [%d]", path, seq)
	default:
		perm := info.Mode().Perm()
		if perm == 0 {
			perm = httpsify.DefaultFileMode
		}
		if err := r.fs.WriteFile(path, rewritten, perm); err != nil {
			return r.finishFailed(result, r.fail(httpsify.WriteError, path, err))
		}
		result.Status = httpsify.StatusRewritten
		if n == 0 {
			result.Status = httpsify.StatusUnchanged
		}
		r.logger.Verbose("%s %s -> %s (%d replacements)", path,
			checksum.Short(result.ChecksumBefore), checksum.Short(result.ChecksumAfter), n)
	}

	r.logger.Info("finish processing %s [%d]", path, seq)
	r.record(result)
	return result
}

func (r *TreeRewriter) finishFailed(result httpsify.FileResult, err error) httpsify.FileResult {
	result.Status = httpsify.StatusFailed
	result.Err = err
	r.record(result)
	return result
}

func (r *TreeRewriter) record(result httpsify.FileResult) {
	r.mu.Lock()
	switch result.Status {
	case httpsify.StatusRewritten, httpsify.StatusWouldRewrite:
		r.report.Rewritten++
		r.report.Replacements += result.Replacements
	case httpsify.StatusUnchanged:
		r.report.Unchanged++
	}
	r.mu.Unlock()

	if r.observer != nil {
		r.observer(result)
	}
}

// fail logs and records a per-entry error. Errors never propagate further.
func (r *TreeRewriter) fail(kind httpsify.ErrorKind, path string, err error) error {
	rerr := httpsify.NewRewriteError(kind, path, err)
	r.logger.Error("%v", rerr)

	r.mu.Lock()
	r.report.Errors = append(r.report.Errors, rerr)
	r.mu.Unlock()
	return rerr
}

func (r *TreeRewriter) recordCanceled() {
	r.mu.Lock()
	r.report.Canceled++
	r.mu.Unlock()
}
