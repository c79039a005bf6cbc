// Package watch keeps a tree rewritten while it changes.
//
// A Watcher performs one full pass over the root, then follows fsnotify
// events: matching files that are created or modified are rewritten again
// once they have settled for the debounce window, and new directories are
// watched and traversed. Its own writes never retrigger a rewrite because
// watch passes always skip files that hold no occurrence of the pattern.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/vvka-141/httpsify/internal/files/filesystem"
	"github.com/vvka-141/httpsify/internal/files/rewriter"
	"github.com/vvka-141/httpsify/internal/logging"
	"github.com/vvka-141/httpsify/pkg/httpsify"
)

// Stats tracks watcher activity.
type Stats struct {
	Passes        int
	FilesQueued   int
	DirsAdded     int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a path must stay quiet before it is rewritten.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceDur = d
		}
	}
}

// WithPassHook registers fn to receive the report of every completed pass,
// including the initial one.
func WithPassHook(fn func(httpsify.Report)) Option {
	return func(w *Watcher) { w.onPass = fn }
}

// Watcher re-applies the rewrite to a tree as it changes.
type Watcher struct {
	mu          sync.Mutex
	fsw         *fsnotify.Watcher
	fs          filesystem.FileSystemProvider
	cfg         httpsify.RewriteConfig
	logger      httpsify.Logger
	onPass      func(httpsify.Report)
	debounceDur time.Duration
	pendingFile map[string]time.Time
	pendingDir  map[string]time.Time
	stats       Stats
}

// New creates a Watcher for cfg.Root. fsnotify only observes the real
// filesystem, so fsProvider should be backed by the OS.
func New(fsProvider filesystem.FileSystemProvider, cfg httpsify.RewriteConfig, logger httpsify.Logger, opts ...Option) (*Watcher, error) {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	cfg.SkipUnchanged = true
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:          fsProvider,
		cfg:         cfg,
		logger:      logger,
		debounceDur: httpsify.DefaultWatchDebounce,
		pendingFile: make(map[string]time.Time),
		pendingDir:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Run performs the initial pass and then watches until ctx is done.
// It fails only when the root cannot be traversed or watched.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.fsw = fsw
	defer func() {
		if err := fsw.Close(); err != nil {
			w.logger.Error("closing watcher: %v", err)
		}
	}()

	// Watch before the initial pass so files created during it are not missed.
	if err := w.addTree(w.cfg.Root); err != nil {
		return fmt.Errorf("%w: %w", httpsify.ErrRootUnavailable, err)
	}

	report, err := w.pass(ctx, []string{w.cfg.Root}, nil)
	if err != nil {
		return err
	}
	if report.RootUnavailable() {
		return report.Err()
	}

	w.logger.Info("watching %s for changes (debounce %v)", w.cfg.Root, w.debounceDur)
	return w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) error {
	tick := w.debounceDur / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Verbose("watch stopped: %v", ctx.Err())
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// handleEvent queues created or modified paths for the next settled pass.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := w.fs.Stat(event.Name)
	if err != nil {
		// Gone again before we looked; nothing to rewrite.
		return
	}

	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastEventTime = now
	w.stats.LastEventPath = event.Name

	switch {
	case info.IsDir() && event.Has(fsnotify.Create):
		w.pendingDir[event.Name] = now
	case info.Mode().IsRegular() && w.cfg.MatchesExtension(filepath.Base(event.Name)):
		w.pendingFile[event.Name] = now
		w.stats.FilesQueued++
	}
}

// flush runs one pass over every path that has settled.
func (w *Watcher) flush(ctx context.Context) {
	dirs, files := w.settled(time.Now())
	if len(dirs) == 0 && len(files) == 0 {
		return
	}

	for _, d := range dirs {
		if err := w.addTree(d); err != nil {
			w.logger.Error("watch %s: %v", d, err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		}
	}
	if _, err := w.pass(ctx, dirs, files); err != nil {
		w.logger.Error("watch pass: %v", err)
	}
}

// settled removes and returns the paths quiet for at least the debounce window.
// Files under a settled directory are dropped since the directory pass covers them.
func (w *Watcher) settled(now time.Time) (dirs, files []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for p, at := range w.pendingDir {
		if now.Sub(at) >= w.debounceDur {
			dirs = append(dirs, p)
			delete(w.pendingDir, p)
		}
	}
	for p, at := range w.pendingFile {
		if now.Sub(at) < w.debounceDur {
			continue
		}
		delete(w.pendingFile, p)
		if !under(p, dirs) {
			files = append(files, p)
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)
	return dirs, files
}

func under(p string, dirs []string) bool {
	for _, d := range dirs {
		if strings.HasPrefix(p, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// pass rewrites dirs and files with a fresh TreeRewriter so every pass
// numbers its files from 1.
func (w *Watcher) pass(ctx context.Context, dirs, files []string) (httpsify.Report, error) {
	runID := uuid.NewString()
	logger := logging.WithRunID(w.logger, runID)
	rw, err := rewriter.New(w.fs, w.cfg, logger, rewriter.WithRunID(runID))
	if err != nil {
		return httpsify.Report{}, err
	}

	for _, d := range dirs {
		rw.ProcessDirectory(ctx, d)
	}
	var wg sync.WaitGroup
	for _, f := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rw.RewriteFile(ctx, f)
		}()
	}
	wg.Wait()
	report := rw.Wait()

	w.mu.Lock()
	w.stats.Passes++
	w.stats.Errors += len(report.Errors)
	w.mu.Unlock()

	logger.Info("%s", report.Summary())
	if w.onPass != nil {
		w.onPass(report)
	}
	return report, nil
}

// addTree registers dir and every directory below it with fsnotify.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			// Unreadable subtrees are reported by the rewrite pass.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		w.mu.Lock()
		w.stats.DirsAdded++
		w.mu.Unlock()
		w.logger.Verbose("watching %s", p)
		return nil
	})
}
