package httpsify

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// RewriteConfig contains all parameters needed for a traversal pass.
type RewriteConfig struct {
	// Root is the directory the pass starts from
	Root string `yaml:"root"`

	// Extensions selects rewrite targets by file extension, including the leading dot
	Extensions []string `yaml:"extensions"`

	// From is the literal substring to replace
	From string `yaml:"from"`

	// To replaces every occurrence of From
	To string `yaml:"to"`

	// Encoding is the text encoding rewrite targets must decode as
	Encoding string `yaml:"encoding"`

	// MaxConcurrent bounds in-flight filesystem operations. Zero means unbounded.
	MaxConcurrent int `yaml:"max_concurrent"`

	// RatePerSecond paces file rewrites. Zero means unlimited.
	RatePerSecond float64 `yaml:"rate_per_second"`

	// SkipUnchanged skips the write when a file holds no occurrence of From
	SkipUnchanged bool `yaml:"skip_unchanged"`

	// DryRun reports what would change without writing anything
	DryRun bool `yaml:"dry_run"`

	// LogFormat selects console or json log output
	LogFormat string `yaml:"log_format"`

	// Verbose enables detailed logging
	Verbose bool `yaml:"-"`
}

// DefaultRewriteConfig returns the configuration the tool uses when nothing is overridden.
func DefaultRewriteConfig() RewriteConfig {
	return RewriteConfig{
		Root:       ".",
		Extensions: []string{DefaultExtension},
		From:       DefaultFrom,
		To:         DefaultTo,
		Encoding:   DefaultEncoding,
		LogFormat:  LogFormatConsole,
	}
}

// Validate checks if the RewriteConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *RewriteConfig) Validate() error {
	var errs []error

	if c.Root == "" {
		errs = append(errs, fmt.Errorf("root is required: %w", ErrInvalidConfig))
	}

	if c.From == "" {
		errs = append(errs, fmt.Errorf("replacement source string cannot be empty: %w", ErrInvalidConfig))
	}

	if len(c.Extensions) == 0 {
		errs = append(errs, fmt.Errorf("at least one extension is required: %w", ErrInvalidConfig))
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Errorf("extension %q must start with a dot: %w", ext, ErrInvalidConfig))
		}
	}

	switch strings.ToLower(c.Encoding) {
	case "utf-8", "utf8":
	default:
		errs = append(errs, fmt.Errorf("unsupported encoding %q (only utf-8): %w", c.Encoding, ErrInvalidConfig))
	}

	if c.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("max concurrent cannot be negative: %w", ErrInvalidConfig))
	}

	if c.RatePerSecond < 0 {
		errs = append(errs, fmt.Errorf("rate cannot be negative: %w", ErrInvalidConfig))
	}

	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q: %w", c.LogFormat, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// MatchesExtension reports whether name is a rewrite target under this configuration.
// Matching is exact and case-sensitive on the final extension.
func (c *RewriteConfig) MatchesExtension(name string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	for _, want := range c.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// FileStatus is the outcome of processing one rewrite target.
type FileStatus string

const (
	StatusRewritten    FileStatus = "rewritten"
	StatusUnchanged    FileStatus = "unchanged"
	StatusWouldRewrite FileStatus = "would-rewrite"
	StatusFailed       FileStatus = "failed"
	StatusCanceled     FileStatus = "canceled"
)

// FileResult describes one processed rewrite target.
type FileResult struct {
	Seq            int64
	Path           string
	Status         FileStatus
	Replacements   int
	ChecksumBefore string
	ChecksumAfter  string
	Err            error
}

// Report aggregates the outcome of one traversal pass.
type Report struct {
	RunID        string
	Root         string
	DryRun       bool
	StartedAt    time.Time
	Duration     time.Duration
	Directories  int
	Matched      int
	Rewritten    int
	Unchanged    int
	Ignored      int
	Canceled     int
	Replacements int
	Errors       []error
}

// Failed reports whether any entry failed during the pass.
func (r *Report) Failed() bool {
	return len(r.Errors) > 0
}

// RootUnavailable reports whether the only failure was listing the root itself.
func (r *Report) RootUnavailable() bool {
	if len(r.Errors) != 1 {
		return false
	}
	var rerr *RewriteError
	if !errors.As(r.Errors[0], &rerr) {
		return false
	}
	return rerr.Kind == ListError && filepath.Clean(rerr.Path) == filepath.Clean(r.Root)
}

// Err converts the report into the error a caller should surface.
func (r *Report) Err() error {
	switch {
	case !r.Failed():
		return nil
	case r.RootUnavailable():
		return fmt.Errorf("%w: %w", ErrRootUnavailable, r.Errors[0])
	default:
		return fmt.Errorf("%w (%d errors, first: %w)", ErrPartialFailure, len(r.Errors), r.Errors[0])
	}
}

// Summary is a one-line human readable account of the pass.
func (r *Report) Summary() string {
	var b strings.Builder
	if r.DryRun {
		b.WriteString("dry run: ")
	}
	fmt.Fprintf(&b, "processed %d directories: %d matched, %d rewritten, %d unchanged, %d replacements",
		r.Directories, r.Matched, r.Rewritten, r.Unchanged, r.Replacements)
	if r.Canceled > 0 {
		fmt.Fprintf(&b, ", %d canceled", r.Canceled)
	}
	fmt.Fprintf(&b, ", %d errors in %s", len(r.Errors), r.Duration.Round(time.Millisecond))
	return b.String()
}
