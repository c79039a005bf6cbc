package httpsify

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	report, err := rw.Run(ctx, root)
//	if errors.Is(err, httpsify.ErrPartialFailure) {
//	    // some entries could not be rewritten, see report.Errors
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPartialFailure indicates a pass finished but one or more entries failed.
	ErrPartialFailure = errors.New("rewrite finished with errors")

	// ErrRootUnavailable indicates the root directory itself could not be listed.
	ErrRootUnavailable = errors.New("root directory unavailable")

	// ErrInvalidEncoding indicates a rewrite target is not valid text in the configured encoding.
	ErrInvalidEncoding = errors.New("content is not valid text in the configured encoding")

	// ErrList, ErrMetadata, ErrRead and ErrWrite match a RewriteError of the
	// corresponding kind through errors.Is.
	ErrList     = errors.New("list failed")
	ErrMetadata = errors.New("metadata failed")
	ErrRead     = errors.New("read failed")
	ErrWrite    = errors.New("write failed")
)

// ErrorKind classifies the filesystem operation a RewriteError came from.
type ErrorKind int

const (
	ListError ErrorKind = iota + 1
	MetadataError
	ReadError
	WriteError
)

func (k ErrorKind) String() string {
	switch k {
	case ListError:
		return "ListError"
	case MetadataError:
		return "MetadataError"
	case ReadError:
		return "ReadError"
	case WriteError:
		return "WriteError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case ListError:
		return ErrList
	case MetadataError:
		return ErrMetadata
	case ReadError:
		return ErrRead
	case WriteError:
		return ErrWrite
	default:
		return nil
	}
}

// RewriteError is a per-entry failure recorded during a traversal pass.
// It carries the offending path and the underlying cause.
type RewriteError struct {
	Kind ErrorKind
	Path string
	Err  error
}

// NewRewriteError builds a RewriteError of the given kind.
func NewRewriteError(kind ErrorKind, path string, err error) *RewriteError {
	return &RewriteError{Kind: kind, Path: path, Err: err}
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *RewriteError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this error's kind.
func (e *RewriteError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrRootUnavailable):
		return ExitRootUnavailable
	case errors.Is(err, ErrPartialFailure):
		return ExitPartialFailure
	}

	// Cobra does not export typed errors for argument and flag misuse.
	errStr := err.Error()
	if strings.HasPrefix(errStr, "unknown flag") ||
		strings.HasPrefix(errStr, "unknown shorthand flag") ||
		strings.HasPrefix(errStr, "unknown command") ||
		strings.HasPrefix(errStr, "accepts ") ||
		strings.HasPrefix(errStr, "required flag") ||
		strings.HasPrefix(errStr, "invalid argument") ||
		strings.HasPrefix(errStr, "flag needs an argument") {
		return ExitUsageError
	}

	return ExitGeneralError
}
