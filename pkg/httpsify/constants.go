package httpsify

import (
	"io/fs"
	"time"
)

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Every reachable entry processed without error
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitRootUnavailable = 11 // Root directory could not be listed
	ExitPartialFailure  = 12 // One or more entries failed
)

const (
	// DefaultExtension is the file extension selected for rewriting.
	DefaultExtension = ".html"

	// DefaultFrom is the literal substring replaced in every rewrite target.
	DefaultFrom = "http://"

	// DefaultTo replaces every occurrence of DefaultFrom.
	DefaultTo = "https://"

	// DefaultEncoding is the only text encoding rewrite targets are decoded with.
	DefaultEncoding = "utf-8"

	// DefaultFileMode is used when a rewritten file's existing mode cannot be determined.
	DefaultFileMode fs.FileMode = 0644

	// DefaultWatchDebounce is how long watch mode waits for a file to settle
	// before rewriting it.
	DefaultWatchDebounce = 250 * time.Millisecond

	// ConfigFileName is the project configuration file looked up in the working directory.
	ConfigFileName = "httpsify.yaml"

	// EnvPrefix prefixes every environment variable that overrides configuration.
	EnvPrefix = "HTTPSIFY_"
)

// Log formats accepted by RewriteConfig.LogFormat.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)
