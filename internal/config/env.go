package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/vvka-141/httpsify/pkg/httpsify"
)

// Environment variable names, all prefixed with httpsify.EnvPrefix.
const (
	EnvRoot          = httpsify.EnvPrefix + "ROOT"
	EnvExtensions    = httpsify.EnvPrefix + "EXTENSIONS"
	EnvFrom          = httpsify.EnvPrefix + "FROM"
	EnvTo            = httpsify.EnvPrefix + "TO"
	EnvEncoding      = httpsify.EnvPrefix + "ENCODING"
	EnvMaxConcurrent = httpsify.EnvPrefix + "MAX_CONCURRENT"
	EnvRate          = httpsify.EnvPrefix + "RATE"
	EnvSkipUnchanged = httpsify.EnvPrefix + "SKIP_UNCHANGED"
	EnvDryRun        = httpsify.EnvPrefix + "DRY_RUN"
	EnvLogFormat     = httpsify.EnvPrefix + "LOG_FORMAT"
)

// DefaultEnvFile is read when present and no explicit env files are given.
const DefaultEnvFile = ".env"

// LookupFunc resolves an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ReadEnvFiles parses dotenv files. Later files win over earlier ones.
// With no paths, DefaultEnvFile is read if it exists.
func ReadEnvFiles(paths []string) (map[string]string, error) {
	if len(paths) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return map[string]string{}, nil
		}
		paths = []string{DefaultEnvFile}
	}

	merged := make(map[string]string)
	for _, p := range paths {
		values, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("%w: env file %s: %v", httpsify.ErrInvalidConfig, p, err)
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	return merged, nil
}

// Layered returns a lookup that prefers the process environment and falls back to files.
func Layered(process LookupFunc, files map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := process(key); ok {
			return v, true
		}
		v, ok := files[key]
		return v, ok
	}
}

// ApplyEnv overlays HTTPSIFY_* variables onto cfg.
func ApplyEnv(cfg *httpsify.RewriteConfig, lookup LookupFunc) error {
	if v, ok := lookup(EnvRoot); ok && v != "" {
		cfg.Root = v
	}
	if v, ok := lookup(EnvExtensions); ok && v != "" {
		cfg.Extensions = SplitList(v)
	}
	if v, ok := lookup(EnvFrom); ok {
		cfg.From = v
	}
	if v, ok := lookup(EnvTo); ok {
		cfg.To = v
	}
	if v, ok := lookup(EnvEncoding); ok && v != "" {
		cfg.Encoding = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = v
	}
	if v, ok := lookup(EnvMaxConcurrent); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", httpsify.ErrInvalidConfig, EnvMaxConcurrent, v)
		}
		cfg.MaxConcurrent = n
	}
	if v, ok := lookup(EnvRate); ok && v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", httpsify.ErrInvalidConfig, EnvRate, v)
		}
		cfg.RatePerSecond = r
	}
	if v, ok := lookup(EnvSkipUnchanged); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", httpsify.ErrInvalidConfig, EnvSkipUnchanged, v)
		}
		cfg.SkipUnchanged = b
	}
	if v, ok := lookup(EnvDryRun); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", httpsify.ErrInvalidConfig, EnvDryRun, v)
		}
		cfg.DryRun = b
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
