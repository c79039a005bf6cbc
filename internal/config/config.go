package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/httpsify/pkg/httpsify"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ReplaceConfig is the replace block of httpsify.yaml.
type ReplaceConfig struct {
	From *string `yaml:"from,omitempty"`
	To   *string `yaml:"to,omitempty"`
}

// ProjectConfig mirrors httpsify.yaml. Pointer fields distinguish
// "not set" from an explicit zero value.
type ProjectConfig struct {
	Root          string        `yaml:"root,omitempty"`
	Extensions    []string      `yaml:"extensions,omitempty"`
	Replace       ReplaceConfig `yaml:"replace,omitempty"`
	Encoding      string        `yaml:"encoding,omitempty"`
	MaxConcurrent *int          `yaml:"max_concurrent,omitempty"`
	RatePerSecond *float64      `yaml:"rate_per_second,omitempty"`
	SkipUnchanged *bool         `yaml:"skip_unchanged,omitempty"`
	DryRun        *bool         `yaml:"dry_run,omitempty"`
	LogFormat     string        `yaml:"log_format,omitempty"`
}

const ConfigFileName = httpsify.ConfigFileName

// Load reads httpsify.yaml from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a project config from an explicit path.
func LoadFile(configPath string) (*ProjectConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", httpsify.ErrInvalidConfig, configPath, err)
	}
	return &cfg, nil
}

// ApplyTo overlays every field set in p onto cfg.
func (p *ProjectConfig) ApplyTo(cfg *httpsify.RewriteConfig) {
	if p.Root != "" {
		cfg.Root = p.Root
	}
	if len(p.Extensions) > 0 {
		cfg.Extensions = append([]string(nil), p.Extensions...)
	}
	if p.Replace.From != nil {
		cfg.From = *p.Replace.From
	}
	if p.Replace.To != nil {
		cfg.To = *p.Replace.To
	}
	if p.Encoding != "" {
		cfg.Encoding = p.Encoding
	}
	if p.MaxConcurrent != nil {
		cfg.MaxConcurrent = *p.MaxConcurrent
	}
	if p.RatePerSecond != nil {
		cfg.RatePerSecond = *p.RatePerSecond
	}
	if p.SkipUnchanged != nil {
		cfg.SkipUnchanged = *p.SkipUnchanged
	}
	if p.DryRun != nil {
		cfg.DryRun = *p.DryRun
	}
	if p.LogFormat != "" {
		cfg.LogFormat = p.LogFormat
	}
}

// FromRewriteConfig builds the fully populated project file for cfg.
func FromRewriteConfig(cfg httpsify.RewriteConfig) ProjectConfig {
	from, to := cfg.From, cfg.To
	maxConcurrent, rate := cfg.MaxConcurrent, cfg.RatePerSecond
	skip, dry := cfg.SkipUnchanged, cfg.DryRun
	return ProjectConfig{
		Root:          cfg.Root,
		Extensions:    append([]string(nil), cfg.Extensions...),
		Replace:       ReplaceConfig{From: &from, To: &to},
		Encoding:      cfg.Encoding,
		MaxConcurrent: &maxConcurrent,
		RatePerSecond: &rate,
		SkipUnchanged: &skip,
		DryRun:        &dry,
		LogFormat:     cfg.LogFormat,
	}
}

// Marshal renders cfg in httpsify.yaml form.
func Marshal(cfg httpsify.RewriteConfig) ([]byte, error) {
	return yaml.Marshal(FromRewriteConfig(cfg))
}
