package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/vvka-141/httpsify/pkg/httpsify"
)

// Sources describes where a RewriteConfig is assembled from.
type Sources struct {
	// ConfigFile is an explicit project file. Missing explicit files are an error.
	ConfigFile string

	// SearchDir is looked up for httpsify.yaml when ConfigFile is empty.
	SearchDir string

	// EnvFiles are dotenv files layered under the process environment.
	EnvFiles []string

	// Lookup reads the process environment. Defaults to os.LookupEnv.
	Lookup LookupFunc

	// Flags applies command line overrides last.
	Flags func(*httpsify.RewriteConfig)
}

// Resolve builds the effective configuration:
// flags > environment > project file > defaults.
func Resolve(src Sources) (httpsify.RewriteConfig, error) {
	cfg := httpsify.DefaultRewriteConfig()

	project, err := loadProject(src)
	if err != nil {
		return cfg, err
	}
	if project != nil {
		project.ApplyTo(&cfg)
	}

	files, err := ReadEnvFiles(src.EnvFiles)
	if err != nil {
		return cfg, err
	}
	lookup := src.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := ApplyEnv(&cfg, Layered(lookup, files)); err != nil {
		return cfg, err
	}

	if src.Flags != nil {
		src.Flags(&cfg)
	}
	return cfg, cfg.Validate()
}

func loadProject(src Sources) (*ProjectConfig, error) {
	if src.ConfigFile != "" {
		project, err := LoadFile(src.ConfigFile)
		if errors.Is(err, ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: %s: %w", httpsify.ErrInvalidConfig, src.ConfigFile, err)
		}
		return project, err
	}
	dir := src.SearchDir
	if dir == "" {
		dir = "."
	}
	project, err := Load(dir)
	if errors.Is(err, ErrConfigNotFound) {
		return nil, nil
	}
	return project, err
}
