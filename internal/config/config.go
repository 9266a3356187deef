// Package config holds the explicit configuration shared by the pipeline stages.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Config is the full pipeline configuration. Default fills every field.
type Config struct {
	Paths      PathConfig       `yaml:"paths"`
	Logging    LoggingConfig    `yaml:"logging"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Train      TrainConfig      `yaml:"train"`
}

// PathConfig lists every file the stages exchange. Relative paths resolve
// against the working directory.
type PathConfig struct {
	Raw        string `yaml:"raw"`
	Processed  string `yaml:"processed"`
	ModelsDir  string `yaml:"models_dir"`
	Metrics    string `yaml:"metrics"`
	FiguresDir string `yaml:"figures_dir"`
	Scores     string `yaml:"scores"`
}

type LoggingConfig struct {
	File string `yaml:"file"`
}

type PreprocessConfig struct {
	ClipQuantile float64 `yaml:"clip_quantile"`
}

type TrainConfig struct {
	Components    int     `yaml:"components"`
	VizComponents int     `yaml:"viz_components"`
	Trees         int     `yaml:"trees"`
	MaxSamples    int     `yaml:"max_samples"`
	Contamination float64 `yaml:"contamination"`
	Seed          int64   `yaml:"seed"`
}

func Default() *Config {
	return &Config{
		Paths: PathConfig{
			Raw:        filepath.Join("data", "raw", "CC_GENERAL.csv"),
			Processed:  filepath.Join("data", "processed", "CC_PROCESSED.csv"),
			ModelsDir:  "models",
			Metrics:    filepath.Join("reports", "metrics.json"),
			FiguresDir: filepath.Join("reports", "figures"),
			Scores:     filepath.Join("reports", "scores.csv"),
		},
		Preprocess: PreprocessConfig{ClipQuantile: 0.99},
		Train: TrainConfig{
			Components:    10,
			VizComponents: 2,
			Trees:         200,
			MaxSamples:    256,
			Contamination: 0.05,
			Seed:          42,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty path
// yields the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks hyperparameter ranges and that every path is set.
func (c *Config) Validate() error {
	t := c.Train
	switch {
	case t.Components < 1:
		return fmt.Errorf("%w: train.components must be >= 1, got %d", ErrInvalid, t.Components)
	case t.VizComponents < 2:
		return fmt.Errorf("%w: train.viz_components must be >= 2, got %d", ErrInvalid, t.VizComponents)
	case t.Trees < 1:
		return fmt.Errorf("%w: train.trees must be >= 1, got %d", ErrInvalid, t.Trees)
	case t.MaxSamples < 2:
		return fmt.Errorf("%w: train.max_samples must be >= 2, got %d", ErrInvalid, t.MaxSamples)
	case t.Contamination <= 0 || t.Contamination > 0.5:
		return fmt.Errorf("%w: train.contamination must be in (0, 0.5], got %g", ErrInvalid, t.Contamination)
	}
	q := c.Preprocess.ClipQuantile
	if q <= 0 || q > 1 {
		return fmt.Errorf("%w: preprocess.clip_quantile must be in (0, 1], got %g", ErrInvalid, q)
	}
	p := c.Paths
	for _, f := range []struct{ key, val string }{
		{"raw", p.Raw},
		{"processed", p.Processed},
		{"models_dir", p.ModelsDir},
		{"metrics", p.Metrics},
		{"figures_dir", p.FiguresDir},
		{"scores", p.Scores},
	} {
		if f.val == "" {
			return fmt.Errorf("%w: paths.%s is required", ErrInvalid, f.key)
		}
	}
	return nil
}

// FigurePath returns the PNG path for name inside the figures directory.
func (c *Config) FigurePath(name string) string {
	return filepath.Join(c.Paths.FiguresDir, name+".png")
}
