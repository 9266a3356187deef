package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join("data", "raw", "CC_GENERAL.csv"), cfg.Paths.Raw)
	assert.Equal(t, filepath.Join("data", "processed", "CC_PROCESSED.csv"), cfg.Paths.Processed)
	assert.Equal(t, 10, cfg.Train.Components)
	assert.Equal(t, 200, cfg.Train.Trees)
	assert.Equal(t, 0.05, cfg.Train.Contamination)
	assert.Equal(t, "models", cfg.Paths.ModelsDir)
	assert.Equal(t, filepath.Join("reports", "figures", "pca_variance.png"), cfg.FigurePath("pca_variance"))
}

func TestLoad(t *testing.T) {
	t.Run("empty path gives defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("overlay keeps unset fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		body := "paths:\n  raw: in.csv\ntrain:\n  trees: 50\n  contamination: 0.1\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "in.csv", cfg.Paths.Raw)
		assert.Equal(t, 50, cfg.Train.Trees)
		assert.Equal(t, 0.1, cfg.Train.Contamination)
		assert.Equal(t, 10, cfg.Train.Components)
		assert.Equal(t, Default().Paths.Processed, cfg.Paths.Processed)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte("train:\n  contamination: 0.9\n"), 0o644))
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("blanked output path rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte("paths:\n  scores: \"\"\n"), 0o644))
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalid)
		assert.ErrorContains(t, err, "paths.scores")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero components", func(c *Config) { c.Train.Components = 0 }},
		{"one viz component", func(c *Config) { c.Train.VizComponents = 1 }},
		{"no trees", func(c *Config) { c.Train.Trees = 0 }},
		{"tiny sample", func(c *Config) { c.Train.MaxSamples = 1 }},
		{"zero contamination", func(c *Config) { c.Train.Contamination = 0 }},
		{"clip quantile above one", func(c *Config) { c.Preprocess.ClipQuantile = 1.5 }},
		{"no raw path", func(c *Config) { c.Paths.Raw = "" }},
		{"no processed path", func(c *Config) { c.Paths.Processed = "" }},
		{"no models dir", func(c *Config) { c.Paths.ModelsDir = "" }},
		{"no metrics path", func(c *Config) { c.Paths.Metrics = "" }},
		{"no figures dir", func(c *Config) { c.Paths.FiguresDir = "" }},
		{"no scores path", func(c *Config) { c.Paths.Scores = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
