package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/docsmith/docsmith/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("DOCSMITH_MODEL", "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "google", cfg.Style)
	assert.Equal(t, 3, cfg.MaxIterations)
	assert.InDelta(t, 0.8, cfg.QualityThreshold, 1e-9)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, types.StyleGoogle, cfg.ParsedStyle())
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "docsmith.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
style: numpy
max_iterations: 5
quality_threshold: 0.9
concurrency: 4
model: claude-from-file
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, types.StyleNumpy, cfg.ParsedStyle())
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.InDelta(t, 0.9, cfg.QualityThreshold, 1e-9)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "claude-from-file", cfg.Model)
	assert.Equal(t, 60, cfg.TimeoutSeconds, "unset fields keep their defaults")
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsmith.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: claude-from-file\napi_key: file-key\n"), 0o644))

	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("DOCSMITH_MODEL", "claude-from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "claude-from-env", cfg.Model)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bad style", func(c *Config) { c.Style = "javadoc" }, false},
		{"zero iterations", func(c *Config) { c.MaxIterations = 0 }, false},
		{"threshold too high", func(c *Config) { c.QualityThreshold = 1.5 }, false},
		{"threshold zero", func(c *Config) { c.QualityThreshold = 0 }, false},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
