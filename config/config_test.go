package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
summarizer:
  epochs: 7
  batch_size: 4
categorizer:
  strategy: ovo
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Summarizer.Epochs)
	assert.Equal(t, 4, cfg.Summarizer.BatchSize)
	assert.Equal(t, "ovo", cfg.Categorizer.Strategy)
	// untouched fields keep their defaults
	assert.Equal(t, Defaults().Summarizer.MaxLength, cfg.Summarizer.MaxLength)
}

func TestLoad_RejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "no_such_option: true\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestLoad_RejectsWrongType(t *testing.T) {
	path := writeConfig(t, "summarizer:\n  epochs: lots\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NEWSML_DATA_DIR", "/tmp/elsewhere")
	t.Setenv("NEWSML_DB", "/tmp/elsewhere/runs.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere", cfg.DataDir)
	assert.Equal(t, "/tmp/elsewhere/runs.db", cfg.DBPath)
}

func TestValidate_Ranges(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.MaxSkipRate = 1.5 },
		func(c *Config) { c.Summarizer.Epochs = 0 },
		func(c *Config) { c.Summarizer.LearningRate = 2 },
		func(c *Config) { c.Summarizer.LRDecay = 1 },
		func(c *Config) { c.Summarizer.MaxLength = 1 },
		func(c *Config) { c.Categorizer.Strategy = "ensemble" },
		func(c *Config) { c.Categorizer.C = -1 },
		func(c *Config) { c.Categorizer.HoldoutFraction = 1 },
		func(c *Config) { c.Fetch.PageSize = 0 },
	}
	for i, mutate := range cases {
		cfg := Defaults()
		mutate(&cfg)
		assert.Errorf(t, cfg.Validate(), "case %d should fail validation", i)
	}
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}
