package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "gonb.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gonb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parallelism: 4\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, ".gonb", cfg.Suffix)
	assert.Equal(t, []string{"."}, cfg.SearchPath)
	assert.Equal(t, DefaultSkipKey, cfg.SkipKey)
}

func TestLoad_FullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gonb.yaml")
	content := `search_path:
  - notebooks
  - shared/notebooks
suffix: .nb
parallelism: 8
skip_key: grading
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"notebooks", "shared/notebooks"}, cfg.SearchPath)
	assert.Equal(t, ".nb", cfg.Suffix)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.Equal(t, "grading", cfg.SkipKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gonb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("suffix: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"suffix without dot", func(c *Config) { c.Suffix = "gonb" }, false},
		{"empty suffix", func(c *Config) { c.Suffix = "" }, false},
		{"zero parallelism", func(c *Config) { c.Parallelism = 0 }, false},
		{"empty skip key", func(c *Config) { c.SkipKey = "" }, false},
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
