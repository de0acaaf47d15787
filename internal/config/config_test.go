package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - LoadConfig() uses defaults when no config file exists
// - LoadConfig() loads from .rescribe/config.yml and .rescribe/config.yaml
// - LoadConfig() merges config file with defaults
// - Environment variables override config file values and defaults
// - An explicit config file is read, and a missing one is an error
// - LoadConfig() returns error for malformed YAML and invalid values
// - Validate() rejects each invalid field with its sentinel
// - Validate() returns multiple errors for multiple invalid fields
// - Resolve() joins relative paths onto the root

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	configDir := filepath.Join(dir, DirName)
	require.NoError(t, os.MkdirAll(configDir, 0755))
	path := filepath.Join(configDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)

	assert.Equal(t, filepath.Join(".rescribe", "commands.json"), cfg.Dictionary.Path)
	assert.False(t, cfg.Dictionary.Watch)
	assert.Equal(t, 500, cfg.Extraction.MaxLines)
	assert.Equal(t, filepath.Join(".rescribe", "markers.db"), cfg.Storage.DBPath)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.Contains(t, cfg.Paths.Include, "**/*.java")
	assert.Contains(t, cfg.Paths.Ignore, ".git/**")

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
dictionary:
  path: dict/commands.jsonc
  watch: true

extraction:
  max_lines: 40

paths:
  include:
    - "**/*.java"
  ignore:
    - "generated/**"

storage:
  db_path: /tmp/markers.db

log:
  level: debug
`)

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.Equal(t, "dict/commands.jsonc", cfg.Dictionary.Path)
	assert.True(t, cfg.Dictionary.Watch)
	assert.Equal(t, 40, cfg.Extraction.MaxLines)
	assert.Equal(t, []string{"**/*.java"}, cfg.Paths.Include)
	assert.Equal(t, []string{"generated/**"}, cfg.Paths.Ignore)
	assert.Equal(t, "/tmp/markers.db", cfg.Storage.DBPath)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_LoadsFromConfigYaml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", `
extraction:
  max_lines: 12
`)

	cfg, err := LoadConfigFromDir(tempDir)

	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Extraction.MaxLines)
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
dictionary:
  path: cmds.json
`)

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.Equal(t, "cmds.json", cfg.Dictionary.Path)

	defaults := Default()
	assert.Equal(t, defaults.Extraction.MaxLines, cfg.Extraction.MaxLines)
	assert.Equal(t, defaults.Paths.Include, cfg.Paths.Include)
	assert.Equal(t, defaults.Storage.DBPath, cfg.Storage.DBPath)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
dictionary:
  path: file.json
extraction:
  max_lines: 10
log:
  level: warn
`)

	t.Setenv("RESCRIBE_DICTIONARY_PATH", "env.json")
	t.Setenv("RESCRIBE_EXTRACTION_MAX_LINES", "99")

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.Equal(t, "env.json", cfg.Dictionary.Path)
	assert.Equal(t, 99, cfg.Extraction.MaxLines)

	// Not overridden, should come from config file
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempDir := t.TempDir()

	t.Setenv("RESCRIBE_DICTIONARY_WATCH", "true")
	t.Setenv("RESCRIBE_STORAGE_DB_PATH", "inventory.db")
	t.Setenv("RESCRIBE_LOG_LEVEL", "error")

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.True(t, cfg.Dictionary.Watch)
	assert.Equal(t, "inventory.db", cfg.Storage.DBPath)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadConfig_ExplicitConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("extraction:\n  max_lines: 7\n"), 0644))

	cfg, err := NewLoader(t.TempDir(), WithConfigFile(path)).Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Extraction.MaxLines)

	_, err = NewLoader(tempDir, WithConfigFile(filepath.Join(tempDir, "missing.yml"))).Load()
	assert.Error(t, err)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
extraction:
  max_lines: [unclosed
`)

	_, err := NewLoader(tempDir).Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
extraction:
  max_lines: 0
`)

	_, err := NewLoader(tempDir).Load()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMaxLines)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate_RejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero max lines", func(c *Config) { c.Extraction.MaxLines = 0 }, ErrInvalidMaxLines},
		{"negative max lines", func(c *Config) { c.Extraction.MaxLines = -3 }, ErrInvalidMaxLines},
		{"empty dictionary path", func(c *Config) { c.Dictionary.Path = "  " }, ErrEmptyDictionaryPath},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, ErrInvalidLogLevel},
		{"bad include glob", func(c *Config) { c.Paths.Include = []string{"src/[abc"} }, ErrInvalidPattern},
		{"bad ignore glob", func(c *Config) { c.Paths.Ignore = []string{"{a,b"} }, ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_AcceptsEmptyPaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.Include = nil
	cfg.Paths.Ignore = nil

	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	cfg := Default()
	cfg.Extraction.MaxLines = 0
	cfg.Dictionary.Path = ""
	cfg.Log.Level = "nope"

	err := Validate(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.ErrorIs(t, err, ErrInvalidMaxLines)
	assert.ErrorIs(t, err, ErrEmptyDictionaryPath)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("/work", ".rescribe", "commands.json"), Resolve("/work", filepath.Join(".rescribe", "commands.json")))
	assert.Equal(t, "/abs/markers.db", Resolve("/work", "/abs/markers.db"))
	assert.Equal(t, "", Resolve("/work", ""))
}
