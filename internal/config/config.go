// Package config loads rescribe settings from .rescribe/config.yml with
// RESCRIBE_* environment variable overrides.
package config

import (
	"path/filepath"

	"github.com/mvp-joe/rescribe/internal/extract"
)

// DirName is the per-project directory holding config, dictionary and database.
const DirName = ".rescribe"

// Config represents the complete rescribe configuration.
type Config struct {
	Dictionary DictionaryConfig `yaml:"dictionary" mapstructure:"dictionary"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// DictionaryConfig locates the command dictionary.
type DictionaryConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`   // JSON object of command name to code
	Watch bool   `yaml:"watch" mapstructure:"watch"` // reload on change (mcp only)
}

// ExtractionConfig bounds body extraction.
type ExtractionConfig struct {
	MaxLines int `yaml:"max_lines" mapstructure:"max_lines"` // lines examined after a marker
}

// PathsConfig defines which files a scan visits.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for scanned files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// StorageConfig locates the marker inventory database.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// LogConfig sets the logger level: debug, info, warn, error or fatal.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Dictionary: DictionaryConfig{
			Path:  filepath.Join(DirName, "commands.json"),
			Watch: false,
		},
		Extraction: ExtractionConfig{
			MaxLines: extract.DefaultMaxLines,
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.go",
				"**/*.java",
				"**/*.kt",
				"**/*.ts",
				"**/*.tsx",
				"**/*.js",
				"**/*.jsx",
				"**/*.c",
				"**/*.cpp",
				"**/*.cc",
				"**/*.h",
				"**/*.hpp",
				"**/*.cs",
				"**/*.php",
				"**/*.rs",
				"**/*.swift",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
			},
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(DirName, "markers.db"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Resolve returns p joined onto rootDir unless p is already absolute.
func Resolve(rootDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rootDir, p)
}
