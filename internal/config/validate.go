package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gobwas/glob"
)

var (
	// ErrInvalidMaxLines indicates a non-positive extraction window
	ErrInvalidMaxLines = errors.New("invalid extraction max_lines")

	// ErrEmptyDictionaryPath indicates a missing dictionary location
	ErrEmptyDictionaryPath = errors.New("empty dictionary path")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidPattern indicates a path glob that does not compile
	ErrInvalidPattern = errors.New("invalid path pattern")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Dictionary.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: dictionary.path is required", ErrEmptyDictionaryPath))
	}

	if cfg.Extraction.MaxLines <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %d", ErrInvalidMaxLines, cfg.Extraction.MaxLines))
	}

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q (valid: debug, info, warn, error, fatal)", ErrInvalidLogLevel, cfg.Log.Level))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	// Empty include is allowed; a scan then visits nothing.
	for _, group := range [][]string{cfg.Include, cfg.Ignore} {
		for _, pattern := range group {
			if _, err := glob.Compile(pattern, '/'); err != nil {
				errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
			}
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// validationErrors lists every problem found, one per line, and still
// matches each wrapped sentinel with errors.Is.
type validationErrors []error

func (v validationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, err := range v {
		msgs[i] = err.Error()
	}
	return "validation failed:\n  - " + strings.Join(msgs, "\n  - ")
}

func (v validationErrors) Unwrap() []error {
	return v
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return validationErrors(errs)
}
