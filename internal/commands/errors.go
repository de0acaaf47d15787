package commands

import (
	"errors"
	"fmt"
)

var (
	// ErrDictionaryLoad indicates the dictionary could not be read or parsed.
	// Every *LoadError matches it with errors.Is.
	ErrDictionaryLoad = errors.New("dictionary load failed")

	// ErrNotObject indicates the dictionary is not a JSON object of strings.
	ErrNotObject = errors.New("dictionary must be a JSON object of string values")

	// ErrDuplicateCommand indicates the same command name appears twice.
	ErrDuplicateCommand = errors.New("duplicate command name")

	errNoStore = errors.New("static source has no store")
)

// LoadError wraps a dictionary load failure with the source it came from.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load command dictionary: %v", e.Err)
	}
	return fmt.Sprintf("load command dictionary %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports ErrDictionaryLoad for every LoadError.
func (e *LoadError) Is(target error) bool {
	return target == ErrDictionaryLoad
}
