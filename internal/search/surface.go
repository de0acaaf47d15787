// Package search exposes the command dictionary for browsing: ordered
// listing, exact lookup, and keyword search.
package search

import (
	"github.com/mvp-joe/rescribe/internal/commands"
)

// Surface is what a browse/search UI consumes.
type Surface interface {
	// ListCommands returns every command in dictionary order.
	ListCommands() ([]commands.Definition, error)
	// FindExact returns the command named exactly name.
	FindExact(name string) (commands.Definition, bool, error)
}

// Catalog implements Surface over a dictionary source. Each call reads the
// source's current snapshot, so a commands.Live source is reflected as soon
// as it reloads.
type Catalog struct {
	src commands.Source
}

// NewCatalog creates a Catalog.
func NewCatalog(src commands.Source) *Catalog {
	return &Catalog{src: src}
}

func (c *Catalog) ListCommands() ([]commands.Definition, error) {
	s, err := c.src.Load()
	if err != nil {
		return nil, err
	}
	return s.Definitions(), nil
}

func (c *Catalog) FindExact(name string) (commands.Definition, bool, error) {
	s, err := c.src.Load()
	if err != nil {
		return commands.Definition{}, false, err
	}
	def, ok := s.Lookup(name)
	return def, ok, nil
}

// Format renders a definition for display. Argument values are not
// interpolated into the code.
func Format(def commands.Definition) string {
	return "Command:\n//.." + def.Name + "\nArguments:\n\nCode:\n" + def.Code
}
