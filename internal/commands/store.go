// Package commands holds the read-only dictionary of command templates.
//
// A dictionary is a JSON object mapping command names to template code:
//
//	{
//	  "makeClass": "class {name} {}",
//	  // comments and trailing commas are accepted
//	  "getter": "public {type} get{Name}() { return {name}; }",
//	}
//
// Names are unique; a repeated key rejects the whole dictionary. Entries keep
// the order they appear in the source.
package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/tidwall/jsonc"
)

// Definition is one command and the template it expands to.
type Definition struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Store is an immutable, ordered command dictionary. It is safe for
// concurrent use.
type Store struct {
	names []string
	defs  map[string]Definition
}

// Load parses a dictionary from r.
func Load(r io.Reader) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	s, err := parse(data)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return s, nil
}

// LoadFile parses the dictionary at path.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	s, err := parse(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return s, nil
}

// parse decodes a JSON object token by token so key order is kept and
// duplicate keys can be detected.
func parse(data []byte) (*Store, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: got %v", ErrNotObject, tok)
	}

	s := &Store{defs: make(map[string]Definition)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		name := keyTok.(string) // object keys are always strings

		valTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read value for %q: %w", name, err)
		}
		code, ok := valTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: value for %q is %T", ErrNotObject, name, valTok)
		}

		if _, dup := s.defs[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCommand, name)
		}
		s.names = append(s.names, name)
		s.defs[name] = Definition{Name: name, Code: code}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read closing brace: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrNotObject)
	}

	return s, nil
}

// Lookup returns the definition named exactly name.
func (s *Store) Lookup(name string) (Definition, bool) {
	d, ok := s.defs[name]
	return d, ok
}

// Entries yields (name, definition) pairs in source order. Each range over
// the returned sequence starts from the beginning.
func (s *Store) Entries() iter.Seq2[string, Definition] {
	return func(yield func(string, Definition) bool) {
		for _, n := range s.names {
			if !yield(n, s.defs[n]) {
				return
			}
		}
	}
}

// Definitions returns all definitions in source order.
func (s *Store) Definitions() []Definition {
	out := make([]Definition, 0, len(s.names))
	for _, d := range s.Entries() {
		out = append(out, d)
	}
	return out
}

// Names returns command names in source order.
func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of commands.
func (s *Store) Len() int {
	return len(s.names)
}
