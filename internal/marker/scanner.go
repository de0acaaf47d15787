// Package marker finds "//..name(args)" command markers in source text.
package marker

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"
)

// DefaultPattern recognizes //..<identifier>(<args>). Group 1 is the command
// name, group 2 the raw argument text.
var DefaultPattern = regexp.MustCompile(`//\.\.([A-Za-z0-9_-]+)\(([A-Za-z0-9_,\s-]*)\)`)

// ErrPatternGroups indicates a pattern without the two capture groups the
// scanner reads the name and arguments from.
var ErrPatternGroups = errors.New("marker pattern must have two capture groups")

// Marker is one command invocation found in source text.
type Marker struct {
	Line int      `json:"line"` // 1-based
	Name string   `json:"name"`
	Args []string `json:"args"` // comma split, not trimmed
}

// TrimmedArgs returns Args with surrounding whitespace removed from each value.
func (m Marker) TrimmedArgs() []string {
	out := make([]string, len(m.Args))
	for i, a := range m.Args {
		out[i] = strings.TrimSpace(a)
	}
	return out
}

// Scanner applies a marker pattern to text.
type Scanner struct {
	pattern *regexp.Regexp
}

// NewScanner creates a scanner for pattern. A nil pattern selects DefaultPattern.
func NewScanner(pattern *regexp.Regexp) (*Scanner, error) {
	if pattern == nil {
		pattern = DefaultPattern
	}
	if pattern.NumSubexp() < 2 {
		return nil, fmt.Errorf("%w: %q has %d", ErrPatternGroups, pattern.String(), pattern.NumSubexp())
	}
	return &Scanner{pattern: pattern}, nil
}

// Scan yields every marker in text, in line order and then left to right.
// The sequence is lazy: stopping early skips the rest of the text.
func (s *Scanner) Scan(text string) iter.Seq[Marker] {
	return func(yield func(Marker) bool) {
		lineNo := 0
		for line := range strings.Lines(text) {
			lineNo++
			line = strings.TrimRight(line, "\r\n")

			for _, m := range s.pattern.FindAllStringSubmatch(line, -1) {
				if !yield(Marker{
					Line: lineNo,
					Name: m[1],
					Args: strings.Split(m[2], ","),
				}) {
					return
				}
			}
		}
	}
}

// First returns the first marker in text. Only the first marker is used per
// expansion; Scan exposes the rest for callers that want them.
func (s *Scanner) First(text string) (Marker, bool) {
	for m := range s.Scan(text) {
		return m, true
	}
	return Marker{}, false
}

// All collects every marker in text.
func (s *Scanner) All(text string) []Marker {
	var markers []Marker
	for m := range s.Scan(text) {
		markers = append(markers, m)
	}
	return markers
}
