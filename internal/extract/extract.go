// Package extract pulls the first balanced {...} region out of a window of
// source lines.
//
// Braces are counted as a plain push/pop pair. Braces that appear inside
// string or comment literals of the scanned language are counted like any
// other brace, so templates containing them will mis-balance.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLines bounds how many lines a single extraction examines.
const DefaultMaxLines = 500

const (
	openDelim  = '{'
	closeDelim = '}'
)

// ErrInvalidWindow indicates a negative start line or a non-positive line budget.
var ErrInvalidWindow = errors.New("invalid scan window")

// Position is a zero-indexed (line, column) pair. Line is relative to the
// first line of the scanned window; Column counts characters, not bytes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Body is a successfully extracted region. Text excludes the outer delimiters;
// Start and End locate them.
type Body struct {
	Text  string   `json:"text"`
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// ErrorKind classifies a SyntaxError.
type ErrorKind int

const (
	// UnmatchedClose is a '}' with no opener to pair with.
	UnmatchedClose ErrorKind = iota
	// Unterminated means the window ended before the group closed.
	Unterminated
	// NoOpener means the window contained no '{' at all.
	NoOpener
)

func (k ErrorKind) String() string {
	switch k {
	case UnmatchedClose:
		return "unmatched_close"
	case Unterminated:
		return "unterminated"
	case NoOpener:
		return "no_opener"
	default:
		return "unknown"
	}
}

// MarshalText lets the kind serialize as its name.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ErrorKind) UnmarshalText(text []byte) error {
	for _, kind := range []ErrorKind{UnmatchedClose, Unterminated, NoOpener} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown syntax error kind %q", text)
}

// SyntaxError reports where brace matching failed. It is returned as an error
// value; use errors.As to inspect the positions.
type SyntaxError struct {
	Kind  ErrorKind `json:"kind"`
	Start Position  `json:"start"`
	End   Position  `json:"end"`
}

func (e *SyntaxError) Error() string {
	switch e.Kind {
	case UnmatchedClose:
		return fmt.Sprintf("unmatched '}' at %s", e.Start)
	case Unterminated:
		return fmt.Sprintf("'{' at %s is never closed (scanned to %s)", e.Start, e.End)
	default:
		return fmt.Sprintf("no '{' found before %s", e.End)
	}
}

// Extract scans lines[startLine:] for at most maxLines lines and returns the
// content of the first balanced {...} group. Anything before the first '{',
// including a '}', is skipped. On failure the error is a *SyntaxError, or
// wraps ErrInvalidWindow for bad arguments.
//
// A '}' left over after the group closes is reported as UnmatchedClose only
// when it is on the closing line; later lines are not examined.
//
// Line boundaries inside the group contribute a '\n' to Body.Text.
func Extract(lines []string, startLine, maxLines int) (*Body, error) {
	if startLine < 0 || maxLines <= 0 {
		return nil, fmt.Errorf("%w: start=%d max=%d", ErrInvalidWindow, startLine, maxLines)
	}

	var window []string
	if startLine < len(lines) {
		window = lines[startLine:min(len(lines), startLine+maxLines)]
	}

	var (
		text       strings.Builder
		depth      int
		collecting bool
		start      Position
		last       Position
	)

	for li, line := range window {
		if collecting && li > 0 {
			text.WriteByte('\n')
		}

		col := 0
		for bi, r := range line {
			pos := Position{Line: li, Column: col}
			last = pos
			col++

			if !collecting {
				if r == openDelim {
					collecting = true
					depth = 1
					start = pos
				}
				continue
			}

			switch r {
			case openDelim:
				depth++
			case closeDelim:
				depth--
				if depth == 0 {
					if stray, ok := strayClose(line[bi+utf8.RuneLen(r):], li, col); ok {
						return nil, &SyntaxError{Kind: UnmatchedClose, Start: stray, End: stray}
					}
					return &Body{Text: text.String(), Start: start, End: pos}, nil
				}
			}
			text.WriteRune(r)
		}

		if line == "" {
			last = Position{Line: li}
		}
	}

	if collecting {
		return nil, &SyntaxError{Kind: Unterminated, Start: start, End: last}
	}
	return nil, &SyntaxError{Kind: NoOpener, Start: last, End: last}
}

// strayClose looks for a '}' without an opener in the remainder of the line
// that closed the group. col is the column of the first rune in rest.
func strayClose(rest string, line, col int) (Position, bool) {
	depth := 0
	for _, r := range rest {
		switch r {
		case openDelim:
			depth++
		case closeDelim:
			if depth == 0 {
				return Position{Line: line, Column: col}, true
			}
			depth--
		}
		col++
	}
	return Position{}, false
}

// SplitLines splits text into lines without terminators. A trailing '\r' is
// dropped from each line and invalid UTF-8 bytes are discarded.
func SplitLines(text string) []string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
