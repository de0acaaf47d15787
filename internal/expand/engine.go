// Package expand ties marker scanning, dictionary lookup and brace extraction
// together into the operations the CLI and MCP tools call.
package expand

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/mvp-joe/rescribe/internal/commands"
	"github.com/mvp-joe/rescribe/internal/extract"
	"github.com/mvp-joe/rescribe/internal/marker"
)

// ErrNoMarker indicates the text contains no command marker.
var ErrNoMarker = errors.New("no command marker found")

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Pattern  *regexp.Regexp // defaults to marker.DefaultPattern
	MaxLines int            // defaults to extract.DefaultMaxLines
	Logger   *log.Logger    // defaults to a discarding logger
}

// Engine runs expansions with a fixed pattern and line budget. It holds no
// dictionary state and is safe for concurrent use.
type Engine struct {
	scanner  *marker.Scanner
	maxLines int
	logger   *log.Logger
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	scanner, err := marker.NewScanner(opts.Pattern)
	if err != nil {
		return nil, err
	}
	if opts.MaxLines <= 0 {
		opts.MaxLines = extract.DefaultMaxLines
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Engine{
		scanner:  scanner,
		maxLines: opts.MaxLines,
		logger:   opts.Logger,
	}, nil
}

// Parameters returns the first marker in text. The dictionary is loaded first
// and a load failure is returned as is; its contents do not filter markers.
func (e *Engine) Parameters(src commands.Source, text string) (marker.Marker, error) {
	if _, err := src.Load(); err != nil {
		return marker.Marker{}, err
	}

	m, ok := e.scanner.First(text)
	if !ok {
		return marker.Marker{}, ErrNoMarker
	}
	return m, nil
}

// Contents returns the body of the first balanced {...} region starting on
// the first marker's line. Dictionary and marker failures are returned as
// errors; an extraction failure yields "" and a nil error.
func (e *Engine) Contents(src commands.Source, text string) (string, error) {
	m, err := e.Parameters(src, text)
	if err != nil {
		return "", err
	}

	body, err := extract.Extract(extract.SplitLines(text), m.Line-1, e.maxLines)
	if err != nil {
		e.logger.Warn("command body extraction failed", "command", m.Name, "line", m.Line, "err", err)
		return "", nil
	}
	return body.Text, nil
}

// Result is the typed outcome of Expand. Exactly one of Body and Err is set.
type Result struct {
	Marker     marker.Marker        `json:"marker"`
	Definition *commands.Definition `json:"definition,omitempty"` // nil when the command is not in the dictionary
	Body       *extract.Body        `json:"body,omitempty"`
	Err        *extract.SyntaxError `json:"syntax_error,omitempty"`
}

// OK reports whether extraction succeeded.
func (r *Result) OK() bool {
	return r.Body != nil
}

// FileLine converts a window-relative position to a 1-based file line.
func (r *Result) FileLine(p extract.Position) int {
	return r.Marker.Line + p.Line
}

// Expand runs the full pipeline and reports extraction failures as data in
// Result.Err instead of collapsing them to an empty string.
func (e *Engine) Expand(src commands.Source, text string) (*Result, error) {
	store, err := src.Load()
	if err != nil {
		return nil, err
	}

	m, ok := e.scanner.First(text)
	if !ok {
		return nil, ErrNoMarker
	}

	res := &Result{Marker: m}
	if def, found := store.Lookup(m.Name); found {
		res.Definition = &def
	}

	body, err := extract.Extract(extract.SplitLines(text), m.Line-1, e.maxLines)
	var synErr *extract.SyntaxError
	switch {
	case err == nil:
		res.Body = body
	case errors.As(err, &synErr):
		res.Err = synErr
	default:
		return nil, fmt.Errorf("extract %s at line %d: %w", m.Name, m.Line, err)
	}

	e.logger.Debug("expanded command", "command", m.Name, "line", m.Line, "ok", res.OK(), "known", res.Definition != nil)
	return res, nil
}

// CommandParameters is Engine.Parameters with the default line budget and
// the given pattern (nil for marker.DefaultPattern).
func CommandParameters(src commands.Source, text string, pattern *regexp.Regexp) (marker.Marker, error) {
	e, err := New(Options{Pattern: pattern})
	if err != nil {
		return marker.Marker{}, err
	}
	return e.Parameters(src, text)
}

// CommandContents is Engine.Contents with the default line budget and the
// given pattern (nil for marker.DefaultPattern).
func CommandContents(src commands.Source, text string, pattern *regexp.Regexp) (string, error) {
	e, err := New(Options{Pattern: pattern})
	if err != nil {
		return "", err
	}
	return e.Contents(src, text)
}
