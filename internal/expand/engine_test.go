package expand

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/rescribe/internal/commands"
	"github.com/mvp-joe/rescribe/internal/extract"
	"github.com/mvp-joe/rescribe/internal/marker"
)

// Test Plan for expand:
// - CommandParameters returns the first marker, untrimmed args
// - dictionary load failures surface before the scan
// - missing markers surface as ErrNoMarker
// - the dictionary does not filter markers
// - CommandContents extracts the body following the marker
// - CommandContents degrades to "" (nil error) on extraction failure and logs it
// - Expand reports extraction failures as a SyntaxError value
// - Expand resolves the dictionary definition when present
// - ScanFiles records all markers per file and skips unreadable files

var dict = commands.BytesSource(`{"makeClass": "class {name} {}"}`)

func TestCommandParameters_FirstMarker(t *testing.T) {
	text := "package x\n\n\n\n//..makeClass(Foo, public)\n//..other(a)\n"

	m, err := CommandParameters(dict, text, nil)
	require.NoError(t, err)
	assert.Equal(t, marker.Marker{Line: 5, Name: "makeClass", Args: []string{"Foo", " public"}}, m)
}

func TestCommandParameters_DictionaryFailureSurfaces(t *testing.T) {
	_, err := CommandParameters(commands.BytesSource(`not json`), "//..makeClass(Foo)", nil)
	assert.ErrorIs(t, err, commands.ErrDictionaryLoad)

	_, err = CommandParameters(commands.FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}, "//..x()", nil)
	assert.ErrorIs(t, err, commands.ErrDictionaryLoad)
}

func TestCommandParameters_NoMarker(t *testing.T) {
	_, err := CommandParameters(dict, "func main() {}", nil)
	assert.ErrorIs(t, err, ErrNoMarker)
}

func TestCommandParameters_UnknownCommandStillReturned(t *testing.T) {
	m, err := CommandParameters(dict, "//..notInDictionary(x)", nil)
	require.NoError(t, err)
	assert.Equal(t, "notInDictionary", m.Name)
}

func TestCommandParameters_CustomPattern(t *testing.T) {
	m, err := CommandParameters(dict, "#!gen[a]", regexp.MustCompile(`#!(\w+)\[([^\]]*)\]`))
	require.NoError(t, err)
	assert.Equal(t, "gen", m.Name)

	_, err = CommandParameters(dict, "x", regexp.MustCompile(`nogroups`))
	assert.ErrorIs(t, err, marker.ErrPatternGroups)
}

func TestCommandContents_MarkerThenBody(t *testing.T) {
	got, err := CommandContents(dict, "//..makeClass(Foo)\n{body}\n", nil)
	require.NoError(t, err)
	assert.Equal(t, "body", got)
}

func TestCommandContents_MultiLineBody(t *testing.T) {
	text := "import x\n//..makeClass(Foo)\nclass Foo {\n  a()\n  b() { }\n}\ntrailing }\n"

	got, err := CommandContents(dict, text, nil)
	require.NoError(t, err)
	assert.Equal(t, "\n  a()\n  b() { }\n", got)
}

func TestCommandContents_ExtractionFailureDegradesToEmpty(t *testing.T) {
	var logs bytes.Buffer
	e, err := New(Options{Logger: log.New(&logs)})
	require.NoError(t, err)

	got, err := e.Contents(dict, "//..makeClass(Foo)\n{never closed\n")
	assert.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, logs.String(), "extraction failed")
}

func TestCommandContents_MarkerErrorsStillSurface(t *testing.T) {
	_, err := CommandContents(dict, "no markers", nil)
	assert.ErrorIs(t, err, ErrNoMarker)

	_, err = CommandContents(commands.BytesSource(`[]`), "//..a()\n{b}", nil)
	assert.ErrorIs(t, err, commands.ErrNotObject)
}

func TestEngine_MaxLinesBoundsTheWindow(t *testing.T) {
	e, err := New(Options{MaxLines: 2})
	require.NoError(t, err)

	got, err := e.Contents(dict, "//..makeClass(Foo)\n{\n}\n")
	require.NoError(t, err)
	assert.Empty(t, got, "closing brace is on the third line of the window")

	e, err = New(Options{MaxLines: 3})
	require.NoError(t, err)
	got, err = e.Contents(dict, "//..makeClass(Foo)\n{\n}\n")
	require.NoError(t, err)
	assert.Equal(t, "\n", got)
}

func TestExpand_Success(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)

	res, err := e.Expand(dict, "x\n//..makeClass(Foo)\n{body}")
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.Nil(t, res.Err)
	require.NotNil(t, res.Definition)
	assert.Equal(t, "class {name} {}", res.Definition.Code)
	assert.Equal(t, "body", res.Body.Text)
	assert.Equal(t, extract.Position{Line: 1, Column: 0}, res.Body.Start)
	assert.Equal(t, 3, res.FileLine(res.Body.Start))
}

func TestExpand_SyntaxErrorAsData(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)

	res, err := e.Expand(dict, "//..unknown()\n{A}}")
	require.NoError(t, err)

	assert.False(t, res.OK())
	assert.Nil(t, res.Body)
	assert.Nil(t, res.Definition)
	require.NotNil(t, res.Err)
	assert.Equal(t, extract.UnmatchedClose, res.Err.Kind)
	assert.Equal(t, extract.Position{Line: 1, Column: 3}, res.Err.Start)
	assert.Equal(t, 2, res.FileLine(res.Err.Start))
}

func TestExpand_Failures(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)

	_, err = e.Expand(commands.BytesSource(`{"a": 1}`), "//..a()")
	assert.ErrorIs(t, err, commands.ErrDictionaryLoad)

	_, err = e.Expand(dict, "nothing")
	assert.ErrorIs(t, err, ErrNoMarker)
}

type recordingProgress struct {
	total   int
	scanned map[string]int
	done    *ScanReport
}

func (r *recordingProgress) OnScanStart(total int) { r.total = total }
func (r *recordingProgress) OnFileScanned(path string, n int) {
	if r.scanned == nil {
		r.scanned = map[string]int{}
	}
	r.scanned[path] = n
}
func (r *recordingProgress) OnScanComplete(report *ScanReport) { r.done = report }

func TestScanFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.java")
	b := filepath.Join(dir, "b.go")
	missing := filepath.Join(dir, "missing.txt")
	require.NoError(t, os.WriteFile(a, []byte("//..makeClass(Foo)\n{}\n//..getter(x)\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("package b\n"), 0o644))

	e, err := New(Options{})
	require.NoError(t, err)

	progress := &recordingProgress{}
	report := e.ScanFiles([]string{a, b, missing}, progress)

	assert.Equal(t, 2, report.Files)
	assert.Equal(t, []string{missing}, report.Skipped)
	require.Len(t, report.Markers, 2)
	assert.Equal(t, FileMarker{Path: a, Marker: marker.Marker{Line: 1, Name: "makeClass", Args: []string{"Foo"}}}, report.Markers[0])
	assert.Equal(t, "getter", report.Markers[1].Name)
	assert.Equal(t, 3, report.Markers[1].Line)

	assert.Equal(t, 3, progress.total)
	assert.Equal(t, map[string]int{a: 2, b: 0, missing: 0}, progress.scanned)
	assert.Same(t, report, progress.done)
}

func TestScanFiles_NilProgress(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)

	report := e.ScanFiles(nil, nil)
	assert.Equal(t, 0, report.Files)
	assert.Empty(t, report.Markers)
}
