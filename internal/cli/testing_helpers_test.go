package cli

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/rescribe/internal/commands"
	"github.com/mvp-joe/rescribe/internal/expand"
)

// fixtureRoot is the sample project under testdata.
func fixtureRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", "..", "testdata", "project"))
	require.NoError(t, err)
	return root
}

// fixturePath returns a file inside the sample project.
func fixturePath(t *testing.T, rel string) string {
	t.Helper()
	return filepath.Join(fixtureRoot(t), filepath.FromSlash(rel))
}

// fixtureSource loads the sample project's dictionary.
func fixtureSource(t *testing.T) commands.Source {
	t.Helper()
	return commands.FileSource{Path: fixturePath(t, ".rescribe/commands.json")}
}

// newTestEngine returns an engine that logs nowhere.
func newTestEngine(t *testing.T) *expand.Engine {
	t.Helper()
	e, err := expand.New(expand.Options{Logger: log.New(io.Discard)})
	require.NoError(t, err)
	return e
}
