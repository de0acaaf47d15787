package cli

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the root command:
// - version prints the build variables
// - every subcommand is registered on the root
// - newLogger honors the configured level and --verbose

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "rescribe dev\n")
	assert.Contains(t, out.String(), "Git commit: none")
}

func TestGetVersionString(t *testing.T) {
	assert.Equal(t, "dev (built from source)", getVersionString())
}

func TestSubcommandsRegistered(t *testing.T) {
	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range []string{"params", "contents", "expand", "list", "show", "search", "scan", "markers", "mcp", "version"} {
		assert.True(t, registered[name], "missing subcommand %s", name)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	assert.Equal(t, log.WarnLevel, newLogger(&buf, "warn", false).GetLevel())
	assert.Equal(t, log.InfoLevel, newLogger(&buf, "bogus", false).GetLevel())
	assert.Equal(t, log.DebugLevel, newLogger(&buf, "error", true).GetLevel())

	newLogger(&buf, "info", false).Info("hello")
	assert.Contains(t, buf.String(), "rescribe")
	assert.Contains(t, buf.String(), "hello")
}
