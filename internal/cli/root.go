// Package cli implements the rescribe command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	verbose  bool
	dictPath string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "rescribe",
		Short: "Find //..name(args) command markers and the code they govern",
		Long: titleStyle.Render("rescribe") + subtitleStyle.Render(" - command markers for generated code") + `

rescribe scans source files for inline markers such as

  //..makeClass(Foo, public)

looks the command up in a JSON dictionary of code templates, and extracts
the balanced {...} body that follows the marker.

` + subtitleStyle.Render("Examples:") + `
  rescribe params Foo.java     Show the first marker's command and arguments
  rescribe expand Foo.java     Show marker, template and extracted body
  rescribe list                List the dictionary
  rescribe search 'name:make*' Keyword search over the dictionary
  rescribe scan                Record every marker in the project`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .rescribe/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dictPath, "dict", "", "command dictionary (overrides dictionary.path)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate)
}
