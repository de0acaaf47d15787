package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/rescribe/internal/commands"
	"github.com/mvp-joe/rescribe/internal/expand"
)

var (
	paramsJSON bool
	expandJSON bool
)

var paramsCmd = &cobra.Command{
	Use:   "params <file>",
	Short: "Show the first command marker in a file",
	Long: `Show the line, command name and raw argument list of the first
//..name(args) marker in a file. Arguments are split on commas and not trimmed.`,
	Args: cobra.ExactArgs(1),
	RunE: runParams,
}

var contentsCmd = &cobra.Command{
	Use:   "contents <file>",
	Short: "Print the {...} body that follows the first marker",
	Long: `Print the text between the first '{' after the first marker and its matching
'}'. Unbalanced braces print nothing; use 'rescribe expand' to see why.`,
	Args: cobra.ExactArgs(1),
	RunE: runContents,
}

var expandCmd = &cobra.Command{
	Use:   "expand <file>...",
	Short: "Show marker, dictionary template and extracted body",
	Long: `For each file, show the first marker, the dictionary template it names,
and the extracted body. Brace errors are reported with their file position and
make the command exit non-zero.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExpand,
}

func init() {
	rootCmd.AddCommand(paramsCmd)
	rootCmd.AddCommand(contentsCmd)
	rootCmd.AddCommand(expandCmd)

	paramsCmd.Flags().BoolVar(&paramsJSON, "json", false, "Output as JSON")
	expandCmd.Flags().BoolVar(&expandJSON, "json", false, "Output as JSON")
}

func runParams(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	engine, err := env.engine()
	if err != nil {
		return err
	}
	return executeParams(cmd.OutOrStdout(), engine, env.source(), args[0], paramsJSON)
}

func executeParams(out io.Writer, engine *expand.Engine, src commands.Source, path string, asJSON bool) error {
	text, err := readSource(path)
	if err != nil {
		return err
	}
	m, err := engine.Parameters(src, text)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if asJSON {
		return writeJSON(out, m)
	}
	fmt.Fprintf(out, "%s %s\n", subtitleStyle.Render(fmt.Sprintf("%s:%d", path, m.Line)), commandStyle.Render(markerText(m.Name, m.Args)))
	for i, arg := range m.Args {
		fmt.Fprintf(out, "  %d: %q\n", i, arg)
	}
	return nil
}

func runContents(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	engine, err := env.engine()
	if err != nil {
		return err
	}
	return executeContents(cmd.OutOrStdout(), engine, env.source(), args[0])
}

func executeContents(out io.Writer, engine *expand.Engine, src commands.Source, path string) error {
	text, err := readSource(path)
	if err != nil {
		return err
	}
	body, err := engine.Contents(src, text)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprint(out, body)
	return nil
}

func runExpand(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	engine, err := env.engine()
	if err != nil {
		return err
	}

	// Files share one parsed dictionary unless it changes on disk.
	cache, err := commands.NewCachedSource(0)
	if err != nil {
		return err
	}
	defer cache.Close()

	return executeExpand(cmd.OutOrStdout(), engine, cache.File(env.dictionaryPath()), args, expandJSON)
}

// expandedFile is one file's entry in expand --json output.
type expandedFile struct {
	Path string `json:"path"`
	*expand.Result
	Error string `json:"error,omitempty"`
}

var errExpandFailed = errors.New("expansion failed")

func executeExpand(out io.Writer, engine *expand.Engine, src commands.Source, paths []string, asJSON bool) error {
	var entries []expandedFile
	failed := 0

	for _, path := range paths {
		entry := expandedFile{Path: path}
		text, err := readSource(path)
		if err == nil {
			entry.Result, err = engine.Expand(src, text)
		}
		if err != nil {
			if errors.Is(err, commands.ErrDictionaryLoad) {
				return err
			}
			entry.Error = err.Error()
		}
		if entry.Result == nil || !entry.Result.OK() {
			failed++
		}
		entries = append(entries, entry)
	}

	if asJSON {
		if err := writeJSON(out, entries); err != nil {
			return err
		}
	} else {
		for i, entry := range entries {
			if i > 0 {
				fmt.Fprintln(out)
			}
			renderExpanded(out, entry)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errExpandFailed, failed, len(paths))
	}
	return nil
}

func renderExpanded(out io.Writer, entry expandedFile) {
	if entry.Result == nil {
		fmt.Fprintf(out, "%s %s\n", errorStyle.Render("✗"), entry.Error)
		return
	}
	res := entry.Result

	fmt.Fprintf(out, "%s %s\n",
		subtitleStyle.Render(fmt.Sprintf("%s:%d", entry.Path, res.Marker.Line)),
		commandStyle.Render(markerText(res.Marker.Name, res.Marker.Args)))

	if res.Definition != nil {
		fmt.Fprintln(out, titleStyle.Render("Template:"))
		fmt.Fprintln(out, codeStyle.Render(res.Definition.Code))
	} else {
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("%s is not in the dictionary", res.Marker.Name)))
	}

	if res.OK() {
		fmt.Fprintf(out, "%s %s\n", successStyle.Render("Body:"),
			subtitleStyle.Render(fmt.Sprintf("(line %d)", res.FileLine(res.Body.Start))))
		fmt.Fprintln(out, codeStyle.Render(res.Body.Text))
		return
	}
	fmt.Fprintf(out, "%s %s:%d:%d: %s\n", errorStyle.Render("✗ syntax error"),
		entry.Path, res.FileLine(res.Err.Start), res.Err.Start.Column+1, res.Err.Error())
}

// markerText renders a marker the way it is written in source.
func markerText(name string, args []string) string {
	return "//.." + name + "(" + strings.Join(args, ",") + ")"
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
