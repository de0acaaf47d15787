package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/rescribe/internal/commands"
	"github.com/mvp-joe/rescribe/internal/search"
)

var (
	listJSON    bool
	searchJSON  bool
	searchLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the commands in the dictionary",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one command by exact name",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Keyword search over command names and templates",
	Long: `Search the dictionary with bleve query syntax.

Examples:
  rescribe search 'name:make*'     Commands whose name starts with "make"
  rescribe search 'code:class'     Templates that mention "class"
  rescribe search enum             Either field`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(searchCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 15, "Maximum number of results (1-100)")
}

func runList(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	return executeList(cmd.OutOrStdout(), search.NewCatalog(env.source()), listJSON)
}

func executeList(out io.Writer, surface search.Surface, asJSON bool) error {
	defs, err := surface.ListCommands()
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, defs)
	}

	if len(defs) == 0 {
		fmt.Fprintln(out, subtitleStyle.Render("The dictionary is empty."))
		return nil
	}
	width := 0
	for _, def := range defs {
		width = max(width, len(def.Name))
	}
	for _, def := range defs {
		fmt.Fprintf(out, "%s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-*s", width, def.Name)),
			subtitleStyle.Render(firstLine(def.Code)))
	}
	fmt.Fprintf(out, "\n%s\n", subtitleStyle.Render(fmt.Sprintf("%d commands", len(defs))))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	return executeShow(cmd.OutOrStdout(), search.NewCatalog(env.source()), args[0])
}

func executeShow(out io.Writer, surface search.Surface, name string) error {
	def, ok, err := surface.FindExact(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("command %q is not in the dictionary", name)
	}
	fmt.Fprintln(out, search.Format(def))
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	return executeSearch(cmd.Context(), cmd.OutOrStdout(), env.source(), args[0], searchLimit, searchJSON)
}

func executeSearch(ctx context.Context, out io.Writer, src commands.Source, query string, limit int, asJSON bool) error {
	store, err := src.Load()
	if err != nil {
		return err
	}
	index, err := search.NewIndex(ctx, store)
	if err != nil {
		return err
	}
	defer index.Close()

	hits, err := index.Search(ctx, query, limit)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, hits)
	}

	if len(hits) == 0 {
		fmt.Fprintln(out, subtitleStyle.Render("No matches."))
		return nil
	}
	for _, hit := range hits {
		fmt.Fprintf(out, "%s %s  %s\n",
			subtitleStyle.Render(fmt.Sprintf("%5.2f", hit.Score)),
			commandStyle.Render(hit.Definition.Name),
			subtitleStyle.Render(firstLine(hit.Definition.Code)))
	}
	return nil
}

// firstLine returns the first line of s, marked with an ellipsis when more
// lines follow.
func firstLine(s string) string {
	line, rest, found := strings.Cut(s, "\n")
	if found && rest != "" {
		return line + " …"
	}
	return line
}
