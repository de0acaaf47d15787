package cli

import (
	"github.com/spf13/cobra"

	"github.com/mvp-joe/rescribe/internal/commands"
	"github.com/mvp-joe/rescribe/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for the command dictionary",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
browse the dictionary and expand markers.

Tools:
- rescribe_list    list the dictionary
- rescribe_find    exact lookup by name
- rescribe_search  keyword search (bleve query syntax)
- rescribe_expand  marker, template and body for a file

With dictionary.watch enabled the dictionary is reloaded when it changes.
Communicates via stdio (standard MCP transport).`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	engine, err := env.engine()
	if err != nil {
		return err
	}

	var src commands.Source = env.source()
	if env.cfg.Dictionary.Watch {
		live, err := commands.NewLive(env.dictionaryPath(), env.logger)
		if err != nil {
			return err
		}
		live.Start(ctx)
		defer live.Stop()
		src = live
		env.logger.Info("watching dictionary", "path", env.dictionaryPath())
	}

	server, err := mcp.NewServer(ctx, mcp.ServerDeps{
		Source: src,
		Engine: engine,
		Root:   env.root,
		Logger: env.logger,
	})
	if err != nil {
		return err
	}
	defer server.Close()

	return server.Serve(ctx)
}
