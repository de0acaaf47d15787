// Package mcp serves the command dictionary and marker expansion to MCP
// clients over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/rescribe/internal/commands"
	"github.com/mvp-joe/rescribe/internal/expand"
	"github.com/mvp-joe/rescribe/internal/search"
)

const (
	serverName    = "rescribe"
	serverVersion = "1.0.0"
)

// ServerDeps is everything the tools need. Source may be a *commands.Live;
// the keyword index follows its reloads.
type ServerDeps struct {
	Source commands.Source
	Engine *expand.Engine
	Root   string // files named by rescribe_expand must lie inside Root
	Logger *log.Logger
}

// Server manages the MCP server lifecycle.
type Server struct {
	deps  ServerDeps
	index *search.Index
	mcp   *server.MCPServer
}

// NewServer builds the keyword index from the current dictionary and
// registers every tool.
func NewServer(ctx context.Context, deps ServerDeps) (*Server, error) {
	if deps.Source == nil || deps.Engine == nil {
		return nil, errors.New("source and engine are required")
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}

	store, err := deps.Source.Load()
	if err != nil {
		return nil, err
	}
	index, err := search.NewIndex(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	catalog := search.NewCatalog(deps.Source)
	AddListTool(mcpServer, catalog)
	AddFindTool(mcpServer, catalog)
	AddSearchTool(mcpServer, deps.Source, index)
	AddExpandTool(mcpServer, deps.Engine, deps.Source, deps.Root)

	return &Server{deps: deps, index: index, mcp: mcpServer}, nil
}

// Serve runs the server on stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("starting MCP server on stdio", "tools", 4)
		errCh <- server.ServeStdio(s.mcp)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.deps.Logger.Info("shutting down MCP server")
		return nil
	}
}

// Close releases the index.
func (s *Server) Close() error {
	return s.index.Close()
}
