package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/rescribe/internal/commands"
	"github.com/mvp-joe/rescribe/internal/expand"
	"github.com/mvp-joe/rescribe/internal/search"
)

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ListResponse is the rescribe_list result.
type ListResponse struct {
	Commands []commands.Definition `json:"commands"`
	Total    int                   `json:"total"`
}

// FindRequest is the rescribe_find argument schema.
type FindRequest struct {
	Name string `json:"name"`
}

// FindResponse is the rescribe_find result.
type FindResponse struct {
	Found     bool                 `json:"found"`
	Command   *commands.Definition `json:"command,omitempty"`
	Formatted string               `json:"formatted,omitempty"`
}

// SearchRequest is the rescribe_search argument schema.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchResponse is the rescribe_search result.
type SearchResponse struct {
	Query         string       `json:"query"`
	Results       []search.Hit `json:"results"`
	TotalReturned int          `json:"total_returned"`
}

// ExpandRequest is the rescribe_expand argument schema.
type ExpandRequest struct {
	Path string `json:"path"`
}

// ExpandResponse is the rescribe_expand result. FileLine is the 1-based line
// where the body starts or where the syntax error was found.
type ExpandResponse struct {
	Path    string `json:"path"`
	Success bool   `json:"ok"`
	*expand.Result
	FileLine int `json:"file_line"`
}

// AddListTool registers rescribe_list.
func AddListTool(s *server.MCPServer, surface search.Surface) {
	tool := mcp.NewTool(
		"rescribe_list",
		mcp.WithDescription("List every command in the dictionary, in dictionary order, with its code template."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createListHandler(surface))
}

func createListHandler(surface search.Surface) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		defs, err := surface.ListCommands()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResponse(&ListResponse{Commands: defs, Total: len(defs)})
	}
}

// AddFindTool registers rescribe_find.
func AddFindTool(s *server.MCPServer, surface search.Surface) {
	tool := mcp.NewTool(
		"rescribe_find",
		mcp.WithDescription("Look up one command by its exact, case-sensitive name."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Command name as written after //.. in a marker")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createFindHandler(surface))
}

func createFindHandler(surface search.Surface) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req FindRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		if req.Name == "" {
			return mcp.NewToolResultError("name parameter is required"), nil
		}

		def, ok, err := surface.FindExact(req.Name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		resp := &FindResponse{Found: ok}
		if ok {
			resp.Command = &def
			resp.Formatted = search.Format(def)
		}
		return marshalToolResponse(resp)
	}
}

// AddSearchTool registers rescribe_search.
func AddSearchTool(s *server.MCPServer, src commands.Source, index *search.Index) {
	tool := mcp.NewTool(
		"rescribe_search",
		mcp.WithDescription(`Keyword search over command names and code using bleve query syntax.

Examples:
- name:make* - commands whose name starts with "make"
- code:class - templates mentioning "class"
- enum - either field`),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Bleve query string")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 15)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createSearchHandler(src, index))
}

func createSearchHandler(src commands.Source, index *search.Index) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req SearchRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		if req.Query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		store, err := src.Load()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := index.Sync(ctx, store); err != nil {
			return nil, fmt.Errorf("failed to refresh index: %w", err)
		}

		hits, err := index.Search(ctx, req.Query, req.Limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResponse(&SearchResponse{Query: req.Query, Results: hits, TotalReturned: len(hits)})
	}
}

// AddExpandTool registers rescribe_expand.
func AddExpandTool(s *server.MCPServer, engine *expand.Engine, src commands.Source, root string) {
	tool := mcp.NewTool(
		"rescribe_expand",
		mcp.WithDescription("Read a source file, find its first //..name(args) marker, and return the marker, the matching dictionary command, and the balanced {...} body that follows it. Unbalanced braces are reported as a syntax error with window-relative positions."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path, relative to the project root")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createExpandHandler(engine, src, root))
}

func createExpandHandler(engine *expand.Engine, src commands.Source, root string) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req ExpandRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		if req.Path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}

		path, err := resolveInRoot(root, req.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", req.Path, err)), nil
		}

		res, err := engine.Expand(src, string(data))
		if errors.Is(err, expand.ErrNoMarker) {
			return mcp.NewToolResultError(fmt.Sprintf("no command marker in %s", req.Path)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp := &ExpandResponse{Path: req.Path, Success: res.OK(), Result: res}
		if res.OK() {
			resp.FileLine = res.FileLine(res.Body.Start)
		} else {
			resp.FileLine = res.FileLine(res.Err.Start)
		}
		return marshalToolResponse(resp)
	}
}

// resolveInRoot joins a relative path onto root and rejects anything that
// would land outside it. An empty root accepts any path.
func resolveInRoot(root, p string) (string, error) {
	if root == "" {
		return p, nil
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside the project root", p)
	}
	return p, nil
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
