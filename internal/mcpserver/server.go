// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the workspace saver to LLM agents via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/scribe/internal/index"
	"github.com/starford/scribe/internal/models"
	"github.com/starford/scribe/internal/workspace"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

// Workspace is the set of operations the tools delegate to.
type Workspace interface {
	Save(ctx context.Context, req workspace.Request) workspace.Outcome
	Browse(ctx context.Context, dir string) ([]models.Entry, error)
	Preview(ctx context.Context, path string) (string, error)
	Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error)
	RecentSaves(ctx context.Context, limit int) ([]models.SaveRecord, error)
}

// Server wraps the MCP server with the workspace tools.
type Server struct {
	mcp *server.MCPServer
	ws  Workspace
}

// New creates a new MCP server with all workspace tools registered.
func New(ws Workspace) *Server {
	s := &Server{ws: ws}

	s.mcp = server.NewMCPServer(
		"Scribe",
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithInstructions("Save agent output into the workspace with file_saver. "+
			"Read "+WorkspaceGuideURI+" for path and mode rules."),
	)

	s.mcp.AddTool(mcp.NewTool("file_saver",
		mcp.WithDescription("Save text content to a file in the workspace. "+
			"Parent directories are created as needed. Use mode=append to add to an existing file."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to write")),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path relative to the workspace root (e.g. reports/summary.md)")),
		mcp.WithString("mode",
			mcp.Description("overwrite (default) replaces the file, append adds to its end"),
			mcp.Enum("overwrite", "append", "w", "a"),
			mcp.DefaultString("overwrite"),
		),
	), s.fileSaver)

	s.mcp.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read the text content of a workspace file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the workspace root")),
	), s.readFile)

	s.mcp.AddTool(mcp.NewTool("list_workspace",
		mcp.WithDescription("List the files and directories directly inside a workspace directory."),
		mcp.WithString("path", mcp.Description("Directory to list (empty for the workspace root)")),
	), s.listWorkspace)

	s.mcp.AddTool(mcp.NewTool("search_workspace",
		mcp.WithDescription("Full-text search through workspace file contents and paths."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchWorkspace)

	s.mcp.AddTool(mcp.NewTool("recent_saves",
		mcp.WithDescription("Show the most recent save attempts, newest first, including failures."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 20)")),
	), s.recentSaves)

	s.mcp.AddResource(
		mcp.NewResource(WorkspaceGuideURI, "Workspace Guide",
			mcp.WithResourceDescription("How file_saver resolves paths and modes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGuideResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) fileSaver(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := req.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode := req.GetString("mode", string(workspace.ModeOverwrite))

	out := s.ws.Save(ctx, workspace.Request{
		Content:  content,
		FilePath: filePath,
		Mode:     workspace.Mode(mode),
	})
	if !out.OK() {
		return mcp.NewToolResultError(out.Message()), nil
	}
	return mcp.NewToolResultText(out.Message()), nil
}

func (s *Server) readFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.ws.Preview(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) listWorkspace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := req.GetString("path", "")
	entries, err := s.ws.Browse(ctx, dir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list %q: %v", dir, err)), nil
	}
	return jsonResult(entries)
}

func (s *Server) searchWorkspace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.ws.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) recentSaves(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs, err := s.ws.RecentSaves(ctx, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(recs)
}

func (s *Server) readGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      WorkspaceGuideURI,
			MIMEType: "text/markdown",
			Text:     WorkspaceGuide,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
