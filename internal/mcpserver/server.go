// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Othala tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aldwin/othala/internal/models"
	"github.com/aldwin/othala/internal/syncengine"
)

// Server wraps the MCP server with Othala tools.
type Server struct {
	mcp *server.MCPServer
	eng *syncengine.Engine
}

// New creates a new MCP server with all Othala tools registered.
func New(eng *syncengine.Engine) *Server {
	s := &Server{eng: eng}

	s.mcp = server.NewMCPServer(
		"Othala",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_tree",
		mcp.WithDescription("List the vault folder tree with all notes and boards."),
	), s.listTree)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full content of a note or board."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. folder/note.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new empty document with a placeholder name. "+
			"The document is renamed automatically once it has a title: notes take "+
			"theirs from the first <h1> or leading '# ' heading, boards from the "+
			"board title field."),
		mcp.WithString("folder", mcp.Description("Folder to create the document in (empty for the vault root)")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Document type: \"note\" or \"board\"")),
	), s.createDocument)

	s.mcp.AddTool(mcp.NewTool("save_document",
		mcp.WithDescription("Overwrite a document body and record a new version snapshot."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New document body")),
	), s.saveDocument)

	s.mcp.AddTool(mcp.NewTool("list_versions",
		mcp.WithDescription("List recent version snapshots of a document, newest first."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
	), s.listVersions)

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

func (s *Server) listTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := s.eng.Tree()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(tree, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.eng.ReadDocument(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(doc.Body)), nil
}

func (s *Server) createDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctArg, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	folder := ""
	if f, fErr := req.RequireString("folder"); fErr == nil {
		folder = f
	}

	path, err := s.eng.CreateDocument(folder, models.ContentType(ctArg))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) saveDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	versionID, err := s.eng.SaveDocument(path, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (version %d)", path, versionID)), nil
}

func (s *Server) listVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	versions, err := s.eng.ListVersions(path, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(versions) == 0 {
		return mcp.NewToolResultText("no versions found"), nil
	}
	var lines []string
	for _, v := range versions {
		lines = append(lines, fmt.Sprintf("%d\t%s\t%s", v.ID, v.CreatedAt.Format("2006-01-02 15:04:05"), v.Path))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
