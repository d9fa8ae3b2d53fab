package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/green-analyzer/internal/projects"
	"github.com/ziadkadry99/green-analyzer/internal/wizard"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the working session and saved
// projects to assistants.
type Server struct {
	ctrl      *wizard.Controller
	projects  *projects.Store
	shareBase string
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(ctrl *wizard.Controller, store *projects.Store, shareBase string) *Server {
	s := &Server{
		ctrl:      ctrl,
		projects:  store,
		shareBase: shareBase,
	}

	s.mcp = server.NewMCPServer(
		"green-analyzer",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(getStateTool, s.handleGetState)
	s.mcp.AddTool(getAnalysisTool, s.handleGetAnalysis)
	s.mcp.AddTool(listProjectsTool, s.handleListProjects)
	s.mcp.AddTool(shareLinkTool, s.handleShareLink)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
