// Package mcpserver exposes the complexity estimator as MCP tools and prompts
// over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/bigo/pkg/analyzer"
)

// Server wraps the MCP server and registers the bigo tools.
type Server struct {
	server   *mcp.Server
	analyzer *analyzer.Analyzer
}

// NewServer creates a new MCP server backed by a.
func NewServer(version string, a *analyzer.Analyzer) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "bigo",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, analyzer: a}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "estimate_complexity",
		Description: describeEstimate(),
	}, s.handleEstimate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_samples",
		Description: describeSamples(),
	}, s.handleListSamples)
}
