// ABOUTME: MCP server setup for the wellness tracker.
// ABOUTME: Wraps the MCP server with storage and insights service access.
package mcp

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/wellness/internal/insights"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	insights  *insights.Service
	logger    *log.Logger
	today     func() models.Date
}

// NewServer creates a new MCP server with the given storage.
func NewServer(repo storage.Repository, logger *log.Logger) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("new server: nil repository")
	}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "wellness",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		insights:  insights.NewService(repo, logger),
		logger:    logger,
		today:     models.Today,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("serving MCP over stdio", "version", Version)
	}
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
