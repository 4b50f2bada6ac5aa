package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/blindspotlabs/dublin-planning-rag/internal/engine"
	"github.com/blindspotlabs/dublin-planning-rag/internal/retrieval"
	"github.com/blindspotlabs/dublin-planning-rag/internal/storage"
)

// Server wraps the MCP server with dependencies.
type Server struct {
	server    *mcp.Server
	engine    *engine.Engine
	retriever *retrieval.Retriever
	store     *storage.Store
}

// Config holds server dependencies.
type Config struct {
	Engine    *engine.Engine
	Retriever *retrieval.Retriever
	Store     *storage.Store
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "dublin-planning-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_planning",
		Description: "Answer a question about Dublin City Council planning applications. Retrieves relevant records and generates a grounded answer with planning reference citations.",
	}, makeQueryHandler(cfg.Engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_records",
		Description: "Search Dublin City Council planning records semantically. Returns the raw matching records without generating an answer.",
	}, makeSearchHandler(cfg.Retriever))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_index_status",
		Description: "Get the current status of the planning record index including record count, embedding model, and last build time.",
	}, makeStatusHandler(cfg.Store))

	return &Server{
		server:    server,
		engine:    cfg.Engine,
		retriever: cfg.Retriever,
		store:     cfg.Store,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
