// Package mcp exposes the query compilers as Model Context Protocol tools,
// so that an assistant can draft Gremlin, openCypher and SPARQL queries.
package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ssheladiya/graph-explorer/query"
)

// Tool names.
const (
	ToolKeywordSearch     = "compile_keyword_search"
	ToolNeighbors         = "compile_neighbors"
	ToolNeighborsCount    = "compile_neighbors_count"
	ToolVertexTypeCount   = "compile_vertex_type_count"
	ToolSubjectPredicates = "compile_subject_predicates"
)

// NewServer builds an MCP server whose tools default to dialect.
func NewServer(dialect query.Dialect, version string, logger *slog.Logger) *mcp.Server {
	service := NewService(dialect, logger)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "graph-explorer",
		Version: version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolKeywordSearch,
		Description: "Compile a query that finds vertices whose attributes match a search term, optionally restricted to vertex types.",
	}, service.KeywordSearch)

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolNeighbors,
		Description: "Compile a query that expands a vertex to its one-hop neighbors and the edges connecting them.",
	}, service.Neighbors)

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolNeighborsCount,
		Description: "Compile a query that counts the distinct neighbors of a vertex grouped by type.",
	}, service.NeighborsCount)

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolVertexTypeCount,
		Description: "Compile a query that counts the vertices of one type, or all vertices.",
	}, service.VertexTypeCount)

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolSubjectPredicates,
		Description: "Compile the SPARQL query listing the predicates that link a resource to neighbors found by compile_neighbors.",
	}, service.SubjectPredicates)

	return s
}

// Serve runs s over stdin and stdout until ctx is cancelled or the client
// disconnects.
func Serve(ctx context.Context, s *mcp.Server) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}
