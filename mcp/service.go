package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ssheladiya/graph-explorer/query"
	"github.com/ssheladiya/graph-explorer/query/builders"
	"github.com/ssheladiya/graph-explorer/query/sparql"
)

// Service holds the tool handlers. It compiles queries only; running them
// is left to the caller.
type Service struct {
	dialect query.Dialect
	logger  *slog.Logger
}

// NewService returns a Service whose tools default to dialect.
func NewService(dialect query.Dialect, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{dialect: dialect, logger: logger}
}

func (s *Service) builder(name string) (query.Builder, error) {
	if name == "" {
		return builders.For(s.dialect)
	}
	return builders.ForName(name)
}

func (s *Service) result(ctx context.Context, b query.Builder, operation, q string) (*mcp.CallToolResult, CompileResult, error) {
	s.logger.DebugContext(ctx, "compiled query", "dialect", b.Dialect().String(), "operation", operation, "query_length", len(q))
	return nil, CompileResult{Dialect: b.Dialect().String(), Operation: operation, Query: q}, nil
}

// --- Tool Handlers ---

func (s *Service) KeywordSearch(ctx context.Context, req *mcp.CallToolRequest, args KeywordSearchArgs) (*mcp.CallToolResult, CompileResult, error) {
	b, err := s.builder(args.Dialect)
	if err != nil {
		return nil, CompileResult{}, err
	}
	return s.result(ctx, b, query.OpKeywordSearch, b.KeywordSearch(args.request()))
}

func (s *Service) Neighbors(ctx context.Context, req *mcp.CallToolRequest, args NeighborsArgs) (*mcp.CallToolResult, CompileResult, error) {
	if args.VertexID == "" {
		return nil, CompileResult{}, fmt.Errorf("vertexId is required")
	}
	b, err := s.builder(args.Dialect)
	if err != nil {
		return nil, CompileResult{}, err
	}
	return s.result(ctx, b, query.OpNeighbors, b.OneHopNeighbors(args.request()))
}

func (s *Service) NeighborsCount(ctx context.Context, req *mcp.CallToolRequest, args NeighborsCountArgs) (*mcp.CallToolResult, CompileResult, error) {
	if args.VertexID == "" {
		return nil, CompileResult{}, fmt.Errorf("vertexId is required")
	}
	b, err := s.builder(args.Dialect)
	if err != nil {
		return nil, CompileResult{}, err
	}
	q := b.NeighborsCount(query.NeighborsCountRequest{VertexID: args.VertexID, Limit: args.Limit})
	return s.result(ctx, b, query.OpNeighborsCount, q)
}

func (s *Service) VertexTypeCount(ctx context.Context, req *mcp.CallToolRequest, args VertexTypeCountArgs) (*mcp.CallToolResult, CompileResult, error) {
	b, err := s.builder(args.Dialect)
	if err != nil {
		return nil, CompileResult{}, err
	}
	return s.result(ctx, b, query.OpVertexTypeCount, b.VertexTypeCount(args.VertexType))
}

// SubjectPredicates is SPARQL only, whatever the server dialect.
func (s *Service) SubjectPredicates(ctx context.Context, req *mcp.CallToolRequest, args SubjectPredicatesArgs) (*mcp.CallToolResult, CompileResult, error) {
	if args.ResourceURI == "" {
		return nil, CompileResult{}, fmt.Errorf("resourceUri is required")
	}
	b := sparql.New()
	q := b.SubjectPredicates(query.SubjectPredicatesRequest{ResourceURI: args.ResourceURI, SubjectURIs: args.SubjectURIs})
	return s.result(ctx, b, query.OpSubjectPredicates, q)
}
