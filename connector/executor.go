package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ssheladiya/graph-explorer/query"
)

// DefaultCountConcurrency bounds the parallel fetches of FetchVertexTypeCounts.
const DefaultCountConcurrency = 4

// Result is the outcome of one executed query.
type Result struct {
	Dialect   query.Dialect   `json:"dialect"`
	Operation string          `json:"operation"`
	Query     string          `json:"query"`
	Body      json.RawMessage `json:"body"`
	Duration  time.Duration   `json:"duration"`
}

// Executor compiles requests with a Builder and runs them through a Fetcher.
//
// Executor is safe for concurrent use when its Fetcher is.
type Executor struct {
	builder query.Builder
	fetcher Fetcher
	logger  *slog.Logger

	countConcurrency int
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the executor's logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCountConcurrency sets how many vertex type counts run in parallel.
func WithCountConcurrency(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.countConcurrency = n
		}
	}
}

// NewExecutor creates an Executor.
func NewExecutor(builder query.Builder, fetcher Fetcher, opts ...ExecutorOption) *Executor {
	e := &Executor{
		builder:          builder,
		fetcher:          fetcher,
		logger:           slog.Default(),
		countConcurrency: DefaultCountConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dialect returns the dialect of the executor's builder.
func (e *Executor) Dialect() query.Dialect {
	return e.builder.Dialect()
}

// KeywordSearch searches vertices.
func (e *Executor) KeywordSearch(ctx context.Context, req query.KeywordSearchRequest) (*Result, error) {
	return e.run(ctx, query.OpKeywordSearch, e.builder.KeywordSearch(req))
}

// FetchNeighbors expands a vertex to its one-hop neighbors.
//
// For SPARQL the body lists neighbor subjects and their literal attributes.
// Edges are resolved with a second FetchSubjectPredicates call over the
// subjects the caller extracted from this body.
func (e *Executor) FetchNeighbors(ctx context.Context, req query.NeighborsRequest) (*Result, error) {
	return e.run(ctx, query.OpNeighbors, e.builder.OneHopNeighbors(req))
}

// FetchNeighborsCount counts a vertex's neighbors by type.
func (e *Executor) FetchNeighborsCount(ctx context.Context, req query.NeighborsCountRequest) (*Result, error) {
	return e.run(ctx, query.OpNeighborsCount, e.builder.NeighborsCount(req))
}

// FetchVertexTypeCount counts the vertices of one type.
func (e *Executor) FetchVertexTypeCount(ctx context.Context, vertexType string) (*Result, error) {
	return e.run(ctx, query.OpVertexTypeCount, e.builder.VertexTypeCount(vertexType))
}

// FetchVertexTypeCounts counts the vertices of every given type in parallel.
// The first failure cancels the remaining fetches.
func (e *Executor) FetchVertexTypeCounts(ctx context.Context, vertexTypes []string) (map[string]*Result, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]*Result, len(vertexTypes))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.countConcurrency)
	for _, vt := range vertexTypes {
		g.Go(func() error {
			res, err := e.FetchVertexTypeCount(gctx, vt)
			if err != nil {
				return fmt.Errorf("count %q: %w", vt, err)
			}
			mu.Lock()
			results[vt] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FetchSubjectPredicates resolves the predicates linking a resource to its
// already discovered neighbors. Only dialects implementing
// query.SubjectPredicatesBuilder support it.
func (e *Executor) FetchSubjectPredicates(ctx context.Context, req query.SubjectPredicatesRequest) (*Result, error) {
	sp, ok := e.builder.(query.SubjectPredicatesBuilder)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not support %s", ErrUnsupportedOperation, e.Dialect(), query.OpSubjectPredicates)
	}
	return e.run(ctx, query.OpSubjectPredicates, sp.SubjectPredicates(req))
}

// Execute decodes payload for the named operation, compiles it and runs it.
func (e *Executor) Execute(ctx context.Context, operation string, payload []byte) (*Result, error) {
	q, err := query.Compile(e.builder, operation, payload)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, operation, q)
}

func (e *Executor) run(ctx context.Context, operation, q string) (*Result, error) {
	e.logger.Debug("executing query",
		"dialect", e.Dialect().String(),
		"operation", operation,
		"query", q)

	start := time.Now()
	body, err := e.fetcher.Fetch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch: %w", operation, err)
	}
	if err := CheckResponse(body); err != nil {
		e.logger.Warn("query returned an error response",
			"dialect", e.Dialect().String(),
			"operation", operation,
			"error", err)
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	return &Result{
		Dialect:   e.Dialect(),
		Operation: operation,
		Query:     q,
		Body:      json.RawMessage(body),
		Duration:  time.Since(start),
	}, nil
}
