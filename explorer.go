package explorer

import (
	"context"
	"fmt"

	"github.com/ssheladiya/graph-explorer/cache"
	"github.com/ssheladiya/graph-explorer/config"
	"github.com/ssheladiya/graph-explorer/connector"
	"github.com/ssheladiya/graph-explorer/query"
	"github.com/ssheladiya/graph-explorer/query/builders"
)

// Explorer compiles exploration requests for one dialect and runs them
// through a caller supplied Fetcher.
//
// Explorer is safe for concurrent use when its Fetcher is.
type Explorer struct {
	exec    *connector.Executor
	session *connector.SearchSession
	cfg     *explorerConfig
}

// New creates an Explorer for dialect. The fetcher is decorated, from the
// inside out, with instrumentation, the response cache and deduplication,
// each only when configured.
func New(dialect query.Dialect, fetcher connector.Fetcher, opts ...Option) (*Explorer, error) {
	const op = "explorer.New"

	if fetcher == nil {
		return nil, NewConfigurationError(op, fmt.Errorf("%w: fetcher is required", ErrInvalidConfig))
	}

	builder, err := builders.For(dialect)
	if err != nil {
		return nil, NewValidationError(op, fmt.Errorf("%w: %w", ErrUnsupportedDialect, err))
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	f := fetcher
	if cfg.tracer != nil || cfg.meter != nil {
		f, err = connector.Instrument(f, connector.InstrumentOptions{
			Tracer:  cfg.tracer,
			Meter:   cfg.meter,
			Logger:  cfg.logger,
			Dialect: dialect,
		})
		if err != nil {
			return nil, NewInternalError(op, err)
		}
	}
	if cfg.cache != nil {
		f = cache.Wrap(cfg.cache, f, dialect, cfg.logger)
	}
	if cfg.dedupe {
		f = connector.Dedupe(f)
	}

	exec := connector.NewExecutor(builder, f,
		connector.WithLogger(cfg.logger),
		connector.WithCountConcurrency(cfg.countConcurrency),
	)

	return &Explorer{
		exec:    exec,
		session: connector.NewSearchSession(exec),
		cfg:     cfg,
	}, nil
}

// NewFromConfig creates an Explorer from a loaded configuration file. The
// configured dialect, logger and Redis cache are applied before opts, so
// opts may override them. A cache opened here is closed by Close.
func NewFromConfig(cfg *config.Config, fetcher connector.Fetcher, opts ...Option) (*Explorer, error) {
	const op = "explorer.NewFromConfig"

	if err := cfg.Validate(); err != nil {
		return nil, NewConfigurationError(op, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	dialect, _ := cfg.GetDialect()

	var logging *config.LoggingConfig
	var cacheCfg *config.CacheConfig
	if cfg != nil {
		logging, cacheCfg = cfg.Logging, cfg.Cache
	}
	logger := config.NewLogger(logging, nil)

	base := []Option{WithLogger(logger)}
	var owned cache.Cache
	if cacheCfg.IsEnabled() {
		rc, err := cache.NewRedisCache(cache.RedisOptions{
			URL:    cacheCfg.GetURL(),
			Prefix: cacheCfg.GetPrefix(),
			TTL:    cacheCfg.GetTTL(),
			Logger: logger,
		})
		if err != nil {
			return nil, NewConfigurationError(op, err)
		}
		owned = rc
		base = append(base, func(c *explorerConfig) {
			c.cache = rc
			c.ownsCache = true
		})
	}

	exp, err := New(dialect, fetcher, append(base, opts...)...)
	if err != nil {
		CloseWithLog(owned, logger, "response cache")
		return nil, err
	}
	if owned != nil && exp.cfg.cache != owned {
		CloseWithLog(owned, logger, "response cache")
	}
	return exp, nil
}

// Dialect returns the query language the explorer compiles to.
func (e *Explorer) Dialect() query.Dialect {
	return e.exec.Dialect()
}

// KeywordSearch searches vertices by attribute values.
func (e *Explorer) KeywordSearch(ctx context.Context, req query.KeywordSearchRequest) (*connector.Result, error) {
	res, err := e.exec.KeywordSearch(ctx, req)
	return res, classify("Explorer.KeywordSearch", e.Dialect(), err)
}

// Search is KeywordSearch for as-you-type searches: it cancels the previous
// Search still in flight. The superseded call fails with an error matching
// connector.ErrSuperseded and context.Canceled.
func (e *Explorer) Search(ctx context.Context, req query.KeywordSearchRequest) (*connector.Result, error) {
	res, err := e.session.Search(ctx, req)
	return res, classify("Explorer.Search", e.Dialect(), err)
}

// CancelSearch aborts the Search in flight, if any.
func (e *Explorer) CancelSearch() {
	e.session.Cancel()
}

// FetchNeighbors expands a vertex to its one-hop neighbors.
func (e *Explorer) FetchNeighbors(ctx context.Context, req query.NeighborsRequest) (*connector.Result, error) {
	res, err := e.exec.FetchNeighbors(ctx, req)
	return res, classify("Explorer.FetchNeighbors", e.Dialect(), err)
}

// FetchNeighborsCount counts a vertex's distinct neighbors by type.
func (e *Explorer) FetchNeighborsCount(ctx context.Context, req query.NeighborsCountRequest) (*connector.Result, error) {
	res, err := e.exec.FetchNeighborsCount(ctx, req)
	return res, classify("Explorer.FetchNeighborsCount", e.Dialect(), err)
}

// FetchVertexTypeCount counts the vertices of one type. An empty type
// counts every vertex.
func (e *Explorer) FetchVertexTypeCount(ctx context.Context, vertexType string) (*connector.Result, error) {
	res, err := e.exec.FetchVertexTypeCount(ctx, vertexType)
	return res, classify("Explorer.FetchVertexTypeCount", e.Dialect(), err)
}

// FetchVertexTypeCounts counts the vertices of every type in parallel.
func (e *Explorer) FetchVertexTypeCounts(ctx context.Context, vertexTypes []string) (map[string]*connector.Result, error) {
	res, err := e.exec.FetchVertexTypeCounts(ctx, vertexTypes)
	return res, classify("Explorer.FetchVertexTypeCounts", e.Dialect(), err)
}

// FetchSubjectPredicates resolves SPARQL neighbor edges. Other dialects
// fail with a validation error.
func (e *Explorer) FetchSubjectPredicates(ctx context.Context, req query.SubjectPredicatesRequest) (*connector.Result, error) {
	res, err := e.exec.FetchSubjectPredicates(ctx, req)
	return res, classify("Explorer.FetchSubjectPredicates", e.Dialect(), err)
}

// Execute runs a named operation with a JSON request payload.
func (e *Explorer) Execute(ctx context.Context, operation string, payload []byte) (*connector.Result, error) {
	res, err := e.exec.Execute(ctx, operation, payload)
	return res, classify("Explorer.Execute", e.Dialect(), err)
}

// InvalidateCache drops every cached response, for example after the
// connection is pointed at another database. Without a cache it is a no-op.
func (e *Explorer) InvalidateCache(ctx context.Context) error {
	if e.cfg.cache == nil {
		return nil
	}
	if err := e.cfg.cache.Invalidate(ctx); err != nil {
		return NewExecutionError("Explorer.InvalidateCache", err)
	}
	return nil
}

// Close cancels any in-flight Search and closes a cache opened by
// NewFromConfig.
func (e *Explorer) Close() error {
	e.session.Cancel()
	if e.cfg.cache != nil && e.cfg.ownsCache {
		return e.cfg.cache.Close()
	}
	return nil
}
