package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ssheladiya/graph-explorer/config"
	"github.com/ssheladiya/graph-explorer/connector"
	"github.com/ssheladiya/graph-explorer/query"
	"github.com/ssheladiya/graph-explorer/query/gremlin"
	"github.com/ssheladiya/graph-explorer/query/sparql"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// recordingFetcher answers every query with body and remembers the queries.
type recordingFetcher struct {
	mu      sync.Mutex
	body    string
	err     error
	queries []string
}

func (f *recordingFetcher) Fetch(_ context.Context, q string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func (f *recordingFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	assert.NotNil(t, cfg.logger)
	assert.True(t, cfg.dedupe)
	assert.Nil(t, cfg.cache)
	assert.Nil(t, cfg.tracer)
	assert.Nil(t, cfg.meter)
}

func TestOptions(t *testing.T) {
	cfg := defaultConfig()
	for _, opt := range []Option{
		WithLogger(quietLogger),
		WithDeduplication(false),
		WithCountConcurrency(8),
		WithLogger(nil),
	} {
		opt(cfg)
	}

	assert.Same(t, quietLogger, cfg.logger, "nil logger keeps the previous one")
	assert.False(t, cfg.dedupe)
	assert.Equal(t, 8, cfg.countConcurrency)
}

func TestNew_Validation(t *testing.T) {
	t.Run("nil fetcher", func(t *testing.T) {
		_, err := New(query.Gremlin, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.ErrorIs(t, err, &ExplorerError{Kind: KindConfiguration})
	})

	t.Run("unknown dialect", func(t *testing.T) {
		_, err := New(query.Dialect(9), &recordingFetcher{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedDialect)
		assert.ErrorIs(t, err, query.ErrUnknownDialect)
		assert.ErrorIs(t, err, &ExplorerError{Kind: KindValidation})
	})
}

func TestExplorer_Operations(t *testing.T) {
	f := &recordingFetcher{body: `[]`}
	exp, err := New(query.Gremlin, f, WithLogger(quietLogger))
	require.NoError(t, err)
	defer exp.Close()

	ctx := context.Background()
	assert.Equal(t, query.Gremlin, exp.Dialect())

	countReq := query.NeighborsCountRequest{VertexID: "124", Limit: 5}
	res, err := exp.FetchNeighborsCount(ctx, countReq)
	require.NoError(t, err)
	assert.Equal(t, gremlin.NeighborsCount(countReq), res.Query)
	assert.Equal(t, query.OpNeighborsCount, res.Operation)
	assert.JSONEq(t, `[]`, string(res.Body))

	res, err = exp.FetchVertexTypeCount(ctx, "airport")
	require.NoError(t, err)
	assert.Equal(t, gremlin.VertexTypeCount("airport"), res.Query)

	counts, err := exp.FetchVertexTypeCounts(ctx, []string{"airport", "country"})
	require.NoError(t, err)
	assert.Len(t, counts, 2)
	assert.Equal(t, gremlin.VertexTypeCount("country"), counts["country"].Query)

	searchReq := query.NewKeywordSearch("JFK").WithAttributes("code")
	res, err = exp.KeywordSearch(ctx, searchReq)
	require.NoError(t, err)
	assert.Equal(t, gremlin.KeywordSearch(searchReq), res.Query)

	neighborsReq := query.NewNeighbors("124").WithNeighborTypes("airport").WithPage(0, 10)
	res, err = exp.FetchNeighbors(ctx, neighborsReq)
	require.NoError(t, err)
	assert.Equal(t, gremlin.OneHopNeighbors(neighborsReq), res.Query)

	res, err = exp.Execute(ctx, query.OpVertexTypeCount, []byte(`{"vertexType":"route"}`))
	require.NoError(t, err)
	assert.Equal(t, gremlin.VertexTypeCount("route"), res.Query)
}

func TestExplorer_SPARQLTwoPass(t *testing.T) {
	f := &recordingFetcher{body: `{"results":{"bindings":[]}}`}
	exp, err := New(query.SPARQL, f, WithLogger(quietLogger))
	require.NoError(t, err)

	ctx := context.Background()
	neighbors := query.NewNeighbors("http://www.example.com/soccer/resource#EPL").WithPage(0, 10)
	_, err = exp.FetchNeighbors(ctx, neighbors)
	require.NoError(t, err)

	predicates := query.SubjectPredicatesRequest{
		ResourceURI: "http://www.example.com/soccer/resource#EPL",
		SubjectURIs: []string{"http://www.example.com/soccer/resource#Arsenal"},
	}
	res, err := exp.FetchSubjectPredicates(ctx, predicates)
	require.NoError(t, err)
	assert.Equal(t, sparql.SubjectPredicates(predicates), res.Query)
	assert.Equal(t, 2, f.calls())
}

func TestExplorer_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("error-shaped body", func(t *testing.T) {
		f := &recordingFetcher{body: `{"code":"MalformedQueryException","detailedMessage":"bad token"}`}
		exp, err := New(query.OpenCypher, f, WithLogger(quietLogger))
		require.NoError(t, err)

		_, err = exp.FetchNeighborsCount(ctx, query.NeighborsCountRequest{VertexID: "1"})
		require.Error(t, err)
		assert.ErrorIs(t, err, connector.ErrQueryFailed)
		assert.ErrorIs(t, err, ErrExecutionFailed)
		assert.ErrorIs(t, err, &ExplorerError{Op: "Explorer.FetchNeighborsCount", Kind: KindExecution})

		var qe *connector.QueryError
		require.True(t, errors.As(err, &qe))
		assert.Equal(t, "MalformedQueryException", qe.Code)
	})

	t.Run("transport failure", func(t *testing.T) {
		f := &recordingFetcher{err: errors.New("connection refused")}
		exp, err := New(query.Gremlin, f, WithLogger(quietLogger))
		require.NoError(t, err)

		_, err = exp.FetchVertexTypeCount(ctx, "")
		assert.ErrorIs(t, err, &ExplorerError{Kind: KindNetwork})
	})

	t.Run("subject predicates outside sparql", func(t *testing.T) {
		exp, err := New(query.Gremlin, &recordingFetcher{}, WithLogger(quietLogger))
		require.NoError(t, err)

		_, err = exp.FetchSubjectPredicates(ctx, query.SubjectPredicatesRequest{ResourceURI: "x"})
		assert.ErrorIs(t, err, connector.ErrUnsupportedOperation)
		assert.ErrorIs(t, err, &ExplorerError{Kind: KindValidation})
	})

	t.Run("malformed execute payload", func(t *testing.T) {
		f := &recordingFetcher{}
		exp, err := New(query.Gremlin, f, WithLogger(quietLogger))
		require.NoError(t, err)

		_, err = exp.Execute(ctx, query.OpNeighbors, []byte(`{"limit":"ten"}`))
		assert.ErrorIs(t, err, query.ErrInvalidRequest)
		assert.ErrorIs(t, err, &ExplorerError{Kind: KindValidation})
		assert.Zero(t, f.calls())
	})

	t.Run("deadline", func(t *testing.T) {
		blocking := connector.FetcherFunc(func(ctx context.Context, q string) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		exp, err := New(query.Gremlin, blocking, WithLogger(quietLogger))
		require.NoError(t, err)

		tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err = exp.KeywordSearch(tctx, query.NewKeywordSearch("x"))
		assert.ErrorIs(t, err, &ExplorerError{Kind: KindTimeout})
	})
}

func TestExplorer_SearchSupersedes(t *testing.T) {
	first := query.NewKeywordSearch("J").WithAttributes("code")
	second := query.NewKeywordSearch("JFK").WithAttributes("code")
	require.NotEqual(t, gremlin.KeywordSearch(first), gremlin.KeywordSearch(second))

	started := make(chan struct{}, 1)
	fetch := connector.FetcherFunc(func(ctx context.Context, q string) ([]byte, error) {
		if q == gremlin.KeywordSearch(first) {
			started <- struct{}{}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return nil, errors.New("first search was never cancelled")
			}
		}
		return []byte(`[]`), nil
	})

	exp, err := New(query.Gremlin, fetch, WithLogger(quietLogger))
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := exp.Search(context.Background(), first)
		errCh <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first search never reached the fetcher")
	}

	res, err := exp.Search(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, gremlin.KeywordSearch(second), res.Query)

	select {
	case err = <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("superseded search did not return")
	}
	assert.ErrorIs(t, err, connector.ErrSuperseded)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExplorer_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	exp, err := New(query.Gremlin, &recordingFetcher{body: `[]`},
		WithLogger(quietLogger), WithTracer(tp.Tracer("test")))
	require.NoError(t, err)

	_, err = exp.FetchVertexTypeCount(context.Background(), "airport")
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, connector.SpanFetch, spans[0].Name())
}

func TestNewFromConfig(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		_, err := NewFromConfig(&config.Config{Dialect: "gql"}, &recordingFetcher{})
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.ErrorIs(t, err, &ExplorerError{Kind: KindConfiguration})
	})

	t.Run("nil config defaults to gremlin", func(t *testing.T) {
		exp, err := NewFromConfig(nil, &recordingFetcher{}, WithLogger(quietLogger))
		require.NoError(t, err)
		defer exp.Close()
		assert.Equal(t, query.Gremlin, exp.Dialect())
		assert.NoError(t, exp.InvalidateCache(context.Background()))
	})

	t.Run("unreachable cache", func(t *testing.T) {
		cfg := &config.Config{Cache: &config.CacheConfig{Enabled: true, URL: "redis://localhost:99999"}}
		_, err := NewFromConfig(cfg, &recordingFetcher{})
		assert.ErrorIs(t, err, &ExplorerError{Kind: KindConfiguration})
	})

	t.Run("redis cache", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{
			Dialect: "sparql",
			Logging: &config.LoggingConfig{Level: "error"},
			Cache: &config.CacheConfig{
				Enabled: true,
				URL:     fmt.Sprintf("redis://%s", mr.Addr()),
				Prefix:  "ge-test",
			},
		}

		var fetches atomic.Int32
		fetch := connector.FetcherFunc(func(ctx context.Context, q string) ([]byte, error) {
			fetches.Add(1)
			return []byte(`{"results":{"bindings":[]}}`), nil
		})

		exp, err := NewFromConfig(cfg, fetch)
		require.NoError(t, err)
		assert.Equal(t, query.SPARQL, exp.Dialect())

		ctx := context.Background()
		for i := 0; i < 3; i++ {
			_, err := exp.FetchVertexTypeCount(ctx, "http://www.example.com/soccer/ontology/Team")
			require.NoError(t, err)
		}
		assert.Equal(t, int32(1), fetches.Load())
		assert.NotEmpty(t, mr.Keys())

		require.NoError(t, exp.InvalidateCache(ctx))
		assert.Empty(t, mr.Keys())

		_, err = exp.FetchVertexTypeCount(ctx, "http://www.example.com/soccer/ontology/Team")
		require.NoError(t, err)
		assert.Equal(t, int32(2), fetches.Load())

		require.NoError(t, exp.Close())
	})
}
