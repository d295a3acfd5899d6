// Package connector executes compiled queries against a graph database
// through a caller-supplied transport.
//
// The package never opens connections itself. A Fetcher sends query text to
// a backend and returns the raw response body; the Executor compiles requests
// with a query.Builder, hands the text to the Fetcher and rejects
// error-shaped responses. Decorators add request collapsing (Dedupe),
// tracing and metrics (Instrument). The cache package adds response caching.
//
// Mapping raw bodies into vertices and edges is left to the caller.
package connector

import (
	"context"
	"errors"
)

var (
	// ErrQueryFailed is wrapped by every QueryError.
	ErrQueryFailed = errors.New("query failed")

	// ErrUnsupportedOperation is returned when the configured dialect cannot
	// compile the requested operation.
	ErrUnsupportedOperation = errors.New("operation not supported by dialect")

	// ErrSuperseded is returned to a search cancelled by a newer one.
	ErrSuperseded = errors.New("search superseded")
)

// Fetcher sends query text to a graph database and returns the raw response.
//
// Implementations must honour ctx cancellation and be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, query string) ([]byte, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, query string) ([]byte, error)

// Fetch calls f(ctx, query).
func (f FetcherFunc) Fetch(ctx context.Context, query string) ([]byte, error) {
	return f(ctx, query)
}
