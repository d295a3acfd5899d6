package cache

import (
	"context"
	"log/slog"

	"github.com/ssheladiya/graph-explorer/connector"
	"github.com/ssheladiya/graph-explorer/query"
)

// Wrap returns a Fetcher that serves cached responses for dialect and
// stores successful responses from f. Error-shaped bodies are never stored.
func Wrap(c Cache, f connector.Fetcher, dialect query.Dialect, logger *slog.Logger) connector.Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	return connector.FetcherFunc(func(ctx context.Context, q string) ([]byte, error) {
		body, ok, err := c.Get(ctx, dialect, q)
		switch {
		case err != nil:
			logger.Warn("cache read failed, querying backend", "dialect", dialect.String(), "error", err)
		case ok:
			logger.Debug("cache hit", "dialect", dialect.String())
			return body, nil
		}

		body, err = f.Fetch(ctx, q)
		if err != nil {
			return nil, err
		}
		if connector.CheckResponse(body) != nil {
			return body, nil
		}

		if err := c.Set(ctx, dialect, q, body); err != nil {
			logger.Warn("cache write failed", "dialect", dialect.String(), "error", err)
		}
		return body, nil
	})
}
