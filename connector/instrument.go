package connector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ssheladiya/graph-explorer/query"
)

// Instrumentation names.
const (
	SpanFetch          = "graphexplorer.fetch"
	MetricFetchCount   = "graphexplorer.fetch.count"
	MetricFetchLatency = "graphexplorer.fetch.duration"
)

// InstrumentOptions configures Instrument. Nil Tracer or Meter disables
// that signal; a nil Logger uses slog.Default().
type InstrumentOptions struct {
	Tracer  trace.Tracer
	Meter   metric.Meter
	Logger  *slog.Logger
	Dialect query.Dialect
}

type fetchMetrics struct {
	count    metric.Int64Counter
	duration metric.Float64Histogram
}

func newFetchMetrics(meter metric.Meter) (*fetchMetrics, error) {
	if meter == nil {
		return nil, nil
	}

	m := &fetchMetrics{}
	var err error

	m.count, err = meter.Int64Counter(
		MetricFetchCount,
		metric.WithDescription("Number of queries sent to the graph database"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fetch counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		MetricFetchLatency,
		metric.WithDescription("Query round-trip duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fetch histogram: %w", err)
	}

	return m, nil
}

// Instrument wraps f with a span per fetch, fetch count and latency
// metrics, and structured log lines carrying a per-fetch request id.
//
// Error-shaped response bodies count as failures even though f succeeded.
func Instrument(f Fetcher, opts InstrumentOptions) (Fetcher, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := newFetchMetrics(opts.Meter)
	if err != nil {
		return nil, err
	}

	dialect := opts.Dialect.String()

	return FetcherFunc(func(ctx context.Context, q string) ([]byte, error) {
		requestID := uuid.New().String()

		var span trace.Span
		if opts.Tracer != nil {
			ctx, span = opts.Tracer.Start(ctx, SpanFetch)
			defer span.End()
			span.SetAttributes(
				attribute.String("graphexplorer.dialect", dialect),
				attribute.String("graphexplorer.request_id", requestID),
				attribute.Int("graphexplorer.query_length", len(q)),
			)
		}

		logger.Debug("fetching", "request_id", requestID, "dialect", dialect)

		start := time.Now()
		body, err := f.Fetch(ctx, q)
		elapsed := time.Since(start)
		if err == nil {
			err = CheckResponse(body)
		}

		outcome := "success"
		if err != nil {
			outcome = "error"
			logger.Error("fetch failed",
				"request_id", requestID,
				"dialect", dialect,
				"duration_ms", elapsed.Milliseconds(),
				"error", err)
			if span != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
		} else {
			logger.Debug("fetched",
				"request_id", requestID,
				"dialect", dialect,
				"duration_ms", elapsed.Milliseconds(),
				"bytes", len(body))
			if span != nil {
				span.SetAttributes(attribute.Int("graphexplorer.response_bytes", len(body)))
				span.SetStatus(codes.Ok, "")
			}
		}

		if metrics != nil {
			attrs := metric.WithAttributes(
				attribute.String("dialect", dialect),
				attribute.String("outcome", outcome),
			)
			metrics.count.Add(ctx, 1, attrs)
			metrics.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
		}

		if _, ok := err.(*QueryError); ok {
			// The body itself is returned; the executor reports the query error.
			return body, nil
		}
		return body, err
	}), nil
}
