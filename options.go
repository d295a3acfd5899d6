package explorer

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ssheladiya/graph-explorer/cache"
)

// Option configures an Explorer.
type Option func(*explorerConfig)

// explorerConfig holds configuration for an Explorer instance.
type explorerConfig struct {
	logger           *slog.Logger
	tracer           trace.Tracer
	meter            metric.Meter
	cache            cache.Cache
	ownsCache        bool
	dedupe           bool
	countConcurrency int
}

func defaultConfig() *explorerConfig {
	return &explorerConfig{
		logger: slog.Default(),
		dedupe: true,
	}
}

// WithLogger sets a custom logger.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *explorerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer records one span per database round trip.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *explorerConfig) {
		c.tracer = tracer
	}
}

// WithMeter records fetch count and latency metrics.
func WithMeter(meter metric.Meter) Option {
	return func(c *explorerConfig) {
		c.meter = meter
	}
}

// WithCache serves repeated queries from c. The caller keeps ownership of c.
func WithCache(c cache.Cache) Option {
	return func(cfg *explorerConfig) {
		cfg.cache = c
		cfg.ownsCache = false
	}
}

// WithDeduplication collapses concurrent identical queries into one
// database round trip. Enabled by default.
func WithDeduplication(enabled bool) Option {
	return func(c *explorerConfig) {
		c.dedupe = enabled
	}
}

// WithCountConcurrency bounds the parallel fetches of FetchVertexTypeCounts.
func WithCountConcurrency(n int) Option {
	return func(c *explorerConfig) {
		c.countConcurrency = n
	}
}
