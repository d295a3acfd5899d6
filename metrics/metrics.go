// Package metrics exposes OpenTelemetry metrics on a Prometheus /metrics
// endpoint.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdk "go.opentelemetry.io/otel/sdk/metric"
)

const (
	// MeterName is the instrumentation scope of graph-explorer metrics.
	MeterName = "github.com/ssheladiya/graph-explorer"

	// DefaultPort is the default Prometheus scrape port.
	DefaultPort = 2223

	shutdownTimeout = 10 * time.Second
)

// Exporter owns a meter provider whose readings are served to Prometheus.
type Exporter struct {
	provider *sdk.MeterProvider
	registry *prometheus.Registry
	logger   *slog.Logger
	server   *http.Server
}

// New creates an Exporter with its own Prometheus registry. When global is
// true the provider is also installed with otel.SetMeterProvider.
func New(global bool, logger *slog.Logger) (*Exporter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdk.NewMeterProvider(sdk.WithReader(exporter))
	if global {
		otel.SetMeterProvider(mp)
	}

	return &Exporter{provider: mp, registry: registry, logger: logger}, nil
}

// Meter returns the graph-explorer meter.
func (e *Exporter) Meter() metric.Meter {
	return e.provider.Meter(MeterName)
}

// Handler returns the /metrics handler.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve serves /metrics on lis in a background goroutine.
func (e *Exporter) Serve(lis net.Listener) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	e.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := e.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("failed to serve prometheus", "error", err)
		}
	}()
}

// ListenAndServe listens on port and serves /metrics in the background.
func (e *Exporter) ListenAndServe(port int) error {
	if port <= 0 {
		port = DefaultPort
	}
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", port, err)
	}
	e.logger.Info("serving prometheus metrics", "address", lis.Addr().String())
	e.Serve(lis)
	return nil
}

// Shutdown stops the HTTP server and flushes the meter provider.
func (e *Exporter) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if e.server != nil {
		errs = append(errs, e.server.Shutdown(ctx))
	}
	errs = append(errs, e.provider.Shutdown(ctx))
	return errors.Join(errs...)
}
