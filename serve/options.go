package serve

import (
	"log/slog"
	"net"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/ssheladiya/graph-explorer/registry"
)

// Option is a functional option for configuring a Server.
type Option func(*Config)

// WithPort sets the TCP port for the gRPC server.
// Use port 0 to automatically select an available port.
func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithListener serves on lis instead of opening a TCP port.
func WithListener(lis net.Listener) Option {
	return func(c *Config) {
		c.Listener = lis
	}
}

// WithGracefulShutdown sets the maximum duration to wait for active
// requests to complete during graceful shutdown.
//
// Example:
//
//	serve.Compiler(ctx, serve.WithGracefulShutdown(60*time.Second))
func WithGracefulShutdown(timeout time.Duration) Option {
	return func(c *Config) {
		c.GracefulTimeout = timeout
	}
}

// WithTLS enables TLS. If either path is empty, TLS stays disabled.
//
// Example:
//
//	serve.Compiler(ctx, serve.WithTLS("/etc/certs/server.crt", "/etc/certs/server.key"))
func WithTLS(certFile, keyFile string) Option {
	return func(c *Config) {
		c.TLSCertFile = certFile
		c.TLSKeyFile = keyFile
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMeter records Compile request counts and durations on meter.
func WithMeter(meter metric.Meter) Option {
	return func(c *Config) {
		c.Meter = meter
	}
}

// WithVersion sets the version reported to the registry.
func WithVersion(version string) Option {
	return func(c *Config) {
		c.Version = version
	}
}

// WithAdvertiseHost sets the host part of the registered endpoint.
func WithAdvertiseHost(host string) Option {
	return func(c *Config) {
		c.AdvertiseHost = host
	}
}

// WithRegistry enables automatic service registration. The server registers
// after it starts serving and deregisters during graceful shutdown. The
// caller keeps ownership of reg and closes it.
//
// Example:
//
//	reg, _ := registry.NewClient(registry.Config{Endpoints: endpoints}, logger)
//	defer reg.Close()
//	serve.Compiler(ctx, serve.WithRegistry(reg))
func WithRegistry(reg registry.Registry) Option {
	return func(c *Config) {
		c.Registry = reg
	}
}

// WithRegistryFromEnv creates a registry client from the
// GRAPH_EXPLORER_REGISTRY_ENDPOINTS environment variable. If the variable is
// unset, or the client cannot connect, registration is skipped and the
// server still runs.
//
// Apply it after WithLogger so that connection failures are logged there.
func WithRegistryFromEnv() Option {
	return func(c *Config) {
		client, err := registry.NewClientFromEnv(c.Logger)
		if err != nil {
			c.logger().Warn("registry unavailable, continuing unregistered", "error", err)
			return
		}
		if client != nil {
			c.Registry = client
			c.ownsRegistry = true
		}
	}
}
