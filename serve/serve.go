package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ssheladiya/graph-explorer/query"
	"github.com/ssheladiya/graph-explorer/registry"
)

const deregisterTimeout = 5 * time.Second

// Config holds serve configuration.
type Config struct {
	// Port is the TCP port on which the gRPC server listens. Port 0 picks a
	// free port. Ignored when Listener is set.
	// Default: 50051
	Port int

	// Listener, when set, is served instead of opening Port.
	Listener net.Listener

	// GracefulTimeout is the maximum duration to wait for active requests
	// to complete during graceful shutdown.
	// Default: 30 seconds
	GracefulTimeout time.Duration

	// TLSCertFile and TLSKeyFile enable TLS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// Registry, when set, receives this instance on Serve and loses it on
	// shutdown.
	Registry registry.Registry

	// ownsRegistry is set when the server created Registry itself and
	// must close it on shutdown.
	ownsRegistry bool

	// Name and Version describe the instance in the registry.
	// Defaults: "graph-explorer", "dev"
	Name    string
	Version string

	// AdvertiseHost is the host part of the registered endpoint.
	// Default: "localhost"
	AdvertiseHost string

	// Logger receives lifecycle and request logs. Default: slog.Default()
	Logger *slog.Logger

	// Meter records Compile counts and durations. Nil disables metrics.
	Meter metric.Meter
}

// DefaultConfig returns default serve configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:            50051,
		GracefulTimeout: 30 * time.Second,
		Name:            "graph-explorer",
		Version:         "dev",
		AdvertiseHost:   "localhost",
	}
}

// applyDefaults fills the fields a partial Config leaves empty. Port is
// left alone since 0 selects a free port.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.GracefulTimeout <= 0 {
		c.GracefulTimeout = def.GracefulTimeout
	}
	if c.Name == "" {
		c.Name = def.Name
	}
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.AdvertiseHost == "" {
		c.AdvertiseHost = def.AdvertiseHost
	}
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Server wraps a gRPC server hosting the query compiler.
type Server struct {
	grpcServer   *grpc.Server
	listener     net.Listener
	config       *Config
	healthServer *health.Server
	logger       *slog.Logger
}

// NewServer creates a gRPC server, registers the compiler and health
// services on it and starts listening. Options are applied on top of cfg, or
// on top of DefaultConfig when cfg is nil.
func NewServer(cfg *Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.applyDefaults()

	listener := cfg.Listener
	if listener == nil {
		var err error
		listener, err = net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
		if err != nil {
			return nil, fmt.Errorf("failed to listen on port %d: %w", cfg.Port, err)
		}
	}

	var serverOpts []grpc.ServerOption
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			listener.Close()
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
	}

	logger := cfg.logger()
	compilerServer, err := NewCompiler(logger, cfg.Meter)
	if err != nil {
		listener.Close()
		return nil, err
	}
	grpcServer := grpc.NewServer(serverOpts...)
	RegisterCompilerServer(grpcServer, compilerServer)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(CompilerServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		grpcServer:   grpcServer,
		listener:     listener,
		config:       cfg,
		healthServer: healthServer,
		logger:       logger,
	}, nil
}

// Compiler creates a server from DefaultConfig and opts and serves it until
// ctx is cancelled or a termination signal arrives.
func Compiler(ctx context.Context, opts ...Option) error {
	srv, err := NewServer(nil, opts...)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// GRPCServer returns the underlying gRPC server.
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpcServer
}

// HealthServer returns the health check server.
func (s *Server) HealthServer() *health.Server {
	return s.healthServer
}

// Serve starts the gRPC server and blocks until shutdown.
// It handles graceful shutdown on SIGINT/SIGTERM signals and on ctx
// cancellation, in which case ctx.Err() is returned.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.grpcServer.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	s.logger.Info("compiler server listening", "address", s.listener.Addr().String())

	info, registered := s.register(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var result error
	select {
	case <-ctx.Done():
		result = ctx.Err()
	case sig := <-sigCh:
		s.logger.Info("received signal, shutting down gracefully", "signal", sig.String())
	case err := <-errCh:
		result = err
	}

	if registered {
		s.deregister(info)
	}
	s.GracefulStop()
	if s.config.ownsRegistry {
		if err := s.config.Registry.Close(); err != nil {
			s.logger.Warn("failed to close registry", "error", err)
		}
	}
	return result
}

func (s *Server) register(ctx context.Context) (registry.ServiceInfo, bool) {
	if s.config.Registry == nil {
		return registry.ServiceInfo{}, false
	}

	endpoint := fmt.Sprintf("%s:%d", s.config.AdvertiseHost, s.Port())
	info := registry.NewServiceInfo(s.config.Name, s.config.Version, endpoint)
	info.Metadata["dialects"] = dialectList()

	if err := s.config.Registry.Register(ctx, info); err != nil {
		s.logger.Warn("service registration failed, continuing unregistered", "error", err)
		return info, false
	}
	return info, true
}

func (s *Server) deregister(info registry.ServiceInfo) {
	ctx, cancel := context.WithTimeout(context.Background(), deregisterTimeout)
	defer cancel()
	if err := s.config.Registry.Deregister(ctx, info); err != nil {
		s.logger.Warn("service deregistration failed", "error", err)
	}
}

func dialectList() string {
	names := make([]string, 0, len(query.AllDialects()))
	for _, d := range query.AllDialects() {
		names = append(names, d.String())
	}
	return strings.Join(names, ",")
}

// Stop immediately stops the gRPC server.
func (s *Server) Stop() {
	s.healthServer.Shutdown()
	s.grpcServer.Stop()
}

// GracefulStop stops accepting new connections and waits for active RPCs
// for at most GracefulTimeout before forcing the server down.
func (s *Server) GracefulStop() {
	s.healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.GracefulTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("server stopped gracefully")
	case <-ctx.Done():
		s.logger.Warn("graceful shutdown timeout, forcing stop")
		s.grpcServer.Stop()
	}
}

// Port returns the port the server is listening on.
// This is useful when using port 0 to get an available port.
func (s *Server) Port() int {
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return s.config.Port
}
