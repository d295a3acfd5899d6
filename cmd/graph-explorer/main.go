// Command graph-explorer compiles graph exploration queries and serves the
// compilers over gRPC or MCP.
//
// Usage:
//
//	graph-explorer compile -dialect sparql -op neighbors -request '{"vertexId":"http://ex.com/r#a"}'
//	graph-explorer serve -config ./graph-explorer.yaml
//	graph-explorer mcp -dialect openCypher
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ssheladiya/graph-explorer/config"
	"github.com/ssheladiya/graph-explorer/mcp"
	"github.com/ssheladiya/graph-explorer/metrics"
	"github.com/ssheladiya/graph-explorer/query"
	"github.com/ssheladiya/graph-explorer/query/builders"
	"github.com/ssheladiya/graph-explorer/registry"
	"github.com/ssheladiya/graph-explorer/serve"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	var err error
	switch args[0] {
	case "compile":
		err = runCompile(args[1:], stdin, stdout, stderr)
	case "serve":
		err = runServe(args[1:], stderr)
	case "mcp":
		err = runMCP(args[1:], stderr)
	case "version", "--version":
		fmt.Fprintln(stdout, "graph-explorer", version)
	case "help", "-h", "--help":
		usage(stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	default:
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: graph-explorer <command> [flags]

commands:
  compile   print the query for one operation
  serve     run the gRPC compiler server
  mcp       serve the compilers as MCP tools over stdio
  version   print the version`)
}

// loadConfig loads path, or searches the working directory and its parents
// when path is empty. A missing file yields the empty configuration.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
		if errors.Is(err, config.ErrNotFound) {
			cfg, err = &config.Config{}, nil
		}
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveDialect prefers the flag value over the configured dialect.
func resolveDialect(flagValue string, cfg *config.Config) (query.Dialect, error) {
	if flagValue != "" {
		return query.ParseDialect(flagValue)
	}
	return cfg.GetDialect()
}

func runCompile(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to graph-explorer.yaml or its directory")
	dialectName := fs.String("dialect", "", "Query dialect: gremlin, openCypher or sparql")
	operation := fs.String("op", "", "Operation: "+strings.Join(operations(), ", "))
	request := fs.String("request", "", "JSON request object, or - to read it from stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *operation == "" {
		return errors.New("-op is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	dialect, err := resolveDialect(*dialectName, cfg)
	if err != nil {
		return err
	}

	payload := []byte(*request)
	if *request == "-" {
		payload, err = io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
	}

	q, err := builders.Compile(dialect, *operation, payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, q)
	return err
}

func operations() []string {
	return []string{
		query.OpKeywordSearch,
		query.OpNeighbors,
		query.OpNeighborsCount,
		query.OpVertexTypeCount,
		query.OpSubjectPredicates,
	}
}

func runServe(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to graph-explorer.yaml or its directory")
	port := fs.Int("port", 0, "Override the configured gRPC port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.Logging, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []serve.Option{
		serve.WithLogger(logger),
		serve.WithVersion(version),
		serve.WithGracefulShutdown(cfg.Server.GetGracefulTimeout()),
		serve.WithTLS(tlsFiles(cfg.Server)),
	}

	if cfg.Metrics.IsEnabled() {
		exp, err := metrics.New(true, logger)
		if err != nil {
			return err
		}
		if err := exp.ListenAndServe(cfg.Metrics.GetPrometheusPort()); err != nil {
			return err
		}
		defer shutdownMetrics(exp, logger)
		opts = append(opts, serve.WithMeter(exp.Meter()))
	}

	if *port > 0 {
		opts = append(opts, serve.WithPort(*port))
	} else {
		opts = append(opts, serve.WithPort(cfg.Server.GetPort()))
	}

	if cfg.Registry.IsEnabled() {
		reg, err := registry.NewClient(registry.Config{
			Endpoints: cfg.Registry.Endpoints,
			Namespace: cfg.Registry.GetNamespace(),
			TTL:       int(cfg.Registry.GetTTL()),
		}, logger)
		if err != nil {
			logger.Warn("registry unavailable, continuing unregistered", "error", err)
		} else {
			defer reg.Close()
			opts = append(opts, serve.WithRegistry(reg))
		}
	} else {
		opts = append(opts, serve.WithRegistryFromEnv())
	}

	err = serve.Compiler(ctx, opts...)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func tlsFiles(s *config.ServerConfig) (string, string) {
	if s == nil {
		return "", ""
	}
	return s.TLSCertFile, s.TLSKeyFile
}

func shutdownMetrics(exp *metrics.Exporter, logger *slog.Logger) {
	if err := exp.Shutdown(context.Background()); err != nil {
		logger.Warn("failed to shut down metrics exporter", "error", err)
	}
}

func runMCP(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to graph-explorer.yaml or its directory")
	dialectName := fs.String("dialect", "", "Default query dialect for the tools")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	dialect, err := resolveDialect(*dialectName, cfg)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.Logging, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("serving MCP tools over stdio", "dialect", dialect.String())
	return mcp.Serve(ctx, mcp.NewServer(dialect, version, logger))
}
