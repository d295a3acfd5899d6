package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ssheladiya/graph-explorer/query"
	"github.com/ssheladiya/graph-explorer/query/builders"
)

// CompilerServiceName is the fully qualified gRPC service name.
const CompilerServiceName = "graphexplorer.v1.QueryCompiler"

const compileMethod = "/" + CompilerServiceName + "/Compile"

// Field names of the Compile request and response structs.
const (
	FieldDialect   = "dialect"
	FieldOperation = "operation"
	FieldRequest   = "request"
	FieldQuery     = "query"
)

// CompilerServer is the server API of the QueryCompiler service.
type CompilerServer interface {
	Compile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// RegisterCompilerServer registers srv on s.
func RegisterCompilerServer(s grpc.ServiceRegistrar, srv CompilerServer) {
	s.RegisterService(&compilerServiceDesc, srv)
}

var compilerServiceDesc = grpc.ServiceDesc{
	ServiceName: CompilerServiceName,
	HandlerType: (*CompilerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Compile", Handler: compileHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "graphexplorer/v1/compiler.proto",
}

func compileHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CompilerServer).Compile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: compileMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CompilerServer).Compile(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Compile metric names.
const (
	MetricCompileCount    = "graphexplorer.compile.count"
	MetricCompileDuration = "graphexplorer.compile.duration"
)

type compileMetrics struct {
	count    metric.Int64Counter
	duration metric.Float64Histogram
}

func newCompileMetrics(meter metric.Meter) (*compileMetrics, error) {
	if meter == nil {
		return nil, nil
	}

	m := &compileMetrics{}
	var err error

	m.count, err = meter.Int64Counter(
		MetricCompileCount,
		metric.WithDescription("Number of Compile requests served"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create compile counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		MetricCompileDuration,
		metric.WithDescription("Compile request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create compile histogram: %w", err)
	}

	return m, nil
}

type compiler struct {
	logger  *slog.Logger
	metrics *compileMetrics
}

// NewCompiler returns a CompilerServer backed by the dialect builders. A nil
// meter records no metrics.
func NewCompiler(logger *slog.Logger, meter metric.Meter) (CompilerServer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	metrics, err := newCompileMetrics(meter)
	if err != nil {
		return nil, err
	}
	return &compiler{logger: logger, metrics: metrics}, nil
}

// Compile resolves the dialect, decodes the request object and returns the
// compiled query text. Unknown dialects and malformed requests are
// InvalidArgument; unknown operations are Unimplemented.
func (c *compiler) Compile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	start := time.Now()
	fields := in.GetFields()
	dialectName := fields[FieldDialect].GetStringValue()
	operation := fields[FieldOperation].GetStringValue()

	out, err := c.compile(ctx, fields)
	elapsed := time.Since(start)

	if c.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		if d, perr := query.ParseDialect(dialectName); perr == nil {
			dialectName = d.String()
		} else {
			dialectName = "unknown"
		}
		attrs := metric.WithAttributes(
			attribute.String("dialect", dialectName),
			attribute.String("operation", operation),
			attribute.String("outcome", outcome),
		)
		c.metrics.count.Add(ctx, 1, attrs)
		c.metrics.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}

	return out, err
}

func (c *compiler) compile(ctx context.Context, fields map[string]*structpb.Value) (*structpb.Struct, error) {
	start := time.Now()

	dialect, err := query.ParseDialect(fields[FieldDialect].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	operation := fields[FieldOperation].GetStringValue()

	var payload []byte
	if req, ok := fields[FieldRequest]; ok {
		if _, isObject := req.GetKind().(*structpb.Value_StructValue); !isObject {
			return nil, status.Errorf(codes.InvalidArgument, "%s must be an object", FieldRequest)
		}
		payload, err = json.Marshal(req.AsInterface())
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "encode request: %v", err)
		}
	}

	q, err := builders.Compile(dialect, operation, payload)
	if err != nil {
		code := codes.InvalidArgument
		if errors.Is(err, query.ErrUnknownOperation) {
			code = codes.Unimplemented
		}
		c.logger.DebugContext(ctx, "compile rejected", "dialect", dialect.String(), "operation", operation, "error", err)
		return nil, status.Error(code, err.Error())
	}

	c.logger.DebugContext(ctx, "compiled query",
		"dialect", dialect.String(),
		"operation", operation,
		"query_length", len(q),
		"duration", time.Since(start),
	)

	return structpb.NewStruct(map[string]any{
		FieldDialect:   dialect.String(),
		FieldOperation: operation,
		FieldQuery:     q,
	})
}
