package serve

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ssheladiya/graph-explorer/query"
)

// CompilerClient calls a remote QueryCompiler service.
type CompilerClient struct {
	cc grpc.ClientConnInterface
}

// NewCompilerClient wraps an established connection.
func NewCompilerClient(cc grpc.ClientConnInterface) *CompilerClient {
	return &CompilerClient{cc: cc}
}

// Compile asks the server to compile operation in dialect d. req is any
// value that encodes to the operation's JSON request object, typically one
// of the query request types; nil sends the empty request.
func (c *CompilerClient) Compile(ctx context.Context, d query.Dialect, operation string, req any, opts ...grpc.CallOption) (string, error) {
	fields := map[string]any{
		FieldDialect:   d.String(),
		FieldOperation: operation,
	}
	if req != nil {
		object, err := toObject(req)
		if err != nil {
			return "", err
		}
		fields[FieldRequest] = object
	}

	in, err := structpb.NewStruct(fields)
	if err != nil {
		return "", fmt.Errorf("build compile request: %w", err)
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, compileMethod, in, out, opts...); err != nil {
		return "", err
	}
	return out.GetFields()[FieldQuery].GetStringValue(), nil
}

// toObject round-trips req through JSON so that structpb receives only
// maps, slices and scalars.
func toObject(req any) (map[string]any, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	var object map[string]any
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, fmt.Errorf("request must encode to a JSON object: %w", err)
	}
	return object, nil
}
