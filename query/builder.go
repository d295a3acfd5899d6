package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Builder compiles request value objects into query text for one dialect.
//
// Implementations are pure: they hold no mutable state, perform no I/O and
// return byte-identical output for identical requests. They never fail; input
// well-formedness beyond quote escaping is the caller's responsibility.
type Builder interface {
	// Dialect returns the query language produced by the builder.
	Dialect() Dialect

	// KeywordSearch compiles a vertex search by attribute values.
	KeywordSearch(req KeywordSearchRequest) string

	// OneHopNeighbors compiles a one-hop neighbor expansion.
	OneHopNeighbors(req NeighborsRequest) string

	// NeighborsCount compiles a per-type count of a vertex's neighbors.
	NeighborsCount(req NeighborsCountRequest) string

	// VertexTypeCount compiles a count of vertices of one type.
	VertexTypeCount(vertexType string) string
}

// Operation names accepted by Compile.
const (
	OpKeywordSearch     = "keywordSearch"
	OpNeighbors         = "neighbors"
	OpNeighborsCount    = "neighborsCount"
	OpVertexTypeCount   = "vertexTypeCount"
	OpSubjectPredicates = "subjectPredicates"
)

// SubjectPredicatesBuilder is implemented by dialects that resolve edges in a
// second pass over already discovered neighbors.
type SubjectPredicatesBuilder interface {
	SubjectPredicates(req SubjectPredicatesRequest) string
}

// VertexTypeCountRequest is the payload of the vertexTypeCount operation.
type VertexTypeCountRequest struct {
	VertexType string `json:"vertexType"`
}

// Compile decodes a JSON payload for the named operation and compiles it with b.
// An empty payload is treated as the empty request.
func Compile(b Builder, operation string, payload []byte) (string, error) {
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	switch operation {
	case OpKeywordSearch:
		var req KeywordSearchRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return "", fmt.Errorf("%w: decode %s request: %w", ErrInvalidRequest, operation, err)
		}
		return b.KeywordSearch(req), nil
	case OpNeighbors:
		var req NeighborsRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return "", fmt.Errorf("%w: decode %s request: %w", ErrInvalidRequest, operation, err)
		}
		return b.OneHopNeighbors(req), nil
	case OpNeighborsCount:
		var req NeighborsCountRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return "", fmt.Errorf("%w: decode %s request: %w", ErrInvalidRequest, operation, err)
		}
		return b.NeighborsCount(req), nil
	case OpVertexTypeCount:
		var req VertexTypeCountRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return "", fmt.Errorf("%w: decode %s request: %w", ErrInvalidRequest, operation, err)
		}
		return b.VertexTypeCount(req.VertexType), nil
	case OpSubjectPredicates:
		sp, ok := b.(SubjectPredicatesBuilder)
		if !ok {
			return "", fmt.Errorf("%w: %s is not supported by %s", ErrUnknownOperation, operation, b.Dialect())
		}
		var req SubjectPredicatesRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return "", fmt.Errorf("%w: decode %s request: %w", ErrInvalidRequest, operation, err)
		}
		return sp.SubjectPredicates(req), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, operation)
	}
}

// Normalize collapses every run of whitespace to a single space and trims the
// result. Two compiled queries are equivalent when their normalised forms are
// equal.
func Normalize(q string) string {
	return strings.Join(strings.Fields(q), " ")
}
