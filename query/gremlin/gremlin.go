// Package gremlin compiles query requests into Gremlin traversal strings.
//
// Output is compact: no whitespace is emitted between steps, so compiled
// traversals can be compared byte for byte.
package gremlin

import (
	"math"
	"strconv"
	"strings"

	"github.com/ssheladiya/graph-explorer/query"
)

// Builder implements query.Builder for Gremlin.
type Builder struct{}

var _ query.Builder = Builder{}

// New returns a Gremlin builder.
func New() Builder {
	return Builder{}
}

// Dialect returns query.Gremlin.
func (Builder) Dialect() query.Dialect {
	return query.Gremlin
}

// KeywordSearch compiles req with KeywordSearch.
func (Builder) KeywordSearch(req query.KeywordSearchRequest) string {
	return KeywordSearch(req)
}

// OneHopNeighbors compiles req with OneHopNeighbors.
func (Builder) OneHopNeighbors(req query.NeighborsRequest) string {
	return OneHopNeighbors(req)
}

// NeighborsCount compiles req with NeighborsCount.
func (Builder) NeighborsCount(req query.NeighborsCountRequest) string {
	return NeighborsCount(req)
}

// VertexTypeCount compiles a count of vertices labelled vertexType.
func (Builder) VertexTypeCount(vertexType string) string {
	return VertexTypeCount(vertexType)
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EscapeString escapes backslashes and double quotes so s can sit inside a
// "..." literal.
func EscapeString(s string) string {
	return literalEscaper.Replace(s)
}

// quote returns s as an escaped string literal.
func quote(s string) string {
	return `"` + EscapeString(s) + `"`
}

// IDParam renders a vertex identifier as a string literal.
func IDParam(id string) string {
	return quote(id)
}

// hasLabel renders a hasLabel step with one argument per label, or nothing
// when labels is empty.
func hasLabel(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	args := make([]string, len(labels))
	for i, l := range labels {
		args[i] = quote(l)
	}
	return ".hasLabel(" + strings.Join(args, ",") + ")"
}

// rangeStep renders the pagination window [offset, offset+limit). A zero
// limit disables pagination whatever the offset. The end saturates at
// math.MaxInt.
func rangeStep(offset, limit int) string {
	if limit <= 0 {
		return ""
	}
	end := math.MaxInt
	if limit <= math.MaxInt-offset {
		end = offset + limit
	}
	return ".range(" + strconv.Itoa(offset) + "," + strconv.Itoa(end) + ")"
}

// predicate renders the value side of a has() step.
func predicate(value string, exact bool) string {
	if exact {
		return quote(value)
	}
	return "containing(" + quote(value) + ")"
}
