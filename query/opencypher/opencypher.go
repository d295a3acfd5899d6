// Package opencypher compiles query requests into openCypher statements.
//
// Statements are emitted one clause per line. Callers comparing statements
// should use query.Normalize.
//
// Vertex identifiers are always compared as quoted string literals
// (WHERE ID(v) = "12"), never as native ID parameters. Labels and property
// keys are backtick-quoted so that names containing spaces or punctuation
// survive interpolation.
package opencypher

import (
	"strconv"
	"strings"

	"github.com/ssheladiya/graph-explorer/query"
)

// Builder implements query.Builder for openCypher.
type Builder struct{}

var _ query.Builder = Builder{}

// New returns an openCypher builder.
func New() Builder {
	return Builder{}
}

// Dialect returns query.OpenCypher.
func (Builder) Dialect() query.Dialect {
	return query.OpenCypher
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

func quote(s string) string {
	return `"` + EscapeString(s) + `"`
}

// IDParam renders a vertex identifier as a string literal.
func IDParam(id string) string {
	return quote(id)
}

// QuoteIdentifier backtick-quotes a label or property key, doubling any
// embedded backtick.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// nodePattern renders a node pattern for variable. A single label is inlined
// into the pattern; several labels are left to labelPredicate.
func nodePattern(variable string, labels []string) string {
	if len(labels) == 1 {
		return "(" + variable + ":" + QuoteIdentifier(labels[0]) + ")"
	}
	return "(" + variable + ")"
}

// labelPredicate renders a disjunction of label tests when more than one
// label is given, or "" otherwise.
func labelPredicate(variable string, labels []string) string {
	if len(labels) < 2 {
		return ""
	}
	tests := make([]string, len(labels))
	for i, l := range labels {
		tests[i] = variable + ":" + QuoteIdentifier(l)
	}
	return "(" + strings.Join(tests, " OR ") + ")"
}

// property renders variable.`key`.
func property(variable, key string) string {
	return variable + "." + QuoteIdentifier(key)
}

// comparison renders a single attribute test for op.
func comparison(lhs string, op query.Operator, value string) string {
	switch op {
	case query.Equals:
		return lhs + " = " + quote(value)
	case query.Like:
		return "toLower(" + lhs + ") CONTAINS toLower(" + quote(value) + ")"
	default:
		return lhs + " CONTAINS " + quote(value)
	}
}

// page renders the SKIP/LIMIT clause. A zero limit disables pagination
// whatever the offset.
func page(offset, limit int) string {
	if limit <= 0 {
		return ""
	}
	if offset <= 0 {
		return "LIMIT " + strconv.Itoa(limit)
	}
	return "SKIP " + strconv.Itoa(offset) + " LIMIT " + strconv.Itoa(limit)
}

// statement joins the non-empty clauses with newlines.
func statement(clauses ...string) string {
	lines := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c != "" {
			lines = append(lines, c)
		}
	}
	return strings.Join(lines, "\n")
}

// where renders a WHERE clause from its conjuncts, or "" when there are none.
func where(conjuncts ...string) string {
	kept := make([]string, 0, len(conjuncts))
	for _, c := range conjuncts {
		if c != "" {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(kept, " AND ")
}
