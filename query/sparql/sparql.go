// Package sparql compiles query requests into SPARQL 1.1 SELECT queries.
//
// Two kinds of values are interpolated and they are never interchangeable:
// resources (vertex identifiers, classes, predicates) are bound as IRI
// references with IDParam, and search terms or filter values are bound as
// string literals with Literal. Only literals are escaped; a malformed IRI
// is the caller's responsibility.
//
// Queries are emitted as indented multi-line text. Callers comparing queries
// should use query.Normalize.
package sparql

import (
	"strconv"
	"strings"

	"github.com/ssheladiya/graph-explorer/query"
)

// Builder implements query.Builder and query.SubjectPredicatesBuilder for
// SPARQL. Vertex identifiers and types are resource IRIs.
type Builder struct{}

var (
	_ query.Builder                  = Builder{}
	_ query.SubjectPredicatesBuilder = Builder{}
)

// New returns a SPARQL builder.
func New() Builder {
	return Builder{}
}

// Dialect returns query.SPARQL.
func (Builder) Dialect() query.Dialect {
	return query.SPARQL
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

// VertexTypeCount compiles a count of the instances of the class vertexType.
func (Builder) VertexTypeCount(vertexType string) string {
	return ClassCount(vertexType)
}

// SubjectPredicates compiles req with SubjectPredicates.
func (Builder) SubjectPredicates(req query.SubjectPredicatesRequest) string {
	return SubjectPredicates(req)
}

// IDParam binds a resource as an IRI reference.
func IDParam(uri string) string {
	return "<" + uri + ">"
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EscapeString escapes backslashes and double quotes so s can sit inside a
// "..." literal.
func EscapeString(s string) string {
	return literalEscaper.Replace(s)
}

// Literal binds s as a quoted string literal.
func Literal(s string) string {
	return `"` + EscapeString(s) + `"`
}

// values renders a VALUES block binding variable to each IRI in order, or
// "" when uris is empty.
func values(variable string, uris []string) string {
	if len(uris) == 0 {
		return ""
	}
	refs := make([]string, len(uris))
	for i, u := range uris {
		refs[i] = IDParam(u)
	}
	return "VALUES ?" + variable + " { " + strings.Join(refs, " ") + " }"
}

// limitOffset renders the pagination clause. A zero limit disables
// pagination whatever the offset.
func limitOffset(offset, limit int) string {
	if limit <= 0 {
		return ""
	}
	return "LIMIT " + strconv.Itoa(limit) + " OFFSET " + strconv.Itoa(offset)
}

// regex renders a case-insensitive match of the string form of variable.
func regex(variable, term string) string {
	return "regex(str(?" + variable + "), " + Literal(term) + `, "i")`
}

// template accumulates indented query lines, dropping empty ones.
type template struct {
	lines []string
}

func (t *template) line(depth int, s string) *template {
	if s != "" {
		t.lines = append(t.lines, strings.Repeat("  ", depth)+s)
	}
	return t
}

func (t *template) String() string {
	return strings.Join(t.lines, "\n")
}
