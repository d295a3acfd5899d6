// Package builders resolves a query.Dialect to its Builder implementation.
package builders

import (
	"fmt"

	"github.com/ssheladiya/graph-explorer/query"
	"github.com/ssheladiya/graph-explorer/query/gremlin"
	"github.com/ssheladiya/graph-explorer/query/opencypher"
	"github.com/ssheladiya/graph-explorer/query/sparql"
)

// For returns the builder for d.
func For(d query.Dialect) (query.Builder, error) {
	switch d {
	case query.Gremlin:
		return gremlin.New(), nil
	case query.OpenCypher:
		return opencypher.New(), nil
	case query.SPARQL:
		return sparql.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", query.ErrUnknownDialect, d)
	}
}

// ForName parses name with query.ParseDialect and returns its builder.
func ForName(name string) (query.Builder, error) {
	d, err := query.ParseDialect(name)
	if err != nil {
		return nil, err
	}
	return For(d)
}

// Compile resolves the builder for d and compiles operation with it.
func Compile(d query.Dialect, operation string, payload []byte) (string, error) {
	b, err := For(d)
	if err != nil {
		return "", err
	}
	return query.Compile(b, operation, payload)
}
