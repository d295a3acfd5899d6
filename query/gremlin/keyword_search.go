package gremlin

import (
	"strings"

	"github.com/ssheladiya/graph-explorer/query"
)

// KeywordSearch compiles a vertex search.
//
// The traversal starts at g.V(), narrows by label when vertex types are
// given, then keeps vertices matching any of the searched attributes inside
// a single or() step. The identifier clause comes first when requested.
//
// Example:
//
//	KeywordSearch(query.KeywordSearchRequest{
//	    SearchTerm:         "JFK",
//	    VertexTypes:        []string{"airport"},
//	    SearchByAttributes: []string{"code"},
//	    Offset:             1,
//	    Limit:              25,
//	})
//	// g.V().hasLabel("airport").or(has("code",containing("JFK"))).range(1,26)
func KeywordSearch(req query.KeywordSearchRequest) string {
	req = req.WithDefaults()

	var b strings.Builder
	b.WriteString("g.V()")
	b.WriteString(hasLabel(req.VertexTypes))

	if clauses := searchClauses(req); len(clauses) > 0 {
		b.WriteString(".or(")
		b.WriteString(strings.Join(clauses, ","))
		b.WriteString(")")
	}

	b.WriteString(rangeStep(req.Offset, req.Limit))
	return b.String()
}

func searchClauses(req query.KeywordSearchRequest) []string {
	if req.SearchTerm == "" {
		return nil
	}

	pred := predicate(req.SearchTerm, req.ExactMatch)
	clauses := make([]string, 0, len(req.SearchByAttributes))
	if req.IncludesID() {
		clauses = append(clauses, "has(id,"+pred+")")
	}
	for _, attr := range req.NamedAttributes() {
		clauses = append(clauses, "has("+quote(attr)+","+pred+")")
	}
	return clauses
}
