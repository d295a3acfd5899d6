package opencypher

import (
	"strings"

	"github.com/ssheladiya/graph-explorer/query"
)

// KeywordSearch compiles a vertex search.
//
// A single vertex type is inlined into the MATCH pattern; several types
// become a disjunction of label tests. The searched attributes form one
// OR-group with the identifier test first when requested.
//
// Example:
//
//	KeywordSearch(query.NewKeywordSearch("JFK").
//	    WithVertexTypes("airport").
//	    WithAttributes("code").
//	    WithPage(1, 25))
//	// MATCH (v:`airport`)
//	// WHERE (v.`code` CONTAINS "JFK")
//	// RETURN v AS object
//	// SKIP 1 LIMIT 25
func KeywordSearch(req query.KeywordSearchRequest) string {
	req = req.WithDefaults()

	return statement(
		"MATCH "+nodePattern("v", req.VertexTypes),
		where(labelPredicate("v", req.VertexTypes), searchGroup(req)),
		"RETURN v AS object",
		page(req.Offset, req.Limit),
	)
}

func searchGroup(req query.KeywordSearchRequest) string {
	if req.SearchTerm == "" {
		return ""
	}

	op := query.Contains
	if req.ExactMatch {
		op = query.Equals
	}

	clauses := make([]string, 0, len(req.SearchByAttributes))
	if req.IncludesID() {
		clauses = append(clauses, comparison("ID(v)", op, req.SearchTerm))
	}
	for _, attr := range req.NamedAttributes() {
		clauses = append(clauses, comparison(property("v", attr), op, req.SearchTerm))
	}
	if len(clauses) == 0 {
		return ""
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}
