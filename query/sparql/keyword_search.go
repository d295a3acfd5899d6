package sparql

import (
	"strings"

	"github.com/ssheladiya/graph-explorer/query"
)

// KeywordSearch compiles a subject search.
//
// The inner subquery selects distinct subjects with their class, narrowed by
// req.VertexTypes (class IRIs) and by a disjunction over the searched
// predicates. The outer query then returns every predicate and value of the
// selected subjects. Pagination bounds the distinct subjects.
//
// Attribute names are predicate IRIs. The identifier clause matches the
// subject IRI itself and comes first; AllAttributes also matches the value
// of any predicate.
func KeywordSearch(req query.KeywordSearchRequest) string {
	req = req.WithDefaults()
	filter := searchFilter(req)

	t := &template{}
	t.line(0, "SELECT ?subject ?pred ?value ?class {").
		line(1, "?subject ?pred ?value {").
		line(2, "SELECT DISTINCT ?subject ?class {")
	if filter == "" {
		t.line(3, "?subject a ?class .")
	} else {
		t.line(3, "?subject a ?class ;").
			line(3, "         ?predicate ?value .")
	}
	t.line(3, values("class", req.VertexTypes)).
		line(3, filter).
		line(2, "}").
		line(2, limitOffset(req.Offset, req.Limit)).
		line(1, "}").
		line(0, "}")
	return t.String()
}

func searchFilter(req query.KeywordSearchRequest) string {
	if req.SearchTerm == "" {
		return ""
	}

	match := func(variable string) string {
		if req.ExactMatch {
			return "str(?" + variable + ") = " + Literal(req.SearchTerm)
		}
		return regex(variable, req.SearchTerm)
	}

	clauses := make([]string, 0, len(req.SearchByAttributes)+1)
	if req.IncludesID() {
		clauses = append(clauses, match("subject"))
	}
	for _, attr := range req.NamedAttributes() {
		clauses = append(clauses, "(?predicate = "+IDParam(attr)+" && "+match("value")+")")
	}
	if req.IncludesAll() {
		clauses = append(clauses, match("value"))
	}
	if len(clauses) == 0 {
		return ""
	}
	return "FILTER (" + strings.Join(clauses, " || ") + ")"
}
