package sparql

import (
	"strings"

	"github.com/ssheladiya/graph-explorer/query"
)

// OneHopNeighbors compiles a fetch of every subject directly connected to
// the resource req.VertexID, with each subject's classes and literal-valued
// attributes.
//
// The inner subquery unions both directions: ?pToSubject is bound when the
// resource points at the subject and ?pFromSubject when the subject points
// at the resource. req.NeighborTypes restricts subject classes through a
// VALUES block. Filter criteria are matched case-insensitively against the
// subject's own attributes, OR'd together, and applied identically in both
// branches. Pagination bounds the distinct subjects, not the outer rows.
//
// Example:
//
//	OneHopNeighbors(query.NewNeighbors("http://www.example.com/soccer/resource#EPL").
//	    WithNeighborTypes("http://www.example.com/soccer/ontology/Team").
//	    WithFilter("http://www.example.com/soccer/ontology/teamName", query.Contains, "Arsenal").
//	    WithPage(0, 2))
func OneHopNeighbors(req query.NeighborsRequest) string {
	req = req.WithDefaults()
	filter := filters(req.FilterCriteria)

	t := &template{}
	t.line(0, "# Fetch all neighbors and their predicates, values, and classes").
		line(0, "SELECT ?subject ?pred ?value ?subjectClass ?pToSubject ?pFromSubject {").
		line(1, "?subject a     ?subjectClass;").
		line(1, "         ?pred ?value {").
		line(2, "SELECT DISTINCT ?subject ?pToSubject ?pFromSubject {").
		line(3, "BIND("+IDParam(req.VertexID)+" AS ?argument)").
		line(3, values("subjectClass", req.NeighborTypes)).
		line(3, "{").
		line(4, "?argument ?pToSubject ?subject.").
		line(4, "?subject a         ?subjectClass;").
		line(4, "         ?sPred    ?sValue .").
		line(4, filter).
		line(3, "}").
		line(3, "UNION").
		line(3, "{").
		line(4, "?subject ?pFromSubject ?argument;").
		line(4, "         a         ?subjectClass;").
		line(4, "         ?sPred    ?sValue .").
		line(4, filter).
		line(3, "}").
		line(2, "}").
		line(2, limitOffset(req.Offset, req.Limit)).
		line(1, "}").
		line(1, "FILTER(isLiteral(?value))").
		line(0, "}")
	return t.String()
}

// filters renders the neighbor filter block, or "" when there are no
// criteria. Every criterion is a case-insensitive regex whatever its
// operator.
func filters(criteria []query.FilterCriterion) string {
	if len(criteria) == 0 {
		return ""
	}
	terms := make([]string, len(criteria))
	for i, c := range criteria {
		terms[i] = "(?sPred=" + IDParam(c.Name) + " && " + regex("sValue", c.Value) + ")"
	}
	return "FILTER (" + strings.Join(terms, " || ") + ")"
}
