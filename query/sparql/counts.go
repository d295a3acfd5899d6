package sparql

import (
	"strconv"

	"github.com/ssheladiya/graph-explorer/query"
)

// ClassCount compiles a count of the instances of className. An empty
// className counts every typed subject once.
func ClassCount(className string) string {
	t := &template{}
	if className == "" {
		t.line(0, "SELECT (COUNT(DISTINCT ?start) AS ?instancesCount) {").
			line(1, "?start a ?class").
			line(0, "}")
		return t.String()
	}
	t.line(0, "SELECT (COUNT(?start) AS ?instancesCount) {").
		line(1, "?start a "+IDParam(className)).
		line(0, "}")
	return t.String()
}

// NeighborsCount compiles a per-class count of the distinct subjects
// connected to the resource req.VertexID in either direction. A positive
// limit caps the distinct subjects before they are grouped.
func NeighborsCount(req query.NeighborsCountRequest) string {
	req = req.WithDefaults()

	limit := ""
	if req.Limit > 0 {
		limit = "LIMIT " + strconv.Itoa(req.Limit)
	}

	t := &template{}
	t.line(0, "SELECT ?class (COUNT(DISTINCT ?subject) AS ?count) {").
		line(1, "?subject a ?class {").
		line(2, "SELECT DISTINCT ?subject {").
		line(3, "BIND("+IDParam(req.VertexID)+" AS ?argument)").
		line(3, "{ ?argument ?pToSubject ?subject. ?subject a ?subjectClass. }").
		line(3, "UNION").
		line(3, "{ ?subject ?pFromSubject ?argument; a ?subjectClass. }").
		line(2, "}").
		line(2, limit).
		line(1, "}").
		line(0, "}").
		line(0, "GROUP BY ?class")
	return t.String()
}
