package sparql

import (
	"github.com/ssheladiya/graph-explorer/query"
)

// SubjectPredicates compiles the second pass of a neighbor expansion: every
// predicate linking the resource req.ResourceURI to one of the subjects
// already discovered by OneHopNeighbors, in either direction.
//
// ?predToSubject is bound for resource -> subject triples and
// ?predFromSubject for subject -> resource triples. With no subjects the
// VALUES block is omitted and every neighbor is matched.
func SubjectPredicates(req query.SubjectPredicatesRequest) string {
	t := &template{}
	t.line(0, "SELECT ?subject ?subjectClass ?predToSubject ?predFromSubject {").
		line(1, "BIND("+IDParam(req.ResourceURI)+" AS ?argument)").
		line(1, values("subject", req.SubjectURIs)).
		line(1, "{").
		line(2, "?argument ?predToSubject ?subject.").
		line(2, "?subject a ?subjectClass.").
		line(1, "}").
		line(1, "UNION").
		line(1, "{").
		line(2, "?subject ?predFromSubject ?argument.").
		line(2, "?subject a ?subjectClass.").
		line(1, "}").
		line(0, "}")
	return t.String()
}
