package opencypher

import (
	"github.com/ssheladiya/graph-explorer/query"
)

// OneHopNeighbors compiles an expansion of req.VertexID to its distinct
// neighbors together with every edge connecting each neighbor to the
// expanded vertex.
//
// Pagination applies to the distinct (v, tgt) pairs, before edges are
// collected, so a page never splits one neighbor's edges. Each filter
// criterion is a separate conjunct.
func OneHopNeighbors(req query.NeighborsRequest) string {
	req = req.WithDefaults()

	conjuncts := make([]string, 0, len(req.FilterCriteria)+2)
	conjuncts = append(conjuncts,
		"ID(v) = "+IDParam(req.VertexID),
		labelPredicate("tgt", req.NeighborTypes),
	)
	for _, c := range req.FilterCriteria {
		conjuncts = append(conjuncts, comparison(property("tgt", c.Name), c.Operator, c.Value))
	}

	return statement(
		"MATCH (v)-[]-"+nodePattern("tgt", req.NeighborTypes),
		where(conjuncts...),
		"WITH DISTINCT v, tgt",
		page(req.Offset, req.Limit),
		"MATCH (v)-[e]-(tgt)",
		"RETURN tgt AS vObject, collect(DISTINCT e) AS eObjects",
	)
}
