package gremlin

import (
	"strconv"
	"strings"

	"github.com/ssheladiya/graph-explorer/query"
)

// OneHopNeighbors compiles an expansion of req.VertexID to its distinct
// neighbors in both directions, each projected with the edges that connect
// it to the expanded vertex.
//
// Every filter criterion becomes its own has() step, so criteria combine
// with AND semantics. Equals compiles to a literal; Contains and Like both
// compile to containing().
func OneHopNeighbors(req query.NeighborsRequest) string {
	req = req.WithDefaults()

	var b strings.Builder
	b.WriteString("g.V(")
	b.WriteString(IDParam(req.VertexID))
	b.WriteString(`).as("start").both()`)
	b.WriteString(hasLabel(req.NeighborTypes))
	for _, c := range req.FilterCriteria {
		b.WriteString(".has(")
		b.WriteString(quote(c.Name))
		b.WriteString(",")
		b.WriteString(predicate(c.Value, c.Operator == query.Equals))
		b.WriteString(")")
	}
	b.WriteString(".dedup()")
	b.WriteString(rangeStep(req.Offset, req.Limit))
	b.WriteString(`.as("neighbor").project("vertex","edges").by()`)
	b.WriteString(`.by(select("start").bothE().where(otherV().as("neighbor")).dedup().fold())`)
	return b.String()
}

// NeighborsCount compiles a count of the distinct neighbors of req.VertexID
// grouped by label. A positive limit caps how many neighbors are visited
// before counting.
//
// Example:
//
//	NeighborsCount(query.NeighborsCountRequest{VertexID: "12", Limit: 500})
//	// g.V("12").both().limit(500).dedup().group().by(label).by(count())
func NeighborsCount(req query.NeighborsCountRequest) string {
	req = req.WithDefaults()

	var b strings.Builder
	b.WriteString("g.V(")
	b.WriteString(IDParam(req.VertexID))
	b.WriteString(").both()")
	if req.Limit > 0 {
		b.WriteString(".limit(")
		b.WriteString(strconv.Itoa(req.Limit))
		b.WriteString(")")
	}
	b.WriteString(".dedup().group().by(label).by(count())")
	return b.String()
}

// VertexTypeCount compiles a count of vertices labelled vertexType, or of
// every vertex when vertexType is empty.
func VertexTypeCount(vertexType string) string {
	if vertexType == "" {
		return "g.V().count()"
	}
	return "g.V()" + hasLabel([]string{vertexType}) + ".count()"
}
