package opencypher

import (
	"strconv"

	"github.com/ssheladiya/graph-explorer/query"
)

// NeighborsCount compiles a count of the distinct neighbors of req.VertexID
// grouped by their label set. A positive limit caps the distinct neighbor
// set before aggregation; offsets are not supported here.
//
// Example:
//
//	NeighborsCount(query.NeighborsCountRequest{VertexID: "12", Limit: 20})
//	// MATCH (v)-[]-(neighbor)
//	// WHERE ID(v) = "12"
//	// WITH DISTINCT neighbor
//	// LIMIT 20
//	// RETURN labels(neighbor) AS vertexLabel, count(DISTINCT neighbor) AS count
func NeighborsCount(req query.NeighborsCountRequest) string {
	req = req.WithDefaults()

	limit := ""
	if req.Limit > 0 {
		limit = "LIMIT " + strconv.Itoa(req.Limit)
	}

	return statement(
		"MATCH (v)-[]-(neighbor)",
		"WHERE ID(v) = "+IDParam(req.VertexID),
		"WITH DISTINCT neighbor",
		limit,
		"RETURN labels(neighbor) AS vertexLabel, count(DISTINCT neighbor) AS count",
	)
}

// VertexTypeCount compiles a count of vertices labelled vertexType, or of
// every vertex when vertexType is empty.
func VertexTypeCount(vertexType string) string {
	var labels []string
	if vertexType != "" {
		labels = []string{vertexType}
	}
	return statement(
		"MATCH "+nodePattern("v", labels),
		"RETURN count(v) AS total",
	)
}
