package mcp

import "github.com/ssheladiya/graph-explorer/query"

// CompileResult is the structured output of every compile tool.
type CompileResult struct {
	Dialect   string `json:"dialect" jsonschema:"The dialect the query was compiled for"`
	Operation string `json:"operation" jsonschema:"The compiled operation"`
	Query     string `json:"query" jsonschema:"The query text, ready to send to the database"`
}

type KeywordSearchArgs struct {
	Dialect            string   `json:"dialect,omitempty" jsonschema:"Query language: gremlin, openCypher or sparql. Defaults to the server dialect"`
	SearchTerm         string   `json:"searchTerm,omitempty" jsonschema:"Text to match. Empty returns vertices without attribute filtering"`
	VertexTypes        []string `json:"vertexTypes,omitempty" jsonschema:"Vertex labels or RDF classes to restrict the search to"`
	SearchByAttributes []string `json:"searchByAttributes,omitempty" jsonschema:"Attributes to match. __id targets the vertex ID and __all every attribute"`
	ExactMatch         bool     `json:"exactMatch,omitempty" jsonschema:"Match the whole value instead of a substring"`
	Offset             int      `json:"offset,omitempty" jsonschema:"Results to skip"`
	Limit              int      `json:"limit,omitempty" jsonschema:"Maximum number of results. 0 returns all"`
}

func (a KeywordSearchArgs) request() query.KeywordSearchRequest {
	return query.KeywordSearchRequest{
		SearchTerm:         a.SearchTerm,
		VertexTypes:        a.VertexTypes,
		SearchByAttributes: a.SearchByAttributes,
		ExactMatch:         a.ExactMatch,
		Offset:             a.Offset,
		Limit:              a.Limit,
	}
}

type FilterArg struct {
	Name     string `json:"name" jsonschema:"Attribute name, or predicate URI for sparql"`
	Operator string `json:"operator,omitempty" jsonschema:"One of equals, contains or LIKE. Defaults to contains"`
	Value    string `json:"value" jsonschema:"Value to compare against"`
}

type NeighborsArgs struct {
	Dialect        string      `json:"dialect,omitempty" jsonschema:"Query language: gremlin, openCypher or sparql. Defaults to the server dialect"`
	VertexID       string      `json:"vertexId" jsonschema:"ID or resource URI of the vertex to expand"`
	NeighborTypes  []string    `json:"neighborTypes,omitempty" jsonschema:"Neighbor labels or classes to keep"`
	FilterCriteria []FilterArg `json:"filterCriteria,omitempty" jsonschema:"Attribute filters applied to neighbors"`
	Offset         int         `json:"offset,omitempty" jsonschema:"Neighbors to skip"`
	Limit          int         `json:"limit,omitempty" jsonschema:"Maximum number of neighbors. 0 returns all"`
}

func (a NeighborsArgs) request() query.NeighborsRequest {
	req := query.NewNeighbors(a.VertexID).
		WithNeighborTypes(a.NeighborTypes...).
		WithPage(a.Offset, a.Limit)
	for _, f := range a.FilterCriteria {
		req = req.WithFilter(f.Name, query.Operator(f.Operator), f.Value)
	}
	return req
}

type NeighborsCountArgs struct {
	Dialect  string `json:"dialect,omitempty" jsonschema:"Query language: gremlin, openCypher or sparql. Defaults to the server dialect"`
	VertexID string `json:"vertexId" jsonschema:"ID or resource URI of the vertex whose neighbors are counted"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of distinct neighbors counted. 0 counts all"`
}

type VertexTypeCountArgs struct {
	Dialect    string `json:"dialect,omitempty" jsonschema:"Query language: gremlin, openCypher or sparql. Defaults to the server dialect"`
	VertexType string `json:"vertexType,omitempty" jsonschema:"Label or class to count. Empty counts every vertex"`
}

type SubjectPredicatesArgs struct {
	ResourceURI string   `json:"resourceUri" jsonschema:"URI of the expanded resource"`
	SubjectURIs []string `json:"subjectUris" jsonschema:"URIs of the neighbors found by compile_neighbors"`
}
