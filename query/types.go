// Package query defines the request value objects shared by every query
// dialect and the Builder interface each dialect implements.
//
// Requests are plain structs whose zero values are the documented defaults:
// no vertex types, no attributes, partial matching and no pagination. Builders
// call WithDefaults once on entry, so a request never needs to be validated
// before it is compiled.
package query

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// IDAttribute is the search-by-attribute sentinel that targets the graph
	// engine's internal vertex identifier instead of a named attribute.
	IDAttribute = "__id"

	// AllAttributes is the search-by-attribute sentinel meaning "every
	// searchable attribute". It always includes the identifier.
	AllAttributes = "__all"
)

var (
	// ErrUnknownDialect is returned when a dialect name cannot be parsed.
	ErrUnknownDialect = errors.New("unknown query dialect")

	// ErrUnknownOperation is returned by Compile for an unsupported operation name.
	ErrUnknownOperation = errors.New("unknown query operation")

	// ErrInvalidRequest is returned by Compile when a payload does not decode
	// into the operation's request type.
	ErrInvalidRequest = errors.New("invalid query request")
)

// Dialect identifies a graph query language.
type Dialect int

const (
	// Gremlin is the Apache TinkerPop traversal language.
	Gremlin Dialect = iota

	// OpenCypher is the openCypher declarative pattern language.
	OpenCypher

	// SPARQL is the W3C RDF query language.
	SPARQL
)

// String returns the canonical name of the dialect.
func (d Dialect) String() string {
	switch d {
	case Gremlin:
		return "gremlin"
	case OpenCypher:
		return "openCypher"
	case SPARQL:
		return "sparql"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// IsValid returns true if the dialect is one of the supported values.
func (d Dialect) IsValid() bool {
	return d >= Gremlin && d <= SPARQL
}

// ParseDialect parses a dialect name. Matching is case-insensitive and accepts
// the common aliases used in connection settings.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gremlin":
		return Gremlin, nil
	case "opencypher", "open-cypher", "cypher":
		return OpenCypher, nil
	case "sparql", "rdf":
		return SPARQL, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, s)
	}
}

// AllDialects returns every supported dialect.
func AllDialects() []Dialect {
	return []Dialect{Gremlin, OpenCypher, SPARQL}
}

// Operator is the comparison applied by a FilterCriterion.
type Operator string

const (
	// Equals requires the attribute value to equal the filter value.
	Equals Operator = "equals"

	// Contains requires the attribute value to contain the filter value.
	Contains Operator = "contains"

	// Like is a case-insensitive containment check.
	Like Operator = "LIKE"
)

// IsValid returns true if the operator is one of the supported values.
func (o Operator) IsValid() bool {
	switch o {
	case Equals, Contains, Like:
		return true
	default:
		return false
	}
}

// FilterCriterion restricts neighbor expansion to neighbors whose attribute
// Name (or predicate URI for SPARQL) matches Value.
type FilterCriterion struct {
	Name     string   `json:"name"`
	Operator Operator `json:"operator,omitempty"`
	Value    string   `json:"value"`
}

// KeywordSearchRequest searches vertices by attribute values.
//
// An empty request compiles to the dialect's "all vertices" query.
type KeywordSearchRequest struct {
	// SearchTerm is the text to match. Empty disables attribute filtering.
	SearchTerm string `json:"searchTerm,omitempty"`

	// VertexTypes restricts results to these labels or classes, in order.
	VertexTypes []string `json:"vertexTypes,omitempty"`

	// SearchByAttributes lists the attributes to match, in order. It may
	// contain the IDAttribute and AllAttributes sentinels.
	SearchByAttributes []string `json:"searchByAttributes,omitempty"`

	// ExactMatch selects equality instead of containment.
	ExactMatch bool `json:"exactMatch,omitempty"`

	// Offset is the number of results to skip. Ignored when Limit is 0.
	Offset int `json:"offset,omitempty"`

	// Limit caps the number of results. 0 disables pagination.
	Limit int `json:"limit,omitempty"`
}

// NewKeywordSearch creates a KeywordSearchRequest for the given term.
func NewKeywordSearch(term string) KeywordSearchRequest {
	return KeywordSearchRequest{SearchTerm: term}
}

// WithVertexTypes sets the vertex types to search within.
func (r KeywordSearchRequest) WithVertexTypes(types ...string) KeywordSearchRequest {
	r.VertexTypes = types
	return r
}

// WithAttributes sets the attributes to search by.
func (r KeywordSearchRequest) WithAttributes(attrs ...string) KeywordSearchRequest {
	r.SearchByAttributes = attrs
	return r
}

// WithExactMatch toggles exact matching.
func (r KeywordSearchRequest) WithExactMatch(exact bool) KeywordSearchRequest {
	r.ExactMatch = exact
	return r
}

// WithPage sets the pagination window.
func (r KeywordSearchRequest) WithPage(offset, limit int) KeywordSearchRequest {
	r.Offset = offset
	r.Limit = limit
	return r
}

// WithDefaults returns a copy with every optional field normalised.
func (r KeywordSearchRequest) WithDefaults() KeywordSearchRequest {
	r.VertexTypes = orEmpty(r.VertexTypes)
	r.SearchByAttributes = orEmpty(r.SearchByAttributes)
	r.Offset, r.Limit = clampPage(r.Offset, r.Limit)
	return r
}

// IncludesID reports whether the identifier should be searched, which is the
// case for both the IDAttribute and AllAttributes sentinels.
func (r KeywordSearchRequest) IncludesID() bool {
	for _, attr := range r.SearchByAttributes {
		if attr == IDAttribute || attr == AllAttributes {
			return true
		}
	}
	return false
}

// IncludesAll reports whether the AllAttributes sentinel is present.
func (r KeywordSearchRequest) IncludesAll() bool {
	for _, attr := range r.SearchByAttributes {
		if attr == AllAttributes {
			return true
		}
	}
	return false
}

// NamedAttributes returns the searched attributes without sentinels,
// preserving input order.
func (r KeywordSearchRequest) NamedAttributes() []string {
	named := make([]string, 0, len(r.SearchByAttributes))
	for _, attr := range r.SearchByAttributes {
		if attr == IDAttribute || attr == AllAttributes {
			continue
		}
		named = append(named, attr)
	}
	return named
}

// NeighborsRequest expands a vertex to its one-hop neighbors.
type NeighborsRequest struct {
	// VertexID is the expanded vertex: an engine ID or a resource URI.
	VertexID string `json:"vertexId"`

	// VertexTypes are the expanded vertex's own types. Builders do not use
	// them; they travel with the request for edge re-association.
	VertexTypes []string `json:"vertexTypes,omitempty"`

	// NeighborTypes restricts neighbors to these labels or classes.
	NeighborTypes []string `json:"neighborTypes,omitempty"`

	// FilterCriteria restricts neighbors by their own attributes, in order.
	FilterCriteria []FilterCriterion `json:"filterCriteria,omitempty"`

	// Offset is the number of neighbors to skip. Ignored when Limit is 0.
	Offset int `json:"offset,omitempty"`

	// Limit caps the number of distinct neighbors. 0 disables pagination.
	Limit int `json:"limit,omitempty"`
}

// NewNeighbors creates a NeighborsRequest for the given vertex.
func NewNeighbors(vertexID string) NeighborsRequest {
	return NeighborsRequest{VertexID: vertexID}
}

// WithVertexTypes sets the expanded vertex's own types.
func (r NeighborsRequest) WithVertexTypes(types ...string) NeighborsRequest {
	r.VertexTypes = types
	return r
}

// WithNeighborTypes sets the candidate neighbor types.
func (r NeighborsRequest) WithNeighborTypes(types ...string) NeighborsRequest {
	r.NeighborTypes = types
	return r
}

// WithFilter appends a filter criterion.
func (r NeighborsRequest) WithFilter(name string, op Operator, value string) NeighborsRequest {
	criteria := make([]FilterCriterion, len(r.FilterCriteria), len(r.FilterCriteria)+1)
	copy(criteria, r.FilterCriteria)
	r.FilterCriteria = append(criteria, FilterCriterion{Name: name, Operator: op, Value: value})
	return r
}

// WithPage sets the pagination window.
func (r NeighborsRequest) WithPage(offset, limit int) NeighborsRequest {
	r.Offset = offset
	r.Limit = limit
	return r
}

// WithDefaults returns a copy with every optional field normalised.
// Criteria without a valid operator default to Contains.
func (r NeighborsRequest) WithDefaults() NeighborsRequest {
	r.VertexTypes = orEmpty(r.VertexTypes)
	r.NeighborTypes = orEmpty(r.NeighborTypes)
	criteria := make([]FilterCriterion, len(r.FilterCriteria))
	for i, c := range r.FilterCriteria {
		if !c.Operator.IsValid() {
			c.Operator = Contains
		}
		criteria[i] = c
	}
	r.FilterCriteria = criteria
	r.Offset, r.Limit = clampPage(r.Offset, r.Limit)
	return r
}

// NeighborsCountRequest counts the distinct neighbors of a vertex grouped by type.
type NeighborsCountRequest struct {
	VertexID string `json:"vertexId"`

	// Limit caps the number of distinct neighbors counted. 0 counts all.
	Limit int `json:"limit,omitempty"`
}

// WithDefaults returns a copy with Limit clamped to zero or more.
func (r NeighborsCountRequest) WithDefaults() NeighborsCountRequest {
	if r.Limit < 0 {
		r.Limit = 0
	}
	return r
}

// SubjectPredicatesRequest asks for every predicate linking a resource to a
// set of already discovered neighbor subjects.
type SubjectPredicatesRequest struct {
	ResourceURI string   `json:"resourceUri"`
	SubjectURIs []string `json:"subjectUris,omitempty"`
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	return offset, limit
}
