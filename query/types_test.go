package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect_String(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{Gremlin, "gremlin"},
		{OpenCypher, "openCypher"},
		{SPARQL, "sparql"},
		{Dialect(9), "Dialect(9)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.String())
		})
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input   string
		want    Dialect
		wantErr bool
	}{
		{input: "gremlin", want: Gremlin},
		{input: " Gremlin ", want: Gremlin},
		{input: "openCypher", want: OpenCypher},
		{input: "cypher", want: OpenCypher},
		{input: "open-cypher", want: OpenCypher},
		{input: "SPARQL", want: SPARQL},
		{input: "rdf", want: SPARQL},
		{input: "", wantErr: true},
		{input: "gql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDialect(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownDialect)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestOperator_IsValid(t *testing.T) {
	assert.True(t, Equals.IsValid())
	assert.True(t, Contains.IsValid())
	assert.True(t, Like.IsValid())
	assert.False(t, Operator("like").IsValid())
	assert.False(t, Operator("").IsValid())
}

func TestKeywordSearchRequest_WithDefaults(t *testing.T) {
	got := KeywordSearchRequest{Offset: -3, Limit: -1}.WithDefaults()

	assert.NotNil(t, got.VertexTypes)
	assert.NotNil(t, got.SearchByAttributes)
	assert.Equal(t, 0, got.Offset)
	assert.Equal(t, 0, got.Limit)
	assert.False(t, got.ExactMatch)
}

func TestKeywordSearchRequest_Attributes(t *testing.T) {
	tests := []struct {
		name        string
		attrs       []string
		includesID  bool
		includesAll bool
		named       []string
	}{
		{name: "none", attrs: nil, named: []string{}},
		{name: "named only", attrs: []string{"city", "code"}, named: []string{"city", "code"}},
		{name: "id", attrs: []string{"code", IDAttribute}, includesID: true, named: []string{"code"}},
		{name: "all", attrs: []string{AllAttributes, "code"}, includesID: true, includesAll: true, named: []string{"code"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewKeywordSearch("x").WithAttributes(tt.attrs...)
			assert.Equal(t, tt.includesID, req.IncludesID())
			assert.Equal(t, tt.includesAll, req.IncludesAll())
			assert.Equal(t, tt.named, req.NamedAttributes())
		})
	}
}

func TestKeywordSearchRequest_Fluent(t *testing.T) {
	req := NewKeywordSearch("JFK").
		WithVertexTypes("airport").
		WithAttributes("code").
		WithExactMatch(true).
		WithPage(5, 10)

	assert.Equal(t, KeywordSearchRequest{
		SearchTerm:         "JFK",
		VertexTypes:        []string{"airport"},
		SearchByAttributes: []string{"code"},
		ExactMatch:         true,
		Offset:             5,
		Limit:              10,
	}, req)
}

func TestNeighborsRequest_WithFilterDoesNotAlias(t *testing.T) {
	base := NewNeighbors("12").WithFilter("a", Equals, "1")
	left := base.WithFilter("b", Equals, "2")
	right := base.WithFilter("c", Equals, "3")

	require.Len(t, left.FilterCriteria, 2)
	require.Len(t, right.FilterCriteria, 2)
	assert.Equal(t, "b", left.FilterCriteria[1].Name)
	assert.Equal(t, "c", right.FilterCriteria[1].Name)
	assert.Len(t, base.FilterCriteria, 1)
}

func TestNeighborsRequest_WithDefaults(t *testing.T) {
	req := NeighborsRequest{
		VertexID: "12",
		FilterCriteria: []FilterCriterion{
			{Name: "a", Value: "1"},
			{Name: "b", Operator: "bogus", Value: "2"},
			{Name: "c", Operator: Equals, Value: "3"},
		},
		Offset: -1,
		Limit:  -1,
	}

	got := req.WithDefaults()

	assert.Equal(t, Contains, got.FilterCriteria[0].Operator)
	assert.Equal(t, Contains, got.FilterCriteria[1].Operator)
	assert.Equal(t, Equals, got.FilterCriteria[2].Operator)
	assert.Equal(t, Operator(""), req.FilterCriteria[0].Operator, "input must not be mutated")
	assert.Equal(t, 0, got.Offset)
	assert.Equal(t, 0, got.Limit)
	assert.NotNil(t, got.NeighborTypes)
}

func TestNeighborsCountRequest_WithDefaults(t *testing.T) {
	assert.Equal(t, 0, NeighborsCountRequest{Limit: -5}.WithDefaults().Limit)
	assert.Equal(t, 20, NeighborsCountRequest{Limit: 20}.WithDefaults().Limit)
}
