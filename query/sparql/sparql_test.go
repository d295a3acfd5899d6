package sparql

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/ssheladiya/graph-explorer/query"
)

const (
	epl      = "http://www.example.com/soccer/resource#EPL"
	team     = "http://www.example.com/soccer/ontology/Team"
	stadium  = "http://www.example.com/soccer/ontology/Stadium"
	teamName = "http://www.example.com/soccer/ontology/teamName"
	nickname = "http://www.example.com/soccer/ontology/nickname"
)

func assertQuery(t *testing.T, want, got string) {
	t.Helper()
	if diff := cmp.Diff(query.Normalize(want), query.Normalize(got)); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestOneHopNeighbors(t *testing.T) {
	tests := []struct {
		name string
		req  query.NeighborsRequest
		want string
	}{
		{
			name: "resource only",
			req:  query.NewNeighbors(epl),
			want: `
				# Fetch all neighbors and their predicates, values, and classes
				SELECT ?subject ?pred ?value ?subjectClass ?pToSubject ?pFromSubject {
				  ?subject a     ?subjectClass;
				           ?pred ?value {
				    SELECT DISTINCT ?subject ?pToSubject ?pFromSubject {
				      BIND(<http://www.example.com/soccer/resource#EPL> AS ?argument)
				      {
				        ?argument ?pToSubject ?subject.
				        ?subject a         ?subjectClass;
				                 ?sPred    ?sValue .
				      }
				      UNION
				      {
				        ?subject ?pFromSubject ?argument;
				                 a         ?subjectClass;
				                 ?sPred    ?sValue .
				      }
				    }
				  }
				  FILTER(isLiteral(?value))
				}
			`,
		},
		{
			name: "classes, filters and page",
			req: query.NewNeighbors(epl).
				WithNeighborTypes(team).
				WithFilter(teamName, query.Contains, "Arsenal").
				WithFilter(nickname, query.Equals, "Gunners").
				WithPage(0, 2),
			want: `
				# Fetch all neighbors and their predicates, values, and classes
				SELECT ?subject ?pred ?value ?subjectClass ?pToSubject ?pFromSubject {
				  ?subject a     ?subjectClass;
				           ?pred ?value {
				    SELECT DISTINCT ?subject ?pToSubject ?pFromSubject {
				      BIND(<http://www.example.com/soccer/resource#EPL> AS ?argument)
				      VALUES ?subjectClass { <http://www.example.com/soccer/ontology/Team> }
				      {
				        ?argument ?pToSubject ?subject.
				        ?subject a            ?subjectClass;
				                 ?sPred       ?sValue .
				        FILTER ((?sPred=<http://www.example.com/soccer/ontology/teamName> && regex(str(?sValue), "Arsenal", "i")) ||
				          (?sPred=<http://www.example.com/soccer/ontology/nickname> && regex(str(?sValue), "Gunners", "i")))
				      }
				      UNION
				      {
				        ?subject ?pFromSubject ?argument;
				                 a             ?subjectClass;
				                 ?sPred        ?sValue .
				        FILTER ((?sPred=<http://www.example.com/soccer/ontology/teamName> && regex(str(?sValue), "Arsenal", "i")) ||
				          (?sPred=<http://www.example.com/soccer/ontology/nickname> && regex(str(?sValue), "Gunners", "i")))
				      }
				    }
				    LIMIT 2
				    OFFSET 0
				  }
				  FILTER(isLiteral(?value))
				}
			`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertQuery(t, tt.want, OneHopNeighbors(tt.req))
		})
	}
}

func TestOneHopNeighbors_Clauses(t *testing.T) {
	t.Run("union is always present", func(t *testing.T) {
		q := OneHopNeighbors(query.NeighborsRequest{})
		assert.Contains(t, q, "UNION")
		assert.NotContains(t, q, "VALUES")
		assert.NotContains(t, q, "FILTER (")
		assert.NotContains(t, q, "LIMIT")
	})

	t.Run("classes keep order", func(t *testing.T) {
		q := OneHopNeighbors(query.NewNeighbors(epl).WithNeighborTypes(team, stadium))
		assert.Contains(t, q, "VALUES ?subjectClass { <"+team+"> <"+stadium+"> }")
	})

	t.Run("filters apply to both branches", func(t *testing.T) {
		q := OneHopNeighbors(query.NewNeighbors(epl).WithFilter(teamName, query.Like, "ars"))
		assert.Equal(t, 2, strings.Count(q, `(?sPred=<`+teamName+`> && regex(str(?sValue), "ars", "i"))`))
	})

	t.Run("zero limit ignores offset", func(t *testing.T) {
		q := OneHopNeighbors(query.NewNeighbors(epl).WithPage(20, 0))
		assert.NotContains(t, q, "LIMIT")
		assert.NotContains(t, q, "OFFSET")
	})

	t.Run("pagination sits inside the subquery", func(t *testing.T) {
		q := query.Normalize(OneHopNeighbors(query.NewNeighbors(epl).WithPage(10, 5)))
		assert.Contains(t, q, "} LIMIT 5 OFFSET 10 } FILTER(isLiteral(?value)) }")
	})

	t.Run("filter values are escaped", func(t *testing.T) {
		q := OneHopNeighbors(query.NewNeighbors(epl).WithFilter(nickname, query.Contains, `"G"`))
		assert.Contains(t, q, `regex(str(?sValue), "\"G\"", "i")`)
	})

	t.Run("trailing backslash stays inside the literal", func(t *testing.T) {
		q := OneHopNeighbors(query.NewNeighbors(epl).WithFilter(nickname, query.Contains, `G\`))
		assert.Contains(t, q, `regex(str(?sValue), "G\\", "i")`)
	})
}

func TestSubjectPredicates(t *testing.T) {
	tests := []struct {
		name string
		req  query.SubjectPredicatesRequest
		want string
	}{
		{
			name: "bounded subjects",
			req: query.SubjectPredicatesRequest{
				ResourceURI: epl,
				SubjectURIs: []string{"http://ex.com/a", "http://ex.com/b"},
			},
			want: `
				SELECT ?subject ?subjectClass ?predToSubject ?predFromSubject {
				  BIND(<http://www.example.com/soccer/resource#EPL> AS ?argument)
				  VALUES ?subject { <http://ex.com/a> <http://ex.com/b> }
				  {
				    ?argument ?predToSubject ?subject.
				    ?subject a ?subjectClass.
				  }
				  UNION
				  {
				    ?subject ?predFromSubject ?argument.
				    ?subject a ?subjectClass.
				  }
				}
			`,
		},
		{
			name: "no subjects",
			req:  query.SubjectPredicatesRequest{ResourceURI: epl},
			want: `
				SELECT ?subject ?subjectClass ?predToSubject ?predFromSubject {
				  BIND(<http://www.example.com/soccer/resource#EPL> AS ?argument)
				  { ?argument ?predToSubject ?subject. ?subject a ?subjectClass. }
				  UNION
				  { ?subject ?predFromSubject ?argument. ?subject a ?subjectClass. }
				}
			`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertQuery(t, tt.want, SubjectPredicates(tt.req))
		})
	}
}

func TestKeywordSearch(t *testing.T) {
	tests := []struct {
		name string
		req  query.KeywordSearchRequest
		want string
	}{
		{
			name: "empty request",
			req:  query.KeywordSearchRequest{},
			want: `
				SELECT ?subject ?pred ?value ?class {
				  ?subject ?pred ?value {
				    SELECT DISTINCT ?subject ?class {
				      ?subject a ?class .
				    }
				  }
				}
			`,
		},
		{
			name: "classes keep order",
			req:  query.KeywordSearchRequest{VertexTypes: []string{team, stadium}},
			want: `
				SELECT ?subject ?pred ?value ?class {
				  ?subject ?pred ?value {
				    SELECT DISTINCT ?subject ?class {
				      ?subject a ?class .
				      VALUES ?class { <http://www.example.com/soccer/ontology/Team> <http://www.example.com/soccer/ontology/Stadium> }
				    }
				  }
				}
			`,
		},
		{
			name: "partial match with id first",
			req: query.NewKeywordSearch("Arsenal").
				WithAttributes(teamName, query.IDAttribute).
				WithPage(5, 10),
			want: `
				SELECT ?subject ?pred ?value ?class {
				  ?subject ?pred ?value {
				    SELECT DISTINCT ?subject ?class {
				      ?subject a ?class ;
				               ?predicate ?value .
				      FILTER (regex(str(?subject), "Arsenal", "i") ||
				        (?predicate = <http://www.example.com/soccer/ontology/teamName> && regex(str(?value), "Arsenal", "i")))
				    }
				    LIMIT 10 OFFSET 5
				  }
				}
			`,
		},
		{
			name: "exact match",
			req: query.NewKeywordSearch(`"Gunners"`).
				WithAttributes(nickname).
				WithExactMatch(true),
			want: `
				SELECT ?subject ?pred ?value ?class {
				  ?subject ?pred ?value {
				    SELECT DISTINCT ?subject ?class {
				      ?subject a ?class ;
				               ?predicate ?value .
				      FILTER ((?predicate = <http://www.example.com/soccer/ontology/nickname> && str(?value) = "\"Gunners\""))
				    }
				  }
				}
			`,
		},
		{
			name: "all attributes",
			req:  query.NewKeywordSearch("Ars").WithAttributes(query.AllAttributes),
			want: `
				SELECT ?subject ?pred ?value ?class {
				  ?subject ?pred ?value {
				    SELECT DISTINCT ?subject ?class {
				      ?subject a ?class ;
				               ?predicate ?value .
				      FILTER (regex(str(?subject), "Ars", "i") || regex(str(?value), "Ars", "i"))
				    }
				  }
				}
			`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertQuery(t, tt.want, KeywordSearch(tt.req))
		})
	}
}

func TestClassCount(t *testing.T) {
	assertQuery(t,
		`SELECT (COUNT(?start) AS ?instancesCount) { ?start a <http://www.example.com/soccer/ontology/Team> }`,
		ClassCount(team))
	assertQuery(t,
		`SELECT (COUNT(DISTINCT ?start) AS ?instancesCount) { ?start a ?class }`,
		ClassCount(""))
}

func TestNeighborsCount(t *testing.T) {
	base := func(limit string) string {
		return `
			SELECT ?class (COUNT(DISTINCT ?subject) AS ?count) {
			  ?subject a ?class {
			    SELECT DISTINCT ?subject {
			      BIND(<http://www.example.com/soccer/resource#EPL> AS ?argument)
			      { ?argument ?pToSubject ?subject. ?subject a ?subjectClass. }
			      UNION
			      { ?subject ?pFromSubject ?argument; a ?subjectClass. }
			    }
			    ` + limit + `
			  }
			}
			GROUP BY ?class
		`
	}

	assertQuery(t, base(""), NeighborsCount(query.NeighborsCountRequest{VertexID: epl}))
	assertQuery(t, base("LIMIT 500"), NeighborsCount(query.NeighborsCountRequest{VertexID: epl, Limit: 500}))
}

func TestBindings(t *testing.T) {
	assert.Equal(t, "<"+epl+">", IDParam(epl))
	assert.Equal(t, `"say \"hi\""`, Literal(`say "hi"`))
}

func TestBuilder(t *testing.T) {
	b := New()
	assert.Equal(t, query.SPARQL, b.Dialect())
	assert.Equal(t, ClassCount(team), b.VertexTypeCount(team))

	req := query.NewNeighbors(epl).WithNeighborTypes(team).WithPage(0, 10)
	assert.Equal(t, b.OneHopNeighbors(req), b.OneHopNeighbors(req))

	q, err := query.Compile(b, query.OpSubjectPredicates, []byte(`{"resourceUri":"`+epl+`","subjectUris":["http://ex.com/a"]}`))
	assert.NoError(t, err)
	assert.Contains(t, q, "VALUES ?subject { <http://ex.com/a> }")
}
