package ectuple

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/santoshpalla27/ec-resolver/ecmodel"
)

func testTaxonomy() ecmodel.Taxonomy {
	return ecmodel.Taxonomy{
		Keys:          []string{"region", "env"},
		Delimiter:     "/",
		CaseSensitive: false,
		Placeholders:  map[string]string{"region": "*", "env": "*"},
		Categories: map[string][]string{
			"region": {"us", "us/east", "us/west", "eu"},
			"env":    {"prod", "dev"},
		},
	}
}

func TestMeetUndefinedWhenAnyKeyFails(t *testing.T) {
	tax := testTaxonomy()
	left := ecmodel.Tuple{"region": "us/east", "env": "prod"}
	right := ecmodel.Tuple{"region": "eu", "env": "prod"}
	_, ok := Meet(tax, left, right)
	require.False(t, ok)
}

func TestMeetDefined(t *testing.T) {
	tax := testTaxonomy()
	left := ecmodel.Tuple{"region": "us", "env": "*"}
	right := ecmodel.Tuple{"region": "us/east", "env": "prod"}
	result, ok := Meet(tax, left, right)
	require.True(t, ok)
	require.Equal(t, "us/east", result["region"])
	require.Equal(t, "prod", result["env"])
}

func TestDedupPreservesFirstSeenOrder(t *testing.T) {
	tax := testTaxonomy()
	tuples := ecmodel.TupleSet{
		{"region": "us", "env": "prod"},
		{"region": "eu", "env": "dev"},
		{"region": "US", "env": "PROD"},
	}
	out := Dedup(tax, tuples)
	require.Len(t, out, 2)
	require.Equal(t, "us", out[0]["region"])
	require.Equal(t, "eu", out[1]["region"])
}

func TestSetMeetEmptyIfEitherEmpty(t *testing.T) {
	tax := testTaxonomy()
	require.Empty(t, SetMeet(tax, ecmodel.TupleSet{}, ecmodel.TupleSet{{"region": "us", "env": "prod"}}))
	require.Empty(t, SetMeet(tax, ecmodel.TupleSet{{"region": "us", "env": "prod"}}, ecmodel.TupleSet{}))
}

func TestSetMeetCrossProduct(t *testing.T) {
	tax := testTaxonomy()
	a := ecmodel.TupleSet{{"region": "us", "env": "*"}}
	b := ecmodel.TupleSet{
		{"region": "us/east", "env": "prod"},
		{"region": "eu", "env": "prod"},
	}
	out := SetMeet(tax, a, b)
	require.Len(t, out, 1)
	require.Equal(t, "us/east", out[0]["region"])
}

func TestAncestorPreferredCollapseDropsDominated(t *testing.T) {
	tax := testTaxonomy()
	tuples := ecmodel.TupleSet{
		{"region": "us", "env": "prod"},
		{"region": "us/east", "env": "prod"},
	}
	out := AncestorPreferredCollapse(tax, tuples)
	require.Len(t, out, 1)
	require.Equal(t, "us", out[0]["region"])
}

func TestAncestorPreferredCollapseIdempotent(t *testing.T) {
	tax := testTaxonomy()
	tuples := ecmodel.TupleSet{
		{"region": "us", "env": "prod"},
		{"region": "us/east", "env": "prod"},
		{"region": "eu", "env": "dev"},
	}
	once := AncestorPreferredCollapse(tax, tuples)
	twice := AncestorPreferredCollapse(tax, once)
	require.Equal(t, once, twice)
}

func TestAncestorPreferredCollapseKeepsUnrelated(t *testing.T) {
	tax := testTaxonomy()
	tuples := ecmodel.TupleSet{
		{"region": "us", "env": "prod"},
		{"region": "eu", "env": "dev"},
	}
	out := AncestorPreferredCollapse(tax, tuples)
	require.Len(t, out, 2)
}

func TestProjectSetDedups(t *testing.T) {
	tax := testTaxonomy()
	tuples := ecmodel.TupleSet{
		{"region": "us/east", "env": "prod"},
		{"region": "us/west", "env": "prod"},
	}
	out := ProjectSet(tax, tuples, []string{"env"})
	require.Len(t, out, 1)
	require.Equal(t, "prod", out[0]["env"])
}

func TestIntersect(t *testing.T) {
	tax := testTaxonomy()
	a := ecmodel.TupleSet{{"env": "prod"}, {"env": "dev"}}
	b := ecmodel.TupleSet{{"env": "dev"}}
	out := Intersect(tax, a, b)
	require.Len(t, out, 1)
	require.Equal(t, "dev", out[0]["env"])
}
