package ecmapping

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/santoshpalla27/ec-resolver/ecmodel"
)

func testConfig() ecmodel.MappingConfig {
	return ecmodel.MappingConfig{
		BIECatalog: map[string]ecmodel.BIECatalogEntry{
			"comp-1": {Anchor: "comp-1", RelevantAxes: []string{"region"}},
		},
		SchemaPaths: ecmodel.SchemaPaths{
			Source: map[string]string{"comp-1": "/src/comp-1"},
			Target: map[string]string{"comp-1": "/tgt/comp-1"},
		},
	}
}

// TestRunPairSeamless covers scenario E: matching projections on the
// relevant axes classify as SEAMLESS.
func TestRunPairSeamless(t *testing.T) {
	cfg := testConfig()
	source := ecmodel.ProfileBundle{EC: ecmodel.Buckets{ABIE: map[string]ecmodel.TupleSet{
		"comp-1": {{"region": "us", "env": "prod"}},
	}}}
	target := ecmodel.ProfileBundle{EC: ecmodel.Buckets{ABIE: map[string]ecmodel.TupleSet{
		"comp-1": {{"region": "us", "env": "dev"}},
	}}}

	mras := RunPair(cfg, source, target)
	require.Len(t, mras, 1)
	require.Equal(t, ecmodel.DecisionSeamless, mras[0].Decision)
	require.Equal(t, "identity_or_direct", mras[0].MappingJSON.Transform)
	require.Equal(t, "/src/comp-1", mras[0].MappingJSON.SourcePath)
	require.Equal(t, "SEAMLESS based on KCD comparison", mras[0].ExplanationJSON.TLDR)
}

// TestRunPairContextualTransform covers scenario E: disjoint projections
// on the relevant axes classify as CONTEXTUAL_TRANSFORM.
func TestRunPairContextualTransform(t *testing.T) {
	cfg := testConfig()
	source := ecmodel.ProfileBundle{EC: ecmodel.Buckets{ABIE: map[string]ecmodel.TupleSet{
		"comp-1": {{"region": "us", "env": "prod"}},
	}}}
	target := ecmodel.ProfileBundle{EC: ecmodel.Buckets{ABIE: map[string]ecmodel.TupleSet{
		"comp-1": {{"region": "eu", "env": "prod"}},
	}}}

	mras := RunPair(cfg, source, target)
	require.Len(t, mras, 1)
	require.Equal(t, ecmodel.DecisionContextualTransform, mras[0].Decision)
	require.Equal(t, "contextual_transform", mras[0].MappingJSON.Transform)
	require.Equal(t, "CONTEXTUAL_TRANSFORM based on KCD comparison", mras[0].ExplanationJSON.TLDR)
}

func TestRunPairSkipsOnMissingEC(t *testing.T) {
	cfg := testConfig()
	source := ecmodel.ProfileBundle{EC: ecmodel.NewBuckets()}
	target := ecmodel.ProfileBundle{EC: ecmodel.Buckets{ABIE: map[string]ecmodel.TupleSet{
		"comp-1": {{"region": "us"}},
	}}}

	mras := RunPair(cfg, source, target)
	require.Empty(t, mras)
}

// TestRunPairCaseSensitiveRegardlessOfSourceTaxonomy covers the mapping
// phase's taxonomy-less comparison: tuples differing only by case are
// distinct EC tuples, never folded together.
func TestRunPairCaseSensitiveRegardlessOfSourceTaxonomy(t *testing.T) {
	cfg := testConfig()
	source := ecmodel.ProfileBundle{EC: ecmodel.Buckets{ABIE: map[string]ecmodel.TupleSet{
		"comp-1": {{"region": "US"}},
	}}}
	target := ecmodel.ProfileBundle{EC: ecmodel.Buckets{ABIE: map[string]ecmodel.TupleSet{
		"comp-1": {{"region": "us"}},
	}}}

	mras := RunPair(cfg, source, target)
	require.Len(t, mras, 1)
	require.Equal(t, ecmodel.DecisionContextualTransform, mras[0].Decision)
}

func TestArtifactNames(t *testing.T) {
	mra, expl := ArtifactNames("profile-a", "profile-b")
	require.Equal(t, "mapping.mra.profile-a.profile-b.json", mra)
	require.Equal(t, "mapping.explanations.profile-a.profile-b.json", expl)
}
