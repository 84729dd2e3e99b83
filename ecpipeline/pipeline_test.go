package ecpipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/santoshpalla27/ec-resolver/ecmodel"
)

func simpleBundle() ecmodel.ECBundle {
	return ecmodel.ECBundle{
		Taxonomy: ecmodel.Taxonomy{
			Keys:          []string{"region"},
			Delimiter:     "/",
			CaseSensitive: false,
			Placeholders:  map[string]string{"region": "*"},
			Categories:    map[string][]string{"region": {"us", "us/east", "eu"}},
			Defaults:      map[string]string{"region": "us"},
		},
		Policy: ecmodel.Policy{
			PolicyKeys:  []string{"region"},
			LegalTuples: []ecmodel.Tuple{{"region": "us/east"}},
		},
		ComponentGraph: ecmodel.ComponentGraph{
			RootABIE: "root",
			ABIEs:    map[string]ecmodel.ABIE{"root": {ID: "root", ChildrenBBIE: []string{"leaf"}}},
			ASBIEs:   map[string]ecmodel.ASBIE{},
			BBIEs:    map[string]ecmodel.BBIE{"leaf": {ID: "leaf", OwnerABIE: "root"}},
		},
		AssignedBusinessContext: []ecmodel.Assignment{
			{ComponentID: "leaf", Tuples: []ecmodel.Tuple{{"region": "us/east"}}},
		},
	}
}

func TestRunECPipelineSuccess(t *testing.T) {
	bundle := simpleBundle()
	iucs := []ecmodel.IUC{{ID: "iuc-1", Tuples: []ecmodel.Tuple{{"region": "us"}}}}

	result, env := RunECPipeline(bundle, iucs)
	require.Nil(t, env)
	require.Equal(t, []string{"iuc-1"}, result.ProfileIDs)
	require.Contains(t, result.Artifacts, "step1-prefiltered.json")
	require.Contains(t, result.Artifacts, "step2-oc.json")
	require.Contains(t, result.Artifacts, "step3-ec.iuc-1.json")
	require.Contains(t, result.Artifacts, "step4-profile.iuc-1.json")
}

func TestRunECPipelineValidationFailure(t *testing.T) {
	bundle := simpleBundle()
	bundle.Taxonomy.Keys = nil

	_, env := RunECPipeline(bundle, nil)
	require.NotNil(t, env)
	require.Equal(t, "Validation", env.Error)
	require.Contains(t, env.Details, "requestId")
}

// TestRunECPipelineCycleDetection covers scenario F at the orchestrator
// level: a cyclic component graph aborts with the exact Step2 reason.
func TestRunECPipelineCycleDetection(t *testing.T) {
	bundle := simpleBundle()
	bundle.ComponentGraph = ecmodel.ComponentGraph{
		RootABIE: "a",
		ABIEs: map[string]ecmodel.ABIE{
			"a": {ID: "a", ChildrenASBIE: []string{"edge-ab"}},
			"b": {ID: "b", ChildrenASBIE: []string{"edge-ba"}},
		},
		ASBIEs: map[string]ecmodel.ASBIE{
			"edge-ab": {ID: "edge-ab", SourceABIE: "a", TargetABIE: "b"},
			"edge-ba": {ID: "edge-ba", SourceABIE: "b", TargetABIE: "a"},
		},
		BBIEs: map[string]ecmodel.BBIE{},
	}
	bundle.AssignedBusinessContext = nil

	_, env := RunECPipeline(bundle, []ecmodel.IUC{{ID: "iuc-1", Tuples: []ecmodel.Tuple{{"region": "us"}}}})
	require.NotNil(t, env)
	require.Equal(t, "Step2", env.Error)
	require.Equal(t, "OC_non_convergent_cycle", env.Reason)
}

func TestRunMappingPipelineUnknownProfile(t *testing.T) {
	cfg := ecmodel.MappingConfig{
		ProfilePairs: []ecmodel.ProfilePair{{SourceProfileID: "a", TargetProfileID: "b"}},
		BIECatalog:   map[string]ecmodel.BIECatalogEntry{},
		SchemaPaths:  ecmodel.SchemaPaths{Source: map[string]string{}, Target: map[string]string{}},
	}
	_, env := RunMappingPipeline(map[string]ecmodel.ProfileBundle{"a": {}}, cfg)
	require.NotNil(t, env)
	require.Equal(t, "Validation", env.Error)
	require.Equal(t, "profiles", env.Details["stage"])
}
