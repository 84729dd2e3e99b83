package ecvalidate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/santoshpalla27/ec-resolver/ecmodel"
)

func validTaxonomy() ecmodel.Taxonomy {
	return ecmodel.Taxonomy{
		Keys:          []string{"region", "env"},
		Delimiter:     "/",
		CaseSensitive: false,
		Placeholders:  map[string]string{"region": "*", "env": "*"},
		Categories: map[string][]string{
			"region": {"us", "us/east", "eu"},
			"env":    {"prod", "dev"},
		},
		Defaults: map[string]string{"env": "dev"},
	}
}

func TestTaxonomyValid(t *testing.T) {
	require.Nil(t, Taxonomy(validTaxonomy()))
}

func TestTaxonomyRejectsEmptyKeys(t *testing.T) {
	tax := validTaxonomy()
	tax.Keys = nil
	env := Taxonomy(tax)
	require.NotNil(t, env)
	require.Equal(t, "Validation", env.Error)
}

func TestTaxonomyRejectsNonAncestorClosedCategories(t *testing.T) {
	tax := validTaxonomy()
	tax.Categories["region"] = []string{"us/east"}
	env := Taxonomy(tax)
	require.NotNil(t, env)
}

func TestTaxonomyRejectsDefaultNotACategory(t *testing.T) {
	tax := validTaxonomy()
	tax.Defaults["env"] = "staging"
	env := Taxonomy(tax)
	require.NotNil(t, env)
}

func TestPolicyRejectsUnknownKey(t *testing.T) {
	tax := validTaxonomy()
	pol := ecmodel.Policy{PolicyKeys: []string{"region", "nope"}}
	env := Policy(tax, pol)
	require.NotNil(t, env)
}

func TestPolicyRejectsLegalTupleMissingPolicyKey(t *testing.T) {
	tax := validTaxonomy()
	pol := ecmodel.Policy{
		PolicyKeys:  []string{"region", "env"},
		LegalTuples: []ecmodel.Tuple{{"region": "us"}},
	}
	env := Policy(tax, pol)
	require.NotNil(t, env)
}

func TestComponentGraphRejectsDuplicateID(t *testing.T) {
	g := ecmodel.ComponentGraph{
		RootABIE: "root",
		ABIEs: map[string]ecmodel.ABIE{
			"root": {ID: "root"},
		},
		ASBIEs: map[string]ecmodel.ASBIE{},
		BBIEs: map[string]ecmodel.BBIE{
			"root": {ID: "root", OwnerABIE: "root"},
		},
	}
	env := ComponentGraph(g)
	require.NotNil(t, env)
}

func TestComponentGraphRejectsUnknownRoot(t *testing.T) {
	g := ecmodel.ComponentGraph{
		RootABIE: "missing",
		ABIEs:    map[string]ecmodel.ABIE{"a": {ID: "a"}},
		ASBIEs:   map[string]ecmodel.ASBIE{},
		BBIEs:    map[string]ecmodel.BBIE{},
	}
	env := ComponentGraph(g)
	require.NotNil(t, env)
}

func TestComponentGraphValid(t *testing.T) {
	g := ecmodel.ComponentGraph{
		RootABIE: "root",
		ABIEs: map[string]ecmodel.ABIE{
			"root": {ID: "root", ChildrenBBIE: []string{"leaf"}},
		},
		ASBIEs: map[string]ecmodel.ASBIE{},
		BBIEs: map[string]ecmodel.BBIE{
			"leaf": {ID: "leaf", OwnerABIE: "root"},
		},
	}
	require.Nil(t, ComponentGraph(g))
}

func TestIUCsRejectsEmptyTuples(t *testing.T) {
	tax := validTaxonomy()
	iucs := []ecmodel.IUC{{ID: "iuc-1"}}
	env := IUCs(tax, iucs)
	require.NotNil(t, env)
}

func TestIUCsRejectsDuplicateID(t *testing.T) {
	tax := validTaxonomy()
	iucs := []ecmodel.IUC{
		{ID: "iuc-1", Tuples: []ecmodel.Tuple{{"region": "us"}}},
		{ID: "iuc-1", Tuples: []ecmodel.Tuple{{"region": "eu"}}},
	}
	env := IUCs(tax, iucs)
	require.NotNil(t, env)
}

func TestMappingConfigNormalizesNilAxes(t *testing.T) {
	cfg := &ecmodel.MappingConfig{
		ProfilePairs: []ecmodel.ProfilePair{{SourceProfileID: "a", TargetProfileID: "b"}},
		BIECatalog:   map[string]ecmodel.BIECatalogEntry{"c1": {Anchor: "c1"}},
		SchemaPaths:  ecmodel.SchemaPaths{Source: map[string]string{}, Target: map[string]string{}},
	}
	env := MappingConfig(cfg)
	require.Nil(t, env)
	require.NotNil(t, cfg.BIECatalog["c1"].RelevantAxes)
}
