// Package ecmapping implements §4.7: producing Mapping Resolution Artifacts
// between a source and target profile for every cataloged component.
package ecmapping

import (
	"fmt"
	"sort"

	"github.com/santoshpalla27/ec-resolver/ecmodel"
	"github.com/santoshpalla27/ec-resolver/ectuple"
)

// RunPair produces the MRA list for a single profile pair (Explanations
// derives the matching explanation list from it), iterating the
// bie_catalog in lexicographic component-id order. It
// compares EC tuples with exact string equality, independent of any
// taxonomy: the mapping phase's public input (§6) carries no taxonomy.
func RunPair(cfg ecmodel.MappingConfig, source, target ecmodel.ProfileBundle) []ecmodel.MRA {
	ids := make([]string, 0, len(cfg.BIECatalog))
	for id := range cfg.BIECatalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var mras []ecmodel.MRA

	for _, id := range ids {
		entry := cfg.BIECatalog[id]

		ecSourceFull, okSrc := source.EC.Lookup(id)
		ecTargetFull, okTgt := target.EC.Lookup(id)
		if !okSrc {
			ecSourceFull = ecmodel.TupleSet{}
		}
		if !okTgt {
			ecTargetFull = ecmodel.TupleSet{}
		}
		if len(ecSourceFull) == 0 || len(ecTargetFull) == 0 {
			continue
		}

		ecSourceRel := ectuple.ProjectSetExact(ecSourceFull, entry.RelevantAxes)
		ecTargetRel := ectuple.ProjectSetExact(ecTargetFull, entry.RelevantAxes)

		if len(ecSourceRel) == 0 || len(ecTargetRel) == 0 {
			// Open question, preserved verbatim: NO_MAPPING is a silent skip,
			// never emitted as a record.
			continue
		}

		common := ectuple.IntersectExact(ecSourceRel, ecTargetRel)

		var decision ecmodel.Decision
		var transform string
		if len(common) > 0 {
			decision = ecmodel.DecisionSeamless
			transform = "identity_or_direct"
		} else {
			decision = ecmodel.DecisionContextualTransform
			transform = "contextual_transform"
		}

		sourcePath := cfg.SchemaPaths.Source[id]
		targetPath := cfg.SchemaPaths.Target[id]

		mra := ecmodel.MRA{
			ComponentID:   id,
			Anchor:        entry.Anchor,
			RelevantAxes:  entry.RelevantAxes,
			Decision:      decision,
			ECSource:      ecSourceFull,
			ECTarget:      ecTargetFull,
			ECCommonOnKCD: common,
			MappingJSON: ecmodel.MappingJSON{
				ComponentID: id,
				SourcePath:  sourcePath,
				TargetPath:  targetPath,
				Decision:    decision,
				Transform:   transform,
			},
			ExplanationJSON: ecmodel.ExplanationJSON{
				ComponentID:  id,
				TLDR:         tldr(decision),
				RelevantAxes: entry.RelevantAxes,
				Decision:     decision,
			},
		}
		mras = append(mras, mra)
	}

	return mras
}

func tldr(decision ecmodel.Decision) string {
	return fmt.Sprintf("%s based on KCD comparison", decision)
}

// ArtifactNames returns the two artifact filenames for a profile pair.
func ArtifactNames(sourceID, targetID string) (mraName, explanationsName string) {
	return fmt.Sprintf("mapping.mra.%s.%s.json", sourceID, targetID),
		fmt.Sprintf("mapping.explanations.%s.%s.json", sourceID, targetID)
}

// Explanations extracts the explanationJson payloads from an MRA list, in
// the same order.
func Explanations(mras []ecmodel.MRA) []ecmodel.ExplanationJSON {
	out := make([]ecmodel.ExplanationJSON, 0, len(mras))
	for _, m := range mras {
		out = append(out, m.ExplanationJSON)
	}
	return out
}
