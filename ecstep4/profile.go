// Package ecstep4 implements Step 4 of spec §4.6: assembling the Profile
// Schema for a single IUC from its Step 3 Effective Context.
package ecstep4

import (
	"fmt"
	"sort"

	"github.com/santoshpalla27/ec-resolver/ecmodel"
)

// classFault wraps a programming-fault condition as a Step4 envelope,
// per spec §7's "Step4 may raise a programming-fault class" allowance.
func classFault(class, message string) *ecmodel.Envelope {
	return ecmodel.NewEnvelope("Step4", fmt.Sprintf("%s: %s", class, message), map[string]any{"stage": "runtime"})
}

// Run assembles the profile schema for iuc from the component graph and its
// Step 3 EC buckets.
func Run(g ecmodel.ComponentGraph, ec ecmodel.Buckets, iucID string) (*ecmodel.ProfileSchema, *ecmodel.Envelope) {
	includedABIE := make(map[string]bool)
	includedASBIE := make(map[string]bool)
	includedBBIE := make(map[string]bool)

	for id, ts := range ec.ABIE {
		if len(ts) > 0 {
			includedABIE[id] = true
		}
	}
	for id, ts := range ec.ASBIE {
		if len(ts) > 0 {
			includedASBIE[id] = true
		}
	}
	for id, ts := range ec.BBIE {
		if len(ts) > 0 {
			includedBBIE[id] = true
		}
	}

	for id := range includedASBIE {
		asbie, ok := g.ASBIEs[id]
		if !ok {
			return nil, classFault("MissingComponent", fmt.Sprintf("ASBIE %q not found in component graph", id))
		}
		if len(ec.ABIE[asbie.TargetABIE]) > 0 {
			includedABIE[asbie.TargetABIE] = true
		}
	}

	isRealizable := len(ec.ABIE[g.RootABIE]) > 0
	if !isRealizable {
		delete(includedABIE, g.RootABIE)
	}

	abieIDs := sortedSet(includedABIE)
	asbieIDs := sortedSet(includedASBIE)
	bbieIDs := sortedSet(includedBBIE)

	includes := ecmodel.ProfileSchemaIncludes{
		ABIE:  make([]ecmodel.ABIEInclude, 0, len(abieIDs)),
		ASBIE: make([]ecmodel.ASBIEInclude, 0, len(asbieIDs)),
		BBIE:  make([]ecmodel.BBIEInclude, 0, len(bbieIDs)),
	}
	for _, id := range abieIDs {
		includes.ABIE = append(includes.ABIE, ecmodel.ABIEInclude{ID: id, ECTuples: ec.ABIE[id]})
	}
	for _, id := range asbieIDs {
		asbie, ok := g.ASBIEs[id]
		if !ok {
			return nil, classFault("MissingComponent", fmt.Sprintf("ASBIE %q not found in component graph", id))
		}
		includes.ASBIE = append(includes.ASBIE, ecmodel.ASBIEInclude{
			ID: id, ECTuples: ec.ASBIE[id], SourceABIE: asbie.SourceABIE, TargetABIE: asbie.TargetABIE,
		})
	}
	for _, id := range bbieIDs {
		bbie, ok := g.BBIEs[id]
		if !ok {
			return nil, classFault("MissingComponent", fmt.Sprintf("BBIE %q not found in component graph", id))
		}
		includes.BBIE = append(includes.BBIE, ecmodel.BBIEInclude{
			ID: id, OwnerABIE: bbie.OwnerABIE, ECTuples: ec.BBIE[id],
		})
	}

	return &ecmodel.ProfileSchema{
		Version:   "ProfileSchema-1.0",
		ProfileID: iucID,
		RootABIE:  g.RootABIE,
		Includes:  includes,
		Notes: []string{
			"seed: ancestor-preferred collapse",
			"emission: collapse per component",
			"exact-dedup inside steps",
		},
		Trace:        map[string]string{"sourceEC": "Step3"},
		IsRealizable: isRealizable,
	}, nil
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
