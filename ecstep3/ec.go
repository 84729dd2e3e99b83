// Package ecstep3 implements Step 3 of spec §4.5: top-down restriction of
// OC into the Effective Context (EC) for a single IUC, via a deterministic
// forward topological pass seeded at the root.
package ecstep3

import (
	"sort"

	"github.com/santoshpalla27/ec-resolver/ecmodel"
	"github.com/santoshpalla27/ec-resolver/ectuple"
)

func topoOrder(g ecmodel.ComponentGraph) (order []string, ok bool) {
	outEdges := make(map[string]map[string]bool)
	indegree := make(map[string]int)
	for id := range g.ABIEs {
		outEdges[id] = make(map[string]bool)
		indegree[id] = 0
	}
	for _, asbie := range g.ASBIEs {
		if !outEdges[asbie.SourceABIE][asbie.TargetABIE] {
			outEdges[asbie.SourceABIE][asbie.TargetABIE] = true
		}
	}
	for _, tos := range outEdges {
		for to := range tos {
			indegree[to]++
		}
	}

	ready := make([]string, 0)
	for id, d := range indegree {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order = make([]string, 0, len(g.ABIEs))
	for len(ready) > 0 {
		sort.Strings(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		targets := make([]string, 0, len(outEdges[next]))
		for to := range outEdges[next] {
			targets = append(targets, to)
		}
		sort.Strings(targets)
		for _, to := range targets {
			indegree[to]--
			if indegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}

	return order, len(order) == len(g.ABIEs)
}

// incomingASBIEs maps each ABIE id to the sorted list of ASBIE ids whose
// targetABIE is that ABIE.
func incomingASBIEs(g ecmodel.ComponentGraph) map[string][]string {
	incoming := make(map[string][]string, len(g.ABIEs))
	for id := range g.ABIEs {
		incoming[id] = []string{}
	}
	for id, asbie := range g.ASBIEs {
		incoming[asbie.TargetABIE] = append(incoming[asbie.TargetABIE], id)
	}
	for id := range incoming {
		sort.Strings(incoming[id])
	}
	return incoming
}

// Run computes EC for a single IUC given the Step 2 OC buckets. Returns an
// Envelope if the ABIE graph does not converge to a total topological order.
func Run(tax ecmodel.Taxonomy, g ecmodel.ComponentGraph, oc ecmodel.Buckets, iuc ecmodel.IUC) (ecmodel.Buckets, *ecmodel.Envelope) {
	order, ok := topoOrder(g)
	if !ok {
		return ecmodel.Buckets{}, ecmodel.NewEnvelope("Step3", "EC_non_convergent_cycle", map[string]any{"stage": "cycle"})
	}

	incoming := incomingASBIEs(g)
	ec := ecmodel.NewBuckets()

	rootOC, hasRootOC := oc.ABIE[g.RootABIE]
	if !hasRootOC {
		rootOC = ecmodel.TupleSet{}
	}
	iucTuples := ectuple.Dedup(tax, ecmodel.TupleSet(iuc.Tuples))
	seed := ectuple.AncestorPreferredCollapse(tax, ectuple.SetMeet(tax, rootOC, iucTuples))

	for _, abieID := range order {
		abie := g.ABIEs[abieID]
		abieOC := oc.ABIE[abieID]

		var gate ecmodel.TupleSet
		switch {
		case abieID == g.RootABIE:
			gate = seed
		case len(incoming[abieID]) > 0:
			var parts ecmodel.TupleSet
			for _, asbieID := range incoming[abieID] {
				parts = append(parts, ec.ASBIE[asbieID]...)
			}
			gate = ectuple.Dedup(tax, parts)
		default:
			// Open question, preserved verbatim: an ABIE unreachable from the
			// root in this IUC keeps its own OC as its gate rather than
			// collapsing to empty.
			gate = abieOC
		}

		ec.ABIE[abieID] = ectuple.SetMeet(tax, abieOC, gate)

		bbieIDs := append([]string(nil), abie.ChildrenBBIE...)
		sort.Strings(bbieIDs)
		for _, bbieID := range bbieIDs {
			ec.BBIE[bbieID] = ectuple.SetMeet(tax, oc.BBIE[bbieID], ec.ABIE[abieID])
		}

		asbieIDs := append([]string(nil), abie.ChildrenASBIE...)
		sort.Strings(asbieIDs)
		for _, asbieID := range asbieIDs {
			ec.ASBIE[asbieID] = ectuple.SetMeet(tax, oc.ASBIE[asbieID], ec.ABIE[abieID])
		}
	}

	// Collapse every final EC set to its minimal ancestor-preferred form,
	// per spec §4.5's testable invariant that collapse applies to each
	// final EC set, not only the seed.
	for id, ts := range ec.ABIE {
		ec.ABIE[id] = ectuple.AncestorPreferredCollapse(tax, ts)
	}
	for id, ts := range ec.ASBIE {
		ec.ASBIE[id] = ectuple.AncestorPreferredCollapse(tax, ts)
	}
	for id, ts := range ec.BBIE {
		ec.BBIE[id] = ectuple.AncestorPreferredCollapse(tax, ts)
	}

	return ec, nil
}
