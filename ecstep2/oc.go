// Package ecstep2 implements Step 2 of spec §4.4: bottom-up aggregation of
// the Overall Context (OC) over the component graph, via a deterministic
// reverse topological pass.
package ecstep2

import (
	"sort"

	"github.com/santoshpalla27/ec-resolver/ecmodel"
	"github.com/santoshpalla27/ec-resolver/ectuple"
)

// topoOrder runs Kahn's algorithm over the ABIE graph (edge A->B iff some
// ASBIE has sourceABIE=A, targetABIE=B), breaking every tie by choosing the
// lexicographically smallest ready id. ok is false if not every ABIE could
// be ordered (a cycle).
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
	for from, tos := range outEdges {
		for to := range tos {
			_ = from
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

// Run computes OC for every component in the graph, given the Step 1
// prefiltered output. Returns an Envelope if the ABIE graph does not
// converge to a total topological order (a cycle).
func Run(tax ecmodel.Taxonomy, g ecmodel.ComponentGraph, prefiltered []ecmodel.PrefilteredEntry) (ecmodel.Buckets, *ecmodel.Envelope) {
	order, ok := topoOrder(g)
	if !ok {
		return ecmodel.Buckets{}, ecmodel.NewEnvelope("Step2", "OC_non_convergent_cycle", map[string]any{"stage": "cycle"})
	}

	prefilteredByID := make(map[string]ecmodel.TupleSet, len(prefiltered))
	for _, e := range prefiltered {
		prefilteredByID[e.ComponentID] = e.Tuples
	}
	lookup := func(id string) ecmodel.TupleSet {
		if ts, ok := prefilteredByID[id]; ok {
			return ts
		}
		return ecmodel.TupleSet{}
	}

	oc := ecmodel.NewBuckets()

	for _, bbie := range g.BBIEs {
		oc.BBIE[bbie.ID] = lookup(bbie.ID)
	}

	reverse := make([]string, len(order))
	for i, id := range order {
		reverse[len(order)-1-i] = id
	}

	for _, abieID := range reverse {
		abie := g.ABIEs[abieID]

		asbieIDs := append([]string(nil), abie.ChildrenASBIE...)
		sort.Strings(asbieIDs)
		for _, asbieID := range asbieIDs {
			asbie := g.ASBIEs[asbieID]
			targetOC, ok := oc.ABIE[asbie.TargetABIE]
			if !ok {
				targetOC = ecmodel.TupleSet{}
			}
			oc.ASBIE[asbieID] = ectuple.SetMeet(tax, lookup(asbieID), targetOC)
		}

		bbieIDs := append([]string(nil), abie.ChildrenBBIE...)
		sort.Strings(bbieIDs)

		var parts ecmodel.TupleSet
		for _, asbieID := range asbieIDs {
			parts = append(parts, oc.ASBIE[asbieID]...)
		}
		for _, bbieID := range bbieIDs {
			parts = append(parts, oc.BBIE[bbieID]...)
		}
		oc.ABIE[abieID] = ectuple.Dedup(tax, parts)
	}

	return oc, nil
}
