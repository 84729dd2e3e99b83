// Package ectuple implements the tuple and tuple-set algebra: tuple meet
// over complete tuples, tuple-set meet via cross product, and exact,
// order-preserving deduplication.
package ectuple

import (
	"sort"

	"github.com/santoshpalla27/ec-resolver/ecmodel"
	"github.com/santoshpalla27/ec-resolver/ectoken"
)

// Meet computes the per-key meet of two tuples that each define every
// taxonomy key. ok is false if any key's token meet is undefined.
func Meet(tax ecmodel.Taxonomy, left, right ecmodel.Tuple) (ecmodel.Tuple, bool) {
	result := make(ecmodel.Tuple, len(tax.Keys))
	for _, key := range tax.Keys {
		lv, lok := left[key]
		rv, rok := right[key]
		if !lok || !rok {
			return nil, false
		}
		m, ok := ectoken.Meet(lv, rv, tax.Placeholders[key], tax.Delimiter, tax.CaseSensitive)
		if !ok {
			return nil, false
		}
		result[key] = m
	}
	return result, true
}

// Equal reports whether two tuples assign the same (normalized) token to
// every key they share, and share exactly the same keyset.
func Equal(tax ecmodel.Taxonomy, a, b ecmodel.Tuple) bool {
	return a.Equal(b, func(s string) string { return ectoken.Norm(s, tax.CaseSensitive) })
}

// Dedup exact-deduplicates a tuple list, preserving first-seen order.
func Dedup(tax ecmodel.Taxonomy, tuples ecmodel.TupleSet) ecmodel.TupleSet {
	out := make(ecmodel.TupleSet, 0, len(tuples))
	for _, t := range tuples {
		dup := false
		for _, seen := range out {
			if Equal(tax, t, seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

// Concat concatenates tuple sets in argument order without deduplicating.
func Concat(sets ...ecmodel.TupleSet) ecmodel.TupleSet {
	var out ecmodel.TupleSet
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// SetMeet computes the cross-product meet of two tuple sets: every pair
// whose meet is defined, deduplicated in first-seen order. The result is
// empty if either input is empty.
func SetMeet(tax ecmodel.Taxonomy, a, b ecmodel.TupleSet) ecmodel.TupleSet {
	if len(a) == 0 || len(b) == 0 {
		return ecmodel.TupleSet{}
	}
	var out ecmodel.TupleSet
	for _, x := range a {
		for _, y := range b {
			if m, ok := Meet(tax, x, y); ok {
				out = append(out, m)
			}
		}
	}
	return Dedup(tax, out)
}

// AncestorDominates reports whether t' is a strict ancestor of t on every
// taxonomy key: ancestor on every key, and not equal on at least one.
func AncestorDominates(tax ecmodel.Taxonomy, tPrime, t ecmodel.Tuple) bool {
	anyStrict := false
	for _, key := range tax.Keys {
		pv, pok := tPrime[key]
		tv, tok := t[key]
		if !pok || !tok {
			return false
		}
		if !ectoken.Ancestor(pv, tv, tax.Delimiter, tax.CaseSensitive) {
			return false
		}
		if ectoken.Norm(pv, tax.CaseSensitive) != ectoken.Norm(tv, tax.CaseSensitive) {
			anyStrict = true
		}
	}
	return anyStrict
}

// AncestorPreferredCollapse drops any tuple for which another tuple in the
// same (already deduped) set strictly ancestor-dominates it on every key.
// Idempotent on its own output.
func AncestorPreferredCollapse(tax ecmodel.Taxonomy, tuples ecmodel.TupleSet) ecmodel.TupleSet {
	deduped := Dedup(tax, tuples)
	out := make(ecmodel.TupleSet, 0, len(deduped))
	for i, t := range deduped {
		dominated := false
		for j, other := range deduped {
			if i == j {
				continue
			}
			if AncestorDominates(tax, other, t) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, t)
		}
	}
	return out
}

// SortedKeys returns tax.Keys filtered to those present in t, in taxonomy
// order.
func SortedKeys(tax ecmodel.Taxonomy, t ecmodel.Tuple) []string {
	out := make([]string, 0, len(t))
	for _, key := range tax.Keys {
		if _, ok := t[key]; ok {
			out = append(out, key)
		}
	}
	return out
}

// Project retains only the given axes of a tuple, dropping the rest.
func Project(t ecmodel.Tuple, axes []string) ecmodel.Tuple {
	out := make(ecmodel.Tuple, len(axes))
	for _, axis := range axes {
		if v, ok := t[axis]; ok {
			out[axis] = v
		}
	}
	return out
}

// ProjectSet projects every tuple in a set onto axes and exact-dedups the
// result, preserving first-seen order.
func ProjectSet(tax ecmodel.Taxonomy, tuples ecmodel.TupleSet, axes []string) ecmodel.TupleSet {
	projected := make(ecmodel.TupleSet, 0, len(tuples))
	for _, t := range tuples {
		projected = append(projected, Project(t, axes))
	}
	return Dedup(tax, projected)
}

// Intersect computes the exact-tuple intersection of two (already
// deduplicated) tuple sets, preserving a's first-seen order.
func Intersect(tax ecmodel.Taxonomy, a, b ecmodel.TupleSet) ecmodel.TupleSet {
	var out ecmodel.TupleSet
	for _, x := range a {
		for _, y := range b {
			if Equal(tax, x, y) {
				out = append(out, x)
				break
			}
		}
	}
	return out
}

// EqualExact reports whether two tuples assign identical keys to identical
// string values, with no taxonomy-driven normalization. Used by the mapping
// phase (§4.7), which compares EC tuples independent of any taxonomy.
func EqualExact(a, b ecmodel.Tuple) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// DedupExact exact-deduplicates a tuple list with no taxonomy-driven
// normalization, preserving first-seen order.
func DedupExact(tuples ecmodel.TupleSet) ecmodel.TupleSet {
	out := make(ecmodel.TupleSet, 0, len(tuples))
	for _, t := range tuples {
		dup := false
		for _, seen := range out {
			if EqualExact(t, seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

// ProjectSetExact projects every tuple in a set onto axes and exact-dedups
// the result with no taxonomy-driven normalization, preserving first-seen
// order.
func ProjectSetExact(tuples ecmodel.TupleSet, axes []string) ecmodel.TupleSet {
	projected := make(ecmodel.TupleSet, 0, len(tuples))
	for _, t := range tuples {
		projected = append(projected, Project(t, axes))
	}
	return DedupExact(projected)
}

// IntersectExact computes the exact-tuple intersection of two tuple sets
// with no taxonomy-driven normalization, preserving a's first-seen order.
func IntersectExact(a, b ecmodel.TupleSet) ecmodel.TupleSet {
	var out ecmodel.TupleSet
	for _, x := range a {
		for _, y := range b {
			if EqualExact(x, y) {
				out = append(out, x)
				break
			}
		}
	}
	return DedupExact(out)
}

// sortIDs sorts a slice of ids lexicographically in place and returns it.
func sortIDs(ids []string) []string {
	sort.Strings(ids)
	return ids
}

// SortIDs exposes sortIDs to other packages. The step packages sort their
// ids with sort.Strings directly and do not call it.
func SortIDs(ids []string) []string { return sortIDs(ids) }
