// Package ecstep1 implements the Step 1 prefilter of spec §4.3: narrowing
// each assigned tuple against the policy's legal tuples, filling in
// taxonomy defaults where possible, and logging every per-tuple decision.
package ecstep1

import (
	"fmt"

	"github.com/santoshpalla27/ec-resolver/ecmodel"
	"github.com/santoshpalla27/ec-resolver/ectoken"
	"github.com/santoshpalla27/ec-resolver/ectuple"
)

// complete fills a partial tuple out to a full tuple using taxonomy
// defaults. reason is non-empty and ok is false if completion fails.
func complete(tax ecmodel.Taxonomy, t ecmodel.Tuple) (full ecmodel.Tuple, fills ecmodel.Tuple, reason string, ok bool) {
	full = make(ecmodel.Tuple, len(tax.Keys))
	fills = ecmodel.Tuple{}
	for _, key := range tax.Keys {
		if v, present := t[key]; present {
			full[key] = v
			continue
		}
		def, hasDefault := tax.Defaults[key]
		if !hasDefault {
			return nil, nil, fmt.Sprintf("missing-key-no-default:%s", key), false
		}
		full[key] = def
		fills[key] = def
	}
	return full, fills, "", true
}

// Run executes the Step 1 prefilter over the assigned business context.
// Per-tuple failures are recorded in the log rather than returned; Run
// performs no structural checks of its own, so the returned Envelope is
// always nil.
func Run(tax ecmodel.Taxonomy, pol ecmodel.Policy, assignments []ecmodel.Assignment) (*ecmodel.Step1Result, *ecmodel.Envelope) {
	result := &ecmodel.Step1Result{
		Prefiltered: []ecmodel.PrefilteredEntry{},
		Log:         []ecmodel.LogEntry{},
	}

	perComponent := make(map[string]ecmodel.TupleSet)
	order := make([]string, 0)
	seenComponent := make(map[string]bool)

	for _, a := range assignments {
		if !seenComponent[a.ComponentID] {
			seenComponent[a.ComponentID] = true
			order = append(order, a.ComponentID)
			perComponent[a.ComponentID] = ecmodel.TupleSet{}
		}

		for idx, raw := range a.Tuples {
			// invalid-token-type (spec §4.3) would fire here for a non-string
			// raw JSON value; ecmodel.Tuple is map[string]string, so a JSON
			// decode of such a value fails before Run is ever reached.
			full, fills, reason, ok := complete(tax, raw)
			if !ok {
				result.Log = append(result.Log, ecmodel.LogEntry{
					ComponentID: a.ComponentID,
					Index:       idx,
					Action:      "dropped",
					Reason:      reason,
					TupleBefore: raw,
				})
				continue
			}

			var witnesses []int
			var narrowed ecmodel.TupleSet
			for li, legal := range pol.LegalTuples {
				witnessed := true
				for _, pk := range pol.PolicyKeys {
					if _, ok := ectoken.Meet(full[pk], legal[pk], tax.Placeholders[pk], tax.Delimiter, tax.CaseSensitive); !ok {
						witnessed = false
						break
					}
				}
				if !witnessed {
					continue
				}
				witnesses = append(witnesses, li)
				// Keys the legal tuple leaves unset take the normalized token.
				legalFull := full.Clone()
				for k, v := range legal {
					legalFull[k] = v
				}
				if m, ok := ectuple.Meet(tax, full, legalFull); ok {
					narrowed = append(narrowed, m)
				}
			}

			narrowed = ectuple.Dedup(tax, narrowed)

			if len(narrowed) == 0 {
				result.Log = append(result.Log, ecmodel.LogEntry{
					ComponentID: a.ComponentID,
					Index:       idx,
					Action:      "dropped",
					Reason:      "no-legal-match",
					TupleBefore: raw,
				})
				continue
			}

			result.Log = append(result.Log, ecmodel.LogEntry{
				ComponentID: a.ComponentID,
				Index:       idx,
				Action:      "kept-multi",
				Witnesses:   witnesses,
				Fills:       fills,
				TupleBefore: raw,
				TuplesAfter: narrowed,
			})

			perComponent[a.ComponentID] = append(perComponent[a.ComponentID], narrowed...)
		}
	}

	for _, id := range order {
		deduped := ectuple.Dedup(tax, perComponent[id])
		if len(deduped) == 0 {
			continue
		}
		result.Prefiltered = append(result.Prefiltered, ecmodel.PrefilteredEntry{
			ComponentID: id,
			Tuples:      deduped,
		})
	}

	return result, nil
}
