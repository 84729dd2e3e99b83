// Package ecvalidate performs the structural and semantic checks of spec
// §4.1 in mission order, returning a Validation envelope on the first
// breach found. Only MappingConfig mutates its input (it normalizes missing
// relevantAxes in place); nothing else here does.
package ecvalidate

import (
	"fmt"

	"github.com/santoshpalla27/ec-resolver/ecmodel"
)

func fail(reason string, section string, extra map[string]any) *ecmodel.Envelope {
	details := map[string]any{"stage": "validation", "section": section}
	for k, v := range extra {
		details[k] = v
	}
	return ecmodel.NewEnvelope("Validation", reason, details)
}

func uniqueStrings(xs []string) bool {
	seen := make(map[string]bool, len(xs))
	for _, x := range xs {
		if seen[x] {
			return false
		}
		seen[x] = true
	}
	return true
}

// Taxonomy validates a taxonomy per spec §4.1-1.
func Taxonomy(tax ecmodel.Taxonomy) *ecmodel.Envelope {
	if len(tax.Keys) == 0 {
		return fail("taxonomy.keys must be non-empty", "taxonomy", nil)
	}
	if !uniqueStrings(tax.Keys) {
		return fail("taxonomy.keys must be unique", "taxonomy", nil)
	}
	if tax.Delimiter == "" {
		return fail("taxonomy.rules.delimiter must be non-empty", "taxonomy", nil)
	}

	keySet := make(map[string]bool, len(tax.Keys))
	for _, k := range tax.Keys {
		keySet[k] = true
	}

	if len(tax.Placeholders) != len(tax.Keys) {
		return fail("taxonomy.placeholders must cover exactly taxonomy.keys", "taxonomy", nil)
	}
	for k := range tax.Placeholders {
		if !keySet[k] {
			return fail(fmt.Sprintf("taxonomy.placeholders has unknown key: %s", k), "taxonomy", nil)
		}
	}
	if len(tax.Categories) != len(tax.Keys) {
		return fail("taxonomy.categories must cover exactly taxonomy.keys", "taxonomy", nil)
	}
	for k := range tax.Categories {
		if !keySet[k] {
			return fail(fmt.Sprintf("taxonomy.categories has unknown key: %s", k), "taxonomy", nil)
		}
	}
	for k := range tax.Defaults {
		if !keySet[k] {
			return fail(fmt.Sprintf("taxonomy.defaults has unknown key: %s", k), "taxonomy", nil)
		}
	}

	for _, key := range tax.Keys {
		cats := tax.Categories[key]
		placeholder := tax.Placeholders[key]

		if !uniqueStrings(normalizeAll(cats, tax.CaseSensitive)) {
			return fail(fmt.Sprintf("taxonomy.categories[%s] must be unique", key), "taxonomy", nil)
		}

		catSet := make(map[string]bool, len(cats))
		for _, c := range cats {
			if c == placeholder {
				return fail(fmt.Sprintf("taxonomy.categories[%s] must not contain the placeholder", key), "taxonomy", nil)
			}
			catSet[c] = true
		}

		if !ancestorClosed(cats, tax.Delimiter, tax.CaseSensitive) {
			return fail(fmt.Sprintf("taxonomy.categories[%s] is not ancestor-closed", key), "taxonomy", nil)
		}

		if def, ok := tax.Defaults[key]; ok {
			if def == placeholder {
				return fail(fmt.Sprintf("taxonomy.defaults[%s] must not be the placeholder", key), "taxonomy", nil)
			}
			if !catSet[def] {
				return fail(fmt.Sprintf("taxonomy.defaults[%s] must be a declared category", key), "taxonomy", nil)
			}
		}
	}

	return nil
}

func normalizeAll(xs []string, caseSensitive bool) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		if caseSensitive {
			out[i] = x
		} else {
			out[i] = toLower(x)
		}
	}
	return out
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// ancestorClosed checks that every proper ancestor (under delimiter) of
// each category is itself present in cats.
func ancestorClosed(cats []string, delimiter string, caseSensitive bool) bool {
	set := make(map[string]bool, len(cats))
	for _, c := range cats {
		if caseSensitive {
			set[c] = true
		} else {
			set[toLower(c)] = true
		}
	}
	for _, c := range cats {
		parts := splitDelim(c, delimiter)
		for i := 1; i < len(parts); i++ {
			ancestor := joinDelim(parts[:i], delimiter)
			key := ancestor
			if !caseSensitive {
				key = toLower(ancestor)
			}
			if !set[key] {
				return false
			}
		}
	}
	return true
}

func splitDelim(s, delimiter string) []string {
	var out []string
	start := 0
	for i := 0; i+len(delimiter) <= len(s); i++ {
		if s[i:i+len(delimiter)] == delimiter {
			out = append(out, s[start:i])
			start = i + len(delimiter)
			i += len(delimiter) - 1
		}
	}
	out = append(out, s[start:])
	return out
}

func joinDelim(parts []string, delimiter string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += delimiter
		}
		out += p
	}
	return out
}

// tupleTokensValid checks that every key in t is a taxonomy key and every
// token is either a declared category or that key's placeholder.
func tupleTokensValid(tax ecmodel.Taxonomy, t ecmodel.Tuple) (string, bool) {
	keySet := make(map[string]bool, len(tax.Keys))
	for _, k := range tax.Keys {
		keySet[k] = true
	}
	for key, token := range t {
		if !keySet[key] {
			return fmt.Sprintf("unknown taxonomy key: %s", key), false
		}
		if token == "" {
			return fmt.Sprintf("empty token for key: %s", key), false
		}
		if token == tax.Placeholders[key] {
			continue
		}
		isCategory := false
		for _, c := range tax.Categories[key] {
			if c == token {
				isCategory = true
				break
			}
		}
		if !isCategory {
			return fmt.Sprintf("token %q is not a category or placeholder for key %s", token, key), false
		}
	}
	return "", true
}

// Policy validates a policy per spec §4.1-2.
func Policy(tax ecmodel.Taxonomy, pol ecmodel.Policy) *ecmodel.Envelope {
	if !uniqueStrings(pol.PolicyKeys) {
		return fail("policy.policyKeys must be unique", "policy", nil)
	}
	taxKeySet := make(map[string]bool, len(tax.Keys))
	for _, k := range tax.Keys {
		taxKeySet[k] = true
	}
	for _, k := range pol.PolicyKeys {
		if !taxKeySet[k] {
			return fail(fmt.Sprintf("policy.policyKeys has unknown key: %s", k), "policy", nil)
		}
	}

	for i, lt := range pol.LegalTuples {
		for _, k := range pol.PolicyKeys {
			if _, ok := lt[k]; !ok {
				return fail(fmt.Sprintf("policy.legalTuples[%d] missing policy key: %s", i, k), "policy",
					map[string]any{"index": i})
			}
		}
		if reason, ok := tupleTokensValid(tax, lt); !ok {
			return fail(fmt.Sprintf("policy.legalTuples[%d]: %s", i, reason), "policy",
				map[string]any{"index": i})
		}
	}
	return nil
}

// ComponentGraph validates a component graph per spec §4.1-3.
func ComponentGraph(g ecmodel.ComponentGraph) *ecmodel.Envelope {
	ids := make(map[string]string, len(g.ABIEs)+len(g.ASBIEs)+len(g.BBIEs)) // id -> kind
	addID := func(id, kind string) *ecmodel.Envelope {
		if id == "" {
			return fail(fmt.Sprintf("%s has an empty id", kind), "componentGraph", nil)
		}
		if existing, ok := ids[id]; ok {
			return fail(fmt.Sprintf("duplicate component id %q (%s and %s)", id, existing, kind), "componentGraph", nil)
		}
		ids[id] = kind
		return nil
	}

	for id, a := range g.ABIEs {
		if id != a.ID {
			return fail(fmt.Sprintf("ABIE map key %q does not match id %q", id, a.ID), "componentGraph", nil)
		}
		if env := addID(id, "ABIE"); env != nil {
			return env
		}
	}
	for id, a := range g.ASBIEs {
		if id != a.ID {
			return fail(fmt.Sprintf("ASBIE map key %q does not match id %q", id, a.ID), "componentGraph", nil)
		}
		if env := addID(id, "ASBIE"); env != nil {
			return env
		}
	}
	for id, b := range g.BBIEs {
		if id != b.ID {
			return fail(fmt.Sprintf("BBIE map key %q does not match id %q", id, b.ID), "componentGraph", nil)
		}
		if env := addID(id, "BBIE"); env != nil {
			return env
		}
	}

	if g.RootABIE == "" {
		return fail("rootABIE must be non-empty", "componentGraph", nil)
	}
	if ids[g.RootABIE] != "ABIE" {
		return fail(fmt.Sprintf("rootABIE %q does not resolve to an ABIE", g.RootABIE), "componentGraph", nil)
	}

	for id, a := range g.ASBIEs {
		if ids[a.SourceABIE] != "ABIE" {
			return fail(fmt.Sprintf("ASBIE %q sourceABIE %q does not resolve to an ABIE", id, a.SourceABIE), "componentGraph", nil)
		}
		if ids[a.TargetABIE] != "ABIE" {
			return fail(fmt.Sprintf("ASBIE %q targetABIE %q does not resolve to an ABIE", id, a.TargetABIE), "componentGraph", nil)
		}
	}
	for id, b := range g.BBIEs {
		if ids[b.OwnerABIE] != "ABIE" {
			return fail(fmt.Sprintf("BBIE %q ownerABIE %q does not resolve to an ABIE", id, b.OwnerABIE), "componentGraph", nil)
		}
	}
	for id, a := range g.ABIEs {
		for _, cid := range a.ChildrenASBIE {
			if ids[cid] != "ASBIE" {
				return fail(fmt.Sprintf("ABIE %q childrenASBIE entry %q does not resolve to an ASBIE", id, cid), "componentGraph", nil)
			}
		}
		for _, cid := range a.ChildrenBBIE {
			if ids[cid] != "BBIE" {
				return fail(fmt.Sprintf("ABIE %q childrenBBIE entry %q does not resolve to a BBIE", id, cid), "componentGraph", nil)
			}
		}
	}

	if g.MaxFixpointRounds != nil && *g.MaxFixpointRounds <= 0 {
		return fail("rules.maxFixpointRounds must be a positive integer", "componentGraph", nil)
	}

	return nil
}

// componentKind returns the kind ("ABIE"/"ASBIE"/"BBIE") for id, or "".
func componentKind(g ecmodel.ComponentGraph, id string) string {
	if _, ok := g.ABIEs[id]; ok {
		return "ABIE"
	}
	if _, ok := g.ASBIEs[id]; ok {
		return "ASBIE"
	}
	if _, ok := g.BBIEs[id]; ok {
		return "BBIE"
	}
	return ""
}

// Assignments validates the assignment list per spec §4.1-4.
func Assignments(tax ecmodel.Taxonomy, g ecmodel.ComponentGraph, assignments []ecmodel.Assignment) *ecmodel.Envelope {
	for i, a := range assignments {
		kind := componentKind(g, a.ComponentID)
		if kind != "BBIE" && kind != "ASBIE" {
			return fail(fmt.Sprintf("assignments[%d].componentId %q must resolve to a BBIE or ASBIE", i, a.ComponentID),
				"assignments", map[string]any{"index": i})
		}
		for j, t := range a.Tuples {
			if reason, ok := tupleTokensValid(tax, t); !ok {
				return fail(fmt.Sprintf("assignments[%d].tuples[%d]: %s", i, j, reason), "assignments",
					map[string]any{"index": i, "tupleIndex": j})
			}
		}
	}
	return nil
}

// IUCs validates the IUC list per spec §4.1-5.
func IUCs(tax ecmodel.Taxonomy, iucs []ecmodel.IUC) *ecmodel.Envelope {
	seen := make(map[string]bool, len(iucs))
	for i, iuc := range iucs {
		if iuc.ID == "" {
			return fail(fmt.Sprintf("iucs[%d].id must be non-empty", i), "iucs", map[string]any{"index": i})
		}
		if seen[iuc.ID] {
			return fail(fmt.Sprintf("duplicate IUC id: %s", iuc.ID), "iucs", map[string]any{"index": i})
		}
		seen[iuc.ID] = true
		if len(iuc.Tuples) == 0 {
			return fail(fmt.Sprintf("iucs[%d].tuples must be non-empty", i), "iucs", map[string]any{"index": i})
		}
		for j, t := range iuc.Tuples {
			if reason, ok := tupleTokensValid(tax, t); !ok {
				return fail(fmt.Sprintf("iucs[%d].tuples[%d]: %s", i, j, reason), "iucs",
					map[string]any{"index": i, "tupleIndex": j})
			}
		}
	}
	return nil
}

// MappingConfig validates the mapping configuration per spec §4.1-6,
// normalizing missing relevantAxes to an empty slice in place.
func MappingConfig(cfg *ecmodel.MappingConfig) *ecmodel.Envelope {
	for i, pp := range cfg.ProfilePairs {
		if pp.SourceProfileID == "" || pp.TargetProfileID == "" {
			return fail(fmt.Sprintf("mappingConfig.profilePairs[%d] must have non-empty sourceProfileId and targetProfileId", i),
				"mappingConfig", map[string]any{"index": i})
		}
	}

	for id, entry := range cfg.BIECatalog {
		if !uniqueStrings(entry.RelevantAxes) {
			return fail(fmt.Sprintf("mappingConfig.bie_catalog[%s].relevantAxes must be unique", id), "mappingConfig", nil)
		}
		if entry.RelevantAxes == nil {
			entry.RelevantAxes = []string{}
			cfg.BIECatalog[id] = entry
		}
	}

	if cfg.SchemaPaths.Source == nil || cfg.SchemaPaths.Target == nil {
		return fail("mappingConfig.schemaPaths must have source and target maps", "mappingConfig", nil)
	}
	for id, p := range cfg.SchemaPaths.Source {
		if p == "" {
			return fail(fmt.Sprintf("mappingConfig.schemaPaths.source[%s] must be non-empty", id), "mappingConfig", nil)
		}
	}
	for id, p := range cfg.SchemaPaths.Target {
		if p == "" {
			return fail(fmt.Sprintf("mappingConfig.schemaPaths.target[%s] must be non-empty", id), "mappingConfig", nil)
		}
	}

	return nil
}

// Bundle runs checks 1-4 of spec §4.1 in mission order over an ECBundle,
// returning the first breach found.
func Bundle(bundle ecmodel.ECBundle) *ecmodel.Envelope {
	if env := Taxonomy(bundle.Taxonomy); env != nil {
		return env
	}
	if env := Policy(bundle.Taxonomy, bundle.Policy); env != nil {
		return env
	}
	if env := ComponentGraph(bundle.ComponentGraph); env != nil {
		return env
	}
	if env := Assignments(bundle.Taxonomy, bundle.ComponentGraph, bundle.AssignedBusinessContext); env != nil {
		return env
	}
	return nil
}
