// Package ecmodel defines the immutable data types shared by every stage of
// the Effective Context pipeline: taxonomy, policy, component graph,
// assignments, IUCs, and the OC/EC/profile-schema/MRA outputs.
package ecmodel

// Tuple is a partial assignment of tokens to taxonomy keys. A complete
// tuple has an entry for every taxonomy key.
type Tuple map[string]string

// Clone returns a shallow copy of t.
func (t Tuple) Clone() Tuple {
	out := make(Tuple, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Equal reports whether t and other assign the same token to every key,
// comparing under the supplied normalization function.
func (t Tuple) Equal(other Tuple, norm func(string) string) bool {
	if len(t) != len(other) {
		return false
	}
	for k, v := range t {
		ov, ok := other[k]
		if !ok || norm(v) != norm(ov) {
			return false
		}
	}
	return true
}

// TupleSet is an ordered, exact-deduplicated list of tuples. Order is the
// order of first occurrence across all producing steps.
type TupleSet []Tuple

// Taxonomy describes the hierarchical category tokens legal for each key.
// Delimiter and CaseSensitive are decoded from the top-level "delimiter"
// and "caseSensitive" keys; a nested "rules" object is not read.
type Taxonomy struct {
	Keys          []string            `json:"keys"`
	Delimiter     string              `json:"delimiter"`
	CaseSensitive bool                `json:"caseSensitive"`
	Placeholders  map[string]string   `json:"placeholders"`
	Categories    map[string][]string `json:"categories"`
	Defaults      map[string]string   `json:"defaults"`
}

// Policy is the set of legal tuples governing a subset of taxonomy keys.
type Policy struct {
	PolicyKeys  []string `json:"policyKeys"`
	LegalTuples []Tuple  `json:"legalTuples"`
}

// ABIE is an aggregate record node.
type ABIE struct {
	ID            string   `json:"id"`
	ChildrenBBIE  []string `json:"childrenBBIE"`
	ChildrenASBIE []string `json:"childrenASBIE"`
}

// ASBIE is a directed association edge between two ABIEs.
type ASBIE struct {
	ID         string `json:"id"`
	SourceABIE string `json:"sourceABIE"`
	TargetABIE string `json:"targetABIE"`
}

// BBIE is a leaf field owned by a single ABIE.
type BBIE struct {
	ID        string `json:"id"`
	OwnerABIE string `json:"ownerABIE"`
}

// ComponentGraph is the full set of ABIE/ASBIE/BBIE nodes plus the root.
type ComponentGraph struct {
	RootABIE          string           `json:"rootABIE"`
	ABIEs             map[string]ABIE  `json:"ABIEs"`
	ASBIEs            map[string]ASBIE `json:"ASBIEs"`
	BBIEs             map[string]BBIE  `json:"BBIEs"`
	MaxFixpointRounds *int             `json:"maxFixpointRounds,omitempty"` // nil when the top-level maxFixpointRounds key is absent; a nested "rules" object is not read
}

// Assignment attaches a list of tuples to a BBIE or ASBIE id.
type Assignment struct {
	ComponentID string  `json:"componentId"`
	Tuples      []Tuple `json:"tuples"`
}

// ECBundle is the public, language-neutral input to run_ec_pipeline: the
// taxonomy, policy, component graph, and per-leaf context assignments.
type ECBundle struct {
	Taxonomy                Taxonomy     `json:"taxonomy"`
	Policy                  Policy       `json:"policy"`
	ComponentGraph          ComponentGraph `json:"componentGraph"`
	AssignedBusinessContext []Assignment `json:"assignedBusinessContext"`
}

// IUC is an intended usage configuration: an id plus a non-empty tuple list.
type IUC struct {
	ID     string  `json:"id"`
	Tuples []Tuple `json:"tuples"`
}

// Buckets is the shape shared by OC and EC outputs: one tuple-set map per
// component kind.
type Buckets struct {
	ABIE  map[string]TupleSet `json:"ABIE"`
	ASBIE map[string]TupleSet `json:"ASBIE"`
	BBIE  map[string]TupleSet `json:"BBIE"`
}

// NewBuckets returns an empty, initialized Buckets value.
func NewBuckets() Buckets {
	return Buckets{
		ABIE:  make(map[string]TupleSet),
		ASBIE: make(map[string]TupleSet),
		BBIE:  make(map[string]TupleSet),
	}
}

// Lookup scans ABIE, then ASBIE, then BBIE for id and returns its tuple
// set. Returns (nil, false) if id appears in none of the buckets.
func (b Buckets) Lookup(id string) (TupleSet, bool) {
	if ts, ok := b.ABIE[id]; ok {
		return ts, true
	}
	if ts, ok := b.ASBIE[id]; ok {
		return ts, true
	}
	if ts, ok := b.BBIE[id]; ok {
		return ts, true
	}
	return nil, false
}

// PrefilteredEntry is one component's narrowed tuple list from Step 1.
type PrefilteredEntry struct {
	ComponentID string   `json:"componentId"`
	Tuples      TupleSet `json:"tuples"`
}

// LogEntry records one per-tuple decision made during Step 1.
type LogEntry struct {
	ComponentID string   `json:"componentId"`
	Index       int      `json:"index"`
	Action      string   `json:"action"` // "kept-multi" | "dropped"
	Reason      string   `json:"reason,omitempty"`
	Witnesses   []int    `json:"witnesses,omitempty"`
	Fills       Tuple    `json:"fills,omitempty"`
	TupleBefore Tuple    `json:"tupleBefore"`
	TuplesAfter TupleSet `json:"tuplesAfter,omitempty"`
}

// Step1Result is the output of the prefilter stage.
type Step1Result struct {
	Prefiltered []PrefilteredEntry `json:"prefiltered"`
	Log         []LogEntry         `json:"log"`
}

// ABIEInclude is one ABIE entry in a profile schema.
type ABIEInclude struct {
	ID       string   `json:"id"`
	ECTuples TupleSet `json:"ecTuples"`
}

// ASBIEInclude is one ASBIE entry in a profile schema.
type ASBIEInclude struct {
	ID         string   `json:"id"`
	ECTuples   TupleSet `json:"ecTuples"`
	SourceABIE string   `json:"sourceABIE"`
	TargetABIE string   `json:"targetABIE"`
}

// BBIEInclude is one BBIE entry in a profile schema.
type BBIEInclude struct {
	ID        string   `json:"id"`
	OwnerABIE string   `json:"ownerABIE"`
	ECTuples  TupleSet `json:"ecTuples"`
}

// ProfileSchema is the Step 4 output for a single IUC.
type ProfileSchema struct {
	Version      string                `json:"version"`
	ProfileID    string                `json:"profileId"`
	RootABIE     string                `json:"rootABIE"`
	Includes     ProfileSchemaIncludes `json:"includes"`
	Notes        []string              `json:"notes"`
	Trace        map[string]string     `json:"trace"`
	IsRealizable bool                  `json:"isRealizable"`
}

// ProfileSchemaIncludes groups the included component entries by kind.
type ProfileSchemaIncludes struct {
	ABIE  []ABIEInclude  `json:"ABIE"`
	ASBIE []ASBIEInclude `json:"ASBIE"`
	BBIE  []BBIEInclude  `json:"BBIE"`
}

// ProfileBundle is the mapping pipeline's per-profile input: the EC buckets
// from Step 3 and the profile schema from Step 4.
type ProfileBundle struct {
	EC            Buckets       `json:"ec"`
	ProfileSchema ProfileSchema `json:"profileSchema"`
}

// ProfilePair names a source/target profile to compare.
type ProfilePair struct {
	SourceProfileID string `json:"sourceProfileId"`
	TargetProfileID string `json:"targetProfileId"`
}

// BIECatalogEntry names the anchor and Key Context Dimensions for one
// component in the mapping catalog.
type BIECatalogEntry struct {
	Anchor       string   `json:"anchor"`
	RelevantAxes []string `json:"relevantAxes"`
}

// SchemaPaths gives the source/target schema path for each mapped
// component id.
type SchemaPaths struct {
	Source map[string]string `json:"source"`
	Target map[string]string `json:"target"`
}

// MappingConfig is the input configuration for the mapping pipeline.
type MappingConfig struct {
	ProfilePairs []ProfilePair              `json:"profilePairs"`
	BIECatalog   map[string]BIECatalogEntry `json:"bie_catalog"`
	SchemaPaths  SchemaPaths                `json:"schemaPaths"`
}

// Decision classifies the cross-profile relationship of a mapped component.
type Decision string

const (
	DecisionSeamless            Decision = "SEAMLESS"
	DecisionContextualTransform Decision = "CONTEXTUAL_TRANSFORM"
	DecisionNoMapping           Decision = "NO_MAPPING"
)

// MappingJSON is the per-component mapping artifact payload.
type MappingJSON struct {
	ComponentID string   `json:"componentId"`
	SourcePath  string   `json:"sourcePath"`
	TargetPath  string   `json:"targetPath"`
	Decision    Decision `json:"decision"`
	Transform   string   `json:"transform"`
}

// ExplanationJSON is the per-component human-readable explanation payload.
type ExplanationJSON struct {
	ComponentID  string   `json:"componentId"`
	TLDR         string   `json:"tldr"`
	RelevantAxes []string `json:"relevantAxes"`
	Decision     Decision `json:"decision"`
}

// MRA is one Mapping Resolution Artifact record.
type MRA struct {
	ComponentID     string          `json:"componentId"`
	Anchor          string          `json:"anchor"`
	RelevantAxes    []string        `json:"relevantAxes"`
	Decision        Decision        `json:"decision"`
	ECSource        TupleSet        `json:"EC_source"`
	ECTarget        TupleSet        `json:"EC_target"`
	ECCommonOnKCD   TupleSet        `json:"EC_common_on_KCD"`
	MappingJSON     MappingJSON     `json:"mappingJson"`
	ExplanationJSON ExplanationJSON `json:"explanationJson"`
}
