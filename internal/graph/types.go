package graph

type RelationKind string

const (
	RelationExtends    RelationKind = "extends"
	RelationImplements RelationKind = "implements"
	// RelationRoot is the implicit edge to the hierarchy root class.
	RelationRoot RelationKind = "root"
)

type UnresolvedReason string

const (
	ReasonNoCandidate   UnresolvedReason = "no_candidate"
	ReasonSourceMissing UnresolvedReason = "source_missing"
	ReasonSelfReference UnresolvedReason = "self_reference"
)

// Symbol is the graph-domain node payload.
// It is intentionally decoupled from extractor.TypeUnit.
type Symbol struct {
	ID         string     `json:"id"` // binary name
	Name       string     `json:"name"`
	Package    string     `json:"package"`
	Kind       string     `json:"kind"`
	Interface  bool       `json:"interface"`
	Filepath   string     `json:"filepath"`
	StartLine  int        `json:"start_line"`
	EndLine    int        `json:"end_line"`
	Supertypes []Relation `json:"supertypes,omitempty"`
}

// Relation is a declared supertype as written in source.
type Relation struct {
	Target string       `json:"target"`
	Kind   RelationKind `json:"kind"`
}
