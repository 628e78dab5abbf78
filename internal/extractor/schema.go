package extractor

// TypeKind distinguishes the Java type declaration forms.
type TypeKind string

const (
	KindClass      TypeKind = "class"
	KindInterface  TypeKind = "interface"
	KindEnum       TypeKind = "enum"
	KindRecord     TypeKind = "record"
	KindAnnotation TypeKind = "annotation"
)

// FileUnit is everything extracted from one compilation unit.
type FileUnit struct {
	Path string `json:"path"`
	// Package is dotted, "" for the default package.
	Package string `json:"package"`
	// Imports as written: "java.util.List", "java.util.*".
	Imports []string `json:"imports"`
	// Types holds the top-level types only.
	Types       []*TypeUnit `json:"types"`
	ContentHash string      `json:"content_hash"`
	// HasErrors is set when the parse tree contains ERROR nodes.
	HasErrors bool `json:"has_errors"`
}

// TypeUnit is a declared, anonymous or local type.
type TypeUnit struct {
	ID string `json:"id"`
	// Name is the simple name, "" for anonymous types.
	Name string `json:"name"`
	// BinaryName is the javac flat name: com.acme.Outer$1Local.
	BinaryName     string        `json:"binary_name"`
	Kind           TypeKind      `json:"kind"`
	Anonymous      bool          `json:"anonymous,omitempty"`
	Local          bool          `json:"local,omitempty"`
	TypeParameters []TypeParam   `json:"type_parameters,omitempty"`
	// Superclass is written as in source, generics included.
	Superclass string        `json:"superclass,omitempty"`
	Interfaces []string      `json:"interfaces,omitempty"`
	Methods    []*MethodUnit `json:"methods,omitempty"`
	Members    []*TypeUnit   `json:"members,omitempty"`
	// Initializers holds anonymous and local types declared in field
	// initializers and initializer blocks.
	Initializers []*TypeUnit `json:"initializers,omitempty"`
	HasErrors    bool        `json:"has_errors,omitempty"`
	StartLine    int         `json:"start_line"`
	EndLine      int         `json:"end_line"`
}

// MethodUnit is a method or constructor declaration.
type MethodUnit struct {
	Name        string `json:"name"`
	Constructor bool   `json:"constructor,omitempty"`
	// Implicit marks generated members: enum values(), record accessors.
	Implicit       bool        `json:"implicit,omitempty"`
	TypeParameters []TypeParam `json:"type_parameters,omitempty"`
	Parameters     []Param     `json:"parameters"`
	// ReturnType is "void" for constructors.
	ReturnType string      `json:"return_type"`
	LocalTypes []*TypeUnit `json:"local_types,omitempty"`
	StartLine  int         `json:"start_line"`
	EndLine    int         `json:"end_line"`
}

// Param is a formal parameter. Varargs keep their "..." suffix.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TypeParam is a declared type variable with its bounds as written.
type TypeParam struct {
	Name   string   `json:"name"`
	Bounds []string `json:"bounds,omitempty"`
}

// Walk visits t and every type declared inside it, depth first.
func (t *TypeUnit) Walk(fn func(*TypeUnit)) {
	if t == nil {
		return
	}
	fn(t)
	for _, m := range t.Members {
		m.Walk(fn)
	}
	for _, m := range t.Methods {
		for _, l := range m.LocalTypes {
			l.Walk(fn)
		}
	}
	for _, l := range t.Initializers {
		l.Walk(fn)
	}
}

// AllTypes lists every type of the file, depth first.
func (f *FileUnit) AllTypes() []*TypeUnit {
	var out []*TypeUnit
	for _, t := range f.Types {
		t.Walk(func(u *TypeUnit) { out = append(out, u) })
	}
	return out
}
