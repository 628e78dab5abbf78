// Package env declares the live environment the resolver works against:
// symbol handles, compiler bindings, the type hierarchy service, workspace
// search and the diagnostics sink.
package env

import "context"

// Element is a live symbol handle. It is only valid within the snapshot of
// the environment that produced it.
type Element interface {
	// Key is the structural key of the element, e.g. "Lcom/acme/Outer$Inner;".
	Key() string
	// Exists reports whether the handle still denotes a live symbol.
	Exists() bool
	// Speculative marks handles produced by completion contexts. They must
	// never be cached.
	Speculative() bool
}

// Type is a live type handle.
type Type interface {
	Element
	ElementName() string
	// FullyQualifiedName uses '.' between packages and '$' between nested
	// types. It may carry type parameters.
	FullyQualifiedName() string
	IsInterface() bool
	StructureKnown() bool
	// EnclosingType is nil for top-level types.
	EnclosingType() Type
	// Types returns the directly nested member types.
	Types() []Type
	Methods() []Method
	TypeParameters() []TypeParameter
	// ResolveType resolves a source-level name in the scope of this type and
	// returns its binary name.
	ResolveType(name string) (string, bool)
}

// Method is a live method handle.
type Method interface {
	Element
	ElementName() string
	DeclaringType() Type
	IsConstructor() bool
	ParameterTypes() []TypeRef
	ReturnType() TypeRef
	TypeParameters() []TypeParameter
	// LocalTypes returns anonymous and local classes declared in the body.
	LocalTypes() []Type
}

// Hierarchy is a supertype hierarchy computed for one focus type.
type Hierarchy interface {
	// AllSupertypes lists every supertype, nearest first.
	AllSupertypes(t Type) []Type
	RootClasses() []Type
}

// Environment is the workspace-wide service surface.
type Environment interface {
	SupertypeHierarchy(ctx context.Context, t Type) (Hierarchy, error)
	// SearchTypes runs an exact-match, declarations-only, case-insensitive
	// search for a simple or dotted qualified type name.
	SearchTypes(ctx context.Context, pattern string) ([]Type, error)
}
