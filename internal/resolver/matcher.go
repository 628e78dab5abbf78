package resolver

import (
	"context"
	"fmt"

	"symres/internal/env"
	"symres/internal/names"
)

// findMethod looks for name on its declaring type first and then on every
// supertype in hierarchy order. The hierarchy is only computed when the
// declaring type itself has no match.
func (r *Resolver) findMethod(ctx context.Context, name names.MethodName) (env.Method, error) {
	// Static initializers and compiler-generated methods have no source
	// declaration to hand out.
	if name.IsStaticInit() || name.IsSynthetic() {
		return nil, errNotFound
	}
	owner, err := r.lookupType(ctx, name.DeclaringType(), true)
	if err != nil {
		return nil, err
	}
	if !owner.StructureKnown() {
		return nil, fmt.Errorf("%w: %s", errStructureUnknown, owner.Key())
	}

	want := name.Parameters()
	if m := r.matchIn(owner, name, want); m != nil {
		return m, nil
	}

	h, err := r.env.SupertypeHierarchy(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("supertype hierarchy of %s: %w", owner.Key(), err)
	}
	chain := h.AllSupertypes(owner)
	if owner.IsInterface() {
		chain = append(chain, h.RootClasses()...)
	}
	for _, t := range chain {
		if m := r.matchIn(t, name, want); m != nil {
			return m, nil
		}
	}
	return nil, errNotFound
}

func (r *Resolver) matchIn(t env.Type, name names.MethodName, want []names.TypeName) env.Method {
	for _, m := range t.Methods() {
		if r.matches(t, m, name, want) {
			return m
		}
	}
	return nil
}

// matches compares erased class names and array dimensions per parameter.
// Package qualification is ignored so that a name whose packages were guessed
// by the caller still finds its method; the enclosing types of a nested
// parameter are not. A live parameter that does not resolve never matches.
func (r *Resolver) matches(t env.Type, m env.Method, name names.MethodName, want []names.TypeName) bool {
	if name.IsConstructor() || m.IsConstructor() {
		if !(name.IsConstructor() && m.IsConstructor()) {
			return false
		}
	} else if m.ElementName() != name.Name() {
		return false
	}

	refs := m.ParameterTypes()
	if len(refs) != len(want) {
		return false
	}
	for i, ref := range refs {
		live, ok := r.tr.ResolveRef(t, m, ref)
		if !ok {
			return false
		}
		if live.ArrayDimensions() != want[i].ArrayDimensions() || live.ClassName() != want[i].ClassName() {
			return false
		}
	}
	return true
}
