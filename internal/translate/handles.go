package translate

import (
	"fmt"

	"symres/internal/env"
	"symres/internal/names"
)

// TypeNameOf derives the canonical name of a live type handle.
func (t *Translator) TypeNameOf(h env.Type) (names.TypeName, bool) {
	if h == nil {
		return names.TypeName{}, false
	}
	tn, err := names.FromBinaryName(h.FullyQualifiedName())
	if err != nil {
		t.diag.Report(env.SeverityWarning, "cannot derive canonical name of "+h.Key(), err)
		return names.TypeName{}, false
	}
	return tn, true
}

// MethodNameOf derives the canonical name of a live method handle. Type
// variables are erased with the same rule as bindings: a variable declared
// by a type becomes that type, one declared by the method becomes its first
// bound or Object.
func (t *Translator) MethodNameOf(m env.Method) (names.MethodName, bool) {
	if m == nil {
		return names.MethodName{}, false
	}
	scope := m.DeclaringType()
	owner, ok := t.TypeNameOf(scope)
	if !ok {
		return names.MethodName{}, false
	}

	name := m.ElementName()
	ret := names.Void
	if m.IsConstructor() {
		name = names.ConstructorName
	} else {
		ret, ok = t.ResolveRef(scope, m, m.ReturnType())
		if !ok {
			t.diag.Report(env.SeverityWarning, fmt.Sprintf("unresolved return type %s of %s", m.ReturnType(), m.Key()), nil)
			return names.MethodName{}, false
		}
	}

	var params []names.TypeName
	for _, ref := range m.ParameterTypes() {
		p, ok := t.ResolveRef(scope, m, ref)
		if !ok {
			t.diag.Report(env.SeverityWarning, fmt.Sprintf("unresolved parameter type %s of %s", ref, m.Key()), nil)
			return names.MethodName{}, false
		}
		params = append(params, p)
	}

	mn, err := names.NewMethodName(owner, name, params, ret)
	if err != nil {
		t.diag.Report(env.SeverityWarning, "cannot derive canonical name of "+m.Key(), err)
		return names.MethodName{}, false
	}
	return mn, true
}

// ResolveRef resolves a source-level type reference in the scope of a type
// and, optionally, a method.
func (t *Translator) ResolveRef(scope env.Type, m env.Method, ref env.TypeRef) (names.TypeName, bool) {
	return t.resolveRef(scope, m, ref, 0)
}

func (t *Translator) resolveRef(scope env.Type, m env.Method, ref env.TypeRef, depth int) (names.TypeName, bool) {
	if ref.Name == "" || depth > maxDepth {
		return names.TypeName{}, false
	}
	if p, ok := names.PrimitiveFor(ref.Name); ok {
		if p == names.Void && ref.Dims > 0 {
			return names.TypeName{}, false
		}
		return p.ArrayOf(ref.Dims), true
	}

	if m != nil {
		for _, tp := range m.TypeParameters() {
			if tp.Name != ref.Name {
				continue
			}
			base := names.Object
			if len(tp.Bounds) > 0 {
				bound := tp.Bounds[0]
				bound.Dims = 0
				if b, ok := t.resolveRef(scope, m, bound, depth+1); ok {
					base = b
				}
			}
			return base.ArrayOf(ref.Dims), true
		}
	}

	for s := scope; s != nil; s = s.EnclosingType() {
		for _, tp := range s.TypeParameters() {
			if tp.Name == ref.Name {
				owner, ok := t.TypeNameOf(s)
				return owner.ArrayOf(ref.Dims), ok
			}
		}
	}

	if scope == nil {
		return names.TypeName{}, false
	}
	binary, ok := scope.ResolveType(ref.Name)
	if !ok {
		return names.TypeName{}, false
	}
	tn, err := names.FromBinaryName(binary)
	if err != nil {
		return names.TypeName{}, false
	}
	return tn.ArrayOf(ref.Dims), true
}
