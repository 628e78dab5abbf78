package workspace

import (
	"strings"

	"symres/internal/env"
	"symres/internal/extractor"
	"symres/internal/storage"
)

// TypeElement is a live type handle.
type TypeElement struct {
	ws           *Workspace
	unit         *extractor.TypeUnit
	binary       string
	file         string
	pkg          string
	generation   uint64
	entry        *fileEntry
	enclosing    *TypeElement
	members      []*TypeElement
	methods      []*MethodElement
	initializers []*TypeElement
	params       []env.TypeParameter
	speculative  bool
}

var _ env.Type = (*TypeElement)(nil)

func (t *TypeElement) Key() string {
	return "L" + strings.ReplaceAll(t.binary, ".", "/") + ";"
}

func (t *TypeElement) Exists() bool      { return t.ws.isLive(t.file, t.generation) }
func (t *TypeElement) Speculative() bool { return t.speculative }

// ElementName is empty for anonymous types.
func (t *TypeElement) ElementName() string        { return t.unit.Name }
func (t *TypeElement) FullyQualifiedName() string { return t.binary }
func (t *TypeElement) BinaryName() string         { return t.binary }
func (t *TypeElement) Package() string            { return t.pkg }
func (t *TypeElement) File() string               { return t.file }
func (t *TypeElement) Line() int                  { return t.unit.StartLine }
func (t *TypeElement) Kind() extractor.TypeKind   { return t.unit.Kind }
func (t *TypeElement) IsAnonymous() bool          { return t.unit.Anonymous }
func (t *TypeElement) IsLocal() bool              { return t.unit.Local }

func (t *TypeElement) IsInterface() bool {
	return t.unit.Kind == extractor.KindInterface || t.unit.Kind == extractor.KindAnnotation
}

// StructureKnown is false when the declaration did not parse cleanly.
func (t *TypeElement) StructureKnown() bool { return !t.unit.HasErrors }

func (t *TypeElement) EnclosingType() env.Type {
	if t.enclosing == nil {
		return nil
	}
	return t.enclosing
}

func (t *TypeElement) Types() []env.Type {
	out := make([]env.Type, 0, len(t.members))
	for _, m := range t.members {
		out = append(out, t.derive(m))
	}
	return out
}

func (t *TypeElement) Methods() []env.Method {
	out := make([]env.Method, 0, len(t.methods))
	for _, m := range t.methods {
		if t.speculative {
			m = m.asSpeculative(t)
		}
		out = append(out, m)
	}
	return out
}

// Initializers lists anonymous and local types declared in field
// initializers and initializer blocks.
func (t *TypeElement) Initializers() []*TypeElement {
	out := make([]*TypeElement, 0, len(t.initializers))
	for _, i := range t.initializers {
		out = append(out, t.derive(i))
	}
	return out
}

func (t *TypeElement) TypeParameters() []env.TypeParameter { return t.params }

func (t *TypeElement) ResolveType(name string) (string, bool) {
	t.ws.mu.RLock()
	defer t.ws.mu.RUnlock()
	return t.ws.resolveLocked(t, t.entry, name)
}

func (t *TypeElement) record() storage.TypeRecord {
	return storage.TypeRecord{
		Key:       t.Key(),
		Binary:    t.binary,
		Qualified: qualifiedName(t.binary),
		Simple:    t.unit.Name,
		Package:   t.pkg,
		Kind:      string(t.unit.Kind),
		File:      t.file,
	}
}

// derive propagates the speculative flag of t to a related handle.
func (t *TypeElement) derive(other *TypeElement) *TypeElement {
	if t.speculative && !other.speculative {
		return Speculative(other)
	}
	return other
}

// Speculative returns a copy of t as a completion context would produce it.
// The copy denotes the same declaration but must never be cached.
func Speculative(t *TypeElement) *TypeElement {
	cp := *t
	cp.speculative = true
	return &cp
}

// MethodElement is a live method handle.
type MethodElement struct {
	owner       *TypeElement
	unit        *extractor.MethodUnit
	params      []env.TypeRef
	ret         env.TypeRef
	typeParams  []env.TypeParameter
	locals      []*TypeElement
	speculative bool
}

var _ env.Method = (*MethodElement)(nil)

func newMethodElement(owner *TypeElement, u *extractor.MethodUnit) *MethodElement {
	m := &MethodElement{
		owner:      owner,
		unit:       u,
		ret:        env.ParseTypeRef(u.ReturnType),
		typeParams: typeParameters(u.TypeParameters),
	}
	for _, p := range u.Parameters {
		m.params = append(m.params, env.ParseTypeRef(p.Type))
	}
	return m
}

// Key identifies the method by owner, name and parameter types as written.
func (m *MethodElement) Key() string {
	params := make([]string, 0, len(m.params))
	for _, p := range m.params {
		params = append(params, p.String())
	}
	return m.owner.Key() + "." + m.ElementName() + "(" + strings.Join(params, ",") + ")"
}

func (m *MethodElement) Exists() bool      { return m.owner.Exists() }
func (m *MethodElement) Speculative() bool { return m.speculative }

// ElementName of a constructor is the simple name of its type.
func (m *MethodElement) ElementName() string {
	if m.unit.Constructor {
		return m.owner.unit.Name
	}
	return m.unit.Name
}

func (m *MethodElement) DeclaringType() env.Type             { return m.owner }
func (m *MethodElement) Owner() *TypeElement                 { return m.owner }
func (m *MethodElement) IsConstructor() bool                 { return m.unit.Constructor }
func (m *MethodElement) IsImplicit() bool                    { return m.unit.Implicit }
func (m *MethodElement) Line() int                           { return m.unit.StartLine }
func (m *MethodElement) ParameterTypes() []env.TypeRef       { return m.params }
func (m *MethodElement) ReturnType() env.TypeRef             { return m.ret }
func (m *MethodElement) TypeParameters() []env.TypeParameter { return m.typeParams }

func (m *MethodElement) LocalTypes() []env.Type {
	out := make([]env.Type, 0, len(m.locals))
	for _, l := range m.locals {
		if m.speculative {
			l = m.owner.derive(l)
		}
		out = append(out, l)
	}
	return out
}

func (m *MethodElement) asSpeculative(owner *TypeElement) *MethodElement {
	cp := *m
	cp.owner = owner
	cp.speculative = true
	return &cp
}

// SpeculativeMethod returns a completion-context copy of m.
func SpeculativeMethod(m *MethodElement) *MethodElement {
	return m.asSpeculative(Speculative(m.owner))
}
