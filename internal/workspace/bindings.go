package workspace

import (
	"errors"
	"fmt"
	"strings"

	"symres/internal/env"
)

// ErrUnresolvedType is returned when a type reference names no known type.
var ErrUnresolvedType = errors.New("unresolved type")

var primitiveDescriptors = map[string]string{
	"boolean": "Z", "byte": "B", "char": "C", "short": "S",
	"int": "I", "long": "J", "float": "F", "double": "D", "void": "V",
}

// typeBinding is the compiler view of a type as the workspace computes it.
type typeBinding struct {
	key           string
	binary        string
	name          string
	primitive     bool
	dims          int
	element       *typeBinding
	typeVariable  bool
	parameterized bool
	raw           *typeBinding
	declType      *typeBinding
	declMethod    *methodBinding
	bounds        []*typeBinding
}

func (b *typeBinding) Key() string           { return b.key }
func (b *typeBinding) BinaryName() string    { return b.binary }
func (b *typeBinding) Name() string          { return b.name }
func (b *typeBinding) IsPrimitive() bool     { return b.primitive }
func (b *typeBinding) IsArray() bool         { return b.dims > 0 }
func (b *typeBinding) Dimensions() int       { return b.dims }
func (b *typeBinding) IsTypeVariable() bool  { return b.typeVariable }
func (b *typeBinding) IsParameterized() bool { return b.parameterized }

func (b *typeBinding) ElementType() env.TypeBinding {
	if b.element == nil {
		return nil
	}
	return b.element
}

func (b *typeBinding) Erasure() env.TypeBinding {
	if b.raw != nil {
		return b.raw
	}
	return b
}

func (b *typeBinding) DeclaringType() env.TypeBinding {
	if b.declType == nil {
		return nil
	}
	return b.declType
}

func (b *typeBinding) DeclaringMethod() env.MethodBinding {
	if b.declMethod == nil {
		return nil
	}
	return b.declMethod
}

func (b *typeBinding) Bounds() []env.TypeBinding {
	out := make([]env.TypeBinding, 0, len(b.bounds))
	for _, bb := range b.bounds {
		out = append(out, bb)
	}
	return out
}

// descriptor is the token used for b inside a method key.
func (b *typeBinding) descriptor() string {
	if b.typeVariable {
		return "T" + b.name + ";"
	}
	return b.key
}

type methodBinding struct {
	key         string
	name        string
	constructor bool
	declaring   *typeBinding
	params      []*typeBinding
	ret         *typeBinding
}

func (m *methodBinding) Key() string                          { return m.key }
func (m *methodBinding) Name() string                         { return m.name }
func (m *methodBinding) IsConstructor() bool                  { return m.constructor }
func (m *methodBinding) MethodDeclaration() env.MethodBinding { return m }

func (m *methodBinding) DeclaringClass() env.TypeBinding {
	if m.declaring == nil {
		return nil
	}
	return m.declaring
}

func (m *methodBinding) ParameterTypes() []env.TypeBinding {
	out := make([]env.TypeBinding, 0, len(m.params))
	for _, p := range m.params {
		out = append(out, p)
	}
	return out
}

func (m *methodBinding) ReturnType() env.TypeBinding {
	if m.ret == nil {
		return nil
	}
	return m.ret
}

// BindingOf returns the declared-type binding of t.
func (w *Workspace) BindingOf(t *TypeElement) env.TypeBinding {
	return declaredBinding(t.binary)
}

func declaredBinding(binary string) *typeBinding {
	return &typeBinding{
		key:    "L" + strings.ReplaceAll(binary, ".", "/") + ";",
		binary: binary,
		name:   binary[strings.LastIndexAny(binary, ".$")+1:],
	}
}

// TypeBinding binds a source type reference in the scope of a type and,
// optionally, a method. A nil scope resolves java.lang and fully qualified
// names only.
func (w *Workspace) TypeBinding(scope *TypeElement, m *MethodElement, ref env.TypeRef) (env.TypeBinding, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, err := w.bindLocked(scope, m, nil, ref, 0)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// MethodBinding returns the binding of m with a key in the
// "Lowner;.name(params)ret" form. Constructors have an empty name.
func (w *Workspace) MethodBinding(m *MethodElement) (env.MethodBinding, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	owner := m.owner
	mb := &methodBinding{
		name:        m.ElementName(),
		constructor: m.IsConstructor(),
		declaring:   declaredBinding(owner.binary),
	}

	var key strings.Builder
	key.WriteString(strings.TrimSuffix(mb.declaring.key, ";"))
	if len(owner.params) > 0 {
		key.WriteByte('<')
		for _, tp := range owner.params {
			key.WriteString("T" + tp.Name + ";")
		}
		key.WriteByte('>')
	}
	key.WriteString(";.")
	if !mb.constructor {
		key.WriteString(mb.name)
	}
	if len(m.typeParams) > 0 {
		key.WriteByte('<')
		for _, tp := range m.typeParams {
			key.WriteString(tp.Name + ":")
			if len(tp.Bounds) == 0 {
				key.WriteString("Ljava/lang/Object;")
				continue
			}
			for _, bound := range tp.Bounds {
				bb, err := w.bindLocked(owner, m, mb, bound, 0)
				if err != nil {
					return nil, fmt.Errorf("bound of %s: %w", tp.Name, err)
				}
				key.WriteString(bb.descriptor())
			}
		}
		key.WriteByte('>')
	}

	key.WriteByte('(')
	for i, ref := range m.params {
		p, err := w.bindLocked(owner, m, mb, ref, 0)
		if err != nil {
			return nil, fmt.Errorf("parameter %d of %s: %w", i, m.Key(), err)
		}
		mb.params = append(mb.params, p)
		key.WriteString(p.descriptor())
	}
	key.WriteByte(')')

	ret, err := w.bindLocked(owner, m, mb, m.ret, 0)
	if err != nil {
		return nil, fmt.Errorf("return type of %s: %w", m.Key(), err)
	}
	if mb.constructor {
		ret = &typeBinding{key: "V", name: "void", primitive: true}
	}
	mb.ret = ret
	key.WriteString(ret.descriptor())

	mb.key = key.String()
	return mb, nil
}

const maxBindDepth = 16

func (w *Workspace) bindLocked(scope *TypeElement, m *MethodElement, mb *methodBinding, ref env.TypeRef, depth int) (*typeBinding, error) {
	if depth > maxBindDepth {
		return nil, fmt.Errorf("%w: %s nests too deep", ErrUnresolvedType, ref)
	}
	leaf, err := w.bindLeafLocked(scope, m, mb, ref, depth)
	if err != nil {
		return nil, err
	}
	if ref.Dims == 0 {
		return leaf, nil
	}
	return &typeBinding{
		key:     strings.Repeat("[", ref.Dims) + leaf.descriptor(),
		name:    leaf.name + strings.Repeat("[]", ref.Dims),
		dims:    ref.Dims,
		element: leaf,
	}, nil
}

func (w *Workspace) bindLeafLocked(scope *TypeElement, m *MethodElement, mb *methodBinding, ref env.TypeRef, depth int) (*typeBinding, error) {
	if d, ok := primitiveDescriptors[ref.Name]; ok {
		return &typeBinding{key: d, name: ref.Name, primitive: true}, nil
	}

	if m != nil {
		for _, tp := range m.typeParams {
			if tp.Name != ref.Name {
				continue
			}
			tv := &typeBinding{name: tp.Name, typeVariable: true, declMethod: mb}
			for _, bound := range tp.Bounds {
				// A bound may mention the variable itself: <T extends Comparable<T>>.
				bound.Args = nil
				bb, err := w.bindLocked(scope, m, mb, bound, depth+1)
				if err != nil {
					return nil, err
				}
				tv.bounds = append(tv.bounds, bb)
			}
			tv.key = methodTypeVarKey(mb, tp.Name)
			return tv, nil
		}
	}

	for s := scope; s != nil; s = s.enclosing {
		for _, tp := range s.params {
			if tp.Name == ref.Name {
				decl := declaredBinding(s.binary)
				return &typeBinding{
					key:          decl.key + ":T" + tp.Name + ";",
					name:         tp.Name,
					typeVariable: true,
					declType:     decl,
				}, nil
			}
		}
	}

	var entry *fileEntry
	if scope != nil {
		entry = scope.entry
	}
	binary, ok := w.resolveLocked(scope, entry, ref.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedType, ref.Name)
	}
	raw := declaredBinding(binary)
	if len(ref.Args) == 0 {
		return raw, nil
	}

	pb := &typeBinding{binary: binary, name: raw.name, parameterized: true, raw: raw}
	var args strings.Builder
	for _, a := range ref.Args {
		ab, err := w.bindLocked(scope, m, mb, a, depth+1)
		if err != nil {
			return nil, err
		}
		args.WriteString(ab.descriptor())
	}
	pb.key = strings.TrimSuffix(raw.key, ";") + "<" + args.String() + ">;"
	return pb, nil
}

func methodTypeVarKey(mb *methodBinding, name string) string {
	if mb == nil {
		return "T" + name + ";"
	}
	return mb.declaring.key + "." + mb.name + ":T" + name + ";"
}
