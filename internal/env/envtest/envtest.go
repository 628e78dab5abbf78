// Package envtest provides in-memory fakes of the env collaborators for
// tests.
package envtest

import (
	"context"
	"strings"
	"sync"

	"symres/internal/env"
)

// Binding is a configurable env.TypeBinding.
type Binding struct {
	KeyValue      string
	Binary        string
	SimpleName    string
	Primitive     bool
	Dims          int
	Element       *Binding
	TypeVariable  bool
	Parameterized bool
	Raw           *Binding
	DeclaringTyp  *Binding
	DeclaringMeth *MethodBinding
	BoundList     []*Binding
	PanicOnBinary bool
}

// Declared returns a binding for a declared type such as "com.acme.Outer$Inner".
func Declared(binary string) *Binding {
	simple := binary[strings.LastIndexAny(binary, ".$")+1:]
	return &Binding{
		KeyValue:   "L" + strings.ReplaceAll(binary, ".", "/") + ";",
		Binary:     binary,
		SimpleName: simple,
	}
}

// Primitive returns a binding for a primitive keyword.
func Primitive(keyword string) *Binding {
	return &Binding{KeyValue: keyword, SimpleName: keyword, Primitive: true}
}

// ArrayOf wraps leaf into a dims-dimensional array binding.
func ArrayOf(leaf *Binding, dims int) *Binding {
	return &Binding{
		KeyValue:   strings.Repeat("[", dims) + leaf.KeyValue,
		SimpleName: leaf.SimpleName + strings.Repeat("[]", dims),
		Dims:       dims,
		Element:    leaf,
	}
}

// Parameterize returns a parameterized instance of raw.
func Parameterize(raw *Binding, args ...*Binding) *Binding {
	var keys []string
	for _, a := range args {
		keys = append(keys, a.KeyValue)
	}
	return &Binding{
		KeyValue:      strings.TrimSuffix(raw.KeyValue, ";") + "<" + strings.Join(keys, "") + ">;",
		Binary:        raw.Binary,
		SimpleName:    raw.SimpleName,
		Parameterized: true,
		Raw:           raw,
	}
}

// TypeVar returns a type variable binding.
func TypeVar(name string, declaringType *Binding, bounds ...*Binding) *Binding {
	return &Binding{
		KeyValue:     "T" + name + ";",
		SimpleName:   name,
		TypeVariable: true,
		DeclaringTyp: declaringType,
		BoundList:    bounds,
	}
}

func (b *Binding) Key() string { return b.KeyValue }

func (b *Binding) BinaryName() string {
	if b.PanicOnBinary {
		panic("binding is broken")
	}
	return b.Binary
}

func (b *Binding) Name() string         { return b.SimpleName }
func (b *Binding) IsPrimitive() bool    { return b.Primitive }
func (b *Binding) IsArray() bool        { return b.Dims > 0 }
func (b *Binding) Dimensions() int      { return b.Dims }
func (b *Binding) IsTypeVariable() bool { return b.TypeVariable }
func (b *Binding) IsParameterized() bool {
	return b.Parameterized
}

func (b *Binding) ElementType() env.TypeBinding {
	if b.Element == nil {
		return nil
	}
	return b.Element
}

func (b *Binding) Erasure() env.TypeBinding {
	if b.Raw != nil {
		return b.Raw
	}
	return b
}

func (b *Binding) DeclaringType() env.TypeBinding {
	if b.DeclaringTyp == nil {
		return nil
	}
	return b.DeclaringTyp
}

func (b *Binding) DeclaringMethod() env.MethodBinding {
	if b.DeclaringMeth == nil {
		return nil
	}
	return b.DeclaringMeth
}

func (b *Binding) Bounds() []env.TypeBinding {
	out := make([]env.TypeBinding, 0, len(b.BoundList))
	for _, bb := range b.BoundList {
		out = append(out, bb)
	}
	return out
}

// MethodBinding is a configurable env.MethodBinding.
type MethodBinding struct {
	KeyValue    string
	MethodName  string
	Constructor bool
	Declaring   *Binding
	Declaration *MethodBinding
	Params      []*Binding
	Return      *Binding
}

func (m *MethodBinding) Key() string         { return m.KeyValue }
func (m *MethodBinding) Name() string        { return m.MethodName }
func (m *MethodBinding) IsConstructor() bool { return m.Constructor }

func (m *MethodBinding) ReturnType() env.TypeBinding {
	if m.Return == nil {
		return nil
	}
	return m.Return
}

func (m *MethodBinding) DeclaringClass() env.TypeBinding {
	if m.Declaring == nil {
		return nil
	}
	return m.Declaring
}

func (m *MethodBinding) MethodDeclaration() env.MethodBinding {
	if m.Declaration == nil {
		return m
	}
	return m.Declaration
}

func (m *MethodBinding) ParameterTypes() []env.TypeBinding {
	out := make([]env.TypeBinding, 0, len(m.Params))
	for _, p := range m.Params {
		out = append(out, p)
	}
	return out
}

// Variable is a configurable env.VariableBinding.
type Variable struct {
	VarName string
	VarType *Binding
}

func (v *Variable) Name() string { return v.VarName }

func (v *Variable) Type() env.TypeBinding {
	if v.VarType == nil {
		return nil
	}
	return v.VarType
}

// Type is an in-memory env.Type. Nested types and methods are attached with
// AddType and AddMethod so their back-references are set.
type Type struct {
	Binary     string
	Interface  bool
	Unknown    bool
	Dead       bool
	Tentative  bool
	Enclosing  *Type
	Members    []*Type
	MethodList []*Method
	Params     []env.TypeParameter
	// Scope maps source names to binary names for ResolveType.
	Scope map[string]string
	// KeyOverride replaces the key derived from Binary.
	KeyOverride string
}

func NewType(binary string) *Type {
	return &Type{Binary: binary, Scope: map[string]string{}}
}

// AddType attaches a member type.
func (t *Type) AddType(member *Type) *Type {
	member.Enclosing = t
	t.Members = append(t.Members, member)
	return member
}

// AddMethod attaches a method declared by t.
func (t *Type) AddMethod(m *Method) *Method {
	m.Owner = t
	t.MethodList = append(t.MethodList, m)
	return m
}

func (t *Type) Key() string {
	if t.KeyOverride != "" {
		return t.KeyOverride
	}
	return "L" + strings.ReplaceAll(t.Binary, ".", "/") + ";"
}

func (t *Type) Exists() bool      { return !t.Dead }
func (t *Type) Speculative() bool { return t.Tentative }
func (t *Type) IsInterface() bool { return t.Interface }
func (t *Type) StructureKnown() bool {
	return !t.Unknown
}

func (t *Type) ElementName() string {
	return t.Binary[strings.LastIndexAny(t.Binary, ".$")+1:]
}

func (t *Type) FullyQualifiedName() string { return t.Binary }

func (t *Type) EnclosingType() env.Type {
	if t.Enclosing == nil {
		return nil
	}
	return t.Enclosing
}

func (t *Type) Types() []env.Type {
	out := make([]env.Type, 0, len(t.Members))
	for _, m := range t.Members {
		out = append(out, m)
	}
	return out
}

func (t *Type) Methods() []env.Method {
	out := make([]env.Method, 0, len(t.MethodList))
	for _, m := range t.MethodList {
		out = append(out, m)
	}
	return out
}

func (t *Type) TypeParameters() []env.TypeParameter { return t.Params }

func (t *Type) ResolveType(name string) (string, bool) {
	for s := t; s != nil; s = s.Enclosing {
		if b, ok := s.Scope[name]; ok {
			return b, true
		}
	}
	if _, ok := javaLang[name]; ok {
		return "java.lang." + name, true
	}
	if strings.Contains(name, ".") {
		return name, true
	}
	return "", false
}

var javaLang = map[string]struct{}{
	"Object": {}, "String": {}, "Integer": {}, "Number": {}, "Comparable": {},
}

// Method is an in-memory env.Method.
type Method struct {
	Name        string
	Constructor bool
	Params      []env.TypeRef
	Return      env.TypeRef
	TypeParams  []env.TypeParameter
	Locals      []*Type
	Owner       *Type
	Dead        bool
	Tentative   bool
}

// NewMethod builds a method from source-level parameter type expressions.
func NewMethod(name, ret string, params ...string) *Method {
	m := &Method{Name: name, Return: env.ParseTypeRef(ret)}
	for _, p := range params {
		m.Params = append(m.Params, env.ParseTypeRef(p))
	}
	return m
}

// NewConstructor builds a constructor.
func NewConstructor(params ...string) *Method {
	m := NewMethod("", "void", params...)
	m.Constructor = true
	return m
}

// AddLocal attaches an anonymous or local class declared in the body.
func (m *Method) AddLocal(local *Type) *Type {
	local.Enclosing = m.Owner
	m.Locals = append(m.Locals, local)
	return local
}

func (m *Method) Key() string {
	var params []string
	for _, p := range m.Params {
		params = append(params, p.String())
	}
	return m.Owner.Key() + "." + m.ElementName() + "(" + strings.Join(params, ",") + ")"
}

func (m *Method) Exists() bool      { return !m.Dead }
func (m *Method) Speculative() bool { return m.Tentative }

func (m *Method) ElementName() string {
	if m.Constructor {
		return m.Owner.ElementName()
	}
	return m.Name
}

func (m *Method) DeclaringType() env.Type             { return m.Owner }
func (m *Method) IsConstructor() bool                 { return m.Constructor }
func (m *Method) ParameterTypes() []env.TypeRef       { return m.Params }
func (m *Method) ReturnType() env.TypeRef             { return m.Return }
func (m *Method) TypeParameters() []env.TypeParameter { return m.TypeParams }

func (m *Method) LocalTypes() []env.Type {
	out := make([]env.Type, 0, len(m.Locals))
	for _, l := range m.Locals {
		out = append(out, l)
	}
	return out
}

// Hierarchy is a precomputed env.Hierarchy.
type Hierarchy struct {
	Supers map[*Type][]*Type
	Roots  []*Type
}

func (h *Hierarchy) AllSupertypes(t env.Type) []env.Type {
	tt, ok := t.(*Type)
	if !ok {
		return nil
	}
	var out []env.Type
	for _, s := range h.Supers[tt] {
		out = append(out, s)
	}
	return out
}

func (h *Hierarchy) RootClasses() []env.Type {
	var out []env.Type
	for _, r := range h.Roots {
		out = append(out, r)
	}
	return out
}

// Environment is an in-memory env.Environment that counts searches.
type Environment struct {
	mu        sync.Mutex
	Types     []*Type
	Hierarchy *Hierarchy
	// SearchErr is returned by SearchTypes when set.
	SearchErr error
	// Block makes SearchTypes wait for context cancellation.
	Block       bool
	searchCalls int
}

func NewEnvironment(types ...*Type) *Environment {
	return &Environment{Types: types, Hierarchy: &Hierarchy{Supers: map[*Type][]*Type{}}}
}

func (e *Environment) SupertypeHierarchy(ctx context.Context, t env.Type) (env.Hierarchy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.Hierarchy, nil
}

func (e *Environment) SearchTypes(ctx context.Context, pattern string) ([]env.Type, error) {
	e.mu.Lock()
	e.searchCalls++
	block, searchErr := e.Block, e.SearchErr
	e.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if searchErr != nil {
		return nil, searchErr
	}

	var out []env.Type
	for _, t := range e.Types {
		qualified := strings.ReplaceAll(t.Binary, "$", ".")
		simple := t.ElementName()
		if strings.EqualFold(qualified, pattern) || strings.EqualFold(simple, pattern) {
			out = append(out, t)
		}
	}
	return out, nil
}

// SearchCalls returns how many times SearchTypes ran.
func (e *Environment) SearchCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searchCalls
}
