package names

import (
	"fmt"
	"strings"
)

const (
	ConstructorName        = "<init>"
	SubtypeConstructorName = "<subtype-init>"
	StaticInitName         = "<clinit>"
)

// MethodName is a canonical method name such as
// "Lcom/acme/Outer.foo(Ljava/lang/String;I)V".
type MethodName struct {
	id string
}

type methodParts struct {
	owner  TypeName
	name   string
	params []TypeName
	ret    TypeName
}

// ParseMethodName validates s as a canonical method name.
func ParseMethodName(s string) (MethodName, error) {
	if _, err := splitMethod(s); err != nil {
		return MethodName{}, err
	}
	return MethodName{id: s}, nil
}

// MustMethodName is like ParseMethodName but panics on invalid input.
func MustMethodName(s string) MethodName {
	m, err := ParseMethodName(s)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMethodName assembles a canonical method name from its parts.
func NewMethodName(owner TypeName, name string, params []TypeName, ret TypeName) (MethodName, error) {
	if !owner.IsDeclared() || owner.IsArray() {
		return MethodName{}, fmt.Errorf("%w: owner %q is not a declared type", ErrInvalidName, owner.id)
	}
	if name == "" {
		return MethodName{}, fmt.Errorf("%w: empty method name", ErrInvalidName)
	}
	var b strings.Builder
	b.WriteString(owner.id)
	b.WriteByte('.')
	b.WriteString(name)
	b.WriteByte('(')
	for _, p := range params {
		if p.IsZero() || p == Void {
			return MethodName{}, fmt.Errorf("%w: bad parameter type in %s", ErrInvalidName, name)
		}
		b.WriteString(Descriptor(p))
	}
	b.WriteByte(')')
	if ret.IsZero() {
		return MethodName{}, fmt.Errorf("%w: missing return type for %s", ErrInvalidName, name)
	}
	b.WriteString(Descriptor(ret))
	return ParseMethodName(b.String())
}

func splitMethod(s string) (methodParts, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return methodParts{}, fmt.Errorf("%w: %q: missing parameter list", ErrInvalidName, s)
	}
	dot := strings.LastIndexByte(s[:open], '.')
	if dot <= 0 {
		return methodParts{}, fmt.Errorf("%w: %q: missing owner", ErrInvalidName, s)
	}
	owner, err := ParseTypeName(s[:dot])
	if err != nil || owner.id != s[:dot] || !owner.IsDeclared() || owner.IsArray() {
		return methodParts{}, fmt.Errorf("%w: %q: bad owner", ErrInvalidName, s)
	}
	name := s[dot+1 : open]
	if name == "" {
		return methodParts{}, fmt.Errorf("%w: %q: empty method name", ErrInvalidName, s)
	}
	closing := strings.IndexByte(s[open:], ')')
	if closing < 0 {
		return methodParts{}, fmt.Errorf("%w: %q: unterminated parameter list", ErrInvalidName, s)
	}
	closing += open
	params, err := typesFromDescriptors(s[open+1 : closing])
	if err != nil {
		return methodParts{}, fmt.Errorf("%q: %w", s, err)
	}
	rets, err := typesFromDescriptors(s[closing+1:])
	if err != nil {
		return methodParts{}, fmt.Errorf("%q: %w", s, err)
	}
	if len(rets) != 1 {
		return methodParts{}, fmt.Errorf("%w: %q: expected one return type", ErrInvalidName, s)
	}
	for _, p := range params {
		if p == Void {
			return methodParts{}, fmt.Errorf("%w: %q: void parameter", ErrInvalidName, s)
		}
	}
	return methodParts{owner: owner, name: name, params: params, ret: rets[0]}, nil
}

func typesFromDescriptors(s string) ([]TypeName, error) {
	tokens, err := SplitDescriptors(s)
	if err != nil {
		return nil, err
	}
	out := make([]TypeName, 0, len(tokens))
	for _, tok := range tokens {
		t, err := TypeFromDescriptor(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (m MethodName) parts() methodParts {
	p, _ := splitMethod(m.id)
	return p
}

func (m MethodName) Identifier() string { return m.id }

func (m MethodName) String() string { return m.id }

func (m MethodName) IsZero() bool { return m.id == "" }

func (m MethodName) DeclaringType() TypeName { return m.parts().owner }

func (m MethodName) Name() string { return m.parts().name }

func (m MethodName) Parameters() []TypeName { return m.parts().params }

func (m MethodName) ReturnType() TypeName { return m.parts().ret }

// Signature is the name plus descriptor: "foo(Ljava/lang/String;I)V".
func (m MethodName) Signature() string {
	if m.id == "" {
		return ""
	}
	return m.id[strings.LastIndexByte(m.id[:strings.IndexByte(m.id, '(')], '.')+1:]
}

// Descriptor is the parenthesised parameter list plus return type.
func (m MethodName) Descriptor() string {
	if i := strings.IndexByte(m.id, '('); i >= 0 {
		return m.id[i:]
	}
	return ""
}

func (m MethodName) IsConstructor() bool {
	n := m.Name()
	return n == ConstructorName || n == SubtypeConstructorName
}

func (m MethodName) IsStaticInit() bool { return m.Name() == StaticInitName }

// IsSynthetic reports compiler-generated names such as "access$000".
func (m MethodName) IsSynthetic() bool { return strings.Contains(m.Name(), "$") }

// Rebase returns the same signature declared on owner.
func (m MethodName) Rebase(owner TypeName) (MethodName, error) {
	p := m.parts()
	return NewMethodName(owner, p.name, p.params, p.ret)
}
