package names

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ErrInvalidName is returned when an identifier is not in canonical form.
var ErrInvalidName = errors.New("invalid canonical name")

// Name is implemented by TypeName and MethodName.
type Name interface {
	Identifier() string
}

// TypeName is a canonical, environment-independent type name such as
// "Ljava/util/Map$Entry", "[I" or "[[Ljava/lang/String".
// The zero value is not a valid name.
type TypeName struct {
	id string
}

var anonymousRe = regexp.MustCompile(`\$\d+$`)

var primitiveKeywords = map[byte]string{
	'Z': "boolean",
	'B': "byte",
	'C': "char",
	'S': "short",
	'I': "int",
	'J': "long",
	'F': "float",
	'D': "double",
	'V': "void",
}

var (
	Boolean = TypeName{id: "Z"}
	Byte    = TypeName{id: "B"}
	Char    = TypeName{id: "C"}
	Short   = TypeName{id: "S"}
	Int     = TypeName{id: "I"}
	Long    = TypeName{id: "J"}
	Float   = TypeName{id: "F"}
	Double  = TypeName{id: "D"}
	Void    = TypeName{id: "V"}

	Object = TypeName{id: "Ljava/lang/Object"}
	String = TypeName{id: "Ljava/lang/String"}
	// Null is the type of the null literal.
	Null = TypeName{id: "Lnull"}
)

// ParseTypeName validates s and returns its canonical TypeName. Anything from
// the first '<' on is discarded.
func ParseTypeName(s string) (TypeName, error) {
	if i := strings.IndexByte(s, '<'); i >= 0 {
		s = s[:i]
	}
	if err := validateType(s); err != nil {
		return TypeName{}, err
	}
	return TypeName{id: s}, nil
}

// MustTypeName is like ParseTypeName but panics on invalid input.
func MustTypeName(s string) TypeName {
	t, err := ParseTypeName(s)
	if err != nil {
		panic(err)
	}
	return t
}

// PrimitiveFor returns the canonical primitive for a Java keyword such as "int".
func PrimitiveFor(keyword string) (TypeName, bool) {
	for c, kw := range primitiveKeywords {
		if kw == keyword {
			return TypeName{id: string(c)}, true
		}
	}
	return TypeName{}, false
}

// FromBinaryName turns a Java binary name ("java.util.Map$Entry") into a
// declared TypeName.
func FromBinaryName(binary string) (TypeName, error) {
	if binary == "" {
		return TypeName{}, fmt.Errorf("%w: empty binary name", ErrInvalidName)
	}
	return ParseTypeName("L" + strings.ReplaceAll(binary, ".", "/"))
}

func validateType(s string) error {
	base := strings.TrimLeft(s, "[")
	switch {
	case base == "":
		return fmt.Errorf("%w: %q", ErrInvalidName, s)
	case len(base) == 1:
		if _, ok := primitiveKeywords[base[0]]; !ok {
			return fmt.Errorf("%w: %q: unknown primitive", ErrInvalidName, s)
		}
		if base == "V" && base != s {
			return fmt.Errorf("%w: %q: array of void", ErrInvalidName, s)
		}
		return nil
	case base[0] != 'L':
		return fmt.Errorf("%w: %q: expected 'L' prefix", ErrInvalidName, s)
	}
	for _, r := range base[1:] {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '_', '$', '/', '-':
			continue
		}
		return fmt.Errorf("%w: %q: illegal character %q", ErrInvalidName, s, r)
	}
	if strings.HasPrefix(base, "L/") || strings.HasSuffix(base, "/") || strings.Contains(base, "//") {
		return fmt.Errorf("%w: %q: empty package segment", ErrInvalidName, s)
	}
	return nil
}

func (t TypeName) Identifier() string { return t.id }

func (t TypeName) String() string { return t.id }

// IsZero reports whether t is the zero value.
func (t TypeName) IsZero() bool { return t.id == "" }

func (t TypeName) ArrayDimensions() int {
	n := 0
	for n < len(t.id) && t.id[n] == '[' {
		n++
	}
	return n
}

func (t TypeName) IsArray() bool { return strings.HasPrefix(t.id, "[") }

// ArrayBaseType strips every array dimension.
func (t TypeName) ArrayBaseType() TypeName {
	return TypeName{id: strings.TrimLeft(t.id, "[")}
}

// ArrayOf returns t with dims additional array dimensions.
func (t TypeName) ArrayOf(dims int) TypeName {
	if dims <= 0 {
		return t
	}
	return TypeName{id: strings.Repeat("[", dims) + t.id}
}

func (t TypeName) IsPrimitive() bool { return len(t.id) == 1 }

func (t TypeName) IsDeclared() bool { return strings.HasPrefix(t.id, "L") }

func (t TypeName) IsNested() bool {
	return t.IsDeclared() && strings.Contains(t.id, "$")
}

// IsAnonymous reports whether the innermost segment is a javac anonymous
// class index such as "Outer$1".
func (t TypeName) IsAnonymous() bool {
	return t.IsDeclared() && anonymousRe.MatchString(t.id)
}

// DeclaringType strips the innermost nesting segment.
func (t TypeName) DeclaringType() (TypeName, bool) {
	if !t.IsNested() {
		return TypeName{}, false
	}
	return TypeName{id: t.id[:strings.LastIndexByte(t.id, '$')]}, true
}

// ClassName is the part after the package, including enclosing types:
// "Map$Entry" for "Ljava/util/Map$Entry".
func (t TypeName) ClassName() string {
	base := t.ArrayBaseType()
	if !base.IsDeclared() {
		return base.id
	}
	if i := strings.LastIndexByte(base.id, '/'); i >= 0 {
		return base.id[i+1:]
	}
	return base.id[1:]
}

// SimpleName is the innermost segment of the class name; for primitives it
// is the identifier itself.
func (t TypeName) SimpleName() string {
	cn := t.ClassName()
	if i := strings.LastIndexByte(cn, '$'); i >= 0 {
		return cn[i+1:]
	}
	return cn
}

// PackageName returns the slash-separated package, "" for the default package.
func (t TypeName) PackageName() string {
	base := t.ArrayBaseType()
	if !base.IsDeclared() {
		return ""
	}
	if i := strings.LastIndexByte(base.id, '/'); i > 0 {
		return base.id[1:i]
	}
	return ""
}

// BinaryName returns the Java binary name ("java.util.Map$Entry") of a
// declared, non-array type.
func (t TypeName) BinaryName() string {
	if !t.IsDeclared() {
		return ""
	}
	return strings.ReplaceAll(t.id[1:], "/", ".")
}

// SourceName renders t the way it is written in source:
// "java.util.Map.Entry", "int[][]".
func (t TypeName) SourceName() string {
	base := t.ArrayBaseType()
	var out string
	if base.IsPrimitive() {
		out = primitiveKeywords[base.id[0]]
	} else {
		out = strings.NewReplacer("/", ".", "$", ".").Replace(base.id[1:])
	}
	return out + strings.Repeat("[]", t.ArrayDimensions())
}
