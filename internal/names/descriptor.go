package names

import (
	"fmt"
	"strings"
)

// Descriptor renders t as it appears inside a method name: declared leaf
// types are terminated by ';'.
func Descriptor(t TypeName) string {
	if t.ArrayBaseType().IsDeclared() {
		return t.id + ";"
	}
	return t.id
}

// SplitDescriptors tokenizes a concatenated descriptor list such as
// "[Ljava/lang/String;IJ". Reference tokens start with 'L' or, for type
// variables, 'T' and keep their ';'.
func SplitDescriptors(s string) ([]string, error) {
	var out []string
	for i := 0; i < len(s); {
		start := i
		for i < len(s) && s[i] == '[' {
			i++
		}
		if i == len(s) {
			return nil, fmt.Errorf("%w: dangling array marker in %q", ErrInvalidName, s)
		}
		switch c := s[i]; c {
		case 'L', 'T':
			end := strings.IndexByte(s[i:], ';')
			if end <= 1 {
				return nil, fmt.Errorf("%w: unterminated reference in %q", ErrInvalidName, s)
			}
			i += end + 1
		default:
			if _, ok := primitiveKeywords[c]; !ok {
				return nil, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidName, c, s)
			}
			i++
		}
		out = append(out, s[start:i])
	}
	return out, nil
}

// IsTypeVariableDescriptor reports tokens such as "TT;" or "[TE;".
func IsTypeVariableDescriptor(tok string) bool {
	return strings.HasPrefix(strings.TrimLeft(tok, "["), "T")
}

// TypeFromDescriptor converts a single descriptor token to a TypeName.
func TypeFromDescriptor(tok string) (TypeName, error) {
	if IsTypeVariableDescriptor(tok) {
		return TypeName{}, fmt.Errorf("%w: type variable %q has no canonical form", ErrInvalidName, tok)
	}
	t, err := ParseTypeName(strings.TrimSuffix(tok, ";"))
	if err != nil {
		return TypeName{}, err
	}
	if t.ArrayBaseType().IsDeclared() != strings.HasSuffix(tok, ";") {
		return TypeName{}, fmt.Errorf("%w: malformed descriptor %q", ErrInvalidName, tok)
	}
	return t, nil
}
