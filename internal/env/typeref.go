package env

import (
	"regexp"
	"strings"
)

// TypeRef is a type reference as written in source.
type TypeRef struct {
	// Name has generics removed: "Map.Entry", "java.util.List", "int".
	Name string
	Dims int
	Args []TypeRef
}

// TypeParameter is a declared type variable with its bounds.
type TypeParameter struct {
	Name   string
	Bounds []TypeRef
}

var annotationRe = regexp.MustCompile(`@[\w.]+(\s*\([^)]*\))?`)

// ParseTypeRef parses a source type expression such as
// "java.util.Map<String, List<int[]>>[]" or "String...".
func ParseTypeRef(src string) TypeRef {
	src = annotationRe.ReplaceAllString(src, "")
	src = strings.Join(strings.Fields(src), "")
	ref, _ := parseRef(src)
	return ref
}

func parseRef(s string) (TypeRef, string) {
	var ref TypeRef
	i := 0
	for i < len(s) && s[i] != '<' && s[i] != '[' && s[i] != ',' && s[i] != '>' && !strings.HasPrefix(s[i:], "...") {
		i++
	}
	ref.Name = s[:i]
	s = s[i:]
	for strings.HasPrefix(s, "<") {
		s = s[1:]
		for len(s) > 0 && s[0] != '>' {
			before := len(s)
			var arg TypeRef
			arg, s = parseRef(s)
			ref.Args = append(ref.Args, arg)
			s = strings.TrimPrefix(s, ",")
			if len(s) == before {
				return ref, ""
			}
		}
		s = strings.TrimPrefix(s, ">")
		// Inner class of a parameterized type: Outer<T>.Inner
		if strings.HasPrefix(s, ".") {
			var inner TypeRef
			inner, s = parseRef(s[1:])
			ref.Name += "." + inner.Name
			ref.Args = inner.Args
			ref.Dims += inner.Dims
			return ref, s
		}
	}
	for {
		switch {
		case strings.HasPrefix(s, "[]"):
			ref.Dims++
			s = s[2:]
			continue
		case strings.HasPrefix(s, "..."):
			ref.Dims++
			s = s[3:]
			continue
		}
		break
	}
	ref.Name = wildcardBound(ref.Name)
	return ref, s
}

// wildcardBound maps "?extendsFoo" to "Foo" and a bare "?" to Object.
func wildcardBound(name string) string {
	if !strings.HasPrefix(name, "?") {
		return name
	}
	if rest, ok := strings.CutPrefix(name, "?extends"); ok {
		return rest
	}
	return "Object"
}

// String renders the reference without type arguments.
func (r TypeRef) String() string {
	return r.Name + strings.Repeat("[]", r.Dims)
}
