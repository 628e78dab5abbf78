package extractor

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// JavaExtractor implements LanguageExtractor for Java.
type JavaExtractor struct{}

func (j *JavaExtractor) GetLanguage() *sitter.Language {
	return java.GetLanguage()
}

func (j *JavaExtractor) GetPackageQuery() string {
	return `(package_declaration [(identifier) (scoped_identifier)] @pkg)`
}

// ExtractImports returns single-type and on-demand imports. Static imports
// name members, not types, and are skipped.
func (j *JavaExtractor) ExtractImports(root *sitter.Node, sourceCode []byte) []string {
	var imports []string
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if n.Type() != "import_declaration" {
			continue
		}
		text := strings.TrimSuffix(strings.TrimSpace(n.Content(sourceCode)), ";")
		text = strings.TrimSpace(strings.TrimPrefix(text, "import"))
		if fields := strings.Fields(text); len(fields) > 0 && fields[0] == "static" {
			continue
		}
		imports = append(imports, strings.Join(strings.Fields(text), ""))
	}
	return imports
}

func (j *JavaExtractor) ExtractTypes(root *sitter.Node, sourceCode []byte, packageName string) []*TypeUnit {
	w := &javaWalker{src: sourceCode}
	prefix := ""
	if packageName != "" {
		prefix = packageName + "."
	}

	var types []*TypeUnit
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if !isTypeDeclaration(n.Type()) {
			continue
		}
		name := w.fieldText(n, "name")
		if name == "" {
			continue
		}
		types = append(types, w.declaredType(n, prefix+name, name))
	}
	return types
}

// typeScope numbers anonymous and local classes the way javac does: one
// counter per enclosing class for anonymous classes, one per enclosing class
// and simple name for local classes.
type typeScope struct {
	unit       *TypeUnit
	anonymous  int
	locals     map[string]int
	components []Param
}

func newTypeScope(unit *TypeUnit) *typeScope {
	return &typeScope{unit: unit, locals: make(map[string]int)}
}

func (s *typeScope) nextAnonymous() string {
	s.anonymous++
	return fmt.Sprintf("%s$%d", s.unit.BinaryName, s.anonymous)
}

func (s *typeScope) nextLocal(name string) string {
	s.locals[name]++
	return fmt.Sprintf("%s$%d%s", s.unit.BinaryName, s.locals[name], name)
}

type javaWalker struct {
	src []byte
}

func (w *javaWalker) declaredType(n *sitter.Node, binary, name string) *TypeUnit {
	t := &TypeUnit{
		Name:       name,
		BinaryName: binary,
		Kind:       kindOf(n.Type()),
		HasErrors:  n.HasError(),
		StartLine:  int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
	}
	t.TypeParameters = w.typeParameters(n.ChildByFieldName("type_parameters"))

	switch t.Kind {
	case KindClass:
		if sc := n.ChildByFieldName("superclass"); sc != nil {
			t.Superclass = stripKeyword(sc.Content(w.src), "extends")
		}
		t.Interfaces = w.typeList(childOfType(n, "super_interfaces"), "implements")
	case KindInterface:
		t.Interfaces = w.typeList(childOfType(n, "extends_interfaces"), "extends")
	case KindEnum:
		t.Superclass = "java.lang.Enum"
		t.Interfaces = w.typeList(childOfType(n, "super_interfaces"), "implements")
	case KindRecord:
		t.Superclass = "java.lang.Record"
		t.Interfaces = w.typeList(childOfType(n, "super_interfaces"), "implements")
	case KindAnnotation:
		t.Interfaces = []string{"java.lang.annotation.Annotation"}
	}

	scope := newTypeScope(t)
	if t.Kind == KindRecord {
		scope.components = w.parameters(n.ChildByFieldName("parameters"))
	}
	if body := n.ChildByFieldName("body"); body != nil {
		w.body(scope, body)
	}

	switch t.Kind {
	case KindEnum:
		addEnumMembers(t)
	case KindRecord:
		addRecordMembers(t, scope.components)
	}
	return t
}

func (w *javaWalker) body(scope *typeScope, body *sitter.Node) {
	t := scope.unit
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		switch typ := c.Type(); {
		case typ == "method_declaration" || typ == "annotation_type_element_declaration":
			t.Methods = append(t.Methods, w.method(scope, c, false))
		case typ == "constructor_declaration":
			t.Methods = append(t.Methods, w.method(scope, c, true))
		case typ == "compact_constructor_declaration":
			m := w.method(scope, c, true)
			m.Parameters = append([]Param(nil), scope.components...)
			t.Methods = append(t.Methods, m)
		case isTypeDeclaration(typ):
			name := w.fieldText(c, "name")
			if name == "" {
				continue
			}
			t.Members = append(t.Members, w.declaredType(c, t.BinaryName+"$"+name, name))
		case typ == "enum_body_declarations":
			w.body(scope, c)
		case typ == "enum_constant":
			if args := c.ChildByFieldName("arguments"); args != nil {
				t.Initializers = append(t.Initializers, w.scan(scope, args)...)
			}
			if cb := childOfType(c, "class_body"); cb != nil {
				base := strings.ReplaceAll(t.BinaryName, "$", ".")
				t.Initializers = append(t.Initializers, w.anonymousType(scope, base, c, cb))
			}
		default:
			// fields, constants and initializer blocks
			t.Initializers = append(t.Initializers, w.scan(scope, c)...)
		}
	}
}

func (w *javaWalker) method(scope *typeScope, n *sitter.Node, constructor bool) *MethodUnit {
	m := &MethodUnit{
		Name:           w.fieldText(n, "name"),
		Constructor:    constructor,
		TypeParameters: w.typeParameters(n.ChildByFieldName("type_parameters")),
		Parameters:     w.parameters(n.ChildByFieldName("parameters")),
		StartLine:      int(n.StartPoint().Row) + 1,
		EndLine:        int(n.EndPoint().Row) + 1,
	}
	if constructor {
		m.ReturnType = "void"
	} else {
		m.ReturnType = w.fieldText(n, "type") + w.dimensions(n)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		m.LocalTypes = w.scan(scope, body)
	}
	return m
}

func (w *javaWalker) parameters(n *sitter.Node) []Param {
	if n == nil {
		return nil
	}
	var params []Param
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "formal_parameter":
			params = append(params, Param{
				Name: w.fieldText(c, "name"),
				Type: w.fieldText(c, "type") + w.dimensions(c),
			})
		case "spread_parameter":
			var p Param
			for j := 0; j < int(c.NamedChildCount()); j++ {
				part := c.NamedChild(j)
				switch part.Type() {
				case "modifiers":
				case "variable_declarator":
					p.Name = w.fieldText(part, "name")
				default:
					if p.Type == "" {
						p.Type = strings.TrimSpace(part.Content(w.src))
					}
				}
			}
			p.Type += "..."
			params = append(params, p)
		}
	}
	return params
}

// scan collects anonymous and local classes declared anywhere below n
// without descending into them.
func (w *javaWalker) scan(scope *typeScope, n *sitter.Node) []*TypeUnit {
	var found []*TypeUnit
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch typ := c.Type(); {
		case typ == "object_creation_expression":
			body := childOfType(c, "class_body")
			if body == nil {
				found = append(found, w.scan(scope, c)...)
				continue
			}
			if args := c.ChildByFieldName("arguments"); args != nil {
				found = append(found, w.scan(scope, args)...)
			}
			found = append(found, w.anonymousType(scope, w.fieldText(c, "type"), c, body))
		case isTypeDeclaration(typ):
			name := w.fieldText(c, "name")
			if name == "" {
				continue
			}
			local := w.declaredType(c, scope.nextLocal(name), name)
			local.Local = true
			found = append(found, local)
		default:
			found = append(found, w.scan(scope, c)...)
		}
	}
	return found
}

func (w *javaWalker) anonymousType(scope *typeScope, base string, n, body *sitter.Node) *TypeUnit {
	t := &TypeUnit{
		BinaryName: scope.nextAnonymous(),
		Kind:       KindClass,
		Anonymous:  true,
		Superclass: strings.TrimSpace(base),
		HasErrors:  body.HasError(),
		StartLine:  int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
	}
	w.body(newTypeScope(t), body)
	return t
}

func (w *javaWalker) typeParameters(n *sitter.Node) []TypeParam {
	if n == nil {
		return nil
	}
	var params []TypeParam
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "type_parameter" {
			continue
		}
		text := strings.TrimSpace(annotationPrefix(c.Content(w.src)))
		name, rest := text, ""
		if i := strings.IndexAny(text, " \t\r\n"); i >= 0 {
			name, rest = text[:i], strings.TrimSpace(text[i:])
		}
		tp := TypeParam{Name: name}
		if rest != "" {
			tp.Bounds = splitTopLevel(stripKeyword(rest, "extends"), '&')
		}
		params = append(params, tp)
	}
	return params
}

func (w *javaWalker) typeList(n *sitter.Node, keyword string) []string {
	if n == nil {
		return nil
	}
	return splitTopLevel(stripKeyword(n.Content(w.src), keyword), ',')
}

func (w *javaWalker) dimensions(n *sitter.Node) string {
	d := n.ChildByFieldName("dimensions")
	if d == nil {
		return ""
	}
	return strings.Join(strings.Fields(d.Content(w.src)), "")
}

func (w *javaWalker) fieldText(n *sitter.Node, field string) string {
	c := n.ChildByFieldName(field)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Content(w.src))
}

func addEnumMembers(t *TypeUnit) {
	t.Methods = append(t.Methods,
		&MethodUnit{Name: "values", Implicit: true, ReturnType: t.Name + "[]"},
		&MethodUnit{Name: "valueOf", Implicit: true, ReturnType: t.Name, Parameters: []Param{{Name: "name", Type: "String"}}},
	)
}

func addRecordMembers(t *TypeUnit, components []Param) {
	declared := make(map[string]bool)
	hasCanonical := false
	for _, m := range t.Methods {
		if m.Constructor && sameParamTypes(m.Parameters, components) {
			hasCanonical = true
		}
		if !m.Constructor && len(m.Parameters) == 0 {
			declared[m.Name] = true
		}
	}
	if !hasCanonical {
		t.Methods = append(t.Methods, &MethodUnit{
			Name:        t.Name,
			Constructor: true,
			Implicit:    true,
			Parameters:  append([]Param(nil), components...),
			ReturnType:  "void",
		})
	}
	for _, c := range components {
		if declared[c.Name] {
			continue
		}
		t.Methods = append(t.Methods, &MethodUnit{Name: c.Name, Implicit: true, ReturnType: c.Type})
	}
}

func sameParamTypes(a, b []Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.Join(strings.Fields(a[i].Type), "") != strings.Join(strings.Fields(b[i].Type), "") {
			return false
		}
	}
	return true
}

func isTypeDeclaration(nodeType string) bool {
	switch nodeType {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		return true
	}
	return false
}

func kindOf(nodeType string) TypeKind {
	switch nodeType {
	case "interface_declaration":
		return KindInterface
	case "enum_declaration":
		return KindEnum
	case "record_declaration":
		return KindRecord
	case "annotation_type_declaration":
		return KindAnnotation
	default:
		return KindClass
	}
}

func childOfType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == nodeType {
			return c
		}
	}
	return nil
}

func stripKeyword(s, keyword string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimPrefix(s, keyword))
}

// annotationPrefix drops leading annotations such as "@NonNull T".
func annotationPrefix(s string) string {
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, "@") {
		end := strings.IndexAny(s, " \t\n")
		if end < 0 {
			return ""
		}
		s = strings.TrimSpace(s[end:])
	}
	return s
}

// splitTopLevel splits s on sep outside of angle brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case sep:
			if depth == 0 {
				if p := strings.TrimSpace(s[start:i]); p != "" {
					parts = append(parts, p)
				}
				start = i + 1
			}
		}
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}
