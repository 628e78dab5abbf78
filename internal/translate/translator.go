// Package translate converts compiler bindings and live handles into
// canonical names.
package translate

import (
	"errors"
	"fmt"
	"strings"

	"symres/internal/env"
	"symres/internal/names"
)

// maxDepth bounds recursion through bounds and enclosing types.
const maxDepth = 16

var errUnparseableKey = errors.New("unparseable method key")

// Translator is stateless apart from its diagnostics sink.
type Translator struct {
	diag env.Diagnostics
}

func New(d env.Diagnostics) *Translator {
	if d == nil {
		d = env.DiscardDiagnostics{}
	}
	return &Translator{diag: d}
}

// TypeName translates a type binding into its erased canonical form.
func (t *Translator) TypeName(b env.TypeBinding) (names.TypeName, bool) {
	if b == nil {
		return names.TypeName{}, false
	}
	return t.typeName(b, 0)
}

func (t *Translator) typeName(b env.TypeBinding, depth int) (names.TypeName, bool) {
	if depth > maxDepth {
		t.diag.Report(env.SeverityWarning, "type binding nesting too deep: "+b.Key(), nil)
		return names.TypeName{}, false
	}
	switch {
	case b.IsArray():
		leaf := b.ElementType()
		if leaf == nil {
			return names.TypeName{}, false
		}
		base, ok := t.typeName(leaf, depth+1)
		if !ok {
			return names.TypeName{}, false
		}
		return base.ArrayOf(b.Dimensions()), true
	case b.IsTypeVariable():
		if decl := b.DeclaringType(); decl != nil {
			return t.typeName(decl, depth+1)
		}
		if bounds := b.Bounds(); len(bounds) > 0 && bounds[0] != nil {
			return t.typeName(bounds[0], depth+1)
		}
		return names.Object, true
	case b.IsParameterized():
		if raw := b.Erasure(); raw != nil && raw != b {
			return t.typeName(raw, depth+1)
		}
	case b.IsPrimitive():
		p, ok := names.PrimitiveFor(b.Name())
		if !ok {
			t.diag.Report(env.SeverityWarning, "unknown primitive "+b.Name(), nil)
		}
		return p, ok
	}

	binary := b.BinaryName()
	tn, err := names.FromBinaryName(binary)
	if err != nil {
		t.diag.Report(env.SeverityWarning, "cannot translate type binding "+b.Key(), err)
		return names.TypeName{}, false
	}
	return tn, true
}

// VariableTypeName translates the declared type of a variable binding.
func (t *Translator) VariableTypeName(v env.VariableBinding) (names.TypeName, bool) {
	if v == nil {
		return names.TypeName{}, false
	}
	return t.TypeName(v.Type())
}

// MethodName translates a method binding using its structural key, e.g.
// "Lcom/acme/Box<TT;>;.put(TT;[I)V".
func (t *Translator) MethodName(b env.MethodBinding) (names.MethodName, bool) {
	if b == nil {
		return names.MethodName{}, false
	}
	if decl := b.MethodDeclaration(); decl != nil {
		b = decl
	}
	m, err := t.methodFromKey(b)
	if err != nil {
		t.diag.Report(env.SeverityWarning, "cannot translate method binding "+b.Key(), err)
		return names.MethodName{}, false
	}
	return m, true
}

func (t *Translator) methodFromKey(b env.MethodBinding) (names.MethodName, error) {
	key := b.Key()
	if i := strings.IndexAny(key, "|%"); i >= 0 {
		key = key[:i]
	}
	open := strings.IndexByte(key, '(')
	if open < 0 {
		return names.MethodName{}, fmt.Errorf("%w: no parameter list", errUnparseableKey)
	}
	sep := strings.LastIndex(key[:open], ";.")
	if sep < 0 {
		return names.MethodName{}, fmt.Errorf("%w: no owner separator", errUnparseableKey)
	}

	owner, err := names.ParseTypeName(key[:sep])
	if err != nil {
		return names.MethodName{}, err
	}

	name := key[sep+2 : open]
	switch {
	case strings.HasPrefix(name, names.ConstructorName):
		name = names.ConstructorName
	case strings.Contains(name, "<"):
		name = name[:strings.IndexByte(name, '<')]
	}
	if name == "" || b.IsConstructor() {
		name = names.ConstructorName
	}

	sig := EraseGenerics(key[open:])
	closing := strings.IndexByte(sig, ')')
	if closing < 0 {
		return names.MethodName{}, fmt.Errorf("%w: unterminated parameter list", errUnparseableKey)
	}
	paramTokens, err := names.SplitDescriptors(sig[1:closing])
	if err != nil {
		return names.MethodName{}, err
	}
	retTokens, err := names.SplitDescriptors(sig[closing+1:])
	if err != nil {
		return names.MethodName{}, err
	}
	if len(retTokens) != 1 {
		return names.MethodName{}, fmt.Errorf("%w: expected one return type", errUnparseableKey)
	}

	bindings := b.ParameterTypes()
	params := make([]names.TypeName, 0, len(paramTokens))
	for i, tok := range paramTokens {
		var ptype env.TypeBinding
		if i < len(bindings) {
			ptype = bindings[i]
		}
		p, err := t.descriptorType(tok, ptype)
		if err != nil {
			return names.MethodName{}, fmt.Errorf("parameter %d: %w", i, err)
		}
		params = append(params, p)
	}
	ret, err := t.descriptorType(retTokens[0], b.ReturnType())
	if err != nil {
		return names.MethodName{}, fmt.Errorf("return type: %w", err)
	}
	return names.NewMethodName(owner, name, params, ret)
}

// descriptorType converts one key token. Type variables are replaced by the
// translation of the corresponding binding.
func (t *Translator) descriptorType(tok string, b env.TypeBinding) (names.TypeName, error) {
	if !names.IsTypeVariableDescriptor(tok) {
		return names.TypeFromDescriptor(tok)
	}
	if b == nil {
		return names.TypeName{}, fmt.Errorf("%w: no binding for type variable %s", errUnparseableKey, tok)
	}
	tn, ok := t.TypeName(b)
	if !ok {
		return names.TypeName{}, fmt.Errorf("%w: cannot erase type variable %s", errUnparseableKey, tok)
	}
	return tn, nil
}

// EraseGenerics removes every balanced <...> section.
func EraseGenerics(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
