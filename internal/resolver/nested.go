package resolver

import (
	"context"
	"strings"

	"symres/internal/env"
	"symres/internal/names"
)

// nestedLocator walks containment from the declaring type down to its
// member types, then into the anonymous and local classes of its methods.
type nestedLocator struct {
	r *Resolver
}

func (l *nestedLocator) Name() string { return "nested" }

func (l *nestedLocator) Accepts(name names.TypeName) bool {
	return name.IsNested() && !name.IsArray()
}

func (l *nestedLocator) Locate(ctx context.Context, name names.TypeName) (env.Type, error) {
	outerName, ok := name.DeclaringType()
	if !ok {
		return nil, errNotFound
	}
	outer, err := l.r.lookupType(ctx, outerName, true)
	if err != nil {
		return nil, err
	}

	key := name.Identifier() + ";"
	for _, member := range outer.Types() {
		if member.Key() == key {
			return member, nil
		}
	}

	// Same-named local classes in different methods are ambiguous; the first
	// in enumeration order wins.
	suffix := "$" + name.SimpleName() + ";"
	for _, m := range outer.Methods() {
		for _, local := range m.LocalTypes() {
			k := local.Key()
			if k == key || strings.HasSuffix(k, suffix) {
				return local, nil
			}
		}
	}
	return nil, errNotFound
}
