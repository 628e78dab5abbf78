package graph

import "symres/internal/extractor"

// FromTypeUnit converts an extracted type into a graph symbol.
func FromTypeUnit(file *extractor.FileUnit, t *extractor.TypeUnit) *Symbol {
	if t == nil {
		return nil
	}
	s := &Symbol{
		ID:        t.BinaryName,
		Name:      t.Name,
		Kind:      string(t.Kind),
		Interface: t.Kind == extractor.KindInterface || t.Kind == extractor.KindAnnotation,
		StartLine: t.StartLine,
		EndLine:   t.EndLine,
	}
	if file != nil {
		s.Package = file.Package
		s.Filepath = file.Path
	}
	if t.Superclass != "" {
		s.Supertypes = append(s.Supertypes, Relation{Target: t.Superclass, Kind: RelationExtends})
	}
	kind := RelationImplements
	if s.Interface {
		kind = RelationExtends
	}
	for _, iface := range t.Interfaces {
		s.Supertypes = append(s.Supertypes, Relation{Target: iface, Kind: kind})
	}
	return s
}
