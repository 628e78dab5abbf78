package graph

import (
	"strings"
	"testing"

	"symres/internal/extractor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "java.lang.Object"

// bySimpleName resolves written names against the name index and accepts
// dotted names verbatim.
func bySimpleName(g *Graph) NameResolver {
	return func(_ *Node, written string) (string, bool) {
		if i := strings.IndexByte(written, '<'); i >= 0 {
			written = written[:i]
		}
		if strings.Contains(written, ".") {
			return written, true
		}
		ids := g.Lookup(written)
		if len(ids) == 0 {
			return "", false
		}
		return ids[0], true
	}
}

func sym(id string, iface bool, supers ...string) *Symbol {
	s := &Symbol{ID: id, Name: id[strings.LastIndexAny(id, ".$")+1:], Interface: iface, Filepath: "src/" + id + ".java"}
	for _, sup := range supers {
		s.Supertypes = append(s.Supertypes, Relation{Target: sup, Kind: RelationExtends})
	}
	return s
}

func TestGraph_Link(t *testing.T) {
	g := NewGraph()
	g.AddSymbol(sym(root, false))
	g.AddSymbol(sym("p.Base", false))
	g.AddSymbol(sym("p.Runnable", true))
	g.AddSymbol(sym("p.Task", true, "Runnable"))
	g.AddSymbol(sym("p.Worker", false, "Base", "Task", "Missing", "java.io.Serializable"))
	g.AddSymbol(sym("p.Anon", false, "Runnable"))

	g.Link(bySimpleName(g), root)

	t.Run("Declared order with superclass first", func(t *testing.T) {
		assert.Equal(t, []string{"p.Base", "p.Task"}, g.Supertypes("p.Worker"))
		assert.Equal(t, []string{"p.Base", "p.Task", root, "p.Runnable"}, g.AllSupertypes("p.Worker"))
	})

	t.Run("Implicit root class", func(t *testing.T) {
		assert.Equal(t, []string{root}, g.Supertypes("p.Base"))
		assert.Equal(t, []string{root, "p.Runnable"}, g.Supertypes("p.Anon"))
		assert.Empty(t, g.Supertypes(root))
	})

	t.Run("Interfaces do not get the root class", func(t *testing.T) {
		assert.Equal(t, []string{"p.Runnable"}, g.AllSupertypes("p.Task"))
	})

	t.Run("Unresolved supertypes are recorded with reasons", func(t *testing.T) {
		counts := g.UnresolvedReasonCounts()
		assert.Equal(t, 1, counts[ReasonNoCandidate])
		assert.Equal(t, 1, counts[ReasonSourceMissing])
	})

	t.Run("Dependents", func(t *testing.T) {
		var names []string
		for _, n := range g.GetDependents("p.Runnable") {
			names = append(names, n.Symbol.ID)
		}
		assert.ElementsMatch(t, []string{"p.Task", "p.Anon"}, names)
	})
}

func TestGraph_AllSupertypesToleratesCycles(t *testing.T) {
	g := NewGraph()
	g.AddSymbol(sym("p.A", true, "B"))
	g.AddSymbol(sym("p.B", true, "A"))
	g.Link(bySimpleName(g), root)

	assert.Equal(t, []string{"p.B"}, g.AllSupertypes("p.A"))
}

func TestGraph_RemoveFile(t *testing.T) {
	g := NewGraph()
	g.AddSymbol(sym("p.A", false))
	g.AddSymbol(sym("p.B", false))

	removed := g.RemoveFile("src/p.A.java")
	assert.Equal(t, []string{"p.A"}, removed)
	assert.Empty(t, g.Lookup("A"))
	assert.Equal(t, []string{"p.B"}, g.Lookup("B"))

	stats := g.Stats()
	assert.Equal(t, 1, stats.Nodes)
}

func TestGraph_SelfReference(t *testing.T) {
	g := NewGraph()
	g.AddSymbol(sym(root, false))
	g.AddSymbol(sym("p.Loop", false, "Loop"))
	g.Link(bySimpleName(g), root)

	assert.Equal(t, []string{root}, g.Supertypes("p.Loop"))
	assert.Equal(t, 1, g.UnresolvedReasonCounts()[ReasonSelfReference])
}

func TestFromTypeUnit(t *testing.T) {
	file := &extractor.FileUnit{Path: "Outer.java", Package: "com.acme"}
	unit := &extractor.TypeUnit{
		Name:       "Outer",
		BinaryName: "com.acme.Outer",
		Kind:       extractor.KindClass,
		Superclass: "Base",
		Interfaces: []string{"Runnable"},
	}

	s := FromTypeUnit(file, unit)
	require.NotNil(t, s)
	assert.Equal(t, "com.acme.Outer", s.ID)
	assert.Equal(t, "com.acme", s.Package)
	assert.False(t, s.Interface)
	assert.Equal(t, []Relation{{Target: "Base", Kind: RelationExtends}, {Target: "Runnable", Kind: RelationImplements}}, s.Supertypes)

	iface := FromTypeUnit(file, &extractor.TypeUnit{Name: "I", BinaryName: "com.acme.I", Kind: extractor.KindInterface, Interfaces: []string{"J"}})
	assert.True(t, iface.Interface)
	assert.Equal(t, RelationExtends, iface.Supertypes[0].Kind)

	assert.Nil(t, FromTypeUnit(file, nil))
}
