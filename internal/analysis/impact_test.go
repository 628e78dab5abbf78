package analysis

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"symres/internal/git"
	"symres/internal/graph"
)

func ids(nodes []*graph.Node) []string {
	out := []string{}
	for _, n := range nodes {
		out = append(out, n.Symbol.ID)
	}
	return out
}

func TestAnalyzeImpact(t *testing.T) {
	root := "/repo"
	g := graph.NewGraph()
	add := func(id, file string, start, end int, supers ...string) {
		s := &graph.Symbol{ID: id, Name: id, Filepath: filepath.Join(root, file), StartLine: start, EndLine: end}
		for _, sup := range supers {
			s.Supertypes = append(s.Supertypes, graph.Relation{Target: sup, Kind: graph.RelationExtends})
		}
		g.AddSymbol(s)
	}
	add("java.lang.Object", "Object.java", 1, 20)
	add("p.Base", "p/Base.java", 3, 10)
	add("p.Base$Helper", "p/Base.java", 6, 8)
	add("p.Mid", "p/Mid.java", 1, 5, "p.Base")
	add("p.Leaf", "p/Leaf.java", 1, 5, "p.Mid")
	add("p.Other", "p/Other.java", 1, 5)
	g.Link(func(_ *graph.Node, written string) (string, bool) {
		_, ok := g.Nodes[written]
		return written, ok
	}, "java.lang.Object")

	report := NewAnalyzer(g).AnalyzeImpact(root, []git.ChangedFile{
		{Path: "p/Base.java", ChangedLines: []int{4}},
		{Path: "p/Other.java", ChangedLines: []int{42}},
		{Path: "p/Gone.java", Deleted: true},
	})

	assert.Equal(t, []string{"p.Base"}, ids(report.DirectlyAffected))
	assert.Equal(t, []string{"p.Leaf", "p.Mid"}, ids(report.IndirectlyAffected))
	assert.Equal(t, []string{"p/Gone.java"}, report.Removed)
}

func TestAnalyzeImpact_NestedRange(t *testing.T) {
	g := graph.NewGraph()
	g.AddSymbol(&graph.Symbol{ID: "p.Base", Filepath: "/r/p/Base.java", StartLine: 1, EndLine: 10})
	g.AddSymbol(&graph.Symbol{ID: "p.Base$Helper", Filepath: "/r/p/Base.java", StartLine: 6, EndLine: 8})

	report := NewAnalyzer(g).AnalyzeImpact("/r", []git.ChangedFile{{Path: "p/Base.java", ChangedLines: []int{7}}})
	assert.Equal(t, []string{"p.Base", "p.Base$Helper"}, ids(report.DirectlyAffected))
	assert.Empty(t, report.IndirectlyAffected)
}
