// Package analysis maps source changes onto the type hierarchy.
package analysis

import (
	"path/filepath"
	"sort"

	"symres/internal/git"
	"symres/internal/graph"
)

// ImpactReport summarizes the types affected by changes. Subtypes of a
// changed type are affected indirectly because inherited members may move.
type ImpactReport struct {
	DirectlyAffected   []*graph.Node
	IndirectlyAffected []*graph.Node
	// Removed lists changed files that no longer exist.
	Removed []string
}

// Analyzer performs impact analysis on the hierarchy graph.
type Analyzer struct {
	g *graph.Graph
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(g *graph.Graph) *Analyzer {
	return &Analyzer{g: g}
}

// AnalyzeImpact identifies which types are affected by the given changes.
// Change paths are relative to root.
func (a *Analyzer) AnalyzeImpact(root string, changes []git.ChangedFile) *ImpactReport {
	report := &ImpactReport{
		DirectlyAffected:   []*graph.Node{},
		IndirectlyAffected: []*graph.Node{},
	}

	byFile := make(map[string][]*graph.Node)
	for _, node := range a.g.Nodes {
		byFile[node.Symbol.Filepath] = append(byFile[node.Symbol.Filepath], node)
	}

	seenDirect := make(map[string]bool)
	for _, change := range changes {
		if change.Deleted {
			report.Removed = append(report.Removed, change.Path)
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(change.Path))
		for _, node := range byFile[path] {
			if !seenDirect[node.Symbol.ID] && isAffected(node, change.ChangedLines) {
				report.DirectlyAffected = append(report.DirectlyAffected, node)
				seenDirect[node.Symbol.ID] = true
			}
		}
	}

	seenIndirect := make(map[string]bool)
	queue := append([]*graph.Node(nil), report.DirectlyAffected...)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, dep := range a.g.GetDependents(node.Symbol.ID) {
			if seenDirect[dep.Symbol.ID] || seenIndirect[dep.Symbol.ID] {
				continue
			}
			seenIndirect[dep.Symbol.ID] = true
			report.IndirectlyAffected = append(report.IndirectlyAffected, dep)
			queue = append(queue, dep)
		}
	}

	sortNodes(report.DirectlyAffected)
	sortNodes(report.IndirectlyAffected)
	return report
}

func isAffected(node *graph.Node, lines []int) bool {
	for _, line := range lines {
		if line >= node.Symbol.StartLine && line <= node.Symbol.EndLine {
			return true
		}
	}
	return false
}

func sortNodes(nodes []*graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Symbol.ID < nodes[j].Symbol.ID })
}
