package graph

import (
	"sort"
)

// Node represents a type in the hierarchy graph.
type Node struct {
	Symbol *Symbol
}

// Edge is a direct subtype -> supertype relationship.
type Edge struct {
	From string
	To   string
	Kind RelationKind
}

// UnresolvedRelation is a declared supertype that could not be linked.
type UnresolvedRelation struct {
	From   string
	Target string
	Kind   RelationKind
	Reason UnresolvedReason
}

// NameResolver maps a supertype name written in the scope of from to a node ID.
type NameResolver func(from *Node, written string) (string, bool)

// Graph manages type nodes and their supertype relationships.
type Graph struct {
	Nodes      map[string]*Node
	Edges      []Edge
	Unresolved []UnresolvedRelation

	// Index for faster lookup: simple Name -> []ID
	nameIndex map[string][]string
	supers    map[string][]string
	subs      map[string][]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make(map[string]*Node),
		Edges:     []Edge{},
		nameIndex: make(map[string][]string),
		supers:    make(map[string][]string),
		subs:      make(map[string][]string),
	}
}

// AddSymbol adds a symbol as a node, replacing any node with the same ID.
func (g *Graph) AddSymbol(sym *Symbol) {
	if sym == nil {
		return
	}
	if _, exists := g.Nodes[sym.ID]; exists {
		g.removeNode(sym.ID)
	}
	g.Nodes[sym.ID] = &Node{Symbol: sym}
	if sym.Name != "" {
		g.nameIndex[sym.Name] = append(g.nameIndex[sym.Name], sym.ID)
	}
}

// RemoveFile drops every node declared in path and returns their IDs.
func (g *Graph) RemoveFile(path string) []string {
	var removed []string
	for id, n := range g.Nodes {
		if n.Symbol.Filepath == path {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		g.removeNode(id)
	}
	sort.Strings(removed)
	return removed
}

func (g *Graph) removeNode(id string) {
	n, ok := g.Nodes[id]
	if !ok {
		return
	}
	delete(g.Nodes, id)
	ids := g.nameIndex[n.Symbol.Name]
	for i, other := range ids {
		if other == id {
			g.nameIndex[n.Symbol.Name] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(g.nameIndex[n.Symbol.Name]) == 0 {
		delete(g.nameIndex, n.Symbol.Name)
	}
}

// Lookup returns node IDs with the given simple name.
func (g *Graph) Lookup(simpleName string) []string {
	return append([]string(nil), g.nameIndex[simpleName]...)
}

// Link resolves every declared supertype to a node. Non-interface types with
// no class among their resolved supertypes get an implicit edge to root.
func (g *Graph) Link(resolve NameResolver, root string) {
	g.Edges = []Edge{}
	g.Unresolved = nil
	g.supers = make(map[string][]string)
	g.subs = make(map[string][]string)

	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		node := g.Nodes[id]
		hasClassSuper := false
		var edges []Edge
		for _, rel := range node.Symbol.Supertypes {
			target, ok := resolve(node, rel.Target)
			switch {
			case !ok:
				g.Unresolved = append(g.Unresolved, UnresolvedRelation{From: id, Target: rel.Target, Kind: rel.Kind, Reason: ReasonNoCandidate})
				continue
			case target == id:
				g.Unresolved = append(g.Unresolved, UnresolvedRelation{From: id, Target: rel.Target, Kind: rel.Kind, Reason: ReasonSelfReference})
				continue
			}
			super, exists := g.Nodes[target]
			if !exists {
				g.Unresolved = append(g.Unresolved, UnresolvedRelation{From: id, Target: rel.Target, Kind: rel.Kind, Reason: ReasonSourceMissing})
				continue
			}
			if !super.Symbol.Interface {
				hasClassSuper = true
			}
			edges = append(edges, Edge{From: id, To: target, Kind: rel.Kind})
		}
		if !hasClassSuper && !node.Symbol.Interface && id != root {
			if _, ok := g.Nodes[root]; ok {
				edges = append([]Edge{{From: id, To: root, Kind: RelationRoot}}, edges...)
			}
		}
		for _, e := range edges {
			g.Edges = append(g.Edges, e)
			g.supers[id] = append(g.supers[id], e.To)
			g.subs[e.To] = append(g.subs[e.To], id)
		}
	}
}

// Supertypes returns the direct supertypes of id, superclass first.
func (g *Graph) Supertypes(id string) []string {
	return append([]string(nil), g.supers[id]...)
}

// AllSupertypes returns every transitive supertype of id, nearest first.
// Cycles in malformed sources are tolerated.
func (g *Graph) AllSupertypes(id string) []string {
	seen := map[string]bool{id: true}
	var out []string
	queue := append([]string(nil), g.supers[id]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, g.supers[next]...)
	}
	return out
}

// GetDependents returns nodes that directly extend or implement id.
func (g *Graph) GetDependents(id string) []*Node {
	var out []*Node
	for _, sub := range g.subs[id] {
		if n, ok := g.Nodes[sub]; ok {
			out = append(out, n)
		}
	}
	return out
}

// RebuildIndices restores the name index, e.g. after JSON decoding.
func (g *Graph) RebuildIndices() {
	g.nameIndex = make(map[string][]string)
	if g.supers == nil {
		g.supers = make(map[string][]string)
	}
	if g.subs == nil {
		g.subs = make(map[string][]string)
	}
	for id, n := range g.Nodes {
		if n.Symbol.Name != "" {
			g.nameIndex[n.Symbol.Name] = append(g.nameIndex[n.Symbol.Name], id)
		}
	}
	for _, e := range g.Edges {
		g.supers[e.From] = append(g.supers[e.From], e.To)
		g.subs[e.To] = append(g.subs[e.To], e.From)
	}
}
