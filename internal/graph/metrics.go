package graph

// Stats summarizes a linked graph for reporting.
type Stats struct {
	Nodes      int
	Interfaces int
	Edges      int
	Unresolved map[UnresolvedReason]int
}

func (g *Graph) Stats() Stats {
	if g == nil {
		return Stats{Unresolved: map[UnresolvedReason]int{}}
	}
	s := Stats{Nodes: len(g.Nodes), Edges: len(g.Edges), Unresolved: g.UnresolvedReasonCounts()}
	for _, n := range g.Nodes {
		if n.Symbol.Interface {
			s.Interfaces++
		}
	}
	return s
}

func (g *Graph) UnresolvedReasonCounts() map[UnresolvedReason]int {
	counts := make(map[UnresolvedReason]int)
	if g == nil {
		return counts
	}
	for _, u := range g.Unresolved {
		reason := u.Reason
		if reason == "" {
			reason = ReasonNoCandidate
		}
		counts[reason]++
	}
	return counts
}
