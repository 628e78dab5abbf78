package workspace

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"symres/internal/env"
)

// ErrForeignHandle is returned for handles that were not produced by this
// workspace.
var ErrForeignHandle = errors.New("handle does not belong to this workspace")

// SearchTypes finds declared types whose simple name, or dotted qualified
// name when pattern contains a dot, equals pattern ignoring case. Anonymous
// types are not declarations and never match.
func (w *Workspace) SearchTypes(ctx context.Context, pattern string) ([]env.Type, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, nil
	}

	if w.index != nil {
		records, err := w.index.FindTypes(ctx, pattern)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", pattern, err)
		}
		w.mu.RLock()
		defer w.mu.RUnlock()
		var out []env.Type
		for _, r := range records {
			// Rows written by an older run may name types that are gone.
			if t, ok := w.types[r.Binary]; ok && t.Key() == r.Key {
				out = append(out, t)
			}
		}
		return out, nil
	}

	qualified := strings.Contains(pattern, ".")
	w.mu.RLock()
	var found []*TypeElement
	for _, t := range w.types {
		if t.unit.Anonymous {
			continue
		}
		candidate := t.unit.Name
		if qualified {
			candidate = qualifiedName(t.binary)
		}
		if strings.EqualFold(candidate, pattern) {
			found = append(found, t)
		}
	}
	w.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool { return found[i].binary < found[j].binary })
	out := make([]env.Type, 0, len(found))
	for _, t := range found {
		out = append(out, t)
	}
	return out, nil
}

// Hierarchy is the supertype hierarchy of one focus type.
type Hierarchy struct {
	ws     *Workspace
	focus  *TypeElement
	supers []env.Type
	roots  []env.Type
}

var _ env.Hierarchy = (*Hierarchy)(nil)

func (w *Workspace) SupertypeHierarchy(ctx context.Context, t env.Type) (env.Hierarchy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	focus, ok := t.(*TypeElement)
	if !ok || focus == nil || focus.ws != w {
		return nil, fmt.Errorf("%w: %T", ErrForeignHandle, t)
	}
	if !focus.Exists() {
		return nil, fmt.Errorf("stale handle %s", focus.Key())
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.linkLocked()
	h := &Hierarchy{ws: w, focus: focus, supers: w.supertypesLocked(focus.binary)}
	if root, ok := w.types[RootClass]; ok {
		h.roots = []env.Type{root}
	}
	return h, nil
}

// AllSupertypes lists the supertypes of t nearest first: the superclass
// before interfaces, the implicit root class included for classes.
func (h *Hierarchy) AllSupertypes(t env.Type) []env.Type {
	te, ok := t.(*TypeElement)
	if !ok || te == nil {
		return nil
	}
	if te.binary == h.focus.binary {
		return h.supers
	}
	h.ws.mu.Lock()
	defer h.ws.mu.Unlock()
	h.ws.linkLocked()
	return h.ws.supertypesLocked(te.binary)
}

func (h *Hierarchy) RootClasses() []env.Type { return h.roots }

func (w *Workspace) supertypesLocked(binary string) []env.Type {
	ids := w.graph.AllSupertypes(binary)
	out := make([]env.Type, 0, len(ids))
	for _, id := range ids {
		if t, ok := w.types[id]; ok {
			out = append(out, t)
		}
	}
	return out
}
