// Package workspace is the live environment built from extracted Java
// sources. It hands out type and method handles whose liveness follows the
// snapshot of the file that declared them.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"symres/internal/env"
	"symres/internal/extractor"
	"symres/internal/graph"
	"symres/internal/storage"
)

// ErrUnknownFile is returned when removing a file the workspace never saw.
var ErrUnknownFile = errors.New("unknown file")

// RootClass is the binary name of the hierarchy root.
const RootClass = "java.lang.Object"

// Workspace is safe for concurrent use. Handles stay valid until the file
// that declared them is added again or removed.
type Workspace struct {
	mu         sync.RWMutex
	snapshot   string
	generation uint64
	files      map[string]*fileEntry
	types      map[string]*TypeElement
	graph      *graph.Graph
	linked     bool

	index  storage.SymbolIndex
	logger *slog.Logger
}

type fileEntry struct {
	unit       *extractor.FileUnit
	generation uint64
	builtin    bool
	types      []*TypeElement
}

type Option func(*Workspace)

// WithIndex mirrors declarations into idx and answers searches from it.
func WithIndex(idx storage.SymbolIndex) Option {
	return func(w *Workspace) { w.index = idx }
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) { w.logger = logger }
}

// New creates a workspace holding the built-in java.lang and java.util
// declarations.
func New(ctx context.Context, opts ...Option) (*Workspace, error) {
	w := &Workspace{
		snapshot: uuid.NewString(),
		files:    make(map[string]*fileEntry),
		types:    make(map[string]*TypeElement),
		graph:    graph.NewGraph(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.loadBuiltins(ctx); err != nil {
		return nil, fmt.Errorf("failed to load built-in types: %w", err)
	}
	return w, nil
}

func (w *Workspace) loadBuiltins(ctx context.Context) error {
	ext, err := extractor.NewExtractor("java")
	if err != nil {
		return err
	}
	paths, err := fs.Glob(builtinFS, "builtin/*.java")
	if err != nil {
		return err
	}
	for _, p := range paths {
		src, err := builtinFS.ReadFile(p)
		if err != nil {
			return err
		}
		unit, err := ext.ExtractSource(ctx, p, src)
		if err != nil {
			return err
		}
		if err := w.addFile(ctx, unit, true); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot identifies the current state. It changes on every mutation.
func (w *Workspace) Snapshot() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot
}

// AddFile adds or replaces the declarations of one compilation unit.
// Handles produced for a previous version of the file stop existing.
func (w *Workspace) AddFile(ctx context.Context, unit *extractor.FileUnit) error {
	if unit == nil {
		return errors.New("nil file unit")
	}
	return w.addFile(ctx, unit, false)
}

func (w *Workspace) addFile(ctx context.Context, unit *extractor.FileUnit, builtin bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if old, ok := w.files[unit.Path]; ok {
		w.dropLocked(old)
	}

	w.generation++
	entry := &fileEntry{unit: unit, generation: w.generation, builtin: builtin}
	for _, t := range unit.Types {
		w.buildType(entry, nil, t)
	}
	for _, t := range entry.types {
		if prev, ok := w.types[t.binary]; ok && prev.file != unit.Path {
			w.logger.Warn("duplicate type declaration",
				slog.String("type", t.binary),
				slog.String("file", unit.Path),
				slog.String("previous", prev.file))
		}
		w.types[t.binary] = t
		w.graph.AddSymbol(graph.FromTypeUnit(unit, t.unit))
	}
	w.files[unit.Path] = entry
	w.snapshot = uuid.NewString()
	w.linked = false

	if w.index != nil {
		if err := w.syncIndexLocked(ctx, entry); err != nil {
			return fmt.Errorf("failed to index %s: %w", unit.Path, err)
		}
	}
	return nil
}

func (w *Workspace) syncIndexLocked(ctx context.Context, entry *fileEntry) error {
	path := entry.unit.Path
	if hash, ok, err := w.index.FileHash(ctx, path); err != nil {
		return err
	} else if ok && hash == entry.unit.ContentHash {
		return nil
	}

	var records []storage.TypeRecord
	for _, t := range entry.types {
		if t.unit.Anonymous {
			continue
		}
		records = append(records, t.record())
	}
	if err := w.index.ReplaceFile(ctx, path, entry.unit.ContentHash, records); err != nil {
		return err
	}
	return w.index.SetMeta(ctx, "snapshot", w.snapshot)
}

// RemoveFile drops every declaration of path.
func (w *Workspace) RemoveFile(ctx context.Context, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.files[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFile, path)
	}
	w.dropLocked(entry)
	delete(w.files, path)
	w.snapshot = uuid.NewString()
	w.linked = false

	if w.index != nil {
		if err := w.index.RemoveFile(ctx, path); err != nil {
			return fmt.Errorf("failed to unindex %s: %w", path, err)
		}
	}
	return nil
}

func (w *Workspace) dropLocked(entry *fileEntry) {
	for _, t := range entry.types {
		if cur, ok := w.types[t.binary]; ok && cur == t {
			delete(w.types, t.binary)
		}
	}
	w.graph.RemoveFile(entry.unit.Path)
}

// Type returns the live handle of a binary name such as
// "com.acme.Outer$Inner".
func (w *Workspace) Type(binary string) (*TypeElement, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.types[binary]
	return t, ok
}

// Types lists every live type ordered by binary name.
func (w *Workspace) Types() []*TypeElement {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*TypeElement, 0, len(w.types))
	for _, t := range w.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].binary < out[j].binary })
	return out
}

// Files lists the paths of the user files, built-ins excluded.
func (w *Workspace) Files() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []string
	for p, e := range w.files {
		if !e.builtin {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Stats links the hierarchy if needed and summarizes it.
func (w *Workspace) Stats() graph.Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.linkLocked()
	return w.graph.Stats()
}

// Graph links the hierarchy if needed and returns it. Callers must treat it
// as read-only.
func (w *Workspace) Graph() *graph.Graph {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.linkLocked()
	return w.graph
}

func (w *Workspace) linkLocked() {
	if w.linked {
		return
	}
	w.graph.Link(func(from *graph.Node, written string) (string, bool) {
		t, ok := w.types[from.Symbol.ID]
		if !ok {
			return "", false
		}
		// Supertype clauses resolve in the enclosing scope.
		return w.resolveLocked(t.enclosing, t.entry, env.ParseTypeRef(written).Name)
	}, RootClass)
	w.linked = true
}

func (w *Workspace) isLive(file string, generation uint64) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.files[file]
	return ok && e.generation == generation
}

func (w *Workspace) buildType(entry *fileEntry, enclosing *TypeElement, u *extractor.TypeUnit) *TypeElement {
	t := &TypeElement{
		ws:         w,
		unit:       u,
		binary:     u.BinaryName,
		file:       entry.unit.Path,
		pkg:        entry.unit.Package,
		generation: entry.generation,
		entry:      entry,
		enclosing:  enclosing,
		params:     typeParameters(u.TypeParameters),
	}
	entry.types = append(entry.types, t)

	for _, m := range u.Members {
		t.members = append(t.members, w.buildType(entry, t, m))
	}
	hasConstructor := false
	for _, mu := range u.Methods {
		m := newMethodElement(t, mu)
		for _, l := range mu.LocalTypes {
			m.locals = append(m.locals, w.buildType(entry, t, l))
		}
		hasConstructor = hasConstructor || mu.Constructor
		t.methods = append(t.methods, m)
	}
	if !hasConstructor && (u.Kind == extractor.KindClass || u.Kind == extractor.KindEnum) {
		t.methods = append(t.methods, newMethodElement(t, &extractor.MethodUnit{
			Name:        u.Name,
			Constructor: true,
			Implicit:    true,
			ReturnType:  "void",
			StartLine:   u.StartLine,
			EndLine:     u.StartLine,
		}))
	}
	for _, init := range u.Initializers {
		t.initializers = append(t.initializers, w.buildType(entry, t, init))
	}
	return t
}

func typeParameters(params []extractor.TypeParam) []env.TypeParameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]env.TypeParameter, 0, len(params))
	for _, p := range params {
		tp := env.TypeParameter{Name: p.Name}
		for _, b := range p.Bounds {
			tp.Bounds = append(tp.Bounds, env.ParseTypeRef(b))
		}
		out = append(out, tp)
	}
	return out
}

// qualifiedName turns a binary name into its dotted source form.
func qualifiedName(binary string) string {
	return strings.ReplaceAll(binary, "$", ".")
}
