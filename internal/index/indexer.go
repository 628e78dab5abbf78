package index

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"symres/internal/crawler"
	"symres/internal/extractor"
	"symres/internal/graph"
	"symres/internal/storage"
	"symres/internal/workspace"
)

// Indexer orchestrates source crawling and workspace construction.
type Indexer struct {
	crawler *crawler.Crawler
	index   storage.SymbolIndex
	logger  *slog.Logger
}

// NewIndexer creates a new indexer. idx may be nil, in which case searches
// are answered from memory.
func NewIndexer(c *crawler.Crawler, idx storage.SymbolIndex, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{crawler: c, index: idx, logger: logger}
}

// Build scans the project root and loads every compilation unit into a new
// workspace.
func (i *Indexer) Build(ctx context.Context, root string) (*workspace.Workspace, error) {
	opts := []workspace.Option{workspace.WithLogger(i.logger)}
	if i.index != nil {
		opts = append(opts, workspace.WithIndex(i.index))
	}
	ws, err := workspace.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	var addErr error
	files := 0
	err = i.crawler.ScanProject(ctx, root, func(unit *extractor.FileUnit) {
		if addErr != nil {
			return
		}
		if err := ws.AddFile(ctx, unit); err != nil {
			addErr = fmt.Errorf("add %s: %w", unit.Path, err)
			return
		}
		files++
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if addErr != nil {
		return nil, addErr
	}

	stats := ws.Stats()
	unresolved := 0
	for _, n := range stats.Unresolved {
		unresolved += n
	}
	i.logger.Info("workspace built",
		slog.String("root", root),
		slog.Int("files", files),
		slog.Int("types", stats.Nodes),
		slog.Int("unresolved_supertypes", unresolved))
	return ws, nil
}

// Refresh re-extracts the given files. Paths that no longer exist are
// removed from the workspace.
func (i *Indexer) Refresh(ctx context.Context, ws *workspace.Workspace, paths []string) error {
	var present []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			present = append(present, p)
			continue
		}
		if err := ws.RemoveFile(ctx, p); err != nil && !errors.Is(err, workspace.ErrUnknownFile) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}

	var addErr error
	err := i.crawler.ScanFiles(ctx, present, func(unit *extractor.FileUnit) {
		if addErr == nil {
			addErr = ws.AddFile(ctx, unit)
		}
	})
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	return addErr
}

// SaveGraph persists the linked type hierarchy to a JSON file.
func (i *Indexer) SaveGraph(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create graph file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(g); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}

// LoadGraph loads a graph written by SaveGraph. The file is checked against
// the hierarchy schema before it is decoded.
func (i *Indexer) LoadGraph(path string) (*graph.Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	schema, err := compiledGraphSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile graph schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("graph schema validation failed: %w", err)
	}

	g := graph.NewGraph()
	if err := json.Unmarshal(raw, g); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}

	// Important: Rebuild internal indices that aren't serialized
	g.RebuildIndices()

	return g, nil
}

//go:embed graph.schema.json
var graphSchemaJSON string

var compiledGraphSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("graph.schema.json", graphSchemaJSON)
})
