package crawler

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"symres/internal/extractor"
)

// Crawler scans a directory for Java source files.
type Crawler struct {
	extractor   *extractor.Extractor
	ignored     []string
	concurrency int
	logger      *slog.Logger
}

type Option func(*Crawler)

func WithConcurrency(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) { c.logger = logger }
}

// NewCrawler creates a new crawler instance.
func NewCrawler(ext *extractor.Extractor, opts ...Option) *Crawler {
	c := &Crawler{
		extractor:   ext,
		ignored:     []string{".git", "target", "build", "node_modules", "out"},
		concurrency: runtime.GOMAXPROCS(0),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScanProject walks the root directory and parses every .java file.
// It uses a callback to stream FileUnits, preventing large memory buildup.
// onUnit is never called concurrently.
func (c *Crawler) ScanProject(ctx context.Context, root string, onUnit func(*extractor.FileUnit)) error {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && c.isIgnored(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsJavaSource(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return c.ScanFiles(ctx, paths, onUnit)
}

// ScanFiles parses the given files in parallel. A file that cannot be parsed
// is logged and skipped.
func (c *Crawler) ScanFiles(ctx context.Context, paths []string, onUnit func(*extractor.FileUnit)) error {
	sort.Strings(paths)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			unit, err := c.extractor.ExtractFromFile(gctx, path)
			if err != nil {
				// Log and continue instead of failing the whole scan
				c.logger.Warn("skipping unparsable file", slog.String("path", path), slog.Any("error", err))
				return nil
			}
			if unit.HasErrors {
				c.logger.Debug("file has syntax errors", slog.String("path", path))
			}

			mu.Lock()
			defer mu.Unlock()
			onUnit(unit)
			return nil
		})
	}
	return g.Wait()
}

func (c *Crawler) isIgnored(name string) bool {
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}

// IsJavaSource reports whether path names a Java compilation unit.
func IsJavaSource(path string) bool {
	return strings.HasSuffix(path, ".java") && filepath.Base(path) != "module-info.java"
}
