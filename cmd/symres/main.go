package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"symres/internal/analysis"
	"symres/internal/config"
	"symres/internal/crawler"
	"symres/internal/diag"
	"symres/internal/env"
	"symres/internal/extractor"
	"symres/internal/git"
	"symres/internal/graph"
	"symres/internal/index"
	"symres/internal/names"
	"symres/internal/resolver"
	"symres/internal/storage"
	"symres/internal/workspace"
)

var (
	rootCmd = &cobra.Command{
		Use:   "symres",
		Short: "Resolve canonical Java type and method names against a source tree",
	}
	configPath   string
	dbPath       string
	rootPath     string
	logLevel     string
	traceEnabled bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "symres.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the declarations index (SQLite)")
	rootCmd.PersistentFlags().StringVarP(&rootPath, "root", "r", "", "Source tree to load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&traceEnabled, "trace", false, "Print resolver spans to stderr")

	indexCmd.Flags().String("since", "", "Report types affected by changes since this git revision")
	indexCmd.Flags().String("graph", "", "Write the linked type hierarchy to this JSON file")
	nameCmd.Flags().String("in", "", "Binary name of the type whose scope resolves the expression")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(methodCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(resolveCmd)
}

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *storage.SQLiteIndex
	indexer  *index.Indexer
	provider *sdktrace.TracerProvider
}

func setup() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Index.Path = dbPath
	}
	if rootPath != "" {
		cfg.Workspace.Root = rootPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger := diag.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	store, err := storage.NewSQLiteIndex(cfg.Index.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	ext, err := extractor.NewExtractor("java")
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		indexer: index.NewIndexer(crawler.NewCrawler(ext, crawler.WithLogger(logger)), store, logger),
	}
	if traceEnabled {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		a.provider = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	}
	return a, nil
}

func (a *app) Close(ctx context.Context) {
	if a.provider != nil {
		if err := a.provider.Shutdown(ctx); err != nil {
			a.logger.Warn("trace shutdown failed", slog.Any("error", err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("index close failed", slog.Any("error", err))
	}
}

func (a *app) newResolver(ws *workspace.Workspace) *resolver.Resolver {
	opts := []resolver.Option{
		resolver.WithDiagnostics(diag.NewSlogSink(a.logger)),
		resolver.WithSearchTimeout(a.cfg.Resolver.SearchTimeout),
	}
	if a.provider != nil {
		opts = append(opts, resolver.WithTracer(a.provider))
	}
	return resolver.New(ws, opts...)
}

// load builds the workspace or exits.
func (a *app) load(ctx context.Context) *workspace.Workspace {
	ws, err := a.indexer.Build(ctx, a.cfg.Workspace.Root)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", a.cfg.Workspace.Root, err)
	}
	return ws
}

func mustSetup() *app {
	a, err := setup()
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
	return a
}

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Parse a source tree and refresh the declarations index",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			rootPath = args[0]
		}
		ctx := context.Background()
		a := mustSetup()
		defer a.Close(ctx)

		absRoot, err := filepath.Abs(a.cfg.Workspace.Root)
		if err != nil {
			log.Fatalf("Failed to resolve %s: %v", a.cfg.Workspace.Root, err)
		}
		a.cfg.Workspace.Root = absRoot

		fmt.Printf("📂 Scanning directory: %s\n", absRoot)
		start := time.Now()
		ws := a.load(ctx)
		stats := ws.Stats()
		count, err := a.store.Count(ctx)
		if err != nil {
			log.Fatalf("Failed to count indexed types: %v", err)
		}
		fmt.Printf("✅ Loaded %d types (%d interfaces, %d supertype edges) in %v. Index holds %d types.\n",
			stats.Nodes, stats.Interfaces, stats.Edges, time.Since(start).Round(time.Millisecond), count)
		for reason, n := range stats.Unresolved {
			fmt.Printf("  -> %d supertypes unresolved (%s)\n", n, reason)
		}

		if out, _ := cmd.Flags().GetString("graph"); out != "" {
			if err := a.indexer.SaveGraph(ws.Graph(), out); err != nil {
				log.Fatalf("Failed to save graph: %v", err)
			}
			fmt.Printf("💾 Hierarchy written to %s\n", out)
		}

		since, _ := cmd.Flags().GetString("since")
		if since == "" {
			return
		}
		changes, err := git.GetChangedFiles(ctx, absRoot, since)
		if err != nil {
			log.Fatalf("Failed to get git changes: %v", err)
		}
		if len(git.JavaFiles(absRoot, changes)) == 0 {
			fmt.Println("✅ No Java changes detected.")
			return
		}

		r := a.newResolver(ws)
		report := analysis.NewAnalyzer(ws.Graph()).AnalyzeImpact(absRoot, changes)
		fmt.Printf("🔍 %d types directly affected, %d through inheritance\n",
			len(report.DirectlyAffected), len(report.IndirectlyAffected))
		for _, group := range [][]string{binaries(report.DirectlyAffected), binaries(report.IndirectlyAffected)} {
			for _, binary := range group {
				if t, ok := ws.Type(binary); ok {
					if name, ok := r.TypeNameOf(t); ok {
						fmt.Printf("  %s\n", name)
					}
				}
			}
		}
		for _, p := range report.Removed {
			fmt.Printf("  removed %s\n", p)
		}
	},
}

var typeCmd = &cobra.Command{
	Use:   "type <canonical-name>",
	Short: "Resolve a canonical type name such as Lcom/acme/Outer$Inner",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name, err := names.ParseTypeName(args[0])
		if err != nil {
			log.Fatalf("Invalid type name: %v", err)
		}
		ctx := context.Background()
		a := mustSetup()
		defer a.Close(ctx)

		ws := a.load(ctx)
		t, ok := a.newResolver(ws).ResolveType(ctx, name)
		if !ok {
			fmt.Printf("❌ %s not found\n", name)
			return
		}
		te := t.(*workspace.TypeElement)
		fmt.Printf("%s %s\n  %s:%d\n", te.Kind(), te.BinaryName(), te.File(), te.Line())
	},
}

var methodCmd = &cobra.Command{
	Use:   "method <canonical-name>",
	Short: "Resolve a canonical method name such as Lcom/acme/Outer.run()V",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name, err := names.ParseMethodName(args[0])
		if err != nil {
			log.Fatalf("Invalid method name: %v", err)
		}
		ctx := context.Background()
		a := mustSetup()
		defer a.Close(ctx)

		ws := a.load(ctx)
		r := a.newResolver(ws)
		m, ok := r.ResolveMethod(ctx, name)
		if !ok {
			fmt.Printf("❌ %s not found\n", name)
			return
		}
		me := m.(*workspace.MethodElement)
		fmt.Printf("%s\n  %s:%d\n", me.Key(), me.Owner().File(), me.Line())
		declared, ok := r.MethodNameOf(m)
		if !ok || declared == name {
			return
		}
		if same, err := declared.Rebase(name.DeclaringType()); err == nil && same == name {
			fmt.Printf("  inherited from %s\n", declared.DeclaringType())
		} else {
			fmt.Printf("  declared as %s\n", declared)
		}
	},
}

var nameCmd = &cobra.Command{
	Use:   "name <type-expression>",
	Short: "Translate a source type expression such as java.util.List<String>[] to its canonical name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := mustSetup()
		defer a.Close(ctx)

		ws := a.load(ctx)
		var scope *workspace.TypeElement
		if in, _ := cmd.Flags().GetString("in"); in != "" {
			t, ok := ws.Type(in)
			if !ok {
				log.Fatalf("Unknown scope type %s", in)
			}
			scope = t
		}

		b, err := ws.TypeBinding(scope, nil, env.ParseTypeRef(args[0]))
		if err != nil {
			log.Fatalf("Failed to bind %q: %v", args[0], err)
		}
		name, ok := a.newResolver(ws).ToCanonicalType(b)
		if !ok {
			log.Fatalf("No canonical name for %q", args[0])
		}
		fmt.Println(name)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [canonical-name...]",
	Short: "Resolve many canonical names in one session, reading stdin when no names are given",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := mustSetup()
		defer a.Close(ctx)

		ws := a.load(ctx)
		r := a.newResolver(ws)

		lines := args
		if len(lines) == 0 {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				lines = append(lines, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				log.Fatalf("Failed to read names: %v", err)
			}
		}

		var found, missing int
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			ok, err := resolveOne(ctx, r, line)
			switch {
			case err != nil:
				fmt.Printf("⚠️  %s: %v\n", line, err)
				missing++
			case ok:
				fmt.Printf("✅ %s\n", line)
				found++
			default:
				fmt.Printf("❌ %s\n", line)
				missing++
			}
		}

		st := r.Stats()
		fmt.Printf("\n%d resolved, %d missing. Cache: %d entries, %d hits, %d misses, %d negative hits, %d evictions. Searches: %d\n",
			found, missing, st.CacheSize, st.CacheHits, st.CacheMisses, st.NegativeHits, st.Evictions, st.Searches)
		for _, stage := range st.Stages {
			fmt.Printf("  %-8s attempted=%d resolved=%d skipped=%d failed=%d\n",
				stage.Locator, stage.Stats.Attempted, stage.Stats.Resolved, stage.Stats.Skipped, stage.Stats.Failed)
		}
	},
}

// resolveOne treats names with a parameter list as methods.
func resolveOne(ctx context.Context, r *resolver.Resolver, raw string) (bool, error) {
	if strings.Contains(raw, "(") {
		name, err := names.ParseMethodName(raw)
		if err != nil {
			return false, err
		}
		_, ok := r.ResolveMethod(ctx, name)
		return ok, nil
	}
	name, err := names.ParseTypeName(raw)
	if err != nil {
		return false, err
	}
	_, ok := r.ResolveType(ctx, name)
	return ok, nil
}

func binaries(nodes []*graph.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Symbol.ID)
	}
	return out
}
