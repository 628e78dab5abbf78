package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
)

// Extractor orchestrates the extraction process using language-specific extractors.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case "java":
		langExt = &JavaExtractor{}
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return &Extractor{langExtractor: langExt, langName: lang}, nil
}

// Language returns the configured language name.
func (e *Extractor) Language() string { return e.langName }

// ExtractFromFile parses a single source file.
func (e *Extractor) ExtractFromFile(ctx context.Context, filepath string) (*FileUnit, error) {
	sourceCode, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return e.ExtractSource(ctx, filepath, sourceCode)
}

// ExtractSource parses in-memory source attributed to filepath.
func (e *Extractor) ExtractSource(ctx context.Context, filepath string, sourceCode []byte) (*FileUnit, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filepath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	packageName, err := e.detectPackageName(root, sourceCode)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(sourceCode)
	unit := &FileUnit{
		Path:        filepath,
		Package:     packageName,
		Imports:     e.langExtractor.ExtractImports(root, sourceCode),
		Types:       e.langExtractor.ExtractTypes(root, sourceCode, packageName),
		ContentHash: hex.EncodeToString(sum[:]),
		HasErrors:   root.HasError(),
	}
	for _, t := range unit.AllTypes() {
		t.ID = BuildStableSymbolID(unit, t)
	}
	return unit, nil
}

func (e *Extractor) detectPackageName(root *sitter.Node, sourceCode []byte) (string, error) {
	pkgQuery, err := sitter.NewQuery([]byte(e.langExtractor.GetPackageQuery()), e.langExtractor.GetLanguage())
	if err != nil {
		return "", fmt.Errorf("failed to create query: %w", err)
	}
	defer pkgQuery.Close()

	pqc := sitter.NewQueryCursor()
	defer pqc.Close()
	pqc.Exec(pkgQuery, root)
	if m, ok := pqc.NextMatch(); ok && len(m.Captures) > 0 {
		return m.Captures[0].Node.Content(sourceCode), nil
	}
	return "", nil
}
