package extractor

import sitter "github.com/smacker/go-tree-sitter"

// LanguageExtractor defines the interface that each language parser must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	// GetPackageQuery captures the package name as @pkg.
	GetPackageQuery() string
	ExtractTypes(root *sitter.Node, sourceCode []byte, packageName string) []*TypeUnit
	ExtractImports(root *sitter.Node, sourceCode []byte) []string
}
