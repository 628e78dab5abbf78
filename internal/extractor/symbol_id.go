package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// BuildStableSymbolID creates a deterministic symbol ID for a type.
// The ID is derived from the binary name and a hash of the declared shape, so
// it changes when the supertypes or method signatures change.
func BuildStableSymbolID(file *FileUnit, unit *TypeUnit) string {
	if unit == nil {
		return ""
	}

	pkg := "_"
	if file != nil && strings.TrimSpace(file.Package) != "" {
		pkg = file.Package
	}

	kind := string(unit.Kind)
	if kind == "" {
		kind = "type"
	}

	name := strings.TrimSpace(unit.BinaryName)
	if name == "" {
		name = "_"
	}

	fingerprint := strings.Join([]string{
		"java",
		pkg,
		kind,
		name,
		canonicalize(unit.Superclass),
		canonicalize(strings.Join(unit.Interfaces, ",")),
		canonicalize(methodSignatures(unit)),
	}, "|")

	sum := sha256.Sum256([]byte(fingerprint))
	short := hex.EncodeToString(sum[:8])
	return fmt.Sprintf("java/%s:%s:%s:%s", pkg, kind, name, short)
}

func methodSignatures(unit *TypeUnit) string {
	var sigs []string
	for _, m := range unit.Methods {
		var params []string
		for _, p := range m.Parameters {
			params = append(params, p.Type)
		}
		sigs = append(sigs, m.ReturnType+" "+m.Name+"("+strings.Join(params, ",")+")")
	}
	return strings.Join(sigs, ";")
}

func canonicalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}
