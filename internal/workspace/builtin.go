package workspace

import "embed"

// builtinFS holds declaration stubs for the platform types every workspace
// needs: the hierarchy root and the supertypes implied by enums, records and
// annotations.
//
//go:embed builtin/*.java
var builtinFS embed.FS
