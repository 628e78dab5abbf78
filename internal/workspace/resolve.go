package workspace

import (
	"strings"
	"unicode"
)

// javaLang lists java.lang types visible without import even when no
// built-in declaration exists for them.
var javaLang = map[string]bool{
	"AutoCloseable": true, "Boolean": true, "Byte": true, "Character": true,
	"CharSequence": true, "Class": true, "ClassLoader": true, "Cloneable": true,
	"Comparable": true, "Deprecated": true, "Double": true, "Enum": true,
	"Error": true, "Exception": true, "Float": true, "FunctionalInterface": true,
	"IllegalArgumentException": true, "IllegalStateException": true,
	"IndexOutOfBoundsException": true, "Integer": true, "InterruptedException": true,
	"Iterable": true, "Long": true, "Math": true, "NullPointerException": true,
	"Number": true, "NumberFormatException": true, "Object": true, "Override": true,
	"Process": true, "Record": true, "Runnable": true, "RuntimeException": true,
	"SafeVarargs": true, "Short": true, "String": true, "StringBuilder": true,
	"SuppressWarnings": true, "System": true, "Thread": true, "ThreadLocal": true,
	"Throwable": true, "UnsupportedOperationException": true, "Void": true,
}

// resolveLocked resolves a source-level type name in the scope of a type
// and its compilation unit. Lookup order: the scope chain (the type, its
// member types and the local types of its methods, then each enclosing
// type), single-type imports, the current package, on-demand imports,
// java.lang, and finally fully qualified names.
func (w *Workspace) resolveLocked(scope *TypeElement, entry *fileEntry, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "", false
	}
	segs := strings.Split(name, ".")
	if binary, ok := w.resolveSimpleLocked(scope, entry, segs[0]); ok {
		for _, s := range segs[1:] {
			binary += "$" + s
		}
		return binary, true
	}
	if len(segs) > 1 {
		return w.resolveQualifiedLocked(name)
	}
	return "", false
}

func (w *Workspace) resolveSimpleLocked(scope *TypeElement, entry *fileEntry, simple string) (string, bool) {
	for s := scope; s != nil; s = s.enclosing {
		if s.unit.Name == simple {
			return s.binary, true
		}
		for _, m := range s.members {
			if m.unit.Name == simple {
				return m.binary, true
			}
		}
		for _, m := range s.methods {
			for _, l := range m.locals {
				if l.unit.Name == simple {
					return l.binary, true
				}
			}
		}
	}

	if entry != nil {
		unit := entry.unit
		for _, imp := range unit.Imports {
			if strings.HasSuffix(imp, ".*") {
				continue
			}
			if imp == simple || strings.HasSuffix(imp, "."+simple) {
				return w.resolveQualifiedLocked(imp)
			}
		}
		candidate := simple
		if unit.Package != "" {
			candidate = unit.Package + "." + simple
		}
		if _, ok := w.types[candidate]; ok {
			return candidate, true
		}
		for _, imp := range unit.Imports {
			base, ok := strings.CutSuffix(imp, ".*")
			if !ok {
				continue
			}
			if binary, ok := w.lookupQualifiedLocked(base + "." + simple); ok {
				return binary, true
			}
		}
	}

	if _, ok := w.types["java.lang."+simple]; ok || javaLang[simple] {
		return "java.lang." + simple, true
	}
	return "", false
}

// resolveQualifiedLocked maps a dotted name to a binary name. Unknown names
// are accepted when they follow the package-then-Type naming convention.
func (w *Workspace) resolveQualifiedLocked(dotted string) (string, bool) {
	if binary, ok := w.lookupQualifiedLocked(dotted); ok {
		return binary, true
	}
	return externalBinary(dotted)
}

// lookupQualifiedLocked tries every package/type split of dotted, longest
// package first.
func (w *Workspace) lookupQualifiedLocked(dotted string) (string, bool) {
	segs := strings.Split(dotted, ".")
	for i := len(segs) - 1; i >= 0; i-- {
		candidate := strings.Join(segs[i:], "$")
		if i > 0 {
			candidate = strings.Join(segs[:i], ".") + "." + candidate
		}
		if _, ok := w.types[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

func externalBinary(dotted string) (string, bool) {
	segs := strings.Split(dotted, ".")
	for i, s := range segs {
		if s == "" {
			return "", false
		}
		if unicode.IsUpper([]rune(s)[0]) {
			if i == 0 {
				return "", false
			}
			return strings.Join(segs[:i], ".") + "." + strings.Join(segs[i:], "$"), true
		}
	}
	return "", false
}
