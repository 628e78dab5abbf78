package workspace

import (
	"context"
	"testing"

	"symres/internal/env"
	"symres/internal/extractor"
	"symres/internal/storage"
	"symres/internal/translate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const outerSrc = `package com.acme;

import java.util.List;
import java.util.Map;

public class Outer<T extends Comparable<T>> extends Base implements Runnable {
    public class Inner {
        void ping(String... args) {}
    }

    static class Nested {}

    public void run() {
        Runnable r = new Runnable() {
            public void run() {}
        };
        class Local {}
    }

    public <U> List<U> foo(String s, int[][] grid, Map.Entry<String, U> e) {
        return null;
    }

    T first(List<? extends T> items) {
        return null;
    }
}
`

const baseSrc = `package com.acme;

public class Base {
    protected Base() {}
}
`

func load(t *testing.T, ws *Workspace, path, src string) {
	t.Helper()
	ext, err := extractor.NewExtractor("java")
	require.NoError(t, err)
	unit, err := ext.ExtractSource(context.Background(), path, []byte(src))
	require.NoError(t, err)
	require.NoError(t, ws.AddFile(context.Background(), unit))
}

func newWorkspace(t *testing.T, opts ...Option) *Workspace {
	t.Helper()
	ws, err := New(context.Background(), opts...)
	require.NoError(t, err)
	load(t, ws, "src/com/acme/Outer.java", outerSrc)
	load(t, ws, "src/com/acme/Base.java", baseSrc)
	return ws
}

func mustType(t *testing.T, ws *Workspace, binary string) *TypeElement {
	t.Helper()
	te, ok := ws.Type(binary)
	require.True(t, ok, "missing %s", binary)
	return te
}

func methodNamed(t *testing.T, te *TypeElement, name string) *MethodElement {
	t.Helper()
	for _, m := range te.Methods() {
		if m.ElementName() == name {
			return m.(*MethodElement)
		}
	}
	t.Fatalf("no method %s on %s", name, te.BinaryName())
	return nil
}

func TestWorkspace_Types(t *testing.T) {
	ws := newWorkspace(t)

	for _, binary := range []string{
		"com.acme.Outer", "com.acme.Outer$Inner", "com.acme.Outer$Nested",
		"com.acme.Outer$1", "com.acme.Outer$1Local", "com.acme.Base",
		"java.lang.Object", "java.util.Map$Entry",
	} {
		_, ok := ws.Type(binary)
		assert.True(t, ok, binary)
	}

	outer := mustType(t, ws, "com.acme.Outer")
	assert.Equal(t, "Lcom/acme/Outer;", outer.Key())
	assert.Equal(t, "Outer", outer.ElementName())
	assert.Nil(t, outer.EnclosingType())
	assert.Len(t, outer.Types(), 2)
	assert.True(t, outer.StructureKnown())

	inner := mustType(t, ws, "com.acme.Outer$Inner")
	assert.Equal(t, outer, inner.EnclosingType())

	run := methodNamed(t, outer, "run")
	require.Len(t, run.LocalTypes(), 2)
	assert.Equal(t, "Lcom/acme/Outer$1;", run.LocalTypes()[0].Key())
	assert.Equal(t, "Lcom/acme/Outer$1Local;", run.LocalTypes()[1].Key())

	assert.Equal(t, []string{"src/com/acme/Base.java", "src/com/acme/Outer.java"}, ws.Files())
}

func TestWorkspace_Initializers(t *testing.T) {
	ws := newWorkspace(t)
	load(t, ws, "src/com/acme/Holder.java", `package com.acme;

class Holder {
    Runnable task = new Runnable() {
        public void run() {}
    };
}
`)

	holder := mustType(t, ws, "com.acme.Holder")
	assert.Equal(t, "com.acme", holder.Package())
	require.Len(t, holder.Initializers(), 1)
	anon := holder.Initializers()[0]
	assert.Equal(t, "com.acme.Holder$1", anon.BinaryName())
	assert.True(t, anon.IsAnonymous())
	assert.False(t, anon.IsLocal())
	assert.Equal(t, holder, anon.EnclosingType())
	assert.Empty(t, holder.Types())

	local := mustType(t, ws, "com.acme.Outer$1Local")
	assert.True(t, local.IsLocal())
	assert.False(t, local.IsAnonymous())
}

func TestWorkspace_ImplicitConstructor(t *testing.T) {
	ws := newWorkspace(t)

	inner := mustType(t, ws, "com.acme.Outer$Inner")
	ctor := methodNamed(t, inner, "Inner")
	assert.True(t, ctor.IsConstructor())
	assert.True(t, ctor.IsImplicit())
	assert.Empty(t, ctor.ParameterTypes())

	base := mustType(t, ws, "com.acme.Base")
	var ctors int
	for _, m := range base.Methods() {
		if m.IsConstructor() {
			ctors++
		}
	}
	assert.Equal(t, 1, ctors)
}

func TestWorkspace_ResolveType(t *testing.T) {
	ws := newWorkspace(t)
	outer := mustType(t, ws, "com.acme.Outer")

	tests := []struct {
		name     string
		expected string
	}{
		{"Inner", "com.acme.Outer$Inner"},
		{"Outer.Nested", "com.acme.Outer$Nested"},
		{"Local", "com.acme.Outer$1Local"},
		{"List", "java.util.List"},
		{"Map.Entry", "java.util.Map$Entry"},
		{"Base", "com.acme.Base"},
		{"String", "java.lang.String"},
		{"Boolean", "java.lang.Boolean"},
		{"java.util.Map.Entry", "java.util.Map$Entry"},
		{"org.example.Widget.Part", "org.example.Widget$Part"},
		{"List<String>", "java.util.List"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := outer.ResolveType(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, ok := outer.ResolveType("Missing")
	assert.False(t, ok)
	_, ok = outer.ResolveType("lowercase.only")
	assert.False(t, ok)

	inner := mustType(t, ws, "com.acme.Outer$Inner")
	got, ok := inner.ResolveType("Nested")
	require.True(t, ok)
	assert.Equal(t, "com.acme.Outer$Nested", got)
}

func TestWorkspace_Liveness(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)
	before := ws.Snapshot()

	old := mustType(t, ws, "com.acme.Base")
	oldCtor := methodNamed(t, old, "Base")
	require.True(t, old.Exists())

	load(t, ws, "src/com/acme/Base.java", baseSrc)
	assert.False(t, old.Exists())
	assert.False(t, oldCtor.Exists())
	assert.NotEqual(t, before, ws.Snapshot())

	current := mustType(t, ws, "com.acme.Base")
	assert.True(t, current.Exists())
	assert.Equal(t, old.Key(), current.Key())

	require.NoError(t, ws.RemoveFile(ctx, "src/com/acme/Base.java"))
	assert.False(t, current.Exists())
	_, ok := ws.Type("com.acme.Base")
	assert.False(t, ok)

	err := ws.RemoveFile(ctx, "src/com/acme/Base.java")
	assert.ErrorIs(t, err, ErrUnknownFile)
}

func TestWorkspace_SupertypeHierarchy(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)
	outer := mustType(t, ws, "com.acme.Outer")

	h, err := ws.SupertypeHierarchy(ctx, outer)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.acme.Base", "java.lang.Runnable", "java.lang.Object"}, binaries(h.AllSupertypes(outer)))

	anon := mustType(t, ws, "com.acme.Outer$1")
	assert.Equal(t, []string{"java.lang.Object", "java.lang.Runnable"}, binaries(h.AllSupertypes(anon)))

	require.Len(t, h.RootClasses(), 1)
	assert.Equal(t, "java.lang.Object", h.RootClasses()[0].FullyQualifiedName())

	stats := ws.Stats()
	assert.Zero(t, stats.Unresolved["source_missing"])

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = ws.SupertypeHierarchy(cancelled, outer)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkspace_SearchTypes(t *testing.T) {
	idx, err := storage.NewSQLiteIndex(":memory:")
	require.NoError(t, err)
	defer idx.Close()

	workspaces := map[string]*Workspace{
		"memory": newWorkspace(t),
		"sqlite": newWorkspace(t, WithIndex(idx)),
	}
	for name, ws := range workspaces {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			found, err := ws.SearchTypes(ctx, "inner")
			require.NoError(t, err)
			assert.Equal(t, []string{"com.acme.Outer$Inner"}, binaries(found))

			found, err = ws.SearchTypes(ctx, "com.acme.Outer.Inner")
			require.NoError(t, err)
			assert.Equal(t, []string{"com.acme.Outer$Inner"}, binaries(found))

			found, err = ws.SearchTypes(ctx, "Object")
			require.NoError(t, err)
			assert.Equal(t, []string{"java.lang.Object"}, binaries(found))

			found, err = ws.SearchTypes(ctx, "Inn")
			require.NoError(t, err)
			assert.Empty(t, found)
		})
	}

	n, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Positive(t, n)
	snapshot, ok, err := idx.GetMeta(context.Background(), "snapshot")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, snapshot)
}

func TestWorkspace_Speculative(t *testing.T) {
	ws := newWorkspace(t)
	outer := mustType(t, ws, "com.acme.Outer")

	guess := Speculative(outer)
	assert.True(t, guess.Speculative())
	assert.False(t, outer.Speculative())
	assert.Equal(t, outer.Key(), guess.Key())
	assert.True(t, guess.Exists())

	for _, member := range guess.Types() {
		assert.True(t, member.Speculative())
	}
	for _, m := range guess.Methods() {
		assert.True(t, m.Speculative())
		for _, l := range m.LocalTypes() {
			assert.True(t, l.Speculative())
		}
	}

	m := SpeculativeMethod(methodNamed(t, outer, "run"))
	assert.True(t, m.Speculative())
	assert.True(t, m.DeclaringType().Speculative())
}

func TestWorkspace_BindingsTranslate(t *testing.T) {
	ws := newWorkspace(t)
	tr := translate.New(nil)
	outer := mustType(t, ws, "com.acme.Outer")

	t.Run("Generic method", func(t *testing.T) {
		foo := methodNamed(t, outer, "foo")
		b, err := ws.MethodBinding(foo)
		require.NoError(t, err)
		assert.Equal(t,
			"Lcom/acme/Outer<TT;>;.foo<U:Ljava/lang/Object;>(Ljava/lang/String;[[ILjava/util/Map$Entry<Ljava/lang/String;TU;>;)Ljava/util/List<TU;>;",
			b.Key())

		fromBinding, ok := tr.MethodName(b)
		require.True(t, ok)
		assert.Equal(t, "Lcom/acme/Outer.foo(Ljava/lang/String;[[ILjava/util/Map$Entry;)Ljava/util/List;", fromBinding.Identifier())

		fromHandle, ok := tr.MethodNameOf(foo)
		require.True(t, ok)
		assert.Equal(t, fromBinding, fromHandle)
	})

	t.Run("Type variable of the declaring type", func(t *testing.T) {
		first := methodNamed(t, outer, "first")
		b, err := ws.MethodBinding(first)
		require.NoError(t, err)

		fromBinding, ok := tr.MethodName(b)
		require.True(t, ok)
		assert.Equal(t, "Lcom/acme/Outer.first(Ljava/util/List;)Lcom/acme/Outer;", fromBinding.Identifier())

		fromHandle, ok := tr.MethodNameOf(first)
		require.True(t, ok)
		assert.Equal(t, fromBinding, fromHandle)
	})

	t.Run("Constructor", func(t *testing.T) {
		base := mustType(t, ws, "com.acme.Base")
		b, err := ws.MethodBinding(methodNamed(t, base, "Base"))
		require.NoError(t, err)
		assert.Equal(t, "Lcom/acme/Base;.()V", b.Key())

		name, ok := tr.MethodName(b)
		require.True(t, ok)
		assert.Equal(t, "Lcom/acme/Base.<init>()V", name.Identifier())
	})

	t.Run("Type reference", func(t *testing.T) {
		b, err := ws.TypeBinding(outer, nil, env.ParseTypeRef("Map.Entry<String, List<T>>[]"))
		require.NoError(t, err)
		assert.True(t, b.IsArray())

		name, ok := tr.TypeName(b)
		require.True(t, ok)
		assert.Equal(t, "[Ljava/util/Map$Entry", name.Identifier())

		tv, err := ws.TypeBinding(outer, nil, env.ParseTypeRef("T"))
		require.NoError(t, err)
		assert.True(t, tv.IsTypeVariable())

		_, err = ws.TypeBinding(nil, nil, env.ParseTypeRef("Nowhere"))
		assert.ErrorIs(t, err, ErrUnresolvedType)
	})
}

func binaries(types []env.Type) []string {
	var out []string
	for _, t := range types {
		out = append(out, t.FullyQualifiedName())
	}
	return out
}
