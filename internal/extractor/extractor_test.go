package extractor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_ExtractFromFile(t *testing.T) {
	testFile := filepath.Join("testdata", "Outer.java")

	ext, err := NewExtractor("java")
	require.NoError(t, err)

	file, err := ext.ExtractFromFile(context.Background(), testFile)
	require.NoError(t, err)

	// Group types by binary name for easier lookup
	byBinary := make(map[string]*TypeUnit)
	for _, unit := range file.AllTypes() {
		byBinary[unit.BinaryName] = unit
	}

	t.Run("Package and imports", func(t *testing.T) {
		assert.Equal(t, "com.acme", file.Package)
		assert.Equal(t, []string{"java.util.List", "java.util.Map", "java.util.*"}, file.Imports)
		assert.False(t, file.HasErrors)
		assert.Len(t, file.ContentHash, 64)
	})

	t.Run("Top-level type", func(t *testing.T) {
		require.Len(t, file.Types, 1)
		outer := file.Types[0]
		assert.Equal(t, "Outer", outer.Name)
		assert.Equal(t, "com.acme.Outer", outer.BinaryName)
		assert.Equal(t, KindClass, outer.Kind)
		assert.Equal(t, "Base", outer.Superclass)
		assert.Equal(t, []string{"Runnable", "Comparable<Outer<T>>"}, outer.Interfaces)
		require.Len(t, outer.TypeParameters, 1)
		assert.Equal(t, TypeParam{Name: "T", Bounds: []string{"Comparable<T>"}}, outer.TypeParameters[0])
		assert.NotEmpty(t, outer.ID)
	})

	t.Run("Methods and constructors", func(t *testing.T) {
		outer := byBinary["com.acme.Outer"]
		require.NotNil(t, outer)
		require.Len(t, outer.Methods, 4)

		ctor := outer.Methods[0]
		assert.True(t, ctor.Constructor)
		assert.Equal(t, "void", ctor.ReturnType)
		assert.Equal(t, []Param{{Name: "size", Type: "int"}}, ctor.Parameters)

		foo := outer.Methods[2]
		assert.Equal(t, "foo", foo.Name)
		assert.Equal(t, "List<U>", foo.ReturnType)
		require.Len(t, foo.TypeParameters, 1)
		assert.Equal(t, "U", foo.TypeParameters[0].Name)
		require.Len(t, foo.Parameters, 3)
		assert.Equal(t, "String", foo.Parameters[0].Type)
		assert.Equal(t, "int[][]", foo.Parameters[1].Type)
		assert.Equal(t, "Map.Entry<String, U>", foo.Parameters[2].Type)
	})

	t.Run("Member types", func(t *testing.T) {
		for _, name := range []string{"Inner", "Nested", "Color", "Point", "Visitor"} {
			unit, ok := byBinary["com.acme.Outer$"+name]
			require.True(t, ok, name)
			assert.Equal(t, name, unit.Name)
			assert.False(t, unit.Local)
			assert.False(t, unit.Anonymous)
		}
		ping := byBinary["com.acme.Outer$Inner"].Methods[0]
		assert.Equal(t, []Param{{Name: "args", Type: "String..."}}, ping.Parameters)

		visitor := byBinary["com.acme.Outer$Visitor"]
		assert.Equal(t, KindInterface, visitor.Kind)
		assert.Equal(t, []string{"Comparable<R>", "Runnable"}, visitor.Interfaces)
	})

	t.Run("Anonymous and local classes follow javac numbering", func(t *testing.T) {
		outer := byBinary["com.acme.Outer"]

		require.Len(t, outer.Initializers, 1)
		assert.Equal(t, "com.acme.Outer$1", outer.Initializers[0].BinaryName)
		assert.True(t, outer.Initializers[0].Anonymous)
		assert.Equal(t, "Runnable", outer.Initializers[0].Superclass)

		run := outer.Methods[1]
		require.Equal(t, "run", run.Name)
		require.Len(t, run.LocalTypes, 2)
		assert.Equal(t, "com.acme.Outer$2", run.LocalTypes[0].BinaryName)
		assert.Equal(t, "com.acme.Outer$1Local", run.LocalTypes[1].BinaryName)
		assert.True(t, run.LocalTypes[1].Local)

		_, ok := byBinary["com.acme.Outer$2$1Deep"]
		assert.True(t, ok)
	})

	t.Run("Enum constant bodies and implicit members", func(t *testing.T) {
		color := byBinary["com.acme.Outer$Color"]
		assert.Equal(t, KindEnum, color.Kind)
		assert.Equal(t, "java.lang.Enum", color.Superclass)

		green, ok := byBinary["com.acme.Outer$Color$1"]
		require.True(t, ok)
		assert.Equal(t, "com.acme.Outer.Color", green.Superclass)

		var implicit []string
		for _, m := range color.Methods {
			if m.Implicit {
				implicit = append(implicit, m.Name)
			}
		}
		assert.Equal(t, []string{"values", "valueOf"}, implicit)
	})

	t.Run("Record canonical constructor and accessors", func(t *testing.T) {
		point := byBinary["com.acme.Outer$Point"]
		assert.Equal(t, KindRecord, point.Kind)
		require.Len(t, point.Methods, 3)
		assert.True(t, point.Methods[0].Constructor)
		assert.False(t, point.Methods[0].Implicit)
		assert.Len(t, point.Methods[0].Parameters, 2)
		assert.Equal(t, "x", point.Methods[1].Name)
		assert.Equal(t, "int", point.Methods[1].ReturnType)
	})
}

func TestExtractor_ExtractSource(t *testing.T) {
	ext, err := NewExtractor("java")
	require.NoError(t, err)
	assert.Equal(t, "java", ext.Language())

	src := []byte(`class Plain { void a() {} }`)
	file, err := ext.ExtractSource(context.Background(), "Plain.java", src)
	require.NoError(t, err)

	assert.Equal(t, "", file.Package)
	require.Len(t, file.Types, 1)
	assert.Equal(t, "Plain", file.Types[0].BinaryName)
	assert.Equal(t, "", file.Types[0].Superclass)
}

func TestExtractor_ImplicitRecordConstructor(t *testing.T) {
	ext, err := NewExtractor("java")
	require.NoError(t, err)

	file, err := ext.ExtractSource(context.Background(), "Pair.java", []byte(`package p; record Pair(String a, long b) { public String a() { return a; } }`))
	require.NoError(t, err)
	require.Len(t, file.Types, 1)

	var ctor *MethodUnit
	var accessors []string
	for _, m := range file.Types[0].Methods {
		if m.Constructor {
			ctor = m
		} else {
			accessors = append(accessors, m.Name)
		}
	}
	require.NotNil(t, ctor)
	assert.True(t, ctor.Implicit)
	assert.Equal(t, []Param{{Name: "a", Type: "String"}, {Name: "b", Type: "long"}}, ctor.Parameters)
	assert.Equal(t, []string{"a", "b"}, accessors)
}

func TestNewExtractor_Unsupported(t *testing.T) {
	_, err := NewExtractor("cobol")
	assert.Error(t, err)
}

func TestSplitTopLevel(t *testing.T) {
	assert.Equal(t, []string{"Map<K, V>", "Runnable"}, splitTopLevel("Map<K, V>, Runnable", ','))
	assert.Equal(t, []string{"Number", "Comparable<T>"}, splitTopLevel("Number & Comparable<T>", '&'))
	assert.Empty(t, splitTopLevel("  ", ','))
}
