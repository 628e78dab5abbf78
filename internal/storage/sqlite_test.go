package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteIndex_ReplaceFile_SnapshotSync(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	idx, err := NewSQLiteIndex(dbPath)
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()

	// Initial snapshot: Outer and Outer$Inner
	require.NoError(t, idx.ReplaceFile(ctx, "Outer.java", "h1", []TypeRecord{
		testRecord("com.acme.Outer", "Outer.java"),
		testRecord("com.acme.Outer$Inner", "Outer.java"),
	}))
	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// New snapshot of the same file drops Inner.
	require.NoError(t, idx.ReplaceFile(ctx, "Outer.java", "h2", []TypeRecord{
		testRecord("com.acme.Outer", "Outer.java"),
	}))

	found, err := idx.FindTypes(ctx, "Inner")
	require.NoError(t, err)
	assert.Empty(t, found)

	hash, ok, err := idx.FileHash(ctx, "Outer.java")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "h2", hash)
}

func TestSQLiteIndex_FindTypes(t *testing.T) {
	idx, err := NewSQLiteIndex(":memory:")
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	require.NoError(t, idx.ReplaceFile(ctx, "a/Outer.java", "h", []TypeRecord{
		testRecord("com.acme.Outer", "a/Outer.java"),
		testRecord("com.acme.Outer$Inner", "a/Outer.java"),
	}))
	require.NoError(t, idx.ReplaceFile(ctx, "b/Inner.java", "h", []TypeRecord{
		testRecord("org.other.Inner", "b/Inner.java"),
	}))

	t.Run("Simple name matches every declaration", func(t *testing.T) {
		found, err := idx.FindTypes(ctx, "inner")
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "com.acme.Outer$Inner", found[0].Binary)
		assert.Equal(t, "org.other.Inner", found[1].Binary)
	})

	t.Run("Qualified name matches exactly and ignores case", func(t *testing.T) {
		found, err := idx.FindTypes(ctx, "COM.ACME.outer.inner")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Lcom/acme/Outer$Inner;", found[0].Key)
		assert.Equal(t, "a/Outer.java", found[0].File)
		assert.Equal(t, "com.acme", found[0].Package)
	})

	t.Run("Prefixes do not match", func(t *testing.T) {
		found, err := idx.FindTypes(ctx, "Out")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("RemoveFile", func(t *testing.T) {
		require.NoError(t, idx.RemoveFile(ctx, "b/Inner.java"))
		found, err := idx.FindTypes(ctx, "Inner")
		require.NoError(t, err)
		assert.Len(t, found, 1)
		_, ok, err := idx.FileHash(ctx, "b/Inner.java")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestSQLiteIndex_Meta(t *testing.T) {
	idx, err := NewSQLiteIndex(":memory:")
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	_, ok, err := idx.GetMeta(ctx, "snapshot")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, idx.SetMeta(ctx, "snapshot", "one"))
	require.NoError(t, idx.SetMeta(ctx, "snapshot", "two"))
	v, ok, err := idx.GetMeta(ctx, "snapshot")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
}

func TestSQLiteIndex_Closed(t *testing.T) {
	idx, err := NewSQLiteIndex(":memory:")
	require.NoError(t, err)
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	_, err = idx.FindTypes(context.Background(), "Outer")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, idx.ReplaceFile(context.Background(), "x", "", nil), ErrClosed)
}

func testRecord(binary, file string) TypeRecord {
	return TypeRecord{
		Key:       "L" + strings.ReplaceAll(binary, ".", "/") + ";",
		Binary:    binary,
		Qualified: strings.ReplaceAll(binary, "$", "."),
		Simple:    binary[strings.LastIndexAny(binary, ".$")+1:],
		Package:   binary[:strings.LastIndex(binary, ".")],
		Kind:      "class",
		File:      file,
	}
}
