package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symres/internal/extractor"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCrawler_ScanProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main/java/com/acme/Outer.java", "package com.acme;\npublic class Outer { class Inner {} }\n")
	writeFile(t, root, "src/main/java/com/acme/Shape.java", "package com.acme;\npublic interface Shape { double area(); }\n")
	writeFile(t, root, "src/main/java/module-info.java", "module com.acme {}\n")
	writeFile(t, root, "target/generated/Gen.java", "package gen;\npublic class Gen {}\n")
	writeFile(t, root, ".git/hooks/Hook.java", "class Hook {}\n")
	writeFile(t, root, "README.md", "# acme\n")

	ext, err := extractor.NewExtractor("java")
	require.NoError(t, err)
	c := NewCrawler(ext, WithConcurrency(2))

	var found []string
	err = c.ScanProject(context.Background(), root, func(unit *extractor.FileUnit) {
		for _, typ := range unit.Types {
			found = append(found, typ.BinaryName)
		}
	})
	require.NoError(t, err)

	sort.Strings(found)
	assert.Equal(t, []string{"com.acme.Outer", "com.acme.Shape"}, found)
}

func TestCrawler_ScanFilesSkipsFailures(t *testing.T) {
	root := t.TempDir()
	good := writeFile(t, root, "Good.java", "package p;\nclass Good {}\n")
	missing := filepath.Join(root, "Missing.java")

	var logs bytes.Buffer
	ext, err := extractor.NewExtractor("java")
	require.NoError(t, err)
	c := NewCrawler(ext, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	var paths []string
	err = c.ScanFiles(context.Background(), []string{missing, good}, func(unit *extractor.FileUnit) {
		paths = append(paths, unit.Path)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{good}, paths)
	assert.Contains(t, logs.String(), "skipping unparsable file")
}

func TestCrawler_Cancelled(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "A.java", "class A {}\n")

	ext, err := extractor.NewExtractor("java")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = NewCrawler(ext).ScanFiles(ctx, []string{path}, func(*extractor.FileUnit) {
		t.Fatal("no unit expected after cancellation")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsJavaSource(t *testing.T) {
	assert.True(t, IsJavaSource("src/com/acme/Outer.java"))
	assert.False(t, IsJavaSource("src/module-info.java"))
	assert.False(t, IsJavaSource("src/com/acme/Outer.kt"))
}
