package git

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/src/com/acme/Outer.java b/src/com/acme/Outer.java
index 83db48f..bf269f4 100644
--- a/src/com/acme/Outer.java
+++ b/src/com/acme/Outer.java
@@ -3,0 +4,2 @@ public class Outer {
+    class Added {}
+
@@ -10 +12 @@ public class Outer {
-    void old() {}
+    void renamed() {}
diff --git a/src/com/acme/Gone.java b/src/com/acme/Gone.java
deleted file mode 100644
index 1111111..0000000
--- a/src/com/acme/Gone.java
+++ /dev/null
@@ -1,3 +0,0 @@
-package com.acme;
-class Gone {}
-
diff --git a/README.md b/README.md
index 2222222..3333333 100644
@@ -1 +1 @@
-old
+new
`

func TestParseDiff(t *testing.T) {
	changes, err := parseDiff([]byte(sampleDiff))
	require.NoError(t, err)
	require.Len(t, changes, 3)

	assert.Equal(t, "src/com/acme/Outer.java", changes[0].Path)
	assert.Equal(t, []int{4, 5, 12}, changes[0].ChangedLines)
	assert.False(t, changes[0].Deleted)

	assert.Equal(t, "src/com/acme/Gone.java", changes[1].Path)
	assert.True(t, changes[1].Deleted)
	assert.Empty(t, changes[1].ChangedLines)

	assert.Equal(t, "README.md", changes[2].Path)
}

func TestParseDiff_Empty(t *testing.T) {
	changes, err := parseDiff(nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestJavaFiles(t *testing.T) {
	changes, err := parseDiff([]byte(sampleDiff))
	require.NoError(t, err)

	got := JavaFiles("/repo", changes)
	assert.Equal(t, []string{
		filepath.Join("/repo", "src", "com", "acme", "Outer.java"),
		filepath.Join("/repo", "src", "com", "acme", "Gone.java"),
	}, got)
}
