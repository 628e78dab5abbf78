package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultIndexPath, cfg.Index.Path)
	assert.Equal(t, DefaultSearchTimeout, cfg.Resolver.SearchTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symres.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workspace:
  root: /src/acme
index:
  path: /tmp/acme.db
resolver:
  search_timeout: 250ms
log:
  format: json
`), 0o644))

	t.Setenv("SYMRES_LOG_LEVEL", "debug")
	t.Setenv("SYMRES_DB", "/var/lib/symres.db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/src/acme", cfg.Workspace.Root)
	assert.Equal(t, "/var/lib/symres.db", cfg.Index.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Resolver.SearchTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symres.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index: [unterminated"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)

	t.Setenv("SYMRES_SEARCH_TIMEOUT", "soon")
	_, err = LoadConfig("")
	assert.Error(t, err)
}
