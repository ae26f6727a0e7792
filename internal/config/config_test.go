package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gdunsharp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
project:
  root: ./scripts
output:
  dir: ./headers
watch:
  debounce_ms: 250
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./scripts", cfg.Project.Root)
	assert.Equal(t, "./headers", cfg.Output.Dir)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Project.Root)
	assert.Equal(t, "gen", cfg.Output.Dir)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce())
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gdunsharp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project:\n  root: ./src\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./src", cfg.Project.Root)
	assert.Equal(t, "gen", cfg.Output.Dir)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gdunsharp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project:\n  root: ./from-file\n"), 0644))

	t.Setenv("GDUNSHARP_PROJECT_ROOT", "./from-env")
	t.Setenv("GDUNSHARP_OUTPUT_DIR", "./out-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./from-env", cfg.Project.Root)
	assert.Equal(t, "./out-env", cfg.Output.Dir)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gdunsharp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project: [not a map"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
