package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestEditML_IsOptIn(t *testing.T) {
	assert.False(t, Default().EditML)

	cfg, err := Load(writeConfig(t, "editml: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.EditML)
}

func TestLoad_OverlaysDefaultsAndRebasesPaths(t *testing.T) {
	path := writeConfig(t, `
package:
  name: acme-ui
  version: 1.2.0
timezone: UTC
src:
  components:
    root: lib/components
dist:
  base: out
serve:
  debounce: 50ms
`)
	dir := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "acme-ui", cfg.Package["name"])
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, filepath.Join(dir, "lib/components"), cfg.Src.Components.Root)
	assert.Equal(t, "**/*.html", cfg.Src.Components.Pattern, "pattern keeps its default")
	assert.Equal(t, filepath.Join(dir, "out"), cfg.Dist.Base)
	assert.Equal(t, filepath.Join(dir, "dist/docs/components"), cfg.Dist.Components)
	assert.Equal(t, filepath.Join(dir, "docs/index.html"), cfg.Src.Index)
	assert.Equal(t, ".yml", cfg.Src.MetadataExt)
	assert.Equal(t, 50*time.Millisecond, cfg.Serve.Debounce)
	assert.Equal(t, path, cfg.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "src: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse config file")
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad timezone", "timezone: Mars/Olympus\n", "timezone"},
		{"bad metadata ext", "src:\n  metadata_ext: yml\n", "metadata_ext"},
		{"empty components root", "src:\n  components:\n    root: \"\"\n", "src.components.root"},
		{"port out of range", "serve:\n  port: 70000\n", "serve.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLocation_DefaultsToAmsterdam(t *testing.T) {
	loc, err := Default().Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Amsterdam", loc.String())
}

func TestWatchPaths_DeduplicatesAndIncludesConfigFile(t *testing.T) {
	cfg := Default()
	cfg.Path = "swatch.yaml"
	cfg.Serve.Watch = []string{"src/components", "extra"}

	paths := cfg.WatchPaths()
	assert.Contains(t, paths, "swatch.yaml")
	assert.Contains(t, paths, "extra")

	count := 0
	for _, p := range paths {
		if p == "src/components" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
