package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swatch/internal/component"
	"swatch/internal/config"
)

func initProject(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "acme-ui")
	var out bytes.Buffer
	require.NoError(t, run([]string{"init", dir}, &out))
	assert.Contains(t, out.String(), "swatch build")
	return dir
}

func TestInitThenBuild(t *testing.T) {
	dir := initProject(t)

	var out bytes.Buffer
	err := run([]string{"-c", filepath.Join(dir, config.DefaultFile), "build", "--clean"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Built 1 component pages (0 skipped)")
	assert.FileExists(t, filepath.Join(dir, "dist", "docs", "components", "button", "button-demo.html"))
}

func TestInitRefusesNonEmptyDir(t *testing.T) {
	dir := initProject(t)
	err := run([]string{"init", dir}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestResolvePrintsDescriptor(t *testing.T) {
	dir := initProject(t)

	var out bytes.Buffer
	err := run([]string{
		"-c", filepath.Join(dir, config.DefaultFile),
		"resolve", filepath.Join(dir, "src", "components", "button", "button.html"),
	}, &out)
	require.NoError(t, err)

	var data map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &data))
	assert.Equal(t, "button/button.html", data["path"])
	assert.Equal(t, "button/button-demo.html", data["demoUrl"])
	assert.Equal(t, "../../", data["baseUrl"])
	assert.Equal(t, "Button", data["name"])
}

func TestResolveEncodesNonStringKeys(t *testing.T) {
	dir := initProject(t)
	markup := filepath.Join(dir, "src", "components", "size.html")
	require.NoError(t, os.WriteFile(markup, []byte("<span></span>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "components", "size.yml"),
		[]byte("2024: introduced\ndemo:\n  sizes:\n    1: small\n"), 0o644))

	var out bytes.Buffer
	err := run([]string{"-c", filepath.Join(dir, config.DefaultFile), "resolve", markup}, &out)
	require.NoError(t, err)

	var data map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &data))
	assert.Equal(t, "introduced", data["2024"])
	assert.Equal(t, map[string]any{"sizes": map[string]any{"1": "small"}}, data["demo"])
}

func TestResolveReportsSkipReason(t *testing.T) {
	dir := initProject(t)
	markup := filepath.Join(dir, "src", "components", "card.html")
	require.NoError(t, os.WriteFile(markup, []byte("<div></div>"), 0o644))

	var out bytes.Buffer
	err := run([]string{"-c", filepath.Join(dir, config.DefaultFile), "resolve", markup}, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, component.ErrMetadataNotFound))
	assert.Empty(t, out.String())
}

func TestLoadConfig_MissingExplicitFileFails(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
