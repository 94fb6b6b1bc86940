package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swatch/internal/config"
)

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func TestGlob_DoubleStarCrossesDirectoriesInLexicalOrder(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "nav/nav.html", "button/button.html", "button/button.yml", "card.html", "button/sub/icon.html")

	got, err := Glob(root, "**/*.html")
	require.NoError(t, err)

	rel, err := Relative(root, got)
	require.NoError(t, err)
	assert.Equal(t, []string{"button/button.html", "button/sub/icon.html", "card.html", "nav/nav.html"}, rel)
}

func TestGlob_InnerDoubleStarMatchesZeroDirectories(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "scss/base.scss", "scss/components/button.scss", "other/x.scss")

	got, err := Glob(root, "scss/**/*.scss")
	require.NoError(t, err)
	rel, err := Relative(root, got)
	require.NoError(t, err)
	assert.Equal(t, []string{"scss/base.scss", "scss/components/button.scss"}, rel)
}

func TestGlob_SingleStarStaysInSegment(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "card.html", "button/button.html")

	got, err := Glob(root, "*.html")
	require.NoError(t, err)
	rel, err := Relative(root, got)
	require.NoError(t, err)
	assert.Equal(t, []string{"card.html"}, rel)
}

func TestGlob_MissingRootIsEmpty(t *testing.T) {
	got, err := Glob(filepath.Join(t.TempDir(), "absent"), "**/*.html")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGlob_InvalidPattern(t *testing.T) {
	_, err := Glob(t.TempDir(), "[")
	require.Error(t, err)
}

func TestSource_UsesConfiguredRootAndPattern(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.scss", "b/c.scss", "b/d.css")

	got, err := Source(config.Source{Root: root, Pattern: "**/*.scss"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
