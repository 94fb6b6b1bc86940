package styledoc

import (
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buttonSCSS = `////
/// Button styles.
/// @group buttons
////

/// Default button padding.
/// @type Length
$button-padding: 0.5rem 1rem !default;

// an ordinary comment
$undocumented: 1px;

/// Renders a button variant.
///
/// Use for **secondary** actions.
/// @param {Color} $color - Text color
/// @param {Length} $radius [4px] - Corner radius
///   applied to all corners
/// @example scss - A ghost button
///   .ghost { @include button-variant(#333); }
/// @since 1.2.0
/// @see $button-padding
@mixin button-variant($color, $radius: 4px) {
  color: $color;
}

/// Darkens a color.
/// @group colors
/// @return {Color} the darker color
/// @deprecated use color.adjust instead
@function shade($color) {
  @return darken($color, 10%);
}

/// Internal helper.
@mixin _reset() {}

/// Base button.
%button-base {
  display: inline-block;
}
`

func mustParse(t *testing.T, name, src string) []Item {
	t.Helper()
	items, err := Parse(name, []byte(src))
	require.NoError(t, err)
	return items
}

func TestParse_RecognizesDeclarations(t *testing.T) {
	items := mustParse(t, "buttons.scss", buttonSCSS)
	require.Len(t, items, 5)

	kinds := make([]string, 0, len(items))
	for _, it := range items {
		kinds = append(kinds, string(it.Kind)+":"+it.Name)
	}
	assert.Equal(t, []string{
		"variable:button-padding",
		"mixin:button-variant",
		"function:shade",
		"mixin:_reset",
		"placeholder:button-base",
	}, kinds)
}

func TestParse_VariableDetails(t *testing.T) {
	v := mustParse(t, "buttons.scss", buttonSCSS)[0]

	assert.Equal(t, "0.5rem 1rem !default", v.Value)
	assert.Equal(t, "Length", v.Type)
	assert.Equal(t, "Default button padding.", v.Description)
	assert.Equal(t, "buttons", v.Group, "file-level group applies")
	assert.Equal(t, "public", v.Access)
	assert.Equal(t, "buttons.scss", v.File)
	assert.Equal(t, 8, v.Line)
}

func TestParse_MixinAnnotations(t *testing.T) {
	m := mustParse(t, "buttons.scss", buttonSCSS)[1]

	assert.Equal(t, "Renders a button variant.\n\nUse for **secondary** actions.", m.Description)
	require.Len(t, m.Params, 2)
	assert.Equal(t, Param{Type: "Color", Name: "color", Description: "Text color"}, m.Params[0])
	assert.Equal(t, Param{Type: "Length", Name: "radius", Default: "4px", Description: "Corner radius\n  applied to all corners"}, m.Params[1])

	require.Len(t, m.Examples, 1)
	assert.Equal(t, "scss", m.Examples[0].Language)
	assert.Equal(t, "A ghost button", m.Examples[0].Description)
	assert.Equal(t, "  .ghost { @include button-variant(#333); }", m.Examples[0].Code)
	assert.Equal(t, []string{"1.2.0"}, m.Since)
	assert.Equal(t, []string{"$button-padding"}, m.See)
}

func TestParse_FunctionOverridesGroupAndDeprecates(t *testing.T) {
	f := mustParse(t, "buttons.scss", buttonSCSS)[2]

	assert.Equal(t, "colors", f.Group)
	require.NotNil(t, f.Return)
	assert.Equal(t, Return{Type: "Color", Description: "the darker color"}, *f.Return)
	require.NotNil(t, f.Deprecated)
	assert.Equal(t, "use color.adjust instead", *f.Deprecated)
}

func TestParse_UnderscoreNamesArePrivate(t *testing.T) {
	items := mustParse(t, "buttons.scss", buttonSCSS)
	assert.True(t, items[3].Private())
	assert.False(t, items[4].Private())
}

func TestParse_InlinePosterGroup(t *testing.T) {
	items := mustParse(t, "x.scss", "//// @group spacing\n\n/// A thing.\n$gap: 1rem;\n")
	require.Len(t, items, 1)
	assert.Equal(t, "spacing", items[0].Group)
}

func TestParse_DefaultGroup(t *testing.T) {
	items := mustParse(t, "x.scss", "/// A thing.\n$x: 1;\n")
	require.Len(t, items, 1)
	assert.Equal(t, DefaultGroup, items[0].Group)
}

func TestParse_LongLinesDoNotDropLaterItems(t *testing.T) {
	minified := ".a{color:red}" + strings.Repeat(".b{margin:0}", 10000)
	src := "/// First.\n$first: 1;\n" + minified + "\n/// Last.\n$last: 2;\n"
	require.Greater(t, len(minified), 64*1024)

	items := mustParse(t, "mixed.scss", src)
	require.Len(t, items, 2)
	assert.Equal(t, "last", items[1].Name)
	assert.Equal(t, 5, items[1].Line)
}

func TestParse_LineOverLimitIsAnError(t *testing.T) {
	src := "/// First.\n$first: 1;\n" + strings.Repeat("x", MaxLineSize+1) + "\n"

	_, err := Parse("huge.scss", []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "huge.scss line 3")
}

type upperMarkdown struct{}

func (upperMarkdown) Render(src string) (template.HTML, error) {
	return template.HTML("<p>" + strings.ToUpper(src) + "</p>"), nil
}

func TestGenerate_WritesHTMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "buttons.scss")
	require.NoError(t, os.WriteFile(src, []byte(buttonSCSS), 0o644))
	out := filepath.Join(dir, "out")

	n, err := Generate([]File{{Path: src, Name: "buttons.scss"}}, out, Options{
		Markdown: upperMarkdown{},
		Package:  map[string]any{"name": "acme-ui"},
		Now:      func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n, "private mixin omitted")

	html, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	page := string(html)
	assert.Contains(t, page, "acme-ui style guide")
	assert.Contains(t, page, `id="group-buttons"`)
	assert.Contains(t, page, `id="group-colors"`)
	assert.Less(t, strings.Index(page, `id="group-buttons"`), strings.Index(page, `id="group-colors"`))
	assert.Contains(t, page, "<p>DEFAULT BUTTON PADDING.</p>")
	assert.Contains(t, page, "Deprecated: use color.adjust instead")
	assert.NotContains(t, page, "_reset")

	raw, err := os.ReadFile(filepath.Join(out, "data.json"))
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Len(t, doc.Items, 4)
	assert.Equal(t, "acme-ui", doc.Package["name"])
	assert.True(t, doc.Generated.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestGenerate_IncludePrivate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "buttons.scss")
	require.NoError(t, os.WriteFile(src, []byte(buttonSCSS), 0o644))

	n, err := Generate([]File{{Path: src, Name: "buttons.scss"}}, filepath.Join(dir, "out"), Options{IncludePrivate: true})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestGenerate_NoFilesWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	n, err := Generate(nil, out, Options{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoDirExists(t, out)
}
