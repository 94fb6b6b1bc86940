// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"swatch/internal/config"
	"swatch/internal/logging"
)

// ErrNotEmpty is returned when the target directory already has content.
var ErrNotEmpty = errors.New("directory is not empty")

type projectData struct {
	Name string
}

// CreateProject writes a starter component library into dir: a project
// file, docs templates, static assets, one sample component with metadata,
// a page template and a documented stylesheet. dir may not exist yet but
// must be empty if it does.
func CreateProject(dir string) error {
	log := logging.GetLogger("scaffold")

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not read %s: %w", dir, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("refusing to scaffold into %s: %w", dir, ErrNotEmpty)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	projectFile, err := renderProjectFile(projectData{Name: filepath.Base(abs)})
	if err != nil {
		return err
	}

	files := map[string]string{
		config.DefaultFile:                           projectFile,
		"docs/index.html":                            docsIndexContent,
		"docs/component.html":                        docsComponentContent,
		"docs/component-demo.html":                   docsDemoContent,
		"docs/partials/layout.html":                  docsLayoutContent,
		"docs/static/css/docs.css":                   docsCSSContent,
		"docs/static/js/iframe-resize-to-content.js": iframeResizeContent,
		"src/components/button/button.html":          buttonMarkupContent,
		"src/components/button/button.yml":           buttonMetadataContent,
		"src/templates/landing.html":                 landingTemplateContent,
		"src/scss/_buttons.scss":                     buttonsSCSSContent,
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		target := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(files[path]), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
		log.Debug().Str("file", target).Msg("Created")
	}

	log.Info().Str("dir", dir).Int("files", len(paths)).Msg("Project scaffolded")
	return nil
}

func renderProjectFile(data projectData) (string, error) {
	tmpl, err := template.New("project").Parse(projectFileContent)
	if err != nil {
		return "", fmt.Errorf("failed to parse project file template: %w", err)
	}
	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to execute project file template: %w", err)
	}
	return out.String(), nil
}

const projectFileContent = `package:
  name: {{ .Name }}
  version: 0.1.0
  description: Component library for {{ .Name }}.

timezone: Europe/Amsterdam

src:
  index: docs/index.html
  component_template: docs/component.html
  demo_template: docs/component-demo.html
  partials: { root: docs/partials, pattern: "*.html" }
  templates: { root: src/templates, pattern: "**/*.html" }
  components: { root: src/components, pattern: "**/*.html" }
  metadata_ext: .yml
  statics: { root: docs/static, pattern: "**/*" }
  styles:
    - { root: src/scss, pattern: "**/*.scss" }

dist:
  base: dist/docs
  static: dist/docs/static
  components: dist/docs/components
  styledocs: dist/docs/styledocs

serve:
  port: 3000
  debounce: 300ms
`

const docsLayoutContent = `{{ define "head" }}
<head>
  <meta charset="utf-8">
  <title>{{ (pkg).name }} docs</title>
  <link rel="stylesheet" href="{{ . }}static/css/docs.css">
</head>
{{ end }}

{{ define "footer" }}
<footer>
  <a href="{{ . }}index.html">{{ (pkg).name }}</a> {{ (pkg).version }}
</footer>
{{ end }}
`

const docsIndexContent = `<!DOCTYPE html>
<html>
{{ template "head" "" }}
<body>
  <h1>{{ .pkg.name }}</h1>
  {{ with .pkg.description }}<p>{{ . }}</p>{{ end }}

  <h2>Components</h2>
  <ul class="components">
    {{ range .components }}
    <li>
      <a href="components/{{ .path }}">{{ or .name .path }}</a>
      {{ with .description }}<span>{{ markdownInline . }}</span>{{ end }}
    </li>
    {{ end }}
  </ul>

  <h2>Templates</h2>
  <ul class="templates">
    {{ range .templates }}<li>{{ . }}</li>{{ end }}
  </ul>

  <p><a href="styledocs/index.html">Style reference</a></p>
  <p class="updated">Last updated {{ .lastUpdated }}</p>
  {{ template "footer" "" }}
</body>
</html>
`

const docsComponentContent = `<!DOCTYPE html>
<html>
{{ template "head" .baseUrl }}
<body>
  <h1>{{ or .name .path }}</h1>
  {{ with .description }}{{ markdown . }}{{ end }}

  <h2>Demo</h2>
  <iframe class="demo" src="{{ .baseUrl }}components/{{ .demoUrl }}" data-resize-to-content></iframe>

  <h2>Markup</h2>
  <pre><code>{{ .component.source }}</code></pre>

  <h2>Demo data</h2>
  <pre><code>{{ json .demo }}</code></pre>

  {{ template "footer" .baseUrl }}
  <script src="{{ .baseUrl }}static/js/iframe-resize-to-content.js"></script>
</body>
</html>
`

const docsDemoContent = `<!DOCTYPE html>
<html>
{{ template "head" .baseUrl }}
<body class="demo">
  {{ .component.markup }}
</body>
</html>
`

const docsCSSContent = `body {
  font-family: system-ui, sans-serif;
  max-width: 960px;
  margin: 2em auto;
  padding: 0 1em;
  line-height: 1.5;
  color: #222;
}
body.demo { max-width: none; margin: 0; padding: 1em; }
iframe.demo { width: 100%; border: 1px solid #ddd; border-radius: 4px; }
pre { background: #f6f8fa; padding: 1em; overflow-x: auto; }
.components li { margin-bottom: 0.5em; }
.updated, footer { color: #777; font-size: 0.9em; }
.btn { padding: 0.5rem 1rem; border: 0; border-radius: 4px; cursor: pointer; }
.btn--primary { background: #0a66c2; color: #fff; }
.btn--secondary { background: #e8e8e8; color: #222; }
`

const iframeResizeContent = `document.addEventListener('readystatechange', function () {
  if (document.readyState !== 'complete') return;

  var frames = document.querySelectorAll('iframe[data-resize-to-content]');
  Array.prototype.forEach.call(frames, function (frame) {
    var doc = frame.contentDocument;
    if (!doc) return;
    var height = Math.max(
      doc.body.scrollHeight,
      doc.body.offsetHeight,
      doc.documentElement.clientHeight,
      doc.documentElement.scrollHeight,
      doc.documentElement.offsetHeight
    );
    frame.style.height = height + 'px';
  });
});
`

const buttonMarkupContent = `<button type="button" class="btn btn--{{ .variant }}">{{ .label }}</button>
`

const buttonMetadataContent = `name: Button
description: A clickable button. Use **primary** for the main action on a page.
demo: '{"label": "Click me", "variant": "primary"}'
`

const landingTemplateContent = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Landing</title></head>
<body>
  <main>
    <h1>Welcome</h1>
  </main>
</body>
</html>
`

const buttonsSCSSContent = `////
/// Button styles.
/// @group buttons
////

/// Padding applied to every button.
/// @type Length
$button-padding: 0.5rem 1rem !default;

/// Generates a button color variant.
/// @param {Color} $background - Background color
/// @param {Color} $color [#fff] - Text color
/// @example scss
///   .btn--danger { @include button-variant(#c00); }
@mixin button-variant($background, $color: #fff) {
  background: $background;
  color: $color;
}
`
