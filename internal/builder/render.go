package builder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"swatch/internal/discover"
)

// funcs are the helpers available in every docs template.
func (s *Site) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": func(v any) (template.HTML, error) {
			return s.md.Render(stringify(v))
		},
		"markdownInline": func(v any) (template.HTML, error) {
			return s.md.Inline(stringify(v))
		},
		"json": func(v any) (string, error) {
			b, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
		"pkg": func() map[string]any {
			return s.cfg.Package
		},
		"safeHTML": func(v any) template.HTML {
			return template.HTML(stringify(v))
		},
	}
}

// loadTemplate parses a page template together with every partial.
func (s *Site) loadTemplate(path string) (*template.Template, error) {
	partials, err := discover.Source(s.cfg.Src.Partials)
	if err != nil {
		return nil, fmt.Errorf("failed to discover partials: %w", err)
	}
	files := append([]string{path}, partials...)
	tmpl, err := template.New(filepath.Base(path)).Funcs(s.funcs()).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	return tmpl, nil
}

// renderPage executes tmpl and writes the output to outPath. Nothing is
// written when execution fails.
func renderPage(tmpl *template.Template, outPath string, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0644)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case template.HTML:
		return string(t)
	default:
		return fmt.Sprint(v)
	}
}
