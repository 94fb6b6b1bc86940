package builder

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"swatch/internal/component"
	"swatch/internal/discover"
)

// TimestampLayout renders as DD-MM-YYYY HH:mm:ss <tz-abbrev>.
const TimestampLayout = "02-01-2006 15:04:05 MST"

// IndexStats reports what the index page listed.
type IndexStats struct {
	Templates  int
	Components int
	Resolved   int
}

// RenderIndex writes dist.base/index.html listing page templates and every
// resolvable component.
func (s *Site) RenderIndex() (IndexStats, error) {
	var stats IndexStats

	templatePaths, err := discover.Source(s.cfg.Src.Templates)
	if err != nil {
		return stats, err
	}
	templates, err := discover.Relative(s.cfg.Src.Templates.Root, templatePaths)
	if err != nil {
		return stats, err
	}

	results, err := s.components()
	if err != nil {
		return stats, err
	}
	components := make([]map[string]any, 0, len(results))
	for _, d := range component.Resolved(results) {
		components = append(components, d.Data())
	}

	stamp, err := s.timestamp()
	if err != nil {
		return stats, err
	}

	data := map[string]any{
		"pkg":         s.cfg.Package,
		"templates":   templates,
		"components":  components,
		"lastUpdated": stamp,
	}

	tmpl, err := s.loadTemplate(s.cfg.Src.Index)
	if err != nil {
		return stats, err
	}
	outPath := filepath.Join(s.cfg.Dist.Base, filepath.Base(s.cfg.Src.Index))
	if err := renderPage(tmpl, outPath, data); err != nil {
		return stats, fmt.Errorf("failed to render %s: %w", outPath, err)
	}

	stats.Templates = len(templates)
	stats.Components = len(results)
	stats.Resolved = len(components)
	return stats, nil
}

// RenderComponents writes one documentation page per resolvable component
// at dist.components/<path>.
func (s *Site) RenderComponents() (int, error) {
	return s.renderEach(s.cfg.Src.ComponentTemplate, func(d component.Descriptor) string {
		return d.Path
	})
}

// RenderDemos writes one demo page per resolvable component at
// dist.components/<demoUrl>.
func (s *Site) RenderDemos() (int, error) {
	return s.renderEach(s.cfg.Src.DemoTemplate, func(d component.Descriptor) string {
		return d.DemoURL
	})
}

func (s *Site) renderEach(templatePath string, target func(component.Descriptor) string) (int, error) {
	results, err := s.components()
	if err != nil {
		return 0, err
	}
	resolved := component.Resolved(results)
	if len(resolved) == 0 {
		return 0, nil
	}

	tmpl, err := s.loadTemplate(templatePath)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, res := range results {
		if !res.Resolved() {
			continue
		}
		ctx, err := s.componentContext(res)
		if err != nil {
			return written, err
		}
		outPath := filepath.Join(s.cfg.Dist.Components, filepath.FromSlash(target(res.Descriptor)))
		if err := renderPage(tmpl, outPath, ctx); err != nil {
			return written, fmt.Errorf("failed to render page %s: %w", res.MarkupPath, err)
		}
		written++
	}
	return written, nil
}

// componentContext is the descriptor data plus `pkg` and a `component` map
// holding the markup source and its rendering with the demo payload.
func (s *Site) componentContext(res component.Result) (map[string]any, error) {
	source, err := os.ReadFile(res.MarkupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", res.MarkupPath, err)
	}
	markup, err := s.renderMarkup(res.Descriptor.Path, string(source), res.Descriptor.Demo)
	if err != nil {
		return nil, fmt.Errorf("failed to render markup %s: %w", res.MarkupPath, err)
	}

	ctx := res.Descriptor.Data()
	ctx["pkg"] = s.cfg.Package
	ctx["component"] = map[string]any{
		"file":   res.MarkupPath,
		"source": string(source),
		"markup": markup,
	}
	return ctx, nil
}

func (s *Site) renderMarkup(name, source string, demo any) (template.HTML, error) {
	if !s.cfg.RenderMarkup {
		return template.HTML(source), nil
	}
	tmpl, err := template.New(name).Funcs(s.funcs()).Parse(source)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, demoData(demo)); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

// demoData turns the demo payload into template data. String payloads hold
// JSON; anything that fails to decode is used as-is.
func demoData(demo any) any {
	str, ok := demo.(string)
	if !ok {
		return demo
	}
	var decoded any
	if err := json.Unmarshal([]byte(str), &decoded); err != nil {
		return str
	}
	return decoded
}

func (s *Site) timestamp() (string, error) {
	loc, err := s.cfg.Location()
	if err != nil {
		return "", err
	}
	return formatTimestamp(s.opts.Now(), loc), nil
}

func formatTimestamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimestampLayout)
}
