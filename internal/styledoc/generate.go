package styledoc

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"
)

//go:embed index.html.tmpl
var indexTemplate string

// Markdown renders item descriptions.
type Markdown interface {
	Render(src string) (template.HTML, error)
}

// File is a stylesheet to document. Name is how it is shown in the output.
type File struct {
	Path string
	Name string
}

type Options struct {
	IncludePrivate bool
	// Markdown renders descriptions; nil leaves them as escaped text.
	Markdown Markdown
	Package  map[string]any
	Now      func() time.Time
}

// Document is the JSON written next to the HTML page.
type Document struct {
	Package   map[string]any `json:"package,omitempty"`
	Generated time.Time      `json:"generated"`
	Items     []Item         `json:"items"`
}

type group struct {
	Name  string
	Items []renderedItem
}

type renderedItem struct {
	Item
	DescriptionHTML template.HTML
	IsDeprecated    bool
	DeprecatedNote  string
}

// Generate parses files and writes index.html and data.json into outDir.
// It returns the number of documented items. Nothing is written when
// files is empty.
func Generate(files []File, outDir string, opts Options) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	var items []Item
	for _, f := range files {
		src, err := os.ReadFile(f.Path)
		if err != nil {
			return 0, fmt.Errorf("failed to read stylesheet %s: %w", f.Path, err)
		}
		parsed, err := Parse(f.Name, src)
		if err != nil {
			return 0, fmt.Errorf("failed to parse stylesheet %s: %w", f.Path, err)
		}
		for _, it := range parsed {
			if it.Private() && !opts.IncludePrivate {
				continue
			}
			items = append(items, it)
		}
	}

	groups, err := groupItems(items, opts.Markdown)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, err
	}

	doc := Document{Package: opts.Package, Generated: opts.Now().UTC(), Items: items}
	if doc.Items == nil {
		doc.Items = []Item{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(outDir, "data.json"), data, 0644); err != nil {
		return 0, err
	}

	tmpl, err := template.New("styledoc").Parse(indexTemplate)
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"pkg":    opts.Package,
		"groups": groups,
		"count":  len(items),
	}); err != nil {
		return 0, fmt.Errorf("failed to render style docs: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "index.html"), buf.Bytes(), 0644); err != nil {
		return 0, err
	}
	return len(items), nil
}

// groupItems sorts groups by name and keeps source order within a group.
func groupItems(items []Item, md Markdown) ([]group, error) {
	byName := make(map[string]*group)
	var names []string
	for _, it := range items {
		g, ok := byName[it.Group]
		if !ok {
			g = &group{Name: it.Group}
			byName[it.Group] = g
			names = append(names, it.Group)
		}
		ri := renderedItem{Item: it}
		if it.Deprecated != nil {
			ri.IsDeprecated = true
			ri.DeprecatedNote = *it.Deprecated
		}
		if md != nil && it.Description != "" {
			html, err := md.Render(it.Description)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", it.File, it.Line, err)
			}
			ri.DescriptionHTML = html
		}
		g.Items = append(g.Items, ri)
	}
	sort.Strings(names)

	out := make([]group, 0, len(names))
	for _, n := range names {
		out = append(out, *byName[n])
	}
	return out, nil
}
