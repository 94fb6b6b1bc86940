// Package component resolves a component's markup file into the descriptor
// used to render its documentation page, its demo page and its index entry.
package component

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EmptyDemo replaces a missing or empty `demo` metadata value.
const EmptyDemo = "{}"

// Keys the resolver derives. They override same-named metadata keys.
const (
	KeyPath    = "path"
	KeyDemoURL = "demoUrl"
	KeyBaseURL = "baseUrl"
	KeyDemo    = "demo"
)

var (
	// ErrMetadataNotFound means no sibling metadata file exists or it could not be read.
	ErrMetadataNotFound = errors.New("component metadata not found")
	// ErrMetadataMalformed means the metadata file is not a YAML mapping.
	ErrMetadataMalformed = errors.New("component metadata malformed")
	// ErrOutsideRoot means the markup file does not live under the components root.
	ErrOutsideRoot = errors.New("component outside components root")
)

// Options carries the fixed locations the resolver works against.
type Options struct {
	// Root is the components root that descriptor paths are relative to.
	Root string
	// MetadataExt replaces the markup extension to find the metadata file.
	MetadataExt string
}

// Descriptor is a resolved component.
type Descriptor struct {
	Path    string
	DemoURL string
	BaseURL string
	Demo    any
	// Fields holds every metadata key other than the derived ones.
	Fields map[string]any
}

// Data flattens the descriptor into the map handed to templates.
func (d Descriptor) Data() map[string]any {
	data := make(map[string]any, len(d.Fields)+4)
	for k, v := range d.Fields {
		data[k] = v
	}
	data[KeyPath] = d.Path
	data[KeyDemoURL] = d.DemoURL
	data[KeyBaseURL] = d.BaseURL
	data[KeyDemo] = d.Demo
	return data
}

// Result is the outcome of resolving one markup file: either a Descriptor,
// or a Skip error explaining why the component is left out.
type Result struct {
	MarkupPath   string
	MetadataPath string
	Descriptor   Descriptor
	Skip         error
}

// Resolved reports whether a descriptor was produced.
func (r Result) Resolved() bool { return r.Skip == nil }

// Resolver turns markup paths into descriptors. It holds no state between
// calls; every call re-reads the metadata file.
type Resolver struct {
	opts     Options
	readFile func(string) ([]byte, error)
}

// NewResolver returns a Resolver for the given options.
func NewResolver(opts Options) *Resolver {
	return &Resolver{opts: opts, readFile: os.ReadFile}
}

// MetadataPath returns the metadata file expected next to markupPath.
func (r *Resolver) MetadataPath(markupPath string) string {
	return strings.TrimSuffix(markupPath, filepath.Ext(markupPath)) + r.opts.MetadataExt
}

// Resolve reads and parses the metadata file next to markupPath. Read and
// parse failures never escape; they are reported through Result.Skip.
func (r *Resolver) Resolve(markupPath string) Result {
	res := Result{MarkupPath: markupPath, MetadataPath: r.MetadataPath(markupPath)}

	rel, err := RelPath(r.opts.Root, markupPath)
	if err != nil {
		res.Skip = err
		return res
	}

	raw, err := r.readFile(res.MetadataPath)
	if err != nil {
		res.Skip = fmt.Errorf("%w: %s: %v", ErrMetadataNotFound, res.MetadataPath, err)
		return res
	}

	fields, err := parseMetadata(raw)
	if err != nil {
		res.Skip = fmt.Errorf("%w: %s: %v", ErrMetadataMalformed, res.MetadataPath, err)
		return res
	}

	demo := fields[KeyDemo]
	if isEmptyDemo(demo) {
		demo = EmptyDemo
	}
	for _, k := range []string{KeyPath, KeyDemoURL, KeyBaseURL, KeyDemo} {
		delete(fields, k)
	}

	res.Descriptor = Descriptor{
		Path:    rel,
		DemoURL: DemoURL(rel),
		BaseURL: BaseURL(rel),
		Demo:    demo,
		Fields:  fields,
	}
	return res
}

// Lookup is Resolve collapsed to the present/absent outcome consumers act on.
func (r *Resolver) Lookup(markupPath string) (Descriptor, bool) {
	res := r.Resolve(markupPath)
	return res.Descriptor, res.Resolved()
}

// ResolveAll resolves every path, keeping input order.
func (r *Resolver) ResolveAll(markupPaths []string) []Result {
	results := make([]Result, 0, len(markupPaths))
	for _, p := range markupPaths {
		results = append(results, r.Resolve(p))
	}
	return results
}

// Resolved filters results down to their descriptors, keeping order.
func Resolved(results []Result) []Descriptor {
	out := make([]Descriptor, 0, len(results))
	for _, res := range results {
		if res.Resolved() {
			out = append(out, res.Descriptor)
		}
	}
	return out
}

// RelPath returns markupPath relative to root with forward slashes.
func RelPath(root, markupPath string) (string, error) {
	rel, err := filepath.Rel(root, markupPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrOutsideRoot, markupPath, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, markupPath)
	}
	return rel, nil
}

// DemoURL is the demo page of a component: "a/b.html" becomes "a/b-demo.html".
func DemoURL(rel string) string {
	return strings.TrimSuffix(rel, pathExt(rel)) + "-demo.html"
}

// BaseURL climbs one level per segment of rel, so "button/button.html"
// becomes "../../". Component pages live one level below the site root,
// which the extra "../" for the file segment accounts for.
func BaseURL(rel string) string {
	return strings.Repeat("../", len(strings.Split(rel, "/")))
}

func pathExt(rel string) string {
	base := rel[strings.LastIndex(rel, "/")+1:]
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i:]
	}
	return ""
}

// parseMetadata decodes a top-level mapping. Non-string keys at any depth
// become their string form so the result stays JSON-encodable.
func parseMetadata(raw []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return map[string]any{}, nil
	}
	for k, v := range doc {
		doc[k] = normalize(v)
	}
	return doc, nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[keyString(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	}
	return v
}

func keyString(k any) string {
	if k == nil {
		return ""
	}
	return fmt.Sprint(k)
}

func isEmptyDemo(v any) bool {
	switch d := v.(type) {
	case nil:
		return true
	case string:
		return d == ""
	case bool:
		return !d
	case int:
		return d == 0
	case uint64:
		return d == 0
	case float64:
		return d == 0
	}
	return false
}
