// Package markdown renders the markdown found in component metadata and
// stylesheet comments into HTML safe to embed in documentation pages.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/verkaro/editml-go"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Options controls the rendering pipeline.
type Options struct {
	// Unsafe disables HTML sanitization of the rendered output.
	Unsafe bool
	// EditML strips editorial markup (additions, deletions, comments)
	// before rendering, leaving the clean view. It also rewrites that
	// syntax inside code spans, so it is opt-in.
	EditML bool
}

// Renderer converts markdown into HTML.
type Renderer struct {
	opts      Options
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// New builds a Renderer.
func New(opts Options) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newMDLinkTransformer(), 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &Renderer{opts: opts, md: md, sanitizer: bluemonday.UGCPolicy()}
}

// Render converts src to HTML.
func (r *Renderer) Render(src string) (template.HTML, error) {
	if r.opts.EditML {
		clean, err := cleanView(src)
		if err != nil {
			return "", err
		}
		src = clean
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}

	if r.opts.Unsafe {
		return template.HTML(buf.String()), nil
	}
	return template.HTML(r.sanitizer.SanitizeBytes(buf.Bytes())), nil
}

// Inline renders src and strips a single wrapping paragraph, for short
// values such as titles.
func (r *Renderer) Inline(src string) (template.HTML, error) {
	out, err := r.Render(src)
	if err != nil {
		return "", err
	}
	s := bytes.TrimSpace([]byte(out))
	if bytes.HasPrefix(s, []byte("<p>")) && bytes.HasSuffix(s, []byte("</p>")) &&
		bytes.Count(s, []byte("<p>")) == 1 {
		s = s[len("<p>") : len(s)-len("</p>")]
	}
	return template.HTML(s), nil
}

func cleanView(src string) (string, error) {
	nodes, parseIssues := editml.Parse(src)
	if len(parseIssues) > 0 && parseIssues[0].Severity == editml.SeverityError {
		return "", fmt.Errorf("editml parsing error: %s", parseIssues[0].Message)
	}
	clean, transformIssues := editml.TransformCleanView(nodes)
	if len(transformIssues) > 0 && transformIssues[0].Severity == editml.SeverityError {
		return "", fmt.Errorf("editml transformation error: %s", transformIssues[0].Message)
	}
	return clean, nil
}
