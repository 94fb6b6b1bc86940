package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// mdLinkTransformer rewrites relative links to .md files so they point at
// the rendered .html page instead.
type mdLinkTransformer struct{}

func newMDLinkTransformer() parser.ASTTransformer {
	return &mdLinkTransformer{}
}

func (t *mdLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if isExternal(link.Destination) {
			return ast.WalkContinue, nil
		}
		if bytes.HasSuffix(link.Destination, []byte(".md")) {
			dest := bytes.TrimSuffix(link.Destination, []byte(".md"))
			link.Destination = append(dest, []byte(".html")...)
		}
		return ast.WalkContinue, nil
	})
}

func isExternal(dest []byte) bool {
	return bytes.Contains(dest, []byte("://")) || bytes.HasPrefix(dest, []byte("mailto:"))
}
