// Package extract turns uploaded files into plain text for the knowledge
// base, keyed by MIME type. Binary formats (PDF, Word) are handled by
// external collaborators and are rejected here.
package extract

import (
	"errors"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// ErrUnsupportedType is returned for MIME types no extractor claims.
var ErrUnsupportedType = errors.New("unsupported file type")

// Text extracts plain text from the uploaded bytes. Plain text passes
// through verbatim; markdown is stripped of its syntax.
func Text(mimeType, filename string, data []byte) (string, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	switch {
	case mimeType == "text/markdown" || strings.HasSuffix(strings.ToLower(filename), ".md"):
		return markdownText(data), nil
	case strings.HasPrefix(mimeType, "text/") || strings.Contains(mimeType, "txt"):
		return string(data), nil
	default:
		return "", ErrUnsupportedType
	}
}

// markdownText walks the goldmark AST and joins the raw text content,
// dropping markup.
func markdownText(source []byte) string {
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && b.Len() > 0 {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.URL(source))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}
