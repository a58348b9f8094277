package render

import (
	"strings"

	"github.com/gomarkdown/markdown/ast"
)

// MarkdownToPlain renders markdown as readable plain text: escapes resolved, emphasis
// and code markers dropped, list items prefixed with "- ". Used for the Matrix body
// that clients without HTML support display.
func MarkdownToPlain(text string) string {
	doc := newParser().Parse([]byte(text))

	var b strings.Builder
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.Text:
			b.Write(n.Literal)
		case *ast.Code:
			b.Write(n.Literal)
		case *ast.CodeBlock:
			b.Write(n.Literal)
			b.WriteString("\n")
		case *ast.Hardbreak:
			b.WriteString("\n")
		case *ast.HTMLSpan, *ast.HTMLBlock:
			return ast.SkipChildren
		case *ast.ListItem:
			if entering {
				b.WriteString("- ")
			}
		case *ast.List:
			if !entering {
				b.WriteString("\n")
			}
		case *ast.Paragraph:
			if !entering {
				b.WriteString("\n")
				if _, inList := n.Parent.(*ast.ListItem); !inList {
					b.WriteString("\n")
				}
			}
		case *ast.Heading:
			if !entering {
				b.WriteString("\n\n")
			}
		}
		return ast.GoToNext
	})

	out := strings.TrimSpace(b.String())
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return out
}
