package corpus

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

var markdownParser = goldmark.New(
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// extractMarkdown synthesizes a single page from a markdown file: the
// format has no page boundaries. The document title (first H1) becomes the
// manifest topic label; the body is flattened to plain text so markup
// never reaches the embedding backend.
func extractMarkdown(name string, data []byte) (*Document, error) {
	reader := text.NewReader(data)
	root := markdownParser.Parser().Parse(reader)

	topic := humanizeName(name)
	if tree, err := toc.Inspect(root, data, toc.MinDepth(1), toc.MaxDepth(1), toc.Compact(true)); err == nil {
		if len(tree.Items) > 0 && len(tree.Items[0].Title) > 0 {
			topic = string(tree.Items[0].Title)
		}
	}

	plain := strings.TrimSpace(flattenText(root, data))
	if plain == "" {
		plain = strings.TrimSpace(string(data))
	}

	return &Document{
		Source: name,
		Topic:  topic,
		Pages:  []Page{{Number: 0, Text: plain}},
	}, nil
}

// flattenText walks the AST collecting text content, one line per block.
func flattenText(root ast.Node, source []byte) string {
	var buf bytes.Buffer

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					buf.Write(seg.Value(source))
				}
			}
		default:
			if !entering && n.Type() == ast.TypeBlock {
				buf.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}
