package reader

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownFormat implements Format for Markdown files. Headings become
// chapters; markup is dropped.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

func (f *MarkdownFormat) Load(filename string) (Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Document{}, err
	}
	src, err := DecodeText(data)
	if err != nil {
		return Document{}, err
	}
	return ParseMarkdown(titleFromPath(filename), []byte(src)), nil
}

// ParseMarkdown converts Markdown source into a Document. The first
// level-1 heading, if any, replaces fallbackTitle.
func ParseMarkdown(fallbackTitle string, source []byte) Document {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var b docBuilder
	title := ""
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			heading := inlineText(node, source)
			if title == "" && node.Level == 1 {
				title = strings.TrimSpace(heading)
			}
			b.chapter(heading, node.Level-1)
			b.paragraph(heading)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			b.paragraph(inlineText(node, source))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			b.paragraph(blockLines(node, source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	if title == "" {
		title = fallbackTitle
	}
	return b.document(title)
}

// inlineText concatenates the text under an inline container, turning
// soft and hard line breaks into newlines.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.AutoLink:
			sb.Write(t.Label(source))
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

func blockLines(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}
