package indexer

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// markdownParser strips inline formatting while preserving the heading
// structure the Segmenter keys on.
var markdownParser = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// ExtractMarkdown converts markdown content to plain text suitable for
// segmentation. Headings are kept as "# Title" lines so header-aware
// segmentation can rebuild the section hierarchy; emphasis, links, and code
// fences are reduced to their text content. The second return value reports
// whether the document carries any headings.
func ExtractMarkdown(content []byte) (string, bool) {
	if len(content) == 0 {
		return "", false
	}

	doc := markdownParser.Parser().Parse(text.NewReader(content))

	var (
		builder    strings.Builder
		hasHeaders bool
	)

	appendLine := func(line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(line)
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			hasHeaders = true
			heading := extractNodeText(node, content)
			if heading != "" {
				appendLine(strings.Repeat("#", node.Level) + " " + heading)
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			appendLine(extractNodeText(node, content))
			return ast.WalkSkipChildren, nil

		case *ast.ListItem:
			appendLine(extractNodeText(node, content))
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock:
			appendLine(extractBlockLines(node, content))
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			appendLine(extractBlockLines(node, content))
			return ast.WalkSkipChildren, nil

		case *ast.Blockquote:
			appendLine(extractNodeText(node, content))
			return ast.WalkSkipChildren, nil

		default:
			// Table rows land here via the extension; reduce each row to a
			// pipe-separated line.
			kindName := n.Kind().String()
			if kindName == "TableRow" || kindName == "TableHeader" {
				appendLine(extractTableRowText(n, content))
				return ast.WalkSkipChildren, nil
			}
			return ast.WalkContinue, nil
		}
	})

	return builder.String(), hasHeaders
}

// extractNodeText extracts text content from a node and its children.
func extractNodeText(n ast.Node, content []byte) string {
	var builder strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			builder.Write(v.Segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				builder.WriteString(" ")
			}
		case *ast.String:
			builder.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(builder.String())
}

// extractBlockLines extracts the raw lines of a code block.
func extractBlockLines(n ast.Node, content []byte) string {
	var builder strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		builder.Write(segment.Value(content))
	}
	return strings.TrimSpace(builder.String())
}

// extractTableRowText extracts text from a table row, joining cells with pipes.
func extractTableRowText(row ast.Node, content []byte) string {
	var (
		builder   strings.Builder
		cellCount int
	)

	_ = ast.Walk(row, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind().String() == "TableCell" {
			if cellCount > 0 {
				builder.WriteString(" | ")
			}
			builder.WriteString(extractNodeText(node, content))
			cellCount++
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return builder.String()
}
