package doc

import "strings"

// PlainText flattens a document to the text content used for full-text
// indexing and snippets. Blocks are joined with newlines; wikilink titles are
// included so objects are findable by the names they mention.
func PlainText(d *Document) string {
	var lines []string
	for _, block := range d.Children {
		if line := blockText(block); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func blockText(block Block) string {
	switch b := block.(type) {
	case Paragraph:
		return inlineText(b.Children)
	case Heading:
		return inlineText(b.Children)
	case OrderedList:
		return itemText(b.Items)
	case BulletList:
		return itemText(b.Items)
	case BlockQuote:
		var lines []string
		for _, child := range b.Children {
			if line := blockText(child); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	case CodeBlock:
		return b.Text
	case MathBlock:
		return b.Text
	case FileBlock:
		return b.Filename
	default:
		return ""
	}
}

func itemText(items []ListItem) string {
	var lines []string
	for _, item := range items {
		for _, child := range item.Children {
			if line := blockText(child); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func inlineText(inlines []Inline) string {
	var sb strings.Builder
	for _, inline := range inlines {
		switch n := inline.(type) {
		case Text:
			sb.WriteString(n.Text)
		case Wikilink:
			sb.WriteString(n.Title)
		case InlineMath:
			sb.WriteString(n.Text)
		}
	}
	return sb.String()
}
