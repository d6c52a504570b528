package markdown

import (
	"fmt"
	"strings"

	"github.com/sgracey/lattice/internal/doc"
	"github.com/sgracey/lattice/internal/wikilink"
)

// Export renders a document tree as markdown.
func Export(d *doc.Document) string {
	var parts []string
	for _, b := range d.Children {
		parts = append(parts, exportBlock(b))
	}
	out := strings.Join(parts, "\n\n")
	if out != "" {
		out += "\n"
	}
	return out
}

func exportBlock(b doc.Block) string {
	switch b := b.(type) {
	case doc.Heading:
		return strings.Repeat("#", b.Level) + " " + exportInlines(b.Children)

	case doc.Paragraph:
		return exportInlines(b.Children)

	case doc.BulletList:
		return exportList(b.Items, func(int) string { return "- " })

	case doc.OrderedList:
		return exportList(b.Items, func(i int) string { return fmt.Sprintf("%d. ", i+1) })

	case doc.CodeBlock:
		return "```\n" + b.Text + "\n```"

	case doc.BlockQuote:
		var lines []string
		for _, child := range b.Children {
			for _, line := range strings.Split(exportBlock(child), "\n") {
				lines = append(lines, strings.TrimRight("> "+line, " "))
			}
		}
		return strings.Join(lines, "\n")

	case doc.MathBlock:
		return "```math\n" + b.Text + "\n```"

	case doc.HorizontalRule:
		return "---"

	case doc.FileBlock:
		return fmt.Sprintf("![%s](%s%d)", b.Filename, fileURLPrefix, b.FileID)
	}
	return ""
}

func exportList(items []doc.ListItem, marker func(int) string) string {
	var lines []string
	for i, item := range items {
		prefix := marker(i)
		indent := strings.Repeat(" ", len(prefix))
		for j, child := range item.Children {
			for k, line := range strings.Split(exportBlock(child), "\n") {
				if j == 0 && k == 0 {
					lines = append(lines, prefix+line)
				} else {
					lines = append(lines, indent+line)
				}
			}
		}
	}
	return strings.Join(lines, "\n")
}

func exportInlines(inlines []doc.Inline) string {
	var sb strings.Builder
	for _, in := range inlines {
		switch in := in.(type) {
		case doc.Text:
			sb.WriteString(exportText(in))
		case doc.Wikilink:
			sb.WriteString(wikilink.Literal(in.Title, ""))
		case doc.InlineMath:
			sb.WriteString("$" + in.Text + "$")
		case doc.Checkbox:
			if in.Checked {
				sb.WriteString("[x] ")
			} else {
				sb.WriteString("[ ] ")
			}
		}
	}
	return sb.String()
}

func exportText(t doc.Text) string {
	s := t.Text
	if t.Marks.Code {
		s = "`" + s + "`"
	}
	if t.Marks.Em {
		s = "*" + s + "*"
	}
	if t.Marks.Strong {
		s = "**" + s + "**"
	}
	switch {
	case t.Marks.Wikilink != "":
		s = wikilink.Literal(t.Marks.Wikilink, s)
	case t.Marks.Href != "":
		s = "[" + s + "](" + t.Marks.Href + ")"
	}
	return s
}
