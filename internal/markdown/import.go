// Package markdown converts between markdown text and the stored document
// tree, for bulk import of existing notes and plain-text export.
package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/sgracey/lattice/internal/doc"
	"github.com/sgracey/lattice/internal/wikilink"
)

// fileURLPrefix marks an image destination as a reference to a stored file.
const fileURLPrefix = "lattice://file/"

// Import parses markdown into a document tree. Wikilinks are recognized in
// running text; code spans and code blocks are left verbatim.
func Import(source []byte) (*doc.Document, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.TaskList))
	root := md.Parser().Parse(text.NewReader(source))

	c := &converter{source: source}
	d := &doc.Document{Children: c.blocks(root)}
	if err := doc.Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

type converter struct {
	source []byte
}

func (c *converter) blocks(parent ast.Node) []doc.Block {
	var out []doc.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := c.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c *converter) block(n ast.Node) doc.Block {
	switch n := n.(type) {
	case *ast.Heading:
		level := n.Level
		if level > 6 {
			level = 6
		}
		return doc.Heading{Level: level, Children: c.inlines(n)}

	case *ast.Paragraph:
		if fb, ok := c.fileBlock(n); ok {
			return fb
		}
		return doc.Paragraph{Children: c.inlines(n)}

	case *ast.TextBlock:
		// Tight list items wrap their text in a TextBlock.
		return doc.Paragraph{Children: c.inlines(n)}

	case *ast.List:
		items := c.listItems(n)
		if len(items) == 0 {
			return nil
		}
		if n.IsOrdered() {
			return doc.OrderedList{Items: items}
		}
		return doc.BulletList{Items: items}

	case *ast.FencedCodeBlock:
		text := c.rawLines(n)
		if lang := string(n.Language(c.source)); lang == "math" {
			return doc.MathBlock{Text: text}
		}
		return doc.CodeBlock{Text: text}

	case *ast.CodeBlock:
		return doc.CodeBlock{Text: c.rawLines(n)}

	case *ast.Blockquote:
		children := c.blocks(n)
		if len(children) == 0 {
			return nil
		}
		return doc.BlockQuote{Children: children}

	case *ast.ThematicBreak:
		return doc.HorizontalRule{}
	}
	return nil
}

func (c *converter) listItems(list *ast.List) []doc.ListItem {
	var items []doc.ListItem
	for n := list.FirstChild(); n != nil; n = n.NextSibling() {
		children := c.blocks(n)
		if len(children) == 0 {
			children = []doc.Block{doc.Paragraph{}}
		}
		items = append(items, doc.ListItem{Children: children})
	}
	return items
}

// fileBlock recognizes a paragraph holding nothing but a stored-file image
// reference and lifts it to a file block.
func (c *converter) fileBlock(p *ast.Paragraph) (doc.FileBlock, bool) {
	img, ok := p.FirstChild().(*ast.Image)
	if !ok || img.NextSibling() != nil {
		return doc.FileBlock{}, false
	}
	dest := string(img.Destination)
	if !strings.HasPrefix(dest, fileURLPrefix) {
		return doc.FileBlock{}, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(dest, fileURLPrefix), 10, 64)
	if err != nil || id <= 0 {
		return doc.FileBlock{}, false
	}
	return doc.FileBlock{FileID: id, Filename: c.nodeText(img)}, true
}

func (c *converter) rawLines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(c.source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (c *converter) inlines(parent ast.Node) []doc.Inline {
	return c.inlineChildren(parent, doc.Marks{})
}

// inlineChildren converts a node's inline children. Consecutive text runs
// are buffered and scanned for wikilinks as one string, because the parser
// splits text nodes at bracket boundaries and a [[ref]] would otherwise be
// scattered across several nodes.
func (c *converter) inlineChildren(parent ast.Node, marks doc.Marks) []doc.Inline {
	var out []doc.Inline
	var pending strings.Builder

	flush := func() {
		if pending.Len() > 0 {
			out = append(out, splitWikilinks(pending.String(), marks)...)
			pending.Reset()
		}
	}

	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Text:
			pending.Write(n.Segment.Value(c.source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				pending.WriteByte(' ')
			}
		case *ast.String:
			pending.Write(n.Value)
		default:
			flush()
			out = append(out, c.inline(n, marks)...)
		}
	}
	flush()
	return out
}

func (c *converter) inline(n ast.Node, marks doc.Marks) []doc.Inline {
	switch n := n.(type) {
	case *ast.Emphasis:
		if n.Level >= 2 {
			marks.Strong = true
		} else {
			marks.Em = true
		}
		return c.inlineChildren(n, marks)

	case *ast.CodeSpan:
		marks.Code = true
		if s := c.nodeText(n); s != "" {
			return []doc.Inline{doc.Text{Text: s, Marks: marks}}
		}
		return nil

	case *ast.Link:
		marks.Href = string(n.Destination)
		return c.inlineChildren(n, marks)

	case *ast.AutoLink:
		url := string(n.URL(c.source))
		marks.Href = url
		return []doc.Inline{doc.Text{Text: url, Marks: marks}}

	case *east.TaskCheckBox:
		return []doc.Inline{doc.Checkbox{Checked: n.IsChecked}}
	}
	return c.inlineChildren(n, marks)
}

func (c *converter) nodeText(n ast.Node) string {
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(c.source))
		}
	}
	return sb.String()
}

// splitWikilinks splits a text run around its wikilinks. A bare [[Target]]
// becomes a wikilink node; [[Target|display]] keeps its display text and
// carries the reference as a mark. Text inside code spans never reaches
// here, so code is naturally exempt from scanning.
func splitWikilinks(s string, marks doc.Marks) []doc.Inline {
	if s == "" {
		return nil
	}
	// Hyperlinked text is never scanned; a leaf cannot carry both a
	// hyperlink and a wikilink.
	if marks.Href != "" {
		return []doc.Inline{doc.Text{Text: s, Marks: marks}}
	}
	matches := wikilink.FindAll(s)
	if len(matches) == 0 {
		return splitInlineMath(s, marks)
	}

	var out []doc.Inline
	pos := 0
	for _, m := range matches {
		if m.Start > pos {
			out = append(out, splitInlineMath(s[pos:m.Start], marks)...)
		}
		if m.DisplayText != "" {
			linked := marks
			linked.Wikilink = m.Target
			out = append(out, doc.Text{Text: m.DisplayText, Marks: linked})
		} else {
			out = append(out, doc.Wikilink{Title: m.Target})
		}
		pos = m.End
	}
	if pos < len(s) {
		out = append(out, splitInlineMath(s[pos:], marks)...)
	}
	return out
}

// mathRe matches $...$ spans whose content does not start or end with
// whitespace, so prices like "$5 and $10" stay plain text.
var mathRe = regexp.MustCompile(`\$([^$\s](?:[^$\n]*[^$\s])?)\$`)

func splitInlineMath(s string, marks doc.Marks) []doc.Inline {
	matches := mathRe.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return []doc.Inline{doc.Text{Text: s, Marks: marks}}
	}

	var out []doc.Inline
	pos := 0
	for _, m := range matches {
		if m[0] > pos {
			out = append(out, doc.Text{Text: s[pos:m[0]], Marks: marks})
		}
		out = append(out, doc.InlineMath{Text: s[m[2]:m[3]]})
		pos = m[1]
	}
	if pos < len(s) {
		out = append(out, doc.Text{Text: s[pos:], Marks: marks})
	}
	return out
}
