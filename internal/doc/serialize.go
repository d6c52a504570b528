package doc

import (
	"encoding/json"
	"fmt"
)

// Serialize encodes a document into its portable tree representation.
//
// Marks are always emitted in the order em, strong, code, link, wikilink, so
// Parse(Serialize(d)) reproduces d exactly.
func Serialize(d *Document) ([]byte, error) {
	root, err := emitRoot(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(root)
}

func emitRoot(d *Document) (wireNode, error) {
	content := make([]wireNode, 0, len(d.Children))
	for _, child := range d.Children {
		node, err := emitBlock(child)
		if err != nil {
			return wireNode{}, err
		}
		content = append(content, node)
	}
	return wireNode{Type: "doc", Content: content}, nil
}

func emitBlock(block Block) (wireNode, error) {
	switch b := block.(type) {
	case Paragraph:
		return wireNode{Type: "paragraph", Content: emitInlines(b.Children)}, nil

	case Heading:
		level := b.Level
		return wireNode{
			Type:    "heading",
			Attrs:   &wireAttrs{Level: &level},
			Content: emitInlines(b.Children),
		}, nil

	case OrderedList:
		items, err := emitListItems(b.Items)
		if err != nil {
			return wireNode{}, err
		}
		return wireNode{Type: "ordered_list", Content: items}, nil

	case BulletList:
		items, err := emitListItems(b.Items)
		if err != nil {
			return wireNode{}, err
		}
		return wireNode{Type: "bullet_list", Content: items}, nil

	case HorizontalRule:
		return wireNode{Type: "horizontal_rule"}, nil

	case CodeBlock:
		return wireNode{Type: "code_block", Content: rawTextContent(b.Text)}, nil

	case BlockQuote:
		content, err := emitBlocks(b.Children)
		if err != nil {
			return wireNode{}, err
		}
		return wireNode{Type: "blockquote", Content: content}, nil

	case MathBlock:
		return wireNode{Type: "math_display", Content: rawTextContent(b.Text)}, nil

	case FileBlock:
		id := b.FileID
		return wireNode{
			Type: "file_block",
			Attrs: &wireAttrs{
				ID:       &id,
				Filename: b.Filename,
				MimeType: b.MimeType,
			},
		}, nil

	default:
		return wireNode{}, fmt.Errorf("unknown block node type %T", block)
	}
}

func emitBlocks(blocks []Block) ([]wireNode, error) {
	nodes := make([]wireNode, 0, len(blocks))
	for _, block := range blocks {
		node, err := emitBlock(block)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func emitListItems(items []ListItem) ([]wireNode, error) {
	nodes := make([]wireNode, 0, len(items))
	for _, item := range items {
		content, err := emitBlocks(item.Children)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, wireNode{Type: "list_item", Content: content})
	}
	return nodes, nil
}

func emitInlines(inlines []Inline) []wireNode {
	nodes := make([]wireNode, 0, len(inlines))
	for _, inline := range inlines {
		nodes = append(nodes, emitInline(inline))
	}
	return nodes
}

func emitInline(inline Inline) wireNode {
	switch n := inline.(type) {
	case Text:
		return wireNode{Type: "text", Marks: emitMarks(n.Marks), Text: n.Text}

	case Wikilink:
		title := n.Title
		return wireNode{Type: "wikilinknode", Attrs: &wireAttrs{Title: &title}}

	case InlineMath:
		return wireNode{Type: "math_inline", Content: rawTextContent(n.Text)}

	case Checkbox:
		checked := n.Checked
		return wireNode{Type: "checkbox", Attrs: &wireAttrs{Checked: &checked}}

	default:
		// The inline interface is closed; this is unreachable for trees built
		// through this package.
		panic(fmt.Sprintf("unknown inline node type %T", inline))
	}
}

func emitMarks(marks Marks) []wireMark {
	if marks.IsZero() {
		return nil
	}
	var out []wireMark
	if marks.Em {
		out = append(out, wireMark{Type: "em"})
	}
	if marks.Strong {
		out = append(out, wireMark{Type: "strong"})
	}
	if marks.Code {
		out = append(out, wireMark{Type: "code"})
	}
	if marks.Href != "" {
		out = append(out, wireMark{Type: "link", Attrs: &wireMarkAttrs{Href: marks.Href}})
	}
	if marks.Wikilink != "" {
		out = append(out, wireMark{Type: "wikilink", Attrs: &wireMarkAttrs{Title: marks.Wikilink}})
	}
	return out
}

func rawTextContent(text string) []wireNode {
	if text == "" {
		return nil
	}
	return []wireNode{{Type: "text", Text: text}}
}
