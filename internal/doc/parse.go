package doc

import (
	"encoding/json"
	"fmt"
)

// ParseError reports a malformed serialized document, with the path of the
// offending node (e.g. "doc.content[2].content[0]").
type ParseError struct {
	Path string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

func parseErrorf(path, format string, args ...any) *ParseError {
	return &ParseError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// wireNode is the portable tree representation: {type, attrs, content, marks, text}.
type wireNode struct {
	Type    string     `json:"type"`
	Attrs   *wireAttrs `json:"attrs,omitempty"`
	Content []wireNode `json:"content,omitempty"`
	Marks   []wireMark `json:"marks,omitempty"`
	Text    string     `json:"text,omitempty"`
}

// wireAttrs is the union of all attribute shapes. Each node type reads only
// its own fields; parse rejects missing required ones.
type wireAttrs struct {
	Title    *string `json:"title,omitempty"`
	Level    *int    `json:"level,omitempty"`
	Checked  *bool   `json:"checked,omitempty"`
	ID       *int64  `json:"id,omitempty"`
	Filename string  `json:"filename,omitempty"`
	MimeType string  `json:"mime_type,omitempty"`
}

type wireMark struct {
	Type  string         `json:"type"`
	Attrs *wireMarkAttrs `json:"attrs,omitempty"`
}

type wireMarkAttrs struct {
	Href  string `json:"href,omitempty"`
	Title string `json:"title,omitempty"`
}

// Parse decodes a serialized document tree.
func Parse(data []byte) (*Document, error) {
	var root wireNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Path: "doc", Msg: err.Error()}
	}
	return parseRoot(root)
}

func parseRoot(root wireNode) (*Document, error) {
	if root.Type != "doc" {
		return nil, parseErrorf("doc", "expected node type %q, got %q", "doc", root.Type)
	}
	children := make([]Block, 0, len(root.Content))
	for i, child := range root.Content {
		block, err := parseBlock(child, fmt.Sprintf("doc.content[%d]", i))
		if err != nil {
			return nil, err
		}
		children = append(children, block)
	}
	return &Document{Children: children}, nil
}

func parseBlock(node wireNode, path string) (Block, error) {
	switch node.Type {
	case "paragraph":
		children, err := parseInlines(node.Content, path)
		if err != nil {
			return nil, err
		}
		return Paragraph{Children: children}, nil

	case "heading":
		if node.Attrs == nil || node.Attrs.Level == nil {
			return nil, parseErrorf(path, "heading is missing the level attribute")
		}
		children, err := parseInlines(node.Content, path)
		if err != nil {
			return nil, err
		}
		return Heading{Level: *node.Attrs.Level, Children: children}, nil

	case "ordered_list":
		items, err := parseListItems(node.Content, path)
		if err != nil {
			return nil, err
		}
		return OrderedList{Items: items}, nil

	case "bullet_list":
		items, err := parseListItems(node.Content, path)
		if err != nil {
			return nil, err
		}
		return BulletList{Items: items}, nil

	case "horizontal_rule":
		return HorizontalRule{}, nil

	case "code_block":
		return CodeBlock{Text: textContent(node)}, nil

	case "blockquote":
		children, err := parseBlocks(node.Content, path)
		if err != nil {
			return nil, err
		}
		return BlockQuote{Children: children}, nil

	case "math_display":
		return MathBlock{Text: textContent(node)}, nil

	case "file_block":
		if node.Attrs == nil || node.Attrs.ID == nil {
			return nil, parseErrorf(path, "file_block is missing the id attribute")
		}
		return FileBlock{
			FileID:   *node.Attrs.ID,
			Filename: node.Attrs.Filename,
			MimeType: node.Attrs.MimeType,
		}, nil

	default:
		return nil, parseErrorf(path, "unknown block node type %q", node.Type)
	}
}

func parseBlocks(nodes []wireNode, path string) ([]Block, error) {
	blocks := make([]Block, 0, len(nodes))
	for i, node := range nodes {
		block, err := parseBlock(node, fmt.Sprintf("%s.content[%d]", path, i))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func parseListItems(nodes []wireNode, path string) ([]ListItem, error) {
	items := make([]ListItem, 0, len(nodes))
	for i, node := range nodes {
		itemPath := fmt.Sprintf("%s.content[%d]", path, i)
		if node.Type != "list_item" {
			return nil, parseErrorf(itemPath, "expected node type %q, got %q", "list_item", node.Type)
		}
		children, err := parseBlocks(node.Content, itemPath)
		if err != nil {
			return nil, err
		}
		items = append(items, ListItem{Children: children})
	}
	return items, nil
}

func parseInlines(nodes []wireNode, path string) ([]Inline, error) {
	inlines := make([]Inline, 0, len(nodes))
	for i, node := range nodes {
		inline, err := parseInline(node, fmt.Sprintf("%s.content[%d]", path, i))
		if err != nil {
			return nil, err
		}
		inlines = append(inlines, inline)
	}
	return inlines, nil
}

func parseInline(node wireNode, path string) (Inline, error) {
	switch node.Type {
	case "text":
		marks, err := parseMarks(node.Marks, path)
		if err != nil {
			return nil, err
		}
		return Text{Text: node.Text, Marks: marks}, nil

	case "wikilinknode":
		if node.Attrs == nil || node.Attrs.Title == nil {
			return nil, parseErrorf(path, "wikilinknode is missing the title attribute")
		}
		return Wikilink{Title: *node.Attrs.Title}, nil

	case "math_inline":
		return InlineMath{Text: textContent(node)}, nil

	case "checkbox":
		if node.Attrs == nil || node.Attrs.Checked == nil {
			return nil, parseErrorf(path, "checkbox is missing the checked attribute")
		}
		return Checkbox{Checked: *node.Attrs.Checked}, nil

	default:
		return nil, parseErrorf(path, "unknown inline node type %q", node.Type)
	}
}

func parseMarks(wire []wireMark, path string) (Marks, error) {
	var marks Marks
	for _, mark := range wire {
		switch mark.Type {
		case "em":
			marks.Em = true
		case "strong":
			marks.Strong = true
		case "code":
			marks.Code = true
		case "link":
			if mark.Attrs == nil || mark.Attrs.Href == "" {
				return Marks{}, parseErrorf(path, "link mark is missing the href attribute")
			}
			marks.Href = mark.Attrs.Href
		case "wikilink":
			if mark.Attrs == nil || mark.Attrs.Title == "" {
				return Marks{}, parseErrorf(path, "wikilink mark is missing the title attribute")
			}
			marks.Wikilink = mark.Attrs.Title
		default:
			return Marks{}, parseErrorf(path, "unknown mark type %q", mark.Type)
		}
	}
	return marks, nil
}

// textContent joins the text of a node's children. Used for nodes whose
// content pattern is exactly character data (code and math).
func textContent(node wireNode) string {
	var out string
	for _, child := range node.Content {
		out += child.Text
	}
	return out
}
