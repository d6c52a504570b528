// Package doc defines the typed document tree used for rich-text property
// values.
//
// The tree is a closed set of block and inline variants. Block nodes contain
// either inline content (paragraphs, headings), nested blocks (quotes, list
// items) or raw character data (code and math blocks). Atomic nodes (math,
// file embeds, checkboxes, wikilink tokens) are opaque: traversal reads their
// attributes but never descends into them.
//
// Marks annotate text spans. The hyperlink and wikilink marks carry
// attributes (href, title); the rest are flags.
package doc

// Document is the root of a rich-text tree.
type Document struct {
	Children []Block
}

// Block is a block-level node.
type Block interface {
	block()
}

// Inline is an inline-level node.
type Inline interface {
	inline()
}

// Marks is the set of annotations attached to a text span.
//
// Href and Wikilink are mutually exclusive; Validate rejects a span carrying
// both. An empty string means the mark is absent.
type Marks struct {
	Em       bool
	Strong   bool
	Code     bool
	Href     string
	Wikilink string
}

// IsZero reports whether no marks are set.
func (m Marks) IsZero() bool {
	return m == Marks{}
}

// Paragraph holds a run of inline content.
type Paragraph struct {
	Children []Inline
}

// Heading holds a run of inline content with a level between 1 and 6.
type Heading struct {
	Level    int
	Children []Inline
}

// OrderedList and BulletList hold one or more list items.
type OrderedList struct {
	Items []ListItem
}

type BulletList struct {
	Items []ListItem
}

// ListItem holds one or more blocks.
type ListItem struct {
	Children []Block
}

// HorizontalRule is an atomic block with no content.
type HorizontalRule struct{}

// CodeBlock holds exactly character data.
type CodeBlock struct {
	Text string
}

// BlockQuote holds one or more nested blocks.
type BlockQuote struct {
	Children []Block
}

// MathBlock is an atomic block holding TeX source.
type MathBlock struct {
	Text string
}

// FileBlock is an atomic block embedding a stored file by id.
type FileBlock struct {
	FileID   int64
	Filename string
	MimeType string
}

// Text is a character-data leaf with marks.
type Text struct {
	Text  string
	Marks Marks
}

// Wikilink is an atomic inline token referencing another object by title.
type Wikilink struct {
	Title string
}

// InlineMath is an atomic inline node holding TeX source.
type InlineMath struct {
	Text string
}

// Checkbox is an atomic inline node.
type Checkbox struct {
	Checked bool
}

func (Paragraph) block()      {}
func (Heading) block()        {}
func (OrderedList) block()    {}
func (BulletList) block()     {}
func (HorizontalRule) block() {}
func (CodeBlock) block()      {}
func (BlockQuote) block()     {}
func (MathBlock) block()      {}
func (FileBlock) block()      {}

func (Text) inline()       {}
func (Wikilink) inline()   {}
func (InlineMath) inline() {}
func (Checkbox) inline()   {}
