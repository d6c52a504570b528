package doc

import "fmt"

// SchemaError reports a document that parsed but violates the node schema.
type SchemaError struct {
	Path string
	Msg  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

func schemaErrorf(path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Validate checks a document against the node schema: heading levels in
// range, lists and list items non-empty, file embeds carrying a file id, and
// the link/wikilink mark exclusion.
func Validate(d *Document) error {
	for i, block := range d.Children {
		if err := validateBlock(block, fmt.Sprintf("doc.content[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func validateBlock(block Block, path string) error {
	switch b := block.(type) {
	case Paragraph:
		return validateInlines(b.Children, path)

	case Heading:
		if b.Level < 1 || b.Level > 6 {
			return schemaErrorf(path, "heading level %d is out of range", b.Level)
		}
		return validateInlines(b.Children, path)

	case OrderedList:
		return validateItems(b.Items, path)

	case BulletList:
		return validateItems(b.Items, path)

	case HorizontalRule, CodeBlock, MathBlock:
		return nil

	case BlockQuote:
		if len(b.Children) == 0 {
			return schemaErrorf(path, "blockquote must contain at least one block")
		}
		return validateBlocks(b.Children, path)

	case FileBlock:
		if b.FileID <= 0 {
			return schemaErrorf(path, "file_block has no file id")
		}
		return nil

	default:
		return schemaErrorf(path, "unknown block node type %T", block)
	}
}

func validateBlocks(blocks []Block, path string) error {
	for i, block := range blocks {
		if err := validateBlock(block, fmt.Sprintf("%s.content[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func validateItems(items []ListItem, path string) error {
	if len(items) == 0 {
		return schemaErrorf(path, "list must contain at least one item")
	}
	for i, item := range items {
		itemPath := fmt.Sprintf("%s.content[%d]", path, i)
		if len(item.Children) == 0 {
			return schemaErrorf(itemPath, "list item must contain at least one block")
		}
		if err := validateBlocks(item.Children, itemPath); err != nil {
			return err
		}
	}
	return nil
}

func validateInlines(inlines []Inline, path string) error {
	for i, inline := range inlines {
		inlinePath := fmt.Sprintf("%s.content[%d]", path, i)
		switch n := inline.(type) {
		case Text:
			if n.Marks.Href != "" && n.Marks.Wikilink != "" {
				return schemaErrorf(inlinePath, "text span carries both link and wikilink marks")
			}
		case Wikilink, InlineMath, Checkbox:
			// Atomic; attribute shape is enforced at parse time.
		default:
			return schemaErrorf(inlinePath, "unknown inline node type %T", inline)
		}
	}
	return nil
}
