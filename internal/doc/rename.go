package doc

// RenameRefs returns a copy of the document with every wikilink reference to
// oldTitle retargeted to newTitle. All other content is unchanged.
func RenameRefs(d *Document, oldTitle, newTitle string) *Document {
	children := make([]Block, len(d.Children))
	for i, block := range d.Children {
		children[i] = renameBlock(block, oldTitle, newTitle)
	}
	return &Document{Children: children}
}

func renameBlock(block Block, oldTitle, newTitle string) Block {
	switch b := block.(type) {
	case Paragraph:
		return Paragraph{Children: renameInlines(b.Children, oldTitle, newTitle)}
	case Heading:
		return Heading{Level: b.Level, Children: renameInlines(b.Children, oldTitle, newTitle)}
	case OrderedList:
		return OrderedList{Items: renameItems(b.Items, oldTitle, newTitle)}
	case BulletList:
		return BulletList{Items: renameItems(b.Items, oldTitle, newTitle)}
	case BlockQuote:
		children := make([]Block, len(b.Children))
		for i, child := range b.Children {
			children[i] = renameBlock(child, oldTitle, newTitle)
		}
		return BlockQuote{Children: children}
	default:
		return block
	}
}

func renameItems(items []ListItem, oldTitle, newTitle string) []ListItem {
	out := make([]ListItem, len(items))
	for i, item := range items {
		children := make([]Block, len(item.Children))
		for j, child := range item.Children {
			children[j] = renameBlock(child, oldTitle, newTitle)
		}
		out[i] = ListItem{Children: children}
	}
	return out
}

func renameInlines(inlines []Inline, oldTitle, newTitle string) []Inline {
	out := make([]Inline, len(inlines))
	for i, inline := range inlines {
		switch n := inline.(type) {
		case Wikilink:
			if n.Title == oldTitle {
				out[i] = Wikilink{Title: newTitle}
			} else {
				out[i] = n
			}
		case Text:
			if n.Marks.Wikilink == oldTitle {
				n.Marks.Wikilink = newTitle
			}
			out[i] = n
		default:
			out[i] = inline
		}
	}
	return out
}
