package doc

import "regexp"

// urlRe matches http(s) URLs in pasted plain text. The character class stops
// at whitespace and delimiters that commonly terminate a URL in prose.
var urlRe = regexp.MustCompile(`https?://[^\s<>"]+`)

// Normalize rewrites URL-shaped substrings in text leaves into
// hyperlink-marked spans. Character content and ordering are preserved
// exactly; only marks are added.
//
// The transform is idempotent: spans already carrying a link mark are left
// alone, so normalizing normalized content changes nothing. Spans with a
// wikilink mark are skipped too, since a span cannot carry both kinds of
// link at once.
func Normalize(d *Document) *Document {
	children := make([]Block, len(d.Children))
	for i, block := range d.Children {
		children[i] = normalizeBlock(block)
	}
	return &Document{Children: children}
}

func normalizeBlock(block Block) Block {
	switch b := block.(type) {
	case Paragraph:
		return Paragraph{Children: NormalizeInlines(b.Children)}
	case Heading:
		return Heading{Level: b.Level, Children: NormalizeInlines(b.Children)}
	case OrderedList:
		return OrderedList{Items: normalizeItems(b.Items)}
	case BulletList:
		return BulletList{Items: normalizeItems(b.Items)}
	case BlockQuote:
		children := make([]Block, len(b.Children))
		for i, child := range b.Children {
			children[i] = normalizeBlock(child)
		}
		return BlockQuote{Children: children}
	default:
		// Atomic and raw-text blocks pass through untouched.
		return block
	}
}

func normalizeItems(items []ListItem) []ListItem {
	out := make([]ListItem, len(items))
	for i, item := range items {
		children := make([]Block, len(item.Children))
		for j, child := range item.Children {
			children[j] = normalizeBlock(child)
		}
		out[i] = ListItem{Children: children}
	}
	return out
}

// NormalizeInlines rewrites URL matches in a run of inline content.
func NormalizeInlines(inlines []Inline) []Inline {
	out := make([]Inline, 0, len(inlines))
	for _, inline := range inlines {
		text, ok := inline.(Text)
		if !ok || text.Marks.Href != "" || text.Marks.Wikilink != "" {
			out = append(out, inline)
			continue
		}
		out = append(out, splitURLs(text)...)
	}
	return out
}

func splitURLs(leaf Text) []Inline {
	matches := urlRe.FindAllStringIndex(leaf.Text, -1)
	if len(matches) == 0 {
		return []Inline{leaf}
	}

	var out []Inline
	last := 0
	for _, match := range matches {
		start, end := match[0], match[1]
		if start > last {
			out = append(out, Text{Text: leaf.Text[last:start], Marks: leaf.Marks})
		}
		linked := leaf.Marks
		linked.Href = leaf.Text[start:end]
		out = append(out, Text{Text: leaf.Text[start:end], Marks: linked})
		last = end
	}
	if last < len(leaf.Text) {
		out = append(out, Text{Text: leaf.Text[last:], Marks: leaf.Marks})
	}
	return out
}
