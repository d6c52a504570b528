package doc

import "strings"

// ExtractRefs walks a document depth-first and returns the distinct titles
// referenced by wikilink nodes and wikilink marks, in the order they first
// appear. Whitespace-only titles are excluded. Atomic nodes other than
// wikilinks contribute nothing.
func ExtractRefs(d *Document) []string {
	acc := &refAccumulator{seen: make(map[string]struct{})}
	for _, block := range d.Children {
		acc.block(block)
	}
	return acc.titles
}

type refAccumulator struct {
	titles []string
	seen   map[string]struct{}
}

func (a *refAccumulator) add(title string) {
	if strings.TrimSpace(title) == "" {
		return
	}
	if _, ok := a.seen[title]; ok {
		return
	}
	a.seen[title] = struct{}{}
	a.titles = append(a.titles, title)
}

func (a *refAccumulator) block(block Block) {
	switch b := block.(type) {
	case Paragraph:
		a.inlines(b.Children)
	case Heading:
		a.inlines(b.Children)
	case OrderedList:
		a.items(b.Items)
	case BulletList:
		a.items(b.Items)
	case BlockQuote:
		for _, child := range b.Children {
			a.block(child)
		}
	case HorizontalRule, CodeBlock, MathBlock, FileBlock:
		// No references inside atomic or raw-text blocks.
	}
}

func (a *refAccumulator) items(items []ListItem) {
	for _, item := range items {
		for _, child := range item.Children {
			a.block(child)
		}
	}
}

func (a *refAccumulator) inlines(inlines []Inline) {
	for _, inline := range inlines {
		switch n := inline.(type) {
		case Wikilink:
			a.add(n.Title)
		case Text:
			if n.Marks.Wikilink != "" {
				a.add(n.Marks.Wikilink)
			}
		}
	}
}
