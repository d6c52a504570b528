package doc

import (
	"reflect"
	"testing"
)

func TestExtractRefs(t *testing.T) {
	d := &Document{Children: []Block{
		Paragraph{Children: []Inline{
			Wikilink{Title: "A"},
			Wikilink{Title: "B"},
		}},
		BulletList{Items: []ListItem{
			{Children: []Block{
				Paragraph{Children: []Inline{Wikilink{Title: "A"}}},
				OrderedList{Items: []ListItem{
					{Children: []Block{
						Paragraph{Children: []Inline{Wikilink{Title: "C"}}},
					}},
				}},
			}},
		}},
		BlockQuote{Children: []Block{
			Paragraph{Children: []Inline{
				Wikilink{Title: "B"},
				Wikilink{Title: "C"},
				Wikilink{Title: "D"},
			}},
		}},
	}}

	want := []string{"A", "B", "C", "D"}
	got := ExtractRefs(d)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractRefs = %v, want %v", got, want)
	}
}

func TestExtractRefsDeterministic(t *testing.T) {
	d := &Document{Children: []Block{
		Paragraph{Children: []Inline{
			Wikilink{Title: "Zeta"},
			Wikilink{Title: "Alpha"},
			Wikilink{Title: "Zeta"},
			Wikilink{Title: "Mid"},
		}},
	}}

	first := ExtractRefs(d)
	for i := 0; i < 10; i++ {
		if got := ExtractRefs(d); !reflect.DeepEqual(got, first) {
			t.Fatalf("extraction is not order-stable: %v vs %v", got, first)
		}
	}
	if want := []string{"Zeta", "Alpha", "Mid"}; !reflect.DeepEqual(first, want) {
		t.Errorf("ExtractRefs = %v, want insertion order %v", first, want)
	}
}

func TestExtractRefsSkipsBlankTitles(t *testing.T) {
	d := &Document{Children: []Block{
		Paragraph{Children: []Inline{
			Wikilink{Title: ""},
			Wikilink{Title: "   "},
			Wikilink{Title: "Real"},
		}},
	}}

	if got := ExtractRefs(d); !reflect.DeepEqual(got, []string{"Real"}) {
		t.Errorf("ExtractRefs = %v, want [Real]", got)
	}
}

func TestExtractRefsFromMarks(t *testing.T) {
	d := &Document{Children: []Block{
		Paragraph{Children: []Inline{
			Text{Text: "the queen", Marks: Marks{Wikilink: "Freya"}},
			Text{Text: "plain"},
		}},
		Heading{Level: 1, Children: []Inline{
			Wikilink{Title: "Freya"},
			Wikilink{Title: "Odin"},
		}},
	}}

	if got := ExtractRefs(d); !reflect.DeepEqual(got, []string{"Freya", "Odin"}) {
		t.Errorf("ExtractRefs = %v, want [Freya Odin]", got)
	}
}

func TestExtractRefsIgnoresOpaqueBlocks(t *testing.T) {
	d := &Document{Children: []Block{
		CodeBlock{Text: "[[NotALink]]"},
		MathBlock{Text: "[[AlsoNot]]"},
		FileBlock{FileID: 1, Filename: "[[nope]].txt"},
	}}

	if got := ExtractRefs(d); len(got) != 0 {
		t.Errorf("ExtractRefs = %v, want none", got)
	}
}
