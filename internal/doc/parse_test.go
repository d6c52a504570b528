package doc

import (
	"reflect"
	"strings"
	"testing"
)

func sampleDocument() *Document {
	return &Document{
		Children: []Block{
			Paragraph{Children: []Inline{
				Text{Text: "Paragraph. "},
				Text{Text: "Bold", Marks: Marks{Strong: true}},
				Text{Text: ". "},
				Text{Text: "Italics", Marks: Marks{Em: true}},
				Text{Text: ". Wiki link: "},
				Wikilink{Title: "Node"},
				Text{Text: ". "},
				InlineMath{Text: "\\sqrt{2}"},
				Text{Text: "."},
			}},
			Heading{Level: 2, Children: []Inline{
				Text{Text: "Section"},
			}},
			BulletList{Items: []ListItem{
				{Children: []Block{
					Paragraph{Children: []Inline{Text{Text: "item"}}},
					OrderedList{Items: []ListItem{
						{Children: []Block{
							Paragraph{Children: []Inline{Text{Text: "nested"}}},
						}},
					}},
				}},
			}},
			BlockQuote{Children: []Block{
				Paragraph{Children: []Inline{
					Text{Text: "quoted ", Marks: Marks{Em: true, Strong: true}},
					Checkbox{Checked: true},
				}},
			}},
			HorizontalRule{},
			CodeBlock{Text: "fmt.Println(\"hi\")"},
			MathBlock{Text: "e^{i\\pi} = -1"},
			FileBlock{FileID: 7, Filename: "diagram.png", MimeType: "image/png"},
			Paragraph{Children: []Inline{
				Text{Text: "see docs", Marks: Marks{Href: "https://example.com/docs"}},
				Text{Text: "Alpha", Marks: Marks{Wikilink: "Alpha"}},
			}},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	original := sampleDocument()

	data, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !reflect.DeepEqual(original, parsed) {
		t.Errorf("round trip changed the document\noriginal: %#v\nparsed:   %#v", original, parsed)
	}
}

func TestRoundTripTwice(t *testing.T) {
	// Serializing the parsed form must produce identical bytes.
	first, err := Serialize(sampleDocument())
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	parsed, err := Parse(first)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := Serialize(parsed)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("serialized forms differ:\n%s\n%s", first, second)
	}
}

func TestParseWireFormat(t *testing.T) {
	data := `{
		"type": "doc",
		"content": [
			{"type": "paragraph", "content": [
				{"type": "text", "text": "Hello "},
				{"type": "text", "marks": [{"type": "strong"}], "text": "world"},
				{"type": "wikilinknode", "attrs": {"title": "Alpha"}}
			]}
		]
	}`

	parsed, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := &Document{Children: []Block{
		Paragraph{Children: []Inline{
			Text{Text: "Hello "},
			Text{Text: "world", Marks: Marks{Strong: true}},
			Wikilink{Title: "Alpha"},
		}},
	}}
	if !reflect.DeepEqual(parsed, want) {
		t.Errorf("parsed %#v, want %#v", parsed, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath string
	}{
		{
			name:     "unknown block type",
			input:    `{"type":"doc","content":[{"type":"sidebar"}]}`,
			wantPath: "doc.content[0]",
		},
		{
			name:     "unknown inline type",
			input:    `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"emoji"}]}]}`,
			wantPath: "doc.content[0].content[0]",
		},
		{
			name:     "wikilink missing title",
			input:    `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"wikilinknode"}]}]}`,
			wantPath: "doc.content[0].content[0]",
		},
		{
			name:     "heading missing level",
			input:    `{"type":"doc","content":[{"type":"heading","content":[]}]}`,
			wantPath: "doc.content[0]",
		},
		{
			name:     "checkbox missing checked",
			input:    `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"checkbox"}]}]}`,
			wantPath: "doc.content[0].content[0]",
		},
		{
			name:     "unknown mark",
			input:    `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","marks":[{"type":"blink"}],"text":"x"}]}]}`,
			wantPath: "doc.content[0].content[0]",
		},
		{
			name:     "list item wrong type",
			input:    `{"type":"doc","content":[{"type":"bullet_list","content":[{"type":"paragraph"}]}]}`,
			wantPath: "doc.content[0].content[0]",
		},
		{
			name:     "root not a doc",
			input:    `{"type":"paragraph"}`,
			wantPath: "doc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("expected a parse error")
			}
			perr, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
			if perr.Path != tt.wantPath {
				t.Errorf("error path = %q, want %q (err: %v)", perr.Path, tt.wantPath, err)
			}
		})
	}
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"type":"doc",`))
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), "doc") {
		t.Errorf("error should carry the root path: %v", err)
	}
}
