package classdef

import (
	"strings"
	"testing"

	"github.com/sgracey/lattice/internal/store"
)

const sampleYAML = `
classes:
  - title: Book
    icon: "📚"
    properties:
      - title: Notes
        type: rich_text
      - title: Finished
        type: boolean
      - title: Shelf
        type: select
        options: [fiction, nonfiction]
  - title: Person
    properties:
      - title: Bio
        type: rich_text
`

func TestParse(t *testing.T) {
	def, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(def.Classes) != 2 || def.Classes[0].Title != "Book" {
		t.Errorf("unexpected definition: %+v", def)
	}
	if def.Classes[0].Properties[2].Options[0] != "fiction" {
		t.Errorf("select options lost: %+v", def.Classes[0].Properties[2])
	}
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name, yaml, wantMsg string
	}{
		{
			name:    "unknown type",
			yaml:    "classes:\n  - title: X\n    properties:\n      - title: P\n        type: blob\n",
			wantMsg: "unknown property type",
		},
		{
			name:    "select without options",
			yaml:    "classes:\n  - title: X\n    properties:\n      - title: P\n        type: select\n",
			wantMsg: "no options",
		},
		{
			name:    "duplicate class",
			yaml:    "classes:\n  - title: X\n  - title: X\n",
			wantMsg: "duplicate class",
		},
		{
			name:    "duplicate property",
			yaml:    "classes:\n  - title: X\n    properties:\n      - {title: P, type: boolean}\n      - {title: P, type: boolean}\n",
			wantMsg: "twice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestApply(t *testing.T) {
	st, err := store.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	def, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	created, err := Apply(st, def)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}

	cls, err := st.GetClassByTitle("Book")
	if err != nil {
		t.Fatalf("Book class missing: %v", err)
	}
	props, _ := st.ListClassProps(cls.ID)
	if len(props) != 3 || props[2].Type != store.PropSelect {
		t.Errorf("unexpected props: %+v", props)
	}

	// Re-applying skips existing classes.
	created, err = Apply(st, def)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if created != 0 {
		t.Errorf("second apply created %d classes", created)
	}
}

func TestDefaultIsValid(t *testing.T) {
	st, err := store.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if _, err := Apply(st, Default()); err != nil {
		t.Errorf("default seed failed to apply: %v", err)
	}
}
