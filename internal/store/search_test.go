package store

import (
	"strings"
	"testing"
)

func TestSearchTitleMatchesFirst(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)

	createNote(t, s, props, cls.ID, "Gardening", bodyWith(t, "tomatoes and beans"))
	createNote(t, s, props, cls.ID, "Journal", bodyWith(t, "spent the day gardening"))

	results, err := s.Search("gardening", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	if results[0].Object.Title != "Gardening" || results[0].PropertyID != 0 {
		t.Errorf("title match should come first: %+v", results[0])
	}
	if results[1].Object.Title != "Journal" || results[1].PropertyID == 0 {
		t.Errorf("content match should follow with its property id: %+v", results[1])
	}
	if !strings.Contains(results[1].Snippet, "[") {
		t.Errorf("content match should carry a highlighted snippet: %q", results[1].Snippet)
	}
	if results[1].PropTitle != "Body" {
		t.Errorf("content match should name its property: %+v", results[1])
	}
}

func TestSearchIndexFollowsEdits(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)

	obj := createNote(t, s, props, cls.ID, "Note", bodyWith(t, "about xylophones"))

	results, err := s.Search("xylophone", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected a hit before the edit, got %+v", results)
	}

	if _, err := s.SaveProperty(obj.ID, props["Body"].ID, bodyWith(t, "about trombones")); err != nil {
		t.Fatalf("failed to save edit: %v", err)
	}

	if results, _ := s.Search("xylophone", 10); len(results) != 0 {
		t.Errorf("stale index row survived the edit: %+v", results)
	}
	if results, _ := s.Search("trombone", 10); len(results) != 1 {
		t.Errorf("edit did not reach the index: %+v", results)
	}
}

func TestSearchIndexFollowsDeletes(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)

	obj := createNote(t, s, props, cls.ID, "Doomed", bodyWith(t, "unmistakable zanzibar"))
	if err := s.DeleteObject(obj.ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if results, _ := s.Search("zanzibar", 10); len(results) != 0 {
		t.Errorf("index rows survived object deletion: %+v", results)
	}
}

func TestBlankContentKeepsIndexRow(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)

	obj := createNote(t, s, props, cls.ID, "Empty", bodyWith(t, ""))
	p := bodyProperty(t, s, obj.ID)

	// One index row per stored rich-text property, blank or not.
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM properties_fts WHERE property_id = ?", p.ID).Scan(&count); err != nil {
		t.Fatalf("failed to count index rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 index row for the blank property, got %d", count)
	}

	// Blanking existing content keeps the row too.
	if _, err := s.SaveProperty(obj.ID, props["Body"].ID, bodyWith(t, "")); err != nil {
		t.Fatalf("failed to save property: %v", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM properties_fts WHERE property_id = ?", p.ID).Scan(&count); err != nil {
		t.Fatalf("failed to count index rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 index row after blanking, got %d", count)
	}
}

func TestSearchPrefixAndStemming(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)

	createNote(t, s, props, cls.ID, "Note", bodyWith(t, "planting seedlings in spring"))

	// Prefix match on a partial word.
	if results, _ := s.Search("seedl", 10); len(results) != 1 {
		t.Errorf("prefix search missed: %+v", results)
	}
	// The porter stemmer matches inflected forms.
	if results, _ := s.Search("planted", 10); len(results) != 1 {
		t.Errorf("stemmed search missed: %+v", results)
	}
}

func TestSearchQuotesHostileInput(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)
	createNote(t, s, props, cls.ID, "Note", bodyWith(t, "ordinary content"))

	// FTS operator syntax in the query must not cause an error.
	for _, q := range []string{`"`, `AND OR NOT`, `a NEAR b`, `col: x`, `(((`} {
		if _, err := s.Search(q, 10); err != nil {
			t.Errorf("query %q errored: %v", q, err)
		}
	}
}

func TestBuildMatchQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  ", ""},
		{"garden", `"garden"*`},
		{"two words", `"two"* "words"*`},
		{`say "hi"`, `"say"* """hi"""*`},
	}
	for _, tt := range tests {
		if got := buildMatchQuery(tt.in); got != tt.want {
			t.Errorf("buildMatchQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSearchRenameKeepsIndexCurrent(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)

	target := createNote(t, s, props, cls.ID, "Winterreise", bodyWith(t, "t"))
	createNote(t, s, props, cls.ID, "Listening Log", bodyWith(t, "heard ", "Winterreise"))

	if _, err := s.RenameObject(target.ID, "Schwanengesang"); err != nil {
		t.Fatalf("failed to rename: %v", err)
	}

	// The referring document's flattened text now contains the new title.
	results, err := s.Search("Schwanengesang", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	var contentHit bool
	for _, r := range results {
		if r.Object.Title == "Listening Log" && r.PropertyID != 0 {
			contentHit = true
		}
	}
	if !contentHit {
		t.Errorf("rename did not refresh the referring index row: %+v", results)
	}
}
