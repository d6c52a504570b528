package store

import (
	"strings"
	"testing"

	"github.com/sgracey/lattice/internal/apperr"
	"github.com/sgracey/lattice/internal/doc"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// noteClass creates the standard fixture class: a Note with a rich-text Body,
// a boolean Done and a select Status.
func noteClass(t *testing.T, s *Store) (*Class, map[string]ClassProp) {
	t.Helper()
	cls, err := s.CreateClass("Note", "📝", []ClassProp{
		{Title: "Body", Type: PropRichText},
		{Title: "Done", Type: PropBoolean},
		{Title: "Status", Type: PropSelect, SelectOptions: []string{"draft", "final"}},
	})
	if err != nil {
		t.Fatalf("failed to create class: %v", err)
	}
	props, err := s.ListClassProps(cls.ID)
	if err != nil {
		t.Fatalf("failed to list class props: %v", err)
	}
	byTitle := make(map[string]ClassProp, len(props))
	for _, cp := range props {
		byTitle[cp.Title] = cp
	}
	return cls, byTitle
}

// bodyWith builds a serialized document: one paragraph of plain text followed
// by one wikilink per referenced title.
func bodyWith(t *testing.T, text string, refs ...string) Value {
	t.Helper()
	inlines := []doc.Inline{doc.Text{Text: text}}
	for _, ref := range refs {
		inlines = append(inlines, doc.Wikilink{Title: ref})
	}
	d := &doc.Document{Children: []doc.Block{doc.Paragraph{Children: inlines}}}
	raw, err := doc.Serialize(d)
	if err != nil {
		t.Fatalf("failed to serialize fixture document: %v", err)
	}
	s := string(raw)
	return Value{Text: &s}
}

func boolValue(b bool) Value    { return Value{Bool: &b} }
func selectValue(s string) Value { return Value{Select: &s} }

// createNote creates an object of the fixture class with the given body.
func createNote(t *testing.T, s *Store, props map[string]ClassProp, classID int64, title string, body Value) *Object {
	t.Helper()
	obj, err := s.CreateObject(ObjectParams{
		Title:   title,
		ClassID: classID,
		Values: map[int64]Value{
			props["Body"].ID:   body,
			props["Done"].ID:   boolValue(false),
			props["Status"].ID: selectValue("draft"),
		},
	})
	if err != nil {
		t.Fatalf("failed to create object %q: %v", title, err)
	}
	return obj
}

func bodyProperty(t *testing.T, s *Store, objectID int64) Property {
	t.Helper()
	props, err := s.ListProperties(objectID)
	if err != nil {
		t.Fatalf("failed to list properties: %v", err)
	}
	for _, p := range props {
		if p.ClassPropName == "Body" {
			return p
		}
	}
	t.Fatal("object has no Body property")
	return Property{}
}

func TestCreateObjectChecks(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)

	createNote(t, s, props, cls.ID, "Alpha", bodyWith(t, "hello"))

	// Duplicate title.
	_, err := s.CreateObject(ObjectParams{
		Title:   "Alpha",
		ClassID: cls.ID,
		Values: map[int64]Value{
			props["Body"].ID:   bodyWith(t, "again"),
			props["Done"].ID:   boolValue(false),
			props["Status"].ID: selectValue("draft"),
		},
	})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("duplicate title should be rejected, got %v", err)
	}
	if _, ok := err.(*apperr.Error); !ok {
		t.Errorf("expected *apperr.Error, got %T", err)
	}

	// Missing property value.
	_, err = s.CreateObject(ObjectParams{
		Title:   "Beta",
		ClassID: cls.ID,
		Values: map[int64]Value{
			props["Body"].ID: bodyWith(t, "no flags"),
		},
	})
	if err == nil || !strings.Contains(err.Error(), "no value given") {
		t.Errorf("incomplete values should be rejected, got %v", err)
	}

	// Unknown class.
	_, err = s.CreateObject(ObjectParams{Title: "Gamma", ClassID: 999, Values: map[int64]Value{}})
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("unknown class should be rejected, got %v", err)
	}
}

func TestObjectInheritsClassIcon(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)

	obj := createNote(t, s, props, cls.ID, "Plain", bodyWith(t, "x"))
	if obj.IconEmoji != "📝" {
		t.Errorf("object should inherit the class icon, got %q", obj.IconEmoji)
	}

	withIcon, err := s.CreateObject(ObjectParams{
		Title:     "Fancy",
		ClassID:   cls.ID,
		IconEmoji: "🎯",
		Values: map[int64]Value{
			props["Body"].ID:   bodyWith(t, "y"),
			props["Done"].ID:   boolValue(true),
			props["Status"].ID: selectValue("final"),
		},
	})
	if err != nil {
		t.Fatalf("failed to create object: %v", err)
	}
	if withIcon.IconEmoji != "🎯" {
		t.Errorf("explicit icon should win, got %q", withIcon.IconEmoji)
	}
}

func TestSavePropertyTypeChecks(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)
	obj := createNote(t, s, props, cls.ID, "Alpha", bodyWith(t, "hello"))

	// Wrong variant for the declared type.
	if _, err := s.SaveProperty(obj.ID, props["Done"].ID, selectValue("draft")); err == nil {
		t.Error("boolean property should reject a select value")
	}

	// Select value outside the declared options.
	if _, err := s.SaveProperty(obj.ID, props["Status"].ID, selectValue("bogus")); err == nil {
		t.Error("select property should reject an undeclared option")
	}

	// Malformed rich-text payload.
	bad := `{"type":"doc","content":[{"type":"nonsense"}]}`
	if _, err := s.SaveProperty(obj.ID, props["Body"].ID, Value{Text: &bad}); err == nil {
		t.Error("malformed document should be rejected")
	}

	// A good save still works afterwards; nothing was committed by the
	// failed attempts.
	if _, err := s.SaveProperty(obj.ID, props["Status"].ID, selectValue("final")); err != nil {
		t.Errorf("valid save failed: %v", err)
	}
}

func TestResaveStoredRichText(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)
	obj := createNote(t, s, props, cls.ID, "Alpha", bodyWith(t, "hello"))

	// A wikilink whose display text is a URL. The stored form must stay
	// valid, so handing it straight back to SaveProperty succeeds.
	d := &doc.Document{Children: []doc.Block{doc.Paragraph{Children: []doc.Inline{
		doc.Text{Text: "http://example.com", Marks: doc.Marks{Wikilink: "Target"}},
	}}}}
	raw, err := doc.Serialize(d)
	if err != nil {
		t.Fatalf("failed to serialize fixture document: %v", err)
	}
	v := string(raw)
	if _, err := s.SaveProperty(obj.ID, props["Body"].ID, Value{Text: &v}); err != nil {
		t.Fatalf("failed to save property: %v", err)
	}

	stored := bodyProperty(t, s, obj.ID)
	if _, err := s.SaveProperty(obj.ID, props["Body"].ID, Value{Text: stored.Value.Text}); err != nil {
		t.Errorf("re-saving the stored value failed: %v", err)
	}
}

func TestPropertyChangeLog(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)
	obj := createNote(t, s, props, cls.ID, "Alpha", bodyWith(t, "v1"))

	p := bodyProperty(t, s, obj.ID)
	if _, err := s.SaveProperty(obj.ID, props["Body"].ID, bodyWith(t, "v2")); err != nil {
		t.Fatalf("failed to save property: %v", err)
	}
	if _, err := s.SaveProperty(obj.ID, props["Body"].ID, bodyWith(t, "v3")); err != nil {
		t.Fatalf("failed to save property: %v", err)
	}

	changes, err := s.ListChanges(p.ID)
	if err != nil {
		t.Fatalf("failed to list changes: %v", err)
	}
	if len(changes) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(changes))
	}
	// Newest first.
	if !strings.Contains(*changes[0].Value.Text, "v3") || !strings.Contains(*changes[2].Value.Text, "v1") {
		t.Errorf("change log out of order: %q ... %q", *changes[0].Value.Text, *changes[2].Value.Text)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	cls, props := noteClass(t, s)
	createNote(t, s, props, cls.ID, "Alpha", bodyWith(t, "x", "Ghost"))

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("failed to read stats: %v", err)
	}
	if stats.Objects != 1 || stats.Classes != 1 || stats.Properties != 3 || stats.DanglingLinks != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
