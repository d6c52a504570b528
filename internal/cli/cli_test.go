package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sgracey/lattice/internal/store"
)

// run executes the CLI against an isolated home directory and database.
func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	return rootCmd.Execute()
}

func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return filepath.Join(home, "kb.db")
}

func TestInitImportExport(t *testing.T) {
	db := setupEnv(t)

	if err := run(t, "init", "--db", db); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	// Two notes, one referencing the other by wikilink.
	src := t.TempDir()
	alpha := filepath.Join(src, "Alpha.md")
	beta := filepath.Join(src, "Beta.md")
	os.WriteFile(alpha, []byte("# Alpha\n\nsee [[Beta]] for more\n"), 0644)
	os.WriteFile(beta, []byte("just content\n"), 0644)

	if err := run(t, "import", "--db", db, alpha, beta); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	st, err := store.Open(db)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	a, err := st.GetObjectByTitle("Alpha")
	if err != nil {
		t.Fatalf("Alpha not imported: %v", err)
	}
	b, err := st.GetObjectByTitle("Beta")
	if err != nil {
		t.Fatalf("Beta not imported: %v", err)
	}

	// The wikilink resolved during import.
	backlinks, err := st.GetBacklinks(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(backlinks) != 1 || backlinks[0].Title != "Alpha" {
		t.Errorf("expected Alpha backlink on Beta, got %+v", backlinks)
	}
	props, err := st.ListProperties(a.ID)
	if err != nil || len(props) != 1 || props[0].Value.Text == nil {
		t.Fatalf("Alpha body missing: %v %+v", err, props)
	}

	out := t.TempDir()
	if err := run(t, "export", "--db", db, out); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	exported, err := os.ReadFile(filepath.Join(out, "alpha.md"))
	if err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	if !strings.Contains(string(exported), "[[Beta]]") {
		t.Errorf("wikilink lost in export:\n%s", exported)
	}
	if !strings.Contains(string(exported), "# Alpha") {
		t.Errorf("title heading missing:\n%s", exported)
	}
}

func TestImportUnknownClass(t *testing.T) {
	db := setupEnv(t)
	if err := run(t, "init", "--db", db); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	src := filepath.Join(t.TempDir(), "x.md")
	os.WriteFile(src, []byte("content\n"), 0644)

	err := run(t, "import", "--db", db, "--class", "Nonexistent", src)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("expected unknown class error, got %v", err)
	}
	importClass = "Note"
}

func TestInitSeedsCustomClasses(t *testing.T) {
	db := setupEnv(t)

	seed := filepath.Join(t.TempDir(), "classes.yaml")
	os.WriteFile(seed, []byte(`
classes:
  - title: Recipe
    icon: "🍲"
    properties:
      - title: Steps
        type: rich_text
      - title: Tried
        type: boolean
`), 0644)

	if err := run(t, "init", "--db", db, "--classes", seed); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	initClassesPath = ""

	st, err := store.Open(db)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if _, err := st.GetClassByTitle("Recipe"); err != nil {
		t.Errorf("Recipe class not seeded: %v", err)
	}
}
