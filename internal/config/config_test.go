package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
database = "/data/kb.db"
listen = "0.0.0.0:8080"

[ui]
accent = "39"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Database != "/data/kb.db" || cfg.Listen != "0.0.0.0:8080" || cfg.UI.Accent != "39" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadFromMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("database = [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	if got := cfg.ListenAddr(); got != "127.0.0.1:5744" {
		t.Errorf("ListenAddr = %q", got)
	}
	if got := cfg.DatabasePath(); !strings.HasSuffix(got, "lattice.db") {
		t.Errorf("DatabasePath = %q", got)
	}

	cfg = &Config{Database: "/tmp/x.db", Listen: ":9000"}
	if cfg.DatabasePath() != "/tmp/x.db" || cfg.ListenAddr() != ":9000" {
		t.Errorf("explicit values should win: %+v", cfg)
	}
}

func TestDefaultPathEnvOverride(t *testing.T) {
	t.Setenv("LATTICE_CONFIG", "/etc/lattice/custom.toml")
	if got := DefaultPath(); got != "/etc/lattice/custom.toml" {
		t.Errorf("DefaultPath = %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	in := &Config{Database: "/data/kb.db", UI: UIConfig{Accent: "#ff8800"}}
	if err := SaveTo(path, in); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	out, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if out.Database != in.Database || out.UI.Accent != in.UI.Accent {
		t.Errorf("round trip mismatch: %+v", out)
	}
	// Empty fields are omitted from the file entirely.
	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "listen") {
		t.Errorf("empty listen should be omitted:\n%s", raw)
	}
}
