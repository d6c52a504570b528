package ui

import (
	"strings"
	"testing"
)

func TestTableAlignment(t *testing.T) {
	tbl := NewTable(2)
	tbl.AddRow("short", "a")
	tbl.AddRow("a much longer cell", "b")

	out := tbl.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if idx1, idx2 := strings.Index(lines[0], "a"), strings.Index(lines[1], "b"); idx1 == -1 || strings.LastIndex(lines[0], "a") != strings.LastIndex(lines[1], "b") {
		t.Errorf("columns not aligned (%d vs %d):\n%s", idx1, idx2, out)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
	if got := Truncate("hello world", 6); got != "hello…" {
		t.Errorf("Truncate = %q", got)
	}
}
