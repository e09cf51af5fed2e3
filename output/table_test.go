package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableRender(t *testing.T) {
	table := NewTable(
		Column{Title: "account"},
		Column{Title: "amount", Align: AlignRight},
	)
	table.AddRow("cash", "100")
	table.AddRow("inventory", "25")

	var buf bytes.Buffer
	if err := table.Render(&buf); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), buf.String())
	}

	want := []string{
		"account    amount",
		"---------  ------",
		"cash          100",
		"inventory      25",
	}
	for i, line := range lines {
		if line != want[i] {
			t.Errorf("line %d = %q, want %q", i, line, want[i])
		}
	}
}

func TestTableWideCharacterAlignment(t *testing.T) {
	table := NewTable(
		Column{Title: "account"},
		Column{Title: "amount", Align: AlignRight},
	)
	table.AddRow("現金", "5000")
	table.AddRow("仮払消費税", "800")

	var buf bytes.Buffer
	if err := table.Render(&buf); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	// 仮払消費税 occupies 10 display cells, so the amount column starts at
	// the same display offset on every row.
	want := []string{
		"account     amount",
		"----------  ------",
		"現金          5000",
		"仮払消費税     800",
	}
	for i, line := range lines {
		if line != want[i] {
			t.Errorf("line %d = %q, want %q", i, line, want[i])
		}
	}
}

func TestTableMissingCells(t *testing.T) {
	table := NewTable(
		Column{Title: "a"},
		Column{Title: "b"},
	)
	table.AddRow("x")

	var buf bytes.Buffer
	if err := table.Render(&buf); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
	if !strings.Contains(buf.String(), "x") {
		t.Errorf("output should contain the cell, got: %q", buf.String())
	}
}
