package board

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	b := mustParse(t, "2x3\nA\nB\nC\nC\nB\nA\n")
	rows, cols := b.Dimensions()
	if rows != 2 || cols != 3 {
		t.Fatalf("dimensions = %dx%d, want 2x3", rows, cols)
	}
	if got, want := b.Look("alice"), "2x3\ndown\ndown\ndown\ndown\ndown\ndown"; got != want {
		t.Fatalf("initial board:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseIgnoresBlankLines(t *testing.T) {
	b := mustParse(t, "\n2x2\n\nA\nB\n\nB\nA\n\n")
	if rows, cols := b.Dimensions(); rows != 2 || cols != 2 {
		t.Fatalf("dimensions = %dx%d, want 2x2", rows, cols)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"no dims", "A\nB\n"},
		{"bad dims", "2by2\nA\nB\nB\nA\n"},
		{"non-numeric", "ax2\nA\nB\n"},
		{"too few cards", "2x2\nA\nB\nB\n"},
		{"too many cards", "2x2\nA\nB\nB\nA\nA\n"},
		{"zero dims", "0x0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.text)); err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tc.text)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.txt")
	if err := os.WriteFile(path, []byte(abBoard), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if rows, cols := b.Dimensions(); rows != 2 || cols != 2 {
		t.Fatalf("dimensions = %dx%d, want 2x2", rows, cols)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("ParseFile on a missing file succeeded, want error")
	}
}
