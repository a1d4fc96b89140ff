package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vetta-lang/vetta/internal/issues"
	"github.com/vetta-lang/vetta/internal/report"
	"github.com/vetta-lang/vetta/internal/scanner"
)

func TestFilterFilesMatchesGlob(t *testing.T) {
	files := []scanner.ScannedFile{
		{Path: "a/foo.fx"},
		{Path: "b/bar.fx"},
		{Path: "c/foo_test.fx"},
	}
	got := filterFiles(files, "foo.fx")
	if len(got) != 1 || got[0].Path != "a/foo.fx" {
		t.Fatalf("expected only a/foo.fx, got %v", got)
	}
}

func TestApplyReplacementsRewritesTargetSpan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.fx")
	original := "function greet(): string {\n  return \"hi\";\n}\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	n, err := applyReplacements(path, []report.Replacement{
		{File: path, Line: 2, Column: 10, EndLine: 2, EndCol: 14, NewText: `"hello"`, Kind: issues.UnrecognizedExpression},
	})
	if err != nil {
		t.Fatalf("applyReplacements: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 replacement applied, got %d", n)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "function greet(): string {\n  return \"hello\";\n}\n"
	if string(got) != want {
		t.Fatalf("got %q, want %q", string(got), want)
	}
}

func TestApplyReplacementsAppliesLastToFirstWithinAFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.fx")
	original := "a b c\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := applyReplacements(path, []report.Replacement{
		{File: path, Line: 1, Column: 1, EndLine: 1, EndCol: 2, NewText: "X"},
		{File: path, Line: 1, Column: 3, EndLine: 1, EndCol: 4, NewText: "Y"},
		{File: path, Line: 1, Column: 5, EndLine: 1, EndCol: 6, NewText: "Z"},
	})
	if err != nil {
		t.Fatalf("applyReplacements: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "X Y Z\n" {
		t.Fatalf("got %q", string(got))
	}
}

func TestApplyReplacementsRejectsOutOfRangePosition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.fx")
	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := applyReplacements(path, []report.Replacement{
		{File: path, Line: 99, Column: 1, EndLine: 99, EndCol: 2, NewText: "X"},
	})
	if err == nil {
		t.Fatalf("expected an error for an out-of-range position")
	}
}
