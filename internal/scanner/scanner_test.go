package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestScanFindsFilesAndRespectsIgnore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.fx", "function main(): void {}")
	writeFile(t, dir, "vendor/skip.fx", "function skip(): void {}")

	files, err := Scan(Options{Roots: []string{dir}, Ignore: []string{"vendor/*"}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0].Path) != "a.fx" {
		t.Fatalf("expected only a.fx, got %v", files)
	}
	if !files[0].UserDefined {
		t.Fatalf("expected scanned user files to be UserDefined")
	}
}

func TestScanDetectsSecurityPragma(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "secure.fx", "// security-check\nfunction handle(string $input): void {}")
	writeFile(t, dir, "plain.fx", "function handle(string $input): void {}")

	files, err := Scan(Options{Roots: []string{dir}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	byName := map[string]ScannedFile{}
	for _, f := range files {
		byName[filepath.Base(f.Path)] = f
	}
	if !byName["secure.fx"].SecurityCheck {
		t.Fatalf("expected secure.fx to carry the security-check pragma")
	}
	if byName["plain.fx"].SecurityCheck {
		t.Fatalf("did not expect plain.fx to carry the pragma")
	}
}

func TestScanStubsReadsBothTreesAsNotUserDefined(t *testing.T) {
	files, err := ScanStubs()
	if err != nil {
		t.Fatalf("ScanStubs: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("expected embedded stub files to be found")
	}
	for _, f := range files {
		if f.UserDefined {
			t.Fatalf("expected stub file %s to be UserDefined=false", f.Path)
		}
	}
}

func TestManifestReflectsScannedStamps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.fx", "function main(): void {}")
	files, err := Scan(Options{Roots: []string{dir}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	m := Manifest(files)
	if len(m) != 1 {
		t.Fatalf("expected one manifest entry, got %v", m)
	}
}
