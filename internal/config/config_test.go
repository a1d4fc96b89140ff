package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vetta-lang/vetta/internal/issues"
)

func TestLoadParsesYAMLAndFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vetta.yaml")
	body := "roots: [\"src\"]\nignore: [\"vendor/**\"]\nfind_unused_definitions: true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Roots) != 1 || cfg.Roots[0] != "src" {
		t.Fatalf("unexpected roots: %v", cfg.Roots)
	}
	if !cfg.FindUnusedDefinitions {
		t.Fatalf("expected find_unused_definitions true")
	}
	if cfg.CacheDir != ".vetta-cache" {
		t.Fatalf("expected default cache dir, got %q", cfg.CacheDir)
	}
}

func TestSeverityForFallsBackToDefault(t *testing.T) {
	cfg := Default()
	if cfg.SeverityFor(issues.UndefinedVariable) != issues.DefaultSeverity(issues.UndefinedVariable) {
		t.Fatalf("expected fallback to built-in default severity")
	}
	cfg.SeverityOverrides = map[issues.Kind]issues.Severity{issues.UndefinedVariable: issues.SeverityOff}
	if cfg.SeverityFor(issues.UndefinedVariable) != issues.SeverityOff {
		t.Fatalf("expected override to take effect")
	}
}

func TestIsSuppressedMatchesByName(t *testing.T) {
	cfg := Default()
	cfg.Suppress = []string{"UnusedParameter"}
	if !cfg.IsSuppressed(issues.UnusedParameter) {
		t.Fatalf("expected UnusedParameter to be suppressed")
	}
	if cfg.IsSuppressed(issues.UndefinedVariable) {
		t.Fatalf("did not expect UndefinedVariable to be suppressed")
	}
}
