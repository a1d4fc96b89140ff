package diagnostics

import (
	"errors"
	"strings"
	"testing"
)

func TestDiagnosticErrorFormatsWithPosition(t *testing.T) {
	err := New(CodeParseFailed, "a.fx", errors.New("unexpected token"))
	err.Line = 12
	got := err.Error()
	if !strings.Contains(got, "a.fx:12") || !strings.Contains(got, "ParseFailed") {
		t.Fatalf("unexpected error string: %s", got)
	}
	if !errors.Is(err, err.Err) {
		t.Fatalf("expected Unwrap to expose the wrapped error")
	}
}

func TestDiagnosticErrorFormatsWithoutPosition(t *testing.T) {
	err := New(CodeConfigInvalid, "", errors.New("missing roots"))
	got := err.Error()
	if !strings.Contains(got, "ConfigInvalid") || strings.Contains(got, ":0:") {
		t.Fatalf("unexpected error string: %s", got)
	}
}
