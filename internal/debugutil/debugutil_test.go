package debugutil

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerDebugfSuppressedBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, LevelInfo)
	log.Debugf("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected no output at info level, got %q", buf.String())
	}
	log.Infof("always appears")
	if !strings.Contains(buf.String(), "always appears") {
		t.Fatalf("expected info line, got %q", buf.String())
	}
}

func TestLoggerDebugfEmitsAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, LevelDebug)
	log.Debugf("tagged line")
	if !strings.Contains(buf.String(), "tagged line") || !strings.HasPrefix(buf.String(), "[g") {
		t.Fatalf("expected goroutine-tagged debug line, got %q", buf.String())
	}
}

func TestLoggerDumpPrettyPrintsAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, LevelDebug)
	log.Dump("state", struct{ N int }{N: 3})
	if !strings.Contains(buf.String(), "state:") {
		t.Fatalf("expected dump label, got %q", buf.String())
	}
}
