package testutil

import "testing"

func TestParseFixtureSplitsNamedFiles(t *testing.T) {
	archive := []byte("a two-file program\n-- main.fx --\nfunction main(): void {}\n-- helper.fx --\nfunction help(): void {}\n")
	f := ParseFixture(archive)
	if f.Comment == "" {
		t.Fatalf("expected a comment, got none")
	}
	main, ok := f.File("main.fx")
	if !ok || main == "" {
		t.Fatalf("expected main.fx content, got %q ok=%v", main, ok)
	}
	if _, ok := f.File("helper.fx"); !ok {
		t.Fatalf("expected helper.fx to be present")
	}
	if _, ok := f.File("missing.fx"); ok {
		t.Fatalf("did not expect missing.fx to be present")
	}
}
