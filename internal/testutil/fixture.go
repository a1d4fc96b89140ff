// Package testutil loads multi-file analyzer test fixtures from txtar
// archives: a single file holding several named source files
// concatenated behind "-- name --" markers, letting a test express "a
// whole small program" without one file per source on disk.
//
// Grounded on the teacher's own golang.org/x/tools dependency
// (retrieved there for go/packages-based FFI binding generation, not
// applicable to this domain) re-pointed at its txtar subpackage, a
// natural fit for bundling small multi-file codebases as analyzer test
// input the way golang.org/x/tools' own analysis passes test themselves.
package testutil

import (
	"fmt"

	"golang.org/x/tools/txtar"
)

// Fixture is one parsed txtar archive: a name->content map plus any
// free-form comment text preceding the first file marker (used for a
// one-line description of what the fixture exercises).
type Fixture struct {
	Comment string
	Files   map[string]string
}

// ParseFixture parses archive data in txtar format.
func ParseFixture(data []byte) *Fixture {
	arc := txtar.Parse(data)
	f := &Fixture{
		Comment: string(arc.Comment),
		Files:   make(map[string]string, len(arc.Files)),
	}
	for _, file := range arc.Files {
		f.Files[file.Name] = string(file.Data)
	}
	return f
}

// ParseFixtureFile reads and parses a txtar fixture from disk.
func ParseFixtureFile(path string) (*Fixture, error) {
	arc, err := txtar.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("testutil: reading fixture %s: %w", path, err)
	}
	f := &Fixture{
		Comment: string(arc.Comment),
		Files:   make(map[string]string, len(arc.Files)),
	}
	for _, file := range arc.Files {
		f.Files[file.Name] = string(file.Data)
	}
	return f, nil
}

// File returns a single named file's content, for fixtures that expect
// exactly one.
func (f *Fixture) File(name string) (string, bool) {
	content, ok := f.Files[name]
	return content, ok
}
