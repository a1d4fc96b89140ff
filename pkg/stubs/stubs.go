// Package stubs embeds the two built-in stub trees every analysis run
// scans alongside user code: stdlib/ (free functions) and corelib/
// (the base class hierarchy: Exception, Vector, Map). Both are compiled
// into the binary via go:embed, the way the teacher embeds its own
// prelude in pkg/embed, so vetta runs correctly from a single binary
// with no external stub installation step.
package stubs

import "embed"

//go:embed stdlib
var Stdlib embed.FS

//go:embed corelib
var Corelib embed.FS

// Tree names; scanner.ScanStubs prefixes the path of every
// UserDefined:false file it loads from these trees with them.
const (
	TreeStdlib  = "stdlib"
	TreeCorelib = "corelib"
)
