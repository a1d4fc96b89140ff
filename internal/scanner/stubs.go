package scanner

import (
	"io/fs"

	"github.com/vetta-lang/vetta/pkg/stubs"
)

// ScanStubs reads every file out of the embedded stdlib and corelib
// trees, tagging each ScannedFile UserDefined:false so the analyzer can
// suppress user-facing issues (unused-definition, dead-code) that would
// otherwise fire against a stub library function nobody in the scanned
// program happens to call.
func ScanStubs() ([]ScannedFile, error) {
	var out []ScannedFile
	trees := []struct {
		fsys fs.FS
		name string
	}{
		{stubs.Stdlib, stubs.TreeStdlib},
		{stubs.Corelib, stubs.TreeCorelib},
	}
	for _, tree := range trees {
		err := fs.WalkDir(tree.fsys, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			content, readErr := fs.ReadFile(tree.fsys, path)
			if readErr != nil {
				return readErr
			}
			out = append(out, ScannedFile{
				Path:        tree.name + "/" + path,
				Content:     content,
				UserDefined: false,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
