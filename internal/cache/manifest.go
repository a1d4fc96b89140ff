package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// FileStamp is one entry in the manifest: the size and modification
// time vetta last saw for a scanned file, used to decide whether its
// cached AST/type info is still valid without re-parsing.
type FileStamp struct {
	Size    int64
	ModTime int64 // unix nanoseconds
}

// Manifest maps scanned file path to the stamp recorded at last scan.
type Manifest map[string]FileStamp

// LoadManifest reads the manifest row, returning an empty Manifest if
// none has been stored yet.
func (c *Cache) LoadManifest() (Manifest, error) {
	data, ok, err := c.Get(ManifestKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return make(Manifest), nil
	}
	var m Manifest
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, fmt.Errorf("cache: decoding manifest: %w", err)
	}
	return m, nil
}

// SaveManifest persists m under the manifest row.
func (c *Cache) SaveManifest(m Manifest) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("cache: encoding manifest: %w", err)
	}
	return c.Put(ManifestKey, buf.Bytes())
}

// Changed reports which paths in candidate are new or have a different
// stamp than what's recorded in m, and which previously-recorded paths
// are now absent from candidate (deleted files).
func (m Manifest) Changed(candidate Manifest) (changed, deleted []string) {
	for path, stamp := range candidate {
		if old, ok := m[path]; !ok || old != stamp {
			changed = append(changed, path)
		}
	}
	for path := range m {
		if _, ok := candidate[path]; !ok {
			deleted = append(deleted, path)
		}
	}
	return changed, deleted
}
