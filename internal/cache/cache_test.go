package cache

import (
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGetRoundTrips(t *testing.T) {
	c := openTestCache(t)
	if err := c.Put(CodebaseKey, []byte("frozen-codebase-bytes")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	value, ok, err := c.Get(CodebaseKey)
	if err != nil || !ok {
		t.Fatalf("Get: value=%v ok=%v err=%v", value, ok, err)
	}
	if string(value) != "frozen-codebase-bytes" {
		t.Fatalf("unexpected value: %s", value)
	}
}

func TestGetMissingKeyReturnsFalse(t *testing.T) {
	c := openTestCache(t)
	_, ok, err := c.Get("nope")
	if err != nil || ok {
		t.Fatalf("expected missing key to return ok=false, err=nil; got ok=%v err=%v", ok, err)
	}
}

func TestPutOverwritesExistingKey(t *testing.T) {
	c := openTestCache(t)
	c.Put(ManifestKey, []byte("v1"))
	c.Put(ManifestKey, []byte("v2"))
	value, _, _ := c.Get(ManifestKey)
	if string(value) != "v2" {
		t.Fatalf("expected overwrite, got %s", value)
	}
}

func TestInvalidateKeepsBuildInfo(t *testing.T) {
	c := openTestCache(t)
	c.Put(BuildInfoKey, []byte("v1"))
	c.Put(CodebaseKey, []byte("stale"))
	if err := c.Invalidate(); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := c.Get(CodebaseKey); ok {
		t.Fatalf("expected codebase row to be dropped")
	}
	if _, ok, _ := c.Get(BuildInfoKey); !ok {
		t.Fatalf("expected buildinfo row to survive invalidation")
	}
}

func TestManifestChangedDetectsAddedModifiedAndDeleted(t *testing.T) {
	old := Manifest{
		"a.fx": {Size: 10, ModTime: 100},
		"b.fx": {Size: 20, ModTime: 200},
	}
	next := Manifest{
		"a.fx": {Size: 10, ModTime: 100},
		"b.fx": {Size: 21, ModTime: 201},
		"c.fx": {Size: 5, ModTime: 50},
	}
	changed, deleted := old.Changed(next)
	if len(changed) != 2 {
		t.Fatalf("expected b.fx and c.fx changed, got %v", changed)
	}
	if len(deleted) != 0 {
		t.Fatalf("expected nothing deleted, got %v", deleted)
	}

	changed, deleted = next.Changed(old)
	if len(changed) != 1 {
		t.Fatalf("expected only b.fx to register as changed going backwards, got %v", changed)
	}
	if len(deleted) != 1 || deleted[0] != "c.fx" {
		t.Fatalf("expected c.fx to be reported deleted, got %v", deleted)
	}
}

func TestManifestRoundTripsThroughCache(t *testing.T) {
	c := openTestCache(t)
	m := Manifest{"a.fx": {Size: 1, ModTime: 2}}
	if err := c.SaveManifest(m); err != nil {
		t.Fatalf("SaveManifest: %v", err)
	}
	loaded, err := c.LoadManifest()
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if loaded["a.fx"] != m["a.fx"] {
		t.Fatalf("unexpected round-tripped manifest: %v", loaded)
	}
}

func TestLoadManifestOnEmptyCacheReturnsEmpty(t *testing.T) {
	c := openTestCache(t)
	m, err := c.LoadManifest()
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty manifest, got %v", m)
	}
}
