// Package cache persists the on-disk analyzer cache directory of
// spec.md §6 as a single SQLite database rather than loose files: a
// `buildinfo` row doubles as the schema/build-checksum guard, a
// `manifest` row holds the path->size/mtime table, a `codebase` row
// holds the frozen interned codebase, and `ast/<hash>` rows cache
// parsed-AST blobs keyed by source content hash.
//
// Grounded on the teacher's pattern of persisting derived build
// artifacts (its compiled-module cache), generalized from loose files
// into a single durable store. Library: modernc.org/sqlite (teacher
// direct dep), driven through database/sql the way any modernc.org/
// sqlite consumer does.
package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS blobs (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);
`

// Cache wraps a single cache.db SQLite file as a flat key/blob store.
type Cache struct {
	db *sql.DB
}

// ManifestKey, CodebaseKey, and BuildInfoKey are the three well-known
// singleton rows; AST blobs use ASTKey(hash).
const (
	ManifestKey  = "manifest"
	CodebaseKey  = "codebase"
	BuildInfoKey = "buildinfo"
)

// ASTKey builds the row key for a parsed-AST blob cached under a source
// content hash.
func ASTKey(contentHash string) string { return "ast/" + contentHash }

// Open opens (creating if necessary) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: schema init: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Put stores value under key, overwriting any prior value.
func (c *Cache) Put(key string, value []byte) error {
	_, err := c.db.Exec(`INSERT INTO blobs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("cache: put %s: %w", key, err)
	}
	return nil
}

// Get retrieves the value stored under key, if any.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := c.db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	return value, true, nil
}

// Delete removes key if present; deleting a missing key is a no-op.
func (c *Cache) Delete(key string) error {
	_, err := c.db.Exec(`DELETE FROM blobs WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("cache: delete %s: %w", key, err)
	}
	return nil
}

// Invalidate drops every row except buildinfo, used when the schema
// checksum in buildinfo no longer matches the running binary's.
func (c *Cache) Invalidate() error {
	_, err := c.db.Exec(`DELETE FROM blobs WHERE key != ?`, BuildInfoKey)
	if err != nil {
		return fmt.Errorf("cache: invalidate: %w", err)
	}
	return nil
}
