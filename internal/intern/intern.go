// Package intern assigns stable integer ids to symbol names and string
// keys used across a codebase. All later components (the codebase model,
// the type lattice, the data-flow graph) key their maps on these ids
// instead of raw strings, which keeps hot-path maps comparable by value
// and cheap to hash.
package intern

import "sync"

// ID is a stable integer id for an interned string.
type ID uint32

// Invalid is the zero value; no real interned string is ever assigned it.
const Invalid ID = 0

// Table is a concurrency-safe bidirectional string<->ID table.
//
// A Table is append-only: once an ID is assigned to a string it is never
// reused or reassigned, so IDs obtained before a freeze remain valid
// after it. This mirrors the codebase model's own freeze-once lifecycle
// (see internal/codebase): the interner is built up during scanning and
// read concurrently, never mutated, during analysis.
type Table struct {
	mu      sync.RWMutex
	byText  map[string]ID
	byID    []string // index 0 is unused so the zero ID stays invalid
	frozen  bool
}

// New returns an empty interner table.
func New() *Table {
	return &Table{
		byText: make(map[string]ID, 1024),
		byID:   []string{""},
	}
}

// Intern returns the stable ID for s, allocating one if s has not been
// seen before. Interning after Freeze panics: the codebase is supposed
// to be fully scanned before analysis begins, and a late intern would
// silently desynchronize worker-local copies of the table.
func (t *Table) Intern(s string) ID {
	t.mu.RLock()
	if id, ok := t.byText[s]; ok {
		t.mu.RUnlock()
		return id
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.byText[s]; ok {
		return id
	}
	if t.frozen {
		panic("intern: Intern called on a frozen table: " + s)
	}
	id := ID(len(t.byID))
	t.byID = append(t.byID, s)
	t.byText[s] = id
	return id
}

// Lookup returns the ID previously assigned to s, if any.
func (t *Table) Lookup(s string) (ID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byText[s]
	return id, ok
}

// Text returns the string an ID was assigned to. Panics on an
// out-of-range id, which indicates a bug (an id from a different table,
// or a stale id after a table reset) rather than a recoverable state.
func (t *Table) Text(id ID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.byID) {
		panic("intern: id out of range")
	}
	return t.byID[id]
}

// Freeze marks the table read-only. The codebase build phase calls this
// once scanning is complete and before any analyzer worker starts.
func (t *Table) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}

// Frozen reports whether Freeze has been called.
func (t *Table) Frozen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frozen
}

// Len returns the number of interned strings (excluding the invalid slot).
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID) - 1
}
