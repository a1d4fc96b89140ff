package types

import (
	"sort"
	"strings"
)

// NodeRef is an opaque reference to a data-flow node id. The types
// package does not depend on internal/dataflow (that would be a cycle —
// the data-flow graph stores Unions on its nodes); callers set
// ParentNodes with whatever comparable key their NodeId type marshals
// to.
type NodeRef string

// Union is a set of atomics considered as an alternation. The union
// invariant is enforced by construction: NewUnion and every mutator in
// this file route through dedupe-by-key, so two atomics with the same
// Key never coexist.
type Union struct {
	types                  map[string]Atomic
	ParentNodes            map[NodeRef]struct{}
	PossiblyUndefinedFromTry bool
	IgnoreFalsableIssues   bool
	HasMutations           bool
}

// NewUnion builds a Union from a list of atomics, deduping by key. It
// does not run combine()'s absorption rules (Mixed absorption, bool
// unification, ...) — callers that need those semantics should go
// through Combine instead. NewUnion is for constructing a union whose
// atomics are already known to be in canonical, combined form.
func NewUnion(atomics ...Atomic) *Union {
	u := &Union{types: make(map[string]Atomic, len(atomics))}
	for _, a := range atomics {
		u.types[a.Key()] = a
	}
	return u
}

// Single is a convenience constructor for a one-atomic union.
func Single(a Atomic) *Union { return NewUnion(a) }

// Atomics returns the union's atomics in deterministic (key-sorted) order.
func (u *Union) Atomics() []Atomic {
	if u == nil {
		return nil
	}
	keys := make([]string, 0, len(u.types))
	for k := range u.types {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Atomic, len(keys))
	for i, k := range keys {
		out[i] = u.types[k]
	}
	return out
}

// Len returns the number of distinct atomics in the union.
func (u *Union) Len() int {
	if u == nil {
		return 0
	}
	return len(u.types)
}

// Has reports whether the union contains an atomic with the given key.
func (u *Union) Has(key string) bool {
	if u == nil {
		return false
	}
	_, ok := u.types[key]
	return ok
}

// Get returns the atomic stored under key, if any.
func (u *Union) Get(key string) (Atomic, bool) {
	if u == nil {
		return nil, false
	}
	a, ok := u.types[key]
	return a, ok
}

// Single atomic inspection helpers used throughout the reconciler.

// IsSingle reports whether the union has exactly one atomic.
func (u *Union) IsSingle() bool { return u.Len() == 1 }

// SingleAtomic returns the union's only atomic. Panics if the union does
// not have exactly one — callers must check IsSingle first (mirrors the
// teacher's pattern of unchecked single-element accessors guarded by an
// explicit predicate at the call site).
func (u *Union) SingleAtomic() Atomic {
	if !u.IsSingle() {
		panic("types: SingleAtomic called on a non-singleton union")
	}
	for _, a := range u.types {
		return a
	}
	panic("unreachable")
}

// Key returns a canonical string for the whole union: its atomics'
// keys, sorted and joined. Two unions with the same Key are the same
// set of atomics.
func (u *Union) Key() string {
	if u == nil || len(u.types) == 0 {
		return "nothing"
	}
	keys := make([]string, 0, len(u.types))
	for k := range u.types {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}

// String renders the union the way it appears in a signature.
func (u *Union) String() string {
	atoms := u.Atomics()
	if len(atoms) == 0 {
		return "nothing"
	}
	parts := make([]string, len(atoms))
	for i, a := range atoms {
		parts[i] = a.String()
	}
	return strings.Join(parts, "|")
}

// Clone returns a shallow copy of u suitable for copy-on-write
// narrowing: the lattice operations (Combine, reconciler) always return
// fresh unions rather than mutating u in place (see DESIGN NOTES,
// spec.md §9 "shared ownership of unions").
func (u *Union) Clone() *Union {
	if u == nil {
		return NewUnion()
	}
	n := &Union{
		types:                    make(map[string]Atomic, len(u.types)),
		PossiblyUndefinedFromTry: u.PossiblyUndefinedFromTry,
		IgnoreFalsableIssues:     u.IgnoreFalsableIssues,
		HasMutations:             u.HasMutations,
	}
	for k, v := range u.types {
		n.types[k] = v
	}
	if u.ParentNodes != nil {
		n.ParentNodes = make(map[NodeRef]struct{}, len(u.ParentNodes))
		for k := range u.ParentNodes {
			n.ParentNodes[k] = struct{}{}
		}
	}
	return n
}

// WithParentNode returns a copy of u with node added to its parent-node
// set. Used by the expression analyzer to thread data-flow provenance
// through the type of every sub-expression.
func (u *Union) WithParentNode(node NodeRef) *Union {
	n := u.Clone()
	if n.ParentNodes == nil {
		n.ParentNodes = make(map[NodeRef]struct{}, 1)
	}
	n.ParentNodes[node] = struct{}{}
	return n
}

// IsNothing reports whether the union is the bottom type: either truly
// empty, or its only atomic is TNothing.
func (u *Union) IsNothing() bool {
	if u.Len() == 0 {
		return true
	}
	if u.IsSingle() {
		_, ok := u.SingleAtomic().(TNothing)
		return ok
	}
	return false
}

// IsMixed reports whether the union is exactly the top type (ignoring
// refinement flags is the caller's choice — this checks the plain
// TMixed/TMixedAny cases only).
func (u *Union) IsMixed() bool {
	if !u.IsSingle() {
		return false
	}
	switch u.SingleAtomic().(type) {
	case TMixed, TMixedAny:
		return true
	default:
		return false
	}
}

// IsNullable reports whether Null is one of the union's atomics.
func (u *Union) IsNullable() bool {
	_, ok := u.Get((TNull{}).Key())
	return ok
}
