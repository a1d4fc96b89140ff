// Package refs tracks symbol-to-symbol references across the whole
// program for two purposes: unused-definition detection and incremental
// cache invalidation (spec.md §4.7 "Symbol reference tracker").
//
// Grounded directly on original_source/src/code_info/symbol_references.rs
// (the (referencing, referenced, in_signature) tuple shape) and
// original_source/src/file_scanner_analyzer/unused_symbols.rs (the
// reachability-from-entry-points sweep), with the sweep's graph-walk
// idiom cross-checked against _examples/param108-go-tools/unused/unused.go
// — Go's own `unused` linter, which performs the same
// reachable-from-roots analysis over a reference graph.
package refs

import "sort"

// Reference is one (referencing, referenced) edge. InSignature marks a
// reference that appears in a declared type signature (a parameter
// type, a return type, an `extends` clause) rather than in a function
// body — signature references participate in incremental invalidation
// even when the referencing function's body hasn't changed.
type Reference struct {
	Referencing string
	Referenced  string
	InSignature bool
}

// Tracker accumulates references for one analysis run.
type Tracker struct {
	refs        []Reference
	referencers map[string]map[string]bool // referenced -> set of referencing
	referenced  map[string]map[string]bool // referencing -> set of referenced
}

func New() *Tracker {
	return &Tracker{
		referencers: make(map[string]map[string]bool),
		referenced:  make(map[string]map[string]bool),
	}
}

// Add records a reference edge.
func (t *Tracker) Add(r Reference) {
	t.refs = append(t.refs, r)
	if t.referencers[r.Referenced] == nil {
		t.referencers[r.Referenced] = make(map[string]bool)
	}
	t.referencers[r.Referenced][r.Referencing] = true
	if t.referenced[r.Referencing] == nil {
		t.referenced[r.Referencing] = make(map[string]bool)
	}
	t.referenced[r.Referencing][r.Referenced] = true
}

// Merge folds other's references into t (worker-pool result merge).
func (t *Tracker) Merge(other *Tracker) {
	for _, r := range other.refs {
		t.Add(r)
	}
}

// ReferencersOf returns every symbol that references symbol, sorted.
func (t *Tracker) ReferencersOf(symbol string) []string {
	return sortedKeys(t.referencers[symbol])
}

// ReferencedBy returns every symbol that symbol itself references, sorted.
func (t *Tracker) ReferencedBy(symbol string) []string {
	return sortedKeys(t.referenced[symbol])
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// UnusedSweepOptions configures which symbols are exempt from the
// unused-definition sweep regardless of reachability.
type UnusedSweepOptions struct {
	// EntryPoints are symbols assumed always reachable (a `main`
	// function, anything annotated as an API entry point).
	EntryPoints []string
	// OverriddenMethods maps "Class::method" to the set of ancestor
	// "AncestorClass::method" keys it overrides; an overriding method is
	// never reported unused on its own — only the whole override chain
	// can be, via the ancestor's own unused check (spec.md supplement:
	// overridden-method "used" propagation from original_source).
	OverriddenMethods map[string][]string
	// TraitUsers maps a trait method's key to classes that pull it in
	// via `use Trait;`; a trait method used by any consuming class
	// counts as used.
	TraitUsers map[string][]string
	// PrivateConstructorWhitelist marks private constructors that exist
	// solely to block direct instantiation (a common static-factory
	// pattern) and should not be flagged even with zero call sites —
	// the one-line whitelist rule supplemented from original_source.
	PrivateConstructorWhitelist map[string]bool
}

// Unused returns every declared symbol in `declared` that is not
// transitively reachable from an entry point, honoring the override,
// trait, and private-constructor exemptions.
func (t *Tracker) Unused(declared []string, opts UnusedSweepOptions) []string {
	reachable := make(map[string]bool)
	var walk func(sym string)
	walk = func(sym string) {
		if reachable[sym] {
			return
		}
		reachable[sym] = true
		for _, referenced := range t.ReferencedBy(sym) {
			walk(referenced)
		}
	}
	for _, ep := range opts.EntryPoints {
		walk(ep)
	}

	// Propagate "used" from an overriding method back up the chain: if
	// any override in the chain is reachable, every ancestor it
	// overrides counts as used too (an abstract base method is "used"
	// by virtue of its concrete override being called polymorphically).
	for method, ancestors := range opts.OverriddenMethods {
		if reachable[method] {
			for _, ancestor := range ancestors {
				reachable[ancestor] = true
			}
		}
	}
	// And down the chain: an overriding method counts as used when any
	// ancestor it overrides is reachable, since a call through the
	// ancestor can dispatch to it.
	for method, ancestors := range opts.OverriddenMethods {
		for _, ancestor := range ancestors {
			if reachable[ancestor] {
				reachable[method] = true
				break
			}
		}
	}
	for traitMethod, users := range opts.TraitUsers {
		for _, user := range users {
			if reachable[user] {
				reachable[traitMethod] = true
				break
			}
		}
	}

	var unused []string
	for _, sym := range declared {
		if reachable[sym] {
			continue
		}
		if opts.PrivateConstructorWhitelist[sym] {
			continue
		}
		// A symbol with at least one referencer but that referencer
		// chain never reaches an entry point is still "referenced" in
		// the strict sense but practically dead; the sweep reports it
		// as unused either way (matches unused_symbols.rs: reachability
		// from roots, not mere in-degree > 0).
		unused = append(unused, sym)
	}
	sort.Strings(unused)
	return unused
}

// InvalidationClosure returns the transitive closure of symbols whose
// cached analysis result must be invalidated when `changed` is edited:
// every symbol that references `changed`, directly or transitively
// through a signature reference (a body-only reference does not force
// the *referencing* symbol's signature-dependent callers to
// re-analyze, but a signature reference does, since the caller's own
// inferred types may depend on it).
func (t *Tracker) InvalidationClosure(changed []string) []string {
	seen := make(map[string]bool)
	var walk func(sym string)
	walk = func(sym string) {
		if seen[sym] {
			return
		}
		seen[sym] = true
		for _, r := range t.refs {
			if r.Referenced == sym && r.InSignature {
				walk(r.Referencing)
			}
		}
	}
	for _, c := range changed {
		seen[c] = true
		for _, r := range t.refs {
			if r.Referenced == c && r.InSignature {
				walk(r.Referencing)
			}
		}
	}
	return sortedKeys(seen)
}
