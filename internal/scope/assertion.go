// Package scope implements the per-function lexical state the
// expression/statement analyzer reads and writes while walking a
// function body: the variable-to-type mapping, the CNF clause set of
// currently-known assertions, and loop/try/branch flags (spec.md §3
// "ScopeContext", §4.3).
package scope

import "github.com/vetta-lang/vetta/internal/types"

// AssertionKind is the closed taxonomy of narrowing predicates
// (spec.md §4.3).
type AssertionKind int

const (
	AssertType AssertionKind = iota
	AssertNotType
	AssertTruthy
	AssertFalsy
	AssertIsIsset
	AssertIsEqualIsset
	AssertHasArrayKey
	AssertHasNonnullEntryForKey
	AssertArrayKeyExists
	AssertHasStringArrayAccess
	AssertHasIntOrStringArrayAccess
	AssertNonEmptyCountable
	AssertHasExactCount
	AssertInArray
	AssertRemoveTaints
	AssertIgnoreTaints
)

// Assertion is a single narrowing predicate attached to a variable at a
// program point. Exactly one of the payload fields is meaningful,
// selected by Kind; Negated flips the predicate (so the negated variant
// does not need its own Kind values — it shares the taxonomy with the
// positive reconciler dispatcher, per spec.md §4.3).
type Assertion struct {
	Kind    AssertionKind
	Negated bool

	Atomic types.Atomic // AssertType / AssertNotType
	Key    types.DictKey // AssertHasArrayKey / AssertHasNonnullEntryForKey
	Count  int           // AssertHasExactCount
	Exact  bool          // AssertNonEmptyCountable
	InSet  *types.Union  // AssertInArray
	VarID  string        // AssertRemoveTaints
	Taints []string       // AssertRemoveTaints
}

func (a Assertion) String() string {
	s := kindName(a.Kind)
	if a.Negated {
		s = "!" + s
	}
	return s
}

func kindName(k AssertionKind) string {
	switch k {
	case AssertType:
		return "type"
	case AssertNotType:
		return "!type"
	case AssertTruthy:
		return "truthy"
	case AssertFalsy:
		return "falsy"
	case AssertIsIsset:
		return "isset"
	case AssertIsEqualIsset:
		return "=isset"
	case AssertHasArrayKey:
		return "has-array-key"
	case AssertHasNonnullEntryForKey:
		return "has-nonnull-entry"
	case AssertArrayKeyExists:
		return "array-key-exists"
	case AssertHasStringArrayAccess:
		return "has-string-array-access"
	case AssertHasIntOrStringArrayAccess:
		return "has-int-or-string-array-access"
	case AssertNonEmptyCountable:
		return "non-empty-countable"
	case AssertHasExactCount:
		return "has-exact-count"
	case AssertInArray:
		return "in-array"
	case AssertRemoveTaints:
		return "remove-taints"
	case AssertIgnoreTaints:
		return "ignore-taints"
	default:
		panic("scope: unhandled AssertionKind")
	}
}

// Negate returns the logical negation of a.
func (a Assertion) Negate() Assertion {
	n := a
	n.Negated = !a.Negated
	return n
}
