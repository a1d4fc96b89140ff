// Package reconciler narrows a variable's Union under an Assertion
// (spec.md §4.3). It must be sound: reconcile(a, u) is always a subset
// of u, and reconcile(a, u) combined with reconcile(¬a, u) always
// type-equals u again — every helper here is written to preserve that
// even when a particular assertion carries no information for a given
// atomic (the safe default is to keep the atomic unchanged rather than
// drop it, since dropping on the positive branch without a matching
// drop on the negated branch breaks the union-recomposition half of the
// contract).
//
// Grounded on original_source/src/analyzer/reconciler/simple_assertion_reconciler.rs:
// the Rust reconciler dispatches reconcile() on a match over the
// asserted TAtomic variant and calls out to per-shape `intersect_*`
// helpers; this package keeps that shape (one dispatcher, one helper
// family per assertion kind) but dispatches on scope.AssertionKind
// instead, since our Assertion already carries the target atomic rather
// than needing to be re-derived from a parsed condition string.
package reconciler

import (
	"github.com/vetta-lang/vetta/internal/ast"
	"github.com/vetta-lang/vetta/internal/issues"
	"github.com/vetta-lang/vetta/internal/scope"
	"github.com/vetta-lang/vetta/internal/types"
)

// Report surfaces an impossibility finding at pos. Callers pass their
// own issue sink (e.g. an Analyzer's addIssue, which applies
// suppression and CallingFunctionlikeID); a nil Report skips the
// impossibility-detection checks entirely.
type Report func(kind issues.Kind, message string, pos ast.Position)

// Reconcile narrows existing under assertion, given a codebase resolver
// for the subtyping checks Intersect/Subtract need. pos and report
// implement spec.md §4.3's impossibility detection for the assertion
// kinds that are supposed to narrow (AssertType/AssertNotType): when
// narrowing empties the acceptable set, report gets a TypeDoesNotContain
// call; when negating removed nothing, a RedundantTypeComparison call.
func Reconcile(assertion scope.Assertion, existing *types.Union, resolver types.Resolver, pos ast.Position, report Report) *types.Union {
	switch assertion.Kind {
	case scope.AssertType:
		if assertion.Negated {
			out := negateType(existing, assertion.Atomic, resolver)
			reportRedundantNegation(existing, out, pos, report)
			return out
		}
		out := reconcileType(existing, assertion.Atomic, resolver)
		reportImpossible(existing, out, pos, report)
		return out

	case scope.AssertNotType:
		if assertion.Negated {
			out := reconcileType(existing, assertion.Atomic, resolver)
			reportImpossible(existing, out, pos, report)
			return out
		}
		out := negateType(existing, assertion.Atomic, resolver)
		reportRedundantNegation(existing, out, pos, report)
		return out

	case scope.AssertTruthy:
		if assertion.Negated {
			return reconcileFalsy(existing, resolver)
		}
		return reconcileTruthy(existing, resolver)

	case scope.AssertFalsy:
		if assertion.Negated {
			return reconcileTruthy(existing, resolver)
		}
		return reconcileFalsy(existing, resolver)

	case scope.AssertIsIsset, scope.AssertIsEqualIsset:
		if assertion.Negated {
			return intersectNull(existing, resolver)
		}
		return subtractNull(existing, resolver)

	case scope.AssertHasArrayKey, scope.AssertArrayKeyExists:
		if assertion.Negated {
			return existing
		}
		return markKeyDefined(existing, assertion.Key, false, resolver)

	case scope.AssertHasNonnullEntryForKey:
		if assertion.Negated {
			return existing
		}
		return markKeyDefined(existing, assertion.Key, true, resolver)

	case scope.AssertHasStringArrayAccess, scope.AssertHasIntOrStringArrayAccess:
		// Containers already carry an element type wide enough to cover
		// string/int-or-string access; there is no narrower atomic shape
		// to reconcile to, so both branches are no-ops (sound: no-op is
		// always a superset of any genuine narrowing).
		return existing

	case scope.AssertNonEmptyCountable:
		if assertion.Negated {
			return existing
		}
		return markNonEmpty(existing, resolver)

	case scope.AssertHasExactCount:
		if assertion.Negated {
			return existing
		}
		return markExactCount(existing, assertion.Count, resolver)

	case scope.AssertInArray:
		if assertion.Negated {
			return types.Subtract(existing, assertion.InSet, resolver)
		}
		return types.Intersect(existing, assertion.InSet, resolver)

	case scope.AssertRemoveTaints, scope.AssertIgnoreTaints:
		// These affect the data-flow graph (internal/taint), not the type
		// lattice; the type itself passes through unreconciled.
		return existing

	default:
		panic("reconciler: unhandled AssertionKind")
	}
}

// reportImpossible reports TypeDoesNotContain when narrowing existing to
// the asserted type emptied the acceptable set. existing already being
// Nothing is not itself newsworthy — that impossibility was already
// reported wherever existing became Nothing in the first place.
func reportImpossible(existing, out *types.Union, pos ast.Position, report Report) {
	if report == nil || existing.IsNothing() {
		return
	}
	if out.IsNothing() {
		report(issues.TypeDoesNotContain, "type "+existing.Key()+" does not contain the asserted type", pos)
	}
}

// reportRedundantNegation reports RedundantTypeComparison when excluding
// the asserted type from existing removed nothing: existing never
// contained it, so the check this assertion came from can never be
// false.
func reportRedundantNegation(existing, out *types.Union, pos ast.Position, report Report) {
	if report == nil || existing.IsNothing() {
		return
	}
	if out.Len() == existing.Len() {
		report(issues.RedundantTypeComparison, "type "+existing.Key()+" never contains the asserted type", pos)
	}
}
