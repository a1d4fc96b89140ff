// Package formula converts boolean expressions encountered during
// analysis (the conditions of `if`/`while`/ternary/`&&`/`||`) into CNF
// and simplifies them; the reconciler (internal/reconciler) consumes the
// simplified formula to derive the per-variable truths it narrows with
// (spec.md §4.8).
package formula

import (
	"sort"

	"github.com/vetta-lang/vetta/internal/scope"
)

// Term is a boolean-expression tree built by the expression analyzer
// out of individual variable assertions (spec.md §4.3's Assertion is the
// leaf; `&&`/`||`/`!` are the only connectives a condition can use here,
// matching the source language's conditional grammar).
type Term interface{ isTerm() }

// Leaf is a single variable assertion, the base case.
type Leaf struct {
	VarID     string
	Assertion scope.Assertion
}

// And is a conjunction of terms.
type And struct{ Terms []Term }

// Or is a disjunction of terms.
type Or struct{ Terms []Term }

// Not is a negation.
type Not struct{ Term Term }

func (Leaf) isTerm() {}
func (And) isTerm()  {}
func (Or) isTerm()   {}
func (Not) isTerm()  {}

// ToCNF converts a Term into a set of scope.Clause values. `or` is never
// distributed over `and` (the expensive part of general CNF conversion):
// a disjunction becomes one clause via orClauses, which folds the leaves
// of any nested conjunction into the same disjunction and falls back to
// an empty, no-information clause as soon as a second variable appears,
// mirroring the teacher's constraint solver giving up gracefully
// (internal/analyzer/inference_solver.go's "ambiguous" branch) rather
// than exploding.
func ToCNF(t Term) []*scope.Clause {
	return pushNegations(t, false)
}

func pushNegations(t Term, negated bool) []*scope.Clause {
	switch v := t.(type) {
	case Leaf:
		a := v.Assertion
		if negated {
			a = a.Negate()
		}
		return []*scope.Clause{scope.NewClause(v.VarID, a)}

	case Not:
		return pushNegations(v.Term, !negated)

	case And:
		if negated {
			// De Morgan: !(a && b) == !a || !b
			return []*scope.Clause{orClauses(v.Terms, true)}
		}
		var out []*scope.Clause
		for _, sub := range v.Terms {
			out = append(out, pushNegations(sub, false)...)
		}
		return out

	case Or:
		if negated {
			// De Morgan: !(a || b) == !a && !b
			var out []*scope.Clause
			for _, sub := range v.Terms {
				out = append(out, pushNegations(sub, true)...)
			}
			return out
		}
		return []*scope.Clause{orClauses(v.Terms, false)}

	default:
		panic("formula: unhandled Term")
	}
}

// orClauses flattens a disjunction of (possibly negated) terms into one
// clause, merging same-variable possibilities and bailing out to a
// Generated, empty-possibility "unknown" clause if two different
// variables appear in the same disjunction (cross-variable disjunctions
// cannot be expressed as one single-variable Clause; the reconciler
// treats an empty clause as "no information", which is sound).
func orClauses(terms []Term, negate bool) *scope.Clause {
	out := &scope.Clause{Possibilities: make(map[string][]scope.Assertion), Generated: true}
	varSeen := ""
	ok := true
	var collect func(t Term, neg bool)
	collect = func(t Term, neg bool) {
		switch v := t.(type) {
		case Leaf:
			if varSeen == "" {
				varSeen = v.VarID
			} else if varSeen != v.VarID {
				ok = false
				return
			}
			a := v.Assertion
			if neg {
				a = a.Negate()
			}
			out.Possibilities[v.VarID] = append(out.Possibilities[v.VarID], a)
		case Not:
			collect(v.Term, !neg)
		case And:
			for _, sub := range v.Terms {
				collect(sub, neg)
			}
		case Or:
			for _, sub := range v.Terms {
				collect(sub, neg)
			}
		}
	}
	for _, t := range terms {
		collect(t, negate)
		if !ok {
			return &scope.Clause{Possibilities: map[string][]scope.Assertion{}, Generated: true}
		}
	}
	return out
}

// Simplify removes duplicate clauses (compared by variable and sorted
// assertions), keeping the first occurrence in input order. The
// possibilities within a clause are left as they are.
func Simplify(clauses []*scope.Clause) []*scope.Clause {
	seen := make(map[string]bool)
	var out []*scope.Clause
	for _, c := range clauses {
		key := clauseKey(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func clauseKey(c *scope.Clause) string {
	vars := c.Vars()
	sort.Strings(vars)
	key := ""
	for _, v := range vars {
		key += v + ":"
		assertions := append([]scope.Assertion{}, c.Possibilities[v]...)
		strs := make([]string, len(assertions))
		for i, a := range assertions {
			strs[i] = a.String()
		}
		sort.Strings(strs)
		for _, s := range strs {
			key += s + ","
		}
		key += ";"
	}
	return key
}

// DeriveTruths collapses a simplified clause set into the per-variable
// assertions that hold unconditionally at this program point: a clause
// whose Possibilities map has exactly one variable with exactly one
// assertion is an unconditional truth (a single-variable, single-option
// disjunction is not really a disjunction at all), so the reconciler can
// apply it directly instead of treating it as merely one candidate
// narrowing among several.
func DeriveTruths(clauses []*scope.Clause) map[string][]scope.Assertion {
	truths := make(map[string][]scope.Assertion)
	for _, c := range clauses {
		if len(c.Possibilities) != 1 {
			continue
		}
		for varID, assertions := range c.Possibilities {
			if len(assertions) == 1 {
				truths[varID] = append(truths[varID], assertions[0])
			}
		}
	}
	return truths
}
