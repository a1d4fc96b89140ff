package formula

import (
	"testing"

	"github.com/vetta-lang/vetta/internal/scope"
	"github.com/vetta-lang/vetta/internal/types"
)

func typeAssertion(a types.Atomic) scope.Assertion {
	return scope.Assertion{Kind: scope.AssertType, Atomic: a}
}

func TestToCNFSingleLeaf(t *testing.T) {
	term := Leaf{VarID: "$x", Assertion: typeAssertion(types.TInt{})}
	clauses := ToCNF(term)
	if len(clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(clauses))
	}
	if len(clauses[0].Possibilities["$x"]) != 1 {
		t.Fatalf("expected one possibility for $x")
	}
}

func TestToCNFConjunctionSplitsClauses(t *testing.T) {
	term := And{Terms: []Term{
		Leaf{VarID: "$x", Assertion: typeAssertion(types.TInt{})},
		Leaf{VarID: "$y", Assertion: typeAssertion(types.TString{})},
	}}
	clauses := ToCNF(term)
	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses for a conjunction, got %d", len(clauses))
	}
}

func TestToCNFNegatedConjunctionIsDisjunction(t *testing.T) {
	term := Not{Term: And{Terms: []Term{
		Leaf{VarID: "$x", Assertion: typeAssertion(types.TInt{})},
		Leaf{VarID: "$x", Assertion: typeAssertion(types.TString{})},
	}}}
	clauses := ToCNF(term)
	if len(clauses) != 1 {
		t.Fatalf("expected De Morgan to fold !(a && b) into one clause, got %d", len(clauses))
	}
	if len(clauses[0].Possibilities["$x"]) != 2 {
		t.Fatalf("expected both negated possibilities preserved")
	}
	for _, a := range clauses[0].Possibilities["$x"] {
		if !a.Negated {
			t.Fatalf("expected possibilities to be negated")
		}
	}
}

func TestToCNFDisjunctionAcrossVariablesIsUnknown(t *testing.T) {
	term := Or{Terms: []Term{
		Leaf{VarID: "$x", Assertion: typeAssertion(types.TInt{})},
		Leaf{VarID: "$y", Assertion: typeAssertion(types.TString{})},
	}}
	clauses := ToCNF(term)
	if len(clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(clauses))
	}
	if len(clauses[0].Possibilities) != 0 {
		t.Fatalf("expected cross-variable disjunction to collapse to no information")
	}
}

func TestSimplifyDropsDuplicates(t *testing.T) {
	c1 := scope.NewClause("$x", typeAssertion(types.TInt{}))
	c2 := scope.NewClause("$x", typeAssertion(types.TInt{}))
	out := Simplify([]*scope.Clause{c1, c2})
	if len(out) != 1 {
		t.Fatalf("expected duplicates collapsed, got %d", len(out))
	}
}

func TestDeriveTruthsOnlySingleOptionClauses(t *testing.T) {
	truth := scope.NewClause("$x", typeAssertion(types.TInt{}))
	ambiguous := &scope.Clause{Possibilities: map[string][]scope.Assertion{
		"$y": {typeAssertion(types.TInt{}), typeAssertion(types.TString{})},
	}}
	truths := DeriveTruths([]*scope.Clause{truth, ambiguous})
	if len(truths["$x"]) != 1 {
		t.Fatalf("expected $x to be derived as a truth")
	}
	if len(truths["$y"]) != 0 {
		t.Fatalf("expected $y (ambiguous) not to be derived as a truth")
	}
}
