package reconciler

import (
	"testing"

	"github.com/vetta-lang/vetta/internal/ast"
	"github.com/vetta-lang/vetta/internal/issues"
	"github.com/vetta-lang/vetta/internal/scope"
	"github.com/vetta-lang/vetta/internal/types"
)

type fakeResolver struct{}

func (fakeResolver) IsDescendantOf(child, parent string) bool { return child == parent }

func TestReconcileTypeNarrowsToAsserted(t *testing.T) {
	existing := types.NewUnion(types.TInt{}, types.TString{})
	a := scope.Assertion{Kind: scope.AssertType, Atomic: types.TInt{}}
	got := Reconcile(a, existing, fakeResolver{}, ast.Position{}, nil)
	if got.Key() != types.NewUnion(types.TInt{}).Key() {
		t.Fatalf("expected int, got %s", got.Key())
	}
}

func TestReconcileNotTypeRemovesAsserted(t *testing.T) {
	existing := types.NewUnion(types.TInt{}, types.TString{})
	a := scope.Assertion{Kind: scope.AssertNotType, Atomic: types.TInt{}}
	got := Reconcile(a, existing, fakeResolver{}, ast.Position{}, nil)
	if got.Key() != types.NewUnion(types.TString{}).Key() {
		t.Fatalf("expected string, got %s", got.Key())
	}
}

func TestReconcileSoundnessUnionRecomposes(t *testing.T) {
	existing := types.NewUnion(types.TInt{}, types.TString{}, types.TNull{})
	pos := scope.Assertion{Kind: scope.AssertIsIsset}
	neg := pos.Negate()

	isset := Reconcile(pos, existing, fakeResolver{}, ast.Position{}, nil)
	notIsset := Reconcile(neg, existing, fakeResolver{}, ast.Position{}, nil)

	recomposed := types.CombineUnion(append(append([]types.Atomic{}, isset.Atomics()...), notIsset.Atomics()...), false, fakeResolver{})
	// Combining applies the scalar ladder, so compare against the
	// combined (canonical) form of the original union.
	want := types.CombineUnion(existing.Atomics(), false, fakeResolver{})
	if recomposed.Key() != want.Key() {
		t.Fatalf("reconcile(a) U reconcile(!a) should recompose to original type, got %s want %s", recomposed.Key(), want.Key())
	}
}

func TestReconcileTruthyFalsyPartitionBool(t *testing.T) {
	existing := types.NewUnion(types.TBool{})
	truthy := Reconcile(scope.Assertion{Kind: scope.AssertTruthy}, existing, fakeResolver{}, ast.Position{}, nil)
	falsy := Reconcile(scope.Assertion{Kind: scope.AssertFalsy}, existing, fakeResolver{}, ast.Position{}, nil)
	if truthy.Key() != types.NewUnion(types.TTrue{}).Key() {
		t.Fatalf("expected true, got %s", truthy.Key())
	}
	if falsy.Key() != types.NewUnion(types.TFalse{}).Key() {
		t.Fatalf("expected false, got %s", falsy.Key())
	}
}

func TestReconcileHasNonnullEntryForKeyClearsUndefinedAndNull(t *testing.T) {
	key := types.DictKey{Kind: types.DictKeyString, StringVal: "name"}
	existing := types.NewUnion(types.TDict{
		KnownItems: map[types.DictKey]types.KnownItem{
			key: {PossiblyUndefined: true, Type: types.NewUnion(types.TString{}, types.TNull{})},
		},
	})
	a := scope.Assertion{Kind: scope.AssertHasNonnullEntryForKey, Key: key}
	got := Reconcile(a, existing, fakeResolver{}, ast.Position{}, nil)
	d, ok := got.SingleAtomic().(types.TDict)
	if !ok {
		t.Fatalf("expected single TDict, got %s", got.Key())
	}
	item := d.KnownItems[key]
	if item.PossiblyUndefined {
		t.Fatalf("expected key to no longer be possibly undefined")
	}
	if item.Type.IsNullable() {
		t.Fatalf("expected null subtracted from entry type")
	}
}

func TestReconcileHasNonnullEntryForKeyIntroducesKnownItemFromValueParam(t *testing.T) {
	key := types.DictKey{Kind: types.DictKeyString, StringVal: "k"}
	existing := types.NewUnion(types.TDict{
		KeyParam:   types.NewUnion(types.TString{}),
		ValueParam: types.NewUnion(types.TInt{}, types.TNull{}),
	})
	a := scope.Assertion{Kind: scope.AssertHasNonnullEntryForKey, Key: key}
	got := Reconcile(a, existing, fakeResolver{}, ast.Position{}, nil)
	d, ok := got.SingleAtomic().(types.TDict)
	if !ok {
		t.Fatalf("expected single TDict, got %s", got.Key())
	}
	item, ok := d.KnownItems[key]
	if !ok {
		t.Fatalf("expected a known item for %q to be introduced from the dict's general value param", key.StringVal)
	}
	if item.PossiblyUndefined {
		t.Fatalf("expected introduced key to not be possibly undefined")
	}
	if item.Type.Key() != types.NewUnion(types.TInt{}).Key() {
		t.Fatalf("expected introduced key's type to be int with null subtracted, got %s", item.Type.Key())
	}
}

func TestReconcileTypeReportsTypeDoesNotContainWhenNarrowingEmptiesSet(t *testing.T) {
	existing := types.NewUnion(types.TNamedObject{Name: "Foo"})
	a := scope.Assertion{Kind: scope.AssertType, Atomic: types.TNamedObject{Name: "Bar"}}

	var reported []string
	var gotKind issues.Kind
	got := Reconcile(a, existing, fakeResolver{}, ast.Position{Line: 7}, func(kind issues.Kind, message string, pos ast.Position) {
		gotKind = kind
		reported = append(reported, message)
		if pos.Line != 7 {
			t.Fatalf("expected the condition's position to be passed through, got line %d", pos.Line)
		}
	})
	if !got.IsNothing() {
		t.Fatalf("expected Foo instanceof Bar to narrow to nothing, got %s", got.Key())
	}
	if len(reported) != 1 {
		t.Fatalf("expected exactly one impossibility report, got %v", reported)
	}
	if gotKind != issues.TypeDoesNotContain {
		t.Fatalf("expected a TypeDoesNotContain report, got %s", gotKind)
	}
}

func TestReconcileNotTypeReportsRedundantComparisonWhenNothingRemoved(t *testing.T) {
	existing := types.NewUnion(types.TInt{})
	a := scope.Assertion{Kind: scope.AssertNotType, Atomic: types.TString{}}

	var gotKind issues.Kind
	got := Reconcile(a, existing, fakeResolver{}, ast.Position{}, func(kind issues.Kind, message string, pos ast.Position) {
		gotKind = kind
	})
	if got.Key() != existing.Key() {
		t.Fatalf("expected int to be unaffected by excluding string, got %s", got.Key())
	}
	if gotKind != issues.RedundantTypeComparison {
		t.Fatalf("expected a RedundantTypeComparison report, got %s", gotKind)
	}
}

func TestReconcileInArrayIntersects(t *testing.T) {
	existing := types.NewUnion(types.TLiteralInt{Value: 1}, types.TLiteralInt{Value: 2}, types.TLiteralInt{Value: 3})
	inSet := types.NewUnion(types.TLiteralInt{Value: 2}, types.TLiteralInt{Value: 3})
	a := scope.Assertion{Kind: scope.AssertInArray, InSet: inSet}
	got := Reconcile(a, existing, fakeResolver{}, ast.Position{}, nil)
	if got.Len() != 2 {
		t.Fatalf("expected 2 atomics after intersecting with in-array set, got %d: %s", got.Len(), got.Key())
	}
}
