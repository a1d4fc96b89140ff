package types

import "testing"

func TestContainmentReflexive(t *testing.T) {
	u := Single(TInt{})
	if !IsContainedBy(u, u, false, nil).Result {
		t.Fatalf("containment should be reflexive")
	}
}

func TestContainmentTransitive(t *testing.T) {
	resolver := fakeResolver{ancestry: map[string]string{"C": "B", "B": "A"}}
	a := Single(TNamedObject{Name: "A"})
	b := Single(TNamedObject{Name: "B"})
	c := Single(TNamedObject{Name: "C"})
	if !IsContainedBy(b, c, false, resolver).Result {
		t.Fatalf("expected B to contain C")
	}
	if !IsContainedBy(a, b, false, resolver).Result {
		t.Fatalf("expected A to contain B")
	}
	if !IsContainedBy(a, c, false, resolver).Result {
		t.Fatalf("expected A to contain C transitively")
	}
}

func TestContainmentNothingContainedByEverything(t *testing.T) {
	if !IsContainedBy(Single(TString{}), NewUnion(), false, nil).Result {
		t.Fatalf("Nothing should be contained by anything")
	}
}

func TestContainmentLiteralByGeneral(t *testing.T) {
	if !IsContainedBy(Single(TInt{}), Single(TLiteralInt{Value: 42}), false, nil).Result {
		t.Fatalf("literal int should be contained by int")
	}
}

func TestCanBeIdentical(t *testing.T) {
	a := NewUnion(TInt{}, TString{})
	b := NewUnion(TString{}, TBool{})
	if !CanBeIdentical(a, b, nil) {
		t.Fatalf("int|string and string|bool should be able to be identical")
	}
	c := NewUnion(TInt{})
	d := NewUnion(TString{})
	if CanBeIdentical(c, d, nil) {
		t.Fatalf("int and string should never be identical")
	}
}
