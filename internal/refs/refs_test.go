package refs

import "testing"

func TestUnusedReportsUnreachableSymbols(t *testing.T) {
	tr := New()
	tr.Add(Reference{Referencing: "main", Referenced: "helper"})
	declared := []string{"main", "helper", "deadFunction"}
	unused := tr.Unused(declared, UnusedSweepOptions{EntryPoints: []string{"main"}})
	if len(unused) != 1 || unused[0] != "deadFunction" {
		t.Fatalf("expected only deadFunction to be unused, got %v", unused)
	}
}

func TestUnusedHonorsOverriddenMethodPropagation(t *testing.T) {
	tr := New()
	tr.Add(Reference{Referencing: "main", Referenced: "Dog::speak"})
	declared := []string{"main", "Dog::speak", "Animal::speak"}
	unused := tr.Unused(declared, UnusedSweepOptions{
		EntryPoints:       []string{"main"},
		OverriddenMethods: map[string][]string{"Dog::speak": {"Animal::speak"}},
	})
	if len(unused) != 0 {
		t.Fatalf("expected override propagation to mark Animal::speak used, got %v", unused)
	}
}

func TestUnusedHonorsPrivateConstructorWhitelist(t *testing.T) {
	tr := New()
	declared := []string{"Singleton::__construct"}
	unused := tr.Unused(declared, UnusedSweepOptions{
		PrivateConstructorWhitelist: map[string]bool{"Singleton::__construct": true},
	})
	if len(unused) != 0 {
		t.Fatalf("expected whitelisted constructor to be exempt, got %v", unused)
	}
}

func TestInvalidationClosureFollowsSignatureReferencesOnly(t *testing.T) {
	tr := New()
	tr.Add(Reference{Referencing: "caller", Referenced: "changed", InSignature: true})
	tr.Add(Reference{Referencing: "bodyOnlyCaller", Referenced: "changed", InSignature: false})
	closure := tr.InvalidationClosure([]string{"changed"})
	hasCaller := false
	hasBodyOnly := false
	for _, s := range closure {
		if s == "caller" {
			hasCaller = true
		}
		if s == "bodyOnlyCaller" {
			hasBodyOnly = true
		}
	}
	if !hasCaller {
		t.Fatalf("expected signature-referencing caller to be invalidated")
	}
	if hasBodyOnly {
		t.Fatalf("did not expect body-only caller to be invalidated")
	}
}
