package issues

import "testing"

func TestTaintKindCapitalizesLabel(t *testing.T) {
	if got := TaintKind("html"); got != "TaintedHtml" {
		t.Fatalf("got %s", got)
	}
	if got := TaintKind("sql"); got != "TaintedSql" {
		t.Fatalf("got %s", got)
	}
}

func TestCategoryOfClassifiesKnownKinds(t *testing.T) {
	if CategoryOf(InvalidArgument) != CategoryType {
		t.Fatalf("expected InvalidArgument to be a type error")
	}
	if CategoryOf(UnusedFunction) != CategoryDeadCode {
		t.Fatalf("expected UnusedFunction to be dead-code")
	}
	if CategoryOf(TaintKind("html")) != CategoryTaint {
		t.Fatalf("expected a taint kind to classify as taint")
	}
}

func TestCollectorSuppressesByFileAndFunction(t *testing.T) {
	c := NewCollector()
	c.Suppress("a.fx", UnusedParameter)
	c.Add(Issue{Kind: UnusedParameter, Position: Position{File: "a.fx"}}, nil)
	c.Add(Issue{Kind: UnusedParameter, Position: Position{File: "b.fx"}}, map[string]bool{"UnusedParameter": true})
	c.Add(Issue{Kind: UnusedParameter, Position: Position{File: "b.fx"}}, nil)
	if len(c.Issues()) != 1 {
		t.Fatalf("expected only the unsuppressed issue to survive, got %d", len(c.Issues()))
	}
}

func TestCollectorMerge(t *testing.T) {
	a := NewCollector()
	a.Add(Issue{Kind: UndefinedVariable}, nil)
	b := NewCollector()
	b.Add(Issue{Kind: NonExistentClass}, nil)
	a.Merge(b)
	if len(a.Issues()) != 2 {
		t.Fatalf("expected merged collector to carry both issues, got %d", len(a.Issues()))
	}
}
