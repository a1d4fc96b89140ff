package taint

import (
	"testing"

	"github.com/vetta-lang/vetta/internal/dataflow"
)

func id(label string) dataflow.NodeId { return dataflow.NodeId{Label: label} }

func TestRunFindsDirectSourceToSinkFlow(t *testing.T) {
	g := dataflow.New(dataflow.KindWholeProgram)
	src := &dataflow.Node{ID: id("src"), Kind: dataflow.KindSource, Labels: map[string]bool{"user-input": true}}
	sink := &dataflow.Node{ID: id("sink"), Kind: dataflow.KindSink, Labels: map[string]bool{"user-input": true}}
	g.AddNode(src)
	g.AddNode(sink)
	g.AddEdge(src.ID, sink.ID, &dataflow.Edge{})

	findings := Run(g)
	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %v", findings)
	}
	if findings[0].Label != "user-input" || findings[0].Source != src.ID || findings[0].Sink != sink.ID {
		t.Fatalf("unexpected finding: %+v", findings[0])
	}
}

func TestRunBlockedByRemovedTaint(t *testing.T) {
	g := dataflow.New(dataflow.KindWholeProgram)
	src := &dataflow.Node{ID: id("src"), Kind: dataflow.KindSource, Labels: map[string]bool{"user-input": true}}
	sanitize := &dataflow.Node{ID: id("sanitize"), Kind: dataflow.KindTaint}
	sink := &dataflow.Node{ID: id("sink"), Kind: dataflow.KindSink, Labels: map[string]bool{"user-input": true}}
	g.AddNode(src)
	g.AddNode(sanitize)
	g.AddNode(sink)
	g.AddEdge(src.ID, sanitize.ID, &dataflow.Edge{})
	g.AddEdge(sanitize.ID, sink.ID, &dataflow.Edge{RemovedTaints: map[string]bool{"user-input": true}})

	findings := Run(g)
	if len(findings) != 0 {
		t.Fatalf("expected sanitized flow to produce no findings, got %v", findings)
	}
}

func TestRunDiamondGraphDoesNotDoubleReport(t *testing.T) {
	g := dataflow.New(dataflow.KindWholeProgram)
	src := &dataflow.Node{ID: id("src"), Kind: dataflow.KindSource, Labels: map[string]bool{"user-input": true}}
	left := &dataflow.Node{ID: id("left"), Kind: dataflow.KindVariableUse}
	right := &dataflow.Node{ID: id("right"), Kind: dataflow.KindVariableUse}
	sink := &dataflow.Node{ID: id("sink"), Kind: dataflow.KindSink, Labels: map[string]bool{"user-input": true}}
	for _, n := range []*dataflow.Node{src, left, right, sink} {
		g.AddNode(n)
	}
	g.AddEdge(src.ID, left.ID, &dataflow.Edge{})
	g.AddEdge(src.ID, right.ID, &dataflow.Edge{})
	g.AddEdge(left.ID, sink.ID, &dataflow.Edge{})
	g.AddEdge(right.ID, sink.ID, &dataflow.Edge{})

	findings := Run(g)
	if len(findings) != 1 {
		t.Fatalf("expected a single deduplicated finding at the merge point, got %v", findings)
	}
}

func TestRunArrayFetchOnlyInheritsMatchingKeysTaint(t *testing.T) {
	g := dataflow.New(dataflow.KindWholeProgram)
	src := &dataflow.Node{ID: id("src"), Kind: dataflow.KindSource, Labels: map[string]bool{"tainted": true}}
	clean := &dataflow.Node{ID: id("clean"), Kind: dataflow.KindVariableUse}
	agg := &dataflow.Node{ID: id("array-literal"), Kind: dataflow.KindAssignment}
	fetchA := &dataflow.Node{ID: id("fetch[a]"), Kind: dataflow.KindVariableUse}
	fetchB := &dataflow.Node{ID: id("fetch[b]"), Kind: dataflow.KindVariableUse}
	sinkA := &dataflow.Node{ID: id("sink-a"), Kind: dataflow.KindSink, Labels: map[string]bool{"tainted": true}}
	sinkB := &dataflow.Node{ID: id("sink-b"), Kind: dataflow.KindSink, Labels: map[string]bool{"tainted": true}}
	for _, n := range []*dataflow.Node{src, clean, agg, fetchA, fetchB, sinkA, sinkB} {
		g.AddNode(n)
	}
	g.AddEdge(src.ID, agg.ID, &dataflow.Edge{PathKind: dataflow.PathArrayAssignment, ArrayKey: "a"})
	g.AddEdge(clean.ID, agg.ID, &dataflow.Edge{PathKind: dataflow.PathArrayAssignment, ArrayKey: "b"})
	g.AddEdge(agg.ID, fetchA.ID, &dataflow.Edge{PathKind: dataflow.PathArrayFetch, ArrayKey: "a"})
	g.AddEdge(agg.ID, fetchB.ID, &dataflow.Edge{PathKind: dataflow.PathArrayFetch, ArrayKey: "b"})
	g.AddEdge(fetchA.ID, sinkA.ID, &dataflow.Edge{})
	g.AddEdge(fetchB.ID, sinkB.ID, &dataflow.Edge{})

	findings := Run(g)
	if len(findings) != 1 {
		t.Fatalf("expected only the \"a\" key fetch to carry taint to a sink, got %v", findings)
	}
	if findings[0].Sink != sinkA.ID {
		t.Fatalf("expected the tainted flow to reach sink-a via fetch[a], got sink %v", findings[0].Sink)
	}
}

func TestRunUnknownArrayAccessInheritsAnyKeysTaint(t *testing.T) {
	g := dataflow.New(dataflow.KindWholeProgram)
	src := &dataflow.Node{ID: id("src"), Kind: dataflow.KindSource, Labels: map[string]bool{"tainted": true}}
	agg := &dataflow.Node{ID: id("array-literal"), Kind: dataflow.KindAssignment}
	fetchUnknown := &dataflow.Node{ID: id("fetch[]"), Kind: dataflow.KindVariableUse}
	sink := &dataflow.Node{ID: id("sink"), Kind: dataflow.KindSink, Labels: map[string]bool{"tainted": true}}
	for _, n := range []*dataflow.Node{src, agg, fetchUnknown, sink} {
		g.AddNode(n)
	}
	g.AddEdge(src.ID, agg.ID, &dataflow.Edge{PathKind: dataflow.PathArrayAssignment, ArrayKey: "a"})
	g.AddEdge(agg.ID, fetchUnknown.ID, &dataflow.Edge{PathKind: dataflow.PathUnknownArrayAccess, ArrayKey: ""})
	g.AddEdge(fetchUnknown.ID, sink.ID, &dataflow.Edge{})

	findings := Run(g)
	if len(findings) != 1 {
		t.Fatalf("expected an unknown-index fetch to still inherit any key's taint, got %v", findings)
	}
}

func TestRunAddsTaintAlongTheWay(t *testing.T) {
	g := dataflow.New(dataflow.KindWholeProgram)
	src := &dataflow.Node{ID: id("src"), Kind: dataflow.KindSource, Labels: map[string]bool{"sql": true}}
	concat := &dataflow.Node{ID: id("concat"), Kind: dataflow.KindAssignment}
	sink := &dataflow.Node{ID: id("sink"), Kind: dataflow.KindSink, Labels: map[string]bool{"sql": true, "xss": true}}
	g.AddNode(src)
	g.AddNode(concat)
	g.AddNode(sink)
	g.AddEdge(src.ID, concat.ID, &dataflow.Edge{})
	g.AddEdge(concat.ID, sink.ID, &dataflow.Edge{AddedTaints: map[string]bool{"xss": true}})

	findings := Run(g)
	if len(findings) != 2 {
		t.Fatalf("expected two findings (sql carried through, xss added), got %v", findings)
	}
	if findings[0].Label >= findings[1].Label {
		t.Fatalf("expected deterministic label-sorted output, got %v then %v", findings[0].Label, findings[1].Label)
	}
}
