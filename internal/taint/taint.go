// Package taint runs the whole-program taint-analysis pass over a
// dataflow.Graph: a forward traversal from every Source node, computing
// at each edge `(incoming ∪ added) \ removed`, reporting a finding
// whenever a Sink node is reached while still carrying a label the sink
// forbids (spec.md §4.6's closing pass, §2 pipeline's final stage).
//
// Grounded on other_examples/d89a4c39_google-go-flow-levee__internal-
// pkg-earpointer-taint.go.go for the source-to-sink graph-traversal
// shape (a worklist over graph edges with a visited set keyed by node
// identity), and on _examples/hatlesswizard-inputtracer (a full pack
// repo, not the teacher) for the taint-label vocabulary and
// source/sink registry idiom — its pkg/sources and pkg/semantic/sink
// packages separate "what can introduce taint" from "what must never
// receive it" the same way Source/Sink nodes do here.
package taint

import (
	"sort"

	"github.com/vetta-lang/vetta/internal/dataflow"
)

// Finding is one confirmed source-to-sink taint flow.
type Finding struct {
	Source dataflow.NodeId
	Sink   dataflow.NodeId
	Label  string
	Path   []dataflow.NodeId
}

type frame struct {
	node   dataflow.NodeId
	labels map[string]bool
	path   []dataflow.NodeId
	// arrayKey is the ArrayKey of the ArrayAssignment edge this frame's
	// labels most recently entered an array aggregate node through, or
	// nil if the frame did not just cross one. It gates which outgoing
	// ArrayFetch(k) edges the labels may continue through: only a fetch
	// for the same key, or an unknown-index fetch, may carry them
	// onward. Any other edge kind clears it, since the value has left
	// the array.
	arrayKey *string
}

// Run traverses g forward from every Source node and returns every
// confirmed flow into a Sink still carrying one of its forbidden
// labels. The seen set dedups (node, label set, array-key tag) triples
// so a diamond in the graph is only ever expanded once per distinct
// label set reaching it,
// bounding the traversal on graphs with merge points.
func Run(g *dataflow.Graph) []Finding {
	var findings []Finding
	seen := make(map[string]bool)

	var sources []*dataflow.Node
	for _, n := range g.Nodes() {
		if n.Kind == dataflow.KindSource {
			sources = append(sources, n)
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].ID.String() < sources[j].ID.String() })

	for _, src := range sources {
		labels := make(map[string]bool, len(src.Labels))
		for l := range src.Labels {
			labels[l] = true
		}
		queue := []frame{{node: src.ID, labels: labels, path: []dataflow.NodeId{src.ID}}}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			if len(cur.labels) == 0 {
				continue
			}
			arrayKeyTag := ""
			if cur.arrayKey != nil {
				arrayKeyTag = "@" + *cur.arrayKey
			}
			key := cur.node.String() + "|" + labelKey(cur.labels) + arrayKeyTag
			if seen[key] {
				continue
			}
			seen[key] = true

			if node, ok := g.Node(cur.node); ok && node.Kind == dataflow.KindSink {
				for label := range cur.labels {
					if node.Labels[label] {
						findings = append(findings, Finding{
							Source: src.ID,
							Sink:   cur.node,
							Label:  label,
							Path:   append([]dataflow.NodeId{}, cur.path...),
						})
					}
				}
			}

			for next, edge := range g.ForwardEdges(cur.node) {
				if edge.PathKind == dataflow.PathArrayFetch && cur.arrayKey != nil && *cur.arrayKey != edge.ArrayKey {
					continue
				}
				nextLabels := applyEdge(cur.labels, edge)
				if len(nextLabels) == 0 {
					continue
				}
				queue = append(queue, frame{
					node:     next,
					labels:   nextLabels,
					path:     append(append([]dataflow.NodeId{}, cur.path...), next),
					arrayKey: nextArrayKey(edge),
				})
			}
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Sink.String() != findings[j].Sink.String() {
			return findings[i].Sink.String() < findings[j].Sink.String()
		}
		return findings[i].Label < findings[j].Label
	})
	return findings
}

// nextArrayKey reports the ArrayKey a frame should carry forward after
// crossing edge, for the array-key gate in Run's traversal loop: an
// ArrayAssignment(k) edge marks the labels as having just entered an
// array aggregate under key k; any other edge kind clears the marker,
// since the value has left the array by the time it crosses them.
func nextArrayKey(edge *dataflow.Edge) *string {
	if edge.PathKind == dataflow.PathArrayAssignment {
		k := edge.ArrayKey
		return &k
	}
	return nil
}

// applyEdge computes (incoming ∪ added) \ removed for one traversal
// step. It is a pure label-set transform; the ArrayFetch/ArrayAssignment
// key restriction described in spec.md §4.6 is enforced by the caller
// in Run, which gates which edges applyEdge is even called on via each
// frame's arrayKey.
func applyEdge(incoming map[string]bool, edge *dataflow.Edge) map[string]bool {
	out := make(map[string]bool, len(incoming)+len(edge.AddedTaints))
	for l := range incoming {
		if !edge.RemovedTaints[l] {
			out[l] = true
		}
	}
	for l := range edge.AddedTaints {
		out[l] = true
	}
	return out
}

func labelKey(labels map[string]bool) string {
	keys := make([]string, 0, len(labels))
	for l := range labels {
		keys = append(keys, l)
	}
	sort.Strings(keys)
	out := ""
	for _, k := range keys {
		out += k + ","
	}
	return out
}
