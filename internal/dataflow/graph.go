// Package dataflow implements the directed graph over which taint
// propagates (spec.md §3 "DataFlowNode"/"DataFlowGraph", §4.6, §9
// "Cyclic data-flow graphs"). Nodes represent values at specific program
// points; edges carry a path kind plus added/removed taint sets.
//
// The graph is represented as maps keyed by NodeId, never by direct
// pointers, so it tolerates the cycles recursion and
// this-before/this-after edges introduce (spec.md §9).
package dataflow

import (
	"fmt"

	"github.com/vetta-lang/vetta/internal/types"
)

// NodeKind discriminates DataFlowNode variants (spec.md §3).
type NodeKind int

const (
	KindSource NodeKind = iota
	KindSink
	KindVariableUse
	KindAssignment
	KindMethodReturn
	KindForThisBefore
	KindForThisAfter
	KindTaint
	KindTaintSink
)

// SourcePos is a lightweight position reference; the analyzer converts
// internal/ast positions to it (Analyzer.pos) so this package stays
// free of an internal/ast dependency (ast depends on nothing downstream
// of it, and dataflow must not depend on ast either, since the analyzer
// sits between them).
type SourcePos struct {
	File   string
	Offset int
}

func (p SourcePos) String() string { return fmt.Sprintf("%s:%d", p.File, p.Offset) }

// NodeId is the deterministic, globally-unique identity of a node:
// (label, optional source position, optional specializing call site).
// Determinism matters because in whole-program mode node ids must be
// collision-free across every worker's graph at merge time (spec.md §5).
type NodeId struct {
	Label         string
	Pos           SourcePos
	HasPos        bool
	Specialization string // "" unless the callee declared specialize_call
}

func (id NodeId) String() string {
	if id.HasPos {
		if id.Specialization != "" {
			return id.Label + "@" + id.Pos.String() + "#" + id.Specialization
		}
		return id.Label + "@" + id.Pos.String()
	}
	return id.Label
}

// Node is a vertex: a value instance at a program point.
type Node struct {
	ID     NodeId
	Kind   NodeKind
	Type   *types.Union // nil for pure control nodes (e.g. ForThisBefore)
	Labels map[string]bool // taint labels carried by Source/Sink/Taint/TaintSink nodes
}

// PathKind restricts which taints an edge propagates (spec.md §4.6).
type PathKind int

const (
	PathDefault PathKind = iota
	PathAggregate
	PathArrayAssignment
	PathArrayFetch
	PathPropertyAssign
	PathPropertyFetch
	PathUnknownArrayAccess
	PathScalar
)

// Edge carries a path kind plus the taint sets it adds/removes.
type Edge struct {
	PathKind     PathKind
	ArrayKey     string // set for ArrayAssignment/ArrayFetch; "" otherwise
	AddedTaints  map[string]bool
	RemovedTaints map[string]bool
}

// GraphKind distinguishes a per-function local graph (discarded with
// its scope) from the shared whole-program graph the taint pass walks.
type GraphKind int

const (
	KindFunctionBody GraphKind = iota
	KindWholeProgram
)

// Graph is the directed, possibly-cyclic data-flow graph.
type Graph struct {
	Kind GraphKind

	nodes        map[NodeId]*Node
	forwardEdges map[NodeId]map[NodeId]*Edge
	backwardEdges map[NodeId]map[NodeId]bool
}

// New returns an empty graph of the given kind.
func New(kind GraphKind) *Graph {
	return &Graph{
		Kind:          kind,
		nodes:         make(map[NodeId]*Node),
		forwardEdges:  make(map[NodeId]map[NodeId]*Edge),
		backwardEdges: make(map[NodeId]map[NodeId]bool),
	}
}

// AddNode inserts or replaces a node. Re-adding a NodeId that is already
// present with the same Kind is a no-op (the existing node, with its
// type and labels, is kept), which lets call sites add a node
// speculatively without checking existence first (the deterministic id
// derivation guarantees re-derivation of the same logical node produces
// the same id).
func (g *Graph) AddNode(n *Node) {
	if existing, ok := g.nodes[n.ID]; ok && existing.Kind == n.Kind {
		return
	}
	g.nodes[n.ID] = n
}

// Node returns the node for id, if present.
func (g *Graph) Node(id NodeId) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// AddEdge adds a directed edge from -> to. Both endpoints must already
// have been added with AddNode.
func (g *Graph) AddEdge(from, to NodeId, edge *Edge) {
	if g.forwardEdges[from] == nil {
		g.forwardEdges[from] = make(map[NodeId]*Edge)
	}
	g.forwardEdges[from][to] = edge
	if g.backwardEdges[to] == nil {
		g.backwardEdges[to] = make(map[NodeId]bool)
	}
	g.backwardEdges[to][from] = true
}

// ForwardEdges returns the outgoing edges of id.
func (g *Graph) ForwardEdges(id NodeId) map[NodeId]*Edge {
	return g.forwardEdges[id]
}

// Predecessors returns the set of node ids with an edge into id.
func (g *Graph) Predecessors(id NodeId) map[NodeId]bool {
	return g.backwardEdges[id]
}

// Nodes returns every node in the graph. Iteration order is not
// meaningful; callers that need determinism sort by NodeId.String().
func (g *Graph) Nodes() map[NodeId]*Node { return g.nodes }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Merge folds other into g, used at the §5 worker-merge barrier. Since
// node ids are deterministic, the same logical node produced by two
// workers collides onto the same id and its edges are unioned rather
// than duplicated.
func (g *Graph) Merge(other *Graph) {
	for id, n := range other.nodes {
		if _, ok := g.nodes[id]; !ok {
			g.nodes[id] = n
		}
	}
	for from, tos := range other.forwardEdges {
		for to, edge := range tos {
			g.AddEdge(from, to, edge)
		}
	}
}
