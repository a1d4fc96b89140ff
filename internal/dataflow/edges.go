package dataflow

// Builder offers the node/edge construction helpers the expression
// analyzer calls while walking an AST (spec.md §4.6). It wraps a Graph
// so the analyzer never constructs a NodeId by hand — every helper here
// derives the id deterministically from (label, position, specialization).
type Builder struct {
	G *Graph
}

func NewBuilder(g *Graph) *Builder { return &Builder{G: g} }

func variableID(name string, pos SourcePos) NodeId {
	return NodeId{Label: "$" + name, Pos: pos, HasPos: true}
}

// VariableUse records a read of a variable at pos.
func (b *Builder) VariableUse(name string, pos SourcePos) NodeId {
	id := variableID(name, pos)
	b.G.AddNode(&Node{ID: id, Kind: KindVariableUse})
	return id
}

// Assignment adds an Assignment(v, pos) node with edges from every
// parent node of the assigned expression's type (spec.md §4.6 "v = e").
func (b *Builder) Assignment(name string, pos SourcePos, parents []NodeId) NodeId {
	id := NodeId{Label: "assign:$" + name, Pos: pos, HasPos: true}
	b.G.AddNode(&Node{ID: id, Kind: KindAssignment})
	for _, p := range parents {
		b.G.AddEdge(p, id, &Edge{PathKind: PathDefault})
	}
	return id
}

// ArrayConstruction adds one ArrayAssignment(key) edge per element into
// a composite aggregate node.
func (b *Builder) ArrayConstruction(pos SourcePos, elements map[string]NodeId) NodeId {
	agg := NodeId{Label: "array-literal", Pos: pos, HasPos: true}
	b.G.AddNode(&Node{ID: agg, Kind: KindAssignment})
	for key, elemNode := range elements {
		b.G.AddEdge(elemNode, agg, &Edge{PathKind: PathArrayAssignment, ArrayKey: key})
	}
	return agg
}

// ArrayFetch records a read of container[key]; with a literal key this
// composes with ArrayAssignment(key) to propagate only that element's
// taints. The key restriction itself is enforced by the taint pass's
// traversal, not by the shape of the edges added here.
func (b *Builder) ArrayFetch(containerNode NodeId, key string, pos SourcePos) NodeId {
	id := NodeId{Label: "fetch[" + key + "]", Pos: pos, HasPos: true}
	b.G.AddNode(&Node{ID: id, Kind: KindVariableUse})
	pathKind := PathArrayFetch
	if key == "" {
		pathKind = PathUnknownArrayAccess
	}
	b.G.AddEdge(containerNode, id, &Edge{PathKind: pathKind, ArrayKey: key})
	return id
}

// MethodReturn adds a MethodReturn(method_id, specialization) node. If
// descendants is non-empty (polymorphic dispatch), an edge is added from
// each descendant's own method-return node to this call-site node.
func (b *Builder) MethodReturn(methodID string, specialization string, pos SourcePos, descendantNodes []NodeId) NodeId {
	id := NodeId{Label: "return:" + methodID, Pos: pos, HasPos: true, Specialization: specialization}
	b.G.AddNode(&Node{ID: id, Kind: KindMethodReturn})
	for _, d := range descendantNodes {
		b.G.AddEdge(d, id, &Edge{PathKind: PathDefault})
	}
	return id
}

// ConstructorBracket adds the ThisBefore/ThisAfter node pair bracketing
// a __construct call so object-state taints are modeled as path-local
// mutations (spec.md §4.6).
func (b *Builder) ConstructorBracket(className string, pos SourcePos) (before, after NodeId) {
	before = NodeId{Label: "this-before:" + className, Pos: pos, HasPos: true}
	after = NodeId{Label: "this-after:" + className, Pos: pos, HasPos: true}
	b.G.AddNode(&Node{ID: before, Kind: KindForThisBefore})
	b.G.AddNode(&Node{ID: after, Kind: KindForThisAfter})
	b.G.AddEdge(before, after, &Edge{PathKind: PathDefault})
	return before, after
}

// Source marks id as a taint source carrying the given labels.
func (b *Builder) Source(id NodeId, labels ...string) {
	n, ok := b.G.Node(id)
	if !ok {
		n = &Node{ID: id}
		b.G.AddNode(n)
	}
	n.Kind = KindSource
	n.Labels = toLabelSet(labels)
}

// Sink marks id as a taint sink that must never be reached by the given labels.
func (b *Builder) Sink(id NodeId, labels ...string) {
	n, ok := b.G.Node(id)
	if !ok {
		n = &Node{ID: id}
		b.G.AddNode(n)
	}
	n.Kind = KindSink
	n.Labels = toLabelSet(labels)
}

func toLabelSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}

// TaintEdge adds an edge carrying added/removed taint labels, the form
// library-intrinsic handlers use (e.g. a `preg_replace` call removing
// the labels it has proven it sanitizes).
func (b *Builder) TaintEdge(from, to NodeId, added, removed []string) {
	b.G.AddEdge(from, to, &Edge{
		PathKind:      PathDefault,
		AddedTaints:   toLabelSet(added),
		RemovedTaints: toLabelSet(removed),
	})
}
