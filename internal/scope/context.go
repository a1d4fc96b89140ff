package scope

import "github.com/vetta-lang/vetta/internal/types"

// SharedUnion is a reference-counted handle to a Union shared among
// many scope entries (spec.md §9 "Shared ownership of unions": function
// signatures are read by every call site, so the entry a variable
// points to is shared until narrowing needs to copy-on-write it).
type SharedUnion struct {
	u *types.Union
}

func NewSharedUnion(u *types.Union) *SharedUnion { return &SharedUnion{u: u} }

// Get returns the shared union. Callers must not mutate the returned
// value — go through Narrow (copy-on-write) instead.
func (s *SharedUnion) Get() *types.Union { return s.u }

// Narrow returns a new SharedUnion wrapping a freshly computed union;
// it never mutates s, so other scope entries still pointing at the old
// SharedUnion are unaffected.
func (s *SharedUnion) Narrow(next *types.Union) *SharedUnion { return NewSharedUnion(next) }

// FunctionContext carries the call-site-independent facts about which
// function is currently being analyzed.
type FunctionContext struct {
	CallingClass         string
	CallingFunctionlikeID string
	IgnoreNoreturnCast    bool
}

// Flags are the per-scope boolean flags spec.md §3 lists.
type Flags struct {
	InsideLoop       bool
	InsideUnset      bool
	InsideAssignment bool
	InsideGeneralUse bool
	InsideTry        bool
	InsideConditional bool
	HasReturned      bool
	AllowTaints      bool
}

// Context is the per-function lexical state threaded through statement
// and expression analysis.
type Context struct {
	VarsInScope map[string]*SharedUnion
	Clauses     []*Clause
	Flags       Flags
	FuncContext FunctionContext
}

// New returns an empty scope context for entering a function.
func New(fc FunctionContext) *Context {
	return &Context{
		VarsInScope: make(map[string]*SharedUnion),
		FuncContext: fc,
	}
}

// Fork creates a branch-local copy of c: a shallow copy of the variable
// map (the SharedUnion pointers themselves are shared — narrowing one
// branch's copy of a variable replaces its map entry with a new
// SharedUnion rather than mutating the shared one) and an independent
// copy of the clause slice.
func (c *Context) Fork() *Context {
	n := &Context{
		VarsInScope: make(map[string]*SharedUnion, len(c.VarsInScope)),
		Clauses:     append([]*Clause{}, c.Clauses...),
		Flags:       c.Flags,
		FuncContext: c.FuncContext,
	}
	for k, v := range c.VarsInScope {
		n.VarsInScope[k] = v
	}
	return n
}

// Set replaces the type of a variable (assignment: replaces, never
// mutates — spec.md §9).
func (c *Context) Set(name string, u *types.Union) {
	c.VarsInScope[name] = NewSharedUnion(u)
}

// Type returns the current type of a variable, or nil if unknown.
func (c *Context) Type(name string) *types.Union {
	if su, ok := c.VarsInScope[name]; ok {
		return su.Get()
	}
	return nil
}

// AddClause appends a clause to the known-assertion set.
func (c *Context) AddClause(cl *Clause) {
	c.Clauses = append(c.Clauses, cl)
}

// Merge combines two forked branch contexts at a join point: for each
// variable, the merged type is union(lhs_branch, rhs_branch), and
// possibly-undefined-ness (tracked by the caller via AssertIsIsset
// clauses, not stored directly on SharedUnion) is the caller's
// responsibility to OR in, matching spec.md §4.4's ternary/branch-merge
// rule. Clauses are intersected: only clauses present (as equal
// constraints) on both branches still hold after the join, since a
// clause proven only along one branch cannot be assumed at the merge
// point.
func Merge(lhs, rhs *Context, resolver types.Resolver) *Context {
	out := &Context{
		VarsInScope: make(map[string]*SharedUnion),
		FuncContext: lhs.FuncContext,
	}
	seen := make(map[string]bool)
	for name, lu := range lhs.VarsInScope {
		seen[name] = true
		if ru, ok := rhs.VarsInScope[name]; ok {
			merged := types.CombineUnion(append(append([]types.Atomic{}, lu.Get().Atomics()...), ru.Get().Atomics()...), false, resolver)
			out.VarsInScope[name] = NewSharedUnion(merged)
		} else {
			out.VarsInScope[name] = lu
		}
	}
	for name, ru := range rhs.VarsInScope {
		if !seen[name] {
			out.VarsInScope[name] = ru
		}
	}
	out.Flags.HasReturned = lhs.Flags.HasReturned && rhs.Flags.HasReturned
	out.Flags.InsideLoop = lhs.Flags.InsideLoop
	out.Flags.InsideTry = lhs.Flags.InsideTry
	return out
}
