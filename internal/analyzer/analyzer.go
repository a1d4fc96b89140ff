// Package analyzer walks a function body's AST, inferring an expression
// type map, threading a flow-sensitive scope.Context through statements,
// emitting data-flow graph nodes/edges, and accumulating issues
// (spec.md §4.4 "Expression/statement analyzer", §2 pipeline stage 6-8).
//
// Grounded on the teacher's internal/analyzer package: `expressions.go`
// dispatches expression inference by concrete AST type and records into
// a `TypeMap map[ast.Node]typesystem.Type`; `statements.go` threads a
// mutable loop/scope flag set through a statement walk. This package
// keeps that "analyzer struct owns TypeMap + flags, dispatch by concrete
// type" shape but swaps the teacher's Hindley-Milner inference for union
// narrowing (internal/types, internal/reconciler) and adds the data-flow
// side the teacher's analyzer never had (internal/dataflow), per
// original_source/src/analyzer/expression_analyzer.rs.
package analyzer

import (
	"github.com/vetta-lang/vetta/internal/ast"
	"github.com/vetta-lang/vetta/internal/codebase"
	"github.com/vetta-lang/vetta/internal/dataflow"
	"github.com/vetta-lang/vetta/internal/issues"
	"github.com/vetta-lang/vetta/internal/refs"
	"github.com/vetta-lang/vetta/internal/scope"
	"github.com/vetta-lang/vetta/internal/types"
)

// Result is the private-per-worker output of analyzing one function
// body, merged into a whole-program Result under a single mutex after
// every worker finishes (spec.md §5).
type Result struct {
	Graph   *dataflow.Graph
	Issues  *issues.Collector
	TypeMap map[ast.Expression]*types.Union
}

// NewResult returns an empty per-worker result for the given graph kind.
func NewResult(kind dataflow.GraphKind) *Result {
	return &Result{
		Graph:   dataflow.New(kind),
		Issues:  issues.NewCollector(),
		TypeMap: make(map[ast.Expression]*types.Union),
	}
}

// Merge folds other into r (spec.md §5's single-mutex worker-merge barrier;
// the mutex itself lives in the caller — internal/runner — not here).
func (r *Result) Merge(other *Result) {
	r.Graph.Merge(other.Graph)
	r.Issues.Merge(other.Issues)
	for e, u := range other.TypeMap {
		r.TypeMap[e] = u
	}
}

// Analyzer holds the state threaded through one function body's walk.
// A fresh Analyzer is created per function-like, never shared across
// goroutines (spec.md §5: the codebase is frozen and read-only, but
// scope state and the result are always private to one worker).
type Analyzer struct {
	Codebase *codebase.Codebase
	Result   *Result
	Builder  *dataflow.Builder
	Refs     *refs.Tracker

	file                string
	callingFunctionlike string
	suppressedIssues    map[string]bool
}

// New returns an Analyzer that will record into result for the given
// file and functionlike id. refsTracker may be nil, in which case
// symbol-reference recording is skipped (callers that only need types
// or issues, such as unit tests, needn't construct one).
func New(cb *codebase.Codebase, result *Result, file, callingFunctionlikeID string, suppressed map[string]bool, refsTracker *refs.Tracker) *Analyzer {
	return &Analyzer{
		Codebase:            cb,
		Result:              result,
		Builder:             dataflow.NewBuilder(result.Graph),
		Refs:                refsTracker,
		file:                file,
		callingFunctionlike: callingFunctionlikeID,
		suppressedIssues:    suppressed,
	}
}

// AnalyzeFunction walks a function's body, starting from a scope
// context seeded with its parameter types, and returns the scope
// context at the function's exit (every return site's types already
// merged in via scope.Merge as the walk unwinds).
func (a *Analyzer) AnalyzeFunction(fn *ast.FunctionDecl, paramTypes map[string]*types.Union) *scope.Context {
	ctx := scope.New(scope.FunctionContext{
		CallingClass:          fn.DeclaringClass,
		CallingFunctionlikeID: a.callingFunctionlike,
	})
	if fn.DeclaringClass != "" {
		a.recordClassHierarchyRefs(fn.DeclaringClass)
	}
	for name, u := range paramTypes {
		ctx.Set(name, u)
		a.recordTypeRefs(u, true)
	}
	if fn.Body != nil {
		ctx = a.analyzeBlock(fn.Body, ctx)
	}
	return ctx
}

// recordRef records that the function-like currently being analyzed
// references symbol (spec.md §4.7/§4.8). A no-op when no tracker was
// supplied, or when the symbol would just reference itself.
func (a *Analyzer) recordRef(symbol string, inSignature bool) {
	if a.Refs == nil || symbol == "" || symbol == a.callingFunctionlike {
		return
	}
	a.Refs.Add(refs.Reference{Referencing: a.callingFunctionlike, Referenced: symbol, InSignature: inSignature})
}

// recordTypeRefs walks u's atomics and records a reference to every
// named class/interface it mentions — the "type references" half of
// the symbol-reference contract (parameter types, return types, cast
// and instanceof targets).
func (a *Analyzer) recordTypeRefs(u *types.Union, inSignature bool) {
	if u == nil {
		return
	}
	for _, at := range u.Atomics() {
		if obj, ok := at.(types.TNamedObject); ok {
			a.recordRef(obj.Name, inSignature)
		}
	}
}

// recordClassHierarchyRefs records className's extends/implements/uses
// edges (spec.md §4.7's "a parameter type, a return type, an `extends`
// clause" example of a signature reference). Called once per analyzed
// method since class declarations themselves aren't walked separately
// in this package; the tracker's set-backed storage makes the repeat
// calls across a class's methods harmless.
func (a *Analyzer) recordClassHierarchyRefs(className string) {
	if a.Refs == nil {
		return
	}
	ci, ok := a.Codebase.Classlike(className)
	if !ok {
		return
	}
	add := func(ancestor string) {
		if ancestor == "" || ancestor == className {
			return
		}
		a.Refs.Add(refs.Reference{Referencing: className, Referenced: ancestor, InSignature: true})
	}
	add(ci.ParentClass)
	for _, iface := range ci.Interfaces {
		add(iface)
	}
	for _, tr := range ci.UsedTraits {
		add(tr)
	}
}

func (a *Analyzer) pos(p ast.Position) dataflow.SourcePos {
	file := p.File
	if file == "" {
		file = a.file
	}
	return dataflow.SourcePos{File: file, Offset: p.Offset}
}

func (a *Analyzer) addIssue(kind issues.Kind, message string, p ast.Position) {
	a.Result.Issues.Add(issues.Issue{
		Kind:                  kind,
		Message:               message,
		Position:              issues.Position{File: a.pos(p).File, Line: p.Line, Column: p.Column},
		CallingFunctionlikeID: a.callingFunctionlike,
	}, a.suppressedIssues)
}

func mixedAny() *types.Union { return types.NewUnion(types.TMixedAny{}) }
