package analyzer

import (
	"github.com/vetta-lang/vetta/internal/ast"
	"github.com/vetta-lang/vetta/internal/dataflow"
	"github.com/vetta-lang/vetta/internal/issues"
	"github.com/vetta-lang/vetta/internal/scope"
	"github.com/vetta-lang/vetta/internal/types"
)

// analyzeBlock walks a block's statements in sequence, threading ctx
// through each (spec.md §4.4's scope threading).
func (a *Analyzer) analyzeBlock(b *ast.BlockStmt, ctx *scope.Context) *scope.Context {
	return a.analyzeStatements(b.Statements, ctx)
}

func (a *Analyzer) analyzeStatements(stmts []ast.Statement, ctx *scope.Context) *scope.Context {
	for _, s := range stmts {
		if ctx.Flags.HasReturned {
			a.addIssue(issues.UnusedExpression, "unreachable statement after return", s.Pos())
			continue
		}
		ctx = a.analyzeStatement(s, ctx)
	}
	return ctx
}

func (a *Analyzer) analyzeStatement(s ast.Statement, ctx *scope.Context) *scope.Context {
	switch n := s.(type) {
	case *ast.ExpressionStmt:
		a.AnalyzeExpression(n.Expr, ctx)
		return ctx

	case *ast.IfStmt:
		return a.analyzeIfStmt(n, ctx)

	case *ast.WhileStmt:
		return a.analyzeWhileStmt(n, ctx)

	case *ast.ForeachStmt:
		return a.analyzeForeachStmt(n, ctx)

	case *ast.ForStmt:
		return a.analyzeForStmt(n, ctx)

	case *ast.TryStmt:
		return a.analyzeTryStmt(n, ctx)

	case *ast.ReturnStmt:
		if n.Value != nil {
			a.AnalyzeExpression(n.Value, ctx)
		}
		next := ctx.Fork()
		next.Flags.HasReturned = true
		return next

	case *ast.ThrowStmt:
		a.AnalyzeExpression(n.Value, ctx)
		next := ctx.Fork()
		next.Flags.HasReturned = true
		return next

	case *ast.SwitchStmt:
		return a.analyzeSwitchStmt(n, ctx)

	case *ast.BlockStmt:
		return a.analyzeBlock(n, ctx)

	case *ast.FunctionDecl, *ast.ClasslikeDecl, *ast.PropertyDecl, *ast.ConstDecl:
		// Nested declarations are handled by the scanner/codebase builder
		// pass, not re-walked here.
		return ctx

	case *ast.UnrecognizedStmt:
		a.addIssue(issues.UnrecognizedStatement, "unrecognized statement: "+n.NodeLabel, n.Position)
		return ctx

	default:
		a.addIssue(issues.UnrecognizedStatement, "unrecognized statement shape", s.Pos())
		return ctx
	}
}

func (a *Analyzer) analyzeIfStmt(n *ast.IfStmt, ctx *scope.Context) *scope.Context {
	a.AnalyzeExpression(n.Cond, ctx)

	thenCtx := ctx.Fork()
	thenCtx.Flags.InsideConditional = true
	applyCondition(n.Cond, thenCtx, false, a)
	thenCtx = a.analyzeBlock(n.Then, thenCtx)

	elseCtx := ctx.Fork()
	elseCtx.Flags.InsideConditional = true
	applyCondition(n.Cond, elseCtx, true, a)
	if n.Else != nil {
		elseCtx = a.analyzeStatement(n.Else, elseCtx)
	}

	return scope.Merge(thenCtx, elseCtx, a.Codebase)
}

func (a *Analyzer) analyzeWhileStmt(n *ast.WhileStmt, ctx *scope.Context) *scope.Context {
	a.AnalyzeExpression(n.Cond, ctx)
	bodyCtx := ctx.Fork()
	bodyCtx.Flags.InsideLoop = true
	applyCondition(n.Cond, bodyCtx, false, a)
	a.analyzeBlock(n.Body, bodyCtx)

	after := ctx.Fork()
	applyCondition(n.Cond, after, true, a)
	return after
}

func (a *Analyzer) analyzeForeachStmt(n *ast.ForeachStmt, ctx *scope.Context) *scope.Context {
	containerType, containerNode := a.AnalyzeExpression(n.Container, ctx)
	bodyCtx := ctx.Fork()
	bodyCtx.Flags.InsideLoop = true

	elementType := elementTypeOf(containerType)
	fetchNode := a.Builder.ArrayFetch(containerNode, "", a.pos(n.Position))
	if n.ValueVar != "" {
		bodyCtx.Set(n.ValueVar, elementType)
		a.Builder.Assignment(n.ValueVar, a.pos(n.Position), []dataflow.NodeId{fetchNode})
	}
	if n.KeyVar != "" {
		bodyCtx.Set(n.KeyVar, types.NewUnion(types.TArrayKey{}))
	}
	a.analyzeBlock(n.Body, bodyCtx)
	return ctx
}

// elementTypeOf returns a container union's element type, MixedAny if
// the container shape carries none (e.g. it is itself Mixed).
func elementTypeOf(u *types.Union) *types.Union {
	var elems []types.Atomic
	for _, at := range u.Atomics() {
		switch v := at.(type) {
		case types.TVec:
			if v.Element != nil {
				elems = append(elems, v.Element.Atomics()...)
			}
		case types.TDict:
			if v.ValueParam != nil {
				elems = append(elems, v.ValueParam.Atomics()...)
			}
		case types.TKeyset:
			if v.Element != nil {
				elems = append(elems, v.Element.Atomics()...)
			}
		}
	}
	if len(elems) == 0 {
		return mixedAny()
	}
	return types.CombineUnion(elems, false, noopResolver{})
}

func (a *Analyzer) analyzeForStmt(n *ast.ForStmt, ctx *scope.Context) *scope.Context {
	for _, e := range n.Init {
		a.AnalyzeExpression(e, ctx)
	}
	bodyCtx := ctx.Fork()
	bodyCtx.Flags.InsideLoop = true
	if n.Cond != nil {
		a.AnalyzeExpression(n.Cond, bodyCtx)
	}
	a.analyzeBlock(n.Body, bodyCtx)
	for _, e := range n.Step {
		a.AnalyzeExpression(e, bodyCtx)
	}
	return ctx
}

func (a *Analyzer) analyzeTryStmt(n *ast.TryStmt, ctx *scope.Context) *scope.Context {
	tryCtx := ctx.Fork()
	tryCtx.Flags.InsideTry = true
	tryCtx = a.analyzeBlock(n.Body, tryCtx)

	merged := tryCtx
	for _, c := range n.Catches {
		catchCtx := ctx.Fork()
		if c.VarName != "" {
			caught := mixedAny()
			if len(c.ExceptionTypes) > 0 {
				var atoms []types.Atomic
				for _, et := range c.ExceptionTypes {
					atoms = append(atoms, types.TNamedObject{Name: et})
				}
				caught = types.NewUnion(atoms...)
			}
			catchCtx.Set(c.VarName, caught)
		}
		catchCtx = a.analyzeBlock(c.Body, catchCtx)
		merged = scope.Merge(merged, catchCtx, a.Codebase)
	}
	if n.Finally != nil {
		merged = a.analyzeBlock(n.Finally, merged)
	}
	return merged
}

func (a *Analyzer) analyzeSwitchStmt(n *ast.SwitchStmt, ctx *scope.Context) *scope.Context {
	a.AnalyzeExpression(n.Subject, ctx)
	var branches []*scope.Context
	for _, c := range n.Cases {
		if c.Value != nil {
			a.AnalyzeExpression(c.Value, ctx)
		}
		branchCtx := ctx.Fork()
		branchCtx = a.analyzeStatements(c.Body, branchCtx)
		branches = append(branches, branchCtx)
	}
	if len(branches) == 0 {
		return ctx
	}
	merged := branches[0]
	for _, b := range branches[1:] {
		merged = scope.Merge(merged, b, a.Codebase)
	}
	return merged
}
