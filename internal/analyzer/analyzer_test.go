package analyzer

import (
	"testing"

	"github.com/vetta-lang/vetta/internal/ast"
	"github.com/vetta-lang/vetta/internal/codebase"
	"github.com/vetta-lang/vetta/internal/dataflow"
	"github.com/vetta-lang/vetta/internal/intern"
	"github.com/vetta-lang/vetta/internal/issues"
	"github.com/vetta-lang/vetta/internal/refs"
	"github.com/vetta-lang/vetta/internal/scope"
	"github.com/vetta-lang/vetta/internal/types"
)

func freshCodebase() *codebase.Codebase {
	return codebase.New(intern.New())
}

func newTestContext() *scope.Context {
	return scope.New(scope.FunctionContext{CallingFunctionlikeID: "test"})
}

func TestAnalyzeExpressionLiteralTypes(t *testing.T) {
	cb := freshCodebase()
	result := NewResult(dataflow.KindFunctionBody)
	az := New(cb, result, "a.fx", "test", nil, nil)

	u, _ := az.AnalyzeExpression(&ast.LiteralInt{Value: 3}, newTestContext())
	if u.Key() != types.NewUnion(types.TLiteralInt{Value: 3}).Key() {
		t.Fatalf("expected literal int 3, got %s", u.Key())
	}
}

func TestUndefinedVariableProducesIssue(t *testing.T) {
	cb := freshCodebase()
	result := NewResult(dataflow.KindFunctionBody)
	az := New(cb, result, "a.fx", "test", nil, nil)
	ctx := newTestContext()
	az.AnalyzeExpression(&ast.Variable{Name: "x"}, ctx)
	found := false
	for _, iss := range result.Issues.Issues() {
		if iss.Kind == issues.UndefinedVariable {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an UndefinedVariable issue")
	}
}

func TestIfNarrowsNullCheckInThenBranch(t *testing.T) {
	cb := freshCodebase()
	result := NewResult(dataflow.KindFunctionBody)
	az := New(cb, result, "a.fx", "test", nil, nil)
	ctx := newTestContext()
	ctx.Set("x", types.NewUnion(types.TString{}, types.TNull{}))

	thenCtx := ctx.Fork()
	cond := &ast.BinaryExpr{
		Op:    ast.OpNotEq,
		Left:  &ast.Variable{Name: "x"},
		Right: &ast.LiteralNull{},
	}
	applyCondition(cond, thenCtx, false, az)

	narrowed := thenCtx.Type("x")
	if narrowed.IsNullable() {
		t.Fatalf("expected null narrowed out of the then-branch, got %s", narrowed.Key())
	}

	elseCtx := ctx.Fork()
	applyCondition(cond, elseCtx, true, az)
	if elseCtx.Type("x").Key() != types.NewUnion(types.TNull{}).Key() {
		t.Fatalf("expected else-branch to narrow to null, got %s", elseCtx.Type("x").Key())
	}
}

func TestCallToUndefinedFunctionProducesIssue(t *testing.T) {
	cb := freshCodebase()
	result := NewResult(dataflow.KindFunctionBody)
	az := New(cb, result, "a.fx", "test", nil, nil)
	ctx := newTestContext()
	call := &ast.CallExpr{Callee: &ast.Identifier{Name: "doesNotExist"}}
	az.AnalyzeExpression(call, ctx)
	found := false
	for _, iss := range result.Issues.Issues() {
		if iss.Kind == issues.NonExistentFunction {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a NonExistentFunction issue")
	}
}

func TestCallMatchesRegisteredFunction(t *testing.T) {
	cb := freshCodebase()
	cb.AddFunctionLike("double", &codebase.FunctionLikeInfo{
		Name:       "double",
		Params:     []codebase.ParamInfo{{Name: "n", Type: types.NewUnion(types.TInt{})}},
		ReturnType: types.NewUnion(types.TInt{}),
	})
	result := NewResult(dataflow.KindFunctionBody)
	az := New(cb, result, "a.fx", "test", nil, nil)
	ctx := newTestContext()
	call := &ast.CallExpr{
		Callee: &ast.Identifier{Name: "double"},
		Args:   []ast.NamedArg{{Value: &ast.LiteralInt{Value: 2}}},
	}
	u, _ := az.AnalyzeExpression(call, ctx)
	if u.Key() != types.NewUnion(types.TInt{}).Key() {
		t.Fatalf("expected int return type, got %s", u.Key())
	}
	if len(result.Issues.Issues()) != 0 {
		t.Fatalf("expected no issues for a valid call, got %v", result.Issues.Issues())
	}
}

func TestAnalyzeFunctionRecordsCallReferenceIntoTracker(t *testing.T) {
	cb := freshCodebase()
	cb.AddFunctionLike("double", &codebase.FunctionLikeInfo{
		Name:       "double",
		Params:     []codebase.ParamInfo{{Name: "n", Type: types.NewUnion(types.TInt{})}},
		ReturnType: types.NewUnion(types.TInt{}),
	})
	result := NewResult(dataflow.KindFunctionBody)
	tracker := refs.New()
	az := New(cb, result, "a.fx", "main", nil, tracker)

	fn := &ast.FunctionDecl{
		Name: "main",
		Body: &ast.BlockStmt{Statements: []ast.Statement{
			&ast.ExpressionStmt{Expr: &ast.CallExpr{
				Callee: &ast.Identifier{Name: "double"},
				Args:   []ast.NamedArg{{Value: &ast.LiteralInt{Value: 2}}},
			}},
		}},
	}
	az.AnalyzeFunction(fn, nil)

	referenced := tracker.ReferencedBy("main")
	if len(referenced) != 1 || referenced[0] != "double" {
		t.Fatalf("expected main to reference double, got %v", referenced)
	}
}

func TestAnalyzeFunctionRecordsClassHierarchyReferences(t *testing.T) {
	cb := freshCodebase()
	cb.AddClasslike(&codebase.ClasslikeInfo{Name: "Animal"})
	cb.AddClasslike(&codebase.ClasslikeInfo{Name: "Dog", ParentClass: "Animal"})
	result := NewResult(dataflow.KindFunctionBody)
	tracker := refs.New()
	az := New(cb, result, "a.fx", "Dog::speak", nil, tracker)

	fn := &ast.FunctionDecl{Name: "speak", DeclaringClass: "Dog", Body: &ast.BlockStmt{}}
	az.AnalyzeFunction(fn, nil)

	referenced := tracker.ReferencedBy("Dog")
	if len(referenced) != 1 || referenced[0] != "Animal" {
		t.Fatalf("expected Dog to reference Animal via extends, got %v", referenced)
	}
}

func TestInvalidArgumentTypeProducesIssue(t *testing.T) {
	cb := freshCodebase()
	cb.AddFunctionLike("takesInt", &codebase.FunctionLikeInfo{
		Name:       "takesInt",
		Params:     []codebase.ParamInfo{{Name: "n", Type: types.NewUnion(types.TInt{})}},
		ReturnType: types.NewUnion(types.TVoid{}),
	})
	result := NewResult(dataflow.KindFunctionBody)
	az := New(cb, result, "a.fx", "test", nil, nil)
	ctx := newTestContext()
	call := &ast.CallExpr{
		Callee: &ast.Identifier{Name: "takesInt"},
		Args:   []ast.NamedArg{{Value: &ast.LiteralString{Value: "oops"}}},
	}
	az.AnalyzeExpression(call, ctx)
	found := false
	for _, iss := range result.Issues.Issues() {
		if iss.Kind == issues.InvalidArgument {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an InvalidArgument issue")
	}
}
