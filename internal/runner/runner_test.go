package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/vetta-lang/vetta/internal/ast"
	"github.com/vetta-lang/vetta/internal/codebase"
	"github.com/vetta-lang/vetta/internal/intern"
	"github.com/vetta-lang/vetta/internal/refs"
	"github.com/vetta-lang/vetta/internal/scanner"
	"github.com/vetta-lang/vetta/internal/types"
)

type fakeParser struct{}

func (fakeParser) Parse(path string, content []byte) (*ast.Program, error) {
	return &ast.Program{File: path}, nil
}

type fakeExtractor struct{}

func (fakeExtractor) Register(cb *codebase.Codebase, file string, program *ast.Program) {}

func (fakeExtractor) Functions(program *ast.Program) []*ast.FunctionDecl {
	return []*ast.FunctionDecl{{
		Name: "main",
		Body: &ast.BlockStmt{Statements: []ast.Statement{
			&ast.ExpressionStmt{Expr: &ast.LiteralInt{Value: 1}},
		}},
	}}
}

func TestRunProducesMergedResultAcrossFiles(t *testing.T) {
	cb := codebase.New(intern.New())
	files := []scanner.ScannedFile{
		{Path: "a.fx", Content: []byte("function main(): void {}")},
		{Path: "b.fx", Content: []byte("function main(): void {}")},
	}
	outcome, err := Run(context.Background(), cb, files, Options{
		Parser:    fakeParser{},
		Extractor: fakeExtractor{},
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Result == nil || outcome.Codebase == nil {
		t.Fatalf("expected a populated outcome, got %+v", outcome)
	}
}

func TestRunPropagatesParseErrors(t *testing.T) {
	cb := codebase.New(intern.New())
	files := []scanner.ScannedFile{{Path: "broken.fx", Content: []byte("???")}}
	_, err := Run(context.Background(), cb, files, Options{
		Parser:    failingParser{},
		Extractor: fakeExtractor{},
	})
	if err == nil {
		t.Fatalf("expected a parse error to propagate")
	}
}

type failingParser struct{}

func (failingParser) Parse(path string, content []byte) (*ast.Program, error) {
	return nil, errors.New("parse failed")
}

type callingExtractor struct{}

func (callingExtractor) Register(cb *codebase.Codebase, file string, program *ast.Program) {
	cb.AddFunctionLike("helper", &codebase.FunctionLikeInfo{Name: "helper", ReturnType: types.NewUnion(types.TVoid{})})
}

func (callingExtractor) Functions(program *ast.Program) []*ast.FunctionDecl {
	return []*ast.FunctionDecl{
		{
			Name: "main",
			Body: &ast.BlockStmt{Statements: []ast.Statement{
				&ast.ExpressionStmt{Expr: &ast.CallExpr{Callee: &ast.Identifier{Name: "helper"}}},
			}},
		},
		{Name: "helper", Body: &ast.BlockStmt{}},
		{Name: "deadCode", Body: &ast.BlockStmt{}},
	}
}

func TestRunPopulatesRefsFromCallSites(t *testing.T) {
	cb := codebase.New(intern.New())
	files := []scanner.ScannedFile{{Path: "a.fx", Content: []byte("function main(): void { helper(); } function helper(): void {} function deadCode(): void {}")}}
	outcome, err := Run(context.Background(), cb, files, Options{
		Parser:    fakeParser{},
		Extractor: callingExtractor{},
		Threads:   1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Refs == nil {
		t.Fatalf("expected a populated refs tracker")
	}
	unused := outcome.Refs.Unused([]string{"main", "helper", "deadCode"}, refs.UnusedSweepOptions{EntryPoints: []string{"main"}})
	if len(unused) != 1 || unused[0] != "deadCode" {
		t.Fatalf("expected only deadCode to be unused, got %v", unused)
	}
}
