package ast

import "testing"

type countingVisitor struct {
	NoopVisitor
	ifs  int
	vars int
}

func (c *countingVisitor) VisitIfStmt(n *IfStmt) {
	c.ifs++
	n.Cond.Accept(c)
	n.Then.Accept(c)
}

func (c *countingVisitor) VisitVariable(n *Variable) { c.vars++ }

func (c *countingVisitor) VisitBlockStmt(n *BlockStmt) {
	for _, s := range n.Statements {
		s.Accept(c)
	}
}

func (c *countingVisitor) VisitExpressionStmt(n *ExpressionStmt) {
	n.Expr.Accept(c)
}

func TestVisitorDispatchesThroughAccept(t *testing.T) {
	tree := &IfStmt{
		Cond: &Variable{Name: "x"},
		Then: &BlockStmt{Statements: []Statement{
			&ExpressionStmt{Expr: &Variable{Name: "y"}},
		}},
	}
	v := &countingVisitor{}
	tree.Accept(v)
	if v.ifs != 1 {
		t.Fatalf("expected 1 if visited, got %d", v.ifs)
	}
	if v.vars != 2 {
		t.Fatalf("expected 2 variables visited, got %d", v.vars)
	}
}

func TestUnrecognizedStmtRoundTrips(t *testing.T) {
	u := &UnrecognizedStmt{Position: Position{File: "a.fx", Line: 3}, NodeLabel: "SetModule"}
	var captured *UnrecognizedStmt
	cv := struct {
		NoopVisitor
	}{}
	_ = cv
	var v Visitor = &captureVisitor{target: &captured}
	u.Accept(v)
	if captured == nil || captured.NodeLabel != "SetModule" {
		t.Fatalf("expected unrecognized stmt to be captured")
	}
}

type captureVisitor struct {
	NoopVisitor
	target **UnrecognizedStmt
}

func (c *captureVisitor) VisitUnrecognizedStmt(n *UnrecognizedStmt) { *c.target = n }
