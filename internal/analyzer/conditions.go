package analyzer

import (
	"github.com/vetta-lang/vetta/internal/ast"
	"github.com/vetta-lang/vetta/internal/formula"
	"github.com/vetta-lang/vetta/internal/reconciler"
	"github.com/vetta-lang/vetta/internal/scope"
	"github.com/vetta-lang/vetta/internal/types"
)

// conditionToTerm extracts the narrowing assertion a condition
// expression implies, best-effort (spec.md §4.3: the reconciler narrows
// under whatever assertions the analyzer could parse out of a
// condition; conditions it cannot decompose simply contribute no
// narrowing, which is always sound). Recognized shapes: `$x instanceof
// T`, `$x === null` / `$x !== null`, `isset($x)`, a bare variable (its
// own truthiness), and `&&`/`||`/`!` composition of the above.
func conditionToTerm(e ast.Expression) (formula.Term, bool) {
	switch n := e.(type) {
	case *ast.InstanceofExpr:
		v, ok := n.Operand.(*ast.Variable)
		if !ok {
			return nil, false
		}
		a := scope.Assertion{Kind: scope.AssertType, Atomic: types.TNamedObject{Name: n.ClassName}, Negated: n.Negated}
		return formula.Leaf{VarID: v.Name, Assertion: a}, true

	case *ast.UnaryExpr:
		if n.Op != ast.OpNot {
			return nil, false
		}
		inner, ok := conditionToTerm(n.Operand)
		if !ok {
			return nil, false
		}
		return formula.Not{Term: inner}, true

	case *ast.BinaryExpr:
		switch n.Op {
		case ast.OpAnd:
			lt, lok := conditionToTerm(n.Left)
			rt, rok := conditionToTerm(n.Right)
			if !lok || !rok {
				return nil, false
			}
			return formula.And{Terms: []formula.Term{lt, rt}}, true
		case ast.OpOr:
			lt, lok := conditionToTerm(n.Left)
			rt, rok := conditionToTerm(n.Right)
			if !lok || !rok {
				return nil, false
			}
			return formula.Or{Terms: []formula.Term{lt, rt}}, true
		case ast.OpEq, ast.OpIdentical, ast.OpNotEq, ast.OpNotIdentical:
			v, null, ok := variableAgainstNull(n.Left, n.Right)
			if !ok {
				return nil, false
			}
			negated := n.Op == ast.OpNotEq || n.Op == ast.OpNotIdentical
			_ = null
			a := scope.Assertion{Kind: scope.AssertType, Atomic: types.TNull{}, Negated: negated}
			return formula.Leaf{VarID: v.Name, Assertion: a}, true
		}
		return nil, false

	case *ast.IssetExpr:
		v, ok := n.Container.(*ast.Variable)
		if !ok || n.Key != nil {
			return nil, false
		}
		return formula.Leaf{VarID: v.Name, Assertion: scope.Assertion{Kind: scope.AssertIsIsset}}, true

	case *ast.Variable:
		return formula.Leaf{VarID: n.Name, Assertion: scope.Assertion{Kind: scope.AssertTruthy}}, true

	default:
		return nil, false
	}
}

func variableAgainstNull(left, right ast.Expression) (*ast.Variable, bool, bool) {
	if v, ok := left.(*ast.Variable); ok {
		if _, ok := right.(*ast.LiteralNull); ok {
			return v, true, true
		}
	}
	if v, ok := right.(*ast.Variable); ok {
		if _, ok := left.(*ast.LiteralNull); ok {
			return v, true, true
		}
	}
	return nil, false, false
}

// applyCondition narrows ctx's variables under cond (or its negation,
// if negate is true — the else-branch case).
func applyCondition(cond ast.Expression, ctx *scope.Context, negate bool, a *Analyzer) {
	term, ok := conditionToTerm(cond)
	if !ok {
		return
	}
	if negate {
		term = formula.Not{Term: term}
	}
	clauses := formula.Simplify(formula.ToCNF(term))
	for _, c := range clauses {
		ctx.AddClause(c)
	}
	truths := formula.DeriveTruths(clauses)
	for varID, assertions := range truths {
		existing := ctx.Type(varID)
		if existing == nil {
			continue
		}
		for _, assertion := range assertions {
			existing = reconciler.Reconcile(assertion, existing, a.Codebase, cond.Pos(), a.addIssue)
		}
		ctx.Set(varID, existing)
	}
}
