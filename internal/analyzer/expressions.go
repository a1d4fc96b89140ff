package analyzer

import (
	"github.com/vetta-lang/vetta/internal/ast"
	"github.com/vetta-lang/vetta/internal/dataflow"
	"github.com/vetta-lang/vetta/internal/issues"
	"github.com/vetta-lang/vetta/internal/scope"
	"github.com/vetta-lang/vetta/internal/types"
)

// AnalyzeExpression infers e's type under ctx, records it into the
// result's TypeMap, emits whatever data-flow nodes/edges the expression
// shape requires, and returns both the type and the data-flow node that
// represents "the value this expression currently produces" so the
// caller (an assignment, a call argument, ...) can wire an edge from it.
//
// On an unhandled expression shape the analyzer degrades gracefully per
// spec.md §7: it records an UnrecognizedExpression issue and returns
// MixedAny rather than aborting the file.
func (a *Analyzer) AnalyzeExpression(e ast.Expression, ctx *scope.Context) (*types.Union, dataflow.NodeId) {
	u, node := a.analyzeExpression(e, ctx)
	a.Result.TypeMap[e] = u
	return u, node
}

func (a *Analyzer) analyzeExpression(e ast.Expression, ctx *scope.Context) (*types.Union, dataflow.NodeId) {
	switch n := e.(type) {
	case *ast.LiteralInt:
		return types.NewUnion(types.TLiteralInt{Value: n.Value}), dataflow.NodeId{}
	case *ast.LiteralFloat:
		return types.NewUnion(types.TFloat{}), dataflow.NodeId{}
	case *ast.LiteralString:
		return types.NewUnion(types.TLiteralString{Value: n.Value}), dataflow.NodeId{}
	case *ast.LiteralBool:
		if n.Value {
			return types.NewUnion(types.TTrue{}), dataflow.NodeId{}
		}
		return types.NewUnion(types.TFalse{}), dataflow.NodeId{}
	case *ast.LiteralNull:
		return types.NewUnion(types.TNull{}), dataflow.NodeId{}

	case *ast.Variable:
		node := a.Builder.VariableUse(n.Name, a.pos(n.Position))
		if u := ctx.Type(n.Name); u != nil {
			return u, node
		}
		a.addIssue(issues.UndefinedVariable, "undefined variable $"+n.Name, n.Position)
		return mixedAny(), node

	case *ast.ContainerLiteral:
		return a.analyzeContainerLiteral(n, ctx)

	case *ast.BinaryExpr:
		return a.analyzeBinaryExpr(n, ctx)

	case *ast.UnaryExpr:
		operand, node := a.AnalyzeExpression(n.Operand, ctx)
		switch n.Op {
		case ast.OpNot:
			return types.NewUnion(types.TBool{}), node
		default:
			return operand, node
		}

	case *ast.AssignExpr:
		return a.analyzeAssignExpr(n, ctx)

	case *ast.CallExpr:
		return a.analyzeCallExpr(n, ctx)

	case *ast.MethodCallExpr:
		return a.analyzeMethodCallExpr(n, ctx)

	case *ast.PropertyFetchExpr:
		return a.analyzePropertyFetchExpr(n, ctx)

	case *ast.ArrayFetchExpr:
		return a.analyzeArrayFetchExpr(n, ctx)

	case *ast.TernaryExpr:
		return a.analyzeTernaryExpr(n, ctx)

	case *ast.NullCoalesceExpr:
		return a.analyzeNullCoalesceExpr(n, ctx)

	case *ast.ClosureExpr:
		return a.analyzeClosureExpr(n, ctx)

	case *ast.AwaitExpr:
		return a.AnalyzeExpression(n.Operand, ctx)

	case *ast.CastExpr:
		_, node := a.AnalyzeExpression(n.Operand, ctx)
		target := castTargetType(n.TargetType)
		if !isPrimitiveCastTarget(n.TargetType) {
			a.recordRef(n.TargetType, false)
		}
		return target, node

	case *ast.IssetExpr:
		if n.Container != nil {
			a.AnalyzeExpression(n.Container, ctx)
		}
		return types.NewUnion(types.TBool{}), dataflow.NodeId{}

	case *ast.InstanceofExpr:
		a.AnalyzeExpression(n.Operand, ctx)
		a.recordRef(n.ClassName, false)
		return types.NewUnion(types.TBool{}), dataflow.NodeId{}

	case *ast.Identifier:
		return mixedAny(), dataflow.NodeId{}

	default:
		a.addIssue(issues.UnrecognizedExpression, "unrecognized expression shape", e.Pos())
		return mixedAny(), dataflow.NodeId{}
	}
}

func castTargetType(target string) *types.Union {
	switch target {
	case "int":
		return types.NewUnion(types.TInt{})
	case "float":
		return types.NewUnion(types.TFloat{})
	case "string":
		return types.NewUnion(types.TString{})
	case "bool":
		return types.NewUnion(types.TBool{})
	default:
		return mixedAny()
	}
}

func isPrimitiveCastTarget(target string) bool {
	switch target {
	case "int", "float", "string", "bool":
		return true
	default:
		return false
	}
}

func (a *Analyzer) analyzeContainerLiteral(n *ast.ContainerLiteral, ctx *scope.Context) (*types.Union, dataflow.NodeId) {
	elementNodes := make(map[string]dataflow.NodeId, len(n.Elements))
	var elemUnions []types.Atomic
	dictItems := make(map[types.DictKey]types.KnownItem)
	vecItems := make(map[int]types.KnownItem)

	for i, el := range n.Elements {
		vt, vnode := a.AnalyzeExpression(el.Value, ctx)
		elemUnions = append(elemUnions, vt.Atomics()...)

		switch n.Kind {
		case ast.ContainerDict:
			key := dictKeyFromLiteral(el.Key)
			elementNodes[key.String()] = vnode
			dictItems[key] = types.KnownItem{Type: vt}
		default:
			key := types.DictKey{Kind: types.DictKeyInt, IntVal: uint32(i)}
			elementNodes[key.String()] = vnode
			vecItems[i] = types.KnownItem{Type: vt}
		}
	}

	agg := a.Builder.ArrayConstruction(a.pos(n.Position), elementNodes)

	elementType := types.NewUnion(types.TNothing{})
	if len(elemUnions) > 0 {
		elementType = types.CombineUnion(elemUnions, false, noopResolver{})
	}

	switch n.Kind {
	case ast.ContainerDict:
		return types.NewUnion(types.TDict{ValueParam: elementType, KnownItems: dictItems, NonEmpty: len(n.Elements) > 0}), agg
	case ast.ContainerKeyset:
		return types.NewUnion(types.TKeyset{Element: elementType}), agg
	default:
		return types.NewUnion(types.TVec{Element: elementType, KnownItems: vecItems, NonEmpty: len(n.Elements) > 0}), agg
	}
}

func dictKeyFromLiteral(key ast.Expression) types.DictKey {
	switch k := key.(type) {
	case *ast.LiteralString:
		return types.DictKey{Kind: types.DictKeyString, StringVal: k.Value}
	case *ast.LiteralInt:
		return types.DictKey{Kind: types.DictKeyInt, IntVal: uint32(k.Value)}
	default:
		return types.DictKey{Kind: types.DictKeyString, StringVal: ""}
	}
}

func (a *Analyzer) analyzeBinaryExpr(n *ast.BinaryExpr, ctx *scope.Context) (*types.Union, dataflow.NodeId) {
	lt, lnode := a.AnalyzeExpression(n.Left, ctx)
	rt, rnode := a.AnalyzeExpression(n.Right, ctx)

	switch n.Op {
	case ast.OpEq, ast.OpNotEq, ast.OpIdentical, ast.OpNotIdentical,
		ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte, ast.OpAnd, ast.OpOr, ast.OpInstanceof:
		if (n.Op == ast.OpIdentical || n.Op == ast.OpEq) && !types.CanBeIdentical(lt, rt, noopResolver{}) {
			a.addIssue(issues.RedundantTypeComparison, "comparison can never be true: types share no members", n.Position)
		}
		return types.NewUnion(types.TBool{}), dataflow.NodeId{}
	case ast.OpConcat:
		joined := a.Builder.Assignment("~concat~", a.pos(n.Position), []dataflow.NodeId{lnode, rnode})
		return types.NewUnion(types.TString{}), joined
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpMod:
		if isFloaty(lt) || isFloaty(rt) {
			return types.NewUnion(types.TFloat{}), dataflow.NodeId{}
		}
		return types.NewUnion(types.TInt{}), dataflow.NodeId{}
	case ast.OpDiv:
		return types.NewUnion(types.TFloat{}), dataflow.NodeId{}
	default:
		return mixedAny(), dataflow.NodeId{}
	}
}

func isFloaty(u *types.Union) bool {
	for _, at := range u.Atomics() {
		switch at.(type) {
		case types.TFloat, types.TNum:
			return true
		}
	}
	return false
}

func (a *Analyzer) analyzeAssignExpr(n *ast.AssignExpr, ctx *scope.Context) (*types.Union, dataflow.NodeId) {
	valueType, valueNode := a.AnalyzeExpression(n.Value, ctx)
	if v, ok := n.Target.(*ast.Variable); ok {
		ctx.Set(v.Name, valueType)
		assignNode := a.Builder.Assignment(v.Name, a.pos(n.Position), []dataflow.NodeId{valueNode})
		return valueType, assignNode
	}
	// Property/array-index assignment targets: evaluate the target for
	// its data-flow side effects but the narrowed type still flows from
	// the value side.
	a.AnalyzeExpression(n.Target, ctx)
	return valueType, valueNode
}

func (a *Analyzer) analyzeArrayFetchExpr(n *ast.ArrayFetchExpr, ctx *scope.Context) (*types.Union, dataflow.NodeId) {
	containerType, containerNode := a.AnalyzeExpression(n.Container, ctx)
	key := ""
	if lit, ok := n.Key.(*ast.LiteralString); ok {
		key = lit.Value
	} else if lit, ok := n.Key.(*ast.LiteralInt); ok {
		key = types.DictKey{Kind: types.DictKeyInt, IntVal: uint32(lit.Value)}.String()
	}
	node := a.Builder.ArrayFetch(containerNode, key, a.pos(n.Position))

	for _, at := range containerType.Atomics() {
		switch v := at.(type) {
		case types.TDict:
			if dk, ok := lookupDictKey(n.Key); ok {
				if item, ok := v.KnownItems[dk]; ok {
					return item.Type, node
				}
			}
			if v.ValueParam != nil {
				return v.ValueParam, node
			}
		case types.TVec:
			if v.Element != nil {
				return v.Element, node
			}
		case types.TKeyset:
			if v.Element != nil {
				return v.Element, node
			}
		}
	}
	return mixedAny(), node
}

func lookupDictKey(key ast.Expression) (types.DictKey, bool) {
	switch k := key.(type) {
	case *ast.LiteralString:
		return types.DictKey{Kind: types.DictKeyString, StringVal: k.Value}, true
	case *ast.LiteralInt:
		return types.DictKey{Kind: types.DictKeyInt, IntVal: uint32(k.Value)}, true
	default:
		return types.DictKey{}, false
	}
}

func (a *Analyzer) analyzePropertyFetchExpr(n *ast.PropertyFetchExpr, ctx *scope.Context) (*types.Union, dataflow.NodeId) {
	receiverType, receiverNode := a.AnalyzeExpression(n.Receiver, ctx)
	node := a.Builder.ArrayFetch(receiverNode, "->"+n.PropertyName, a.pos(n.Position))
	for _, at := range receiverType.Atomics() {
		obj, ok := at.(types.TNamedObject)
		if !ok {
			continue
		}
		ci, ok := a.Codebase.Classlike(obj.Name)
		if !ok {
			a.addIssue(issues.NonExistentClass, "unknown class "+obj.Name, n.Position)
			continue
		}
		if pt, ok := ci.Properties[n.PropertyName]; ok {
			a.recordRef(obj.Name+"::$"+n.PropertyName, false)
			return pt, node
		}
		a.addIssue(issues.NonExistentProperty, obj.Name+"::$"+n.PropertyName+" does not exist", n.Position)
	}
	return mixedAny(), node
}

func (a *Analyzer) analyzeTernaryExpr(n *ast.TernaryExpr, ctx *scope.Context) (*types.Union, dataflow.NodeId) {
	a.AnalyzeExpression(n.Cond, ctx)

	thenCtx := ctx.Fork()
	elseCtx := ctx.Fork()
	applyCondition(n.Cond, thenCtx, false, a)
	applyCondition(n.Cond, elseCtx, true, a)

	var thenType *types.Union
	var thenNode dataflow.NodeId
	if n.IfTrue != nil {
		thenType, thenNode = a.AnalyzeExpression(n.IfTrue, thenCtx)
	} else {
		condType, condNode := a.AnalyzeExpression(n.Cond, thenCtx)
		thenType, thenNode = condType, condNode
	}
	elseType, elseNode := a.AnalyzeExpression(n.IfFalse, elseCtx)

	merged := types.CombineUnion(append(append([]types.Atomic{}, thenType.Atomics()...), elseType.Atomics()...), false, noopResolver{})
	aggregate := a.Builder.Assignment("~ternary~", a.pos(n.Position), []dataflow.NodeId{thenNode, elseNode})
	return merged, aggregate
}

func (a *Analyzer) analyzeNullCoalesceExpr(n *ast.NullCoalesceExpr, ctx *scope.Context) (*types.Union, dataflow.NodeId) {
	leftType, leftNode := a.AnalyzeExpression(n.Left, ctx)
	rightType, rightNode := a.AnalyzeExpression(n.Right, ctx)
	nonNullLeft := types.Subtract(leftType, types.NewUnion(types.TNull{}), noopResolver{})
	merged := types.CombineUnion(append(append([]types.Atomic{}, nonNullLeft.Atomics()...), rightType.Atomics()...), false, noopResolver{})
	aggregate := a.Builder.Assignment("~nullcoalesce~", a.pos(n.Position), []dataflow.NodeId{leftNode, rightNode})
	return merged, aggregate
}

func (a *Analyzer) analyzeClosureExpr(n *ast.ClosureExpr, ctx *scope.Context) (*types.Union, dataflow.NodeId) {
	inner := ctx.Fork()
	params := make([]*types.Union, len(n.Params))
	for i, p := range n.Params {
		params[i] = mixedAny()
		inner.Set(p.Name, params[i])
	}
	if n.Body != nil {
		a.analyzeStatements(n.Body, inner)
	}
	return types.NewUnion(types.TClosure{Params: params, ReturnType: mixedAny()}), dataflow.NodeId{}
}

// noopResolver treats every class-likeness check as "unrelated" except
// reflexively; used where no *codebase.Codebase is reachable (pure type
// arithmetic on container literals built from constants).
type noopResolver struct{}

func (noopResolver) IsDescendantOf(child, parent string) bool { return child == parent }
