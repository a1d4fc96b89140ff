package analyzer

import (
	"github.com/vetta-lang/vetta/internal/ast"
	"github.com/vetta-lang/vetta/internal/dataflow"
	"github.com/vetta-lang/vetta/internal/issues"
	"github.com/vetta-lang/vetta/internal/scope"
	"github.com/vetta-lang/vetta/internal/types"
)

func (a *Analyzer) analyzeCallExpr(n *ast.CallExpr, ctx *scope.Context) (*types.Union, dataflow.NodeId) {
	callee, ok := n.Callee.(*ast.Identifier)
	if !ok {
		for _, arg := range n.Args {
			if !arg.Spread {
				a.AnalyzeExpression(arg.Value, ctx)
			}
		}
		return mixedAny(), dataflow.NodeId{}
	}

	fi, found := a.Codebase.FunctionLike(callee.Name)
	if !found {
		for _, arg := range n.Args {
			if !arg.Spread {
				a.AnalyzeExpression(arg.Value, ctx)
			}
		}
		a.addIssue(issues.NonExistentFunction, "call to undefined function "+callee.Name+"()", n.Position)
		return mixedAny(), dataflow.NodeId{}
	}
	a.recordRef(callee.Name, false)

	generics := a.matchArguments(fi.Params, fi.TemplateNames, n.Args, ctx, n.Position)

	returnType := fi.ReturnType
	if returnType == nil {
		returnType = mixedAny()
	}
	if len(generics) > 0 {
		returnType = types.Expand(returnType, types.ExpansionContext{GenericArgs: remapGenerics(callee.Name, generics)})
	}

	specialization := ""
	if fi.SpecializeCall {
		specialization = callee.Name + "@" + n.Position.File
	}
	node := a.Builder.MethodReturn(callee.Name, specialization, a.pos(n.Position), nil)
	return returnType, node
}

func (a *Analyzer) analyzeMethodCallExpr(n *ast.MethodCallExpr, ctx *scope.Context) (*types.Union, dataflow.NodeId) {
	receiverType, _ := a.AnalyzeExpression(n.Receiver, ctx)

	var results []types.Atomic
	var descendantNodes []dataflow.NodeId
	matchedAny := false

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
		fi, ok := ci.Methods[n.MethodName]
		if !ok {
			a.addIssue(issues.NonExistentProperty, obj.Name+"::"+n.MethodName+"() does not exist", n.Position)
			continue
		}
		matchedAny = true
		a.recordRef(obj.Name+"::"+n.MethodName, false)
		generics := a.matchArguments(fi.Params, fi.TemplateNames, n.Args, ctx, n.Position)
		rt := fi.ReturnType
		if rt == nil {
			rt = mixedAny()
		}
		if len(generics) > 0 {
			rt = types.Expand(rt, types.ExpansionContext{GenericArgs: remapGenerics(obj.Name+"::"+n.MethodName, generics)})
		}
		results = append(results, rt.Atomics()...)

		// Polymorphic dispatch: every descendant class redeclaring this
		// method contributes its own return-site node (spec.md §4.6).
		for _, descendant := range a.Codebase.Descendants(obj.Name) {
			if dci, ok := a.Codebase.Classlike(descendant); ok {
				if _, redeclares := dci.Methods[n.MethodName]; redeclares {
					descendantNodes = append(descendantNodes, dataflow.NodeId{Label: "return:" + descendant + "::" + n.MethodName})
				}
			}
		}
	}

	if !matchedAny {
		for _, arg := range n.Args {
			if !arg.Spread {
				a.AnalyzeExpression(arg.Value, ctx)
			}
		}
		return mixedAny(), dataflow.NodeId{}
	}

	node := a.Builder.MethodReturn(n.MethodName, "", a.pos(n.Position), descendantNodes)
	return types.CombineUnion(results, false, a.Codebase), node
}

// remapGenerics rewrites a plain template-name -> Union map into the
// "DefiningEntity:Name" keys internal/types.ExpansionContext.GenericArgs
// expects.
func remapGenerics(definingEntity string, generics map[string]*types.Union) map[string]*types.Union {
	out := make(map[string]*types.Union, len(generics))
	for name, u := range generics {
		out[definingEntity+":"+name] = u
	}
	return out
}
