package analyzer

import (
	"github.com/vetta-lang/vetta/internal/ast"
	"github.com/vetta-lang/vetta/internal/codebase"
	"github.com/vetta-lang/vetta/internal/issues"
	"github.com/vetta-lang/vetta/internal/scope"
	"github.com/vetta-lang/vetta/internal/types"
)

// matchArguments checks each call argument against the matching
// parameter's declared type and, for a templated functionlike,
// accumulates the lower bound each argument implies for its generic
// parameter (spec.md §4.5 "Argument matching / generics"). Grounded on
// original_source/src/analyzer/expr/call/function_call_analyzer.rs's
// template-bound accumulation: a generic parameter's inferred type is
// the *combination* of every argument type offered for it, not just the
// first — so a call passing `vec<int>` and later implicitly requiring
// `vec<string>` for the same template widens to `vec<arraykey>` rather
// than silently picking one.
func (a *Analyzer) matchArguments(params []codebase.ParamInfo, templateNames []string, callArgs []ast.NamedArg, ctx *scope.Context, callSitePos ast.Position) map[string]*types.Union {
	generics := make(map[string]*types.Union)
	templateSet := make(map[string]bool, len(templateNames))
	for _, t := range templateNames {
		templateSet[t] = true
	}

	for i, arg := range callArgs {
		if arg.Spread {
			continue
		}
		argType, _ := a.AnalyzeExpression(arg.Value, ctx)

		var param *codebase.ParamInfo
		if arg.Name != "" {
			for pi := range params {
				if params[pi].Name == arg.Name {
					param = &params[pi]
					break
				}
			}
		} else if i < len(params) {
			param = &params[i]
		} else if len(params) > 0 && params[len(params)-1].IsVariadic {
			param = &params[len(params)-1]
		}
		if param == nil || param.Type == nil {
			continue
		}

		accumulateGenericBounds(param.Type, argType, templateSet, generics)

		result := types.IsContainedBy(param.Type, argType, false, a.Codebase)
		if !result.Result {
			a.addIssue(issues.InvalidArgument, "argument "+param.Name+" expects "+param.Type.String()+", got "+argType.String(), arg.Value.Pos())
			continue
		}
		if result.TypeCoerced {
			a.addIssue(issues.LessSpecificArgument, "argument "+param.Name+" is less specific than its declared type", arg.Value.Pos())
		}
	}
	return generics
}

// accumulateGenericBounds walks paramType and argType in lockstep: where
// paramType names a template parameter, it widens generics[name] by
// combining in the corresponding slice of argType.
func accumulateGenericBounds(paramType, argType *types.Union, templateSet map[string]bool, generics map[string]*types.Union) {
	for _, pa := range paramType.Atomics() {
		gp, ok := pa.(types.TGenericParam)
		if !ok || !templateSet[gp.Name] {
			continue
		}
		existing, has := generics[gp.Name]
		if !has {
			generics[gp.Name] = argType
			continue
		}
		generics[gp.Name] = types.CombineUnion(append(append([]types.Atomic{}, existing.Atomics()...), argType.Atomics()...), false, noopResolver{})
	}
}
