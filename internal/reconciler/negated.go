package reconciler

import "github.com/vetta-lang/vetta/internal/types"

// reconcileFalsy narrows existing to its falsy members: null, false,
// the literal zero/empty-string scalars, and the falsy-flagged form of
// any shape wide enough to still carry a falsy value.
func reconcileFalsy(existing *types.Union, resolver types.Resolver) *types.Union {
	var out []types.Atomic
	for _, a := range existing.Atomics() {
		switch v := a.(type) {
		case types.TNull, types.TFalse:
			out = append(out, a)
		case types.TLiteralInt:
			if v.Value == 0 {
				out = append(out, a)
			}
		case types.TLiteralString:
			if v.Value == "" {
				out = append(out, a)
			}
		case types.TBool:
			out = append(out, types.TFalse{})
		case types.TString:
			out = append(out, types.TStringWithFlags{IsTruthy: false})
		case types.TStringWithFlags:
			v.IsTruthy = false
			v.IsNonEmpty = false
			out = append(out, v)
		case types.TVec, types.TDict, types.TKeyset:
			// Containers can be empty (falsy) regardless of NonEmpty,
			// since NonEmpty only ever asserts the positive direction.
			out = append(out, a)
		default:
			if mf, ok := types.AsMixedWithFlags(a); ok {
				mf.IsFalsy = true
				mf.IsTruthy = false
				out = append(out, mf)
				continue
			}
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return types.NewUnion(types.TNothing{})
	}
	return types.CombineUnion(out, false, resolver)
}

// intersectNull narrows existing down to null, the negated-isset case.
func intersectNull(existing *types.Union, resolver types.Resolver) *types.Union {
	if existing.IsNullable() || existing.IsMixed() {
		return types.NewUnion(types.TNull{})
	}
	return types.NewUnion(types.TNothing{})
}
