package reconciler

import "github.com/vetta-lang/vetta/internal/types"

// reconcileType narrows existing to the part of it contained by (or
// widened up to meet) target, the positive `$x is T` / `$x as T` case.
// Grounded on the Rust reconciler's `intersect_simple!` macro: mixed and
// mixed-with-flags atomics are replaced outright by the asserted type
// rather than intersected structurally, since "mixed" carries no shape
// to intersect against.
func reconcileType(existing *types.Union, target types.Atomic, resolver types.Resolver) *types.Union {
	return types.Intersect(existing, types.NewUnion(target), resolver)
}

// negateType narrows existing to the part not contained by target, the
// `$x is not T` case.
func negateType(existing *types.Union, target types.Atomic, resolver types.Resolver) *types.Union {
	return types.Subtract(existing, types.NewUnion(target), resolver)
}

// reconcileTruthy narrows existing to its truthy members: drop null,
// false, the literal zero/empty-string scalars, and for shapes wide
// enough to contain both truthy and falsy values (mixed, bool, string)
// replace the atomic with its truthy-flagged form instead of dropping
// it outright, since it may still contain truthy values.
func reconcileTruthy(existing *types.Union, resolver types.Resolver) *types.Union {
	var out []types.Atomic
	for _, a := range existing.Atomics() {
		switch v := a.(type) {
		case types.TNull, types.TFalse:
			continue
		case types.TLiteralInt:
			if v.Value == 0 {
				continue
			}
			out = append(out, a)
		case types.TLiteralString:
			if v.Value == "" {
				continue
			}
			out = append(out, a)
		case types.TBool:
			out = append(out, types.TTrue{})
		case types.TString:
			out = append(out, types.TStringWithFlags{IsTruthy: true})
		case types.TStringWithFlags:
			v.IsTruthy = true
			v.IsNonEmpty = true
			out = append(out, v)
		case types.TVec:
			v.NonEmpty = true
			out = append(out, v)
		case types.TDict:
			v.NonEmpty = true
			out = append(out, v)
		case types.TKeyset:
			out = append(out, v)
		default:
			if mf, ok := types.AsMixedWithFlags(a); ok {
				mf.IsTruthy = true
				mf.IsFalsy = false
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

// subtractNull narrows existing to its non-null members, the `isset`
// case when existing is not already entirely mixed.
func subtractNull(existing *types.Union, resolver types.Resolver) *types.Union {
	return types.Subtract(existing, types.NewUnion(types.TNull{}), resolver)
}

// markKeyDefined returns existing with any TDict/TVec atomic's known
// entry for key marked as definitely present (possibly also non-null,
// for AssertHasNonnullEntryForKey). When the container has no KnownItems
// entry for key yet, one is introduced from the container's general
// ValueParam/Element type: a dict<string,int|null> asserted to have a
// nonnull entry at "k" becomes dict<string,int|null> with known item
// "k" => int, not left untouched. A container whose general value type
// is itself nil (an empty vec/dict literal with no element type at all)
// has no type to seed the new entry from and is left untouched.
func markKeyDefined(existing *types.Union, key types.DictKey, nonnull bool, resolver types.Resolver) *types.Union {
	var out []types.Atomic
	for _, a := range existing.Atomics() {
		switch v := a.(type) {
		case types.TDict:
			item, ok := v.KnownItems[key]
			if !ok {
				if v.ValueParam == nil {
					out = append(out, v)
					continue
				}
				item = types.KnownItem{Type: v.ValueParam, PossiblyUndefined: true}
			}
			newItems := make(map[types.DictKey]types.KnownItem, len(v.KnownItems)+1)
			for k, val := range v.KnownItems {
				newItems[k] = val
			}
			item.PossiblyUndefined = false
			if nonnull && item.Type != nil {
				item.Type = types.Subtract(item.Type, types.NewUnion(types.TNull{}), resolver)
			}
			newItems[key] = item
			v.KnownItems = newItems
			out = append(out, v)
		case types.TVec:
			if key.Kind != types.DictKeyInt {
				out = append(out, v)
				continue
			}
			item, ok := v.KnownItems[int(key.IntVal)]
			if !ok {
				if v.Element == nil {
					out = append(out, v)
					continue
				}
				item = types.KnownItem{Type: v.Element, PossiblyUndefined: true}
			}
			newItems := make(map[int]types.KnownItem, len(v.KnownItems)+1)
			for k, val := range v.KnownItems {
				newItems[k] = val
			}
			item.PossiblyUndefined = false
			if nonnull && item.Type != nil {
				item.Type = types.Subtract(item.Type, types.NewUnion(types.TNull{}), resolver)
			}
			newItems[int(key.IntVal)] = item
			v.KnownItems = newItems
			out = append(out, v)
		default:
			out = append(out, a)
		}
	}
	return types.CombineUnion(out, false, resolver)
}

// markNonEmpty flags every container atomic as non-empty.
func markNonEmpty(existing *types.Union, resolver types.Resolver) *types.Union {
	var out []types.Atomic
	for _, a := range existing.Atomics() {
		switch v := a.(type) {
		case types.TVec:
			v.NonEmpty = true
			out = append(out, v)
		case types.TDict:
			v.NonEmpty = true
			out = append(out, v)
		default:
			out = append(out, a)
		}
	}
	return types.CombineUnion(out, false, resolver)
}

// markExactCount flags every TVec atomic with a known exact element count.
func markExactCount(existing *types.Union, count int, resolver types.Resolver) *types.Union {
	var out []types.Atomic
	for _, a := range existing.Atomics() {
		if v, ok := a.(types.TVec); ok {
			n := count
			v.KnownCount = &n
			v.NonEmpty = count > 0
			out = append(out, v)
			continue
		}
		out = append(out, a)
	}
	return types.CombineUnion(out, false, resolver)
}
