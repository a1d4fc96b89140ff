package types

// ContainmentResult is the structured outcome of IsContainedBy (spec.md §4.2).
type ContainmentResult struct {
	Result                     bool
	TypeCoerced                bool
	TypeCoercedFromNestedMixed bool
	ReplacementUnion           *Union
}

func ok() ContainmentResult    { return ContainmentResult{Result: true} }
func fail() ContainmentResult  { return ContainmentResult{Result: false} }
func coerced() ContainmentResult {
	return ContainmentResult{Result: true, TypeCoerced: true}
}

// IsContainedBy reports whether every runtime value described by
// `contained` is also described by `container`. For each atomic of
// `contained`, at least one atomic of `container` must accept it.
//
// allowInterfaceEquality relaxes object containment so that two
// differently-named objects are accepted, flagged TypeCoerced, when no
// resolver is available to establish ancestry either way (used when comparing
// interface parameters declared `as` each other defensively).
func IsContainedBy(container, contained *Union, allowInterfaceEquality bool, resolver Resolver) ContainmentResult {
	if contained.IsNothing() {
		// Nothing is contained by everything.
		return ok()
	}
	if container.IsMixed() {
		return ok()
	}

	overall := ok()
	for _, c := range contained.Atomics() {
		res := atomicContainedByUnion(container, c, allowInterfaceEquality, resolver)
		if !res.Result {
			return fail()
		}
		if res.TypeCoerced {
			overall.TypeCoerced = true
		}
		if res.TypeCoercedFromNestedMixed {
			overall.TypeCoercedFromNestedMixed = true
		}
	}
	return overall
}

func atomicContainedByUnion(container *Union, contained Atomic, allowInterfaceEquality bool, resolver Resolver) ContainmentResult {
	if _, isMixedAny := contained.(TMixedAny); isMixedAny {
		// MixedAny is contained by any type only with the
		// type_coerced_from_mixed flag set (spec.md §4.2).
		return ContainmentResult{Result: true, TypeCoercedFromNestedMixed: true}
	}
	if _, isNothing := contained.(TNothing); isNothing {
		return ok()
	}

	for _, containerAtom := range container.Atomics() {
		if res := atomicContainsAtomic(containerAtom, contained, allowInterfaceEquality, resolver); res.Result {
			return res
		}
	}
	return fail()
}

// atomicContainsAtomic answers "does containerAtom accept contained?"
// for a single pair of atomics. It is total over Atomic's variant set by
// construction: every case below either matches structurally or falls
// through to the literal/generalization and mixed-family checks at the
// bottom, so no variant is silently ignored.
func atomicContainsAtomic(container, contained Atomic, allowInterfaceEquality bool, resolver Resolver) ContainmentResult {
	if container.Key() == contained.Key() {
		return ok()
	}

	if mf, isMixed := AsMixedWithFlags(container); isMixed {
		if mf.IsTruthy && !isDefinitelyTruthy(contained) {
			return fail()
		}
		if mf.IsFalsy && !isDefinitelyFalsy(contained) {
			return fail()
		}
		if mf.IsNonNull {
			if _, isNull := contained.(TNull); isNull {
				return fail()
			}
		}
		return ok()
	}

	// A literal is contained by its general type.
	switch c := contained.(type) {
	case TLiteralInt:
		if _, isInt := container.(TInt); isInt {
			return ok()
		}
	case TLiteralString:
		if _, isStr := container.(TString); isStr {
			return ok()
		}
		if sf, isSF := container.(TStringWithFlags); isSF {
			if sf.IsNonEmpty && len(c.Value) == 0 {
				return fail()
			}
			return ok()
		}
	case TLiteralClassname:
		if cn, isCN := container.(TClassname); isCN {
			return IsContainedBy(cn.As, Single(TNamedObject{Name: c.Name}), allowInterfaceEquality, resolver).intoPlain()
		}
	}

	// Scalar ladder widening in the opposite direction: container can
	// be a wider scalar than a narrower contained primitive.
	switch container.(type) {
	case TArrayKey:
		switch contained.(type) {
		case TInt, TString, TStringWithFlags, TLiteralInt, TLiteralString:
			return ok()
		}
	case TNum:
		switch contained.(type) {
		case TInt, TFloat, TLiteralInt:
			return ok()
		}
	case TScalar:
		switch contained.(type) {
		case TInt, TFloat, TString, TStringWithFlags, TBool, TTrue, TFalse, TArrayKey, TNum, TLiteralInt, TLiteralString:
			return ok()
		}
	case TBool:
		switch contained.(type) {
		case TTrue, TFalse:
			return ok()
		}
	case TString:
		if sf, isSF := contained.(TStringWithFlags); isSF {
			_ = sf
			return ok()
		}
	}

	co, isObj := container.(TNamedObject)
	do, isDo := contained.(TNamedObject)
	if isObj && isDo {
		if _, isTop := container.(TObject); isTop {
			return ok()
		}
		if resolver != nil && (co.Name == do.Name || resolver.IsDescendantOf(do.Name, co.Name)) {
			return containObjectGenerics(co, do, resolver)
		}
		if resolver == nil && allowInterfaceEquality {
			return coerced()
		}
		return fail()
	}
	if _, isTopObj := container.(TObject); isTopObj && isDo {
		return ok()
	}

	if ge, isGen := contained.(TGenericParam); isGen {
		return IsContainedBy(Single(container), ge.As, allowInterfaceEquality, resolver).intoPlain()
	}
	if gc, isGenC := container.(TGenericParam); isGenC {
		return IsContainedBy(gc.As, Single(contained), allowInterfaceEquality, resolver).intoPlain()
	}

	if vc, isVecC := container.(TVec); isVecC {
		if vo, isVecO := contained.(TVec); isVecO {
			return containVec(vc, vo, allowInterfaceEquality, resolver)
		}
	}
	if dc, isDictC := container.(TDict); isDictC {
		if do, isDictO := contained.(TDict); isDictO {
			return containDict(dc, do, allowInterfaceEquality, resolver)
		}
	}
	if kc, isKeysetC := container.(TKeyset); isKeysetC {
		if ko, isKeysetO := contained.(TKeyset); isKeysetO {
			return IsContainedBy(kc.Element, ko.Element, allowInterfaceEquality, resolver)
		}
	}

	if cl, isClosureC := container.(TClosure); isClosureC {
		if co, isClosureO := contained.(TClosure); isClosureO {
			return containClosure(cl, co, allowInterfaceEquality, resolver)
		}
	}

	return fail()
}

func (r ContainmentResult) intoPlain() ContainmentResult { return r }

func containObjectGenerics(co, do TNamedObject, resolver Resolver) ContainmentResult {
	if len(co.TypeParams) == 0 || len(do.TypeParams) == 0 {
		return ok()
	}
	overall := ok()
	n := len(co.TypeParams)
	if len(do.TypeParams) < n {
		n = len(do.TypeParams)
	}
	for i := 0; i < n; i++ {
		// Invariance by default: generic slots are checked both ways
		// unless the defining class declared covariance, which is a
		// codebase-level concern the resolver could expose; absent
		// that richer contract we fall back to invariant comparison,
		// matching the teacher's conservative default in
		// internal/typesystem/unify.go (no coercion without evidence).
		res := IsContainedBy(co.TypeParams[i], do.TypeParams[i], false, resolver)
		if !res.Result {
			return fail()
		}
		if !IsContainedBy(do.TypeParams[i], co.TypeParams[i], false, resolver).Result {
			return fail()
		}
		if res.TypeCoerced {
			overall.TypeCoerced = true
		}
	}
	return overall
}

func containVec(c, o TVec, allowIface bool, resolver Resolver) ContainmentResult {
	return IsContainedBy(c.Element, o.Element, allowIface, resolver)
}

func containDict(c, o TDict, allowIface bool, resolver Resolver) ContainmentResult {
	if c.KeyParam != nil && o.KeyParam != nil {
		kr := IsContainedBy(c.KeyParam, o.KeyParam, allowIface, resolver)
		if !kr.Result {
			return fail()
		}
		vr := IsContainedBy(c.ValueParam, o.ValueParam, allowIface, resolver)
		if !vr.Result {
			return fail()
		}
		return vr
	}
	if c.KnownItems != nil && o.KnownItems != nil {
		for k, ci := range c.KnownItems {
			oi, has := o.KnownItems[k]
			if !has {
				if !ci.PossiblyUndefined {
					return fail()
				}
				continue
			}
			if !ci.PossiblyUndefined && oi.PossiblyUndefined {
				return fail()
			}
			if r := IsContainedBy(ci.Type, oi.Type, allowIface, resolver); !r.Result {
				return fail()
			}
		}
		return ok()
	}
	return fail()
}

func containClosure(c, o TClosure, allowIface bool, resolver Resolver) ContainmentResult {
	if len(c.Params) != len(o.Params) {
		return fail()
	}
	// Parameters are contravariant: the container's accepted parameter
	// types must be *wider* than the candidate's, so containment is
	// checked in the opposite direction from the return type.
	for i := range c.Params {
		if r := IsContainedBy(o.Params[i], c.Params[i], allowIface, resolver); !r.Result {
			return fail()
		}
	}
	return IsContainedBy(c.ReturnType, o.ReturnType, allowIface, resolver)
}

func isDefinitelyTruthy(a Atomic) bool {
	switch v := a.(type) {
	case TTrue:
		return true
	case TLiteralInt:
		return v.Value != 0
	case TLiteralString:
		return v.Value != "" && v.Value != "0"
	case TStringWithFlags:
		return v.IsTruthy || v.IsNonEmpty
	default:
		if mf, ok := AsMixedWithFlags(a); ok {
			return mf.IsTruthy
		}
		return false
	}
}

func isDefinitelyFalsy(a Atomic) bool {
	switch v := a.(type) {
	case TFalse, TNull, TVoid:
		_ = v
		return true
	case TLiteralInt:
		return v.Value == 0
	case TLiteralString:
		return v.Value == "" || v.Value == "0"
	default:
		if mf, ok := AsMixedWithFlags(a); ok {
			return mf.IsFalsy
		}
		return false
	}
}

// CanBeIdentical is the symmetric, weaker test used by narrowing:
// true whenever the intersection of a and b is non-empty.
func CanBeIdentical(a, b *Union, resolver Resolver) bool {
	return !Intersect(a, b, resolver).IsNothing()
}
