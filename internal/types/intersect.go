package types

// Intersect returns the subtype of a containing exactly the runtime
// values also described by b. It underlies the reconciler's `InArray`
// and `Type` assertions, and CanBeIdentical.
func Intersect(a, b *Union, resolver Resolver) *Union {
	if a == nil || b == nil {
		return NewUnion()
	}
	var out []Atomic
	for _, x := range a.Atomics() {
		for _, y := range b.Atomics() {
			if at := intersectAtomic(x, y, resolver); at != nil {
				out = append(out, at)
			}
		}
	}
	return CombineUnion(out, false, resolver)
}

// intersectAtomic returns the intersection of two atomics, or nil if
// disjoint. It is deliberately conservative: when it cannot prove the
// pair overlaps it returns nil rather than guessing, which only ever
// makes Intersect *more* eager to report impossibility — matching the
// reconciler's soundness requirement (narrowing never widens).
func intersectAtomic(x, y Atomic, resolver Resolver) Atomic {
	if x.Key() == y.Key() {
		return x
	}
	if _, ok := AsMixedWithFlags(x); ok {
		return y
	}
	if _, ok := AsMixedWithFlags(y); ok {
		return x
	}
	if IsContainedBy(Single(y), Single(x), true, resolver).Result {
		return x
	}
	if IsContainedBy(Single(x), Single(y), true, resolver).Result {
		return y
	}

	switch xv := x.(type) {
	case TLiteralInt:
		if _, ok := y.(TInt); ok {
			return xv
		}
	case TLiteralString:
		if _, ok := y.(TString); ok {
			return xv
		}
	case TInt:
		if lv, ok := y.(TLiteralInt); ok {
			return lv
		}
	case TString:
		if lv, ok := y.(TLiteralString); ok {
			return lv
		}
	case TNamedObject:
		if yo, ok := y.(TNamedObject); ok && resolver != nil {
			if resolver.IsDescendantOf(xv.Name, yo.Name) {
				return xv
			}
			if resolver.IsDescendantOf(yo.Name, xv.Name) {
				return yo
			}
		}
	}
	return nil
}

// Subtract removes every runtime value described by b from a. Used by
// the reconciler's NotType/Falsy/negated-assertion cases and by
// HasNonnullEntryForKey, which subtracts Null from a slot's union.
func Subtract(a, b *Union, resolver Resolver) *Union {
	if a == nil {
		return NewUnion()
	}
	var out []Atomic
	for _, x := range a.Atomics() {
		if subtractedAway(x, b, resolver) {
			continue
		}
		out = append(out, x)
	}
	if len(out) == 0 {
		return NewUnion(TNothing{})
	}
	return CombineUnion(out, false, resolver)
}

func subtractedAway(x Atomic, b *Union, resolver Resolver) bool {
	for _, y := range b.Atomics() {
		if x.Key() == y.Key() {
			return true
		}
		if IsContainedBy(Single(y), Single(x), true, resolver).Result {
			return true
		}
	}
	return false
}
