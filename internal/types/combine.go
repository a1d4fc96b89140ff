package types

import "sort"

// literalCap is the maximum number of distinct literals of one scalar
// kind (int, string, classname) that combine() will keep before
// collapsing them into the corresponding general scalar. Grounded on
// original_source/src/ttype/type_combiner.rs, which applies the cap
// per-scalar-kind rather than globally across all literals in the union.
const literalCap = 20

// Resolver looks up class-like ancestry for the object-subtyping
// absorption rule (§4.1). Implemented by internal/codebase.Codebase;
// kept as a narrow interface here so internal/types has no dependency
// on internal/codebase (the codebase depends on types, not vice versa).
type Resolver interface {
	// IsDescendantOf reports whether `child` extends/implements `parent`
	// (directly or transitively), including trait use and interface
	// implementation.
	IsDescendantOf(child, parent string) bool
}

// TypeCombination is the accumulator combine() threads through a
// sequence of atomics. Each atomic is absorbed into it by scrape. This
// mirrors the teacher's single-accumulator substitution-building idiom
// in internal/typesystem/unify.go, generalized from "build a Subst" to
// "build a minimal atomic set".
type TypeCombination struct {
	values map[string]Atomic

	// sawMixed / sawTruthyMixed / sawFalsyMixed / sawNonnullMixed track
	// the mixed-family absorption rule: a truthy-mixed plus a
	// falsy-mixed collapses to plain Mixed.
	sawMixed        bool
	sawTruthyMixed  bool
	sawFalsyMixed   bool
	sawNonnullMixed bool

	// anyMixed propagates MixedAny only when every constituent so far
	// was itself MixedAny (or Mixed); a single concrete atomic clears it.
	anyMixed     bool
	sawAnyAtomic bool

	sawTrue  bool
	sawFalse bool
	sawBool  bool

	literalInts        map[int64]TLiteralInt
	literalStrings     map[string]TLiteralString
	literalClassnames  map[string]TLiteralClassname
	sawGeneralInt      bool
	sawGeneralString   bool
	sawGeneralClassname bool

	sawString    bool
	sawInt       bool
	sawFloat     bool
	sawArrayKey  bool
	sawNum       bool
	sawScalar    bool

	dicts   map[string]*combinedDict
	vecs    map[string]*combinedVec
	objects map[string]TNamedObject

	overwriteEmptyArray bool
	resolver            Resolver
}

type combinedDict struct {
	proto TDict
}

type combinedVec struct {
	proto TVec
}

// NewTypeCombination starts an empty accumulator.
func NewTypeCombination(overwriteEmptyArray bool, resolver Resolver) *TypeCombination {
	return &TypeCombination{
		values:              make(map[string]Atomic),
		literalInts:         make(map[int64]TLiteralInt),
		literalStrings:      make(map[string]TLiteralString),
		literalClassnames:   make(map[string]TLiteralClassname),
		dicts:               make(map[string]*combinedDict),
		vecs:                make(map[string]*combinedVec),
		objects:             make(map[string]TNamedObject),
		overwriteEmptyArray: overwriteEmptyArray,
		resolver:            resolver,
	}
}

// Combine takes a sequence of atomics and returns the minimal canonical
// list representing their union (spec.md §4.1). overwriteEmptyArray
// controls whether an empty-shaped container is replaced outright by a
// non-empty one of the same kind (used when combining a known literal
// array with a generic one during loop-widening) rather than unioned.
func Combine(atomics []Atomic, overwriteEmptyArray bool, resolver Resolver) []Atomic {
	tc := NewTypeCombination(overwriteEmptyArray, resolver)
	for _, a := range atomics {
		tc.scrape(a)
	}
	return tc.Finish()
}

// CombineUnion is the Union-returning convenience wrapper used
// everywhere outside this package.
func CombineUnion(atomics []Atomic, overwriteEmptyArray bool, resolver Resolver) *Union {
	return NewUnion(Combine(atomics, overwriteEmptyArray, resolver)...)
}

// scrape absorbs one atomic into the accumulator.
func (tc *TypeCombination) scrape(a Atomic) {
	if mf, ok := AsMixedWithFlags(a); ok {
		tc.sawMixed = true
		tc.sawAnyAtomic = true
		if !tc.sawTruthyMixed && !tc.sawFalsyMixed && !tc.sawNonnullMixed && !tc.anyMixed {
			tc.anyMixed = mf.IsAny
		} else {
			tc.anyMixed = tc.anyMixed && mf.IsAny
		}
		if mf.IsTruthy {
			tc.sawTruthyMixed = true
		} else if mf.IsFalsy {
			tc.sawFalsyMixed = true
		} else if mf.IsNonNull {
			tc.sawNonnullMixed = true
		}
		return
	}
	tc.sawAnyAtomic = true
	tc.anyMixed = false

	switch v := a.(type) {
	case TNothing:
		// Nothing elimination: dropped unless it is the only atomic
		// ever scraped. We detect "only atomic" in Finish by checking
		// whether anything else was ever recorded.
		return

	case TTrue:
		tc.sawTrue = true
	case TFalse:
		tc.sawFalse = true
	case TBool:
		tc.sawBool = true

	case TLiteralInt:
		tc.literalInts[v.Value] = v
	case TLiteralString:
		tc.literalStrings[v.Value] = v
	case TLiteralClassname:
		tc.literalClassnames[v.Name] = v

	case TInt:
		tc.sawGeneralInt = true
		tc.sawInt = true
	case TString:
		tc.sawGeneralString = true
		tc.sawString = true
	case TStringWithFlags:
		tc.sawString = true
		tc.values[v.Key()] = v
	case TFloat:
		tc.sawFloat = true
	case TArrayKey:
		tc.sawArrayKey = true
	case TNum:
		tc.sawNum = true
	case TScalar:
		tc.sawScalar = true

	case TDict:
		tc.scrapeDict(v)
	case TVec:
		tc.scrapeVec(v)

	case TNamedObject:
		tc.scrapeObject(v)

	default:
		tc.values[a.Key()] = a
	}
}

func (tc *TypeCombination) scrapeDict(v TDict) {
	bucket := v.ShapeName
	existing, ok := tc.dicts[bucket]
	if !ok {
		cp := v
		tc.dicts[bucket] = &combinedDict{proto: cp}
		return
	}
	existing.proto = mergeDicts(existing.proto, v, tc)
}

// mergeDicts implements the §4.1 "two dicts" merge rule: union params
// pointwise; union known_items by key, OR-ing possibly_undefined and
// marking a key possibly-undefined if it is missing on the other side
// and that side has no general params to fall back on.
func mergeDicts(a, b TDict, tc *TypeCombination) TDict {
	out := TDict{}
	if a.ShapeName != "" && a.ShapeName == b.ShapeName {
		out.ShapeName = a.ShapeName
	}
	if a.KeyParam != nil || b.KeyParam != nil {
		out.KeyParam = unionOf(a.KeyParam, b.KeyParam, tc)
		out.ValueParam = unionOf(a.ValueParam, b.ValueParam, tc)
	}
	if a.KnownItems != nil || b.KnownItems != nil {
		out.KnownItems = make(map[DictKey]KnownItem)
		seen := make(map[DictKey]bool)
		for k, ai := range a.KnownItems {
			seen[k] = true
			if bi, ok := b.KnownItems[k]; ok {
				out.KnownItems[k] = KnownItem{
					PossiblyUndefined: ai.PossiblyUndefined || bi.PossiblyUndefined,
					Type:              unionOf(ai.Type, bi.Type, tc),
				}
			} else {
				undef := ai.PossiblyUndefined || b.ValueParam == nil
				out.KnownItems[k] = KnownItem{PossiblyUndefined: undef, Type: ai.Type}
			}
		}
		for k, bi := range b.KnownItems {
			if seen[k] {
				continue
			}
			undef := bi.PossiblyUndefined || a.ValueParam == nil
			out.KnownItems[k] = KnownItem{PossiblyUndefined: undef, Type: bi.Type}
		}
	}
	out.NonEmpty = a.NonEmpty && b.NonEmpty
	if tc.overwriteEmptyArray {
		if !a.NonEmpty && b.NonEmpty {
			return b
		}
		if !b.NonEmpty && a.NonEmpty {
			return a
		}
	}
	return out
}

func (tc *TypeCombination) scrapeVec(v TVec) {
	const bucket = ""
	existing, ok := tc.vecs[bucket]
	if !ok {
		cp := v
		tc.vecs[bucket] = &combinedVec{proto: cp}
		return
	}
	existing.proto = mergeVecs(existing.proto, v, tc)
}

func mergeVecs(a, b TVec, tc *TypeCombination) TVec {
	out := TVec{Element: unionOf(a.Element, b.Element, tc)}
	if a.KnownItems != nil || b.KnownItems != nil {
		out.KnownItems = make(map[int]KnownItem)
		seen := make(map[int]bool)
		for k, ai := range a.KnownItems {
			seen[k] = true
			if bi, ok := b.KnownItems[k]; ok {
				out.KnownItems[k] = KnownItem{
					PossiblyUndefined: ai.PossiblyUndefined || bi.PossiblyUndefined,
					Type:              unionOf(ai.Type, bi.Type, tc),
				}
			} else {
				out.KnownItems[k] = KnownItem{PossiblyUndefined: true, Type: ai.Type}
			}
		}
		for k, bi := range b.KnownItems {
			if seen[k] {
				continue
			}
			out.KnownItems[k] = KnownItem{PossiblyUndefined: true, Type: bi.Type}
		}
	}
	out.NonEmpty = a.NonEmpty && b.NonEmpty
	if tc.overwriteEmptyArray {
		if !a.NonEmpty && b.NonEmpty {
			return b
		}
		if !b.NonEmpty && a.NonEmpty {
			return a
		}
	}
	return out
}

func unionOf(a, b *Union, tc *TypeCombination) *Union {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return CombineUnion(append(append([]Atomic{}, a.Atomics()...), b.Atomics()...), tc.overwriteEmptyArray, tc.resolver)
}

// scrapeObject implements the §4.1 object-subtyping absorption rule: a
// named object B that extends/implements an already-present A is
// absorbed into A; adding A while B is already present removes B.
// Without a resolver the two objects are kept side by side (the
// reconciler degrades gracefully per spec.md §7).
func (tc *TypeCombination) scrapeObject(v TNamedObject) {
	if tc.resolver == nil {
		tc.objects[v.Key()] = v
		return
	}
	for existingKey, existing := range tc.objects {
		if existing.Name == v.Name {
			continue
		}
		if tc.resolver.IsDescendantOf(v.Name, existing.Name) {
			// v is absorbed into the already-present ancestor.
			return
		}
		if tc.resolver.IsDescendantOf(existing.Name, v.Name) {
			// v is an ancestor of an already-present descendant: drop
			// the descendant, keep v.
			delete(tc.objects, existingKey)
		}
	}
	tc.objects[v.Key()] = v
}

// Finish drains the accumulator into the minimal canonical atomic list.
func (tc *TypeCombination) Finish() []Atomic {
	var out []Atomic

	if tc.sawMixed {
		switch {
		case tc.sawTruthyMixed && tc.sawFalsyMixed:
			out = append(out, TMixed{})
		case tc.sawTruthyMixed:
			out = append(out, TTruthyMixed{})
		case tc.sawFalsyMixed:
			out = append(out, TFalsyMixed{})
		case tc.sawNonnullMixed:
			out = append(out, TNonnullMixed{})
		case tc.anyMixed:
			out = append(out, TMixedAny{})
		default:
			out = append(out, TMixed{})
		}
		// Mixed absorbs every other value-level atomic accumulated so far.
		return sortAtomics(out)
	}

	// Bool unification: true|false => bool; false|bool (or true|bool) => bool.
	if tc.sawBool || (tc.sawTrue && tc.sawFalse) {
		out = append(out, TBool{})
	} else if tc.sawTrue {
		out = append(out, TTrue{})
	} else if tc.sawFalse {
		out = append(out, TFalse{})
	}

	intFromLiterals := tc.finishLiteralInts(&out)
	stringFromLiterals := tc.finishLiteralStrings(&out)
	tc.finishLiteralClassnames(&out)

	hasInt := tc.sawGeneralInt || tc.sawInt || intFromLiterals
	hasString := tc.sawGeneralString || tc.sawString || stringFromLiterals
	hasFloat := tc.sawFloat
	hasArrayKey := tc.sawArrayKey
	hasNum := tc.sawNum
	hasScalar := tc.sawScalar
	hasBoolLike := tc.sawBool || tc.sawTrue || tc.sawFalse

	// Scalar ladder: string|int => arraykey; int|float => num;
	// arraykey|num|bool => scalar. Applied bottom-up so the widest
	// absorbing type wins and narrower pieces are removed.
	if hasInt && hasFloat {
		hasNum = true
		hasInt, hasFloat = false, false
	}
	if hasString && hasInt {
		hasArrayKey = true
		hasString, hasInt = false, false
	}
	if hasArrayKey && hasNum && hasBoolLike && !tc.sawTrue && !tc.sawFalse {
		hasScalar = true
		hasArrayKey, hasNum, hasBoolLike = false, false, false
	}

	if hasScalar {
		out = append(out, TScalar{})
	}
	if hasArrayKey {
		out = append(out, TArrayKey{})
	}
	if hasNum {
		out = append(out, TNum{})
	}
	if hasInt && !intFromLiterals {
		out = append(out, TInt{})
	} else if hasInt && intFromLiterals && tc.sawGeneralInt {
		out = append(out, TInt{})
	}
	if hasFloat {
		out = append(out, TFloat{})
	}
	if hasString && !stringFromLiterals {
		out = append(out, TString{})
	} else if hasString && stringFromLiterals && tc.sawGeneralString {
		out = append(out, TString{})
	}

	for _, v := range tc.values {
		out = append(out, v)
	}
	for _, d := range tc.dicts {
		out = append(out, d.proto)
	}
	for _, v := range tc.vecs {
		out = append(out, v.proto)
	}
	for _, o := range tc.objects {
		out = append(out, o)
	}

	if len(out) == 0 {
		if tc.sawAnyAtomic {
			// Everything scraped was Nothing and nothing else: Nothing
			// is the only type, so the result is [Nothing].
			return []Atomic{TNothing{}}
		}
		return nil
	}

	return sortAtomics(out)
}

// finishLiteralInts applies the literal cap and appends either the
// surviving literals or a collapsed TInt to out. Returns true if any
// int-shaped atomic (literal or collapsed) was produced.
func (tc *TypeCombination) finishLiteralInts(out *[]Atomic) bool {
	if len(tc.literalInts) == 0 {
		return false
	}
	if len(tc.literalInts) > literalCap {
		tc.sawGeneralInt = true
		return true
	}
	keys := make([]int64, 0, len(tc.literalInts))
	for k := range tc.literalInts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		*out = append(*out, tc.literalInts[k])
	}
	return true
}

func (tc *TypeCombination) finishLiteralStrings(out *[]Atomic) bool {
	if len(tc.literalStrings) == 0 {
		return false
	}
	if len(tc.literalStrings) > literalCap {
		tc.sawGeneralString = true
		return true
	}
	keys := make([]string, 0, len(tc.literalStrings))
	for k := range tc.literalStrings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		*out = append(*out, tc.literalStrings[k])
	}
	return true
}

func (tc *TypeCombination) finishLiteralClassnames(out *[]Atomic) {
	if len(tc.literalClassnames) == 0 {
		return
	}
	if len(tc.literalClassnames) > literalCap {
		// No general "classname" scalar exists to collapse into;
		// classnames instead widen to TObject per the same
		// "too many literals" pressure-relief principle.
		*out = append(*out, TObject{})
		return
	}
	keys := make([]string, 0, len(tc.literalClassnames))
	for k := range tc.literalClassnames {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		*out = append(*out, tc.literalClassnames[k])
	}
}

func sortAtomics(atoms []Atomic) []Atomic {
	sort.Slice(atoms, func(i, j int) bool { return atoms[i].Key() < atoms[j].Key() })
	return atoms
}
