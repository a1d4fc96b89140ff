// Package types implements the analyzer's type lattice: atomic types,
// unions over atomics, and the combine/intersect/subtract/contains
// operations the reconciler and expression analyzer are built on top of.
//
// Adding a new atomic case means revisiting every type switch over
// Atomic in this package (and in internal/reconciler, internal/analyzer).
// Go does not check those switches for exhaustiveness, and several end
// in a default branch that passes an unhandled atomic through unchanged
// or panics, so a missing case is not caught at compile time.
package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vetta-lang/vetta/internal/intern"
)

// Atomic is a single shape in the lattice, never a disjunction. Two
// atomics with the same Key can never coexist inside one Union.
type Atomic interface {
	// Key returns the canonical string used to deduplicate atomics
	// inside a Union and to index combination accumulators.
	Key() string
	// String renders the atomic the way it would appear in a type
	// signature or diagnostic message.
	String() string
	isAtomic()
}

// ---- primitives -----------------------------------------------------

type (
	TInt      struct{}
	TFloat    struct{}
	TString   struct{}
	TBool     struct{}
	TTrue     struct{}
	TFalse    struct{}
	TNull     struct{}
	TNothing  struct{} // bottom
	TVoid     struct{}
	TArrayKey struct{} // int|string
	TNum      struct{} // int|float
	TScalar   struct{} // string|int|float|bool
)

func (TInt) isAtomic()      {}
func (TFloat) isAtomic()    {}
func (TString) isAtomic()   {}
func (TBool) isAtomic()     {}
func (TTrue) isAtomic()     {}
func (TFalse) isAtomic()    {}
func (TNull) isAtomic()     {}
func (TNothing) isAtomic()  {}
func (TVoid) isAtomic()     {}
func (TArrayKey) isAtomic() {}
func (TNum) isAtomic()      {}
func (TScalar) isAtomic()   {}

func (TInt) Key() string      { return "int" }
func (TFloat) Key() string    { return "float" }
func (TString) Key() string   { return "string" }
func (TBool) Key() string     { return "bool" }
func (TTrue) Key() string     { return "true" }
func (TFalse) Key() string    { return "false" }
func (TNull) Key() string     { return "null" }
func (TNothing) Key() string  { return "nothing" }
func (TVoid) Key() string     { return "void" }
func (TArrayKey) Key() string { return "arraykey" }
func (TNum) Key() string      { return "num" }
func (TScalar) Key() string   { return "scalar" }

func (a TInt) String() string      { return a.Key() }
func (a TFloat) String() string    { return a.Key() }
func (a TString) String() string   { return a.Key() }
func (a TBool) String() string     { return a.Key() }
func (a TTrue) String() string     { return a.Key() }
func (a TFalse) String() string    { return a.Key() }
func (a TNull) String() string     { return a.Key() }
func (a TNothing) String() string  { return a.Key() }
func (a TVoid) String() string     { return a.Key() }
func (a TArrayKey) String() string { return a.Key() }
func (a TNum) String() string      { return a.Key() }
func (a TScalar) String() string   { return a.Key() }

// ---- mixed family -----------------------------------------------------

// TMixed is the top type: every value-level atomic is contained by it.
type TMixed struct{}

func (TMixed) isAtomic()      {}
func (TMixed) Key() string    { return "mixed" }
func (a TMixed) String() string { return a.Key() }

// TMixedAny is Mixed inferred from unchecked code (e.g. an untyped
// parameter in a non-strict file). It behaves like Mixed for
// containment purposes but is flagged so coercion reporting can tell
// "really mixed" from "mixed because we gave up".
type TMixedAny struct{}

func (TMixedAny) isAtomic()      {}
func (TMixedAny) Key() string    { return "mixed~any" }
func (a TMixedAny) String() string { return "mixed" }

// TMixedFromLoopIsset marks the widened type a variable gets when
// IsIsset is reconciled against Nothing inside a loop (the variable may
// have been set by a prior iteration).
type TMixedFromLoopIsset struct{}

func (TMixedFromLoopIsset) isAtomic()        {}
func (TMixedFromLoopIsset) Key() string      { return "mixed~loopisset" }
func (a TMixedFromLoopIsset) String() string { return "mixed" }

// TNonnullMixed is Mixed known not to be null.
type TNonnullMixed struct{}

func (TNonnullMixed) isAtomic()        {}
func (TNonnullMixed) Key() string      { return "mixed~nonnull" }
func (a TNonnullMixed) String() string { return "nonnull" }

// TTruthyMixed is Mixed known to be truthy.
type TTruthyMixed struct{}

func (TTruthyMixed) isAtomic()        {}
func (TTruthyMixed) Key() string      { return "mixed~truthy" }
func (a TTruthyMixed) String() string { return "truthy-mixed" }

// TFalsyMixed is Mixed known to be falsy.
type TFalsyMixed struct{}

func (TFalsyMixed) isAtomic()        {}
func (TFalsyMixed) Key() string      { return "mixed~falsy" }
func (a TFalsyMixed) String() string { return "falsy-mixed" }

// TMixedWithFlags is the general refined-mixed case the other mixed
// variants are convenience constructors for.
type TMixedWithFlags struct {
	IsAny     bool
	IsTruthy  bool
	IsFalsy   bool
	IsNonNull bool
}

func (TMixedWithFlags) isAtomic() {}

func (a TMixedWithFlags) Key() string {
	return fmt.Sprintf("mixed~f(%v,%v,%v,%v)", a.IsAny, a.IsTruthy, a.IsFalsy, a.IsNonNull)
}

func (a TMixedWithFlags) String() string {
	switch {
	case a.IsTruthy:
		return "truthy-mixed"
	case a.IsFalsy:
		return "falsy-mixed"
	case a.IsNonNull:
		return "nonnull"
	default:
		return "mixed"
	}
}

// AsMixedWithFlags normalizes any mixed-family atomic into the general
// flagged form, so combination and reconciliation can treat the family
// uniformly instead of re-deriving the same switch everywhere.
func AsMixedWithFlags(a Atomic) (TMixedWithFlags, bool) {
	switch v := a.(type) {
	case TMixed:
		return TMixedWithFlags{}, true
	case TMixedAny:
		return TMixedWithFlags{IsAny: true}, true
	case TMixedFromLoopIsset:
		return TMixedWithFlags{}, true
	case TNonnullMixed:
		return TMixedWithFlags{IsNonNull: true}, true
	case TTruthyMixed:
		return TMixedWithFlags{IsTruthy: true, IsNonNull: true}, true
	case TFalsyMixed:
		return TMixedWithFlags{IsFalsy: true}, true
	case TMixedWithFlags:
		return v, true
	default:
		return TMixedWithFlags{}, false
	}
}

// IsMixedFamily reports whether a belongs to the mixed family.
func IsMixedFamily(a Atomic) bool {
	_, ok := AsMixedWithFlags(a)
	return ok
}

// ---- literals ---------------------------------------------------------

type TLiteralInt struct{ Value int64 }
type TLiteralString struct{ Value string }
type TLiteralClassname struct{ NameID intern.ID; Name string }

func (TLiteralInt) isAtomic()       {}
func (TLiteralString) isAtomic()    {}
func (TLiteralClassname) isAtomic() {}

func (a TLiteralInt) Key() string       { return "int(" + strconv.FormatInt(a.Value, 10) + ")" }
func (a TLiteralString) Key() string    { return "string(" + a.Value + ")" }
func (a TLiteralClassname) Key() string { return "classname<" + a.Name + ">" }

func (a TLiteralInt) String() string       { return strconv.FormatInt(a.Value, 10) }
func (a TLiteralString) String() string    { return strconv.Quote(a.Value) }
func (a TLiteralClassname) String() string { return "classname<" + a.Name + ">" }

// ---- refined strings ----------------------------------------------------

// TStringWithFlags is a string refined along truthy/non-empty/literal axes.
type TStringWithFlags struct {
	IsTruthy            bool
	IsNonEmpty          bool
	IsNonspecificLiteral bool
}

func (TStringWithFlags) isAtomic() {}

func (a TStringWithFlags) Key() string {
	return fmt.Sprintf("string~f(%v,%v,%v)", a.IsTruthy, a.IsNonEmpty, a.IsNonspecificLiteral)
}

func (a TStringWithFlags) String() string {
	if a.IsNonEmpty {
		return "non-empty-string"
	}
	if a.IsTruthy {
		return "truthy-string"
	}
	return "string"
}

// ---- containers ---------------------------------------------------------

// KnownItem is one statically-known slot of a Vec or Dict.
type KnownItem struct {
	PossiblyUndefined bool
	Type              *Union
}

// DictKeyKind discriminates DictKey variants.
type DictKeyKind int

const (
	DictKeyInt DictKeyKind = iota
	DictKeyString
	DictKeyEnum
)

// DictKey is a statically-known dict key: Int(u32) | String(text) | Enum(enum_id, member_id).
type DictKey struct {
	Kind      DictKeyKind
	IntVal    uint32
	StringVal string
	EnumName  string
	MemberName string
}

func (k DictKey) String() string {
	switch k.Kind {
	case DictKeyInt:
		return strconv.FormatUint(uint64(k.IntVal), 10)
	case DictKeyString:
		return strconv.Quote(k.StringVal)
	case DictKeyEnum:
		return k.EnumName + "::" + k.MemberName
	default:
		panic("types: unhandled DictKeyKind")
	}
}

func (k DictKey) less(o DictKey) bool { return k.String() < o.String() }

// TVec is a vector/array-like container.
type TVec struct {
	Element     *Union
	KnownItems  map[int]KnownItem // nil if unknown
	NonEmpty    bool
	KnownCount  *int
}

func (TVec) isAtomic() {}

func (a TVec) Key() string {
	if a.KnownItems != nil {
		keys := make([]int, 0, len(a.KnownItems))
		for k := range a.KnownItems {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		var sb strings.Builder
		sb.WriteString("vec{")
		for _, k := range keys {
			item := a.KnownItems[k]
			fmt.Fprintf(&sb, "%d:%v:%s,", k, item.PossiblyUndefined, item.Type.Key())
		}
		sb.WriteString("}")
		return sb.String()
	}
	return "vec<" + a.Element.Key() + ">"
}

func (a TVec) String() string {
	if a.KnownItems != nil {
		return a.Key()
	}
	return "vec<" + a.Element.String() + ">"
}

// TDict is a map-like container, optionally shaped (known_items) and/or
// named (shape_name).
type TDict struct {
	KeyParam   *Union // nil when KnownItems fully describes the shape
	ValueParam *Union
	KnownItems map[DictKey]KnownItem
	NonEmpty   bool
	ShapeName  string // "" if unnamed
}

func (TDict) isAtomic() {}

func (a TDict) sortedKnownKeys() []DictKey {
	keys := make([]DictKey, 0, len(a.KnownItems))
	for k := range a.KnownItems {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}

func (a TDict) Key() string {
	var sb strings.Builder
	sb.WriteString("dict")
	if a.ShapeName != "" {
		sb.WriteString("#")
		sb.WriteString(a.ShapeName)
	}
	if a.KnownItems != nil {
		sb.WriteString("{")
		for _, k := range a.sortedKnownKeys() {
			item := a.KnownItems[k]
			fmt.Fprintf(&sb, "%s:%v:%s,", k.String(), item.PossiblyUndefined, item.Type.Key())
		}
		sb.WriteString("}")
	}
	if a.KeyParam != nil && a.ValueParam != nil {
		fmt.Fprintf(&sb, "<%s,%s>", a.KeyParam.Key(), a.ValueParam.Key())
	}
	return sb.String()
}

func (a TDict) String() string {
	if a.ShapeName != "" {
		return a.ShapeName
	}
	if a.KeyParam != nil && a.ValueParam != nil {
		return "dict<" + a.KeyParam.String() + "," + a.ValueParam.String() + ">"
	}
	return "dict<nothing,nothing>"
}

// TKeyset is a set-like container of scalar elements.
type TKeyset struct{ Element *Union }

func (TKeyset) isAtomic()   {}
func (a TKeyset) Key() string    { return "keyset<" + a.Element.Key() + ">" }
func (a TKeyset) String() string { return "keyset<" + a.Element.String() + ">" }

// ---- objects ---------------------------------------------------------

// TNamedObject is a class/interface instance, optionally generic.
type TNamedObject struct {
	Name           string
	TypeParams     []*Union // nil if not generic / not yet resolved
	IsThis         bool     // the `this` return-type-narrowing marker
	ExtraTypes     []TNamedObject
	RemappedParams bool
}

func (TNamedObject) isAtomic() {}

func (a TNamedObject) Key() string {
	var sb strings.Builder
	sb.WriteString(a.Name)
	if len(a.TypeParams) > 0 {
		sb.WriteString("<")
		for i, p := range a.TypeParams {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(p.Key())
		}
		sb.WriteString(">")
	}
	if a.IsThis {
		sb.WriteString("&this")
	}
	for _, e := range a.ExtraTypes {
		sb.WriteString("&")
		sb.WriteString(e.Key())
	}
	return sb.String()
}

func (a TNamedObject) String() string {
	if len(a.TypeParams) == 0 {
		return a.Name
	}
	parts := make([]string, len(a.TypeParams))
	for i, p := range a.TypeParams {
		parts[i] = p.String()
	}
	return a.Name + "<" + strings.Join(parts, ",") + ">"
}

// TObject is the top object type.
type TObject struct{}

func (TObject) isAtomic()      {}
func (TObject) Key() string    { return "object" }
func (a TObject) String() string { return "object" }

// TClassname is `classname<T>`, a string known to name a class assignable to T.
type TClassname struct{ As *Union }

func (TClassname) isAtomic()      {}
func (a TClassname) Key() string    { return "classname<" + a.As.Key() + ">" }
func (a TClassname) String() string { return "classname<" + a.As.String() + ">" }

// TTypename is `typename<T>`, the type-alias analog of TClassname.
type TTypename struct{ As *Union }

func (TTypename) isAtomic()      {}
func (a TTypename) Key() string    { return "typename<" + a.As.Key() + ">" }
func (a TTypename) String() string { return "typename<" + a.As.String() + ">" }

// ---- enums ---------------------------------------------------------

type TEnum struct{ Name string }

func (TEnum) isAtomic()      {}
func (a TEnum) Key() string    { return "enum:" + a.Name }
func (a TEnum) String() string { return a.Name }

// TEnumLiteralCase is one specific enum case, e.g. `Suit::Hearts`.
type TEnumLiteralCase struct {
	EnumName       string
	MemberName     string
	ConstraintType *Union
}

func (TEnumLiteralCase) isAtomic() {}
func (a TEnumLiteralCase) Key() string {
	return "enum:" + a.EnumName + "::" + a.MemberName
}
func (a TEnumLiteralCase) String() string { return a.EnumName + "::" + a.MemberName }

// ---- callables ---------------------------------------------------------

// ClosureEffects is the effects bitmask a closure is declared or
// inferred to have (see internal/analyzer for the bitmask definition
// this mirrors).
type ClosureEffects uint8

type TClosure struct {
	Params     []*Union
	ReturnType *Union
	Effects    ClosureEffects
}

func (TClosure) isAtomic() {}

func (a TClosure) Key() string {
	parts := make([]string, len(a.Params))
	for i, p := range a.Params {
		parts[i] = p.Key()
	}
	return "(function(" + strings.Join(parts, ",") + "):" + a.ReturnType.Key() + ")"
}

func (a TClosure) String() string {
	parts := make([]string, len(a.Params))
	for i, p := range a.Params {
		parts[i] = p.String()
	}
	return "(function(" + strings.Join(parts, ",") + "): " + a.ReturnType.String() + ")"
}

// ---- generics & aliases ---------------------------------------------

// TGenericParam is a class or function template parameter, e.g. `T`
// bound by `as_type` and anchored to the class/function that declared it.
type TGenericParam struct {
	Name           string
	As             *Union
	DefiningEntity string
}

func (TGenericParam) isAtomic() {}
func (a TGenericParam) Key() string {
	return "genparam:" + a.DefiningEntity + ":" + a.Name
}
func (a TGenericParam) String() string { return a.Name }

// TTypeAlias is an unexpanded reference to a `type Foo<T> = ...` definition.
// Expansion (internal/types expander.go) is the sole place aliases unfold;
// combination never unfolds them.
type TTypeAlias struct {
	Name       string
	TypeParams []*Union
	As         *Union
}

func (TTypeAlias) isAtomic() {}
func (a TTypeAlias) Key() string {
	if len(a.TypeParams) == 0 {
		return "alias:" + a.Name
	}
	parts := make([]string, len(a.TypeParams))
	for i, p := range a.TypeParams {
		parts[i] = p.Key()
	}
	return "alias:" + a.Name + "<" + strings.Join(parts, ",") + ">"
}
func (a TTypeAlias) String() string { return a.Name }
