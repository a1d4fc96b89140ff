package types

// ExpansionContext carries the substitutions a single expansion call
// needs: the concrete receiver for `self`/`parent`/`static`, and the
// class/function generic-parameter bindings currently in scope. It is
// deliberately small and value-typed (grounded on the teacher's Subst
// map idiom in internal/typesystem/unify.go) so callers can build one
// per call site cheaply.
type ExpansionContext struct {
	SelfClass   string
	ParentClass string
	StaticClass string // the actual receiver at this call site

	// GenericArgs maps "DefiningEntity:Name" (TGenericParam.Key without
	// its "genparam:" prefix) to the concrete union it should expand to.
	GenericArgs map[string]*Union

	// AliasResolver looks up a type alias's `as_type`, substituting its
	// own type parameters first. Expansion is the sole place aliases
	// are unfolded (combination never unfolds them, per spec.md §4.7).
	AliasResolver AliasResolver
}

// AliasResolver resolves a TTypeAlias to its expansion.
type AliasResolver interface {
	ResolveAlias(name string, typeParams []*Union) (*Union, bool)
}

// Expand replaces self/parent/static, generic parameters, and type
// aliases throughout u. Expanding a closed (no template, no alias, no
// self/parent/static) union returns an equal union unchanged; expansion
// is idempotent (expanding an already-expanded union is a no-op).
func Expand(u *Union, ctx ExpansionContext) *Union {
	if u == nil {
		return nil
	}
	var out []Atomic
	changed := false
	for _, a := range u.Atomics() {
		ea, didChange := expandAtomic(a, ctx)
		changed = changed || didChange
		out = append(out, ea...)
	}
	if !changed {
		return u
	}
	result := CombineUnion(out, false, nil)
	result.ParentNodes = u.ParentNodes
	return result
}

func expandAtomic(a Atomic, ctx ExpansionContext) ([]Atomic, bool) {
	switch v := a.(type) {
	case TNamedObject:
		name := v.Name
		changed := false
		switch name {
		case "self":
			if ctx.SelfClass != "" {
				name = ctx.SelfClass
				changed = true
			}
		case "parent":
			if ctx.ParentClass != "" {
				name = ctx.ParentClass
				changed = true
			}
		case "static":
			if ctx.StaticClass != "" {
				name = ctx.StaticClass
				changed = true
			}
		}
		if v.TypeParams == nil {
			if changed {
				return []Atomic{TNamedObject{Name: name, IsThis: v.IsThis, ExtraTypes: v.ExtraTypes}}, true
			}
			return []Atomic{v}, false
		}
		newParams := make([]*Union, len(v.TypeParams))
		paramsChanged := false
		for i, p := range v.TypeParams {
			ep := Expand(p, ctx)
			if ep != p {
				paramsChanged = true
			}
			newParams[i] = ep
		}
		if !changed && !paramsChanged {
			return []Atomic{v}, false
		}
		return []Atomic{TNamedObject{Name: name, TypeParams: newParams, IsThis: v.IsThis, ExtraTypes: v.ExtraTypes}}, true

	case TGenericParam:
		key := v.DefiningEntity + ":" + v.Name
		if ctx.GenericArgs != nil {
			if bound, ok := ctx.GenericArgs[key]; ok {
				return append([]Atomic{}, bound.Atomics()...), true
			}
		}
		expandedAs := Expand(v.As, ctx)
		if expandedAs != v.As {
			return []Atomic{TGenericParam{Name: v.Name, As: expandedAs, DefiningEntity: v.DefiningEntity}}, true
		}
		return []Atomic{v}, false

	case TTypeAlias:
		newParams := make([]*Union, len(v.TypeParams))
		for i, p := range v.TypeParams {
			newParams[i] = Expand(p, ctx)
		}
		if ctx.AliasResolver != nil {
			if resolved, ok := ctx.AliasResolver.ResolveAlias(v.Name, newParams); ok {
				expanded := Expand(resolved, ctx)
				return append([]Atomic{}, expanded.Atomics()...), true
			}
		}
		return []Atomic{TTypeAlias{Name: v.Name, TypeParams: newParams, As: v.As}}, true

	case TVec:
		newElem := Expand(v.Element, ctx)
		if newElem == v.Element {
			return []Atomic{v}, false
		}
		cp := v
		cp.Element = newElem
		return []Atomic{cp}, true

	case TDict:
		changed := false
		cp := v
		if v.KeyParam != nil {
			cp.KeyParam = Expand(v.KeyParam, ctx)
			cp.ValueParam = Expand(v.ValueParam, ctx)
			changed = cp.KeyParam != v.KeyParam || cp.ValueParam != v.ValueParam
		}
		if v.KnownItems != nil {
			newItems := make(map[DictKey]KnownItem, len(v.KnownItems))
			for k, item := range v.KnownItems {
				nt := Expand(item.Type, ctx)
				if nt != item.Type {
					changed = true
				}
				newItems[k] = KnownItem{PossiblyUndefined: item.PossiblyUndefined, Type: nt}
			}
			cp.KnownItems = newItems
		}
		return []Atomic{cp}, changed

	case TKeyset:
		newElem := Expand(v.Element, ctx)
		if newElem == v.Element {
			return []Atomic{v}, false
		}
		return []Atomic{TKeyset{Element: newElem}}, true

	case TClosure:
		changed := false
		newParams := make([]*Union, len(v.Params))
		for i, p := range v.Params {
			np := Expand(p, ctx)
			if np != p {
				changed = true
			}
			newParams[i] = np
		}
		newRet := Expand(v.ReturnType, ctx)
		if newRet != v.ReturnType {
			changed = true
		}
		if !changed {
			return []Atomic{v}, false
		}
		return []Atomic{TClosure{Params: newParams, ReturnType: newRet, Effects: v.Effects}}, true

	case TClassname:
		newAs := Expand(v.As, ctx)
		if newAs == v.As {
			return []Atomic{v}, false
		}
		return []Atomic{TClassname{As: newAs}}, true

	case TTypename:
		newAs := Expand(v.As, ctx)
		if newAs == v.As {
			return []Atomic{v}, false
		}
		return []Atomic{TTypename{As: newAs}}, true

	default:
		return []Atomic{a}, false
	}
}
