// Package codebase holds the process-wide, immutable-after-build model
// of every symbol in the analyzed tree: function signatures, class-like
// definitions, type aliases, constants, descendant relations and
// overridden-method tables (spec.md §3 "Codebase").
//
// A Codebase is built once per run by the scanner (internal/scanner),
// frozen, and then shared read-only by every analyzer worker
// (internal/analyzer) — see spec.md §5. There is no ambient global: every
// analyzer function that needs codebase facts takes a *Codebase
// parameter explicitly (spec.md §9 "Global codebase").
package codebase

import (
	"sort"
	"sync"

	"github.com/vetta-lang/vetta/internal/intern"
	"github.com/vetta-lang/vetta/internal/types"
)

// SymbolKind discriminates what AllSymbols maps a name to.
type SymbolKind int

const (
	SymbolUnknown SymbolKind = iota
	SymbolFunction
	SymbolClass
	SymbolInterface
	SymbolTrait
	SymbolEnum
	SymbolTypeAlias
	SymbolConstant
)

// ParamInfo describes one declared parameter of a function-like symbol.
type ParamInfo struct {
	Name          string
	Type          *types.Union
	IsOptional    bool
	IsVariadic    bool
	IsByRef       bool
	DefaultExists bool
}

// FunctionLikeInfo is the signature of a function, method, or closure
// type declared in the codebase: spec.md §3's `functionlike_infos` entry.
type FunctionLikeInfo struct {
	Name           string
	DeclaringClass string // "" for free functions
	Params         []ParamInfo
	ReturnType     *types.Union
	TemplateNames  []string // the function's own generic parameters, if any
	IsStatic       bool
	IsAbstract     bool
	IsPure         bool // declared pure: no global/property reads or writes
	SpecializeCall bool // per-call-site data-flow node specialization (spec.md glossary)
	Visibility     Visibility
	SuppressedIssues map[string]bool // per-function suppressed issue kinds (spec.md §7)
}

// Visibility mirrors the source language's member visibility.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityPrivate
)

// ClasslikeKind discriminates class/interface/trait/enum class-likes.
type ClasslikeKind int

const (
	ClassKind ClasslikeKind = iota
	InterfaceKind
	TraitKind
	EnumKind
)

// ClasslikeInfo is a class/interface/trait/enum definition.
type ClasslikeInfo struct {
	Name         string
	Kind         ClasslikeKind
	ParentClass  string   // "" if none
	Interfaces   []string // implemented interfaces
	UsedTraits   []string
	TemplateParams []string
	Properties   map[string]*types.Union
	Methods      map[string]*FunctionLikeInfo
	Constants    map[string]*types.Union
	IsAbstract   bool
	IsFinal      bool
}

// TypeDefinitionInfo is a `type Foo<T> = ...` alias declaration.
type TypeDefinitionInfo struct {
	Name       string
	TypeParams []string
	As         *types.Union
}

// ConstantInfo is a file- or class-scoped constant.
type ConstantInfo struct {
	Name string
	Type *types.Union
}

// Codebase is the process-wide symbol table. Exported fields are safe
// to read concurrently once Freeze has returned; no field may be
// mutated afterwards (enforced by the frozen flag on mutators, not by
// Go's type system — see spec.md §9).
type Codebase struct {
	Interner *intern.Table

	mu sync.RWMutex

	functionlikeInfos map[string]*FunctionLikeInfo // key: "Class::method" or "function"
	classlikeInfos    map[string]*ClasslikeInfo
	typeDefinitions   map[string]*TypeDefinitionInfo
	constantInfos     map[string]*ConstantInfo
	allSymbols        map[string]SymbolKind

	classlikeDescendants map[string]map[string]bool // parent -> set of direct+transitive descendants
	functionsInFiles     map[string][]string        // file -> function names
	classlikesInFiles    map[string][]string         // file -> classlike names

	overriddenMethods map[string]map[string]bool // "Class::method" -> set of "AncestorClass::method" it overrides

	frozen bool
}

// New returns an empty, unfrozen codebase.
func New(interner *intern.Table) *Codebase {
	return &Codebase{
		Interner:             interner,
		functionlikeInfos:    make(map[string]*FunctionLikeInfo),
		classlikeInfos:       make(map[string]*ClasslikeInfo),
		typeDefinitions:      make(map[string]*TypeDefinitionInfo),
		constantInfos:        make(map[string]*ConstantInfo),
		allSymbols:           make(map[string]SymbolKind),
		classlikeDescendants: make(map[string]map[string]bool),
		functionsInFiles:     make(map[string][]string),
		classlikesInFiles:    make(map[string][]string),
		overriddenMethods:    make(map[string]map[string]bool),
	}
}

func (c *Codebase) mustNotBeFrozen(op string) {
	if c.frozen {
		panic("codebase: " + op + " called after Freeze")
	}
}

// AddFunctionLike registers a function or method signature. key is
// "function" for a free function or "Class::method" for a method.
func (c *Codebase) AddFunctionLike(key string, info *FunctionLikeInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustNotBeFrozen("AddFunctionLike")
	c.functionlikeInfos[key] = info
	kind := SymbolFunction
	c.allSymbols[key] = kind
}

// AddClasslike registers a class/interface/trait/enum definition.
func (c *Codebase) AddClasslike(info *ClasslikeInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustNotBeFrozen("AddClasslike")
	c.classlikeInfos[info.Name] = info
	var kind SymbolKind
	switch info.Kind {
	case InterfaceKind:
		kind = SymbolInterface
	case TraitKind:
		kind = SymbolTrait
	case EnumKind:
		kind = SymbolEnum
	default:
		kind = SymbolClass
	}
	c.allSymbols[info.Name] = kind
}

// AddTypeDefinition registers a type alias.
func (c *Codebase) AddTypeDefinition(info *TypeDefinitionInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustNotBeFrozen("AddTypeDefinition")
	c.typeDefinitions[info.Name] = info
	c.allSymbols[info.Name] = SymbolTypeAlias
}

// AddConstant registers a constant.
func (c *Codebase) AddConstant(key string, info *ConstantInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustNotBeFrozen("AddConstant")
	c.constantInfos[key] = info
	c.allSymbols[key] = SymbolConstant
}

// RecordFunctionInFile indexes a free function's declaring file for
// the `--find-unused-definitions` sweep and incremental invalidation.
func (c *Codebase) RecordFunctionInFile(file, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustNotBeFrozen("RecordFunctionInFile")
	c.functionsInFiles[file] = append(c.functionsInFiles[file], name)
}

// RecordClasslikeInFile indexes a class-like's declaring file.
func (c *Codebase) RecordClasslikeInFile(file, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustNotBeFrozen("RecordClasslikeInFile")
	c.classlikesInFiles[file] = append(c.classlikesInFiles[file], name)
}

// BuildDescendants computes classlikeDescendants and overriddenMethods
// from the registered ClasslikeInfo parent/interface/trait edges. Called
// once after all files are scanned, before Freeze.
func (c *Codebase) BuildDescendants() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustNotBeFrozen("BuildDescendants")

	parentsOf := func(name string) []string {
		info, ok := c.classlikeInfos[name]
		if !ok {
			return nil
		}
		var parents []string
		if info.ParentClass != "" {
			parents = append(parents, info.ParentClass)
		}
		parents = append(parents, info.Interfaces...)
		parents = append(parents, info.UsedTraits...)
		return parents
	}

	names := make([]string, 0, len(c.classlikeInfos))
	for name := range c.classlikeInfos {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		seen := make(map[string]bool)
		var walk func(n string)
		walk = func(n string) {
			for _, p := range parentsOf(n) {
				if seen[p] {
					continue
				}
				seen[p] = true
				if c.classlikeDescendants[p] == nil {
					c.classlikeDescendants[p] = make(map[string]bool)
				}
				c.classlikeDescendants[p][name] = true
				walk(p)
			}
		}
		walk(name)
	}

	for _, name := range names {
		info := c.classlikeInfos[name]
		for methodName := range info.Methods {
			ancestors := c.ancestorsOfLocked(name)
			for _, ancestor := range ancestors {
				ai, ok := c.classlikeInfos[ancestor]
				if !ok {
					continue
				}
				if _, has := ai.Methods[methodName]; has {
					key := name + "::" + methodName
					if c.overriddenMethods[key] == nil {
						c.overriddenMethods[key] = make(map[string]bool)
					}
					c.overriddenMethods[key][ancestor+"::"+methodName] = true
				}
			}
		}
	}
}

func (c *Codebase) ancestorsOfLocked(name string) []string {
	info, ok := c.classlikeInfos[name]
	if !ok {
		return nil
	}
	var direct []string
	if info.ParentClass != "" {
		direct = append(direct, info.ParentClass)
	}
	direct = append(direct, info.Interfaces...)
	direct = append(direct, info.UsedTraits...)

	seen := make(map[string]bool)
	var out []string
	var walk func(n string)
	walk = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		out = append(out, n)
		ni, ok := c.classlikeInfos[n]
		if !ok {
			return
		}
		if ni.ParentClass != "" {
			walk(ni.ParentClass)
		}
		for _, i := range ni.Interfaces {
			walk(i)
		}
		for _, tr := range ni.UsedTraits {
			walk(tr)
		}
	}
	for _, d := range direct {
		walk(d)
	}
	return out
}

// Freeze marks the codebase read-only. Call once scanning finishes,
// before any analyzer worker starts (spec.md §5).
func (c *Codebase) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
	c.Interner.Freeze()
}

// ---- read accessors (safe pre- or post-freeze; callers during the
// scan phase only read back what they themselves just wrote, so the
// lock is still correct, just uncontended) ----

func (c *Codebase) FunctionLike(key string) (*FunctionLikeInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fi, ok := c.functionlikeInfos[key]
	return fi, ok
}

func (c *Codebase) Classlike(name string) (*ClasslikeInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ci, ok := c.classlikeInfos[name]
	return ci, ok
}

func (c *Codebase) TypeDefinition(name string) (*TypeDefinitionInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	td, ok := c.typeDefinitions[name]
	return td, ok
}

func (c *Codebase) Constant(key string) (*ConstantInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ci, ok := c.constantInfos[key]
	return ci, ok
}

func (c *Codebase) SymbolKindOf(name string) (SymbolKind, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k, ok := c.allSymbols[name]
	return k, ok
}

// IsDescendantOf implements types.Resolver: does `child` extend,
// implement, or use `parent` (directly or transitively)?
func (c *Codebase) IsDescendantOf(child, parent string) bool {
	if child == parent {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.classlikeDescendants[parent][child]
}

// Descendants returns every registered descendant of name, sorted.
func (c *Codebase) Descendants(name string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set := c.classlikeDescendants[name]
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// OverriddenAncestors returns the ancestor "Class::method" keys that
// "Class::method" (given as declaringClass/methodName) overrides.
func (c *Codebase) OverriddenAncestors(declaringClass, methodName string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set := c.overriddenMethods[declaringClass+"::"+methodName]
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FunctionsInFile returns the free functions declared in file.
func (c *Codebase) FunctionsInFile(file string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.functionsInFiles[file]...)
}

// ClasslikesInFile returns the class-likes declared in file.
func (c *Codebase) ClasslikesInFile(file string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.classlikesInFiles[file]...)
}

// ResolveAlias implements types.AliasResolver.
func (c *Codebase) ResolveAlias(name string, typeParams []*types.Union) (*types.Union, bool) {
	td, ok := c.TypeDefinition(name)
	if !ok {
		return nil, false
	}
	if len(td.TypeParams) == 0 || len(typeParams) == 0 {
		return td.As, true
	}
	args := make(map[string]*types.Union, len(td.TypeParams))
	for i, p := range td.TypeParams {
		if i < len(typeParams) {
			args[name+":"+p] = typeParams[i]
		}
	}
	return types.Expand(td.As, types.ExpansionContext{GenericArgs: args}), true
}

// AllClasslikeNames returns every registered class-like name, sorted.
func (c *Codebase) AllClasslikeNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.classlikeInfos))
	for n := range c.classlikeInfos {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// AllFunctionKeys returns every registered functionlike key, sorted.
func (c *Codebase) AllFunctionKeys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.functionlikeInfos))
	for n := range c.functionlikeInfos {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
