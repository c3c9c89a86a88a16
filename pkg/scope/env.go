package scope

import (
	"maps"
	"sort"
	"strconv"
	"strings"

	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/logutil"
	"github.com/izreit/sifon/pkg/stage"
	"github.com/izreit/sifon/pkg/term"
)

var logger = logutil.GetLogger("[scope] ")

// Env is the scope stack of one compiler.
type Env struct {
	base   *Scope
	top    *Scope
	interp *stage.Interp

	// unresolved hygienic symbols, in creation order.
	pending []*term.Unique

	// Optimizing is set when the output is reduced.
	Optimizing bool

	helper       *stage.Object
	failureProto *stage.Object
	expanding    *term.Term
}

// New makes an Env seeded with the macros of root, which may be nil. The
// Env runs compile-time code on its own interpreter.
func New(root *Root) *Env {
	return NewWithInterp(root, stage.New())
}

// NewWithInterp is like New, but uses the given interpreter.
func NewWithInterp(root *Root, in *stage.Interp) *Env {
	// The macros of root live in a scope of their own enclosing the base
	// scope, so that top-level macro definitions shadow them.
	builtin := newScope(nil, stage.NewNs(in.Global()))
	builtin.depth = -1
	if root != nil {
		maps.Copy(builtin.macros, root.macros)
		maps.Copy(builtin.symbolMacros, root.symbolMacros)
	}
	base := newScope(builtin, builtin.ns)
	return &Env{base: base, top: base, interp: in}
}

// Interp returns the interpreter running compile-time code.
func (e *Env) Interp() *stage.Interp { return e.interp }

// Top returns the innermost scope.
func (e *Env) Top() *Scope { return e.top }

// EnterScope pushes a new scope.
func (e *Env) EnterScope() {
	e.top = newScope(e.top, stage.NewNs(e.top.ns))
	logger.Println("enter scope", e.top.depth)
}

// LeaveScope pops the innermost scope. The names the scope declared become
// enclosed names of its parent. Compile-time code still pending in the
// scope is run; a failure of that code is returned, after the scope has
// been popped.
func (e *Env) LeaveScope() error {
	t := e.top
	if t == e.base {
		panic("scope: LeaveScope without EnterScope")
	}
	e.top = t.parent
	logger.Println("leave scope", t.depth)
	for _, name := range t.varOrder {
		if e.top.lookupVar(name) == nil {
			e.top.setVar(name, &VarSpec{Kind: Enclosed})
		}
	}
	return e.flush(t)
}

// Variables.

// TouchVariable records a reference to name from the current scope.
func (e *Env) TouchVariable(name string) {
	if spec := e.top.lookupVar(name); spec != nil && !e.top.ownsVar(name) {
		spec.Captured = true
	}
}

// IsInvariable reports whether name refers to a constant.
func (e *Env) IsInvariable(name string) bool {
	spec := e.top.lookupVar(name)
	return spec != nil && spec.Invariable
}

// IsKnownVariable reports whether name is a declared local or argument
// visible from the current scope.
func (e *Env) IsKnownVariable(name string) bool {
	spec := e.top.lookupVar(name)
	return spec != nil && (spec.Kind == Local || spec.Kind == Argument)
}

// IsKnownSymbol is like IsKnownVariable, but takes a symbol. A hygienic
// symbol is known when it is declared in the current scope or one of its
// ancestors.
func (e *Env) IsKnownSymbol(t *term.Term) bool {
	if t.Unique == nil {
		return e.IsKnownVariable(t.Val)
	}
	for s := e.top; s != nil; s = s.parent {
		if s.declares(t.Unique) {
			return true
		}
	}
	return false
}

// RegisterVariable declares name as a local of the current scope, unless it
// is already declared in an enclosing one.
func (e *Env) RegisterVariable(name string, invariable bool) {
	e.registerVariable(name, invariable, Local)
}

func (e *Env) registerVariable(name string, invariable bool, kind VarKind) {
	spec := e.top.lookupVar(name)
	switch {
	case spec == nil || spec.Kind == Enclosed:
		e.top.setVar(name, &VarSpec{Kind: kind, Invariable: invariable})
	case !e.top.ownsVar(name):
		spec.Captured = true
	}
}

// ForceRegisterVariable declares name as a local of the current scope,
// shadowing any outer declaration.
func (e *Env) ForceRegisterVariable(name string, invariable bool) {
	e.top.setVar(name, &VarSpec{Kind: Local, Invariable: invariable})
}

// RegisterArgument declares name as an argument of the current scope.
func (e *Env) RegisterArgument(name string, invariable bool) {
	e.top.setVar(name, &VarSpec{Kind: Argument, Invariable: invariable})
}

// DeclareSymbol declares an assigned symbol: a hygienic one becomes a
// hygienic local unless already known, and a plain one is registered with
// RegisterVariable.
func (e *Env) DeclareSymbol(t *term.Term) {
	if t.Unique == nil {
		e.RegisterVariable(t.Val, term.IsUpperCase(t.Val))
	} else if !e.IsKnownSymbol(t) {
		e.RegisterUnique(t)
	}
}

// DeclareArgument declares a parameter symbol of the current scope.
func (e *Env) DeclareArgument(t *term.Term) {
	if t.Unique == nil {
		e.RegisterArgument(t.Val, term.IsUpperCase(t.Val))
		return
	}
	t.Unique.Rehome(e.top)
	e.top.params = append(e.top.params, t)
}

// VariableSymbols returns the variables to declare at the head of the
// current scope: its locals with a valid name in declaration order, then
// its hygienic locals.
func (e *Env) VariableSymbols() []*term.Term {
	var ret []*term.Term
	for _, name := range e.top.varOrder {
		if e.top.vars[name].Kind == Local && term.IsValidVarName(name) {
			ret = append(ret, term.S(name))
		}
	}
	return append(ret, e.top.uniques...)
}

// VariableInfo returns the locals and arguments of the current scope.
func (e *Env) VariableInfo() map[string]VarSpec {
	ret := map[string]VarSpec{}
	for name, spec := range e.top.vars {
		if spec.Kind == Local || spec.Kind == Argument {
			ret[name] = *spec
		}
	}
	for _, u := range e.top.uniques {
		ret[u.Name()] = VarSpec{Kind: Local}
	}
	return ret
}

// Hygienic symbols.

// UniqueSymbol makes a hygienic symbol. Its name is decided later, when the
// declarations around it are known; see ResolveUniques.
func (e *Env) UniqueSymbol(hint string, p term.Pos) *term.Term {
	u := term.NewUnique(hint, e.top, e)
	e.pending = append(e.pending, u)
	return term.NewUniqueSym(u, p)
}

// RegisterUnique declares a hygienic symbol as a local of the current
// scope.
func (e *Env) RegisterUnique(t *term.Term) {
	t.Unique.Rehome(e.top)
	e.top.uniques = append(e.top.uniques, t)
}

// NameUnique decides the name of a hygienic symbol: the hint, or the hint
// with the smallest numeric suffix, that no variable visible in its scope
// uses. The name is then reserved in the scope and every enclosing scope.
func (e *Env) NameUnique(u *term.Unique) string {
	home, _ := u.Home.(*Scope)
	if home == nil {
		home = e.top
	}
	hint := sanitizeHint(u.Hint)
	taken := func(name string) bool {
		if !term.IsValidVarName(name) || home.ownsVar(name) {
			return true
		}
		spec := home.lookupVar(name)
		return spec != nil && spec.Kind != Enclosed
	}
	name := hint
	for i := 0; taken(name); i++ {
		name = hint + strconv.Itoa(i)
	}
	home.setVar(name, &VarSpec{Kind: Enclosed})
	for s := home.parent; s != nil; s = s.parent {
		if s.lookupVar(name) != nil {
			break
		}
		s.setVar(name, &VarSpec{Kind: Enclosed})
	}
	return name
}

func sanitizeHint(hint string) string {
	hint = strings.Map(func(r rune) rune {
		if r < 128 && (r == '_' || r == '$' || r >= '0' && r <= '9' ||
			r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return r
		}
		return '_'
	}, hint)
	if hint == "" || hint[0] >= '0' && hint[0] <= '9' {
		hint = "_" + hint
	}
	return hint
}

// ResolveUniques decides the names of the pending hygienic symbols living
// in s or a scope nested in it, the deepest first, so that a symbol never
// takes a name used by a nested scope.
func (e *Env) ResolveUniques(s *Scope) {
	var todo []*term.Unique
	rest := e.pending[:0]
	for _, u := range e.pending {
		switch {
		case u.Resolved():
		case within(u, s):
			todo = append(todo, u)
		default:
			rest = append(rest, u)
		}
	}
	e.pending = rest
	sort.SliceStable(todo, func(i, j int) bool { return depthOf(todo[i]) > depthOf(todo[j]) })
	for _, u := range todo {
		u.Name()
	}
}

// ResolveAll decides the names of every pending hygienic symbol.
func (e *Env) ResolveAll() { e.ResolveUniques(nil) }

func within(u *term.Unique, s *Scope) bool {
	if s == nil {
		return true
	}
	for h, _ := u.Home.(*Scope); h != nil; h = h.parent {
		if h == s {
			return true
		}
	}
	return false
}

func depthOf(u *term.Unique) int {
	if h, ok := u.Home.(*Scope); ok {
		return h.depth
	}
	return 0
}

// Utility values.

// RegisterUtilValue returns the symbol of the utility value registered
// under key in the current scope or an enclosing one. If there is none, it
// lifts the value made by mk into the current scope.
func (e *Env) RegisterUtilValue(key string, mk func() *js.Node) *term.Term {
	if uv := e.top.lookupUtil(key); uv != nil {
		return uv.Symbol
	}
	uv := &UtilValue{Symbol: e.UniqueSymbol(key, term.NoPos), Value: mk()}
	e.top.utils[key] = uv
	e.top.utilOrder = append(e.top.utilOrder, key)
	return uv.Symbol
}

// UtilValues returns the utility values lifted into the current scope, in
// registration order.
func (e *Env) UtilValues() []*UtilValue {
	ret := make([]*UtilValue, len(e.top.utilOrder))
	for i, key := range e.top.utilOrder {
		ret[i] = e.top.utils[key]
	}
	return ret
}
