// Package scope implements the lexical environment shared by the macro
// expander and the code generator.
//
// An Env is a stack of Scope values. Each Scope holds its own tables of
// macros, symbol macros, variables and lifted utility values; a lookup that
// misses in a scope falls through to its parent, and a write always goes to
// the innermost scope. Each Scope also owns a compile-time namespace of the
// stage interpreter, nested in the namespace of its parent.
package scope

import (
	"github.com/edwingeng/deque"

	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/stage"
	"github.com/izreit/sifon/pkg/term"
)

// VarKind classifies a variable known to a scope.
type VarKind uint8

// Possible values for VarKind.
const (
	Local VarKind = iota
	Argument
	External
	// Enclosed marks a name declared in a nested scope, or reserved by a
	// hygienic symbol. It is never declared in the scope itself.
	Enclosed
)

func (k VarKind) String() string {
	switch k {
	case Local:
		return "local"
	case Argument:
		return "argument"
	case External:
		return "external"
	case Enclosed:
		return "enclosed"
	}
	return "unknown"
}

// VarSpec describes a variable.
type VarSpec struct {
	Kind VarKind
	// Invariable is set for CONSTANT_CASE names.
	Invariable bool
	// Captured is set when the variable is referenced from a nested scope.
	Captured bool
}

// UtilValue is a value lifted to the head of the scope that first needed it,
// such as a helper function used by generated code.
type UtilValue struct {
	Symbol *term.Term
	Value  *js.Node
}

// Scope is one level of the lexical environment.
type Scope struct {
	parent *Scope
	depth  int

	macros       map[string]Macro
	symbolMacros map[string]Macro

	vars     map[string]*VarSpec
	varOrder []string

	// uniques are the hygienic symbols declared in this scope; params are the
	// hygienic symbols bound as arguments.
	uniques []*term.Term
	params  []*term.Term

	utils     map[string]*UtilValue
	utilOrder []string

	ns      *stage.Ns
	pending deque.Deque
}

func newScope(parent *Scope, ns *stage.Ns) *Scope {
	s := &Scope{
		parent:       parent,
		macros:       map[string]Macro{},
		symbolMacros: map[string]Macro{},
		vars:         map[string]*VarSpec{},
		utils:        map[string]*UtilValue{},
		ns:           ns,
		pending:      deque.NewDeque(),
	}
	if parent != nil {
		s.depth = parent.depth + 1
	}
	return s
}

// Parent returns the enclosing scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Depth returns the nesting level of s; the base scope of an Env is 0.
func (s *Scope) Depth() int { return s.depth }

func (s *Scope) lookupVar(name string) *VarSpec {
	for c := s; c != nil; c = c.parent {
		if spec, ok := c.vars[name]; ok {
			return spec
		}
	}
	return nil
}

func (s *Scope) ownsVar(name string) bool {
	_, ok := s.vars[name]
	return ok
}

func (s *Scope) setVar(name string, spec *VarSpec) {
	if _, ok := s.vars[name]; !ok {
		s.varOrder = append(s.varOrder, name)
	}
	s.vars[name] = spec
}

func (s *Scope) lookupUtil(key string) *UtilValue {
	for c := s; c != nil; c = c.parent {
		if uv, ok := c.utils[key]; ok {
			return uv
		}
	}
	return nil
}

func (s *Scope) declares(u *term.Unique) bool {
	for _, list := range [][]*term.Term{s.uniques, s.params} {
		for _, t := range list {
			if t.Unique == u {
				return true
			}
		}
	}
	return false
}

// Root holds the built-in macros that seed every Env made from it. A Root
// is filled once and then only read; Envs never write into it.
type Root struct {
	macros       map[string]Macro
	symbolMacros map[string]Macro
}

// NewRoot makes an empty Root.
func NewRoot() *Root {
	return &Root{macros: map[string]Macro{}, symbolMacros: map[string]Macro{}}
}

// RegisterMacro binds a built-in macro.
func (r *Root) RegisterMacro(name string, m Macro) { r.macros[name] = m }

// RegisterSymbolMacro binds a built-in symbol macro.
func (r *Root) RegisterSymbolMacro(name string, m Macro) { r.symbolMacros[name] = m }

// Macro returns the built-in macro bound to name, or nil.
func (r *Root) Macro(name string) Macro { return r.macros[name] }
