package scope

import (
	"errors"
	"fmt"

	"github.com/izreit/sifon/pkg/stage"
	"github.com/izreit/sifon/pkg/term"
)

// Macro rewrites a form. Expand gets the children of the form after its
// head, unevaluated, and returns the replacement. A symbol macro gets no
// arguments.
//
// Expand returns an *ExpansionFailure to decline the form, so that an outer
// macro of the same name gets a chance.
type Macro interface {
	Expand(x *Expansion, args []*term.Term) (*term.Term, error)
}

// MacroFunc adapts a function to Macro.
type MacroFunc func(x *Expansion, args []*term.Term) (*term.Term, error)

// Expand calls f.
func (f MacroFunc) Expand(x *Expansion, args []*term.Term) (*term.Term, error) {
	return f(x, args)
}

// ExpansionFailure is returned by a macro that declines a form.
type ExpansionFailure struct {
	Message string
}

func (f *ExpansionFailure) Error() string { return "[ExpansionFailure] " + f.Message }

// IsExpansionFailure reports whether err declines a form.
func IsExpansionFailure(err error) bool {
	var f *ExpansionFailure
	return errors.As(err, &f)
}

// Expansion is what a macro can use while expanding one form.
type Expansion struct {
	env *Env
	// Form is the form being expanded.
	Form *term.Term
}

// Env returns the environment the form is expanded in.
func (x *Expansion) Env() *Env { return x.env }

// Gensym makes a hygienic symbol.
func (x *Expansion) Gensym(hint string) *term.Term {
	if hint == "" {
		hint = "_"
	}
	return x.env.UniqueSymbol(hint, x.Form.Pos)
}

// Fail declines the form.
func (x *Expansion) Fail(format string, args ...any) error {
	return &ExpansionFailure{fmt.Sprintf(format, args...)}
}

// Optimizing reports whether the output is to be reduced.
func (x *Expansion) Optimizing() bool { return x.env.Optimizing }

// Pos returns the position of the form, for the terms the macro makes.
func (x *Expansion) Pos() term.Pos { return x.Form.Pos }

// ExpandMacro calls m on form.
func (e *Env) ExpandMacro(m Macro, form *term.Term, args []*term.Term) (*term.Term, error) {
	return m.Expand(&Expansion{env: e, Form: form}, args)
}

// RegisterMacro binds a macro in the current scope. It returns false if
// the current scope already binds name.
func (e *Env) RegisterMacro(name string, m Macro) bool {
	if _, ok := e.top.macros[name]; ok {
		return false
	}
	e.top.macros[name] = m
	return true
}

// RegisterSymbolMacro is like RegisterMacro, for symbol macros.
func (e *Env) RegisterSymbolMacro(name string, m Macro) bool {
	if _, ok := e.top.symbolMacros[name]; ok {
		return false
	}
	e.top.symbolMacros[name] = m
	return true
}

// MacroFor returns the innermost macro bound to name, or nil.
func (e *Env) MacroFor(name string) Macro {
	for s := e.top; s != nil; s = s.parent {
		if m, ok := s.macros[name]; ok {
			return m
		}
	}
	return nil
}

// AllMacrosFor returns every macro bound to name, outermost first.
func (e *Env) AllMacrosFor(name string) []Macro {
	return allFor(e.top, name, func(s *Scope) map[string]Macro { return s.macros })
}

// AllSymbolMacrosFor returns every symbol macro bound to name, outermost
// first.
func (e *Env) AllSymbolMacrosFor(name string) []Macro {
	return allFor(e.top, name, func(s *Scope) map[string]Macro { return s.symbolMacros })
}

func allFor(top *Scope, name string, table func(*Scope) map[string]Macro) []Macro {
	var ms []Macro
	for s := top; s != nil; s = s.parent {
		if m, ok := table(s)[name]; ok {
			ms = append([]Macro{m}, ms...)
		}
	}
	return ms
}

// Macros defined by user code.

type stageMacro struct {
	fn stage.Value
}

// StageMacro makes a macro of a function value of the compile-time
// interpreter. The function is called with the argument terms converted to
// values, and with this bound to an object offering gensym(hint),
// expansionFailure(message) and optimizing(). It declines the form by
// throwing the result of expansionFailure, or the string "MatchFailure"
// thrown by a failed destructuring.
func (e *Env) StageMacro(fn stage.Value) Macro { return stageMacro{fn} }

func (m stageMacro) Expand(x *Expansion, args []*term.Term) (*term.Term, error) {
	e := x.env
	in := e.interp
	saved := e.expanding
	e.expanding = x.Form
	defer func() { e.expanding = saved }()

	v, err := in.Call(m.fn, e.macroHelper(), in.FromTerms(args)...)
	if err != nil {
		var thrown *stage.Thrown
		if errors.As(err, &thrown) {
			if o, ok := thrown.Value.(*stage.Object); ok && o.Proto == e.failureProto {
				return nil, &ExpansionFailure{stage.ToString(o.Get("message"))}
			}
			if s, ok := thrown.Value.(string); ok && s == "MatchFailure" {
				return nil, &ExpansionFailure{s}
			}
		}
		return nil, err
	}
	return in.ToTerm(v)
}

func (e *Env) macroHelper() *stage.Object {
	if e.helper != nil {
		return e.helper
	}
	in := e.interp
	e.failureProto = in.NewPlainObject()
	e.failureProto.SetHidden("toString", in.NewNative("toString",
		func(in *stage.Interp, this stage.Value, args []stage.Value) stage.Value {
			if o, ok := this.(*stage.Object); ok {
				return "[ExpansionFailure] " + stage.ToString(o.Get("message"))
			}
			return "[ExpansionFailure]"
		}))

	h := in.NewPlainObject()
	h.Set("gensym", in.NewNative("gensym",
		func(in *stage.Interp, this stage.Value, args []stage.Value) stage.Value {
			hint := "_"
			if len(args) > 0 && args[0] != stage.Undefined {
				hint = stage.ToString(args[0])
			}
			p := term.NoPos
			if e.expanding != nil {
				p = e.expanding.Pos
			}
			return in.FromTerm(e.UniqueSymbol(hint, p))
		}))
	h.Set("expansionFailure", in.NewNative("expansionFailure",
		func(in *stage.Interp, this stage.Value, args []stage.Value) stage.Value {
			f := stage.NewObject(e.failureProto)
			msg := ""
			if len(args) > 0 && args[0] != stage.Undefined {
				msg = stage.ToString(args[0])
			}
			f.Set("message", msg)
			return f
		}))
	h.Set("optimizing", in.NewNative("optimizing",
		func(in *stage.Interp, this stage.Value, args []stage.Value) stage.Value {
			return e.Optimizing
		}))
	e.helper = h
	return h
}
