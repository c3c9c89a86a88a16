// Package expand implements the macro expander.
//
// Expansion rewrites a term until no macro applies to it, then handles the
// forms the expander owns (macro definitions, meta code, quoting and the
// scoping forms), and finally expands the children of what remains. The
// compile-time code found in meta forms and macro bodies is compiled by a
// Compiler and run on the interpreter of the scope environment.
package expand

import (
	"errors"
	"fmt"

	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/logutil"
	"github.com/izreit/sifon/pkg/match"
	"github.com/izreit/sifon/pkg/scope"
	"github.com/izreit/sifon/pkg/term"
)

var logger = logutil.GetLogger("[expand] ")

// Compiler compiles a term for compile-time evaluation. CompileNode
// returns nil if compiling it reported an error.
type Compiler interface {
	CompileNode(t *term.Term, env *scope.Env) *js.Node
}

// Evaluator expands macros. It is not safe for concurrent use.
type Evaluator struct {
	reporter diag.Reporter
	// Debug makes the evaluator report the compiled compile-time code as
	// informational messages.
	Debug bool
}

// New makes an Evaluator reporting to r.
func New(r diag.Reporter) *Evaluator {
	return &Evaluator{reporter: r}
}

func (ev *Evaluator) report(m *diag.Message) { ev.reporter.Report(m) }

func (ev *Evaluator) info(m *diag.Message) {
	if ev.Debug {
		ev.report(m)
	}
}

// Evaluate expands top-level terms in a new scope of env. Terms that
// expand to nothing, such as macro definitions, are dropped.
func (ev *Evaluator) Evaluate(nodes []*term.Term, env *scope.Env, c Compiler) []*term.Term {
	env.EnterScope()
	var ret []*term.Term
	for _, n := range nodes {
		if x := ev.expand(n, env, c); x != nil {
			ret = append(ret, x)
		}
	}
	if err := env.LeaveScope(); err != nil {
		ev.reportEvalError("evaluating `meta'", term.NoPos, err)
		return nil
	}
	return ret
}

// ExpandOnce applies the macro bound to the head of t, or the symbol macro
// bound to t. It reports whether a macro applied.
func (ev *Evaluator) ExpandOnce(t *term.Term, env *scope.Env) (bool, *term.Term) {
	switch {
	case t == nil:
		return false, nil
	case t.Kind == term.Seq:
		if len(t.Items) == 0 || !plainSym(t.Items[0]) {
			return false, t
		}
		name := t.Items[0].Val
		return ev.applyMacros(env.AllMacrosFor(name), "macro", name, t, t.Items[1:], env)
	case plainSym(t):
		return ev.applyMacros(env.AllSymbolMacrosFor(t.Val), "symbol-macro", t.Val, t, nil, env)
	}
	return false, t
}

// ExpandAll applies ExpandOnce until no macro applies.
func (ev *Evaluator) ExpandAll(t *term.Term, env *scope.Env) (bool, *term.Term) {
	expanded := false
	for {
		ok, next := ev.ExpandOnce(t, env)
		if !ok {
			return expanded, t
		}
		expanded, t = true, next
	}
}

// applyMacros tries the macros from the innermost one outwards. A macro
// declining the form passes it to the next one; the outermost macro
// declining it, or any macro failing otherwise, is reported and the form is
// dropped.
func (ev *Evaluator) applyMacros(macs []scope.Macro, kind, name string, form *term.Term, args []*term.Term, env *scope.Env) (bool, *term.Term) {
	if len(macs) == 0 {
		return false, form
	}
	for i := len(macs) - 1; i >= 0; i-- {
		ret, err := env.ExpandMacro(macs[i], form, args)
		if err == nil {
			logger.Println("expanded", name, "to", ret)
			return true, term.Normalize(ret)
		}
		if scope.IsExpansionFailure(err) && i > 0 {
			continue
		}
		ev.reportEvalError(fmt.Sprintf("expanding the %s `%s'", kind, name), form.Pos, err)
		return true, nil
	}
	panic("unreachable")
}

func (ev *Evaluator) reportEvalError(what string, p term.Pos, err error) {
	var evalErr *scope.EvalError
	if errors.As(err, &evalErr) {
		ev.report(diag.ExceptionThrownIn(what, p, evalErr.Err, evalErr.Code))
		return
	}
	ev.report(diag.ExceptionThrownIn(what, p, err, ""))
}

func plainSym(t *term.Term) bool { return t.IsSym() && t.Unique == nil }

func (ev *Evaluator) expand(t *term.Term, env *scope.Env, c Compiler) *term.Term {
	_, t = ev.ExpandAll(t, env)
	if t == nil || t.Kind != term.Seq || len(t.Items) == 0 {
		return t
	}
	if head := t.Items[0]; plainSym(head) {
		if f, ok := forms[head.Val]; ok {
			return f(ev, t, env, c)
		}
	}
	return term.Normalize(t.With(ev.expandAll(t.Items, env, c)...))
}

func (ev *Evaluator) expandAll(ts []*term.Term, env *scope.Env, c Compiler) []*term.Term {
	ret := make([]*term.Term, len(ts))
	for i, t := range ts {
		ret[i] = ev.expand(t, env, c)
	}
	return ret
}

// Forms handled by the expander.

type formFunc func(ev *Evaluator, b match.Bindings, node *term.Term, env *scope.Env, c Compiler) *term.Term

var forms = map[string]func(ev *Evaluator, node *term.Term, env *scope.Env, c Compiler) *term.Term{}

// form registers a form handled by the expander. With scoped set, the form
// is expanded in a new scope.
func form(names []string, pattern []any, scoped bool, f formFunc) {
	m := match.Make(pattern...)
	impl := func(ev *Evaluator, node *term.Term, env *scope.Env, c Compiler) *term.Term {
		r := m.Match(node)
		if r.Failed {
			at := r.At
			if at == nil {
				at = node
			}
			ev.report(diag.InvalidSpecialForm(at.Pos, node.Items[0].Val))
			return nil
		}
		if scoped {
			env.EnterScope()
			defer func() {
				if err := env.LeaveScope(); err != nil {
					ev.reportEvalError("evaluating `meta'", node.Pos, err)
				}
			}()
		}
		return f(ev, r.Bindings, node, env, c)
	}
	for _, name := range names {
		forms[name] = impl
	}
}

// IsForm reports whether name is the head of a form handled by the
// expander.
func IsForm(name string) bool {
	_, ok := forms[name]
	return ok
}

// argsPattern matches the parameters and body of a function-like form.
func argsPattern() []any {
	return []any{
		match.O("args", match.Range{0, 1},
			match.O("name", match.SymbolButNot("->")),
			match.L{"=", match.O("name", match.Symbol), match.O("defaultValue")},
			match.L{
				match.O(match.Range{0, 1}, "<<tuple>>"),
				match.O("list", match.Range{0, match.N},
					match.O("name", match.SymbolButNot("->")),
					match.L{"=", match.O("name", match.Symbol), match.O("defaultValue")}),
			}),
		match.O(match.L{"->", match.O("body", match.Range{0, match.N})}),
	}
}

func init() {
	macroexpand := func(all bool) formFunc {
		return func(ev *Evaluator, b match.Bindings, node *term.Term, env *scope.Env, c Compiler) *term.Term {
			expr := b.Term("expr")
			var expanded bool
			var ret *term.Term
			if all {
				expanded, ret = ev.ExpandAll(expr, env)
			} else {
				expanded, ret = ev.ExpandOnce(expr, env)
			}
			if ret == nil {
				ret = term.NewSym("undefined", node.Pos)
			}
			return node.With(
				term.NewSym("<<array>>", node.Pos),
				term.NewSeq(expr.Pos, term.NewSym("<<quote>>", expr.Pos), ret),
				term.NewSym(fmt.Sprint(expanded), node.Pos))
		}
	}
	form([]string{"%macroexpand-1"}, []any{"%macroexpand-1", match.O("expr")}, false, macroexpand(false))
	form([]string{"%macroexpand"}, []any{"%macroexpand", match.O("expr")}, false, macroexpand(true))

	form([]string{"meta"}, []any{"meta", match.O("expr")}, false,
		func(ev *Evaluator, b match.Bindings, node *term.Term, env *scope.Env, c Compiler) *term.Term {
			prog := c.CompileNode(b.Term("expr"), env)
			if prog == nil {
				return nil
			}
			ev.info(diag.MetaCode(node.Pos, prog.Code()))
			env.AddCompileTimeCode(prog)
			return nil
		})

	form([]string{"meta-do"}, []any{"meta-do", match.O("expr")}, false,
		func(ev *Evaluator, b match.Bindings, node *term.Term, env *scope.Env, c Compiler) *term.Term {
			prog := c.CompileNode(b.Term("expr"), env)
			if prog == nil {
				return nil
			}
			ev.info(diag.MetaDoCode(node.Pos, prog.Code()))
			v, err := env.CompileTimeEval(prog)
			if err != nil {
				ev.reportEvalError("meta-do", node.Pos, err)
				return nil
			}
			obtained, err := env.Interp().ToTerm(v)
			if err != nil {
				ev.report(diag.ExceptionThrownIn("meta-do", node.Pos, err, prog.OneLine()))
				return nil
			}
			return ev.expand(obtained, env, c)
		})

	form([]string{"macro", "symbol-macro"}, append([]any{match.O("head"), match.O("name", match.Symbol)}, argsPattern()...), false,
		func(ev *Evaluator, b match.Bindings, node *term.Term, env *scope.Env, c Compiler) *term.Term {
			head, name := b.Term("head"), b.Term("name")
			symbolMacro := head.Is("symbol-macro")
			if args := b.Sub("args"); symbolMacro && args != nil {
				n := 1
				if !args.Has("name") {
					n = len(args.List("list"))
				}
				ev.report(diag.TooManyArg(head.Pos, "symbol-macro", 0, n))
			}

			def := append([]*term.Term{term.NewSym("<<macro-definition>>", name.Pos)}, node.Items[2:]...)
			prog := c.CompileNode(term.NewSeq(name.Pos, def...), env)
			if prog != nil {
				ev.info(diag.MacroDef(node.Pos, head.Val, name.Val, prog.Code()))
			} else {
				// Keep going with a macro doing nothing.
				prog = js.Stmts(js.Func(nil, nil))
			}

			fn, err := env.CompileTimeEval(prog)
			if err != nil {
				ev.reportEvalError(head.Val, node.Pos, err)
				return nil
			}
			m := env.StageMacro(fn)
			registered := false
			if symbolMacro {
				registered = env.RegisterSymbolMacro(name.Val, m)
			} else {
				registered = env.RegisterMacro(name.Val, m)
			}
			if !registered {
				logger.Println("ignored a redefinition of", head.Val, name.Val)
			}
			return nil
		})

	form([]string{"<<quote>>"}, []any{"<<quote>>", match.O("value")}, false,
		func(ev *Evaluator, b match.Bindings, node *term.Term, env *scope.Env, c Compiler) *term.Term {
			return node
		})

	form([]string{"<<quasiquote>>"}, []any{"<<quasiquote>>", match.O("value")}, false,
		func(ev *Evaluator, b match.Bindings, node *term.Term, env *scope.Env, c Compiler) *term.Term {
			return ev.quasiquoted(node, 0, env, c)
		})

	form([]string{"#"}, append([]any{match.O("head")}, argsPattern()...), true,
		func(ev *Evaluator, b match.Bindings, node *term.Term, env *scope.Env, c Compiler) *term.Term {
			return term.Normalize(node.With(ev.expandAll(node.Items, env, c)...))
		})

	form([]string{"macro-scope"}, []any{"macro-scope", match.O("expr")}, true,
		func(ev *Evaluator, b match.Bindings, node *term.Term, env *scope.Env, c Compiler) *term.Term {
			return term.Normalize(ev.expand(b.Term("expr"), env, c))
		})
}

// quasiquoted expands the unquoted parts of a quasiquoted term. Only the
// parts unquoted as many times as they are quasiquoted are expanded.
func (ev *Evaluator) quasiquoted(node *term.Term, nest int, env *scope.Env, c Compiler) *term.Term {
	if node.Kind != term.Seq {
		return node
	}
	items := make([]*term.Term, len(node.Items))
	for i, ch := range node.Items {
		switch {
		case ch.HasHead("<<quasiquote>>"):
			items[i] = ev.quasiquoted(ch, nest+1, env, c)
		case ch.HasHead("<<unquote>>"), ch.HasHead("<<unquote-splicing>>"):
			if nest == 0 {
				items[i] = ev.expand(ch, env, c)
			} else {
				items[i] = ev.quasiquoted(ch, nest-1, env, c)
			}
		default:
			items[i] = ev.quasiquoted(ch, nest, env, c)
		}
	}
	return node.With(items...)
}
