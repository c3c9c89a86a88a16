// Package macros provides the built-in macro library.
//
// The macros are plain Go functions over terms. They are registered on a
// scope.Root, so that user code may overload any of them with the macro
// form; an overload that declines a form falls back to the built-in.
package macros

import (
	"github.com/izreit/sifon/pkg/logutil"
	"github.com/izreit/sifon/pkg/match"
	"github.com/izreit/sifon/pkg/scope"
	"github.com/izreit/sifon/pkg/term"
)

var logger = logutil.GetLogger("[macros] ")

var builtins = map[string]scope.MacroFunc{}

func def(name string, f scope.MacroFunc) { builtins[name] = f }

// Register adds the built-in macros to root.
func Register(root *scope.Root) {
	for name, f := range builtins {
		root.RegisterMacro(name, f)
	}
	logger.Println("registered", len(builtins), "macros")
}

// NewRoot returns a Root with the built-in macros.
func NewRoot() *scope.Root {
	root := scope.NewRoot()
	Register(root)
	return root
}

// Names returns the names of the built-in macros.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	return names
}

// builder makes terms positioned at the expanded form.
type builder struct{ p term.Pos }

func at(x *scope.Expansion) builder { return builder{x.Pos()} }

func (b builder) sym(name string) *term.Term { return term.NewSym(name, b.p) }

func (b builder) seq(items ...*term.Term) *term.Term { return term.NewSeq(b.p, items...) }

// form makes (head items...).
func (b builder) form(head string, items ...*term.Term) *term.Term {
	return b.seq(append([]*term.Term{b.sym(head)}, items...)...)
}

// fixed binds a macro taking between min and max arguments; other arities
// decline the form.
func fixed(name string, min, max int, f func(x *scope.Expansion, args []*term.Term) (*term.Term, error)) {
	def(name, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		if len(args) < min || len(args) > max {
			return nil, x.Fail("`%s' takes %d to %d arguments, got %d", name, min, max, len(args))
		}
		return f(x, args)
	})
}

// bodyItems returns args, or the children of a sole (-> ...) argument.
func bodyItems(args []*term.Term) []*term.Term {
	if len(args) == 1 && args[0].HasHead("->") {
		return args[0].Rest()
	}
	return args
}

// block wraps t in (-> ...) unless it already is one.
func block(b builder, t *term.Term) *term.Term {
	if t.HasHead("->") {
		return t
	}
	return b.form("->", t)
}

var (
	tryWithFinally = match.Make("try", match.O(match.Range{0, match.N}), match.O(match.L{"finally", match.O()}))
	tryForm        = match.Make("try", match.O(match.Range{0, match.N}))
)

func init() {
	// Qualifiers. `x *if c` reads (*if x c).
	fixed("*if", 2, 2, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		b := at(x)
		return b.form("if", args[1], args[0]), nil
	})
	fixed("*unless", 2, 2, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		b := at(x)
		return b.form("if", b.form("not", args[1]), args[0]), nil
	})
	fixed("*++", 1, 1, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		return at(x).form("<<post++>>", args[0]), nil
	})
	fixed("*--", 1, 1, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		return at(x).form("<<post-->>", args[0]), nil
	})
	// `a *. f x` is ((<<dot>> a f) x).
	fixed("*.", 2, 2, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		b := at(x)
		lhs, rhs := args[0], args[1]
		if rhs.IsSeq() && len(rhs.Items) > 0 {
			return b.seq(append([]*term.Term{b.form("<<dot>>", lhs, rhs.Items[0])}, rhs.Rest()...)...), nil
		}
		return b.form("<<dot>>", lhs, rhs), nil
	})
	// `expr *when (cond body)` evaluates body when cond holds, with %it
	// bound to the value of expr; the value is expr otherwise.
	fixed("*when", 2, 2, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		expr, when := args[0], args[1]
		if when.Len() != 2 {
			return nil, x.Fail("MatchFailure")
		}
		b := at(x)
		it := x.Gensym("_it")
		return b.form("->",
			b.form("=", it, expr),
			b.form("macro-scope", b.form("->",
				b.form("symbol-macro", b.sym("%it"), b.form("->", b.form("<<quote>>", it))),
				b.form("if", when.Items[0], when.Items[1], it)))), nil
	})
	fixed("*catch", 2, 2, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		return qualifyTry(x, args[0], "catch", args[1].Items...)
	})
	fixed("*finally", 2, 2, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		return qualifyTry(x, args[0], "finally", args[1])
	})

	fixed("unless", 2, 3, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		b := at(x)
		return b.form("if", append([]*term.Term{b.form("not", args[0])}, args[1:]...)...), nil
	})

	// (do (a b) body) calls a function of a and b with a and b.
	fixed("do", 1, 2, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		b := at(x)
		var params, body *term.Term
		if len(args) == 1 {
			params, body = b.seq(), args[0]
		} else {
			params, body = args[0], args[1]
		}
		if params.HasHead("<<tuple>>") {
			params = b.seq(params.Rest()...)
		}
		fn := b.form("#", params, block(b, body))
		if params.IsSeq() {
			return b.seq(append([]*term.Term{fn}, params.Items...)...), nil
		}
		return b.seq(fn, params), nil
	})

	fixed("loop", 1, 2, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		b := at(x)
		return b.form("for", append([]*term.Term{b.seq()}, args...)...), nil
	})

	// (case (cond body) ...) is a match on guards; _ is the default.
	def("case", func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		b := at(x)
		cases := []*term.Term{b.sym("false")}
		for _, c := range bodyItems(args) {
			if c.Len() < 2 {
				return nil, x.Fail("MatchFailure")
			}
			pat := c.Items[0]
			switch {
			case pat.HasHead("typeof"):
				return nil, x.Fail("A pattern in case cannot have `typeof'")
			case pat.HasHead("instanceof"):
				return nil, x.Fail("A pattern in case cannot have `instanceof'")
			case !pat.Is("_"):
				pat = b.form("if", pat)
			}
			cases = append(cases, c.With(pat, c.Items[1]))
		}
		return b.form("match", cases...), nil
	})

	fixed("=freeze", 2, 2, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		b := at(x)
		if x.Optimizing() {
			return b.form("=", args[0], args[1]), nil
		}
		return b.form("=", args[0], b.seq(b.form("<<dot>>", b.sym("Object"), b.sym("freeze")), args[1])), nil
	})

	// (#+ args body) is a function bound to the current this.
	fixed("#+", 1, 2, func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		b := at(x)
		fn := b.form("#", args...)
		return b.seq(b.form("<<dot>>", fn, b.sym("bind")), b.sym("this")), nil
	})
	matchFn := func(fn string) scope.MacroFunc {
		return func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
			b := at(x)
			m := b.form("match", append([]*term.Term{
				b.form("<<dot>>", b.sym("arguments"), b.form("<<array>>", term.NewNum("0", b.p)))},
				bodyItems(args)...)...)
			return b.form(fn, b.seq(), b.form("->", m)), nil
		}
	}
	def("#match", matchFn("#"))
	def("#match+", matchFn("#+"))

	def("reap", reap)
	def("sow", sow)
}

// qualifyTry adds a (name clause...) clause to trypart, making it a try
// form if it is not one already.
func qualifyTry(x *scope.Expansion, trypart *term.Term, name string, clause ...*term.Term) (*term.Term, error) {
	b := at(x)
	added := b.form(name, clause...)
	switch {
	case !tryWithFinally.Match(trypart).Failed:
		// Nothing may follow finally.
		return b.form("try", trypart, added), nil
	case !tryForm.Match(trypart).Failed:
		return trypart.With(append(append([]*term.Term(nil), trypart.Items...), added)...), nil
	case trypart.HasHead("*catch") && trypart.Len() == 3:
		inner, err := qualifyTry(x, trypart.Items[1], "catch", trypart.Items[2].Items...)
		if err != nil {
			return nil, err
		}
		return qualifyTry(x, inner, name, clause...)
	}
	return b.form("try", trypart, added), nil
}
