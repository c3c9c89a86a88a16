package macros

import (
	"github.com/izreit/sifon/pkg/scope"
	"github.com/izreit/sifon/pkg/term"
)

// reapPrefix prefixes the symbol macro through which sow finds the array of
// the innermost reap with a tag.
const reapPrefix = "%reaping-"

// (reap tag body) evaluates body and returns an array of the values given
// to (sow value tag) within it. The tag defaults to _.
func reap(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
	b := at(x)
	var tag, body *term.Term
	switch len(args) {
	case 1:
		tag, body = b.sym("_"), args[0]
	case 2:
		tag, body = args[0], args[1]
	default:
		return nil, x.Fail("`reap' takes 1 or 2 arguments, got %d", len(args))
	}
	if !tag.IsSym() {
		return nil, x.Fail("the tag of `reap' must be a symbol")
	}
	res := x.Gensym("_reaping" + tag.Name())
	return b.form("macro-scope", b.form("->",
		b.form("=", res, b.form("<<array>>")),
		b.form("symbol-macro", b.sym(reapPrefix+tag.Name()), b.form("->", b.form("<<quote>>", res))),
		body,
		res)), nil
}

// (sow value tag) pushes value to the array of the innermost enclosing reap
// with the tag.
func sow(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
	b := at(x)
	tag := "_"
	switch len(args) {
	case 1:
	case 2:
		if !args[1].IsSym() {
			return nil, x.Fail("the tag of `sow' must be a symbol")
		}
		tag = args[1].Name()
	default:
		return nil, x.Fail("`sow' takes 1 or 2 arguments, got %d", len(args))
	}
	env := x.Env()
	ms := env.AllSymbolMacrosFor(reapPrefix + tag)
	if len(ms) == 0 {
		return nil, x.Fail("Tag mismatch.")
	}
	res, err := env.ExpandMacro(ms[len(ms)-1], x.Form, nil)
	if err != nil {
		return nil, err
	}
	return b.seq(b.form("<<dot>>", res, b.sym("push")), args[0]), nil
}
