package gen

import (
	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/match"
	"github.com/izreit/sifon/pkg/scope"
	"github.com/izreit/sifon/pkg/term"
)

// Quoted terms are built at run time by two lifted helpers:
//
//	__anode = function (a, l, c) { return a.nodetype = "ARRAY", a.line = l, a.col = c, a.filename = _compiletime_path, a; }
//	__sym = function (v, l, c) { return {nodetype: "SYMBOL", line: l, col: c, val: v, toString: ..., filename: _compiletime_path}; }

func (g *Generator) pathSym(env *scope.Env) *term.Term {
	return env.RegisterUtilValue("_compiletime_path", func() *js.Node { return js.Str(g.path) })
}

func (g *Generator) anodeSym(env *scope.Env) *term.Term {
	return env.RegisterUtilValue("__anode", func() *js.Node {
		a, l, c := js.Ident("a"), js.Ident("l"), js.Ident("c")
		path := g.pathSym(env)
		return js.Func(nil, []*js.Node{a, l, c}, js.Return(js.Make(js.CommaMulti,
			js.AssignTo(js.Member(a, "nodetype"), "ARRAY"),
			js.AssignTo(js.Member(a, "line"), l),
			js.AssignTo(js.Member(a, "col"), c),
			js.AssignTo(js.Member(a, "filename"), path),
			a)))
	})
}

func (g *Generator) symSym(env *scope.Env) *term.Term {
	return env.RegisterUtilValue("__sym", func() *js.Node {
		v, l, c := js.Ident("v"), js.Ident("l"), js.Ident("c")
		path := g.pathSym(env)
		prop := func(name string, value any) *js.Node {
			return js.Make(js.PropertyAssignment, term.S(name), value)
		}
		toString := js.Func(nil, nil, js.Return(js.Member(js.Ident("this"), "val")))
		return js.Func(nil, []*js.Node{v, l, c}, js.Return(js.Make(js.ObjectLiteral,
			prop("nodetype", "SYMBOL"),
			prop("line", l),
			prop("col", c),
			prop("val", v),
			prop("toString", toString),
			prop("filename", path))))
	})
}

func (g *Generator) anodeCall(env *scope.Env, elems any, p term.Pos) *js.Node {
	return js.CallOf(g.anodeSym(env), elems, p.Line, p.Col)
}

func (g *Generator) quotedAtom(node *term.Term, env *scope.Env) *js.Node {
	switch {
	case node.Is("true") || node.Is("false"):
		return js.IdentOf(node)
	case node.Kind == term.Sym:
		return js.CallOf(g.symSym(env), node.Name(), node.Line, node.Col)
	case node.Kind == term.Str || node.Kind == term.Num:
		return js.Make(js.Literal, node)
	}
	g.report(diag.Unexpected(node.Pos, node.Kind.String(), "", "Cannot quote this term."))
	return js.Undefined()
}

func (g *Generator) quoted(node *term.Term, env *scope.Env) *js.Node {
	if node.Kind != term.Seq {
		return g.quotedAtom(node, env)
	}
	elems := js.Make(js.ArrayLiteral)
	for _, ch := range node.Items {
		elems.Append(g.quoted(ch, env))
	}
	return g.anodeCall(env, elems, node.Pos)
}

func (g *Generator) quasiquoted(nest int, node *term.Term, env *scope.Env, ctx *context) piece {
	if node.Kind != term.Seq {
		return ctx.apply(piece{val: g.quotedAtom(node, env)})
	}

	// child generates one child of a quasiquoted sequence.
	child := func(ch *term.Term) piece {
		switch {
		case ch.HasHead("<<unquote>>"), ch.HasHead("<<unquote-splicing>>"):
			name := `"," (<<unquote>>)`
			if ch.HasHead("<<unquote-splicing>>") {
				name = `",@" (<<unquote-splicing>>)`
			}
			if !g.confirmArity(ch, name, 1, 1) {
				return piece{val: js.Undefined()}
			}
			if nest == 0 {
				return g.generate(ch.Items[1], env, asExpression)
			}
			return g.quasiquoted(nest-1, ch, env, asExpression)
		case ch.HasHead("<<quasiquote>>"):
			return g.quasiquoted(nest+1, ch, env, asExpression)
		}
		return g.quasiquoted(nest, ch, env, asExpression)
	}

	splicing := false
	for _, ch := range node.Items {
		splicing = splicing || ch.HasHead("<<unquote-splicing>>")
	}

	if nest > 0 || !splicing {
		var pres []*js.Node
		elems := js.Make(js.ArrayLiteral)
		for _, ch := range node.Items {
			p := child(ch)
			pres = append(pres, p.pre)
			elems.Append(p.val)
		}
		return ctx.apply(piece{pre: statements(pres...), val: g.anodeCall(env, elems, node.Pos)})
	}

	// With splicing, the array is built imperatively:
	//
	//	_qqv = []; _qqv.push(a); _qqv.push.apply(_qqv, spliced); ...
	qqv := env.UniqueSymbol("_qqv", node.Pos)
	env.RegisterUnique(qqv)
	id := js.IdentOf(qqv)
	var pres []*js.Node
	build := js.Stmts(js.AssignTo(id, js.Make(js.ArrayLiteral)))
	for _, ch := range node.Items {
		p := child(ch)
		pres = append(pres, p.pre)
		if ch.HasHead("<<unquote-splicing>>") {
			build.Append(js.CallOf(js.Member(js.Member(id, "push"), "apply"), id, p.val))
		} else {
			build.Append(js.MethodCall(id, "push", p.val))
		}
	}
	return ctx.apply(piece{pre: js.Stmts(pres, build), val: g.anodeCall(env, id, node.Pos)})
}

func init() {
	special(names("<<quote>>"), []any{"<<quote>>", match.O("value")},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			return ctx.apply(piece{val: g.quoted(b.Term("value"), env)})
		})
	special(names("<<quasiquote>>"), []any{"<<quasiquote>>", match.O("value")},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			return g.quasiquoted(0, b.Term("value"), env, ctx)
		})
}
