package gen

import (
	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/match"
	"github.com/izreit/sifon/pkg/scope"
	"github.com/izreit/sifon/pkg/term"
)

// A compiled pattern. Structural tests check the shape of the matchee,
// binders assign the matched parts to variables, and guards are the
// conditions of if and unless patterns, which may read the bound
// variables.
type pattern struct {
	structure []*js.Node
	binders   []*js.Node
	guards    []*js.Node
}

// matcher is a pattern reduced to a test and the binders to run when it
// passes. A nil tester means the pattern is irrefutable.
type matcher struct {
	tester  *js.Node
	binders []*js.Node
}

var objectPropPattern = match.Make(":", match.O("prop"), match.O("value"))

// compilePattern compiles a pattern against matchee, which must be free of
// side effects since it is evaluated many times.
func (g *Generator) compilePattern(matchee *js.Node, cond *term.Term, env *scope.Env) matcher {
	var p pattern
	g.patternPart(&p, matchee, cond, env, 0)
	return p.matcher()
}

// compilePatterns is like compilePattern, for the list of patterns of a
// match case, all applied to the same matchee.
func (g *Generator) compilePatterns(matchee *js.Node, conds []*term.Term, at term.Pos, env *scope.Env) matcher {
	var p pattern
	irrefutable := 0
	for _, c := range conds {
		if c.Kind == term.Sym {
			irrefutable++
		}
	}
	if irrefutable > 1 {
		g.report(diag.MultipleIrrefutablePatterns(at))
	}
	for _, c := range conds {
		g.patternPart(&p, matchee, c, env, 1)
	}
	return p.matcher()
}

func (p *pattern) matcher() matcher {
	switch {
	case len(p.guards) == 0:
		var tester *js.Node
		if len(p.structure) > 0 {
			tester = js.Make(js.AndMulti, p.structure)
		}
		return matcher{tester, p.binders}
	case len(p.binders) == 0:
		return matcher{js.Make(js.AndMulti, p.structure, p.guards), nil}
	}
	// The guards may read the bound variables: test the structure, bind,
	// and then test the guards.
	bindThenTest := js.Make(js.CommaMulti, p.binders, js.Make(js.AndMulti, p.guards))
	return matcher{js.Make(js.AndMulti, p.structure, bindThenTest), nil}
}

func (g *Generator) patternPart(p *pattern, matchee *js.Node, cond *term.Term, env *scope.Env, nest int) {
	switch {
	case cond.IsLiteral():
		p.structure = append(p.structure, js.Make(js.StrictEq, matchee, cond))

	case cond.HasHead("<<quote>>"):
		if cond.Len() != 2 || cond.Items[1].Kind != term.Sym {
			g.report(diag.UnintelligiblePattern(cond.Pos, "<<quote>> in patterns only accept a symbol."))
			return
		}
		sym := cond.Items[1]
		p.structure = append(p.structure,
			js.Make(js.StrictEq, js.Member(matchee, "nodetype"), "SYMBOL"),
			js.Make(js.StrictEq, js.Member(matchee, "val"), sym.Name()))

	case cond.HasHead("<<quasiquote>>"):
		g.report(diag.UnintelligiblePattern(cond.Pos, "<<quasiquote>> is not valid as a pattern."))

	case cond.Kind == term.Sym:
		if cond.Is("_") {
			return
		}
		g.confirmVarName(cond)
		g.declare(cond, env)
		p.binders = append(p.binders, js.AssignTo(js.IdentOf(cond), matchee))

	case cond.HasHead("<<array>>"):
		g.arrayPattern(p, matchee, cond, env, nest)

	case cond.HasHead("<<object>>"):
		p.structure = append(p.structure, js.Make(js.Instanceof, matchee, js.Ident("Object")))
		for _, ch := range cond.Items[1:] {
			prop, value := ch, ch
			if r := objectPropPattern.Match(ch); !r.Failed {
				prop, value = r.Bindings.Term("prop"), r.Bindings.Term("value")
			} else if ch.Kind != term.Sym {
				g.report(diag.UnintelligiblePattern(ch.Pos, ""))
				continue
			}
			g.confirmPropertyName(prop, "a property name of <<object>>")
			p.structure = append(p.structure, js.Make(js.In, inLeftOperand(prop), matchee))
			g.patternPart(p, propertyOf(matchee, prop), value, env, nest+1)
		}

	case cond.HasHead("if") || cond.HasHead("unless"):
		if nest > 1 {
			g.report(diag.IfPatternCannotBeNested(cond.Pos))
		}
		if !g.confirmArity(cond, "if/unless-pattern", 1, 1) {
			return
		}
		c := g.generate(cond.Items[1], env, asExpression)
		if c.pre != nil {
			g.report(diag.LimitationProhibitsStatement(cond.Items[1].Pos))
		}
		test := c.val
		if cond.HasHead("unless") {
			test = js.Make(js.Not, test)
		}
		p.guards = append(p.guards, test)

	case cond.HasHead("instanceof"):
		or := js.Make(js.OrMulti)
		for _, ch := range cond.Items[1:] {
			c := g.generate(ch, env, asExpression)
			if c.pre != nil {
				g.report(diag.LimitationProhibitsStatement(ch.Pos))
			}
			or.Append(js.Make(js.Instanceof, matchee, c.val))
		}
		p.structure = append(p.structure, or)

	case cond.HasHead("typeof"):
		or := js.Make(js.OrMulti)
		for _, ch := range cond.Items[1:] {
			if ch.Kind != term.Str {
				g.report(diag.TypeofPatternNeedsStringLiteral(ch.Pos))
				continue
			}
			or.Append(js.Make(js.StrictEq, js.Make(js.Typeof, matchee), ch))
		}
		p.structure = append(p.structure, or)

	default:
		g.report(diag.UnintelligiblePattern(cond.Pos, ""))
	}
}

// arrayPattern compiles [a, b, ...rest, z].
func (g *Generator) arrayPattern(p *pattern, matchee *js.Node, cond *term.Term, env *scope.Env, nest int) {
	p.structure = append(p.structure, js.Make(js.Instanceof, matchee, js.Ident("Array")))
	length := js.Member(matchee, "length")
	elems := cond.Items[1:]
	dots := dottedIndices(elems)
	if len(dots) > 1 {
		g.report(diag.TooManyDottedSymbols(elems[dots[0]].Pos))
	}

	if len(dots) == 0 {
		p.structure = append(p.structure, js.Make(js.Eq, length, len(elems)))
		for i, ch := range elems {
			g.patternPart(p, js.Make(js.Bracket, matchee, i), ch, env, nest+1)
		}
		return
	}

	at := dots[0]
	after := len(elems) - at - 1
	if len(elems)-1 > 0 {
		p.structure = append(p.structure, js.Make(js.Ge, length, len(elems)-1))
	}
	for i, ch := range elems[:at] {
		g.patternPart(p, js.Make(js.Bracket, matchee, i), ch, env, nest+1)
	}
	if rest := elems[at].StripThreeDots(); rest.Val != "" {
		g.declare(rest, env)
		end := length
		if after != 0 {
			end = js.Make(js.Sub, length, after)
		}
		p.binders = append(p.binders, js.AssignTo(js.IdentOf(rest), js.MethodCall(matchee, "slice", at, end)))
	}
	for i, ch := range elems[at+1:] {
		idx := js.Make(js.Sub, length, after-i)
		g.patternPart(p, js.Make(js.Bracket, matchee, idx), ch, env, nest+1)
	}
}

// inLeftOperand makes the property name operand of an `in' test.
func inLeftOperand(prop *term.Term) *js.Node {
	if prop.Kind == term.Sym {
		return js.Str(prop.Name())
	}
	return js.Make(js.Literal, prop)
}

// Match.

type matchCase struct {
	cond []*term.Term
	body *term.Term
}

// single returns the pattern of a case with one pattern, or nil.
func (c matchCase) single() *term.Term {
	if len(c.cond) == 1 {
		return c.cond[0]
	}
	return nil
}

// match generates a match over cases. Without def, a value matching no case
// throws Error("match failure").
func (g *Generator) match(expr *term.Term, cases []matchCase, def *piece, env *scope.Env, ctx *context) piece {
	if def == nil {
		def = &piece{pre: js.Throw(js.CallOf(js.Ident("Error"), term.NewStr("match failure", expr.Pos)))}
	}

	// A switch only keeps source order when `_' comes last, since a JS
	// default clause loses to any case clause after it.
	defaults := 0
	asSwitch := len(cases) > 2
	for i, c := range cases {
		s := c.single()
		if s.Is("_") {
			defaults++
			if i < len(cases)-1 {
				asSwitch = false
			}
		} else if !s.IsLiteral() {
			asSwitch = false
		}
	}

	dist, whole := ctx.extractDistributable(env, "_match_result", expr.Pos)

	if asSwitch {
		e := g.generate(expr, env, asExpression)
		sw := js.Make(js.SwitchStatement, e.val)
		for _, c := range cases {
			body := g.generate(c.body, env, dist)
			stmts := js.Stmts(body.pre, body.val, js.Make(js.BreakStatement))
			if c.single().Is("_") {
				sw.Append(js.Make(js.DefaultClause, stmts))
			} else {
				cv := g.generate(c.single(), env, asExpression)
				sw.Append(js.Make(js.CaseClause, cv.val, stmts))
			}
		}
		if defaults == 0 {
			d := dist.apply(*def)
			sw.Append(js.Make(js.DefaultClause, d.pre, d.val))
		}
		return whole.apply(piece{pre: js.Stmts(e.pre, sw)})
	}

	e := g.generate(expr, env, asVariable(env, "_matchee", expr.Pos))
	d := dist.apply(*def)
	chain := js.Stmts(d.pre, d.val)
	for i := len(cases) - 1; i >= 0; i-- {
		c := cases[i]
		at := c.body.Pos
		if len(c.cond) > 0 {
			at = c.cond[0].Pos
		}
		m := g.compilePatterns(e.val, c.cond, at, env)
		body := g.generate(c.body, env, dist)
		caseBody := js.Stmts(m.binders, body.pre, body.val)
		if m.tester != nil {
			chain = js.Make(js.IfStatement, m.tester, caseBody, chain)
			continue
		}
		if i < len(cases)-1 {
			g.report(diag.NonLastIrrefutablePattern(at))
		}
		chain = caseBody
	}
	return whole.apply(piece{pre: js.Stmts(e.pre, chain)})
}

func init() {
	special(names("match"), []any{"match", match.O("expr"),
		match.O("cases", match.Range{1, match.N},
			match.L{match.O("cond", match.Range{1, match.N}), match.O("body")})},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			var cases []matchCase
			for _, v := range b.List("cases") {
				c := v.(match.Bindings)
				cases = append(cases, matchCase{cond: c.Terms("cond"), body: c.Term("body")})
			}
			return g.match(b.Term("expr"), cases, nil, env, ctx)
		})
}
