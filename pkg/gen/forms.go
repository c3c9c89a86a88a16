package gen

import (
	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/match"
	"github.com/izreit/sifon/pkg/scope"
	"github.com/izreit/sifon/pkg/term"
)

// Collections.

func init() {
	special(names("<<array>>"), []any{"<<array>>", match.O("values", match.Range{0, match.N})},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			var props, elems []*term.Term
			for _, v := range b.Terms("values") {
				if v.HasHead(":") {
					props = append(props, v)
				} else {
					elems = append(elems, v)
				}
			}
			if len(props) == 0 {
				pre, vals := g.generateOperands(elems, env, node.Pos)
				return ctx.apply(piece{pre: pre, val: js.Make(js.ArrayLiteral, vals)})
			}

			// [a, b, key: v] makes an array with an extra property.
			arr := env.UniqueSymbol("_array", node.Pos)
			env.RegisterUnique(arr)
			id := js.IdentOf(arr)
			pre, vals := g.generateOperands(elems, env, node.Pos)
			ret := js.Stmts(pre, js.AssignTo(id, js.Make(js.ArrayLiteral, vals)))
			for _, p := range props {
				if !g.confirmArity(p, ":", 2, 2) {
					continue
				}
				name := p.Items[1]
				g.confirmPropertyName(name, "a property name of <<array>>")
				ret.Append(g.generate(p.Items[2], env, assignTo(propertyOf(id, name), nil)).stmts())
			}
			return ctx.apply(piece{pre: ret, val: id})
		})

	special(names("<<object>>"), []any{"<<object>>",
		match.O("props", match.Range{0, match.N},
			match.O("abbrev", match.SymbolButNot(":")),
			match.O("full", match.L{":", match.O("name"), match.O("value")}))},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			var names, values []*term.Term
			for _, v := range b.List("props") {
				prop := v.(match.Bindings)
				name, value := prop.Term("abbrev"), prop.Term("abbrev")
				if full := prop.Sub("full"); full != nil {
					name, value = full.Term("name"), full.Term("value")
				}
				g.confirmPropertyName(name, "a property name of <<object>>")
				names, values = append(names, name), append(values, value)
			}
			pre, vals := g.generateOperands(values, env, node.Pos)
			obj := js.Make(js.ObjectLiteral)
			for i, name := range names {
				obj.Append(js.Make(js.PropertyAssignment, name, vals[i]))
			}
			return ctx.apply(piece{pre: pre, val: obj})
		})
}

// propertyOf makes obj.name, or obj["name"] when name cannot follow a dot.
func propertyOf(obj *js.Node, name *term.Term) *js.Node {
	if name.IsDotAccessibleSym() {
		return js.Make(js.Dot, obj, js.Make(js.IdentifierName, name))
	}
	if name.Kind == term.Sym {
		return js.Make(js.Bracket, obj, name.Name())
	}
	return js.Make(js.Bracket, obj, name)
}

// Member access.

// maybeValue makes the value of an optional chain step: ret when cond
// holds, orElse (undefined by default) otherwise.
func (g *Generator) maybeValue(cond, ret piece, orElse *js.Node, env *scope.Env, ctx *context) piece {
	if orElse == nil {
		orElse = undefinedValue(env)
	}
	var p piece
	if ret.pre == nil && !ctx.ignorable {
		p = ctx.apply(piece{pre: cond.pre, val: js.Make(js.Conditional, cond.val, ret.val, orElse)})
	} else {
		dist, whole := ctx.extractDistributable(env, "_val", term.NoPos)
		then := dist.apply(ret)
		els := dist.apply(piece{val: orElse})
		p = whole.apply(piece{pre: js.Stmts(cond.pre,
			js.Make(js.IfStatement, cond.val, then.stmts(), els.stmts()))})
	}
	p.maybe = &maybe{cond: cond, then: ctx.apply(ret)}
	return p
}

func (g *Generator) propref(recv, prop *term.Term, env *scope.Env, ctx *context) piece {
	recvCtx := asExpression
	if ctx == asLeftHandSide {
		recvCtx = asLeftHandSide
	}
	r := g.generate(recv, env, recvCtx)
	var cond *piece
	if r.maybe != nil {
		cond = &r.maybe.cond
		r = r.maybe.then
	}

	var pre, expr *js.Node
	switch {
	case prop.Kind == term.Sym:
		expr = propertyOf(r.val, prop)
	case prop.HasHead("<<array>>") && prop.Len() == 2:
		p := g.generate(prop.Items[1], env, asExpression)
		pre = p.pre
		expr = js.Make(js.Bracket, r.val, p.val)
	default:
		g.report(diag.UnintelligibleDotExpression(prop.Pos))
		return piece{}
	}
	ret := piece{pre: statements(r.pre, pre), val: expr}
	if cond == nil {
		return ctx.apply(ret)
	}
	return g.maybeValue(*cond, ret, nil, env, ctx)
}

func init() {
	special(names("<<dot>>"), []any{"<<dot>>", match.O("obj"), match.O("prop")},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			return g.propref(b.Term("obj"), b.Term("prop"), env, ctx)
		})

	special(names("@"), []any{"@", match.O("value")},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			return g.propref(term.NewSym("this", node.Pos), b.Term("value"), env, ctx)
		})

	// a?.b is (_ref = a) != null ? _ref.b : undefined.
	special(names("<<question-dot>>"), []any{"<<question-dot>>", match.O("obj"), match.O("prop")},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			obj := b.Term("obj")
			ref := env.UniqueSymbol("_ref", obj.Pos)
			env.RegisterUnique(ref)
			recvCtx := asExpression
			if ctx == asLeftHandSide {
				recvCtx = asLeftHandSide
			}
			o := g.generate(obj, env, recvCtx)
			r := g.propref(ref, b.Term("prop"), env, asExpression)
			cond := js.Make(js.Ne, js.AssignTo(js.IdentOf(ref), o.val), js.Ident("null"))
			return g.maybeValue(piece{pre: o.pre, val: cond}, r, nil, env, ctx)
		})
}

// Assignment.

func init() {
	special(names("="), []any{"=", match.O("lhs"), match.O("rhs")},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			lhs, rhs := b.Term("lhs"), b.Term("rhs")
			switch {
			case lhs.Kind == term.Sym:
				g.checkAssignee(lhs, env)
				if !env.IsKnownSymbol(lhs) && rhs.Is("undefined") && !env.IsKnownVariable("undefined") {
					// A new variable starts out undefined.
					env.DeclareSymbol(lhs)
					return ctx.apply(piece{val: js.IdentOf(lhs)})
				}
				env.DeclareSymbol(lhs)
				return ctx.apply(g.generate(rhs, env, assignTo(js.IdentOf(lhs), nil)))

			case lhs.HasHead("<<array>>") || lhs.HasHead("<<object>>"):
				r := g.generate(rhs, env, asVariable(env, "_assignee", rhs.Pos))
				m := g.compilePattern(r.val, lhs, env)
				if len(m.binders) == 0 {
					g.report(diag.NothingToBind(lhs.Pos))
				}
				bind := statements(m.binders...)
				if m.tester != nil {
					bind = js.Stmts(
						js.Make(js.IfStatement, js.Make(js.Not, m.tester),
							js.Throw(term.NewStr("MatchFailure", node.Pos))),
						bind)
				}
				return ctx.apply(piece{pre: statements(r.pre, bind), val: r.val})
			}

			l := g.generate(lhs, env, asLeftHandSide)
			r := g.generate(rhs, env, assignTo(l.val, nil))
			return ctx.apply(piece{pre: statements(l.pre, r.pre), val: r.val})
		})
}

// checkAssignee reports assignments to eval, arguments and constants, and
// invalid variable names.
func (g *Generator) checkAssignee(lhs *term.Term, env *scope.Env) {
	if lhs.Is("eval") || lhs.Is("arguments") {
		g.report(diag.AssigningToConfusing(lhs.Pos))
	}
	if lhs.Unique == nil && env.IsInvariable(lhs.Val) {
		g.report(diag.AssigningToConstant(lhs.Pos))
	}
	g.confirmVarName(lhs)
}

// Sequences and conditionals.

func (g *Generator) sequential(body []*term.Term, env *scope.Env, ctx *context) piece {
	if len(body) == 0 {
		return piece{val: js.Make(js.EmptyStatement)}
	}
	var stmts []*js.Node
	last := len(body) - 1
	for _, t := range body[:last] {
		p := g.generate(t, env, ignore(env))
		stmts = append(stmts, p.pre, p.val)
	}
	p := g.generate(body[last], env, ctx)
	stmts = append(stmts, p.pre)
	return piece{pre: statements(stmts...), val: p.val}
}

func init() {
	special(names("->"), []any{"->", match.O("body", match.Range{0, match.N})},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			return g.sequential(b.Terms("body"), env, ctx)
		})

	special(names("if"), []any{"if", match.O("cond"), match.O("then"),
		match.O(match.Range{0, 1}, match.L{"else", match.O("else")}, match.O("else"))},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			thenT, elseT := b.Term("then"), b.Term("else")

			if ctx.ignorable {
				dist, whole := ctx.extractDistributable(env, "_neverused", node.Pos)
				cond := g.generate(b.Term("cond"), env, asExpression)
				then := g.generate(thenT, env, dist)
				var els piece
				if elseT != nil {
					els = g.generate(elseT, env, dist)
				} else {
					els = dist.apply(piece{val: undefinedValue(env)})
				}
				if then.empty() && els.empty() {
					return whole.apply(piece{pre: js.Stmts(cond.pre, cond.val)})
				}
				var thenS, elseS *js.Node
				if !then.empty() {
					thenS = then.stmts()
				}
				if !els.empty() {
					elseS = els.stmts()
				}
				return whole.apply(piece{pre: js.Stmts(cond.pre, js.Make(js.IfStatement, cond.val, thenS, elseS))})
			}

			cond := g.generate(b.Term("cond"), env, asExpression)
			then := g.generate(thenT, env, asExpression)
			els := piece{val: undefinedValue(env)}
			if elseT != nil {
				els = g.generate(elseT, env, asExpression)
			}
			if then.pre == nil && els.pre == nil {
				return ctx.apply(piece{pre: cond.pre, val: js.Make(js.Conditional, cond.val, then.val, els.val)})
			}
			dist, whole := ctx.extractDistributable(env, "_if_result", node.Pos)
			then = dist.apply(then)
			els = dist.apply(els)
			return whole.apply(piece{pre: js.Stmts(cond.pre,
				js.Make(js.IfStatement, cond.val, then.stmts(), els.stmts()))})
		})
}

// Functions.

// param is one formal parameter of a function form.
type param struct {
	name *term.Term
	def  *term.Term
}

// paramsPattern is shared by the function forms: an optional parameter
// spec, which is a symbol, (= name default), or a list or tuple of those,
// then the body (-> ...).
func paramsPattern(head any) []any {
	return []any{
		head,
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

func paramsOf(b match.Bindings) []param {
	args := b.Sub("args")
	if args == nil {
		return nil
	}
	toParam := func(p match.Bindings) param {
		return param{p.Term("name"), p.Term("defaultValue")}
	}
	if args.Has("name") {
		return []param{toParam(args)}
	}
	var ps []param
	for _, v := range args.List("list") {
		ps = append(ps, toParam(v.(match.Bindings)))
	}
	return ps
}

func dottedIndices(ts []*term.Term) []int {
	var idx []int
	for i, t := range ts {
		if t.IsThreeDotted() {
			idx = append(idx, i)
		}
	}
	return idx
}

// bindArguments makes the code binding a ...rest parameter, the parameters
// after it, and default values.
func (g *Generator) bindArguments(params []param, env *scope.Env) *js.Node {
	names := make([]*term.Term, len(params))
	for i, p := range params {
		names[i] = p.name
	}
	ret := js.Stmts()
	dots := dottedIndices(names)
	if len(dots) > 1 {
		g.report(diag.TooManyDottedSymbols(names[dots[1]].Pos))
	}

	arguments := js.Ident("arguments")
	length := js.Member(arguments, "length")
	if len(dots) > 0 {
		n := len(names)
		at := dots[0]
		rest := names[at].StripThreeDots()
		if rest.Val != "" {
			end := length
			if after := n - (at + 1); after != 0 {
				end = js.Make(js.Sub, length, after)
			}
			slice := js.Member(js.Member(js.Make(js.ArrayLiteral), "slice"), "call")
			ret.Append(js.AssignTo(js.IdentOf(rest), js.CallOf(slice, arguments, at, end)))
		}

		if n > at+1 {
			i := env.UniqueSymbol("_i", term.NoPos)
			env.RegisterUnique(i)
			set := js.Stmts(js.AssignTo(js.IdentOf(i),
				js.MethodCall(js.Ident("Math"), "max", js.Make(js.Sub, length, n-(at+1)), at)))
			for k, name := range names[at+1:] {
				set.Append(js.AssignTo(js.IdentOf(name),
					js.Make(js.Bracket, arguments, js.Make(js.Add, js.IdentOf(i), k))))
			}
			ret.Append(js.Make(js.IfStatement, js.Make(js.Gt, length, at), set))
		}
	}

	for _, p := range params {
		if p.def == nil {
			continue
		}
		name := p.name.StripThreeDots()
		d := g.generate(p.def, env, assignTo(js.IdentOf(name), nil))
		notGiven := js.Make(js.Eq, js.IdentOf(name), undefinedValue(env))
		if d.pre == nil {
			ret.Append(js.Make(js.And, notGiven, d.val))
		} else {
			ret.Append(js.Make(js.IfStatement, notGiven, d.stmts()))
		}
	}
	return ret
}

func (g *Generator) function(params []param, body []*term.Term, env *scope.Env) (fn *js.Node) {
	env.EnterScope()
	defer func() {
		if err := env.LeaveScope(); err != nil {
			g.report(diag.ExceptionThrownIn("evaluating `meta'", term.NoPos, err, ""))
		}
	}()

	var before, after []*term.Term
	afterDots := false
	for _, p := range params {
		afterDots = afterDots || p.name.IsThreeDotted()
		name := p.name.StripThreeDots()
		if name.Kind != term.Sym || name.Unique == nil && name.Val == "" {
			continue
		}
		if afterDots {
			after = append(after, name)
		} else {
			before = append(before, name)
		}
	}
	for _, name := range before {
		env.DeclareArgument(name)
	}
	for _, name := range after {
		if name.Unique != nil {
			env.RegisterUnique(name)
		} else {
			env.ForceRegisterVariable(name.Val, term.IsUpperCase(name.Val))
		}
	}
	paramList := make([]*js.Node, len(before))
	for i, name := range before {
		paramList[i] = js.IdentOf(name)
	}

	bind := g.bindArguments(params, env)
	b := g.sequential(body, env, returnValue)
	return js.Func(nil, paramList, varDecls(env), utilDecls(env), bind, b.pre, b.val)
}

func init() {
	fnForm := func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
		return ctx.apply(piece{val: g.function(paramsOf(b), b.Terms("body"), env)})
	}
	special(names("#"), paramsPattern("#"), fnForm)
	special(names("<<macro-definition>>"), paramsPattern("<<macro-definition>>"), fnForm)
}

// Calls.

func (g *Generator) funcall(fn *term.Term, args []*term.Term, kind js.Kind, env *scope.Env, ctx *context) piece {
	f := g.generate(fn, env, asExpression)
	var cond *piece
	if f.maybe != nil {
		cond = &f.maybe.cond
		f = f.maybe.then
	}
	// A method keeps its receiver: obj.m is split so that only obj and the
	// key are saved when an argument has a prologue.
	ps := []piece{{pre: f.pre, val: f.val}}
	callee := func(vals []*js.Node) *js.Node { return vals[0] }
	if v := f.val; v != nil && (v.Kind == js.Dot || v.Kind == js.Bracket) {
		ps = []piece{{pre: f.pre, val: v.Child(0)}, {val: v.Child(1)}}
		callee = func(vals []*js.Node) *js.Node { return js.Make(v.Kind, vals[0], vals[1]) }
	}
	n := len(ps)
	for _, a := range args {
		ps = append(ps, g.generate(a, env, asExpression))
	}
	pre, vals := g.sequence(ps, env, fn.Pos)
	ret := piece{pre: pre, val: js.Make(kind, callee(vals[:n]), js.Make(js.Arguments, vals[n:]))}
	if cond == nil {
		return ctx.apply(ret)
	}
	return g.maybeValue(*cond, ret, nil, env, ctx)
}

func init() {
	// f? args calls f only if it is a function: typeof (_fun = f) === "function" ? _fun(args) : _fun.
	special(names("?"), []any{"?", match.O("fun"), match.O("args")},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			fun := b.Term("fun")
			sym := env.UniqueSymbol("_fun", fun.Pos)
			env.RegisterUnique(sym)
			args := b.Term("args").Items
			if len(args) == 1 && args[0].IsSeq() && args[0].Len() == 0 {
				args = nil
			}
			f := g.generate(fun, env, asExpression)
			call := g.funcall(sym, args, js.Call, env, asExpression)
			cond := js.Make(js.StrictEq, js.Make(js.Typeof, js.AssignTo(js.IdentOf(sym), f.val)), "function")
			return g.maybeValue(piece{pre: f.pre, val: cond}, call, js.IdentOf(sym), env, ctx)
		})

	special(names("new"), []any{"new", match.O("fun"), match.O("args", match.Range{0, match.N})},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			return g.funcall(b.Term("fun"), b.Terms("args"), js.New, env, ctx)
		})
}

// Jumps and exceptions.

func init() {
	jump := func(name string, c *context) {
		special(names(name), []any{name, match.O("value")},
			func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
				p := g.generate(b.Term("value"), env, c)
				if p.val != nil {
					return ctx.apply(piece{pre: js.Stmts(p.pre, p.val)})
				}
				return ctx.apply(piece{pre: p.pre})
			})
	}
	jump("return", returnValue)
	jump("throw", throwValue)

	special(names("try"), []any{"try", match.O("body"),
		match.O("catches", match.Range{0, match.N},
			match.L{match.O("head", "catch"), match.O("cond"), match.O("body")}),
		match.O(match.Range{0, 1}, match.L{"finally", match.O("finally")})},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			dist, whole := ctx.extractDistributable(env, "_tryval", node.Pos)
			body := g.generate(b.Term("body"), env, dist)
			var catchN, finallyN *js.Node
			if catches := b.List("catches"); len(catches) > 0 {
				var cases []matchCase
				for _, c := range catches {
					cb := c.(match.Bindings)
					cases = append(cases, matchCase{cond: []*term.Term{cb.Term("cond")}, body: cb.Term("body")})
				}
				exc := env.UniqueSymbol("_exc", catches[0].(match.Bindings).Term("head").Pos)
				env.RegisterUnique(exc)
				rethrow := &piece{pre: js.Throw(js.IdentOf(exc))}
				m := g.match(exc, cases, rethrow, env, dist)
				catchN = js.Make(js.Catch, js.IdentOf(exc), js.Make(js.Block, m.pre, m.val))
			}
			if f := b.Term("finally"); f != nil {
				p := g.generate(f, env, ignore(env))
				finallyN = js.Make(js.Finally, js.Make(js.Block, p.pre, p.val))
			}
			return whole.apply(piece{pre: js.Make(js.TryStatement,
				js.Make(js.Block, body.pre, body.val), catchN, finallyN)})
		})
}

// Loops.

func labelled(b match.Bindings, loop *js.Node) *js.Node {
	if l := b.Sub("label"); l != nil {
		return js.Make(js.LabelledStatement, js.IdentOf(l.Term("label")), loop)
	}
	return loop
}

func labelPattern() *match.Part {
	return match.O("label", match.Range{0, 1}, match.L{"label", match.O("label", match.SymbolButNot("->"))})
}

// loopWithTest makes the body of a loop whose test needs statements:
// test.pre; if (!test) break; body.
func loopWithTest(test, body piece) *js.Node {
	return js.Stmts(test.pre, js.Make(js.IfStatement, js.Make(js.Not, test.val), js.Make(js.BreakStatement)),
		body.pre, body.val)
}

func init() {
	special(names("while"), []any{"while", match.O("test"), labelPattern(), match.O("body")},
		func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
			test := g.generate(b.Term("test"), env, asExpression)
			body := g.generate(b.Term("body"), env, ignore(env))
			var loop *js.Node
			if test.pre == nil {
				loop = js.Make(js.WhileStatement, test.val, body.stmts())
			} else {
				loop = js.Make(js.ForStatement, nil, nil, nil, loopWithTest(test, body))
			}
			return ctx.apply(piece{pre: labelled(b, loop), val: undefinedValue(env)})
		})

	special(names("for", "for-own"), []any{
		match.O("head"),
		match.O("cond",
			match.O("empty", match.L{}),
			match.O("tuple", match.L{"<<tuple>>", match.O("init"), match.O("test"), match.O("step")}),
			match.O("in", match.L{"in",
				match.O("lhs",
					match.O("key", match.Symbol),
					match.L{"<<tuple>>", match.O("key", match.Symbol), match.O("val", match.Symbol)}),
				match.O("rhs")})),
		labelPattern(),
		match.O("body"),
	}, func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
		own := b.Term("head").Is("for-own")
		cond := b.Sub("cond")

		switch {
		case cond.Has("empty"):
			if own {
				g.report(diag.InvalidForOwn(node.Pos))
			}
			body := g.generate(b.Term("body"), env, ignore(env))
			loop := js.Make(js.ForStatement, nil, nil, nil, body.stmts())
			return ctx.apply(piece{pre: labelled(b, loop), val: undefinedValue(env)})

		case cond.Has("tuple"):
			if own {
				g.report(diag.InvalidForOwn(node.Pos))
			}
			tuple := cond.Sub("tuple")
			init := g.generate(tuple.Term("init"), env, asExpression)
			test := g.generate(tuple.Term("test"), env, asExpression)
			step := g.generate(tuple.Term("step"), env, asExpression)
			body := g.generate(b.Term("body"), env, ignore(env))
			if step.pre != nil {
				g.report(diag.LimitationProhibitsStatement(tuple.Term("step").Pos))
			}
			var loop *js.Node
			if test.pre == nil {
				loop = js.Make(js.ForStatement, init.val, test.val, step.val, body.stmts())
			} else {
				loop = js.Make(js.ForStatement, init.val, nil, step.val, loopWithTest(test, body))
			}
			return ctx.apply(piece{pre: js.Stmts(init.pre, labelled(b, loop)), val: undefinedValue(env)})
		}

		in := cond.Sub("in")
		lhs := in.Sub("lhs")
		key, val := lhs.Term("key"), lhs.Term("val")
		rhsCtx := asExpression
		if own || val != nil {
			rhsCtx = asVariable(env, "_rhs", in.Term("rhs").Pos)
		}
		rhs := g.generate(in.Term("rhs"), env, rhsCtx)
		body := g.generate(b.Term("body"), env, ignore(env))

		for _, t := range []*term.Term{key, val} {
			if t == nil {
				continue
			}
			if t.Unique == nil && term.IsUpperCase(t.Val) {
				g.report(diag.ForInByConstant(t.Pos))
			}
			env.DeclareSymbol(t)
		}
		var valN, ownN *js.Node
		if val != nil {
			valN = js.AssignTo(js.IdentOf(val), js.Make(js.Bracket, rhs.val, js.IdentOf(key)))
		}
		if own {
			hasOwn := env.RegisterUtilValue("_hasOwnProp", func() *js.Node {
				return js.Member(js.Make(js.ObjectLiteral), "hasOwnProperty")
			})
			ownN = js.Make(js.IfStatement,
				js.Make(js.Not, js.MethodCall(hasOwn, "call", rhs.val, js.IdentOf(key))),
				js.Make(js.ContinueStatement))
		}
		loop := js.Make(js.ForInStatement, js.IdentOf(key), rhs.val, js.Stmts(ownN, valN, body.pre, body.val))
		return ctx.apply(piece{pre: js.Stmts(rhs.pre, labelled(b, loop)), val: undefinedValue(env)})
	})

	for _, s := range []struct {
		name string
		kind js.Kind
	}{{"break", js.BreakStatement}, {"continue", js.ContinueStatement}, {"debugger", js.DebuggerStatement}} {
		kind := s.kind
		specialSymbols[s.name] = func(g *Generator, node *term.Term, env *scope.Env, ctx *context) piece {
			return ctx.apply(piece{val: js.Make(kind)})
		}
	}
	for _, s := range []struct {
		name string
		kind js.Kind
	}{{"break", js.BreakStatement}, {"continue", js.ContinueStatement}} {
		kind := s.kind
		special(names(s.name), []any{s.name, match.O("label", match.Symbol)},
			func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
				return ctx.apply(piece{val: js.Make(kind, js.IdentOf(b.Term("label")))})
			})
	}
}
