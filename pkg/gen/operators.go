package gen

import (
	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/match"
	"github.com/izreit/sifon/pkg/scope"
	"github.com/izreit/sifon/pkg/term"
)

var anyValues = []any{match.O(), match.O("values", match.Range{0, match.N})}

func init() {
	// (+ a b c) is a + b + c; (- a) is -a; (/ a) is 1 / a.
	for _, op := range []struct {
		name  string
		multi js.Kind
		unary func(x *js.Node) *js.Node
	}{
		{"+", js.AddMulti, func(x *js.Node) *js.Node { return js.Make(js.UnaryPlus, x) }},
		{"-", js.SubMulti, func(x *js.Node) *js.Node { return js.Make(js.UnaryMinus, x) }},
		{"*", js.MulMulti, nil},
		{"/", js.DivMulti, func(x *js.Node) *js.Node { return js.Make(js.Div, 1, x) }},
		{"%", js.ModMulti, nil},
		{"<<", js.LShiftMulti, nil},
		{">>", js.SRShiftMulti, nil},
		{">>>", js.URShiftMulti, nil},
		{"&", js.BitAndMulti, nil},
		{"|", js.BitOrMulti, nil},
		{"^", js.BitXorMulti, nil},
	} {
		op := op
		special(names(op.name), anyValues,
			func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
				values := b.Terms("values")
				switch len(values) {
				case 0:
					return ctx.apply(piece{val: undefinedValue(env)})
				case 1:
					p := g.generate(values[0], env, asExpression)
					if op.unary != nil {
						p.val = op.unary(p.val)
					}
					return ctx.apply(piece{pre: p.pre, val: p.val})
				}
				pre, vals := g.generateOperands(values, env, node.Pos)
				return ctx.apply(piece{pre: pre, val: js.Make(op.multi, vals)})
			})
	}

	// Logical operators keep short-circuiting even when an operand needs
	// statements, by turning into an if statement.
	for _, op := range []struct {
		names  []string
		multi  js.Kind
		binary js.Kind
		// asCond makes the condition under which the left operand is the
		// result.
		asCond func(x *js.Node) *js.Node
	}{
		{names("&&", "and"), js.AndMulti, js.And, func(x *js.Node) *js.Node { return js.Make(js.Not, x) }},
		{names("||", "or"), js.OrMulti, js.Or, func(x *js.Node) *js.Node { return x }},
	} {
		op := op
		special(op.names, anyValues,
			func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
				values := b.Terms("values")
				switch len(values) {
				case 0:
					return ctx.apply(piece{val: undefinedValue(env)})
				case 1:
					return ctx.apply(g.generate(values[0], env, asExpression))
				}
				ps := make([]piece, len(values))
				simple := true
				for i, v := range values {
					ps[i] = g.generate(v, env, asExpression)
					simple = simple && (i == 0 || ps[i].pre == nil)
				}
				if simple {
					vals := make([]*js.Node, len(ps))
					for i, p := range ps {
						vals[i] = p.val
					}
					return ctx.apply(piece{pre: ps[0].pre, val: js.Make(op.multi, vals)})
				}
				acc := ps[0]
				for i, rhs := range ps[1:] {
					c := asExpression
					if i == len(ps)-2 {
						c = ctx
					}
					acc = g.logical(op.binary, op.asCond, acc, rhs, env, c)
				}
				return acc
			})
	}

	// Relational operators chain: (< a b c) is a < b && b < c.
	for _, op := range []struct {
		name     string
		kind     js.Kind
		combined js.Kind
	}{
		{"js==", js.Eq, js.AndMulti},
		{"js!=", js.Ne, js.OrMulti},
		{"==", js.StrictEq, js.AndMulti},
		{"!=", js.StrictNe, js.OrMulti},
		{">", js.Gt, js.AndMulti},
		{">=", js.Ge, js.AndMulti},
		{"<", js.Lt, js.AndMulti},
		{"<=", js.Le, js.AndMulti},
	} {
		op := op
		special(names(op.name), []any{match.O(), match.O("values", match.Range{2, match.N})},
			func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
				pre, vals := g.generateOperands(b.Terms("values"), env, node.Pos)
				combined := js.Make(op.combined)
				for i := 0; i < len(vals)-1; i++ {
					combined.Append(js.Make(op.kind, vals[i], vals[i+1]))
				}
				return ctx.apply(piece{pre: pre, val: combined})
			})
	}

	for _, op := range []struct {
		names []string
		kind  js.Kind
	}{
		{names("++"), js.PreInc},
		{names("--"), js.PreDec},
		{names("<<post++>>"), js.PostInc},
		{names("<<post-->>"), js.PostDec},
		{names("~"), js.BitNot},
		{names("!", "not"), js.Not},
		{names("delete"), js.Delete},
		{names("void"), js.Void},
		{names("typeof"), js.Typeof},
	} {
		kind := op.kind
		special(op.names, []any{match.O(), match.O("value")},
			func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
				p := g.generate(b.Term("value"), env, asExpression)
				return ctx.apply(piece{pre: p.pre, val: js.Make(kind, p.val)})
			})
	}

	for _, op := range []struct {
		name string
		kind js.Kind
	}{{"in", js.In}, {"instanceof", js.Instanceof}} {
		op := op
		special(names(op.name), []any{op.name, match.O("lhs"), match.O("rhs")},
			func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
				pre, vals := g.generateOperands([]*term.Term{b.Term("lhs"), b.Term("rhs")}, env, node.Pos)
				return ctx.apply(piece{pre: pre, val: js.Make(op.kind, vals[0], vals[1])})
			})
	}

	compound := func(kind js.Kind) func(lhs, rhs *js.Node) *js.Node {
		return func(lhs, rhs *js.Node) *js.Node { return js.Make(kind, lhs, rhs) }
	}
	for _, op := range []struct {
		name string
		op   func(lhs, rhs *js.Node) *js.Node
	}{
		{"+=", compound(js.AddAssign)},
		{"-=", compound(js.SubAssign)},
		{"*=", compound(js.MulAssign)},
		{"/=", compound(js.DivAssign)},
		{"%=", compound(js.ModAssign)},
		{"<<=", compound(js.LShiftAssign)},
		{">>=", compound(js.SRShiftAssign)},
		{">>>=", compound(js.URShiftAssign)},
		{"&=", compound(js.BitAndAssign)},
		{"|=", compound(js.BitOrAssign)},
		{"^=", compound(js.BitXorAssign)},
		// a &&= b is a && (a = b).
		{"&&=", func(lhs, rhs *js.Node) *js.Node { return js.Make(js.And, lhs, js.AssignTo(lhs, rhs)) }},
		{"||=", func(lhs, rhs *js.Node) *js.Node { return js.Make(js.Or, lhs, js.AssignTo(lhs, rhs)) }},
	} {
		op := op
		special(names(op.name), []any{op.name, match.O("lhs"), match.O("rhs")},
			func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece {
				lhs, rhs := b.Term("lhs"), b.Term("rhs")
				if lhs.Kind == term.Sym {
					g.checkAssignee(lhs, env)
					return ctx.apply(g.generate(rhs, env, assignTo(js.IdentOf(lhs), op.op)))
				}
				l := g.generate(lhs, env, asLeftHandSide)
				r := g.generate(rhs, env, assignTo(l.val, op.op))
				return ctx.apply(piece{pre: statements(l.pre, r.pre), val: r.val})
			})
	}
}

// logical generates lhs op rhs when rhs needs statements:
//
//	_logiclhs = lhs; if (asCond(_logiclhs)) result = _logiclhs; else { rhs.pre; result = rhs; }
func (g *Generator) logical(op js.Kind, asCond func(*js.Node) *js.Node, lhs, rhs piece, env *scope.Env, ctx *context) piece {
	if rhs.pre == nil {
		return ctx.apply(piece{pre: lhs.pre, val: js.Make(op, lhs.val, rhs.val)})
	}
	dist, whole := ctx.extractDistributable(env, "_logicresult", term.NoPos)
	l := asVariable(env, "_logiclhs", term.NoPos).apply(lhs)
	dl := dist.apply(piece{val: l.val})
	dr := dist.apply(rhs)
	return whole.apply(piece{pre: js.Stmts(l.pre,
		js.Make(js.IfStatement, asCond(l.val), dl.stmts(), dr.stmts()))})
}
