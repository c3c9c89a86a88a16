// Package gen generates JavaScript syntax trees from fully expanded terms.
//
// Every term is generated into a piece: prologue statements that must run
// first, and a value expression. The caller passes a context deciding what
// happens to the value, such as returning it or assigning it to a
// variable. When a value comes out of two branches of a conditional, a
// distributable context is pushed into each branch; otherwise the branches
// assign to one hygienic temporary. This keeps the output a plain
// expression as long as no statement is needed, and evaluates every side
// effect exactly once when one is.
package gen

import (
	"errors"

	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/logutil"
	"github.com/izreit/sifon/pkg/match"
	"github.com/izreit/sifon/pkg/scope"
	"github.com/izreit/sifon/pkg/term"
)

var logger = logutil.GetLogger("[gen] ")

const unknownPath = "(unknown)"

// Generator generates code. It is not safe for concurrent use.
type Generator struct {
	reporter diag.Reporter
	path     string
}

// New makes a Generator reporting to r. A nil r makes every error fatal.
func New(r diag.Reporter) *Generator {
	if r == nil {
		r = diag.ReporterFunc(func(m *diag.Message) {
			if m.IsError() {
				panic(diag.ErrFatal)
			}
		})
	}
	return &Generator{reporter: r, path: unknownPath}
}

// SetCompileTimePath sets the file name embedded in quoted terms.
func (g *Generator) SetCompileTimePath(path string) {
	if path == "" {
		path = unknownPath
	}
	g.path = path
}

func (g *Generator) report(m *diag.Message) { g.reporter.Report(m) }

// Generate generates a program from top-level terms. The terms run in a new
// scope of env, whose variables and utility values are declared at the
// head of the program. Nil terms are skipped; without terms the result is
// a Nil node.
//
// Hygienic symbols declared while generating are named before Generate
// returns.
func (g *Generator) Generate(nodes []*term.Term, env *scope.Env) (ret *js.Node, err error) {
	var ts []*term.Term
	for _, n := range nodes {
		if n != nil {
			ts = append(ts, term.Normalize(n))
		}
	}
	if len(ts) == 0 {
		return js.Make(js.Nil), nil
	}

	env.EnterScope()
	unit := env.Top()
	defer func() {
		env.ResolveUniques(unit)
		if leaveErr := env.LeaveScope(); leaveErr != nil && err == nil {
			err = leaveErr
		}
	}()

	var body []*js.Node
	for i, t := range ts {
		ctx := asExpression
		if i < len(ts)-1 {
			ctx = ignore(env)
		}
		p := g.generate(t, env, ctx)
		body = append(body, p.pre, p.val)
	}
	return js.Stmts(utilDecls(env), varDecls(env), body), nil
}

func varDecls(env *scope.Env) *js.Node {
	vars := env.VariableSymbols()
	if len(vars) == 0 {
		return nil
	}
	ids := make([]*js.Node, len(vars))
	for i, v := range vars {
		ids[i] = js.IdentOf(v)
	}
	return js.VarNoAssign(ids...)
}

func utilDecls(env *scope.Env) *js.Node {
	uvs := env.UtilValues()
	if len(uvs) == 0 {
		return nil
	}
	decl := js.Make(js.VariableStatementDirect)
	for _, uv := range uvs {
		decl.Append(js.Make(js.VariableDeclaration, js.IdentOf(uv.Symbol), uv.Value))
	}
	return decl
}

// Special forms and symbols.

type formFunc func(g *Generator, b match.Bindings, node *term.Term, env *scope.Env, ctx *context) piece

type symbolFunc func(g *Generator, node *term.Term, env *scope.Env, ctx *context) piece

var (
	specialForms   = map[string]func(g *Generator, node *term.Term, env *scope.Env, ctx *context) piece{}
	specialSymbols = map[string]symbolFunc{}
)

// special registers a special form under one or more names. The form is
// destructured with pattern, whose bindings are passed to f; a form not
// matching it is reported as invalid.
func special(names []string, pattern []any, f formFunc) {
	m := match.Make(pattern...)
	impl := func(g *Generator, node *term.Term, env *scope.Env, ctx *context) piece {
		r := m.Match(node)
		if r.Failed {
			at := r.At
			if at == nil {
				at = node
			}
			g.report(diag.InvalidSpecialForm(at.Pos, node.Items[0].Val))
			return piece{}
		}
		return f(g, r.Bindings, node, env, ctx)
	}
	for _, name := range names {
		specialForms[name] = impl
	}
}

func names(ns ...string) []string { return ns }

// IsSpecialForm reports whether name is the head of a special form.
func IsSpecialForm(name string) bool {
	_, ok := specialForms[name]
	return ok
}

func (g *Generator) generate(node *term.Term, env *scope.Env, ctx *context) (ret piece) {
	defer func() {
		if r := recover(); r != nil {
			var serr *js.StructuralError
			if e, ok := r.(error); ok && errors.As(e, &serr) {
				logger.Println("invalid js from", node, serr.Message)
				g.report(diag.GeneratingInvalidJavaScript(node.Pos, serr.Message))
				ret = piece{}
				return
			}
			panic(r)
		}
	}()

	switch node.Kind {
	case term.Seq:
		if len(node.Items) == 0 {
			return ctx.apply(piece{val: undefinedValue(env)})
		}
		head := node.Items[0]
		if head.IsSym() && head.Unique == nil {
			if f, ok := specialForms[head.Val]; ok {
				return f(g, node, env, ctx)
			}
		}
		return g.funcall(node.Items[0], node.Items[1:], js.Call, env, ctx)
	case term.Sym:
		if node.Unique == nil {
			if f, ok := specialSymbols[node.Val]; ok {
				return f(g, node, env, ctx)
			}
			if ctx == asLeftHandSide && env.IsInvariable(node.Val) {
				g.report(diag.AssigningToConstant(node.Pos))
			}
			env.TouchVariable(node.Val)
		}
		return ctx.apply(piece{val: js.IdentOf(node)})
	case term.Num, term.Str, term.Regexp:
		return ctx.apply(piece{val: js.Make(js.Literal, node)})
	}
	g.report(diag.Unexpected(node.Pos, node.Kind.String(), "value nodetype", "A compiler bug."))
	return ctx.apply(piece{})
}

// sequence joins operands evaluated left to right into one prologue and
// their values. Before the prologue of an operand runs, the values of the
// operands on its left are saved in hygienic locals unless they are
// settled.
func (g *Generator) sequence(ps []piece, env *scope.Env, at term.Pos) (*js.Node, []*js.Node) {
	var pres []*js.Node
	vals := make([]*js.Node, len(ps))
	for i, p := range ps {
		if p.pre != nil {
			for j := 0; j < i; j++ {
				if settled(vals[j]) || vals[j].Kind == js.Identifier && !disturbs(p.pre, vals[j].Leaf) {
					continue
				}
				t := env.UniqueSymbol("_operand", at)
				env.RegisterUnique(t)
				id := js.IdentOf(t)
				pres = append(pres, js.AssignTo(id, vals[j]))
				vals[j] = id
			}
			pres = append(pres, p.pre)
		}
		vals[i] = p.val
	}
	return statements(pres...), vals
}

// settled reports whether the value of n cannot be changed by any statement
// run after it.
func settled(n *js.Node) bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case js.Literal, js.IdentifierName, js.FunctionExpression:
		return true
	case js.Identifier:
		return n.Leaf.Unique != nil || n.Leaf.Is("this")
	case js.Void:
		return n.Child(0) != nil && n.Child(0).Kind == js.Literal
	}
	return false
}

// disturbs reports whether running n may change the variable name: n
// updates it, or calls a function that might.
func disturbs(n *js.Node, name *term.Term) bool {
	if n == nil {
		return false
	}
	switch {
	case n.Kind == js.Call || n.Kind == js.New:
		return true
	case n.Kind.IsUpdate():
		if t := n.Child(0); t != nil && t.Kind == js.Identifier && term.Equal(t.Leaf, name) {
			return true
		}
	}
	for _, c := range n.Children {
		if disturbs(c, name) {
			return true
		}
	}
	return false
}

// generateOperands generates nodes as operands with sequence.
func (g *Generator) generateOperands(nodes []*term.Term, env *scope.Env, at term.Pos) (*js.Node, []*js.Node) {
	ps := make([]piece, len(nodes))
	for i, n := range nodes {
		ps[i] = g.generate(n, env, asExpression)
	}
	return g.sequence(ps, env, at)
}

// statements makes a Statements node of the non-nil nodes, or nil when
// there are none.
func statements(nodes ...*js.Node) *js.Node {
	var ns []*js.Node
	for _, n := range nodes {
		if n != nil {
			ns = append(ns, n)
		}
	}
	if len(ns) == 0 {
		return nil
	}
	return js.Stmts(ns)
}

// confirmVarName reports a symbol that cannot name a variable.
func (g *Generator) confirmVarName(t *term.Term) {
	if !t.IsValidVarSym() {
		g.report(diag.InvalidJSIdentifier(t.Pos, t.Name()))
	}
}

func (g *Generator) confirmArity(t *term.Term, name string, min, max int) bool {
	n := t.Len() - 1
	switch {
	case n < min:
		g.report(diag.TooFewArg(t.Pos, name, min, n))
		return false
	case n > max:
		g.report(diag.TooManyArg(t.Pos, name, max, n))
		return false
	}
	return true
}

func (g *Generator) confirmPropertyName(t *term.Term, what string) {
	if t.Kind != term.Sym && t.Kind != term.Num && t.Kind != term.Str {
		g.report(diag.Unexpected(t.Pos, t.Kind.String(), "", "Expected a symbol, a number or a string as "+what+"."))
	}
}

// declare registers an assigned symbol, warning when it is a constant.
func (g *Generator) declare(t *term.Term, env *scope.Env) {
	if t.Unique == nil && env.IsInvariable(t.Val) {
		g.report(diag.AssigningToConstant(t.Pos))
	}
	env.DeclareSymbol(t)
}
