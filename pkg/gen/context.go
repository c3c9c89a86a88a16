package gen

import (
	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/scope"
	"github.com/izreit/sifon/pkg/term"
)

// piece is the result of generating one term: a prologue of statements
// that must run first, and the value. Either may be nil. The value is an
// expression, or a statement once a context turned it into one.
type piece struct {
	pre, val *js.Node
	// maybe is set on the result of an optional chain step, such as a?.b,
	// so that a following step can join the same null test.
	maybe *maybe
}

type maybe struct {
	cond piece
	then piece
}

func (p piece) empty() bool { return p.pre == nil && p.val == nil }

// stmts flattens p into a statement list.
func (p piece) stmts() *js.Node { return js.Stmts(p.pre, p.val) }

// context tells the generator what is going to happen to the value of the
// term being generated.
//
// A distributable context can be applied separately to each branch of a
// conditional, instead of to a temporary holding its result. An ignorable
// context discards the value.
type context struct {
	distributable bool
	ignorable     bool
	apply         func(p piece) piece
}

func identity(p piece) piece { return p }

var (
	asExpression   = &context{apply: identity}
	asLeftHandSide = &context{apply: identity}
)

var returnValue = &context{distributable: true, apply: func(p piece) piece {
	if p.val != nil && p.val.Kind.IsJump() || p.val == nil && p.pre.EndsWithJump() {
		return p
	}
	return piece{pre: p.pre, val: js.Return(p.val)}
}}

var throwValue = &context{distributable: true, apply: func(p piece) piece {
	if p.val != nil && p.val.Kind.IsJump() || p.val == nil && p.pre.EndsWithJump() {
		return p
	}
	v := p.val
	if v == nil {
		v = js.Undefined()
	}
	return piece{pre: p.pre, val: js.Throw(v)}
}}

// assignTo assigns the value to lhs with the given assignment operator.
func assignTo(lhs *js.Node, op func(lhs, rhs *js.Node) *js.Node) *context {
	if op == nil {
		op = func(lhs, rhs *js.Node) *js.Node { return js.AssignTo(lhs, rhs) }
	}
	return &context{distributable: true, apply: func(p piece) piece {
		if p.val == nil {
			return piece{pre: p.pre}
		}
		return piece{pre: p.pre, val: op(lhs, p.val)}
	}}
}

// asVariable makes sure the value is a plain identifier, assigning it to a
// new hygienic local when it is not.
func asVariable(env *scope.Env, hint string, at term.Pos) *context {
	return &context{apply: func(p piece) piece {
		if p.val != nil && p.val.Kind == js.Identifier {
			return p
		}
		if p.val != nil && p.val.Kind == js.Assign && p.val.Children[0].Kind == js.Identifier {
			return piece{pre: js.Stmts(p.pre, p.val), val: p.val.Children[0]}
		}
		t := env.UniqueSymbol(hint, at)
		env.RegisterUnique(t)
		id := js.IdentOf(t)
		return piece{pre: js.Stmts(p.pre, js.AssignTo(id, p.val)), val: id}
	}}
}

// ignore drops the value. A value without side effects is dropped
// entirely.
func ignore(env *scope.Env) *context {
	var pure func(n *js.Node) bool
	pure = func(n *js.Node) bool {
		switch {
		case n == nil:
			return false
		case n.Kind == js.Identifier:
			return env.IsKnownSymbol(n.Leaf) || n.Leaf.Is("undefined")
		case n.Kind == js.Literal:
			return true
		case n.Kind == js.Void:
			return pure(n.Child(0))
		}
		return false
	}
	return &context{distributable: true, ignorable: true, apply: func(p piece) piece {
		if pure(p.val) || p.val != nil && p.val.Kind == js.ExpressionStatement && pure(p.val.Child(0)) {
			return piece{pre: p.pre}
		}
		return p
	}}
}

// extractDistributable splits c into a context to apply to each branch of
// a conditional and a context to apply to the conditional as a whole. When
// c is not distributable, the branches assign to a new hygienic local,
// which becomes the value of the whole.
func (c *context) extractDistributable(env *scope.Env, hint string, at term.Pos) (dist, whole *context) {
	if c.distributable {
		return c, &context{apply: func(p piece) piece { return piece{pre: p.pre} }}
	}
	t := env.UniqueSymbol(hint, at)
	env.RegisterUnique(t)
	id := js.IdentOf(t)
	return assignTo(id, nil), &context{apply: func(p piece) piece { return piece{pre: p.pre, val: id} }}
}

// undefinedValue is `undefined', or `void 0' when the name undefined is
// shadowed.
func undefinedValue(env *scope.Env) *js.Node {
	if env.IsKnownVariable("undefined") {
		return js.Undefined()
	}
	return js.Ident("undefined")
}
