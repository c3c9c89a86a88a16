package js

import "github.com/izreit/sifon/pkg/term"

// Str makes a string literal.
func Str(s string) *Node {
	return &Node{Kind: Literal, Leaf: term.NewStr(s, term.NoPos)}
}

// Num makes a number literal.
func Num(f float64) *Node {
	return &Node{Kind: Literal, Leaf: term.NewNum(FormatNumber(f), term.NoPos)}
}

// Ident makes an identifier.
func Ident(name string) *Node {
	return &Node{Kind: Identifier, Leaf: term.S(name)}
}

// IdentOf makes an identifier of a symbol term, possibly a unique one.
func IdentOf(t *term.Term) *Node {
	return &Node{Kind: Identifier, Leaf: t}
}

// Name makes an IdentifierName, the property part of a Dot.
func Name(name string) *Node {
	return &Node{Kind: IdentifierName, Leaf: term.S(name)}
}

// Undefined is `void 0`.
func Undefined() *Node { return Make(Void, 0) }

// Stmts makes a Statements node.
func Stmts(children ...any) *Node { return Make(Statements, children...) }

// Expr makes an expression statement.
func Expr(e any) *Node { return Make(ExpressionStatement, e) }

// Member makes obj.name when name is a valid identifier name, and
// obj["name"] otherwise.
func Member(obj any, name string) *Node {
	if term.IsJSIdentifier(name) {
		return Make(Dot, obj, Name(name))
	}
	return Make(Bracket, obj, name)
}

// CallOf makes fn(args...).
func CallOf(fn any, args ...any) *Node {
	return Make(Call, fn, Make(Arguments, args...))
}

// MethodCall makes obj.method(args...).
func MethodCall(obj any, method string, args ...any) *Node {
	return CallOf(Member(obj, method), args...)
}

// Func makes a function expression. Name may be nil.
func Func(name any, params []*Node, body ...any) *Node {
	return Make(FunctionExpression, name, Make(FormalParameterList, params),
		Make(SourceElements, body...))
}

// AssignTo makes lhs = rhs.
func AssignTo(lhs, rhs any) *Node { return Make(Assign, lhs, rhs) }

// Return makes a return statement. The value may be nil.
func Return(v any) *Node { return Make(ReturnStatement, v) }

// Throw makes a throw statement.
func Throw(v any) *Node { return Make(ThrowStatement, v) }

// VarNoAssign declares the given identifiers.
func VarNoAssign(names ...*Node) *Node {
	return Make(VariableStatementNoAssign, names)
}

// IsEmpty reports whether n renders to nothing or a lone semicolon.
func (n *Node) IsEmpty() bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case Nil, EmptyStatement:
		return true
	case Statements, Block, SourceElements:
		for _, ch := range n.Children {
			if !ch.IsEmpty() {
				return false
			}
		}
		return true
	}
	return false
}

// EndsWithJump reports whether the last statement of n is a jump.
func (n *Node) EndsWithJump() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case Statements, Block, SourceElements:
		for i := len(n.Children) - 1; i >= 0; i-- {
			if !n.Children[i].IsEmpty() {
				return n.Children[i].EndsWithJump()
			}
		}
		return false
	}
	return n.Kind.IsJump()
}
