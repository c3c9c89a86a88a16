// Package js builds and prints JavaScript syntax trees.
//
// Nodes are made with Make or the shorthand constructors. Each kind
// declares constraints on its children: a child in an operand position is
// parenthesized when its precedence is lower than the position requires,
// an expression given where a statement is required becomes an expression
// statement, and a Statements node nested in another statement list is
// flattened into it. A child that violates the constraints makes Make panic
// with a *StructuralError.
package js

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/izreit/sifon/pkg/term"
)

// Node is a JavaScript syntax tree node.
type Node struct {
	Kind Kind
	// Leaf is the identifier or literal term of Identifier, Literal,
	// IdentifierName and the name of PropertyAssignment.
	Leaf *term.Term
	// Children may contain nils for optional children, such as the name of
	// an anonymous FunctionExpression.
	Children []*Node
}

// StructuralError is raised by Make for a child that does not fit.
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string { return e.Message }

// Make makes a node of the given kind. Children may be *Node values, terms
// (a symbol becomes an Identifier, a number or a string a Literal), Go
// strings (string literals), Go numbers (number literals) or nil.
func Make(kind Kind, children ...any) *Node {
	n := &Node{Kind: kind}
	return n.Append(children...)
}

// Append adds children to n and returns n. A []*Node argument is spliced.
func (n *Node) Append(children ...any) *Node {
	for _, ch := range children {
		if list, ok := ch.([]*Node); ok {
			for _, c := range list {
				n.add(c)
			}
			continue
		}
		n.add(ch)
	}
	return n
}

// Prec returns the precedence of an expression node, and false for other
// nodes.
func (n *Node) Prec() (int, bool) {
	info := &kinds[n.Kind]
	if info.class != classExpr {
		return 0, false
	}
	if info.multi && len(n.Children) == 1 {
		return n.Children[0].Prec()
	}
	return info.prec, true
}

func (n *Node) slotCount() int {
	c := len(n.Children)
	if n.Leaf != nil {
		c++
	}
	return c
}

func (n *Node) add(v any) {
	info := &kinds[n.Kind]
	idx := n.slotCount()
	last := len(info.slots) - 1
	if !info.varlen && idx > last {
		n.fail(idx, v)
	}
	if isNil(v) {
		if !info.varlen || idx < last {
			n.Children = append(n.Children, nil)
		}
		return
	}
	s := info.slots[min(idx, last)]

	if s.typ == slotLeaf {
		t, ok := v.(*term.Term)
		if !ok {
			n.fail(idx, v)
		}
		n.Leaf = t
		return
	}
	ch := coerce(v)
	if ch == nil {
		n.fail(idx, v)
	}

	if ch.Kind == Statements {
		switch n.Kind {
		case Statements, Block, SourceElements:
			if len(ch.Children) == 0 {
				return
			}
		default:
			ch = Make(Block, ch)
		}
	}

	switch s.typ {
	case slotPrec:
		prec, ok := ch.Prec()
		if !ok {
			n.fail(idx, ch)
		}
		if prec > s.prec {
			ch = &Node{Kind: Paren, Children: []*Node{ch}}
		}
	case slotStatement:
		if _, isExpr := ch.Prec(); isExpr {
			ch = &Node{Kind: ExpressionStatement, Children: []*Node{ch}}
		} else if !ch.Kind.IsStatement() {
			n.fail(idx, ch)
		}
	case slotClause:
		if kinds[ch.Kind].class != classClause {
			n.fail(idx, ch)
		}
	case slotKind:
		if ch.Kind != s.kind {
			n.fail(idx, ch)
		}
	}
	n.Children = append(n.Children, ch)
}

func isNil(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case *Node:
		return v == nil
	case *term.Term:
		return v == nil
	}
	return false
}

func coerce(v any) *Node {
	switch v := v.(type) {
	case *Node:
		return v
	case *term.Term:
		switch v.Kind {
		case term.Sym:
			return &Node{Kind: Identifier, Leaf: v}
		case term.Num, term.Str, term.Regexp:
			return &Node{Kind: Literal, Leaf: v}
		}
	case string:
		return Str(v)
	case int:
		return Num(float64(v))
	case float64:
		return Num(v)
	}
	return nil
}

func (n *Node) fail(idx int, v any) {
	ord := idx + 1
	suffix := "th"
	if ord%100 < 11 || ord%100 > 13 {
		switch ord % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	var desc string
	switch v := v.(type) {
	case *Node:
		desc = "<code: " + v.Code() + ">"
	case *term.Term:
		desc = v.String()
	default:
		b, _ := json.Marshal(v)
		desc = string(b)
	}
	panic(&StructuralError{fmt.Sprintf("The %d%s child of %s cannot be %s.",
		ord, suffix, kinds[n.Kind].name, desc)})
}

// FormatNumber formats a number the way JavaScript converts numbers to
// strings.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// Go writes 1e+06 and 1e-07; JavaScript writes 1e+6 and 1e-7.
	for i := 0; i < len(s); i++ {
		if s[i] == 'e' && i+2 < len(s) && s[i+2] == '0' {
			s = s[:i+2] + s[i+3:]
		}
	}
	return s
}
