package js

import (
	"strings"

	"github.com/izreit/sifon/pkg/term"
)

// Layout markers in raw code, resolved by decode.
const (
	mIndent  = "\x01"
	mDedent  = "\x02"
	mNewline = "\x03"
)

// Code renders n as JavaScript source indented by two spaces.
func (n *Node) Code() string {
	return decode(n.raw(true), 2)
}

// OneLine renders n on a single line.
func (n *Node) OneLine() string {
	r := strings.NewReplacer(mIndent, "", mDedent, "", mNewline, " ")
	return r.Replace(n.raw(true))
}

func decode(raw string, indent int) string {
	var sb strings.Builder
	nest := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case mIndent[0]:
			nest += indent
		case mDedent[0]:
			nest -= indent
		case mNewline[0]:
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(" ", max(nest, 0)))
		default:
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}

func fill(tmpl string, args ...string) string {
	var sb strings.Builder
	for {
		i := strings.Index(tmpl, "###")
		if i < 0 || len(args) == 0 {
			sb.WriteString(tmpl)
			return sb.String()
		}
		sb.WriteString(tmpl[:i])
		sb.WriteString(args[0])
		args = args[1:]
		tmpl = tmpl[i+3:]
	}
}

// Child returns the i-th child, or nil when n has fewer children.
func (n *Node) Child(i int) *Node {
	if i < len(n.Children) {
		return n.Children[i]
	}
	return nil
}

func (n *Node) rawChild(i int) string {
	if ch := n.Child(i); ch != nil {
		return ch.raw(false)
	}
	return ""
}

// rawChildren renders the children. The first child inherits toplevel.
func (n *Node) rawChildren(toplevel, force bool) []string {
	rs := make([]string, len(n.Children))
	for i, ch := range n.Children {
		if ch != nil {
			rs[i] = ch.raw(force || (toplevel && i == 0))
		}
	}
	return rs
}

const (
	block = "{" + mIndent + mNewline + "###" + mDedent + mNewline + "}"
)

func (n *Node) raw(toplevel bool) string {
	info := &kinds[n.Kind]
	switch n.Kind {
	case Identifier, IdentifierName:
		return n.Leaf.Name()
	case Literal:
		return literalCode(n.Leaf)
	case ArrayLiteral:
		switch len(n.Children) {
		case 0:
			return "[]"
		case 1:
			return "[" + n.rawChild(0) + "]"
		}
		return "[" + mIndent + mNewline + strings.Join(n.rawChildren(false, false), ","+mNewline) + mDedent + mNewline + "]"
	case ObjectLiteral:
		var s string
		switch len(n.Children) {
		case 0:
			s = "{}"
		case 1:
			s = "{ " + n.rawChild(0) + " }"
		default:
			s = "{" + mIndent + mNewline + strings.Join(n.rawChildren(false, false), ","+mNewline) + mDedent + mNewline + "}"
		}
		if toplevel {
			return "(" + s + ")"
		}
		return s
	case PropertyAssignment:
		return PropertyName(n.Leaf) + ": " + n.rawChild(0)
	case FunctionExpression:
		s := fill("function ###(###) "+block, n.rawChild(0), n.rawChild(1), n.rawChild(2))
		if toplevel {
			return "(" + s + ")"
		}
		return s
	case FormalParameterList, Arguments, VariableDeclarationList:
		return strings.Join(n.rawChildren(toplevel, false), ", ")
	case Statements:
		rs := n.rawChildren(false, true)
		if len(rs) == 0 {
			return ";"
		}
		return strings.Join(rs, mNewline)
	case Block:
		return fill(block, strings.Join(n.rawChildren(false, true), mNewline))
	case SourceElements:
		return strings.Join(n.rawChildren(toplevel, true), mNewline)
	case VariableDeclaration:
		if n.Child(1) != nil {
			return n.rawChild(0) + " = " + n.rawChild(1)
		}
		return n.rawChild(0)
	case VariableStatementDirect, VariableStatementNoAssign:
		return "var " + strings.Join(n.rawChildren(toplevel, false), ", ") + ";"
	case IfStatement:
		return n.rawIf()
	case ForStatement:
		c0, c1, c2 := n.rawChild(0), n.rawChild(1), n.rawChild(2)
		if c0 == "" && c1 == "" && c2 == "" {
			return "for (;;) " + n.rawChild(3)
		}
		return fill("for (###; ###; ###) ###", c0, c1, c2, n.rawChild(3))
	case ContinueStatement, BreakStatement, ReturnStatement:
		kw := map[Kind]string{ContinueStatement: "continue", BreakStatement: "break", ReturnStatement: "return"}[n.Kind]
		if n.Child(0) != nil {
			return kw + " " + n.rawChild(0) + ";"
		}
		return kw + ";"
	case SwitchStatement:
		rs := n.rawChildren(false, false)
		return fill("switch (###) {"+mNewline+"###"+mNewline+"}", rs[0], strings.Join(rs[1:], mNewline))
	case CaseClause:
		rs := n.rawChildren(false, false)
		return fill("case ###:"+mIndent+mNewline+"###"+mDedent, rs[0], strings.Join(rs[1:], mNewline))
	case DefaultClause:
		return "default:" + mIndent + mNewline + strings.Join(n.rawChildren(false, false), mNewline) + mDedent
	case TryStatement:
		parts := []string{"try"}
		for _, r := range n.rawChildren(false, false) {
			if r != "" {
				parts = append(parts, r)
			}
		}
		return strings.Join(parts, " ")
	case ExpressionStatement:
		return n.Children[0].raw(true) + ";"
	}
	if info.multi {
		return strings.Join(n.rawChildren(toplevel, false), info.tmpl)
	}
	// Only a child printed at the very start inherits toplevel.
	return fill(info.tmpl, n.rawChildren(toplevel && strings.HasPrefix(info.tmpl, "###"), false)...)
}

func (n *Node) rawIf() string {
	cond, then, els := n.Child(0), n.Child(1), n.Child(2)
	rElse := ""
	if els != nil {
		rElse = els.raw(false)
	}
	rThen := ";"
	if then != nil {
		rThen = then.raw(false)
	}
	if rElse != "" && rElse != ";" {
		indentElse := !(els.Kind == Block || els.Kind == IfStatement)
		elsePart := rElse
		if indentElse {
			elsePart = mIndent + mNewline + rElse + mDedent
		}
		if rThen != ";" {
			thenPart := rThen + " "
			if then.Kind != Block {
				thenPart = mIndent + mNewline + rThen + mDedent + mNewline
			}
			return "if (" + cond.raw(false) + ") " + thenPart + "else " + elsePart
		}
		not := Make(Not, cond)
		return "if (" + not.raw(false) + ") " + elsePart
	}
	return "if (" + cond.raw(false) + ") " + rThen
}

func literalCode(t *term.Term) string {
	if t.Kind == term.Regexp {
		return "/" + t.Val + "/" + t.Flags
	}
	return t.Val
}

// PropertyName renders a term as the name part of an object literal
// property. It panics with a *StructuralError for terms that cannot name a
// property.
func PropertyName(t *term.Term) string {
	switch t.Kind {
	case term.Sym:
		if t.IsValidVarSym() {
			return t.Name()
		}
		return term.Literalize(t.Name())
	case term.Num, term.Str:
		return t.Val
	}
	panic(&StructuralError{"A property name is expected."})
}
