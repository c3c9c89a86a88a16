// Package term defines the source-level tree shared by the parser, the macro
// expander and the code generator.
//
// A term is one of a sequence, a symbol, a number, a string or a regular
// expression. Terms are never mutated after construction; every
// transformation builds new terms.
package term

import (
	"fmt"
	"strings"
)

// Kind tells the variant of a Term.
type Kind uint8

// Possible values for Kind.
const (
	Seq Kind = iota
	Sym
	Num
	Str
	Regexp
)

var kindNames = [...]string{"ARRAY", "SYMBOL", "NUM", "STR", "REGEXP"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Pos is a zero-based source position. Line and Col are -1 when unknown.
type Pos struct {
	File string
	Line int
	Col  int
}

// NoPos is the position of synthesized terms.
var NoPos = Pos{Line: -1, Col: -1}

// Term is a node of the source tree.
type Term struct {
	Kind Kind
	// Val is the symbol name, the number text, or the string literal text
	// including its quotes. For a regular expression it is the body.
	Val string
	// Flags holds regular expression flags.
	Flags string
	// Items holds the children of a sequence.
	Items []*Term
	// Unique is set on hygienic symbols, whose Val is empty.
	Unique *Unique
	Pos
}

// At returns the position of t, so that a *Term can itself be passed where a
// position is wanted.
func (t *Term) At() Pos { return t.Pos }

// NewSym makes a symbol.
func NewSym(name string, p Pos) *Term { return &Term{Kind: Sym, Val: name, Pos: p} }

// NewSeq makes a sequence.
func NewSeq(p Pos, items ...*Term) *Term { return &Term{Kind: Seq, Items: items, Pos: p} }

// NewNum makes a number from its source text.
func NewNum(text string, p Pos) *Term { return &Term{Kind: Num, Val: text, Pos: p} }

// NewStr makes a string from its unquoted content.
func NewStr(s string, p Pos) *Term { return &Term{Kind: Str, Val: Literalize(s), Pos: p} }

// NewStrLiteral makes a string from literal source text, quotes included.
func NewStrLiteral(lit string, p Pos) *Term { return &Term{Kind: Str, Val: lit, Pos: p} }

// NewRegexp makes a regular expression literal.
func NewRegexp(body, flags string, p Pos) *Term {
	return &Term{Kind: Regexp, Val: body, Flags: flags, Pos: p}
}

// S is a shorthand for a positionless symbol.
func S(name string) *Term { return NewSym(name, NoPos) }

// L is a shorthand for a positionless sequence.
func L(items ...*Term) *Term { return NewSeq(NoPos, items...) }

// Name returns the name of a symbol. For a hygienic symbol this fixes its
// name if it is not fixed yet.
func (t *Term) Name() string {
	if t.Unique != nil {
		return t.Unique.Name()
	}
	return t.Val
}

// Len returns the number of children of a sequence, or 0 for other kinds.
func (t *Term) Len() int {
	if t == nil || t.Kind != Seq {
		return 0
	}
	return len(t.Items)
}

// Is reports whether t is a symbol with the given name. Hygienic symbols
// never match a textual name.
func (t *Term) Is(name string) bool {
	return t != nil && t.Kind == Sym && t.Unique == nil && t.Val == name
}

// IsSym reports whether t is a symbol.
func (t *Term) IsSym() bool { return t != nil && t.Kind == Sym }

// IsSeq reports whether t is a sequence.
func (t *Term) IsSeq() bool { return t != nil && t.Kind == Seq }

// HasHead reports whether t is a sequence whose first child is the named
// symbol.
func (t *Term) HasHead(name string) bool {
	return t.IsSeq() && len(t.Items) > 0 && t.Items[0].Is(name)
}

// Head returns the first child of a sequence, or nil.
func (t *Term) Head() *Term {
	if t.IsSeq() && len(t.Items) > 0 {
		return t.Items[0]
	}
	return nil
}

// Rest returns the children of a sequence after the first.
func (t *Term) Rest() []*Term {
	if t.IsSeq() && len(t.Items) > 0 {
		return t.Items[1:]
	}
	return nil
}

// With returns a sequence with the position of t and the given children.
func (t *Term) With(items ...*Term) *Term { return NewSeq(t.Pos, items...) }

// Same reports whether a and b are the same symbol: either the same hygienic
// symbol, or two plain symbols with an equal name.
func Same(a, b *Term) bool {
	if a.Kind != Sym || b.Kind != Sym {
		return false
	}
	if a.Unique != nil || b.Unique != nil {
		return a.Unique == b.Unique
	}
	return a.Val == b.Val
}

// Equal reports whether two trees are structurally equal, ignoring
// positions.
func Equal(a, b *Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Seq:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case Sym:
		return Same(a, b)
	default:
		return a.Val == b.Val && a.Flags == b.Flags
	}
}

// String returns a debug representation, in the same bracket notation the
// tests use.
func (t *Term) String() string {
	var sb strings.Builder
	writeDebug(&sb, t)
	return sb.String()
}

func writeDebug(sb *strings.Builder, t *Term) {
	if t == nil {
		sb.WriteString("<nil>")
		return
	}
	switch t.Kind {
	case Seq:
		sb.WriteByte('[')
		for i, it := range t.Items {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeDebug(sb, it)
		}
		sb.WriteByte(']')
	case Sym:
		if t.Unique != nil {
			sb.WriteString("#:" + t.Unique.Hint)
		} else {
			sb.WriteString(t.Val)
		}
	case Regexp:
		sb.WriteString("/" + t.Val + "/" + t.Flags)
	default:
		sb.WriteString(t.Val)
	}
}

// Normalize returns t with nil children dropped from every sequence. Terms
// without nil children are returned as is.
func Normalize(t *Term) *Term {
	if t == nil || t.Kind != Seq {
		return t
	}
	var items []*Term
	changed := false
	for i, it := range t.Items {
		n := Normalize(it)
		if !changed && (n != it || n == nil) {
			changed = true
			items = append(items, t.Items[:i]...)
		}
		if changed && n != nil {
			items = append(items, n)
		}
	}
	if !changed {
		return t
	}
	if items == nil {
		items = []*Term{}
	}
	return &Term{Kind: Seq, Items: items, Pos: t.Pos}
}
