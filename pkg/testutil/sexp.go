package testutil

import (
	"strings"
	"unicode"

	"github.com/izreit/sifon/pkg/term"
)

// Sexp reads terms written as plain S-expressions, for tests of the stages
// after parsing. It knows only parentheses, double-quoted strings without
// escapes, numbers and symbols. Every term gets term.NoPos.
func Sexp(src string) []*term.Term {
	var stack [][]*term.Term
	var cur []*term.Term
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\n' || c == '\t':
			i++
		case c == '(':
			stack = append(stack, cur)
			cur = nil
			i++
		case c == ')':
			seq := term.L(cur...)
			cur = append(stack[len(stack)-1], seq)
			stack = stack[:len(stack)-1]
			i++
		case c == '"':
			j := strings.IndexByte(src[i+1:], '"') + i + 2
			cur = append(cur, term.NewStrLiteral(src[i:j], term.NoPos))
			i = j
		default:
			j := i
			for j < len(src) && !strings.ContainsRune(" \n\t()", rune(src[j])) {
				j++
			}
			tok := src[i:j]
			if unicode.IsDigit(rune(tok[0])) || len(tok) > 1 && tok[0] == '-' && unicode.IsDigit(rune(tok[1])) {
				cur = append(cur, term.NewNum(tok, term.NoPos))
			} else {
				cur = append(cur, term.S(tok))
			}
			i = j
		}
	}
	return cur
}

// Sexp1 is like Sexp for a single term.
func Sexp1(src string) *term.Term {
	ts := Sexp(src)
	if len(ts) != 1 {
		panic("testutil.Sexp1: want one term, got " + src)
	}
	return ts[0]
}
