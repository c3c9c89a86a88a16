// Package parse implements the reader of the language.
//
// The syntax is indentation-sensitive: a line starts a sequence, and the
// deeper-indented lines that follow belong to it. Parentheses, brackets and
// braces are explicit sequences, tuples, arrays and objects. The result of
// parsing is a list of terms, which are fed to macro expansion.
//
// The lexer turns the source into tokens including INDENT tokens carrying
// the width of the indentation. The parser inserts IMPLICIT_OPEN and
// IMPLICIT_CLOSE tokens around the lines and parses them as if they were
// parenthesized.
package parse

import (
	"strings"

	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/logutil"
	"github.com/izreit/sifon/pkg/term"
)

var logger = logutil.GetLogger("[parse] ")

// Source describes a piece of source code.
type Source struct {
	Name string
	Code string
}

// Parse parses the code of src into terms, reporting errors and warnings to
// r. A nil r makes the first error fatal.
//
// When parsing cannot go on, Parse returns the terms parsed so far together
// with diag.ErrFatal.
func Parse(src Source, r diag.Reporter) (ts []*term.Term, err error) {
	if r == nil {
		r = diag.ReporterFunc(func(m *diag.Message) {
			if m.IsError() {
				panic(errAbort{})
			}
		})
	}
	p := newParser(src, r)
	defer func() {
		if e := recover(); e != nil {
			if _, ok := e.(errAbort); !ok && e != diag.ErrFatal {
				panic(e)
			}
			ts, err = p.terms, diag.ErrFatal
		}
	}()
	p.parseAll()
	return p.terms, nil
}

// Complete reports whether code looks like a whole input, as opposed to one
// waiting for more lines: it has no unclosed brackets, strings, regular
// expressions or interpolations, and does not end with a token expecting a
// following value.
func Complete(code string) bool {
	lx := newLexer(code, "", func(*diag.Message) {})
	depth := 0
	var last *token
	for {
		t := lx.lex()
		if t.typ == tEOF {
			break
		}
		switch t.typ {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case tError:
			if t.val == `"` {
				return false
			}
		case tIdent:
			// An unterminated ///...
			if strings.HasPrefix(t.val, "///") {
				return false
			}
		}
		if t.typ != tIndent {
			last = t
		}
	}
	if depth > 0 || lx.child != nil {
		return false
	}
	if last == nil {
		return true
	}
	switch last.typ {
	case "->", "|>", ":", ",", tOperator, "'", "`", tUnquote, tUnquoteS:
		return false
	}
	return true
}
