package parse

import (
	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/term"
)

// The grammar, informally. IMPLICIT_OPEN and IMPLICIT_CLOSE are never
// written; the parser inserts them from the indentation.
//
//	value       = primitive ("." primitive)*
//	            | IMPLICIT_OPEN coloned IMPLICIT_CLOSE
//	            | "'" primitive | "`" primitive | "," primitive | ",@" primitive
//	            | "@" value
//	coloned     = qualified (":" value)?
//	qualified   = operator (QUALIFIER operator?)*
//	operator    = call (OPERATOR operator)?
//	call        = value+
//	primitive   = NUM | STR | REGEXP | IDENTIFIER | HASH_IDENTIFIER | "->"
//	            | "(" value ("," value)* ","? ")" | "[" value* "]" | "{" value* "}"
//	            | interpolated string | multi-line regexp

// unclosed is a sequence not closed yet.
type unclosed struct {
	col      int
	implicit bool
}

// errAbort is raised when parsing cannot go on.
type errAbort struct{}

type parser struct {
	lx       *lexer
	file     string
	reporter diag.Reporter

	top      *unclosed
	stack    []*unclosed
	explicit int
	ungotten []*token

	terms []*term.Term
}

func newParser(src Source, r diag.Reporter) *parser {
	p := &parser{file: src.Name, reporter: r, top: &unclosed{}}
	p.lx = newLexer(src.Code, src.Name, p.report)
	return p
}

func (p *parser) report(m *diag.Message) {
	p.reporter.Report(m)
	if m.IsError() {
		logger.Printf("%s", m.Error())
	}
}

func (p *parser) abort() { panic(errAbort{}) }

func (p *parser) posOf(t *token) term.Pos { return t.pos(p.file) }

// errorAt reports an unexpected token. A nil t reports the next token,
// consuming it.
func (p *parser) errorAt(t *token, msg string) {
	if t == nil {
		t = p.lex()
	}
	p.report(diag.Unexpected(p.posOf(t), t.String(), "ParseError", msg))
}

var (
	permitShallow       = set("(", "[", "{", "->")
	dontPermitShallowAt = set(")", "]", "}")
	implicitOpenAfter   = set(tIndent, "|>", "(", "[", "{", ",", "->", ":",
		tIStrHead, tIStrPart, tRegexpHead, tRegexpPart)
	implicitOpenBefore = set("->", tHashIdent)
	// A qualifier never starts an implicit sequence, so that it can qualify
	// the sequence on the line above. Nor does a colon.
	dontOpenBefore = set(tIndent, "|>", "->", tHashIdent, ")", "]", "}", ",", tEOF,
		tIStrPart, tIStrTail, tRegexpPart, tRegexpTail, tQualifier, ":")
)

func set(types ...tokType) map[tokType]bool {
	m := make(map[tokType]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

func (p *parser) unlex(t *token) { p.ungotten = append(p.ungotten, t) }

// rawLex lexes a token, marking the columns that may be shallower and
// inserting IMPLICIT_OPEN tokens.
func (p *parser) rawLex() *token {
	if n := len(p.ungotten); n > 0 {
		t := p.ungotten[n-1]
		p.ungotten = p.ungotten[:n-1]
		return t
	}

	t := p.lx.lex()
	next := p.lx.lex()
	next2 := p.lx.lex()
	p.lx.unget(next2)
	p.lx.unget(next)

	if permitShallow[t.typ] && next.typ == tIndent && !dontPermitShallowAt[next2.typ] {
		t.squash, t.hasSquash = next.indent, true
	}
	if implicitOpenAfter[t.typ] && !dontOpenBefore[next.typ] {
		p.unlex(&token{typ: tImplicitOpen, line: next.line, col: next.col})
	}
	if implicitOpenBefore[t.typ] {
		p.unlex(t)
		t = &token{typ: tImplicitOpen, line: t.line, col: t.col}
	}
	return t
}

// lex lexes a token, inserting IMPLICIT_CLOSE tokens.
func (p *parser) lex() *token {
	for {
		t := p.rawLex()
		next := p.rawLex()
		p.unlex(next)

		switch t.typ {
		case tIndent:
			if p.top.implicit && (t.indent < p.top.col || t.indent == p.top.col && next.typ != tQualifier) {
				p.unlex(t)
				return &token{typ: tImplicitClose, line: t.line, col: t.col}
			}
			continue
		case "|>":
			continue
		case ")", "]", "}", tEOF, tIStrPart, tIStrTail, tRegexpPart, tRegexpTail:
			if p.top.implicit {
				p.unlex(t)
				return &token{typ: tImplicitClose, line: t.line, col: t.col}
			}
		case ",":
			if p.explicit <= 0 {
				p.errorAt(t, "A comma must be inside (), {} or [].")
				continue
			}
			if p.top.implicit {
				p.unlex(t)
				return &token{typ: tImplicitClose, line: t.line, col: t.col}
			}
		}
		return t
	}
}

func (p *parser) peek() *token {
	t := p.lex()
	p.unlex(t)
	return t
}

// lexIf lexes the next token if it is one of types.
func (p *parser) lexIf(types ...tokType) *token {
	next := p.peek()
	for _, typ := range types {
		if next.typ == typ {
			return p.lex()
		}
	}
	return nil
}

func (p *parser) dropIf(types ...tokType) bool { return p.lexIf(types...) != nil }

// skipToRecoverUntil skips tokens up to one of typ, leaving it unread. It
// aborts at the end of the input.
func (p *parser) skipToRecoverUntil(typ tokType) {
	for next := p.lex(); next.typ != tEOF && next.typ != tError; next = p.lex() {
		if next.typ == typ {
			p.unlex(next)
			return
		}
	}
	p.abort()
}

func (p *parser) openArray(col int, typ tokType) {
	p.stack = append(p.stack, p.top)
	implicit := typ != "(" && typ != "[" && typ != "{" && typ != tIStrHead && typ != tRegexpHead
	p.top = &unclosed{col: col, implicit: implicit}
	if !implicit {
		p.explicit++
	}
}

func (p *parser) closeArray() {
	if !p.top.implicit {
		p.explicit--
	}
	n := len(p.stack)
	if n == 0 {
		panic("parse: no sequence to close")
	}
	p.top = p.stack[n-1]
	p.stack = p.stack[:n-1]
}

// squashArrayHeadColumns lets the sequences still open continue on lines
// indented at col.
func (p *parser) squashArrayHeadColumns(col int) {
	ind := col - 1
	if p.top.col > ind {
		p.top.col = ind
	}
	for i := len(p.stack) - 1; i >= 0 && p.stack[i].col > ind; i-- {
		p.stack[i].col = ind
	}
}

func (p *parser) squashAfter(t *token) {
	if t != nil && t.hasSquash {
		p.squashArrayHeadColumns(t.squash)
	}
}

// parseAll parses values to the end of the input into p.terms.
func (p *parser) parseAll() {
	for {
		v := p.parseValue()
		if v == nil {
			if !p.dropIf(tEOF) {
				p.errorAt(nil, "")
				p.abort()
			}
			return
		}
		p.terms = append(p.terms, v)
	}
}

var quoteHeads = map[tokType]string{
	"'":       "<<quote>>",
	"`":       "<<quasiquote>>",
	tUnquote:  "<<unquote>>",
	tUnquoteS: "<<unquote-splicing>>",
}

func (p *parser) parsePrimitiveValue() *term.Term {
	t := p.lex()
	pos := p.posOf(t)
	switch t.typ {
	case tImplicitOpen:
		p.openArray(t.col, t.typ)
		node := p.parseColoned()
		if !p.dropIf(tImplicitClose) {
			p.errorAt(nil, "")
		}
		p.closeArray()
		return node
	case "->":
		p.squashAfter(t)
		return term.NewSym(t.val, pos)
	case tIdent, tHashIdent:
		return term.NewSym(t.val, pos)
	case tNum:
		return term.NewNum(t.val, pos)
	case tStr:
		return term.NewStrLiteral(t.val, pos)
	case tRegexp:
		return term.NewRegexp(t.val, t.flags, pos)
	case tIStrHead:
		return p.parseInterpolatedString(t)
	case tRegexpHead:
		return p.parseMultilineRegexp(t)
	case "(":
		return p.parseTupleOrValue(t)
	case "[":
		return p.parseBracketed(t, "]", "<<array>>")
	case "{":
		return p.parseBracketed(t, "}", "<<object>>")
	case "@":
		head := term.NewSym("@", pos)
		node := p.parseValue()
		if node == nil {
			p.errorAt(nil, "No value followed to @")
			return head
		}
		return term.NewSeq(pos, head, node)
	case "'", "`", tUnquote, tUnquoteS:
		head := term.NewSym(quoteHeads[t.typ], pos)
		node := p.parsePrimitiveValue()
		if node == nil {
			p.errorAt(nil, "No value followed to "+t.String())
			return head
		}
		return term.NewSeq(pos, head, node)
	}
	p.unlex(t)
	return nil
}

func (p *parser) parseValue() *term.Term {
	node := p.parsePrimitiveValue()
	if node == nil {
		return nil
	}
	for {
		t := p.lexIf(".", "?.")
		if t == nil {
			return node
		}
		prop := p.parsePrimitiveValue()
		if prop == nil {
			p.errorAt(nil, "A dot '.' must be followed by a value")
			return node
		}
		// Positioned at the receiver, so that a chain heading a line keeps
		// the column of the line.
		head := "<<dot>>"
		if t.typ == "?." {
			head = "<<question-dot>>"
		}
		node = term.NewSeq(node.Pos, term.NewSym(head, node.Pos), node, prop)
	}
}

func (p *parser) parseColoned() *term.Term {
	node := p.parseQualified()
	if node == nil {
		return nil
	}
	if t := p.lexIf(":"); t != nil {
		next := p.parseValue()
		if next == nil {
			p.errorAt(nil, "No value given after ':'")
			return node
		}
		pos := p.posOf(t)
		node = term.NewSeq(pos, term.NewSym(":", pos), node, next)
	}
	return node
}

func (p *parser) parseQualified() *term.Term {
	node := p.parseOperator()
	if node == nil {
		return nil
	}
	for {
		t := p.lexIf(tQualifier)
		if t == nil {
			return node
		}
		pos := p.posOf(t)
		items := []*term.Term{term.NewSym(t.val, pos), node}
		if args := p.parseOperator(); args != nil {
			items = append(items, args)
		}
		node = term.NewSeq(pos, items...)
	}
}

// parseOperator parses a right-associative binary operator: a .+ b .* c is
// (+ a (* b c)).
func (p *parser) parseOperator() *term.Term {
	lhs := p.parseCall()
	if lhs == nil {
		return nil
	}
	t := p.lexIf(tOperator)
	if t == nil {
		return lhs
	}
	rhs := p.parseOperator()
	if rhs == nil {
		p.errorAt(nil, "The right hand side of the operator "+t.val+" is expected but not given")
		return lhs
	}
	pos := p.posOf(t)
	return term.NewSeq(pos, term.NewSym(t.val, pos), lhs, rhs)
}

// parseCall parses values in a row. A trailing () is dropped, so that
// `f ()` calls f without arguments.
func (p *parser) parseCall() *term.Term {
	head := p.parseValue()
	if head == nil {
		return nil
	}
	nodes := []*term.Term{head}
	for node := p.parseValue(); node != nil; node = p.parseValue() {
		nodes = append(nodes, node)
	}
	if len(nodes) == 1 {
		return head
	}
	if last := nodes[len(nodes)-1]; last.IsSeq() && len(last.Items) == 0 {
		nodes = nodes[:len(nodes)-1]
	}
	return term.NewSeq(head.Pos, nodes...)
}

// parseInterpolatedString parses #"a#{x}b" into (+ "a" x "b").
func (p *parser) parseInterpolatedString(t *token) *term.Term {
	p.openArray(p.peek().col, t.typ)
	pos := p.posOf(t)
	nodes := []*term.Term{term.NewSym("+", pos), term.NewStrLiteral(t.val, pos)}
	for {
		node := p.parseValue()
		if node == nil {
			p.errorAt(nil, "An interpolated string is not terminated.")
			p.abort()
		}
		nodes = append(nodes, node)
		part := p.lexIf(tIStrPart, tIStrTail)
		if part == nil {
			p.errorAt(nil, "An interpolated string is not terminated.")
			p.abort()
		}
		nodes = append(nodes, term.NewStrLiteral(part.val, p.posOf(part)))
		if part.typ == tIStrTail {
			break
		}
	}
	p.closeArray()
	return term.NewSeq(pos, nodes...)
}

// parseMultilineRegexp parses ///a#{x}b///g into (RegExp (+ "a" x "b") "g").
func (p *parser) parseMultilineRegexp(t *token) *term.Term {
	p.openArray(p.peek().col, t.typ)
	pos := p.posOf(t)
	nodes := []*term.Term{term.NewSym("+", pos), term.NewStr(t.val, pos)}
	var tail *token
	for tail == nil {
		node := p.parseValue()
		if node == nil {
			p.errorAt(nil, "An interpolated regexp is not terminated.")
			p.abort()
		}
		nodes = append(nodes, node)
		part := p.lexIf(tRegexpPart, tRegexpTail)
		if part == nil {
			p.errorAt(nil, "An interpolated regexp is not terminated.")
			p.abort()
		}
		nodes = append(nodes, term.NewStr(part.val, p.posOf(part)))
		if part.typ == tRegexpTail {
			tail = part
		}
	}
	p.closeArray()
	return term.NewSeq(pos, term.NewSym("RegExp", pos), term.NewSeq(pos, nodes...), term.NewStr(tail.flags, pos))
}

// parseTupleOrValue parses what follows "(": () is an empty sequence, (x)
// is x itself and (x, y) is a tuple.
func (p *parser) parseTupleOrValue(t *token) *term.Term {
	p.openArray(t.col, t.typ)
	p.squashAfter(t)

	var nodes []*term.Term
	var closing, firstComma *token
	if q := p.lexIf(tQualifier, ":"); q != nil {
		nodes = append(nodes, term.NewSym(q.val, p.posOf(q)))
		if closing = p.lexIf(")"); closing == nil {
			p.errorAt(nil, "A qualifier appeared by itself must be followed by ')'.")
			p.skipToRecoverUntil(")")
			closing = p.lex()
		}
	} else {
		for closing = p.lexIf(")"); closing == nil; closing = p.lexIf(")") {
			node := p.parseValue()
			if node == nil {
				p.errorAt(nil, "")
				p.skipToRecoverUntil(")")
				continue
			}
			nodes = append(nodes, node)
			if firstComma == nil {
				firstComma = p.lexIf(",")
			} else {
				p.dropIf(",")
			}
		}
	}
	p.closeArray()
	p.squashAfter(closing)

	switch {
	case len(nodes) > 1 || firstComma != nil:
		at := t
		if firstComma != nil {
			at = firstComma
		}
		pos := p.posOf(at)
		return term.NewSeq(pos, append([]*term.Term{term.NewSym("<<tuple>>", pos)}, nodes...)...)
	case len(nodes) == 0:
		return term.NewSeq(p.posOf(t))
	}
	return nodes[0]
}

// parseBracketed parses an array or object literal up to the closing
// bracket.
func (p *parser) parseBracketed(t *token, closer tokType, head string) *term.Term {
	p.openArray(t.col, t.typ)
	p.squashAfter(t)

	pos := p.posOf(t)
	nodes := []*term.Term{term.NewSym(head, pos)}
	var closing *token
	for closing = p.lexIf(closer); closing == nil; closing = p.lexIf(closer) {
		node := p.parseValue()
		if node == nil {
			p.errorAt(nil, "")
			p.skipToRecoverUntil(closer)
			continue
		}
		nodes = append(nodes, node)
		p.dropIf(",")
	}
	p.closeArray()
	p.squashAfter(closing)
	return term.NewSeq(pos, nodes...)
}
