package parse

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/term"
)

type interpKind int

const (
	interpString interpKind = iota
	interpRegexp
)

// lexer splits source text into tokens.
//
// The expressions inside an interpolation (#{...}) are lexed by a child
// lexer working on the same text. The child returns a tUnmatched token at
// the } closing the interpolation, and the parent resumes from there.
type lexer struct {
	src  string
	file string
	pos  int
	line int
	col  int

	atLineStart bool
	prev        *token
	ungotten    []*token

	parent   *lexer
	child    *lexer
	kind     interpKind
	brackets int
	// strip strips the indentation of the interpolated string being lexed.
	strip func(string) string

	report func(*diag.Message)
}

func newLexer(src, file string, report func(*diag.Message)) *lexer {
	return &lexer{src: src, file: file, atLineStart: true, report: report}
}

func (lx *lexer) unget(t *token) { lx.ungotten = append(lx.ungotten, t) }

func (lx *lexer) rest() string { return lx.src[lx.pos:] }

// lastChar returns the character before the current position.
func (lx *lexer) lastChar() rune {
	if lx.pos == 0 {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(lx.src[:lx.pos])
	return r
}

// advance consumes n bytes, keeping track of lines and columns.
func (lx *lexer) advance(n int) {
	s := lx.src[lx.pos : lx.pos+n]
	for i, r := range s {
		switch {
		case r == '\r' && i+1 < len(s) && s[i+1] == '\n':
		case isNewline(r):
			lx.line++
			lx.col = 0
		default:
			lx.col++
		}
	}
	lx.pos += n
}

// mark makes a token starting at the current position.
func (lx *lexer) mark(typ tokType) *token {
	return &token{typ: typ, offset: lx.pos, line: lx.line, col: lx.col, before: lx.lastChar()}
}

func (lx *lexer) posOf(t *token) term.Pos { return t.pos(lx.file) }

// Character classes.

func isNewline(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\v' || r == '\f' || r == '\ufeff'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isAlpha(c byte) bool { return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' }

func isHex(c byte) bool { return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F' }

func identFirst(c byte) bool { return isAlpha(c) || strings.IndexByte("_*/=!&%<>|^~", c) >= 0 }

func identRest(c byte) bool {
	return isAlpha(c) || isDigit(c) || strings.IndexByte("_-*+/=!&%<>|^~", c) >= 0
}

// matchIdent returns the length of the identifier at the start of s, or 0.
func matchIdent(s string) int {
	if s == "" {
		return 0
	}
	rest := func(i int) int {
		for i < len(s) && identRest(s[i]) {
			i++
		}
		return i
	}
	switch c := s[0]; {
	case identFirst(c):
		return rest(1)
	case c == '+' || c == '-':
		// A sign followed by a digit starts a number.
		if len(s) > 1 && isDigit(s[1]) {
			return 0
		}
		if len(s) > 1 && (identFirst(s[1]) || s[1] == '-' || s[1] == '+') {
			return rest(2)
		}
		return rest(1)
	case c == '?':
		if len(s) > 1 && s[1] == '.' {
			return 0
		}
		return 1
	}
	return 0
}

// matchNumber returns the length of the number at the start of s, or 0.
func matchNumber(s string) int {
	rejected := func(n int) bool {
		return n < len(s) && (isAlpha(s[n]) || strings.IndexByte("_-*+/=!&?%<>", s[n]) >= 0)
	}
	if strings.HasPrefix(s, "0x") {
		n := 2
		for n < len(s) && isHex(s[n]) {
			n++
		}
		if n > 2 && !rejected(n) {
			return n
		}
	}
	digits := func(i int) int {
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		return i
	}
	integral := func(i int) int {
		switch {
		case i < len(s) && s[i] == '0':
			return i + 1
		case i < len(s) && isDigit(s[i]):
			return digits(i)
		}
		return -1
	}
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intEnd := integral(i)
	if intEnd < 0 {
		return 0
	}
	exponent := func(i int) int {
		if i >= len(s) || s[i] != 'e' {
			return -1
		}
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		return integral(i)
	}
	// Try the longest candidate first, as a backtracking matcher would.
	var candidates []int
	fracEnd := -1
	if intEnd < len(s) && s[intEnd] == '.' {
		fracEnd = digits(intEnd + 1)
	}
	if fracEnd >= 0 {
		if e := exponent(fracEnd); e >= 0 {
			candidates = append(candidates, e)
		}
		candidates = append(candidates, fracEnd)
	}
	if e := exponent(intEnd); e >= 0 {
		candidates = append(candidates, e)
	}
	candidates = append(candidates, intEnd)
	for _, n := range candidates {
		if !rejected(n) {
			return n
		}
	}
	return 0
}

// lex returns the next token.
func (lx *lexer) lex() *token {
	for lx.pos < len(lx.src) || len(lx.ungotten) > 0 || lx.child != nil {
		if n := len(lx.ungotten); n > 0 {
			t := lx.ungotten[n-1]
			lx.ungotten = lx.ungotten[:n-1]
			return t
		}

		if lx.child != nil {
			t := lx.child.lex()
			if t.typ != tUnmatched {
				return t
			}
			c := lx.child
			lx.pos, lx.line, lx.col = c.pos, c.line, c.col
			lx.child = nil
			var part *token
			if c.kind == interpString {
				part = lx.lexStringPart()
			} else {
				part = lx.lexRegexpPart()
			}
			if part == nil {
				return lx.mark(tError)
			}
			return part
		}

		if lx.atLineStart {
			lx.atLineStart = false
			indent := lx.lexIndent()
			for {
				next := lx.lex()
				if next.typ != tIndent {
					lx.unget(next)
					break
				}
				indent = next
			}
			return indent
		}

		lx.skipSpaces()
		if lx.pos == len(lx.src) {
			break
		}

		t, ok := lx.lexToken()
		if !ok {
			_, n := utf8.DecodeRuneInString(lx.rest())
			return lx.take(tError, n)
		}
		if t == nil {
			continue
		}

		if lx.parent != nil {
			switch t.typ {
			case "{":
				lx.brackets++
			case "}":
				lx.brackets--
				if lx.brackets < 0 {
					return &token{typ: tUnmatched}
				}
			}
		}
		lx.check(t)
		lx.prev = t
		return t
	}
	return lx.mark(tEOF)
}

// lexToken tries the rules in order. It returns a nil token with ok set
// when it consumed something that is not a token.
func (lx *lexer) lexToken() (*token, bool) {
	for _, rule := range []func() (*token, bool){
		lx.lexUnquote,
		lx.lexOperator,
		lx.lexQualifier,
		lx.lexRegexp,
		lx.lexMultilineRegexp,
		lx.lexSpecial,
		lx.lexInterpolatedString,
		lx.lexString,
		lx.lexHashIdent,
		lx.lexIdent,
		lx.lexNumber,
		lx.lexNewline,
		lx.lexComment,
	} {
		if t, ok := rule(); ok {
			return t, true
		}
	}
	return nil, false
}

func (lx *lexer) skipSpaces() {
	n := 0
	for _, r := range lx.rest() {
		if !isSpace(r) {
			break
		}
		n += utf8.RuneLen(r)
	}
	lx.advance(n)
}

// take makes a token of the next n bytes.
func (lx *lexer) take(typ tokType, n int) *token {
	t := lx.mark(typ)
	t.val = lx.src[lx.pos : lx.pos+n]
	lx.advance(n)
	return t
}

func (lx *lexer) lexIndent() *token {
	t := lx.mark(tIndent)
	n, width, tab := 0, 0, false
	for _, r := range lx.rest() {
		if !isSpace(r) {
			break
		}
		if r == '\t' {
			tab = true
			width += 4
		} else {
			width++
		}
		n += utf8.RuneLen(r)
	}
	lx.advance(n)
	t.indent = width
	if tab {
		lx.report(diag.IndentIncludingTab(lx.posOf(t)))
	}
	return t
}

// , and ,@ are unquotes only at the start of a value.
func (lx *lexer) lexUnquote() (*token, bool) {
	s := lx.rest()
	if !strings.HasPrefix(s, ",") {
		return nil, false
	}
	switch r := lx.lastChar(); {
	case r == 0 || isSpace(r) || isNewline(r) || strings.ContainsRune("([{,.:'@", r):
	default:
		return nil, false
	}
	if strings.HasPrefix(s, ",@") {
		return lx.take(tUnquoteS, 2), true
	}
	return lx.take(tUnquote, 1), true
}

// An operator is a dot followed by an identifier, after a space: a .+ b.
func (lx *lexer) lexOperator() (*token, bool) {
	s := lx.rest()
	if !strings.HasPrefix(s, ".") || !isSpace(lx.lastChar()) {
		return nil, false
	}
	n := matchIdent(s[1:])
	if n == 0 {
		return nil, false
	}
	t := lx.take(tOperator, n+1)
	t.val = t.val[1:]
	return t, true
}

func (lx *lexer) lexQualifier() (*token, bool) {
	s := lx.rest()
	if !strings.HasPrefix(s, "*") {
		return nil, false
	}
	if strings.HasPrefix(s, "*.") {
		return lx.take(tQualifier, 2), true
	}
	if n := matchIdent(s[1:]); n > 0 {
		return lx.take(tQualifier, n+1), true
	}
	return nil, false
}

// //body/flags
func (lx *lexer) lexRegexp() (*token, bool) {
	s := lx.rest()
	if !strings.HasPrefix(s, "//") {
		return nil, false
	}
	i := 2
	for i < len(s) && s[i] != '/' {
		if s[i] == '\n' || s[i] == '\r' {
			return nil, false
		}
		if s[i] == '\\' {
			if i+1 >= len(s) || isNewline(rune(s[i+1])) {
				return nil, false
			}
			i++
		}
		i++
	}
	if i == 2 || i >= len(s) {
		return nil, false
	}
	body := s[2:i]
	j := i + 1
	for j < len(s) && 'a' <= s[j] && s[j] <= 'z' {
		j++
	}
	t := lx.take(tRegexp, j)
	t.val, t.flags = body, s[i+1:j]
	return t, true
}

var (
	regexpComment     = regexp.MustCompile(`##[^\r\n\x{2028}\x{2029}]*`)
	regexpLeadSpaces  = regexp.MustCompile(`^[ \t\v\f\x{feff}\r\n\x{2028}\x{2029}]+`)
	regexpInnerSpaces = regexp.MustCompile(`([^\\])[ \t\v\f\x{feff}\r\n\x{2028}\x{2029}]+`)
	regexpEscape      = regexp.MustCompile(`\\([\s#])`)
	regexpEscapeSlash = regexp.MustCompile(`\\([\s#/])`)
)

// stripRegexpBody removes the comments and the whitespace not escaped from
// the body of a multi-line regular expression.
func stripRegexpBody(s string, unescapeSlash bool) string {
	s = regexpComment.ReplaceAllString(s, "")
	s = regexpLeadSpaces.ReplaceAllString(s, "")
	s = regexpInnerSpaces.ReplaceAllString(s, "$1")
	if unescapeSlash {
		return regexpEscapeSlash.ReplaceAllString(s, "$1")
	}
	return regexpEscape.ReplaceAllString(s, "$1")
}

// scanRegexpBody scans the body of a multi-line regular expression up to
// its end (///flags) or an interpolation (#{). It returns the body length
// and the length of the terminator, or -1.
func scanRegexpBody(s string) (body, tail int, interp bool, flags string) {
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '\\':
			if i+1 >= len(s) {
				return -1, 0, false, ""
			}
			_, n := utf8.DecodeRuneInString(s[i+1:])
			i += 1 + n
		case s[i] == '/':
			if !strings.HasPrefix(s[i:], "///") {
				return -1, 0, false, ""
			}
			j := i + 3
			for j < len(s) && 'a' <= s[j] && s[j] <= 'z' {
				j++
			}
			return i, j - i, false, s[i+3 : j]
		case strings.HasPrefix(s[i:], "#{"):
			return i, 2, true, ""
		default:
			i++
		}
	}
	return -1, 0, false, ""
}

func (lx *lexer) startInterpolation(kind interpKind) {
	lx.child = &lexer{src: lx.src, file: lx.file, pos: lx.pos, line: lx.line, col: lx.col,
		parent: lx, kind: kind, report: lx.report}
}

// ///body///flags, where body may span lines and contain interpolations.
func (lx *lexer) lexMultilineRegexp() (*token, bool) {
	s := lx.rest()
	if !strings.HasPrefix(s, "///") {
		return nil, false
	}
	body, end, interp, flags := scanRegexpBody(s[3:])
	if body < 0 {
		return nil, false
	}
	raw := s[3 : 3+body]
	if !interp {
		t := lx.take(tRegexp, 3+body+end)
		t.val, t.flags = stripRegexpBody(raw, false), flags
		return t, true
	}
	t := lx.take(tRegexpHead, 3+body+end)
	t.val = stripRegexpBody(raw, true)
	lx.startInterpolation(interpRegexp)
	return t, true
}

func (lx *lexer) lexRegexpPart() *token {
	body, end, interp, flags := scanRegexpBody(lx.rest())
	if body < 0 {
		return nil
	}
	raw := lx.rest()[:body]
	typ := tRegexpTail
	if interp {
		typ = tRegexpPart
	}
	t := lx.take(typ, body+end)
	t.val, t.flags = stripRegexpBody(raw, true), flags
	if interp {
		lx.startInterpolation(interpRegexp)
	}
	return t
}

var specials = []string{"->", "::", "|>", "?.", "..", ".", ":", "@", "(", ")", "[", "]", "{", "}", ",", "'", "`", ";"}

func (lx *lexer) lexSpecial() (*token, bool) {
	s := lx.rest()
	for _, sp := range specials {
		if !strings.HasPrefix(s, sp) {
			continue
		}
		next := s[len(sp):]
		switch sp {
		case ".", "..", "?.":
			if strings.HasPrefix(next, ".") {
				continue
			}
		case ":":
			if strings.HasPrefix(next, ":") {
				continue
			}
		case "@":
			if strings.HasPrefix(next, "@") {
				return nil, false
			}
		}
		return lx.take(tokType(sp), len(sp)), true
	}
	return nil, false
}

var (
	newlineIndent = regexp.MustCompile(`(\r\n|\r|[\n\x{2028}\x{2029}])(\s*)`)
	continuation  = regexp.MustCompile(`\\(?:\r\n|\r|[\n\x{2028}\x{2029}])\s*`)
)

// indentStripper returns a function removing n columns of indentation from
// the continuation lines of a string starting at t. Escaped newlines join
// lines with a space.
func (lx *lexer) indentStripper(n int, t *token) func(string) string {
	indent := regexp.MustCompile(`(?:\r\n|\r|[\n\x{2028}\x{2029}])` + strings.Repeat(" ", n))
	p := lx.posOf(t)
	return func(s string) string {
		s = newlineIndent.ReplaceAllStringFunc(s, func(m string) string {
			notab := strings.ReplaceAll(m, "\t", "    ")
			if notab != m {
				lx.report(diag.IndentIncludingTab(p))
			}
			return notab
		})
		s = continuation.ReplaceAllString(s, " ")
		s = indent.ReplaceAllString(s, `\n`)
		if strings.ContainsAny(s, "\r\n\u2028\u2029") {
			lx.report(diag.InvalidShallowIndentInMultilineString(p))
		}
		return s
	}
}

// scanString scans the content of a string up to the closing quote, or, if
// interp is set, up to an interpolation. It returns the content length and
// whether an interpolation follows, or -1.
func scanString(s string, interp bool) (int, bool) {
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '\\':
			if i+1 >= len(s) {
				return -1, false
			}
			_, n := utf8.DecodeRuneInString(s[i+1:])
			i += 1 + n
		case s[i] == '"':
			return i, false
		case interp && strings.HasPrefix(s[i:], "#{"):
			return i, true
		default:
			i++
		}
	}
	return -1, false
}

// #"...#{expr}..."
func (lx *lexer) lexInterpolatedString() (*token, bool) {
	s := lx.rest()
	if !strings.HasPrefix(s, `#"`) {
		return nil, false
	}
	n, interp := scanString(s[2:], true)
	if n < 0 {
		return nil, false
	}
	t := lx.mark(tStr)
	strip := lx.indentStripper(t.col+2, t)
	content := strip(s[2 : 2+n])
	t.val = `"` + content + `"`
	if !interp {
		lx.advance(2 + n + 1)
	} else {
		lx.advance(2 + n + 2)
		t.typ = tIStrHead
		lx.strip = strip
		lx.startInterpolation(interpString)
	}
	return t, true
}

func (lx *lexer) lexStringPart() *token {
	s := lx.rest()
	n, interp := scanString(s, true)
	if n < 0 || lx.strip == nil {
		return nil
	}
	t := lx.mark(tIStrTail)
	t.val = `"` + lx.strip(s[:n]) + `"`
	if interp {
		t.typ = tIStrPart
		lx.advance(n + 2)
		lx.startInterpolation(interpString)
	} else {
		lx.advance(n + 1)
		lx.strip = nil
	}
	return t
}

func (lx *lexer) lexString() (*token, bool) {
	s := lx.rest()
	if !strings.HasPrefix(s, `"`) {
		return nil, false
	}
	n, _ := scanString(s[1:], false)
	if n < 0 {
		return nil, false
	}
	t := lx.mark(tStr)
	t.val = lx.indentStripper(t.col+1, t)(s[:n+2])
	lx.advance(n + 2)
	return t, true
}

// #name, or # alone.
func (lx *lexer) lexHashIdent() (*token, bool) {
	s := lx.rest()
	if !strings.HasPrefix(s, "#") {
		return nil, false
	}
	if n := matchIdent(s[1:]); n > 0 {
		return lx.take(tHashIdent, n+1), true
	}
	if strings.HasPrefix(s, "##") {
		return nil, false
	}
	return lx.take(tHashIdent, 1), true
}

// name, ...name or ... alone.
func (lx *lexer) lexIdent() (*token, bool) {
	s := lx.rest()
	dots := 0
	if strings.HasPrefix(s, "...") {
		dots = 3
	}
	n := matchIdent(s[dots:])
	if n == 0 && dots == 0 {
		return nil, false
	}
	return lx.take(tIdent, dots+n), true
}

func (lx *lexer) lexNumber() (*token, bool) {
	if n := matchNumber(lx.rest()); n > 0 {
		return lx.take(tNum, n), true
	}
	return nil, false
}

func (lx *lexer) lexNewline() (*token, bool) {
	s := lx.rest()
	n := 0
	switch {
	case strings.HasPrefix(s, "\r\n"):
		n = 2
	case s != "":
		if r, size := utf8.DecodeRuneInString(s); isNewline(r) {
			n = size
		}
	}
	if n == 0 {
		return nil, false
	}
	lx.advance(n)
	lx.atLineStart = true
	return nil, true
}

// ## to the end of the line; ###...### spanning lines.
func (lx *lexer) lexComment() (*token, bool) {
	s := lx.rest()
	if strings.HasPrefix(s, "###") && len(s) > 3 && s[3] != ';' {
		if end := strings.Index(s[4:], "###"); end >= 0 {
			n := 4 + end + 3
			for n < len(s) {
				r, size := utf8.DecodeRuneInString(s[n:])
				if !isSpace(r) {
					break
				}
				n += size
			}
			lx.advance(n)
			return nil, true
		}
	}
	if !strings.HasPrefix(s, "##") {
		return nil, false
	}
	n := strings.IndexFunc(s, isNewline)
	if n < 0 {
		n = len(s)
	}
	lx.advance(n)
	return nil, true
}

// check warns about suspicious tokens.
func (lx *lexer) check(t *token) {
	var prev tokType
	if lx.prev != nil {
		prev = lx.prev.typ
	}
	spaceBefore := isSpace(t.before) || isNewline(t.before)
	if t.typ == "[" && !spaceBefore {
		switch prev {
		case tHashIdent, tIdent, ")", "]", "}":
			lx.report(diag.ConfusingArrayLiteral(lx.posOf(t)))
		}
	}
	switch prev {
	case tUnquote, tUnquoteS:
		if spaceBefore {
			lx.report(diag.UnquoteFollowedBySpace(lx.posOf(t)))
		}
	case ",":
		if !spaceBefore {
			lx.report(diag.CommaNotFollowedBySpace(lx.posOf(t)))
		}
	}
}
