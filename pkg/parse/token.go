package parse

import (
	"fmt"

	"github.com/izreit/sifon/pkg/term"
)

// tokType is the type of a token. Punctuation tokens use their own text as
// their type.
type tokType string

const (
	tEOF        tokType = "EOF"
	tError      tokType = "ERROR"
	tIndent     tokType = "INDENT"
	tIdent      tokType = "IDENTIFIER"
	tHashIdent  tokType = "HASH_IDENTIFIER"
	tNum        tokType = "NUM"
	tStr        tokType = "STR"
	tRegexp     tokType = "REGEXP"
	tOperator   tokType = "OPERATOR"
	tQualifier  tokType = "QUALIFIER"
	tUnquote    tokType = "UNQUOTE"
	tUnquoteS   tokType = "UNQUOTE_S"
	tIStrHead   tokType = "ISTR_HEAD"
	tIStrPart   tokType = "ISTR_PART"
	tIStrTail   tokType = "ISTR_TAIL"
	tRegexpHead tokType = "REGEXP_HEAD"
	tRegexpPart tokType = "REGEXP_PART"
	tRegexpTail tokType = "REGEXP_TAIL"

	// Made by the parser.
	tImplicitOpen  tokType = "IMPLICIT_OPEN"
	tImplicitClose tokType = "IMPLICIT_CLOSE"

	// Returned by the lexer of an interpolation when it meets the } closing
	// the interpolation.
	tUnmatched tokType = "UNMATCHED"
)

type token struct {
	typ tokType
	// val is the text of the token. For a string it is the literal
	// including the quotes; for an indent it is empty.
	val string
	// flags of a regular expression.
	flags string
	// indent is the width of an indent token, tabs counting as 4.
	indent int

	offset    int
	line, col int

	// before is the character just before the token, or 0 at the start of
	// the input.
	before rune

	// squash is the column of the line following an opening bracket or an
	// arrow that ends its line, when that line may be indented shallower
	// than the enclosing sequences.
	squash    int
	hasSquash bool
}

func (t *token) pos(file string) term.Pos {
	return term.Pos{File: file, Line: t.line, Col: t.col}
}

func (t *token) String() string {
	switch t.typ {
	case tEOF:
		return "end of input"
	case tError:
		return "invalid character"
	case tIndent:
		return "newline"
	case tImplicitOpen, tImplicitClose, tUnmatched:
		return string(t.typ)
	case tUnquote:
		return ","
	case tUnquoteS:
		return ",@"
	}
	if t.val == "" {
		return string(t.typ)
	}
	if t.typ == tOperator {
		return fmt.Sprintf("operator .%s", t.val)
	}
	return t.val
}
