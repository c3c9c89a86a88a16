package term

import (
	"regexp"
	"strings"
)

var reservedWords = map[string]bool{}

// Words that evaluate to a value by themselves.
var valueIdentifiers = map[string]bool{
	"null": true, "true": true, "false": true, "this": true,
	"NaN": true, "Infinity": true, "undefined": true,
}

func init() {
	for _, group := range [][]string{
		{"null", "true", "false"},
		{"break", "do", "instanceof", "typeof", "case",
			"else", "new", "var", "catch", "finally", "return",
			"void", "continue", "for", "switch", "while", "debugger",
			"function", "this", "with", "default", "if", "throw",
			"delete", "in", "try"},
		{"class", "enum", "extends", "super", "const", "export", "import"},
		{"NaN", "Infinity", "undefined", "eval"},
	} {
		for _, w := range group {
			reservedWords[w] = true
		}
	}
}

var (
	nonIdentChar = regexp.MustCompile(`[^a-zA-Z0-9_$]`)
	upperCase    = regexp.MustCompile(`[A-Z_][A-Z0-9_]+`)
)

// IsJSIdentifier reports whether name is usable as a JavaScript identifier,
// ignoring reserved words.
func IsJSIdentifier(name string) bool {
	return name != "" && !nonIdentChar.MatchString(name) && !(name[0] >= '0' && name[0] <= '9')
}

// IsValidVarName reports whether name can name a JavaScript variable.
func IsValidVarName(name string) bool {
	return !reservedWords[name] && IsJSIdentifier(name)
}

// IsDotAccessible reports whether name can follow a dot in a member access.
func IsDotAccessible(name string) bool {
	return !(reservedWords[name] && !valueIdentifiers[name]) && IsJSIdentifier(name)
}

// IsValueIdentifier reports whether name is one of the identifiers that
// denote a fixed value, such as null or this.
func IsValueIdentifier(name string) bool { return valueIdentifiers[name] }

// IsUpperCase reports whether name is written in CONSTANT_CASE.
func IsUpperCase(name string) bool {
	return name != "" && upperCase.FindString(name) == name
}

// IsLiteral reports whether t is a string, a number or a value identifier.
func (t *Term) IsLiteral() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case Str, Num:
		return true
	case Sym:
		return t.Unique == nil && valueIdentifiers[t.Val]
	}
	return false
}

// IsValidVarSym reports whether t is a symbol usable as a variable. Hygienic
// symbols always are.
func (t *Term) IsValidVarSym() bool {
	return t.IsSym() && (t.Unique != nil || IsValidVarName(t.Val))
}

// IsDotAccessibleSym reports whether t is a symbol that can follow a dot.
func (t *Term) IsDotAccessibleSym() bool {
	return t.IsSym() && (t.Unique != nil || IsDotAccessible(t.Val))
}

// IsThreeDotted reports whether t is a symbol like ...rest.
func (t *Term) IsThreeDotted() bool {
	return t.IsSym() && t.Unique == nil && strings.HasPrefix(t.Val, "...")
}

// StripThreeDots returns ...rest as rest, and other terms unchanged.
func (t *Term) StripThreeDots() *Term {
	if t.IsThreeDotted() {
		return NewSym(t.Val[3:], t.Pos)
	}
	return t
}

// Escape escapes backslashes and double quotes.
func Escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// Literalize quotes s as a double-quoted literal.
func Literalize(s string) string { return `"` + Escape(s) + `"` }

// Unliteralize returns the content of a string literal, resolving the
// common escape sequences.
func Unliteralize(lit string) string {
	if len(lit) >= 2 && (lit[0] == '"' || lit[0] == '\'') && lit[len(lit)-1] == lit[0] {
		lit = lit[1 : len(lit)-1]
	}
	if !strings.Contains(lit, `\`) {
		return lit
	}
	var sb strings.Builder
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		if c != '\\' || i+1 == len(lit) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch lit[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\n':
		default:
			sb.WriteByte(lit[i])
		}
	}
	return sb.String()
}
