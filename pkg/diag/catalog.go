package diag

import (
	"fmt"

	"github.com/izreit/sifon/pkg/term"
)

func errorAt(p term.Pos, format string, args ...any) *Message {
	return &Message{Kind: Error, Text: fmt.Sprintf(format, args...), Pos: p}
}

// Unexpected reports something found where it is not expected. kind may be
// empty.
func Unexpected(p term.Pos, found, kind, msg string) *Message {
	if kind != "" {
		kind += ":"
	}
	return errorAt(p, "Unexpected %s%s. %s", kind, found, msg)
}

func InvalidShallowIndentInMultilineString(p term.Pos) *Message {
	return errorAt(p, "Invalid shallow indent in a multiline string.")
}

func InvalidSpecialForm(p term.Pos, head string) *Message {
	return errorAt(p, "Invalid special form `%s'.", head)
}

func InvalidJSIdentifier(p term.Pos, name string) *Message {
	return errorAt(p, "`%s' is not a valid JavaScript identifier", name)
}

func TooFewArg(p term.Pos, name string, min, given int) *Message {
	return errorAt(p, "Too few arguments for `%s' (at least %d but %d given.)", name, min, given)
}

func TooManyArg(p term.Pos, name string, max, given int) *Message {
	return errorAt(p, "Too many arguments for `%s' (at most %d but %d given.)", name, max, given)
}

func TooManyDottedSymbols(p term.Pos) *Message {
	return errorAt(p, "More than one symbols with three-dots (...foo) appeared in a sequence.")
}

func UnintelligibleDotExpression(p term.Pos) *Message {
	return errorAt(p, "Unintelligible <<dot>> expression.")
}

func UnintelligiblePattern(p term.Pos, msg string) *Message {
	if msg != "" {
		msg = " " + msg
	}
	return errorAt(p, "Unintelligible pattern.%s", msg)
}

func IfPatternCannotBeNested(p term.Pos) *Message {
	return errorAt(p, "Nested `if' pattern: The `if' patterns can only be appeared at the top-level of patterns.")
}

func LimitationProhibitsStatement(p term.Pos) *Message {
	return errorAt(p, "IMPLEMENTATION_LIMITATION: Expressions which will be compiled to JavaScript statements cannot appear here.")
}

func TypeofPatternNeedsStringLiteral(p term.Pos) *Message {
	return errorAt(p, "IMPLEMENTATION_LIMITATION: The `typeof' patterns require one or more string literals.")
}

func NothingToBind(p term.Pos) *Message {
	return errorAt(p, "The assignment expression have nothing to bind.")
}

// ExceptionThrownIn reports an exception raised by compile-time code. code
// is the evaluated code and may be empty.
func ExceptionThrownIn(what string, p term.Pos, exc any, code string) *Message {
	tail := ""
	if code != "" {
		tail = " The evaluated code (might include the cause): " + code
	}
	return errorAt(p, "An exception thrown in %s says %v.%s", what, exc, tail)
}

func GeneratingInvalidJavaScript(p term.Pos, msg string) *Message {
	return errorAt(p, "%s", msg)
}

func InvalidForOwn(p term.Pos) *Message {
	return errorAt(p, "Invalid for-own: use `for' for the classic `for' statements.")
}

// Warnings. Each has a name, which prefixes its text.

type warningDef struct{ name, text string }

func (w warningDef) at(p term.Pos) *Message {
	return &Message{Kind: Warning, Name: w.name, Text: w.name + ": " + w.text, Pos: p}
}

var (
	indentIncludingTab = warningDef{"INDENT_INCLUDING_TAB",
		"Found an indentation including a tab character. " +
			"They will be replaced by 4 whitespace characters but not recommended."}
	confusingArrayLiteral = warningDef{"CONFUSING_ARRAY_LITERAL",
		"Array literals should be preceded by whitespaces. " +
			"Or you may need a dot? (i.e. obj.[prop])"}
	unquoteFollowedBySpace = warningDef{"UNQUOTE_FOLLOWED_BY_SPACE",
		"Unquote (,) and unquote-splicing (,@) should not be followed by whitespaces. " +
			"Or maybe you should remove whitespaces before the comma? " +
			"(i.e. you can use either of forms like [foo, bar] (as a comma) or `[foo ,bar] (as an unquote).)"}
	commaNotFollowedBySpace = warningDef{"COMMA_NOT_FOLLOWED_BY_SPACE",
		"Comma (,) should be followed by whitespaces. " +
			"Or you should add whitespaces before, if you need an unquote but not a comma. " +
			"(i.e. you can use either of forms like [foo, bar] (as a comma) or [foo ,bar] (as an unquote).)"}
	assigningToConstant = warningDef{"ASSIGNING_TO_CONSTANT",
		"Found two or more assignments to a constant (CAPITALIZED) symbol."}
	forInByConstant = warningDef{"FOR_IN_BY_CONSTANT",
		"A constant (CAPITALIZED) symbol is used as a for-in/of variable."}
	assigningToConfusing = warningDef{"ASSIGNING_TO_CONFUSING",
		"Assigning to `eval' or `arguments' is not recommended. It causes error in strict mode."}
	nonLastIrrefutablePattern = warningDef{"NON_LAST_IRREFUTABLE_PATTERN",
		"Found an irrefutable pattern which is not the last one. The following patterns never match."}
	multipleIrrefutablePatterns = warningDef{"MULTIPLE_IRREFUTABLE_PATTERNS",
		"Two ore more irrefutable patterns found."}
)

func IndentIncludingTab(p term.Pos) *Message          { return indentIncludingTab.at(p) }
func ConfusingArrayLiteral(p term.Pos) *Message       { return confusingArrayLiteral.at(p) }
func UnquoteFollowedBySpace(p term.Pos) *Message      { return unquoteFollowedBySpace.at(p) }
func CommaNotFollowedBySpace(p term.Pos) *Message     { return commaNotFollowedBySpace.at(p) }
func AssigningToConstant(p term.Pos) *Message         { return assigningToConstant.at(p) }
func ForInByConstant(p term.Pos) *Message             { return forInByConstant.at(p) }
func AssigningToConfusing(p term.Pos) *Message        { return assigningToConfusing.at(p) }
func NonLastIrrefutablePattern(p term.Pos) *Message   { return nonLastIrrefutablePattern.at(p) }
func MultipleIrrefutablePatterns(p term.Pos) *Message { return multipleIrrefutablePatterns.at(p) }

// Infos, reported in debug mode.

func MetaCode(p term.Pos, code string) *Message {
	return &Message{Kind: Info, Text: "A `meta' special form evaluates: " + code, Pos: p}
}

func MetaDoCode(p term.Pos, code string) *Message {
	return &Message{Kind: Info, Text: "A `meta-do' special form evaluates: " + code, Pos: p}
}

func MacroDef(p term.Pos, macroKind, name, code string) *Message {
	return &Message{Kind: Info, Text: fmt.Sprintf("Defining a %s named %s: %s", macroKind, name, code), Pos: p}
}
