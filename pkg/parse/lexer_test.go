package parse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/tt"
)

func describe(t *token) string {
	switch t.typ {
	case tIndent:
		return fmt.Sprintf("indent %d", t.indent)
	case tRegexp, tRegexpTail:
		return fmt.Sprintf("%s /%s/%s", t.typ, t.val, t.flags)
	}
	if string(t.typ) == t.val {
		return t.val
	}
	return fmt.Sprintf("%s %s", t.typ, t.val)
}

func lexWithMessages(src string) ([]string, []*diag.Message) {
	var msgs []*diag.Message
	lx := newLexer(src, "test", func(m *diag.Message) { msgs = append(msgs, m) })
	var toks []string
	for {
		t := lx.lex()
		if t.typ == tEOF {
			break
		}
		toks = append(toks, describe(t))
	}
	if len(toks) > 0 && toks[0] == "indent 0" {
		toks = toks[1:]
	}
	return toks, msgs
}

// lexAll returns the tokens of src without the leading indent and the EOF.
func lexAll(src string) []string {
	toks, _ := lexWithMessages(src)
	return toks
}

func lines(ss ...string) string { return strings.Join(ss, "\n") }

func TestLexer_Basic(t *testing.T) {
	tt.Test(t, tt.Fn("lexAll", lexAll), tt.Table{
		tt.Args("3").Rets([]string{"NUM 3"}),
		tt.Args("-42.032").Rets([]string{"NUM -42.032"}),
		tt.Args("0xfeff").Rets([]string{"NUM 0xfeff"}),
		tt.Args("+1e100").Rets([]string{"NUM +1e100"}),
		tt.Args(`"3\"foo"`).Rets([]string{`STR "3\"foo"`}),
		tt.Args("true").Rets([]string{"IDENTIFIER true"}),
		tt.Args("call-with-current-continuation").Rets([]string{"IDENTIFIER call-with-current-continuation"}),
		tt.Args("call/cc").Rets([]string{"IDENTIFIER call/cc"}),
		tt.Args("...rest-params").Rets([]string{"IDENTIFIER ...rest-params"}),
		tt.Args("[]").Rets([]string{"[", "]"}),
		tt.Args("- x").Rets([]string{"IDENTIFIER -", "IDENTIFIER x"}),
		tt.Args("a .+ b").Rets([]string{"IDENTIFIER a", "OPERATOR +", "IDENTIFIER b"}),
		tt.Args("foo *if x").Rets([]string{"IDENTIFIER foo", "QUALIFIER *if", "IDENTIFIER x"}),
		tt.Args("foo *.bar").Rets([]string{"IDENTIFIER foo", "QUALIFIER *.", "IDENTIFIER bar"}),
		tt.Args("a ## comment").Rets([]string{"IDENTIFIER a"}),
		tt.Args(lines("a ### block", "comment ### b")).Rets([]string{"IDENTIFIER a", "IDENTIFIER b"}),
	})
}

func TestLexer_Regexp(t *testing.T) {
	tt.Test(t, tt.Fn("lexAll", lexAll), tt.Table{
		tt.Args("//foobar/").Rets([]string{"REGEXP /foobar/"}),
		tt.Args("//foo bar/gi").Rets([]string{"REGEXP /foo bar/gi"}),
		tt.Args(`//foo bar\/zoo/m`).Rets([]string{`REGEXP /foo bar\/zoo/m`}),
		tt.Args(lines("///fo", `  o\ bar///`)).Rets([]string{"REGEXP /foo bar/"}),
		tt.Args(lines("///fo  ## comments", `  o\ bar///gi`)).Rets([]string{"REGEXP /foo bar/gi"}),
		tt.Args(lines(
			"///",
			`  foo\ `,
			"  (?:\\d+|bca)\t ## comments",
			`  bar\/zo\#o`,
			"///m")).Rets([]string{`REGEXP /foo (?:\d+|bca)bar\/zo#o/m`}),
		tt.Args(lines("///fo", `  o\ b#{x}ar///`)).Rets(
			[]string{"REGEXP_HEAD foo b", "IDENTIFIER x", "REGEXP_TAIL /ar/"}),
		tt.Args(lines("///fo  ## comments", `  o\ b#{foo .+ 100}a#{foo}r///gi`)).Rets([]string{
			"REGEXP_HEAD foo b", "IDENTIFIER foo", "OPERATOR +", "NUM 100",
			"REGEXP_PART a", "IDENTIFIER foo", "REGEXP_TAIL /r/gi"}),
	})
}

func TestLexer_NonTrivial(t *testing.T) {
	tt.Test(t, tt.Fn("lexAll", lexAll), tt.Table{
		tt.Args("foo: bar 100 zoo").Rets([]string{
			"IDENTIFIER foo", ":", "IDENTIFIER bar", "NUM 100", "IDENTIFIER zoo"}),
		tt.Args("foo: (bar, 100) ...zoo").Rets([]string{
			"IDENTIFIER foo", ":", "(", "IDENTIFIER bar", ",", "NUM 100", ")", "IDENTIFIER ...zoo"}),
		tt.Args(lines("foo:", `  bar, "a string"`)).Rets([]string{
			"IDENTIFIER foo", ":", "indent 2", "IDENTIFIER bar", ",", `STR "a string"`}),
		tt.Args(lines(
			"x .=  #(a b) ->",
			`  s .= (+ a "a string" b)`,
			"  `(foo ,s ,@zoo)")).Rets([]string{
			"IDENTIFIER x", "OPERATOR =", "HASH_IDENTIFIER #", "(", "IDENTIFIER a", "IDENTIFIER b", ")", "->",
			"indent 2", "IDENTIFIER s", "OPERATOR =", "(", "IDENTIFIER +", "IDENTIFIER a", `STR "a string"`, "IDENTIFIER b", ")",
			"indent 2", "`", "(", "IDENTIFIER foo", "UNQUOTE ,", "IDENTIFIER s", "UNQUOTE_S ,@", "IDENTIFIER zoo", ")"}),
		tt.Args("@foo").Rets([]string{"@", "IDENTIFIER foo"}),
		tt.Args("#* -> a").Rets([]string{"HASH_IDENTIFIER #*", "->", "IDENTIFIER a"}),
		tt.Args(",',foo").Rets([]string{"UNQUOTE ,", "'", "UNQUOTE ,", "IDENTIFIER foo"}),
		tt.Args(",@',@foo").Rets([]string{"UNQUOTE_S ,@", "'", "UNQUOTE_S ,@", "IDENTIFIER foo"}),
		tt.Args("( 1,)").Rets([]string{"(", "NUM 1", ",", ")"}),
		tt.Args("( 1 ,)").Rets([]string{"(", "NUM 1", "UNQUOTE ,", ")"}),
		// Blank lines collapse into the last indent.
		tt.Args(lines("a", "", "   ", "  b")).Rets([]string{"IDENTIFIER a", "indent 2", "IDENTIFIER b"}),
	})
}

func TestLexer_Strings(t *testing.T) {
	tt.Test(t, tt.Fn("lexAll", lexAll), tt.Table{
		tt.Args(`#"foo bar zoo#aa"`).Rets([]string{`STR "foo bar zoo#aa"`}),
		tt.Args(`#"#{"foo"}"`).Rets([]string{`ISTR_HEAD ""`, `STR "foo"`, `ISTR_TAIL ""`}),
		tt.Args(`#"aa {bb #{xx} cc}"`).Rets([]string{`ISTR_HEAD "aa {bb "`, "IDENTIFIER xx", `ISTR_TAIL " cc}"`}),
		tt.Args(`#"foo #{ foo 1 "sl" }dsa#{- x}"`).Rets([]string{
			`ISTR_HEAD "foo "`, "IDENTIFIER foo", "NUM 1", `STR "sl"`,
			`ISTR_PART "dsa"`, "IDENTIFIER -", "IDENTIFIER x", `ISTR_TAIL ""`}),
		tt.Args(`#"foo #{ foo #"inside #{ x "foo" } endinside" }dsa"`).Rets([]string{
			`ISTR_HEAD "foo "`, "IDENTIFIER foo", `ISTR_HEAD "inside "`, "IDENTIFIER x", `STR "foo"`,
			`ISTR_TAIL " endinside"`, `ISTR_TAIL "dsa"`}),
		tt.Args(lines(`"foo`, " bar", `   zoo"`)).Rets([]string{`STR "foo\nbar\n  zoo"`}),
		tt.Args(lines(`"foo`, ` bar\`, `   zoo"`)).Rets([]string{`STR "foo\nbar zoo"`}),
		tt.Args(lines(`#"foo`, "  bar", `    zoo"`)).Rets([]string{`STR "foo\nbar\n  zoo"`}),
		tt.Args(lines(`#"foo`, "  bar#{100}zzoo", `    zoo"`)).Rets([]string{
			`ISTR_HEAD "foo\nbar"`, "NUM 100", `ISTR_TAIL "zzoo\n  zoo"`}),
		tt.Args(lines(`#"foo`, "  bar#{100", "   }zzo#{1}o", `    zoo"`)).Rets([]string{
			`ISTR_HEAD "foo\nbar"`, "NUM 100", "indent 3", `ISTR_PART "zzo"`, "NUM 1", `ISTR_TAIL "o\n  zoo"`}),
	})
}

func TestLexer_Messages(t *testing.T) {
	tests := []struct {
		src       string
		kind      diag.Kind
		line, col int
	}{
		{"(, 1)", diag.Warning, 0, 3},
		{"[, 1, ,]", diag.Warning, 0, 3},
		{"foo[bar]", diag.Warning, 0, 3},
		{lines("foo", " \t \t100"), diag.Warning, 1, 0},
		{lines(`"foo`, "\t\tbar\\", `   zoo"`), diag.Warning, 0, 0},
		{lines(` "foo`, "  bar", ` zoo"`), diag.Error, 0, 1},
		{lines(`#"foo`, "  bar#{100", "   }zzo#{1}o", ` zoo"`), diag.Error, 0, 0},
	}
	for _, test := range tests {
		_, msgs := lexWithMessages(test.src)
		found := false
		for _, m := range msgs {
			if m.Kind == test.kind && m.Pos.Line == test.line && m.Pos.Col == test.col {
				found = true
			}
		}
		if !found {
			t.Errorf("%q: want %v at %d:%d, got %v", test.src, test.kind, test.line, test.col, msgs)
		}
	}
}

func TestLexer_NoWarnings(t *testing.T) {
	for _, src := range []string{
		"( 1 ,)",
		"(,1)",
		"(,@1)",
		"foo [bar]",
		"foo.[bar]",
		lines(`"foo`, " bar", `   zoo"`),
		lines(`#"foo`, "  bar#{100}zzoo", `    zoo"`),
	} {
		if _, msgs := lexWithMessages(src); len(msgs) > 0 {
			t.Errorf("%q: got unexpected messages %v", src, msgs)
		}
	}
}

func TestLexer_TabIndent(t *testing.T) {
	toks := lexAll(lines("foo", " \t \t100"))
	if len(toks) != 3 || toks[1] != "indent 10" {
		t.Errorf("got %v", toks)
	}
}
