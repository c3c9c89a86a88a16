package diag

import (
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/izreit/sifon/pkg/term"
	"github.com/izreit/sifon/pkg/testutil"
	"github.com/izreit/sifon/pkg/tt"
)

func noColor(t *testing.T) { testutil.Set(t, &color.NoColor, true) }

func TestMessage_Error(t *testing.T) {
	tt.Test(t, tt.Fn("Error", (*Message).Error), tt.Table{
		tt.Args(TooFewArg(term.Pos{File: "a.sifon", Line: 2, Col: 4}, "if", 2, 1)).
			Rets("a.sifon:3:5: ERROR: Too few arguments for `if' (at least 2 but 1 given.)"),
		tt.Args(NothingToBind(term.NoPos)).
			Rets("(the current compile target):?: ERROR: The assignment expression have nothing to bind."),
		tt.Args(IndentIncludingTab(term.Pos{File: "t", Line: 0, Col: 0})).
			Rets("t:1:1: WARNING: INDENT_INCLUDING_TAB: Found an indentation including a tab character. " +
				"They will be replaced by 4 whitespace characters but not recommended."),
		tt.Args(MetaCode(term.Pos{File: "t", Line: 0, Col: 1}, "x = 1;")).
			Rets("t:1:2: INFO: A `meta' special form evaluates: x = 1;"),
	})
}

func TestMessage_ShowWithSource(t *testing.T) {
	noColor(t)
	m := InvalidJSIdentifier(term.Pos{File: "f", Line: 1, Col: 2}, "a-b")
	got := m.ShowWithSource("", "x .= 1\ny a-b c\n")
	want := "f:2:3: ERROR: `a-b' is not a valid JavaScript identifier\n  y a-b c"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestShowError(t *testing.T) {
	noColor(t)
	var sb strings.Builder
	ShowError(&sb, Unexpected(term.Pos{File: "f", Line: 0, Col: 0}, ")", "", ""))
	ShowError(&sb, errors.New("plain"))
	want := "f:1:1: ERROR: Unexpected ). \nplain\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestParseColorMode(t *testing.T) {
	tt.Test(t, tt.Fn("ParseColorMode", ParseColorMode), tt.Table{
		tt.Args("").Rets(ColorAuto, true),
		tt.Args("always").Rets(ColorAlways, true),
		tt.Args("never").Rets(ColorNever, true),
		tt.Args("sometimes").Rets(ColorAuto, false),
	})
}
