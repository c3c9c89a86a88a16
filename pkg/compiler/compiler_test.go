package compiler

import (
	"strings"
	"testing"

	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/parse"
	"github.com/izreit/sifon/pkg/stage"
	"github.com/izreit/sifon/pkg/tt"
)

func lines(ss ...string) string { return strings.Join(ss, "\n") }

func compile(opts Options, code string) *Result {
	res, _ := New(opts).Compile(parse.Source{Name: "test", Code: code})
	return res
}

// eval compiles code with the built-in macros and runs it, returning the
// value of its last expression.
func eval(code string) (stage.Value, error) {
	res, err := New(Options{}).Compile(parse.Source{Name: "test", Code: code})
	if err != nil {
		return nil, err
	}
	if err := res.Errors(); err != nil {
		return nil, err
	}
	in := stage.New()
	return in.Run(in.Global(), res.Program)
}

func TestCompile_Values(t *testing.T) {
	tt.Test(t, tt.Fn("eval", eval), tt.Table{
		tt.Args("x .= 3").Rets(3.0, nil),
		tt.Args("[3, 1, 5].[1 .+ 1]").Rets(5.0, nil),
		tt.Args(lines("x .= #() -> -12", "x ()")).Rets(-12.0, nil),
		tt.Args(lines("x .= # -> -12", "x ()")).Rets(-12.0, nil),
		tt.Args(`{ toString: # -> "foo" }.toString ()`).Rets("foo", nil),
		tt.Args(lines(
			"if (not true) ->",
			"   42 .* 0.5",
			" else ->",
			"   42")).Rets(42.0, nil),
		tt.Args(lines(
			"-> x .= 100",
			"   y .= if x",
			"         -> x.toString ()",
			"         -> 42")).Rets("100", nil),
		tt.Args(lines(
			"-> x .= #(a b ...c d e) -> c.length",
			"   x 3 4 7 10 2")).Rets(1.0, nil),
		tt.Args(lines(
			"-> f .= #(a (b .= 10)) ->",
			"     match a",
			"      3 -> b",
			"      (if a) -> a",
			"      _ -> undefined",
			"   f 3")).Rets(10.0, nil),
		tt.Args(lines(
			"-> f .= [1, true, 3, \"str\"] ",
			"   match f",
			"    [a, b, c] -> b",
			"    [a, ...v, last] -> v.length",
			"    _ -> undefined")).Rets(2.0, nil),
		tt.Args(lines("x .= 3", `#"a#{x}b"`)).Rets("a3b", nil),
		// built-in macros
		tt.Args("unless false 1 2").Rets(1.0, nil),
		tt.Args(lines("i .= 0", "i *++ *if true", "i")).Rets(1.0, nil),
	})
}

func TestCompile_Scenarios(t *testing.T) {
	matchSrc := func(input string) string {
		return lines(
			"match "+input,
			"  [a, b] -> a .+ b",
			"  [v] -> v",
			"  _ -> 0")
	}
	tt.Test(t, tt.Fn("eval", eval), tt.Table{
		// pattern matching
		tt.Args(matchSrc("[71, 6]")).Rets(77.0, nil),
		tt.Args(matchSrc("[71, 6, 100]")).Rets(0.0, nil),
		// a conditional with a statement in one branch
		tt.Args(lines(
			"-> x .= 100",
			"   y .= if x",
			"         -> z .= x.toString ()",
			"            z.length",
			"         42")).Rets(3.0, nil),
		// destructuring swap
		tt.Args(lines(
			"-> [x, y] .= [42, 10]",
			"   [y, x] .= [x, y]",
			"   x .- y")).Rets(-32.0, nil),
		// an inner overload declining a form leaves it to the outer one
		tt.Args(lines(
			`macro m (x) -> "outer"`,
			"macro-scope ->",
			`  macro m (x) -> if (x.val .== "0") (throw (this.expansionFailure "zero")) "inner"`,
			"  m 0 .+ m 1")).Rets("outerinner", nil),
		// a compile-time local is visible to a macro in the same scope
		tt.Args(lines(
			"macro-scope ->",
			"  meta (k .= 5)",
			"  macro getk () -> k",
			"  getk ()")).Rets(5.0, nil),
	})
}

func TestCompile_StatementBranchUsesIf(t *testing.T) {
	res := compile(Options{}, lines(
		"y .= if x",
		"       -> z .= f ()",
		"          z.length",
		"       42"))
	if res.Failed() {
		t.Fatalf("errors: %v", res.Errors())
	}
	if !strings.Contains(res.Code, "if (") {
		t.Errorf("want an if statement, got\n%s", res.Code)
	}
}

func TestCompile_MetaInSiblingScope(t *testing.T) {
	res := compile(Options{}, lines(
		"macro-scope (meta (k .= 5))",
		"macro-scope ->",
		"  macro getk () -> k",
		"  getk ()"))
	if !res.Failed() || !strings.Contains(res.Errors().Error(), "getk") {
		t.Errorf("want an error expanding getk, got %v", res.Messages)
	}
	if res.Code != "" {
		t.Errorf("want no code, got %q", res.Code)
	}
}

func TestCompile_ParseErrorYieldsNoCode(t *testing.T) {
	res := compile(Options{}, "(,)")
	if !res.Failed() || res.Code != "" || res.Program != nil {
		t.Errorf("got %+v", res)
	}
	if len(res.Messages) == 0 || res.Messages[0].Pos.File != "test" {
		t.Errorf("got messages %v", res.Messages)
	}
}

func TestCompile_Warnings(t *testing.T) {
	res := compile(Options{}, "foo[1]")
	if res.Failed() {
		t.Fatalf("errors: %v", res.Errors())
	}
	if len(res.Messages) != 1 || res.Messages[0].Kind != diag.Warning {
		t.Errorf("got messages %v", res.Messages)
	}
}

func TestCompile_Reduce(t *testing.T) {
	res := compile(Options{Reduce: true}, "f (2 .* 3)")
	if res.Failed() {
		t.Fatalf("errors: %v", res.Errors())
	}
	if !strings.Contains(res.Code, "6") || strings.Contains(res.Code, "*") {
		t.Errorf("want the arithmetic folded, got\n%s", res.Code)
	}
}

func TestCompile_Debug(t *testing.T) {
	res := compile(Options{Debug: true}, lines("meta (k .= 1)", "macro m () -> k"))
	infos := 0
	for _, m := range res.Messages {
		if m.Kind == diag.Info {
			infos++
		}
	}
	if infos != 2 {
		t.Errorf("want 2 informational messages, got %v", res.Messages)
	}
}

func TestCompile_NoStdMacros(t *testing.T) {
	res := compile(Options{NoStdMacros: true}, "unless false 1")
	if res.Failed() {
		t.Fatalf("errors: %v", res.Errors())
	}
	if !strings.Contains(res.Code, "unless(") {
		t.Errorf("want a plain call, got\n%s", res.Code)
	}
}

func TestCompiler_KeepsRootAcrossCompiles(t *testing.T) {
	c := New(Options{})
	in := stage.New()
	run := func(code string) stage.Value {
		t.Helper()
		res, err := c.Compile(parse.Source{Name: "repl", Code: code})
		if err != nil || res.Failed() {
			t.Fatalf("%q: %v %v", code, err, res.Messages)
		}
		v, err := in.Run(in.Global(), res.Program)
		if err != nil {
			t.Fatalf("%q: %v", code, err)
		}
		return v
	}
	run("x .= 3")
	if v := run("x *++"); v != 3.0 {
		t.Errorf("got %v", v)
	}
	if v := run("unless false x"); v != 4.0 {
		t.Errorf("got %v", v)
	}
}

func TestCompile_HostErrorsInCompileTimeCode(t *testing.T) {
	for _, code := range []string{
		"meta-do (-> (new Array -1) '1)",
		"meta-do (-> ((5).toString 1) '1)",
		"meta-do (-> ((1.5).toFixed 200) '1)",
	} {
		res, err := New(Options{}).Compile(parse.Source{Name: "test", Code: code})
		if err != nil {
			t.Errorf("%q: got error %v", code, err)
			continue
		}
		if !res.Failed() || !strings.Contains(res.Errors().Error(), "RangeError") {
			t.Errorf("%q: want a RangeError diagnostic, got %v", code, res.Messages)
		}
	}
}
