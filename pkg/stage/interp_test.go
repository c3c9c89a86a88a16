package stage

import (
	"testing"

	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/term"
	"github.com/izreit/sifon/pkg/tt"
)

var (
	x = js.Ident("x")
	y = js.Ident("y")
	f = js.Ident("f")
)

func run(prog *js.Node) (Value, error) {
	in := New()
	return in.Run(in.Global(), prog)
}

func lit(s string) *js.Node { return js.Str(s) }

func TestRun(t *testing.T) {
	tt.Test(t, tt.Fn("run", run).ArgsFmt("%v"), tt.Table{
		tt.Args(js.Stmts(js.Make(js.Add, 1, 2))).Rets(3.0, nil),
		tt.Args(js.Stmts(js.Make(js.Add, lit("a"), 2))).Rets("a2", nil),
		tt.Args(js.Stmts(
			js.VarNoAssign(x),
			js.AssignTo(x, 10),
			js.Make(js.MulAssign, x, 3),
			x,
		)).Rets(30.0, nil),
		// closures capture their environment
		tt.Args(js.Stmts(
			js.VarNoAssign(f),
			js.AssignTo(f, js.Func(nil, []*js.Node{x}, js.Return(js.Func(nil, nil, js.Return(js.Make(js.PreInc, x)))))),
			js.AssignTo(y, js.CallOf(f, 5)),
			js.CallOf(y),
			js.CallOf(y),
		)).Rets(7.0, nil),
		tt.Args(js.Stmts(js.Make(js.Typeof, js.Ident("nosuchvar")))).Rets("undefined", nil),
		tt.Args(js.Stmts(js.Make(js.Typeof, js.Func(nil, nil)))).Rets("function", nil),
		tt.Args(js.Stmts(js.Make(js.StrictEq, js.Make(js.ArrayLiteral), js.Make(js.ArrayLiteral)))).Rets(false, nil),
		tt.Args(js.Stmts(js.Make(js.Eq, lit("1"), 1))).Rets(true, nil),
		tt.Args(js.Stmts(js.Make(js.Eq, js.Ident("null"), js.Undefined()))).Rets(true, nil),
		tt.Args(js.Stmts(js.Make(js.OrMulti, 0, lit(""), lit("z")))).Rets("z", nil),
		tt.Args(js.Stmts(js.Make(js.Conditional, js.Ident("false"), 1, 2))).Rets(2.0, nil),
		tt.Args(js.Stmts(js.Make(js.Mod, -7, 3))).Rets(-1.0, nil),
		tt.Args(js.Stmts(js.Make(js.URShift, -1, 28))).Rets(15.0, nil),
	})
}

func TestRun_ControlFlow(t *testing.T) {
	i := js.Ident("i")
	sum := js.Ident("sum")
	tt.Test(t, tt.Fn("run", run).ArgsFmt("%v"), tt.Table{
		tt.Args(js.Stmts(
			js.VarNoAssign(i, sum),
			js.AssignTo(sum, 0),
			js.Make(js.ForStatement, js.AssignTo(i, 0), js.Make(js.Lt, i, 10), js.Make(js.PostInc, i),
				js.Make(js.Block,
					js.Make(js.IfStatement, js.Make(js.StrictEq, js.Make(js.Mod, i, 2), 0), js.Make(js.ContinueStatement), nil),
					js.Make(js.IfStatement, js.Make(js.Gt, i, 7), js.Make(js.BreakStatement), nil),
					js.Make(js.AddAssign, sum, i))),
			sum,
		)).Rets(16.0, nil),
		// labelled continue of an outer loop
		tt.Args(js.Stmts(
			js.VarNoAssign(i, x, sum),
			js.AssignTo(sum, 0),
			js.Make(js.LabelledStatement, js.Ident("outer"),
				js.Make(js.ForStatement, js.AssignTo(i, 0), js.Make(js.Lt, i, 3), js.Make(js.PostInc, i),
					js.Make(js.ForStatement, js.AssignTo(x, 0), js.Make(js.Lt, x, 3), js.Make(js.PostInc, x),
						js.Make(js.Block,
							js.Make(js.IfStatement, js.Make(js.StrictEq, x, 1), js.Make(js.ContinueStatement, js.Ident("outer")), nil),
							js.Make(js.AddAssign, sum, 1))))),
			sum,
		)).Rets(3.0, nil),
		tt.Args(js.Stmts(
			js.VarNoAssign(x),
			js.Make(js.TryStatement,
				js.Make(js.Block, js.Throw(lit("err1"))),
				js.Make(js.Catch, js.Ident("e"), js.Make(js.Block, js.AssignTo(x, js.Ident("e")))),
				js.Make(js.Finally, js.Make(js.Block, js.Make(js.AddAssign, x, lit("!"))))),
			x,
		)).Rets("err1!", nil),
		tt.Args(js.Stmts(js.Throw(lit("oops")))).Rets(nil, tt.ErrorMatching("oops")),
		tt.Args(js.Stmts(js.CallOf(js.Ident("nosuchfn")))).Rets(nil, tt.ErrorMatching("ReferenceError: nosuchfn is not defined")),
		tt.Args(js.Stmts(
			js.VarNoAssign(x),
			js.Make(js.SwitchStatement, 2,
				js.Make(js.CaseClause, 1, js.AssignTo(x, lit("one")), js.Make(js.BreakStatement)),
				js.Make(js.CaseClause, 2, js.AssignTo(x, lit("two"))),
				js.Make(js.DefaultClause, js.Make(js.AddAssign, x, lit("+default")))),
			x,
		)).Rets("two+default", nil),
	})
}

func TestRun_ObjectsAndPrototypes(t *testing.T) {
	k := js.Ident("k")
	ks := js.Ident("ks")
	tt.Test(t, tt.Fn("run", run).ArgsFmt("%v"), tt.Table{
		// constructor with this and a prototype method
		tt.Args(js.Stmts(
			js.VarNoAssign(f),
			js.AssignTo(f, js.Func(nil, []*js.Node{x}, js.AssignTo(js.Member(js.Ident("this"), "v"), x))),
			js.AssignTo(js.Member(js.Member(f, "prototype"), "get"), js.Func(nil, nil, js.Return(js.Member(js.Ident("this"), "v")))),
			js.MethodCall(js.Make(js.New, f, js.Make(js.Arguments, 42)), "get"),
		)).Rets(42.0, nil),
		tt.Args(js.Stmts(js.Make(js.Instanceof, js.Make(js.New, js.Ident("Error"), js.Make(js.Arguments, lit("m"))), js.Ident("Error")))).Rets(true, nil),
		// for-in walks the prototype chain; hasOwnProperty does not
		tt.Args(js.Stmts(
			js.VarNoAssign(x, y, k, ks),
			js.AssignTo(x, js.Make(js.ObjectLiteral, js.Make(js.PropertyAssignment, term.S("a"), 1))),
			js.AssignTo(y, js.MethodCall(js.Ident("Object"), "create", x)),
			js.AssignTo(js.Member(y, "b"), 2),
			js.AssignTo(ks, lit("")),
			js.Make(js.ForInStatement, k, y, js.Make(js.AddAssign, ks, k)),
			js.Make(js.AddMulti, ks, lit(":"), js.MethodCall(y, "hasOwnProperty", lit("a"))),
		)).Rets("ba:false", nil),
		tt.Args(js.Stmts(
			js.VarNoAssign(x),
			js.AssignTo(x, js.MethodCall(js.Ident("Object"), "freeze", js.Make(js.ObjectLiteral, js.Make(js.PropertyAssignment, term.S("a"), 1)))),
			js.AssignTo(js.Member(x, "a"), 2),
			js.Member(x, "a"),
		)).Rets(1.0, nil),
		tt.Args(js.Stmts(
			js.VarNoAssign(x),
			js.AssignTo(x, js.Make(js.ArrayLiteral, 3, 1, 2)),
			js.MethodCall(x, "push", 4),
			js.MethodCall(js.MethodCall(js.MethodCall(x, "slice", 1), "map",
				js.Func(nil, []*js.Node{y}, js.Return(js.Make(js.Mul, y, 10)))), "join", lit("-")),
		)).Rets("10-20-40", nil),
		tt.Args(js.Stmts(
			js.MethodCall(js.Ident("Math"), "max", 3, 9, 4),
		)).Rets(9.0, nil),
		tt.Args(js.Stmts(
			js.MethodCall(js.Ident("JSON"), "stringify", js.Make(js.ObjectLiteral,
				js.Make(js.PropertyAssignment, term.S("a"), js.Make(js.ArrayLiteral, 1, lit("x"))),
				js.Make(js.PropertyAssignment, term.S("b"), js.Undefined()))),
		)).Rets(`{"a":[1,"x"]}`, nil),
		// arguments and apply
		tt.Args(js.Stmts(
			js.VarNoAssign(f),
			js.AssignTo(f, js.Func(nil, nil, js.Return(js.MethodCall(js.Member(js.Make(js.ArrayLiteral), "slice"), "call", js.Ident("arguments"), 1)))),
			js.MethodCall(js.MethodCall(f, "apply", js.Ident("null"), js.Make(js.ArrayLiteral, 1, 2, 3)), "join", lit(",")),
		)).Rets("2,3", nil),
	})
}

func TestRun_Strings(t *testing.T) {
	re := func(body, flags string) *js.Node {
		return js.Make(js.Literal, term.NewRegexp(body, flags, term.NoPos))
	}
	tt.Test(t, tt.Fn("run", run).ArgsFmt("%v"), tt.Table{
		tt.Args(js.Stmts(js.MethodCall(lit("foooobarrr"), "replace", re("o+bar+", "gi"), lit("[$&]")))).Rets("f[oooobarrr]", nil),
		tt.Args(js.Stmts(js.Make(js.Bracket, js.MethodCall(lit("key=value"), "match", re("(\\w+)=(\\w+)", "")), 2))).Rets("value", nil),
		tt.Args(js.Stmts(js.MethodCall(js.MethodCall(lit("a,b,,c"), "split", lit(",")), "join", lit("|")))).Rets("a|b||c", nil),
		tt.Args(js.Stmts(js.Member(lit("héllo"), "length"))).Rets(5.0, nil),
		tt.Args(js.Stmts(js.MethodCall(lit("abc"), "toUpperCase"))).Rets("ABC", nil),
		tt.Args(js.Stmts(js.MethodCall(lit("abcdef"), "substring", 4, 1))).Rets("bcd", nil),
	})
}

func TestRun_RangeErrors(t *testing.T) {
	newArray := func(n any) *js.Node {
		return js.Make(js.New, js.Ident("Array"), js.Make(js.Arguments, n))
	}
	tt.Test(t, tt.Fn("run", run).ArgsFmt("%v"), tt.Table{
		tt.Args(js.Stmts(newArray(-1))).Rets(nil, tt.ErrorMatching("RangeError: Invalid array length")),
		tt.Args(js.Stmts(newArray(1.5))).Rets(nil, tt.ErrorMatching("RangeError: Invalid array length")),
		tt.Args(js.Stmts(js.Member(newArray(3), "length"))).Rets(3.0, nil),
		tt.Args(js.Stmts(
			js.VarNoAssign(x),
			js.AssignTo(x, js.Make(js.ArrayLiteral, 1, 2)),
			js.AssignTo(js.Member(x, "length"), -1),
		)).Rets(nil, tt.ErrorMatching("RangeError: Invalid array length")),
		tt.Args(js.Stmts(js.MethodCall(js.Num(5), "toString", 1))).
			Rets(nil, tt.ErrorMatching("RangeError: toString() radix")),
		tt.Args(js.Stmts(js.MethodCall(js.Num(5), "toString", 2))).Rets("101", nil),
		tt.Args(js.Stmts(js.MethodCall(js.Num(255), "toString", 16))).Rets("ff", nil),
		tt.Args(js.Stmts(js.MethodCall(js.Num(1.5), "toFixed", -1))).
			Rets(nil, tt.ErrorMatching("RangeError: toFixed() digits")),
		tt.Args(js.Stmts(js.MethodCall(js.Num(3.14159), "toFixed", 2))).Rets("3.14", nil),
		// evaluated code can catch them
		tt.Args(js.Stmts(
			js.VarNoAssign(x),
			js.Make(js.TryStatement,
				js.Make(js.Block, newArray(-1)),
				js.Make(js.Catch, js.Ident("e"), js.Make(js.Block, js.AssignTo(x, js.Member(js.Ident("e"), "name")))),
				nil),
			x,
		)).Rets("RangeError", nil),
	})
}

func TestCall_RuntimeErrorBecomesThrown(t *testing.T) {
	in := New()
	crash := in.NewNative("crash", func(in *Interp, _ Value, args []Value) Value {
		return []Value{}[len(args)]
	})
	_, err := in.Call(crash, Undefined)
	if _, ok := err.(*Thrown); !ok {
		t.Errorf("got error %v, want a *Thrown", err)
	}
}

func TestNs_Nesting(t *testing.T) {
	in := New()
	outer := NewNs(in.Global())
	inner := NewNs(outer)
	sibling := NewNs(outer)

	if _, err := in.Run(outer, js.Stmts(js.Make(js.VariableStatementDirect, js.Make(js.VariableDeclaration, x, 1)))); err != nil {
		t.Fatal(err)
	}
	if _, err := in.Run(inner, js.Stmts(js.Make(js.VariableStatementDirect, js.Make(js.VariableDeclaration, y, 2)))); err != nil {
		t.Fatal(err)
	}
	v, err := in.Eval(inner, js.Make(js.Add, x, y))
	if v != 3.0 || err != nil {
		t.Errorf("got %v, %v, want 3", v, err)
	}
	if _, err := in.Eval(sibling, y); err == nil {
		t.Errorf("a variable of a sibling environment is visible")
	}
}

func TestTermRoundTrip(t *testing.T) {
	in := New()
	u := term.NewUnique("tmp", nil, nil)
	src := term.NewSeq(term.Pos{File: "a.sifon", Line: 1, Col: 2},
		term.NewSym("foo", term.Pos{Line: 1, Col: 3}),
		term.NewUniqueSym(u, term.NoPos),
		term.NewStr("s", term.NoPos),
		term.NewNum("0x10", term.NoPos),
		term.NewRegexp("a+", "g", term.NoPos))
	got, err := in.ToTerm(in.FromTerm(src))
	if err != nil {
		t.Fatal(err)
	}
	if !term.Equal(src, got) {
		t.Errorf("got %v, want %v", got, src)
	}
	if got.Pos != src.Pos || got.Items[0].Pos != src.Items[0].Pos {
		t.Errorf("positions are lost: %v, %v", got.Pos, got.Items[0].Pos)
	}
	if got.Items[1].Unique != u {
		t.Errorf("identity of the unique symbol is lost")
	}
}

func TestToTerm_Normalizes(t *testing.T) {
	in := New()
	got, err := in.ToTerm(in.NewArray("x", 1.0, true, Undefined, Null))
	if err != nil {
		t.Fatal(err)
	}
	want := term.L(term.NewStr("x", term.NoPos), term.NewNum("1", term.NoPos), term.S("true"), term.S("null"))
	if !term.Equal(want, got) {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, err := in.ToTerm(in.NewPlainObject()); err == nil {
		t.Errorf("converting a plain object succeeded")
	}
}
