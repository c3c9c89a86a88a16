package scope_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/izreit/sifon/pkg/js"
	. "github.com/izreit/sifon/pkg/scope"
	"github.com/izreit/sifon/pkg/term"
)

func names(ts []*term.Term) []string {
	ret := make([]string, len(ts))
	for i, t := range ts {
		ret[i] = t.Name()
	}
	return ret
}

func TestVariables(t *testing.T) {
	e := New(nil)
	e.EnterScope()
	e.RegisterVariable("x", false)
	e.RegisterVariable("LIMIT", true)
	e.EnterScope()
	e.RegisterVariable("x", false)
	e.RegisterVariable("y", false)
	e.RegisterArgument("a", false)

	if !e.IsKnownVariable("x") || !e.IsKnownVariable("a") {
		t.Errorf("x and a should be known")
	}
	if !e.IsInvariable("LIMIT") {
		t.Errorf("LIMIT should be invariable")
	}
	if diff := cmp.Diff([]string{"y"}, names(e.VariableSymbols())); diff != "" {
		t.Errorf("inner locals (-want +got):\n%s", diff)
	}
	if err := e.LeaveScope(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"x", "LIMIT"}, names(e.VariableSymbols())); diff != "" {
		t.Errorf("outer locals (-want +got):\n%s", diff)
	}
	// y was declared in the nested scope only.
	if e.IsKnownVariable("y") {
		t.Errorf("y should not be known outside")
	}
	e.RegisterVariable("y", false)
	if !e.IsKnownVariable("y") {
		t.Errorf("y should become a local once assigned")
	}
}

func TestForceRegisterVariable_Shadows(t *testing.T) {
	e := New(nil)
	e.EnterScope()
	e.RegisterVariable("v", false)
	e.EnterScope()
	e.RegisterVariable("v", false)
	if len(e.VariableSymbols()) != 0 {
		t.Errorf("RegisterVariable should reuse the outer v")
	}
	e.ForceRegisterVariable("v", false)
	if diff := cmp.Diff([]string{"v"}, names(e.VariableSymbols())); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestUniqueSymbol_AvoidsDeclaredNames(t *testing.T) {
	e := New(nil)
	e.EnterScope()
	e.RegisterVariable("tmp", false)
	e.RegisterVariable("tmp0", false)
	u := e.UniqueSymbol("tmp", term.NoPos)
	e.RegisterUnique(u)
	e.ResolveAll()
	if got := u.Name(); got != "tmp1" {
		t.Errorf("got %q, want tmp1", got)
	}
	if !e.IsKnownSymbol(u) {
		t.Errorf("a registered unique should be known")
	}
	if diff := cmp.Diff([]string{"tmp", "tmp0", "tmp1"}, names(e.VariableSymbols())); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestUniqueSymbol_NestedScopesNeverShadow(t *testing.T) {
	e := New(nil)
	e.EnterScope()
	outer := e.UniqueSymbol("_ref", term.NoPos)
	e.RegisterUnique(outer)
	e.EnterScope()
	inner := e.UniqueSymbol("_ref", term.NoPos)
	e.RegisterUnique(inner)
	e.EnterScope()
	user := "_ref1"
	e.RegisterVariable(user, false)
	must(t, e.LeaveScope())
	must(t, e.LeaveScope())
	e.ResolveAll()

	if outer.Name() == inner.Name() {
		t.Errorf("outer and inner share the name %q", outer.Name())
	}
	for _, u := range []*term.Term{outer, inner} {
		if u.Name() == user {
			t.Errorf("a unique took the user name %q", user)
		}
	}
}

func TestUniqueSymbol_Siblings(t *testing.T) {
	e := New(nil)
	e.EnterScope()
	var syms []*term.Term
	for i := 0; i < 2; i++ {
		e.EnterScope()
		s := e.UniqueSymbol("x", term.NoPos)
		e.RegisterUnique(s)
		syms = append(syms, s)
		must(t, e.LeaveScope())
	}
	shared := e.UniqueSymbol("x", term.NoPos)
	e.RegisterUnique(shared)
	e.ResolveAll()
	for _, s := range syms {
		if s.Name() == shared.Name() {
			t.Errorf("a sibling unique collides with the enclosing one: %q", s.Name())
		}
	}
}

func TestUniqueSymbol_SanitizesHint(t *testing.T) {
	e := New(nil)
	e.EnterScope()
	for hint, want := range map[string]string{"foo-bar": "foo_bar", "if": "if0", "": "_", "1x": "_1x"} {
		if got := e.UniqueSymbol(hint, term.NoPos).Name(); got != want {
			t.Errorf("hint %q: got %q, want %q", hint, got, want)
		}
	}
}

func TestMacros(t *testing.T) {
	root := NewRoot()
	base := MacroFunc(func(x *Expansion, args []*term.Term) (*term.Term, error) {
		return term.S("base"), nil
	})
	root.RegisterMacro("m", base)
	e := New(root)
	e.EnterScope()
	inner := MacroFunc(func(x *Expansion, args []*term.Term) (*term.Term, error) {
		return nil, x.Fail("no")
	})
	if !e.RegisterMacro("m", inner) {
		t.Fatalf("shadowing a root macro should succeed")
	}
	if e.RegisterMacro("m", inner) {
		t.Errorf("binding m twice in one scope should fail")
	}
	ms := e.AllMacrosFor("m")
	if len(ms) != 2 {
		t.Fatalf("got %d macros, want 2", len(ms))
	}
	form := term.L(term.S("m"))
	if _, err := e.ExpandMacro(ms[1], form, nil); !IsExpansionFailure(err) {
		t.Errorf("inner macro should decline, got %v", err)
	}
	if got, _ := e.ExpandMacro(ms[0], form, nil); !got.Is("base") {
		t.Errorf("outer macro returned %v", got)
	}
	must(t, e.LeaveScope())
	if len(e.AllMacrosFor("m")) != 1 {
		t.Errorf("the inner binding should be gone")
	}
	if root.Macro("m") == nil || len(New(root).AllMacrosFor("m")) != 1 {
		t.Errorf("the root should be untouched")
	}
}

func varDecl(name string, v any) *js.Node {
	return js.Make(js.VariableStatementDirect, js.Make(js.VariableDeclaration, js.Ident(name), v))
}

func TestCompileTimeCode_VisibleToNestedScopesOnly(t *testing.T) {
	e := New(nil)
	e.EnterScope()
	e.EnterScope()
	e.AddCompileTimeCode(varDecl("x", 42))
	e.EnterScope()
	v, err := e.CompileTimeEval(js.Stmts(js.Make(js.Add, js.Ident("x"), 1)))
	if err != nil || v != 43.0 {
		t.Errorf("nested eval: got %v, %v", v, err)
	}
	must(t, e.LeaveScope())
	must(t, e.LeaveScope())

	e.EnterScope()
	_, err = e.CompileTimeEval(js.Stmts(js.Ident("x")))
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Errorf("sibling eval: want an EvalError, got %v", err)
	}
}

func TestLeaveScope_ReportsPendingFailure(t *testing.T) {
	e := New(nil)
	e.EnterScope()
	e.AddCompileTimeCode(js.Stmts(js.Throw("boom")))
	err := e.LeaveScope()
	var evalErr *EvalError
	if !errors.As(err, &evalErr) || evalErr.Err.Error() != "boom" {
		t.Errorf("got %v", err)
	}
}

func TestStageMacro(t *testing.T) {
	e := New(nil)
	e.EnterScope()
	// function (a) { if (a.val === "1") throw this.expansionFailure("one"); return [this.gensym("g"), a]; }
	fn := js.Func(nil, []*js.Node{js.Ident("a")},
		js.Make(js.IfStatement, js.Make(js.StrictEq, js.Member(js.Ident("a"), "val"), "1"),
			js.Throw(js.MethodCall(js.Ident("this"), "expansionFailure", "one"))),
		js.Return(js.Make(js.ArrayLiteral, js.MethodCall(js.Ident("this"), "gensym", "g"), js.Ident("a"))))
	v, err := e.CompileTimeEval(js.Stmts(fn))
	must(t, err)
	m := e.StageMacro(v)
	form := term.L(term.S("m"), term.NewNum("2", term.NoPos))

	got, err := e.ExpandMacro(m, form, form.Rest())
	must(t, err)
	if got.Len() != 2 || got.Items[0].Unique == nil || got.Items[0].Unique.Hint != "g" || got.Items[1].Val != "2" {
		t.Errorf("got %v", got)
	}

	_, err = e.ExpandMacro(m, form, []*term.Term{term.NewNum("1", term.NoPos)})
	if !IsExpansionFailure(err) {
		t.Errorf("want an expansion failure, got %v", err)
	}
}

func TestStageMacro_MatchFailureDeclines(t *testing.T) {
	e := New(nil)
	fn := js.Func(nil, nil, js.Throw("MatchFailure"))
	v, err := e.CompileTimeEval(js.Stmts(fn))
	must(t, err)
	_, err = e.ExpandMacro(e.StageMacro(v), term.L(term.S("m")), nil)
	if !IsExpansionFailure(err) {
		t.Errorf("got %v", err)
	}
}

func TestUtilValues(t *testing.T) {
	e := New(nil)
	e.EnterScope()
	made := 0
	mk := func() *js.Node { made++; return js.Str("v") }
	s1 := e.RegisterUtilValue("_u", mk)
	e.EnterScope()
	s2 := e.RegisterUtilValue("_u", mk)
	if s1 != s2 || made != 1 {
		t.Errorf("the value should be lifted once")
	}
	if len(e.UtilValues()) != 0 {
		t.Errorf("the nested scope owns no util values")
	}
	must(t, e.LeaveScope())
	if uvs := e.UtilValues(); len(uvs) != 1 || uvs[0].Symbol != s1 {
		t.Errorf("got %v", uvs)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
