package expand_test

import (
	"strings"
	"testing"

	"github.com/izreit/sifon/pkg/diag"
	. "github.com/izreit/sifon/pkg/expand"
	"github.com/izreit/sifon/pkg/gen"
	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/scope"
	"github.com/izreit/sifon/pkg/term"
	"github.com/izreit/sifon/pkg/testutil"
)

// compiler compiles compile-time code the way the real pipeline does:
// expand, then generate, counting errors in a unit of their own.
type compiler struct {
	ev *Evaluator
	r  *diag.Receiver
}

func (c *compiler) CompileNode(t *term.Term, env *scope.Env) *js.Node {
	c.r.EnterUnit()
	expanded := c.ev.Evaluate([]*term.Term{t}, env, c)
	prog, err := gen.New(c.r).Generate(expanded, env)
	if c.r.LeaveUnit() > 0 || err != nil {
		return nil
	}
	return prog
}

func setup(root *scope.Root) (*Evaluator, *compiler, *scope.Env, *diag.Receiver) {
	r := diag.NewReceiver()
	ev := New(r)
	return ev, &compiler{ev, r}, scope.New(root), r
}

func expandSrc(t *testing.T, src string) ([]*term.Term, []*diag.Message) {
	t.Helper()
	ev, c, env, r := setup(nil)
	return ev.Evaluate(testutil.Sexp(src), env, c), r.Messages()
}

func errorTexts(msgs []*diag.Message) []string {
	var ss []string
	for _, m := range msgs {
		if m.IsError() {
			ss = append(ss, m.Text)
		}
	}
	return ss
}

func TestEvaluate_UserMacros(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"quasiquote",
			`(macro twice (x) (-> (<<quasiquote>> (+ (<<unquote>> x) (<<unquote>> x))))) (twice 21)`,
			`(+ 21 21)`},
		{"splicing",
			`(macro call (f ...args) (-> (<<quasiquote>> ((<<unquote>> f) 0 (<<unquote-splicing>> args))))) (call g 1 2)`,
			`(g 0 1 2)`},
		{"symbol macro",
			`(symbol-macro answer (-> 42)) (+ answer 1)`,
			`(+ 42 1)`},
		{"nested expansion",
			`(macro inc (x) (-> (<<quasiquote>> (+ (<<unquote>> x) 1)))) (inc (inc 1))`,
			`(+ (+ 1 1) 1)`},
		{"meta-do",
			`(meta-do (<<quote>> (f 1)))`,
			`(f 1)`},
		{"quote is left alone",
			`(macro m () (-> 1)) (<<quote>> (m))`,
			`(<<quote>> (m))`},
		{"unquote in quasiquote is expanded",
			`(macro m () (-> 1)) (<<quasiquote>> ((m) (<<unquote>> (m))))`,
			`(<<quasiquote>> ((m) (<<unquote>> 1)))`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, msgs := expandSrc(t, test.src)
			if errs := errorTexts(msgs); len(errs) > 0 {
				t.Fatalf("errors: %v", errs)
			}
			want := testutil.Sexp1(test.want)
			if len(got) != 1 || !term.Equal(got[0], want) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestEvaluate_OverloadFallsThrough(t *testing.T) {
	root := scope.NewRoot()
	root.RegisterMacro("m", scope.MacroFunc(func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		if len(args) == 2 {
			return nil, x.Fail("two arguments")
		}
		return term.NewStr("outer", x.Pos()), nil
	}))
	ev, c, env, r := setup(root)
	env.EnterScope()
	env.RegisterMacro("m", scope.MacroFunc(func(x *scope.Expansion, args []*term.Term) (*term.Term, error) {
		if len(args) != 0 {
			return nil, x.Fail("arguments")
		}
		return term.NewStr("inner", x.Pos()), nil
	}))

	got := ev.Evaluate(testutil.Sexp(`(m) (m 1) (m 1 2)`), env, c)
	want := testutil.Sexp(`"inner" "outer"`)
	if len(got) != 2 || !term.Equal(got[0], want[0]) || !term.Equal(got[1], want[1]) {
		t.Errorf("got %v, want %v", got, want)
	}
	errs := errorTexts(r.Messages())
	if len(errs) != 1 || !strings.Contains(errs[0], "expanding the macro `m'") {
		t.Errorf("want one error for (m 1 2), got %v", errs)
	}
}

func TestEvaluate_UserOverload(t *testing.T) {
	got, msgs := expandSrc(t, `
		(macro m (x) (-> "outer"))
		(macro-scope (->
			(macro m (x) (-> (if (== (<<dot>> x val) "0") (throw ((<<dot>> this expansionFailure) "zero")) "inner")))
			(m 0)
			(m 1)))`)
	if errs := errorTexts(msgs); len(errs) > 0 {
		t.Fatalf("errors: %v", errs)
	}
	want := testutil.Sexp1(`(-> "outer" "inner")`)
	if len(got) != 1 || !term.Equal(got[0], want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestEvaluate_MetaVisibility(t *testing.T) {
	got, msgs := expandSrc(t, `(macro-scope (-> (meta (= k 5)) (macro getk () (-> k)) (getk)))`)
	if errs := errorTexts(msgs); len(errs) > 0 {
		t.Fatalf("errors: %v", errs)
	}
	if want := testutil.Sexp1(`(-> 5)`); len(got) != 1 || !term.Equal(got[0], want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// A sibling scope does not see k.
	_, msgs = expandSrc(t, `
		(macro-scope (meta (= k 5)))
		(macro-scope (-> (macro getk () (-> k)) (getk)))`)
	if errs := errorTexts(msgs); len(errs) != 1 || !strings.Contains(errs[0], "getk") {
		t.Errorf("want one error expanding getk, got %v", errs)
	}
}

func TestExpandAll_Idempotent(t *testing.T) {
	ev, c, env, _ := setup(nil)
	got := ev.Evaluate(testutil.Sexp(`(macro twice (x) (-> (<<quasiquote>> (* (<<unquote>> x) 2)))) (twice (twice 3))`), env, c)
	if len(got) != 1 {
		t.Fatalf("got %v", got)
	}
	again := ev.Evaluate(got, env, c)
	if len(again) != 1 || !term.Equal(got[0], again[0]) {
		t.Errorf("re-expansion changed %v to %v", got, again)
	}
	if expanded, same := ev.ExpandAll(got[0], env); expanded || same != got[0] {
		t.Errorf("ExpandAll expanded a normal form")
	}
}

func TestEvaluate_Macroexpand(t *testing.T) {
	got, _ := expandSrc(t, `(macro twice (x) (-> (<<quasiquote>> (+ (<<unquote>> x) (<<unquote>> x))))) (%macroexpand-1 (twice a))`)
	want := testutil.Sexp1(`(<<array>> (<<quote>> (+ a a)) true)`)
	if len(got) != 1 || !term.Equal(got[0], want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestEvaluate_InvalidForms(t *testing.T) {
	for _, src := range []string{`(meta)`, `(macro)`, `(symbol-macro s x (-> 1))`} {
		_, msgs := expandSrc(t, src)
		if len(errorTexts(msgs)) == 0 {
			t.Errorf("%s: want an error", src)
		}
	}
}

func TestEvaluate_Debug(t *testing.T) {
	ev, c, env, r := setup(nil)
	ev.Debug = true
	ev.Evaluate(testutil.Sexp(`(meta (= k 1)) (macro m () (-> k))`), env, c)
	infos := 0
	for _, m := range r.Messages() {
		if m.Kind == diag.Info {
			infos++
		}
	}
	if infos != 2 {
		t.Errorf("got %d info messages, want 2: %v", infos, r.Messages())
	}
}
