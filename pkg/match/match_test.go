package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/izreit/sifon/pkg/term"
)

var (
	S = term.S
	seq = term.L
)

func num(s string) *term.Term { return term.NewNum(s, term.NoPos) }

func ifMatcher() Matcher {
	return Make("t", O("a"), O("b"), O("c"))
}

func funMatcher() Matcher {
	return Make("#",
		O("args", Range{0, 1},
			O("name", Symbol),
			L{"=", O("name", Symbol), O("defaultValue")},
			L{
				O(Range{0, 1}, "<<tuple>>"),
				O("list", Range{0, N},
					O("name", SymbolButNot("->")),
					L{"=", O("name", Symbol), O("defaultValue")}),
			}),
		O(L{"->", O("body", Range{0, N})}))
}

func TestMatch_Fixed(t *testing.T) {
	in := seq(S("t"), num("1"), seq(S("a2"), S("foo")), S("ccd"))
	r := ifMatcher().Match(in)
	if r.Failed {
		t.Fatalf("match failed at %v", r.At)
	}
	for i, name := range []string{"a", "b", "c"} {
		if r.Bindings.Term(name) != in.Items[i+1] {
			t.Errorf("%s bound to %v, want %v", name, r.Bindings.Term(name), in.Items[i+1])
		}
	}
}

func TestMatch_ArityMismatchIsSeriousOnlyAfterHead(t *testing.T) {
	short := seq(S("t"), num("1"), num("2"))
	r := ifMatcher().Match(short)
	if !r.Failed || !r.Serious || r.At != short {
		t.Errorf("got %+v, want a serious failure at the whole form", r)
	}

	other := seq(S("f"), num("1"), num("2"), num("3"))
	r = ifMatcher().Match(other)
	if !r.Failed || r.Serious || r.At != other.Items[0] {
		t.Errorf("got %+v, want a non-serious failure at the head", r)
	}
}

func TestMatch_FixedArityWithoutHeadNeverSerious(t *testing.T) {
	m := Make(O("x"), O("y"))
	for _, in := range []*term.Term{seq(S("a")), seq(S("a"), S("b"), S("c")), seq()} {
		r := m.Match(in)
		if !r.Failed || r.Serious {
			t.Errorf("Match(%v) = %+v, want non-serious failure", in, r)
		}
	}
}

func TestMatch_Empty(t *testing.T) {
	m := Make(O("empty", L{}))
	if r := m.Match(seq(seq())); r.Failed || !r.Bindings.Has("empty") {
		t.Errorf("Match((())) = %+v", r)
	}
	in := seq(S("a"), num("1"))
	if r := m.Match(in); !r.Failed || r.Serious || r.At != in.Items[0] {
		t.Errorf("Match((a 1)) = %+v", r)
	}
}

func TestMatch_Alternatives(t *testing.T) {
	m := funMatcher()

	in := seq(S("#"), S("a"), seq(S("->"), S("a")))
	r := m.Match(in)
	if r.Failed {
		t.Fatalf("failed: %+v", r)
	}
	if got := r.Bindings.Sub("args").Term("name"); got != in.Items[1] {
		t.Errorf("args.name = %v", got)
	}
	if got := r.Bindings.Terms("body"); len(got) != 1 || got[0] != in.Items[2].Items[1] {
		t.Errorf("body = %v", got)
	}
}

func TestMatch_OptionalAbsent(t *testing.T) {
	in := seq(S("#"), seq(S("->"), S("a")))
	r := funMatcher().Match(in)
	if r.Failed {
		t.Fatalf("failed: %+v", r)
	}
	if r.Bindings.Has("args") {
		t.Errorf("args bound to %v", r.Bindings["args"])
	}
}

func TestMatch_RepeatedNestedWithDefaults(t *testing.T) {
	b := seq(S("="), S("b"), num("100"))
	in := seq(S("#"),
		seq(S("<<tuple>>"), S("a"), b, S("c")),
		seq(S("->"), seq(S("+"), S("a"), S("b"))))
	r := funMatcher().Match(in)
	if r.Failed {
		t.Fatalf("failed: %+v", r)
	}
	list := r.Bindings.Sub("args").List("list")
	want := []any{
		Bindings{"name": S("a")},
		Bindings{"name": S("b"), "defaultValue": num("100")},
		Bindings{"name": S("c")},
	}
	if diff := cmp.Diff(want, list, cmp.Comparer(term.Equal)); diff != "" {
		t.Errorf("list (-want +got):\n%s", diff)
	}
}

func TestMatch_EmptyArgs(t *testing.T) {
	in := seq(S("#"), seq(), seq(S("->"), S("a")))
	r := funMatcher().Match(in)
	if r.Failed {
		t.Fatalf("failed: %+v", r)
	}
	list := r.Bindings.Sub("args").List("list")
	if list == nil || len(list) != 0 {
		t.Errorf("list = %#v, want an empty list", list)
	}
}

func TestMatch_VariableMiddle(t *testing.T) {
	m := Make("f", O("first"), O("rest", Range{0, N}), O("last"))
	in := seq(S("f"), num("1"), num("2"), num("3"), num("4"))
	r := m.Match(in)
	if r.Failed {
		t.Fatalf("failed: %+v", r)
	}
	if r.Bindings.Term("first") != in.Items[1] || r.Bindings.Term("last") != in.Items[4] {
		t.Errorf("first/last = %v/%v", r.Bindings.Term("first"), r.Bindings.Term("last"))
	}
	if rest := r.Bindings.Terms("rest"); len(rest) != 2 || rest[0] != in.Items[2] || rest[1] != in.Items[3] {
		t.Errorf("rest = %v", rest)
	}

	if r := m.Match(seq(S("f"), num("1"))); !r.Failed || !r.Serious {
		t.Errorf("too short input gives %+v, want serious failure", r)
	}
}

func TestMatch_SeriousFailureInsideRepetitionPropagates(t *testing.T) {
	m := Make("try", O("body"),
		O("catches", Range{0, N}, L{O("head", "catch"), O("cond"), O("body")}))
	bad := seq(S("catch"), S("e"))
	r := m.Match(seq(S("try"), S("x"), bad))
	if !r.Failed {
		t.Fatalf("matched unexpectedly: %+v", r)
	}
}

func TestMatch_NonSequence(t *testing.T) {
	if r := Make("x").Match(S("x")); !r.Failed || r.Serious {
		t.Errorf("got %+v", r)
	}
	if r := Make().Match(nil); !r.Failed {
		t.Errorf("nil matched")
	}
}
