// Package match implements declarative structural patterns over terms.
//
// A pattern is built from parts made by O. Parts match children of a
// sequence from left to right; once a variable-length part is reached, the
// parts after it are matched from the right end backward, and the
// variable-length part takes whatever remains in the middle.
//
//	m := match.Make("if", match.O("cond"), match.O("then"),
//		match.O(match.Range{0, 1}, match.L("else", match.O("else"))))
package match

import (
	"github.com/izreit/sifon/pkg/term"
)

// N is the unbounded repetition count.
const N = 1 << 28

// Range is the repetition range of a part, {min, max}.
type Range [2]int

// Part is a component of a pattern.
type Part struct {
	name     string
	variable bool
	fn       partFunc
}

// L is a nested pattern, used as an argument of O or Make.
type L []any

// partFunc matches seq.Items starting at from and moving by dir. A
// negative limit means no limit.
type partFunc func(seq *term.Term, from, dir, limit int) result

type result struct {
	value   any
	next    int
	fail    bool
	serious bool
	at      *term.Term
}

func itemAt(seq *term.Term, i int) *term.Term {
	if seq == nil || seq.Kind != term.Seq || i < 0 || i >= len(seq.Items) {
		return nil
	}
	return seq.Items[i]
}

func failAt(serious bool, seq *term.Term, i int) result {
	at := itemAt(seq, i)
	if at == nil {
		at = seq
	}
	return result{fail: true, serious: serious, at: at}
}

func primitive(test func(t *term.Term) bool) *Part {
	return &Part{fn: func(seq *term.Term, from, dir, limit int) result {
		if t := itemAt(seq, from); limit == 0 || test(t) {
			return result{value: t, next: from + dir}
		}
		return failAt(false, seq, from)
	}}
}

// Any matches any present term.
var Any = primitive(func(t *term.Term) bool { return t != nil })

// Symbol matches any symbol.
var Symbol = primitive(func(t *term.Term) bool { return t.IsSym() })

// SymbolButNot matches a symbol whose name is none of the given names.
func SymbolButNot(names ...string) *Part {
	excluded := make(map[string]bool, len(names))
	for _, n := range names {
		excluded[n] = true
	}
	return primitive(func(t *term.Term) bool {
		return t.IsSym() && !(t.Unique == nil && excluded[t.Val])
	})
}

// Literal matches the symbol with the given name.
func Literal(name string) *Part {
	return primitive(func(t *term.Term) bool { return t.Is(name) })
}

func toPart(v any) *Part {
	switch v := v.(type) {
	case *Part:
		return v
	case L:
		return partialize(Make(v...))
	case string:
		return Literal(v)
	}
	panic("match: invalid pattern element")
}

func partialize(m Matcher) *Part {
	return &Part{fn: func(seq *term.Term, from, dir, limit int) result {
		r := m.match(itemAt(seq, from))
		if r.fail {
			if r.at == nil {
				r.at = itemAt(seq, from)
				if r.at == nil {
					r.at = seq
				}
			}
			return r
		}
		return result{value: r.value, next: from + dir}
	}}
}

// O makes a part. Its arguments are, in order and all optional: a name
// under which the matched value is bound, a Range (default {1, 1}), and
// alternatives. An alternative is a *Part, a nested pattern L, or a string
// matching the symbol of that name. Without alternatives the part matches
// any term.
//
// A part with range {1, 1} binds the matched term, or the bindings of the
// matched nested pattern. A range of {0, 1} binds nil when nothing matches.
// Other ranges bind a []any.
func O(args ...any) *Part {
	p := &Part{}
	if len(args) > 0 {
		if s, ok := args[0].(string); ok {
			p.name = s
			args = args[1:]
		}
	}
	min, max := 1, 1
	if len(args) > 0 {
		if r, ok := args[0].(Range); ok {
			min, max = r[0], r[1]
			args = args[1:]
		}
	}
	var alts []*Part
	if len(args) == 0 {
		alts = []*Part{Any}
	} else {
		for _, a := range args {
			alts = append(alts, toPart(a))
		}
	}
	for _, a := range alts {
		p.variable = p.variable || a.variable
	}
	p.variable = p.variable || max == N

	single := func(seq *term.Term, from, dir, limit int) result {
		var seriousFailure *result
		for _, alt := range alts {
			r := alt.fn(seq, from, dir, limit)
			if r.fail {
				if seriousFailure == nil && r.serious {
					seriousFailure = &r
				}
				continue
			}
			if alt.name != "" && truthy(r.value) {
				return result{value: Bindings{alt.name: r.value}, next: r.next}
			}
			return r
		}
		if seriousFailure != nil {
			return *seriousFailure
		}
		return failAt(false, seq, from)
	}

	switch {
	case min == 1 && max == 1:
		p.fn = single
	case min == 0 && max == 1:
		p.fn = func(seq *term.Term, from, dir, limit int) result {
			if itemAt(seq, from) == nil || limit == 0 {
				return result{next: from}
			}
			r := single(seq, from, dir, -1)
			if r.fail && !r.serious {
				return result{next: from}
			}
			return r
		}
	default:
		p.fn = func(seq *term.Term, from, dir, limit int) result {
			if limit < 0 || limit > max {
				limit = max
			}
			var got []any
			for itemAt(seq, from) != nil && len(got) < limit {
				r := single(seq, from, dir, -1)
				if r.fail {
					if r.serious {
						return r
					}
					break
				}
				if dir > 0 {
					got = append(got, r.value)
				} else {
					got = append([]any{r.value}, got...)
				}
				from = r.next
			}
			if len(got) < min {
				return failAt(false, seq, from)
			}
			if got == nil {
				got = []any{}
			}
			return result{value: got, next: from}
		}
	}
	return p
}

// truthy mirrors which matched values are worth binding: absent values are
// not.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case *term.Term:
		return v != nil
	}
	return true
}
