package match

import (
	"github.com/izreit/sifon/pkg/term"
)

// Matcher matches a whole sequence against a pattern.
type Matcher struct {
	seriousName bool
	parts       []*Part
}

// Make builds a Matcher from a pattern. Each element is a *Part, a nested
// pattern L, or a string matching a symbol literally.
//
// When the first element is a string, failures after the first element has
// matched are serious: the head of the form was recognized but its content
// is malformed.
func Make(pattern ...any) Matcher {
	m := Matcher{}
	if len(pattern) > 0 {
		_, m.seriousName = pattern[0].(string)
	}
	for _, p := range pattern {
		m.parts = append(m.parts, toPart(p))
	}
	return m
}

// Result is the outcome of a match.
type Result struct {
	// Bindings of a successful match.
	Bindings Bindings
	// List is set instead of Bindings when the pattern consists of an unnamed
	// repeated part.
	List    []any
	Failed  bool
	Serious bool
	// At is the term where the match failed.
	At *term.Term
}

// Match matches t.
func (m Matcher) Match(t *term.Term) Result {
	r := m.match(t)
	if r.fail {
		return Result{Failed: true, Serious: r.serious, At: r.at}
	}
	switch v := r.value.(type) {
	case Bindings:
		return Result{Bindings: v}
	case []any:
		return Result{Bindings: Bindings{}, List: v}
	}
	return Result{Bindings: Bindings{}}
}

func (m Matcher) match(seq *term.Term) result {
	fail := func(serious bool, at *term.Term) result {
		if at == nil {
			at = seq
		}
		return result{fail: true, serious: serious, at: at}
	}
	if seq == nil {
		return fail(false, nil)
	}
	if len(m.parts) == 0 {
		if seq.Kind != term.Seq || len(seq.Items) > 0 {
			return fail(false, seq)
		}
		return result{value: []any{}}
	}
	if seq.Kind != term.Seq {
		return fail(false, seq)
	}

	var value any = Bindings{}
	store := func(p *Part, from, dir, limit int) result {
		r := p.fn(seq, from, dir, limit)
		if r.fail || !truthy(r.value) {
			return r
		}
		if p.name != "" {
			if b, ok := value.(Bindings); ok {
				b[p.name] = r.value
			}
		} else if sub, ok := r.value.(Bindings); ok {
			if b, ok := value.(Bindings); ok {
				for k, v := range sub {
					b[k] = v
				}
			}
		} else if list, ok := r.value.([]any); ok {
			value = list
		}
		return r
	}

	n := len(seq.Items)
	from := 0
	si := 0
	for ; si < len(m.parts); si++ {
		p := m.parts[si]
		if p.variable {
			break
		}
		r := store(p, from, 1, N)
		if r.fail {
			return fail(r.serious || (si > 0 && m.seriousName), orItem(r.at, seq, from))
		}
		from = r.next
	}

	if si >= len(m.parts) {
		if from < n {
			return fail(si > 0 && m.seriousName, itemAt(seq, from))
		}
		return result{value: value}
	}

	rFrom := n - 1
	if si < len(m.parts)-1 {
		for rsi := len(m.parts) - 1; rsi > si; rsi-- {
			r := store(m.parts[rsi], rFrom, -1, N)
			if r.fail {
				return fail(r.serious || (si > 0 && m.seriousName), orItem(r.at, seq, from))
			}
			rFrom = r.next
		}
		if from > rFrom+1 {
			return fail(si > 0 && m.seriousName, itemAt(seq, rFrom))
		}
	}

	r := store(m.parts[si], from, 1, rFrom+1-from)
	if r.fail {
		return fail(r.serious || (si > 0 && m.seriousName), orItem(r.at, seq, from))
	}
	if r.next < rFrom+1 {
		return fail(si > 0 && m.seriousName, itemAt(seq, r.next))
	}
	return result{value: value}
}

func orItem(at, seq *term.Term, i int) *term.Term {
	if at != nil {
		return at
	}
	if t := itemAt(seq, i); t != nil {
		return t
	}
	return seq
}
