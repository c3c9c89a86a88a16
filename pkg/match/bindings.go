package match

import "github.com/izreit/sifon/pkg/term"

// Bindings maps part names to matched values. A value is a *term.Term, a
// nested Bindings, or a []any of either.
type Bindings map[string]any

// Has reports whether name is bound to a present value.
func (b Bindings) Has(name string) bool { return truthy(b[name]) }

// Term returns the term bound to name, or nil.
func (b Bindings) Term(name string) *term.Term {
	t, _ := b[name].(*term.Term)
	return t
}

// Sub returns the nested bindings bound to name, or nil.
func (b Bindings) Sub(name string) Bindings {
	s, _ := b[name].(Bindings)
	return s
}

// List returns the repeated values bound to name.
func (b Bindings) List(name string) []any {
	l, _ := b[name].([]any)
	return l
}

// Terms returns the repeated terms bound to name.
func (b Bindings) Terms(name string) []*term.Term {
	var ts []*term.Term
	for _, v := range b.List(name) {
		if t, ok := v.(*term.Term); ok {
			ts = append(ts, t)
		}
	}
	return ts
}
