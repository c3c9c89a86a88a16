package stage

import (
	"fmt"

	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/term"
)

// Terms are represented the way the generated code for quote builds them:
// a sequence is an array with the properties nodetype ("ARRAY"), line, col
// and filename; other terms are objects with nodetype, val, line, col and
// filename. A number or string term keeps its source text in val, and a
// regular expression keeps an object with body and flags.

func (in *Interp) nodeProto() *Object {
	if in.symbolProto == nil {
		in.symbolProto = NewObject(in.ObjectPrototype)
		in.method(in.symbolProto, "toString", func(in *Interp, this Value, _ []Value) Value {
			return ToString(in.getProp(this, "val"))
		})
	}
	return in.symbolProto
}

func setPos(o *Object, p term.Pos) {
	o.SetHidden("line", float64(p.Line))
	o.SetHidden("col", float64(p.Col))
	if p.File != "" {
		o.SetHidden("filename", p.File)
	}
}

// FromTerm converts a term to a value.
func (in *Interp) FromTerm(t *term.Term) Value {
	if t == nil {
		return Undefined
	}
	if t.Kind == term.Seq {
		elems := make([]Value, len(t.Items))
		for i, item := range t.Items {
			elems[i] = in.FromTerm(item)
		}
		a := in.NewArray(elems...)
		a.SetHidden("nodetype", t.Kind.String())
		setPos(a, t.Pos)
		return a
	}
	o := NewObject(in.nodeProto())
	o.term = t
	o.Set("nodetype", t.Kind.String())
	switch {
	case t.Kind == term.Regexp:
		re := in.NewPlainObject()
		re.Set("body", t.Val)
		re.Set("flags", t.Flags)
		o.Set("val", re)
	case t.Unique == nil:
		o.Set("val", t.Val)
	}
	setPos(o, t.Pos)
	return o
}

// FromTerms converts terms to values.
func (in *Interp) FromTerms(ts []*term.Term) []Value {
	vs := make([]Value, len(ts))
	for i, t := range ts {
		vs[i] = in.FromTerm(t)
	}
	return vs
}

func posOf(o *Object) term.Pos {
	p := term.NoPos
	if l, ok := o.Get("line").(float64); ok {
		p.Line = int(l)
	}
	if c, ok := o.Get("col").(float64); ok {
		p.Col = int(c)
	}
	if f, ok := o.Get("filename").(string); ok {
		p.File = f
	}
	return p
}

// ToTerm converts a value to a term. Arrays become sequences, strings
// and numbers become string and number terms, and booleans and null become
// symbols. Undefined yields nil, and is dropped from sequences.
func (in *Interp) ToTerm(v Value) (*term.Term, error) {
	switch v := v.(type) {
	case undefinedType:
		return nil, nil
	case nullType:
		return term.S("null"), nil
	case bool:
		return term.S(ToString(v)), nil
	case float64:
		return term.NewNum(js.FormatNumber(v), term.NoPos), nil
	case string:
		return term.NewStr(v, term.NoPos), nil
	case *Object:
		if v.Class == "Array" {
			items := make([]*term.Term, 0, len(v.Elems))
			for _, e := range v.Elems {
				t, err := in.ToTerm(e)
				if err != nil {
					return nil, err
				}
				if t != nil {
					items = append(items, t)
				}
			}
			return term.NewSeq(posOf(v), items...), nil
		}
		return in.nodeToTerm(v)
	}
	return nil, fmt.Errorf("cannot convert %v to a term", v)
}

func (in *Interp) nodeToTerm(o *Object) (*term.Term, error) {
	nt, _ := o.Get("nodetype").(string)
	if o.term != nil && o.term.Unique != nil {
		if _, overridden := o.props["val"]; !overridden {
			return o.term, nil
		}
	}
	p := posOf(o)
	val := o.Get("val")
	switch nt {
	case "SYMBOL":
		if o.term != nil && o.term.Kind == term.Sym && val == o.term.Val && p == o.term.Pos {
			return o.term, nil
		}
		return term.NewSym(in.toStr(val), p), nil
	case "NUM":
		return term.NewNum(in.toStr(val), p), nil
	case "STR":
		return term.NewStrLiteral(in.toStr(val), p), nil
	case "REGEXP":
		if re, ok := val.(*Object); ok {
			return term.NewRegexp(in.toStr(re.Get("body")), in.toStr(re.Get("flags")), p), nil
		}
	}
	return nil, fmt.Errorf("cannot convert %s to a term", in.toStr(o))
}
