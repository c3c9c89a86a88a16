// Package reduce implements an optional constant-folding pass over expanded
// terms.
package reduce

import (
	"math"
	"strconv"

	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/logutil"
	"github.com/izreit/sifon/pkg/match"
	"github.com/izreit/sifon/pkg/term"
)

var logger = logutil.GetLogger("[reduce] ")

// The negated forms of the equality operators.
var negated = map[string]string{
	"==":   "!=",
	"!=":   "==",
	"js==": "js!=",
	"js!=": "js==",
}

var negation = match.Make(match.O("head", "!", "not"), match.O("negatee"))

// Reduce returns t with its foldable subterms folded. It never modifies t.
func Reduce(t *term.Term) *term.Term {
	if !t.IsSeq() || len(t.Items) == 0 || t.Head().Is("<<quote>>") {
		return t
	}
	items := make([]*term.Term, len(t.Items))
	changed := false
	for i, it := range t.Items {
		items[i] = Reduce(it)
		changed = changed || items[i] != it
	}
	if changed {
		t = t.With(items...)
	}

	head := t.Head()
	switch {
	case head.Is("+") || head.Is("-") || head.Is("*") || head.Is("/"):
		return arith(t)
	}
	if r := negation.Match(t); !r.Failed {
		return negate(t, r.Bindings.Term("negatee"))
	}
	return t
}

// All reduces each of ts.
func All(ts []*term.Term) []*term.Term {
	ret := make([]*term.Term, len(ts))
	for i, t := range ts {
		ret[i] = Reduce(t)
	}
	return ret
}

func negate(t, negatee *term.Term) *term.Term {
	if h := negatee.Head(); h != nil && h.Unique == nil && len(negatee.Items) > 2 {
		if op, ok := negated[h.Val]; ok {
			logger.Printf("%v: negating %s", t.Pos, h.Val)
			return negatee.With(append([]*term.Term{term.NewSym(op, h.Pos)}, negatee.Items[1:]...)...)
		}
	}
	if v, ok := valueOf(negatee); ok {
		return term.NewSym(strconv.FormatBool(!v.truthy()), t.Pos)
	}
	return t
}

// arith folds the operands of an arithmetic form from the left for as long
// as they are known and the result stays an integer.
func arith(t *term.Term) *term.Term {
	op := t.Head().Val
	operands := t.Rest()
	if len(operands) < 2 {
		return t
	}
	acc, ok := valueOf(operands[0])
	if !ok {
		return t
	}
	n := 1
	for ; n < len(operands); n++ {
		v, ok := valueOf(operands[n])
		if !ok {
			break
		}
		folded, ok := apply(op, acc, v)
		if !ok {
			break
		}
		acc = folded
	}
	if n == 1 {
		return t
	}
	logger.Printf("%v: folded %d operands of %s", t.Pos, n, op)
	lit := acc.term(operands[0].Pos)
	if n == len(operands) {
		return lit
	}
	return t.With(append([]*term.Term{t.Head(), lit}, operands[n:]...)...)
}

type value struct {
	isStr bool
	num   float64
	str   string
	sym   string // true, false or null
}

func valueOf(t *term.Term) (value, bool) {
	switch {
	case t == nil:
		return value{}, false
	case t.Kind == term.Num:
		f, ok := parseNumber(t.Val)
		return value{num: f}, ok
	case t.Kind == term.Str:
		return value{isStr: true, str: term.Unliteralize(t.Val)}, true
	case t.Is("true") || t.Is("false") || t.Is("null"):
		return value{sym: t.Val}, true
	}
	return value{}, false
}

func parseNumber(s string) (float64, bool) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(i), true
	}
	return 0, false
}

func (v value) truthy() bool {
	switch {
	case v.isStr:
		return v.str != ""
	case v.sym != "":
		return v.sym == "true"
	}
	return v.num != 0 && !math.IsNaN(v.num)
}

func (v value) term(p term.Pos) *term.Term {
	if v.isStr {
		return term.NewStr(v.str, p)
	}
	return term.NewNum(js.FormatNumber(v.num), p)
}

// apply computes l op r. Only numbers and strings take part; a numeric
// result must be an integer.
func apply(op string, l, r value) (value, bool) {
	if l.sym != "" || r.sym != "" {
		return value{}, false
	}
	if l.isStr || r.isStr {
		if op != "+" {
			return value{}, false
		}
		return value{isStr: true, str: l.toString() + r.toString()}, true
	}
	var f float64
	switch op {
	case "+":
		f = l.num + r.num
	case "-":
		f = l.num - r.num
	case "*":
		f = l.num * r.num
	case "/":
		if r.num == 0 {
			return value{}, false
		}
		f = l.num / r.num
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) >= 1<<53 {
		return value{}, false
	}
	return value{num: f}, true
}

func (v value) toString() string {
	if v.isStr {
		return v.str
	}
	return js.FormatNumber(v.num)
}
