package stage

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

type nativeFn = func(in *Interp, this Value, args []Value) Value

func arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

func (in *Interp) method(o *Object, name string, f nativeFn) {
	o.SetHidden(name, in.NewNative(name, f))
}

func (in *Interp) setupGlobals() {
	in.ObjectPrototype = &Object{Class: "Object"}
	in.FunctionPrototype = NewObject(in.ObjectPrototype)
	in.FunctionPrototype.Class = "Function"
	in.ArrayPrototype = NewObject(in.ObjectPrototype)
	in.StringPrototype = NewObject(in.ObjectPrototype)
	in.NumberPrototype = NewObject(in.ObjectPrototype)
	in.BooleanPrototype = NewObject(in.ObjectPrototype)
	in.ErrorPrototype = NewObject(in.ObjectPrototype)
	in.RegExpPrototype = NewObject(in.ObjectPrototype)

	g := in.global
	g.Define("undefined", Undefined)
	g.Define("NaN", math.NaN())
	g.Define("Infinity", math.Inf(1))

	in.setupObject()
	in.setupFunction()
	in.setupArray()
	in.setupString()
	in.setupNumber()
	in.setupErrors()
	in.setupRegExp()
	in.setupMath()
	in.setupJSON()

	g.Define("parseInt", in.NewNative("parseInt", func(in *Interp, _ Value, args []Value) Value {
		return parseInt(in.toStr(arg(args, 0)), int(toNumber(arg(args, 1))))
	}))
	g.Define("parseFloat", in.NewNative("parseFloat", func(in *Interp, _ Value, args []Value) Value {
		return parseFloat(in.toStr(arg(args, 0)))
	}))
	g.Define("isNaN", in.NewNative("isNaN", func(in *Interp, _ Value, args []Value) Value {
		return math.IsNaN(toNumber(in.toPrimitive(arg(args, 0))))
	}))
	g.Define("isFinite", in.NewNative("isFinite", func(in *Interp, _ Value, args []Value) Value {
		f := toNumber(in.toPrimitive(arg(args, 0)))
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}))
	console := in.NewPlainObject()
	in.method(console, "log", func(in *Interp, _ Value, args []Value) Value {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = in.toStr(a)
		}
		logger.Println(strings.Join(parts, " "))
		return Undefined
	})
	g.Define("console", console)
}

func (in *Interp) ctor(name string, proto *Object, f nativeFn) *Object {
	c := in.NewNative(name, f)
	c.ctor = true
	c.SetHidden("prototype", proto)
	proto.SetHidden("constructor", c)
	in.global.Define(name, c)
	return c
}

func (in *Interp) setupObject() {
	op := in.ObjectPrototype
	obj := in.ctor("Object", op, func(in *Interp, _ Value, args []Value) Value {
		if o, ok := arg(args, 0).(*Object); ok {
			return o
		}
		return in.NewPlainObject()
	})
	in.method(obj, "create", func(in *Interp, _ Value, args []Value) Value {
		switch p := arg(args, 0).(type) {
		case *Object:
			return NewObject(p)
		case nullType:
			return NewObject(nil)
		}
		in.throwError("TypeError", "Object prototype may only be an Object or null")
		return nil
	})
	in.method(obj, "freeze", func(in *Interp, _ Value, args []Value) Value {
		if o, ok := arg(args, 0).(*Object); ok {
			o.frozen = true
		}
		return arg(args, 0)
	})
	in.method(obj, "isFrozen", func(in *Interp, _ Value, args []Value) Value {
		o, ok := arg(args, 0).(*Object)
		return !ok || o.frozen
	})
	in.method(obj, "keys", func(in *Interp, _ Value, args []Value) Value {
		o := in.toObject(arg(args, 0))
		var elems []Value
		for _, k := range o.Keys() {
			elems = append(elems, k)
		}
		return in.NewArray(elems...)
	})
	in.method(obj, "getPrototypeOf", func(in *Interp, _ Value, args []Value) Value {
		if o := in.toObject(arg(args, 0)); o.Proto != nil {
			return o.Proto
		}
		return Null
	})
	in.method(obj, "defineProperty", func(in *Interp, _ Value, args []Value) Value {
		o := in.toObject(arg(args, 0))
		desc := in.toObject(arg(args, 2))
		key := in.propertyKey(arg(args, 1))
		if Truthy(desc.Get("enumerable")) {
			o.Set(key, desc.Get("value"))
		} else {
			o.SetHidden(key, desc.Get("value"))
		}
		return o
	})

	in.objectToString = in.NewNative("toString", func(in *Interp, this Value, _ []Value) Value {
		switch t := this.(type) {
		case undefinedType:
			return "[object Undefined]"
		case nullType:
			return "[object Null]"
		case *Object:
			return "[object " + t.Class + "]"
		}
		return "[object " + strings.ToUpper(TypeOf(this)[:1]) + TypeOf(this)[1:] + "]"
	})
	op.SetHidden("toString", in.objectToString)
	in.method(op, "hasOwnProperty", func(in *Interp, this Value, args []Value) Value {
		key := in.propertyKey(arg(args, 0))
		if s, ok := this.(string); ok {
			if key == "length" {
				return true
			}
			i, isIdx := arrayIndex(key)
			return isIdx && i < utf8.RuneCountInString(s)
		}
		return in.toObject(this).hasOwn(key)
	})
	in.method(op, "isPrototypeOf", func(in *Interp, this Value, args []Value) Value {
		o, ok := arg(args, 0).(*Object)
		if !ok {
			return false
		}
		for p := o.Proto; p != nil; p = p.Proto {
			if p == this {
				return true
			}
		}
		return false
	})
	in.method(op, "valueOf", func(in *Interp, this Value, _ []Value) Value { return this })
}

func (in *Interp) toObject(v Value) *Object {
	switch v := v.(type) {
	case *Object:
		return v
	case undefinedType, nullType:
		in.throwError("TypeError", "Cannot convert undefined or null to object")
	case string:
		o := &Object{Class: "String", Proto: in.StringPrototype, primitive: v}
		return o
	}
	return &Object{Class: "Object", Proto: in.ObjectPrototype, primitive: v}
}

func (in *Interp) setupFunction() {
	fp := in.FunctionPrototype
	in.ctor("Function", fp, func(in *Interp, _ Value, _ []Value) Value {
		in.throwError("EvalError", "Function constructor is not supported")
		return nil
	})
	in.method(fp, "call", func(in *Interp, this Value, args []Value) Value {
		f := in.toFunction(this)
		var rest []Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return in.call(f, arg(args, 0), rest)
	})
	in.method(fp, "apply", func(in *Interp, this Value, args []Value) Value {
		f := in.toFunction(this)
		return in.call(f, arg(args, 0), in.listOf(arg(args, 1)))
	})
	in.method(fp, "bind", func(in *Interp, this Value, args []Value) Value {
		f := in.toFunction(this)
		bound := arg(args, 0)
		var pre []Value
		if len(args) > 1 {
			pre = append(pre, args[1:]...)
		}
		return in.NewNative("bound", func(in *Interp, _ Value, args []Value) Value {
			return in.call(f, bound, append(append([]Value(nil), pre...), args...))
		})
	})
}

func (in *Interp) toFunction(v Value) *Object {
	f, ok := v.(*Object)
	if !ok || !f.callable() {
		in.throwError("TypeError", ToString(v)+" is not a function")
	}
	return f
}

// listOf converts an array-like value to a slice of values.
func (in *Interp) listOf(v Value) []Value {
	switch v := v.(type) {
	case undefinedType, nullType:
		return nil
	case *Object:
		if v.isArrayLike() {
			return v.Elems
		}
		n := math.Trunc(toNumber(v.Get("length")))
		if !(n > 0) {
			n = 0
		}
		l := make([]Value, arrayLength(n))
		for i := range l {
			l[i] = v.Get(strconv.Itoa(i))
		}
		return l
	}
	in.throwError("TypeError", "Function.prototype.apply was called on a non-object")
	return nil
}

// elemsOf returns the elements of the array-like this, or fails.
func (in *Interp) elemsOf(this Value) *Object {
	o, ok := this.(*Object)
	if !ok || !o.isArrayLike() {
		in.throwError("TypeError", "Array.prototype method called on a non-array")
	}
	return o
}

func relIndex(v Value, n int, def int) int {
	if v == Undefined {
		return def
	}
	f := toNumber(v)
	if math.IsNaN(f) {
		return 0
	}
	i := int(f)
	if i < 0 {
		i += n
		if i < 0 {
			i = 0
		}
	}
	if i > n {
		i = n
	}
	return i
}

func (in *Interp) setupArray() {
	ap := in.ArrayPrototype
	arr := in.ctor("Array", ap, func(in *Interp, _ Value, args []Value) Value {
		if len(args) == 1 {
			if n, ok := args[0].(float64); ok {
				elems := make([]Value, arrayLength(n))
				for i := range elems {
					elems[i] = Undefined
				}
				return in.NewArray(elems...)
			}
		}
		return in.NewArray(append([]Value(nil), args...)...)
	})
	in.method(arr, "isArray", func(in *Interp, _ Value, args []Value) Value {
		o, ok := arg(args, 0).(*Object)
		return ok && o.Class == "Array"
	})

	in.method(ap, "push", func(in *Interp, this Value, args []Value) Value {
		o := in.elemsOf(this)
		if !o.frozen {
			o.Elems = append(o.Elems, args...)
		}
		return float64(len(o.Elems))
	})
	in.method(ap, "pop", func(in *Interp, this Value, _ []Value) Value {
		o := in.elemsOf(this)
		if len(o.Elems) == 0 || o.frozen {
			return Undefined
		}
		v := o.Elems[len(o.Elems)-1]
		o.Elems = o.Elems[:len(o.Elems)-1]
		return v
	})
	in.method(ap, "shift", func(in *Interp, this Value, _ []Value) Value {
		o := in.elemsOf(this)
		if len(o.Elems) == 0 || o.frozen {
			return Undefined
		}
		v := o.Elems[0]
		o.Elems = append([]Value(nil), o.Elems[1:]...)
		return v
	})
	in.method(ap, "unshift", func(in *Interp, this Value, args []Value) Value {
		o := in.elemsOf(this)
		if !o.frozen {
			o.Elems = append(append([]Value(nil), args...), o.Elems...)
		}
		return float64(len(o.Elems))
	})
	in.method(ap, "slice", func(in *Interp, this Value, args []Value) Value {
		o := in.elemsOf(this)
		n := len(o.Elems)
		from, to := relIndex(arg(args, 0), n, 0), relIndex(arg(args, 1), n, n)
		if from > to {
			from = to
		}
		return in.NewArray(append([]Value(nil), o.Elems[from:to]...)...)
	})
	in.method(ap, "splice", func(in *Interp, this Value, args []Value) Value {
		o := in.elemsOf(this)
		n := len(o.Elems)
		start := relIndex(arg(args, 0), n, 0)
		count := n - start
		if len(args) > 1 {
			count = min(max(int(toNumber(args[1])), 0), n-start)
		}
		removed := append([]Value(nil), o.Elems[start:start+count]...)
		var ins []Value
		if len(args) > 2 {
			ins = args[2:]
		}
		rest := append(append([]Value(nil), ins...), o.Elems[start+count:]...)
		o.Elems = append(o.Elems[:start], rest...)
		return in.NewArray(removed...)
	})
	in.method(ap, "concat", func(in *Interp, this Value, args []Value) Value {
		o := in.elemsOf(this)
		elems := append([]Value(nil), o.Elems...)
		for _, a := range args {
			if ao, ok := a.(*Object); ok && ao.Class == "Array" {
				elems = append(elems, ao.Elems...)
			} else {
				elems = append(elems, a)
			}
		}
		return in.NewArray(elems...)
	})
	in.method(ap, "join", func(in *Interp, this Value, args []Value) Value {
		o := in.elemsOf(this)
		sep := ","
		if s := arg(args, 0); s != Undefined {
			sep = in.toStr(s)
		}
		parts := make([]string, len(o.Elems))
		for i, e := range o.Elems {
			if e != Undefined && e != Null {
				parts[i] = in.toStr(e)
			}
		}
		return strings.Join(parts, sep)
	})
	in.method(ap, "toString", func(in *Interp, this Value, _ []Value) Value {
		return in.call(in.ArrayPrototype.Get("join").(*Object), this, nil)
	})
	in.method(ap, "indexOf", func(in *Interp, this Value, args []Value) Value {
		o := in.elemsOf(this)
		for i := relIndex(arg(args, 1), len(o.Elems), 0); i < len(o.Elems); i++ {
			if strictEquals(o.Elems[i], arg(args, 0)) {
				return float64(i)
			}
		}
		return -1.0
	})
	in.method(ap, "lastIndexOf", func(in *Interp, this Value, args []Value) Value {
		o := in.elemsOf(this)
		for i := len(o.Elems) - 1; i >= 0; i-- {
			if strictEquals(o.Elems[i], arg(args, 0)) {
				return float64(i)
			}
		}
		return -1.0
	})
	in.method(ap, "reverse", func(in *Interp, this Value, _ []Value) Value {
		o := in.elemsOf(this)
		for i, j := 0, len(o.Elems)-1; i < j; i, j = i+1, j-1 {
			o.Elems[i], o.Elems[j] = o.Elems[j], o.Elems[i]
		}
		return o
	})
	in.method(ap, "sort", func(in *Interp, this Value, args []Value) Value {
		o := in.elemsOf(this)
		cmp, hasCmp := arg(args, 0).(*Object)
		sort.SliceStable(o.Elems, func(i, j int) bool {
			a, b := o.Elems[i], o.Elems[j]
			if hasCmp {
				return toNumber(in.call(cmp, Undefined, []Value{a, b})) < 0
			}
			return in.toStr(a) < in.toStr(b)
		})
		return o
	})
	iter := func(name string, f func(o *Object, results []Value) Value, stop func(r Value) bool) {
		in.method(ap, name, func(in *Interp, this Value, args []Value) Value {
			o := in.elemsOf(this)
			fn := in.toFunction(arg(args, 0))
			var results []Value
			for i := 0; i < len(o.Elems); i++ {
				r := in.call(fn, arg(args, 1), []Value{o.Elems[i], float64(i), o})
				results = append(results, r)
				if stop != nil && stop(r) {
					break
				}
			}
			return f(o, results)
		})
	}
	iter("forEach", func(*Object, []Value) Value { return Undefined }, nil)
	iter("map", func(_ *Object, rs []Value) Value { return in.NewArray(rs...) }, nil)
	iter("filter", func(o *Object, rs []Value) Value {
		var kept []Value
		for i, r := range rs {
			if Truthy(r) {
				kept = append(kept, o.Elems[i])
			}
		}
		return in.NewArray(kept...)
	}, nil)
	iter("some", func(_ *Object, rs []Value) Value {
		return len(rs) > 0 && Truthy(rs[len(rs)-1])
	}, Truthy)
	iter("every", func(_ *Object, rs []Value) Value {
		return len(rs) == 0 || Truthy(rs[len(rs)-1])
	}, func(r Value) bool { return !Truthy(r) })
	in.method(ap, "reduce", func(in *Interp, this Value, args []Value) Value {
		o := in.elemsOf(this)
		fn := in.toFunction(arg(args, 0))
		i := 0
		var acc Value
		if len(args) > 1 {
			acc = args[1]
		} else {
			if len(o.Elems) == 0 {
				in.throwError("TypeError", "Reduce of empty array with no initial value")
			}
			acc, i = o.Elems[0], 1
		}
		for ; i < len(o.Elems); i++ {
			acc = in.call(fn, Undefined, []Value{acc, o.Elems[i], float64(i), o})
		}
		return acc
	})
}

func (in *Interp) thisString(this Value) string {
	if this == Undefined || this == Null {
		in.throwError("TypeError", "String.prototype method called on null or undefined")
	}
	return in.toStr(this)
}

func (in *Interp) setupString() {
	sp := in.StringPrototype
	str := in.ctor("String", sp, func(in *Interp, _ Value, args []Value) Value {
		if len(args) == 0 {
			return ""
		}
		return in.toStr(args[0])
	})
	in.method(str, "fromCharCode", func(in *Interp, _ Value, args []Value) Value {
		var sb strings.Builder
		for _, a := range args {
			sb.WriteRune(rune(toUint32(a) & 0xffff))
		}
		return sb.String()
	})
	runes := func(this Value) []rune { return []rune(in.thisString(this)) }
	in.method(sp, "toString", func(in *Interp, this Value, _ []Value) Value { return in.thisString(this) })
	in.method(sp, "charAt", func(in *Interp, this Value, args []Value) Value {
		rs := runes(this)
		i := int(toNumber(arg(args, 0)))
		if i < 0 || i >= len(rs) {
			return ""
		}
		return string(rs[i])
	})
	in.method(sp, "charCodeAt", func(in *Interp, this Value, args []Value) Value {
		rs := runes(this)
		i := int(toNumber(arg(args, 0)))
		if i < 0 || i >= len(rs) {
			return math.NaN()
		}
		return float64(rs[i])
	})
	in.method(sp, "indexOf", func(in *Interp, this Value, args []Value) Value {
		s := in.thisString(this)
		from := byteIndex(s, relIndex(arg(args, 1), utf8.RuneCountInString(s), 0))
		i := strings.Index(s[from:], in.toStr(arg(args, 0)))
		if i < 0 {
			return -1.0
		}
		return float64(runeIndex(s, from+i))
	})
	in.method(sp, "lastIndexOf", func(in *Interp, this Value, args []Value) Value {
		s := in.thisString(this)
		i := strings.LastIndex(s, in.toStr(arg(args, 0)))
		if i < 0 {
			return -1.0
		}
		return float64(runeIndex(s, i))
	})
	in.method(sp, "slice", func(in *Interp, this Value, args []Value) Value {
		rs := runes(this)
		from, to := relIndex(arg(args, 0), len(rs), 0), relIndex(arg(args, 1), len(rs), len(rs))
		if from >= to {
			return ""
		}
		return string(rs[from:to])
	})
	in.method(sp, "substring", func(in *Interp, this Value, args []Value) Value {
		rs := runes(this)
		clamp := func(v Value, def int) int {
			if v == Undefined {
				return def
			}
			f := toNumber(v)
			if math.IsNaN(f) || f < 0 {
				return 0
			}
			return min(int(f), len(rs))
		}
		from, to := clamp(arg(args, 0), 0), clamp(arg(args, 1), len(rs))
		if from > to {
			from, to = to, from
		}
		return string(rs[from:to])
	})
	in.method(sp, "substr", func(in *Interp, this Value, args []Value) Value {
		rs := runes(this)
		from := relIndex(arg(args, 0), len(rs), 0)
		n := len(rs) - from
		if l := arg(args, 1); l != Undefined {
			n = min(max(int(toNumber(l)), 0), n)
		}
		return string(rs[from : from+n])
	})
	in.method(sp, "toUpperCase", func(in *Interp, this Value, _ []Value) Value {
		return strings.ToUpper(in.thisString(this))
	})
	in.method(sp, "toLowerCase", func(in *Interp, this Value, _ []Value) Value {
		return strings.ToLower(in.thisString(this))
	})
	in.method(sp, "trim", func(in *Interp, this Value, _ []Value) Value {
		return strings.TrimSpace(in.thisString(this))
	})
	in.method(sp, "concat", func(in *Interp, this Value, args []Value) Value {
		s := in.thisString(this)
		for _, a := range args {
			s += in.toStr(a)
		}
		return s
	})
	in.method(sp, "split", func(in *Interp, this Value, args []Value) Value {
		limit := -1
		if l := arg(args, 1); l != Undefined {
			limit = int(toUint32(l))
		}
		return in.stringSplit(in.thisString(this), arg(args, 0), limit)
	})
	in.method(sp, "replace", func(in *Interp, this Value, args []Value) Value {
		return in.stringReplace(in.thisString(this), arg(args, 0), arg(args, 1))
	})
	in.method(sp, "match", func(in *Interp, this Value, args []Value) Value {
		return in.stringMatch(in.thisString(this), arg(args, 0))
	})
	in.method(sp, "search", func(in *Interp, this Value, args []Value) Value {
		s := in.thisString(this)
		re, ok := arg(args, 0).(*Object)
		if !ok || re.re == nil {
			re = in.newRegExp(in.toStr(arg(args, 0)), "")
		}
		loc := re.re.re.FindStringIndex(s)
		if loc == nil {
			return -1.0
		}
		return float64(runeIndex(s, loc[0]))
	})
}

func (in *Interp) setupNumber() {
	np := in.NumberPrototype
	num := in.ctor("Number", np, func(in *Interp, _ Value, args []Value) Value {
		if len(args) == 0 {
			return 0.0
		}
		return toNumber(in.toPrimitive(args[0]))
	})
	num.SetHidden("MAX_VALUE", math.MaxFloat64)
	num.SetHidden("MIN_VALUE", 5e-324)
	in.method(np, "toString", func(in *Interp, this Value, args []Value) Value {
		f := toNumber(this)
		radix := 10.0
		if r := arg(args, 0); r != Undefined {
			radix = math.Trunc(toNumber(r))
		}
		if !(radix >= 2 && radix <= 36) {
			in.throwError("RangeError", "toString() radix must be between 2 and 36")
		}
		if radix == 10 || math.IsNaN(f) || math.IsInf(f, 0) {
			return ToString(f)
		}
		return strconv.FormatInt(int64(f), int(radix))
	})
	in.method(np, "toFixed", func(in *Interp, this Value, args []Value) Value {
		digits := 0.0
		if d := toNumber(arg(args, 0)); !math.IsNaN(d) {
			digits = math.Trunc(d)
		}
		if !(digits >= 0 && digits <= 100) {
			in.throwError("RangeError", "toFixed() digits argument must be between 0 and 100")
		}
		return strconv.FormatFloat(toNumber(this), 'f', int(digits), 64)
	})
	in.method(np, "valueOf", func(in *Interp, this Value, _ []Value) Value { return toNumber(this) })

	bp := in.BooleanPrototype
	in.ctor("Boolean", bp, func(in *Interp, _ Value, args []Value) Value {
		return Truthy(arg(args, 0))
	})
	in.method(bp, "toString", func(in *Interp, this Value, _ []Value) Value { return ToString(this) })
}

func (in *Interp) setupErrors() {
	ep := in.ErrorPrototype
	ep.SetHidden("name", "Error")
	ep.SetHidden("message", "")
	in.method(ep, "toString", func(in *Interp, this Value, _ []Value) Value {
		return ToString(this)
	})
	mk := func(name string, proto *Object) {
		in.ctor(name, proto, func(in *Interp, this Value, args []Value) Value {
			o := &Object{Class: "Error", Proto: proto}
			if m := arg(args, 0); m != Undefined {
				o.SetHidden("message", in.toStr(m))
			}
			return o
		})
	}
	mk("Error", ep)
	for _, name := range []string{"TypeError", "RangeError", "SyntaxError", "ReferenceError", "EvalError"} {
		proto := NewObject(ep)
		proto.SetHidden("name", name)
		mk(name, proto)
	}
}

func (in *Interp) setupRegExp() {
	rp := in.RegExpPrototype
	in.ctor("RegExp", rp, func(in *Interp, _ Value, args []Value) Value {
		if o, ok := arg(args, 0).(*Object); ok && o.re != nil {
			return in.newRegExp(o.re.source, o.re.flags)
		}
		flags := ""
		if f := arg(args, 1); f != Undefined {
			flags = in.toStr(f)
		}
		return in.newRegExp(in.toStr(arg(args, 0)), flags)
	})
	thisRe := func(this Value) *Object {
		o, ok := this.(*Object)
		if !ok || o.re == nil {
			in.throwError("TypeError", "RegExp method called on incompatible receiver")
		}
		return o
	}
	in.method(rp, "exec", func(in *Interp, this Value, args []Value) Value {
		return in.regexpExec(thisRe(this), in.toStr(arg(args, 0)))
	})
	in.method(rp, "test", func(in *Interp, this Value, args []Value) Value {
		return in.regexpExec(thisRe(this), in.toStr(arg(args, 0))) != Null
	})
	in.method(rp, "toString", func(in *Interp, this Value, _ []Value) Value {
		return ToString(thisRe(this))
	})
}

func (in *Interp) setupMath() {
	m := in.NewPlainObject()
	in.global.Define("Math", m)
	m.SetHidden("PI", math.Pi)
	m.SetHidden("E", math.E)
	unary := map[string]func(float64) float64{
		"floor": math.Floor, "ceil": math.Ceil, "abs": math.Abs, "sqrt": math.Sqrt,
		"log": math.Log, "exp": math.Exp, "sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
		"round": func(f float64) float64 { return math.Floor(f + 0.5) },
	}
	for name, f := range unary {
		f := f
		in.method(m, name, func(in *Interp, _ Value, args []Value) Value {
			return f(toNumber(arg(args, 0)))
		})
	}
	in.method(m, "pow", func(in *Interp, _ Value, args []Value) Value {
		return math.Pow(toNumber(arg(args, 0)), toNumber(arg(args, 1)))
	})
	in.method(m, "random", func(*Interp, Value, []Value) Value { return rand.Float64() })
	extreme := func(name string, init float64, better func(a, b float64) bool) {
		in.method(m, name, func(in *Interp, _ Value, args []Value) Value {
			r := init
			for _, a := range args {
				f := toNumber(a)
				if math.IsNaN(f) {
					return f
				}
				if better(f, r) {
					r = f
				}
			}
			return r
		})
	}
	extreme("max", math.Inf(-1), func(a, b float64) bool { return a > b })
	extreme("min", math.Inf(1), func(a, b float64) bool { return a < b })
}

func parseInt(s string, radix int) Value {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if (radix == 0 || radix == 16) && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s, radix = s[2:], 16
	}
	if radix == 0 {
		radix = 10
	}
	end := 0
	for end < len(s) {
		d, err := strconv.ParseInt(s[end:end+1], radix, 64)
		if err != nil || d >= int64(radix) {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		f, _ := strconv.ParseFloat(s[:end], 64)
		n = int64(f)
	}
	if neg {
		n = -n
	}
	return float64(n)
}

func parseFloat(s string) Value {
	s = strings.TrimSpace(s)
	end := 0
	seenDot, seenExp := false, false
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
		case (c == '+' || c == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && !seenExp && end > 0:
			seenExp = true
		default:
			goto done
		}
		end++
	}
done:
	for end > 0 {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return f
		}
		end--
	}
	if strings.HasPrefix(s, "Infinity") {
		return math.Inf(1)
	}
	return math.NaN()
}
