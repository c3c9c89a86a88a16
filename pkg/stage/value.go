package stage

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/term"
)

// Value is a runtime value. It is one of Undefined, Null, bool, float64,
// string and *Object.
type Value any

type undefinedType struct{}
type nullType struct{}

var (
	// Undefined is the undefined value.
	Undefined Value = undefinedType{}
	// Null is the null value.
	Null Value = nullType{}
)

// Object is an object, an array or a function.
type Object struct {
	Class string
	Proto *Object

	props map[string]*prop
	keys  []string

	frozen bool

	// Elems holds the elements of arrays and argument lists.
	Elems []Value

	native  func(in *Interp, this Value, args []Value) Value
	closure *closure
	ctor    bool

	re *jsRegexp

	// term links the object to the term it was made from, so that the
	// identity of hygienic symbols survives a round trip.
	term *term.Term

	// primitive holds the wrapped value of Error messages and similar.
	primitive Value
}

type prop struct {
	v      Value
	hidden bool
}

// NewObject makes an object with the given prototype.
func NewObject(proto *Object) *Object {
	return &Object{Class: "Object", Proto: proto}
}

func (o *Object) isArrayLike() bool {
	return o.Class == "Array" || o.Class == "Arguments"
}

func (o *Object) callable() bool {
	return o.native != nil || o.closure != nil
}

// Own looks up an own property.
func (o *Object) Own(key string) (Value, bool) {
	if o.isArrayLike() {
		if key == "length" {
			return float64(len(o.Elems)), true
		}
		if i, ok := arrayIndex(key); ok {
			if i < len(o.Elems) {
				return o.Elems[i], true
			}
			return nil, false
		}
	}
	if o.term != nil && key == "val" && o.term.Unique != nil {
		if _, set := o.props[key]; !set {
			return o.term.Name(), true
		}
	}
	if p, ok := o.props[key]; ok {
		return p.v, true
	}
	return nil, false
}

// Get looks up a property along the prototype chain. Missing properties
// are Undefined.
func (o *Object) Get(key string) Value {
	for p := o; p != nil; p = p.Proto {
		if v, ok := p.Own(key); ok {
			return v
		}
	}
	return Undefined
}

// Set sets an own property. Writes to frozen objects are ignored.
func (o *Object) Set(key string, v Value) {
	if o.frozen {
		return
	}
	if o.isArrayLike() {
		if key == "length" {
			n := arrayLength(v)
			if n < len(o.Elems) {
				o.Elems = o.Elems[:n]
			}
			for len(o.Elems) < n {
				o.Elems = append(o.Elems, Undefined)
			}
			return
		}
		if i, ok := arrayIndex(key); ok {
			for len(o.Elems) <= i {
				o.Elems = append(o.Elems, Undefined)
			}
			o.Elems[i] = v
			return
		}
	}
	o.setProp(key, v, false)
}

// SetHidden sets a non-enumerable own property.
func (o *Object) SetHidden(key string, v Value) { o.setProp(key, v, true) }

func (o *Object) setProp(key string, v Value, hidden bool) {
	if o.props == nil {
		o.props = map[string]*prop{}
	}
	if p, ok := o.props[key]; ok {
		p.v = v
		return
	}
	o.props[key] = &prop{v, hidden}
	o.keys = append(o.keys, key)
}

// Delete removes an own property.
func (o *Object) Delete(key string) bool {
	if o.frozen {
		return false
	}
	if o.isArrayLike() {
		if i, ok := arrayIndex(key); ok {
			if i < len(o.Elems) {
				o.Elems[i] = Undefined
			}
			return true
		}
	}
	if _, ok := o.props[key]; !ok {
		return true
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the enumerable own keys in JavaScript order: array indices
// first, then the other keys in insertion order.
func (o *Object) Keys() []string {
	var ks []string
	if o.isArrayLike() {
		for i := range o.Elems {
			ks = append(ks, strconv.Itoa(i))
		}
	}
	var idx, rest []string
	for _, k := range o.keys {
		if o.props[k].hidden {
			continue
		}
		if _, ok := arrayIndex(k); ok {
			idx = append(idx, k)
		} else {
			rest = append(rest, k)
		}
	}
	sort.Slice(idx, func(i, j int) bool {
		a, _ := arrayIndex(idx[i])
		b, _ := arrayIndex(idx[j])
		return a < b
	})
	ks = append(ks, idx...)
	return append(ks, rest...)
}

func (o *Object) hasOwn(key string) bool {
	_, ok := o.Own(key)
	return ok
}

// maxArrayLength bounds the length of arrays. Larger indices are plain
// property keys.
const maxArrayLength = 1 << 24

// hostError is panicked by code that has no Interp at hand. The Interp turns
// it into an error object of the class.
type hostError struct{ class, msg string }

// arrayLength converts v to an array length, throwing RangeError if it is not
// one.
func arrayLength(v Value) int {
	n := toNumber(v)
	if !(n >= 0 && n <= maxArrayLength && n == math.Trunc(n)) {
		panic(hostError{"RangeError", "Invalid array length"})
	}
	return int(n)
}

func arrayIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n := 0
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
		if n >= maxArrayLength {
			return 0, false
		}
	}
	return n, true
}

// TypeOf returns the result of the typeof operator.
func TypeOf(v Value) string {
	switch v := v.(type) {
	case undefinedType:
		return "undefined"
	case nullType:
		return "object"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *Object:
		if v.callable() {
			return "function"
		}
	}
	return "object"
}

// Truthy converts a value to a boolean.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case undefinedType, nullType:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	}
	return true
}

func toNumber(v Value) float64 {
	switch v := v.(type) {
	case undefinedType:
		return math.NaN()
	case nullType:
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	case float64:
		return v
	case string:
		return stringToNumber(v)
	case *Object:
		if v.isArrayLike() {
			return stringToNumber(ToString(v))
		}
		if p, ok := v.primitive.(float64); ok {
			return p
		}
	}
	return math.NaN()
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func toInt32(v Value) int32 {
	f := toNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(math.Trunc(f))))
}

func toUint32(v Value) uint32 { return uint32(toInt32(v)) }

// ToString converts a value to a string.
func ToString(v Value) string {
	switch v := v.(type) {
	case undefinedType:
		return "undefined"
	case nullType:
		return "null"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return js.FormatNumber(v)
	case string:
		return v
	case *Object:
		switch {
		case v.isArrayLike():
			parts := make([]string, len(v.Elems))
			for i, e := range v.Elems {
				if e != Undefined && e != Null {
					parts[i] = ToString(e)
				}
			}
			return strings.Join(parts, ",")
		case v.re != nil:
			return "/" + v.re.source + "/" + v.re.flags
		case v.Class == "Error":
			name := ToString(v.Get("name"))
			msg := ToString(v.Get("message"))
			if msg == "" {
				return name
			}
			return name + ": " + msg
		case v.callable():
			return "function () { [code] }"
		}
		if s, ok := v.primitive.(string); ok {
			return s
		}
		if v.term != nil {
			return v.term.Name()
		}
		return "[object Object]"
	}
	return ""
}

// toPrimitive is the default conversion used by + and ==. Functions and
// symbol objects with a toString property are rendered by calling it.
func (in *Interp) toPrimitive(v Value) Value {
	o, ok := v.(*Object)
	if !ok {
		return v
	}
	if p := o.primitive; p != nil {
		return p
	}
	if f, ok := o.Get("toString").(*Object); ok && f.callable() && f != in.objectToString {
		r := in.call(f, o, nil)
		if _, isObj := r.(*Object); !isObj {
			return r
		}
	}
	return ToString(o)
}

func (in *Interp) toStr(v Value) string { return ToString(in.toPrimitive(v)) }

func strictEquals(a, b Value) bool {
	switch a := a.(type) {
	case float64:
		b, ok := b.(float64)
		return ok && a == b
	case *Object:
		b, ok := b.(*Object)
		return ok && a == b
	}
	return a == b
}

func (in *Interp) looseEquals(a, b Value) bool {
	isNullish := func(v Value) bool { return v == Undefined || v == Null }
	switch {
	case isNullish(a) || isNullish(b):
		return isNullish(a) && isNullish(b)
	case isObj(a) && isObj(b):
		return a == b
	case !isObj(a) && !isObj(b) && TypeOf(a) == TypeOf(b):
		return strictEquals(a, b)
	}
	if _, ok := a.(bool); ok {
		return in.looseEquals(toNumber(a), b)
	}
	if _, ok := b.(bool); ok {
		return in.looseEquals(a, toNumber(b))
	}
	if isObj(a) {
		return in.looseEquals(in.toPrimitive(a), b)
	}
	if isObj(b) {
		return in.looseEquals(a, in.toPrimitive(b))
	}
	return toNumber(a) == toNumber(b)
}

func isObj(v Value) bool {
	_, ok := v.(*Object)
	return ok
}
