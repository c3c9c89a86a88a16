// Package stage runs the JavaScript code that macro definitions and meta
// forms compile to, while the compilation is still going on.
//
// The interpreter walks js.Node trees directly. Lexical environments are
// chains of Ns values; the compiler keeps one Ns per source scope so that
// compile-time variables declared in a scope are visible to the scopes
// nested in it and nowhere else.
package stage

import (
	"fmt"
	"math"
	"runtime"
	"strconv"

	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/logutil"
	"github.com/izreit/sifon/pkg/term"
)

var logger = logutil.GetLogger("[stage] ")

// MaxCallDepth bounds the nesting of function calls.
const MaxCallDepth = 2000

// Thrown is the error returned when evaluated code throws.
type Thrown struct {
	Value Value
}

func (t *Thrown) Error() string {
	if o, ok := t.Value.(*Object); ok && o.Class != "Error" {
		if m, ok := o.Own("message"); ok {
			return ToString(m)
		}
	}
	return ToString(t.Value)
}

// Ns is a lexical environment.
type Ns struct {
	vars   map[string]Value
	parent *Ns
}

// NewNs makes an environment nested in parent.
func NewNs(parent *Ns) *Ns {
	return &Ns{vars: map[string]Value{}, parent: parent}
}

// Parent returns the enclosing environment.
func (ns *Ns) Parent() *Ns { return ns.parent }

// Declare declares a variable in ns unless it is already declared there.
func (ns *Ns) Declare(name string) {
	if _, ok := ns.vars[name]; !ok {
		ns.vars[name] = Undefined
	}
}

// Define declares a variable in ns and sets its value.
func (ns *Ns) Define(name string, v Value) { ns.vars[name] = v }

// Lookup finds a variable along the chain.
func (ns *Ns) Lookup(name string) (Value, bool) {
	if owner := ns.owner(name); owner != nil {
		return owner.vars[name], true
	}
	return nil, false
}

func (ns *Ns) owner(name string) *Ns {
	for n := ns; n != nil; n = n.parent {
		if _, ok := n.vars[name]; ok {
			return n
		}
	}
	return nil
}

func (ns *Ns) root() *Ns {
	n := ns
	for n.parent != nil {
		n = n.parent
	}
	return n
}

type closure struct {
	fn *js.Node
	ns *Ns
}

type env struct {
	ns   *Ns
	this Value
}

type ctlType uint8

const (
	ctlNormal ctlType = iota
	ctlBreak
	ctlContinue
	ctlReturn
)

// completion is the result of executing a statement. A nil val means the
// statement produced no value.
type completion struct {
	typ   ctlType
	val   Value
	label string
}

// Interp is an interpreter with its own set of global objects.
type Interp struct {
	global *Ns
	depth  int

	ObjectPrototype   *Object
	FunctionPrototype *Object
	ArrayPrototype    *Object
	StringPrototype   *Object
	NumberPrototype   *Object
	BooleanPrototype  *Object
	ErrorPrototype    *Object
	RegExpPrototype   *Object

	objectToString *Object
	symbolProto    *Object
}

// New makes an interpreter with the standard global objects.
func New() *Interp {
	in := &Interp{global: NewNs(nil)}
	in.setupGlobals()
	return in
}

// Global returns the global environment.
func (in *Interp) Global() *Ns { return in.global }

// Run executes a program in ns and returns its completion value. Variables
// declared by the program are declared in ns.
func (in *Interp) Run(ns *Ns, prog *js.Node) (v Value, err error) {
	defer in.catch(&err)
	hoist(prog, ns)
	c := in.exec(prog, &env{ns: ns, this: Undefined})
	switch {
	case c.typ == ctlReturn:
		return c.val, nil
	case c.val == nil:
		return Undefined, nil
	}
	return c.val, nil
}

// Eval evaluates an expression in ns.
func (in *Interp) Eval(ns *Ns, expr *js.Node) (v Value, err error) {
	defer in.catch(&err)
	return in.eval(expr, &env{ns: ns, this: Undefined}), nil
}

// Call calls a function value.
func (in *Interp) Call(f, this Value, args ...Value) (v Value, err error) {
	defer in.catch(&err)
	fo, ok := f.(*Object)
	if !ok || !fo.callable() {
		in.throwError("TypeError", ToString(f)+" is not a function")
	}
	return in.call(fo, this, args), nil
}

func (in *Interp) catch(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if se, ok := r.(*js.StructuralError); ok {
		*err = se
		return
	}
	t := in.thrown(r)
	if t == nil {
		panic(r)
	}
	logger.Println("uncaught:", logutil.Lazy(t.Error))
	*err = t
}

// thrown converts a recovered panic into the exception evaluated code sees.
// It returns nil for panics that are not exceptions.
func (in *Interp) thrown(r any) *Thrown {
	switch r := r.(type) {
	case *Thrown:
		return r
	case hostError:
		return &Thrown{Value: in.NewError(r.class, r.msg)}
	case runtime.Error:
		logger.Println("runtime error in evaluated code:", r)
		return &Thrown{Value: in.NewError("Error", "internal error: "+r.Error())}
	}
	return nil
}

// Throw makes evaluated code throw v. It may only be called from native
// functions.
func Throw(v Value) { panic(&Thrown{Value: v}) }

func (in *Interp) throwError(class, msg string) {
	Throw(in.NewError(class, msg))
}

// NewError makes an error object of the named class (Error, TypeError and
// so on).
func (in *Interp) NewError(class, msg string) *Object {
	o := &Object{Class: "Error", Proto: in.ErrorPrototype}
	o.SetHidden("name", class)
	o.SetHidden("message", msg)
	return o
}

// NewArray makes an array.
func (in *Interp) NewArray(elems ...Value) *Object {
	if elems == nil {
		elems = []Value{}
	}
	return &Object{Class: "Array", Proto: in.ArrayPrototype, Elems: elems}
}

// NewPlainObject makes an object inheriting from Object.prototype.
func (in *Interp) NewPlainObject() *Object { return NewObject(in.ObjectPrototype) }

// NewNative wraps a Go function as a function value.
func (in *Interp) NewNative(name string, f func(in *Interp, this Value, args []Value) Value) *Object {
	o := &Object{Class: "Function", Proto: in.FunctionPrototype, native: f}
	o.SetHidden("name", name)
	return o
}

func (in *Interp) newClosure(fn *js.Node, ns *Ns) *Object {
	o := &Object{Class: "Function", Proto: in.FunctionPrototype, closure: &closure{fn, ns}}
	proto := in.NewPlainObject()
	proto.SetHidden("constructor", o)
	o.SetHidden("prototype", proto)
	if name := fn.Children[0]; name != nil {
		o.SetHidden("name", name.Leaf.Name())
	}
	return o
}

func (in *Interp) call(f *Object, this Value, args []Value) Value {
	if in.depth >= MaxCallDepth {
		in.throwError("RangeError", "Maximum call stack size exceeded")
	}
	in.depth++
	defer func() { in.depth-- }()

	if f.native != nil {
		return f.native(in, this, args)
	}
	fn := f.closure.fn
	ns := f.closure.ns
	if name := fn.Children[0]; name != nil {
		ns = NewNs(ns)
		ns.Define(name.Leaf.Name(), f)
	}
	ns = NewNs(ns)
	argsObj := &Object{Class: "Arguments", Proto: in.ObjectPrototype, Elems: append([]Value(nil), args...)}
	ns.Define("arguments", argsObj)
	if params := fn.Children[1]; params != nil {
		for i, p := range params.Children {
			var v Value = Undefined
			if i < len(args) {
				v = args[i]
			}
			ns.Define(p.Leaf.Name(), v)
		}
	}
	body := fn.Children[2]
	hoist(body, ns)
	c := in.exec(body, &env{ns: ns, this: this})
	if c.typ == ctlReturn {
		return c.val
	}
	return Undefined
}

func (in *Interp) construct(f *Object, args []Value) Value {
	if !f.callable() {
		in.throwError("TypeError", "not a constructor")
	}
	if f.native != nil {
		return f.native(in, nil, args)
	}
	proto, ok := f.Get("prototype").(*Object)
	if !ok {
		proto = in.ObjectPrototype
	}
	obj := NewObject(proto)
	if r, ok := in.call(f, obj, args).(*Object); ok {
		return r
	}
	return obj
}

// hoist declares the variables declared by var statements in n, not
// descending into nested functions.
func hoist(n *js.Node, ns *Ns) {
	if n == nil {
		return
	}
	switch n.Kind {
	case js.FunctionExpression:
		return
	case js.VariableDeclaration:
		ns.Declare(n.Children[0].Leaf.Name())
	case js.VariableStatementNoAssign:
		for _, id := range n.Children {
			ns.Declare(id.Leaf.Name())
		}
		return
	}
	for _, ch := range n.Children {
		hoist(ch, ns)
	}
}

func hasLabel(labels []string, l string) bool {
	if l == "" {
		return true
	}
	for _, x := range labels {
		if x == l {
			return true
		}
	}
	return false
}

func (in *Interp) exec(n *js.Node, e *env) completion {
	return in.execLabelled(n, e, nil)
}

func (in *Interp) execLabelled(n *js.Node, e *env, labels []string) completion {
	if n == nil {
		return completion{}
	}
	switch n.Kind {
	case js.Statements, js.Block, js.SourceElements:
		var last Value
		for _, ch := range n.Children {
			c := in.exec(ch, e)
			if c.val != nil {
				last = c.val
			}
			if c.typ != ctlNormal {
				if c.typ != ctlReturn {
					c.val = last
				}
				return c
			}
		}
		return completion{val: last}
	case js.EmptyStatement, js.Nil, js.DebuggerStatement:
		return completion{}
	case js.ExpressionStatement:
		return completion{val: in.eval(n.Children[0], e)}
	case js.VariableStatement:
		return in.exec(n.Children[0], e)
	case js.VariableDeclarationList, js.VariableStatementDirect:
		for _, d := range n.Children {
			if d.Child(1) != nil {
				in.assignVar(e, d.Children[0].Leaf.Name(), in.eval(d.Child(1), e))
			}
		}
		return completion{}
	case js.VariableStatementNoAssign:
		return completion{}
	case js.IfStatement:
		if Truthy(in.eval(n.Children[0], e)) {
			return in.exec(n.Child(1), e)
		}
		return in.exec(n.Child(2), e)
	case js.WhileStatement:
		return in.loop(e, labels, func() bool { return Truthy(in.eval(n.Children[0], e)) }, n.Children[1], nil, false)
	case js.DoStatement:
		return in.loop(e, labels, func() bool { return Truthy(in.eval(n.Children[1], e)) }, n.Children[0], nil, true)
	case js.ForStatement:
		if n.Children[0] != nil {
			in.eval(n.Children[0], e)
		}
		cond := func() bool { return n.Child(1) == nil || Truthy(in.eval(n.Child(1), e)) }
		step := func() {
			if n.Child(2) != nil {
				in.eval(n.Child(2), e)
			}
		}
		return in.loop(e, labels, cond, n.Child(3), step, false)
	case js.ForInStatement:
		return in.forIn(n, e, labels)
	case js.ContinueStatement, js.BreakStatement:
		typ := ctlBreak
		if n.Kind == js.ContinueStatement {
			typ = ctlContinue
		}
		c := completion{typ: typ}
		if l := n.Children; len(l) > 0 && l[0] != nil {
			c.label = l[0].Leaf.Name()
		}
		return c
	case js.ReturnStatement:
		var v Value = Undefined
		if len(n.Children) > 0 && n.Children[0] != nil {
			v = in.eval(n.Children[0], e)
		}
		return completion{typ: ctlReturn, val: v}
	case js.ThrowStatement:
		Throw(in.eval(n.Children[0], e))
	case js.LabelledStatement:
		l := n.Children[0].Leaf.Name()
		c := in.execLabelled(n.Children[1], e, append(labels, l))
		if c.typ == ctlBreak && c.label == l {
			return completion{val: c.val}
		}
		return c
	case js.SwitchStatement:
		return in.switchStmt(n, e)
	case js.TryStatement:
		return in.tryStmt(n, e)
	}
	if _, ok := n.Prec(); ok {
		return completion{val: in.eval(n, e)}
	}
	in.throwError("SyntaxError", "cannot execute "+n.Kind.String())
	return completion{}
}

func (in *Interp) loop(e *env, labels []string, cond func() bool, body *js.Node, step func(), do bool) completion {
	var last Value
	for first := true; (do && first) || cond(); first = false {
		c := in.exec(body, e)
		if c.val != nil {
			last = c.val
		}
		switch c.typ {
		case ctlBreak:
			if hasLabel(labels, c.label) {
				return completion{val: last}
			}
			return c
		case ctlContinue:
			if !hasLabel(labels, c.label) {
				return c
			}
		case ctlReturn:
			return c
		}
		if step != nil {
			step()
		}
	}
	return completion{val: last}
}

func (in *Interp) forIn(n *js.Node, e *env, labels []string) completion {
	obj := in.eval(n.Children[1], e)
	var keys []string
	seen := map[string]bool{}
	if o, ok := obj.(*Object); ok {
		for p := o; p != nil; p = p.Proto {
			for _, k := range p.Keys() {
				if !seen[k] {
					seen[k] = true
					keys = append(keys, k)
				}
			}
		}
	} else if s, ok := obj.(string); ok {
		for i := range []rune(s) {
			keys = append(keys, strconv.Itoa(i))
		}
	}
	i := 0
	cond := func() bool {
		for i < len(keys) {
			k := keys[i]
			i++
			if o, ok := obj.(*Object); ok {
				if _, found := in.lookupChain(o, k); !found {
					// Deleted while iterating.
					continue
				}
			}
			in.put(in.ref(n.Children[0], e), k, e)
			return true
		}
		return false
	}
	return in.loop(e, labels, cond, n.Children[2], nil, false)
}

func (in *Interp) lookupChain(o *Object, k string) (Value, bool) {
	for p := o; p != nil; p = p.Proto {
		if v, ok := p.Own(k); ok {
			return v, true
		}
	}
	return nil, false
}

func (in *Interp) switchStmt(n *js.Node, e *env) completion {
	v := in.eval(n.Children[0], e)
	clauses := n.Children[1:]
	start := -1
	for i, cl := range clauses {
		if cl.Kind == js.CaseClause && strictEquals(v, in.eval(cl.Children[0], e)) {
			start = i
			break
		}
	}
	if start < 0 {
		for i, cl := range clauses {
			if cl.Kind == js.DefaultClause {
				start = i
			}
		}
	}
	if start < 0 {
		return completion{}
	}
	var last Value
	for _, cl := range clauses[start:] {
		stmts := cl.Children
		if cl.Kind == js.CaseClause {
			stmts = stmts[1:]
		}
		for _, s := range stmts {
			c := in.exec(s, e)
			if c.val != nil {
				last = c.val
			}
			if c.typ == ctlBreak && c.label == "" {
				return completion{val: last}
			}
			if c.typ != ctlNormal {
				return c
			}
		}
	}
	return completion{val: last}
}

func (in *Interp) tryStmt(n *js.Node, e *env) (c completion) {
	block, catchNode, finallyNode := n.Child(0), n.Child(1), n.Child(2)
	if finallyNode != nil {
		defer func() {
			var thrown *Thrown
			if r := recover(); r != nil {
				if thrown = in.thrown(r); thrown == nil {
					panic(r)
				}
			}
			fc := in.exec(finallyNode.Children[0], e)
			if fc.typ != ctlNormal {
				c = fc
				return
			}
			if thrown != nil {
				panic(thrown)
			}
		}()
	}
	if catchNode == nil {
		return in.exec(block, e)
	}
	return in.tryCatch(block, catchNode, e)
}

func (in *Interp) tryCatch(block, catchNode *js.Node, e *env) (c completion) {
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			t := in.thrown(r)
			if t == nil {
				panic(r)
			}
			ns := NewNs(e.ns)
			ns.Define(catchNode.Children[0].Leaf.Name(), t.Value)
			c = in.exec(catchNode.Children[1], &env{ns: ns, this: e.this})
		}()
		c = in.exec(block, e)
	}()
	return c
}

func (in *Interp) assignVar(e *env, name string, v Value) {
	if owner := e.ns.owner(name); owner != nil {
		owner.vars[name] = v
		return
	}
	e.ns.root().vars[name] = v
}

// ref is a reference to a variable or a property.
type ref struct {
	name string
	obj  Value
	key  string
	prop bool
}

func unparen(n *js.Node) *js.Node {
	for n.Kind == js.Paren {
		n = n.Children[0]
	}
	return n
}

func (in *Interp) ref(n *js.Node, e *env) ref {
	n = unparen(n)
	switch n.Kind {
	case js.Identifier:
		return ref{name: n.Leaf.Name()}
	case js.Dot:
		return ref{obj: in.eval(n.Children[0], e), key: n.Children[1].Leaf.Name(), prop: true}
	case js.Bracket:
		obj := in.eval(n.Children[0], e)
		return ref{obj: obj, key: in.propertyKey(in.eval(n.Children[1], e)), prop: true}
	}
	in.throwError("ReferenceError", "Invalid left-hand side in assignment")
	return ref{}
}

func (in *Interp) propertyKey(v Value) string {
	if f, ok := v.(float64); ok {
		return js.FormatNumber(f)
	}
	return in.toStr(v)
}

func (in *Interp) getRef(r ref, e *env) Value {
	if r.prop {
		return in.getProp(r.obj, r.key)
	}
	return in.lookupVar(r.name, e)
}

func (in *Interp) put(r ref, v Value, e *env) {
	if r.prop {
		in.setProp(r.obj, r.key, v)
		return
	}
	in.assignVar(e, r.name, v)
}

func (in *Interp) lookupVar(name string, e *env) Value {
	switch name {
	case "this":
		return e.this
	case "true":
		return true
	case "false":
		return false
	case "null":
		return Null
	}
	if v, ok := e.ns.Lookup(name); ok {
		return v
	}
	in.throwError("ReferenceError", name+" is not defined")
	return nil
}

func (in *Interp) getProp(v Value, key string) Value {
	switch v := v.(type) {
	case *Object:
		return v.Get(key)
	case string:
		rs := []rune(v)
		if key == "length" {
			return float64(len(rs))
		}
		if i, ok := arrayIndex(key); ok {
			if i < len(rs) {
				return string(rs[i])
			}
			return Undefined
		}
		return in.StringPrototype.Get(key)
	case float64:
		return in.NumberPrototype.Get(key)
	case bool:
		return in.BooleanPrototype.Get(key)
	}
	in.throwError("TypeError", fmt.Sprintf("Cannot read property '%s' of %s", key, ToString(v)))
	return nil
}

func (in *Interp) setProp(v Value, key string, val Value) {
	switch v := v.(type) {
	case *Object:
		v.Set(key, val)
	case undefinedType, nullType:
		in.throwError("TypeError", fmt.Sprintf("Cannot set property '%s' of %s", key, ToString(v)))
	}
}

func (in *Interp) eval(n *js.Node, e *env) Value {
	switch n.Kind {
	case js.Identifier:
		return in.lookupVar(n.Leaf.Name(), e)
	case js.Literal:
		return in.literal(n.Leaf, e)
	case js.Paren:
		return in.eval(n.Children[0], e)
	case js.ArrayLiteral:
		elems := make([]Value, 0, len(n.Children))
		for _, ch := range n.Children {
			elems = append(elems, in.eval(ch, e))
		}
		return in.NewArray(elems...)
	case js.ObjectLiteral:
		o := in.NewPlainObject()
		for _, pa := range n.Children {
			o.Set(propertyName(pa.Leaf), in.eval(pa.Children[0], e))
		}
		return o
	case js.FunctionExpression:
		return in.newClosure(n, e.ns)
	case js.Dot, js.Bracket:
		r := in.ref(n, e)
		return in.getProp(r.obj, r.key)
	case js.New:
		f, ok := in.eval(n.Children[0], e).(*Object)
		if !ok {
			in.throwError("TypeError", js.Make(js.Paren, n.Children[0]).OneLine()+" is not a constructor")
		}
		return in.construct(f, in.evalArgs(n.Children[1], e))
	case js.Call:
		return in.evalCall(n, e)
	case js.PostInc, js.PostDec, js.PreInc, js.PreDec:
		r := in.ref(n.Children[0], e)
		old := toNumber(in.getRef(r, e))
		nv := old + 1
		if n.Kind == js.PostDec || n.Kind == js.PreDec {
			nv = old - 1
		}
		in.put(r, nv, e)
		if n.Kind == js.PostInc || n.Kind == js.PostDec {
			return old
		}
		return nv
	case js.Delete:
		target := unparen(n.Children[0])
		if target.Kind != js.Dot && target.Kind != js.Bracket {
			return false
		}
		r := in.ref(target, e)
		if o, ok := r.obj.(*Object); ok {
			return o.Delete(r.key)
		}
		return true
	case js.Void:
		in.eval(n.Children[0], e)
		return Undefined
	case js.Typeof:
		target := unparen(n.Children[0])
		if target.Kind == js.Identifier {
			name := target.Leaf.Name()
			if _, ok := e.ns.Lookup(name); !ok && name != "this" && name != "true" && name != "false" && name != "null" {
				return "undefined"
			}
		}
		return TypeOf(in.eval(target, e))
	case js.UnaryPlus:
		return toNumber(in.toPrimitive(in.eval(n.Children[0], e)))
	case js.UnaryMinus:
		return -toNumber(in.toPrimitive(in.eval(n.Children[0], e)))
	case js.BitNot:
		return float64(^toInt32(in.eval(n.Children[0], e)))
	case js.Not:
		return !Truthy(in.eval(n.Children[0], e))
	case js.And, js.AndMulti:
		var v Value = true
		for _, ch := range n.Children {
			if v = in.eval(ch, e); !Truthy(v) {
				return v
			}
		}
		return v
	case js.Or, js.OrMulti:
		var v Value = false
		for _, ch := range n.Children {
			if v = in.eval(ch, e); Truthy(v) {
				return v
			}
		}
		return v
	case js.Conditional:
		if Truthy(in.eval(n.Children[0], e)) {
			return in.eval(n.Children[1], e)
		}
		return in.eval(n.Children[2], e)
	case js.Comma, js.CommaMulti:
		var v Value = Undefined
		for _, ch := range n.Children {
			v = in.eval(ch, e)
		}
		return v
	case js.Assign:
		r := in.ref(n.Children[0], e)
		v := in.eval(n.Children[1], e)
		in.put(r, v, e)
		return v
	}
	if op, ok := compoundOps[n.Kind]; ok {
		r := in.ref(n.Children[0], e)
		v := in.binary(op, in.getRef(r, e), in.eval(n.Children[1], e))
		in.put(r, v, e)
		return v
	}
	if op, ok := multiOps[n.Kind]; ok {
		v := in.eval(n.Children[0], e)
		for _, ch := range n.Children[1:] {
			v = in.binary(op, v, in.eval(ch, e))
		}
		return v
	}
	if _, ok := n.Prec(); ok && len(n.Children) == 2 {
		return in.binary(n.Kind, in.eval(n.Children[0], e), in.eval(n.Children[1], e))
	}
	in.throwError("SyntaxError", "cannot evaluate "+n.Kind.String())
	return nil
}

var compoundOps = map[js.Kind]js.Kind{
	js.AddAssign: js.Add, js.SubAssign: js.Sub, js.MulAssign: js.Mul,
	js.DivAssign: js.Div, js.ModAssign: js.Mod, js.LShiftAssign: js.LShift,
	js.SRShiftAssign: js.SRShift, js.URShiftAssign: js.URShift,
	js.BitAndAssign: js.BitAnd, js.BitXorAssign: js.BitXor, js.BitOrAssign: js.BitOr,
}

var multiOps = map[js.Kind]js.Kind{
	js.MulMulti: js.Mul, js.DivMulti: js.Div, js.ModMulti: js.Mod,
	js.AddMulti: js.Add, js.SubMulti: js.Sub, js.LShiftMulti: js.LShift,
	js.SRShiftMulti: js.SRShift, js.URShiftMulti: js.URShift,
	js.BitAndMulti: js.BitAnd, js.BitXorMulti: js.BitXor, js.BitOrMulti: js.BitOr,
}

func (in *Interp) evalArgs(n *js.Node, e *env) []Value {
	args := make([]Value, len(n.Children))
	for i, ch := range n.Children {
		args[i] = in.eval(ch, e)
	}
	return args
}

func (in *Interp) evalCall(n *js.Node, e *env) Value {
	callee := unparen(n.Children[0])
	var f, this Value = nil, Undefined
	if callee.Kind == js.Dot || callee.Kind == js.Bracket {
		r := in.ref(callee, e)
		this = r.obj
		f = in.getProp(r.obj, r.key)
	} else {
		f = in.eval(callee, e)
	}
	fo, ok := f.(*Object)
	if !ok || !fo.callable() {
		in.throwError("TypeError", callee.OneLine()+" is not a function")
	}
	return in.call(fo, this, in.evalArgs(n.Children[1], e))
}

func (in *Interp) literal(t *term.Term, e *env) Value {
	switch t.Kind {
	case term.Num:
		return stringToNumber(t.Val)
	case term.Str:
		return term.Unliteralize(t.Val)
	case term.Regexp:
		return in.newRegExp(t.Val, t.Flags)
	}
	return in.lookupVar(t.Name(), e)
}

func propertyName(t *term.Term) string {
	switch t.Kind {
	case term.Str:
		return term.Unliteralize(t.Val)
	case term.Num:
		return js.FormatNumber(stringToNumber(t.Val))
	}
	return t.Name()
}

func (in *Interp) binary(op js.Kind, a, b Value) Value {
	switch op {
	case js.Add:
		pa, pb := in.toPrimitive(a), in.toPrimitive(b)
		_, sa := pa.(string)
		_, sb := pb.(string)
		if sa || sb {
			return ToString(pa) + ToString(pb)
		}
		return toNumber(pa) + toNumber(pb)
	case js.Sub:
		return toNumber(in.toPrimitive(a)) - toNumber(in.toPrimitive(b))
	case js.Mul:
		return toNumber(in.toPrimitive(a)) * toNumber(in.toPrimitive(b))
	case js.Div:
		return toNumber(in.toPrimitive(a)) / toNumber(in.toPrimitive(b))
	case js.Mod:
		return math.Mod(toNumber(in.toPrimitive(a)), toNumber(in.toPrimitive(b)))
	case js.LShift:
		return float64(toInt32(a) << (toUint32(b) & 31))
	case js.SRShift:
		return float64(toInt32(a) >> (toUint32(b) & 31))
	case js.URShift:
		return float64(toUint32(a) >> (toUint32(b) & 31))
	case js.BitAnd:
		return float64(toInt32(a) & toInt32(b))
	case js.BitXor:
		return float64(toInt32(a) ^ toInt32(b))
	case js.BitOr:
		return float64(toInt32(a) | toInt32(b))
	case js.Lt, js.Gt, js.Le, js.Ge:
		return in.compare(op, a, b)
	case js.Eq:
		return in.looseEquals(a, b)
	case js.Ne:
		return !in.looseEquals(a, b)
	case js.StrictEq:
		return strictEquals(a, b)
	case js.StrictNe:
		return !strictEquals(a, b)
	case js.Instanceof:
		return in.instanceOf(a, b)
	case js.In:
		o, ok := b.(*Object)
		if !ok {
			in.throwError("TypeError", "Cannot use 'in' operator to search for '"+ToString(a)+"' in "+ToString(b))
		}
		_, found := in.lookupChain(o, in.propertyKey(a))
		return found
	}
	in.throwError("SyntaxError", "unknown operator "+op.String())
	return nil
}

func (in *Interp) compare(op js.Kind, a, b Value) Value {
	pa, pb := in.toPrimitive(a), in.toPrimitive(b)
	sa, aStr := pa.(string)
	sb, bStr := pb.(string)
	if aStr && bStr {
		switch op {
		case js.Lt:
			return sa < sb
		case js.Gt:
			return sa > sb
		case js.Le:
			return sa <= sb
		}
		return sa >= sb
	}
	x, y := toNumber(pa), toNumber(pb)
	switch op {
	case js.Lt:
		return x < y
	case js.Gt:
		return x > y
	case js.Le:
		return x <= y
	}
	return x >= y
}

func (in *Interp) instanceOf(v, f Value) bool {
	fo, ok := f.(*Object)
	if !ok || !fo.callable() {
		in.throwError("TypeError", "Right-hand side of 'instanceof' is not callable")
	}
	o, ok := v.(*Object)
	if !ok {
		return false
	}
	proto, ok := fo.Get("prototype").(*Object)
	if !ok {
		return false
	}
	for p := o.Proto; p != nil; p = p.Proto {
		if p == proto {
			return true
		}
	}
	return false
}
