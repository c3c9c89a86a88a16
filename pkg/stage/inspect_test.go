package stage

import (
	"testing"

	"github.com/izreit/sifon/pkg/tt"
)

func TestInspect(t *testing.T) {
	in := New()
	obj := in.NewPlainObject()
	obj.Set("a", 1.0)
	obj.Set("b-c", "x")
	nested := in.NewArray(in.NewArray(in.NewArray(in.NewArray(1.0))))
	deepObj := in.NewPlainObject()
	deepObj.Set("k", in.NewArray(in.NewArray(obj)))

	tt.Test(t, tt.Fn("Inspect", Inspect), tt.Table{
		tt.Args(3.0).Rets("3"),
		tt.Args("str").Rets(`"str"`),
		tt.Args(Undefined).Rets("undefined"),
		tt.Args(Null).Rets("null"),
		tt.Args(true).Rets("true"),
		tt.Args(in.NewArray(1.0, "a", Null)).Rets(`[1, "a", null]`),
		tt.Args(in.NewPlainObject()).Rets("{}"),
		tt.Args(obj).Rets(`{ a: 1, "b-c": "x" }`),
		tt.Args(nested).Rets("[[[[Array]]]]"),
		tt.Args(deepObj).Rets("{ k: [[[Object]]] }"),
		tt.Args(in.NewNative("f", func(*Interp, Value, []Value) Value { return Undefined })).Rets("[Function]"),
		tt.Args(in.NewError("Error", "boom")).Rets("Error: boom"),
	})
}
