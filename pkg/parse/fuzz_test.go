package parse

import (
	"testing"

	"github.com/izreit/sifon/pkg/diag"
)

func FuzzParse(f *testing.F) {
	f.Add("foo bar")
	f.Add("x .= #(a b) ->\n  a .+ b")
	f.Add(`#"a#{b}c" *if ok`)
	f.Add("///\n  a#{x}b\n///g")
	f.Fuzz(func(t *testing.T, code string) {
		Parse(Source{Name: "fuzz", Code: code}, diag.NewReceiver())
		Complete(code)
	})
}
