package testutil

import (
	"testing"

	"github.com/izreit/sifon/pkg/tt"
)

func TestDedent(t *testing.T) {
	tt.Test(t, tt.Fn("Dedent", Dedent), tt.Table{
		tt.Args(" \n  foo\n bar").Rets("\n foo\nbar"),
		tt.Args(`
			a
			 b
			c`).Rets("a\n b\nc"),
		tt.Args(`
			a .= 1

			b`).Rets("a .= 1\n\nb"),
		tt.Args(`
			reduce: true
			`).Rets("reduce: true\n"),
		tt.Args(`
				a
			b`).Rets("\ta\nb"),
		tt.Args("a\n  b").Rets("a\n  b"),
	})
}
