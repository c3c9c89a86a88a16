package testutil

import (
	"testing"

	"github.com/izreit/sifon/pkg/term"
)

func TestSexp(t *testing.T) {
	ts := Sexp(`(f "a b" (g -1)) x`)
	if len(ts) != 2 {
		t.Fatalf("got %d terms, want 2", len(ts))
	}
	want := term.L(term.S("f"), term.NewStrLiteral(`"a b"`, term.NoPos),
		term.L(term.S("g"), term.NewNum("-1", term.NoPos)))
	if !term.Equal(ts[0], want) {
		t.Errorf("got %s, want %s", ts[0], want)
	}
	if !ts[1].Is("x") {
		t.Errorf("got %s, want x", ts[1])
	}
}
