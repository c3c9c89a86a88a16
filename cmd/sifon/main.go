// Sifon compiles an indentation-sensitive Lisp dialect with hygienic macros
// to JavaScript. Without files it runs an interactive loop; with -lsp it
// serves the language server protocol on stdio.
package main

import (
	"os"

	"github.com/izreit/sifon/pkg/buildinfo"
	"github.com/izreit/sifon/pkg/lsp"
	"github.com/izreit/sifon/pkg/pprof"
	"github.com/izreit/sifon/pkg/prog"
	"github.com/izreit/sifon/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			&pprof.Program{}, &buildinfo.Program{}, &lsp.Program{},
			&shell.Program{})))
}
