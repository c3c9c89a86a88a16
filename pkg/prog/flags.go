package prog

import (
	"flag"

	"github.com/izreit/sifon/pkg/compiler"
)

// FlagSet wraps a [flag.FlagSet]. It also keeps flags shared by more than
// one subprogram, which are registered when first asked for.
type FlagSet struct {
	*flag.FlagSet
	compiler *CompilerFlags
	json     *bool
}

// CompilerFlags keeps the flags controlling compilation.
type CompilerFlags struct {
	Reduce, NoStdMacros, Debug bool
	Cache, Color               string
}

// Options returns the compiler options the flags ask for.
func (f *CompilerFlags) Options() compiler.Options {
	return compiler.Options{Reduce: f.Reduce, NoStdMacros: f.NoStdMacros, Debug: f.Debug}
}

// CompilerFlags returns the flags controlling compilation, registering them
// on the first call.
func (fs *FlagSet) CompilerFlags() *CompilerFlags {
	if fs.compiler == nil {
		var cf CompilerFlags
		fs.BoolVar(&cf.Reduce, "O", false,
			"Fold constant expressions in the generated code")
		fs.BoolVar(&cf.NoStdMacros, "no-std-macros", false,
			"Compile without the built-in macros")
		fs.BoolVar(&cf.Debug, "d", false,
			"Report the code compiled for compile-time evaluation")
		fs.StringVar(&cf.Cache, "cache", "",
			"Path to the compile cache database")
		fs.StringVar(&cf.Color, "color", "",
			"Color diagnostics: auto, always or never")
		fs.compiler = &cf
	}
	return fs.compiler
}

// JSON returns the -json flag, registering it on the first call.
func (fs *FlagSet) JSON() *bool {
	if fs.json == nil {
		var json bool
		fs.BoolVar(&json, "json", false,
			"Show the output from -buildinfo, -version or diagnostics in JSON")
		fs.json = &json
	}
	return fs.json
}
