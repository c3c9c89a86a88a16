// Package shell is the command-line frontend of sifon. It compiles files,
// standard input or code given in an argument, and runs the interactive
// loop that compiles each input and evaluates it on the stage interpreter.
package shell

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/izreit/sifon/pkg/buildinfo"
	"github.com/izreit/sifon/pkg/compiler"
	"github.com/izreit/sifon/pkg/config"
	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/logutil"
	"github.com/izreit/sifon/pkg/parse"
	"github.com/izreit/sifon/pkg/prog"
	"github.com/izreit/sifon/pkg/store"
	"github.com/izreit/sifon/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the compiler subprogram. It always runs, so it must come last
// in a composite program.
type Program struct {
	write, repl   bool
	out, oneliner string

	flags *prog.CompilerFlags
	json  *bool
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.write, "c", false,
		"Write the code compiled from each file to a .js file instead of stdout")
	fs.StringVar(&p.out, "o", "",
		"Output file for -c; needs exactly one input file")
	fs.StringVar(&p.oneliner, "e", "",
		"Compile the code in the argument and print the result")
	fs.BoolVar(&p.repl, "repl", false,
		"Run the interactive loop even if stdin is not a terminal")
	p.flags = fs.CompilerFlags()
	p.json = fs.JSON()
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	switch {
	case p.oneliner != "" && (len(args) > 0 || p.write || p.repl):
		return prog.BadUsage("-e cannot be used with files, -c or -repl")
	case p.repl && len(args) > 0:
		return prog.BadUsage("-repl cannot be used with files")
	case p.out != "" && (!p.write || len(args) != 1):
		return prog.BadUsage("-o needs -c and exactly one input file")
	}

	s, err := p.newSession(fds[2])
	if err != nil {
		return err
	}
	defer s.close()

	switch {
	case p.oneliner != "":
		return s.exit(s.compileSource(fds, parse.Source{Name: "[-e]", Code: p.oneliner}, ""))
	case p.repl || (len(args) == 0 && isTerminal(fds[0])):
		Interact(fds, &InteractConfig{Options: s.opts, PrintCode: s.opts.Debug})
		return nil
	case len(args) == 0:
		code, err := readUTF8(fds[0])
		if err != nil {
			fmt.Fprintln(fds[2], "cannot read stdin:", err)
			return prog.Exit(1)
		}
		return s.exit(s.compileSource(fds, parse.Source{Name: "[stdin]", Code: code}, ""))
	}

	ok := true
	for _, arg := range args {
		out := ""
		if p.write {
			out = s.outputPath(arg, p.out)
		}
		if !s.compileFile(fds, arg, out) {
			ok = false
		}
	}
	return s.exit(ok)
}

// session holds what the compilation of one command line shares: the
// compiler, the cache and the settings merged from sifon.yaml and the flags.
type session struct {
	cfg   *config.Config
	opts  compiler.Options
	json  bool
	c     *compiler.Compiler
	store storedefs.Store
}

// newSession loads the configuration and applies the flags on top of it.
// Boolean flags can only turn on the reducer and turn off the built-in
// macros; non-empty string flags override the configuration.
func (p *Program) newSession(stderr *os.File) (*session, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, prog.BadUsage(err.Error())
	}
	if p.flags.Color != "" {
		cfg.Color = p.flags.Color
	}
	mode, ok := diag.ParseColorMode(cfg.Color)
	if !ok {
		return nil, prog.BadUsage(fmt.Sprintf("invalid color mode %q", cfg.Color))
	}
	diag.SetColorMode(mode, stderr)

	opts := cfg.Options()
	opts.Reduce = opts.Reduce || p.flags.Reduce
	opts.NoStdMacros = opts.NoStdMacros || p.flags.NoStdMacros
	opts.Debug = p.flags.Debug

	s := &session{cfg: cfg, opts: opts, json: *p.json, c: compiler.New(opts)}

	cache := cfg.Cache
	if p.flags.Cache != "" {
		cache = p.flags.Cache
	}
	if cache != "" {
		st, err := store.NewStore(cache, buildinfo.Value.Version)
		if err != nil {
			fmt.Fprintln(stderr, "Warning: cannot open the compile cache:", err)
			fmt.Fprintln(stderr, "Continuing without caching.")
		} else {
			s.store = st
		}
	}
	return s, nil
}

func (s *session) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logger.Println("closing the compile cache:", err)
		}
	}
}

func (s *session) exit(ok bool) error {
	if ok {
		return nil
	}
	return prog.Exit(1)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
