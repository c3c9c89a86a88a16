// Package compiler ties the stages of compilation together: parsing, macro
// expansion, the optional reducer and code generation.
//
// Each call of Compile expands and generates in a scope of its own, so
// macros and variables declared by one source are not seen by the next. The
// built-in macros live in a root scope owned by the Compiler.
package compiler

import (
	"errors"
	"fmt"

	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/expand"
	"github.com/izreit/sifon/pkg/gen"
	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/logutil"
	"github.com/izreit/sifon/pkg/macros"
	"github.com/izreit/sifon/pkg/parse"
	"github.com/izreit/sifon/pkg/reduce"
	"github.com/izreit/sifon/pkg/scope"
	"github.com/izreit/sifon/pkg/term"
)

var logger = logutil.GetLogger("[compiler] ")

// Options controls compilation.
type Options struct {
	// Reduce runs the constant-folding pass after expansion.
	Reduce bool
	// Debug reports the code compiled for compile-time evaluation as
	// informational messages.
	Debug bool
	// NoStdMacros leaves out the built-in macros.
	NoStdMacros bool
}

// Result is the outcome of compiling a source.
type Result struct {
	// Messages are the diagnostics, in the order they were reported.
	Messages []*diag.Message
	// Program is the generated syntax tree. It is nil when an error was
	// reported.
	Program *js.Node
	// Code is Program printed. It is empty when an error was reported.
	Code string
}

// Failed reports whether any error was reported.
func (r *Result) Failed() bool { return r.Program == nil }

// Errors returns the error messages of r joined, or nil if there are none.
func (r *Result) Errors() error {
	var errs []error
	for _, m := range r.Messages {
		if m.IsError() {
			errs = append(errs, m)
		}
	}
	return errors.Join(errs...)
}

// Compiler compiles sources. It is not safe for concurrent use.
type Compiler struct {
	opts Options
	r    *diag.Receiver
	env  *scope.Env
	ev   *expand.Evaluator
	gen  *gen.Generator
}

// New makes a Compiler. Each Compiler has its own root scope, so two
// Compilers never see each other's macros.
func New(opts Options) *Compiler {
	root := scope.NewRoot()
	if !opts.NoStdMacros {
		root = macros.NewRoot()
	}
	r := diag.NewReceiver()
	ev := expand.New(r)
	ev.Debug = opts.Debug
	env := scope.New(root)
	env.Optimizing = opts.Reduce
	return &Compiler{opts, r, env, ev, gen.New(r)}
}

// Options returns the options c was made with.
func (c *Compiler) Options() Options { return c.opts }

// Env returns the macro environment of c.
func (c *Compiler) Env() *scope.Env { return c.env }

// Compile compiles a source. The returned error is diag.ErrFatal when
// compilation was aborted, and nil otherwise; in both cases the Result
// holds the messages reported so far.
func (c *Compiler) Compile(src parse.Source) (res *Result, err error) {
	c.r.Reset()
	c.gen.SetCompileTimePath(src.Name)
	res = &Result{}
	defer func() {
		if e := recover(); e != nil {
			if e != diag.ErrFatal {
				panic(e)
			}
			err = diag.ErrFatal
		}
		res.Messages = c.r.Messages()
		if err != nil || c.r.ErrorCount() > 0 {
			res.Program, res.Code = nil, ""
		}
		logger.Printf("compiled %s: %d messages, failed: %v", src.Name, len(res.Messages), res.Failed())
	}()

	nodes, err := parse.Parse(src, c.r)
	if err != nil {
		return res, err
	}
	if prog := c.compile(nodes); prog != nil {
		res.Program = prog
		res.Code = prog.Code()
	}
	return res, nil
}

func (c *Compiler) compile(nodes []*term.Term) *js.Node {
	expanded := c.ev.Evaluate(nodes, c.env, c)
	if c.opts.Reduce {
		expanded = reduce.All(expanded)
	}
	prog, err := c.gen.Generate(expanded, c.env)
	if err != nil {
		c.reportGenerateError(err)
		return nil
	}
	return prog
}

// CompileNode compiles one term for compile-time evaluation. Errors in it
// are counted in a unit of their own; if there are any, CompileNode returns
// nil.
func (c *Compiler) CompileNode(t *term.Term, env *scope.Env) *js.Node {
	c.r.EnterUnit()
	expanded := c.ev.Evaluate([]*term.Term{t}, env, c)
	if c.opts.Reduce {
		expanded = reduce.All(expanded)
	}
	prog, err := c.gen.Generate(expanded, env)
	if err != nil {
		c.reportGenerateError(err)
	}
	if c.r.LeaveUnit() > 0 {
		return nil
	}
	return prog
}

func (c *Compiler) reportGenerateError(err error) {
	var evalErr *scope.EvalError
	if errors.As(err, &evalErr) {
		c.r.Report(diag.ExceptionThrownIn("evaluating `meta'", term.NoPos, evalErr.Err, evalErr.Code))
		return
	}
	c.r.Report(diag.ExceptionThrownIn("generating code", term.NoPos, fmt.Sprint(err), ""))
}
