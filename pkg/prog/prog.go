// Package prog supports building testable, composable programs.
//
// The main package of sifon combines several subprograms (profiling, build
// information, the language server and the compiler frontend) with
// Composite; each of them registers its own flags and either runs or defers
// to the next one.
package prog

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/izreit/sifon/pkg/logutil"
)

func usage(out io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(out, "Usage: sifon [flags] [file...]")
	fmt.Fprintln(out, "Supported flags:")
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// Run parses command-line flags and runs the first applicable subprogram. It
// returns the exit status of the program.
func Run(fds [3]*os.File, args []string, p Program) int {
	fs := flag.NewFlagSet("sifon", flag.ContinueOnError)
	// Error and usage will be printed explicitly.
	fs.SetOutput(io.Discard)

	var log string
	var help bool
	fs.StringVar(&log, "log", "", "a file to write debug log to")
	fs.BoolVar(&help, "help", false, "show usage help and quit")

	p.RegisterFlags(&FlagSet{FlagSet: fs})

	err := fs.Parse(args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			// (*flag.FlagSet).Parse returns ErrHelp when -h or -help was
			// requested but *not* defined. -help is defined, but not -h; so
			// this means that -h has been requested. Handle this by printing
			// the same message as an undefined flag.
			fmt.Fprintln(fds[2], "flag provided but not defined: -h")
		} else {
			fmt.Fprintln(fds[2], err)
		}
		usage(fds[2], fs)
		return 2
	}

	if log != "" {
		err = logutil.SetOutputFile(log)
		if err != nil {
			fmt.Fprintln(fds[2], err)
		}
	}

	if help {
		usage(fds[1], fs)
		return 0
	}

	err = p.Run(fds, fs.Args())
	if err == nil {
		return 0
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(fds[2], msg)
	}
	var exitErr exitError
	switch {
	case errors.As(err, new(badUsageError)):
		usage(fds[2], fs)
	case errors.As(err, &exitErr):
		return exitErr.exit
	}
	return 2
}

// Composite returns a Program made up from other programs. It registers the
// flags of all of them, and runs them in turn until one does not return
// ErrNextProgram.
func Composite(programs ...Program) Program {
	return composite(programs)
}

type composite []Program

func (cp composite) RegisterFlags(f *FlagSet) {
	for _, p := range cp {
		p.RegisterFlags(f)
	}
}

func (cp composite) Run(fds [3]*os.File, args []string) error {
	var cleanups []func([3]*os.File)
	for _, p := range cp {
		err := p.Run(fds, args)
		if np, ok := err.(*nextProgramError); ok {
			cleanups = append(cleanups, np.cleanups...)
			continue
		}
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i](fds)
		}
		return err
	}
	// If we have reached here, all subprograms have returned ErrNextProgram
	return ErrNextProgram
}

// NextProgram returns a special error that may be returned by Program.Run
// that is part of a Composite program, indicating that the next program
// should be tried. It can carry cleanup functions that get called when the
// next program terminates, in the reverse order.
func NextProgram(cleanups ...func([3]*os.File)) error {
	return &nextProgramError{cleanups}
}

type nextProgramError struct{ cleanups []func([3]*os.File) }

// If this error ever gets printed, it has been bubbled to [Run] and all
// programs have returned this error.
func (e *nextProgramError) Error() string { return "internal error: no suitable subprogram" }

// ErrNextProgram is short for NextProgram().
var ErrNextProgram = NextProgram()

// BadUsage returns a special error that may be returned by Program.Run. It
// causes the main function to print out a message, the usage information and
// exit with 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Exit returns a special error that may be returned by Program.Run. It causes
// the main function to exit with the given code without printing any error
// messages. Exit(0) returns nil.
func Exit(exit int) error {
	if exit == 0 {
		return nil
	}
	return exitError{exit}
}

type exitError struct{ exit int }

func (e exitError) Error() string { return "" }

// Program represents a subprogram.
type Program interface {
	RegisterFlags(fs *FlagSet)
	// Run runs the subprogram.
	Run(fds [3]*os.File, args []string) error
}
