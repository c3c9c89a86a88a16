package prog_test

import (
	"os"
	"testing"

	. "github.com/izreit/sifon/pkg/prog"
	"github.com/izreit/sifon/pkg/prog/progtest"
	"github.com/izreit/sifon/pkg/testutil"
)

var (
	Test      = progtest.Test
	ThatSifon = progtest.ThatSifon
)

func TestCommonFlagHandling(t *testing.T) {
	testutil.InTempDir(t)

	Test(t, testProgram{},
		ThatSifon("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatSifon("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		ThatSifon("-help").
			WritesStdoutContaining("Usage: sifon [flags] [file...]"),
	)
}

func TestLogFlag(t *testing.T) {
	testutil.InTempDir(t)
	Test(t, testProgram{}, ThatSifon("-log", "debug.log").DoesNothing())
	if _, err := os.Stat("debug.log"); err != nil {
		t.Errorf("log file does not exist: %v", err)
	}
}

func TestCompilerFlags(t *testing.T) {
	var got *CompilerFlags
	Test(t, flagsProgram{&got},
		ThatSifon("-O", "-no-std-macros", "-cache", "c.db", "-color", "never").DoesNothing())
	if got == nil {
		t.Fatal("flags not registered")
	}
	want := CompilerFlags{Reduce: true, NoStdMacros: true, Cache: "c.db", Color: "never"}
	if *got != want {
		t.Errorf("got %+v, want %+v", *got, want)
	}
	if opts := got.Options(); !opts.Reduce || !opts.NoStdMacros || opts.Debug {
		t.Errorf("got options %+v", opts)
	}
}

func TestSharedFlagsRegisteredOnce(t *testing.T) {
	var a, b *CompilerFlags
	Test(t, Composite(flagsProgram{&a}, flagsProgram{&b}),
		ThatSifon("-O").DoesNothing())
	if a != b || a == nil || !a.Reduce {
		t.Errorf("got %p %p", a, b)
	}
}

func TestNoSuitableSubprogram(t *testing.T) {
	Test(t, testProgram{nextProgram: true},
		ThatSifon().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(testProgram{nextProgram: true}, testProgram{writeOut: "program 2"}),
		ThatSifon().WritesStdout("program 2"),
	)
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	Test(t,
		Composite(testProgram{nextProgram: true}, testProgram{nextProgram: true}),
		ThatSifon().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite_PreferEarlierSubprogram(t *testing.T) {
	Test(t,
		Composite(
			testProgram{writeOut: "program 1"}, testProgram{writeOut: "program 2"}),
		ThatSifon().WritesStdout("program 1"),
	)
}

func TestComposite_RunsCleanups(t *testing.T) {
	Test(t,
		Composite(
			cleanupProgram{"cleanup 1\n"}, cleanupProgram{"cleanup 2\n"},
			testProgram{writeOut: "program\n"}),
		ThatSifon().WritesStdout("program\ncleanup 2\ncleanup 1\n"),
	)
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatSifon().ExitsWith(2).WritesStderrContaining("lorem ipsum\n"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(3)},
		ThatSifon().ExitsWith(3),
	)
}

func TestExitError_0(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(0)},
		ThatSifon().ExitsWith(0),
	)
}

type testProgram struct {
	nextProgram bool
	writeOut    string
	returnErr   error
}

func (p testProgram) RegisterFlags(f *FlagSet) {}

func (p testProgram) Run(fds [3]*os.File, args []string) error {
	if p.nextProgram {
		return ErrNextProgram
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}

type flagsProgram struct{ got **CompilerFlags }

func (p flagsProgram) RegisterFlags(f *FlagSet) { *p.got = f.CompilerFlags() }

func (p flagsProgram) Run(fds [3]*os.File, args []string) error { return nil }

type cleanupProgram struct{ msg string }

func (p cleanupProgram) RegisterFlags(f *FlagSet) {}

func (p cleanupProgram) Run(fds [3]*os.File, args []string) error {
	return NextProgram(func(fds [3]*os.File) { fds[1].WriteString(p.msg) })
}
