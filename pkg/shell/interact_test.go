package shell

import (
	"testing"

	. "github.com/izreit/sifon/pkg/prog/progtest"
	"github.com/izreit/sifon/pkg/testutil"
)

func TestInteract(t *testing.T) {
	testutil.InTempDir(t)
	Test(t, &Program{},
		ThatSifon("-repl").WithStdin("x .= 3\nx .+ 1\n").
			WritesStdout("3\n4\n").
			WritesStderrContaining("sifon> "),
		// Multi-line input ends with a blank line.
		ThatSifon("-repl").WithStdin("f .= #(a) ->\n  a .* 2\n\nf 21\n").
			WritesStdout("[Function]\n42\n").
			WritesStderrContaining("...    "),
		// Input without a trailing newline.
		ThatSifon("-repl").WithStdin(`"a" .+ "b"`).
			WritesStdout("\"ab\"\n").
			WritesStderrContaining("sifon> "),
		// Errors do not end the session.
		ThatSifon("-repl").WithStdin("(,)\n1\n").
			WritesStdout("1\n").
			WritesStderrContaining("ERROR"),
		ThatSifon("-repl").WithStdin("throw \"boom\"\n2\n").
			WritesStdout("2\n").
			WritesStderrContaining("Uncaught boom"),
		// Compiled code is printed in debug mode.
		ThatSifon("-repl", "-d").WithStdin("console.log 42\n").
			WritesStdoutContaining("console.log(42)").
			WritesStderrContaining("sifon> "),
	)
}

func TestInteract_BuiltinMacros(t *testing.T) {
	testutil.InTempDir(t)
	Test(t, &Program{},
		ThatSifon("-repl").WithStdin("i .= 0\ni *++\nunless false i\n").
			WritesStdout("0\n0\n1\n").
			WritesStderrContaining("sifon> "),
	)
}
