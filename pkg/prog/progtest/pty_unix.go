//go:build unix

package progtest

import (
	"os"
	"testing"

	"github.com/creack/pty"

	"github.com/izreit/sifon/pkg/prog"
)

// RunOnTerminal runs a Program with stdout and stderr connected to a pseudo
// terminal, and returns its exit code and what it wrote. Stdin is an empty
// pipe.
func RunOnTerminal(t *testing.T, p prog.Program, args ...string) (int, string) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("cannot open pty: %v", err)
	}
	defer ptmx.Close()

	output := make(chan string, 1)
	go func() {
		var buf []byte
		b := make([]byte, 4096)
		for {
			n, err := ptmx.Read(b)
			buf = append(buf, b[:n]...)
			if err != nil {
				break
			}
		}
		output <- string(buf)
	}()

	r0, w0, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	w0.Close()
	defer r0.Close()

	exit := prog.Run([3]*os.File{r0, tty, tty}, append([]string{"sifon"}, args...), p)
	tty.Close()
	return exit, <-output
}
