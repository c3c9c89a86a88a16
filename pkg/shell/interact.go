package shell

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/izreit/sifon/pkg/compiler"
	"github.com/izreit/sifon/pkg/diag"
	"github.com/izreit/sifon/pkg/parse"
	"github.com/izreit/sifon/pkg/stage"
)

// InteractConfig keeps configuration for the interactive mode.
type InteractConfig struct {
	Options compiler.Options
	// PrintCode prints the compiled code of each input instead of its value.
	PrintCode bool
}

var valueColor = color.New(color.FgGreen)

// Interact runs an interactive session. One compiler and one interpreter
// serve the whole session, so top-level variables persist from one input to
// the next.
func Interact(fds [3]*os.File, cfg *InteractConfig) {
	var ed editor
	if fds[0] == os.Stdin && isTerminal(fds[0]) {
		led, err := newLinerEditor()
		if err != nil {
			fmt.Fprintln(fds[2], "Warning:", err)
		}
		ed = led
	} else {
		ed = newMinEditor(fds[0], fds[2])
	}
	defer func() { ed.Close() }()

	c := compiler.New(cfg.Options)
	in := stage.New()

	for cmdNum := 1; ; {
		code, err := ed.ReadCode()
		if err == io.EOF {
			break
		} else if err != nil {
			fmt.Fprintln(fds[2], "Editor error:", err)
			if _, isMinEditor := ed.(*minEditor); isMinEditor {
				break
			}
			fmt.Fprintln(fds[2], "Falling back to basic line editor")
			ed.Close()
			ed = newMinEditor(fds[0], fds[2])
			continue
		}
		if strings.TrimSpace(code) == "" {
			continue
		}

		src := parse.Source{Name: fmt.Sprintf("[repl %d]", cmdNum), Code: code}
		cmdNum++
		res, _ := c.Compile(src)
		showMessages(fds[2], res.Messages, src, false)
		if res.Failed() {
			continue
		}
		ed.AddHistory(code)

		if cfg.PrintCode {
			fmt.Fprintln(fds[1], strings.TrimRight(res.Code, "\n"))
			continue
		}
		v, err := in.Run(in.Global(), res.Program)
		if err != nil {
			diag.Complain(fds[2], "Uncaught "+err.Error())
			continue
		}
		fmt.Fprintln(fds[1], valueColor.Sprint(stage.Inspect(v)))
	}
}
