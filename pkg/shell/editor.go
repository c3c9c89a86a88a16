package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/izreit/sifon/pkg/parse"
)

const (
	mainPrompt = "sifon> "
	contPrompt = "...    "
)

// This type is the interface that the line editors have to satisfy.
type editor interface {
	ReadCode() (string, error)
	AddHistory(code string)
	Close() error
}

// readCode reads lines until they make a complete input. Once the input has
// been incomplete, a blank line is also needed to end it, since more
// indented lines may follow a complete prefix of a block.
func readCode(prompt func(p string) (string, error)) (string, error) {
	var lines []string
	continued := false
	for {
		p := mainPrompt
		if len(lines) > 0 {
			p = contPrompt
		}
		line, err := prompt(p)
		if err != nil {
			if err == io.EOF && len(lines) > 0 {
				return strings.Join(lines, "\n"), nil
			}
			return "", err
		}
		blank := strings.TrimSpace(line) == ""
		if len(lines) == 0 && blank {
			return "", nil
		}
		if continued && blank && parse.Complete(strings.Join(lines, "\n")) {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
		if !continued && parse.Complete(strings.Join(lines, "\n")) {
			return lines[0], nil
		}
		continued = true
	}
}

type minEditor struct {
	in  *bufio.Reader
	out io.Writer
}

func newMinEditor(in, out *os.File) *minEditor {
	return &minEditor{bufio.NewReader(in), out}
}

func (ed *minEditor) ReadCode() (string, error) {
	return readCode(func(p string) (string, error) {
		fmt.Fprint(ed.out, p)
		line, err := ed.in.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		return strings.TrimRight(line, "\r\n"), err
	})
}

// AddHistory is a no-op since the minimal editor has no history.
func (ed *minEditor) AddHistory(string) {}

func (ed *minEditor) Close() error { return nil }

const historyFile = ".sifon_history"

type linerEditor struct {
	ln       *liner.State
	histPath string
	sigs     chan os.Signal
}

// newLinerEditor makes an editor on the terminal. The history is read from
// and written to a file in the home directory; an error reading it is
// returned along with a usable editor.
func newLinerEditor() (*linerEditor, error) {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	ed := &linerEditor{ln: ln, sigs: make(chan os.Signal, 1)}

	// Restore the terminal when killed.
	signal.Notify(ed.sigs, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if _, ok := <-ed.sigs; ok {
			ed.Close()
			os.Exit(130)
		}
	}()

	home, err := os.UserHomeDir()
	if err != nil {
		return ed, err
	}
	ed.histPath = filepath.Join(home, historyFile)
	f, err := os.Open(ed.histPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ed, nil
		}
		return ed, err
	}
	defer f.Close()
	_, err = ln.ReadHistory(f)
	return ed, err
}

func (ed *linerEditor) ReadCode() (string, error) {
	code, err := readCode(ed.ln.Prompt)
	if err == liner.ErrPromptAborted {
		return "", nil
	}
	return code, err
}

// AddHistory adds single-line inputs to the history. Multi-line inputs are
// left out since the history cannot keep their indentation.
func (ed *linerEditor) AddHistory(code string) {
	if !strings.Contains(code, "\n") {
		ed.ln.AppendHistory(code)
	}
}

func (ed *linerEditor) Close() error {
	signal.Stop(ed.sigs)
	close(ed.sigs)
	if ed.histPath != "" {
		if f, err := os.Create(ed.histPath); err == nil {
			ed.ln.WriteHistory(f)
			f.Close()
		} else {
			logger.Println("writing history:", err)
		}
	}
	return ed.ln.Close()
}
