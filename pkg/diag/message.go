// Package diag contains the diagnostics of the compiler: the messages it
// reports, the receiver collecting them during a compilation, and helpers
// for showing them.
package diag

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/izreit/sifon/pkg/term"
)

// Kind is the severity of a Message.
type Kind int

// Possible values for Kind.
const (
	Error Kind = iota
	Warning
	Info
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "ERROR"
	case Warning:
		return "WARNING"
	case Info:
		return "INFO"
	}
	return "(UNKNOWN_MESSAGE)"
}

// Message is a diagnostic attached to a source position.
type Message struct {
	Kind Kind
	// Name is the identifier of a warning, such as INDENT_INCLUDING_TAB.
	Name string
	Text string
	Pos  term.Pos
}

// ErrFatal aborts a compilation. Messages received before it was raised
// are still returned.
var ErrFatal = errors.New("fatal error, compilation aborted")

// Location formats the one-based position of m.
func (m *Message) Location() string {
	file := m.Pos.File
	if file == "" {
		file = "(the current compile target)"
	}
	line := "?"
	if m.Pos.Line >= 0 {
		line = strconv.Itoa(m.Pos.Line + 1)
	}
	s := file + ":" + line
	if m.Pos.Col >= 0 {
		s += ":" + strconv.Itoa(m.Pos.Col+1)
	}
	return s
}

// Error returns a plain text representation of the message. Two messages
// with the same representation are considered duplicates.
func (m *Message) Error() string {
	return m.Location() + ": " + m.Kind.String() + ": " + m.Text
}

// Show shows the message, with the severity colored when coloring is
// enabled.
func (m *Message) Show(indent string) string {
	c := errorColor
	switch m.Kind {
	case Warning:
		c = warningColor
	case Info:
		c = infoColor
	}
	return indent + m.Location() + ": " + c.Sprint(m.Kind.String()) + ": " + m.Text
}

// ShowWithSource is like Show, but adds the source line the message points
// at, with the culprit column marked.
func (m *Message) ShowWithSource(indent, source string) string {
	head := m.Show(indent)
	if m.Pos.Line < 0 {
		return head
	}
	lines := strings.Split(source, "\n")
	if m.Pos.Line >= len(lines) {
		return head
	}
	line := lines[m.Pos.Line]
	col := m.Pos.Col
	if col < 0 || col > len(line) {
		col = 0
	}
	end := col
	for end < len(line) && !strings.ContainsRune(" \t()[]{},", rune(line[end])) {
		end++
	}
	culprit := line[col:end]
	if culprit == "" {
		culprit = "^"
	}
	return fmt.Sprintf("%s\n%s  %s%s%s", head, indent, line[:col], culpritColor.Sprint(culprit), line[end:])
}

// IsError reports whether m is an error.
func (m *Message) IsError() bool { return m.Kind == Error }
