package diag

import (
	"fmt"
	"io"
)

// Shower is implemented by errors that know how to show themselves, such as
// *Message.
type Shower interface {
	Show(indent string) string
}

// ShowError writes err to w, through Show if it is a Shower and through
// Complain otherwise.
func ShowError(w io.Writer, err error) {
	if shower, ok := err.(Shower); ok {
		fmt.Fprintln(w, shower.Show(""))
	} else {
		Complain(w, err.Error())
	}
}

// Complain prints a message to w in bold and red, adding a trailing newline.
func Complain(w io.Writer, msg string) {
	fmt.Fprintln(w, errorColor.Sprint(msg))
}

// Complainf is like Complain, but accepts a format string and arguments.
func Complainf(w io.Writer, format string, args ...any) {
	Complain(w, fmt.Sprintf(format, args...))
}
