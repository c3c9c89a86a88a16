package diag

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode decides whether messages are colored.
type ColorMode int

// Possible values for ColorMode.
const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode parses "auto", "always" or "never". Other values yield
// ColorAuto and false.
func ParseColorMode(s string) (ColorMode, bool) {
	switch s {
	case "", "auto":
		return ColorAuto, true
	case "always":
		return ColorAlways, true
	case "never":
		return ColorNever, true
	}
	return ColorAuto, false
}

// SetColorMode configures coloring of Show output for the given output file.
func SetColorMode(mode ColorMode, f *os.File) {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	default:
		fd := f.Fd()
		color.NoColor = !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
	}
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	culpritColor = color.New(color.Bold, color.Underline)
)
