package config

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

type TerminalIO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Columns overrides the detected width of Stdout when positive.
	Columns int
}

var DefaultTermIO = TerminalIO{
	Stdin:  os.Stdin,
	Stdout: os.Stdout,
	Stderr: os.Stderr,
}

// IsTerminal reports whether Stdout is an interactive terminal.
func (t *TerminalIO) IsTerminal() bool {
	return isTTY(t.Stdout)
}

// Width returns the column count of Stdout, or 0 if Stdout is not a
// terminal.
func (t *TerminalIO) Width() int {
	if t.Columns > 0 {
		return t.Columns
	}
	if !t.IsTerminal() {
		return 0
	}
	f := t.Stdout.(*os.File)
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// StdinPiped reports whether Stdin is a file or pipe rather than a terminal.
func (t *TerminalIO) StdinPiped() bool {
	if t.Stdin == nil {
		return false
	}
	return !isTTY(t.Stdin)
}

func isTTY(v interface{}) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
