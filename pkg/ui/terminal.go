package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ANSI color codes
const (
	cyan    = "\033[36m"
	yellow  = "\033[33m"
	red     = "\033[31m"
	green   = "\033[32m"
	magenta = "\033[35m"
	dim     = "\033[2m"
	reset   = "\033[0m"
)

// Console prints colored messages when writing to a terminal and plain
// text otherwise
type Console struct {
	out   io.Writer
	color bool
}

// NewConsole creates a Console on out. Colors are used only when out is a
// terminal and NO_COLOR is unset.
func NewConsole(out io.Writer) *Console {
	color := false
	if f, ok := out.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Console{out: out, color: color}
}

func (c *Console) paint(code, text string) string {
	if !c.color {
		return text
	}
	return code + text + reset
}

// Error prints an error message in red
func (c *Console) Error(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(c.out, c.paint(red, msg))
}

// Success prints a success message in green
func (c *Console) Success(msg string) {
	fmt.Fprintln(c.out, c.paint(green, msg))
}

// Info prints a label and value
func (c *Console) Info(label string, value string) {
	fmt.Fprintf(c.out, "%s: %s\n", c.paint(cyan, label), c.paint(yellow, value))
}

// Warning prints a warning message in yellow
func (c *Console) Warning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(c.out, c.paint(yellow, msg))
}

// Highlight prints a highlighted message in magenta
func (c *Console) Highlight(msg string) {
	fmt.Fprintln(c.out, c.paint(magenta, msg))
}

// Dim prints a de-emphasized message
func (c *Console) Dim(msg string) {
	fmt.Fprintln(c.out, c.paint(dim, msg))
}
