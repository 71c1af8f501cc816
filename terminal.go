package cmdl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// Terminal is the effects sink for script output: line writes, color
// changes, screen clearing, blocking input and sleeps. The engine
// treats it as opaque; tests substitute an in-memory implementation.
type Terminal interface {
	WriteLine(text string)
	SetColor(name string)
	SetColorRGB(r, g, b int)
	ClearScreen()
	ReadLine(prompt string) (string, error)
	Sleep(seconds float64)
}

// ansiColors maps the color names scripts may use to ANSI SGR codes.
var ansiColors = map[string]string{
	"black":   "30",
	"red":     "31",
	"green":   "32",
	"yellow":  "33",
	"blue":    "34",
	"purple":  "35",
	"magenta": "35",
	"cyan":    "36",
	"white":   "37",
	"brown":   "33",
	"orange":  "33",
	"pink":    "95",
}

// ANSITerminal writes to an io.Writer using ANSI escape sequences.
// Escape emission is suppressed when the output is not an interactive
// terminal, so piped output stays clean.
type ANSITerminal struct {
	out         io.Writer
	in          *bufio.Reader
	ansiEnabled bool
}

// NewANSITerminal creates a terminal sink on the process stdio,
// detecting whether stdout is an interactive terminal.
func NewANSITerminal() *ANSITerminal {
	return &ANSITerminal{
		out:         os.Stdout,
		in:          bufio.NewReader(os.Stdin),
		ansiEnabled: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// NewANSITerminalWriter creates a terminal sink on explicit streams.
// ansi controls whether escape sequences are emitted.
func NewANSITerminalWriter(out io.Writer, in io.Reader, ansi bool) *ANSITerminal {
	return &ANSITerminal{
		out:         out,
		in:          bufio.NewReader(in),
		ansiEnabled: ansi,
	}
}

// WriteLine writes one line of script output.
func (t *ANSITerminal) WriteLine(text string) {
	fmt.Fprintln(t.out, text)
}

// SetColor switches the foreground color by name. Unrecognized names
// reset attributes to the default.
func (t *ANSITerminal) SetColor(name string) {
	if !t.ansiEnabled {
		return
	}
	if code, ok := ansiColors[name]; ok {
		fmt.Fprintf(t.out, "\x1b[%sm", code)
		return
	}
	fmt.Fprint(t.out, "\x1b[0m")
}

// SetColorRGB switches the foreground to a truecolor value.
func (t *ANSITerminal) SetColorRGB(r, g, b int) {
	if !t.ansiEnabled {
		return
	}
	fmt.Fprintf(t.out, "\x1b[38;2;%d;%d;%dm", r, g, b)
}

// ClearScreen clears the display and homes the cursor.
func (t *ANSITerminal) ClearScreen() {
	if !t.ansiEnabled {
		return
	}
	fmt.Fprint(t.out, "\x1b[2J\x1b[H")
}

// ReadLine prints a prompt and blocks for one line of input.
func (t *ANSITerminal) ReadLine(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}

// Sleep suspends execution for the given number of seconds.
func (t *ANSITerminal) Sleep(seconds float64) {
	time.Sleep(time.Duration(seconds * float64(time.Second)))
}
