package cmdl

import (
	"fmt"
	"io"
	"os"
)

// Logger handles diagnostic output for the interpreter.
type Logger struct {
	enabled bool
	out     io.Writer
	errOut  io.Writer
}

// NewLogger creates a new logger.
func NewLogger(enabled bool) *Logger {
	return &Logger{
		enabled: enabled,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
}

// SetOutput redirects logger output, mainly for tests and embedding.
func (l *Logger) SetOutput(out, errOut io.Writer) {
	if out != nil {
		l.out = out
	}
	if errOut != nil {
		l.errOut = errOut
	}
}

// SetEnabled enables or disables debug logging.
func (l *Logger) SetEnabled(enabled bool) {
	l.enabled = enabled
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.enabled {
		fmt.Fprintf(l.out, "[DEBUG] "+format+"\n", args...)
	}
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.enabled {
		fmt.Fprintf(l.errOut, "[CMDL WARN] "+format+"\n", args...)
	}
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.enabled {
		fmt.Fprintf(l.errOut, "[CMDL ERROR] "+format+"\n", args...)
	}
}

// ParseError logs a parse error (always visible).
func (l *Logger) ParseError(message string, line int, text string) {
	errorOutput := fmt.Sprintf("[CMDL ERROR] Parse error: %s", message)
	if line > 0 {
		errorOutput += fmt.Sprintf("\n  at line %d", line)
	}
	if text != "" {
		errorOutput += fmt.Sprintf("\n  Source: %s", text)
	}
	fmt.Fprintln(l.errOut, errorOutput)
}

// UnknownCommandError logs an unknown command diagnostic (always
// visible). Unknown commands are non-fatal; execution continues.
func (l *Logger) UnknownCommandError(commandName string, line int, raw string) {
	errorOutput := fmt.Sprintf("[CMDL ERROR] Unknown command: %s", commandName)
	if line > 0 {
		errorOutput += fmt.Sprintf(" at line %d", line)
	}
	if raw != "" {
		errorOutput += fmt.Sprintf("\n  Source: %s", raw)
	}
	fmt.Fprintln(l.errOut, errorOutput)
}

// RuntimeError reports a fatal script error before the run aborts.
func (l *Logger) RuntimeError(err error) {
	if se, ok := err.(*ScriptError); ok && se.Line > 0 {
		fmt.Fprintf(l.errOut, "[CMDL ERROR] %s\n  at line %d\n", se.Error(), se.Line)
		return
	}
	fmt.Fprintf(l.errOut, "[CMDL ERROR] %s\n", err.Error())
}
