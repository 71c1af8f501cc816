// Package cmdl provides an interpreter for CMDL, a small
// indentation-structured scripting language with variables,
// arithmetic and boolean expressions, if/elif/else chains, counted
// and infinite loops, and labels with goto that may jump across
// block boundaries.
//
// Basic usage:
//
//	interp := cmdl.New(nil)
//	interp.RunScript(`text "Hello, World!"`)
//
// Host applications can extend the language through RegisterCommand;
// the built-in commands go through the same registry.
package cmdl

import (
	"fmt"
	"os"
)

// Interp is the main interpreter instance.
type Interp struct {
	config   *Config
	logger   *Logger
	executor *Executor
}

// New creates a new interpreter.
func New(config *Config) *Interp {
	if config == nil {
		config = DefaultConfig()
	}
	if config.StepLimit <= 0 {
		config.StepLimit = DefaultConfig().StepLimit
	}

	logger := NewLogger(config.Debug)
	terminal := config.Terminal
	if terminal == nil {
		terminal = NewANSITerminal()
	}

	in := &Interp{
		config:   config,
		logger:   logger,
		executor: NewExecutor(logger, terminal, config.StepLimit),
	}
	in.registerBuiltins()
	return in
}

// Logger returns the interpreter's logger.
func (in *Interp) Logger() *Logger {
	return in.logger
}

// RegisterCommand registers a command handler. Registering an
// existing name, including a built-in, replaces it.
func (in *Interp) RegisterCommand(name string, handler Handler) {
	in.executor.RegisterCommand(name, handler)
}

// UnregisterCommand removes a command from the registry.
func (in *Interp) UnregisterCommand(name string) bool {
	return in.executor.UnregisterCommand(name)
}

// SetFallbackHandler sets a handler consulted for unknown commands.
func (in *Interp) SetFallbackHandler(handler FallbackHandler) {
	in.executor.SetFallbackHandler(handler)
}

// RunScript parses and runs a script from source text with a fresh
// variable store. It reports whether the script terminated through
// the exit command; a non-nil error means the run was aborted and
// already reported through the logger.
func (in *Interp) RunScript(source string) (exited bool, err error) {
	prog, err := Parse(source)
	if err != nil {
		if se, ok := err.(*ScriptError); ok {
			in.logger.ParseError(se.Kind.String()+": "+se.Message, se.Line, se.Text)
		} else {
			in.logger.ParseError(err.Error(), 0, "")
		}
		return false, err
	}
	return in.Run(prog)
}

// Run executes an already-parsed program with a fresh variable store.
func (in *Interp) Run(prog *Program) (exited bool, err error) {
	exited, err = in.executor.Run(prog, NewState())
	if err != nil {
		in.logger.RuntimeError(err)
	}
	return exited, err
}

// RunFile runs a script file.
func (in *Interp) RunFile(path string) (exited bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading script: %w", err)
	}
	return in.RunScript(string(data))
}
