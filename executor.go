package cmdl

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// stmtRe splits a statement into a command name, an optional
// parenthesized argument list and optional trailing text. The
// parenthesized form wins when both are present.
var stmtRe = regexp.MustCompile(`^([A-Za-z_]\w*)(?:\(([^)]*)\))?(?:\s+(.*))?$`)

// Executor walks the script tree, dispatches commands and implements
// non-local control transfer. It owns the label table and the step
// counter for exactly one run at a time.
type Executor struct {
	mu       sync.RWMutex
	commands map[string]Handler
	fallback FallbackHandler

	logger    *Logger
	term      Terminal
	stepLimit int

	labels map[string]JumpTarget
	steps  int
}

// NewExecutor creates a new execution engine.
func NewExecutor(logger *Logger, term Terminal, stepLimit int) *Executor {
	return &Executor{
		commands:  make(map[string]Handler),
		logger:    logger,
		term:      term,
		stepLimit: stepLimit,
	}
}

// RegisterCommand registers a command handler.
func (e *Executor) RegisterCommand(name string, handler Handler) {
	e.mu.Lock()
	e.commands[strings.ToLower(name)] = handler
	e.mu.Unlock()
	e.logger.Debug("Registered command: %s", name)
}

// UnregisterCommand removes a command from the registry.
func (e *Executor) UnregisterCommand(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	name = strings.ToLower(name)
	if _, exists := e.commands[name]; exists {
		delete(e.commands, name)
		e.logger.Debug("Unregistered command: %s", name)
		return true
	}
	e.logger.Warn("Attempted to unregister unknown command: %s", name)
	return false
}

// SetFallbackHandler sets a handler consulted for unknown commands
// before the unknown-command diagnostic fires.
func (e *Executor) SetFallbackHandler(handler FallbackHandler) {
	e.mu.Lock()
	e.fallback = handler
	e.mu.Unlock()
}

// Context is passed to command handlers during execution.
type Context struct {
	// Args is the raw argument text of the statement.
	Args string
	// Raw is the full statement text, for diagnostics.
	Raw string
	// Line is the statement's source line.
	Line int

	state *State
	exec  *Executor
}

// Terminal returns the effects sink of the running engine.
func (c *Context) Terminal() Terminal {
	return c.exec.term
}

// Logger returns the engine's logger.
func (c *Context) Logger() *Logger {
	return c.exec.logger
}

// SetVar stores a variable.
func (c *Context) SetVar(name string, v Value) {
	c.state.Set(name, v)
}

// LookupVar returns a variable's value if it is defined.
func (c *Context) LookupVar(name string) (Value, bool) {
	return c.state.Get(name)
}

// ResolveVar resolves a variable in plain-value context: unknown
// identifiers become empty text.
func (c *Context) ResolveVar(name string) Value {
	return c.state.Resolve(name)
}

// Eval evaluates an expression against the current variable store.
func (c *Context) Eval(expr string) (Value, error) {
	v, err := EvalExpression(expr, c.state)
	if err != nil {
		if se, ok := err.(*ScriptError); ok && se.Line == 0 {
			se.Line = c.Line
		}
		return Value{}, err
	}
	return v, nil
}

// Run executes a parsed program against a fresh-for-this-run variable
// store. It returns whether the script issued exit, and the fatal
// error if one aborted the run.
func (e *Executor) Run(prog *Program, state *State) (exited bool, err error) {
	e.labels = e.indexLabels(prog.Root)
	e.steps = 0

	cur, idx := prog.Root, 0
	for idx < len(cur) {
		sig, err := e.runNode(cur[idx], state)
		if err != nil {
			return false, err
		}
		switch s := sig.(type) {
		case JumpSignal:
			cur, idx = s.List, s.Index
			continue
		case GotoSignal:
			tgt, ok := e.lookupLabel(s.Label)
			if !ok {
				return false, unknownLabelError(s.Label, cur[idx].NodeLine())
			}
			cur, idx = tgt.List, tgt.Index
			continue
		case ExitSignal:
			return true, nil
		}
		idx++
	}
	return false, nil
}

// indexLabels is the pre-order post-pass that records, for every
// label at any nesting depth, the position immediately after it.
// Duplicate names overwrite the earlier entry.
func (e *Executor) indexLabels(root []Node) map[string]JumpTarget {
	labels := make(map[string]JumpTarget)
	e.indexLabelList(root, labels)
	return labels
}

func (e *Executor) indexLabelList(list []Node, labels map[string]JumpTarget) {
	for i, n := range list {
		switch node := n.(type) {
		case *LabelNode:
			if _, dup := labels[node.Name]; dup {
				e.logger.Debug("Label %s redefined at line %d", node.Name, node.Line)
			}
			labels[node.Name] = JumpTarget{List: list, Index: i + 1}
		case *LoopNode:
			e.indexLabelList(node.Body, labels)
		case *CondNode:
			for _, arm := range node.Arms {
				e.indexLabelList(arm.Body, labels)
			}
		}
	}
}

func (e *Executor) lookupLabel(name string) (JumpTarget, bool) {
	tgt, ok := e.labels[name]
	return tgt, ok
}

func unknownLabelError(label string, line int) error {
	return &ScriptError{
		Kind:    ErrUnknownLabel,
		Message: fmt.Sprintf("no label named %q", label),
		Line:    line,
		Text:    label,
	}
}

// runList executes a statement list from start. A goto from any
// statement resolves here into a jump, which the caller must
// propagate unchanged; it never resumes this list.
func (e *Executor) runList(list []Node, start int, state *State) (Signal, error) {
	for i := start; i < len(list); i++ {
		sig, err := e.runNode(list[i], state)
		if err != nil {
			return nil, err
		}
		switch s := sig.(type) {
		case GotoSignal:
			tgt, ok := e.lookupLabel(s.Label)
			if !ok {
				return nil, unknownLabelError(s.Label, list[i].NodeLine())
			}
			return JumpSignal{List: tgt.List, Index: tgt.Index}, nil
		case JumpSignal, ReturnSignal, ExitSignal:
			return sig, nil
		}
	}
	return ContinueSignal{}, nil
}

// chargeStep advances the step counter and trips the ceiling.
func (e *Executor) chargeStep(node Node) error {
	e.steps++
	if e.steps > e.stepLimit {
		return &ScriptError{
			Kind:    ErrStepLimit,
			Message: "possible infinite loop",
			Line:    node.NodeLine(),
		}
	}
	return nil
}

// runNode executes one node and charges it against the step ceiling.
// The ceiling applies uniformly to all repetition, not just the
// outermost dispatch loop.
func (e *Executor) runNode(node Node, state *State) (Signal, error) {
	if err := e.chargeStep(node); err != nil {
		return nil, err
	}

	switch n := node.(type) {
	case *LabelNode:
		return ContinueSignal{}, nil
	case *StmtNode:
		return e.execStatement(n, state)
	case *LoopNode:
		return e.runLoop(n, state)
	case *CondNode:
		return e.runConditional(n, state)
	default:
		return ContinueSignal{}, nil
	}
}

// runLoop repeats the loop body. Jumps and exits propagate unchanged;
// a return signal escapes this loop and nothing above it. Each body
// pass is charged as a step of its own, so a loop with an empty body
// still trips the ceiling instead of spinning uncharged.
func (e *Executor) runLoop(n *LoopNode, state *State) (Signal, error) {
	if !n.HasCount {
		for {
			if err := e.chargeStep(n); err != nil {
				return nil, err
			}
			sig, err := e.runList(n.Body, 0, state)
			if err != nil {
				return nil, err
			}
			switch sig.(type) {
			case JumpSignal, ExitSignal:
				return sig, nil
			case ReturnSignal:
				return ContinueSignal{}, nil
			}
		}
	}

	count := e.resolveLoopCount(n, state)
	for i := 0; i < count; i++ {
		if err := e.chargeStep(n); err != nil {
			return nil, err
		}
		sig, err := e.runList(n.Body, 0, state)
		if err != nil {
			return nil, err
		}
		switch sig.(type) {
		case JumpSignal, ExitSignal:
			return sig, nil
		case ReturnSignal:
			return ContinueSignal{}, nil
		}
	}
	return ContinueSignal{}, nil
}

// resolveLoopCount resolves a counted loop's repeat count once, at
// loop entry: a numeric literal, or the current value of a named
// variable, truncated to an integer. Unknown variables count as 0.
func (e *Executor) resolveLoopCount(n *LoopNode, state *State) int {
	if num, ok := parseNumber(n.Count); ok {
		return int(num)
	}
	v, ok := state.Get(n.Count)
	if !ok {
		return 0
	}
	num, ok := v.AsNumber()
	if !ok {
		return 0
	}
	return int(num)
}

// runConditional tries the arms in order and executes the body of the
// first arm whose condition is truthy, or the else arm if reached.
func (e *Executor) runConditional(n *CondNode, state *State) (Signal, error) {
	for _, arm := range n.Arms {
		take := arm.Kind == ArmElse
		if !take {
			v, err := EvalExpression(arm.Cond, state)
			if err != nil {
				if se, ok := err.(*ScriptError); ok && se.Line == 0 {
					se.Line = arm.Line
				}
				return nil, err
			}
			take = v.Truthy()
		}
		if !take {
			continue
		}
		sig, err := e.runList(arm.Body, 0, state)
		if err != nil {
			return nil, err
		}
		switch sig.(type) {
		case JumpSignal, ReturnSignal, ExitSignal:
			return sig, nil
		}
		return ContinueSignal{}, nil
	}
	return ContinueSignal{}, nil
}

// execStatement lazily parses a statement into command plus argument
// text and dispatches it through the registry. Unknown commands are
// the one non-fatal condition: a diagnostic, then execution continues.
func (e *Executor) execStatement(n *StmtNode, state *State) (Signal, error) {
	m := stmtRe.FindStringSubmatchIndex(n.Raw)
	if m == nil {
		e.logger.UnknownCommandError(n.Raw, n.Line, n.Raw)
		return ContinueSignal{}, nil
	}
	name := strings.ToLower(n.Raw[m[2]:m[3]])
	var args string
	if m[6] >= 0 {
		args = n.Raw[m[6]:m[7]]
	}
	// A parenthesized list wins over trailing text even when empty.
	if m[4] >= 0 {
		args = n.Raw[m[4]:m[5]]
	}

	e.mu.RLock()
	handler, exists := e.commands[name]
	fallback := e.fallback
	e.mu.RUnlock()

	ctx := &Context{
		Args:  args,
		Raw:   n.Raw,
		Line:  n.Line,
		state: state,
		exec:  e,
	}

	if !exists && fallback != nil {
		sig, err := fallback(name, args, ctx)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig, nil
		}
	}

	if !exists {
		e.logger.UnknownCommandError(name, n.Line, n.Raw)
		return ContinueSignal{}, nil
	}

	e.logger.Debug("Executing %s with args: %q", name, args)
	return handler(ctx)
}
