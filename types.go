package cmdl

// Node is one element of the parsed script tree.
type Node interface {
	isNode()
	// NodeLine returns the 1-based source line the node started on.
	NodeLine() int
}

// LabelNode is a jump target. It has no children and no runtime effect;
// the label index records the position immediately after it.
type LabelNode struct {
	Name string
	Raw  string
	Line int
}

func (*LabelNode) isNode()         {}
func (n *LabelNode) NodeLine() int { return n.Line }

// LoopNode repeats its body. Count is the raw loop parameter text (a
// numeric literal or a variable name), resolved once at loop entry;
// HasCount false means the loop is infinite.
type LoopNode struct {
	Count    string
	HasCount bool
	Body     []Node
	Raw      string
	Line     int
}

func (*LoopNode) isNode()         {}
func (n *LoopNode) NodeLine() int { return n.Line }

// ArmKind distinguishes the arms of a conditional chain.
type ArmKind int

const (
	ArmIf ArmKind = iota
	ArmElif
	ArmElse
)

// CondArm is one if/elif/else arm. Cond is empty for ArmElse.
type CondArm struct {
	Kind ArmKind
	Cond string
	Body []Node
	Raw  string
	Line int
}

// CondNode groups a chain of consecutive if/elif/else arms. The first
// arm is always ArmIf; an ArmElse arm, if present, is last.
type CondNode struct {
	Arms []*CondArm
	Line int
}

func (*CondNode) isNode()         {}
func (n *CondNode) NodeLine() int { return n.Line }

// StmtNode is an uninterpreted command line, parsed lazily at
// execution time into a command name plus argument text.
type StmtNode struct {
	Raw  string
	Line int
}

func (*StmtNode) isNode()         {}
func (n *StmtNode) NodeLine() int { return n.Line }

// Program is the root statement list of a parsed script. The tree is
// immutable once built.
type Program struct {
	Root []Node
}

// JumpTarget is a resolved label position: the containing statement
// list and the index of the first node after the label.
type JumpTarget struct {
	List  []Node
	Index int
}

// Signal is the outcome of executing one node. Loop and conditional
// dispatchers must re-propagate JumpSignal, ReturnSignal and
// ExitSignal unchanged rather than swallow them.
type Signal interface {
	isSignal()
}

// ContinueSignal is ordinary fallthrough to the next sibling.
type ContinueSignal struct{}

func (ContinueSignal) isSignal() {}

// GotoSignal is produced by the goto command and carries the
// unresolved label name. The list walker resolves it against the
// label table into a JumpSignal.
type GotoSignal struct {
	Label string
}

func (GotoSignal) isSignal() {}

// JumpSignal redirects execution to a resolved label position. Every
// enclosing loop iteration is abandoned on the way up.
type JumpSignal struct {
	List  []Node
	Index int
}

func (JumpSignal) isSignal() {}

// ReturnSignal escapes the nearest enclosing loop without switching
// statement lists. It is part of the signal set but not exposed as a
// user statement.
type ReturnSignal struct{}

func (ReturnSignal) isSignal() {}

// ExitSignal terminates the whole run immediately.
type ExitSignal struct{}

func (ExitSignal) isSignal() {}

// Handler is a function that executes a command.
type Handler func(*Context) (Signal, error)

// FallbackHandler is consulted for command names missing from the
// registry. Returning a nil Signal means the command stays unknown.
type FallbackHandler func(name, args string, ctx *Context) (Signal, error)

// Config holds configuration for the interpreter.
type Config struct {
	Debug     bool
	StepLimit int
	// Terminal receives all script output and effects. Nil selects an
	// ANSI terminal on the process stdio.
	Terminal Terminal
}

// DefaultConfig returns default configuration.
func DefaultConfig() *Config {
	return &Config{
		Debug:     false,
		StepLimit: 10000,
	}
}

// ErrorKind classifies fatal interpreter errors.
type ErrorKind int

const (
	ErrSyntax ErrorKind = iota
	ErrExpression
	ErrUnknownLabel
	ErrStepLimit
	ErrOrphanControlHeader
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax error"
	case ErrExpression:
		return "bad expression"
	case ErrUnknownLabel:
		return "unknown label"
	case ErrStepLimit:
		return "step limit exceeded"
	case ErrOrphanControlHeader:
		return "orphan control header"
	default:
		return "error"
	}
}

// ScriptError is a fatal error with the offending construct attached.
type ScriptError struct {
	Kind    ErrorKind
	Message string
	Line    int
	Text    string
}

func (e *ScriptError) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Text != "" {
		msg += " (" + e.Text + ")"
	}
	return msg
}

// IsKind reports whether err is a *ScriptError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	se, ok := err.(*ScriptError)
	return ok && se.Kind == kind
}
