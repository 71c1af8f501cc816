package cmdl

import (
	"fmt"
	"strconv"
	"strings"
)

// EvalExpression evaluates a small arithmetic/boolean expression in a
// sandbox: the only names it can resolve are variables from the store
// (unknown identifiers resolve to 0), and there are no function calls
// or attribute lookups. A single '=' acts as an equality test; `and`,
// `or` and `not` are the boolean operators. Evaluation failures
// surface as ErrExpression carrying the original text.
func EvalExpression(expr string, vars *State) (Value, error) {
	ev := &exprEval{vars: vars}
	if err := ev.tokenize(expr); err != nil {
		return Value{}, exprError(expr, err)
	}
	v, err := ev.parseOr(true)
	if err != nil {
		return Value{}, exprError(expr, err)
	}
	if ev.peek().kind != tokEOF {
		return Value{}, exprError(expr, fmt.Errorf("unexpected %q", ev.peek().text))
	}
	return v, nil
}

func exprError(expr string, cause error) error {
	return &ScriptError{
		Kind:    ErrExpression,
		Message: cause.Error(),
		Text:    expr,
	}
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNumber
	tokString
	tokIdent
	tokOp
)

type exprToken struct {
	kind tokKind
	text string
	num  float64
}

// exprEval is a recursive-descent parser that evaluates as it parses.
// The live flag threaded through the parse methods turns off semantic
// evaluation inside short-circuited operands, so a dead branch is
// still required to parse but cannot fail at runtime.
type exprEval struct {
	toks []exprToken
	pos  int
	vars *State
}

func (ev *exprEval) tokenize(src string) error {
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			n, err := strconv.ParseFloat(src[i:j], 64)
			if err != nil {
				return fmt.Errorf("bad number %q", src[i:j])
			}
			ev.toks = append(ev.toks, exprToken{kind: tokNumber, text: src[i:j], num: n})
			i = j
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(src) && src[j] != c {
				j++
			}
			if j >= len(src) {
				return fmt.Errorf("unterminated string")
			}
			ev.toks = append(ev.toks, exprToken{kind: tokString, text: src[i+1 : j]})
			i = j + 1
		case c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			j := i
			for j < len(src) && (src[j] == '_' ||
				src[j] >= 'a' && src[j] <= 'z' ||
				src[j] >= 'A' && src[j] <= 'Z' ||
				src[j] >= '0' && src[j] <= '9') {
				j++
			}
			ev.toks = append(ev.toks, exprToken{kind: tokIdent, text: src[i:j]})
			i = j
		default:
			if op, n := matchOperator(src[i:]); n > 0 {
				ev.toks = append(ev.toks, exprToken{kind: tokOp, text: op})
				i += n
			} else {
				return fmt.Errorf("unexpected character %q", string(c))
			}
		}
	}
	ev.toks = append(ev.toks, exprToken{kind: tokEOF})
	return nil
}

var operators = []string{"==", "!=", "<=", ">=", "<", ">", "=", "+", "-", "*", "/", "(", ")"}

func matchOperator(src string) (string, int) {
	for _, op := range operators {
		if strings.HasPrefix(src, op) {
			return op, len(op)
		}
	}
	return "", 0
}

func (ev *exprEval) peek() exprToken {
	return ev.toks[ev.pos]
}

func (ev *exprEval) next() exprToken {
	t := ev.toks[ev.pos]
	if t.kind != tokEOF {
		ev.pos++
	}
	return t
}

func (ev *exprEval) acceptOp(ops ...string) (string, bool) {
	t := ev.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			ev.pos++
			return op, true
		}
	}
	return "", false
}

func (ev *exprEval) acceptKeyword(word string) bool {
	t := ev.peek()
	if t.kind == tokIdent && t.text == word {
		ev.pos++
		return true
	}
	return false
}

func (ev *exprEval) parseOr(live bool) (Value, error) {
	result, err := ev.parseAnd(live)
	if err != nil {
		return Value{}, err
	}
	for ev.acceptKeyword("or") {
		if live && result.Truthy() {
			// Short-circuit: the rest still has to parse.
			if _, err := ev.parseAnd(false); err != nil {
				return Value{}, err
			}
			continue
		}
		result, err = ev.parseAnd(live)
		if err != nil {
			return Value{}, err
		}
	}
	return result, nil
}

func (ev *exprEval) parseAnd(live bool) (Value, error) {
	result, err := ev.parseNot(live)
	if err != nil {
		return Value{}, err
	}
	for ev.acceptKeyword("and") {
		if live && !result.Truthy() {
			if _, err := ev.parseNot(false); err != nil {
				return Value{}, err
			}
			continue
		}
		result, err = ev.parseNot(live)
		if err != nil {
			return Value{}, err
		}
	}
	return result, nil
}

func (ev *exprEval) parseNot(live bool) (Value, error) {
	if ev.acceptKeyword("not") {
		v, err := ev.parseNot(live)
		if err != nil {
			return Value{}, err
		}
		return boolValue(!v.Truthy()), nil
	}
	return ev.parseComparison(live)
}

// parseComparison chains comparisons the Python way: a < b < c means
// a < b and b < c, with each operand evaluated once and links after a
// failed one short-circuited.
func (ev *exprEval) parseComparison(live bool) (Value, error) {
	left, err := ev.parseSum(live)
	if err != nil {
		return Value{}, err
	}
	op, ok := ev.acceptOp("==", "!=", "<=", ">=", "<", ">", "=")
	if !ok {
		return left, nil
	}
	holds := true
	prev := left
	for {
		linkLive := live && holds
		right, err := ev.parseSum(linkLive)
		if err != nil {
			return Value{}, err
		}
		if linkLive {
			v, err := compareValues(op, prev, right)
			if err != nil {
				return Value{}, err
			}
			holds = v.Truthy()
		}
		prev = right
		op, ok = ev.acceptOp("==", "!=", "<=", ">=", "<", ">", "=")
		if !ok {
			break
		}
	}
	return boolValue(holds), nil
}

func (ev *exprEval) parseSum(live bool) (Value, error) {
	left, err := ev.parseTerm(live)
	if err != nil {
		return Value{}, err
	}
	for {
		op, ok := ev.acceptOp("+", "-")
		if !ok {
			return left, nil
		}
		right, err := ev.parseTerm(live)
		if err != nil {
			return Value{}, err
		}
		if !live {
			continue
		}
		left, err = addSubValues(op, left, right)
		if err != nil {
			return Value{}, err
		}
	}
}

func (ev *exprEval) parseTerm(live bool) (Value, error) {
	left, err := ev.parseUnary(live)
	if err != nil {
		return Value{}, err
	}
	for {
		op, ok := ev.acceptOp("*", "/")
		if !ok {
			return left, nil
		}
		right, err := ev.parseUnary(live)
		if err != nil {
			return Value{}, err
		}
		if !live {
			continue
		}
		left, err = mulDivValues(op, left, right)
		if err != nil {
			return Value{}, err
		}
	}
}

func (ev *exprEval) parseUnary(live bool) (Value, error) {
	if op, ok := ev.acceptOp("-", "+"); ok {
		v, err := ev.parseUnary(live)
		if err != nil {
			return Value{}, err
		}
		if !live {
			return v, nil
		}
		n, ok := v.AsNumber()
		if !ok {
			return Value{}, fmt.Errorf("unary %s needs a number", op)
		}
		if op == "-" {
			n = -n
		}
		return Number(n), nil
	}
	return ev.parsePrimary(live)
}

func (ev *exprEval) parsePrimary(live bool) (Value, error) {
	t := ev.next()
	switch t.kind {
	case tokNumber:
		return Number(t.num), nil
	case tokString:
		return Text(t.text), nil
	case tokIdent:
		switch t.text {
		case "and", "or", "not":
			return Value{}, fmt.Errorf("unexpected keyword %q", t.text)
		}
		if !live {
			return Number(0), nil
		}
		return ev.resolveIdent(t.text), nil
	case tokOp:
		if t.text == "(" {
			v, err := ev.parseOr(live)
			if err != nil {
				return Value{}, err
			}
			if _, ok := ev.acceptOp(")"); !ok {
				return Value{}, fmt.Errorf("missing closing parenthesis")
			}
			return v, nil
		}
		return Value{}, fmt.Errorf("unexpected %q", t.text)
	default:
		return Value{}, fmt.Errorf("unexpected end of expression")
	}
}

// resolveIdent resolves an identifier in expression context: unknown
// names become 0, and text values holding a numeral behave as the
// number they spell.
func (ev *exprEval) resolveIdent(name string) Value {
	v, ok := ev.vars.Get(name)
	if !ok {
		return Number(0)
	}
	if v.Kind == TextKind {
		if n, numeric := parseNumber(v.Str); numeric {
			return Number(n)
		}
	}
	return v
}

func boolValue(b bool) Value {
	if b {
		return Number(1)
	}
	return Number(0)
}

func compareValues(op string, left, right Value) (Value, error) {
	switch op {
	case "==", "=":
		return boolValue(left.Equal(right)), nil
	case "!=":
		return boolValue(!left.Equal(right)), nil
	}
	// Ordering needs matching kinds.
	if left.Kind == NumberKind && right.Kind == NumberKind {
		return boolValue(orderedCompare(op, left.Num, right.Num)), nil
	}
	if left.Kind == TextKind && right.Kind == TextKind {
		return boolValue(orderedCompareText(op, left.Str, right.Str)), nil
	}
	return Value{}, fmt.Errorf("cannot order number against text with %s", op)
}

func orderedCompare(op string, a, b float64) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func orderedCompareText(op string, a, b string) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func addSubValues(op string, left, right Value) (Value, error) {
	if left.Kind == TextKind && right.Kind == TextKind {
		if op == "+" {
			return Text(left.Str + right.Str), nil
		}
		return Value{}, fmt.Errorf("cannot subtract text")
	}
	if left.Kind == NumberKind && right.Kind == NumberKind {
		if op == "+" {
			return Number(left.Num + right.Num), nil
		}
		return Number(left.Num - right.Num), nil
	}
	return Value{}, fmt.Errorf("cannot mix number and text with %s", op)
}

func mulDivValues(op string, left, right Value) (Value, error) {
	if left.Kind != NumberKind || right.Kind != NumberKind {
		return Value{}, fmt.Errorf("%s needs numbers", op)
	}
	if op == "*" {
		return Number(left.Num * right.Num), nil
	}
	if right.Num == 0 {
		return Value{}, fmt.Errorf("division by zero")
	}
	return Number(left.Num / right.Num), nil
}
