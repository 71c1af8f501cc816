package cmdl

import (
	"regexp"
	"strings"
)

// indentUnit is the number of leading spaces that count as one
// indentation level. A tab counts as one level on its own.
const indentUnit = 4

var (
	labelRe = regexp.MustCompile(`^([A-Za-z_]\w*)\(\):\s*$`)
	loopRe  = regexp.MustCompile(`^loop(?:\(([^)]*)\))?:\s*$`)
	condRe  = regexp.MustCompile(`^(if|elif)\s+(.+?):\s*$`)
	elseRe  = regexp.MustCompile(`^else:\s*$`)
)

// indentLevel computes a line's indentation depth: the count of
// leading tabs for tab-indented lines, otherwise leading spaces
// divided by indentUnit. A non-multiple of indentUnit rounds down;
// this tolerance is intentional.
func indentLevel(line string) int {
	if strings.HasPrefix(line, "\t") {
		n := 0
		for n < len(line) && line[n] == '\t' {
			n++
		}
		return n
	}
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n / indentUnit
}

// frame is one level of the tree builder's indentation stack: the
// depth that opened the block and the statement list its body nodes
// are appended to.
type frame struct {
	depth int
	list  *[]Node
}

// Parse builds the script tree from newline-separated source text.
// Blank lines and lines whose first non-space character is '#' are
// invisible to the builder.
func Parse(source string) (*Program, error) {
	prog := &Program{}
	stack := []frame{{depth: -1, list: &prog.Root}}

	for lineNo, raw := range strings.Split(source, "\n") {
		lineNum := lineNo + 1
		raw = strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		// Close blocks whose body has ended.
		depth := indentLevel(raw)
		for len(stack) > 1 && depth <= stack[len(stack)-1].depth {
			stack = stack[:len(stack)-1]
		}
		cur := stack[len(stack)-1].list
		stripped := strings.TrimLeft(raw, " \t")

		if m := labelRe.FindStringSubmatch(stripped); m != nil {
			*cur = append(*cur, &LabelNode{Name: m[1], Raw: stripped, Line: lineNum})
			continue
		}

		if m := loopRe.FindStringSubmatch(stripped); m != nil {
			node := &LoopNode{Raw: stripped, Line: lineNum}
			if param := strings.TrimSpace(m[1]); param != "" {
				node.Count = param
				node.HasCount = true
			}
			*cur = append(*cur, node)
			stack = append(stack, frame{depth: depth, list: &node.Body})
			continue
		}

		if m := condRe.FindStringSubmatch(stripped); m != nil {
			arm := &CondArm{Cond: strings.TrimSpace(m[2]), Raw: stripped, Line: lineNum}
			if m[1] == "if" {
				arm.Kind = ArmIf
				node := &CondNode{Arms: []*CondArm{arm}, Line: lineNum}
				*cur = append(*cur, node)
			} else {
				arm.Kind = ArmElif
				cond, err := openConditional(*cur, stripped, lineNum)
				if err != nil {
					return nil, err
				}
				cond.Arms = append(cond.Arms, arm)
			}
			stack = append(stack, frame{depth: depth, list: &arm.Body})
			continue
		}

		if elseRe.MatchString(stripped) {
			arm := &CondArm{Kind: ArmElse, Raw: stripped, Line: lineNum}
			cond, err := openConditional(*cur, stripped, lineNum)
			if err != nil {
				return nil, err
			}
			cond.Arms = append(cond.Arms, arm)
			stack = append(stack, frame{depth: depth, list: &arm.Body})
			continue
		}

		*cur = append(*cur, &StmtNode{Raw: stripped, Line: lineNum})
	}

	return prog, nil
}

// openConditional finds the conditional chain an elif/else header
// attaches to. Only the immediately preceding sibling counts, and a
// chain closed by an else arm cannot be reopened.
func openConditional(list []Node, raw string, line int) (*CondNode, error) {
	if len(list) > 0 {
		if cond, ok := list[len(list)-1].(*CondNode); ok {
			if cond.Arms[len(cond.Arms)-1].Kind != ArmElse {
				return cond, nil
			}
		}
	}
	return nil, &ScriptError{
		Kind:    ErrOrphanControlHeader,
		Message: "no open conditional to attach to",
		Line:    line,
		Text:    raw,
	}
}
