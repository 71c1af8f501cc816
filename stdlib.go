package cmdl

import (
	"regexp"
	"strings"
)

var (
	assignRe   = regexp.MustCompile(`^([A-Za-z_]\w*)\s*=\s*(.+)$`)
	exprCharRe = regexp.MustCompile(`[+\-*/()]`)
	gotoCallRe = regexp.MustCompile(`\(\)\s*$`)
	rgbRe      = regexp.MustCompile(`(?i)^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)`)
)

// registerBuiltins registers the built-in command set through the
// same registry host applications use.
func (in *Interp) registerBuiltins() {
	in.RegisterCommand("text", cmdText)
	in.RegisterCommand("echo", cmdEcho)
	in.RegisterCommand("set", cmdSet)
	in.RegisterCommand("math", cmdMath)
	in.RegisterCommand("clear", cmdClear)
	in.RegisterCommand("goto", cmdGoto)
	in.RegisterCommand("pause", cmdPause)
	in.RegisterCommand("exit", cmdExit)
	in.RegisterCommand("color", cmdColor)
}

// cmdText concatenates its comma-separated arguments and writes one
// line: quoted pieces literally, bare identifiers as the variable's
// current value (unknown variables as empty text).
func cmdText(ctx *Context) (Signal, error) {
	var out strings.Builder
	for _, part := range splitTextArgs(ctx.Args) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if isQuoted(part) {
			out.WriteString(stripQuotes(part))
		} else {
			out.WriteString(ctx.ResolveVar(part).String())
		}
	}
	ctx.Terminal().WriteLine(out.String())
	return ContinueSignal{}, nil
}

// cmdEcho writes its raw remainder verbatim.
func cmdEcho(ctx *Context) (Signal, error) {
	ctx.Terminal().WriteLine(ctx.Args)
	return ContinueSignal{}, nil
}

// cmdSet assigns a variable: quoted text stays literal, numerals
// become numbers, anything with an arithmetic operator evaluates as
// an expression, and a bare name copies another variable (or stores
// the bare text if the name is unknown).
func cmdSet(ctx *Context) (Signal, error) {
	m := assignRe.FindStringSubmatch(strings.TrimSpace(ctx.Args))
	if m == nil {
		return nil, &ScriptError{
			Kind:    ErrSyntax,
			Message: "bad set syntax",
			Line:    ctx.Line,
			Text:    ctx.Raw,
		}
	}
	name := m[1]
	valRaw := strings.TrimSpace(m[2])

	switch {
	case isQuoted(valRaw):
		ctx.SetVar(name, Text(stripQuotes(valRaw)))
	case isNumeric(valRaw):
		n, _ := parseNumber(valRaw)
		ctx.SetVar(name, Number(n))
	case exprCharRe.MatchString(valRaw):
		v, err := ctx.Eval(valRaw)
		if err != nil {
			return nil, err
		}
		ctx.SetVar(name, v)
	default:
		if v, ok := ctx.LookupVar(valRaw); ok {
			ctx.SetVar(name, v)
		} else {
			ctx.SetVar(name, Text(valRaw))
		}
	}
	return ContinueSignal{}, nil
}

// cmdMath always evaluates the right-hand side as an expression.
func cmdMath(ctx *Context) (Signal, error) {
	m := assignRe.FindStringSubmatch(strings.TrimSpace(ctx.Args))
	if m == nil {
		return nil, &ScriptError{
			Kind:    ErrSyntax,
			Message: "bad math syntax",
			Line:    ctx.Line,
			Text:    ctx.Raw,
		}
	}
	v, err := ctx.Eval(strings.TrimSpace(m[2]))
	if err != nil {
		return nil, err
	}
	ctx.SetVar(m[1], v)
	return ContinueSignal{}, nil
}

func cmdClear(ctx *Context) (Signal, error) {
	ctx.Terminal().ClearScreen()
	return ContinueSignal{}, nil
}

// cmdGoto signals a non-local jump. Resolution against the label
// table happens in the list walker, so an undefined target aborts
// before any later statement produces output.
func cmdGoto(ctx *Context) (Signal, error) {
	label := strings.TrimSpace(ctx.Args)
	label = gotoCallRe.ReplaceAllString(label, "")
	label = strings.TrimSpace(label)
	return GotoSignal{Label: label}, nil
}

// cmdPause blocks for a line of input, or sleeps when given a number
// or a numeric-valued variable. Non-numeric unknown arguments fall
// back to blocking for input.
func cmdPause(ctx *Context) (Signal, error) {
	arg := strings.TrimSpace(ctx.Args)
	if arg == "" {
		ctx.Terminal().ReadLine("Press Enter to continue...")
		return ContinueSignal{}, nil
	}
	if n, ok := parseNumber(arg); ok {
		ctx.Terminal().Sleep(n)
		return ContinueSignal{}, nil
	}
	if v, ok := ctx.LookupVar(arg); ok {
		if n, numeric := v.AsNumber(); numeric {
			ctx.Terminal().Sleep(n)
			return ContinueSignal{}, nil
		}
	}
	ctx.Terminal().ReadLine("Press Enter to continue...")
	return ContinueSignal{}, nil
}

func cmdExit(ctx *Context) (Signal, error) {
	return ExitSignal{}, nil
}

// cmdColor sets the output color: a named color or rgb(r,g,b).
// Unrecognized names reset to the default.
func cmdColor(ctx *Context) (Signal, error) {
	arg := strings.TrimSpace(ctx.Args)
	if m := rgbRe.FindStringSubmatch(arg); m != nil {
		r := mustAtoi(m[1])
		g := mustAtoi(m[2])
		b := mustAtoi(m[3])
		ctx.Terminal().SetColorRGB(r, g, b)
		return ContinueSignal{}, nil
	}
	ctx.Terminal().SetColor(strings.ToLower(arg))
	return ContinueSignal{}, nil
}

func mustAtoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

// splitTextArgs splits a text argument list on commas, keeping
// commas inside quoted pieces intact.
func splitTextArgs(argstr string) []string {
	var parts []string
	var cur strings.Builder
	inQuote := false
	var quoteChar byte

	for i := 0; i < len(argstr); i++ {
		ch := argstr[i]
		if inQuote {
			cur.WriteByte(ch)
			if ch == quoteChar {
				inQuote = false
			}
			continue
		}
		if ch == '"' || ch == '\'' {
			inQuote = true
			quoteChar = ch
			cur.WriteByte(ch)
			continue
		}
		if ch == ',' {
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteByte(ch)
	}
	if strings.TrimSpace(cur.String()) != "" {
		parts = append(parts, strings.TrimSpace(cur.String()))
	}
	return parts
}
