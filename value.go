package cmdl

import (
	"strconv"
	"strings"
)

// ValueKind distinguishes the two value shapes a variable can hold.
type ValueKind int

const (
	NumberKind ValueKind = iota
	TextKind
)

// Value is the sum type for script values: a number (integer or real,
// stored as float64) or a piece of text.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Number builds a numeric value.
func Number(n float64) Value {
	return Value{Kind: NumberKind, Num: n}
}

// Text builds a text value.
func Text(s string) Value {
	return Value{Kind: TextKind, Str: s}
}

// String renders the value the way script output shows it: numbers as
// their shortest numeral, text as-is.
func (v Value) String() string {
	if v.Kind == NumberKind {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// Truthy reports the boolean interpretation of a value: nonzero
// numbers and nonempty text are true.
func (v Value) Truthy() bool {
	if v.Kind == NumberKind {
		return v.Num != 0
	}
	return v.Str != ""
}

// Equal compares two values. Values of different kinds are never
// equal, except that numeric text compares equal to the same number.
func (v Value) Equal(other Value) bool {
	if v.Kind == other.Kind {
		if v.Kind == NumberKind {
			return v.Num == other.Num
		}
		return v.Str == other.Str
	}
	// One numeric, one text: allow "5" == 5 the way duck-typed
	// variable storage produces it.
	a, aok := v.AsNumber()
	b, bok := other.AsNumber()
	return aok && bok && a == b
}

// AsNumber returns the numeric interpretation of the value, if any.
// Text values qualify only when the whole text parses as a number.
func (v Value) AsNumber() (float64, bool) {
	if v.Kind == NumberKind {
		return v.Num, true
	}
	return parseNumber(v.Str)
}

// isNumeric reports whether s parses entirely as a number.
func isNumeric(s string) bool {
	_, ok := parseNumber(s)
	return ok
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// stripQuotes removes one layer of matching single or double quotes.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')
}
