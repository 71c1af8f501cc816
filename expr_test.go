package cmdl

import (
	"testing"
)

func evalWith(t *testing.T, expr string, vars map[string]Value) Value {
	t.Helper()
	state := NewState()
	for name, v := range vars {
		state.Set(name, v)
	}
	result, err := EvalExpression(expr, state)
	if err != nil {
		t.Fatalf("EvalExpression(%q) failed: %v", expr, err)
	}
	return result
}

func TestEvalArithmetic(t *testing.T) {
	cases := []struct {
		expr string
		want float64
	}{
		{"1 + 2", 3},
		{"2 * 3 + 4", 10},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 - 2 - 3", 5},
		{"7 / 2", 3.5},
		{"-5 + 2", -3},
		{"-(2 + 3)", -5},
		{"1.5 + 1.5", 3},
	}
	for _, c := range cases {
		got := evalWith(t, c.expr, nil)
		if got.Kind != NumberKind || got.Num != c.want {
			t.Errorf("%q = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestEvalVariables(t *testing.T) {
	vars := map[string]Value{
		"x": Number(5),
		"s": Text("5"),
		"w": Text("word"),
	}
	cases := []struct {
		expr string
		want float64
	}{
		{"x + 2", 7},
		{"x * x", 25},
		// Numeric text behaves as the number it spells.
		{"s + 1", 6},
		// Unknown identifiers resolve to 0.
		{"missing + 1", 1},
		{"missing", 0},
	}
	for _, c := range cases {
		got := evalWith(t, c.expr, vars)
		if got.Kind != NumberKind || got.Num != c.want {
			t.Errorf("%q = %v, want %v", c.expr, got, c.want)
		}
	}
	if got := evalWith(t, "w", vars); got.Kind != TextKind || got.Str != "word" {
		t.Errorf("w = %v, want text \"word\"", got)
	}
}

func TestEvalComparisons(t *testing.T) {
	vars := map[string]Value{"x": Number(7)}
	cases := []struct {
		expr string
		want bool
	}{
		{"1 < 2", true},
		{"2 < 1", false},
		{"2 <= 2", true},
		{"3 > 2", true},
		{"2 >= 3", false},
		{"1 != 2", true},
		{"x == 7", true},
		// A single = is an equality test in expression context.
		{"x = 7", true},
		{"x = 8", false},
		{"\"a\" = \"a\"", true},
		{"\"a\" != \"b\"", true},
		{"\"a\" < \"b\"", true},
		{"\"a\" = 1", false},
	}
	for _, c := range cases {
		got := evalWith(t, c.expr, vars)
		if got.Truthy() != c.want {
			t.Errorf("%q = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestEvalBooleanOperators(t *testing.T) {
	cases := []struct {
		expr string
		want float64
	}{
		// and/or return an operand, Python style.
		{"1 and 2", 2},
		{"0 and 2", 0},
		{"0 or 5", 5},
		{"3 or 5", 3},
		{"not 0", 1},
		{"not 3", 0},
		// not applies to the whole comparison, as in Python.
		{"not 1 = 2", 1},
	}
	for _, c := range cases {
		got := evalWith(t, c.expr, nil)
		if got.Kind != NumberKind || got.Num != c.want {
			t.Errorf("%q = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestEvalChainedComparisons(t *testing.T) {
	cases := []struct {
		expr string
		want float64
	}{
		// a < b < c chains as a < b and b < c, Python style.
		{"1 < 2 < 3", 1},
		{"3 > 2 > 1", 1},
		{"3 > 2 > 2", 0},
		{"1 = 1 = 1", 1},
		{"1 < 2 > 3", 0},
		{"2 <= 2 <= 2", 1},
	}
	for _, c := range cases {
		got := evalWith(t, c.expr, nil)
		if got.Kind != NumberKind || got.Num != c.want {
			t.Errorf("%q = %v, want %v", c.expr, got, c.want)
		}
	}
	// A failed link short-circuits the rest of the chain.
	if got := evalWith(t, "1 > 2 > (1/0)", nil); got.Num != 0 {
		t.Errorf("1 > 2 > (1/0) = %v, want 0", got)
	}
}

func TestEvalShortCircuit(t *testing.T) {
	// The dead branch must parse but is never evaluated, so errors
	// inside it cannot fire.
	if got := evalWith(t, "0 and 1/0", nil); got.Num != 0 {
		t.Errorf("0 and 1/0 = %v, want 0", got)
	}
	if got := evalWith(t, "1 or 1/0", nil); got.Num != 1 {
		t.Errorf("1 or 1/0 = %v, want 1", got)
	}
}

func TestEvalTextConcat(t *testing.T) {
	got := evalWith(t, "\"foo\" + \"bar\"", nil)
	if got.Kind != TextKind || got.Str != "foobar" {
		t.Errorf("Text concat = %v, want foobar", got)
	}
}

func TestEvalErrors(t *testing.T) {
	bad := []string{
		"1 +",
		"(1 + 2",
		"1 / 0",
		"\"a\" - 1",
		"1 < \"a\"",
		"1 ? 2",
		"\"unterminated",
		"",
	}
	state := NewState()
	for _, expr := range bad {
		_, err := EvalExpression(expr, state)
		if !IsKind(err, ErrExpression) {
			t.Errorf("%q: expected expression error, got %v", expr, err)
		}
	}
}

func TestEvalErrorCarriesSource(t *testing.T) {
	_, err := EvalExpression("1 / 0", NewState())
	se, ok := err.(*ScriptError)
	if !ok {
		t.Fatalf("Expected *ScriptError, got %T", err)
	}
	if se.Text != "1 / 0" {
		t.Errorf("Expected original expression text, got %q", se.Text)
	}
}

func TestValueRendering(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Number(7), "7"},
		{Number(2.5), "2.5"},
		{Number(-3), "-3"},
		{Text("hi"), "hi"},
		{Text(""), ""},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestValueTruthiness(t *testing.T) {
	if Number(0).Truthy() || Text("").Truthy() {
		t.Error("Zero and empty text should be falsy")
	}
	if !Number(0.5).Truthy() || !Text("x").Truthy() {
		t.Error("Nonzero and nonempty text should be truthy")
	}
}
