package interpreter_test

import (
	"strings"
	"testing"

	"github.com/monkeylang/monkey/pkg/interpreter"
	"github.com/monkeylang/monkey/pkg/lexer"
	"github.com/monkeylang/monkey/pkg/macro"
	"github.com/monkeylang/monkey/pkg/parser"
	"github.com/monkeylang/monkey/pkg/runtime"
)

func evalFinal(t *testing.T, src string) runtime.Value {
	t.Helper()
	tokens := lexer.All(src)
	p := parser.New(tokens)
	program := p.Parse()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors for %q: %v", src, errs)
	}
	env := runtime.NewEnvironment(nil)
	macroEnv := runtime.NewEnvironment(nil)
	ip := interpreter.New(tokens, nil)
	ip.Stdout = &strings.Builder{}

	program = macro.DefineMacros(program, tokens, macroEnv)
	program = macro.ExpandMacros(program, tokens, macroEnv, ip.Eval)

	values := ip.RunProgram(program, env)
	if len(values) == 0 {
		return runtime.UnitValue
	}
	return values[len(values)-1]
}

func TestEvalIntegerArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"5", 5},
		{"5 + 5 + 5 + 5 - 10", 10},
		{"2 * 2 * 2 * 2 * 2", 32},
		{"-50 + 100 + -50", 0},
		{"5 * 2 + 10", 20},
		{"5 + 2 * 10", 25},
		{"20 + 2 * -10", 0},
		{"50 / 2 * 2 + 10", 60},
		{"2 * (5 + 10)", 30},
		{"3 * 3 * 3 + 10", 37},
		{"(5 + 10 * 2 + 15 / 3) * 2 + -10", 50},
	}
	for _, c := range cases {
		got := evalFinal(t, c.src)
		i, ok := got.(runtime.Int)
		if !ok || i.Value != c.want {
			t.Errorf("eval(%q) = %v, want Int(%d)", c.src, got, c.want)
		}
	}
}

func TestEvalBooleanExpressions(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"true", true},
		{"false", false},
		{"1 < 2", true},
		{"1 > 2", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"true == true", true},
		{"true != false", true},
		{"(1 < 2) == true", true},
		{"!true", false},
		{"!!true", true},
		{"!5", false},
	}
	for _, c := range cases {
		got := evalFinal(t, c.src)
		b, ok := got.(runtime.Bool)
		if !ok || b.Value != c.want {
			t.Errorf("eval(%q) = %v, want Bool(%t)", c.src, got, c.want)
		}
	}
}

func TestEvalIfElseTruthiness(t *testing.T) {
	cases := []struct {
		src  string
		want runtime.Value
	}{
		{"if (true) { 10 }", runtime.Int{Value: 10}},
		{"if (false) { 10 }", runtime.UnitValue},
		{"if (1) { 10 }", runtime.Int{Value: 10}},
		{"if (1 < 2) { 10 } else { 20 }", runtime.Int{Value: 10}},
		{"if (1 > 2) { 10 } else { 20 }", runtime.Int{Value: 20}},
	}
	for _, c := range cases {
		got := evalFinal(t, c.src)
		if got != c.want {
			t.Errorf("eval(%q) = %#v, want %#v", c.src, got, c.want)
		}
	}
}

func TestEvalErrorMessages(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"5 + true;", "Type mismatch in expression: INTEGER + BOOLEAN"},
		{"5 + true; 5;", "Type mismatch in expression: INTEGER + BOOLEAN"},
		{"-true", "Unknown operator: -BOOLEAN"},
		{"true + false;", "Unknown operator: BOOLEAN + BOOLEAN"},
		{`"a" - "b"`, "Unknown operator: STRING - STRING"},
		{"5 / 0", "Division by zero"},
		{"foobar", "Unknown symbol: foobar"},
		{`{"name": "a"}[fn(x){x}];`, "Unusable hash key: FUNCTION"},
	}
	for _, c := range cases {
		got := evalFinal(t, c.src)
		errVal, ok := got.(runtime.Error)
		if !ok {
			t.Errorf("eval(%q) = %#v, want Error", c.src, got)
			continue
		}
		if errVal.Message != c.want {
			t.Errorf("eval(%q).Message = %q, want %q", c.src, errVal.Message, c.want)
		}
	}
}

func TestEvalFunctionApplicationAndClosures(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"let identity = fn(x) { x; }; identity(5);", 5},
		{"let identity = fn(x) { return x; }; identity(5);", 5},
		{"let double = fn(x) { x * 2; }; double(5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5, 5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5 + 5, add(5, 5));", 20},
		{"fn(x) { x; }(5)", 5},
		{"let newAdder = fn(x) { fn(y) { x + y }; }; let addTwo = newAdder(2); addTwo(2);", 4},
	}
	for _, c := range cases {
		got := evalFinal(t, c.src)
		i, ok := got.(runtime.Int)
		if !ok || i.Value != c.want {
			t.Errorf("eval(%q) = %v, want Int(%d)", c.src, got, c.want)
		}
	}
}

func TestEvalArrayAndStringBuiltins(t *testing.T) {
	cases := []struct {
		src  string
		want runtime.Value
	}{
		{`len("")`, runtime.Int{Value: 0}},
		{`len("four")`, runtime.Int{Value: 4}},
		{`len([1, 2, 3])`, runtime.Int{Value: 3}},
		{`first([1, 2, 3])`, runtime.Int{Value: 1}},
		{`last([1, 2, 3])`, runtime.Int{Value: 3}},
		{`len(rest([1, 2, 3]))`, runtime.Int{Value: 2}},
		{`len(push([1, 2], 3))`, runtime.Int{Value: 3}},
	}
	for _, c := range cases {
		got := evalFinal(t, c.src)
		if got != c.want {
			t.Errorf("eval(%q) = %#v, want %#v", c.src, got, c.want)
		}
	}
}

func TestEvalStringConcatenation(t *testing.T) {
	got := evalFinal(t, `"Hello" + " " + "World!"`)
	s, ok := got.(runtime.String)
	if !ok || s.Value != "Hello World!" {
		t.Errorf("got %#v", got)
	}
}

func TestEvalHashLiterals(t *testing.T) {
	got := evalFinal(t, `let two = "two"; {"one": 10 - 9, two: 1 + 1, "thr" + "ee": 6 / 2, 4: 4, true: 5, false: 6}["two"]`)
	i, ok := got.(runtime.Int)
	if !ok || i.Value != 2 {
		t.Errorf("got %#v, want Int(2)", got)
	}
}

func TestRecursiveFunction(t *testing.T) {
	got := evalFinal(t, `
let counter = fn(x) {
  if (x > 100) {
    return true;
  } else {
    counter(x + 1);
  }
};
counter(0);
`)
	b, ok := got.(runtime.Bool)
	if !ok || !b.Value {
		t.Errorf("got %#v, want Bool(true)", got)
	}
}
