// Package pipeline wires the lexer, parser, macro pass, and evaluator into
// the single "Program entry" contract spec.md §6 describes:
// run(sourceText) -> (results, errors).
package pipeline

import (
	"io"
	"os"

	"github.com/monkeylang/monkey/pkg/deps"
	"github.com/monkeylang/monkey/pkg/interpreter"
	"github.com/monkeylang/monkey/pkg/lexer"
	"github.com/monkeylang/monkey/pkg/macro"
	"github.com/monkeylang/monkey/pkg/parser"
	"github.com/monkeylang/monkey/pkg/runtime"
	"github.com/monkeylang/monkey/pkg/token"
)

// Result is the outcome of running one source text through the full
// pipeline: every top-level value produced, any parse errors (which halt
// the pipeline before evaluation ever runs), and the token view everything
// is anchored to (needed to Print a Quote's canonical Show form).
type Result struct {
	Values      []runtime.Value
	ParseErrors []string
	Tokens      []token.Token
}

// Options customizes a Run call; the zero value is a reasonable default
// (stdout for puts, no dependency resolution).
type Options struct {
	Stdout   io.Writer
	Importer *deps.Resolver
	// Env lets callers share one global environment across multiple Run
	// calls (e.g. a REPL session); nil creates a fresh one.
	Env *runtime.Environment
}

// Run lexes, parses, macro-expands, and evaluates source against a fresh
// environment (or opts.Env if supplied), per spec.md §2's linear data flow.
func Run(source string, opts Options) Result {
	tokens := lexer.All(source)
	p := parser.New(tokens)
	program := p.Parse()

	if len(p.Errors()) > 0 {
		return Result{ParseErrors: p.Errors(), Tokens: tokens}
	}

	env := opts.Env
	if env == nil {
		env = runtime.NewEnvironment(nil)
	}
	macroEnv := runtime.NewEnvironment(nil)

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	ip := interpreter.New(tokens, opts.Importer)
	ip.Stdout = stdout

	program = macro.DefineMacros(program, tokens, macroEnv)
	program = macro.ExpandMacros(program, tokens, macroEnv, ip.Eval)

	values := ip.RunProgram(program, env)
	return Result{Values: values, Tokens: tokens}
}

// FinalResult renders the print form of the last value produced, per
// spec.md §6's final-result printing rules — what a REPL shows the user
// for one evaluated line. Returns "" if nothing was evaluated.
func (r Result) FinalResult() string {
	if len(r.Values) == 0 {
		return ""
	}
	return runtime.Print(r.Values[len(r.Values)-1], r.Tokens)
}
