// Package macro implements the two-phase Lisp-style macro pass (spec.md
// §4.3): collecting macro(...) definitions out of the top-level statement
// list, then expanding macro call sites by evaluating their bodies against
// quoted arguments.
package macro

import (
	"github.com/monkeylang/monkey/pkg/ast"
	"github.com/monkeylang/monkey/pkg/runtime"
	"github.com/monkeylang/monkey/pkg/token"
)

// EvalFunc is the evaluator entry point the macro pass needs to run a
// macro's body. It is injected rather than imported so this package never
// depends on pkg/interpreter — the macro pass is a consumer of evaluation,
// not the other way around.
type EvalFunc func(node ast.Node, env *runtime.Environment) runtime.Value

// DefineMacros is Phase A: it removes every top-level Let(name,
// MacroLiteral) statement from program, binding name to a Macro value in
// macroEnv instead. After this call the program contains no macro
// definitions.
func DefineMacros(program *ast.Program, tokens []token.Token, macroEnv *runtime.Environment) *ast.Program {
	remaining := make([]ast.Statement, 0, len(program.Statements))
	for _, stmt := range program.Statements {
		if name, lit, ok := asMacroDefinition(stmt, tokens); ok {
			macroEnv.Define(name, &runtime.Macro{Params: lit.Params, Body: lit.Body, Env: macroEnv})
			continue
		}
		remaining = append(remaining, stmt)
	}
	program.Statements = remaining
	return program
}

func asMacroDefinition(stmt ast.Statement, tokens []token.Token) (string, *ast.MacroLiteral, bool) {
	let, ok := stmt.(*ast.Let)
	if !ok {
		return "", nil, false
	}
	lit, ok := let.Expr.(*ast.MacroLiteral)
	if !ok {
		return "", nil, false
	}
	return tokens[let.MainIdx()].Literal, lit, true
}

// ExpandMacros is Phase B: it walks every remaining top-level statement
// post-order, replacing any Call(callee=Identifier(name), args) where name
// is bound in macroEnv with that macro's expansion.
func ExpandMacros(program *ast.Program, tokens []token.Token, macroEnv *runtime.Environment, eval EvalFunc) *ast.Program {
	for i, stmt := range program.Statements {
		program.Statements[i] = ast.Modify(stmt, func(n ast.Node) ast.Node {
			return expandIfMacroCall(n, tokens, macroEnv, eval)
		}).(ast.Statement)
	}
	return program
}

func expandIfMacroCall(n ast.Node, tokens []token.Token, macroEnv *runtime.Environment, eval EvalFunc) ast.Node {
	call, ok := n.(*ast.Call)
	if !ok {
		return n
	}
	ident, ok := call.Callee.(*ast.Identifier)
	if !ok {
		return n
	}
	name := tokens[ident.MainIdx()].Literal
	bound, ok := macroEnv.Get(name)
	if !ok {
		return n
	}
	mac, ok := bound.(*runtime.Macro)
	if !ok {
		return n
	}
	return expandMacroCall(mac, call, tokens, eval)
}

// expandMacroCall implements spec.md §4.3 steps 1-4: wrap each argument in
// Quote, bind params in an extended copy of the macro's captured
// environment, evaluate the body, and require the result to be a Quote.
func expandMacroCall(mac *runtime.Macro, call *ast.Call, tokens []token.Token, eval EvalFunc) ast.Node {
	extended := mac.Env.Extend()
	for i, param := range mac.Params {
		name := tokens[param.MainIdx()].Literal
		var arg ast.Expression
		if i < len(call.Args) {
			arg = call.Args[i]
		}
		extended.Define(name, runtime.Quote{Node: arg})
	}

	result := eval(mac.Body, extended)
	quoted, ok := result.(runtime.Quote)
	if !ok {
		panic("macro: body did not evaluate to a Quote")
	}
	return quoted.Node
}
