// Package interpreter implements the tree-walking evaluator (spec.md §4.2):
// Eval dispatches on concrete AST node type and propagates both `return`
// and runtime errors as ordinary Values rather than unwinding the Go call
// stack, exactly as spec.md §7 requires.
package interpreter

import (
	"io"
	"os"

	"github.com/monkeylang/monkey/pkg/ast"
	"github.com/monkeylang/monkey/pkg/deps"
	"github.com/monkeylang/monkey/pkg/runtime"
	"github.com/monkeylang/monkey/pkg/token"
)

// Interpreter holds everything Eval needs beyond the (node, env) pair
// itself: the token view backing every node's mainIdx, where `puts` writes,
// and the dependency resolver backing the `import` builtin.
type Interpreter struct {
	Tokens   []token.Token
	Stdout   io.Writer
	Importer *deps.Resolver

	moduleCache map[string]runtime.Value
	stdlibRoot  *runtime.Environment
}

// New returns an Interpreter over tokens. importer may be nil, in which
// case `import(...)` always fails with an unknown-module error.
func New(tokens []token.Token, importer *deps.Resolver) *Interpreter {
	return &Interpreter{
		Tokens:      tokens,
		Stdout:      os.Stdout,
		Importer:    importer,
		moduleCache: make(map[string]runtime.Value),
		stdlibRoot:  runtime.NewEnvironment(nil),
	}
}

func (ip *Interpreter) name(mainIdx int) string {
	return ip.Tokens[mainIdx].Literal
}

// Eval dispatches on node's concrete type. It is the single entry point
// used for every recursive descent into a sub-node, including the macro
// pass's invocation for macro bodies and unquote targets.
func (ip *Interpreter) Eval(node ast.Node, env *runtime.Environment) runtime.Value {
	switch n := node.(type) {
	case *ast.Program:
		return ip.evalProgramTop(n, env)
	case *ast.ExpressionStatement:
		return ip.Eval(n.Expr, env)
	case *ast.Block:
		return ip.evalBlock(n, env)
	case *ast.Let:
		return ip.evalLet(n, env)
	case *ast.Return:
		return ip.evalReturn(n, env)

	case *ast.Int:
		return runtime.Int{Value: n.Value}
	case *ast.String:
		return runtime.String{Value: n.Value}
	case *ast.Boolean:
		return runtime.Bool{Value: n.Value}
	case *ast.IntResult:
		return runtime.Int{Value: n.Value}
	case *ast.StringResult:
		return runtime.String{Value: n.Value}
	case *ast.BooleanResult:
		return runtime.Bool{Value: n.Value}
	case *ast.Identifier:
		return ip.evalIdentifier(n, env)
	case *ast.Prefix:
		return ip.evalPrefix(n, env)
	case *ast.Infix:
		return ip.evalInfix(n, env)
	case *ast.If:
		return ip.evalIf(n, env)
	case *ast.FunctionLiteral:
		return &runtime.Function{Params: n.Params, Body: n.Body, Env: env}
	case *ast.MacroLiteral:
		return &runtime.Macro{Params: n.Params, Body: n.Body, Env: env}
	case *ast.ArrayLiteral:
		return ip.evalArrayLiteral(n, env)
	case *ast.HashLiteral:
		return ip.evalHashLiteral(n, env)
	case *ast.Index:
		return ip.evalIndex(n, env)
	case *ast.Call:
		return ip.evalCall(n, env)
	}
	return runtime.NewError("Unknown node type: %T", node)
}

// RunProgram evaluates every top-level statement of program in order,
// stopping after the first Return or Error, and returns every intermediate
// result produced (spec.md §4.2's top-level loop).
func (ip *Interpreter) RunProgram(program *ast.Program, env *runtime.Environment) []runtime.Value {
	results := make([]runtime.Value, 0, len(program.Statements))
	for _, stmt := range program.Statements {
		v := ip.Eval(stmt, env)
		results = append(results, v)
		if isReturn(v) || isError(v) {
			break
		}
	}
	return results
}

// evalProgramTop exists so *ast.Program satisfies the Eval dispatch (used
// when a Program node shows up as a generic ast.Node, e.g. in tests); the
// real top-level driver is RunProgram.
func (ip *Interpreter) evalProgramTop(program *ast.Program, env *runtime.Environment) runtime.Value {
	results := ip.RunProgram(program, env)
	if len(results) == 0 {
		return runtime.UnitValue
	}
	return results[len(results)-1]
}

func (ip *Interpreter) evalBlock(block *ast.Block, env *runtime.Environment) runtime.Value {
	var result runtime.Value = runtime.UnitValue
	for _, stmt := range block.Statements {
		result = ip.Eval(stmt, env)
		if isReturn(result) || isError(result) {
			return result
		}
	}
	return result
}

func (ip *Interpreter) evalLet(n *ast.Let, env *runtime.Environment) runtime.Value {
	name := ip.name(n.MainIdx())
	if env.DefinedHere(name) {
		return runtime.NewError("Symbol already defined: %s", name)
	}
	value := ip.Eval(n.Expr, env)
	if isError(value) {
		return value
	}
	env.Define(name, value)
	return runtime.UnitValue
}

func (ip *Interpreter) evalReturn(n *ast.Return, env *runtime.Environment) runtime.Value {
	if n.Expr == nil {
		return runtime.Return{Value: runtime.UnitValue}
	}
	value := ip.Eval(n.Expr, env)
	if isError(value) {
		return value
	}
	if b, ok := value.(runtime.Bool); ok {
		if b.Value {
			return runtime.ReturnTrue
		}
		return runtime.ReturnFalse
	}
	return runtime.Return{Value: value}
}

func (ip *Interpreter) evalIdentifier(n *ast.Identifier, env *runtime.Environment) runtime.Value {
	name := ip.name(n.MainIdx())
	if v, ok := env.Get(name); ok {
		return v
	}
	if isBuiltin(name) {
		return runtime.BuiltinKey{Name: name}
	}
	return runtime.NewError("Unknown symbol: %s", name)
}

func isReturn(v runtime.Value) bool {
	_, ok := v.(runtime.Return)
	return ok
}

func isError(v runtime.Value) bool {
	_, ok := v.(runtime.Error)
	return ok
}
