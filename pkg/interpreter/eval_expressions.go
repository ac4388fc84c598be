package interpreter

import (
	"github.com/monkeylang/monkey/pkg/ast"
	"github.com/monkeylang/monkey/pkg/runtime"
	"github.com/monkeylang/monkey/pkg/token"
)

func (ip *Interpreter) evalPrefix(n *ast.Prefix, env *runtime.Environment) runtime.Value {
	operand := ip.Eval(n.Expr, env)
	if isError(operand) {
		return operand
	}
	switch n.Op {
	case token.MINUS:
		if i, ok := operand.(runtime.Int); ok {
			return runtime.Int{Value: -i.Value}
		}
		return runtime.NewError("Unknown operator: -%s", operand.Kind())
	case token.BANG:
		if b, ok := operand.(runtime.Bool); ok {
			return runtime.Bool{Value: !b.Value}
		}
		return runtime.NewError("Unknown operator: !%s", operand.Kind())
	default:
		return runtime.NewError("Unknown operator: %s%s", n.Op, operand.Kind())
	}
}

func (ip *Interpreter) evalInfix(n *ast.Infix, env *runtime.Environment) runtime.Value {
	left := ip.Eval(n.Lhs, env)
	if isError(left) {
		return left
	}
	right := ip.Eval(n.Rhs, env)
	if isError(right) {
		return right
	}

	switch l := left.(type) {
	case runtime.Int:
		if r, ok := right.(runtime.Int); ok {
			return evalIntInfix(n.Op, l, r)
		}
	case runtime.Bool:
		if r, ok := right.(runtime.Bool); ok {
			return evalBoolInfix(n.Op, l, r)
		}
	case runtime.String:
		if r, ok := right.(runtime.String); ok {
			return evalStringInfix(n.Op, l, r)
		}
	}

	if left.Kind() != right.Kind() {
		return runtime.NewError("Type mismatch in expression: %s %s %s", left.Kind(), n.Op, right.Kind())
	}
	return runtime.NewError("Unknown operator: %s %s %s", left.Kind(), n.Op, right.Kind())
}

func evalIntInfix(op token.Type, l, r runtime.Int) runtime.Value {
	switch op {
	case token.PLUS:
		return runtime.Int{Value: l.Value + r.Value}
	case token.MINUS:
		return runtime.Int{Value: l.Value - r.Value}
	case token.ASTERISK:
		return runtime.Int{Value: l.Value * r.Value}
	case token.SLASH:
		if r.Value == 0 {
			return runtime.NewError("Division by zero")
		}
		return runtime.Int{Value: l.Value / r.Value}
	case token.EQ:
		return runtime.Bool{Value: l.Value == r.Value}
	case token.NOT_EQ:
		return runtime.Bool{Value: l.Value != r.Value}
	case token.LT:
		return runtime.Bool{Value: l.Value < r.Value}
	case token.GT:
		return runtime.Bool{Value: l.Value > r.Value}
	default:
		return runtime.NewError("Unknown operator: INTEGER %s INTEGER", op)
	}
}

func evalBoolInfix(op token.Type, l, r runtime.Bool) runtime.Value {
	switch op {
	case token.EQ:
		return runtime.Bool{Value: l.Value == r.Value}
	case token.NOT_EQ:
		return runtime.Bool{Value: l.Value != r.Value}
	case token.LT:
		return runtime.Bool{Value: !l.Value && r.Value}
	case token.GT:
		return runtime.Bool{Value: l.Value && !r.Value}
	default:
		return runtime.NewError("Unknown operator: BOOLEAN %s BOOLEAN", op)
	}
}

func evalStringInfix(op token.Type, l, r runtime.String) runtime.Value {
	if op == token.PLUS {
		return runtime.String{Value: l.Value + r.Value}
	}
	return runtime.NewError("Unknown operator: STRING %s STRING", op)
}

// evalIf implements the truthiness rule spec.md §4.2 spells out explicitly:
// Bool(true), any Int (including 0), any String, or a Return wrapping one
// of those, are truthy. Bool(false), Unit, and any Error are falsy.
func (ip *Interpreter) evalIf(n *ast.If, env *runtime.Environment) runtime.Value {
	cond := ip.Eval(n.Cond, env)
	if isError(cond) {
		return cond
	}
	if isTruthy(cond) {
		return ip.Eval(n.TrueBranch, env)
	}
	if n.FalseBranch != nil {
		return ip.Eval(n.FalseBranch, env)
	}
	return runtime.UnitValue
}

func isTruthy(v runtime.Value) bool {
	switch val := v.(type) {
	case runtime.Bool:
		return val.Value
	case runtime.Unit:
		return false
	case runtime.Error:
		return false
	case runtime.Return:
		return isTruthy(val.Value)
	default:
		return true
	}
}

func (ip *Interpreter) evalArrayLiteral(n *ast.ArrayLiteral, env *runtime.Environment) runtime.Value {
	elements := make([]runtime.Value, 0, len(n.Elements))
	for _, el := range n.Elements {
		v := ip.Eval(el, env)
		if isError(v) {
			return v
		}
		elements = append(elements, v)
	}
	return runtime.Array{Elements: elements}
}

func (ip *Interpreter) evalHashLiteral(n *ast.HashLiteral, env *runtime.Environment) runtime.Value {
	m := runtime.NewMap()
	for _, pair := range n.Pairs {
		key := ip.Eval(pair.Key, env)
		if isError(key) {
			return key
		}
		hashKey, ok := runtime.HashOf(key)
		if !ok {
			return runtime.NewError("Unusable hash key: %s", key.Kind())
		}
		value := ip.Eval(pair.Value, env)
		if isError(value) {
			return value
		}
		m.Set(hashKey, runtime.MapEntry{Key: key, Value: value})
	}
	return m
}

func (ip *Interpreter) evalIndex(n *ast.Index, env *runtime.Environment) runtime.Value {
	left := ip.Eval(n.Lhs, env)
	if isError(left) {
		return left
	}
	index := ip.Eval(n.Index, env)
	if isError(index) {
		return index
	}

	switch container := left.(type) {
	case runtime.Array:
		i, ok := index.(runtime.Int)
		if !ok {
			return runtime.NewError("Index operator not supported: %s[%s]", left.Kind(), index.Kind())
		}
		if i.Value < 0 || i.Value >= int64(len(container.Elements)) {
			return runtime.UnitValue
		}
		return container.Elements[i.Value]
	case *runtime.Map:
		hashKey, ok := runtime.HashOf(index)
		if !ok {
			return runtime.NewError("Unusable hash key: %s", index.Kind())
		}
		entry, ok := container.Entries[hashKey]
		if !ok {
			return runtime.UnitValue
		}
		return entry.Value
	default:
		return runtime.NewError("Index operator not supported: %s", left.Kind())
	}
}

func (ip *Interpreter) evalCall(n *ast.Call, env *runtime.Environment) runtime.Value {
	calleeVal := ip.Eval(n.Callee, env)
	if isError(calleeVal) {
		return calleeVal
	}

	if bk, ok := calleeVal.(runtime.BuiltinKey); ok && bk.Name == "quote" {
		if len(n.Args) != 1 {
			return arityError(len(n.Args), 1)
		}
		return runtime.Quote{Node: ip.quoteUnquote(n.Args[0], env)}
	}

	args := make([]runtime.Value, 0, len(n.Args))
	for _, a := range n.Args {
		v := ip.Eval(a, env)
		if isError(v) {
			return v
		}
		args = append(args, v)
	}

	switch callee := calleeVal.(type) {
	case runtime.BuiltinKey:
		return ip.callBuiltin(callee.Name, args, env)
	case *runtime.Function:
		return ip.callFunction(callee, args)
	default:
		return runtime.NewError("Not a function: %s", calleeVal.Kind())
	}
}

func (ip *Interpreter) callFunction(fn *runtime.Function, args []runtime.Value) runtime.Value {
	child := fn.Env.Extend()
	for i, p := range fn.Params {
		name := ip.name(p.MainIdx())
		if i < len(args) {
			child.Define(name, args[i])
		} else {
			child.Define(name, runtime.UnitValue)
		}
	}
	result := ip.Eval(fn.Body, child)
	if ret, ok := result.(runtime.Return); ok {
		return ret.Value
	}
	return result
}

// quoteUnquote implements spec.md §4.3's quote-time rewrite: every
// Call(callee=Identifier("unquote"), args=[inner]) is replaced by the AST
// node form of evaluating inner right now, in env.
func (ip *Interpreter) quoteUnquote(node ast.Expression, env *runtime.Environment) ast.Expression {
	rewritten := ast.Modify(node, func(n ast.Node) ast.Node {
		call, ok := n.(*ast.Call)
		if !ok || !ip.isUnquoteCall(call) {
			return n
		}
		if len(call.Args) != 1 {
			return n
		}
		value := ip.Eval(call.Args[0], env)
		return ip.valueToNode(value)
	})
	return rewritten.(ast.Expression)
}

func (ip *Interpreter) isUnquoteCall(call *ast.Call) bool {
	ident, ok := call.Callee.(*ast.Identifier)
	if !ok {
		return false
	}
	return ip.name(ident.MainIdx()) == "unquote"
}

// valueToNode converts an evaluated value back into an AST node so it can
// be spliced into a quoted subtree. Anything without a node form is a
// fatal interpreter/macro-contract violation (spec.md §7).
func (ip *Interpreter) valueToNode(v runtime.Value) ast.Node {
	switch val := v.(type) {
	case runtime.Int:
		return ast.NewIntResult(val.Value)
	case runtime.String:
		return ast.NewStringResult(val.Value)
	case runtime.Bool:
		return ast.NewBooleanResult(val.Value)
	case runtime.Quote:
		return val.Node
	default:
		panic("interpreter: unquote target has no AST node form: " + val.Kind().String())
	}
}
