package ast

// ModifierFunc rewrites a single node after its children have already been
// rewritten. It is applied post-order by Modify.
type ModifierFunc func(Node) Node

// Modify performs a post-order rewrite of node: each child is rewritten
// first via a recursive Modify call, then the reconstructed node is passed
// through fn. This is the traversal the evaluator (pkg/interpreter) uses to
// splice unquoted values into a quoted subtree, and the macro pass
// (pkg/macro) uses to replace macro call sites with their expansions.
func Modify(node Node, fn ModifierFunc) Node {
	switch n := node.(type) {
	case *Program:
		for i, stmt := range n.Statements {
			n.Statements[i] = Modify(stmt, fn).(Statement)
		}
		return fn(n)

	case *Block:
		for i, stmt := range n.Statements {
			n.Statements[i] = Modify(stmt, fn).(Statement)
		}
		return fn(n)

	case *ExpressionStatement:
		n.Expr = Modify(n.Expr, fn).(Expression)
		return fn(n)

	case *Let:
		n.Expr = Modify(n.Expr, fn).(Expression)
		return fn(n)

	case *Return:
		if n.Expr != nil {
			n.Expr = Modify(n.Expr, fn).(Expression)
		}
		return fn(n)

	case *Prefix:
		n.Expr = Modify(n.Expr, fn).(Expression)
		return fn(n)

	case *Infix:
		n.Lhs = Modify(n.Lhs, fn).(Expression)
		n.Rhs = Modify(n.Rhs, fn).(Expression)
		return fn(n)

	case *Index:
		n.Lhs = Modify(n.Lhs, fn).(Expression)
		n.Index = Modify(n.Index, fn).(Expression)
		return fn(n)

	case *If:
		n.Cond = Modify(n.Cond, fn).(Expression)
		n.TrueBranch = Modify(n.TrueBranch, fn).(*Block)
		if n.FalseBranch != nil {
			n.FalseBranch = Modify(n.FalseBranch, fn).(*Block)
		}
		return fn(n)

	case *FunctionLiteral:
		for i, p := range n.Params {
			n.Params[i] = Modify(p, fn).(*Identifier)
		}
		n.Body = Modify(n.Body, fn).(*Block)
		return fn(n)

	case *MacroLiteral:
		for i, p := range n.Params {
			n.Params[i] = Modify(p, fn).(*Identifier)
		}
		n.Body = Modify(n.Body, fn).(*Block)
		return fn(n)

	case *Call:
		n.Callee = Modify(n.Callee, fn).(Expression)
		for i, a := range n.Args {
			n.Args[i] = Modify(a, fn).(Expression)
		}
		return fn(n)

	case *ArrayLiteral:
		for i, e := range n.Elements {
			n.Elements[i] = Modify(e, fn).(Expression)
		}
		return fn(n)

	case *HashLiteral:
		newPairs := make([]HashPair, len(n.Pairs))
		for i, p := range n.Pairs {
			newPairs[i] = HashPair{
				Key:   Modify(p.Key, fn).(Expression),
				Value: Modify(p.Value, fn).(Expression),
			}
		}
		n.Pairs = newPairs
		return fn(n)

	default:
		// Leaf nodes: Identifier, Int, String, Boolean, IntResult,
		// StringResult, BooleanResult have no children to rewrite.
		return fn(node)
	}
}
