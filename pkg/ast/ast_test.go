package ast_test

import (
	"testing"

	"github.com/monkeylang/monkey/pkg/ast"
	"github.com/monkeylang/monkey/pkg/token"
)

// tokensFor builds a minimal token slice whose literals line up with the
// indices used by the hand-built AST fragments below.
func tokensFor(literals ...string) []token.Token {
	tokens := make([]token.Token, len(literals))
	for i, lit := range literals {
		tokens[i] = token.Token{Literal: lit}
	}
	return tokens
}

func TestShow_Infix(t *testing.T) {
	// "-a * b" -> "((-a) * b)"
	tokens := tokensFor("-", "a", "*", "b")
	a := ast.NewIdentifier(1)
	negA := ast.NewPrefix(0, token.MINUS, a)
	b := ast.NewIdentifier(3)
	infix := ast.NewInfix(2, token.ASTERISK, negA, b)

	got := infix.Show(tokens)
	want := "((-a) * b)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestShow_LetAndReturn(t *testing.T) {
	tokens := tokensFor("let", "x", "=", "5", ";")
	five := ast.NewInt(3, 5)
	let := ast.NewLet(1, five)
	if got, want := let.Show(tokens), "let x = 5;"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	ret := ast.NewReturn(0, five)
	if got, want := ret.Show(tokens), "return 5;"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	retVoid := ast.NewReturn(0, nil)
	if got, want := retVoid.Show(tokens), "return;"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestShow_BlockEmptyAndNonEmpty(t *testing.T) {
	empty := ast.NewBlock(0, nil)
	if got, want := empty.Show(nil), "{}"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	tokens := tokensFor("{", "5", ";", "6", ";", "}")
	stmt1 := ast.NewExpressionStatement(1, ast.NewInt(1, 5))
	stmt2 := ast.NewExpressionStatement(3, ast.NewInt(3, 6))
	block := ast.NewBlock(0, []ast.Statement{stmt1, stmt2})
	if got, want := block.Show(tokens), "{ 5;\n6; }"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestShow_IndexAndArray(t *testing.T) {
	tokens := tokensFor("a", "[", "1", "]")
	a := ast.NewIdentifier(0)
	idx := ast.NewIndex(1, a, ast.NewInt(2, 1))
	if got, want := idx.Show(tokens), "(a[1])"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	arr := ast.NewArrayLiteral(0, []ast.Expression{ast.NewInt(0, 1), ast.NewInt(1, 2)})
	arrTokens := tokensFor("1", "2")
	if got, want := arr.Show(arrTokens), "[1, 2]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestShow_HashLiteral(t *testing.T) {
	tokens := []token.Token{{Literal: "a"}, {Literal: "1"}}
	h := ast.NewHashLiteral(0, []ast.HashPair{
		{Key: ast.NewString(0, "a"), Value: ast.NewInt(1, 1)},
	})
	if got, want := h.Show(tokens), "{a: 1}"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestModify_PostOrderReplacesLeaves(t *testing.T) {
	// Replace every Int(1) leaf with Int(2) across a small tree, confirming
	// the rewrite reaches nested children (infix operands, call args).
	one := func() *ast.Int { return ast.NewInt(0, 1) }

	program := &ast.Program{Statements: []ast.Statement{
		ast.NewExpressionStatement(0, ast.NewInfix(0, token.PLUS, one(), one())),
		ast.NewExpressionStatement(0, ast.NewCall(0, ast.NewIdentifier(0), []ast.Expression{one(), one()})),
	}}

	turnOnesIntoTwos := func(n ast.Node) ast.Node {
		if i, ok := n.(*ast.Int); ok && i.Value == 1 {
			return ast.NewInt(i.MainIdx(), 2)
		}
		return n
	}

	rewritten := ast.Modify(program, turnOnesIntoTwos).(*ast.Program)

	infixStmt := rewritten.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.Infix)
	if infixStmt.Lhs.(*ast.Int).Value != 2 || infixStmt.Rhs.(*ast.Int).Value != 2 {
		t.Errorf("infix operands not rewritten: %+v", infixStmt)
	}

	callStmt := rewritten.Statements[1].(*ast.ExpressionStatement).Expr.(*ast.Call)
	for _, arg := range callStmt.Args {
		if arg.(*ast.Int).Value != 2 {
			t.Errorf("call arg not rewritten: %+v", arg)
		}
	}
}

func TestModify_IfBranches(t *testing.T) {
	cond := ast.NewInt(0, 1)
	trueBranch := ast.NewBlock(0, []ast.Statement{ast.NewExpressionStatement(0, ast.NewInt(0, 1))})
	falseBranch := ast.NewBlock(0, []ast.Statement{ast.NewExpressionStatement(0, ast.NewInt(0, 1))})
	ifExpr := ast.NewIf(0, cond, trueBranch, falseBranch)

	turnOnesIntoThrees := func(n ast.Node) ast.Node {
		if i, ok := n.(*ast.Int); ok && i.Value == 1 {
			return ast.NewInt(i.MainIdx(), 3)
		}
		return n
	}

	rewritten := ast.Modify(ifExpr, turnOnesIntoThrees).(*ast.If)
	if rewritten.Cond.(*ast.Int).Value != 3 {
		t.Errorf("cond not rewritten")
	}
	if rewritten.TrueBranch.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.Int).Value != 3 {
		t.Errorf("true branch not rewritten")
	}
	if rewritten.FalseBranch.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.Int).Value != 3 {
		t.Errorf("false branch not rewritten")
	}
}
