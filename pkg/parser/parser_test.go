package parser

import (
	"testing"

	"github.com/kristofer/smog/pkg/ast"
)

func parseOne(t *testing.T, input string) ast.Node {
	t.Helper()
	p := New(input)
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", input, err)
	}
	if len(program.Statements) != 1 {
		t.Fatalf("Parse(%q): expected 1 statement, got %d", input, len(program.Statements))
	}
	return program.Statements[0]
}

func TestParseIntegerLiteral(t *testing.T) {
	lit, ok := parseOne(t, "42").(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt || lit.Int != 42 {
		t.Fatalf("got %#v", lit)
	}
}

func TestParseNegativeIntegerLiteral(t *testing.T) {
	lit, ok := parseOne(t, "-7").(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt || lit.Int != -7 {
		t.Fatalf("got %#v", lit)
	}
}

func TestParseFloatLiteral(t *testing.T) {
	lit, ok := parseOne(t, "3.14").(*ast.Literal)
	if !ok || lit.Kind != ast.LitFloat || lit.Flt != 3.14 {
		t.Fatalf("got %#v", lit)
	}
}

func TestParseStringLiteral(t *testing.T) {
	lit, ok := parseOne(t, `"Hello, World!"`).(*ast.Literal)
	if !ok || lit.Kind != ast.LitString || lit.Str != "Hello, World!" {
		t.Fatalf("got %#v", lit)
	}
}

func TestParseSymbolLiteral(t *testing.T) {
	lit, ok := parseOne(t, `#moveBy:and:`).(*ast.Literal)
	if !ok || lit.Kind != ast.LitSymbol || lit.Str != "moveBy:and:" {
		t.Fatalf("got %#v", lit)
	}
}

func TestParsePseudoVars(t *testing.T) {
	cases := map[string]ast.PseudoVarKind{
		"self": ast.PVSelf, "super": ast.PVSuper,
		"nil": ast.PVNil, "true": ast.PVTrue, "false": ast.PVFalse,
	}
	for src, want := range cases {
		pv, ok := parseOne(t, src).(*ast.PseudoVar)
		if !ok || pv.Kind != want {
			t.Fatalf("%s: got %#v", src, pv)
		}
	}
}

func TestParseUnaryMessage(t *testing.T) {
	msg, ok := parseOne(t, "arr size").(*ast.Message)
	if !ok || msg.Selector != "size" || len(msg.Args) != 0 {
		t.Fatalf("got %#v", msg)
	}
	recv, ok := msg.Receiver.(*ast.Ident)
	if !ok || recv.Name != "arr" {
		t.Fatalf("receiver got %#v", msg.Receiver)
	}
}

func TestParseKeywordMessage(t *testing.T) {
	msg, ok := parseOne(t, "Point x: 1 y: 2").(*ast.Message)
	if !ok || msg.Selector != "x:y:" {
		t.Fatalf("got %#v", msg)
	}
	if len(msg.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(msg.Args))
	}
}

func TestParseAssignment(t *testing.T) {
	assign, ok := parseOne(t, "x := 5").(*ast.Assign)
	if !ok || assign.Name != "x" {
		t.Fatalf("got %#v", assign)
	}
	lit, ok := assign.Expr.(*ast.Literal)
	if !ok || lit.Int != 5 {
		t.Fatalf("got %#v", assign.Expr)
	}
}

func TestParseChainedAssignment(t *testing.T) {
	assign, ok := parseOne(t, "x := y := 5").(*ast.Assign)
	if !ok || assign.Name != "x" {
		t.Fatalf("got %#v", assign)
	}
	inner, ok := assign.Expr.(*ast.Assign)
	if !ok || inner.Name != "y" {
		t.Fatalf("got %#v", assign.Expr)
	}
}

func TestParseReturnStatement(t *testing.T) {
	ret, ok := parseOne(t, "^ 42").(*ast.Return)
	if !ok {
		t.Fatalf("got %#v", ret)
	}
	lit, ok := ret.Expr.(*ast.Literal)
	if !ok || lit.Int != 42 {
		t.Fatalf("got %#v", ret.Expr)
	}
}

func TestParseBareReturn(t *testing.T) {
	ret, ok := parseOne(t, "^").(*ast.Return)
	if !ok {
		t.Fatalf("got %#v", ret)
	}
	pv, ok := ret.Expr.(*ast.PseudoVar)
	if !ok || pv.Kind != ast.PVSelf {
		t.Fatalf("expected bare ^ to normalize to ^self, got %#v", ret.Expr)
	}
}

func TestParseSuperSend(t *testing.T) {
	ss, ok := parseOne(t, "super foo").(*ast.SuperSend)
	if !ok || ss.Selector != "foo" {
		t.Fatalf("got %#v", ss)
	}
}

func TestParseSuperSendThenChainedUnary(t *testing.T) {
	// only the initial send to `super` uses super dispatch; the result is
	// an ordinary receiver for whatever follows.
	msg, ok := parseOne(t, "super foo bar").(*ast.Message)
	if !ok || msg.Selector != "bar" {
		t.Fatalf("got %#v", msg)
	}
	ss, ok := msg.Receiver.(*ast.SuperSend)
	if !ok || ss.Selector != "foo" {
		t.Fatalf("receiver got %#v", msg.Receiver)
	}
}

func TestParseBlockLiteralNoParams(t *testing.T) {
	blk, ok := parseOne(t, "[ 1 + 2 ]").(*ast.BlockNode)
	if !ok || len(blk.Parameters) != 0 || len(blk.Body) != 1 {
		t.Fatalf("got %#v", blk)
	}
}

func TestParseBlockLiteralWithParams(t *testing.T) {
	blk, ok := parseOne(t, "[:x :y | x + y]").(*ast.BlockNode)
	if !ok {
		t.Fatalf("got %#v", blk)
	}
	if len(blk.Parameters) != 2 || blk.Parameters[0] != "x" || blk.Parameters[1] != "y" {
		t.Fatalf("params got %#v", blk.Parameters)
	}
}

func TestParseBlockLiteralWithTemporariesOnly(t *testing.T) {
	blk, ok := parseOne(t, "[| c | c := 0. c]").(*ast.BlockNode)
	if !ok {
		t.Fatalf("got %#v", blk)
	}
	if len(blk.Parameters) != 0 {
		t.Fatalf("expected no parameters, got %#v", blk.Parameters)
	}
	if len(blk.Temporaries) != 1 || blk.Temporaries[0] != "c" {
		t.Fatalf("temporaries got %#v", blk.Temporaries)
	}
	if len(blk.Body) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(blk.Body))
	}
}

func TestParseBlockWithParamsAndTemporaries(t *testing.T) {
	blk, ok := parseOne(t, "[:x | | t | t := x. t]").(*ast.BlockNode)
	if !ok {
		t.Fatalf("got %#v", blk)
	}
	if len(blk.Parameters) != 1 || blk.Parameters[0] != "x" {
		t.Fatalf("params got %#v", blk.Parameters)
	}
	if len(blk.Temporaries) != 1 || blk.Temporaries[0] != "t" {
		t.Fatalf("temporaries got %#v", blk.Temporaries)
	}
}

func TestParseArrayLiteralOfIntegers(t *testing.T) {
	arr, ok := parseOne(t, "#(1 3 5 2 4)").(*ast.ArrayNode)
	if !ok || len(arr.Elements) != 5 {
		t.Fatalf("got %#v", arr)
	}
	lit, ok := arr.Elements[0].(*ast.Literal)
	if !ok || lit.Int != 1 {
		t.Fatalf("first element got %#v", arr.Elements[0])
	}
}

func TestParseArrayLiteralOfBareIdentsAreSymbols(t *testing.T) {
	arr, ok := parseOne(t, "#(x y)").(*ast.ArrayNode)
	if !ok || len(arr.Elements) != 2 {
		t.Fatalf("got %#v", arr)
	}
	for i, want := range []string{"x", "y"} {
		lit, ok := arr.Elements[i].(*ast.Literal)
		if !ok || lit.Kind != ast.LitSymbol || lit.Str != want {
			t.Fatalf("element %d got %#v", i, arr.Elements[i])
		}
	}
}

func TestParseCascade(t *testing.T) {
	cas, ok := parseOne(t, "coll add: 1; add: 2; yourself").(*ast.Cascade)
	if !ok {
		t.Fatalf("got %#v", cas)
	}
	recv, ok := cas.Receiver.(*ast.Ident)
	if !ok || recv.Name != "coll" {
		t.Fatalf("receiver got %#v", cas.Receiver)
	}
	if cas.First.Selector != "add:" || len(cas.First.Args) != 1 {
		t.Fatalf("first got %#v", cas.First)
	}
	if len(cas.Rest) != 2 {
		t.Fatalf("expected 2 rest parts, got %d", len(cas.Rest))
	}
	if cas.Rest[0].Selector != "add:" || cas.Rest[1].Selector != "yourself" {
		t.Fatalf("rest got %#v", cas.Rest)
	}
}

func TestParseMethodDefSugarUnary(t *testing.T) {
	msg, ok := parseOne(t, `A >> foo [ ^ "A" ]`).(*ast.Message)
	if !ok || msg.Selector != "selector:put:" {
		t.Fatalf("got %#v", msg)
	}
	recv, ok := msg.Receiver.(*ast.Ident)
	if !ok || recv.Name != "A" {
		t.Fatalf("receiver got %#v", msg.Receiver)
	}
	sel, ok := msg.Args[0].(*ast.Literal)
	if !ok || sel.Kind != ast.LitSymbol || sel.Str != "foo" {
		t.Fatalf("selector arg got %#v", msg.Args[0])
	}
	body, ok := msg.Args[1].(*ast.BlockNode)
	if !ok || len(body.Parameters) != 0 {
		t.Fatalf("body got %#v", msg.Args[1])
	}
}

func TestParseMethodDefSugarKeyword(t *testing.T) {
	msg, ok := parseOne(t, "Point >> moveBy: dx and: dy [ x := x + dx. y := y + dy ]").(*ast.Message)
	if !ok || msg.Selector != "selector:put:" {
		t.Fatalf("got %#v", msg)
	}
	sel, ok := msg.Args[0].(*ast.Literal)
	if !ok || sel.Str != "moveBy:and:" {
		t.Fatalf("selector arg got %#v", msg.Args[0])
	}
	body, ok := msg.Args[1].(*ast.BlockNode)
	if !ok {
		t.Fatalf("body got %#v", msg.Args[1])
	}
	if len(body.Parameters) != 2 || body.Parameters[0] != "dx" || body.Parameters[1] != "dy" {
		t.Fatalf("params got %#v", body.Parameters)
	}
	if len(body.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(body.Body))
	}
}

func TestParseMethodDefSugarClassSide(t *testing.T) {
	msg, ok := parseOne(t, "Point class >> origin [ ^ Point new ]").(*ast.Message)
	if !ok || msg.Selector != "classSelector:put:" {
		t.Fatalf("got %#v", msg)
	}
	recv, ok := msg.Receiver.(*ast.Ident)
	if !ok || recv.Name != "Point" {
		t.Fatalf("receiver got %#v", msg.Receiver)
	}
}

func TestParseMultipleStatements(t *testing.T) {
	p := New("x := 1. y := 2. x + y")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(program.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(program.Statements))
	}
}

func TestParseTrailingPeriodOptional(t *testing.T) {
	p := New("x := 1.")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
}

func TestParseParenthesizedExpression(t *testing.T) {
	msg, ok := parseOne(t, "(1 + 2) * 3").(*ast.Message)
	if !ok || msg.Selector != "*" {
		t.Fatalf("got %#v", msg)
	}
	inner, ok := msg.Receiver.(*ast.Message)
	if !ok || inner.Selector != "+" {
		t.Fatalf("receiver got %#v", msg.Receiver)
	}
}

func TestParseStringConcatenationSelector(t *testing.T) {
	msg, ok := parseOne(t, `super foo , "B"`).(*ast.Message)
	if !ok || msg.Selector != "," {
		t.Fatalf("got %#v", msg)
	}
	if _, ok := msg.Receiver.(*ast.SuperSend); !ok {
		t.Fatalf("receiver got %#v", msg.Receiver)
	}
}
