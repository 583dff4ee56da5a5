package parser

import (
	"testing"

	"github.com/kristofer/smog/pkg/ast"
)

// TestParseUnaryBinaryPrecedence verifies unary messages bind tighter than
// binary ones: `arr size + 1` is `(arr size) + 1`.
func TestParseUnaryBinaryPrecedence(t *testing.T) {
	msg, ok := parseOne(t, "arr size + 1").(*ast.Message)
	if !ok {
		t.Fatalf("got %#v", msg)
	}
	if msg.Selector != "+" {
		t.Errorf("expected top-level selector '+', got %s", msg.Selector)
	}
	recv, ok := msg.Receiver.(*ast.Message)
	if !ok || recv.Selector != "size" {
		t.Fatalf("expected receiver 'size' send, got %#v", msg.Receiver)
	}
}

// TestParseBinaryChaining verifies binary messages chain strictly
// left-to-right with no operator precedence between them (Smalltalk has
// none): `3 + 4 * 2` is `(3 + 4) * 2`, not `3 + (4 * 2)`.
func TestParseBinaryChaining(t *testing.T) {
	msg, ok := parseOne(t, "3 + 4 * 2").(*ast.Message)
	if !ok || msg.Selector != "*" {
		t.Fatalf("got %#v", msg)
	}
	recv, ok := msg.Receiver.(*ast.Message)
	if !ok || recv.Selector != "+" {
		t.Fatalf("expected receiver '+' send, got %#v", msg.Receiver)
	}
}

// TestParseBinaryKeywordPrecedence verifies binary messages bind tighter
// than keyword ones: `arr at: 1 + 1` is `arr at: (1 + 1)`.
func TestParseBinaryKeywordPrecedence(t *testing.T) {
	msg, ok := parseOne(t, "arr at: 1 + 1").(*ast.Message)
	if !ok || msg.Selector != "at:" {
		t.Fatalf("got %#v", msg)
	}
	if len(msg.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(msg.Args))
	}
	arg, ok := msg.Args[0].(*ast.Message)
	if !ok || arg.Selector != "+" {
		t.Fatalf("expected arg to be a '+' send, got %#v", msg.Args[0])
	}
}

// TestParseKeywordPartsCombine verifies consecutive "keyword: arg" parts
// fold into a single selector and a single send: `d at: 1 put: 2` is one
// `at:put:` message, not two chained sends.
func TestParseKeywordPartsCombine(t *testing.T) {
	msg, ok := parseOne(t, "d at: 1 put: 2").(*ast.Message)
	if !ok || msg.Selector != "at:put:" {
		t.Fatalf("got %#v", msg)
	}
	if len(msg.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(msg.Args))
	}
}

// TestParseUnaryChain verifies multiple unary sends chain left-to-right:
// `a b c` is `(a b) c`.
func TestParseUnaryChain(t *testing.T) {
	msg, ok := parseOne(t, "a b c").(*ast.Message)
	if !ok || msg.Selector != "c" {
		t.Fatalf("got %#v", msg)
	}
	recv, ok := msg.Receiver.(*ast.Message)
	if !ok || recv.Selector != "b" {
		t.Fatalf("expected receiver 'b' send, got %#v", msg.Receiver)
	}
	inner, ok := recv.Receiver.(*ast.Ident)
	if !ok || inner.Name != "a" {
		t.Fatalf("expected base receiver ident 'a', got %#v", recv.Receiver)
	}
}

// TestParseKeywordArgAllowsUnaryAndBinary verifies a keyword argument may
// itself be a full binary/unary expression: `coll at: i + 1 put: v size`.
func TestParseKeywordArgAllowsUnaryAndBinary(t *testing.T) {
	msg, ok := parseOne(t, "coll at: i + 1 put: v size").(*ast.Message)
	if !ok || msg.Selector != "at:put:" {
		t.Fatalf("got %#v", msg)
	}
	firstArg, ok := msg.Args[0].(*ast.Message)
	if !ok || firstArg.Selector != "+" {
		t.Fatalf("first arg got %#v", msg.Args[0])
	}
	secondArg, ok := msg.Args[1].(*ast.Message)
	if !ok || secondArg.Selector != "size" {
		t.Fatalf("second arg got %#v", msg.Args[1])
	}
}

// TestParseCascadePrecedence verifies a cascade lands on the outermost
// send's receiver even when that send is itself the tail of a keyword
// chain: `d at: 1 put: 2; at: 3 put: 4` cascades against `d`.
func TestParseCascadePrecedence(t *testing.T) {
	cas, ok := parseOne(t, "d at: 1 put: 2; at: 3 put: 4").(*ast.Cascade)
	if !ok {
		t.Fatalf("got %#v", cas)
	}
	recv, ok := cas.Receiver.(*ast.Ident)
	if !ok || recv.Name != "d" {
		t.Fatalf("receiver got %#v", cas.Receiver)
	}
	if cas.First.Selector != "at:put:" || len(cas.Rest) != 1 || cas.Rest[0].Selector != "at:put:" {
		t.Fatalf("got first=%#v rest=%#v", cas.First, cas.Rest)
	}
}
